// Package cli implements the `chess-server db` maintenance subcommands.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"chessarbiter/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
	"golang.org/x/term"
)

const minPasswordLength = 8

// output is where results are printed
var output io.Writer = os.Stdout

// readPassword prompts without echo
var readPassword = func() ([]byte, error) {
	fmt.Fprint(output, "Enter password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(output)
	return pw, err
}

// Run is the entry point for the db subcommands
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, user")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "query":
		return runQuery(args[1:])
	case "user":
		if len(args) < 2 {
			return fmt.Errorf("user subcommand required: add, delete, list")
		}
		return runUser(args[1], args[2:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// openStore parses the shared -path flag and opens the database
func openStore(fs *flag.FlagSet, args []string) (*storage.Store, error) {
	path := fs.String("path", "", "Database file path (required)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(args []string) error {
	store, err := openStore(flag.NewFlagSet("init", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintln(output, "Database initialized")
	return nil
}

func runDelete(args []string) error {
	store, err := openStore(flag.NewFlagSet("delete", flag.ContinueOnError), args)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintln(output, "Database deleted")
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	gameID := fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	ownerID := fs.String("ownerId", "", "Owner user ID to filter (optional, * for all)")
	showMoves := fs.Bool("moves", false, "List the recorded moves of each game")

	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *ownerID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Fprintln(output, "No games found")
		return nil
	}

	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tWhite\tBlack\tOwner\tResult\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, g := range games {
		owner := "(anonymous)"
		if g.OwnerID != "" {
			owner = short(g.OwnerID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			short(g.GameID),
			g.WhiteName,
			g.BlackName,
			owner,
			g.Result,
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	if *showMoves {
		for _, g := range games {
			moves, err := store.GetMoves(g.GameID)
			if err != nil {
				return fmt.Errorf("moves of %s: %w", g.GameID, err)
			}
			fmt.Fprintf(output, "\n%s (from %s)\n", g.GameID, g.InitialFEN)
			for _, m := range moves {
				line := fmt.Sprintf("  %3d. %s %s", m.MoveNumber, m.PlayerColor, m.MoveUCI)
				if m.Captured != "" {
					line += " x" + m.Captured
				}
				if m.Check != "" && m.Check != "none" {
					line += " " + m.Check
				}
				fmt.Fprintln(output, line)
			}
		}
	}

	fmt.Fprintf(output, "\nFound %d game(s)\n", len(games))
	return nil
}

func short(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

func runUser(subcommand string, args []string) error {
	switch subcommand {
	case "add":
		return runUserAdd(args)
	case "delete":
		return runUserDelete(args)
	case "list":
		return runUserList(args)
	default:
		return fmt.Errorf("unknown user subcommand: %s", subcommand)
	}
}

func runUserAdd(args []string) error {
	fs := flag.NewFlagSet("user add", flag.ContinueOnError)
	username := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "Email address (optional)")
	password := fs.String("password", "", "Password (prompted when omitted)")
	hash := fs.String("hash", "", "Pre-computed password hash (optional)")
	temp := fs.Bool("temp", false, "Create as temporary user (24h TTL, default: permanent)")

	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if *username == "" {
		return fmt.Errorf("username required")
	}
	if *password != "" && *hash != "" {
		return fmt.Errorf("cannot specify both -password and -hash")
	}

	passwordHash := *hash
	if passwordHash != "" {
		if err := auth.ValidatePHCHashFormat(passwordHash); err != nil {
			return fmt.Errorf("invalid hash format: %w", err)
		}
	} else {
		pw := *password
		if pw == "" {
			pwBytes, err := readPassword()
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			pw = string(pwBytes)
		}
		if len(pw) < minPasswordLength {
			return fmt.Errorf("password must be at least %d characters", minPasswordLength)
		}
		passwordHash, err = auth.HashPassword(pw)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
	}

	userID, err := uniqueUserID(store)
	if err != nil {
		return err
	}

	// CLI default is permanent
	accountType := "permanent"
	var expiresAt *time.Time
	if *temp {
		accountType = "temp"
		expiry := time.Now().UTC().Add(24 * time.Hour)
		expiresAt = &expiry
	}

	record := storage.UserRecord{
		UserID:       userID,
		Username:     strings.ToLower(*username),
		Email:        strings.ToLower(*email),
		PasswordHash: passwordHash,
		AccountType:  accountType,
		CreatedAt:    time.Now().UTC(),
		ExpiresAt:    expiresAt,
	}

	if err := store.CreateUser(record); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(output, "User created successfully:\n")
	fmt.Fprintf(output, "  ID: %s\n", userID)
	fmt.Fprintf(output, "  Username: %s\n", record.Username)
	if record.Email != "" {
		fmt.Fprintf(output, "  Email: %s\n", record.Email)
	}
	return nil
}

func uniqueUserID(store *storage.Store) (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		id := uuid.New().String()
		_, err := store.GetUserByID(id)
		if errors.Is(err, storage.ErrUserNotFound) {
			return id, nil
		}
		if err != nil {
			return "", fmt.Errorf("check user ID: %w", err)
		}
	}
	return "", fmt.Errorf("failed to generate unique user ID after 10 attempts")
}

func runUserDelete(args []string) error {
	fs := flag.NewFlagSet("user delete", flag.ContinueOnError)
	username := fs.String("username", "", "Username to delete")
	userID := fs.String("id", "", "User ID to delete")

	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if (*username == "") == (*userID == "") {
		return fmt.Errorf("specify exactly one of -username or -id")
	}

	targetID := *userID
	if *username != "" {
		user, err := store.GetUserByUsername(*username)
		if err != nil {
			return fmt.Errorf("user not found: %s", *username)
		}
		targetID = user.UserID
	}

	if err := store.DeleteUserByID(targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Fprintf(output, "User deleted: %s\n", targetID)
	return nil
}

func runUserList(args []string) error {
	store, err := openStore(flag.NewFlagSet("user list", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Fprintln(output, "No users found")
		return nil
	}

	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "User ID\tUsername\tType\tEmail\tCreated\tExpires\tLast Login")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, u := range users {
		lastLogin := "never"
		if u.LastLoginAt != nil {
			lastLogin = u.LastLoginAt.Format("2006-01-02 15:04")
		}
		email := u.Email
		if email == "" {
			email = "(none)"
		}
		expires := "never"
		if u.ExpiresAt != nil {
			expires = u.ExpiresAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			short(u.UserID),
			u.Username,
			u.AccountType,
			email,
			u.CreatedAt.Format("2006-01-02 15:04"),
			expires,
			lastLogin,
		)
	}
	w.Flush()

	fmt.Fprintf(output, "\nTotal users: %d\n", len(users))
	return nil
}
