// Package cli is the terminal host: it renders a game.Game and feeds typed
// commands into it.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"chessarbiter/internal/board"
	"chessarbiter/internal/core"
	"chessarbiter/internal/engine"
	"chessarbiter/internal/game"
)

// Terminal color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
)

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	markBg  string // selected square and its destinations
	white   string
	black   string
	reset   string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		markBg:  "\033[48;5;178m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   Reset,
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m", // Light green
		darkBg:  "\033[48;5;22m",  // Dark green
		markBg:  "\033[48;5;178m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   Reset,
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m", // Light gray
		darkBg:  "\033[48;5;240m", // Dark gray
		markBg:  "\033[48;5;67m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   Reset,
	},
}

// LineReader is the part of a readline instance the loop needs
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

type CLI struct {
	output     io.Writer
	theme      ColorTheme
	game       *game.Game
	initialFEN string
	white      string
	black      string
	registry   *Registry
}

// New creates a terminal host around a fresh game from initialFEN ("" for the
// standard layout)
func New(output io.Writer, initialFEN, whiteName, blackName string) (*CLI, error) {
	c := &CLI{
		output:     output,
		theme:      ThemeOff,
		initialFEN: initialFEN,
		white:      whiteName,
		black:      blackName,
	}
	if err := c.newGame(initialFEN); err != nil {
		return nil, err
	}
	c.registry = newRegistry(c)
	return c, nil
}

func (c *CLI) newGame(fen string) error {
	g, err := game.New(fen,
		core.NewPlayer(c.white, core.ColorWhite),
		core.NewPlayer(c.black, core.ColorBlack))
	if err != nil {
		return err
	}
	c.game = g
	return nil
}

// Game returns the game being played
func (c *CLI) Game() *game.Game {
	return c.game
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

// Run reads commands until quit or end of input
func (c *CLI) Run(rl LineReader) error {
	c.ShowWelcome()
	c.DisplayBoard()

	for {
		rl.SetPrompt(c.Prompt())
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// Interrupt clears the line and keeps going
			continue
		}

		if quit := c.Execute(line); quit {
			return nil
		}
	}
}

// Execute runs one input line and reports whether the user asked to quit
func (c *CLI) Execute(line string) bool {
	return c.registry.Execute(line)
}

// Prompt shows whose turn it is and what the engine is waiting for
func (c *CLI) Prompt() string {
	turn := c.colorName(c.game.NextTurnColor())
	switch c.game.Phase() {
	case engine.AwaitingDestination:
		sq, _ := c.game.Selected()
		return c.paint(Yellow, "chess") + fmt.Sprintf(" [%s %s→] > ", turn, sq)
	case engine.PromotionPending:
		return c.paint(Yellow, "chess") + fmt.Sprintf(" [%s promote q/n/r/b] > ", turn)
	case engine.Checkmate:
		return c.paint(Yellow, "chess") + " [game over] > "
	default:
		return c.paint(Yellow, "chess") + fmt.Sprintf(" [%s] > ", turn)
	}
}

func (c *CLI) paint(color, text string) string {
	if c.theme == ThemeOff {
		return text
	}
	return color + text + Reset
}

func (c *CLI) colorName(color core.Color) string {
	if color == core.ColorWhite {
		return c.paint(Blue, color.Name())
	}
	return c.paint(Red, color.Name())
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(c.paint(Red, fmt.Sprintf("Error: %v", err)))
}

// DisplayBoard draws the position, white at the bottom, marking the selected
// piece and where it can go
func (c *CLI) DisplayBoard() {
	theme := themes[c.theme]

	marks := map[board.Square]bool{}
	if sq, ok := c.game.Selected(); ok {
		marks[sq] = true
		dests, _ := c.game.LegalMoves(sq)
		for _, d := range dests {
			marks[d] = true
		}
	}

	var sb strings.Builder
	sb.WriteString("\n  a b c d e f g h\n")

	for y := board.Size - 1; y >= 0; y-- {
		fmt.Fprintf(&sb, "%d ", y+1)
		for x := 0; x < board.Size; x++ {
			sq := board.MustSquare(x, y)
			kind, color, occupied := c.game.PieceAt(sq)

			glyph := byte('.')
			if occupied {
				glyph = kind.Letter()
				if color == core.ColorBlack {
					glyph += 'a' - 'A'
				}
			} else if marks[sq] {
				glyph = '*'
			}

			if c.theme == ThemeOff {
				sb.WriteByte(glyph)
				sb.WriteByte(' ')
				continue
			}

			bg := theme.darkBg
			if (x+y)%2 == 1 {
				bg = theme.lightBg
			}
			if marks[sq] {
				bg = theme.markBg
			}
			if glyph == '.' {
				glyph = ' '
			}
			fg := theme.black
			if occupied && color == core.ColorWhite {
				fg = theme.white
			}
			fmt.Fprintf(&sb, "%s%s%c %s", bg, fg, glyph, theme.reset)
		}
		fmt.Fprintf(&sb, " %d\n", y+1)
	}
	sb.WriteString("  a b c d e f g h\n")

	c.ShowMessage(sb.String())
}

func (c *CLI) ShowWelcome() {
	c.ShowMessage(c.paint(Cyan, "Hot-seat chess"))
	c.ShowMessage("Type a move like e2e4, or 'select e2' then 'move e4'. 'help' lists every command.")
}

func (c *CLI) ShowGameHistory() {
	c.ShowMessage(fmt.Sprintf("Starting FEN: %s", c.game.InitialFEN()))

	moves := c.game.Moves()
	for i := 0; i < len(moves); i += 2 {
		moveNum := i/2 + 1
		if i+1 < len(moves) {
			c.ShowMessage(fmt.Sprintf("%d. %s | %s", moveNum, moves[i], moves[i+1]))
		} else {
			c.ShowMessage(fmt.Sprintf("%d. %s | ...", moveNum, moves[i]))
		}
	}
	c.ShowMessage(fmt.Sprintf("Current FEN: %s", c.game.CurrentFEN()))
	c.ShowMessage(fmt.Sprintf("Game state: %s", c.game.State()))
}

// showResult reports what a committed move did
func (c *CLI) showResult(res engine.MoveResult) {
	if res.Outcome == engine.PromotionRequired {
		c.ShowMessage("Pawn reached the last rank: promote with q, n, r or b")
		return
	}

	var notes []string
	if res.Captured != 0 {
		notes = append(notes, "takes "+res.Captured.String())
	}
	if res.Castled {
		notes = append(notes, "castles")
	}
	if res.Promotion != 0 {
		notes = append(notes, "promotes to "+res.Promotion.String())
	}
	msg := fmt.Sprintf("%s: %s", res.Color.Name(), res.Move)
	if len(notes) > 0 {
		msg += " (" + strings.Join(notes, ", ") + ")"
	}
	c.ShowMessage(msg)

	switch res.Status.State {
	case engine.CheckMate:
		c.ShowMessage(c.paint(Magenta, fmt.Sprintf("Checkmate. %s", c.game.State())))
		c.ShowMessage("Start again with 'reset', or take moves back with 'undo'.")
	case engine.CheckOnly:
		c.ShowMessage(c.paint(Magenta, fmt.Sprintf("%s is in check", res.Status.Player.Name())))
	}
}
