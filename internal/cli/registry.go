package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"chessarbiter/internal/board"
	"chessarbiter/internal/engine"
)

var errQuit = errors.New("quit")

// Command defines a terminal command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(*CLI, []string) error
}

// Registry maps command names and short forms to handlers
type Registry struct {
	cli      *CLI
	commands map[string]*Command
	order    []*Command
}

func newRegistry(c *CLI) *Registry {
	r := &Registry{
		cli:      c,
		commands: make(map[string]*Command),
	}

	r.Register(&Command{"select", "s", "Select a piece of the side to move", "select <square>", selectHandler})
	r.Register(&Command{"move", "m", "Move the selected piece, or play a full move", "move <to> | move <from><to>[q|r|b|n]", moveHandler})
	r.Register(&Command{"promote", "p", "Choose the piece a pawn becomes", "promote q|r|b|n", promoteHandler})
	r.Register(&Command{"cancel", "c", "Drop the current selection", "cancel", cancelHandler})
	r.Register(&Command{"legal", "l", "List where a piece can move", "legal <square>", legalHandler})
	r.Register(&Command{"undo", "u", "Take back moves", "undo [count]", undoHandler})
	r.Register(&Command{"reset", "r", "Start over from the initial position", "reset", resetHandler})
	r.Register(&Command{"board", "b", "Show the board", "board", boardHandler})
	r.Register(&Command{"fen", "f", "Print the current FEN", "fen", fenHandler})
	r.Register(&Command{"pgn", "g", "Print the game as PGN", "pgn", pgnHandler})
	r.Register(&Command{"history", "h", "Show the moves played so far", "history", historyHandler})
	r.Register(&Command{"color", "", "Switch the board color theme", "color off|brown|green|gray", colorHandler})
	r.Register(&Command{"help", "?", "Show available commands", "help [command]", r.helpHandler})
	r.Register(&Command{"quit", "q", "Leave the game", "quit", quitHandler})
	r.commands["exit"] = r.commands["quit"]

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
	r.order = append(r.order, cmd)
}

// Execute runs one line and reports whether the session should end. A line
// that is not a command but reads as a UCI move is played directly.
func (r *Registry) Execute(input string) bool {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return false
	}

	cmdName := parts[0]
	args := parts[1:]

	cmd, exists := r.commands[cmdName]
	if !exists {
		if len(parts) == 1 && (len(cmdName) == 4 || len(cmdName) == 5) {
			cmd, args = r.commands["move"], parts
		} else {
			r.cli.ShowMessage(r.cli.paint(Red, "Unknown command: "+cmdName))
			r.cli.ShowMessage("Type 'help' for available commands")
			return false
		}
	}

	err := cmd.Handler(r.cli, args)
	if errors.Is(err, errQuit) {
		return true
	}
	if err != nil {
		r.cli.ShowError(err)
	}
	return false
}

func (r *Registry) helpHandler(c *CLI, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		c.ShowMessage(fmt.Sprintf("\n%s - %s", c.paint(Cyan, cmd.Name), cmd.Description))
		if cmd.ShortName != "" {
			c.ShowMessage("Short form: " + c.paint(Cyan, cmd.ShortName))
		}
		c.ShowMessage("Usage: " + cmd.Usage)
		return nil
	}

	c.ShowMessage("\n" + c.paint(Cyan, "Available Commands:") + "\n")
	for _, cmd := range r.order {
		short := "   "
		if cmd.ShortName != "" {
			short = "[" + cmd.ShortName + "]"
		}
		c.ShowMessage(fmt.Sprintf("  %s %-8s %s", short, cmd.Name, cmd.Description))
	}
	c.ShowMessage("\nA bare move such as e2e4 or e7e8q is played directly.")
	c.ShowMessage("Type 'help <command>' for detailed usage")
	return nil
}

func requireArg(args []string, usage string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: %s", usage)
	}
	return args[0], nil
}

func selectHandler(c *CLI, args []string) error {
	arg, err := requireArg(args, "select <square>")
	if err != nil {
		return err
	}
	sq, err := board.ParseSquare(arg)
	if err != nil {
		return err
	}

	sel, err := c.game.Select(sq)
	if err != nil {
		return err
	}
	if sel.Result != engine.SelectPiece {
		c.ShowMessage(fmt.Sprintf("%s is empty, selection cleared", sel.Square))
		return nil
	}
	c.DisplayBoard()
	c.ShowMessage(fmt.Sprintf("%s %s on %s selected", sel.Owner.Name(), sel.Kind, sel.Square))
	return nil
}

func moveHandler(c *CLI, args []string) error {
	arg, err := requireArg(args, "move <to> | move <from><to>[q|r|b|n]")
	if err != nil {
		return err
	}

	var res engine.MoveResult
	if len(arg) == 2 {
		to, err := board.ParseSquare(arg)
		if err != nil {
			return err
		}
		res, err = c.game.MoveSelected(to)
		if err != nil {
			return err
		}
	} else {
		m, err := engine.ParseMove(arg)
		if err != nil {
			return err
		}
		res, err = c.game.Move(m)
		if err != nil {
			return err
		}
	}

	c.DisplayBoard()
	c.showResult(res)
	return nil
}

func promoteHandler(c *CLI, args []string) error {
	arg, err := requireArg(args, "promote q|r|b|n")
	if err != nil {
		return err
	}
	kind, ok := board.ParseKind(arg)
	if !ok {
		return fmt.Errorf("unknown piece: %s", arg)
	}

	res, err := c.game.Promote(kind)
	if err != nil {
		return err
	}
	c.DisplayBoard()
	c.showResult(res)
	return nil
}

func cancelHandler(c *CLI, args []string) error {
	c.game.Cancel()
	c.ShowMessage("Selection cleared")
	return nil
}

func legalHandler(c *CLI, args []string) error {
	arg, err := requireArg(args, "legal <square>")
	if err != nil {
		return err
	}
	sq, err := board.ParseSquare(arg)
	if err != nil {
		return err
	}

	dests, err := c.game.LegalMoves(sq)
	if err != nil {
		return err
	}
	if len(dests) == 0 {
		c.ShowMessage(fmt.Sprintf("%s: no legal moves", sq))
		return nil
	}
	names := make([]string, len(dests))
	for i, d := range dests {
		names[i] = d.String()
	}
	c.ShowMessage(fmt.Sprintf("%s: %s", sq, strings.Join(names, " ")))
	return nil
}

func undoHandler(c *CLI, args []string) error {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid count: %s", args[0])
		}
		count = n
	}

	if err := c.game.UndoMoves(count); err != nil {
		return err
	}
	c.DisplayBoard()
	c.ShowMessage(fmt.Sprintf("Took back %d move(s)", count))
	return nil
}

func resetHandler(c *CLI, args []string) error {
	c.game.Reset()
	c.DisplayBoard()
	c.ShowMessage("Game reset")
	return nil
}

func boardHandler(c *CLI, args []string) error {
	c.DisplayBoard()
	return nil
}

func fenHandler(c *CLI, args []string) error {
	c.ShowMessage(c.game.CurrentFEN())
	return nil
}

func pgnHandler(c *CLI, args []string) error {
	pgn, err := c.game.PGN()
	if err != nil {
		return err
	}
	c.ShowMessage(pgn)
	return nil
}

func historyHandler(c *CLI, args []string) error {
	c.ShowGameHistory()
	return nil
}

func colorHandler(c *CLI, args []string) error {
	arg, err := requireArg(args, "color off|brown|green|gray")
	if err != nil {
		return err
	}
	if err := c.SetTheme(ColorTheme(arg)); err != nil {
		return err
	}
	c.DisplayBoard()
	return nil
}

func quitHandler(c *CLI, args []string) error {
	c.ShowMessage(c.paint(Cyan, "Goodbye!"))
	return errQuit
}
