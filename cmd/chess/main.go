// Package main runs a hot-seat chess game in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	"chessarbiter/internal/cli"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

func main() {
	fen := flag.String("fen", "", "Starting position in FEN (default: standard layout)")
	theme := flag.String("theme", "brown", "Board colors: off, brown, green, gray")
	white := flag.String("white", "White", "Name of the white player")
	black := flag.String("black", "Black", "Name of the black player")
	history := flag.String("history", ".chess_history", "Readline history file")
	flag.Parse()

	view, err := cli.New(os.Stdout, *fen, *white, *black)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	// Escape codes only make sense on a terminal
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		*theme = string(cli.ThemeOff)
	}
	if err := view.SetTheme(cli.ColorTheme(*theme)); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          view.Prompt(),
		HistoryFile:     *history,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", cli.Red, err.Error(), cli.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	if err := view.Run(rl); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
}
