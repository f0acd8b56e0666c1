package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sujalamkhade/sasad/client"
	"github.com/sujalamkhade/sasad/tui"
)

func main() {
	backend := client.New(client.Config{})

	program := tea.NewProgram(tui.New(backend), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "sasad: %v\n", err)
		os.Exit(1)
	}
}
