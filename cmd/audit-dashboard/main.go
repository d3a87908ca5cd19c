// cmd/audit-dashboard/main.go
//
// This is the entry point for the audit dashboard.
// It initializes the .audit project directory in the working directory and
// runs the terminal UI on top of it.

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/config"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/tui"
)

func main() {
	// The current working directory is the "project" we're auditing from
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitAuditDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .audit directory: %v\n", err)
		os.Exit(1)
	}

	app, err := tui.NewApp(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing dashboard: %v\n", err)
		os.Exit(1)
	}

	// tea.NewProgram creates a new bubbletea application
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(), // Use alternate screen buffer (like vim does)
	)

	// Run blocks until the user quits
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
