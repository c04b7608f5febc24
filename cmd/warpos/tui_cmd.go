package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcmrs/warpos/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive plan review TUI",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	app := tui.New(rt.executor)
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
