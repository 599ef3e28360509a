package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/protodo/internal/logger"
	"github.com/existflow/protodo/internal/tasks"
	"github.com/existflow/protodo/internal/tui"
	"github.com/spf13/cobra"
)

var tuiDemo bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive TUI",
	Long: `Launch the interactive TUI.

With --demo the dashboard opens on a built-in sample list without contacting
the server. Nothing done in demo mode is saved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, tuiDemo)
	},
}

func init() {
	tuiCmd.Flags().BoolVar(&tuiDemo, "demo", false, "Use the offline sample list")
}

func runTUI(cmd *cobra.Command, demo bool) error {
	var m tui.Model
	if demo {
		store := tasks.NewStore(nil)
		if err := store.Seed(tasks.DemoTasks()); err != nil {
			return err
		}
		logger.Info("Launching TUI", logger.F("demo", true))
		m = tui.NewModel(tui.Options{Tasks: store, Demo: true})
	} else {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		logger.Info("Launching TUI", logger.F("demo", false))
		m = tui.NewModel(tui.Options{
			Session:       a.session,
			Tasks:         a.tasks,
			ConfirmDelete: cfg.ConfirmDelete,
			Timeout:       cfg.RequestTimeout,
		})
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", logger.F("error", err))
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	logger.Info("TUI exited normally")
	return nil
}
