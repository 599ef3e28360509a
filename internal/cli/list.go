package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/existflow/protodo/internal/model"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List your tasks, optionally searched and filtered.

Examples:
  protodo list
  protodo list --filter active
  protodo list -q milk`,
	RunE: runList,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task counts",
	RunE:  runStats,
}

var (
	listQuery  string
	listFilter string
)

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Only tasks whose title or description contains this text")
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "all", "Filter by state (all, active, completed)")
}

func runList(cmd *cobra.Command, args []string) error {
	status, err := model.ParseStatusFilter(listFilter)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireSession(cmd.Context()); err != nil {
		return err
	}
	if err := a.loadTasks(cmd.Context()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	items := a.tasks.Filter(listQuery, status)
	if len(items) == 0 {
		if a.tasks.Stats().Total == 0 {
			_, _ = fmt.Fprintln(out, "No tasks yet. Add one with: protodo add \"Your task\"")
		} else {
			_, _ = fmt.Fprintln(out, "No tasks match.")
		}
		return nil
	}

	printTasks(out, string(status), items, time.Now())
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireSession(cmd.Context()); err != nil {
		return err
	}
	if err := a.loadTasks(cmd.Context()); err != nil {
		return err
	}

	st := a.tasks.Stats()
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "📊 Total: %d\n", st.Total)
	_, _ = fmt.Fprintf(out, "   Active: %d\n", st.Active)
	_, _ = fmt.Fprintf(out, "   Completed: %d\n", st.Completed)
	return nil
}

func printTasks(out io.Writer, heading string, items []model.Task, now time.Time) {
	pending := 0
	for _, t := range items {
		if !t.Completed {
			pending++
		}
	}

	_, _ = fmt.Fprintf(out, "\n📋 %s (%d pending)\n", heading, pending)
	_, _ = fmt.Fprintln(out, strings.Repeat("─", 72))

	for _, t := range items {
		printTask(out, t, now)
	}
	_, _ = fmt.Fprintln(out)
}

func printTask(out io.Writer, t model.Task, now time.Time) {
	icon := "[ ]"
	if t.Completed {
		icon = "[x]"
	}

	priority := ""
	switch t.Priority {
	case model.PriorityHigh:
		priority = "▲ high"
	case model.PriorityMedium:
		priority = "  medium"
	case model.PriorityLow:
		priority = "  low"
	}

	due := ""
	if t.DueDate != nil {
		due = t.DueDate.Format("Jan 2")
		if t.IsOverdue(now) {
			due = "! " + due
		}
	}

	// Truncate title if too long
	title := t.Title
	if len([]rune(title)) > 40 {
		title = string([]rune(title)[:37]) + "..."
	}

	// Short ID
	shortID := t.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	_, _ = fmt.Fprintf(out, "  %s  %-8s  %-40s  %-8s  %s\n", icon, shortID, title, due, priority)
}
