package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/existflow/protodo/internal/message"
	"github.com/existflow/protodo/internal/model"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task.

Examples:
  protodo add "Buy groceries"
  protodo add "Quarterly report" -p high -d 2024-01-31
  protodo add "Call the bank" -D "ask about the card"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDescription string
	addPriority    string
	addDue         string
)

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "D", "", "Longer description")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", string(model.DefaultPriority), "Priority (low, medium, high)")
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "Due date (YYYY-MM-DD, defaults to today)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	priority, err := model.ParsePriority(addPriority)
	if err != nil {
		return err
	}
	due, err := model.ParseDate(addDue)
	if err != nil {
		return err
	}

	draft := model.Draft{
		Title:       strings.Join(args, " "),
		Description: addDescription,
		Priority:    priority,
		DueDate:     due,
	}.Normalize()
	if err := fieldError(cmd, model.ValidateDraft(draft)); err != nil {
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

	created, err := a.tasks.Create(cmd.Context(), draft)
	if err != nil {
		return errors.New(message.Task("create", err))
	}

	id := created.ID
	if len(id) > 8 {
		id = id[:8]
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Added: \"%s\" (%s, due %s) [%s]\n",
		created.Title, created.Priority, model.FormatDate(created.DueDate), id)
	return nil
}
