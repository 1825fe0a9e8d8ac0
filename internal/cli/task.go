package cli

import (
	"github.com/spf13/cobra"

	"github.com/albert-labs/albert-go/collections"
	"github.com/albert-labs/albert-go/resources"
)

func newTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Short:   "List tasks",
		GroupID: groupUserFacing,
	}
	cmd.AddCommand(newTaskListCommand())
	return cmd
}

func newTaskListCommand() *cobra.Command {
	var opts collections.SearchTasksOptions
	var ascending bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks matching search filters",
		Example: `  albertctl task list --category Property --status Unclaimed
  albertctl task list --assigned-to USR123 --max 20 --jq '.[] | .name'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ascending {
				opts.OrderBy = resources.OrderAscending
			}

			client, err := loadClient()
			if err != nil {
				return err
			}

			tasks := make([]resources.Task, 0)
			for task, err := range client.Tasks.Search(cmd.Context(), opts) {
				if err != nil {
					return err
				}
				tasks = append(tasks, task)
			}

			statusf(cmd, "%d tasks", len(tasks))
			return printResult(cmd, tasks)
		},
	}

	cmd.Flags().StringVar(&opts.Text, "text", "", "Free-text search")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Task category")
	cmd.Flags().StringVar(&opts.ProjectID, "project", "", "Parent project id")
	cmd.Flags().StringSliceVar(&opts.AssignedTo, "assigned-to", nil, "Assignee ids")
	cmd.Flags().StringSliceVar(&opts.Priority, "priority", nil, "Priorities (Low, Medium, High)")
	cmd.Flags().StringSliceVar(&opts.Status, "status", nil, "Task states")
	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "Tag names")
	cmd.Flags().StringVar(&opts.SortBy, "sort-by", "", "Sort field")
	cmd.Flags().BoolVar(&ascending, "ascending", false, "Sort ascending instead of descending")
	cmd.Flags().IntVar(&opts.MaxItems, "max", 0, "Stop after this many tasks (0 means no limit)")

	return cmd
}
