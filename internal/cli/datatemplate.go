package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/albert-labs/albert-go/resources"
)

func newDataTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datatemplate",
		Short:   "Fetch and update data templates",
		GroupID: groupUserFacing,
	}
	cmd.AddCommand(newDataTemplateGetCommand())
	cmd.AddCommand(newDataTemplateUpdateCommand())
	return cmd
}

func newDataTemplateGetCommand() *cobra.Command {
	var byName bool

	cmd := &cobra.Command{
		Use:   "get <id-or-name>",
		Short: "Show one data template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := loadClient()
			if err != nil {
				return err
			}

			var template *resources.DataTemplate
			if byName {
				template, err = client.DataTemplates.GetByName(cmd.Context(), args[0])
			} else {
				template, err = client.DataTemplates.GetByID(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return printResult(cmd, template)
		},
	}
	cmd.Flags().BoolVar(&byName, "by-name", false, "Treat the argument as a template name instead of an id")
	return cmd
}

func newDataTemplateUpdateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update --file <template.json>",
		Short: "Apply a data template definition",
		Long: `Update reads the desired template state from a JSON file, typically a
"datatemplate get" output edited in place, diffs it against the current
server state, and sends only the resulting changes. Added columns and
parameters are created first so their patches can refer to server-assigned
sequences.`,
		Example: `  albertctl datatemplate get DAT123 > template.json
  # edit template.json
  albertctl datatemplate update --file template.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return usageError(cmd, "--file is required")
			}

			template, err := readDataTemplateFile(file)
			if err != nil {
				return err
			}
			if template.ID == "" {
				return usageError(cmd, "the template file must carry an albertId")
			}

			client, err := loadClient()
			if err != nil {
				return err
			}
			updated, err := client.DataTemplates.Update(cmd.Context(), template)
			if err != nil {
				return err
			}
			statusf(cmd, "updated data template %s", updated.ID)
			return printResult(cmd, updated)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to the desired template state as JSON")
	return cmd
}

func readDataTemplateFile(path string) (*resources.DataTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	var template resources.DataTemplate
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&template); err != nil {
		return nil, fmt.Errorf("invalid template file %s: %w", path, err)
	}
	return &template, nil
}
