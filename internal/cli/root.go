// Package cli implements the albertctl command set. Commands resolve a
// configuration profile, build an API client on top of it, and print results
// as JSON, optionally filtered through a jq expression.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/albert-labs/albert-go/debugctx"
)

var (
	quietOutput  bool
	debugOutput  bool
	profileName  string
	profilesFile string
	jqExpression string
)

var rootCmd = newRootCommand()

const (
	groupUtility    = "utility"
	groupUserFacing = "user"
)

func Execute() error {
	return rootCmd.Execute()
}

func NewRootCommand() *cobra.Command {
	return newRootCommand()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "albertctl",
		Short: "Work with Albert lots, templates, and tasks from the terminal",
		Long: `albertctl talks to an Albert tenant using a named configuration profile.

Use the CLI to:
  - log in and cache an access token for a profile
  - inspect and adjust inventory lots
  - fetch and update data templates
  - list tasks matching search filters`,
		Example: `  # Log in interactively and cache the token for the default profile
  albertctl login

  # Show a lot, then move 2.5 units of it to another storage location
  albertctl lot get LOT123
  albertctl lot transfer LOT123 --to SL456 --quantity 2.5

  # List open tasks assigned to a user, keeping only id and name
  albertctl task list --status Claimed --jq '.[] | {albertId, name}'`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetHelpCommandGroupID(groupUtility)
	cmd.SetCompletionCommandGroupID(groupUtility)

	// Accept underscore spellings of multi-word flags.
	cmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	cmd.PersistentFlags().BoolVar(&quietOutput, "quiet", false, "Suppress status messages and print only command output")
	cmd.PersistentFlags().BoolVar(&debugOutput, "debug", false, "Print every HTTP request and response status")
	cmd.PersistentFlags().StringVar(&profileName, "profile", "", "Configuration profile to use (default: current profile)")
	cmd.PersistentFlags().StringVar(&profilesFile, "profiles-file", "", "Path to the profile catalog file")
	cmd.PersistentFlags().StringVar(&jqExpression, "jq", "", "Filter JSON output through a jq expression")

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if err == nil {
			return nil
		}
		return usageError(cmd, err.Error())
	})

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		ctx := debugctx.WithWriter(cmd.Context(), cmd.ErrOrStderr())
		ctx = debugctx.WithEnabled(ctx, debugOutput)
		cmd.SetContext(ctx)
	}

	cmd.AddGroup(&cobra.Group{ID: groupUserFacing, Title: "Commands:"})
	cmd.AddGroup(&cobra.Group{ID: groupUtility, Title: "Utility Commands:"})

	cmd.AddCommand(newLoginCommand())
	cmd.AddCommand(newProfileCommand())
	cmd.AddCommand(newLotCommand())
	cmd.AddCommand(newDataTemplateCommand())
	cmd.AddCommand(newTaskCommand())

	return cmd
}
