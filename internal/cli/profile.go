package cli

import (
	"github.com/spf13/cobra"
)

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Short:   "Inspect and switch configuration profiles",
		GroupID: groupUtility,
	}
	cmd.AddCommand(newProfileListCommand())
	cmd.AddCommand(newProfileUseCommand())
	cmd.AddCommand(newProfileDeleteCommand())
	return cmd
}

func newProfileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := profileService()
			if err != nil {
				return err
			}
			catalog, err := service.Catalog()
			if err != nil {
				return err
			}

			type listedProfile struct {
				Name    string `json:"name"`
				BaseURL string `json:"baseUrl"`
				Current bool   `json:"current,omitempty"`
			}
			listed := make([]listedProfile, 0, len(catalog.Profiles))
			for _, profile := range catalog.Profiles {
				listed = append(listed, listedProfile{
					Name:    profile.Name,
					BaseURL: profile.BaseURL,
					Current: profile.Name == catalog.CurrentProfile,
				})
			}
			return printResult(cmd, listed)
		},
	}
}

func newProfileUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Make a profile the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := profileService()
			if err != nil {
				return err
			}
			if err := service.SetCurrent(args[0]); err != nil {
				return err
			}
			statusf(cmd, "current profile is now %q", args[0])
			return nil
		},
	}
}

func newProfileDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a profile from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := profileService()
			if err != nil {
				return err
			}
			if err := service.Delete(args[0]); err != nil {
				return err
			}
			statusf(cmd, "deleted profile %q", args[0])
			return nil
		},
	}
}
