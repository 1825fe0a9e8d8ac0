package cli

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	albert "github.com/albert-labs/albert-go"
	"github.com/albert-labs/albert-go/config"
	"github.com/albert-labs/albert-go/faults"
	"github.com/albert-labs/albert-go/internal/tokencache"
	"github.com/albert-labs/albert-go/session"
)

func newLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Authenticate against an Albert tenant and cache the token",
		GroupID: groupUserFacing,
		Long: `Login prompts for an endpoint and an access token, verifies them against
the tenant, and caches the token encrypted on disk. The profile itself is
stored in the profile catalog without any credential; later commands unlock
the cached token with the passphrase.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	service, err := profileService()
	if err != nil {
		return err
	}

	prompt := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	name := profileName
	if name == "" {
		name, err = prompt.required("Profile name")
		if err != nil {
			return err
		}
	}

	existing, baseURL := existingProfile(service, name)
	if baseURL != "" {
		statusf(cmd, "profile %q currently targets %s", name, baseURL)
		entered, err := prompt.optional("Base URL (empty keeps current)")
		if err != nil {
			return err
		}
		if entered != "" {
			baseURL = entered
		}
	} else {
		baseURL, err = prompt.required("Base URL")
		if err != nil {
			return err
		}
	}

	token, err := prompt.requiredSecret("Access token")
	if err != nil {
		return err
	}

	passphrase := os.Getenv(envTokenPassphrase)
	if passphrase == "" {
		passphrase, err = prompt.requiredSecret("Token cache passphrase")
		if err != nil {
			return err
		}
	}

	profile := config.Profile{Name: name, BaseURL: baseURL}
	if existing != nil {
		profile.DefaultHeaders = existing.DefaultHeaders
		profile.TokenCacheFile = existing.TokenCacheFile
	}

	user, err := verifyLogin(cmd, profile, token)
	if err != nil {
		return err
	}

	expiresAt, err := session.TokenExpiry(token)
	if err != nil {
		return err
	}

	cache, err := openTokenCache(profile, passphrase)
	if err != nil {
		return err
	}
	if err := cache.Put(profile.Name, tokencache.Entry{Token: token, ExpiresAt: expiresAt}); err != nil {
		return err
	}

	if err := saveProfile(service, profile, existing != nil); err != nil {
		return err
	}
	if err := service.SetCurrent(profile.Name); err != nil {
		return err
	}

	if !expiresAt.IsZero() {
		statusf(cmd, "logged in as %s (token expires %s)", user, expiresAt.Format(time.RFC3339))
	} else {
		statusf(cmd, "logged in as %s", user)
	}
	return nil
}

func existingProfile(service *config.FileProfileService, name string) (*config.Profile, string) {
	catalog, err := service.Catalog()
	if err != nil {
		return nil, ""
	}
	for i := range catalog.Profiles {
		if catalog.Profiles[i].Name == name {
			return &catalog.Profiles[i], catalog.Profiles[i].BaseURL
		}
	}
	return nil, ""
}

// verifyLogin makes one authenticated request before anything is persisted.
func verifyLogin(cmd *cobra.Command, profile config.Profile, token string) (string, error) {
	probe := profile
	probe.Token = token
	client, err := albert.NewFromProfile(probe)
	if err != nil {
		return "", err
	}
	user, err := client.Users.Current(cmd.Context())
	if err != nil {
		if faults.IsCategory(err, faults.AuthError) {
			return "", errors.New("the token was rejected by " + profile.BaseURL)
		}
		return "", err
	}
	if user.Email != "" {
		return user.Email, nil
	}
	return user.Name, nil
}

func saveProfile(service *config.FileProfileService, profile config.Profile, exists bool) error {
	if exists {
		return service.Update(profile)
	}
	return service.Create(profile)
}
