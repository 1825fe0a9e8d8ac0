package cli

import (
	"errors"
	"os"

	albert "github.com/albert-labs/albert-go"
	"github.com/albert-labs/albert-go/config"
	"github.com/albert-labs/albert-go/internal/tokencache"
)

const (
	envTokenPassphrase    = "ALBERT_TOKEN_PASSPHRASE"
	defaultTokenCacheFile = "~/.albert/tokens.enc"
)

func profileService() (*config.FileProfileService, error) {
	return config.NewFileProfileService(profilesFile)
}

func resolveProfile() (config.Profile, error) {
	service, err := profileService()
	if err != nil {
		return config.Profile{}, err
	}
	return service.Resolve(profileName)
}

// loadClient builds an API client for the selected profile. A profile that
// carries neither a token nor oauth2 credentials authenticates with the
// token cached by a previous login.
func loadClient() (*albert.Client, error) {
	profile, err := resolveProfile()
	if err != nil {
		return nil, err
	}

	if profile.Token == "" && profile.OAuth2 == nil {
		cached, err := cachedToken(profile)
		if err != nil {
			return nil, err
		}
		profile.Token = cached
	}

	return albert.NewFromProfile(profile)
}

func cachedToken(profile config.Profile) (string, error) {
	cache, err := openTokenCache(profile, os.Getenv(envTokenPassphrase))
	if err != nil {
		return "", err
	}
	entry, err := cache.Get(profile.Name)
	if err != nil {
		return "", err
	}
	return entry.Token, nil
}

func openTokenCache(profile config.Profile, passphrase string) (*tokencache.Cache, error) {
	if passphrase == "" {
		return nil, errors.New(envTokenPassphrase + " is not set; run \"albertctl login\" or export the passphrase")
	}
	path := profile.TokenCacheFile
	if path == "" {
		path = defaultTokenCacheFile
	}
	resolved, err := expandHomePath(path)
	if err != nil {
		return nil, err
	}
	return tokencache.New(resolved, passphrase)
}
