package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/albert-labs/albert-go/faults"
)

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}

func decodeCatalogFile(path string) (ProfileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProfileCatalog{}, err
	}
	return decodeCatalog(data)
}

func decodeCatalog(data []byte) (ProfileCatalog, error) {
	var catalog ProfileCatalog

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil {
		return ProfileCatalog{}, validationError("invalid profile catalog yaml", err)
	}

	return catalog, nil
}

func encodeCatalog(catalog ProfileCatalog) ([]byte, error) {
	data, err := yaml.Marshal(catalog)
	if err != nil {
		return nil, internalError("failed to encode profile catalog", err)
	}
	return data, nil
}

// ResolveCatalogPath picks the profile catalog location: the explicit path,
// then ALBERT_PROFILES_FILE, then ~/.albert/profiles.yaml, with ~ expansion.
func ResolveCatalogPath(explicitPath string) (string, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(ProfilesFileEnvVar)
	}
	if path == "" {
		path = DefaultProfileCatalogPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", internalError("failed to resolve user home directory", err)
	}

	if path == "~" {
		path = homeDir
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir, strings.TrimPrefix(path, "~/"))
	}

	cleanPath := filepath.Clean(path)
	if cleanPath == "." {
		return "", validationError("profile catalog path is invalid", errors.New("resolved to current directory"))
	}
	if !filepath.IsAbs(cleanPath) {
		cleanPath = filepath.Join(homeDir, cleanPath)
	}

	return cleanPath, nil
}

func validateProfile(profile Profile) error {
	if strings.TrimSpace(profile.Name) == "" {
		return validationError("profile name is required", nil)
	}
	if strings.TrimSpace(profile.BaseURL) == "" {
		return validationError(fmt.Sprintf("profile %q requires base-url", profile.Name), nil)
	}
	if profile.Token != "" && profile.OAuth2 != nil {
		return validationError(fmt.Sprintf("profile %q must not define both token and oauth2", profile.Name), nil)
	}
	if profile.OAuth2 != nil {
		oauth := *profile.OAuth2
		if strings.TrimSpace(oauth.TokenURL) == "" ||
			strings.TrimSpace(oauth.ClientID) == "" ||
			strings.TrimSpace(oauth.ClientSecret) == "" {
			return validationError(
				fmt.Sprintf("profile %q oauth2 requires token-url, client-id, client-secret", profile.Name), nil)
		}
	}
	return nil
}

func validateCatalog(catalog ProfileCatalog) error {
	seen := make(map[string]struct{}, len(catalog.Profiles))
	for _, profile := range catalog.Profiles {
		if err := validateProfile(profile); err != nil {
			return err
		}
		if _, duplicate := seen[profile.Name]; duplicate {
			return validationError(fmt.Sprintf("duplicate profile %q", profile.Name), nil)
		}
		seen[profile.Name] = struct{}{}
	}
	if catalog.CurrentProfile != "" {
		if _, found := seen[catalog.CurrentProfile]; !found {
			return validationError(fmt.Sprintf("current-profile %q does not exist", catalog.CurrentProfile), nil)
		}
	}
	return nil
}

func findProfileIndex(profiles []Profile, name string) int {
	for i, profile := range profiles {
		if profile.Name == name {
			return i
		}
	}
	return -1
}
