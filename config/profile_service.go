package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileProfileService persists the profile catalog as a YAML file. A missing
// file reads as an empty catalog; writes create the parent directory.
type FileProfileService struct {
	catalogPath string
}

func NewFileProfileService(path string) (*FileProfileService, error) {
	resolved, err := ResolveCatalogPath(path)
	if err != nil {
		return nil, err
	}
	return &FileProfileService{catalogPath: resolved}, nil
}

func (s *FileProfileService) Path() string {
	return s.catalogPath
}

func (s *FileProfileService) Catalog() (ProfileCatalog, error) {
	catalog, err := decodeCatalogFile(s.catalogPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ProfileCatalog{}, nil
		}
		return ProfileCatalog{}, err
	}
	if err := validateCatalog(catalog); err != nil {
		return ProfileCatalog{}, err
	}
	return catalog, nil
}

func (s *FileProfileService) saveCatalog(catalog ProfileCatalog) error {
	if err := validateCatalog(catalog); err != nil {
		return err
	}

	data, err := encodeCatalog(catalog)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.catalogPath), 0o700); err != nil {
		return internalError("failed to create profile catalog directory", err)
	}
	if err := os.WriteFile(s.catalogPath, data, 0o600); err != nil {
		return internalError("failed to write profile catalog", err)
	}
	return nil
}

func (s *FileProfileService) Create(profile Profile) error {
	if err := validateProfile(profile); err != nil {
		return err
	}

	catalog, err := s.Catalog()
	if err != nil {
		return err
	}
	if findProfileIndex(catalog.Profiles, profile.Name) >= 0 {
		return validationError(fmt.Sprintf("profile %q already exists", profile.Name), nil)
	}

	catalog.Profiles = append(catalog.Profiles, profile)
	if catalog.CurrentProfile == "" {
		catalog.CurrentProfile = profile.Name
	}
	return s.saveCatalog(catalog)
}

func (s *FileProfileService) Update(profile Profile) error {
	if err := validateProfile(profile); err != nil {
		return err
	}

	catalog, err := s.Catalog()
	if err != nil {
		return err
	}
	idx := findProfileIndex(catalog.Profiles, profile.Name)
	if idx < 0 {
		return notFoundError(fmt.Sprintf("profile %q not found", profile.Name))
	}

	catalog.Profiles[idx] = profile
	return s.saveCatalog(catalog)
}

func (s *FileProfileService) Delete(name string) error {
	catalog, err := s.Catalog()
	if err != nil {
		return err
	}
	idx := findProfileIndex(catalog.Profiles, name)
	if idx < 0 {
		return notFoundError(fmt.Sprintf("profile %q not found", name))
	}

	catalog.Profiles = append(catalog.Profiles[:idx], catalog.Profiles[idx+1:]...)
	if catalog.CurrentProfile == name {
		if len(catalog.Profiles) == 0 {
			catalog.CurrentProfile = ""
		} else {
			catalog.CurrentProfile = catalog.Profiles[0].Name
		}
	}
	return s.saveCatalog(catalog)
}

func (s *FileProfileService) SetCurrent(name string) error {
	catalog, err := s.Catalog()
	if err != nil {
		return err
	}
	if findProfileIndex(catalog.Profiles, name) < 0 {
		return notFoundError(fmt.Sprintf("profile %q not found", name))
	}

	catalog.CurrentProfile = name
	return s.saveCatalog(catalog)
}

// Resolve returns the selected profile with ALBERT_* environment overrides
// applied. An empty name selects current-profile; when the catalog has no
// usable profile, a complete set of environment variables stands in for one.
func (s *FileProfileService) Resolve(name string) (Profile, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return Profile{}, err
	}

	if name == "" {
		name = os.Getenv(EnvProfile)
	}
	if name == "" {
		name = catalog.CurrentProfile
	}

	var profile Profile
	if name != "" {
		idx := findProfileIndex(catalog.Profiles, name)
		if idx < 0 {
			return Profile{}, notFoundError(fmt.Sprintf("profile %q not found", name))
		}
		profile = catalog.Profiles[idx]
	} else {
		profile = Profile{Name: "env"}
	}

	applyEnvOverrides(&profile)

	if err := validateProfile(profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func applyEnvOverrides(profile *Profile) {
	if value := os.Getenv(EnvBaseURL); value != "" {
		profile.BaseURL = value
	}
	if value := os.Getenv(EnvToken); value != "" {
		profile.Token = value
		profile.OAuth2 = nil
	}

	tokenURL := os.Getenv(EnvTokenURL)
	clientID := os.Getenv(EnvClientID)
	clientSecret := os.Getenv(EnvClientSecret)
	if tokenURL != "" || clientID != "" || clientSecret != "" {
		oauth := OAuth2{}
		if profile.OAuth2 != nil {
			oauth = *profile.OAuth2
		}
		if tokenURL != "" {
			oauth.TokenURL = tokenURL
		}
		if clientID != "" {
			oauth.ClientID = clientID
		}
		if clientSecret != "" {
			oauth.ClientSecret = clientSecret
		}
		if value := os.Getenv(EnvScope); value != "" {
			oauth.Scope = value
		}
		profile.OAuth2 = &oauth
		profile.Token = ""
	}
}
