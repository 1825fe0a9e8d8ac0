package config

const (
	ProfilesFileEnvVar        = "ALBERT_PROFILES_FILE"
	DefaultProfileCatalogPath = "~/.albert/profiles.yaml"

	EnvProfile      = "ALBERT_PROFILE"
	EnvBaseURL      = "ALBERT_BASE_URL"
	EnvToken        = "ALBERT_TOKEN"
	EnvTokenURL     = "ALBERT_TOKEN_URL"
	EnvClientID     = "ALBERT_CLIENT_ID"
	EnvClientSecret = "ALBERT_CLIENT_SECRET"
	EnvScope        = "ALBERT_SCOPE"
)

type ProfileCatalog struct {
	Profiles       []Profile `yaml:"profiles"`
	CurrentProfile string    `yaml:"current-profile,omitempty"`
}

// Profile is one named Albert endpoint. Token and OAuth2 are mutually
// exclusive; a profile with neither relies on a cached login token.
type Profile struct {
	Name           string            `yaml:"name"`
	BaseURL        string            `yaml:"base-url"`
	Token          string            `yaml:"token,omitempty"`
	OAuth2         *OAuth2           `yaml:"oauth2,omitempty"`
	DefaultHeaders map[string]string `yaml:"default-headers,omitempty"`
	TokenCacheFile string            `yaml:"token-cache-file,omitempty"`
}

type OAuth2 struct {
	TokenURL     string `yaml:"token-url"`
	ClientID     string `yaml:"client-id"`
	ClientSecret string `yaml:"client-secret"`
	Scope        string `yaml:"scope,omitempty"`
}
