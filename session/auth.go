package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Refresh this long before the token actually expires.
const tokenExpiryBuffer = time.Minute

type authMode int

const (
	authModeUnknown authMode = iota
	authModeBearer
	authModeOAuth2
)

type authConfig struct {
	mode            authMode
	bearerToken     string
	bearerExpiresAt time.Time
	oauth2          OAuth2Config
}

func buildAuthConfig(cfg Config) (authConfig, error) {
	hasToken := strings.TrimSpace(cfg.Token) != ""
	hasOAuth := cfg.OAuth2 != nil

	switch {
	case hasToken && hasOAuth:
		return authConfig{}, validationError("config must define exactly one of token and oauth2", nil)
	case hasToken:
		expiresAt, _ := TokenExpiry(cfg.Token)
		return authConfig{
			mode:            authModeBearer,
			bearerToken:     strings.TrimSpace(cfg.Token),
			bearerExpiresAt: expiresAt,
		}, nil
	case hasOAuth:
		oauth := *cfg.OAuth2
		if strings.TrimSpace(oauth.TokenURL) == "" ||
			strings.TrimSpace(oauth.ClientID) == "" ||
			strings.TrimSpace(oauth.ClientSecret) == "" {
			return authConfig{}, validationError("oauth2 config requires token URL, client id and client secret", nil)
		}
		tokenURL, err := url.Parse(oauth.TokenURL)
		if err != nil || tokenURL.Scheme == "" || tokenURL.Host == "" {
			return authConfig{}, validationError("oauth2 token URL is invalid", err)
		}
		return authConfig{mode: authModeOAuth2, oauth2: oauth}, nil
	default:
		return authConfig{}, validationError("config must define a token or oauth2 credentials", nil)
	}
}

func (s *Session) applyAuth(ctx context.Context, request *http.Request) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}
	request.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (s *Session) token(ctx context.Context) (string, error) {
	s.tokenMu.Lock()
	if s.accessToken != "" && (s.tokenExpiresAt.IsZero() || time.Now().Before(s.tokenExpiresAt.Add(-tokenExpiryBuffer))) {
		token := s.accessToken
		s.tokenMu.Unlock()
		return token, nil
	}
	if s.auth.mode != authModeOAuth2 {
		token := s.accessToken
		s.tokenMu.Unlock()
		if token == "" {
			return "", authError("no access token configured", nil)
		}
		// An expired static token cannot be refreshed; send it anyway and
		// let the server reject it.
		return token, nil
	}
	s.tokenMu.Unlock()

	return s.refreshToken(ctx)
}

func (s *Session) refreshToken(ctx context.Context) (string, error) {
	formValues := url.Values{}
	formValues.Set("grant_type", "client_credentials")
	formValues.Set("client_id", s.auth.oauth2.ClientID)
	formValues.Set("client_secret", s.auth.oauth2.ClientSecret)
	if strings.TrimSpace(s.auth.oauth2.Scope) != "" {
		formValues.Set("scope", s.auth.oauth2.Scope)
	}

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.auth.oauth2.TokenURL,
		strings.NewReader(formValues.Encode()),
	)
	if err != nil {
		return "", internalError("failed to create oauth2 token request", err)
	}
	request.Header.Set("Accept", defaultMediaType)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := s.doRequest(ctx, request)
	if err != nil {
		return "", transportError("oauth2 token request failed", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return "", transportError("failed to read oauth2 token response", err)
	}

	if response.StatusCode >= http.StatusBadRequest {
		return "", authError(
			fmt.Sprintf("oauth2 token request failed with status %d: %s", response.StatusCode, summarizeBody(body)),
			nil,
		)
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResponse); err != nil {
		return "", authError("oauth2 token response is not valid JSON", err)
	}
	if strings.TrimSpace(tokenResponse.AccessToken) == "" {
		return "", authError("oauth2 token response does not include access_token", nil)
	}

	expiresAt := time.Now().Add(time.Hour)
	if tokenResponse.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(tokenResponse.ExpiresIn) * time.Second)
	} else if fromClaims, err := TokenExpiry(tokenResponse.AccessToken); err == nil && !fromClaims.IsZero() {
		expiresAt = fromClaims
	}

	s.tokenMu.Lock()
	s.accessToken = tokenResponse.AccessToken
	s.tokenExpiresAt = expiresAt
	s.tokenMu.Unlock()

	return tokenResponse.AccessToken, nil
}

// Subject returns the sub claim of the session's current access token,
// refreshing it first when needed. It identifies the user or service account
// the session acts as.
func (s *Session) Subject(ctx context.Context) (string, error) {
	token, err := s.token(ctx)
	if err != nil {
		return "", err
	}
	return TokenSubject(token)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The session only needs the expiry to decide when to refresh; verification
// is the server's job.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return time.Time{}, authError("token is not a valid JWT", err)
	}
	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return time.Time{}, nil
	}
	return expiresAt.Time, nil
}

// TokenSubject reads the sub claim of a JWT without verifying it; the CLI
// uses it to key cached tokens per user.
func TokenSubject(token string) (string, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return "", authError("token is not a valid JWT", err)
	}
	subject, err := claims.GetSubject()
	if err != nil {
		return "", nil
	}
	return subject, nil
}
