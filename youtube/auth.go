package youtube

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// DefaultTokenURI is the Google OAuth2 token endpoint used for the
// refresh-token grant.
const DefaultTokenURI = "https://oauth2.googleapis.com/token"

// ErrMissingCredentials indicates no usable OAuth credential set was
// configured. Uploading and commenting require OAuth user credentials; an
// API key alone cannot do either.
var ErrMissingCredentials = errors.New(
	"missing OAuth credentials: set YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET and YOUTUBE_REFRESH_TOKEN, or YOUTUBE_OAUTH_JSON")

// Credentials is an OAuth2 refresh-token credential set. The JSON field
// names match the YOUTUBE_OAUTH_JSON blob format.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	TokenURI     string `json:"token_uri"`
}

// Complete reports whether the credential set can mint access tokens.
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// TokenSource returns a source that exchanges the refresh token for
// short-lived access tokens, caching them until expiry.
func (c Credentials) TokenSource(ctx context.Context) oauth2.TokenSource {
	tokenURI := c.TokenURI
	if tokenURI == "" {
		tokenURI = DefaultTokenURI
	}

	conf := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURI},
	}
	return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken})
}
