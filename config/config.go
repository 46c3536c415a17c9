// Package config manages application configuration.
//
// Everything is driven by environment variables so the binaries can run
// under a bare cron-style job runner. Two credential shapes are supported:
// the discrete YOUTUBE_CLIENT_ID / YOUTUBE_CLIENT_SECRET /
// YOUTUBE_REFRESH_TOKEN triple, or a single YOUTUBE_OAUTH_JSON blob.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"ytpost/retry"
	"ytpost/youtube"
)

// Config holds all application configuration.
type Config struct {
	// Paths
	ManifestDir      string   `env:"YTPOST_MANIFEST_DIR" envDefault:"manifests"`
	PostStatePath    string   `env:"YTPOST_POST_STATE" envDefault:"state/youtube_post_state.json"`
	CommentStatePath string   `env:"YTPOST_COMMENT_STATE" envDefault:"state/youtube_comment_state.json"`
	ManifestOrder    []string `env:"YTPOST_MANIFEST_ORDER" envDefault:"drywall.json,wood.json,wet.json,metal.json,plastic.json"`

	// OAuth credentials, Option A: discrete triple
	ClientID     string `env:"YOUTUBE_CLIENT_ID"`
	ClientSecret string `env:"YOUTUBE_CLIENT_SECRET"`
	RefreshToken string `env:"YOUTUBE_REFRESH_TOKEN"`
	TokenURI     string `env:"YOUTUBE_TOKEN_URI" envDefault:"https://oauth2.googleapis.com/token"`
	// OAuth credentials, Option B: single JSON blob; takes precedence
	OAuthJSON string `env:"YOUTUBE_OAUTH_JSON"`

	// Video metadata defaults
	PrivacyStatus string   `env:"YTPOST_PRIVACY_STATUS" envDefault:"public"`
	CategoryID    string   `env:"YTPOST_CATEGORY_ID" envDefault:"26"` // 26 = Howto & Style
	MadeForKids   bool     `env:"YTPOST_MADE_FOR_KIDS" envDefault:"false"`
	Tags          []string `env:"YTPOST_TAGS" envDefault:"sanding,sandpaper"`

	// Dry-run toggles, one per command
	UploadDryRun  bool `env:"YTPOST_UPLOAD_DRY_RUN" envDefault:"false"`
	CommentDryRun bool `env:"YTPOST_COMMENT_DRY_RUN" envDefault:"false"`

	// Commenting behavior
	CommentJitterMaxSec int      `env:"YTPOST_COMMENT_JITTER_MAX" envDefault:"0"`
	CommentProbability  float64  `env:"YTPOST_COMMENT_PROBABILITY" envDefault:"1.0"`
	CommentTemplates    []string `env:"YTPOST_COMMENT_TEMPLATES" envSeparator:"|"`

	// Upload behavior
	DownloadTimeout time.Duration `env:"YTPOST_DOWNLOAD_TIMEOUT" envDefault:"10m"`
	RequestTimeout  time.Duration `env:"YTPOST_REQUEST_TIMEOUT" envDefault:"60s"`

	// In-run retries for transient API errors. Zero by default: a failed run
	// exits non-zero without touching state and the next scheduled run is
	// the retry.
	MaxRetries     int           `env:"YTPOST_MAX_RETRIES" envDefault:"0"`
	InitialBackoff time.Duration `env:"YTPOST_INITIAL_BACKOFF" envDefault:"1s"`
	MaxBackoff     time.Duration `env:"YTPOST_MAX_BACKOFF" envDefault:"30s"`
}

// Load parses configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration validity. Credential presence is checked
// separately by Credentials, since dry runs never need a token.
func (c *Config) Validate() error {
	switch c.PrivacyStatus {
	case "public", "unlisted", "private":
	default:
		return fmt.Errorf("privacy status must be public, unlisted, or private, got %q", c.PrivacyStatus)
	}
	if c.CategoryID == "" {
		return fmt.Errorf("category id must not be empty")
	}
	if c.CommentJitterMaxSec < 0 {
		return fmt.Errorf("comment jitter max must be non-negative")
	}
	if c.CommentProbability < 0 || c.CommentProbability > 1 {
		return fmt.Errorf("comment probability must be in [0, 1]")
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("download timeout must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial backoff must be positive")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max backoff must be >= initial backoff")
	}
	return nil
}

// Credentials resolves the OAuth credential set from the environment.
// A non-empty YOUTUBE_OAUTH_JSON blob wins over the discrete triple.
// Returns youtube.ErrMissingCredentials when neither shape is usable.
func (c *Config) Credentials() (youtube.Credentials, error) {
	if blob := strings.TrimSpace(c.OAuthJSON); blob != "" {
		var creds youtube.Credentials
		if err := json.Unmarshal([]byte(blob), &creds); err != nil {
			return youtube.Credentials{}, fmt.Errorf("parse YOUTUBE_OAUTH_JSON: %w", err)
		}
		if creds.TokenURI == "" {
			creds.TokenURI = c.TokenURI
		}
		if creds.TokenURI == "" {
			creds.TokenURI = youtube.DefaultTokenURI
		}
		if !creds.Complete() {
			return youtube.Credentials{}, youtube.ErrMissingCredentials
		}
		return creds, nil
	}

	creds := youtube.Credentials{
		ClientID:     strings.TrimSpace(c.ClientID),
		ClientSecret: strings.TrimSpace(c.ClientSecret),
		RefreshToken: strings.TrimSpace(c.RefreshToken),
		TokenURI:     strings.TrimSpace(c.TokenURI),
	}
	if creds.TokenURI == "" {
		creds.TokenURI = youtube.DefaultTokenURI
	}
	if !creds.Complete() {
		return youtube.Credentials{}, youtube.ErrMissingCredentials
	}
	return creds, nil
}

// CommentJitterMax returns the jitter bound as a duration.
func (c *Config) CommentJitterMax() time.Duration {
	return time.Duration(c.CommentJitterMaxSec) * time.Second
}

// RetryConfig returns the retry settings for remote API calls.
func (c *Config) RetryConfig() retry.Config {
	rc := retry.DefaultConfig()
	rc.MaxRetries = c.MaxRetries
	rc.InitialBackoff = c.InitialBackoff
	rc.MaxBackoff = c.MaxBackoff
	return rc
}
