// Package storage persists the two JSON state files that carry the system's
// memory across scheduled runs: the post-state (videos already uploaded) and
// the comment-state (videos already commented on).
//
// Both stores hold an exclusive advisory lock for their lifetime and write
// atomically via temp file + rename, so a crashed run never leaves a
// half-written state file behind.
package storage

import "time"

const stateVersion = 1

// Upload results recorded in the post-state.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// Comment statuses recorded in the comment-state.
//
// commented is terminal. commented_unverified is re-checked after a delay
// and either promoted to commented or, after enough failed verifications,
// cleared so the video becomes eligible again. skipped retries after a
// cooldown.
const (
	CommentStatusCommented  = "commented"
	CommentStatusUnverified = "commented_unverified"
	CommentStatusSkipped    = "skipped"
)

// Rotation tracks the daily manifest rotation for the uploader.
// The starting manifest index advances once per UTC day.
type Rotation struct {
	ManifestIndex int    `json:"manifest_index"`
	LastDay       string `json:"last_day"` // YYYY-MM-DD, UTC
}

// UploadRecord is the per-video upload outcome, keyed by the manifest
// entry's video URL.
type UploadRecord struct {
	VideoURL       string    `json:"video_url"`
	Filename       string    `json:"filename,omitempty"`
	Manifest       string    `json:"manifest,omitempty"`
	Title          string    `json:"title,omitempty"`
	DestinationURL string    `json:"destination_url,omitempty"`
	Result         string    `json:"result"`
	Attempts       int       `json:"attempts"`
	VideoID        string    `json:"video_id,omitempty"`
	Error          string    `json:"error,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UploadRun is one entry in the post-state's append-only run log.
type UploadRun struct {
	ID       string    `json:"id"`
	At       time.Time `json:"ts"`
	VideoURL string    `json:"video_url"`
	Manifest string    `json:"manifest,omitempty"`
	Result   string    `json:"result"`
	VideoID  string    `json:"video_id,omitempty"`
}

// CommentRecord is the per-video comment outcome, keyed by YouTube video ID.
type CommentRecord struct {
	Status         string    `json:"comment_status"`
	CommentID      string    `json:"comment_id,omitempty"`
	Text           string    `json:"comment_text,omitempty"`
	Attempts       int       `json:"comment_attempts"`
	VerifyAttempts int       `json:"verify_attempts,omitempty"`
	CommentedAt    time.Time `json:"commented_at"`
	VerifiedAt     time.Time `json:"verified_at"`
	VerifyAfter    time.Time `json:"verify_after"`
	RetryAfter     time.Time `json:"retry_after"`
	Error          string    `json:"error,omitempty"`
}

// CommentRun is one entry in the comment-state's append-only run log.
type CommentRun struct {
	ID        string    `json:"id"`
	At        time.Time `json:"ts"`
	VideoID   string    `json:"video_id"`
	Result    string    `json:"result"`
	CommentID string    `json:"comment_id,omitempty"`
}
