// Package commenter implements the comment-one-per-run job: find the most
// recent successful upload that still needs a top-level comment, wait a
// random jitter delay, and post (or verify) exactly one comment.
package commenter

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"ytpost/config"
	"ytpost/storage"
	"ytpost/youtube"
)

// Posting policy. Verification runs well after the post so the API has had
// time to settle (comments occasionally vanish in moderation).
const (
	verifyDelay   = 30 * time.Minute
	verifyMaxTry  = 3
	retryCooldown = time.Hour
)

// DefaultTemplates are the built-in comment templates. `{grit}` and
// `{surface}` slots are filled per video. Overridable via
// YTPOST_COMMENT_TEMPLATES.
var DefaultTemplates = []string{
	"Light pressure with {grit} grit usually blends faster than pushing hard—let the abrasive do the cutting. Are you sanding wood, metal, drywall, or paint today?",
	"If the scratch pattern looks uneven, do a few light crosshatch passes and re-check under side light. Are you sanding wet or dry on {surface}?",
	"Keep the sanding block flat so you don't dig grooves at the edges—especially on corners and seams.",
	"For {surface} work, feather the edges first, then refine the center so the blend disappears.",
	"If the paper loads up, rinse or replace it—clean paper cuts cleaner.",
}

// CommentAPI is the remote surface the commenter needs.
// *youtube.Client satisfies it; tests substitute a fake.
type CommentAPI interface {
	PostComment(ctx context.Context, videoID, text string) (string, error)
	CommentExists(ctx context.Context, commentID string) (bool, error)
}

// Actions reported by Run.
const (
	ActionCommented = "commented"
	ActionVerified  = "verified"
	ActionSkipped   = "skipped"
	ActionDryRun    = "dry-run"
	ActionNoop      = "noop"
)

// Result is the outcome of one commenter run.
type Result struct {
	Action    string
	VideoID   string
	CommentID string
}

// Commenter performs one batch-of-one comment run.
type Commenter struct {
	cfg      *config.Config
	posts    *storage.PostStore
	comments *storage.CommentStore
	api      CommentAPI
	log      *slog.Logger

	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
	randFloat func() float64
	randDur   func(max time.Duration) time.Duration
}

// New builds a commenter. api may be nil for dry runs; it is never touched
// before the dry-run guard.
func New(cfg *config.Config, posts *storage.PostStore, comments *storage.CommentStore, api CommentAPI, log *slog.Logger) *Commenter {
	if log == nil {
		log = slog.Default()
	}
	return &Commenter{
		cfg:       cfg,
		posts:     posts,
		comments:  comments,
		api:       api,
		log:       log,
		now:       time.Now,
		sleep:     sleepCtx,
		randFloat: rand.Float64,
		randDur: func(max time.Duration) time.Duration {
			if max <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(int64(max) + 1))
		},
	}
}

type candidate struct {
	videoID  string
	manifest string
	rec      storage.CommentRecord
}

// Run posts or verifies at most one comment. No eligible video is a benign
// no-op that leaves the comment-state untouched.
func (c *Commenter) Run(ctx context.Context) (*Result, error) {
	cand, ok := c.pick()
	if !ok {
		c.log.Info("no eligible video to comment on")
		return &Result{Action: ActionNoop}, nil
	}

	if c.cfg.CommentDryRun {
		c.log.Info("dry run: would comment",
			slog.String("video_id", cand.videoID),
			slog.String("status", cand.rec.Status),
		)
		return &Result{Action: ActionDryRun, VideoID: cand.videoID}, nil
	}

	// Jitter avoids a predictable posting cadence right after the
	// scheduler fires.
	if d := c.randDur(c.cfg.CommentJitterMax()); d > 0 {
		c.log.Info("jitter sleep", slog.Duration("duration", d))
		if err := c.sleep(ctx, d); err != nil {
			return nil, err
		}
	}

	if cand.rec.Status == storage.CommentStatusUnverified {
		return c.verify(ctx, cand)
	}
	return c.post(ctx, cand)
}

// pick walks successful uploads newest-first and returns the first video
// whose comment record allows action now.
func (c *Commenter) pick() (candidate, bool) {
	now := c.now()

	for _, run := range c.posts.SuccessRuns() {
		vid := run.VideoID
		if vid == "" {
			vid = youtube.ExtractVideoID(run.VideoURL)
		}
		if vid == "" {
			continue
		}

		manifestName := run.Manifest
		if rec, ok := c.posts.Record(run.VideoURL); ok && rec.Manifest != "" {
			manifestName = rec.Manifest
		}

		rec, exists := c.comments.Record(vid)
		if !exists {
			return candidate{videoID: vid, manifest: manifestName}, true
		}

		switch rec.Status {
		case storage.CommentStatusCommented:
			continue // done forever
		case storage.CommentStatusUnverified:
			if now.Before(rec.VerifyAfter) {
				continue
			}
			return candidate{videoID: vid, manifest: manifestName, rec: rec}, true
		case storage.CommentStatusSkipped:
			if now.Before(rec.RetryAfter) {
				continue
			}
			return candidate{videoID: vid, manifest: manifestName, rec: rec}, true
		default:
			return candidate{videoID: vid, manifest: manifestName, rec: rec}, true
		}
	}

	return candidate{}, false
}

// verify re-checks an unverified comment. Found promotes it to commented;
// after verifyMaxTry misses the record is cleared so the video reopens.
func (c *Commenter) verify(ctx context.Context, cand candidate) (*Result, error) {
	rec := cand.rec
	tries := rec.VerifyAttempts + 1

	found, err := c.api.CommentExists(ctx, rec.CommentID)
	if err != nil {
		// No state mutation; next run re-verifies.
		return nil, err
	}

	if found {
		rec.Status = storage.CommentStatusCommented
		rec.VerifiedAt = c.now()
		c.comments.SetRecord(cand.videoID, rec)
		c.log.Info("comment verified", slog.String("video_id", cand.videoID), slog.String("comment_id", rec.CommentID))
	} else if tries >= verifyMaxTry {
		// Comment never materialized; reopen the slot for a repost.
		c.comments.DeleteRecord(cand.videoID)
		c.log.Warn("comment verification exhausted, will repost later", slog.String("video_id", cand.videoID))
	} else {
		rec.VerifyAttempts = tries
		rec.VerifyAfter = c.now().Add(verifyDelay)
		c.comments.SetRecord(cand.videoID, rec)
		c.log.Info("comment verification rescheduled", slog.String("video_id", cand.videoID), slog.Int("attempts", tries))
	}

	if err := c.comments.Save(); err != nil {
		return nil, err
	}
	return &Result{Action: ActionVerified, VideoID: cand.videoID, CommentID: rec.CommentID}, nil
}

// post applies the comment probability, renders a deterministic template for
// the video, and inserts the comment.
func (c *Commenter) post(ctx context.Context, cand candidate) (*Result, error) {
	rec := cand.rec

	if p := c.cfg.CommentProbability; p < 1.0 && c.randFloat() >= p {
		rec.Status = storage.CommentStatusSkipped
		rec.RetryAfter = c.now().Add(retryCooldown)
		c.comments.SetRecord(cand.videoID, rec)
		if err := c.comments.Save(); err != nil {
			return nil, err
		}
		c.log.Info("comment skipped by probability", slog.String("video_id", cand.videoID))
		return &Result{Action: ActionSkipped, VideoID: cand.videoID}, nil
	}

	text := c.render(cand)

	commentID, err := c.api.PostComment(ctx, cand.videoID, text)
	if err != nil {
		// State stays untouched on failure; the next run retries.
		return nil, err
	}

	now := c.now()
	rec.Status = storage.CommentStatusUnverified
	rec.CommentID = commentID
	rec.Text = text
	rec.Attempts++
	rec.CommentedAt = now
	rec.VerifyAfter = now.Add(verifyDelay)
	rec.Error = ""
	c.comments.SetRecord(cand.videoID, rec)
	c.comments.AppendRun(storage.CommentRun{
		ID:        uuid.NewString(),
		At:        now.UTC(),
		VideoID:   cand.videoID,
		Result:    storage.CommentStatusUnverified,
		CommentID: commentID,
	})
	if err := c.comments.Save(); err != nil {
		return nil, err
	}

	c.log.Info("comment posted", slog.String("video_id", cand.videoID), slog.String("comment_id", commentID))
	return &Result{Action: ActionCommented, VideoID: cand.videoID, CommentID: commentID}, nil
}

// render picks a template deterministically per video and fills its slots.
func (c *Commenter) render(cand candidate) string {
	templates := c.cfg.CommentTemplates
	if len(templates) == 0 {
		templates = DefaultTemplates
	}

	tpl := templates[stableIndex(cand.videoID, len(templates))]
	return strings.NewReplacer(
		"{grit}", "this",
		"{surface}", surfaceFromManifest(cand.manifest),
	).Replace(tpl)
}

// stableIndex maps a video ID to a template index that never changes for
// that video, so retries repost the same text.
func stableIndex(seed string, n int) int {
	if n <= 1 {
		return 0
	}
	h := sha256.Sum256([]byte(seed))
	src := rand.NewSource(int64(binary.BigEndian.Uint32(h[:4])))
	return rand.New(src).Intn(n)
}

func surfaceFromManifest(name string) string {
	s := strings.ToLower(strings.TrimSuffix(name, ".json"))
	if s == "" {
		return "surface"
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
