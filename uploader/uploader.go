// Package uploader implements the upload-one-video-per-run job: scan the
// manifest directory, pick the first eligible entry, upload it, and record
// the outcome in the post-state.
package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ytpost/config"
	"ytpost/manifest"
	"ytpost/metadata"
	"ytpost/retry"
	"ytpost/storage"
	"ytpost/youtube"
)

const mimeType = "video/mp4"

// Publisher uploads one video and returns its platform video ID.
// *youtube.Client satisfies it; tests substitute a fake.
type Publisher interface {
	Upload(ctx context.Context, req youtube.UploadRequest) (string, error)
}

// Downloader fetches the manifest media URL into a local file.
type Downloader func(ctx context.Context, rawURL, dest string) error

// Actions reported by Run.
const (
	ActionUploaded = "uploaded"
	ActionDryRun   = "dry-run"
	ActionNoop     = "noop"
)

// Result is the outcome of one uploader run.
type Result struct {
	Action  string
	VideoID string
	Item    *manifest.Item
}

// Uploader performs one batch-of-one upload run.
type Uploader struct {
	cfg   *config.Config
	store *storage.PostStore
	pub   Publisher
	fetch Downloader
	log   *slog.Logger
	now   func() time.Time
}

// New builds an uploader. pub and fetch may be nil for dry runs; they are
// never touched before the dry-run guard.
func New(cfg *config.Config, store *storage.PostStore, pub Publisher, fetch Downloader, log *slog.Logger) *Uploader {
	if log == nil {
		log = slog.Default()
	}
	return &Uploader{
		cfg:   cfg,
		store: store,
		pub:   pub,
		fetch: fetch,
		log:   log,
		now:   time.Now,
	}
}

// Run uploads at most one video. No eligible work is a benign no-op that
// leaves the state file untouched. An upload failure is returned without
// mutating state, so the next scheduled run retries the same entry.
func (u *Uploader) Run(ctx context.Context) (*Result, error) {
	rot := u.rotate()

	items, err := manifest.ReadDir(u.cfg.ManifestDir, rotatedOrder(u.cfg.ManifestOrder, rot.ManifestIndex))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		u.log.Info("no manifest items found", slog.String("dir", u.cfg.ManifestDir))
		return &Result{Action: ActionNoop}, nil
	}

	item, ok := u.pick(items)
	if !ok {
		u.log.Info("no eligible video to post", slog.Int("manifest_items", len(items)))
		return &Result{Action: ActionNoop}, nil
	}

	title := metadata.Title(item.Title)
	description := metadata.Description(item)
	tags := metadata.Tags(item, u.cfg.Tags)

	if u.cfg.UploadDryRun {
		u.log.Info("dry run: would upload",
			slog.String("manifest", item.Manifest),
			slog.String("video_url", item.VideoURL),
			slog.String("title", title),
		)
		return &Result{Action: ActionDryRun, Item: &item}, nil
	}

	tmpDir, err := os.MkdirTemp("", "ytpost-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	local := filepath.Join(tmpDir, item.Filename)
	u.log.Info("downloading media", slog.String("url", item.VideoURL))
	if err := u.fetch(ctx, item.VideoURL, local); err != nil {
		// Nothing was uploaded; leave state alone so the next run retries.
		return nil, err
	}

	req := youtube.UploadRequest{
		Path:          local,
		MimeType:      mimeType,
		Title:         title,
		Description:   description,
		Tags:          tags,
		CategoryID:    u.cfg.CategoryID,
		PrivacyStatus: u.cfg.PrivacyStatus,
		MadeForKids:   u.cfg.MadeForKids,
	}

	u.log.Info("uploading video", slog.String("title", title), slog.String("manifest", item.Manifest))
	var videoID string
	uploadErr := retry.Do(ctx, u.cfg.RetryConfig(), nil, func(ctx context.Context) error {
		id, err := u.pub.Upload(ctx, req)
		if err != nil {
			return err
		}
		videoID = id
		return nil
	})

	if uploadErr != nil {
		// State stays untouched on failure; the entry remains eligible.
		return nil, fmt.Errorf("upload %s: %w", item.VideoURL, uploadErr)
	}

	rec := storage.UploadRecord{
		VideoURL:       item.VideoURL,
		Filename:       item.Filename,
		Manifest:       item.Manifest,
		Title:          title,
		DestinationURL: item.DestinationURL,
		Result:         storage.ResultSuccess,
		VideoID:        videoID,
	}
	u.store.RecordAttempt(rec)
	if err := u.store.Save(); err != nil {
		return nil, err
	}

	u.log.Info("upload succeeded", slog.String("video_id", videoID))
	return &Result{Action: ActionUploaded, VideoID: videoID, Item: &item}, nil
}

// rotate advances the daily manifest rotation at most once per UTC day.
// The new rotation is persisted together with the attempt record; a no-op
// run deliberately writes nothing.
func (u *Uploader) rotate() storage.Rotation {
	rot := u.store.Rotation()
	today := u.now().UTC().Format("2006-01-02")
	if rot.LastDay != today {
		n := len(u.cfg.ManifestOrder)
		if n == 0 {
			n = 1
		}
		rot.ManifestIndex = (rot.ManifestIndex + 1) % n
		rot.LastDay = today
		u.store.SetRotation(rot)
	}
	return rot
}

// pick returns the first item, in rotation order, that is ready, complete,
// and not yet uploaded.
func (u *Uploader) pick(items []manifest.Item) (manifest.Item, bool) {
	for _, it := range items {
		if !it.Ready() || it.VideoURL == "" || it.Title == "" {
			continue
		}
		if rec, ok := u.store.Record(it.VideoURL); ok && rec.Result == storage.ResultSuccess {
			continue
		}
		return it, true
	}
	return manifest.Item{}, false
}

// rotatedOrder returns the configured manifest order starting at idx.
func rotatedOrder(order []string, idx int) []string {
	n := len(order)
	if n == 0 {
		return nil
	}
	if idx < 0 || idx >= n {
		idx = 0
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, order[(idx+i)%n])
	}
	return out
}
