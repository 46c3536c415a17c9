// Package youtube wraps the YouTube Data API v3 calls this system needs:
// video upload, top-level comment insertion, and comment verification.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

var (
	// ErrNoVideoID indicates the upload succeeded but the API response
	// carried no video ID.
	ErrNoVideoID = errors.New("upload succeeded but response had no video id")
	// ErrNoCommentID indicates the comment insert succeeded but the API
	// response carried no comment thread ID.
	ErrNoCommentID = errors.New("comment posted but response had no comment id")
)

// Options configures the API client.
type Options struct {
	// RequestTimeout bounds each API call. Zero means no per-call deadline.
	RequestTimeout time.Duration
	// RequestsPerSecond gates API calls. Zero means 1 request per second.
	RequestsPerSecond float64
}

// Client is a rate-limited YouTube Data API client authenticated with an
// OAuth2 refresh-token credential set.
type Client struct {
	svc     *ytapi.Service
	limiter *rate.Limiter
	timeout time.Duration
}

// NewClient builds an authenticated client. The refresh token is exchanged
// once up front so invalid credentials fail here rather than mid-run.
func NewClient(ctx context.Context, creds Credentials, opts Options) (*Client, error) {
	if !creds.Complete() {
		return nil, ErrMissingCredentials
	}

	ts := creds.TokenSource(ctx)
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("refresh access token: %w", err)
	}

	svc, err := ytapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &Client{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		timeout: opts.RequestTimeout,
	}, nil
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// UploadRequest describes one video upload.
type UploadRequest struct {
	Path          string // local media file
	MimeType      string // e.g. "video/mp4"
	Title         string
	Description   string
	Tags          []string
	CategoryID    string
	PrivacyStatus string // public, unlisted, private
	MadeForKids   bool
}

// Upload inserts one video and returns its YouTube video ID. The media
// upload itself is not bounded by the per-call timeout.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	video := &ytapi.Video{
		Snippet: &ytapi.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			CategoryId:  req.CategoryID,
		},
		Status: &ytapi.VideoStatus{
			PrivacyStatus:           req.PrivacyStatus,
			SelfDeclaredMadeForKids: req.MadeForKids,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}
	// The API returns 400 when tags is present but empty.
	if len(req.Tags) > 0 {
		video.Snippet.Tags = req.Tags
	}

	file, err := os.Open(req.Path)
	if err != nil {
		return "", fmt.Errorf("open media: %w", err)
	}
	defer file.Close()

	call := c.svc.Videos.Insert([]string{"snippet", "status"}, video)
	resp, err := call.Media(file, googleapi.ContentType(req.MimeType)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert video: %w", err)
	}
	if resp.Id == "" {
		return "", ErrNoVideoID
	}
	return resp.Id, nil
}

// PostComment inserts a top-level comment under a video and returns the
// comment thread ID.
func (c *Client) PostComment(ctx context.Context, videoID, text string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	thread := &ytapi.CommentThread{
		Snippet: &ytapi.CommentThreadSnippet{
			VideoId: videoID,
			TopLevelComment: &ytapi.Comment{
				Snippet: &ytapi.CommentSnippet{TextOriginal: text},
			},
		},
	}

	resp, err := c.svc.CommentThreads.Insert([]string{"snippet"}, thread).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert comment: %w", err)
	}
	if resp.Id == "" {
		return "", ErrNoCommentID
	}
	return resp.Id, nil
}

// CommentExists reports whether a previously posted comment thread is still
// retrievable. A 404 from the API means it is not.
func (c *Client) CommentExists(ctx context.Context, commentID string) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	resp, err := c.svc.CommentThreads.List([]string{"id"}).Id(commentID).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("list comment thread: %w", err)
	}
	return len(resp.Items) > 0, nil
}
