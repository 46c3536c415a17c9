// Command ytpost runs the two scheduled publishing jobs: upload one pending
// video, or post one top-level comment under the latest successful upload.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"ytpost/commenter"
	"ytpost/config"
	"ytpost/storage"
	"ytpost/uploader"
	"ytpost/youtube"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var code int
	switch os.Args[1] {
	case "upload":
		code = cmdUpload(ctx, os.Args[2:])
	case "comment":
		code = cmdComment(ctx, os.Args[2:])
	case "status":
		code = cmdStatus(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", os.Args[1])
		printUsage()
		code = 1
	}
	os.Exit(code)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ytpost - batch-of-one YouTube upload and comment automation

Usage:
  ytpost upload [flags]    Upload at most one pending manifest video
  ytpost comment [flags]   Post or verify at most one comment
  ytpost status            Summarize both state files
  ytpost help              Show this help message

Configuration comes from the environment; see the package documentation for
the full variable list. Flags:

  -dry-run    Simulate without calling the remote API or writing state
              (upload and comment)

Credentials: set YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET and
YOUTUBE_REFRESH_TOKEN, or a single YOUTUBE_OAUTH_JSON blob.
`)
}

func cmdUpload(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "simulate without calling the API or writing state")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", slog.Any("error", err))
		return 1
	}
	if *dryRun {
		cfg.UploadDryRun = true
	}

	store, err := storage.OpenPostStore(cfg.PostStatePath)
	if err != nil {
		slog.Error("open post state", slog.Any("error", err))
		return 1
	}
	defer store.Close()

	var pub uploader.Publisher
	var fetch uploader.Downloader
	if !cfg.UploadDryRun {
		creds, err := cfg.Credentials()
		if err != nil {
			slog.Error("configuration error", slog.Any("error", err))
			return 1
		}
		client, err := youtube.NewClient(ctx, creds, youtube.Options{RequestTimeout: cfg.RequestTimeout})
		if err != nil {
			slog.Error("create youtube client", slog.Any("error", err))
			return 1
		}
		pub = client

		dl := &http.Client{Timeout: cfg.DownloadTimeout}
		fetch = func(ctx context.Context, rawURL, dest string) error {
			return youtube.Download(ctx, dl, rawURL, dest)
		}
	}

	res, err := uploader.New(cfg, store, pub, fetch, slog.Default()).Run(ctx)
	if err != nil {
		slog.Error("upload run failed", slog.Any("error", err))
		return 1
	}
	if res.Action == uploader.ActionUploaded {
		fmt.Printf("uploaded %s (video id %s)\n", res.Item.VideoURL, res.VideoID)
	}
	return 0
}

func cmdComment(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("comment", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "simulate without calling the API or writing state")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", slog.Any("error", err))
		return 1
	}
	if *dryRun {
		cfg.CommentDryRun = true
	}

	posts, err := storage.OpenPostStore(cfg.PostStatePath)
	if err != nil {
		slog.Error("open post state", slog.Any("error", err))
		return 1
	}
	defer posts.Close()

	comments, err := storage.OpenCommentStore(cfg.CommentStatePath)
	if err != nil {
		slog.Error("open comment state", slog.Any("error", err))
		return 1
	}
	defer comments.Close()

	var api commenter.CommentAPI
	if !cfg.CommentDryRun {
		creds, err := cfg.Credentials()
		if err != nil {
			slog.Error("configuration error", slog.Any("error", err))
			return 1
		}
		client, err := youtube.NewClient(ctx, creds, youtube.Options{RequestTimeout: cfg.RequestTimeout})
		if err != nil {
			slog.Error("create youtube client", slog.Any("error", err))
			return 1
		}
		api = client
	}

	res, err := commenter.New(cfg, posts, comments, api, slog.Default()).Run(ctx)
	if err != nil {
		slog.Error("comment run failed", slog.Any("error", err))
		return 1
	}
	if res.Action == commenter.ActionCommented {
		fmt.Printf("commented on %s (comment id %s)\n", res.VideoID, res.CommentID)
	}
	return 0
}

func cmdStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", slog.Any("error", err))
		return 1
	}

	posts, err := storage.OpenPostStore(cfg.PostStatePath)
	if err != nil {
		slog.Error("open post state", slog.Any("error", err))
		return 1
	}
	defer posts.Close()

	comments, err := storage.OpenCommentStore(cfg.CommentStatePath)
	if err != nil {
		slog.Error("open comment state", slog.Any("error", err))
		return 1
	}
	defer comments.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "post state\t%s\t%d items\n", cfg.PostStatePath, posts.Len())
	for _, run := range posts.Runs() {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", run.At.Format("2006-01-02 15:04"), run.Result, run.VideoID, run.VideoURL)
	}
	fmt.Fprintf(w, "comment state\t%s\t%d items\n", cfg.CommentStatePath, comments.Len())
	for _, run := range comments.Runs() {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", run.At.Format("2006-01-02 15:04"), run.Result, run.CommentID, run.VideoID)
	}
	w.Flush()
	return 0
}
