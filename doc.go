// Package ytpost automates two narrow publishing actions against YouTube:
// uploading a single pending video per invocation, and posting a single
// top-level comment under the most recently successful upload per
// invocation.
//
// Both jobs are idempotent, state-tracked, batch-of-one, and meant to run on
// a recurring schedule rather than as a long-lived service. Coupling between
// them is entirely through two JSON state files on disk.
//
// # Commands
//
// The cli directory builds the ytpost binary:
//
//	ytpost upload     # upload at most one pending manifest video
//	ytpost comment    # post or verify at most one comment
//	ytpost status     # summarize both state files
//
// # State files
//
// The post-state records which manifest entries have been uploaded plus an
// append-only run log. Remote failures never mutate state; a failed run
// exits non-zero and the next scheduled run retries the same entry. The
// comment-state records, per video ID, the comment lifecycle:
//
//	(none) -> commented_unverified -> commented
//	            |                       ^
//	            +-- verification miss --+-- (cleared after 3 misses)
//	skipped -> retried after a cooldown
//
// Both files are written atomically (temp file + rename) and guarded by an
// advisory flock held for the whole run, so overlapping invocations block
// instead of racing.
//
// # Configuration
//
// Everything is environment-driven. Credentials come from either the
// discrete triple or a single JSON blob:
//
//   - YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, YOUTUBE_REFRESH_TOKEN,
//     and optionally YOUTUBE_TOKEN_URI
//   - YOUTUBE_OAUTH_JSON: {"client_id": ..., "client_secret": ...,
//     "refresh_token": ..., "token_uri": ...}
//
// Behavior variables (all optional):
//
//   - YTPOST_MANIFEST_DIR, YTPOST_POST_STATE, YTPOST_COMMENT_STATE
//   - YTPOST_MANIFEST_ORDER: daily rotation order of manifest file names
//   - YTPOST_PRIVACY_STATUS: public, unlisted, or private
//   - YTPOST_CATEGORY_ID, YTPOST_MADE_FOR_KIDS, YTPOST_TAGS
//   - YTPOST_UPLOAD_DRY_RUN, YTPOST_COMMENT_DRY_RUN
//   - YTPOST_COMMENT_JITTER_MAX: jitter bound in seconds before commenting
//   - YTPOST_COMMENT_PROBABILITY, YTPOST_COMMENT_TEMPLATES
//   - YTPOST_MAX_RETRIES, YTPOST_INITIAL_BACKOFF, YTPOST_MAX_BACKOFF
//   - YTPOST_DOWNLOAD_TIMEOUT, YTPOST_REQUEST_TIMEOUT
//
// Dry runs simulate a full decision pass without touching the network or
// the state files.
package ytpost
