// Package baseline keeps the grade each course showed when a markbook session
// started. A baseline is written once per session and course, then only read.
package baseline

import (
	"context"
	"net/url"
	"strings"
	"time"
)

type Store interface {
	// Capture stores mark unless a baseline already exists; it reports whether it stored.
	Capture(ctx context.Context, session, course string, mark float64) (bool, error)
	Lookup(ctx context.Context, session, course string) (float64, bool, error)
	Close() error
}

const (
	DefaultSessionTTL  = 12 * time.Hour
	DefaultKeyTemplate = "baseline:{session}:{course}"
)

type Config struct {
	RedisURL    string
	KeyTemplate string
	SessionTTL  time.Duration
}

// formatKey fills a key template. Both parts are escaped so that a ':' or '/'
// inside a session or course cannot shift the boundary between them.
func formatKey(template, session, course string) string {
	if template == "" {
		template = DefaultKeyTemplate
	}
	return strings.NewReplacer(
		"{session}", url.QueryEscape(session),
		"{course}", url.QueryEscape(course),
	).Replace(template)
}
