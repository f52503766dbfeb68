// Package video resolves YouTube identifiers and titles for datasets.
package video

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/reprise-cli/reprise/internal/cache"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/network"
	"github.com/reprise-cli/reprise/where"
	"github.com/samber/lo"
)

// ErrNoID is returned when no video id can be found in the input.
var ErrNoID = errors.New("no video id found")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractID accepts watch, short, embed, live and youtu.be URLs as well as bare ids.
func ExtractID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if idPattern.MatchString(raw) {
		return raw, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoID, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := lo.Compact(strings.Split(u.Path, "/"))

	var candidate string
	switch host {
	case "youtu.be":
		if len(segments) > 0 {
			candidate = segments[0]
		}
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			candidate = v
		} else if len(segments) >= 2 && lo.Contains([]string{"shorts", "embed", "live", "v"}, segments[0]) {
			candidate = segments[1]
		}
	}

	if !idPattern.MatchString(candidate) {
		return "", fmt.Errorf("%w in %q", ErrNoID, raw)
	}

	return candidate, nil
}

// WatchURL returns the canonical watch page for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}

// WatchURLAt returns the watch page for id starting at whole second t.
func WatchURLAt(id string, t float64) string {
	return fmt.Sprintf("%s&t=%ds", WatchURL(id), int(t))
}

// OEmbedEndpoint is queried by Title.
var OEmbedEndpoint = "https://www.youtube.com/oembed"

type oembed struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

var titles = cache.New[string, string](where.Titles(), 30*24*time.Hour, nil)

// Title looks up the video title, caching successful answers.
func Title(ctx context.Context, id string) (string, error) {
	if title, ok := titles.Get(id).Get(); ok {
		return title, nil
	}

	query := url.Values{}
	query.Set("url", WatchURL(id))
	query.Set("format", "json")

	var answer oembed
	if err := network.GetJSON(ctx, OEmbedEndpoint+"?"+query.Encode(), &answer); err != nil {
		return "", fmt.Errorf("title of %s: %w", id, err)
	}

	title := strings.TrimSpace(answer.Title)
	if title == "" {
		return "", fmt.Errorf("title of %s: empty answer", id)
	}

	if err := titles.Set(id, title); err != nil {
		log.Warnf("caching title of %s: %v", id, err)
	}

	return title, nil
}
