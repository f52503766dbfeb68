// Package version discovers newer releases and compares version strings.
package version

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/metafates/gache"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/network"
	"github.com/reprise-cli/reprise/where"
)

// ReleasesURL answers with the latest published release.
var ReleasesURL = "https://api.github.com/repos/reprise-cli/reprise/releases/latest"

var versionCacher = gache.New[string](&gache.Options{
	Path:       filepath.Join(where.Cache(), "version.json"),
	Lifetime:   time.Hour * 24 * 2,
	FileSystem: &filesystem.GacheFs{},
})

// Latest returns the newest released version without the "v" prefix.
// Answers are cached for two days.
func Latest(ctx context.Context) (string, error) {
	cached, expired, err := versionCacher.Get()
	if err == nil && !expired && cached != "" {
		return cached, nil
	}

	var release struct {
		TagName string `json:"tag_name"`
	}

	if err := network.GetJSON(ctx, ReleasesURL, &release); err != nil {
		return "", err
	}

	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	_ = versionCacher.Set(latest)
	return latest, nil
}
