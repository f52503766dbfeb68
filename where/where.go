// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "REPRISE_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the primary configuration directory.
// It honours XDG_CONFIG_HOME on Linux and the platform equivalent elsewhere,
// unless REPRISE_CONFIG_PATH is set.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Reprise))
}

// Cache resolves the application's persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Reprise))
}

// Logs resolves the directory used for diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Datasets resolves the directory holding one JSON file per marker dataset.
func Datasets() string {
	return ensureDir(filepath.Join(Config(), "datasets"))
}

// Index resolves the dataset metadata index file.
func Index() string {
	return filepath.Join(Config(), "index.json")
}

// History resolves the resume-point history file.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Titles resolves the cache of remotely looked-up video titles.
func Titles() string {
	return filepath.Join(Cache(), "titles.json")
}

// Temp resolves a volatile directory for IPC sockets and other transient artifacts.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Reprise))
}
