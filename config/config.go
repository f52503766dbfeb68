// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"strings"

	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer normalizes configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes defaults, environment bindings and the config file lookup.
func Setup() error {
	viper.SetConfigName(constant.Reprise)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Reprise)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// Window returns the process-wide window configuration. Datasets may override it.
func Window() segment.WindowConfig {
	return segment.WindowConfig{
		WindowSec:      viper.GetFloat64(key.WindowSeconds),
		MinSegmentSec:  viper.GetFloat64(key.WindowMinSegment),
		GapEpsilon:     viper.GetFloat64(key.WindowGapEpsilon),
		EndTolerance:   viper.GetFloat64(key.WindowEndTolerance),
		PollIntervalMs: viper.GetInt(key.PlayerPollIntervalMs),
	}
}
