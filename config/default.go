package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Reprise + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	dw := segment.DefaultWindow()

	register(key.WindowSeconds, dw.WindowSec, "Length in seconds of a segment that no following marker bounds")
	register(key.WindowMinSegment, dw.MinSegmentSec, "Lower bound in seconds for the length of the last segment")
	register(key.WindowGapEpsilon, dw.GapEpsilon, "Gap in seconds left between a segment end and the next marker")
	register(key.WindowEndTolerance, dw.EndTolerance, "A segment counts as finished this many seconds before its end")
	register(key.PlayerPollIntervalMs, dw.PollIntervalMs, "Interval in milliseconds between playback position polls")
	register(key.PlayerDefault, "mpv", "Media player executable to launch")
	register(key.PlayerLoops, 3, "How many times each segment plays before advancing")
	register(key.PlayerAutoAdvance, true, "Advance to the next segment once the loop budget is spent")
	register(key.PlayerRate, 1.0, "Playback speed multiplier")
	register(key.PlayerMaxFailures, 25, "Consecutive failed position polls before the session stops with an error")
	register(key.PlayerSeekAhead, true, "Allow seeks to fetch unbuffered media (precise seeks)")
	register(key.SequenceUnknownOnly, true, "Only schedule markers that are not yet known")
	register(key.HistorySaveOnStop, true, "Remember the active marker when playback exits")
	register(key.VideoFetchTitle, true, "Look up the video title when importing without --title")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Look for a newer release when printing help or version")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
