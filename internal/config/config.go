// Package config binds the tap dispatch's runtime-tunable surface to
// command-line flags via spf13/pflag and spf13/viper. No config file
// is read.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"touchpad/internal/tap"
)

// Config is the fully resolved set of knobs a touchtapd invocation
// needs: which device to grab, and the tap dispatch's default config
// surface.
type Config struct {
	DeviceKeyword     string
	DeviceMustContain string
	IsClickpad        bool

	ButtonMap       string // "lrm" or "lmr"
	DragEnabled     bool
	DragLockEnabled bool
	Enabled         bool

	TapTimeoutMS  int
	DragTimeoutMS int
	MoveThreshold float64

	LogLevel string
}

// BindFlags registers the flags touchtapd exposes on flags and binds
// them into v, letting viper own precedence: a flag given on the
// command line wins over an environment variable (when the caller has
// enabled them on v), which wins over the flag's default.
func BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	flags.String("device", "", "substring of the input device name to grab")
	flags.String("device-must-contain", "touchpad", "secondary substring preferred in the device name; a keyword match without it is the fallback")
	flags.Bool("clickpad", true, "treat the device as a clickpad (single physical button under the whole surface)")

	flags.String("map", "lrm", "button mapping for 2- and 3-finger taps: lrm or lmr")
	flags.Bool("drag", true, "enable tap-and-drag")
	flags.Bool("drag-lock", false, "enable drag lock (lifting the finger mid-drag keeps the button held until the drag timeout or a following tap)")
	flags.Bool("enabled", true, "enable tap-to-click")

	flags.Int("tap-timeout-ms", 180, "tap timeout in milliseconds")
	flags.Int("drag-timeout-ms", 300, "drag timeout in milliseconds")
	flags.Float64("move-threshold-mm", 1.3, "motion threshold in millimetres that cancels a tap")

	flags.String("log-level", "info", "log level: debug, info, warn, error")

	return v.BindPFlags(flags)
}

// Load resolves a Config from a bound viper instance.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		DeviceKeyword:     v.GetString("device"),
		DeviceMustContain: v.GetString("device-must-contain"),
		IsClickpad:        v.GetBool("clickpad"),
		ButtonMap:         strings.ToLower(v.GetString("map")),
		DragEnabled:       v.GetBool("drag"),
		DragLockEnabled:   v.GetBool("drag-lock"),
		Enabled:           v.GetBool("enabled"),
		TapTimeoutMS:      v.GetInt("tap-timeout-ms"),
		DragTimeoutMS:     v.GetInt("drag-timeout-ms"),
		MoveThreshold:     v.GetFloat64("move-threshold-mm"),
		LogLevel:          v.GetString("log-level"),
	}

	if cfg.DeviceKeyword == "" {
		return Config{}, fmt.Errorf("--device is required")
	}
	if cfg.ButtonMap != "lrm" && cfg.ButtonMap != "lmr" {
		// Config setters always succeed: an unrecognized enum value is
		// clamped to its default rather than rejected.
		cfg.ButtonMap = "lrm"
	}

	return cfg, nil
}

// TapMap translates the resolved ButtonMap string into a tap.ButtonMap.
func (c Config) TapMap() tap.ButtonMap {
	if c.ButtonMap == "lmr" {
		return tap.MapLMR
	}
	return tap.MapLRM
}
