package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"touchpad/internal/tap"
)

func newBoundFlags(t *testing.T, args ...string) *viper.Viper {
	t.Helper()

	flags := pflag.NewFlagSet("touchtapd", pflag.ContinueOnError)
	v := viper.New()
	require.NoError(t, BindFlags(flags, v))
	require.NoError(t, flags.Parse(args))

	return v
}

func TestLoadRequiresDevice(t *testing.T) {
	v := newBoundFlags(t)

	_, err := Load(v)
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	v := newBoundFlags(t, "--device=GXTP")

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, "GXTP", cfg.DeviceKeyword)
	require.Equal(t, "lrm", cfg.ButtonMap)
	require.True(t, cfg.DragEnabled)
	require.False(t, cfg.DragLockEnabled)
	require.Equal(t, 180, cfg.TapTimeoutMS)
	require.Equal(t, 300, cfg.DragTimeoutMS)
	require.InDelta(t, 1.3, cfg.MoveThreshold, 0.0001)
	require.Equal(t, tap.MapLRM, cfg.TapMap())
}

func TestLoadClampsUnknownMapToDefault(t *testing.T) {
	v := newBoundFlags(t, "--device=GXTP", "--map=xyz")

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, "lrm", cfg.ButtonMap)
	require.Equal(t, tap.MapLRM, cfg.TapMap())
}

func TestLoadLmrMap(t *testing.T) {
	v := newBoundFlags(t, "--device=GXTP", "--map=LMR")

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, tap.MapLMR, cfg.TapMap())
}
