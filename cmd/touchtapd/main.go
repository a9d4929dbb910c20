// Command touchtapd wires internal/device, internal/tap and
// internal/uinputsink together behind a cobra command with flag and
// environment-variable driven settings instead of hardcoded constants;
// no config file is read.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"touchpad/internal/config"
	"touchpad/internal/device"
	"touchpad/internal/tap"
	"touchpad/internal/timer"
	"touchpad/internal/uinputsink"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("touchtapd")
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "touchtapd",
		Short: "Synthesize click events from multi-touch taps on a touchpad",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	if err := config.BindFlags(cmd.Flags(), v); err != nil {
		panic(err)
	}

	return cmd
}

func run(cfg config.Config) error {
	log := newLogger(cfg.LogLevel)

	tap.Configure(
		tap.Time(cfg.TapTimeoutMS*1000),
		tap.Time(cfg.DragTimeoutMS*1000),
		cfg.MoveThreshold,
	)

	path, err := device.FindDevice(cfg.DeviceKeyword, cfg.DeviceMustContain)
	if err != nil {
		return fmt.Errorf("find device: %w", err)
	}
	log.Info().Str("path", path).Msg("found touchpad")

	classifier := device.NewClassifier()
	geometry := device.NewMMGeometry(1, 1)

	src, err := device.Open(path, cfg.IsClickpad, classifier, geometry)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	defer src.Close()

	sink, err := uinputsink.Open("touchtapd virtual pointer")
	if err != nil {
		return fmt.Errorf("create virtual pointer: %w", err)
	}
	defer sink.Close()

	tm := timer.New()

	quirks := tap.Quirks{NumSlots: 5}
	log.Info().Int("supported-taps", tap.Count(quirks.NumSlots)).Msg("queried device finger-count capability")

	d := tap.Init(tap.Config{
		Timer:                 tm,
		Sink:                  sink,
		Classifier:            classifier,
		Geometry:              geometry,
		Quirks:                quirks,
		Logger:                log,
		HasPhysicalLeftButton: src.HasPhysicalLeftButton(),
	})
	d.SetMap(cfg.TapMap())
	d.SetDragEnabled(cfg.DragEnabled)
	d.SetDragLockEnabled(cfg.DragLockEnabled)
	d.SetEnabled(cfg.Enabled, 0, nil)

	log.Info().Msg("touchtapd running")

	type tickResult struct {
		touches                       []*tap.Touch
		nfingersDown, oldNfingersDown int
		clickQueued                   bool
		now                           tap.Time
		err                           error
	}
	ticks := make(chan tickResult)
	go func() {
		for {
			touches, nf, onf, click, now, err := src.Tick()
			ticks <- tickResult{touches, nf, onf, click, now, err}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case tr := <-ticks:
			if tr.err != nil {
				return fmt.Errorf("device tick: %w", tr.err)
			}
			d.HandleState(tr.touches, tr.now, tr.nfingersDown, tr.oldNfingersDown, tr.clickQueued, cfg.IsClickpad)
			d.PostProcess()

		case deadline := <-tm.C:
			d.HandleTimeout(deadline, src.Touches())
		}
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
