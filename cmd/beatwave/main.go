package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/kajovka/beatwave/internal/beats"
	"github.com/kajovka/beatwave/internal/dsp"
	"github.com/kajovka/beatwave/internal/engine"
	"github.com/kajovka/beatwave/internal/ui"
)

type loopConfig struct {
	Device     *portaudio.DeviceInfo
	SampleRate float64
	FrameSize  int
	Channels   int
	Latency    time.Duration
	FreqBands  int
	Visualize  bool
}

func main() {
	cfg := parseCLIFlags()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runEngine(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runEngine(ctx context.Context, cfg runtimeOptions) error {
	if err := portaudio.Initialize(); err != nil {
		return eris.Wrap(err, "initialize PortAudio")
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return eris.Wrap(err, "enumerate audio devices")
	}

	defaultDevice, err := portaudio.DefaultInputDevice()
	if err != nil {
		return eris.Wrap(err, "resolve default audio input device")
	}

	logger := setupLogger(cfg.debug, cfg.visualize)

	device, err := selectDevice(devices, defaultDevice.Index, cfg)
	if err != nil {
		return eris.Wrap(err, "select audio device")
	}
	if device.MaxInputChannels < 1 {
		return eris.Errorf("device %s has no input channels; select a loopback/monitor device", device.Name)
	}

	loopCfg := buildLoopConfig(device, cfg)

	if cfg.channels > 0 && cfg.channels > int(device.MaxInputChannels) {
		logger.Warn("requested channels exceed device capabilities",
			slog.Int("requested", cfg.channels),
			slog.Int("max", int(device.MaxInputChannels)),
			slog.Int("using", loopCfg.Channels),
		)
	}

	if err := runAnalysisLoop(ctx, logger, loopCfg); err != nil && !eris.Is(err, context.Canceled) {
		logger.Error("analysis loop failed", slog.Any("error", err))
		return err
	}

	return nil
}

func setupLogger(debug, visualize bool) *slog.Logger {
	logOutput := os.Stdout
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	if visualize && !debug {
		logLevel = slog.LevelWarn
	}
	if visualize {
		logOutput = os.Stderr
	}

	logger := slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	return logger
}

func runAnalysisLoop(ctx context.Context, logger *slog.Logger, cfg loopConfig) error {
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	eng, err := engine.New(engine.Config{
		FreqBandCount: cfg.FreqBands,
		Bindings:      defaultBindings(),
		Gates:         defaultGates(),
		Logger:        logger,
	})
	if err != nil {
		return eris.Wrap(err, "configure engine")
	}

	var viz *ui.Visualizer
	if cfg.Visualize {
		viz = ui.NewVisualizer(cancel)
		defer viz.Close()
	}

	frameCh := make(chan []float32, 32)
	builder := dsp.NewFrameBuilder(cfg.SampleRate, cfg.FrameSize, cfg.Channels)

	g, gctx := errgroup.WithContext(loopCtx)

	g.Go(func() error {
		defer close(frameCh)
		return captureAudio(gctx, logger, frameCh, cfg)
	})

	g.Go(func() error {
		lastLog := time.Now()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case samples, ok := <-frameCh:
				if !ok {
					return nil
				}
				frame := builder.Build(samples, time.Now())
				snapshot := eng.Tick(&frame)

				if viz != nil {
					viz.Update(visualizerFrame(snapshot))
				}
				if time.Since(lastLog) >= time.Second {
					lastLog = time.Now()
					logger.Debug("tick",
						slog.Float64("bass", snapshot.Bass),
						slog.Float64("rms", snapshot.RMS),
						slog.Float64("bpm", snapshot.BPM),
						slog.Int("ripples", snapshot.Ripples.Count),
					)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		if eris.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	return nil
}

func visualizerFrame(s engine.Snapshot) ui.VisualizerFrame {
	frame := ui.VisualizerFrame{
		Bass:           s.Bass,
		Mid:            s.Mid,
		Treble:         s.Treble,
		SmoothedBass:   s.SmoothedBass,
		SmoothedMid:    s.SmoothedMid,
		SmoothedTreble: s.SmoothedTreble,
		RMS:            s.RMS,
		Peak:           s.Peak,
		BPM:            s.BPM,
		BassBalance:    s.BassBalance,
		RippleCount:    s.Ripples.Count,
		ColorBands:     s.ColorBands,
	}
	for _, event := range s.Beats {
		switch event.Band {
		case beats.Bass:
			frame.BassBeat = true
		case beats.Mid:
			frame.MidBeat = true
		case beats.Treble:
			frame.TrebleBeat = true
		}
	}
	return frame
}

func captureAudio(ctx context.Context, logger *slog.Logger, out chan []float32, cfg loopConfig) error {
	if cfg.Device == nil {
		return eris.New("audio device is not specified")
	}

	logger.Info("using audio input device",
		slog.String("name", cfg.Device.Name),
		slog.Float64("sample_rate", cfg.SampleRate),
		slog.Int("channels", cfg.Channels),
		slog.Int("frame_size", cfg.FrameSize))

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   cfg.Device,
			Channels: cfg.Channels,
			Latency:  cfg.Device.DefaultLowInputLatency,
		},
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: cfg.FrameSize,
	}
	if cfg.Latency > 0 {
		params.Input.Latency = cfg.Latency
	}

	stream, err := portaudio.OpenStream(params, func(in []float32) {
		frame := make([]float32, len(in))
		copy(frame, in)

		select {
		case out <- frame:
		default:
			select {
			case <-out:
			default:
			}
			select {
			case out <- frame:
			default:
			}
		}
	})
	if err != nil {
		return eris.Wrap(err, "open audio stream")
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return eris.Wrap(err, "start audio stream")
	}
	defer stream.Stop()

	<-ctx.Done()
	return ctx.Err()
}
