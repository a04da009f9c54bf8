package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goliquidmetal/gldevice"
	"github.com/richinsley/goliquidmetal/glfwcontext"
	"github.com/richinsley/goliquidmetal/graphics"
	"github.com/richinsley/goliquidmetal/headless"
	"github.com/richinsley/goliquidmetal/options"
	"github.com/richinsley/goliquidmetal/renderer"
	"github.com/richinsley/goliquidmetal/soft"
)

func init() {
	runtime.LockOSThread()
}

func runWindow(cfg options.RenderConfig, duration time.Duration) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("%w: %v", graphics.ErrCapabilityUnavailable, err)
	}
	defer glfwcontext.TerminateGraphics()

	win, err := glfwcontext.New(640, 240, "liquidmetal", true)
	if err != nil {
		return fmt.Errorf("%w: failed to create window: %v", graphics.ErrCapabilityUnavailable, err)
	}
	defer win.Shutdown()

	if cfg.PixelRatio == 1 {
		cfg.PixelRatio = win.ContentScale()
	}

	dev, err := gldevice.New(win, win.IsGLES())
	if err != nil {
		return err
	}
	slog.Info("OpenGL context", "version", dev.Version())

	r := renderer.New(dev, win, cfg, renderer.WithPointerSource(win))
	defer r.Dispose()
	if err := r.Start(); err != nil {
		return err
	}
	bindKeys(win, r)

	ctx := context.Background()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}
	err = win.Run(ctx)
	logStats(r)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func bindKeys(win *glfwcontext.Context, r *renderer.Renderer) {
	win.RegisterKeyCallback(glfw.KeySpace, func() {
		on := !r.Config().MouseAnimation
		if err := r.SetMouseMode(on); err == nil {
			slog.Info("mouse animation", "enabled", on)
		}
	})
	win.RegisterKeyCallback(glfw.KeyR, func() {
		seed := rand.Float32() * 1000
		if err := r.SetStyle(options.StylePatch{Seed: options.Float(seed)}); err == nil {
			slog.Info("reseeded", "seed", seed)
		}
	})
	resize := func(factor float64) func() {
		return func() {
			tc := r.Config().TextConfig
			tc.FontSize *= factor
			if err := r.SetText(tc); err != nil {
				slog.Warn("font size unchanged", "error", err)
			}
		}
	}
	win.RegisterKeyCallback(glfw.KeyUp, resize(1.1))
	win.RegisterKeyCallback(glfw.KeyDown, resize(1/1.1))
}

func runOffscreen(cfg options.RenderConfig, useSoft bool, duration time.Duration, fps int) error {
	var dev graphics.Device
	sched := renderer.NewLoopScheduler(time.Second / time.Duration(max(fps, 1)))

	if useSoft {
		dev = soft.New()
	} else {
		h, err := headless.New(1, 1)
		if err != nil {
			return err
		}
		defer h.Shutdown()
		gdev, err := gldevice.New(h, h.IsGLES())
		if err != nil {
			return err
		}
		slog.Info("OpenGL ES context", "version", gdev.Version())
		sched.AfterFrame = h.EndFrame
		dev = gdev
	}

	r := renderer.New(dev, sched, cfg)
	defer r.Dispose()
	if err := r.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()
	err := sched.Run(ctx)
	logStats(r)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func logStats(r *renderer.Renderer) {
	st := r.Stats()
	slog.Info("session finished",
		"frames", st.Frames,
		"uploads", st.Uploads,
		"releases", st.Releases,
		"width", st.Width,
		"height", st.Height,
		"time", r.Time())
}

func main() {
	var configPath = flag.String("config", "", "TOML configuration file")
	var verbose = flag.Bool("v", false, "Enable debug logging")
	var help = flag.Bool("help", false, "Show help message")

	var text = flag.String("text", "", "Text to render")
	var font = flag.String("font", "", "Font family list, e.g. \"Inter, sans-serif\"")
	var fontFile = flag.String("font-file", "", "TTF/OTF file used instead of -font")
	var size = flag.Float64("size", 0, "Font size in CSS pixels")
	var weight = flag.Int("weight", 0, "Font weight (>= 600 selects bold)")
	var seed = flag.Float64("seed", 0, "Noise seed")
	var speed = flag.Float64("speed", 0, "Animation speed")
	var mouse = flag.Bool("mouse", false, "Drive the animation from the pointer")

	// Offscreen flags
	var headlessMode = flag.Bool("headless", false, "Render offscreen through EGL instead of a window")
	var softMode = flag.Bool("soft", false, "Render offscreen on the CPU")
	var duration = flag.Duration("duration", 0, "Stop after this long (offscreen default 5s)")
	var fps = flag.Int("fps", 60, "Frames per second for offscreen runs")

	flag.Parse()

	if *help {
		fmt.Println("Liquid metal text renderer")
		flag.PrintDefaults()
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	renderer.SetLogger(logger)

	cfg := options.Default()
	if *configPath != "" {
		var err error
		cfg, err = options.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "text":
			cfg.Text = *text
		case "font":
			cfg.Font = *font
		case "font-file":
			cfg.FontFile = *fontFile
		case "size":
			cfg.FontSize = *size
		case "weight":
			cfg.FontWeight = *weight
		case "seed":
			cfg.Seed = float32(*seed)
		case "speed":
			cfg.Speed = float32(*speed)
		case "mouse":
			cfg.MouseAnimation = *mouse
		}
	})

	var err error
	if *headlessMode || *softMode {
		d := *duration
		if d <= 0 {
			d = 5 * time.Second
		}
		err = runOffscreen(cfg, *softMode, d, *fps)
	} else {
		err = runWindow(cfg, *duration)
	}
	if err != nil {
		slog.Error("liquidmetal failed", "error", err)
		os.Exit(1)
	}
}
