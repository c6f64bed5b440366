package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"volumeviewer/config"
	"volumeviewer/core"
	"volumeviewer/rendering/opengl"
	"volumeviewer/rendering/raylib"
	"volumeviewer/server"
)

func main() {
	runtime.LockOSThread()

	// Parse command line flags; set flags override the settings file
	var (
		configPath = flag.String("config", config.DefaultPath, "Settings file")
		backend    = flag.String("backend", "", "Render backend (gl, raylib)")
		mode       = flag.String("mode", "", "Render mode (triangle, cube, volume)")
		width      = flag.Int("width", 0, "Window width")
		height     = flag.Int("height", 0, "Window height")
		volumeDims = flag.String("volume", "", "Volume dimensions as WxHxD")
		pattern    = flag.String("pattern", "", "Volume pattern (gradient, sphere)")
		serve      = flag.String("serve", "", "Serve remote input on this address")
		logLevel   = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if *backend != "" {
		settings.Render.Backend = *backend
	}
	if *mode != "" {
		settings.Render.Mode = *mode
	}
	if *width > 0 {
		settings.Window.Width = *width
	}
	if *height > 0 {
		settings.Window.Height = *height
	}
	if *volumeDims != "" {
		dims, err := core.ParseDimensions(*volumeDims)
		if err != nil {
			log.Fatalf("Invalid -volume: %v", err)
		}
		settings.Volume.Width, settings.Volume.Height, settings.Volume.Depth = dims.X, dims.Y, dims.Z
	}
	if *pattern != "" {
		settings.Volume.Pattern = *pattern
	}
	if *serve != "" {
		settings.Server.Enabled = true
		settings.Server.Addr = *serve
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	renderMode, err := core.ParseRenderMode(settings.Render.Mode)
	if err != nil {
		log.Fatalf("Invalid render mode: %v", err)
	}
	volume, err := buildVolume(settings.Volume)
	if err != nil {
		log.Fatalf("Failed to build volume: %v", err)
	}

	fmt.Println("=== Volume Viewer ===")
	if settings.Source != "" {
		fmt.Printf("Settings: %s\n", settings.Source)
	}
	fmt.Printf("Backend: %s\n", settings.Render.Backend)
	fmt.Printf("Mode: %s\n", renderMode)
	fmt.Printf("Volume: %s (%s)\n", volume.Dimensions(), settings.Volume.Pattern)
	fmt.Printf("Window: %dx%d\n", settings.Window.Width, settings.Window.Height)

	opts := core.ViewerOptions{
		Width:           settings.Window.Width,
		Height:          settings.Window.Height,
		Mode:            renderMode,
		CenterVolume:    settings.Volume.Center,
		Distance:        settings.Camera.Distance,
		DragSensitivity: settings.Camera.DragSensitivity,
		ZoomSensitivity: settings.Camera.ZoomSensitivity,
	}

	var srv *server.Server
	switch settings.Render.Backend {
	case "raylib":
		preview := raylib.NewPreview(raylib.Options{
			Width:        settings.Window.Width,
			Height:       settings.Window.Height,
			Title:        settings.Window.Title,
			VSync:        settings.Render.VSync,
			ShowStats:    settings.Render.ShowStats,
			WheelScale:   settings.Camera.WheelScale,
			EventWaiting: !settings.Server.Enabled,
		})
		defer preview.Close()

		viewer, err := core.NewViewer(opts, volume, preview.FrameRequester())
		if err != nil {
			log.Fatalf("Failed to create viewer: %v", err)
		}
		preview.Attach(viewer)
		srv = startServer(settings.Server, viewer, nil)

		printControls()
		preview.Run(events(srv))

	default:
		renderer, err := opengl.NewRenderer(opengl.Options{
			Width:      settings.Window.Width,
			Height:     settings.Window.Height,
			Title:      settings.Window.Title,
			VSync:      settings.Render.VSync,
			ShowStats:  settings.Render.ShowStats,
			WheelScale: settings.Camera.WheelScale,
		})
		if err != nil {
			log.Fatalf("Failed to create renderer: %v", err)
		}
		defer renderer.Terminate()

		viewer, err := core.NewViewer(opts, volume, renderer.FrameRequester())
		if err != nil {
			log.Fatalf("Failed to create viewer: %v", err)
		}
		if err := renderer.Attach(viewer); err != nil {
			log.Fatalf("Failed to initialize renderer: %v", err)
		}
		srv = startServer(settings.Server, viewer, renderer.Wake)

		printControls()
		renderer.Run(events(srv))
	}

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			core.Logger().Warn("server shutdown", "err", err)
		}
	}
	fmt.Println("\nShutting down...")
}

func buildVolume(s config.VolumeSettings) (*core.VolumeField, error) {
	volume, err := core.NewVolume(s.Width, s.Height, s.Depth)
	if err != nil {
		return nil, err
	}
	pattern, err := core.PatternByName(s.Pattern, volume.Dimensions())
	if err != nil {
		return nil, err
	}
	volume.Fill(pattern)
	return volume, nil
}

// startServer returns nil when remote input is disabled.
func startServer(s config.ServerSettings, viewer *core.Viewer, wake func()) *server.Server {
	if !s.Enabled {
		return nil
	}
	srv := server.New(wake)
	viewer.OnFrame(srv.Publish)
	addr, err := srv.Start(s.Addr)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	fmt.Printf("Remote input: ws://%s/ws\n", addr)
	return srv
}

func events(srv *server.Server) <-chan core.InputEvent {
	if srv == nil {
		return nil
	}
	return srv.Events()
}

func printControls() {
	fmt.Println("\nControls:")
	fmt.Println("  Mouse: Click and drag to orbit")
	fmt.Println("  Scroll: Zoom in/out")
	fmt.Println("  Right click: Pick voxel")
	fmt.Println("  R: Reset camera")
	fmt.Println("  F1: Toggle stats")
	fmt.Println("  ESC: Exit")
}
