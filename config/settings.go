package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "settings.json"

type Settings struct {
	Window WindowSettings `json:"window" toml:"window"`
	Camera CameraSettings `json:"camera" toml:"camera"`
	Volume VolumeSettings `json:"volume" toml:"volume"`
	Render RenderSettings `json:"render" toml:"render"`
	Server ServerSettings `json:"server" toml:"server"`

	// Source is the file the settings were read from, empty for defaults.
	Source string `json:"-" toml:"-"`
}

type WindowSettings struct {
	Width  int    `json:"width" toml:"width"`
	Height int    `json:"height" toml:"height"`
	Title  string `json:"title" toml:"title"`
}

type CameraSettings struct {
	// Distance of 0 derives the start distance from the proxy mesh.
	Distance        float64 `json:"distance" toml:"distance"`
	DragSensitivity float64 `json:"dragSensitivity" toml:"dragSensitivity"`
	ZoomSensitivity float64 `json:"zoomSensitivity" toml:"zoomSensitivity"`
	// WheelScale converts scroll wheel lines into pointer wheel deltas.
	WheelScale float64 `json:"wheelScale" toml:"wheelScale"`
}

type VolumeSettings struct {
	Width   int    `json:"width" toml:"width"`
	Height  int    `json:"height" toml:"height"`
	Depth   int    `json:"depth" toml:"depth"`
	Pattern string `json:"pattern" toml:"pattern"`
	Center  bool   `json:"center" toml:"center"`
}

type RenderSettings struct {
	Backend   string `json:"backend" toml:"backend"`
	Mode      string `json:"mode" toml:"mode"`
	ShowStats bool   `json:"showStats" toml:"showStats"`
	VSync     bool   `json:"vsync" toml:"vsync"`
}

type ServerSettings struct {
	Enabled bool   `json:"enabled" toml:"enabled"`
	Addr    string `json:"addr" toml:"addr"`
}

// Defaults mirrors the reference viewer: a 1200x800 canvas and a 64^3
// gradient volume rendered by the OpenGL backend.
func Defaults() Settings {
	return Settings{
		Window: WindowSettings{
			Width:  1200,
			Height: 800,
			Title:  "Volume Viewer",
		},
		Camera: CameraSettings{
			DragSensitivity: 0.01,
			ZoomSensitivity: 0.01,
			WheelScale:      100,
		},
		Volume: VolumeSettings{
			Width:   64,
			Height:  64,
			Depth:   64,
			Pattern: "gradient",
		},
		Render: RenderSettings{
			Backend:   "gl",
			Mode:      "volume",
			ShowStats: true,
			VSync:     true,
		},
		Server: ServerSettings{
			Addr: "localhost:8080",
		},
	}
}

// Load reads settings from path on top of the defaults. Files ending in
// .toml are decoded as TOML, anything else as JSON; both use the same keys.
// A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Defaults()
	if path == "" {
		path = DefaultPath
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, err
	}
	defer file.Close()

	if err := decode(file, path, &s); err != nil {
		return s, fmt.Errorf("error parsing %s: %w", path, err)
	}
	s.Source = path

	return s, s.Validate()
}

func decode(r io.Reader, path string, s *Settings) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.NewDecoder(r).DisallowUnknownFields().Decode(s)
	}
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(s)
}

// Validate rejects settings the viewer cannot start with.
func (s Settings) Validate() error {
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", s.Window.Width, s.Window.Height)
	}
	if s.Volume.Width <= 0 || s.Volume.Height <= 0 || s.Volume.Depth <= 0 {
		return fmt.Errorf("volume dimensions must be positive, got %dx%dx%d",
			s.Volume.Width, s.Volume.Height, s.Volume.Depth)
	}
	if s.Camera.Distance < 0 {
		return fmt.Errorf("camera distance must not be negative, got %g", s.Camera.Distance)
	}
	switch s.Render.Backend {
	case "gl", "raylib":
	default:
		return fmt.Errorf("unknown backend %q", s.Render.Backend)
	}
	return nil
}
