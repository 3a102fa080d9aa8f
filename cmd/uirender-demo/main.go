// Command uirender-demo renders a YAML-described UI scene with uirender.
//
// The default build renders headless on the noop HAL device and prints
// per-frame statistics. Built with -tags opengl it opens a GLFW window
// and draws with the OpenGL backend.
package main

import (
	_ "embed"
	"flag"
	"log"
	"log/slog"
	"os"
)

//go:embed scene.yaml
var defaultScene []byte

// options are the command-line flags shared by both run modes.
type options struct {
	frames  int
	verbose bool
}

func main() {
	var (
		scenePath = flag.String("scene", "", "scene YAML file (default: built-in scene)")
		frames    = flag.Int("frames", 0, "frames to render before exiting (0: until closed, headless: 5)")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	scene, err := loadScene(*scenePath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}

	if err := run(scene, logger, options{frames: *frames, verbose: *verbose}); err != nil {
		log.Fatalf("Demo failed: %v", err)
	}
}

func loadScene(path string) (*Scene, error) {
	if path == "" {
		return ParseScene(defaultScene)
	}
	return LoadScene(path)
}
