package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"Floodlight/internal/config"
	"Floodlight/internal/engine"
	"Floodlight/internal/logger"

	"go.uber.org/zap"
)

func init() {
	// GLFW and OpenGL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "floodlight.json", "Path to the JSON config file")
	modelPath := flag.String("model", "", "Model to load instead of the configured one (.glb, .gltf or .obj)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	writeConfig := flag.Bool("write-config", false, "Write the effective config to -config and exit")
	flag.Parse()

	if err := logger.InitWithLevel(*logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Log.Fatal("Failed to load config", zap.String("path", *configPath), zap.Error(err))
	}
	if *modelPath != "" {
		cfg.Model.Path = *modelPath
	}

	if *writeConfig {
		if err := cfg.Save(*configPath); err != nil {
			logger.Log.Fatal("Failed to write config", zap.String("path", *configPath), zap.Error(err))
		}
		logger.Log.Info("Config written", zap.String("path", *configPath))
		return
	}

	logger.Log.Info("Floodlight starting", zap.String("config", *configPath), zap.String("model", cfg.Model.Path))

	floodlight := engine.NewEngine(cfg)
	floodlight.SetOnRenderCallback(frameStats(floodlight, 5*time.Second))
	if err := floodlight.Run(); err != nil {
		logger.Log.Fatal("Floodlight stopped", zap.Error(err))
	}
}

// frameStats logs the frame rate and last frame's draw counts at debug level
// once per interval.
func frameStats(e *engine.Engine, interval time.Duration) func(deltaTime float32) {
	var frames int
	var elapsed float32
	return func(deltaTime float32) {
		frames++
		elapsed += deltaTime
		if elapsed < float32(interval.Seconds()) {
			return
		}
		info := e.Renderer.Info()
		logger.Log.Debug("Frame stats",
			zap.Float32("fps", float32(frames)/elapsed),
			zap.Int("calls", info.Calls),
			zap.Int("triangles", info.Triangles))
		frames, elapsed = 0, 0
	}
}
