package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"astromon/db"
	qhttp "astromon/http"
	"astromon/logger"
	"astromon/ml"
)

type Config struct {
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Model struct {
		Path            string `yaml:"path"`
		NumTrees        int    `yaml:"num_trees"`
		MaxDepth        int    `yaml:"max_depth"`
		MinSamplesSplit int    `yaml:"min_samples_split"`
	} `yaml:"model"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(config.Log.Level, config.Log.File); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 2. Initialize database
	if err := db.InitDB(config.Database.Path); err != nil {
		zap.S().Fatalw("failed to initialize database", "error", err)
	}
	defer db.Close()
	zap.S().Infow("database initialized", "path", config.Database.Path)

	initializeService(config)

	// 3. Start HTTP server
	serverConfig := qhttp.DefaultServerConfig()
	serverConfig.Port = config.Http.Port
	if config.Http.TimeoutSeconds > 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	if len(config.Http.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}

	server := qhttp.NewServer(serverConfig)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalw("HTTP server failed", "error", err)
		}
	}()

	stopWatch := watchModelFile(config.Model.Path)
	defer stopWatch()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutting down")

	if err := server.Stop(); err != nil {
		zap.S().Errorw("server forced to shutdown", "error", err)
	}
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func initializeService(config *Config) {
	if config.Model.Path != "" {
		if err := os.MkdirAll(filepath.Dir(config.Model.Path), 0o755); err != nil {
			zap.S().Warnw("failed to create model dir", "error", err)
		}
		qhttp.SetModelPath(config.Model.Path)
		if model, err := ml.LoadModel(config.Model.Path); err == nil {
			qhttp.SetModel(model)
			zap.S().Infow("loaded saved model",
				"path", config.Model.Path,
				"samples", model.Stats.Samples,
				"features", model.Stats.Features,
			)
		}
	}

	qhttp.SetTrainConfig(ml.TrainConfig{
		NumTrees:        config.Model.NumTrees,
		MaxDepth:        config.Model.MaxDepth,
		MinSamplesSplit: config.Model.MinSamplesSplit,
	})
}

// watchModelFile reloads the model when the saved bundle is replaced
// on disk, e.g. by cmd/train_model.
func watchModelFile(path string) func() {
	if path == "" {
		return func() {}
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		zap.S().Warnw("model watcher unavailable", "error", err)
		return func() {}
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		zap.S().Warnw("model watcher unavailable", "error", err)
		watcher.Close()
		return func() {}
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := qhttp.ReloadModel(); err != nil {
					zap.S().Warnw("model reload failed", "error", err)
					continue
				}
				zap.S().Infow("model reloaded", "path", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				zap.S().Warnw("model watcher error", "error", err)
			}
		}
	}()

	return func() { watcher.Close() }
}
