package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/dmitrymomot/mvc"
	"github.com/dmitrymomot/mvc/example/controllers"
	"github.com/dmitrymomot/mvc/middlewares"
	"github.com/dmitrymomot/mvc/pkg/auth"
	"github.com/dmitrymomot/mvc/pkg/config"
)

func main() {
	configPath := flag.String("config", getEnv("CONFIG", "example/config.yaml"), "path to a YAML or TOML config file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := mvc.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	hasher := auth.BcryptHasher{}
	app, err := mvc.Bootstrap(ctx, cfg,
		mvc.WithControllers(
			controllers.Index{},
			controllers.User{Hasher: hasher},
		),
		mvc.WithHasher(hasher),
		mvc.WithRouter(config.RouterConfig{
			DefaultController: cfg.Router.DefaultController,
			DefaultMethod:     cfg.Router.DefaultMethod,
			Forwarders: append([]config.Forwarder{
				// /u/7 is a short link to a profile.
				{Pattern: `^u/(\d+)$`, Replacement: "user/view/$1"},
			}, cfg.Router.Forwarders...),
		}),
		mvc.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Timing(),
			middlewares.Recover(),
		),
	)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	// Run the application (blocks until shutdown)
	if err := app.Run(ctx); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// getEnv returns environment variable value or default if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
