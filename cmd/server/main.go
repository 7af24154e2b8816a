// Package main is the entry point for the README generation server.
//
// Its job is deliberately small: read configuration, build the logger,
// construct the optional AI backend, and hand everything to internal/server.
// All actual behaviour lives in the internal packages.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/readmegen/internal/config"
	"github.com/sakif/readmegen/internal/server"
	"github.com/sakif/readmegen/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg := config.Load()

	// The AI backend is optional. Without a project ID the server still
	// runs; every README comes from the deterministic fallback instead.
	var llm service.LLM
	if cfg.GeminiProject != "" {
		vertex, err := service.NewVertexLLM(context.Background(), cfg.GeminiProject, cfg.GeminiLocation, cfg.GeminiModel)
		if err != nil {
			logger.Warn("AI backend unavailable — falling back to template generation",
				slog.String("error", err.Error()),
			)
		} else {
			defer vertex.Close()
			llm = vertex
		}
	} else {
		logger.Info("GCP_PROJECT_ID not set — AI generation disabled, using fallback")
	}

	srv, err := server.New(cfg, logger, llm)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
