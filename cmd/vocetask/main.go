/*
 * This file is part of VoceTask (https://github.com/vocetask/vocetask).
 * Copyright (C) 2025 VoceTask Authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vocetask/vocetask/internal/audio"
	"github.com/vocetask/vocetask/internal/bot"
	"github.com/vocetask/vocetask/internal/config"
	"github.com/vocetask/vocetask/internal/logging"
	"github.com/vocetask/vocetask/internal/messaging"
	"github.com/vocetask/vocetask/internal/pipeline"
	"github.com/vocetask/vocetask/internal/prefs"
	"github.com/vocetask/vocetask/internal/server"
	"github.com/vocetask/vocetask/internal/storage"
	"github.com/vocetask/vocetask/internal/todoist"
	"github.com/vocetask/vocetask/internal/transcriber"
)

func main() {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeWithConfig(logging.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	if cfg.Telegram.Token == "" {
		logging.Sugar.Fatalw("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.Todoist.Token == "" {
		logging.Sugar.Fatalw("TODOIST_API_TOKEN is required")
	}
	if err := audio.CheckFFmpeg(""); err != nil {
		logging.Sugar.Fatalw("ffmpeg is required", "error", err)
	}

	db, err := storage.NewDatabase(storage.DatabaseConfig{Path: cfg.Server.DBPath})
	if err != nil {
		logging.Sugar.Fatalw("Failed to open database", "error", err)
	}
	defer db.Close()
	store := storage.NewTaskEventsStore(db)

	todoistClient := todoist.NewClient(cfg.Todoist.Token,
		todoist.WithBaseURL(cfg.Todoist.BaseURL),
		todoist.WithTimeout(cfg.Todoist.Timeout),
	)
	projects := todoist.NewProjectCache(todoistClient, cfg.Todoist.ProjectCacheTTL)
	preferences := prefs.NewStore(cfg.Todoist.DefaultProjectID)

	stt, err := transcriber.NewWhisperTranscriber(cfg.Whisper.ModelPath, cfg.Whisper.Language, cfg.Whisper.Threads)
	if err != nil {
		logging.Sugar.Fatalw("Failed to load whisper model", "error", err, "model_path", cfg.Whisper.ModelPath)
	}
	defer stt.Close()

	var nats *messaging.NATSService
	if cfg.NATS.URL != "" {
		nats = messaging.NewNATSService(cfg.NATS)
		if err := nats.Connect(cfg.NATS); err != nil {
			logging.Sugar.Fatalw("Failed to connect to NATS", "error", err)
		}
		defer nats.Close()
	}

	svc, err := bot.NewService(cfg.Telegram.Token, bot.Deps{
		Prefs:    preferences,
		Projects: projects,
		NewPipeline: func(fetcher pipeline.Fetcher) bot.Runner {
			return pipeline.New(fetcher, audio.NewFFmpegConverter(), stt, todoistClient, preferences).
				WithRecorder(store).
				WithPublisher(nats)
		},
	})
	if err != nil {
		logging.Sugar.Fatalw("Failed to create Telegram listener", "error", err)
	}

	statusServer := server.New(cfg, db, store)
	go func() {
		if err := statusServer.Start(); err != nil {
			logging.Sugar.Errorw("Status server failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Sugar.Infow("🎙️ VoceTask starting",
		"default_project", cfg.Todoist.DefaultProjectID,
		"model_path", cfg.Whisper.ModelPath,
		"http_port", cfg.Server.Port,
		"nats_enabled", cfg.NATS.URL != "")

	svc.Start(ctx)

	if err := statusServer.Stop(); err != nil {
		logging.LogError(err, "Failed to stop status server")
	}

	logging.Sugar.Infow("👋 VoceTask stopped")
}
