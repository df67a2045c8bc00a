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

// Package server exposes the status HTTP surface: health checks and the
// read-only task event journal. The Telegram listener is the only ingress
// for actual work; this server is for operators.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/vocetask/vocetask/internal/api"
	"github.com/vocetask/vocetask/internal/config"
	"github.com/vocetask/vocetask/internal/logging"
	"github.com/vocetask/vocetask/internal/storage"
)

// Server is the status HTTP server
type Server struct {
	cfg    *config.Config
	mux    *http.ServeMux
	server *http.Server
	db     *storage.Database
	start  time.Time
}

// New creates a status server backed by the task event store
func New(cfg *config.Config, db *storage.Database, store *storage.TaskEventsStore) *Server {
	mux := http.NewServeMux()

	s := &Server{
		cfg:   cfg,
		mux:   mux,
		db:    db,
		start: time.Now(),
	}

	s.server = &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.routes(api.NewTaskEventsHandler(store))

	return s
}

func (s *Server) routes(taskEvents *api.TaskEventsHandler) {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/task-events", taskEvents.HandleTaskEvents)
	s.mux.HandleFunc("/api/task-events/", taskEvents.HandleTaskEventByUUID)

	logging.Sugar.Infow("🌐 HTTP routes configured",
		"health_endpoint", "/health",
		"task_events_endpoint", "/api/task-events")
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	logging.Sugar.Infow("🚀 Status server starting", "addr", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	logging.Sugar.Infow("🛑 Shutting down status server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logging.Sugar.Infow("✅ Status server shut down")
	return nil
}

// handleHealth reports process health, including database reachability
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"uptime":    time.Since(s.start).String(),
	}

	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			health["status"] = "degraded"
			health["database"] = err.Error()
		} else {
			health["database"] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		logging.Sugar.Errorw("Failed to write health response", "error", err)
	}
}
