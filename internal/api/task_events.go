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

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vocetask/vocetask/internal/events"
	"github.com/vocetask/vocetask/internal/logging"
	"github.com/vocetask/vocetask/internal/storage"
)

// TaskEventsHandler handles HTTP requests for the task event journal
type TaskEventsHandler struct {
	store *storage.TaskEventsStore
}

// NewTaskEventsHandler creates a new task events handler
func NewTaskEventsHandler(store *storage.TaskEventsStore) *TaskEventsHandler {
	return &TaskEventsHandler{store: store}
}

// ListTaskEventsResponse represents the response for listing task events
type ListTaskEventsResponse struct {
	Events     []*events.TaskEvent `json:"events"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
}

// HandleTaskEvents handles GET /api/task-events
func (h *TaskEventsHandler) HandleTaskEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.listTaskEvents(w, r)
}

// HandleTaskEventByUUID handles GET /api/task-events/{uuid}
func (h *TaskEventsHandler) HandleTaskEventByUUID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uuid := strings.TrimPrefix(r.URL.Path, "/api/task-events/")
	if uuid == "" || strings.Contains(uuid, "/") {
		http.Error(w, "Event UUID is required", http.StatusBadRequest)
		return
	}

	event, err := h.store.GetByUUID(uuid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Task event not found", http.StatusNotFound)
			return
		}
		logging.LogError(err, "Failed to get task event")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, event)
}

func (h *TaskEventsHandler) listTaskEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := parseIntParam(query.Get("page"), 1)
	pageSize := parseIntParam(query.Get("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	options := storage.ListOptions{
		UserID: int64(parseIntParam(query.Get("user_id"), 0)),
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if successStr := query.Get("success"); successStr != "" {
		if success, err := strconv.ParseBool(successStr); err == nil && success {
			options.SuccessOnly = true
		}
	}

	total, err := h.store.Count(options)
	if err != nil {
		logging.LogError(err, "Failed to count task events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	list, err := h.store.List(options)
	if err != nil {
		logging.LogError(err, "Failed to list task events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	writeJSON(w, ListTaskEventsResponse{
		Events:     list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.LogError(err, "Failed to write JSON response")
	}
}

func parseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
