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

package todoist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_ListProjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/projects" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		_ = json.NewEncoder(w).Encode([]Project{
			{ID: "123", Name: "Groceries"},
			{ID: "456", Name: "Work"},
		})
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	projects, err := client.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}

	if len(projects) != 2 {
		t.Fatalf("len(projects) = %d, want 2", len(projects))
	}
	if projects[0].ID != "123" || projects[0].Name != "Groceries" {
		t.Errorf("projects[0] = %+v", projects[0])
	}
}

func TestClient_ListProjectsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	_, err := client.ListProjects(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", statusErr.StatusCode)
	}
}

func TestClient_ListProjectsNoToken(t *testing.T) {
	client := NewClient("")
	if _, err := client.ListProjects(context.Background()); err == nil {
		t.Error("ListProjects() expected error without token")
	}
}

func TestClient_CreateTask(t *testing.T) {
	var gotPayload map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Task{ID: "task-42", Content: gotPayload["content"], ProjectID: gotPayload["project_id"]})
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	task, err := client.CreateTask(context.Background(), "buy milk", "123")
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if gotPayload["content"] != "buy milk" {
		t.Errorf("payload content = %q, want %q", gotPayload["content"], "buy milk")
	}
	if gotPayload["project_id"] != "123" {
		t.Errorf("payload project_id = %q, want %q", gotPayload["project_id"], "123")
	}
	if task.ID != "task-42" {
		t.Errorf("task.ID = %q, want %q", task.ID, "task-42")
	}
}

func TestClient_CreateTaskUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-token", WithBaseURL(server.URL))

	_, err := client.CreateTask(context.Background(), "buy milk", "123")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", statusErr.StatusCode)
	}
}

func TestClient_CreateTaskRequiresProject(t *testing.T) {
	client := NewClient("test-token")
	if _, err := client.CreateTask(context.Background(), "buy milk", ""); err == nil {
		t.Error("CreateTask() expected error for empty project id")
	}
}
