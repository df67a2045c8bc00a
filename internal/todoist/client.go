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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vocetask/vocetask/internal/logging"
	"go.uber.org/zap"
)

// DefaultBaseURL is the Todoist REST v2 endpoint
const DefaultBaseURL = "https://api.todoist.com/rest/v2"

// Project is one Todoist project as returned by GET /projects
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Task is the subset of the task resource this bot cares about
type Task struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	ProjectID string `json:"project_id"`
}

// StatusError is returned when Todoist answers with a non-2xx status.
// The status code is surfaced to the user verbatim, single attempt, no retry.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("todoist responded with status %d", e.StatusCode)
}

// Client is a minimal Todoist REST v2 client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the REST endpoint (used in tests)
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a new Todoist client authenticated with a bearer token
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListProjects fetches the full project list
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	if c.token == "" {
		return nil, fmt.Errorf("todoist token not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/projects", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build projects request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("projects request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects response: %w", err)
	}

	if resp.StatusCode >= 300 {
		logging.LogTodoistOperation("list_projects",
			zap.Int("status", resp.StatusCode))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var projects []Project
	if err := json.Unmarshal(body, &projects); err != nil {
		return nil, fmt.Errorf("unexpected projects response format: %w", err)
	}

	logging.LogTodoistOperation("list_projects",
		zap.Int("status", resp.StatusCode),
		zap.Int("count", len(projects)))
	return projects, nil
}

// CreateTask posts a new task with the given content into the given project.
// projectID must not be empty; destination resolution happens upstream.
func (c *Client) CreateTask(ctx context.Context, content, projectID string) (*Task, error) {
	if c.token == "" {
		return nil, fmt.Errorf("todoist token not configured")
	}
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}

	payload := map[string]string{
		"content":    content,
		"project_id": projectID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build task request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("task request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read task response: %w", err)
	}

	if resp.StatusCode >= 300 {
		logging.LogTodoistOperation("create_task",
			zap.Int("status", resp.StatusCode))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("unexpected task response format: %w", err)
	}

	logging.LogTodoistOperation("create_task",
		zap.Int("status", resp.StatusCode),
		zap.String("task_id", task.ID),
		zap.String("project_id", task.ProjectID))
	return &task, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
}
