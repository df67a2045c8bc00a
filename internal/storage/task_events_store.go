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

package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vocetask/vocetask/internal/events"
	"github.com/vocetask/vocetask/internal/logging"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a lookup matches no task event
var ErrNotFound = errors.New("task event not found")

// TaskEventsStore handles database operations for task events
type TaskEventsStore struct {
	db *Database
}

// NewTaskEventsStore creates a new task events store
func NewTaskEventsStore(db *Database) *TaskEventsStore {
	return &TaskEventsStore{db: db}
}

// ListOptions controls filtering and pagination for List
type ListOptions struct {
	UserID      int64
	SuccessOnly bool
	Limit       int
	Offset      int
}

// Insert stores a new task event in the database
func (s *TaskEventsStore) Insert(event *events.TaskEvent) error {
	if err := event.IsValid(); err != nil {
		return fmt.Errorf("invalid task event: %w", err)
	}

	query := `
		INSERT INTO task_events (
			uuid, chat_id, user_id, timestamp,
			transcription, project_id, project_name, task_id,
			processing_time_ms, success, error_message
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?
		)`

	_, err := s.db.DB().Exec(query,
		event.UUID, event.ChatID, event.UserID, event.Timestamp,
		event.Transcription, event.ProjectID, event.ProjectName, event.TaskID,
		event.ProcessingTime, event.Success, event.ErrorMessage,
	)

	if err != nil {
		return fmt.Errorf("failed to insert task event: %w", err)
	}

	logging.LogDatabaseOperation("insert", "task_events",
		zap.String("uuid", event.UUID),
		zap.Bool("success", event.Success),
	)
	return nil
}

// GetByUUID retrieves a task event by its UUID
func (s *TaskEventsStore) GetByUUID(uuid string) (*events.TaskEvent, error) {
	query := `
		SELECT uuid, chat_id, user_id, timestamp,
			   transcription, project_id, project_name, task_id,
			   processing_time_ms, success, error_message
		FROM task_events
		WHERE uuid = ?`

	row := s.db.DB().QueryRow(query, uuid)
	return s.scanTaskEvent(row)
}

// List retrieves task events with pagination and filtering,
// most recent first
func (s *TaskEventsStore) List(options ListOptions) ([]*events.TaskEvent, error) {
	query, args := s.buildListQuery(options)

	rows, err := s.db.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query task events: %w", err)
	}
	defer rows.Close()

	var eventsList []*events.TaskEvent
	for rows.Next() {
		event, err := s.scanTaskEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task event: %w", err)
		}
		eventsList = append(eventsList, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task events: %w", err)
	}

	return eventsList, nil
}

// Count returns the total number of task events matching the filter
func (s *TaskEventsStore) Count(options ListOptions) (int64, error) {
	options.Limit = 0
	options.Offset = 0
	query, args := s.buildListQuery(options)

	countQuery := "SELECT COUNT(*) FROM (" + query + ") as filtered"

	var count int64
	err := s.db.DB().QueryRow(countQuery, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count task events: %w", err)
	}

	return count, nil
}

// GetRecentByUser retrieves recent events for a specific user
func (s *TaskEventsStore) GetRecentByUser(userID int64, limit int) ([]*events.TaskEvent, error) {
	options := ListOptions{
		UserID: userID,
		Limit:  limit,
	}
	return s.List(options)
}

// buildListQuery assembles the SELECT with optional filters
func (s *TaskEventsStore) buildListQuery(options ListOptions) (string, []interface{}) {
	query := `
		SELECT uuid, chat_id, user_id, timestamp,
			   transcription, project_id, project_name, task_id,
			   processing_time_ms, success, error_message
		FROM task_events`

	var conditions []string
	var args []interface{}

	if options.UserID != 0 {
		conditions = append(conditions, "user_id = ?")
		args = append(args, options.UserID)
	}
	if options.SuccessOnly {
		conditions = append(conditions, "success = 1")
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY timestamp DESC"

	if options.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, options.Limit)

		if options.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, options.Offset)
		}
	}

	return query, args
}

// scanner abstracts sql.Row and sql.Rows for scanTaskEvent
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTaskEvent scans a database row into a TaskEvent
func (s *TaskEventsStore) scanTaskEvent(row scanner) (*events.TaskEvent, error) {
	var event events.TaskEvent

	err := row.Scan(
		&event.UUID, &event.ChatID, &event.UserID, &event.Timestamp,
		&event.Transcription, &event.ProjectID, &event.ProjectName, &event.TaskID,
		&event.ProcessingTime, &event.Success, &event.ErrorMessage,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &event, nil
}
