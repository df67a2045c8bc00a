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

package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskEvent records one complete voice-message interaction: the audio that
// came in, the transcription it produced, and the Todoist task (if any) that
// resulted. One event per inbound audio update.
type TaskEvent struct {
	// Core identification
	UUID      string    `json:"uuid" db:"uuid"`
	ChatID    int64     `json:"chat_id" db:"chat_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`

	// Processing results
	Transcription string `json:"transcription" db:"transcription"`
	ProjectID     string `json:"project_id" db:"project_id"`
	ProjectName   string `json:"project_name" db:"project_name"`
	TaskID        string `json:"task_id" db:"task_id"`

	// Outcome
	ProcessingTime int64  `json:"processing_time_ms" db:"processing_time_ms"`
	Success        bool   `json:"success" db:"success"`
	ErrorMessage   string `json:"error_message,omitempty" db:"error_message"`
}

// NewTaskEvent creates a new TaskEvent with a generated UUID and the current timestamp
func NewTaskEvent(chatID, userID int64) *TaskEvent {
	return &TaskEvent{
		UUID:      uuid.NewString(),
		ChatID:    chatID,
		UserID:    userID,
		Timestamp: time.Now(),
		Success:   true,
	}
}

// SetTranscription sets the transcription result
func (te *TaskEvent) SetTranscription(transcription string) {
	te.Transcription = transcription
}

// SetTask records the destination project and the service-assigned task id
func (te *TaskEvent) SetTask(taskID, projectID, projectName string) {
	te.TaskID = taskID
	te.ProjectID = projectID
	te.ProjectName = projectName
	te.ProcessingTime = time.Since(te.Timestamp).Milliseconds()
}

// SetError marks the event as failed with an error message
func (te *TaskEvent) SetError(err error) {
	te.Success = false
	te.ErrorMessage = err.Error()
	te.ProcessingTime = time.Since(te.Timestamp).Milliseconds()
}

// IsValid performs basic validation on the task event
func (te *TaskEvent) IsValid() error {
	if te.UUID == "" {
		return fmt.Errorf("UUID is required")
	}

	if te.ChatID == 0 {
		return fmt.Errorf("chatID is required")
	}

	if te.UserID == 0 {
		return fmt.Errorf("userID is required")
	}

	if te.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	return nil
}

// String returns a human-readable representation of the task event
func (te *TaskEvent) String() string {
	return fmt.Sprintf("TaskEvent{UUID: %s, ChatID: %d, Transcription: %q, TaskID: %s, Success: %t}",
		te.UUID, te.ChatID, te.Transcription, te.TaskID, te.Success)
}
