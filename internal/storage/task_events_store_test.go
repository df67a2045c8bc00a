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
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/vocetask/vocetask/internal/events"
)

func newTestStore(t *testing.T) *TaskEventsStore {
	t.Helper()

	db, err := NewDatabase(DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewTaskEventsStore(db)
}

func TestTaskEventsStore_InsertAndGet(t *testing.T) {
	store := newTestStore(t)

	event := events.NewTaskEvent(100, 200)
	event.SetTranscription("buy milk")
	event.SetTask("task-1", "123", "Groceries")

	if err := store.Insert(event); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := store.GetByUUID(event.UUID)
	if err != nil {
		t.Fatalf("GetByUUID() error = %v", err)
	}

	if got.Transcription != "buy milk" {
		t.Errorf("Transcription = %q, want %q", got.Transcription, "buy milk")
	}
	if got.TaskID != "task-1" {
		t.Errorf("TaskID = %q, want %q", got.TaskID, "task-1")
	}
	if got.ProjectName != "Groceries" {
		t.Errorf("ProjectName = %q, want %q", got.ProjectName, "Groceries")
	}
	if !got.Success {
		t.Error("Success should be true")
	}
}

func TestTaskEventsStore_InsertInvalid(t *testing.T) {
	store := newTestStore(t)

	event := events.NewTaskEvent(100, 200)
	event.UUID = ""

	if err := store.Insert(event); err == nil {
		t.Error("Insert() expected error for invalid event")
	}
}

func TestTaskEventsStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetByUUID("no-such-uuid"); err == nil {
		t.Error("GetByUUID() expected error for missing event")
	}
}

func TestTaskEventsStore_ListAndCount(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		event := events.NewTaskEvent(1, 10)
		event.Timestamp = time.Now().Add(time.Duration(i) * time.Second)
		event.SetTranscription("ok")
		event.SetTask("t", "p", "P")
		if err := store.Insert(event); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	failed := events.NewTaskEvent(1, 20)
	failed.SetError(errors.New("conversion failed"))
	if err := store.Insert(failed); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	all, err := store.List(ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("len(all) = %d, want 4", len(all))
	}

	byUser, err := store.GetRecentByUser(10, 10)
	if err != nil {
		t.Fatalf("GetRecentByUser() error = %v", err)
	}
	if len(byUser) != 3 {
		t.Errorf("len(byUser) = %d, want 3", len(byUser))
	}

	successOnly, err := store.List(ListOptions{SuccessOnly: true})
	if err != nil {
		t.Fatalf("List(SuccessOnly) error = %v", err)
	}
	if len(successOnly) != 3 {
		t.Errorf("len(successOnly) = %d, want 3", len(successOnly))
	}

	count, err := store.Count(ListOptions{UserID: 20})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count(user 20) = %d, want 1", count)
	}

	limited, err := store.List(ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("List(Limit) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len(limited) = %d, want 2", len(limited))
	}
}
