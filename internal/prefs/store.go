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

// Package prefs holds the per-user default-project table. The mapping lives
// in memory only: a preference set via /progetti overrides the configured
// default until changed or the process restarts.
package prefs

import (
	"errors"
	"sync"
)

// ErrNoProject is returned when neither a user preference nor a configured
// default project exists; task creation must fail rather than post to an
// arbitrary project.
var ErrNoProject = errors.New("no destination project configured")

// Selection is a chosen Todoist project. Name may be empty when only the id
// is known (e.g. a configured default never seen in a project listing).
type Selection struct {
	ProjectID   string
	ProjectName string
}

// Store maps Telegram user ids to their selected default project. Safe for
// concurrent use; handlers for different users run on separate goroutines.
type Store struct {
	mu        sync.RWMutex
	byUser    map[int64]Selection
	defaultID string
}

// NewStore creates a preference store with an optional globally configured
// default project id (empty string means no default)
func NewStore(defaultProjectID string) *Store {
	return &Store{
		byUser:    make(map[int64]Selection),
		defaultID: defaultProjectID,
	}
}

// Set records (or overwrites) the user's selected project
func (s *Store) Set(userID int64, sel Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = sel
}

// Get returns the user's stored selection, if any
func (s *Store) Get(userID int64) (Selection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sel, ok := s.byUser[userID]
	return sel, ok
}

// Resolve returns the destination project for a user: stored preference
// first, then the configured default, else ErrNoProject.
func (s *Store) Resolve(userID int64) (Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sel, ok := s.byUser[userID]; ok && sel.ProjectID != "" {
		return sel, nil
	}

	if s.defaultID != "" {
		return Selection{ProjectID: s.defaultID}, nil
	}

	return Selection{}, ErrNoProject
}

// DefaultProjectID returns the configured fallback project id
func (s *Store) DefaultProjectID() string {
	return s.defaultID
}
