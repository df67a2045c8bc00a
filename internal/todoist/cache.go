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
	"sync"
	"time"
)

// ProjectLister fetches the current project list from the service
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]Project, error)
}

// ProjectCache keeps the last fetched project list for a TTL so that
// repeated /progetti requests don't hammer the REST API. Entries are only
// held for one listing window; everything else is fetched transiently.
type ProjectCache struct {
	lister ProjectLister
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	projects  []Project
	expiresAt time.Time
}

// NewProjectCache creates a cache around the given lister
func NewProjectCache(lister ProjectLister, ttl time.Duration) *ProjectCache {
	return &ProjectCache{
		lister: lister,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Projects returns the cached project list, refreshing it when expired or
// when forceRefresh is set
func (pc *ProjectCache) Projects(ctx context.Context, forceRefresh bool) ([]Project, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if !forceRefresh && pc.projects != nil && pc.now().Before(pc.expiresAt) {
		return pc.projects, nil
	}

	projects, err := pc.lister.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	pc.projects = projects
	pc.expiresAt = pc.now().Add(pc.ttl)
	return projects, nil
}

// Lookup finds a cached project by id without triggering a refresh.
// Returns false when the list is stale or the id is unknown.
func (pc *ProjectCache) Lookup(id string) (Project, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.projects == nil || !pc.now().Before(pc.expiresAt) {
		return Project{}, false
	}

	for _, p := range pc.projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}
