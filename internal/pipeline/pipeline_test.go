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

package pipeline

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vocetask/vocetask/internal/events"
	"github.com/vocetask/vocetask/internal/prefs"
	"github.com/vocetask/vocetask/internal/todoist"
)

type fakeFetcher struct {
	err   error
	dir   string
	paths []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, fileID, suffix string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(f.dir, "in-"+fileID+suffix)
	if err := os.WriteFile(path, []byte("audio"), 0o600); err != nil {
		return "", err
	}
	f.paths = append(f.paths, path)
	return path, nil
}

type fakeConverter struct {
	err   error
	paths []string
}

func (c *fakeConverter) ToWAV(ctx context.Context, inputPath string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	path := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".wav"
	if err := os.WriteFile(path, []byte("wav"), 0o600); err != nil {
		return "", err
	}
	c.paths = append(c.paths, path)
	return path, nil
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (tr *fakeTranscriber) TranscribeFile(ctx context.Context, wavPath string) (string, error) {
	tr.calls++
	return tr.text, tr.err
}

type fakeTaskCreator struct {
	err   error
	calls []struct{ content, projectID string }
}

func (tc *fakeTaskCreator) CreateTask(ctx context.Context, content, projectID string) (*todoist.Task, error) {
	tc.calls = append(tc.calls, struct{ content, projectID string }{content, projectID})
	if tc.err != nil {
		return nil, tc.err
	}
	return &todoist.Task{ID: "task-1", Content: content, ProjectID: projectID}, nil
}

type fakeRecorder struct {
	events []*events.TaskEvent
}

func (r *fakeRecorder) Insert(event *events.TaskEvent) error {
	r.events = append(r.events, event)
	return nil
}

type testDeps struct {
	fetcher     *fakeFetcher
	converter   *fakeConverter
	transcriber *fakeTranscriber
	tasks       *fakeTaskCreator
	prefsStore  *prefs.Store
	recorder    *fakeRecorder
	pipeline    *Pipeline
}

func newTestPipeline(t *testing.T, defaultProject string) *testDeps {
	t.Helper()

	d := &testDeps{
		fetcher:     &fakeFetcher{dir: t.TempDir()},
		converter:   &fakeConverter{},
		transcriber: &fakeTranscriber{text: "buy milk"},
		tasks:       &fakeTaskCreator{},
		prefsStore:  prefs.NewStore(defaultProject),
		recorder:    &fakeRecorder{},
	}
	d.pipeline = New(d.fetcher, d.converter, d.transcriber, d.tasks, d.prefsStore).
		WithRecorder(d.recorder)
	return d
}

func defaultRequest() Request {
	return Request{ChatID: 1, UserID: 42, FileID: "file-1", Suffix: ".ogg"}
}

func TestPipeline_RoundTrip(t *testing.T) {
	d := newTestPipeline(t, "")
	d.prefsStore.Set(42, prefs.Selection{ProjectID: "123", ProjectName: "Groceries"})

	result, err := d.pipeline.Process(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(d.tasks.calls) != 1 {
		t.Fatalf("CreateTask calls = %d, want exactly 1", len(d.tasks.calls))
	}
	if d.tasks.calls[0].content != "buy milk" {
		t.Errorf("task content = %q, want %q", d.tasks.calls[0].content, "buy milk")
	}
	if d.tasks.calls[0].projectID != "123" {
		t.Errorf("task project_id = %q, want %q", d.tasks.calls[0].projectID, "123")
	}

	if result.Transcription != "buy milk" {
		t.Errorf("result.Transcription = %q", result.Transcription)
	}
	if result.ProjectName != "Groceries" {
		t.Errorf("result.ProjectName = %q, want %q", result.ProjectName, "Groceries")
	}
	if result.TaskID != "task-1" {
		t.Errorf("result.TaskID = %q, want %q", result.TaskID, "task-1")
	}

	if len(d.recorder.events) != 1 {
		t.Fatalf("journaled events = %d, want 1", len(d.recorder.events))
	}
	if !d.recorder.events[0].Success {
		t.Error("journaled event should be successful")
	}
}

func TestPipeline_ResolvesConfiguredDefault(t *testing.T) {
	d := newTestPipeline(t, "777")

	if _, err := d.pipeline.Process(context.Background(), defaultRequest()); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(d.tasks.calls) != 1 || d.tasks.calls[0].projectID != "777" {
		t.Errorf("task calls = %+v, want one call to project 777", d.tasks.calls)
	}
}

func TestPipeline_NoDestinationFails(t *testing.T) {
	d := newTestPipeline(t, "")

	_, err := d.pipeline.Process(context.Background(), defaultRequest())
	if !errors.Is(err, prefs.ErrNoProject) {
		t.Fatalf("Process() error = %v, want ErrNoProject", err)
	}

	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageResolve {
		t.Errorf("error = %v, want StageResolve", err)
	}

	if len(d.tasks.calls) != 0 {
		t.Errorf("CreateTask calls = %d, want 0 (never post to an arbitrary project)", len(d.tasks.calls))
	}
}

func TestPipeline_EmptyTranscriptionStopsBeforeSubmit(t *testing.T) {
	d := newTestPipeline(t, "777")
	d.transcriber.text = "   "

	_, err := d.pipeline.Process(context.Background(), defaultRequest())
	if !errors.Is(err, ErrEmptyTranscription) {
		t.Fatalf("Process() error = %v, want ErrEmptyTranscription", err)
	}

	if len(d.tasks.calls) != 0 {
		t.Errorf("CreateTask calls = %d, want 0", len(d.tasks.calls))
	}

	if msg := UserMessage(err); !strings.Contains(msg, "vuota") {
		t.Errorf("UserMessage() = %q, want empty-result message, not a generic error", msg)
	}
}

func TestPipeline_ConversionFailureHaltsBeforeTranscribe(t *testing.T) {
	d := newTestPipeline(t, "777")
	d.converter.err = errors.New("ffmpeg not available")

	_, err := d.pipeline.Process(context.Background(), defaultRequest())
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageConvert {
		t.Fatalf("Process() error = %v, want StageConvert", err)
	}

	if d.transcriber.calls != 0 {
		t.Errorf("transcriber calls = %d, want 0 (pipeline halts before transcription)", d.transcriber.calls)
	}
	if len(d.tasks.calls) != 0 {
		t.Errorf("CreateTask calls = %d, want 0", len(d.tasks.calls))
	}
}

func TestPipeline_DownloadFailure(t *testing.T) {
	d := newTestPipeline(t, "777")
	d.fetcher.err = errors.New("telegram file gone")

	_, err := d.pipeline.Process(context.Background(), defaultRequest())
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageDownload {
		t.Fatalf("Process() error = %v, want StageDownload", err)
	}
}

func TestPipeline_SubmitFailureSurfacesStatus(t *testing.T) {
	d := newTestPipeline(t, "777")
	d.tasks.err = &todoist.StatusError{StatusCode: http.StatusUnauthorized}

	_, err := d.pipeline.Process(context.Background(), defaultRequest())
	if err == nil {
		t.Fatal("Process() expected error")
	}

	msg := UserMessage(err)
	if !strings.Contains(msg, "401") {
		t.Errorf("UserMessage() = %q, want to surface status 401", msg)
	}

	if len(d.recorder.events) != 1 || d.recorder.events[0].Success {
		t.Error("failed run should be journaled as unsuccessful")
	}
}

func TestPipeline_CleansUpTempFiles(t *testing.T) {
	d := newTestPipeline(t, "777")

	if _, err := d.pipeline.Process(context.Background(), defaultRequest()); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	for _, path := range append(d.fetcher.paths, d.converter.paths...) {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("temp file %s should have been removed", path)
		}
	}

	// Cleanup also runs when a later stage fails.
	d.transcriber.err = errors.New("model exploded")
	_, _ = d.pipeline.Process(context.Background(), defaultRequest())

	for _, path := range append(d.fetcher.paths, d.converter.paths...) {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("temp file %s should have been removed after failure", path)
		}
	}
}

func TestPipeline_JournalsFailures(t *testing.T) {
	d := newTestPipeline(t, "")

	_, _ = d.pipeline.Process(context.Background(), defaultRequest())

	if len(d.recorder.events) != 1 {
		t.Fatalf("journaled events = %d, want 1", len(d.recorder.events))
	}
	event := d.recorder.events[0]
	if event.Success {
		t.Error("event should be marked failed")
	}
	if event.ErrorMessage == "" {
		t.Error("event should carry the failure message")
	}
	// The transcription is preserved even when no task was created.
	if event.Transcription != "buy milk" {
		t.Errorf("event.Transcription = %q, want %q", event.Transcription, "buy milk")
	}
}

func TestUserMessage_DefaultCategory(t *testing.T) {
	msg := UserMessage(errors.New("anything"))
	if msg == "" {
		t.Error("UserMessage() should never be empty")
	}
}
