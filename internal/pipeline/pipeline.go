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

// Package pipeline runs the audio-handling chain for one inbound voice
// message: fetch the file, convert it to WAV, transcribe it, resolve the
// destination project, and create the Todoist task. Each step is an explicit
// fallible call; the first failure aborts the chain with a typed StageError.
package pipeline

import (
	"context"
	"os"
	"strings"

	"github.com/vocetask/vocetask/internal/events"
	"github.com/vocetask/vocetask/internal/logging"
	"github.com/vocetask/vocetask/internal/prefs"
	"github.com/vocetask/vocetask/internal/todoist"
	"go.uber.org/zap"
)

// Fetcher downloads a platform file reference to local storage
type Fetcher interface {
	Fetch(ctx context.Context, fileID, suffix string) (string, error)
}

// Converter normalizes an arbitrary audio container to a 16 kHz mono WAV
type Converter interface {
	ToWAV(ctx context.Context, inputPath string) (string, error)
}

// Transcriber converts a normalized WAV file to text
type Transcriber interface {
	TranscribeFile(ctx context.Context, wavPath string) (string, error)
}

// TaskCreator creates a task in the task-management service
type TaskCreator interface {
	CreateTask(ctx context.Context, content, projectID string) (*todoist.Task, error)
}

// DestinationResolver resolves a user's destination project
type DestinationResolver interface {
	Resolve(userID int64) (prefs.Selection, error)
}

// EventRecorder journals completed pipeline runs. Recording failures never
// fail the request.
type EventRecorder interface {
	Insert(event *events.TaskEvent) error
}

// EventPublisher broadcasts successfully created tasks (e.g. over NATS)
type EventPublisher interface {
	PublishTaskCreated(event *events.TaskEvent) error
}

// Request is one inbound audio message to process
type Request struct {
	ChatID int64
	UserID int64
	FileID string
	Suffix string // original container suffix, e.g. ".ogg"
}

// Result is the outcome of a successful pipeline run
type Result struct {
	RequestID     string
	Transcription string
	ProjectID     string
	ProjectName   string
	TaskID        string
}

// Pipeline wires the sequential stages together
type Pipeline struct {
	fetcher     Fetcher
	converter   Converter
	transcriber Transcriber
	tasks       TaskCreator
	resolver    DestinationResolver

	recorder  EventRecorder  // optional
	publisher EventPublisher // optional
}

// New creates a pipeline from its stage implementations
func New(fetcher Fetcher, converter Converter, transcriber Transcriber, tasks TaskCreator, resolver DestinationResolver) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		converter:   converter,
		transcriber: transcriber,
		tasks:       tasks,
		resolver:    resolver,
	}
}

// WithRecorder attaches a task-event journal
func (p *Pipeline) WithRecorder(recorder EventRecorder) *Pipeline {
	p.recorder = recorder
	return p
}

// WithPublisher attaches a task-created event publisher
func (p *Pipeline) WithPublisher(publisher EventPublisher) *Pipeline {
	p.publisher = publisher
	return p
}

// Process runs the full chain for one request. On failure it returns a
// *StageError; the failure is also journaled. Temporary files are removed on
// every exit path.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Result, error) {
	event := events.NewTaskEvent(req.ChatID, req.UserID)

	result, err := p.run(ctx, req, event)
	if err != nil {
		event.SetError(err)
	}
	p.record(event)

	if err == nil && p.publisher != nil {
		if pubErr := p.publisher.PublishTaskCreated(event); pubErr != nil {
			logging.LogWarn("Failed to publish task event",
				zap.String("request_id", event.UUID),
				zap.Error(pubErr))
		}
	}

	return result, err
}

func (p *Pipeline) run(ctx context.Context, req Request, event *events.TaskEvent) (*Result, error) {
	logging.LogPipelineStage(event.UUID, string(StageDownload),
		zap.String("file_id", req.FileID))

	audioPath, err := p.fetcher.Fetch(ctx, req.FileID, req.Suffix)
	if err != nil {
		return nil, stageErr(StageDownload, err)
	}
	defer removeQuietly(audioPath)

	logging.LogPipelineStage(event.UUID, string(StageConvert),
		zap.String("input", audioPath))

	wavPath, err := p.converter.ToWAV(ctx, audioPath)
	if err != nil {
		return nil, stageErr(StageConvert, err)
	}
	defer removeQuietly(wavPath)

	logging.LogPipelineStage(event.UUID, string(StageTranscribe))

	text, err := p.transcriber.TranscribeFile(ctx, wavPath)
	if err != nil {
		return nil, stageErr(StageTranscribe, err)
	}

	text = strings.TrimSpace(text)
	event.SetTranscription(text)
	if text == "" {
		return nil, stageErr(StageTranscribe, ErrEmptyTranscription)
	}

	selection, err := p.resolver.Resolve(req.UserID)
	if err != nil {
		return nil, stageErr(StageResolve, err)
	}

	logging.LogPipelineStage(event.UUID, string(StageSubmit),
		zap.String("project_id", selection.ProjectID))

	task, err := p.tasks.CreateTask(ctx, text, selection.ProjectID)
	if err != nil {
		return nil, stageErr(StageSubmit, err)
	}

	event.SetTask(task.ID, selection.ProjectID, selection.ProjectName)

	return &Result{
		RequestID:     event.UUID,
		Transcription: text,
		ProjectID:     selection.ProjectID,
		ProjectName:   selection.ProjectName,
		TaskID:        task.ID,
	}, nil
}

func (p *Pipeline) record(event *events.TaskEvent) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Insert(event); err != nil {
		logging.LogWarn("Failed to journal task event",
			zap.String("request_id", event.UUID),
			zap.Error(err))
	}
}

func removeQuietly(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
