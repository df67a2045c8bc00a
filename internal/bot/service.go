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

// Package bot is the Telegram listener: it receives updates over long
// polling, dispatches commands and callback queries, and routes audio
// messages into the transcription pipeline.
package bot

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/vocetask/vocetask/internal/logging"
	"github.com/vocetask/vocetask/internal/pipeline"
	"github.com/vocetask/vocetask/internal/prefs"
	"github.com/vocetask/vocetask/internal/todoist"
)

// telegramClient is the subset of the Telegram bot API the handlers use.
// *tgbot.Bot satisfies it; tests inject a fake.
type telegramClient interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *tgbot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *tgbot.AnswerCallbackQueryParams) (bool, error)
	GetFile(ctx context.Context, params *tgbot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

// Runner runs the audio pipeline for one request
type Runner interface {
	Process(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Deps holds everything the listener needs besides the Telegram connection
// itself. NewPipeline receives the Telegram-backed file fetcher once the
// connection exists; this breaks the construction cycle between the bot and
// the pipeline's download stage.
type Deps struct {
	Prefs       *prefs.Store
	Projects    *todoist.ProjectCache
	NewPipeline func(fetcher pipeline.Fetcher) Runner
}

// Service owns the Telegram bot connection and its handlers
type Service struct {
	b        *tgbot.Bot
	handlers *Handlers
}

// NewService connects to Telegram and registers all handlers
func NewService(token string, deps Deps) (*Service, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if deps.NewPipeline == nil {
		return nil, fmt.Errorf("pipeline constructor is required")
	}

	handlers := &Handlers{
		prefs:    deps.Prefs,
		projects: deps.Projects,
	}

	b, err := tgbot.New(token, tgbot.WithDefaultHandler(handlers.defaultHandler))
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	handlers.client = b
	handlers.pipeline = deps.NewPipeline(NewFetcher(b))

	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypeExact, handlers.startHandler)
	// Prefix match so "/progetti!" (forced refresh) also routes here.
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/progetti", tgbot.MatchTypePrefix, handlers.projectsHandler)
	b.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, callbackPrefix, tgbot.MatchTypePrefix, handlers.selectionHandler)

	return &Service{b: b, handlers: handlers}, nil
}

// Start begins long polling and blocks until the context is cancelled
func (s *Service) Start(ctx context.Context) {
	logging.Sugar.Infow("🤖 Telegram listener starting")
	s.b.Start(ctx)
	logging.Sugar.Infow("🤖 Telegram listener stopped")
}

// Handler adapter methods. The registered callbacks receive the concrete
// *tgbot.Bot; the real work happens on Handlers against the telegramClient
// interface so tests can drive it directly.

func (h *Handlers) startHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.guard(func() { h.HandleStart(ctx, update) })
}

func (h *Handlers) projectsHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.guard(func() { h.HandleProjects(ctx, update) })
}

func (h *Handlers) selectionHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.guard(func() { h.HandleProjectSelection(ctx, update) })
}

func (h *Handlers) defaultHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.guard(func() { h.HandleDefault(ctx, update) })
}

// guard keeps a panicking handler from taking the whole listener down;
// subsequent updates must still be served.
func (h *Handlers) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogWarn("Recovered from handler panic", zap.Any("panic", r))
		}
	}()
	fn()
}
