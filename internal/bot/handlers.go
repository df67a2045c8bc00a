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

package bot

import (
	"context"
	"path/filepath"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/vocetask/vocetask/internal/logging"
	"github.com/vocetask/vocetask/internal/pipeline"
	"github.com/vocetask/vocetask/internal/prefs"
	"github.com/vocetask/vocetask/internal/todoist"
)

const callbackPrefix = "proj:"

// Handlers implements the command, callback and audio update handlers
type Handlers struct {
	client   telegramClient
	prefs    *prefs.Store
	projects *todoist.ProjectCache
	pipeline Runner
}

// HandleStart replies with static help text
func (h *Handlers) HandleStart(ctx context.Context, update *models.Update) {
	message := update.Message
	if message == nil {
		return
	}

	logging.LogTelegramUpdate("command", message.Chat.ID, zap.String("command", "/start"))

	h.reply(ctx, message.Chat.ID, startText)
}

// HandleProjects fetches the Todoist project list and renders it as an
// inline keyboard. A trailing "!" on the command forces a cache refresh.
func (h *Handlers) HandleProjects(ctx context.Context, update *models.Update) {
	message := update.Message
	if message == nil {
		return
	}

	logging.LogTelegramUpdate("command", message.Chat.ID, zap.String("command", "/progetti"))

	forceRefresh := strings.HasSuffix(strings.TrimSpace(message.Text), "!")
	projects, err := h.projects.Projects(ctx, forceRefresh)
	if err != nil || len(projects) == 0 {
		if err != nil {
			logging.LogError(err, "Failed to fetch Todoist projects")
		}
		h.reply(ctx, message.Chat.ID, projectsUnavailableText)
		return
	}

	keyboard := make([][]models.InlineKeyboardButton, 0, len(projects))
	for _, project := range projects {
		name := project.Name
		if name == "" {
			name = "Senza nome"
		}
		keyboard = append(keyboard, []models.InlineKeyboardButton{
			{Text: name, CallbackData: callbackPrefix + project.ID},
		})
	}

	var current prefs.Selection
	if sel, ok := h.prefs.Get(userID(message)); ok {
		current = sel
	}

	_, err = h.client.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:      message.Chat.ID,
		Text:        renderProjectPrompt(current),
		ReplyMarkup: models.InlineKeyboardMarkup{InlineKeyboard: keyboard},
	})
	if err != nil {
		logging.LogError(err, "Failed to send project keyboard", zap.Int64("chat_id", message.Chat.ID))
	}
}

// HandleProjectSelection records the project a user picked from the keyboard
func (h *Handlers) HandleProjectSelection(ctx context.Context, update *models.Update) {
	query := update.CallbackQuery
	if query == nil {
		return
	}

	if _, err := h.client.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
	}); err != nil {
		logging.LogWarn("Failed to answer callback query", zap.Error(err))
	}

	if !strings.HasPrefix(query.Data, callbackPrefix) {
		return
	}
	projectID := strings.TrimPrefix(query.Data, callbackPrefix)

	selection := prefs.Selection{ProjectID: projectID}
	if project, ok := h.lookupProject(ctx, projectID); ok {
		selection.ProjectName = project.Name
	}

	h.prefs.Set(query.From.ID, selection)
	logging.LogTelegramUpdate("project_selected", query.From.ID,
		zap.String("project_id", projectID),
		zap.String("project_name", selection.ProjectName))

	// Edit the keyboard message in place; fall back silently when the
	// original message is no longer accessible.
	if query.Message.Message != nil {
		_, err := h.client.EditMessageText(ctx, &tgbot.EditMessageTextParams{
			ChatID:    query.Message.Message.Chat.ID,
			MessageID: query.Message.Message.ID,
			Text:      renderSelectionConfirmation(selection),
		})
		if err != nil {
			logging.LogWarn("Failed to edit selection message", zap.Error(err))
		}
	}
}

// HandleDefault routes every unmatched update: audio messages enter the
// pipeline, anything else is ignored like the original listener does.
func (h *Handlers) HandleDefault(ctx context.Context, update *models.Update) {
	message := update.Message
	if message == nil {
		return
	}

	fileID, suffix, ok := audioInfo(message)
	if !ok {
		return
	}

	h.handleAudio(ctx, message, fileID, suffix)
}

// handleAudio runs the pipeline for one audio message and reports the
// outcome by editing the waiting reply, so the user sees exactly one result
// message per audio update.
func (h *Handlers) handleAudio(ctx context.Context, message *models.Message, fileID, suffix string) {
	logging.LogTelegramUpdate("audio", message.Chat.ID,
		zap.String("file_id", fileID),
		zap.String("suffix", suffix))

	waiting, err := h.client.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: message.Chat.ID,
		Text:   receivedText,
	})
	if err != nil {
		logging.LogError(err, "Failed to send waiting message", zap.Int64("chat_id", message.Chat.ID))
		return
	}

	result, err := h.pipeline.Process(ctx, pipeline.Request{
		ChatID: message.Chat.ID,
		UserID: userID(message),
		FileID: fileID,
		Suffix: suffix,
	})

	var text string
	if err != nil {
		text = pipeline.UserMessage(err)
	} else {
		text = renderSuccess(result)
	}

	_, err = h.client.EditMessageText(ctx, &tgbot.EditMessageTextParams{
		ChatID:    message.Chat.ID,
		MessageID: waiting.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logging.LogError(err, "Failed to edit result message", zap.Int64("chat_id", message.Chat.ID))
	}
}

// lookupProject resolves a project id to its cached entry, refreshing the
// cache once on a miss
func (h *Handlers) lookupProject(ctx context.Context, projectID string) (todoist.Project, bool) {
	if project, ok := h.projects.Lookup(projectID); ok {
		return project, true
	}

	projects, err := h.projects.Projects(ctx, false)
	if err != nil {
		return todoist.Project{}, false
	}
	for _, project := range projects {
		if project.ID == projectID {
			return project, true
		}
	}
	return todoist.Project{}, false
}

func (h *Handlers) reply(ctx context.Context, chatID int64, text string) {
	_, err := h.client.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		logging.LogError(err, "Failed to send reply", zap.Int64("chat_id", chatID))
	}
}

// audioInfo extracts (fileID, suffix) from a message carrying audio: a voice
// note, an audio attachment, or a document with an audio mime type.
func audioInfo(message *models.Message) (string, string, bool) {
	if message.Voice != nil {
		return message.Voice.FileID, ".ogg", true
	}

	if message.Audio != nil {
		return message.Audio.FileID, suffixOrDefault(message.Audio.FileName), true
	}

	if message.Document != nil && strings.HasPrefix(message.Document.MimeType, "audio/") {
		return message.Document.FileID, suffixOrDefault(message.Document.FileName), true
	}

	return "", "", false
}

func suffixOrDefault(fileName string) string {
	if ext := filepath.Ext(fileName); ext != "" {
		return ext
	}
	return ".ogg"
}

// userID prefers the sender id and falls back to the chat id (private chats
// have identical values; channels have no sender)
func userID(message *models.Message) int64 {
	if message.From != nil {
		return message.From.ID
	}
	return message.Chat.ID
}
