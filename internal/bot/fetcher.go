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
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/google/uuid"
)

// TelegramFetcher downloads Telegram file attachments into uniquely named
// temp files. Names carry a uuid so concurrent downloads from the same user
// never collide.
type TelegramFetcher struct {
	client     telegramClient
	httpClient *http.Client
	tempDir    string
}

// NewFetcher creates a fetcher backed by the given Telegram connection
func NewFetcher(client telegramClient) *TelegramFetcher {
	return &TelegramFetcher{
		client:     client,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tempDir:    os.TempDir(),
	}
}

// Fetch resolves the file id to a download URL and streams it to a temp
// file. The caller owns the returned path and must remove it.
func (f *TelegramFetcher) Fetch(ctx context.Context, fileID, suffix string) (string, error) {
	file, err := f.client.GetFile(ctx, &tgbot.GetFileParams{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("failed to resolve telegram file %s: %w", fileID, err)
	}

	url := f.client.FileDownloadLink(file)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download telegram file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("telegram file download returned status %d", resp.StatusCode)
	}

	path := filepath.Join(f.tempDir, "vocetask-"+uuid.NewString()+suffix)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return path, nil
}
