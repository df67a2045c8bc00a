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

//go:build whisper

package transcriber

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/vocetask/vocetask/internal/audio"
	"github.com/vocetask/vocetask/internal/logging"
	"go.uber.org/zap"
)

// WhisperTranscriber handles speech-to-text using a local whisper.cpp model
type WhisperTranscriber struct {
	model     whisper.Model
	modelPath string
	language  string
	threads   int
}

// NewWhisperTranscriber loads the ggml model at modelPath. The language hint
// is applied to every transcription; threads <= 0 means all CPUs.
func NewWhisperTranscriber(modelPath, language string, threads int) (*WhisperTranscriber, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("whisper model not found at %s", modelPath)
	}

	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper model: %w", err)
	}

	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	logging.Sugar.Infow("✅ Whisper model loaded",
		"model_path", modelPath,
		"language", language,
		"threads", threads)

	return &WhisperTranscriber{
		model:     model,
		modelPath: modelPath,
		language:  language,
		threads:   threads,
	}, nil
}

// TranscribeFile converts a 16 kHz mono WAV file to text
func (wt *WhisperTranscriber) TranscribeFile(ctx context.Context, wavPath string) (string, error) {
	if wt.model == nil {
		return "", fmt.Errorf("whisper model not initialized")
	}

	pcm, err := audio.ReadPCM16k(wavPath)
	if err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}

	wctx, err := wt.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("failed to create whisper context: %w", err)
	}

	if wt.language != "" {
		if err := wctx.SetLanguage(wt.language); err != nil {
			return "", fmt.Errorf("failed to set language %q: %w", wt.language, err)
		}
	}
	wctx.SetThreads(uint(wt.threads))

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return "", fmt.Errorf("failed to process audio: %w", err)
	}

	var transcript strings.Builder
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		segment, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		transcript.WriteString(segment.Text)
	}

	result := strings.TrimSpace(transcript.String())
	logging.Logger.Info("🧠 Whisper transcription",
		zap.String("wav_path", wavPath),
		zap.Int("chars", len(result)))
	return result, nil
}

// Close cleans up the whisper model
func (wt *WhisperTranscriber) Close() error {
	if wt.model != nil {
		return wt.model.Close()
	}
	return nil
}
