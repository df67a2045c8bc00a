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

package audio

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultFFmpegBinary is the conversion tool looked up on PATH
const DefaultFFmpegBinary = "ffmpeg"

// FFmpegConverter normalizes arbitrary audio containers (ogg/opus voice
// notes, mp3 attachments, ...) to 16 kHz mono s16le WAV via an ffmpeg
// subprocess, matching what the whisper model expects.
type FFmpegConverter struct {
	binary string
}

// NewFFmpegConverter creates a converter using ffmpeg from PATH
func NewFFmpegConverter() *FFmpegConverter {
	return &FFmpegConverter{binary: DefaultFFmpegBinary}
}

// NewFFmpegConverterWithBinary creates a converter with an explicit binary
// (used in tests)
func NewFFmpegConverterWithBinary(binary string) *FFmpegConverter {
	return &FFmpegConverter{binary: binary}
}

// ToWAV converts the input file to a 16 kHz mono WAV saved next to the
// original, returning the new path. No fallback format is attempted.
func (c *FFmpegConverter) ToWAV(ctx context.Context, inputPath string) (string, error) {
	outputPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".wav"

	cmd := exec.CommandContext(ctx, c.binary,
		"-i", inputPath,
		"-ac", "1",
		"-ar", "16000",
		"-acodec", "pcm_s16le",
		"-loglevel", "error",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg conversion failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return outputPath, nil
}

// CheckFFmpeg verifies the conversion tool is present on PATH. Called once
// at startup so a missing install fails fast instead of on the first voice
// message.
func CheckFFmpeg(binary string) error {
	if binary == "" {
		binary = DefaultFFmpegBinary
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", binary, err)
	}
	return nil
}
