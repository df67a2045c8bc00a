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
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// WhisperSampleRate is the sample rate the whisper model expects
const WhisperSampleRate = 16000

// ReadPCM16k decodes a WAV file produced by the converter into mono float32
// samples in [-1, 1]. The file must already be 16 kHz mono; anything else is
// an error because it means the conversion step was skipped or failed.
func ReadPCM16k(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("empty wav file")
	}

	if buf.Format == nil {
		return nil, errors.New("wav file missing format chunk")
	}
	if buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("expected mono audio, got %d channels", buf.Format.NumChannels)
	}
	if buf.Format.SampleRate != WhisperSampleRate {
		return nil, fmt.Errorf("expected %d Hz audio, got %d Hz", WhisperSampleRate, buf.Format.SampleRate)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}

	return intSamplesToFloat32(buf.Data, bitDepth), nil
}

// intSamplesToFloat32 scales integer PCM samples to float32 in [-1, 1]
func intSamplesToFloat32(data []int, bitDepth int) []float32 {
	scale := float32(int64(1) << (bitDepth - 1))
	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(v) / scale
	}
	return out
}
