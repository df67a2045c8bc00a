/*
Copyright (c) 2025 VoceTask Authors

Licensed under the AGPLv3 License.
This file is part of VoceTask.
*/

package transcriber

import "context"

// Transcriber defines the interface for local speech-to-text transcription.
// Empty output is reported as ("", nil): the model ran but heard nothing
// usable, which callers treat differently from a hard error.
type Transcriber interface {
	// TranscribeFile converts a 16 kHz mono WAV file to text
	TranscribeFile(ctx context.Context, wavPath string) (string, error)

	// Close cleans up resources
	Close() error
}
