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
	"errors"
	"fmt"

	"github.com/vocetask/vocetask/internal/prefs"
	"github.com/vocetask/vocetask/internal/todoist"
)

// Stage identifies where in the chain a request failed
type Stage string

const (
	StageDownload   Stage = "download"
	StageConvert    Stage = "convert"
	StageTranscribe Stage = "transcribe"
	StageResolve    Stage = "resolve"
	StageSubmit     Stage = "submit"
)

// ErrEmptyTranscription means the model ran but produced no text. It is a
// distinct condition, not a hard error: the pipeline stops and no task is
// created, but the user is told the result was empty.
var ErrEmptyTranscription = errors.New("transcription produced no text")

// StageError wraps a failure with the pipeline stage it occurred in, so the
// listener can reply with the right failure category.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// UserMessage converts a pipeline error into the single user-facing reply
// for its failure category.
func UserMessage(err error) string {
	if errors.Is(err, ErrEmptyTranscription) {
		return "Trascrizione vuota, nulla da inviare a Todoist."
	}
	if errors.Is(err, prefs.ErrNoProject) {
		return "Nessun progetto Todoist impostato. Usa /progetti per sceglierne uno."
	}

	var statusErr *todoist.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("Todoist ha risposto con errore %d.", statusErr.StatusCode)
	}

	var se *StageError
	if errors.As(err, &se) {
		switch se.Stage {
		case StageDownload:
			return "Non riesco a scaricare l'audio da Telegram. Riprova più tardi."
		case StageConvert:
			return "Errore durante la conversione dell'audio."
		case StageTranscribe:
			return "Si è verificato un errore durante la trascrizione. Riprova più tardi."
		case StageSubmit:
			return "Errore durante la creazione dell'attività su Todoist."
		}
	}

	return "Si è verificato un errore durante la trascrizione. Riprova più tardi."
}
