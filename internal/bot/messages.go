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
	"fmt"
	"html"

	"github.com/vocetask/vocetask/internal/pipeline"
	"github.com/vocetask/vocetask/internal/prefs"
)

const (
	startText = "Ciao! Inviami un messaggio vocale o un file audio e proverò a trascriverlo.\n" +
		"Usa /progetti per scegliere il progetto Todoist di default."

	receivedText = "Ricevuto! Scarico l'audio e avvio la trascrizione..."

	projectsUnavailableText = "Non riesco a recuperare i progetti Todoist. Riprova più tardi."
)

// renderProjectPrompt shows the current selection above the keyboard
func renderProjectPrompt(current prefs.Selection) string {
	var currentText string
	switch {
	case current.ProjectID != "" && current.ProjectName != "":
		currentText = fmt.Sprintf("Progetto corrente: %s (%s)", current.ProjectName, current.ProjectID)
	case current.ProjectID != "":
		currentText = fmt.Sprintf("Progetto corrente: %s", current.ProjectID)
	default:
		currentText = "Nessun progetto impostato. Verrà usato il default configurato."
	}

	return currentText + "\n\nScegli il progetto Todoist:"
}

// renderSelectionConfirmation confirms a recorded preference
func renderSelectionConfirmation(selection prefs.Selection) string {
	if selection.ProjectName != "" {
		return fmt.Sprintf("Progetto Todoist aggiornato: %s (%s).", selection.ProjectName, selection.ProjectID)
	}
	return fmt.Sprintf("Progetto Todoist aggiornato: %s.", selection.ProjectID)
}

// renderSuccess builds the HTML result message for a completed pipeline run
func renderSuccess(result *pipeline.Result) string {
	text := "<b>Trascrizione completata!</b>\n\n"
	text += html.EscapeString(result.Transcription)
	text += fmt.Sprintf("\n\n<code>Attività creata su Todoist (id: %s).</code>", html.EscapeString(result.TaskID))

	if result.ProjectName != "" {
		text += fmt.Sprintf("\n\n<code>Progetto: %s</code>", html.EscapeString(result.ProjectName))
	} else if result.ProjectID != "" {
		text += fmt.Sprintf("\n\n<code>Progetto ID: %s</code>", html.EscapeString(result.ProjectID))
	}

	return text
}
