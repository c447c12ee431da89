// Package prompt renders the French instruction sent upstream for each
// rewriting mode.
package prompt

import (
	"fmt"
	"strings"
)

// Mode selects which instruction template is used.
type Mode string

const (
	Fix     Mode = "fix"
	Improve Mode = "improve"
	Formal  Mode = "formal"
	Simple  Mode = "simple"
)

// DefaultMode is applied when the mode is absent or unrecognized.
const DefaultMode = Fix

const (
	toneInformal = "Utilise le tutoiement (tu, te, ton)."
	toneFormal   = "Utilise le vouvoiement (vous, votre)."

	contextEmail = "un email professionnel"
	contextChat  = "un message Teams"

	inputMarker = "\n\nTexte à corriger :\n"
)

// Templates take the tone clause and the context phrase, in that order.
// fix ignores the context phrase.
var templates = map[Mode]string{
	Fix: "Tu es un correcteur expert. Corrige uniquement les fautes d'orthographe, de grammaire, de conjugaison et de ponctuation. Ne change pas le style ni le ton. %[1]s\n\n" +
		"Réponds UNIQUEMENT avec le texte corrigé, sans explication.",
	Improve: "Tu es un assistant de rédaction professionnelle. Améliore ce texte pour %[2]s : corrige toutes les erreurs, rends-le plus professionnel, fluide et agréable à lire. %[1]s\n\n" +
		"Réponds UNIQUEMENT avec le texte amélioré, sans explication.",
	Formal: "Tu es un expert en communication formelle. Transforme ce texte pour le rendre plus formel et professionnel, adapté à %[2]s. Corrige toutes les erreurs. %[1]s\n\n" +
		"Réponds UNIQUEMENT avec le texte formel, sans explication.",
	Simple: "Tu es un expert en clarté. Simplifie ce texte : utilise des phrases courtes et un vocabulaire simple tout en restant professionnel pour %[2]s. Corrige toutes les erreurs. %[1]s\n\n" +
		"Réponds UNIQUEMENT avec le texte simplifié, sans explication.",
}

// ModeInfo is exposed via GET /api/modes.
type ModeInfo struct {
	ID          Mode   `json:"id"`
	Description string `json:"description"`
}

var modes = []ModeInfo{
	{ID: Fix, Description: "Corrige l'orthographe, la grammaire et la ponctuation sans changer le style."},
	{ID: Improve, Description: "Corrige et rend le texte plus fluide et professionnel."},
	{ID: Formal, Description: "Réécrit le texte dans un registre formel."},
	{ID: Simple, Description: "Simplifie le texte avec des phrases courtes."},
}

// Modes lists the supported modes in a stable order.
func Modes() []ModeInfo {
	out := make([]ModeInfo, len(modes))
	copy(out, modes)
	return out
}

// ParseMode returns the mode named by raw, or DefaultMode.
func ParseMode(raw string) Mode {
	m := Mode(raw)
	if _, ok := templates[m]; ok {
		return m
	}
	return DefaultMode
}

// ToneClause returns the address instruction: "tu" is informal, anything
// else formal.
func ToneClause(tone string) string {
	if tone == "tu" {
		return toneInformal
	}
	return toneFormal
}

// ContextPhrase returns the target medium: "email" is a professional email,
// anything else a chat message.
func ContextPhrase(context string) string {
	if context == "email" {
		return contextEmail
	}
	return contextChat
}

// Build renders the system prompt for the given parameters. Unrecognized
// values fall back silently.
func Build(mode, tone, context string) string {
	return fmt.Sprintf(templates[ParseMode(mode)], ToneClause(tone), ContextPhrase(context))
}

// Message joins the system prompt and the user's text into the single user
// message sent upstream.
func Message(systemPrompt, text string) string {
	var b strings.Builder
	b.Grow(len(systemPrompt) + len(inputMarker) + len(text))
	b.WriteString(systemPrompt)
	b.WriteString(inputMarker)
	b.WriteString(text)
	return b.String()
}

// InputOf returns the user's text from a message built by Message, or the
// whole message when it carries no instruction.
func InputOf(message string) string {
	if i := strings.LastIndex(message, inputMarker); i >= 0 {
		return message[i+len(inputMarker):]
	}
	return message
}
