// Package buffer keeps one source buffer per supported language.
package buffer

import (
	"strings"

	"codebench/internal/workbench/language"
)

// StartCode is one entry of a problem's starter templates as served by the problem endpoint.
type StartCode struct {
	Language    string `json:"language"`
	InitialCode string `json:"initialcode"`
}

// Store holds the current text of every language buffer.
// It is owned by a single session and is not safe for concurrent use.
type Store struct {
	texts map[language.Language]string
}

// NewStore returns a store with an empty buffer for every language.
func NewStore() *Store {
	s := &Store{}
	s.Initialize(nil)
	return s
}

// Initialize discards all edits and seeds each buffer from templates.
// Languages without a template start empty.
func (s *Store) Initialize(templates map[language.Language]string) {
	texts := make(map[language.Language]string, len(language.All()))
	for _, lang := range language.All() {
		texts[lang] = templates[lang]
	}
	s.texts = texts
}

// SetText overwrites the buffer of lang only.
func (s *Store) SetText(lang language.Language, text string) {
	if _, ok := s.texts[lang]; !ok {
		return
	}
	s.texts[lang] = text
}

// Text returns the current buffer of lang.
func (s *Store) Text(lang language.Language) string {
	return s.texts[lang]
}

// Snapshot copies every buffer.
func (s *Store) Snapshot() map[language.Language]string {
	out := make(map[language.Language]string, len(s.texts))
	for lang, text := range s.texts {
		out[lang] = text
	}
	return out
}

// TemplatesFromStartCode maps start code entries onto supported languages.
// Unknown languages are skipped; a later duplicate wins.
func TemplatesFromStartCode(entries []StartCode) map[language.Language]string {
	templates := make(map[language.Language]string, len(entries))
	for _, entry := range entries {
		lang, err := language.Parse(strings.TrimSpace(entry.Language))
		if err != nil {
			continue
		}
		templates[lang] = entry.InitialCode
	}
	return templates
}
