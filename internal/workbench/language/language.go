// Package language defines the closed set of submission languages.
package language

import (
	"strings"

	pkgerrors "codebench/pkg/errors"
)

// Language identifies a supported submission language.
type Language string

const (
	CPP        Language = "cpp"
	Java       Language = "java"
	JavaScript Language = "javascript"
)

// Default is the language selected when a problem is loaded.
const Default = CPP

var all = []Language{CPP, Java, JavaScript}

var aliases = map[string]Language{
	"cpp":        CPP,
	"c++":        CPP,
	"cxx":        CPP,
	"java":       Java,
	"javascript": JavaScript,
	"js":         JavaScript,
	"node":       JavaScript,
}

var displayNames = map[Language]string{
	CPP:        "C++",
	Java:       "Java",
	JavaScript: "JavaScript",
}

var extensions = map[Language]string{
	CPP:        ".cpp",
	Java:       ".java",
	JavaScript: ".js",
}

// All returns every supported language in display order.
func All() []Language {
	out := make([]Language, len(all))
	copy(out, all)
	return out
}

// Parse resolves an identifier or alias, case-insensitively.
func Parse(raw string) (Language, error) {
	if lang, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return lang, nil
	}
	return "", pkgerrors.Newf(pkgerrors.LanguageNotSupported, "unsupported language: %q", raw).
		WithDetail("language", raw)
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	_, ok := displayNames[l]
	return ok
}

// Wire is the identifier sent to the judge service.
func (l Language) Wire() string {
	return string(l)
}

// DisplayName is the label shown in the UI, falling back to the identifier.
func (l Language) DisplayName() string {
	if name, ok := displayNames[l]; ok {
		return name
	}
	return string(l)
}

// Extension is the source file extension used by the editing surface.
func (l Language) Extension() string {
	if ext, ok := extensions[l]; ok {
		return ext
	}
	return ".txt"
}

// String returns the wire identifier.
func (l Language) String() string {
	return string(l)
}
