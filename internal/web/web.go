// Package web holds the static assets served or loaded by the API: the admin
// page and the default chat persona.
package web

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed admin.html
var AdminPage []byte

//go:embed persona.txt
var defaultPersona string

// Persona returns the system instruction for the chat proxy. A non-empty
// path overrides the embedded default.
func Persona(path string) (string, error) {
	if path == "" {
		return strings.TrimSpace(defaultPersona), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read persona file: %w", err)
	}
	persona := strings.TrimSpace(string(data))
	if persona == "" {
		return "", fmt.Errorf("persona file %s is empty", path)
	}
	return persona, nil
}
