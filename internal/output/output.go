// Package output handles everything that leaves the process: the main
// result file, stdout, and best-effort debug artifacts.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// EncodeJSON marshals v indented and with HTML escaping off, so URLs
// and non-ASCII titles survive byte for byte.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Write puts content at path in a single write. An empty path or "-"
// prints to stdout instead.
func Write(path, content string) error {
	if path == "" || path == "-" {
		fmt.Println(content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	slog.Info("output written", "path", path)
	return nil
}

// WriteArtifact saves a debug file without ever failing the run.
func WriteArtifact(path string, data []byte) {
	if err := os.WriteFile(path, data, 0644); err != nil {
		slog.Warn("failed to write debug artifact", "path", path, "error", err)
		return
	}
	slog.Debug("debug artifact written", "path", path)
}
