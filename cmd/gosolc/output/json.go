package output

import (
	"encoding/json"
	"io"
	"time"
)

// JSON output types matching the schema contract in outputtest/json-schemas.json

// CurrentSchemaVersion is the schema version for all JSON outputs
const CurrentSchemaVersion = "1.0.0"

// VersionsOutput represents the JSON output for the versions command
type VersionsOutput struct {
	SchemaVersion string         `json:"schemaVersion"`
	Platform      string         `json:"platform"`
	Latest        string         `json:"latest,omitempty"`
	Current       *Selection     `json:"current,omitempty"`
	Versions      []VersionEntry `json:"versions"`
	ElapsedMs     int64          `json:"elapsedMs"`
}

// VersionEntry is one compiler version in the versions listing
type VersionEntry struct {
	Version   string `json:"version"`
	Installed bool   `json:"installed"`
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
}

// Selection describes the active version and where it was chosen
type Selection struct {
	Version   string `json:"version"`
	Scope     string `json:"scope"` // "global", "local" or "env"
	Source    string `json:"source"`
	Installed bool   `json:"installed"`
	Path      string `json:"path,omitempty"`
}

// ResolveOutput represents the JSON output for the resolve command
type ResolveOutput struct {
	SchemaVersion string   `json:"schemaVersion"`
	File          string   `json:"file"`
	Pragmas       []string `json:"pragmas"`
	Recommended   string   `json:"recommended"`
	Compatible    []string `json:"compatible,omitempty"`
	Installed     bool     `json:"installed"`
	ElapsedMs     int64    `json:"elapsedMs"`
}

// VerifyOutput represents the JSON output for the verify command
type VerifyOutput struct {
	SchemaVersion string         `json:"schemaVersion"`
	Results       []VerifyResult `json:"results"`
	ElapsedMs     int64          `json:"elapsedMs"`
}

// VerifyResult is the verification outcome for one version
type VerifyResult struct {
	Version  string `json:"version"`
	Status   string `json:"status"` // "ok", "checksum-mismatch", "missing" or "unknown"
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Repaired bool   `json:"repaired"`
	Error    string `json:"error,omitempty"`
}

// NewVersionsOutput creates a VersionsOutput with schema version and start time
func NewVersionsOutput(platform string, start time.Time) *VersionsOutput {
	return &VersionsOutput{
		SchemaVersion: CurrentSchemaVersion,
		Platform:      platform,
		Versions:      []VersionEntry{},
		ElapsedMs:     MeasureElapsed(start),
	}
}

// NewResolveOutput creates a ResolveOutput with schema version
func NewResolveOutput(file string, start time.Time) *ResolveOutput {
	return &ResolveOutput{
		SchemaVersion: CurrentSchemaVersion,
		File:          file,
		Pragmas:       []string{},
		ElapsedMs:     MeasureElapsed(start),
	}
}

// NewVerifyOutput creates a VerifyOutput with schema version
func NewVerifyOutput(start time.Time) *VerifyOutput {
	return &VerifyOutput{
		SchemaVersion: CurrentSchemaVersion,
		Results:       []VerifyResult{},
		ElapsedMs:     MeasureElapsed(start),
	}
}

// WriteJSON writes a JSON object to the specified writer (typically stdout)
// When --format json is used, ALL JSON goes to stdout and ALL messages go to stderr
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// MeasureElapsed returns elapsed time in milliseconds since start
func MeasureElapsed(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
