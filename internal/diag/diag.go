// Package diag holds the non-fatal diagnostic records attached to a coverage report.
package diag

import "fmt"

// Severity levels.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Diagnostic codes.
const (
	CodeMalformedSpecification = "SCW001" // feature file without a Feature: line
	CodeUnreadableArtifact     = "SCW002" // file could not be read
	CodeEmptyRegistry          = "SCW003" // step file declared no step definitions
)

// Diagnostic is an advisory record for a file that was skipped or is suspect.
type Diagnostic struct {
	Severity string `json:"severity" yaml:"severity"`
	Code     string `json:"code" yaml:"code"`
	Path     string `json:"path" yaml:"path"`
	Message  string `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s (%s)", d.Severity, d.Path, d.Message, d.Code)
}

// Warning builds a warning-severity diagnostic.
func Warning(code, path, message string) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Path: path, Message: message}
}
