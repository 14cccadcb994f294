package errors

import (
	"encoding/json"
	"errors"

	"github.com/wakame-lang/sform/internal/ast"
)

// SchemaV1 identifies the wire shape of a Report for downstream JSON
// consumers, as sform.test/v1 does for internal/test's reports.
const SchemaV1 = "sform.error/v1"

// Report is the canonical structured error type for sform.
type Report struct {
	Schema  string         `json:"schema"`         // Always "sform.error/v1"
	Code    string         `json:"code"`           // Error code (PAR001, TC001, EV001, ...)
	Phase   string         `json:"phase"`          // "parser", "lookup", "typecheck", "occurs", "eval", "internal"
	Message string         `json:"message"`        // Human-readable message
	Span    *ast.Pos       `json:"span,omitempty"` // Source location, optional
	Data    map[string]any `json:"data,omitempty"` // Structured data (sorted keys on encode)
	Fix     *Fix           `json:"fix,omitempty"`  // Suggested fix, optional
}

// Fix is a suggested remediation attached to a Report.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// ReportError wraps a Report as an error so it survives errors.As unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as an error. Call sites should return
// errors.WrapReport(r) rather than a bare fmt.Errorf so the structure
// survives up to the CLI.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders a Report as JSON, indented unless compact is requested.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// New builds a Report for the given phase/code/message, optionally attaching
// a source position and structured data.
func New(phase, code, message string, pos *ast.Pos, data map[string]any) *Report {
	return &Report{
		Schema:  SchemaV1,
		Code:    code,
		Phase:   phase,
		Message: message,
		Span:    pos,
		Data:    data,
	}
}
