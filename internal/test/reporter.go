// Package test reports the outcome of running a source file's
// (test "name" expr expected) forms, in a JSON shape sform's own tooling
// (and anything shelling out to `sform test --json`) can consume.
package test

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"runtime"
	"sort"
	"time"
)

// SchemaV1 identifies the wire shape of a Report.
const SchemaV1 = "sform.test/v1"

// Case is one (test "name" expr expected) form's outcome. Expr carries the
// s-expression source text of the form under test, so a JSON consumer can
// show what ran without re-reading the source file; Got and Want carry the
// evaluated actual and expected values' renderings, present whenever
// evaluation got far enough to produce them.
type Case struct {
	SID    string `json:"sid"`
	Suite  string `json:"suite"`
	Name   string `json:"name"`
	Expr   string `json:"expr"`
	Want   string `json:"want"`
	Got    string `json:"got,omitempty"`
	Status string `json:"status"` // passed|failed|errored
	TimeMs int64  `json:"time_ms"`
	Error  any    `json:"error,omitempty"`
}

// Counts tallies a Report's Cases by Status.
type Counts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
	Total   int `json:"total"`
}

// Report is one `sform test` invocation's complete result.
type Report struct {
	Schema     string   `json:"schema"`
	RunID      string   `json:"run_id"`
	DurationMs int64    `json:"duration_ms"`
	Counts     Counts   `json:"counts"`
	Cases      []Case   `json:"cases"`
	Platform   Platform `json:"platform"`
}

// Platform records the toolchain and OS a report was produced under.
type Platform struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Timestamp string `json:"timestamp"`
}

// NewReport starts an empty Report stamped with the current platform.
func NewReport() *Report {
	return &Report{
		Schema: SchemaV1,
		RunID:  generateRunID(),
		Cases:  []Case{},
		Platform: Platform{
			GoVersion: runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// AddCase appends c and updates Counts.
func (r *Report) AddCase(c Case) {
	r.Cases = append(r.Cases, c)
	r.Counts.Total++
	switch c.Status {
	case "passed":
		r.Counts.Passed++
	case "failed":
		r.Counts.Failed++
	case "errored":
		r.Counts.Errored++
	}
}

// Finalize sorts Cases by (suite, name) and sets DurationMs, so a report's
// JSON is stable across runs regardless of file-walk or evaluation order.
func (r *Report) Finalize(startTime time.Time) {
	r.DurationMs = time.Since(startTime).Milliseconds()
	sort.Slice(r.Cases, func(i, j int) bool {
		if r.Cases[i].Suite != r.Cases[j].Suite {
			return r.Cases[i].Suite < r.Cases[j].Suite
		}
		return r.Cases[i].Name < r.Cases[j].Name
	})
}

// compactMode controls ToJSON's indentation; CLI flags toggle it with
// SetCompactMode before a report is rendered.
var compactMode = false

// SetCompactMode switches ToJSON between indented (default) and
// single-line output.
func SetCompactMode(enabled bool) {
	compactMode = enabled
}

// ToJSON renders the report. Go's encoding/json already sorts map keys and
// preserves struct field order, so this needs no extra determinism pass:
// the same Report value always marshals to the same bytes.
func (r *Report) ToJSON() ([]byte, error) {
	if r.Cases == nil {
		r.Cases = []Case{}
	}
	if compactMode {
		return json.Marshal(r)
	}
	return json.MarshalIndent(r, "", "  ")
}

// generateRunID mints a short random identifier for one test run.
func generateRunID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b) // crypto/rand.Read on this platform never errors
	return hex.EncodeToString(b)
}

// GenerateTestSID derives a stable id from a case's (suite, name), so the
// same test form gets the same SID across runs.
func GenerateTestSID(suite, name string) string {
	combined := suite + "::" + name
	hash := sha256.Sum256([]byte(combined))
	return "T#" + hex.EncodeToString(hash[:8])
}

// EmptyReport returns a valid, finalized Report for a run that found no
// test forms.
func EmptyReport() *Report {
	r := NewReport()
	r.Finalize(time.Now())
	return r
}
