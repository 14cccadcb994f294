package test

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestNewReport(t *testing.T) {
	report := NewReport()

	if report.Schema != SchemaV1 {
		t.Errorf("Expected schema %s, got %s", SchemaV1, report.Schema)
	}
	if report.RunID == "" {
		t.Error("Expected RunID to be generated")
	}
	if report.Cases == nil {
		t.Error("Expected Cases to be initialized")
	}
	if report.Platform.GoVersion != runtime.Version() {
		t.Errorf("Expected Go version %s, got %s", runtime.Version(), report.Platform.GoVersion)
	}
	if report.Platform.OS != runtime.GOOS {
		t.Errorf("Expected OS %s, got %s", runtime.GOOS, report.Platform.OS)
	}
	if report.Platform.Arch != runtime.GOARCH {
		t.Errorf("Expected Arch %s, got %s", runtime.GOARCH, report.Platform.Arch)
	}
}

func TestAddCase(t *testing.T) {
	report := NewReport()

	report.AddCase(Case{SID: "T#001", Suite: "unit", Name: "plus", Expr: "(+ 2 2)", Want: "4", Got: "4", Status: "passed", TimeMs: 10})
	report.AddCase(Case{SID: "T#002", Suite: "unit", Name: "minus", Expr: "(- 2 2)", Want: "1", Got: "0", Status: "failed", TimeMs: 15, Error: "got 0, want 1"})
	report.AddCase(Case{SID: "T#003", Suite: "integration", Name: "bad-ref", Expr: "x", Status: "errored", TimeMs: 5, Error: "LK001: unbound variable"})

	if report.Counts.Total != 3 {
		t.Errorf("Expected total 3, got %d", report.Counts.Total)
	}
	if report.Counts.Passed != 1 {
		t.Errorf("Expected passed 1, got %d", report.Counts.Passed)
	}
	if report.Counts.Failed != 1 {
		t.Errorf("Expected failed 1, got %d", report.Counts.Failed)
	}
	if report.Counts.Errored != 1 {
		t.Errorf("Expected errored 1, got %d", report.Counts.Errored)
	}
}

func TestFinalize(t *testing.T) {
	report := NewReport()
	startTime := time.Now().Add(-100 * time.Millisecond)

	report.AddCase(Case{SID: "T#002", Suite: "unit", Name: "b_test", Status: "passed"})
	report.AddCase(Case{SID: "T#001", Suite: "unit", Name: "a_test", Status: "passed"})
	report.AddCase(Case{SID: "T#003", Suite: "integration", Name: "test", Status: "passed"})

	report.Finalize(startTime)

	if report.DurationMs < 100 {
		t.Errorf("Expected DurationMs to be at least 100, got %d", report.DurationMs)
	}
	if report.Cases[0].Suite != "integration" {
		t.Error("Expected integration suite first")
	}
	if report.Cases[1].Name != "a_test" {
		t.Error("Expected a_test before b_test")
	}
	if report.Cases[2].Name != "b_test" {
		t.Error("Expected b_test last")
	}
}

func TestToJSONCarriesCaseFields(t *testing.T) {
	report := NewReport()
	report.AddCase(Case{SID: "T#abc123", Suite: "parser", Name: "parse_lambda", Expr: "(fn ((x : int)) x)", Want: "<closure>", Got: "<closure>", Status: "passed", TimeMs: 15})
	report.Finalize(time.Now())

	jsonData, err := report.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(jsonData, &parsed); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if parsed["schema"] != SchemaV1 {
		t.Errorf("Expected schema %s, got %v", SchemaV1, parsed["schema"])
	}
	for _, field := range []string{"run_id", "counts", "cases", "platform"} {
		if _, ok := parsed[field]; !ok {
			t.Errorf("Expected %s to be present", field)
		}
	}

	cases, ok := parsed["cases"].([]interface{})
	if !ok || len(cases) != 1 {
		t.Fatalf("expected one case, got %v", parsed["cases"])
	}
	c := cases[0].(map[string]interface{})
	if c["expr"] != "(fn ((x : int)) x)" {
		t.Errorf("Expected expr to be carried through, got %v", c["expr"])
	}
}

func TestEmptyReport(t *testing.T) {
	report := EmptyReport()

	if report.Counts.Total != 0 {
		t.Error("Expected total count to be 0")
	}
	if len(report.Cases) != 0 {
		t.Error("Expected no cases")
	}

	jsonData, err := report.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed for empty report: %v", err)
	}
	if !strings.Contains(string(jsonData), `"total": 0`) {
		t.Errorf("Expected JSON to show total as 0, got: %s", string(jsonData))
	}
}

func TestCompactMode(t *testing.T) {
	report := NewReport()
	report.AddCase(Case{SID: "T#1", Suite: "s", Name: "n", Status: "passed"})
	report.Finalize(time.Now())

	SetCompactMode(false)
	pretty, err := report.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if !strings.Contains(string(pretty), "\n") {
		t.Error("Expected pretty mode to contain newlines")
	}

	SetCompactMode(true)
	compact, err := report.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	SetCompactMode(false)
	if strings.Contains(string(compact), "\n") {
		t.Error("Expected compact mode to contain no newlines")
	}
	if len(compact) >= len(pretty) {
		t.Error("Expected compact JSON to be shorter than pretty JSON")
	}
}

func TestGenerateTestSID(t *testing.T) {
	sid1 := GenerateTestSID("suite1", "test1")
	sid2 := GenerateTestSID("suite1", "test1")
	if sid1 != sid2 {
		t.Error("Expected same SID for same input")
	}

	sid3 := GenerateTestSID("suite2", "test1")
	if sid1 == sid3 {
		t.Errorf("Expected different SID for different suite, got sid1=%s, sid3=%s", sid1, sid3)
	}
	if !strings.HasPrefix(sid1, "T#") {
		t.Errorf("Expected SID to start with T#, got %s", sid1)
	}
}

func TestDeterministicOutput(t *testing.T) {
	build := func() *Report {
		r := NewReport()
		r.AddCase(Case{SID: GenerateTestSID("d", "t1"), Suite: "d", Name: "t1", Expr: "(+ 1 1)", Want: "2", Got: "2", Status: "passed"})
		r.AddCase(Case{SID: GenerateTestSID("d", "t2"), Suite: "d", Name: "t2", Expr: "(+ 1 2)", Want: "3", Got: "3", Status: "passed"})
		r.Finalize(time.Now())
		r.RunID = "fixed_run_id"
		r.Platform.Timestamp = "2024-01-01T00:00:00Z"
		r.DurationMs = 100
		return r
	}

	var outputs [3]string
	for i := range outputs {
		data, err := build().ToJSON()
		if err != nil {
			t.Fatalf("ToJSON failed (iteration %d): %v", i, err)
		}
		outputs[i] = string(data)
	}
	for i := 1; i < len(outputs); i++ {
		if outputs[i] != outputs[0] {
			t.Errorf("Output %d differs from output 0:\n%s\nvs\n%s", i, outputs[0], outputs[i])
		}
	}
}
