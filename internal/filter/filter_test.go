package filter

import "testing"

func TestNoFilters(t *testing.T) {
	f, err := New(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !f.IsPassthrough() {
		t.Fatal("expected passthrough with no patterns")
	}
	if !f.ShouldShip("any line") {
		t.Fatal("passthrough filter should ship everything")
	}
}

func TestMatchOnly(t *testing.T) {
	f, err := New([]string{"ERROR", "WARN"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.IsPassthrough() {
		t.Fatal("filter with match patterns is not passthrough")
	}

	cases := map[string]bool{
		"ERROR: something bad": true,
		"WARN: watch out":      true,
		"INFO: all good":       false,
		"DEBUG: details":       false,
	}
	for line, want := range cases {
		if got := f.ShouldShip(line); got != want {
			t.Errorf("ShouldShip(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestExcludeOnly(t *testing.T) {
	f, err := New(nil, []string{"DEBUG", "TRACE"})
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]bool{
		"ERROR: something bad": true,
		"INFO: all good":       true,
		"DEBUG: details":       false,
		"TRACE: very verbose":  false,
	}
	for line, want := range cases {
		if got := f.ShouldShip(line); got != want {
			t.Errorf("ShouldShip(%q) = %v, want %v", line, got, want)
		}
	}
}

// TestS3Filter is the spec's literal S3 scenario: allow=["ERROR","WARN"],
// deny=["ignore"].
func TestS3Filter(t *testing.T) {
	f, err := New([]string{"ERROR", "WARN"}, []string{"ignore"})
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]bool{
		"ERROR: bad":           true,
		"WARN: watch":          true,
		"ERROR: ignore this":   false,
		"WARN: please ignore":  false,
		"INFO: ok":             false,
	}
	for line, want := range cases {
		if got := f.ShouldShip(line); got != want {
			t.Errorf("ShouldShip(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestRegexPatterns(t *testing.T) {
	f, err := New([]string{`^\[\d{4}-\d{2}-\d{2}`}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !f.ShouldShip("[2025-12-03 14:23:45] Log message") {
		t.Fatal("expected timestamp-prefixed line to ship")
	}
	if f.ShouldShip("Log message without timestamp") {
		t.Fatal("expected non-matching line to be dropped")
	}
}

func TestInvalidRegex(t *testing.T) {
	if _, err := New([]string{"[invalid"}, nil); err == nil {
		t.Fatal("expected error for invalid regex")
	}
	if _, err := New(nil, []string{"[invalid"}); err == nil {
		t.Fatal("expected error for invalid deny regex")
	}
}
