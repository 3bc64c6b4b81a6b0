package utils

import (
	"strings"
	"testing"
)

func TestJsonIndent(t *testing.T) {
	got := JsonIndent(map[string]string{"platform": "android"})
	if !strings.Contains(got, `"platform": "android"`) {
		t.Errorf("unexpected output: %s", got)
	}
	if !strings.Contains(got, "\n") {
		t.Errorf("expected indented multi-line output: %s", got)
	}
}
