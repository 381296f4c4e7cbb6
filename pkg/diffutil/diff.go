package diffutil

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Stats summarizes a diff by inserted and removed line counts.
type Stats struct {
	Insertions int `json:"insertions"`
	Removals   int `json:"removals"`
}

// Unified produces a unified diff between a and b with three lines of
// context. The result is empty exactly when a == b.
func Unified(a, b, fromLabel, toLabel string) (string, Stats, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: fromLabel,
		ToFile:   toLabel,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", Stats{}, fmt.Errorf("unified diff: %w", err)
	}
	return text, countChanges(text), nil
}

func countChanges(diff string) Stats {
	var st Stats
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			st.Insertions++
		case strings.HasPrefix(line, "-"):
			st.Removals++
		}
	}
	return st
}
