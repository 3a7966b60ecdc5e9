// Package classify determines, by static analysis, which lines of a source
// file sit inside an executable code body. The reconciler uses this to tell
// "instrumented but never executed" apart from "never instrumented".
package classify

import (
	"errors"
	"path/filepath"
	"sort"
)

// ErrUnparsableSource reports source the classifier could not parse at all.
// Fatal for that file only.
var ErrUnparsableSource = errors.New("unparsable source")

// LineSet is a set of 1-based source line numbers.
type LineSet map[int]struct{}

// Add inserts a single line.
func (s LineSet) Add(line int) {
	s[line] = struct{}{}
}

// AddRange inserts the inclusive line range [lo, hi].
func (s LineSet) AddRange(lo, hi int) {
	for line := lo; line <= hi; line++ {
		s[line] = struct{}{}
	}
}

// Contains reports whether line is in the set.
func (s LineSet) Contains(line int) bool {
	_, ok := s[line]
	return ok
}

// Lines returns the members in ascending order.
func (s LineSet) Lines() []int {
	lines := make([]int, 0, len(s))
	for line := range s {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

// Classifier maps source text to the set of lines inside executable bodies
// (function and method bodies, nested ones included). An empty set is a
// valid result for source with no executable forms.
type Classifier interface {
	ExecutableLines(filename string, src []byte) (LineSet, error)
}

// ForFile returns the classifier for the file's language, chosen by
// extension, or nil when the language is not supported. Callers treat a
// nil classifier as "no amendment possible", not as an error.
func ForFile(filename string) Classifier {
	switch filepath.Ext(filename) {
	case ".go":
		return GoClassifier{}
	case ".py", ".pyw":
		return NewPythonClassifier()
	case ".js", ".mjs", ".jsx":
		return NewJavaScriptClassifier()
	case ".ts", ".tsx":
		return NewTypeScriptClassifier()
	case ".rs":
		return NewRustClassifier()
	default:
		return nil
	}
}

// Supported reports whether the file's language has a classifier. The
// tree walker uses this to decide what counts as a source file.
func Supported(filename string) bool {
	return ForFile(filename) != nil
}
