// Package cover defines the normalized per-line coverage model: a tagged
// per-line count, the coverage vector, and the null-tolerant merge law used
// to combine vectors produced by independent process runs.
package cover

import "strconv"

// LineCount is the classification of a single source line. It is either
// not applicable (blank, comment, pure declaration) or an execution count,
// where a count of zero means the line was instrumented but never hit.
//
// The zero value is NotApplicable. The distinction is deliberate: a plain
// integer with a sentinel would conflate "no data" with "zero executions".
type LineCount struct {
	applicable bool
	count      int
}

// NotApplicable returns the LineCount for a line that cannot meaningfully
// be executed.
func NotApplicable() LineCount {
	return LineCount{}
}

// Executions returns the LineCount for a line that ran n times. Negative
// counts are clamped to zero.
func Executions(n int) LineCount {
	if n < 0 {
		n = 0
	}
	return LineCount{applicable: true, count: n}
}

// Applicable reports whether the line carries an execution count.
func (c LineCount) Applicable() bool {
	return c.applicable
}

// Count returns the execution count. It is meaningful only when
// Applicable reports true.
func (c LineCount) Count() int {
	return c.count
}

// Max combines two line classifications: NotApplicable is the identity,
// and between two counts the larger wins.
func (c LineCount) Max(other LineCount) LineCount {
	if !c.applicable {
		return other
	}
	if !other.applicable {
		return c
	}
	if other.count > c.count {
		return other
	}
	return c
}

// Equal reports whether two line classifications are identical.
func (c LineCount) Equal(other LineCount) bool {
	if c.applicable != other.applicable {
		return false
	}
	return !c.applicable || c.count == other.count
}

// String renders "-" for not-applicable lines and the decimal count otherwise.
func (c LineCount) String() string {
	if !c.applicable {
		return "-"
	}
	return strconv.Itoa(c.count)
}

// Vector is an ordered per-line coverage sequence, entry i describing
// source line i+1. Vectors from different trace files may have different
// lengths until reconciliation aligns them to the source.
type Vector []LineCount

// NewVector returns an all-NotApplicable vector of n lines.
func NewVector(n int) Vector {
	return make(Vector, n)
}

// Merge folds two vectors into one of length max(len(a), len(b)).
// Indices beyond either input are treated as NotApplicable for that input,
// which covers trace files truncated relative to another run. The operation
// is commutative and associative with NotApplicable as the per-index
// identity, so any number of vectors may be folded in any order.
func Merge(a, b Vector) Vector {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(Vector, n)
	for i := range out {
		var av, bv LineCount
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = av.Max(bv)
	}
	return out
}

// FileCoverage is the finished per-file record handed to summarizers and
// upload adapters. Once reconciliation completes, len(Coverage) equals the
// number of lines in Source and the value is treated as immutable.
type FileCoverage struct {
	Filename string
	Source   string
	Coverage Vector
}
