package cover

// Summary condenses one coverage vector into the counts downstream
// reporters care about.
type Summary struct {
	Coverable int     // lines carrying an execution count
	Executed  int     // lines with count > 0
	Percent   float64 // Executed / Coverable * 100; 100 when nothing is coverable
}

// Summarize computes the summary for a vector.
func Summarize(v Vector) Summary {
	var s Summary
	for _, lc := range v {
		if !lc.Applicable() {
			continue
		}
		s.Coverable++
		if lc.Count() > 0 {
			s.Executed++
		}
	}
	if s.Coverable == 0 {
		s.Percent = 100
	} else {
		s.Percent = float64(s.Executed) / float64(s.Coverable) * 100
	}
	return s
}

// Summary returns the summary of the file's coverage vector.
func (f FileCoverage) Summary() Summary {
	return Summarize(f.Coverage)
}

// MergeFiles combines two records for the same file produced by different
// CI shards, using the same merge law as Merge. The source text of a is
// kept; callers are expected to merge records built against identical
// source.
func MergeFiles(a, b FileCoverage) FileCoverage {
	return FileCoverage{
		Filename: a.Filename,
		Source:   a.Source,
		Coverage: Merge(a.Coverage, b.Coverage),
	}
}
