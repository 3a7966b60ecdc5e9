// Package trace locates and parses the raw per-run trace files written by
// runtime coverage instrumentation. A trace file carries one fixed-width
// record per source line; several trace files may exist for one source
// file, one per process that executed it.
package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// File is one trace artifact discovered on disk. It is a transient,
// read-only input; deleting stale trace files is the cleaner's job,
// never the reconciliation core's.
type File struct {
	Path           string
	SourceFilename string
	// ProcessID is the decimal pid segment of the trace file name,
	// or zero when the name carries none.
	ProcessID int
}

// matcherFor builds the naming-rule pattern for one source file: the
// source base name (extension optional), an optional "." + pid digits,
// then the ".cov" suffix. For source foo.src this accepts foo.src.cov,
// foo.src.1234.cov, foo.cov and foo.1234.cov.
func matcherFor(sourceName string) *regexp.Regexp {
	ext := filepath.Ext(sourceName)
	stem := sourceName[:len(sourceName)-len(ext)]
	pattern := "^" + regexp.QuoteMeta(stem) + "(" + regexp.QuoteMeta(ext) + `)?(\.([0-9]+))?\.cov$`
	return regexp.MustCompile(pattern)
}

// Matches reports whether name is a trace file name for the given source
// file name per the naming rule.
func Matches(name, sourceName string) bool {
	return matcherFor(sourceName).MatchString(name)
}

// Discover lists the trace files in folder belonging to the named source
// file, sorted by name. Zero matches is a normal outcome, not an error.
func Discover(folder, sourceName string) ([]File, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("list trace folder: %w", err)
	}

	re := matcherFor(sourceName)
	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		pid := 0
		if m[3] != "" {
			pid, _ = strconv.Atoi(m[3])
		}
		files = append(files, File{
			Path:           filepath.Join(folder, entry.Name()),
			SourceFilename: sourceName,
			ProcessID:      pid,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
