package trace

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tracecov/internal/cover"
)

// ErrMalformedRecord reports a trace record whose count field is neither
// the not-applicable marker nor a non-negative integer. It is fatal for
// the owning source file and never retried.
var ErrMalformedRecord = errors.New("malformed trace record")

// countFieldWidth is the fixed width of the per-record count field.
// Column 9 holds '-' for not-applicable lines; otherwise the field is a
// right-aligned non-negative decimal. Anything past column 9 is metadata
// this core ignores.
const countFieldWidth = 9

// ParseRecords reads one trace file and returns its coverage vector,
// one entry per record in positional correspondence with the source.
func ParseRecords(path string) (cover.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()

	var vec cover.Vector
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		lc, err := parseRecord(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		vec = append(vec, lc)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read trace file %s: %w", path, err)
	}
	return vec, nil
}

func parseRecord(record string) (cover.LineCount, error) {
	if len(record) < countFieldWidth {
		return cover.LineCount{}, fmt.Errorf("%w: record %q shorter than count field", ErrMalformedRecord, record)
	}
	field := record[:countFieldWidth]
	if field[countFieldWidth-1] == '-' {
		return cover.NotApplicable(), nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || n < 0 {
		return cover.LineCount{}, fmt.Errorf("%w: count field %q", ErrMalformedRecord, field)
	}
	return cover.Executions(n), nil
}
