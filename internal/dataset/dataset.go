// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

// Package dataset reads and writes rating matrices as headerless,
// comma-separated integer tables (one row per user) and splits them into
// fully known and blank rows.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tomtom215/itemcf/internal/recommend"
)

// ReadCSV parses a rating matrix. Blank lines are skipped and cells may be
// padded with spaces. Every row must have as many cells as the first one;
// ragged rows and non-integer cells return recommend.ErrData with the line
// and column of the offending cell.
func ReadCSV(r io.Reader) (recommend.RatingMatrix, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	var m recommend.RatingMatrix
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, fmt.Errorf("%w: line %d: %v", recommend.ErrData, pe.Line, pe.Err)
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := cr.FieldPos(0)
		row := make([]int, len(record))
		for i, cell := range record {
			v, err := strconv.Atoi(strings.TrimSpace(cell))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d, column %d: invalid score %q", recommend.ErrData, line, i+1, cell)
			}
			row[i] = v
		}
		m = append(m, row)
	}
	return m, nil
}

// ReadFile opens path and parses it with ReadCSV.
func ReadFile(path string) (recommend.RatingMatrix, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	m, err := ReadCSV(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteCSV writes the rows of every part in order, one line per row.
func WriteCSV(w io.Writer, parts ...recommend.RatingMatrix) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)
	for _, m := range parts {
		for _, row := range m {
			buf = buf[:0]
			for i, score := range row {
				if i > 0 {
					buf = append(buf, ',')
				}
				buf = strconv.AppendInt(buf, int64(score), 10)
			}
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteFile writes parts to path through a temporary file in the same
// directory, so readers never see a half-written table.
func WriteFile(path string, parts ...recommend.RatingMatrix) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // no-op after a successful rename

	if err := WriteCSV(tmp, parts...); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// Partition splits m at row knownUsers: the leading rows are fully known,
// the rest are blank rows whose unknown columns get predicted. Rows are
// shared with m, not copied.
func Partition(m recommend.RatingMatrix, knownUsers int) (known, blank recommend.RatingMatrix, err error) {
	if knownUsers < 0 || knownUsers > m.Users() {
		return nil, nil, fmt.Errorf("%w: known users must be in [0, %d], got %d",
			recommend.ErrConfiguration, m.Users(), knownUsers)
	}
	return m[:knownUsers:knownUsers], m[knownUsers:], nil
}
