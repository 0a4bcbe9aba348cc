// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import "errors"

// Sentinel errors. Every error returned by this package wraps exactly one of
// them, so callers can classify failures with errors.Is.
var (
	// ErrConfiguration reports an invalid parameter: a split percentage
	// outside [0, 100], a non-positive K or N, or a K/N/boundary that does
	// not fit the dataset.
	ErrConfiguration = errors.New("configuration error")

	// ErrData reports unusable input: an empty matrix, ragged rows,
	// non-numeric tokens, or mismatched train/test shapes.
	ErrData = errors.New("data error")

	// ErrResource reports a catalog too large for the configured
	// similarity matrix budget.
	ErrResource = errors.New("resource error")
)

// ErrorKind returns a short label for the sentinel wrapped by err.
// Used for metrics labels and log fields.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrData):
		return "data"
	case errors.Is(err, ErrResource):
		return "resource"
	default:
		return "internal"
	}
}
