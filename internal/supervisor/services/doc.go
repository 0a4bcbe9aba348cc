// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

// Package services provides Suture service wrappers for itemcf components.
//
//   - JobService: the batch run (load, evaluate, complete, save, report)
//   - HTTPServerService: the optional health/report/metrics server
//
// All services implement suture.Service and fmt.Stringer.
package services
