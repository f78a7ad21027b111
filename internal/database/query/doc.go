// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package query holds every SQL statement the readings endpoints run.
//
// Statements are fixed templates generated once at package init. A request
// never changes SQL text; it only selects a template by
// (Source, RangePolicy, sensor filter present) and supplies positional
// arguments. Placeholders are written as "?" and rebound to the driver's
// bindvar style by sqlx in the database package.
//
// The GNSS source spans two physical tables, gnss and gnss2. Templates for
// that source apply the same WHERE clause to both tables and combine them
// with UNION ALL (readings) or UNION (distinct listings), so the argument
// list is repeated once per table.
//
//	stmt := query.ListReadings(query.SourceGNSS, query.Filter{
//	    EntityID: "rover-1",
//	    Start:    &start,
//	})
//	// stmt.SQL:  ... FROM gnss WHERE gnss_id = ? AND "timestamp" >= ? UNION ALL ... FROM gnss2 WHERE ...
//	// stmt.Args: [rover-1 start rover-1 start]
package query
