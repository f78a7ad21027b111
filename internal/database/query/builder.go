// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package query

import (
	"strings"
)

// WhereBuilder joins SQL conditions with AND. Conditions are SQL fragments
// owned by this package; values only ever travel as arguments.
//
//	wb := query.NewWhereBuilder()
//	wb.AddClause("farm_id = ?", "7")
//	wb.AddRange(query.RangeBetween)
//	clause, args := wb.Build()
//	// farm_id = ? AND "timestamp" BETWEEN ? AND ?
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates an empty builder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause appends a condition and the arguments for its placeholders.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddRange appends the timestamp condition for policy. RangeNone adds nothing.
func (wb *WhereBuilder) AddRange(policy RangePolicy) *WhereBuilder {
	switch policy {
	case RangeBetween:
		wb.clauses = append(wb.clauses, ColTimestamp+" BETWEEN ? AND ?")
	case RangeFrom:
		wb.clauses = append(wb.clauses, ColTimestamp+" >= ?")
	case RangeUntil:
		wb.clauses = append(wb.clauses, ColTimestamp+" <= ?")
	}
	return wb
}

// Build returns the conditions joined with AND, or "1=1" when empty.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}
