// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package query

import (
	"fmt"
	"time"
)

// Source is a logical readings source.
type Source int

const (
	// SourceSensor is the sensor_data table, grouped by farm_id.
	SourceSensor Source = iota
	// SourceGNSS is the union of the gnss and gnss2 tables, grouped by gnss_id.
	SourceGNSS

	numSources = 2
)

// String returns the source name used in logs and metric labels.
func (s Source) String() string {
	switch s {
	case SourceSensor:
		return "sensor"
	case SourceGNSS:
		return "gnss"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s >= 0 && s < numSources
}

// EntityColumn is farm_id for sensors and gnss_id for GNSS.
func (s Source) EntityColumn() string {
	if s == SourceGNSS {
		return ColGnssID
	}
	return ColFarmID
}

// RangePolicy is the time filter shape, chosen by which bounds are present.
type RangePolicy int

const (
	RangeNone    RangePolicy = iota // no time condition
	RangeFrom                       // "timestamp" >= start
	RangeUntil                      // "timestamp" <= end
	RangeBetween                    // "timestamp" BETWEEN start AND end, inclusive

	numPolicies = 4
)

func (p RangePolicy) String() string {
	switch p {
	case RangeNone:
		return "none"
	case RangeFrom:
		return "from"
	case RangeUntil:
		return "until"
	case RangeBetween:
		return "between"
	default:
		return fmt.Sprintf("range(%d)", int(p))
	}
}

// PolicyFor selects the policy from the presence of each bound.
func PolicyFor(start, end *time.Time) RangePolicy {
	switch {
	case start != nil && end != nil:
		return RangeBetween
	case start != nil:
		return RangeFrom
	case end != nil:
		return RangeUntil
	default:
		return RangeNone
	}
}

// Filter is the set of optional conditions for a readings listing.
// EntityID is required by callers; the empty sensor id means "all sensors".
type Filter struct {
	EntityID string
	SensorID string
	Start    *time.Time
	End      *time.Time
}

// Policy returns the range policy for f's bounds.
func (f Filter) Policy() RangePolicy {
	return PolicyFor(f.Start, f.End)
}

// args returns arguments in template placeholder order:
// entity, sensor (if set), start (if set), end (if set).
func (f Filter) args() []interface{} {
	args := make([]interface{}, 0, 4)
	args = append(args, f.EntityID)
	if f.SensorID != "" {
		args = append(args, f.SensorID)
	}
	if f.Start != nil {
		args = append(args, f.Start.UTC())
	}
	if f.End != nil {
		args = append(args, f.End.UTC())
	}
	return args
}
