// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package query

import (
	"fmt"
	"time"
)

// Column and table names shared by every template.
const (
	TableSensorData = "sensor_data"
	TableGnss       = "gnss"
	TableGnss2      = "gnss2"
	TableFarms      = "farms"

	ColFarmID   = "farm_id"
	ColGnssID   = "gnss_id"
	ColSensorID = "sensor_id"
	// ColTimestamp is quoted because timestamp is also a type keyword.
	ColTimestamp = `"timestamp"`
)

// gnssTables are unioned in this order; the position is the src rank used
// to break timestamp ties in LatestPerSensor.
var gnssTables = [...]string{TableGnss, TableGnss2}

// Statement is a template plus its positional arguments.
type Statement struct {
	SQL  string
	Args []interface{}
}

type templateKey struct {
	policy     RangePolicy
	withSensor bool
}

var (
	listTemplates      [numSources]map[templateKey]string
	latestTemplates    [numSources]string
	entityTemplates    [numSources]string
	sensorTemplates    [numSources]string
	sensorReturnCols   = fmt.Sprintf("id, %s AS entity_id, %s, name, value, %s", ColFarmID, ColSensorID, ColTimestamp)
	farmsTemplate      string
	farmByNameTemplate string
)

//nolint:gochecknoinits // templates are fixed and built once
func init() {
	for _, src := range []Source{SourceSensor, SourceGNSS} {
		listTemplates[src] = make(map[templateKey]string, numPolicies*2)
		for p := RangeNone; p < numPolicies; p++ {
			for _, withSensor := range []bool{false, true} {
				listTemplates[src][templateKey{p, withSensor}] = buildList(src, whereFor(src, p, withSensor))
			}
		}
		latestTemplates[src] = buildLatest(src)
		entityTemplates[src] = buildEntities(src)
		sensorTemplates[src] = buildSensors(src)
	}

	farmsTemplate = fmt.Sprintf(
		"SELECT e.%[1]s AS farm_id, f.name AS name, f.location AS location "+
			"FROM (SELECT DISTINCT %[1]s FROM %[2]s) AS e "+
			"LEFT JOIN %[3]s AS f ON f.%[1]s = e.%[1]s "+
			"ORDER BY e.%[1]s ASC",
		ColFarmID, TableSensorData, TableFarms)

	farmByNameTemplate = fmt.Sprintf(
		"SELECT %[1]s FROM %[2]s WHERE name = ? ORDER BY %[1]s ASC LIMIT 1",
		ColFarmID, TableFarms)
}

func whereFor(src Source, policy RangePolicy, withSensor bool) string {
	wb := NewWhereBuilder().AddClause(src.EntityColumn() + " = ?")
	if withSensor {
		wb.AddClause(ColSensorID + " = ?")
	}
	wb.AddRange(policy)
	clause, _ := wb.Build()
	return clause
}

// gnssUnion returns both GNSS tables filtered by where, tagged with src.
func gnssUnion(where string) string {
	sql := ""
	for i, table := range gnssTables {
		if i > 0 {
			sql += " UNION ALL "
		}
		sql += fmt.Sprintf("SELECT %d AS src, id, %s AS entity_id, %s, value, %s FROM %s WHERE %s",
			i+1, ColGnssID, ColSensorID, ColTimestamp, table, where)
	}
	return sql
}

func buildList(src Source, where string) string {
	if src == SourceGNSS {
		return fmt.Sprintf(
			"SELECT id, entity_id, %[1]s, value, %[2]s FROM (%[3]s) AS readings ORDER BY %[2]s ASC, src ASC, id ASC",
			ColSensorID, ColTimestamp, gnssUnion(where))
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s ASC, id ASC",
		sensorReturnCols, TableSensorData, where, ColTimestamp)
}

// buildLatest ranks rows per sensor by timestamp, newest first. Ties go to
// the earlier table in gnssTables, then to the highest id.
func buildLatest(src Source) string {
	where := whereFor(src, RangeNone, false)
	if src == SourceGNSS {
		return fmt.Sprintf(
			"SELECT id, entity_id, %[1]s, value, %[2]s FROM ("+
				"SELECT id, entity_id, %[1]s, value, %[2]s, "+
				"ROW_NUMBER() OVER (PARTITION BY %[1]s ORDER BY %[2]s DESC, src ASC, id DESC) AS rn "+
				"FROM (%[3]s) AS readings"+
				") AS ranked WHERE rn = 1 ORDER BY %[1]s ASC",
			ColSensorID, ColTimestamp, gnssUnion(where))
	}
	return fmt.Sprintf(
		"SELECT id, entity_id, %[1]s, name, value, %[2]s FROM ("+
			"SELECT %[3]s, "+
			"ROW_NUMBER() OVER (PARTITION BY %[1]s ORDER BY %[2]s DESC, id DESC) AS rn "+
			"FROM %[4]s WHERE %[5]s"+
			") AS ranked WHERE rn = 1 ORDER BY %[1]s ASC",
		ColSensorID, ColTimestamp, sensorReturnCols, TableSensorData, where)
}

func buildEntities(src Source) string {
	if src == SourceGNSS {
		return fmt.Sprintf("SELECT %[1]s FROM %[2]s UNION SELECT %[1]s FROM %[3]s ORDER BY %[1]s ASC",
			ColGnssID, gnssTables[0], gnssTables[1])
	}
	return fmt.Sprintf("SELECT DISTINCT %[1]s FROM %[2]s ORDER BY %[1]s ASC", ColFarmID, TableSensorData)
}

func buildSensors(src Source) string {
	where := whereFor(src, RangeNone, false)
	if src == SourceGNSS {
		return fmt.Sprintf("SELECT %[1]s FROM %[2]s WHERE %[4]s UNION SELECT %[1]s FROM %[3]s WHERE %[4]s ORDER BY %[1]s ASC",
			ColSensorID, gnssTables[0], gnssTables[1], where)
	}
	// One row per sensor: the newest non-null name wins, so a renamed
	// sensor is listed once under its current name.
	return fmt.Sprintf(
		"SELECT %[1]s, name FROM ("+
			"SELECT %[1]s, name, "+
			"ROW_NUMBER() OVER (PARTITION BY %[1]s ORDER BY CASE WHEN name IS NULL THEN 1 ELSE 0 END ASC, %[2]s DESC, id DESC) AS rn "+
			"FROM %[3]s WHERE %[4]s"+
			") AS named WHERE rn = 1 ORDER BY %[1]s ASC",
		ColSensorID, ColTimestamp, TableSensorData, where)
}

// perTable repeats args once for every physical table behind src.
func perTable(src Source, args []interface{}) []interface{} {
	if src != SourceGNSS {
		return args
	}
	out := make([]interface{}, 0, len(args)*len(gnssTables))
	for range gnssTables {
		out = append(out, args...)
	}
	return out
}

// ListReadings selects the readings template for f and orders rows by
// timestamp ascending. GNSS rows from both tables are kept, duplicates included.
func ListReadings(src Source, f Filter) Statement {
	key := templateKey{policy: f.Policy(), withSensor: f.SensorID != ""}
	return Statement{SQL: listTemplates[src][key], Args: perTable(src, f.args())}
}

// LatestPerSensor returns one row per sensor under entityID, ordered by sensor_id.
func LatestPerSensor(src Source, entityID string) Statement {
	return Statement{SQL: latestTemplates[src], Args: perTable(src, []interface{}{entityID})}
}

// DistinctEntities lists farm ids or gnss ids, ascending and deduplicated.
func DistinctEntities(src Source) Statement {
	return Statement{SQL: entityTemplates[src], Args: []interface{}{}}
}

// DistinctSensors lists sensors under entityID, ascending, one row per
// sensor_id. Sensor rows carry their most recent display name; GNSS rows
// have none.
func DistinctSensors(src Source, entityID string) Statement {
	return Statement{SQL: sensorTemplates[src], Args: perTable(src, []interface{}{entityID})}
}

// Farms lists farm ids that have readings with the farm name and location
// when the farms table knows them.
func Farms() Statement {
	return Statement{SQL: farmsTemplate, Args: []interface{}{}}
}

// FarmIDByName resolves a farm display name.
func FarmIDByName(name string) Statement {
	return Statement{SQL: farmByNameTemplate, Args: []interface{}{name}}
}

// SensorReadingValues are the writable columns of sensor_data.
type SensorReadingValues struct {
	SensorID  string
	FarmID    string
	Name      *string
	Value     float64
	Timestamp time.Time
}

func (v SensorReadingValues) args() []interface{} {
	var name interface{}
	if v.Name != nil {
		name = *v.Name
	}
	return []interface{}{v.SensorID, v.FarmID, name, v.Value, v.Timestamp.UTC()}
}

var (
	insertSensorReading = fmt.Sprintf(
		"INSERT INTO %s (%s, %s, name, value, %s) VALUES (?, ?, ?, ?, ?) RETURNING %s",
		TableSensorData, ColSensorID, ColFarmID, ColTimestamp, sensorReturnCols)

	updateSensorReading = fmt.Sprintf(
		"UPDATE %s SET %s = ?, %s = ?, name = ?, value = ?, %s = ? WHERE id = ? RETURNING %s",
		TableSensorData, ColSensorID, ColFarmID, ColTimestamp, sensorReturnCols)

	deleteSensorReading = fmt.Sprintf(
		"DELETE FROM %s WHERE id = ? RETURNING %s",
		TableSensorData, sensorReturnCols)
)

// InsertSensorReading inserts one row and returns it.
func InsertSensorReading(v SensorReadingValues) Statement {
	return Statement{SQL: insertSensorReading, Args: v.args()}
}

// UpdateSensorReading replaces every writable column of row id and returns
// the new row; no row is returned when id does not exist.
func UpdateSensorReading(id int64, v SensorReadingValues) Statement {
	return Statement{SQL: updateSensorReading, Args: append(v.args(), id)}
}

// DeleteSensorReading deletes row id and returns it; no row is returned
// when id does not exist.
func DeleteSensorReading(id int64) Statement {
	return Statement{SQL: deleteSensorReading, Args: []interface{}{id}}
}
