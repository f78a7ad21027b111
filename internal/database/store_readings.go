// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package database

import (
	"context"

	"github.com/tomtom215/sensorhub/internal/database/query"
	"github.com/tomtom215/sensorhub/internal/models"
)

func toReadings(src query.Source, rows []readingRow) []models.Reading {
	out := make([]models.Reading, len(rows))
	for i := range rows {
		if src == query.SourceGNSS {
			out[i] = rows[i].gnssReading()
		} else {
			out[i] = rows[i].sensorReading()
		}
	}
	return out
}

// ListReadings returns readings for f.EntityID ordered by timestamp.
func (s *Store) ListReadings(ctx context.Context, src query.Source, f query.Filter) ([]models.Reading, error) {
	return execute(ctx, s, "list_readings", src.String(), func(ctx context.Context) ([]models.Reading, error) {
		var rows []readingRow
		if err := s.selectRows(ctx, &rows, query.ListReadings(src, f)); err != nil {
			return nil, err
		}
		return toReadings(src, rows), nil
	})
}

// LatestPerSensor returns the newest reading of each sensor under entityID.
func (s *Store) LatestPerSensor(ctx context.Context, src query.Source, entityID string) ([]models.Reading, error) {
	return execute(ctx, s, "latest_per_sensor", src.String(), func(ctx context.Context) ([]models.Reading, error) {
		var rows []readingRow
		if err := s.selectRows(ctx, &rows, query.LatestPerSensor(src, entityID)); err != nil {
			return nil, err
		}
		return toReadings(src, rows), nil
	})
}

// ListDistinctEntities returns every farm id or gnss id, ascending.
func (s *Store) ListDistinctEntities(ctx context.Context, src query.Source) ([]string, error) {
	return execute(ctx, s, "list_entities", src.String(), func(ctx context.Context) ([]string, error) {
		ids := []string{}
		if err := s.selectRows(ctx, &ids, query.DistinctEntities(src)); err != nil {
			return nil, err
		}
		return ids, nil
	})
}

// ListDistinctSensors returns the sensors under entityID, ascending.
func (s *Store) ListDistinctSensors(ctx context.Context, src query.Source, entityID string) ([]models.SensorInfo, error) {
	return execute(ctx, s, "list_sensors", src.String(), func(ctx context.Context) ([]models.SensorInfo, error) {
		var rows []sensorRow
		if err := s.selectRows(ctx, &rows, query.DistinctSensors(src, entityID)); err != nil {
			return nil, err
		}
		out := make([]models.SensorInfo, len(rows))
		for i, r := range rows {
			out[i] = models.SensorInfo{SensorID: r.SensorID, Name: nullString(r.Name)}
		}
		return out, nil
	})
}

// ListFarms returns the farm ids present in sensor_data with their names.
func (s *Store) ListFarms(ctx context.Context) ([]models.Farm, error) {
	return execute(ctx, s, "list_farms", query.SourceSensor.String(), func(ctx context.Context) ([]models.Farm, error) {
		var rows []farmRow
		if err := s.selectRows(ctx, &rows, query.Farms()); err != nil {
			return nil, err
		}
		out := make([]models.Farm, len(rows))
		for i, r := range rows {
			out[i] = models.Farm{FarmID: r.FarmID, Name: nullString(r.Name), Location: nullString(r.Location)}
		}
		return out, nil
	})
}

// FarmIDByName resolves a farm name; ErrNotFound when no farm has it.
func (s *Store) FarmIDByName(ctx context.Context, name string) (string, error) {
	return execute(ctx, s, "farm_by_name", query.SourceSensor.String(), func(ctx context.Context) (string, error) {
		var id string
		stmt := query.FarmIDByName(name)
		err := s.getRow(ctx, &id, stmt.SQL, stmt.Args...)
		return id, err
	})
}

func writableValues(in models.ReadingInput) query.SensorReadingValues {
	return query.SensorReadingValues{
		SensorID:  in.SensorID,
		FarmID:    in.FarmID,
		Name:      in.Name,
		Value:     in.Value,
		Timestamp: in.Timestamp,
	}
}

func (s *Store) writeReading(ctx context.Context, op string, stmt query.Statement) (models.Reading, error) {
	return execute(ctx, s, op, query.SourceSensor.String(), func(ctx context.Context) (models.Reading, error) {
		var row readingRow
		if err := s.getRow(ctx, &row, stmt.SQL, stmt.Args...); err != nil {
			return models.Reading{}, err
		}
		return row.sensorReading(), nil
	})
}

// CreateReading inserts a sensor reading and returns the stored row.
func (s *Store) CreateReading(ctx context.Context, in models.ReadingInput) (models.Reading, error) {
	return s.writeReading(ctx, "create_reading", query.InsertSensorReading(writableValues(in)))
}

// UpdateReading replaces sensor reading id; ErrNotFound when it does not exist.
func (s *Store) UpdateReading(ctx context.Context, id int64, in models.ReadingInput) (models.Reading, error) {
	return s.writeReading(ctx, "update_reading", query.UpdateSensorReading(id, writableValues(in)))
}

// DeleteReading removes sensor reading id and returns it; ErrNotFound when
// it does not exist.
func (s *Store) DeleteReading(ctx context.Context, id int64) (models.Reading, error) {
	return s.writeReading(ctx, "delete_reading", query.DeleteSensorReading(id))
}
