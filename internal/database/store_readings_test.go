// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tomtom215/sensorhub/internal/database/query"
	"github.com/tomtom215/sensorhub/internal/models"
)

func sensorIDs(readings []models.Reading) []string {
	out := make([]string, len(readings))
	for i, r := range readings {
		out[i] = r.SensorID
	}
	return out
}

func readingValues(readings []models.Reading) []float64 {
	out := make([]float64, len(readings))
	for i, r := range readings {
		out[i] = r.Value
	}
	return out
}

func TestListReadings_SensorRangePolicies(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		seedSensor(t, s, "s1", "farm1", "Soil", 1, ts("2024-01-01T10:00:00Z"))
		seedSensor(t, s, "s1", "farm1", "Soil", 2, ts("2024-01-02T10:00:00Z"))
		seedSensor(t, s, "s2", "farm1", "Air", 3, ts("2024-01-03T10:00:00Z"))
		seedSensor(t, s, "s1", "farm2", "Soil", 9, ts("2024-01-02T10:00:00Z"))

		start := ts("2024-01-02T00:00:00Z")
		end := ts("2024-01-02T23:59:59Z")

		tests := []struct {
			name   string
			filter query.Filter
			want   []float64
		}{
			{"no range", query.Filter{EntityID: "farm1"}, []float64{1, 2, 3}},
			{"from", query.Filter{EntityID: "farm1", Start: &start}, []float64{2, 3}},
			{"until", query.Filter{EntityID: "farm1", End: &end}, []float64{1, 2}},
			{"between", query.Filter{EntityID: "farm1", Start: &start, End: &end}, []float64{2}},
			{"sensor", query.Filter{EntityID: "farm1", SensorID: "s1"}, []float64{1, 2}},
			{"unknown farm", query.Filter{EntityID: "nope"}, []float64{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.ListReadings(ctx, query.SourceSensor, tt.filter)
				if err != nil {
					t.Fatalf("ListReadings: %v", err)
				}
				if got == nil {
					t.Fatal("ListReadings returned nil slice")
				}
				if diff := cmp.Diff(tt.want, readingValues(got)); diff != "" {
					t.Errorf("values mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})
}

func TestListReadings_RangeIsInclusive(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		at := ts("2024-03-01T12:00:00Z")
		seedSensor(t, s, "s1", "farm1", "", 7, at)

		got, err := s.ListReadings(context.Background(), query.SourceSensor,
			query.Filter{EntityID: "farm1", Start: &at, End: &at})
		if err != nil {
			t.Fatalf("ListReadings: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d readings, want 1", len(got))
		}
		want := models.Reading{ID: got[0].ID, SensorID: "s1", FarmID: "farm1", Value: 7, Timestamp: at}
		if diff := cmp.Diff(want, got[0]); diff != "" {
			t.Errorf("reading mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestListReadings_GnssMergesBothTables(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		at := ts("2024-05-01T00:00:00Z")
		seedGnss(t, s, query.TableGnss, "g1", "s1", 1, at)
		seedGnss(t, s, query.TableGnss2, "g1", "s1", 1, at)
		seedGnss(t, s, query.TableGnss2, "g1", "s2", 2, at.Add(time.Hour))
		seedGnss(t, s, query.TableGnss, "g2", "s1", 5, at)

		got, err := s.ListReadings(context.Background(), query.SourceGNSS, query.Filter{EntityID: "g1"})
		if err != nil {
			t.Fatalf("ListReadings: %v", err)
		}
		// Identical rows from both tables are both kept.
		if diff := cmp.Diff([]float64{1, 1, 2}, readingValues(got)); diff != "" {
			t.Errorf("values mismatch (-want +got):\n%s", diff)
		}
		for _, r := range got {
			if r.GnssID != "g1" || r.FarmID != "" || r.Name != nil {
				t.Errorf("unexpected GNSS reading shape: %+v", r)
			}
		}
	})
}

func TestLatestPerSensor(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		seedSensor(t, s, "s2", "farm1", "Air", 1, ts("2024-01-01T00:00:00Z"))
		seedSensor(t, s, "s2", "farm1", "Air", 2, ts("2024-01-03T00:00:00Z"))
		seedSensor(t, s, "s1", "farm1", "Soil", 3, ts("2024-01-02T00:00:00Z"))
		seedSensor(t, s, "s1", "farm1", "Soil", 4, ts("2024-01-01T00:00:00Z"))
		seedSensor(t, s, "s3", "farm2", "Other", 99, ts("2024-02-01T00:00:00Z"))

		got, err := s.LatestPerSensor(ctx, query.SourceSensor, "farm1")
		if err != nil {
			t.Fatalf("LatestPerSensor: %v", err)
		}
		if diff := cmp.Diff([]string{"s1", "s2"}, sensorIDs(got)); diff != "" {
			t.Errorf("sensors mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]float64{3, 2}, readingValues(got)); diff != "" {
			t.Errorf("values mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLatestPerSensor_GnssTieFavoursFirstTable(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		at := ts("2024-06-01T00:00:00Z")
		seedGnss(t, s, query.TableGnss2, "g1", "s1", 20, at)
		seedGnss(t, s, query.TableGnss, "g1", "s1", 10, at)
		seedGnss(t, s, query.TableGnss2, "g1", "s2", 30, at.Add(-time.Hour))

		got, err := s.LatestPerSensor(context.Background(), query.SourceGNSS, "g1")
		if err != nil {
			t.Fatalf("LatestPerSensor: %v", err)
		}
		if diff := cmp.Diff([]float64{10, 30}, readingValues(got)); diff != "" {
			t.Errorf("values mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestListDistinctEntities(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		ctx := context.Background()

		empty, err := s.ListDistinctEntities(ctx, query.SourceGNSS)
		if err != nil {
			t.Fatalf("ListDistinctEntities: %v", err)
		}
		if empty == nil || len(empty) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", empty)
		}

		at := ts("2024-01-01T00:00:00Z")
		seedGnss(t, s, query.TableGnss, "B", "s1", 1, at)
		seedGnss(t, s, query.TableGnss, "A", "s1", 1, at)
		seedGnss(t, s, query.TableGnss2, "C", "s1", 1, at)
		seedGnss(t, s, query.TableGnss2, "B", "s1", 1, at)
		seedSensor(t, s, "s1", "farm2", "", 1, at)
		seedSensor(t, s, "s1", "farm1", "", 1, at)
		seedSensor(t, s, "s2", "farm1", "", 1, at)

		gnss, err := s.ListDistinctEntities(ctx, query.SourceGNSS)
		if err != nil {
			t.Fatalf("ListDistinctEntities(gnss): %v", err)
		}
		if diff := cmp.Diff([]string{"A", "B", "C"}, gnss); diff != "" {
			t.Errorf("gnss ids mismatch (-want +got):\n%s", diff)
		}

		farms, err := s.ListDistinctEntities(ctx, query.SourceSensor)
		if err != nil {
			t.Fatalf("ListDistinctEntities(sensor): %v", err)
		}
		if diff := cmp.Diff([]string{"farm1", "farm2"}, farms); diff != "" {
			t.Errorf("farm ids mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestListDistinctSensors(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		at := ts("2024-01-01T00:00:00Z")
		seedSensor(t, s, "s2", "farm1", "Air", 1, at)
		seedSensor(t, s, "s1", "farm1", "Soil", 1, at)
		seedSensor(t, s, "s1", "farm1", "Soil", 2, at.Add(time.Hour))
		seedSensor(t, s, "s3", "farm1", "Old name", 1, at)
		seedSensor(t, s, "s3", "farm1", "Renamed", 1, at.Add(time.Hour))
		seedSensor(t, s, "s4", "farm1", "Moisture", 1, at)
		seedSensor(t, s, "s4", "farm1", "", 1, at.Add(time.Hour))
		seedGnss(t, s, query.TableGnss, "g1", "x2", 1, at)
		seedGnss(t, s, query.TableGnss2, "g1", "x1", 1, at)
		seedGnss(t, s, query.TableGnss2, "g1", "x2", 1, at)

		sensors, err := s.ListDistinctSensors(ctx, query.SourceSensor, "farm1")
		if err != nil {
			t.Fatalf("ListDistinctSensors(sensor): %v", err)
		}
		want := []models.SensorInfo{
			{SensorID: "s1", Name: strPtr("Soil")},
			{SensorID: "s2", Name: strPtr("Air")},
			{SensorID: "s3", Name: strPtr("Renamed")},
			{SensorID: "s4", Name: strPtr("Moisture")},
		}
		if diff := cmp.Diff(want, sensors); diff != "" {
			t.Errorf("sensors mismatch (-want +got):\n%s", diff)
		}

		gnss, err := s.ListDistinctSensors(ctx, query.SourceGNSS, "g1")
		if err != nil {
			t.Fatalf("ListDistinctSensors(gnss): %v", err)
		}
		wantGnss := []models.SensorInfo{{SensorID: "x1"}, {SensorID: "x2"}}
		if diff := cmp.Diff(wantGnss, gnss); diff != "" {
			t.Errorf("gnss sensors mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestFarms(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		at := ts("2024-01-01T00:00:00Z")
		seedFarm(t, s, "farm1", "North Field", "59.33,18.06")
		seedSensor(t, s, "s1", "farm1", "", 1, at)
		seedSensor(t, s, "s1", "farm2", "", 1, at)

		farms, err := s.ListFarms(ctx)
		if err != nil {
			t.Fatalf("ListFarms: %v", err)
		}
		want := []models.Farm{
			{FarmID: "farm1", Name: strPtr("North Field"), Location: strPtr("59.33,18.06")},
			{FarmID: "farm2"},
		}
		if diff := cmp.Diff(want, farms); diff != "" {
			t.Errorf("farms mismatch (-want +got):\n%s", diff)
		}

		id, err := s.FarmIDByName(ctx, "North Field")
		if err != nil {
			t.Fatalf("FarmIDByName: %v", err)
		}
		if id != "farm1" {
			t.Errorf("FarmIDByName = %q, want farm1", id)
		}

		if _, err := s.FarmIDByName(ctx, "Nowhere"); !errors.Is(err, ErrNotFound) {
			t.Errorf("FarmIDByName(unknown) error = %v, want ErrNotFound", err)
		}
	})
}

func TestReadingCRUD(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		at := ts("2024-04-01T08:30:00Z")

		created, err := s.CreateReading(ctx, models.ReadingInput{
			SensorID: "s1", FarmID: "farm1", Name: strPtr("Soil"), Value: 12.5, Timestamp: at,
		})
		if err != nil {
			t.Fatalf("CreateReading: %v", err)
		}
		if created.ID == 0 {
			t.Fatal("CreateReading returned zero id")
		}
		want := models.Reading{ID: created.ID, SensorID: "s1", FarmID: "farm1", Name: strPtr("Soil"), Value: 12.5, Timestamp: at}
		if diff := cmp.Diff(want, created); diff != "" {
			t.Errorf("created mismatch (-want +got):\n%s", diff)
		}

		updated, err := s.UpdateReading(ctx, created.ID, models.ReadingInput{
			SensorID: "s1", FarmID: "farm1", Value: 13, Timestamp: at.Add(time.Minute),
		})
		if err != nil {
			t.Fatalf("UpdateReading: %v", err)
		}
		if updated.Value != 13 || updated.Name != nil || !updated.Timestamp.Equal(at.Add(time.Minute)) {
			t.Errorf("unexpected update result: %+v", updated)
		}

		deleted, err := s.DeleteReading(ctx, created.ID)
		if err != nil {
			t.Fatalf("DeleteReading: %v", err)
		}
		if diff := cmp.Diff(updated, deleted, cmpopts.EquateApproxTime(time.Microsecond)); diff != "" {
			t.Errorf("deleted mismatch (-want +got):\n%s", diff)
		}

		if _, err := s.DeleteReading(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second DeleteReading error = %v, want ErrNotFound", err)
		}
		if _, err := s.UpdateReading(ctx, created.ID, models.ReadingInput{SensorID: "s1", FarmID: "farm1", Timestamp: at}); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateReading(missing) error = %v, want ErrNotFound", err)
		}
	})
}
