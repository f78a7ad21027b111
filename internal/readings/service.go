// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package readings

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/tomtom215/sensorhub/internal/cache"
	"github.com/tomtom215/sensorhub/internal/database"
	"github.com/tomtom215/sensorhub/internal/database/query"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
	"github.com/tomtom215/sensorhub/internal/validation"
)

// Store is the datastore surface the service needs. *database.Store
// implements it; GNSS methods hide the two physical tables.
type Store interface {
	ListReadings(ctx context.Context, src query.Source, f query.Filter) ([]models.Reading, error)
	LatestPerSensor(ctx context.Context, src query.Source, entityID string) ([]models.Reading, error)
	ListDistinctEntities(ctx context.Context, src query.Source) ([]string, error)
	ListDistinctSensors(ctx context.Context, src query.Source, entityID string) ([]models.SensorInfo, error)
	ListFarms(ctx context.Context) ([]models.Farm, error)
	FarmIDByName(ctx context.Context, name string) (string, error)
	CreateReading(ctx context.Context, in models.ReadingInput) (models.Reading, error)
	UpdateReading(ctx context.Context, id int64, in models.ReadingInput) (models.Reading, error)
	DeleteReading(ctx context.Context, id int64) (models.Reading, error)
}

// Query holds raw request values. EntityID is the farm_id or gnss_id;
// FarmName is an alternative to EntityID for the sensor source only.
type Query struct {
	EntityID  string
	FarmName  string
	SensorID  string `json:"sensor_id" validate:"omitempty,max=128"`
	StartDate string `json:"start_date" validate:"omitempty,timestamp"`
	EndDate   string `json:"end_date" validate:"omitempty,timestamp"`
}

// ReadingRequest is the body of POST /sensor_data and PUT /sensor_data/{id}.
type ReadingRequest struct {
	SensorID  string   `json:"sensor_id" validate:"required,max=128"`
	FarmID    string   `json:"farm_id" validate:"required,max=128"`
	Name      *string  `json:"name" validate:"omitempty,max=255"`
	Value     *float64 `json:"value" validate:"required"`
	Timestamp string   `json:"timestamp" validate:"required,timestamp"`
}

// operation messages are what clients see when the datastore fails.
type messages struct {
	missing  string
	list     string
	latest   string
	sensors  string
	entities string
}

var sourceMessages = map[query.Source]messages{
	query.SourceSensor: {
		missing:  "farm_id query parameter is required",
		list:     "Error fetching sensor data",
		latest:   "Error fetching latest sensor data",
		sensors:  "Error fetching sensor list",
		entities: "Error fetching farms",
	},
	query.SourceGNSS: {
		missing:  "gnss_id parameter is required",
		list:     "Error fetching GNSS sensor data",
		latest:   "Error fetching latest GNSS data",
		sensors:  "Error fetching GNSS sensors",
		entities: "Error fetching GNSS devices",
	},
}

// Service implements the readings operations on top of a Store.
type Service struct {
	store Store
	audit Auditor
	feed  Publisher

	// farm name -> farm id. Farms are not writable through the API, so
	// entries only go stale when the table is edited out of band.
	farmIDs *cache.LRU[string]
}

const (
	farmCacheSize = 256
	farmCacheTTL  = 5 * time.Minute
)

// NewService creates a Service backed by store.
func NewService(store Store) *Service {
	return &Service{
		store:   store,
		audit:   nopAuditor{},
		feed:    nopPublisher{},
		farmIDs: cache.NewLRU[string](farmCacheSize, farmCacheTTL),
	}
}

// Auditor receives write events. Implementations must not block.
type Auditor interface {
	Record(ctx context.Context, ev models.AuditEvent)
}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, models.AuditEvent) {}

// SetAuditor routes create, update and delete events to a. nil disables
// auditing.
func (s *Service) SetAuditor(a Auditor) {
	if a == nil {
		a = nopAuditor{}
	}
	s.audit = a
}

// Publisher receives every stored write for live subscribers. eventType is
// one of the models.AuditReading* types. Implementations must not block.
type Publisher interface {
	PublishReading(eventType string, r models.Reading)
}

type nopPublisher struct{}

func (nopPublisher) PublishReading(string, models.Reading) {}

// SetPublisher routes writes to p. nil disables the live feed.
func (s *Service) SetPublisher(p Publisher) {
	if p == nil {
		p = nopPublisher{}
	}
	s.feed = p
}

func (s *Service) recordWrite(ctx context.Context, typ string, r models.Reading) {
	s.feed.PublishReading(typ, r)
	s.audit.Record(ctx, models.AuditEvent{
		Type:        typ,
		Outcome:     models.AuditSuccess,
		Target:      strconv.FormatInt(r.ID, 10),
		Description: "sensor " + r.SensorID + " on farm " + r.FarmID,
	})
}

// List returns the readings of one farm or GNSS device, oldest first.
func (s *Service) List(ctx context.Context, src query.Source, q Query) ([]models.Reading, error) {
	msgs, err := checkSource(src)
	if err != nil {
		return nil, err
	}
	f, err := buildFilter(src, q, msgs)
	if err != nil {
		return nil, err
	}
	if f.EntityID, err = s.resolveEntity(ctx, src, q, msgs.list); err != nil {
		return nil, err
	}

	rows, err := s.store.ListReadings(ctx, src, f)
	if err != nil {
		return nil, datastoreError(ctx, "list_readings", msgs.list, err)
	}
	return rows, nil
}

// Latest returns the newest reading of every sensor under the entity,
// ordered by sensor id.
func (s *Service) Latest(ctx context.Context, src query.Source, q Query) ([]models.Reading, error) {
	msgs, err := checkSource(src)
	if err != nil {
		return nil, err
	}
	if err := requireEntity(src, q, msgs); err != nil {
		return nil, err
	}
	entityID, err := s.resolveEntity(ctx, src, q, msgs.latest)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.LatestPerSensor(ctx, src, entityID)
	if err != nil {
		return nil, datastoreError(ctx, "latest_per_sensor", msgs.latest, err)
	}
	return rows, nil
}

// Sensors lists the distinct sensors under the entity.
func (s *Service) Sensors(ctx context.Context, src query.Source, q Query) ([]models.SensorInfo, error) {
	msgs, err := checkSource(src)
	if err != nil {
		return nil, err
	}
	if err := requireEntity(src, q, msgs); err != nil {
		return nil, err
	}
	entityID, err := s.resolveEntity(ctx, src, q, msgs.sensors)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ListDistinctSensors(ctx, src, entityID)
	if err != nil {
		return nil, datastoreError(ctx, "list_sensors", msgs.sensors, err)
	}
	return rows, nil
}

// Entities lists the distinct farm ids or GNSS device ids.
func (s *Service) Entities(ctx context.Context, src query.Source) ([]string, error) {
	msgs, err := checkSource(src)
	if err != nil {
		return nil, err
	}
	ids, err := s.store.ListDistinctEntities(ctx, src)
	if err != nil {
		return nil, datastoreError(ctx, "list_entities", msgs.entities, err)
	}
	return ids, nil
}

// Farms lists farms that have readings, with names where known.
func (s *Service) Farms(ctx context.Context) ([]models.Farm, error) {
	farms, err := s.store.ListFarms(ctx)
	if err != nil {
		return nil, datastoreError(ctx, "list_farms", sourceMessages[query.SourceSensor].entities, err)
	}
	return farms, nil
}

// Create stores a new sensor reading.
func (s *Service) Create(ctx context.Context, req ReadingRequest) (models.Reading, error) {
	in, err := readingInput(req)
	if err != nil {
		return models.Reading{}, err
	}
	r, err := s.store.CreateReading(ctx, in)
	if err != nil {
		return models.Reading{}, datastoreError(ctx, "create_reading", "Error creating sensor reading", err)
	}
	s.recordWrite(ctx, models.AuditReadingCreate, r)
	return r, nil
}

// Update replaces sensor reading rawID.
func (s *Service) Update(ctx context.Context, rawID string, req ReadingRequest) (models.Reading, error) {
	id, err := parseID(rawID)
	if err != nil {
		return models.Reading{}, err
	}
	in, err := readingInput(req)
	if err != nil {
		return models.Reading{}, err
	}
	r, err := s.store.UpdateReading(ctx, id, in)
	if errors.Is(err, database.ErrNotFound) {
		return models.Reading{}, &NotFoundError{Message: "Sensor reading not found"}
	}
	if err != nil {
		return models.Reading{}, datastoreError(ctx, "update_reading", "Error updating sensor reading", err)
	}
	s.recordWrite(ctx, models.AuditReadingUpdate, r)
	return r, nil
}

// Delete removes sensor reading rawID and returns the removed row.
func (s *Service) Delete(ctx context.Context, rawID string) (models.Reading, error) {
	id, err := parseID(rawID)
	if err != nil {
		return models.Reading{}, err
	}
	r, err := s.store.DeleteReading(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Reading{}, &NotFoundError{Message: "Sensor reading not found"}
	}
	if err != nil {
		return models.Reading{}, datastoreError(ctx, "delete_reading", "Error deleting sensor reading", err)
	}
	s.recordWrite(ctx, models.AuditReadingDelete, r)
	return r, nil
}

func checkSource(src query.Source) (messages, error) {
	if !src.Valid() {
		return messages{}, invalid("unknown source %q", src.String())
	}
	return sourceMessages[src], nil
}

func requireEntity(src query.Source, q Query, msgs messages) error {
	if q.EntityID != "" || (src == query.SourceSensor && q.FarmName != "") {
		return nil
	}
	return &ValidationError{Message: msgs.missing}
}

// buildFilter validates q and converts its dates. It never touches the
// datastore; EntityID is filled in by the caller.
func buildFilter(src query.Source, q Query, msgs messages) (query.Filter, error) {
	if err := requireEntity(src, q, msgs); err != nil {
		return query.Filter{}, err
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		return query.Filter{}, &ValidationError{Message: verr.Error()}
	}

	f := query.Filter{SensorID: q.SensorID}
	if q.StartDate != "" {
		t, _ := validation.ParseTimestamp(q.StartDate)
		f.Start = &t
	}
	if q.EndDate != "" {
		t, _ := validation.ParseTimestamp(q.EndDate)
		f.End = &t
	}
	if f.Start != nil && f.End != nil && f.Start.After(*f.End) {
		return query.Filter{}, invalid("start_date must not be after end_date")
	}
	return f, nil
}

// resolveEntity returns q.EntityID, or looks the farm id up by name.
func (s *Service) resolveEntity(ctx context.Context, src query.Source, q Query, failMsg string) (string, error) {
	if q.EntityID != "" || src != query.SourceSensor {
		return q.EntityID, nil
	}
	if id, ok := s.farmIDs.Get(q.FarmName); ok {
		return id, nil
	}
	id, err := s.store.FarmIDByName(ctx, q.FarmName)
	if errors.Is(err, database.ErrNotFound) {
		return "", &NotFoundError{Message: "Farm not found"}
	}
	if err != nil {
		return "", datastoreError(ctx, "farm_by_name", failMsg, err)
	}
	s.farmIDs.Add(q.FarmName, id)
	return id, nil
}

func readingInput(req ReadingRequest) (models.ReadingInput, error) {
	if verr := validation.ValidateStruct(&req); verr != nil {
		return models.ReadingInput{}, &ValidationError{Message: verr.Error()}
	}
	at, err := validation.ParseTimestamp(req.Timestamp)
	if err != nil {
		return models.ReadingInput{}, invalid("timestamp is invalid")
	}
	return models.ReadingInput{
		SensorID:  req.SensorID,
		FarmID:    req.FarmID,
		Name:      req.Name,
		Value:     *req.Value,
		Timestamp: at,
	}, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("id must be a positive integer")
	}
	return id, nil
}

func datastoreError(ctx context.Context, op, msg string, err error) error {
	logging.Ctx(ctx).Error().Err(err).Str("operation", op).Msg("Datastore call failed")
	return &DatastoreError{Op: op, Message: msg, Err: err}
}
