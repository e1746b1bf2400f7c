package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Loader,AuditPublisher

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"registrar/internal/platform/metrics"
	"registrar/internal/record/models"
	dErrors "registrar/pkg/domain-errors"
	audit "registrar/pkg/platform/audit"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

const tracerName = "registrar/record"

// Store holds records keyed by identifier. Put inserts or replaces.
type Store interface {
	Put(ctx context.Context, rec *models.Record) error
	FindByID(ctx context.Context, id string) (*models.Record, error)
	List(ctx context.Context) ([]*models.Record, error)
}

// Loader is implemented by stores that can re-read their backing file.
type Loader interface {
	Load(ctx context.Context) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements the save and find actions of the record form.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// New constructs a Service. The store is required.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	s := &Service{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save validates the submission and inserts or replaces the record with its
// identifier. Nothing is stored when validation or persistence fails.
func (s *Service) Save(ctx context.Context, req *models.SaveRecordRequest) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "record.Save")
	defer span.End()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		s.logger.WarnContext(ctx, "record save rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return nil, err
	}

	rec := req.ToRecord()
	if err := s.store.Put(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrMalformed) {
			span.SetStatus(codes.Error, "record not storable")
			s.logger.WarnContext(ctx, "record save rejected",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, "fields must not contain line breaks")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.logger.ErrorContext(ctx, "failed to save record",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save record")
	}

	s.logAudit(ctx, audit.EventRecordSaved, rec.ID)
	if s.metrics != nil {
		s.metrics.IncrementRecordsSaved()
	}
	return rec, nil
}

// Find returns the record saved under id.
func (s *Service) Find(ctx context.Context, id string) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "record.Find")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "id is required")
	}

	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			span.SetAttributes(attribute.Bool("record.found", false))
			s.logAudit(ctx, audit.EventRecordLookupMissed, id)
			s.incrementLookup(false)
			return nil, dErrors.New(dErrors.CodeNotFound, "no record found for the given id")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load record")
	}

	span.SetAttributes(attribute.Bool("record.found", true))
	s.logAudit(ctx, audit.EventRecordLookedUp, id)
	s.incrementLookup(true)
	return rec, nil
}

// List returns every record ordered by identifier.
func (s *Service) List(ctx context.Context) ([]*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "record.List")
	defer span.End()

	records, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list records")
	}
	span.SetAttributes(attribute.Int("records.count", len(records)))
	s.logAudit(ctx, audit.EventRecordsListed, "")
	return records, nil
}

// Reload replaces the in-memory records with the backing file's contents.
func (s *Service) Reload(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "record.Reload")
	defer span.End()

	loader, ok := s.store.(Loader)
	if !ok {
		return 0, dErrors.New(dErrors.CodeBadRequest, "record store does not support reload")
	}
	n, err := loader.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload failed")
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load records")
	}
	span.SetAttributes(attribute.Int("records.count", n))
	s.logger.InfoContext(ctx, "records reloaded",
		"request_id", requestcontext.RequestID(ctx),
		"count", n,
	)
	s.logAudit(ctx, audit.EventRecordsReloaded, "")
	return n, nil
}

// Options returns the fixed choices for gender and province.
func (s *Service) Options() models.FormOptions {
	return models.FormOptions{
		Genders:   models.Genders(),
		Provinces: models.Provinces(),
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, subjectID string) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp:     requestcontext.Now(ctx),
		Action:        string(event),
		SubjectIDHash: audit.HashSubject(subjectID),
		RequestID:     requestcontext.RequestID(ctx),
		ClientIP:      requestcontext.ClientIP(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func (s *Service) incrementLookup(found bool) {
	if s.metrics != nil {
		s.metrics.IncrementLookup(found)
	}
}
