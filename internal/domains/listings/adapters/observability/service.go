package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	listingapp "github.com/Apurer/livestock-marketplace/internal/domains/listings/application"
	listingdomain "github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
	listingports "github.com/Apurer/livestock-marketplace/internal/domains/listings/ports"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

const tracerName = "github.com/Apurer/livestock-marketplace/internal/domains/listings/adapters/observability/service"

// Service decorates the listing service with tracing, logging, and metrics.
type Service struct {
	inner   listingports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core listing service.
func New(inner listingports.Service, opts ...Option) listingports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateListing(ctx context.Context, actor identity.Actor, attrs listingdomain.Attributes) (*listingdomain.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "ListingService.CreateListing",
		trace.WithAttributes(attribute.String("listing.species", attrs.Species), attribute.String("listing.price", attrs.Price.String())))
	defer span.End()

	result, err := s.inner.CreateListing(ctx, actor, attrs)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create listing", slog.String("listing.species", attrs.Species))
	}
	s.metrics.recordCreated(ctx, result.Species)
	s.logInfo(ctx, "listing created",
		slog.Int64("listing.id", result.ID),
		slog.Int64("farmer.id", result.FarmerID),
		slog.String("listing.species", result.Species))
	return result, nil
}

func (s *Service) GetListing(ctx context.Context, id int64) (*listingdomain.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "ListingService.GetListing", trace.WithAttributes(attribute.Int64("listing.id", id)))
	defer span.End()

	result, err := s.inner.GetListing(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load listing", slog.Int64("listing.id", id))
	}
	span.SetAttributes(attribute.String("listing.status", string(result.Status)))
	return result, nil
}

func (s *Service) ListAvailable(ctx context.Context, filter listingdomain.Filter) ([]*listingdomain.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "ListingService.ListAvailable",
		trace.WithAttributes(
			attribute.String("filter.species", filter.Species),
			attribute.Bool("filter.include_unavailable", filter.IncludeUnavailable)))
	defer span.End()

	result, err := s.inner.ListAvailable(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search listings")
	}
	span.SetAttributes(attribute.Int("listing.count", len(result)))
	return result, nil
}

func (s *Service) ListByFarmer(ctx context.Context, actor identity.Actor) ([]*listingdomain.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "ListingService.ListByFarmer")
	defer span.End()

	result, err := s.inner.ListByFarmer(ctx, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list farmer listings")
	}
	span.SetAttributes(attribute.Int("listing.count", len(result)))
	return result, nil
}

func (s *Service) ChangePrice(ctx context.Context, actor identity.Actor, id int64, price decimal.Decimal) (*listingdomain.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "ListingService.ChangePrice",
		trace.WithAttributes(attribute.Int64("listing.id", id), attribute.String("listing.price", price.String())))
	defer span.End()

	result, err := s.inner.ChangePrice(ctx, actor, id, price)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to change listing price", slog.Int64("listing.id", id))
	}
	s.logInfo(ctx, "listing repriced", slog.Int64("listing.id", id), slog.String("listing.price", result.Price.String()))
	return result, nil
}

func (s *Service) AddPhoto(ctx context.Context, actor identity.Actor, id int64, url string) (*listingdomain.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "ListingService.AddPhoto", trace.WithAttributes(attribute.Int64("listing.id", id)))
	defer span.End()

	result, err := s.inner.AddPhoto(ctx, actor, id, url)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add listing photo", slog.Int64("listing.id", id))
	}
	span.SetAttributes(attribute.Int("listing.photo_count", len(result.PhotoURLs)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger == nil {
		return err
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	level := slog.LevelError
	if errors.Is(err, listingapp.ErrNotFound) || errors.Is(err, listingapp.ErrForbidden) ||
		errors.Is(err, listingapp.ErrInvalidInput) || errors.Is(err, identity.ErrUnauthenticated) {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

type serviceMetrics struct {
	listingsCreated metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("listings.service.created", metric.WithDescription("Number of animals listed"))
	return serviceMetrics{listingsCreated: created}
}

func (m serviceMetrics) recordCreated(ctx context.Context, species string) {
	if m.listingsCreated != nil {
		m.listingsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("listing.species", species)))
	}
}

var _ listingports.Service = (*Service)(nil)
