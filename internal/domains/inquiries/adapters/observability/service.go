package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	inquiryapp "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/application"
	inquiryports "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/ports"
	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

const tracerName = "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/adapters/observability/service"

// Service decorates the read-side inquiry service with tracing, logging, and metrics.
type Service struct {
	inner   inquiryports.Service
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

// New wraps the core inquiry service.
func New(inner inquiryports.Service, opts ...Option) inquiryports.Service {
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

func (s *Service) BuyerHistory(ctx context.Context, actor identity.Actor) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "InquiryService.BuyerHistory")
	defer span.End()

	result, err := s.inner.BuyerHistory(ctx, actor)
	s.metrics.recordRead(ctx, "buyer_history", err)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load buyer history")
	}
	span.SetAttributes(attribute.Int("order.count", len(result)))
	return result, nil
}

func (s *Service) SalesQueue(ctx context.Context, actor identity.Actor) ([]inquiryports.SalesLine, error) {
	ctx, span := s.tracer.Start(ctx, "InquiryService.SalesQueue")
	defer span.End()

	result, err := s.inner.SalesQueue(ctx, actor)
	s.metrics.recordRead(ctx, "sales_queue", err)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load sales queue")
	}
	span.SetAttributes(attribute.Int("line.count", len(result)))
	return result, nil
}

func (s *Service) OrderDetail(ctx context.Context, actor identity.Actor, orderID int64) (*inquiryports.OrderDetail, error) {
	ctx, span := s.tracer.Start(ctx, "InquiryService.OrderDetail", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	result, err := s.inner.OrderDetail(ctx, actor, orderID)
	s.metrics.recordRead(ctx, "order_detail", err)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order detail", slog.Int64("order.id", orderID))
	}
	span.SetAttributes(attribute.String("order.status", string(result.Order.Status)))
	return result, nil
}

func (s *Service) Dashboard(ctx context.Context, actor identity.Actor) (*inquiryports.Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "InquiryService.Dashboard")
	defer span.End()

	result, err := s.inner.Dashboard(ctx, actor)
	s.metrics.recordRead(ctx, "dashboard", err)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load farmer dashboard")
	}
	span.SetAttributes(
		attribute.Int("listing.total", result.TotalListings),
		attribute.Int("inquiry.pending", result.PendingInquiries))
	return result, nil
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
	if errors.Is(err, inquiryapp.ErrNotFound) || errors.Is(err, inquiryapp.ErrForbidden) ||
		errors.Is(err, inquiryapp.ErrUnauthenticated) {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

type serviceMetrics struct {
	reads metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	reads, _ := m.Int64Counter("inquiries.service.reads", metric.WithDescription("Number of buyer and farmer queries served"))
	return serviceMetrics{reads: reads}
}

func (m serviceMetrics) recordRead(ctx context.Context, query string, err error) {
	if m.reads != nil {
		m.reads.Add(ctx, 1, metric.WithAttributes(attribute.String("query", query), attribute.Bool("error", err != nil)))
	}
}

var _ inquiryports.Service = (*Service)(nil)
