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

	lifecycleapp "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/application"
	lifecycleports "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

const tracerName = "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/observability/service"

// Service decorates the lifecycle engine with tracing, logging, and metrics.
type Service struct {
	inner   lifecycleports.Service
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

// New wraps the core lifecycle service.
func New(inner lifecycleports.Service, opts ...Option) lifecycleports.Service {
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

func (s *Service) PlaceOrder(ctx context.Context, input lifecycleports.PlaceOrderInput) (*lifecycleports.Checkout, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.PlaceOrder",
		trace.WithAttributes(attribute.Int64("listing.id", input.ListingID), attribute.Int("order.quantity", int(input.Quantity))))
	defer span.End()

	attrs := append(actorAttrs(input.Actor), slog.Int64("listing.id", input.ListingID))
	s.logInfo(ctx, "placing order", attrs...)
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		s.metrics.recordOutcome(ctx, "place_order", err)
		return nil, s.handleError(ctx, span, err, "failed to place order", attrs...)
	}
	span.SetAttributes(attribute.Int64("order.id", result.Order.ID), attribute.Bool("order.existing", result.Existing))
	s.metrics.recordPlaced(ctx, result.Existing)
	s.logInfo(ctx, "order placed",
		slog.Int64("order.id", result.Order.ID),
		slog.String("status", string(result.Order.Status)),
		slog.Bool("existing", result.Existing),
		slog.String("payment.reference", result.Reference))
	return result, nil
}

func (s *Service) CompletePayment(ctx context.Context, callback lifecycleports.PaymentCallback) (*lifecycleports.PaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.CompletePayment",
		trace.WithAttributes(attribute.String("payment.reference", callback.Reference), attribute.String("payment.outcome", string(callback.Outcome))))
	defer span.End()

	attrs := []slog.Attr{slog.String("payment.reference", callback.Reference), slog.String("payment.outcome", string(callback.Outcome))}
	s.logInfo(ctx, "applying payment callback", attrs...)
	result, err := s.inner.CompletePayment(ctx, callback)
	if err != nil {
		s.metrics.recordOutcome(ctx, "complete_payment", err)
		if errors.Is(err, lifecycleapp.ErrPaymentDeclined) {
			s.metrics.recordDeclined(ctx)
			s.logInfo(ctx, "payment declined", attrs...)
			span.SetAttributes(attribute.Bool("payment.declined", true))
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to apply payment callback", attrs...)
	}
	s.metrics.recordCompleted(ctx, result.Duplicate)
	s.logInfo(ctx, "payment applied",
		slog.Int64("order.id", result.Order.ID),
		slog.String("status", string(result.Order.Status)),
		slog.Bool("duplicate", result.Duplicate))
	return result, nil
}

func (s *Service) ApproveInquiry(ctx context.Context, actor identity.Actor, lineID int64) (*orderdomain.Order, error) {
	return s.decide(ctx, "ApproveInquiry", "approve", actor, lineID, s.inner.ApproveInquiry)
}

func (s *Service) RejectInquiry(ctx context.Context, actor identity.Actor, lineID int64) (*orderdomain.Order, error) {
	return s.decide(ctx, "RejectInquiry", "reject", actor, lineID, s.inner.RejectInquiry)
}

func (s *Service) decide(ctx context.Context, op, decision string, actor identity.Actor, lineID int64,
	call func(context.Context, identity.Actor, int64) (*orderdomain.Order, error)) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService."+op, trace.WithAttributes(attribute.Int64("order_line.id", lineID)))
	defer span.End()

	attrs := append(actorAttrs(actor), slog.Int64("order_line.id", lineID), slog.String("decision", decision))
	s.logInfo(ctx, "deciding inquiry", attrs...)
	order, err := call(ctx, actor, lineID)
	if err != nil {
		s.metrics.recordOutcome(ctx, decision+"_inquiry", err)
		return nil, s.handleError(ctx, span, err, "failed to decide inquiry", attrs...)
	}
	s.metrics.recordDecided(ctx, decision)
	s.logInfo(ctx, "inquiry decided", slog.Int64("order.id", order.ID), slog.String("status", string(order.Status)))
	return order, nil
}

func (s *Service) RetryPayment(ctx context.Context, actor identity.Actor, orderID int64) (*lifecycleports.Checkout, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.RetryPayment", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	attrs := append(actorAttrs(actor), slog.Int64("order.id", orderID))
	s.logInfo(ctx, "retrying payment", attrs...)
	result, err := s.inner.RetryPayment(ctx, actor, orderID)
	if err != nil {
		s.metrics.recordOutcome(ctx, "retry_payment", err)
		return nil, s.handleError(ctx, span, err, "failed to retry payment", attrs...)
	}
	s.logInfo(ctx, "payment retry issued",
		slog.Int64("order.id", result.Order.ID),
		slog.Bool("already_paid", result.AlreadyPaid),
		slog.String("payment.reference", result.Reference))
	return result, nil
}

func actorAttrs(actor identity.Actor) []slog.Attr {
	if actor == nil {
		return []slog.Attr{slog.String("actor.role", "anonymous")}
	}
	return []slog.Attr{slog.Int64("actor.id", actor.ActorID()), slog.String("actor.role", string(actor.Role()))}
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	level := slog.LevelError
	if isExpected(err) {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

// isExpected reports taxonomy errors caused by the caller or a lost race.
func isExpected(err error) bool {
	return errors.Is(err, lifecycleapp.ErrNotFound) ||
		errors.Is(err, lifecycleapp.ErrForbidden) ||
		errors.Is(err, lifecycleapp.ErrInvalidState) ||
		errors.Is(err, lifecycleapp.ErrConflict) ||
		errors.Is(err, lifecycleapp.ErrInvalidInput) ||
		errors.Is(err, lifecycleapp.ErrUnauthenticated)
}

type serviceMetrics struct {
	ordersPlaced      metric.Int64Counter
	paymentsCompleted metric.Int64Counter
	paymentsDeclined  metric.Int64Counter
	inquiriesDecided  metric.Int64Counter
	conflicts         metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("lifecycle.orders_placed", metric.WithDescription("Number of checkouts started"))
	paymentsCompleted, _ := m.Int64Counter("lifecycle.payments_completed", metric.WithDescription("Number of successful payment callbacks applied"))
	paymentsDeclined, _ := m.Int64Counter("lifecycle.payments_declined", metric.WithDescription("Number of failed payment callbacks"))
	inquiriesDecided, _ := m.Int64Counter("lifecycle.inquiries_decided", metric.WithDescription("Number of farmer inquiry decisions"))
	conflicts, _ := m.Int64Counter("lifecycle.conflicts", metric.WithDescription("Number of transitions lost to another buyer"))
	return serviceMetrics{
		ordersPlaced:      ordersPlaced,
		paymentsCompleted: paymentsCompleted,
		paymentsDeclined:  paymentsDeclined,
		inquiriesDecided:  inquiriesDecided,
		conflicts:         conflicts,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, existing bool) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.Bool("order.existing", existing)))
	}
}

func (m serviceMetrics) recordCompleted(ctx context.Context, duplicate bool) {
	if m.paymentsCompleted != nil {
		m.paymentsCompleted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("payment.duplicate", duplicate)))
	}
}

func (m serviceMetrics) recordDeclined(ctx context.Context) {
	if m.paymentsDeclined != nil {
		m.paymentsDeclined.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDecided(ctx context.Context, decision string) {
	if m.inquiriesDecided != nil {
		m.inquiriesDecided.Add(ctx, 1, metric.WithAttributes(attribute.String("inquiry.decision", decision)))
	}
}

func (m serviceMetrics) recordOutcome(ctx context.Context, op string, err error) {
	if m.conflicts != nil && errors.Is(err, lifecycleapp.ErrConflict) {
		m.conflicts.Add(ctx, 1, metric.WithAttributes(attribute.String("lifecycle.operation", op)))
	}
}

var _ lifecycleports.Service = (*Service)(nil)
