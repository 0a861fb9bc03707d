package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	accountapp "github.com/Apurer/livestock-marketplace/internal/domains/accounts/application"
	accountdomain "github.com/Apurer/livestock-marketplace/internal/domains/accounts/domain"
	accountports "github.com/Apurer/livestock-marketplace/internal/domains/accounts/ports"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

const tracerName = "github.com/Apurer/livestock-marketplace/internal/domains/accounts/adapters/observability/service"

// Service decorates the account service with tracing, logging, and metrics.
type Service struct {
	inner   accountports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core account service.
func New(inner accountports.Service, opts ...Option) accountports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
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
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Register(ctx context.Context, input accountports.RegisterInput) (*accountdomain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Register",
		trace.WithAttributes(attribute.String("account.username", input.Username), attribute.String("account.role", string(input.Role))))
	defer span.End()
	account, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register account", slog.String("username", input.Username))
	}
	s.metrics.recordRegistered(ctx, account.Role)
	s.logInfo(ctx, "account registered", slog.Int64("account.id", account.ID), slog.String("account.role", string(account.Role)))
	return account, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*accountdomain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Login", trace.WithAttributes(attribute.String("account.username", username)))
	defer span.End()
	session, err := s.inner.Login(ctx, username, password)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "login failed", slog.String("username", username))
	}
	s.metrics.recordLogin(ctx)
	return session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "AccountService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	return nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (identity.Actor, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Authenticate")
	defer span.End()
	actor, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "authentication failed")
	}
	span.SetAttributes(attribute.Int64("actor.id", actor.ActorID()), attribute.String("actor.role", string(actor.Role())))
	return actor, nil
}

func (s *Service) Profile(ctx context.Context, actor identity.Actor) (*accountdomain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Profile")
	defer span.End()
	return s.inner.Profile(ctx, actor)
}

// handleError logs credential and session failures at Warn; they are routine.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	level := slog.LevelError
	if errors.Is(err, accountapp.ErrAuthentication) ||
		errors.Is(err, accountapp.ErrUnauthenticated) ||
		errors.Is(err, accountapp.ErrInvalidInput) ||
		errors.Is(err, accountapp.ErrConflict) {
		level = slog.LevelWarn
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

type serviceMetrics struct {
	registered metric.Int64Counter
	logins     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("accounts.service.registered", metric.WithDescription("Number of accounts registered"))
	logins, _ := m.Int64Counter("accounts.service.logins", metric.WithDescription("Number of successful logins"))
	return serviceMetrics{registered: registered, logins: logins}
}

func (m serviceMetrics) recordRegistered(ctx context.Context, role identity.Role) {
	if m.registered != nil {
		m.registered.Add(ctx, 1, metric.WithAttributes(attribute.String("account.role", string(role))))
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ accountports.Service = (*Service)(nil)
