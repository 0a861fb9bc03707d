package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	inquiryapp "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/application"
	inquiryports "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/ports"
	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

type stubInquiries struct {
	inquiryports.Service
	history []*orderdomain.Order
	err     error
}

func (s stubInquiries) BuyerHistory(context.Context, identity.Actor) ([]*orderdomain.Order, error) {
	return s.history, s.err
}

type instrumented struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *bytes.Buffer
}

func wrap(t *testing.T, inner inquiryports.Service) (inquiryports.Service, instrumented) {
	t.Helper()
	in := instrumented{spans: tracetest.NewSpanRecorder(), reader: sdkmetric.NewManualReader(), logs: &bytes.Buffer{}}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(in.spans))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(in.reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})
	svc := New(inner,
		WithLogger(slog.New(slog.NewTextHandler(in.logs, nil))),
		WithTracer(tp.Tracer(tracerName)),
		WithMeter(mp.Meter(tracerName)))
	return svc, in
}

func (in instrumented) reads(t *testing.T) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, in.reader.Collect(context.Background(), &rm))
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "inquiries.service.reads" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestBuyerHistory_RecordsSpanAndRead(t *testing.T) {
	svc, in := wrap(t, stubInquiries{history: []*orderdomain.Order{{ID: 1}, {ID: 2}}})

	history, err := svc.BuyerHistory(context.Background(), identity.Buyer{AccountID: 10})
	require.NoError(t, err)
	assert.Len(t, history, 2)

	ended := in.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "InquiryService.BuyerHistory", ended[0].Name())
	assert.Equal(t, int64(1), in.reads(t))
	assert.Empty(t, in.logs.String())
}

func TestBuyerHistory_ForbiddenLogsWarning(t *testing.T) {
	svc, in := wrap(t, stubInquiries{err: inquiryapp.ErrForbidden})

	_, err := svc.BuyerHistory(context.Background(), identity.Farmer{AccountID: 1})
	require.ErrorIs(t, err, inquiryapp.ErrForbidden)

	assert.Contains(t, in.logs.String(), "level=WARN")
	assert.Contains(t, in.logs.String(), "failed to load buyer history")
	ended := in.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, int64(1), in.reads(t))
}
