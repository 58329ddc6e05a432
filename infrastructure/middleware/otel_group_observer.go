package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-rolecall/internal/ports"
)

var _ GroupObserver = (*OTelGroupObserver)(nil)

// groupWarningRatio is the share of the limit at which a span event warns
// that the group is close to being rejected.
const groupWarningRatio = 0.8

// OTelGroupObserver traces guarded executions and forwards their outcome
// to a metrics collector. The span travels in the context, so one observer
// may serve concurrent executions.
type OTelGroupObserver struct {
	metrics  ports.MetricsCollector
	unitName string
	tracer   trace.Tracer
}

// NewOTelGroupObserver creates an observer for the named unit. metrics may
// be nil.
func NewOTelGroupObserver(metrics ports.MetricsCollector, unitName string) *OTelGroupObserver {
	return &OTelGroupObserver{
		metrics:  metrics,
		unitName: unitName,
		tracer:   otel.Tracer("group-guard"),
	}
}

// PreCheck starts the guard span.
func (o *OTelGroupObserver) PreCheck(ctx context.Context, members int, limit GroupLimit) context.Context {
	ctx, span := o.tracer.Start(ctx, "GroupGuard.Execute",
		trace.WithAttributes(
			attribute.String("group.unit", o.unitName),
			attribute.Int("group.members", members),
			attribute.Int("group.max_members", limit.MaxMembers),
		),
	)

	if !limit.Unlimited() {
		ratio := float64(members) / float64(limit.MaxMembers)
		if ratio >= groupWarningRatio && ratio <= 1 {
			span.AddEvent("group.limit.warning", trace.WithAttributes(
				attribute.Float64("usage_percentage", ratio*100),
			))
		}
	}
	return ctx
}

// PostCheck ends the span started by PreCheck and records metrics.
func (o *OTelGroupObserver) PostCheck(
	ctx context.Context,
	members int,
	limit GroupLimit,
	elapsed time.Duration,
	err error,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	labels := o.labels(limit)
	if o.metrics != nil {
		o.metrics.RecordLatency("unit_execution", elapsed, labels)
	}

	if err != nil {
		var limitErr *ports.GroupLimitError
		if errors.As(err, &limitErr) {
			span.AddEvent("group.limit_exceeded", trace.WithAttributes(
				attribute.Int("members", limitErr.Members),
				attribute.Int("limit", limitErr.Limit),
			))
			span.SetStatus(codes.Error, "group limit exceeded")
			if o.metrics != nil {
				o.metrics.RecordCounter("group_limit_exceeded_total", 1, labels)
			}
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if o.metrics != nil {
			o.metrics.RecordCounter("unit_failures_total", 1, labels)
		}
		return
	}

	span.SetAttributes(attribute.Int("group.members_after", members))
	if o.metrics != nil {
		o.metrics.RecordCounter("unit_executions_total", 1, labels)
		o.metrics.RecordHistogram("group_members", float64(members), labels)
	}
	span.SetStatus(codes.Ok, "")
}

func (o *OTelGroupObserver) labels(limit GroupLimit) map[string]string {
	l := map[string]string{"unit": o.unitName, "limit": "unlimited"}
	if !limit.Unlimited() {
		l["limit"] = "bounded"
	}
	return l
}
