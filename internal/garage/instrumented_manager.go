package garage

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-garage/internal/logging"
)

type InstrumentedManager struct {
	*Manager
	telemetry *TelemetryProvider

	// Metrics
	admissions        metric.Int64Counter
	exits             metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	totalSlotsGauge   metric.Int64UpDownCounter
	feesCollected     metric.Float64Counter
	stayDuration      metric.Float64Histogram
	operationDuration metric.Float64Histogram
}

func NewInstrumentedManager(capacities Capacities, fees *FeeCalculator, telemetry *TelemetryProvider, opts ...Option) (*InstrumentedManager, error) {
	if err := capacities.Validate(); err != nil {
		return nil, err
	}

	meter := telemetry.Meter()

	admissions, err := meter.Int64Counter("garage_admissions_total",
		metric.WithDescription("Total number of admission attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	exits, err := meter.Int64Counter("garage_exits_total",
		metric.WithDescription("Total number of exit attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("garage_occupancy",
		metric.WithDescription("Current number of occupied slots per tier"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64UpDownCounter("garage_total_slots",
		metric.WithDescription("Total number of slots per tier"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	feesCollected, err := meter.Float64Counter("garage_fees_collected",
		metric.WithDescription("Sum of fees charged at exit"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	stayDuration, err := meter.Float64Histogram("garage_stay_duration_hours",
		metric.WithDescription("Length of completed stays"),
		metric.WithUnit("h"),
		metric.WithExplicitBucketBoundaries(0.25, 0.5, 1, 2, 4, 8, 12, 24, 48))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of garage operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	im := &InstrumentedManager{
		Manager:           NewManager(capacities, fees, opts...),
		telemetry:         telemetry,
		admissions:        admissions,
		exits:             exits,
		occupancyGauge:    occupancyGauge,
		totalSlotsGauge:   totalSlotsGauge,
		feesCollected:     feesCollected,
		stayDuration:      stayDuration,
		operationDuration: operationDuration,
	}

	for _, size := range Sizes {
		totalSlotsGauge.Add(context.Background(), int64(capacities.Of(size)),
			metric.WithAttributes(attribute.String("tier", size.String())))
	}

	return im, nil
}

func (im *InstrumentedManager) AdmitCar(ctx context.Context, plate string, size Size) (Ticket, error) {
	ctx, span := im.telemetry.Tracer().Start(ctx, "garage.admit",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
			attribute.String("vehicle.size", size.String()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_free_tier")

	ticket, err := im.Manager.AdmitCar(plate, size)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "admit"),
		attribute.String("size", size.String()),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", errorStatus(err)))
		logging.Warn(ctx, "admission rejected", "plate", plate, "size", size.String(), "error", err)
	} else {
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("tier", ticket.Tier.String()),
		)
		span.SetAttributes(
			attribute.String("ticket.id", ticket.ID.String()),
			attribute.String("parked.tier", ticket.Tier.String()),
		)
		span.AddEvent("vehicle_parked", trace.WithAttributes(
			attribute.Bool("overflow", ticket.Tier != ticket.Size),
		))
		im.occupancyGauge.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", ticket.Tier.String())))
		logging.Info(ctx, "vehicle admitted",
			"plate", ticket.Plate,
			"size", ticket.Size.String(),
			"tier", ticket.Tier.String(),
			"ticket_id", ticket.ID.String(),
		)
	}

	im.admissions.Add(ctx, 1, metric.WithAttributes(labels...))
	im.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (im *InstrumentedManager) ExitCar(ctx context.Context, plate string) (Receipt, error) {
	ctx, span := im.telemetry.Tracer().Start(ctx, "garage.exit",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("releasing_slot")

	receipt, err := im.Manager.ExitCar(plate)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "exit"),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", errorStatus(err)))
		logging.Warn(ctx, "exit rejected", "plate", plate, "error", err)
	} else {
		tier := attribute.String("tier", receipt.Ticket.Tier.String())
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("size", receipt.Ticket.Size.String()),
			tier,
		)
		span.SetAttributes(
			attribute.String("ticket.id", receipt.Ticket.ID.String()),
			attribute.Float64("stay.hours", receipt.DurationHours()),
			attribute.Float64("fee", receipt.Fee),
		)
		span.AddEvent("slot_released")
		im.occupancyGauge.Add(ctx, -1, metric.WithAttributes(tier))
		im.feesCollected.Add(ctx, receipt.Fee, metric.WithAttributes(tier))
		im.stayDuration.Record(ctx, receipt.DurationHours(), metric.WithAttributes(tier))
		logging.Info(ctx, "vehicle exited",
			"plate", receipt.Ticket.Plate,
			"tier", receipt.Ticket.Tier.String(),
			"hours", receipt.DurationHours(),
			"fee", receipt.Fee,
		)
	}

	im.exits.Add(ctx, 1, metric.WithAttributes(labels...))
	im.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return receipt, err
}

func (im *InstrumentedManager) FindTicket(ctx context.Context, plate string) (Ticket, error) {
	ctx, span := im.telemetry.Tracer().Start(ctx, "garage.find_ticket",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
		))
	defer span.End()

	start := time.Now()

	ticket, err := im.Manager.FindTicket(plate)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "find_ticket"),
	}

	if err != nil {
		span.AddEvent("ticket_not_found")
		labels = append(labels, attribute.String("status", errorStatus(err)))
	} else {
		span.AddEvent("ticket_found", trace.WithAttributes(
			attribute.String("ticket.id", ticket.ID.String()),
		))
		labels = append(labels, attribute.String("status", "found"))
	}

	im.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (im *InstrumentedManager) Status(ctx context.Context) Status {
	ctx, span := im.telemetry.Tracer().Start(ctx, "garage.status")
	defer span.End()

	start := time.Now()

	status := im.Manager.Status()

	duration := time.Since(start).Seconds()

	span.SetAttributes(
		attribute.Int("occupied", status.Occupied),
		attribute.Int("free", status.Free),
		attribute.Int("open_tickets", status.OpenTickets),
	)

	im.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "status"),
		attribute.String("status", "success"),
	))

	return status
}

// Retire withdraws this garage's slots and occupancy from the gauges. Call it
// when the manager is replaced by a new one.
func (im *InstrumentedManager) Retire(ctx context.Context) {
	status := im.Manager.Status()
	for _, tier := range status.Tiers {
		attrs := metric.WithAttributes(attribute.String("tier", tier.Size.String()))
		im.totalSlotsGauge.Add(ctx, -int64(tier.Capacity), attrs)
		im.occupancyGauge.Add(ctx, -int64(tier.Occupied), attrs)
	}
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNoCapacity):
		return "no_capacity"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateAdmission):
		return "duplicate"
	default:
		return "failed"
	}
}
