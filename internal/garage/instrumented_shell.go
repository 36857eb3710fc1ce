package garage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const shellUsage = `Commands:
  create_garage <small> <medium> <large>
  admit <plate> <size>
  exit <plate>
  status
  find <plate>
  help`

type InstrumentedShell struct {
	holder    *Holder
	scanner   *bufio.Scanner
	out       io.Writer
	telemetry *TelemetryProvider
}

// NewInstrumentedShell reads commands from in and writes replies to out.
func NewInstrumentedShell(holder *Holder, telemetry *TelemetryProvider, in io.Reader, out io.Writer) *InstrumentedShell {
	return &InstrumentedShell{
		holder:    holder,
		scanner:   bufio.NewScanner(in),
		out:       out,
		telemetry: telemetry,
	}
}

func (s *InstrumentedShell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil {
		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *InstrumentedShell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *InstrumentedShell) notCreated(span trace.Span) {
	span.AddEvent("garage_not_created")
	s.printf("Garage not created\n")
}

func (s *InstrumentedShell) processCommand(ctx context.Context, input string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.parse_command")
	defer span.End()

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "create_garage":
		s.handleCreateGarage(ctx, parts)
	case "admit":
		s.handleAdmit(ctx, parts)
	case "exit":
		s.handleExit(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "find":
		s.handleFind(ctx, parts)
	case "help":
		s.printf("%s\n", shellUsage)
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *InstrumentedShell) handleCreateGarage(ctx context.Context, parts []string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.create_garage")
	defer span.End()

	if len(parts) != 4 {
		span.AddEvent("invalid_arguments")
		s.printf("Usage: create_garage <small> <medium> <large>\n")
		return
	}

	var counts [3]int
	for i, arg := range parts[1:] {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			span.RecordError(fmt.Errorf("invalid capacity: %s", arg))
			span.AddEvent("invalid_capacity")
			s.printf("Invalid capacity: %s\n", arg)
			return
		}
		counts[i] = n
	}

	capacities := Capacities{Small: counts[0], Medium: counts[1], Large: counts[2]}
	span.SetAttributes(
		attribute.Int("garage.small", capacities.Small),
		attribute.Int("garage.medium", capacities.Medium),
		attribute.Int("garage.large", capacities.Large),
	)

	if _, err := s.holder.Replace(ctx, capacities); err != nil {
		span.RecordError(err)
		s.printf("Error creating garage: %s\n", err.Error())
		return
	}

	span.AddEvent("garage_created")
	s.printf("Created a garage with %d small, %d medium and %d large slots\n",
		capacities.Small, capacities.Medium, capacities.Large)
}

func (s *InstrumentedShell) handleAdmit(ctx context.Context, parts []string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.admit_command")
	defer span.End()

	if len(parts) != 3 {
		span.AddEvent("invalid_arguments")
		s.printf("Usage: admit <plate> <size>\n")
		return
	}

	size, err := ParseSize(parts[2])
	if err != nil {
		span.AddEvent("invalid_size")
		s.printf("Invalid size: %s (use small, medium or large)\n", parts[2])
		return
	}

	var ticket Ticket
	if !s.holder.With(func(m *InstrumentedManager) {
		ticket, err = m.AdmitCar(ctx, parts[1], size)
	}) {
		s.notCreated(span)
		return
	}

	switch {
	case errors.Is(err, ErrNoCapacity):
		span.AddEvent("garage_full")
		s.printf("Sorry, no space for a %s vehicle\n", size)
		return
	case errors.Is(err, ErrDuplicateAdmission):
		span.AddEvent("duplicate_admission")
		s.printf("Vehicle %s is already parked\n", parts[1])
		return
	case err != nil:
		span.AddEvent("admission_failed")
		s.printf("Error: %s\n", err.Error())
		return
	}

	span.AddEvent("admission_successful", trace.WithAttributes(
		attribute.String("parked.tier", ticket.Tier.String()),
	))
	s.printf("Admitted %s (%s) to the %s tier, ticket %s\n", ticket.Plate, ticket.Size, ticket.Tier, ticket.ID)
}

func (s *InstrumentedShell) handleExit(ctx context.Context, parts []string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.exit_command")
	defer span.End()

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.printf("Usage: exit <plate>\n")
		return
	}

	var receipt Receipt
	var err error
	if !s.holder.With(func(m *InstrumentedManager) {
		receipt, err = m.ExitCar(ctx, parts[1])
	}) {
		s.notCreated(span)
		return
	}

	if errors.Is(err, ErrNotFound) {
		span.AddEvent("ticket_not_found")
		s.printf("No ticket for %s\n", parts[1])
		return
	}
	if err != nil {
		span.AddEvent("exit_failed")
		s.printf("Error: %s\n", err.Error())
		return
	}

	span.AddEvent("exit_successful")
	s.printf("%s left after %.2f hours, fee %.2f\n", receipt.Ticket.Plate, receipt.DurationHours(), receipt.Fee)
}

func (s *InstrumentedShell) handleStatus(ctx context.Context) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.status_command")
	defer span.End()

	var status Status
	if !s.holder.With(func(m *InstrumentedManager) {
		status = m.Status(ctx)
	}) {
		s.notCreated(span)
		return
	}
	span.AddEvent("status_retrieved")

	s.printf("Tier\tCapacity\tOccupied\tFree\n")
	for _, tier := range status.Tiers {
		s.printf("%s\t%d\t\t%d\t\t%d\n", tier.Size, tier.Capacity, tier.Occupied, tier.Free)
	}
	s.printf("Occupied: %d, free: %d, open tickets: %d\n", status.Occupied, status.Free, status.OpenTickets)
}

func (s *InstrumentedShell) handleFind(ctx context.Context, parts []string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.find_command")
	defer span.End()

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.printf("Usage: find <plate>\n")
		return
	}

	var ticket Ticket
	var err error
	if !s.holder.With(func(m *InstrumentedManager) {
		ticket, err = m.FindTicket(ctx, parts[1])
	}) {
		s.notCreated(span)
		return
	}
	if err != nil {
		span.AddEvent("ticket_not_found")
		s.printf("Not found\n")
		return
	}

	span.AddEvent("ticket_found")
	s.printf("%s\t%s\t%s\t%s\t%s\n", ticket.ID, ticket.Plate, ticket.Size, ticket.Tier, ticket.EntryTime.Format(time.RFC3339))
}
