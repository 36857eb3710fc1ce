package garage

import (
	"fmt"
	"sync"
	"time"
)

type Option func(*Manager)

// WithClock replaces time.Now as the source of entry and exit times.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager ties a Garage to the open ticket registry and the fee table.
// A plate holds at most one open ticket; admitting it again before it exits
// is rejected with ErrDuplicateAdmission.
type Manager struct {
	mu      sync.RWMutex
	garage  *Garage
	fees    *FeeCalculator
	tickets map[string]Ticket
	now     func() time.Time
}

func NewManager(capacities Capacities, fees *FeeCalculator, opts ...Option) *Manager {
	if fees == nil {
		fees = NewDefaultFeeCalculator()
	}

	m := &Manager{
		garage:  NewGarage(capacities),
		fees:    fees,
		tickets: make(map[string]Ticket),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Manager) AdmitCar(plate string, size Size) (Ticket, error) {
	plate = normalizePlate(plate)
	if err := validateAdmission(plate, size); err != nil {
		return Ticket{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tickets[plate]; ok {
		return Ticket{}, fmt.Errorf("%w: %s already holds an open ticket", ErrDuplicateAdmission, plate)
	}

	tier, err := m.garage.Admit(plate, size)
	if err != nil {
		return Ticket{}, err
	}

	ticket := newTicket(plate, size, tier, m.now())
	m.tickets[plate] = ticket

	return ticket, nil
}

// ExitCar closes the plate's ticket, bills the stay at the requested size's
// rate and frees the slot.
func (m *Manager) ExitCar(plate string) (Receipt, error) {
	plate = normalizePlate(plate)

	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.tickets[plate]
	if !ok {
		return Receipt{}, fmt.Errorf("%w: no ticket for plate %q", ErrNotFound, plate)
	}

	exitTime := m.now()
	duration := exitTime.Sub(ticket.EntryTime)
	if duration < 0 {
		duration = 0
	}
	fee := m.fees.ComputeDuration(ticket.Size, duration)

	if _, err := m.garage.Exit(plate); err != nil {
		return Receipt{}, fmt.Errorf("ticket %s has no parked vehicle: %w", ticket.ID, err)
	}
	delete(m.tickets, plate)

	return Receipt{
		Ticket:   ticket,
		ExitTime: exitTime,
		Duration: duration,
		Fee:      fee,
	}, nil
}

func (m *Manager) FindTicket(plate string) (Ticket, error) {
	plate = normalizePlate(plate)

	m.mu.RLock()
	defer m.mu.RUnlock()

	ticket, ok := m.tickets[plate]
	if !ok {
		return Ticket{}, fmt.Errorf("%w: no ticket for plate %q", ErrNotFound, plate)
	}
	return ticket, nil
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := m.garage.Status()
	status.OpenTickets = len(m.tickets)
	return status
}

func (m *Manager) Capacities() Capacities {
	return m.garage.Capacities()
}

func (m *Manager) Fees() *FeeCalculator {
	return m.fees
}
