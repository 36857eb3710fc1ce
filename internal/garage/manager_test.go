package garage

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestManager(capacities Capacities) (*Manager, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewManager(capacities, nil, WithClock(clock.Now)), clock
}

func TestManagerAdmitCar(t *testing.T) {
	m, clock := newTestManager(Capacities{Small: 1, Medium: 1, Large: 1})

	ticket, err := m.AdmitCar(" KA01HH1234 ", Small)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	if ticket.ID == uuid.Nil {
		t.Error("Expected ticket to have an id")
	}
	if ticket.Plate != "KA01HH1234" {
		t.Errorf("Expected trimmed plate, got %q", ticket.Plate)
	}
	if ticket.Size != Small || ticket.Tier != Small {
		t.Errorf("Expected small/small, got %s/%s", ticket.Size, ticket.Tier)
	}
	if !ticket.EntryTime.Equal(clock.now) {
		t.Errorf("Expected entry time %s, got %s", clock.now, ticket.EntryTime)
	}

	found, err := m.FindTicket("KA01HH1234")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if found != ticket {
		t.Error("Expected stored ticket to match the minted one")
	}
}

func TestManagerTicketKeepsRequestedSize(t *testing.T) {
	m, _ := newTestManager(Capacities{Small: 0, Medium: 1, Large: 0})

	ticket, err := m.AdmitCar("S1", Small)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	if ticket.Size != Small || ticket.Tier != Medium {
		t.Errorf("Expected small vehicle parked in medium, got %s in %s", ticket.Size, ticket.Tier)
	}
}

func TestManagerRejectsReadmission(t *testing.T) {
	m, _ := newTestManager(Capacities{Small: 2, Medium: 2, Large: 2})

	first, _ := m.AdmitCar("KA01", Small)

	_, err := m.AdmitCar("KA01", Large)
	if !errors.Is(err, ErrDuplicateAdmission) {
		t.Errorf("Expected ErrDuplicateAdmission, got %v", err)
	}

	ticket, _ := m.FindTicket("KA01")
	if ticket.ID != first.ID {
		t.Error("Expected the original ticket to be kept")
	}

	status := m.Status()
	if status.Occupied != 1 || status.OpenTickets != 1 {
		t.Errorf("Expected one vehicle and one ticket, got %d/%d", status.Occupied, status.OpenTickets)
	}
}

func TestManagerInvalidSizeBeatsDuplicate(t *testing.T) {
	m, _ := newTestManager(Capacities{Small: 1, Medium: 1, Large: 1})

	if _, err := m.AdmitCar("KA01", Small); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	_, err := m.AdmitCar("KA01", Size(9))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if errors.Is(err, ErrDuplicateAdmission) {
		t.Errorf("Expected no duplicate error for an invalid size, got %v", err)
	}
}

func TestManagerAdmitFailuresMintNoTicket(t *testing.T) {
	m, _ := newTestManager(Capacities{Small: 0, Medium: 0, Large: 0})

	if _, err := m.AdmitCar("KA01", Small); !errors.Is(err, ErrNoCapacity) {
		t.Errorf("Expected ErrNoCapacity, got %v", err)
	}

	if _, err := m.AdmitCar("", Small); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	if m.Status().OpenTickets != 0 {
		t.Error("Expected no tickets after failed admissions")
	}
}

func TestManagerExitCar(t *testing.T) {
	m, clock := newTestManager(Capacities{Small: 1, Medium: 1, Large: 1})
	ticket, _ := m.AdmitCar("KA01", Small)

	clock.Advance(66 * time.Minute)

	receipt, err := m.ExitCar("KA01")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	if receipt.Ticket != ticket {
		t.Error("Expected receipt to carry the ticket")
	}
	if receipt.Duration != 66*time.Minute {
		t.Errorf("Expected 66m stay, got %s", receipt.Duration)
	}
	if receipt.Fee != 2.0 {
		t.Errorf("Expected fee 2.00, got %.2f", receipt.Fee)
	}

	if _, err := m.FindTicket("KA01"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ticket to be removed, got %v", err)
	}
	if m.Status().Tier(Small).Free != 1 {
		t.Error("Expected small slot to be freed")
	}
}

func TestManagerExitBillsRequestedSize(t *testing.T) {
	m, clock := newTestManager(Capacities{Small: 0, Medium: 0, Large: 1})
	m.AdmitCar("S1", Small)

	clock.Advance(3 * time.Hour)

	receipt, err := m.ExitCar("S1")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if receipt.Fee != 6.0 {
		t.Errorf("Expected small rate (6.00) for overflowed vehicle, got %.2f", receipt.Fee)
	}
}

func TestManagerExitWithoutTicket(t *testing.T) {
	m, _ := newTestManager(Capacities{Small: 1, Medium: 1, Large: 1})
	before := m.Status()

	_, err := m.ExitCar("GHOST")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if m.Status().Free != before.Free {
		t.Error("Expected capacities unchanged")
	}
}

func TestManagerRoundTripIsFree(t *testing.T) {
	m, _ := newTestManager(Capacities{Small: 3, Medium: 1, Large: 1})
	before := m.Status().Tier(Small).Free

	m.AdmitCar("X", Small)
	receipt, err := m.ExitCar("X")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	if receipt.Fee != 0 {
		t.Errorf("Expected free immediate exit, got %.2f", receipt.Fee)
	}
	if got := m.Status().Tier(Small).Free; got != before {
		t.Errorf("Expected small capacity %d restored, got %d", before, got)
	}
}

func TestManagerClockSkewIsNotCharged(t *testing.T) {
	m, clock := newTestManager(Capacities{Small: 1})
	m.AdmitCar("KA01", Small)

	clock.Advance(-time.Hour)

	receipt, err := m.ExitCar("KA01")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if receipt.Duration != 0 || receipt.Fee != 0 {
		t.Errorf("Expected zero duration and fee, got %s / %.2f", receipt.Duration, receipt.Fee)
	}
}

func TestManagerReadmitAfterExit(t *testing.T) {
	m, _ := newTestManager(Capacities{Small: 1})
	first, _ := m.AdmitCar("KA01", Small)
	m.ExitCar("KA01")

	second, err := m.AdmitCar("KA01", Small)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if second.ID == first.ID {
		t.Error("Expected a fresh ticket for a new session")
	}
}
