package garage

import (
	"time"

	"github.com/google/uuid"
)

// Ticket records one admission. Size is what the driver asked for, Tier is
// where the vehicle was actually parked.
type Ticket struct {
	ID        uuid.UUID `json:"id"`
	Plate     string    `json:"plate"`
	Size      Size      `json:"size"`
	Tier      Size      `json:"tier"`
	EntryTime time.Time `json:"entry_time"`
}

func newTicket(plate string, size, tier Size, entry time.Time) Ticket {
	return Ticket{
		ID:        uuid.New(),
		Plate:     plate,
		Size:      size,
		Tier:      tier,
		EntryTime: entry,
	}
}

type Receipt struct {
	Ticket   Ticket        `json:"ticket"`
	ExitTime time.Time     `json:"exit_time"`
	Duration time.Duration `json:"duration"`
	Fee      float64       `json:"fee"`
}

func (r Receipt) DurationHours() float64 {
	return r.Duration.Hours()
}
