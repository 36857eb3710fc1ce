package garage

import (
	"fmt"
	"sync"
)

// Capacities is the number of slots per tier.
type Capacities struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
}

func (c Capacities) Of(size Size) int {
	switch size {
	case Small:
		return c.Small
	case Medium:
		return c.Medium
	case Large:
		return c.Large
	default:
		return 0
	}
}

func (c Capacities) Total() int {
	return c.Small + c.Medium + c.Large
}

func (c Capacities) Validate() error {
	for _, size := range Sizes {
		if c.Of(size) < 0 {
			return fmt.Errorf("%w: %s capacity must not be negative", ErrInvalidInput, size)
		}
	}
	return nil
}

type TierStatus struct {
	Size     Size     `json:"size"`
	Capacity int      `json:"capacity"`
	Occupied int      `json:"occupied"`
	Free     int      `json:"free"`
	Plates   []string `json:"plates"`
}

type Status struct {
	Tiers       []TierStatus `json:"tiers"`
	Capacity    int          `json:"capacity"`
	Occupied    int          `json:"occupied"`
	Free        int          `json:"free"`
	OpenTickets int          `json:"open_tickets"`
}

// Tier returns the status of one tier.
func (s Status) Tier(size Size) TierStatus {
	for _, tier := range s.Tiers {
		if tier.Size == size {
			return tier
		}
	}
	return TierStatus{Size: size}
}

// Garage tracks which vehicles occupy which tier. Admit and Exit each run as
// one critical section so two admissions never pass the same free slot check.
type Garage struct {
	mu    sync.RWMutex
	pools []*Pool
}

func NewGarage(capacities Capacities) *Garage {
	pools := make([]*Pool, len(Sizes))
	for i, size := range Sizes {
		pools[i] = NewPool(size, capacities.Of(size))
	}

	return &Garage{
		pools: pools,
	}
}

// Admit parks the vehicle in its own tier or, when that is full, the next
// larger tier with room. It returns the tier actually used.
func (g *Garage) Admit(plate string, size Size) (Size, error) {
	plate = normalizePlate(plate)
	if err := validateAdmission(plate, size); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if tier, ok := g.locate(plate); ok {
		return 0, fmt.Errorf("%w: %s is in the %s tier", ErrDuplicateAdmission, plate, tier)
	}

	vehicle := NewVehicle(plate, size)
	for _, tier := range size.fallback() {
		if g.pools[tier].Park(vehicle) {
			return tier, nil
		}
	}

	return 0, fmt.Errorf("%w for %s vehicle %s", ErrNoCapacity, size, plate)
}

// Exit removes the vehicle from whichever tier holds it.
func (g *Garage) Exit(plate string) (Size, error) {
	plate = normalizePlate(plate)

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, pool := range g.pools {
		if _, ok := pool.Leave(plate); ok {
			return pool.Size, nil
		}
	}

	return 0, fmt.Errorf("%w: no vehicle with plate %q", ErrNotFound, plate)
}

func (g *Garage) Locate(plate string) (Size, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.locate(normalizePlate(plate))
}

func (g *Garage) locate(plate string) (Size, bool) {
	for _, pool := range g.pools {
		if pool.Has(plate) {
			return pool.Size, true
		}
	}
	return 0, false
}

func (g *Garage) Capacities() Capacities {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return Capacities{
		Small:  g.pools[Small].Capacity,
		Medium: g.pools[Medium].Capacity,
		Large:  g.pools[Large].Capacity,
	}
}

func (g *Garage) Status() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()

	status := Status{Tiers: make([]TierStatus, 0, len(g.pools))}
	for _, pool := range g.pools {
		tier := TierStatus{
			Size:     pool.Size,
			Capacity: pool.Capacity,
			Occupied: pool.Occupied(),
			Free:     pool.Free(),
			Plates:   pool.Plates(),
		}
		status.Tiers = append(status.Tiers, tier)
		status.Capacity += tier.Capacity
		status.Occupied += tier.Occupied
		status.Free += tier.Free
	}

	return status
}

func validateAdmission(plate string, size Size) error {
	if plate == "" {
		return fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}
	if !size.Valid() {
		return fmt.Errorf("%w: unknown size %d", ErrInvalidInput, int(size))
	}
	return nil
}
