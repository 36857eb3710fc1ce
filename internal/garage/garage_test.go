package garage

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func checkInvariant(t *testing.T, g *Garage, initial Capacities) {
	t.Helper()
	seen := make(map[string]Size)
	for _, tier := range g.Status().Tiers {
		if tier.Free+tier.Occupied != initial.Of(tier.Size) {
			t.Errorf("Tier %s: free %d + occupied %d != capacity %d",
				tier.Size, tier.Free, tier.Occupied, initial.Of(tier.Size))
		}
		for _, plate := range tier.Plates {
			if other, ok := seen[plate]; ok {
				t.Errorf("Plate %s appears in both %s and %s", plate, other, tier.Size)
			}
			seen[plate] = tier.Size
		}
	}
}

func TestNewGarage(t *testing.T) {
	capacities := Capacities{Small: 3, Medium: 2, Large: 1}
	g := NewGarage(capacities)

	status := g.Status()
	if status.Capacity != 6 || status.Free != 6 || status.Occupied != 0 {
		t.Errorf("Unexpected totals: %+v", status)
	}

	if len(status.Tiers) != 3 {
		t.Fatalf("Expected 3 tiers, got %d", len(status.Tiers))
	}

	if g.Capacities() != capacities {
		t.Errorf("Expected capacities %+v, got %+v", capacities, g.Capacities())
	}
}

func TestGarageAdmitOwnTier(t *testing.T) {
	g := NewGarage(Capacities{Small: 1, Medium: 1, Large: 1})

	for _, size := range Sizes {
		tier, err := g.Admit(fmt.Sprintf("PLATE-%s", size), size)
		if err != nil {
			t.Errorf("Unexpected error: %s", err.Error())
		}
		if tier != size {
			t.Errorf("Expected %s vehicle in %s tier, got %s", size, size, tier)
		}
	}
}

func TestGarageSmallOverflowsToMedium(t *testing.T) {
	initial := Capacities{Small: 1, Medium: 2, Large: 1}
	g := NewGarage(initial)

	g.Admit("S1", Small)

	tier, err := g.Admit("S2", Small)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if tier != Medium {
		t.Errorf("Expected overflow into medium, got %s", tier)
	}

	status := g.Status()
	if status.Tier(Medium).Free != 1 {
		t.Errorf("Expected medium free 1, got %d", status.Tier(Medium).Free)
	}
	if status.Tier(Large).Free != 1 {
		t.Errorf("Expected large untouched, got free %d", status.Tier(Large).Free)
	}
	checkInvariant(t, g, initial)
}

func TestGarageSmallOverflowsToLarge(t *testing.T) {
	g := NewGarage(Capacities{Small: 0, Medium: 0, Large: 1})

	tier, err := g.Admit("S1", Small)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if tier != Large {
		t.Errorf("Expected overflow into large, got %s", tier)
	}
}

func TestGarageLargeNeverDowngrades(t *testing.T) {
	initial := Capacities{Small: 5, Medium: 5, Large: 1}
	g := NewGarage(initial)

	if _, err := g.Admit("L1", Large); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	_, err := g.Admit("L2", Large)
	if !errors.Is(err, ErrNoCapacity) {
		t.Errorf("Expected ErrNoCapacity, got %v", err)
	}

	status := g.Status()
	if status.Tier(Small).Occupied != 0 || status.Tier(Medium).Occupied != 0 {
		t.Error("Expected large vehicle never to use small or medium slots")
	}
	checkInvariant(t, g, initial)
}

func TestGarageMediumNeverUsesSmall(t *testing.T) {
	g := NewGarage(Capacities{Small: 3, Medium: 0, Large: 0})

	_, err := g.Admit("M1", Medium)
	if !errors.Is(err, ErrNoCapacity) {
		t.Errorf("Expected ErrNoCapacity, got %v", err)
	}
}

func TestGarageAdmitInvalidInput(t *testing.T) {
	g := NewGarage(Capacities{Small: 1, Medium: 1, Large: 1})

	if _, err := g.Admit("   ", Small); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for blank plate, got %v", err)
	}

	if _, err := g.Admit("KA01", Size(9)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown size, got %v", err)
	}

	if g.Status().Occupied != 0 {
		t.Error("Expected rejected admissions to leave the garage empty")
	}
}

func TestGarageRejectsDuplicatePlate(t *testing.T) {
	g := NewGarage(Capacities{Small: 2, Medium: 2, Large: 2})
	g.Admit("KA01", Small)

	if _, err := g.Admit(" KA01 ", Large); !errors.Is(err, ErrDuplicateAdmission) {
		t.Errorf("Expected ErrDuplicateAdmission, got %v", err)
	}
}

func TestGarageExit(t *testing.T) {
	initial := Capacities{Small: 1, Medium: 1, Large: 1}
	g := NewGarage(initial)
	g.Admit("S1", Small)
	g.Admit("S2", Small)

	tier, err := g.Exit("S2")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if tier != Medium {
		t.Errorf("Expected S2 to leave from medium, got %s", tier)
	}

	if _, ok := g.Locate("S2"); ok {
		t.Error("Expected S2 to be gone")
	}
	checkInvariant(t, g, initial)
}

func TestGarageExitGhost(t *testing.T) {
	g := NewGarage(Capacities{Small: 2, Medium: 1, Large: 1})
	g.Admit("S1", Small)
	before := g.Status()

	_, err := g.Exit("GHOST")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	after := g.Status()
	for _, size := range Sizes {
		if before.Tier(size).Free != after.Tier(size).Free {
			t.Errorf("Expected %s capacity unchanged after ghost exit", size)
		}
	}
}

func TestGarageLocate(t *testing.T) {
	g := NewGarage(Capacities{Small: 1, Medium: 1, Large: 1})
	g.Admit("M1", Medium)

	tier, ok := g.Locate("M1")
	if !ok || tier != Medium {
		t.Errorf("Expected M1 in medium, got %s (%v)", tier, ok)
	}

	if _, ok := g.Locate("NOTFOUND"); ok {
		t.Error("Expected unknown plate not to be located")
	}
}

func TestGarageConcurrentAdmissions(t *testing.T) {
	initial := Capacities{Small: 5, Medium: 5, Large: 5}
	g := NewGarage(initial)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := g.Admit(fmt.Sprintf("CAR-%02d", i), Small); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if admitted != initial.Total() {
		t.Errorf("Expected exactly %d admissions, got %d", initial.Total(), admitted)
	}
	checkInvariant(t, g, initial)
}

func TestCapacitiesValidate(t *testing.T) {
	if err := (Capacities{Small: 1}).Validate(); err != nil {
		t.Errorf("Unexpected error: %s", err.Error())
	}

	if err := (Capacities{Medium: -1}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
