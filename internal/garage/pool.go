package garage

import "sort"

// Pool holds the slots of one size tier.
type Pool struct {
	Size      Size
	Capacity  int
	occupants map[string]*Vehicle
}

func NewPool(size Size, capacity int) *Pool {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool{
		Size:      size,
		Capacity:  capacity,
		occupants: make(map[string]*Vehicle, capacity),
	}
}

func (p *Pool) Occupied() int {
	return len(p.occupants)
}

func (p *Pool) Free() int {
	return p.Capacity - len(p.occupants)
}

func (p *Pool) Has(plate string) bool {
	_, ok := p.occupants[plate]
	return ok
}

// Park takes a free slot for the vehicle. It reports false when the pool is
// full or the plate is already inside.
func (p *Pool) Park(vehicle *Vehicle) bool {
	if p.Free() <= 0 || p.Has(vehicle.Plate) {
		return false
	}
	p.occupants[vehicle.Plate] = vehicle
	return true
}

func (p *Pool) Leave(plate string) (*Vehicle, bool) {
	vehicle, ok := p.occupants[plate]
	if !ok {
		return nil, false
	}
	delete(p.occupants, plate)
	return vehicle, true
}

func (p *Pool) Plates() []string {
	plates := make([]string, 0, len(p.occupants))
	for plate := range p.occupants {
		plates = append(plates, plate)
	}
	sort.Strings(plates)
	return plates
}
