package garage

import "strings"

type Vehicle struct {
	Plate string
	Size  Size
}

func NewVehicle(plate string, size Size) *Vehicle {
	return &Vehicle{
		Plate: normalizePlate(plate),
		Size:  size,
	}
}

func normalizePlate(plate string) string {
	return strings.TrimSpace(plate)
}
