package garage

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoCapacity         = errors.New("no space available")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateAdmission = errors.New("vehicle already parked")
)
