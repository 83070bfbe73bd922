package animals

import "errors"

var (
	ErrAnimalNotFound = errors.New("animal not found")
	ErrForbidden      = errors.New("animal belongs to another owner")
	ErrLimitExceeded  = errors.New("animal limit exceeded")
)
