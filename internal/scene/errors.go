package scene

import "errors"

var (
	// ErrInvalidReference means a name no longer resolves to a live node.
	ErrInvalidReference = errors.New("invalid scene reference")

	// ErrMutation means the host rejected a mutation.
	ErrMutation = errors.New("scene mutation failed")

	// ErrNoAvailableID means no free material ID exists in the allowed range.
	ErrNoAvailableID = errors.New("no available material id")
)
