package engine

import "errors"

var (
	// ErrInvalidReference is returned when road creation references an
	// intersection that does not exist. The network is left unchanged.
	ErrInvalidReference = errors.New("road references unknown intersection")

	// ErrUnknownIntersection is returned by queries against a
	// nonexistent intersection id.
	ErrUnknownIntersection = errors.New("unknown intersection")

	// ErrNoPathFound is returned by SetDestination when no route exists
	// between the vehicle's position and the requested destination.
	// This is an expected outcome on partially connected networks; the
	// vehicle's prior state is left untouched.
	ErrNoPathFound = errors.New("no path found")

	// ErrInvalidPhase is returned when a signal phase index is out of
	// range or a phase list is empty.
	ErrInvalidPhase = errors.New("invalid signal phase")
)
