package fsm

import "errors"

var (
	// ErrDuplicateTransition indicates a second registration for the same
	// (state, event) pair.
	ErrDuplicateTransition = errors.New("fsm: duplicate registration of state+event pair")

	// ErrUnknownHandler indicates a config references a handler name that is
	// not in the registry.
	ErrUnknownHandler = errors.New("fsm: unknown handler name")

	// ErrHandlerExists indicates a second registry entry under the same name.
	ErrHandlerExists = errors.New("fsm: handler name already registered")

	// ErrBadConfig indicates a machine config that fails validation.
	ErrBadConfig = errors.New("fsm: invalid machine config")
)
