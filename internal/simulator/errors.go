package simulator

import (
	"errors"

	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

var (
	ErrSurfaceOutOfRange  = errors.New("surface out of range")
	ErrHeightOutOfRange   = errors.New("height out of range")
	ErrSetpointOutOfRange = errors.New("setpoint out of range")

	// Shared with thermal so parse and validation failures match the same
	// sentinel.
	ErrInvalidInsulation = thermal.ErrInvalidInsulation
	ErrInvalidUnitType   = thermal.ErrInvalidUnitType
)
