package thermal

import "errors"

var (
	ErrInvalidInsulation = errors.New("invalid insulation grade")
	ErrInvalidUnitType   = errors.New("invalid unit type")
)
