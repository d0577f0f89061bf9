package dice

import "go.uber.org/zap"

// Sides is the number of faces on the game die.
const Sides = 6

// Roller wraps a Source and logger to provide logged die rolling.
// All rolls are logged at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll returns a uniform value in [1, Sides].
//
// Postcondition: result logged; return value in [1, Sides].
func (r *Roller) Roll() int {
	v := r.src.Intn(Sides) + 1
	r.logger.Debug("die roll", zap.Int("value", v))
	return v
}
