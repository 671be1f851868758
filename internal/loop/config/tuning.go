package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tomz197/santa-rush/internal/physics"
)

// ErrInvalidTuning is returned when a tuning cannot drive a round.
var ErrInvalidTuning = errors.New("invalid tuning")

// PhysicsTuning mirrors physics.Model in the tuning file.
type PhysicsTuning struct {
	Gravity         float64 `yaml:"gravity"`
	Thrust          float64 `yaml:"thrust"`
	MaxVelocityUp   float64 `yaml:"maxVelocityUp"`
	MaxVelocityDown float64 `yaml:"maxVelocityDown"`
}

// Tuning is the per-round configuration of a session.
// Missing fields in a tuning file keep their defaults.
type Tuning struct {
	Width               float64       `yaml:"width"`
	Height              float64       `yaml:"height"`
	Physics             PhysicsTuning `yaml:"physics"`
	InvincibilityFrames int           `yaml:"invincibilityFrames"`
	GiftBonus           int           `yaml:"giftBonus"`
	RestartDelayFrames  int           `yaml:"restartDelayFrames"`
	Seed                int64         `yaml:"seed"` // 0 picks a random seed
}

// DefaultTuning returns the standard game configuration.
func DefaultTuning() Tuning {
	m := physics.DefaultModel()
	return Tuning{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Physics: PhysicsTuning{
			Gravity:         m.Gravity,
			Thrust:          m.Thrust,
			MaxVelocityUp:   m.MaxVelocityUp,
			MaxVelocityDown: m.MaxVelocityDown,
		},
		InvincibilityFrames: InvincibilityFrames,
		GiftBonus:           GiftBonus,
		RestartDelayFrames:  RestartDelayFrames,
	}
}

// LoadTuning reads a YAML tuning file on top of the defaults and validates it.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return DefaultTuning(), fmt.Errorf("parse tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return DefaultTuning(), err
	}
	return t, nil
}

// Validate checks the geometric preconditions of the spawners and the integrator.
func (t Tuning) Validate() error {
	switch {
	case t.Width < MinWidth || t.Height < MinHeight:
		return fmt.Errorf("%w: canvas %vx%v is smaller than %dx%d", ErrInvalidTuning, t.Width, t.Height, MinWidth, MinHeight)
	case t.Physics.Gravity <= 0:
		return fmt.Errorf("%w: gravity must be positive", ErrInvalidTuning)
	case t.Physics.Thrust >= 0:
		return fmt.Errorf("%w: thrust must be negative", ErrInvalidTuning)
	case t.Physics.MaxVelocityUp >= 0 || t.Physics.MaxVelocityDown <= 0:
		return fmt.Errorf("%w: velocity limits must straddle zero", ErrInvalidTuning)
	case t.InvincibilityFrames < 0 || t.GiftBonus < 0 || t.RestartDelayFrames < 0:
		return fmt.Errorf("%w: frame counts and bonus must not be negative", ErrInvalidTuning)
	}
	return nil
}

// Model returns the integrator described by the tuning.
func (t Tuning) Model() physics.Model {
	return physics.Model{
		Gravity:         t.Physics.Gravity,
		Thrust:          t.Physics.Thrust,
		MaxVelocityUp:   t.Physics.MaxVelocityUp,
		MaxVelocityDown: t.Physics.MaxVelocityDown,
	}
}
