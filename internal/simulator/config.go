package simulator

import (
	"time"

	"github.com/me/schedsim/pkg/model"
)

// Config holds the simulator's tunable parameters.
type Config struct {
	Processors     int           `yaml:"processors" json:"processors"`
	AdmissionCap   int           `yaml:"admission_cap" json:"admission_cap"` // max arrivals attempting admission per tick
	BufferCapacity int           `yaml:"buffer_capacity" json:"buffer_capacity"`
	TimeStep       float64       `yaml:"time_step" json:"time_step"`
	MaxRunTime     float64       `yaml:"max_run_time" json:"max_run_time"`
	Precision      int           `yaml:"precision" json:"precision"` // decimal places kept in time arithmetic
	Pace           time.Duration `yaml:"pace" json:"pace"`           // real-time delay between ticks, 0 to run flat out
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Processors:     3,
		AdmissionCap:   2,
		BufferCapacity: 10,
		TimeStep:       0.01,
		MaxRunTime:     10,
		Precision:      4,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var details []model.FieldError
	if c.Processors < 1 {
		details = append(details, model.FieldError{Field: "simulation.processors", Message: "must be at least 1"})
	}
	if c.AdmissionCap < 1 {
		details = append(details, model.FieldError{Field: "simulation.admission_cap", Message: "must be at least 1"})
	}
	if c.BufferCapacity < 1 {
		details = append(details, model.FieldError{Field: "simulation.buffer_capacity", Message: "must be at least 1"})
	}
	if c.Precision < 0 || c.Precision > 12 {
		details = append(details, model.FieldError{Field: "simulation.precision", Message: "must be within [0, 12]"})
	}
	if c.TimeStep <= 0 {
		details = append(details, model.FieldError{Field: "simulation.time_step", Message: "must be positive"})
	} else if model.Round(c.TimeStep, c.Precision) <= 0 {
		details = append(details, model.FieldError{Field: "simulation.time_step", Message: "rounds to zero at the configured precision"})
	}
	if c.MaxRunTime <= 0 {
		details = append(details, model.FieldError{Field: "simulation.max_run_time", Message: "must be positive"})
	}
	if c.Pace < 0 {
		details = append(details, model.FieldError{Field: "simulation.pace", Message: "must not be negative"})
	}
	if err := model.NewConfigError(details...); err != nil {
		return err
	}
	return nil
}
