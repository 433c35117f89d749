package plan

import (
	"bytes"
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/transducekit/errors"
	"github.com/kbukum/transducekit/validation"
)

// Step operators.
const (
	OpMap       = "map"
	OpFilter    = "filter"
	OpEnumerate = "enumerate"
	OpRepeat    = "repeat"
	OpBatch     = "batch"
	OpTake      = "take"
	OpDrop      = "drop"
	OpTakeLast  = "take_last"
	OpDropLast  = "drop_last"
	OpFirstTrue = "first_true"
	OpNth       = "nth"
	OpSingle    = "single"
	OpInclude   = "include"
)

// Collectors.
const (
	CollectAppend = "append"
	CollectConj   = "conj"
)

// Definition is a named pipeline loaded from YAML.
type Definition struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Collector selects the terminal reducer; empty means append.
	Collector string `yaml:"collector,omitempty" json:"collector,omitempty" validate:"omitempty,oneof=append conj"`
	Steps     []Step `yaml:"steps" json:"steps" validate:"required,min=1,dive"`
}

// Step is one operator in a Definition. Only the fields its Op reads are
// meaningful.
type Step struct {
	Op string `yaml:"op" json:"op" validate:"required,oneof=map filter enumerate repeat batch take drop take_last drop_last first_true nth single include"`

	Fn   string `yaml:"fn,omitempty" json:"fn,omitempty"`
	Pred string `yaml:"pred,omitempty" json:"pred,omitempty"`
	Plan string `yaml:"plan,omitempty" json:"plan,omitempty"`

	Size    int `yaml:"size,omitempty" json:"size,omitempty"`
	Limit   int `yaml:"limit,omitempty" json:"limit,omitempty"`
	N       int `yaml:"n,omitempty" json:"n,omitempty"`
	Start   int `yaml:"start,omitempty" json:"start,omitempty"`
	Count   int `yaml:"count,omitempty" json:"count,omitempty"`
	Default any `yaml:"default,omitempty" json:"default,omitempty"`

	Passthrough bool `yaml:"passthrough,omitempty" json:"passthrough,omitempty"`
}

// Parse decodes and validates a YAML definition. Unknown keys are rejected.
func Parse(data []byte) (*Definition, error) {
	def, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func decode(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, errors.InvalidInput("plan", "malformed yaml").WithCause(err)
	}
	return &def, nil
}

// Validate checks struct tags and the per-operator required parameters.
// Numeric ranges are left to the operator factories.
func (d *Definition) Validate() error {
	if err := validation.Validate(d); err != nil {
		return err
	}

	v := validation.New()
	for i, s := range d.Steps {
		field := func(name string) string { return fmt.Sprintf("steps[%d].%s", i, name) }
		switch s.Op {
		case OpMap:
			v.Required(field("fn"), s.Fn)
		case OpFilter:
			v.Required(field("pred"), s.Pred)
		case OpInclude:
			v.Required(field("plan"), s.Plan)
			v.Custom(s.Plan != d.Name, field("plan"), "plan cannot include itself")
		}
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
