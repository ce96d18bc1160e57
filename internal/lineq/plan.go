package lineq

import (
	"regexp"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/validation"
)

// Plan describes a line query. The zero Plan prints every line unchanged.
type Plan struct {
	Match     string `yaml:"match" mapstructure:"match"`
	Exclude   string `yaml:"exclude" mapstructure:"exclude"`
	Trim      bool   `yaml:"trim" mapstructure:"trim"`
	SkipBlank bool   `yaml:"skip_blank" mapstructure:"skip_blank"`
	Distinct  bool   `yaml:"distinct" mapstructure:"distinct"`
	Sort      string `yaml:"sort" mapstructure:"sort" validate:"omitempty,oneof=asc desc"`
	SortBy    string `yaml:"sort_by" mapstructure:"sort_by" validate:"omitempty,oneof=line length"`
	Skip      int    `yaml:"skip" mapstructure:"skip" validate:"gte=0"`
	// Take limits the output; 0 means no limit.
	Take    int    `yaml:"take" mapstructure:"take" validate:"gte=0"`
	GroupBy string `yaml:"group_by" mapstructure:"group_by" validate:"omitempty,oneof=line first-field length"`
	Count   bool   `yaml:"count" mapstructure:"count"`
	First   bool   `yaml:"first" mapstructure:"first" validate:"excluded_if=Count true"`
}

// Validate checks the plan before any input is opened.
func (p *Plan) Validate() error {
	if err := validation.Validate(p); err != nil {
		return err
	}
	if _, _, err := p.patterns(); err != nil {
		return err
	}
	return nil
}

func (p *Plan) patterns() (match, exclude *regexp.Regexp, err error) {
	if match, err = compile("match", p.Match); err != nil {
		return nil, nil, err
	}
	if exclude, err = compile("exclude", p.Exclude); err != nil {
		return nil, nil, err
	}
	return match, exclude, nil
}

func compile(field, expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.InvalidConfig(field + ": invalid regular expression").WithCause(err)
	}
	return re, nil
}
