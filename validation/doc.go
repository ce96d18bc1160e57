// Package validation provides argument and configuration validation for
// seqkit.
//
// Operator constructors use the programmatic Check collector so that a
// malformed pipeline is rejected the moment it is built, before any element
// is pulled:
//
//	if err := validation.For("seq.Take").
//	    Require("source", src != nil).
//	    NonNegative("count", n).
//	    Err(); err != nil {
//	    return nil, err
//	}
//
// Configuration structs use struct tag validation backed by
// go-playground/validator:
//
//	type Plan struct {
//	    Take int    `mapstructure:"take" validate:"min=0"`
//	    Sort string `mapstructure:"sort" validate:"omitempty,oneof=asc desc"`
//	}
//	err := validation.Validate(plan)
package validation
