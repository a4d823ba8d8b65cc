// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package validate wraps go-playground/validator behind a tiny API.
package validate

import (
	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. Custom type registrations
// must happen during init, before the first call to Struct.
var v = validator.New()

// Struct validates the given struct using its validate tags.
func Struct(s any) error {
	return v.Struct(s)
}
