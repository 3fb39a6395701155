// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package flatzinc

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, per spec §7. Wrapped with fmt.Errorf("...: %w", ...)
// so callers can test with errors.Is/errors.As, matching the teacher's
// ErrMixedModels convention in cp_model.go.
var (
	// ErrUnsupportedConstraint is returned when dispatch reaches a tag with
	// no registered handler.
	ErrUnsupportedConstraint = errors.New("flatzinc: unsupported constraint")
	// ErrUnsupportedSetVariable is returned when a set-valued variable
	// reaches dispatch or printing.
	ErrUnsupportedSetVariable = errors.New("flatzinc: set variables are unsupported at dispatch time")
	// ErrTypeError is returned when a flat argument accessor receives the
	// wrong variant.
	ErrTypeError = errors.New("flatzinc: argument type error")
	// ErrModelClosed is returned when a mutation is attempted after Close.
	ErrModelClosed = errors.New("flatzinc: model is closed")
)

// UnsupportedConstraintError names the offending constraint tag.
type UnsupportedConstraintError struct {
	Tag string
}

func (e *UnsupportedConstraintError) Error() string {
	return fmt.Sprintf("flatzinc: unsupported constraint %q", e.Tag)
}

func (e *UnsupportedConstraintError) Unwrap() error { return ErrUnsupportedConstraint }

// TypeError describes the mismatch found (the expected and the actual
// argument kind).
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string { return "flatzinc: " + e.Message }
func (e *TypeError) Unwrap() error { return ErrTypeError }

// UnsupportedSetVariableError names the offending set variable.
type UnsupportedSetVariableError struct {
	Name string
}

func (e *UnsupportedSetVariableError) Error() string {
	return fmt.Sprintf("flatzinc: set variable %q reached dispatch", e.Name)
}

func (e *UnsupportedSetVariableError) Unwrap() error { return ErrUnsupportedSetVariable }
