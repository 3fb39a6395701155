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
	"fmt"

	"github.com/vrpcore/vrpcore/cpsolver"
)

// ArgKind tags the variant carried by an Argument.
type ArgKind int

const (
	// ArgInt is a single integer constant.
	ArgInt ArgKind = iota
	// ArgVar is a reference to a Variable.
	ArgVar
	// ArgIntArray is an array of integer constants.
	ArgIntArray
	// ArgVarArray is an array of Variable references.
	ArgVarArray
	// ArgSet is a set literal (interval or enumerated).
	ArgSet
	// ArgDomain is a domain literal.
	ArgDomain
	// ArgAnnotation is a nested annotation call.
	ArgAnnotation
)

// Argument is the tagged value carried by a flat constraint's argument list
// (spec §3 "Flat argument"): "carries the information an extractor needs
// without reinspecting source text."
type Argument struct {
	Kind       ArgKind
	IntVal     int64
	VarVal     VarID
	IntArray   []int64
	VarArray   []VarID
	Set        cpsolver.Domain
	Annotation Annotation
}

// IntArg builds an ArgInt.
func IntArg(v int64) Argument { return Argument{Kind: ArgInt, IntVal: v} }

// VarArg builds an ArgVar.
func VarArg(v VarID) Argument { return Argument{Kind: ArgVar, VarVal: v} }

// IntArrayArg builds an ArgIntArray.
func IntArrayArg(v []int64) Argument { return Argument{Kind: ArgIntArray, IntArray: v} }

// VarArrayArg builds an ArgVarArray.
func VarArrayArg(v []VarID) Argument { return Argument{Kind: ArgVarArray, VarArray: v} }

// SetArg builds an ArgSet from a domain literal.
func SetArg(d cpsolver.Domain) Argument { return Argument{Kind: ArgSet, Set: d} }

// DomainArg builds an ArgDomain, used where a bare domain literal (rather
// than a set-membership operand) is expected, e.g. an explicit variable
// declaration's domain annotation.
func DomainArg(d cpsolver.Domain) Argument { return Argument{Kind: ArgDomain, Set: d} }

// AnnotationArg builds an ArgAnnotation wrapping a nested annotation call.
func AnnotationArg(ann Annotation) Argument { return Argument{Kind: ArgAnnotation, Annotation: ann} }

// AsInt returns the argument's integer constant, or a TypeError.
func (a Argument) AsInt() (int64, error) {
	if a.Kind != ArgInt {
		return 0, &TypeError{Message: fmt.Sprintf("expected int argument, got kind %d", a.Kind)}
	}
	return a.IntVal, nil
}

// AsVar returns the argument's variable reference, or a TypeError.
func (a Argument) AsVar() (VarID, error) {
	if a.Kind != ArgVar {
		return 0, &TypeError{Message: fmt.Sprintf("expected var argument, got kind %d", a.Kind)}
	}
	return a.VarVal, nil
}

// AsIntArray returns the argument's constant array, or a TypeError.
func (a Argument) AsIntArray() ([]int64, error) {
	if a.Kind != ArgIntArray {
		return nil, &TypeError{Message: fmt.Sprintf("expected int array argument, got kind %d", a.Kind)}
	}
	return a.IntArray, nil
}

// AsVarArray returns the argument's variable array, or a TypeError.
func (a Argument) AsVarArray() ([]VarID, error) {
	if a.Kind != ArgVarArray {
		return nil, &TypeError{Message: fmt.Sprintf("expected var array argument, got kind %d", a.Kind)}
	}
	return a.VarArray, nil
}

// AsSet returns the argument's set-literal domain, or a TypeError.
func (a Argument) AsSet() (cpsolver.Domain, error) {
	if a.Kind != ArgSet {
		return cpsolver.Domain{}, &TypeError{Message: fmt.Sprintf("expected set argument, got kind %d", a.Kind)}
	}
	return a.Set, nil
}

// AsDomain returns the argument's domain literal, or a TypeError.
func (a Argument) AsDomain() (cpsolver.Domain, error) {
	if a.Kind != ArgDomain {
		return cpsolver.Domain{}, &TypeError{Message: fmt.Sprintf("expected domain argument, got kind %d", a.Kind)}
	}
	return a.Set, nil
}

// AsAnnotation returns the argument's nested annotation, or a TypeError.
func (a Argument) AsAnnotation() (Annotation, error) {
	if a.Kind != ArgAnnotation {
		return Annotation{}, &TypeError{Message: fmt.Sprintf("expected annotation argument, got kind %d", a.Kind)}
	}
	return a.Annotation, nil
}

// IsConstant reports whether the argument is a plain integer constant, as
// opposed to a variable reference — the branch test used throughout the
// dispatcher's binary-comparison contract (spec §4.3).
func (a Argument) IsConstant() bool { return a.Kind == ArgInt }
