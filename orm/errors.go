// Copyright 2021-2023 QuarryDB, Inc.
//
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

package orm

import (
	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrInvalidTree is returned when an expression tree is constructed with
	// multiple children but no connector to join them.
	ErrInvalidTree = errors.NewKind("invalid expression tree: %d children given without a connector")

	// ErrUnsupportedOperator is returned when a connector cannot be used in
	// the requested position or on the requested dialect.
	ErrUnsupportedOperator = errors.NewKind("unsupported operator %q: %s")

	// ErrJoinNotPermitted is returned when a relation-traversing field
	// reference appears somewhere joins are not allowed.
	ErrJoinNotPermitted = errors.NewKind("joined field references are not permitted here: %q")

	// ErrAggregateReference is returned when an aggregate annotation is
	// referenced outside a terminal aggregation.
	ErrAggregateReference = errors.NewKind("annotation %q is an aggregate and can only be referenced by a terminal aggregation")

	// ErrUnknownField is returned when a field path segment matches neither a
	// field nor a relation of the model in scope.
	ErrUnknownField = errors.NewKind("cannot resolve field %q, choices are: %s%s")

	// ErrNestedAggregate is returned when an aggregate is constructed over an
	// expression that already contains an aggregate.
	ErrNestedAggregate = errors.NewKind("aggregate functions cannot be nested inside %s")

	// ErrUnresolvableAggregateType is returned when an aggregate has no
	// explicit output type and its wrapped expression contributes no sources
	// to infer one from.
	ErrUnresolvableAggregateType = errors.NewKind("cannot determine an output type for %s over %s, set one explicitly")

	// ErrMixedAggregateTypes is returned when an aggregate's sources disagree
	// on a type and no explicit output type settles the question.
	ErrMixedAggregateTypes = errors.NewKind("mixed source types %s and %s in %s, set an output type explicitly")

	// ErrAliasRequired is returned when a default alias is requested for
	// anything more complex than an aggregate over a plain field reference.
	ErrAliasRequired = errors.NewKind("complex expression %s requires an explicit alias")

	// ErrInvalidAggregateInput is returned when an aggregate's wrapped
	// expression cannot feed it, e.g. a non-geometry source in a spatial
	// aggregate.
	ErrInvalidAggregateInput = errors.NewKind("invalid input to aggregate %s: %s")

	// ErrNotResolved is returned when a name-validating expression is
	// rendered before being resolved against a query.
	ErrNotResolved = errors.NewKind("expression %s must be resolved before it can be rendered")

	// ErrSpatialNotSupported is returned when a backend has no rendering for
	// a spatial aggregate.
	ErrSpatialNotSupported = errors.NewKind("spatial aggregate %s is not supported on %s")

	// ErrInvalidOperand is returned when a Go value cannot be promoted into
	// an expression operand.
	ErrInvalidOperand = errors.NewKind("cannot use a value of type %T as an expression operand")

	// ErrUnsupportedFunction is returned by evaluators that do not implement
	// a named SQL function.
	ErrUnsupportedFunction = errors.NewKind("function %q is not supported by the in-memory evaluator")
)
