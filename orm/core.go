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

// Package orm defines the contracts of the expression and aggregation layer:
// expression nodes, the query metadata they resolve against, and the
// compiler/dialect pair that renders them to parameterized SQL.
package orm

import (
	"time"
)

// Connector joins the children of a combined expression.
type Connector string

const (
	Add    Connector = "+"
	Sub    Connector = "-"
	Mul    Connector = "*"
	Div    Connector = "/"
	Pow    Connector = "^"
	Mod    Connector = "%"
	BitAnd Connector = "&"
	BitOr  Connector = "|"

	// NoConnector marks leaf and single-child nodes.
	NoConnector Connector = ""
)

func (c Connector) String() string { return string(c) }

// Arithmetic reports whether c is one of the connectors the generic
// combination entry point accepts.
func (c Connector) Arithmetic() bool {
	switch c {
	case Add, Sub, Mul, Div, Pow, Mod:
		return true
	}
	return false
}

// Bitwise reports whether c is a bitwise connector, which only the
// dedicated bitwise constructors may use.
func (c Connector) Bitwise() bool {
	return c == BitAnd || c == BitOr
}

// Renderable is anything that can produce a SQL fragment and its bound
// parameters. Rendering is pure: it never mutates the receiver, so a
// resolved tree can be rendered concurrently for several dialects.
type Renderable interface {
	Render(ctx *Context, c Compiler) (string, []interface{}, error)
}

// Expression is a node of the expression tree.
type Expression interface {
	Renderable
	// Resolved reports whether the node needs no further resolution before
	// rendering.
	Resolved() bool
	// Children returns the ordered children joined by Connector.
	Children() []Expression
	Connector() Connector
	Negated() bool
	// Source returns the field type the node is known to carry, nil before
	// resolution or when no single type applies.
	Source() *FieldType
	// Sources returns the field types of every resolved leaf under the node.
	Sources() []*FieldType
	// Resolve validates the node against q and binds columns and types in
	// place. allowJoins permits relation-traversing field references; any
	// join aliases created or reused are recorded in reuse when non-nil.
	Resolve(ctx *Context, q Query, allowJoins bool, reuse AliasSet) error
	// Relabeled returns a deep copy with every table reference renamed
	// through change, for use when the tree moves into a subquery.
	Relabeled(change map[string]string) Expression
	// ContainsAggregate reports whether the node or anything under it
	// aggregates, including field references naming an aggregate annotation.
	ContainsAggregate(annotations map[string]Annotation) bool
}

// Aggregation is the capability interface implemented by aggregate
// expressions.
type Aggregation interface {
	Expression
	// AggregateName returns the exported name, e.g. "Sum".
	AggregateName() string
	// WrappedExpression returns the expression being aggregated over.
	WrappedExpression() Expression
	// DefaultAlias derives the annotation alias used when the caller gives
	// none, e.g. "rating__sum".
	DefaultAlias() (string, error)
	// Summary reports whether the aggregate belongs to a terminal
	// aggregation rather than an annotation.
	Summary() bool
}

// Columnar is a bound database column handle. Implementations render
// themselves and survive relabeling.
type Columnar interface {
	ColumnSQL(ctx *Context, c Compiler) (string, []interface{}, error)
	RelabeledColumn(change map[string]string) Columnar
}

// Predicate is a bound filter condition, ready to render.
type Predicate interface {
	Renderable
	RelabeledPredicate(change map[string]string) Predicate
}

// Annotation is the query's view of a registered annotation.
type Annotation interface {
	OutputType() *FieldType
	IsAggregate() bool
	// Column returns the annotation's single bound column, or nil when the
	// annotation is an aggregate or a combined expression.
	Column() Columnar
}

// FieldResolution is what a query hands back for a resolved field path.
type FieldResolution struct {
	Column Columnar
	Source *FieldType
	// Joins lists the aliases of every join traversed, base table excluded.
	Joins []string
}

// Query is the metadata collaborator expressions resolve against.
type Query interface {
	// ResolveFieldPath walks a dotted field path from the base model,
	// creating or reusing joins as it goes. Implementations record any
	// join aliases they touch in reuse when it is non-nil.
	ResolveFieldPath(ctx *Context, path []string, reuse AliasSet, allowJoins bool) (FieldResolution, error)
	// Annotations returns the registered annotations keyed by alias.
	Annotations() map[string]Annotation
	// BuildPredicate binds a backend-defined condition specification into a
	// renderable predicate.
	BuildPredicate(ctx *Context, condition interface{}, reuse AliasSet) (Predicate, error)
}

// Compiler renders expression trees for one dialect. Compile is the entry
// point every parent uses for its children, so per-vendor overrides see
// every node.
type Compiler interface {
	Compile(ctx *Context, r Renderable) (string, []interface{}, error)
	Quote(identifier string) string
	Dialect() Dialect
}

// Dialect supplies the vendor-specific pieces of rendering.
type Dialect interface {
	// Vendor returns the backend identifier, e.g. "postgres".
	Vendor() string
	QuoteIdentifier(name string) string
	// CombineExpression joins already-rendered child fragments with the
	// connector, rewriting to function form where the vendor requires it.
	CombineExpression(connector Connector, parts []string) (string, error)
	// DateIntervalSQL renders child offset by a duration. The connector is
	// Add or Sub; callers validate that before rendering.
	DateIntervalSQL(child string, connector Connector, offset time.Duration) (string, error)
	// SpatialAggregateSQL returns the vendor function for a spatial
	// aggregate and, when the vendor needs one, a replacement render
	// template.
	SpatialAggregateSQL(name string) (function string, template string, err error)
}

// AliasSet tracks which join aliases a resolution pass may reuse. A nil set
// means reuse freely and record nothing.
type AliasSet map[string]struct{}

func NewAliasSet(aliases ...string) AliasSet {
	s := make(AliasSet, len(aliases))
	for _, a := range aliases {
		s.Add(a)
	}
	return s
}

func (s AliasSet) Add(alias string) { s[alias] = struct{}{} }

func (s AliasSet) Contains(alias string) bool {
	_, ok := s[alias]
	return ok
}

func (s AliasSet) Update(aliases []string) {
	for _, a := range aliases {
		s.Add(a)
	}
}
