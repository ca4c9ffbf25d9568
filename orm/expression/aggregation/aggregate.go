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

package aggregation

import (
	"fmt"
	"strings"

	"github.com/quarrydb/quarry/orm"
	"github.com/quarrydb/quarry/orm/expression"
)

// defaultTolerance is the point-equality tolerance oracle spatial
// aggregates run with when the caller sets none.
const defaultTolerance = "0.05"

// Aggregate applies one of the Op functions over a wrapped expression. The
// wrapped expression is an operand, not a child: the node itself is a leaf
// of the enclosing tree.
type Aggregate struct {
	op       Op
	expr     orm.Expression
	lookup   string
	extra    map[string]string
	explicit *orm.FieldType
	source   *orm.FieldType
	col      orm.Columnar
	summary  bool
	resolved bool
}

var _ orm.Aggregation = (*Aggregate)(nil)

func newAggregate(op Op, input interface{}, extra map[string]string) (*Aggregate, error) {
	a := &Aggregate{op: op, extra: extra}
	switch v := input.(type) {
	case string:
		if v == "*" && op == OpCount {
			a.expr = expression.NewStar()
		} else {
			a.expr = expression.NewField(v)
			a.lookup = v
		}
	case orm.Expression:
		if containsAggregate(v) {
			return nil, orm.ErrNestedAggregate.New(opTable[op].name)
		}
		a.expr = v
		if f, ok := v.(*expression.Field); ok {
			a.lookup = f.Name()
		}
	case orm.Columnar:
		a.expr = expression.NewColumn(v)
	default:
		return nil, orm.ErrInvalidOperand.New(input)
	}
	return a, nil
}

func containsAggregate(e orm.Expression) bool {
	found := false
	expression.Inspect(e, func(x orm.Expression) bool {
		if x == nil {
			return false
		}
		if _, ok := x.(orm.Aggregation); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

// Op returns the aggregate function.
func (a *Aggregate) Op() Op { return a.op }

func (a *Aggregate) AggregateName() string { return opTable[a.op].name }

func (a *Aggregate) WrappedExpression() orm.Expression { return a.expr }

// Column returns the bound column of the wrapped expression, if it has a
// single one.
func (a *Aggregate) Column() orm.Columnar { return a.col }

func (a *Aggregate) Summary() bool { return a.summary }

// MarkSummary flags the aggregate as part of a terminal aggregation, which
// changes how references to aggregate annotations resolve.
func (a *Aggregate) MarkSummary() { a.summary = true }

// WithOutputType returns a copy carrying an explicit output type, which
// wins over both the function defaults and source inference.
func (a *Aggregate) WithOutputType(t *orm.FieldType) *Aggregate {
	na := *a
	na.explicit = t
	return &na
}

// Extra returns a render parameter set by a constructor or WithExtra.
func (a *Aggregate) Extra(key string) string { return a.extra[key] }

// WithExtra returns a copy with a render parameter set. The "template" and
// "function" keys replace the rendered template and function; every other
// key substitutes its {key} token.
func (a *Aggregate) WithExtra(key, value string) *Aggregate {
	na := *a
	na.extra = make(map[string]string, len(a.extra)+1)
	for k, v := range a.extra {
		na.extra[k] = v
	}
	na.extra[key] = value
	return &na
}

// DefaultAlias derives the annotation alias used when the caller names
// none: the lookup with path separators flattened, suffixed with the
// lowercased function name. Anything but a plain field lookup has no
// derivable alias.
func (a *Aggregate) DefaultAlias() (string, error) {
	if a.lookup == "" {
		return "", orm.ErrAliasRequired.New(a.AggregateName())
	}
	flat := strings.ReplaceAll(a.lookup, expression.PathSeparator, "__")
	return flat + "__" + strings.ToLower(a.AggregateName()), nil
}

func (a *Aggregate) Children() []orm.Expression { return nil }

func (a *Aggregate) Connector() orm.Connector { return orm.NoConnector }

func (a *Aggregate) Negated() bool { return false }

func (a *Aggregate) Resolved() bool { return a.resolved }

func (a *Aggregate) Source() *orm.FieldType { return a.source }

func (a *Aggregate) Sources() []*orm.FieldType {
	if a.source != nil {
		return []*orm.FieldType{a.source}
	}
	return a.expr.Sources()
}

func (a *Aggregate) ContainsAggregate(annotations map[string]orm.Annotation) bool { return true }

// Resolve binds the wrapped expression. A wrapped reference naming an
// annotation short-circuits: outside a terminal aggregation an aggregate
// annotation may not be referenced at all, while a terminal aggregation
// inherits the annotation's output type and, for aggregate annotations,
// defers the column to the alias a promoted subquery will project.
func (a *Aggregate) Resolve(ctx *orm.Context, q orm.Query, allowJoins bool, reuse orm.AliasSet) error {
	span, ctx := ctx.Span("aggregation." + a.AggregateName())
	defer span.Finish()

	bound := false
	if f, ok := a.expr.(*expression.Field); ok {
		if ann, found := q.Annotations()[f.Name()]; found {
			if ann.IsAggregate() && !a.summary {
				return orm.ErrAggregateReference.New(f.Name())
			}
			col := ann.Column()
			if col == nil {
				col = orm.DeferredColumn{Alias: f.Name()}
			}
			f.Bind(col, ann.OutputType())
			bound = true
		}
	}
	if !bound {
		if err := a.expr.Resolve(ctx, q, allowJoins, reuse); err != nil {
			return err
		}
	}
	if a.op.info().spatial {
		if err := a.checkGeometry(); err != nil {
			return err
		}
	}
	if col, ok := a.expr.(interface{ Column() orm.Columnar }); ok {
		a.col = col.Column()
	}
	if err := a.resolveSource(); err != nil {
		return err
	}
	a.resolved = true
	return nil
}

func (a *Aggregate) checkGeometry() error {
	sources := a.expr.Sources()
	if len(sources) == 0 || !sources[0].Subtype(orm.Geometry) {
		got := "no source type"
		if len(sources) > 0 {
			got = sources[0].String() + " source"
		}
		return orm.ErrInvalidAggregateInput.New(a.AggregateName(), got+" where a geometry is required")
	}
	return nil
}

// resolveSource settles the output type: an explicit type wins, then the
// function's ordinal/computed default, then the type of the wrapped
// expression's sources, which must agree up to subtyping of the first.
func (a *Aggregate) resolveSource() error {
	if a.explicit != nil {
		a.source = a.explicit
		return nil
	}
	info := a.op.info()
	if info.ordinal {
		a.source = orm.OrdinalAggregateType
		return nil
	}
	if info.computed {
		a.source = orm.ComputedAggregateType
		return nil
	}
	sources := a.expr.Sources()
	if len(sources) == 0 {
		return orm.ErrUnresolvableAggregateType.New(a.AggregateName(), a.expr)
	}
	first := sources[0]
	for _, s := range sources[1:] {
		if !s.Subtype(first) {
			return orm.ErrMixedAggregateTypes.New(first, s, a.AggregateName())
		}
	}
	a.source = first
	return nil
}

func (a *Aggregate) Relabeled(change map[string]string) orm.Expression {
	na := *a
	na.expr = a.expr.Relabeled(change)
	if a.col != nil {
		na.col = a.col.RelabeledColumn(change)
	}
	return &na
}

func (a *Aggregate) Render(ctx *orm.Context, c orm.Compiler) (string, []interface{}, error) {
	if !a.resolved {
		return "", nil, orm.ErrNotResolved.New(a)
	}
	info := a.op.info()
	function := info.function
	template := info.template
	if info.spatial {
		fn, tpl, err := c.Dialect().SpatialAggregateSQL(info.name)
		if err != nil {
			return "", nil, err
		}
		function = fn
		if tpl != "" {
			template = tpl
		}
	}
	if fn, ok := a.extra["function"]; ok {
		function = fn
	}
	if tpl, ok := a.extra["template"]; ok {
		template = tpl
	}
	fieldSQL, params, err := c.Compile(ctx, a.expr)
	if err != nil {
		return "", nil, err
	}
	subs := map[string]string{
		"function": function,
		"field":    fieldSQL,
		"distinct": a.extra["distinct"],
	}
	for k, v := range a.extra {
		switch k {
		case "function", "template":
		default:
			subs[k] = v
		}
	}
	if info.spatial && subs["tolerance"] == "" && strings.Contains(template, "{tolerance}") {
		subs["tolerance"] = defaultTolerance
	}
	return orm.ExpandTemplate(template, subs), params, nil
}

func (a *Aggregate) String() string {
	return fmt.Sprintf("%s(%s)", a.AggregateName(), a.expr)
}
