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

package expression

import (
	"fmt"
	"strings"

	"github.com/quarrydb/quarry/orm"
)

// caseTemplate is the searched CASE shape every dialect understands.
// Vendors wanting another spelling register a render override for If.
const caseTemplate = "CASE WHEN {condition} THEN {true} ELSE {false} END"

// If renders a two-branch conditional as a searched CASE expression. The
// condition starts out as a backend-defined specification and is bound into
// a predicate during resolution.
type If struct {
	cond      interface{}
	predicate orm.Predicate
	trueVal   orm.Expression
	falseVal  orm.Expression
	source    *orm.FieldType
}

var _ orm.Expression = (*If)(nil)

// NewIf builds a conditional over a condition specification and two branch
// operands, which are promoted like any other expression operand.
func NewIf(condition interface{}, trueVal, falseVal interface{}) *If {
	return &If{
		cond:     condition,
		trueVal:  AsExpression(trueVal),
		falseVal: AsExpression(falseVal),
	}
}

// WithOutputType returns a copy carrying an explicit result type, for
// branches whose types alone do not settle it.
func (i *If) WithOutputType(t *orm.FieldType) *If {
	ni := *i
	ni.source = t
	return &ni
}

// Predicate returns the bound condition, nil before resolution.
func (i *If) Predicate() orm.Predicate { return i.predicate }

func (i *If) Children() []orm.Expression { return []orm.Expression{i.trueVal, i.falseVal} }

func (i *If) Connector() orm.Connector { return orm.NoConnector }

func (i *If) Negated() bool { return false }

func (i *If) Resolved() bool {
	return i.predicate != nil && i.trueVal.Resolved() && i.falseVal.Resolved()
}

func (i *If) Source() *orm.FieldType {
	if i.source != nil {
		return i.source
	}
	if sources := i.Sources(); len(sources) > 0 {
		return sources[0]
	}
	return nil
}

func (i *If) Sources() []*orm.FieldType {
	if i.source != nil {
		return []*orm.FieldType{i.source}
	}
	return append(i.trueVal.Sources(), i.falseVal.Sources()...)
}

func (i *If) Resolve(ctx *orm.Context, q orm.Query, allowJoins bool, reuse orm.AliasSet) error {
	if p, ok := i.cond.(orm.Predicate); ok {
		i.predicate = p
	} else {
		p, err := q.BuildPredicate(ctx, i.cond, reuse)
		if err != nil {
			return err
		}
		i.predicate = p
	}
	if err := i.trueVal.Resolve(ctx, q, allowJoins, reuse); err != nil {
		return err
	}
	return i.falseVal.Resolve(ctx, q, allowJoins, reuse)
}

func (i *If) Relabeled(change map[string]string) orm.Expression {
	ni := *i
	if i.predicate != nil {
		ni.predicate = i.predicate.RelabeledPredicate(change)
	}
	ni.trueVal = i.trueVal.Relabeled(change)
	ni.falseVal = i.falseVal.Relabeled(change)
	return &ni
}

func (i *If) ContainsAggregate(annotations map[string]orm.Annotation) bool {
	return i.trueVal.ContainsAggregate(annotations) || i.falseVal.ContainsAggregate(annotations)
}

func (i *If) Render(ctx *orm.Context, c orm.Compiler) (string, []interface{}, error) {
	span, ctx := ctx.Span("expression.If")
	defer span.Finish()

	if i.predicate == nil {
		return "", nil, orm.ErrNotResolved.New(i)
	}
	condSQL, condParams, err := c.Compile(ctx, i.predicate)
	if err != nil {
		return "", nil, err
	}
	trueSQL, trueParams, err := c.Compile(ctx, i.trueVal)
	if err != nil {
		return "", nil, err
	}
	falseSQL, falseParams, err := c.Compile(ctx, i.falseVal)
	if err != nil {
		return "", nil, err
	}
	sql := orm.ExpandTemplate(caseTemplate, map[string]string{
		"condition": condSQL,
		"true":      trueSQL,
		"false":     falseSQL,
	})
	params := append(condParams, trueParams...)
	params = append(params, falseParams...)
	return sql, params, nil
}

func (i *If) String() string {
	return fmt.Sprintf("If(%v, %s, %s)", i.cond, i.trueVal, i.falseVal)
}

// And joins bound predicates into a single conjunction. A single predicate
// passes through unchanged.
func And(preds ...orm.Predicate) orm.Predicate {
	if len(preds) == 1 {
		return preds[0]
	}
	return conjunction{preds: preds}
}

// conjunction renders its predicates joined by AND. Query backends return
// it from BuildPredicate when a condition specification has several parts.
type conjunction struct {
	preds []orm.Predicate
}

var _ orm.Predicate = conjunction{}

// Predicates exposes the joined predicates, for evaluators that walk the
// condition instead of rendering it.
func (c conjunction) Predicates() []orm.Predicate { return c.preds }

func (c conjunction) Render(ctx *orm.Context, cpl orm.Compiler) (string, []interface{}, error) {
	parts := make([]string, 0, len(c.preds))
	var params []interface{}
	for _, p := range c.preds {
		sql, predParams, err := cpl.Compile(ctx, p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, predParams...)
	}
	return strings.Join(parts, " AND "), params, nil
}

func (c conjunction) RelabeledPredicate(change map[string]string) orm.Predicate {
	preds := make([]orm.Predicate, len(c.preds))
	for i, p := range c.preds {
		preds[i] = p.RelabeledPredicate(change)
	}
	return conjunction{preds: preds}
}
