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

package memory

import (
	"strings"

	"github.com/quarrydb/quarry/orm"
	"github.com/quarrydb/quarry/orm/expression"
)

// Cond is a single comparison between a field path and a value. An empty
// Op means equality; the value may itself be an expression.
type Cond struct {
	Field string
	Op    string
	Value interface{}
}

// Not negates a condition specification of any shape BuildPredicate
// accepts.
type Not struct {
	Cond interface{}
}

var condOps = map[string]string{
	"":   "=",
	"=":  "=",
	"!=": "!=",
	"<":  "<",
	"<=": "<=",
	">":  ">",
	">=": ">=",
}

// BuildPredicate binds condition specifications into renderable
// predicates: a Cond, a Not, a slice of either, or an already-built
// predicate, which passes through.
func (q *Query) BuildPredicate(ctx *orm.Context, condition interface{}, reuse orm.AliasSet) (orm.Predicate, error) {
	switch cond := condition.(type) {
	case orm.Predicate:
		return cond, nil
	case Cond:
		return q.bindCond(ctx, cond, reuse)
	case Not:
		inner, err := q.BuildPredicate(ctx, cond.Cond, reuse)
		if err != nil {
			return nil, err
		}
		return negation{pred: inner}, nil
	case []Cond:
		preds := make([]orm.Predicate, 0, len(cond))
		for _, c := range cond {
			p, err := q.bindCond(ctx, c, reuse)
			if err != nil {
				return nil, err
			}
			preds = append(preds, p)
		}
		if len(preds) == 0 {
			return nil, orm.ErrInvalidOperand.New(condition)
		}
		return expression.And(preds...), nil
	case []interface{}:
		preds := make([]orm.Predicate, 0, len(cond))
		for _, c := range cond {
			p, err := q.BuildPredicate(ctx, c, reuse)
			if err != nil {
				return nil, err
			}
			preds = append(preds, p)
		}
		if len(preds) == 0 {
			return nil, orm.ErrInvalidOperand.New(condition)
		}
		return expression.And(preds...), nil
	default:
		return nil, orm.ErrInvalidOperand.New(condition)
	}
}

func (q *Query) bindCond(ctx *orm.Context, c Cond, reuse orm.AliasSet) (*boundCond, error) {
	op, ok := condOps[c.Op]
	if !ok {
		return nil, orm.ErrUnsupportedOperator.New(c.Op, "unknown predicate operator")
	}
	res, err := q.ResolveFieldPath(ctx, strings.Split(c.Field, expression.PathSeparator), reuse, true)
	if err != nil {
		return nil, err
	}
	b := &boundCond{field: c.Field, col: res.Column, op: op}
	if expr, ok := c.Value.(orm.Expression); ok {
		if err := expr.Resolve(ctx, q, true, reuse); err != nil {
			return nil, err
		}
		b.valueExpr = expr
	} else {
		b.value = c.Value
	}
	return b, nil
}

// boundCond is a Cond bound to a concrete column.
type boundCond struct {
	field     string
	col       orm.Columnar
	op        string
	value     interface{}
	valueExpr orm.Expression
}

var _ orm.Predicate = (*boundCond)(nil)

func (p *boundCond) Render(ctx *orm.Context, c orm.Compiler) (string, []interface{}, error) {
	colSQL, params, err := p.col.ColumnSQL(ctx, c)
	if err != nil {
		return "", nil, err
	}
	if p.valueExpr != nil {
		valSQL, valParams, err := c.Compile(ctx, p.valueExpr)
		if err != nil {
			return "", nil, err
		}
		return colSQL + " " + p.op + " " + valSQL, append(params, valParams...), nil
	}
	if p.value == nil {
		switch p.op {
		case "=":
			return colSQL + " IS NULL", params, nil
		case "!=":
			return colSQL + " IS NOT NULL", params, nil
		}
		return "", nil, orm.ErrUnsupportedOperator.New(p.op, "cannot order against null")
	}
	return colSQL + " " + p.op + " ?", append(params, p.value), nil
}

func (p *boundCond) RelabeledPredicate(change map[string]string) orm.Predicate {
	np := *p
	np.col = p.col.RelabeledColumn(change)
	if p.valueExpr != nil {
		np.valueExpr = p.valueExpr.Relabeled(change)
	}
	return &np
}

// negation inverts a bound predicate.
type negation struct {
	pred orm.Predicate
}

var _ orm.Predicate = negation{}

func (n negation) Render(ctx *orm.Context, c orm.Compiler) (string, []interface{}, error) {
	sql, params, err := c.Compile(ctx, n.pred)
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", params, nil
}

func (n negation) RelabeledPredicate(change map[string]string) orm.Predicate {
	return negation{pred: n.pred.RelabeledPredicate(change)}
}
