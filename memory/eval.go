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
	"math"
	"strings"
	"time"

	"github.com/mitchellh/hashstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/quarrydb/quarry/internal/similartext"
	"github.com/quarrydb/quarry/orm"
	"github.com/quarrydb/quarry/orm/expression"
	"github.com/quarrydb/quarry/orm/expression/aggregation"
)

// Evaluate runs a resolved aggregate over the table's rows and returns its
// result, nil when the aggregate saw no input. Only single-table field
// references evaluate; joined paths render fine but have no rows here.
func Evaluate(ctx *orm.Context, t *Table, agg *aggregation.Aggregate) (interface{}, error) {
	span, _ := ctx.Span("memory.Evaluate")
	defer span.Finish()

	buf, err := newBuffer(agg)
	if err != nil {
		return nil, err
	}
	for _, row := range t.rows {
		v, err := evalExpr(t.model, agg.WrappedExpression(), row)
		if err != nil {
			return nil, err
		}
		if err := buf.update(v); err != nil {
			return nil, err
		}
	}
	return buf.result()
}

// buffer accumulates one aggregate's state across rows, in the spirit of a
// streaming aggregation: update per row, result once at the end.
type buffer interface {
	update(v interface{}) error
	result() (interface{}, error)
}

func newBuffer(agg *aggregation.Aggregate) (buffer, error) {
	switch agg.Op() {
	case aggregation.OpCount:
		if agg.Extra("distinct") != "" {
			return &countDistinctBuffer{seen: map[uint64]struct{}{}}, nil
		}
		return &countBuffer{}, nil
	case aggregation.OpSum:
		return &sumBuffer{source: agg.Source()}, nil
	case aggregation.OpAvg:
		return &avgBuffer{}, nil
	case aggregation.OpMin:
		return &extremeBuffer{min: true}, nil
	case aggregation.OpMax:
		return &extremeBuffer{}, nil
	case aggregation.OpStdDevPop:
		return &momentsBuffer{std: true}, nil
	case aggregation.OpStdDevSamp:
		return &momentsBuffer{std: true, sample: true}, nil
	case aggregation.OpVarPop:
		return &momentsBuffer{}, nil
	case aggregation.OpVarSamp:
		return &momentsBuffer{sample: true}, nil
	}
	return nil, orm.ErrSpatialNotSupported.New(agg.AggregateName(), "the in-memory backend")
}

// countBuffer counts non-null inputs.
type countBuffer struct {
	n int64
}

func (b *countBuffer) update(v interface{}) error {
	if v != nil {
		b.n++
	}
	return nil
}

func (b *countBuffer) result() (interface{}, error) { return b.n, nil }

// countDistinctBuffer counts distinct non-null inputs by hashing them.
type countDistinctBuffer struct {
	seen map[uint64]struct{}
}

func (b *countDistinctBuffer) update(v interface{}) error {
	if v == nil {
		return nil
	}
	hash, err := hashstructure.Hash(v, nil)
	if err != nil {
		return err
	}
	b.seen[hash] = struct{}{}
	return nil
}

func (b *countDistinctBuffer) result() (interface{}, error) {
	return int64(len(b.seen)), nil
}

// sumBuffer totals non-null inputs, in decimals when the output type asks
// for it, as floats otherwise. The result is cast back to the output type.
type sumBuffer struct {
	source *orm.FieldType
	f      float64
	d      decimal.Decimal
	seen   bool
}

func (b *sumBuffer) update(v interface{}) error {
	if v == nil {
		return nil
	}
	b.seen = true
	if b.source == orm.Decimal {
		d, err := toDecimal(v)
		if err != nil {
			return err
		}
		b.d = b.d.Add(d)
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return err
	}
	b.f += f
	return nil
}

func (b *sumBuffer) result() (interface{}, error) {
	if !b.seen {
		return nil, nil
	}
	if b.source == orm.Decimal {
		return b.d, nil
	}
	if b.source != nil && b.source.Subtype(orm.Integer) {
		return int64(b.f), nil
	}
	return b.f, nil
}

// avgBuffer averages non-null inputs as floats.
type avgBuffer struct {
	sum float64
	n   int64
}

func (b *avgBuffer) update(v interface{}) error {
	if v == nil {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return err
	}
	b.sum += f
	b.n++
	return nil
}

func (b *avgBuffer) result() (interface{}, error) {
	if b.n == 0 {
		return nil, nil
	}
	return b.sum / float64(b.n), nil
}

// extremeBuffer keeps the smallest or largest non-null input.
type extremeBuffer struct {
	min  bool
	best interface{}
}

func (b *extremeBuffer) update(v interface{}) error {
	if v == nil {
		return nil
	}
	if b.best == nil {
		b.best = v
		return nil
	}
	cmp, err := compareValues(v, b.best)
	if err != nil {
		return err
	}
	if (b.min && cmp < 0) || (!b.min && cmp > 0) {
		b.best = v
	}
	return nil
}

func (b *extremeBuffer) result() (interface{}, error) { return b.best, nil }

// momentsBuffer runs Welford's recurrence for variance and standard
// deviation, population or sample.
type momentsBuffer struct {
	std    bool
	sample bool
	n      int64
	mean   float64
	m2     float64
}

func (b *momentsBuffer) update(v interface{}) error {
	if v == nil {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return err
	}
	b.n++
	delta := f - b.mean
	b.mean += delta / float64(b.n)
	b.m2 += delta * (f - b.mean)
	return nil
}

func (b *momentsBuffer) result() (interface{}, error) {
	if b.n == 0 || (b.sample && b.n < 2) {
		return nil, nil
	}
	denom := float64(b.n)
	if b.sample {
		denom = float64(b.n - 1)
	}
	variance := b.m2 / denom
	if b.std {
		return math.Sqrt(variance), nil
	}
	return variance, nil
}

// evalExpr evaluates an expression against one row. Null propagates the
// way SQL has it: any null operand nulls the result.
func evalExpr(m *Model, e orm.Expression, row Row) (interface{}, error) {
	switch e := e.(type) {
	case *expression.Field:
		name := e.Name()
		if strings.Contains(name, expression.PathSeparator) {
			return nil, orm.ErrJoinNotPermitted.New(name)
		}
		if _, ok := m.Field(name); !ok {
			choices := m.Choices()
			return nil, orm.ErrUnknownField.New(
				name, strings.Join(choices, ", "), similartext.Find(choices, name))
		}
		return row[name], nil
	case *expression.Value:
		return e.Value(), nil
	case *expression.Star:
		return int64(1), nil
	case *expression.Node:
		return evalNode(m, e, row)
	case *expression.DateOffset:
		v, err := evalExpr(m, e.Child(), row)
		if err != nil || v == nil {
			return nil, err
		}
		t, err := cast.ToTimeE(v)
		if err != nil {
			return nil, err
		}
		if e.Connector() == orm.Sub {
			return t.Add(-e.Offset()), nil
		}
		return t.Add(e.Offset()), nil
	case *expression.If:
		if e.Predicate() == nil {
			return nil, orm.ErrNotResolved.New(e)
		}
		match, err := matchPredicate(m, e.Predicate(), row)
		if err != nil {
			return nil, err
		}
		branches := e.Children()
		if match {
			return evalExpr(m, branches[0], row)
		}
		return evalExpr(m, branches[1], row)
	case *expression.Func:
		return evalFunc(m, e, row)
	default:
		return nil, orm.ErrInvalidOperand.New(e)
	}
}

func evalNode(m *Model, n *expression.Node, row Row) (interface{}, error) {
	children := n.Children()
	if len(children) == 0 {
		return nil, nil
	}
	acc, err := evalExpr(m, children[0], row)
	if err != nil {
		return nil, err
	}
	for _, child := range children[1:] {
		if acc == nil {
			return nil, nil
		}
		v, err := evalExpr(m, child, row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		acc, err = applyConnector(n.Connector(), acc, v)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func evalFunc(m *Model, f *expression.Func, row Row) (interface{}, error) {
	switch strings.ToUpper(f.FuncName()) {
	case "COALESCE":
		for _, arg := range f.Children() {
			v, err := evalExpr(m, arg, row)
			if err != nil {
				return nil, err
			}
			if v != nil {
				return v, nil
			}
		}
		return nil, nil
	case "LOWER", "UPPER":
		v, err := evalExpr(m, f.Children()[0], row)
		if err != nil || v == nil {
			return nil, err
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		if strings.ToUpper(f.FuncName()) == "LOWER" {
			return strings.ToLower(s), nil
		}
		return strings.ToUpper(s), nil
	}
	return nil, orm.ErrUnsupportedFunction.New(f.FuncName())
}

// applyConnector folds two non-null operands under a connector. Division
// by zero follows SQL and yields null.
func applyConnector(conn orm.Connector, a, b interface{}) (interface{}, error) {
	if isDecimal(a) || isDecimal(b) {
		return applyDecimal(conn, a, b)
	}
	switch conn {
	case orm.BitAnd, orm.BitOr:
		ia, err := cast.ToInt64E(a)
		if err != nil {
			return nil, err
		}
		ib, err := cast.ToInt64E(b)
		if err != nil {
			return nil, err
		}
		if conn == orm.BitAnd {
			return ia & ib, nil
		}
		return ia | ib, nil
	}
	fa, err := cast.ToFloat64E(a)
	if err != nil {
		return nil, err
	}
	fb, err := cast.ToFloat64E(b)
	if err != nil {
		return nil, err
	}
	switch conn {
	case orm.Add:
		return fa + fb, nil
	case orm.Sub:
		return fa - fb, nil
	case orm.Mul:
		return fa * fb, nil
	case orm.Div:
		if fb == 0 {
			return nil, nil
		}
		return fa / fb, nil
	case orm.Pow:
		return math.Pow(fa, fb), nil
	case orm.Mod:
		if fb == 0 {
			return nil, nil
		}
		return math.Mod(fa, fb), nil
	}
	return nil, orm.ErrUnsupportedOperator.New(conn, "unknown connector")
}

func applyDecimal(conn orm.Connector, a, b interface{}) (interface{}, error) {
	da, err := toDecimal(a)
	if err != nil {
		return nil, err
	}
	db, err := toDecimal(b)
	if err != nil {
		return nil, err
	}
	switch conn {
	case orm.Add:
		return da.Add(db), nil
	case orm.Sub:
		return da.Sub(db), nil
	case orm.Mul:
		return da.Mul(db), nil
	case orm.Div:
		if db.IsZero() {
			return nil, nil
		}
		return da.Div(db), nil
	case orm.Mod:
		if db.IsZero() {
			return nil, nil
		}
		return da.Mod(db), nil
	case orm.Pow:
		return da.Pow(db), nil
	}
	return nil, orm.ErrUnsupportedOperator.New(conn, "not defined for decimals")
}

func isDecimal(v interface{}) bool {
	_, ok := v.(decimal.Decimal)
	return ok
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch v := v.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	}
	if i, err := cast.ToInt64E(v); err == nil {
		return decimal.NewFromInt(i), nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromFloat(f), nil
}

// compareValues orders two non-null scalars: decimals and numbers
// numerically, then times, then strings.
func compareValues(a, b interface{}) (int, error) {
	if isDecimal(a) || isDecimal(b) {
		da, err := toDecimal(a)
		if err != nil {
			return 0, err
		}
		db, err := toDecimal(b)
		if err != nil {
			return 0, err
		}
		return da.Cmp(db), nil
	}
	if fa, err := cast.ToFloat64E(a); err == nil {
		if fb, err := cast.ToFloat64E(b); err == nil {
			switch {
			case fa < fb:
				return -1, nil
			case fa > fb:
				return 1, nil
			}
			return 0, nil
		}
	}
	if _, ok := a.(time.Time); ok {
		ta, err := cast.ToTimeE(a)
		if err != nil {
			return 0, err
		}
		tb, err := cast.ToTimeE(b)
		if err != nil {
			return 0, err
		}
		switch {
		case ta.Before(tb):
			return -1, nil
		case ta.After(tb):
			return 1, nil
		}
		return 0, nil
	}
	sa, err := cast.ToStringE(a)
	if err != nil {
		return 0, err
	}
	sb, err := cast.ToStringE(b)
	if err != nil {
		return 0, err
	}
	return strings.Compare(sa, sb), nil
}

// matchPredicate evaluates a bound predicate against a row.
func matchPredicate(m *Model, p orm.Predicate, row Row) (bool, error) {
	switch p := p.(type) {
	case *boundCond:
		return p.Matches(m, row)
	case negation:
		match, err := matchPredicate(m, p.pred, row)
		if err != nil {
			return false, err
		}
		return !match, nil
	case interface{ Predicates() []orm.Predicate }:
		for _, inner := range p.Predicates() {
			match, err := matchPredicate(m, inner, row)
			if err != nil || !match {
				return false, err
			}
		}
		return true, nil
	}
	return false, orm.ErrInvalidOperand.New(p)
}

// Matches evaluates the comparison against a row.
func (p *boundCond) Matches(m *Model, row Row) (bool, error) {
	if strings.Contains(p.field, expression.PathSeparator) {
		return false, orm.ErrJoinNotPermitted.New(p.field)
	}
	rowVal := row[p.field]
	target := p.value
	if p.valueExpr != nil {
		v, err := evalExpr(m, p.valueExpr, row)
		if err != nil {
			return false, err
		}
		target = v
	}
	if rowVal == nil || target == nil {
		eq := rowVal == nil && target == nil
		switch p.op {
		case "=":
			return eq, nil
		case "!=":
			return !eq, nil
		}
		return false, nil
	}
	cmp, err := compareValues(rowVal, target)
	if err != nil {
		return false, err
	}
	switch p.op {
	case "=":
		return cmp == 0, nil
	case "!=":
		return cmp != 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	}
	return false, orm.ErrUnsupportedOperator.New(p.op, "unknown predicate operator")
}
