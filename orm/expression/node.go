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
	"time"

	"github.com/quarrydb/quarry/orm"
)

// Node is a combined expression: ordered children joined by a connector.
// It is also the tree primitive the other variants build on, so a Node may
// carry zero or one child with no connector at all.
type Node struct {
	children  []orm.Expression
	connector orm.Connector
	negated   bool
}

var _ orm.Expression = (*Node)(nil)

// NewNode builds a tree node over children. More than one child requires a
// connector.
func NewNode(children []orm.Expression, connector orm.Connector, negated bool) (*Node, error) {
	if len(children) > 1 && connector == orm.NoConnector {
		return nil, orm.ErrInvalidTree.New(len(children))
	}
	return &Node{children: children, connector: connector, negated: negated}, nil
}

func (n *Node) Children() []orm.Expression { return n.children }

func (n *Node) Connector() orm.Connector { return n.connector }

func (n *Node) Negated() bool { return n.negated }

func (n *Node) Resolved() bool {
	for _, c := range n.children {
		if !c.Resolved() {
			return false
		}
	}
	return true
}

func (n *Node) Source() *orm.FieldType {
	if sources := n.Sources(); len(sources) > 0 {
		return sources[0]
	}
	return nil
}

func (n *Node) Sources() []*orm.FieldType {
	var sources []*orm.FieldType
	for _, c := range n.children {
		sources = append(sources, c.Sources()...)
	}
	return sources
}

func (n *Node) Resolve(ctx *orm.Context, q orm.Query, allowJoins bool, reuse orm.AliasSet) error {
	for _, c := range n.children {
		if err := c.Resolve(ctx, q, allowJoins, reuse); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) Relabeled(change map[string]string) orm.Expression {
	children := make([]orm.Expression, len(n.children))
	for i, c := range n.children {
		children[i] = c.Relabeled(change)
	}
	return &Node{children: children, connector: n.connector, negated: n.negated}
}

func (n *Node) ContainsAggregate(annotations map[string]orm.Annotation) bool {
	for _, c := range n.children {
		if c.ContainsAggregate(annotations) {
			return true
		}
	}
	return false
}

// Render joins the rendered children with the dialect's form of the
// connector. A child that is itself a combination of several operands is
// parenthesized; the node's own top level is left bare for its parent to
// wrap if needed.
func (n *Node) Render(ctx *orm.Context, c orm.Compiler) (string, []interface{}, error) {
	parts := make([]string, 0, len(n.children))
	var params []interface{}
	for _, child := range n.children {
		sql, childParams, err := c.Compile(ctx, child)
		if err != nil {
			return "", nil, err
		}
		if len(child.Children()) > 1 {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, childParams...)
	}
	switch len(parts) {
	case 0:
		return "", nil, nil
	case 1:
		return parts[0], params, nil
	}
	sql, err := c.Dialect().CombineExpression(n.connector, parts)
	if err != nil {
		return "", nil, err
	}
	return sql, params, nil
}

func (n *Node) String() string {
	parts := make([]string, len(n.children))
	for i, c := range n.children {
		parts[i] = fmt.Sprintf("%s", c)
	}
	return fmt.Sprintf("(%s: %s)", n.connector, strings.Join(parts, ", "))
}

// AsExpression promotes a plain Go value into an expression operand:
// expressions pass through, column handles become column references and
// anything else becomes a bound parameter.
func AsExpression(v interface{}) orm.Expression {
	switch v := v.(type) {
	case orm.Expression:
		return v
	case orm.Columnar:
		return NewColumn(v)
	default:
		return NewValue(v)
	}
}

// Combine joins left with another operand under an arithmetic connector.
// Durations turn the combination into a date offset. reversed swaps the
// operand order, except for durations, which always offset the expression.
// Bitwise connectors are rejected here; use BitAnd and BitOr.
func Combine(left orm.Expression, other interface{}, connector orm.Connector, reversed bool) (orm.Expression, error) {
	if connector.Bitwise() {
		return nil, orm.ErrUnsupportedOperator.New(connector, "use the BitAnd and BitOr constructors for bitwise combination")
	}
	if !connector.Arithmetic() {
		return nil, orm.ErrUnsupportedOperator.New(connector, "not an arithmetic connector")
	}
	return combine(left, other, connector, reversed)
}

func combine(left orm.Expression, other interface{}, connector orm.Connector, reversed bool) (orm.Expression, error) {
	if d, ok := other.(time.Duration); ok {
		return NewDateOffset(left, connector, d)
	}
	right := AsExpression(other)
	if reversed {
		left, right = right, left
	}
	return NewNode([]orm.Expression{left, right}, connector, false)
}

func Add(left orm.Expression, other interface{}) (orm.Expression, error) {
	return Combine(left, other, orm.Add, false)
}

func Sub(left orm.Expression, other interface{}) (orm.Expression, error) {
	return Combine(left, other, orm.Sub, false)
}

func Mul(left orm.Expression, other interface{}) (orm.Expression, error) {
	return Combine(left, other, orm.Mul, false)
}

func Div(left orm.Expression, other interface{}) (orm.Expression, error) {
	return Combine(left, other, orm.Div, false)
}

func Pow(left orm.Expression, other interface{}) (orm.Expression, error) {
	return Combine(left, other, orm.Pow, false)
}

func Mod(left orm.Expression, other interface{}) (orm.Expression, error) {
	return Combine(left, other, orm.Mod, false)
}

// BitAnd combines under the bitwise AND connector, which Combine refuses.
func BitAnd(left orm.Expression, other interface{}) (orm.Expression, error) {
	return combine(left, other, orm.BitAnd, false)
}

// BitOr combines under the bitwise OR connector, which Combine refuses.
func BitOr(left orm.Expression, other interface{}) (orm.Expression, error) {
	return combine(left, other, orm.BitOr, false)
}
