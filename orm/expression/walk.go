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
	"github.com/quarrydb/quarry/orm"
)

// Visitor visits expression nodes.
type Visitor interface {
	// Visit is invoked for each node encountered by Walk. If the result
	// Visitor is not nil, Walk visits the node's children with it, followed
	// by a call of Visit(nil).
	Visit(e orm.Expression) Visitor
}

// Walk traverses an expression tree in depth-first order, descending into
// children and, for aggregates, into the wrapped expression.
func Walk(v Visitor, e orm.Expression) {
	if v = v.Visit(e); v == nil {
		return
	}

	for _, child := range e.Children() {
		Walk(v, child)
	}
	if agg, ok := e.(orm.Aggregation); ok {
		if wrapped := agg.WrappedExpression(); wrapped != nil {
			Walk(v, wrapped)
		}
	}

	v.Visit(nil)
}

type inspector func(orm.Expression) bool

func (f inspector) Visit(e orm.Expression) Visitor {
	if f(e) {
		return f
	}
	return nil
}

// Inspect traverses the tree in depth-first order calling f on every node,
// descending only while f returns true.
func Inspect(e orm.Expression, f func(orm.Expression) bool) {
	Walk(inspector(f), e)
}
