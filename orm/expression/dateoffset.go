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
	"time"

	"github.com/quarrydb/quarry/orm"
)

// DateOffset shifts a date-valued expression by a fixed duration. Only
// addition and subtraction make sense for durations; the dialect decides
// how the interval is spelled.
type DateOffset struct {
	child     orm.Expression
	connector orm.Connector
	offset    time.Duration
}

var _ orm.Expression = (*DateOffset)(nil)

// NewDateOffset builds an offset node. Connectors other than Add and Sub
// are rejected.
func NewDateOffset(child orm.Expression, connector orm.Connector, offset time.Duration) (*DateOffset, error) {
	if connector != orm.Add && connector != orm.Sub {
		return nil, orm.ErrUnsupportedOperator.New(connector, "date offsets support addition and subtraction only")
	}
	return &DateOffset{child: child, connector: connector, offset: offset}, nil
}

// Child returns the expression being offset.
func (d *DateOffset) Child() orm.Expression { return d.child }

// Offset returns the duration applied to the child.
func (d *DateOffset) Offset() time.Duration { return d.offset }

func (d *DateOffset) Children() []orm.Expression { return []orm.Expression{d.child} }

func (d *DateOffset) Connector() orm.Connector { return d.connector }

func (d *DateOffset) Negated() bool { return false }

func (d *DateOffset) Resolved() bool { return d.child.Resolved() }

func (d *DateOffset) Source() *orm.FieldType {
	if sources := d.Sources(); len(sources) > 0 {
		return sources[0]
	}
	return nil
}

func (d *DateOffset) Sources() []*orm.FieldType { return d.child.Sources() }

func (d *DateOffset) Resolve(ctx *orm.Context, q orm.Query, allowJoins bool, reuse orm.AliasSet) error {
	return d.child.Resolve(ctx, q, allowJoins, reuse)
}

func (d *DateOffset) Relabeled(change map[string]string) orm.Expression {
	return &DateOffset{
		child:     d.child.Relabeled(change),
		connector: d.connector,
		offset:    d.offset,
	}
}

func (d *DateOffset) ContainsAggregate(annotations map[string]orm.Annotation) bool {
	return d.child.ContainsAggregate(annotations)
}

// Render emits the dialect's interval arithmetic. A zero offset is a no-op
// and renders the bare child.
func (d *DateOffset) Render(ctx *orm.Context, c orm.Compiler) (string, []interface{}, error) {
	if d.offset == 0 {
		return c.Compile(ctx, d.child)
	}
	childSQL, params, err := c.Compile(ctx, d.child)
	if err != nil {
		return "", nil, err
	}
	if len(d.child.Children()) > 1 {
		childSQL = "(" + childSQL + ")"
	}
	sql, err := c.Dialect().DateIntervalSQL(childSQL, d.connector, d.offset)
	if err != nil {
		return "", nil, err
	}
	return sql, params, nil
}

func (d *DateOffset) String() string {
	return fmt.Sprintf("(%s %s %s)", d.child, d.connector, d.offset)
}
