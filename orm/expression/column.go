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

	"github.com/quarrydb/quarry/orm"
)

// Column adapts an externally-bound column handle into an expression, so
// callers that already hold a resolved column can drop it straight into a
// tree.
type Column struct {
	col    orm.Columnar
	source *orm.FieldType
}

var _ orm.Expression = (*Column)(nil)

func NewColumn(col orm.Columnar) *Column { return &Column{col: col} }

// NewTypedColumn wraps a column handle whose field type is known.
func NewTypedColumn(col orm.Columnar, source *orm.FieldType) *Column {
	return &Column{col: col, source: source}
}

// Column returns the wrapped handle.
func (c *Column) Column() orm.Columnar { return c.col }

func (c *Column) Children() []orm.Expression { return nil }

func (c *Column) Connector() orm.Connector { return orm.NoConnector }

func (c *Column) Negated() bool { return false }

func (c *Column) Resolved() bool { return true }

func (c *Column) Source() *orm.FieldType { return c.source }

func (c *Column) Sources() []*orm.FieldType {
	if c.source == nil {
		return nil
	}
	return []*orm.FieldType{c.source}
}

func (c *Column) Resolve(ctx *orm.Context, q orm.Query, allowJoins bool, reuse orm.AliasSet) error {
	return nil
}

func (c *Column) Relabeled(change map[string]string) orm.Expression {
	nc := *c
	nc.col = c.col.RelabeledColumn(change)
	return &nc
}

func (c *Column) ContainsAggregate(annotations map[string]orm.Annotation) bool { return false }

func (c *Column) Render(ctx *orm.Context, cpl orm.Compiler) (string, []interface{}, error) {
	return c.col.ColumnSQL(ctx, cpl)
}

func (c *Column) String() string { return fmt.Sprintf("%s", c.col) }
