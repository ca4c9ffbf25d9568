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

// TableColumn is a column bound to a concrete table alias.
type TableColumn struct {
	Table  string
	Column string
}

var _ Columnar = TableColumn{}

func (c TableColumn) ColumnSQL(ctx *Context, cpl Compiler) (string, []interface{}, error) {
	return cpl.Quote(c.Table) + "." + cpl.Quote(c.Column), nil, nil
}

func (c TableColumn) RelabeledColumn(change map[string]string) Columnar {
	if name, ok := change[c.Table]; ok {
		c.Table = name
	}
	return c
}

func (c TableColumn) String() string { return c.Table + "." + c.Column }

// DeferredColumn stands in for a column that will only exist once the
// enclosing query is promoted to a subquery: it renders the bare annotation
// alias the subquery projects. Relabeling leaves it untouched since the
// alias is not a table reference.
type DeferredColumn struct {
	Alias string
}

var _ Columnar = DeferredColumn{}

func (c DeferredColumn) ColumnSQL(ctx *Context, cpl Compiler) (string, []interface{}, error) {
	return cpl.Quote(c.Alias), nil, nil
}

func (c DeferredColumn) RelabeledColumn(change map[string]string) Columnar { return c }

func (c DeferredColumn) String() string { return c.Alias }
