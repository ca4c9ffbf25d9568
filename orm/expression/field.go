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
	"strings"

	"github.com/quarrydb/quarry/orm"
)

// PathSeparator separates the relation segments of a field reference, as in
// "author.age".
const PathSeparator = "."

// Field is a reference to a model field by name, possibly across relations.
// It resolves to a concrete column and type against a query.
type Field struct {
	name   string
	col    orm.Columnar
	source *orm.FieldType
}

var _ orm.Expression = (*Field)(nil)

// NewField builds an unresolved reference to the named field.
func NewField(name string) *Field { return &Field{name: name} }

// F is shorthand for NewField, for expression-heavy call sites.
func F(name string) *Field { return NewField(name) }

func (f *Field) Name() string { return f.name }

// Column returns the bound column, nil before resolution.
func (f *Field) Column() orm.Columnar { return f.col }

// Bind attaches a column and source type directly, bypassing path
// resolution. Aggregates use it to point a reference at an annotation
// alias.
func (f *Field) Bind(col orm.Columnar, source *orm.FieldType) {
	f.col = col
	f.source = source
}

func (f *Field) Children() []orm.Expression { return nil }

func (f *Field) Connector() orm.Connector { return orm.NoConnector }

func (f *Field) Negated() bool { return false }

func (f *Field) Resolved() bool { return f.col != nil }

func (f *Field) Source() *orm.FieldType { return f.source }

func (f *Field) Sources() []*orm.FieldType {
	if f.source == nil {
		return nil
	}
	return []*orm.FieldType{f.source}
}

// Resolve binds the reference. A name matching an annotation alias copies
// the annotation's column and type, unless that annotation is an aggregate,
// which plain references may not name. Anything else is resolved as a field
// path through the query.
func (f *Field) Resolve(ctx *orm.Context, q orm.Query, allowJoins bool, reuse orm.AliasSet) error {
	if !allowJoins && strings.Contains(f.name, PathSeparator) {
		return orm.ErrJoinNotPermitted.New(f.name)
	}
	if ann, ok := q.Annotations()[f.name]; ok {
		if ann.IsAggregate() {
			return orm.ErrAggregateReference.New(f.name)
		}
		col := ann.Column()
		if col == nil {
			col = orm.DeferredColumn{Alias: f.name}
		}
		f.col = col
		f.source = ann.OutputType()
		return nil
	}
	res, err := q.ResolveFieldPath(ctx, strings.Split(f.name, PathSeparator), reuse, allowJoins)
	if err != nil {
		return err
	}
	f.col = res.Column
	f.source = res.Source
	return nil
}

func (f *Field) Relabeled(change map[string]string) orm.Expression {
	nf := *f
	if f.col != nil {
		nf.col = f.col.RelabeledColumn(change)
	}
	return &nf
}

func (f *Field) ContainsAggregate(annotations map[string]orm.Annotation) bool {
	if ann, ok := annotations[f.name]; ok {
		return ann.IsAggregate()
	}
	return false
}

func (f *Field) Render(ctx *orm.Context, c orm.Compiler) (string, []interface{}, error) {
	if f.col == nil {
		return "", nil, orm.ErrNotResolved.New(f.name)
	}
	return f.col.ColumnSQL(ctx, c)
}

func (f *Field) String() string { return "F(" + f.name + ")" }
