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

// Func renders a named SQL function over its arguments, for the scalar
// functions every backend spells the same way. Vendor-specific spellings go
// through a render override instead.
type Func struct {
	name   string
	args   []orm.Expression
	source *orm.FieldType
}

var _ orm.Expression = (*Func)(nil)

// NewFunc builds a function call. Arguments are promoted like any other
// expression operand.
func NewFunc(name string, args ...interface{}) *Func {
	exprs := make([]orm.Expression, len(args))
	for i, a := range args {
		exprs[i] = AsExpression(a)
	}
	return &Func{name: name, args: exprs}
}

// Coalesce returns the first non-null of its arguments.
func Coalesce(args ...interface{}) *Func { return NewFunc("COALESCE", args...) }

// Lower folds a text argument to lower case.
func Lower(arg interface{}) *Func { return NewFunc("LOWER", arg) }

// Upper folds a text argument to upper case.
func Upper(arg interface{}) *Func { return NewFunc("UPPER", arg) }

// WithOutputType returns a copy carrying an explicit result type.
func (f *Func) WithOutputType(t *orm.FieldType) *Func {
	nf := *f
	nf.source = t
	return &nf
}

// FuncName returns the SQL function name.
func (f *Func) FuncName() string { return f.name }

func (f *Func) Children() []orm.Expression { return f.args }

func (f *Func) Connector() orm.Connector { return orm.NoConnector }

func (f *Func) Negated() bool { return false }

func (f *Func) Resolved() bool {
	for _, a := range f.args {
		if !a.Resolved() {
			return false
		}
	}
	return true
}

func (f *Func) Source() *orm.FieldType {
	if f.source != nil {
		return f.source
	}
	if sources := f.Sources(); len(sources) > 0 {
		return sources[0]
	}
	return nil
}

func (f *Func) Sources() []*orm.FieldType {
	if f.source != nil {
		return []*orm.FieldType{f.source}
	}
	var sources []*orm.FieldType
	for _, a := range f.args {
		sources = append(sources, a.Sources()...)
	}
	return sources
}

func (f *Func) Resolve(ctx *orm.Context, q orm.Query, allowJoins bool, reuse orm.AliasSet) error {
	for _, a := range f.args {
		if err := a.Resolve(ctx, q, allowJoins, reuse); err != nil {
			return err
		}
	}
	return nil
}

func (f *Func) Relabeled(change map[string]string) orm.Expression {
	args := make([]orm.Expression, len(f.args))
	for i, a := range f.args {
		args[i] = a.Relabeled(change)
	}
	return &Func{name: f.name, args: args, source: f.source}
}

func (f *Func) ContainsAggregate(annotations map[string]orm.Annotation) bool {
	for _, a := range f.args {
		if a.ContainsAggregate(annotations) {
			return true
		}
	}
	return false
}

func (f *Func) Render(ctx *orm.Context, c orm.Compiler) (string, []interface{}, error) {
	parts := make([]string, 0, len(f.args))
	var params []interface{}
	for _, a := range f.args {
		sql, argParams, err := c.Compile(ctx, a)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, argParams...)
	}
	return f.name + "(" + strings.Join(parts, ", ") + ")", params, nil
}

func (f *Func) String() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = fmt.Sprintf("%s", a)
	}
	return f.name + "(" + strings.Join(parts, ", ") + ")"
}
