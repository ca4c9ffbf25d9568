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

// Value is a literal operand. It renders as a placeholder and contributes
// exactly one bound parameter, never inlined SQL text.
type Value struct {
	v      interface{}
	source *orm.FieldType
}

var _ orm.Expression = (*Value)(nil)

// NewValue wraps a plain Go value.
func NewValue(v interface{}) *Value { return &Value{v: v} }

// NewTypedValue wraps a value that is known to carry a field type, so it
// can participate in aggregate type inference.
func NewTypedValue(v interface{}, source *orm.FieldType) *Value {
	return &Value{v: v, source: source}
}

// Value returns the wrapped Go value.
func (v *Value) Value() interface{} { return v.v }

func (v *Value) Children() []orm.Expression { return nil }

func (v *Value) Connector() orm.Connector { return orm.NoConnector }

func (v *Value) Negated() bool { return false }

func (v *Value) Resolved() bool { return true }

func (v *Value) Source() *orm.FieldType { return v.source }

func (v *Value) Sources() []*orm.FieldType {
	if v.source == nil {
		return nil
	}
	return []*orm.FieldType{v.source}
}

func (v *Value) Resolve(ctx *orm.Context, q orm.Query, allowJoins bool, reuse orm.AliasSet) error {
	return nil
}

func (v *Value) Relabeled(change map[string]string) orm.Expression {
	nv := *v
	return &nv
}

func (v *Value) ContainsAggregate(annotations map[string]orm.Annotation) bool { return false }

func (v *Value) Render(ctx *orm.Context, c orm.Compiler) (string, []interface{}, error) {
	return "?", []interface{}{v.v}, nil
}

func (v *Value) String() string { return fmt.Sprintf("%v", v.v) }

// Star is the count-everything operand of COUNT(*). It renders literally,
// binds no parameter and always carries the ordinal aggregate type.
type Star struct{}

var _ orm.Expression = (*Star)(nil)

func NewStar() *Star { return &Star{} }

func (*Star) Children() []orm.Expression { return nil }

func (*Star) Connector() orm.Connector { return orm.NoConnector }

func (*Star) Negated() bool { return false }

func (*Star) Resolved() bool { return true }

func (*Star) Source() *orm.FieldType { return orm.OrdinalAggregateType }

func (*Star) Sources() []*orm.FieldType { return []*orm.FieldType{orm.OrdinalAggregateType} }

func (*Star) Resolve(ctx *orm.Context, q orm.Query, allowJoins bool, reuse orm.AliasSet) error {
	return nil
}

func (s *Star) Relabeled(change map[string]string) orm.Expression { return s }

func (*Star) ContainsAggregate(annotations map[string]orm.Annotation) bool { return false }

func (*Star) Render(ctx *orm.Context, c orm.Compiler) (string, []interface{}, error) {
	return "*", nil, nil
}

func (*Star) String() string { return "*" }
