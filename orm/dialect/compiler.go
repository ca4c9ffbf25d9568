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

package dialect

import (
	"reflect"
	"sync"

	"github.com/quarrydb/quarry/orm"
)

// OverrideFunc replaces the rendering of one node type on one vendor. It
// receives the compiler so it can render child nodes the normal way.
type OverrideFunc func(ctx *orm.Context, c orm.Compiler, r orm.Renderable) (string, []interface{}, error)

type overrideKey struct {
	vendor string
	node   reflect.Type
}

var (
	overrideMu sync.RWMutex
	overrides  = map[overrideKey]OverrideFunc{}
)

// RegisterOverride installs a vendor-specific rendering for the node type
// of the prototype, replacing any previous one. A typed nil pointer works
// as a prototype: RegisterOverride("mysql", (*aggregation.Aggregate)(nil), fn).
func RegisterOverride(vendor string, prototype orm.Renderable, fn OverrideFunc) {
	overrideMu.Lock()
	defer overrideMu.Unlock()
	overrides[overrideKey{vendor, reflect.TypeOf(prototype)}] = fn
}

// ResetOverride removes a previously registered rendering.
func ResetOverride(vendor string, prototype orm.Renderable) {
	overrideMu.Lock()
	defer overrideMu.Unlock()
	delete(overrides, overrideKey{vendor, reflect.TypeOf(prototype)})
}

// Override looks up the rendering override for a node on a vendor, nil if
// none is registered.
func Override(vendor string, node orm.Renderable) OverrideFunc {
	overrideMu.RLock()
	defer overrideMu.RUnlock()
	return overrides[overrideKey{vendor, reflect.TypeOf(node)}]
}

type compiler struct {
	dialect orm.Dialect
}

var _ orm.Compiler = (*compiler)(nil)

// NewCompiler builds a compiler rendering through the given dialect.
func NewCompiler(d orm.Dialect) orm.Compiler {
	return &compiler{dialect: d}
}

func (c *compiler) Dialect() orm.Dialect { return c.dialect }

func (c *compiler) Quote(identifier string) string {
	return c.dialect.QuoteIdentifier(identifier)
}

// Compile renders a node, letting a registered vendor override take it
// over first. Parents render children through Compile, never through the
// child's Render, so overrides see every node in the tree.
func (c *compiler) Compile(ctx *orm.Context, r orm.Renderable) (string, []interface{}, error) {
	if fn := Override(c.dialect.Vendor(), r); fn != nil {
		return fn(ctx, c, r)
	}
	return r.Render(ctx, c)
}
