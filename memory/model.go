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

// Package memory implements the query metadata and execution collaborators
// in memory, for tests and embedded use.
package memory

import (
	"golang.org/x/exp/slices"

	"github.com/quarrydb/quarry/orm"
)

// Field describes one column of a model.
type Field struct {
	Name string
	Type *orm.FieldType
	// Column is the database column name; empty means same as Name.
	Column string
}

// Relation links a model to another through a pair of join columns.
type Relation struct {
	Name       string
	Target     *Model
	FromColumn string
	ToColumn   string
}

// Model is the metadata of one table: ordered fields and named relations.
type Model struct {
	name      string
	table     string
	fields    []Field
	fieldIdx  map[string]int
	relations map[string]Relation
}

// NewModel builds a model over a database table.
func NewModel(name, table string, fields ...Field) *Model {
	m := &Model{
		name:      name,
		table:     table,
		fieldIdx:  make(map[string]int, len(fields)),
		relations: map[string]Relation{},
	}
	for _, f := range fields {
		if f.Column == "" {
			f.Column = f.Name
		}
		m.fieldIdx[f.Name] = len(m.fields)
		m.fields = append(m.fields, f)
	}
	return m
}

func (m *Model) Name() string { return m.name }

func (m *Model) Table() string { return m.table }

func (m *Model) Fields() []Field { return m.fields }

// Field looks a field up by name.
func (m *Model) Field(name string) (Field, bool) {
	idx, ok := m.fieldIdx[name]
	if !ok {
		return Field{}, false
	}
	return m.fields[idx], true
}

// Relate registers a named relation to another model. fromColumn is the
// joining column on this model, toColumn its counterpart on the target.
func (m *Model) Relate(name string, target *Model, fromColumn, toColumn string) *Model {
	m.relations[name] = Relation{
		Name:       name,
		Target:     target,
		FromColumn: fromColumn,
		ToColumn:   toColumn,
	}
	return m
}

// Relation looks a relation up by name.
func (m *Model) Relation(name string) (Relation, bool) {
	r, ok := m.relations[name]
	return r, ok
}

// Choices lists everything a field path segment may name on this model,
// sorted for stable error messages.
func (m *Model) Choices() []string {
	names := make([]string, 0, len(m.fields)+len(m.relations))
	for _, f := range m.fields {
		names = append(names, f.Name)
	}
	for name := range m.relations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
