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

package memory

import (
	"strings"

	"github.com/quarrydb/quarry/internal/similartext"
	"github.com/quarrydb/quarry/orm"
)

// Row holds one row's values keyed by field name. Absent fields read as
// null.
type Row map[string]interface{}

// Table stores a model's rows in memory.
type Table struct {
	model *Model
	rows  []Row
}

// NewTable builds an empty table for a model.
func NewTable(m *Model) *Table {
	return &Table{model: m}
}

func (t *Table) Model() *Model { return t.model }

func (t *Table) Rows() []Row { return t.rows }

// Insert appends rows, rejecting keys that name no model field.
func (t *Table) Insert(rows ...Row) error {
	for _, row := range rows {
		for key := range row {
			if _, ok := t.model.Field(key); !ok {
				choices := t.model.Choices()
				return orm.ErrUnknownField.New(
					key, strings.Join(choices, ", "), similartext.Find(choices, key))
			}
		}
		t.rows = append(t.rows, row)
	}
	return nil
}
