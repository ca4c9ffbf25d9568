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

// FieldType identifies the database type a column or expression carries.
// Types form a lineage: BigInteger is a subtype of Integer, DateTime of
// Date, Point of Geometry. Instances are process-wide values compared by
// identity; never construct new ones at runtime.
type FieldType struct {
	name   string
	parent *FieldType
}

var (
	Integer      = &FieldType{name: "integer"}
	BigInteger   = &FieldType{name: "big integer", parent: Integer}
	SmallInteger = &FieldType{name: "small integer", parent: Integer}
	Float        = &FieldType{name: "float"}
	Decimal      = &FieldType{name: "decimal"}
	Char         = &FieldType{name: "char"}
	Text         = &FieldType{name: "text"}
	Boolean      = &FieldType{name: "boolean"}
	Date         = &FieldType{name: "date"}
	DateTime     = &FieldType{name: "datetime", parent: Date}
	Geometry     = &FieldType{name: "geometry"}
	Point        = &FieldType{name: "point", parent: Geometry}
	LineString   = &FieldType{name: "linestring", parent: Geometry}
	Polygon      = &FieldType{name: "polygon", parent: Geometry}
)

// Aggregates whose output is a count-like whole number resolve to
// OrdinalAggregateType, ones producing fractional results to
// ComputedAggregateType, regardless of what they aggregate over.
var (
	OrdinalAggregateType  = Integer
	ComputedAggregateType = Float
)

func (t *FieldType) Name() string { return t.name }

func (t *FieldType) String() string { return t.name }

// Subtype reports whether t is the same type as of or descends from it.
func (t *FieldType) Subtype(of *FieldType) bool {
	if of == nil {
		return false
	}
	for cur := t; cur != nil; cur = cur.parent {
		if cur == of {
			return true
		}
	}
	return false
}
