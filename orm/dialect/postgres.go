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
	"github.com/quarrydb/quarry/orm"
)

// Postgres renders for PostgreSQL with PostGIS. The ANSI defaults already
// match its arithmetic and intervals; it adds the full spatial aggregate
// set.
type Postgres struct {
	Base
}

var _ orm.Dialect = Postgres{}

func (Postgres) Vendor() string { return "postgres" }

var postgisFunctions = map[string]string{
	"Collect":  "ST_Collect",
	"Extent":   "ST_Extent",
	"Extent3D": "ST_3DExtent",
	"MakeLine": "ST_MakeLine",
	"Union":    "ST_Union",
}

func (Postgres) SpatialAggregateSQL(name string) (string, string, error) {
	fn, ok := postgisFunctions[name]
	if !ok {
		return "", "", orm.ErrSpatialNotSupported.New(name, "postgres")
	}
	return fn, "", nil
}
