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
	"fmt"
	"strings"
	"time"

	"github.com/quarrydb/quarry/orm"
)

// SQLite renders for SQLite. The engine has no power operator and no
// interval arithmetic, so both lean on user-defined functions the driver
// side registers on connect: quarry_power and quarry_format_dtdelta.
type SQLite struct {
	Base
}

var _ orm.Dialect = SQLite{}

func (SQLite) Vendor() string { return "sqlite" }

func (SQLite) CombineExpression(connector orm.Connector, parts []string) (string, error) {
	if connector == orm.Pow {
		return "quarry_power(" + strings.Join(parts, ", ") + ")", nil
	}
	return combineInfix(connector, parts)
}

func (SQLite) DateIntervalSQL(child string, connector orm.Connector, offset time.Duration) (string, error) {
	days, seconds, micros := splitDuration(offset)
	return fmt.Sprintf("quarry_format_dtdelta(%s, '%s', '%d', '%d', '%d')",
		child, connector, days, seconds, micros), nil
}

func (SQLite) SpatialAggregateSQL(name string) (string, string, error) {
	return "", "", orm.ErrSpatialNotSupported.New(name, "sqlite")
}
