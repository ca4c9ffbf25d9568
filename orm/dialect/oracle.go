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
	"strconv"
	"strings"
	"time"

	"github.com/quarrydb/quarry/orm"
)

// Oracle renders for Oracle: upper-cased quoted identifiers, function
// rewrites for modulo, power and bitwise AND, DAY TO SECOND intervals and
// the SDO_AGGR spatial family, which wraps its operand in SDOAGGRTYPE with
// a tolerance.
type Oracle struct {
	Base
}

var _ orm.Dialect = Oracle{}

func (Oracle) Vendor() string { return "oracle" }

func (Oracle) QuoteIdentifier(name string) string {
	return `"` + strings.ToUpper(strings.ReplaceAll(name, `"`, `""`)) + `"`
}

func (Oracle) CombineExpression(connector orm.Connector, parts []string) (string, error) {
	switch connector {
	case orm.Mod:
		return "MOD(" + strings.Join(parts, ", ") + ")", nil
	case orm.Pow:
		return "POWER(" + strings.Join(parts, ", ") + ")", nil
	case orm.BitAnd:
		return "BITAND(" + strings.Join(parts, ", ") + ")", nil
	case orm.BitOr:
		return "", orm.ErrUnsupportedOperator.New(connector, "oracle has no bitwise OR")
	}
	return combineInfix(connector, parts)
}

func (Oracle) DateIntervalSQL(child string, connector orm.Connector, offset time.Duration) (string, error) {
	days, seconds, micros := splitDuration(offset)
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	dayText := strconv.FormatInt(days, 10)
	return fmt.Sprintf("(%s %s INTERVAL '%s %02d:%02d:%02d.%06d' DAY(%d) TO SECOND(6))",
		child, connector, dayText, hours, minutes, secs, micros, len(dayText)), nil
}

const sdoTemplate = "{function}(SDOAGGRTYPE({field},{tolerance}))"

var sdoFunctions = map[string]string{
	"Extent": "SDO_AGGR_MBR",
	"Union":  "SDO_AGGR_UNION",
}

func (Oracle) SpatialAggregateSQL(name string) (string, string, error) {
	fn, ok := sdoFunctions[name]
	if !ok {
		return "", "", orm.ErrSpatialNotSupported.New(name, "oracle")
	}
	return fn, sdoTemplate, nil
}
