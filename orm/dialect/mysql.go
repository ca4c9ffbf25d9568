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

// MySQL renders for MySQL and close relatives: backtick quoting, POW
// instead of the ^ operator, DAY_MICROSECOND intervals.
type MySQL struct {
	Base
}

var _ orm.Dialect = MySQL{}

func (MySQL) Vendor() string { return "mysql" }

func (MySQL) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (MySQL) CombineExpression(connector orm.Connector, parts []string) (string, error) {
	if connector == orm.Pow {
		return "POW(" + strings.Join(parts, ", ") + ")", nil
	}
	return combineInfix(connector, parts)
}

func (MySQL) DateIntervalSQL(child string, connector orm.Connector, offset time.Duration) (string, error) {
	days, seconds, micros := splitDuration(offset)
	return fmt.Sprintf("(%s %s INTERVAL '%d 0:0:%d:%d' DAY_MICROSECOND)",
		child, connector, days, seconds, micros), nil
}

func (MySQL) SpatialAggregateSQL(name string) (string, string, error) {
	return "", "", orm.ErrSpatialNotSupported.New(name, "mysql")
}
