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

// Package dialect renders expression trees for concrete database backends.
package dialect

import (
	"fmt"
	"strings"
	"time"

	"github.com/quarrydb/quarry/orm"
)

// Base is the ANSI-flavored dialect the vendor dialects embed and
// specialize. On its own it quotes with double quotes, joins every
// connector infix and renders intervals the standard way.
type Base struct{}

var _ orm.Dialect = Base{}

func (Base) Vendor() string { return "ansi" }

func (Base) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Base) CombineExpression(connector orm.Connector, parts []string) (string, error) {
	return combineInfix(connector, parts)
}

func combineInfix(connector orm.Connector, parts []string) (string, error) {
	switch connector {
	case orm.Add, orm.Sub, orm.Mul, orm.Div, orm.Pow, orm.Mod, orm.BitAnd, orm.BitOr:
		return strings.Join(parts, " "+connector.String()+" "), nil
	}
	return "", orm.ErrUnsupportedOperator.New(connector, "unknown connector")
}

func (Base) DateIntervalSQL(child string, connector orm.Connector, offset time.Duration) (string, error) {
	days, seconds, micros := splitDuration(offset)
	return fmt.Sprintf("(%s %s INTERVAL '%d days %d seconds %d microseconds')",
		child, connector, days, seconds, micros), nil
}

func (Base) SpatialAggregateSQL(name string) (string, string, error) {
	return "", "", orm.ErrSpatialNotSupported.New(name, "ansi")
}

// splitDuration decomposes a duration into the day/second/microsecond
// components interval strings are written with. All components carry the
// sign of the duration.
func splitDuration(d time.Duration) (days, seconds, micros int64) {
	days = int64(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	seconds = int64(d / time.Second)
	d -= time.Duration(seconds) * time.Second
	micros = int64(d / time.Microsecond)
	return days, seconds, micros
}
