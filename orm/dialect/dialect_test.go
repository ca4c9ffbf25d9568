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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/orm"
)

func TestQuoteIdentifier(t *testing.T) {
	testCases := []struct {
		vendor   orm.Dialect
		name     string
		expected string
	}{
		{Base{}, "rating", `"rating"`},
		{Base{}, `odd"name`, `"odd""name"`},
		{Postgres{}, "rating", `"rating"`},
		{MySQL{}, "rating", "`rating`"},
		{MySQL{}, "odd`name", "`odd``name`"},
		{SQLite{}, "rating", `"rating"`},
		{Oracle{}, "rating", `"RATING"`},
	}

	for _, tt := range testCases {
		t.Run(tt.vendor.Vendor()+" "+tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.vendor.QuoteIdentifier(tt.name))
		})
	}
}

func TestCombineExpression(t *testing.T) {
	parts := []string{"a", "b"}

	testCases := []struct {
		name      string
		vendor    orm.Dialect
		connector orm.Connector
		expected  string
	}{
		{"base add", Base{}, orm.Add, "a + b"},
		{"base sub", Base{}, orm.Sub, "a - b"},
		{"base mul", Base{}, orm.Mul, "a * b"},
		{"base div", Base{}, orm.Div, "a / b"},
		{"base pow", Base{}, orm.Pow, "a ^ b"},
		{"base mod", Base{}, orm.Mod, "a % b"},
		{"base bitand", Base{}, orm.BitAnd, "a & b"},
		{"base bitor", Base{}, orm.BitOr, "a | b"},
		{"mysql pow", MySQL{}, orm.Pow, "POW(a, b)"},
		{"mysql mod", MySQL{}, orm.Mod, "a % b"},
		{"sqlite pow", SQLite{}, orm.Pow, "quarry_power(a, b)"},
		{"oracle mod", Oracle{}, orm.Mod, "MOD(a, b)"},
		{"oracle pow", Oracle{}, orm.Pow, "POWER(a, b)"},
		{"oracle bitand", Oracle{}, orm.BitAnd, "BITAND(a, b)"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			sql, err := tt.vendor.CombineExpression(tt.connector, parts)
			require.NoError(err)
			require.Equal(tt.expected, sql)
		})
	}
}

func TestCombineExpressionUnsupported(t *testing.T) {
	require := require.New(t)

	_, err := Oracle{}.CombineExpression(orm.BitOr, []string{"a", "b"})
	require.Error(err)
	require.True(orm.ErrUnsupportedOperator.Is(err))

	_, err = Base{}.CombineExpression(orm.Connector("!"), []string{"a", "b"})
	require.Error(err)
	require.True(orm.ErrUnsupportedOperator.Is(err))
}

func TestDateIntervalSQL(t *testing.T) {
	offset := 3*24*time.Hour + 200*time.Second

	testCases := []struct {
		vendor   orm.Dialect
		expected string
	}{
		{Base{}, "(x + INTERVAL '3 days 200 seconds 0 microseconds')"},
		{Postgres{}, "(x + INTERVAL '3 days 200 seconds 0 microseconds')"},
		{MySQL{}, "(x + INTERVAL '3 0:0:200:0' DAY_MICROSECOND)"},
		{SQLite{}, "quarry_format_dtdelta(x, '+', '3', '200', '0')"},
		{Oracle{}, "(x + INTERVAL '3 00:03:20.000000' DAY(1) TO SECOND(6))"},
	}

	for _, tt := range testCases {
		t.Run(tt.vendor.Vendor(), func(t *testing.T) {
			require := require.New(t)
			sql, err := tt.vendor.DateIntervalSQL("x", orm.Add, offset)
			require.NoError(err)
			require.Equal(tt.expected, sql)
		})
	}
}

func TestDateIntervalMicroseconds(t *testing.T) {
	require := require.New(t)

	offset := 2*time.Second + 350*time.Microsecond
	sql, err := Base{}.DateIntervalSQL("x", orm.Sub, offset)
	require.NoError(err)
	require.Equal("(x - INTERVAL '0 days 2 seconds 350 microseconds')", sql)

	sql, err = Oracle{}.DateIntervalSQL("x", orm.Sub, offset)
	require.NoError(err)
	require.Equal("(x - INTERVAL '0 00:00:02.000350' DAY(1) TO SECOND(6))", sql)
}

func TestDateIntervalDayWidth(t *testing.T) {
	require := require.New(t)

	sql, err := Oracle{}.DateIntervalSQL("x", orm.Add, 45*24*time.Hour)
	require.NoError(err)
	require.Equal("(x + INTERVAL '45 00:00:00.000000' DAY(2) TO SECOND(6))", sql)
}

func TestSpatialAggregateSQL(t *testing.T) {
	require := require.New(t)

	for name, fn := range postgisFunctions {
		got, tpl, err := Postgres{}.SpatialAggregateSQL(name)
		require.NoError(err)
		require.Equal(fn, got)
		require.Empty(tpl)
	}

	fn, tpl, err := Oracle{}.SpatialAggregateSQL("Extent")
	require.NoError(err)
	require.Equal("SDO_AGGR_MBR", fn)
	require.Contains(tpl, "SDOAGGRTYPE")

	_, _, err = Oracle{}.SpatialAggregateSQL("MakeLine")
	require.Error(err)
	require.True(orm.ErrSpatialNotSupported.Is(err))

	for _, d := range []orm.Dialect{Base{}, MySQL{}, SQLite{}} {
		_, _, err := d.SpatialAggregateSQL("Extent")
		require.Error(err)
		require.True(orm.ErrSpatialNotSupported.Is(err))
	}
}

func TestVendors(t *testing.T) {
	require := require.New(t)
	require.Equal("ansi", Base{}.Vendor())
	require.Equal("postgres", Postgres{}.Vendor())
	require.Equal("mysql", MySQL{}.Vendor())
	require.Equal("sqlite", SQLite{}.Vendor())
	require.Equal("oracle", Oracle{}.Vendor())
}
