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
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/orm"
	"github.com/quarrydb/quarry/orm/expression"
	"github.com/quarrydb/quarry/orm/expression/aggregation"
)

func testTable(t *testing.T, rows ...Row) (*Table, *Query) {
	t.Helper()
	books, _ := testModels()
	table := NewTable(books)
	require.NoError(t, table.Insert(rows...))
	return table, NewQuery(books)
}

// aggregate resolves agg against a fresh query before evaluation, the way
// callers register terminal aggregates.
func aggregate(t *testing.T, q *Query, alias string, agg *aggregation.Aggregate) *aggregation.Aggregate {
	t.Helper()
	_, err := q.AggregateOver(orm.NewEmptyContext(), alias, agg)
	require.NoError(t, err)
	return agg
}

func TestEvaluateSumIntegers(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t,
		Row{"pages": 3},
		Row{"pages": 5},
	)
	sum, err := aggregation.NewSum("pages")
	require.NoError(err)
	aggregate(t, q, "", sum)

	got, err := Evaluate(orm.NewEmptyContext(), table, sum)
	require.NoError(err)
	require.Equal(int64(8), got)
}

func TestEvaluateSumFloats(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t,
		Row{"rating": 3.5},
		Row{"rating": 4.0},
		Row{"title": "unrated"},
	)
	sum, err := aggregation.NewSum("rating")
	require.NoError(err)
	aggregate(t, q, "", sum)

	got, err := Evaluate(orm.NewEmptyContext(), table, sum)
	require.NoError(err)
	require.Equal(7.5, got)
}

func TestEvaluateSumEmpty(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t)
	sum, err := aggregation.NewSum("rating")
	require.NoError(err)
	aggregate(t, q, "", sum)

	got, err := Evaluate(orm.NewEmptyContext(), table, sum)
	require.NoError(err)
	require.Nil(got)
}

func TestEvaluateSumDecimals(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t,
		Row{"price": decimal.RequireFromString("19.99")},
		Row{"price": decimal.RequireFromString("0.01")},
	)
	sum, err := aggregation.NewSum("price")
	require.NoError(err)
	aggregate(t, q, "", sum)

	got, err := Evaluate(orm.NewEmptyContext(), table, sum)
	require.NoError(err)
	d, ok := got.(decimal.Decimal)
	require.True(ok)
	require.True(decimal.RequireFromString("20").Equal(d))
}

func TestEvaluateCount(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t,
		Row{"title": "go"},
		Row{"title": "sql"},
		Row{"pages": 10},
	)

	star, err := aggregation.NewCount("*")
	require.NoError(err)
	aggregate(t, q, "n", star)
	got, err := Evaluate(orm.NewEmptyContext(), table, star)
	require.NoError(err)
	require.Equal(int64(3), got)

	// Counting a field skips its nulls.
	titles, err := aggregation.NewCount("title")
	require.NoError(err)
	aggregate(t, q, "", titles)
	got, err = Evaluate(orm.NewEmptyContext(), table, titles)
	require.NoError(err)
	require.Equal(int64(2), got)
}

func TestEvaluateCountDistinct(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t,
		Row{"title": "go"},
		Row{"title": "go"},
		Row{"title": "sql"},
		Row{"pages": 10},
	)
	distinct, err := aggregation.NewCountDistinct("title")
	require.NoError(err)
	aggregate(t, q, "", distinct)

	got, err := Evaluate(orm.NewEmptyContext(), table, distinct)
	require.NoError(err)
	require.Equal(int64(2), got)
}

func TestEvaluateAvg(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t,
		Row{"pages": 2},
		Row{"pages": 4},
	)
	avg, err := aggregation.NewAvg("pages")
	require.NoError(err)
	aggregate(t, q, "", avg)

	got, err := Evaluate(orm.NewEmptyContext(), table, avg)
	require.NoError(err)
	require.Equal(3.0, got)
}

func TestEvaluateMinMax(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t,
		Row{"pages": 120, "title": "b"},
		Row{"pages": 90, "title": "a"},
		Row{"pages": 300, "title": "c"},
	)

	min, err := aggregation.NewMin("pages")
	require.NoError(err)
	aggregate(t, q, "", min)
	got, err := Evaluate(orm.NewEmptyContext(), table, min)
	require.NoError(err)
	require.Equal(90, got)

	max, err := aggregation.NewMax("title")
	require.NoError(err)
	aggregate(t, q, "", max)
	got, err = Evaluate(orm.NewEmptyContext(), table, max)
	require.NoError(err)
	require.Equal("c", got)
}

func TestEvaluateMaxTimes(t *testing.T) {
	require := require.New(t)

	early := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	table, q := testTable(t,
		Row{"published": late},
		Row{"published": early},
	)
	max, err := aggregation.NewMax("published")
	require.NoError(err)
	aggregate(t, q, "", max)

	got, err := Evaluate(orm.NewEmptyContext(), table, max)
	require.NoError(err)
	require.Equal(late, got)
}

func TestEvaluateMoments(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t,
		Row{"pages": 1},
		Row{"pages": 2},
		Row{"pages": 3},
		Row{"pages": 4},
	)

	varPop, err := aggregation.NewVarPop("pages")
	require.NoError(err)
	aggregate(t, q, "vp", varPop)
	got, err := Evaluate(orm.NewEmptyContext(), table, varPop)
	require.NoError(err)
	require.InDelta(1.25, got, 1e-9)

	varSamp, err := aggregation.NewVarSamp("pages")
	require.NoError(err)
	aggregate(t, q, "vs", varSamp)
	got, err = Evaluate(orm.NewEmptyContext(), table, varSamp)
	require.NoError(err)
	require.InDelta(5.0/3.0, got, 1e-9)

	stdPop, err := aggregation.NewStdDevPop("pages")
	require.NoError(err)
	aggregate(t, q, "sp", stdPop)
	got, err = Evaluate(orm.NewEmptyContext(), table, stdPop)
	require.NoError(err)
	require.InDelta(1.1180339887, got, 1e-9)

	stdSamp, err := aggregation.NewStdDevSamp("pages")
	require.NoError(err)
	aggregate(t, q, "ss", stdSamp)
	got, err = Evaluate(orm.NewEmptyContext(), table, stdSamp)
	require.NoError(err)
	require.InDelta(1.2909944487, got, 1e-9)
}

func TestEvaluateSampleNeedsTwo(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t, Row{"pages": 7})
	varSamp, err := aggregation.NewVarSamp("pages")
	require.NoError(err)
	aggregate(t, q, "", varSamp)

	got, err := Evaluate(orm.NewEmptyContext(), table, varSamp)
	require.NoError(err)
	require.Nil(got)
}

func TestEvaluateArithmetic(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t,
		Row{"rating": 1.5},
		Row{"rating": 2.5},
	)
	double, err := expression.Mul(expression.F("rating"), 2)
	require.NoError(err)
	sum, err := aggregation.NewSum(double)
	require.NoError(err)
	aggregate(t, q, "doubled", sum)

	got, err := Evaluate(orm.NewEmptyContext(), table, sum)
	require.NoError(err)
	require.Equal(8.0, got)
}

func TestEvaluateNullPropagation(t *testing.T) {
	require := require.New(t)

	// Rows with a null operand contribute nothing to the total.
	table, q := testTable(t,
		Row{"rating": 2.0, "bonus": 1.0},
		Row{"rating": 5.0},
	)
	boosted, err := expression.Add(expression.F("rating"), expression.F("bonus"))
	require.NoError(err)
	sum, err := aggregation.NewSum(boosted)
	require.NoError(err)
	aggregate(t, q, "boosted", sum)

	got, err := Evaluate(orm.NewEmptyContext(), table, sum)
	require.NoError(err)
	require.Equal(3.0, got)
}

func TestEvaluateDivisionByZero(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t, Row{"pages": 10, "rating": 0.0})
	ratio, err := expression.Div(expression.F("pages"), expression.F("rating"))
	require.NoError(err)
	sum, err := aggregation.NewSum(ratio)
	require.NoError(err)
	aggregate(t, q, "ratio", sum)

	got, err := Evaluate(orm.NewEmptyContext(), table, sum)
	require.NoError(err)
	require.Nil(got)
}

func TestEvaluateConditionalSum(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t,
		Row{"category": "gold", "pages": 100},
		Row{"category": "silver", "pages": 50},
		Row{"category": "gold", "pages": 23},
	)
	cond := expression.NewIf(Cond{Field: "category", Value: "gold"}, expression.F("pages"), 0)
	sum, err := aggregation.NewSum(cond)
	require.NoError(err)
	aggregate(t, q, "gold_pages", sum)

	got, err := Evaluate(orm.NewEmptyContext(), table, sum)
	require.NoError(err)
	require.Equal(int64(123), got)
}

func TestEvaluateCoalesce(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t,
		Row{"bonus": 2.0},
		Row{"title": "no bonus"},
	)
	sum, err := aggregation.NewSum(expression.Coalesce(expression.F("bonus"), 1))
	require.NoError(err)
	aggregate(t, q, "bonus_total", sum)

	got, err := Evaluate(orm.NewEmptyContext(), table, sum)
	require.NoError(err)
	require.Equal(3.0, got)
}

func TestEvaluateDateOffset(t *testing.T) {
	require := require.New(t)

	published := time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)
	table, q := testTable(t, Row{"published": published})

	shifted, err := expression.Combine(expression.F("published"), 24*time.Hour, orm.Add, false)
	require.NoError(err)
	max, err := aggregation.NewMax(shifted)
	require.NoError(err)
	aggregate(t, q, "latest", max)

	got, err := Evaluate(orm.NewEmptyContext(), table, max)
	require.NoError(err)
	require.Equal(published.Add(24*time.Hour), got)
}

func TestEvaluateUnsupportedFunction(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t, Row{"title": "go"})
	sum, err := aggregation.NewSum(expression.NewFunc("CONCAT", expression.F("title")))
	require.NoError(err)
	aggregate(t, q, "cat", sum)

	_, err = Evaluate(orm.NewEmptyContext(), table, sum)
	require.Error(err)
	require.True(orm.ErrUnsupportedFunction.Is(err))
}

func TestEvaluateSpatialUnsupported(t *testing.T) {
	require := require.New(t)

	table, _ := testTable(t)
	collect, err := aggregation.NewCollect("title")
	require.NoError(err)

	_, err = Evaluate(orm.NewEmptyContext(), table, collect)
	require.Error(err)
	require.True(orm.ErrSpatialNotSupported.Is(err))
}

func TestEvaluateJoinedFieldRejected(t *testing.T) {
	require := require.New(t)

	table, q := testTable(t, Row{"pages": 1})
	sum, err := aggregation.NewSum("author.age")
	require.NoError(err)
	aggregate(t, q, "", sum)

	_, err = Evaluate(orm.NewEmptyContext(), table, sum)
	require.Error(err)
	require.True(orm.ErrJoinNotPermitted.Is(err))
}

func TestMatchPredicate(t *testing.T) {
	books, _ := testModels()
	q := NewQuery(books)
	ctx := orm.NewEmptyContext()
	row := Row{"rating": 4.0, "pages": 200, "title": "go"}

	testCases := []struct {
		name     string
		cond     interface{}
		expected bool
	}{
		{"eq hit", Cond{Field: "title", Value: "go"}, true},
		{"eq miss", Cond{Field: "title", Value: "sql"}, false},
		{"ne", Cond{Field: "title", Op: "!=", Value: "sql"}, true},
		{"lt", Cond{Field: "pages", Op: "<", Value: 300}, true},
		{"le", Cond{Field: "pages", Op: "<=", Value: 200}, true},
		{"gt", Cond{Field: "pages", Op: ">", Value: 300}, false},
		{"ge", Cond{Field: "pages", Op: ">=", Value: 200}, true},
		{"null eq", Cond{Field: "bonus"}, true},
		{"null ne", Cond{Field: "bonus", Op: "!="}, false},
		{"null lt never matches", Cond{Field: "bonus", Op: "<", Value: 10}, false},
		{"not", Not{Cond{Field: "title", Value: "sql"}}, true},
		{"conjunction", []Cond{
			{Field: "title", Value: "go"},
			{Field: "pages", Op: ">", Value: 100},
		}, true},
		{"conjunction miss", []Cond{
			{Field: "title", Value: "go"},
			{Field: "pages", Op: ">", Value: 1000},
		}, false},
		{"expression value", Cond{Field: "pages", Op: ">", Value: expression.F("rating")}, true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			p, err := q.BuildPredicate(ctx, tt.cond, nil)
			require.NoError(err)
			match, err := matchPredicate(books, p, row)
			require.NoError(err)
			require.Equal(tt.expected, match)
		})
	}
}

func TestInsertValidatesFields(t *testing.T) {
	require := require.New(t)

	books, _ := testModels()
	table := NewTable(books)

	err := table.Insert(Row{"pags": 10})
	require.Error(err)
	require.True(orm.ErrUnknownField.Is(err))
	require.Contains(err.Error(), "maybe you mean pages?")
}
