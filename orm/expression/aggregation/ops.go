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

package aggregation

// Op enumerates the aggregate functions. The set is closed: rendering and
// evaluation switch over it exhaustively.
type Op int

const (
	OpCount Op = iota
	OpSum
	OpAvg
	OpMin
	OpMax
	OpStdDevPop
	OpStdDevSamp
	OpVarPop
	OpVarSamp
	OpCollect
	OpExtent
	OpExtent3D
	OpMakeLine
	OpUnion
)

const (
	defaultTemplate = "{function}({field})"
	countTemplate   = "{function}({distinct}{field})"
)

type opInfo struct {
	// name is the exported aggregate name, also the default alias suffix.
	name     string
	function string
	template string
	// ordinal aggregates always produce whole numbers, computed ones
	// fractional results, no matter what they run over. Aggregates with
	// neither flag inherit their type from their sources.
	ordinal  bool
	computed bool
	// spatial aggregates run over geometry and render through the
	// dialect's spatial support.
	spatial bool
}

var opTable = [...]opInfo{
	OpCount:      {name: "Count", function: "COUNT", template: countTemplate, ordinal: true},
	OpSum:        {name: "Sum", function: "SUM", template: defaultTemplate},
	OpAvg:        {name: "Avg", function: "AVG", template: defaultTemplate, computed: true},
	OpMin:        {name: "Min", function: "MIN", template: defaultTemplate},
	OpMax:        {name: "Max", function: "MAX", template: defaultTemplate},
	OpStdDevPop:  {name: "StdDev", function: "STDDEV_POP", template: defaultTemplate, computed: true},
	OpStdDevSamp: {name: "StdDev", function: "STDDEV_SAMP", template: defaultTemplate, computed: true},
	OpVarPop:     {name: "Variance", function: "VAR_POP", template: defaultTemplate, computed: true},
	OpVarSamp:    {name: "Variance", function: "VAR_SAMP", template: defaultTemplate, computed: true},
	OpCollect:    {name: "Collect", template: defaultTemplate, spatial: true},
	OpExtent:     {name: "Extent", template: defaultTemplate, spatial: true},
	OpExtent3D:   {name: "Extent3D", template: defaultTemplate, spatial: true},
	OpMakeLine:   {name: "MakeLine", template: defaultTemplate, spatial: true},
	OpUnion:      {name: "Union", template: defaultTemplate, spatial: true},
}

func (o Op) valid() bool { return o >= 0 && int(o) < len(opTable) }

func (o Op) info() opInfo { return opTable[o] }

func (o Op) String() string {
	if !o.valid() {
		return "invalid"
	}
	return opTable[o].name
}

// NewCount counts rows. The input "*" counts every row; a field input
// counts the rows where it is not null.
func NewCount(input interface{}) (*Aggregate, error) {
	return newAggregate(OpCount, input, nil)
}

// NewCountDistinct counts the distinct non-null values of its input.
func NewCountDistinct(input interface{}) (*Aggregate, error) {
	return newAggregate(OpCount, input, map[string]string{"distinct": "DISTINCT "})
}

// NewSum totals its input. The output type follows the input.
func NewSum(input interface{}) (*Aggregate, error) {
	return newAggregate(OpSum, input, nil)
}

// NewAvg averages its input, always producing a fractional result.
func NewAvg(input interface{}) (*Aggregate, error) {
	return newAggregate(OpAvg, input, nil)
}

// NewMin takes the smallest input value. The output type follows the input.
func NewMin(input interface{}) (*Aggregate, error) {
	return newAggregate(OpMin, input, nil)
}

// NewMax takes the largest input value. The output type follows the input.
func NewMax(input interface{}) (*Aggregate, error) {
	return newAggregate(OpMax, input, nil)
}

// NewStdDevPop computes the population standard deviation.
func NewStdDevPop(input interface{}) (*Aggregate, error) {
	return newAggregate(OpStdDevPop, input, nil)
}

// NewStdDevSamp computes the sample standard deviation.
func NewStdDevSamp(input interface{}) (*Aggregate, error) {
	return newAggregate(OpStdDevSamp, input, nil)
}

// NewVarPop computes the population variance.
func NewVarPop(input interface{}) (*Aggregate, error) {
	return newAggregate(OpVarPop, input, nil)
}

// NewVarSamp computes the sample variance.
func NewVarSamp(input interface{}) (*Aggregate, error) {
	return newAggregate(OpVarSamp, input, nil)
}
