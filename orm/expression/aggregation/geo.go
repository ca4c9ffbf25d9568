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

// The spatial aggregates run over geometry-typed sources only; resolution
// rejects anything else. How each is spelled, and whether it is available
// at all, is the dialect's call. On backends that take a tolerance the
// default applies unless the "tolerance" extra overrides it.

// NewCollect gathers the input geometries into a single collection.
func NewCollect(input interface{}) (*Aggregate, error) {
	return newAggregate(OpCollect, input, nil)
}

// NewExtent computes the 2D bounding box of the input geometries.
func NewExtent(input interface{}) (*Aggregate, error) {
	return newAggregate(OpExtent, input, nil)
}

// NewExtent3D computes the 3D bounding box of the input geometries.
func NewExtent3D(input interface{}) (*Aggregate, error) {
	return newAggregate(OpExtent3D, input, nil)
}

// NewMakeLine strings the input points together into a line.
func NewMakeLine(input interface{}) (*Aggregate, error) {
	return newAggregate(OpMakeLine, input, nil)
}

// NewUnion computes the geometric union of the input geometries.
func NewUnion(input interface{}) (*Aggregate, error) {
	return newAggregate(OpUnion, input, nil)
}
