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

// Package similartext suggests close matches for a misspelled name, for
// friendlier unknown-field errors.
package similartext

import (
	"fmt"
	"reflect"
	"strings"
)

// maxDistanceIgnored is the edit distance from which a name is considered
// too different to be worth suggesting.
const maxDistanceIgnored = 3

// distance returns the Levenshtein edit distance between source and
// target. Memory use is proportional to len(target).
func distance(source, target []rune) int {
	if len(source) == 0 {
		return len(target)
	}
	if len(target) == 0 {
		return len(source)
	}

	prev := make([]int, len(target)+1)
	cur := make([]int, len(target)+1)
	for j := range prev {
		prev[j] = j
	}

	for i, sr := range source {
		cur[0] = i + 1
		for j, tr := range target {
			cost := 1
			if sr == tr {
				cost = 0
			}
			cur[j+1] = min3(cur[j]+1, prev[j+1]+1, prev[j]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(target)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Find returns a ", maybe you mean X?" suffix suggesting the names closest
// to name, or the empty string when nothing is close enough. Comparison is
// case-insensitive.
func Find(names []string, name string) string {
	if name == "" {
		return ""
	}

	minDistance := -1
	var matches []string
	lowered := []rune(strings.ToLower(name))
	for _, n := range names {
		dist := distance([]rune(strings.ToLower(n)), lowered)
		if dist >= maxDistanceIgnored {
			continue
		}
		switch {
		case minDistance == -1 || dist < minDistance:
			minDistance = dist
			matches = []string{n}
		case dist == minDistance:
			matches = append(matches, n)
		}
	}
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf(", maybe you mean %s?", strings.Join(matches, " or "))
}

// FindFromMap is Find over the string keys of a map.
func FindFromMap(m interface{}, name string) string {
	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Map {
		panic("similartext: FindFromMap requires a map")
	}
	var names []string
	for _, k := range rv.MapKeys() {
		if k.Kind() == reflect.String {
			names = append(names, k.String())
		}
	}
	return Find(names, name)
}
