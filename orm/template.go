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

package orm

import "strings"

// ExpandTemplate substitutes every {name} token in a render template with
// its entry from subs. Tokens without an entry are left as written, which
// makes a forgotten substitution visible in the rendered SQL.
func ExpandTemplate(template string, subs map[string]string) string {
	if len(subs) == 0 {
		return template
	}
	pairs := make([]string, 0, len(subs)*2)
	for name, value := range subs {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
