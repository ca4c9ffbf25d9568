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
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/quarrydb/quarry/internal/similartext"
	"github.com/quarrydb/quarry/orm"
	"github.com/quarrydb/quarry/orm/expression"
	"github.com/quarrydb/quarry/orm/expression/aggregation"
)

// Query owns the metadata a resolution pass runs against: a base model,
// the joins discovered so far and the registered annotations. It is not
// safe for concurrent use; resolved trees are.
type Query struct {
	model       *Model
	annotations map[string]orm.Annotation
	summaries   map[string]*aggregation.Aggregate
	aliasCount  int
	joins       map[string][]string
}

var _ orm.Query = (*Query)(nil)

// NewQuery starts a query over a model.
func NewQuery(m *Model) *Query {
	return &Query{
		model:       m,
		annotations: map[string]orm.Annotation{},
		summaries:   map[string]*aggregation.Aggregate{},
		joins:       map[string][]string{},
	}
}

func (q *Query) Model() *Model { return q.model }

// BaseAlias is the alias of the base table, which is its own name.
func (q *Query) BaseAlias() string { return q.model.table }

// ResolveFieldPath walks a field path from the base model. Intermediate
// segments must name relations; each traversal reuses an existing join
// alias when the reuse set permits it and mints a fresh T<n> alias
// otherwise. The final segment may name a field, or a relation, which
// resolves to the target's "id" field.
func (q *Query) ResolveFieldPath(ctx *orm.Context, path []string, reuse orm.AliasSet, allowJoins bool) (orm.FieldResolution, error) {
	if len(path) == 0 {
		return orm.FieldResolution{}, orm.ErrUnknownField.New("", strings.Join(q.model.Choices(), ", "), "")
	}
	alias := q.model.table
	model := q.model
	var joins []string
	for i, seg := range path {
		last := i == len(path)-1
		if last {
			if f, ok := model.Field(seg); ok {
				res := orm.FieldResolution{
					Column: orm.TableColumn{Table: alias, Column: f.Column},
					Source: f.Type,
					Joins:  joins,
				}
				ctx.Logger().WithFields(logrus.Fields{
					"path":   strings.Join(path, expression.PathSeparator),
					"column": fmt.Sprintf("%s", res.Column),
				}).Debug("resolved field path")
				return res, nil
			}
		}
		rel, ok := model.Relation(seg)
		if !ok {
			choices := model.Choices()
			return orm.FieldResolution{}, orm.ErrUnknownField.New(
				seg, strings.Join(choices, ", "), similartext.Find(choices, seg))
		}
		if !allowJoins {
			return orm.FieldResolution{}, orm.ErrJoinNotPermitted.New(strings.Join(path, expression.PathSeparator))
		}
		alias = q.joinAlias(alias, rel, reuse)
		joins = append(joins, alias)
		if reuse != nil {
			reuse.Add(alias)
		}
		model = rel.Target
		if last {
			f, ok := model.Field("id")
			if !ok {
				choices := model.Choices()
				return orm.FieldResolution{}, orm.ErrUnknownField.New(
					seg, strings.Join(choices, ", "), "")
			}
			return orm.FieldResolution{
				Column: orm.TableColumn{Table: alias, Column: f.Column},
				Source: f.Type,
				Joins:  joins,
			}, nil
		}
	}
	return orm.FieldResolution{}, orm.ErrUnknownField.New(
		strings.Join(path, expression.PathSeparator), strings.Join(q.model.Choices(), ", "), "")
}

// joinAlias returns the alias joining rel off lhs, reusing an existing one
// when the reuse set allows it.
func (q *Query) joinAlias(lhs string, rel Relation, reuse orm.AliasSet) string {
	key := lhs + "/" + rel.Name
	for _, alias := range q.joins[key] {
		if reuse == nil || reuse.Contains(alias) {
			return alias
		}
	}
	q.aliasCount++
	alias := fmt.Sprintf("T%d", q.aliasCount)
	q.joins[key] = append(q.joins[key], alias)
	return alias
}

// JoinCount returns how many joins the query has accumulated.
func (q *Query) JoinCount() int { return q.aliasCount }

func (q *Query) Annotations() map[string]orm.Annotation { return q.annotations }

// Annotate registers an expression under an alias, resolving it first. An
// empty alias derives the default one, which only plain aggregate lookups
// have.
func (q *Query) Annotate(ctx *orm.Context, alias string, expr orm.Expression) (string, error) {
	if alias == "" {
		agg, ok := expr.(orm.Aggregation)
		if !ok {
			return "", orm.ErrAliasRequired.New(expr)
		}
		var err error
		alias, err = agg.DefaultAlias()
		if err != nil {
			return "", err
		}
	}
	if err := expr.Resolve(ctx, q, true, nil); err != nil {
		return "", err
	}
	q.annotations[alias] = &annotation{expr: expr}
	ctx.Logger().WithField("alias", alias).Debug("registered annotation")
	return alias, nil
}

// AggregateOver registers a terminal aggregate, the kind that collapses
// the whole query to one row. Marking it summary first is what lets it
// reference aggregate annotations.
func (q *Query) AggregateOver(ctx *orm.Context, alias string, agg *aggregation.Aggregate) (string, error) {
	if alias == "" {
		var err error
		alias, err = agg.DefaultAlias()
		if err != nil {
			return "", err
		}
	}
	agg.MarkSummary()
	if err := agg.Resolve(ctx, q, true, nil); err != nil {
		return "", err
	}
	q.summaries[alias] = agg
	ctx.Logger().WithField("alias", alias).Debug("registered terminal aggregate")
	return alias, nil
}

// Summaries returns the registered terminal aggregates keyed by alias.
func (q *Query) Summaries() map[string]*aggregation.Aggregate { return q.summaries }

// annotation adapts a resolved expression to the orm.Annotation view.
type annotation struct {
	expr orm.Expression
}

var _ orm.Annotation = (*annotation)(nil)

func (a *annotation) Expression() orm.Expression { return a.expr }

func (a *annotation) OutputType() *orm.FieldType { return a.expr.Source() }

func (a *annotation) IsAggregate() bool {
	_, ok := a.expr.(orm.Aggregation)
	return ok
}

// Column is the annotation's single bound column. Aggregates expose none:
// anything referencing them must wait for the subquery projection.
func (a *annotation) Column() orm.Columnar {
	if a.IsAggregate() {
		return nil
	}
	if c, ok := a.expr.(interface{ Column() orm.Columnar }); ok {
		return c.Column()
	}
	return nil
}
