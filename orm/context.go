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

import (
	"context"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Context carries a resolution or rendering pass: the standard context, a
// query id, a logger seeded with it, and a tracer.
type Context struct {
	context.Context
	id     uuid.UUID
	logger logrus.FieldLogger
	tracer opentracing.Tracer
}

// ContextOption configures a Context on creation.
type ContextOption func(*Context)

// WithLogger sets the base logger the context derives its entry from.
func WithLogger(logger logrus.FieldLogger) ContextOption {
	return func(ctx *Context) {
		ctx.logger = logger
	}
}

// WithTracer sets the tracer spans are started from.
func WithTracer(tracer opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = tracer
	}
}

// NewContext builds a Context over the given standard context.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{
		Context: ctx,
		id:      uuid.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	c.logger = c.logger.WithField("query_id", c.id.String())
	if c.tracer == nil {
		c.tracer = opentracing.NoopTracer{}
	}
	return c
}

// NewEmptyContext returns a default Context, for tests and one-off calls.
func NewEmptyContext() *Context { return NewContext(context.TODO()) }

// Id returns the unique id of this context.
func (c *Context) Id() uuid.UUID { return c.id }

// Logger returns the context logger, tagged with the query id.
func (c *Context) Logger() logrus.FieldLogger { return c.logger }

// Span creates a new tracing span as a child of the one carried by the
// context, if any, and returns it along with a context carrying it.
func (c *Context) Span(opName string, opts ...opentracing.StartSpanOption) (opentracing.Span, *Context) {
	if parent := opentracing.SpanFromContext(c.Context); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	span := c.tracer.StartSpan(opName, opts...)
	return span, &Context{
		Context: opentracing.ContextWithSpan(c.Context, span),
		id:      c.id,
		logger:  c.logger,
		tracer:  c.tracer,
	}
}

// WithContext returns a copy of this Context over a different standard
// context.
func (c *Context) WithContext(ctx context.Context) *Context {
	return &Context{
		Context: ctx,
		id:      c.id,
		logger:  c.logger,
		tracer:  c.tracer,
	}
}
