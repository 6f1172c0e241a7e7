// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package profiler measures per-job frame time. The task runner wraps
// every job in a profiler span; the default implementation discards
// them and a Recorder keeps wall-clock durations for inspection.
package profiler

import "time"

type ProfilerGroup interface {
	Start(label string) ProfilerGroup
	End()
}

// Nop discards all spans.
type Nop struct{}

func (Nop) Start(string) ProfilerGroup { return Nop{} }
func (Nop) End()                       {}

// Span is one completed measurement. Nested spans carry their full
// path, e.g. "frame/DrawOpaques".
type Span struct {
	Label    string
	Duration time.Duration
}

// Recorder collects wall-clock spans. It is not safe for concurrent
// use; frame execution is single-threaded by contract.
type Recorder struct {
	spans []Span
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Start(label string) ProfilerGroup {
	return &group{rec: r, label: label, begin: time.Now()}
}

func (r *Recorder) End() {}

// Spans returns all spans completed since the last Reset, in
// completion order.
func (r *Recorder) Spans() []Span {
	return r.spans
}

func (r *Recorder) Reset() {
	r.spans = r.spans[:0]
}

type group struct {
	rec   *Recorder
	label string
	begin time.Time
}

func (g *group) Start(label string) ProfilerGroup {
	return &group{rec: g.rec, label: g.label + "/" + label, begin: time.Now()}
}

func (g *group) End() {
	g.rec.spans = append(g.rec.spans, Span{
		Label:    g.label,
		Duration: time.Since(g.begin),
	})
}
