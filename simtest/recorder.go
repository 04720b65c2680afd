// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package simtest provides utility functions for testing simulation models.
package simtest

import (
	"fmt"
	"strings"

	"github.com/db47h/desim"
)

// Transition is a committed change of value of a Bit.
type Transition struct {
	At    desim.Time
	Value bool
}

func (t Transition) String() string {
	if t.Value {
		return fmt.Sprintf("%v:rise", t.At)
	}
	return fmt.Sprintf("%v:fall", t.At)
}

// Recorder records the transitions of a Bit.
type Recorder struct {
	name  string
	init  bool
	trans []Transition
}

// Record starts recording the transitions of b.
func Record(b *desim.Bit) *Recorder {
	r := &Recorder{name: b.Name(), init: b.Read()}
	b.Watch(func(t desim.Time, v bool) {
		r.trans = append(r.trans, Transition{At: t, Value: v})
	})
	return r
}

// Transitions returns all transitions recorded so far.
func (r *Recorder) Transitions() []Transition {
	return append([]Transition(nil), r.trans...)
}

// Rises returns the times of all rising edges.
func (r *Recorder) Rises() []desim.Time { return r.edges(true) }

// Falls returns the times of all falling edges.
func (r *Recorder) Falls() []desim.Time { return r.edges(false) }

func (r *Recorder) edges(v bool) []desim.Time {
	var ts []desim.Time
	for _, t := range r.trans {
		if t.Value == v {
			ts = append(ts, t.At)
		}
	}
	return ts
}

// ValueAt returns the value of the signal once all changes committed at time
// t have been applied.
func (r *Recorder) ValueAt(t desim.Time) bool {
	v := r.init
	for _, tr := range r.trans {
		if tr.At > t {
			break
		}
		v = tr.Value
	}
	return v
}

// Reset forgets all transitions recorded so far. The current value becomes
// the initial one.
func (r *Recorder) Reset() {
	if len(r.trans) > 0 {
		r.init = r.trans[len(r.trans)-1].Value
	}
	r.trans = r.trans[:0]
}

func (r *Recorder) String() string {
	var b strings.Builder
	b.WriteString(r.name)
	b.WriteString(": ")
	for i, t := range r.trans {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	return b.String()
}
