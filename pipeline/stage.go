// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package pipeline

import "fmt"

// ErrorKind is the error taxonomy from §7.
type ErrorKind int

const (
	ErrConfiguration ErrorKind = iota
	ErrIO
	ErrEvent
	ErrNumericalDegeneracy
	ErrInvariantViolation
)

func (k ErrorKind) String() string {
	switch k {
	case ErrConfiguration:
		return "configuration"
	case ErrIO:
		return "io"
	case ErrEvent:
		return "event"
	case ErrNumericalDegeneracy:
		return "numerical-degeneracy"
	case ErrInvariantViolation:
		return "invariant-violation"
	default:
		return "unknown"
	}
}

// StageError wraps a stage failure with its taxonomy classification (§7):
// event errors are logged and skipped, invariant violations are fatal to
// the current file, numerical degeneracy is not an exception at all (it
// is reported through ReconstructedGeometry.IsValid instead).
type StageError struct {
	Kind  ErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Fatal reports whether this error must abort the current file (§7).
func (e *StageError) Fatal() bool { return e.Kind == ErrInvariantViolation }

// Stage is the contract each pipeline component exposes (Design Notes §9):
// apply(ArrayEvent&). A stage mutates the event in place and returns an
// error only for conditions in the StageError taxonomy.
type Stage interface {
	Name() string
	Apply(event *ArrayEvent) error
}

// Pipeline is a sequence of stages applied to each event in turn. Events
// are processed strictly one at a time, in the order received — the
// spec's single-threaded contract (§5) — the channel here is purely an
// ergonomic streaming interface, not a source of concurrency: at most one
// event is ever "in flight" between the input and output channels.
type Pipeline []Stage

// Run drives every event in `events` through all stages sequentially.
// onError is invoked for any stage failure (§7); events with a fatal
// invariant-violation error abort the whole run by closing the output
// channel and returning the offending error. Non-fatal failures skip the
// event and processing continues with the next one.
func (p Pipeline) Run(events <-chan *ArrayEvent, onError func(event *ArrayEvent, stage string, err error)) (<-chan *ArrayEvent, <-chan error) {
	out := make(chan *ArrayEvent)
	fatal := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(fatal)

		for event := range events {
			skip := false
			for _, stage := range p {
				if err := stage.Apply(event); err != nil {
					if onError != nil {
						onError(event, stage.Name(), err)
					}
					var se *StageError
					if asStageError(err, &se) && se.Fatal() {
						fatal <- err
						return
					}
					skip = true
					break
				}
			}
			if !skip {
				out <- event
			}
		}
	}()

	return out, fatal
}

func asStageError(err error, target **StageError) bool {
	for err != nil {
		if se, ok := err.(*StageError); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
