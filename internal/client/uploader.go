// Package client drives a single file through validation, transfer, and
// completion, exposing progress snapshots to a presentational layer and one
// completion callback to its embedding form.
package client

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrNoFile means a drop event carried no files.
	ErrNoFile = errors.New("no file selected")
	// ErrUploadInFlight means an attempt is already uploading; the new file
	// is ignored until the current attempt reaches a terminal phase.
	ErrUploadInFlight = errors.New("an upload is already in progress")
	// ErrAborted marks a transfer cancelled through the context, so callers
	// can distinguish an abort from an ordinary transfer failure.
	ErrAborted = errors.New("upload aborted")
)

const (
	defaultTickEvery = 500 * time.Millisecond
	defaultTickStep  = 5
	syntheticCap     = 90
)

// Uploader is the upload state machine: Idle → Uploading → Succeeded|Failed.
// Terminal phases are per attempt; a new accepted file moves straight back to
// Uploading. At most one attempt is in flight per Uploader.
type Uploader struct {
	transport Transport
	profile   Profile

	onStatus   func(Status)
	onComplete func(Result)

	tickEvery time.Duration
	tickStep  int

	mu     sync.Mutex
	status Status
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithStatusFunc registers an observer invoked on every status change.
func WithStatusFunc(fn func(Status)) Option {
	return func(u *Uploader) { u.onStatus = fn }
}

// WithCompleteFunc registers the completion callback. It is invoked exactly
// once per attempt, and only on success.
func WithCompleteFunc(fn func(Result)) Option {
	return func(u *Uploader) { u.onComplete = fn }
}

// WithSyntheticClock overrides the synthetic progress timer. Tests use this
// to run the clock fast.
func WithSyntheticClock(every time.Duration, step int) Option {
	return func(u *Uploader) {
		u.tickEvery = every
		u.tickStep = step
	}
}

// New creates an Uploader sending files through transport after validating
// them against profile.
func New(transport Transport, profile Profile, opts ...Option) *Uploader {
	u := &Uploader{
		transport: transport,
		profile:   profile,
		tickEvery: defaultTickEvery,
		tickStep:  defaultTickStep,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Status returns a snapshot of the current attempt.
func (u *Uploader) Status() Status {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

// Drop accepts a drop/selection event. Only the first file is used; any
// others are silently ignored, matching the admin panel's drop zones.
func (u *Uploader) Drop(ctx context.Context, files ...File) (*Result, error) {
	if len(files) == 0 {
		return nil, ErrNoFile
	}
	return u.Upload(ctx, files[0])
}

// Upload drives one file through the state machine and blocks until a
// terminal phase. Validation failures are returned before any transfer
// starts and leave the phase untouched. On success the completion callback
// fires once with the result; on failure it never fires and the error is
// both returned and recorded in the status.
func (u *Uploader) Upload(ctx context.Context, f File) (*Result, error) {
	if err := u.profile.Validate(f); err != nil {
		return nil, err
	}

	u.mu.Lock()
	if u.status.Phase == PhaseUploading {
		u.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	u.status = Status{Phase: PhaseUploading, BytesTotal: f.Size}
	u.mu.Unlock()
	u.notify()

	start := time.Now()

	// Synthetic ticker for transports with no real progress signal. done
	// cancels it; stopped confirms it exited, so no tick can mutate state
	// after the terminal phase is recorded.
	done := make(chan struct{})
	stopped := make(chan struct{})
	if u.transport.ReportsProgress() {
		close(stopped)
	} else {
		go func() {
			defer close(stopped)
			u.syntheticTicks(f.Size, done)
		}()
	}

	report := func(loaded int64) {
		u.mu.Lock()
		if u.status.Phase != PhaseUploading || loaded < u.status.BytesLoaded {
			u.mu.Unlock()
			return
		}
		u.status.BytesLoaded = loaded
		if f.Size > 0 {
			u.status.Progress = int(loaded * 100 / f.Size)
		}
		if elapsed := time.Since(start).Seconds(); elapsed > 0 {
			u.status.Rate = float64(loaded) / elapsed
		}
		u.mu.Unlock()
		u.notify()
	}

	res, err := u.transport.Send(ctx, f, report)

	close(done)
	<-stopped

	if err != nil {
		u.mu.Lock()
		u.status.Phase = PhaseFailed
		u.status.Err = err
		u.mu.Unlock()
		u.notify()
		return nil, err
	}

	u.mu.Lock()
	u.status.Phase = PhaseSucceeded
	u.status.Progress = 100
	u.status.BytesLoaded = f.Size
	u.mu.Unlock()
	u.notify()

	if u.onComplete != nil {
		u.onComplete(*res)
	}
	return res, nil
}

// syntheticTicks fabricates progress for opaque transfers: a fixed step per
// tick, capped below 100 until the real response arrives.
func (u *Uploader) syntheticTicks(total int64, done <-chan struct{}) {
	ticker := time.NewTicker(u.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			u.mu.Lock()
			if u.status.Phase != PhaseUploading {
				u.mu.Unlock()
				return
			}
			p := u.status.Progress + u.tickStep
			if p > syntheticCap {
				p = syntheticCap
			}
			u.status.Progress = p
			u.status.BytesLoaded = total * int64(p) / 100
			u.status.Rate = float64(total) * float64(u.tickStep) / 100 / u.tickEvery.Seconds()
			u.mu.Unlock()
			u.notify()
		}
	}
}

func (u *Uploader) notify() {
	if u.onStatus == nil {
		return
	}
	u.onStatus(u.Status())
}
