package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is a scriptable Transport. When block is non-nil, Send waits
// on it before returning, letting tests observe the Uploading phase.
type fakeTransport struct {
	result      *Result
	err         error
	progressive bool
	loaded      []int64 // cumulative counts to report before returning
	block       chan struct{}

	mu    sync.Mutex
	calls []string // file names seen
}

func (f *fakeTransport) ReportsProgress() bool { return f.progressive }

func (f *fakeTransport) Send(ctx context.Context, file File, report func(int64)) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, file.Name)
	f.mu.Unlock()

	for _, n := range f.loaded {
		report(n)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ErrAborted
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &Result{URL: "https://cdn.test/" + file.Name}, nil
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// statusRecorder collects every status change under a lock.
type statusRecorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *statusRecorder) record(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *statusRecorder) all() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses...)
}

func videoFile(name string, size int64) File {
	return File{
		Name:        name,
		Size:        size,
		ContentType: "video/mp4",
		Body:        strings.NewReader(strings.Repeat("x", int(size))),
	}
}

func TestUploadSuccess(t *testing.T) {
	transport := &fakeTransport{}
	var completions []Result
	u := New(transport, VideoProfile,
		WithCompleteFunc(func(r Result) { completions = append(completions, r) }),
		WithSyntheticClock(time.Millisecond, 5))

	res, err := u.Upload(context.Background(), videoFile("intro.mp4", 1024))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "https://cdn.test/intro.mp4", res.URL)

	// Callback fired exactly once, with the same payload.
	require.Len(t, completions, 1)
	assert.Equal(t, *res, completions[0])

	st := u.Status()
	assert.Equal(t, PhaseSucceeded, st.Phase)
	assert.Equal(t, 100, st.Progress)
	assert.Equal(t, int64(1024), st.BytesLoaded)
	assert.Equal(t, int64(1024), st.BytesTotal)
	assert.NoError(t, st.Err)
}

func TestValidationRejectsBeforeTransfer(t *testing.T) {
	transport := &fakeTransport{}
	u := New(transport, ImageProfile)

	_, err := u.Upload(context.Background(), File{
		Name:        "script.sh",
		Size:        10,
		ContentType: "text/x-shellscript",
		Body:        strings.NewReader("echo hi"),
	})
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = u.Upload(context.Background(), File{
		Name:        "huge.png",
		Size:        6 << 20,
		ContentType: "image/png",
		Body:        strings.NewReader(""),
	})
	require.ErrorIs(t, err, ErrFileTooLarge)

	// No transfer was initiated and the phase never left Idle.
	assert.Zero(t, transport.callCount())
	assert.Equal(t, PhaseIdle, u.Status().Phase)
}

func TestFailureIsTerminalAndCallbackFree(t *testing.T) {
	transport := &fakeTransport{err: errors.New("relay returned 500")}
	completions := 0
	u := New(transport, VideoProfile,
		WithCompleteFunc(func(Result) { completions++ }),
		WithSyntheticClock(2*time.Millisecond, 5))

	_, err := u.Upload(context.Background(), videoFile("fail.mp4", 512))
	require.Error(t, err)

	st := u.Status()
	assert.Equal(t, PhaseFailed, st.Phase)
	assert.ErrorContains(t, st.Err, "relay returned 500")
	assert.Zero(t, completions)

	// The synthetic timer must be dead: no state mutation after failure.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, st, u.Status())
}

func TestSyntheticProgressCapsUntilResponse(t *testing.T) {
	transport := &fakeTransport{block: make(chan struct{})}
	rec := &statusRecorder{}
	u := New(transport, VideoProfile,
		WithStatusFunc(rec.record),
		WithSyntheticClock(2*time.Millisecond, 5))

	errCh := make(chan error, 1)
	go func() {
		_, err := u.Upload(context.Background(), videoFile("big.mp4", 1<<20))
		errCh <- err
	}()

	// Let the fabricated progress run well past 90/step ticks.
	require.Eventually(t, func() bool {
		for _, s := range rec.all() {
			if s.Progress == 90 {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	close(transport.block)
	require.NoError(t, <-errCh)

	statuses := rec.all()
	last := statuses[len(statuses)-1]
	assert.Equal(t, PhaseSucceeded, last.Phase)
	assert.Equal(t, 100, last.Progress)

	prev := 0
	for _, s := range statuses {
		assert.LessOrEqual(t, s.Progress, 100)
		if s.Phase == PhaseUploading {
			// Capped at 90 until the response arrived, monotone throughout.
			assert.LessOrEqual(t, s.Progress, 90)
			assert.GreaterOrEqual(t, s.Progress, prev)
			prev = s.Progress
		}
	}
}

func TestRealProgressIsMonotonic(t *testing.T) {
	// Out-of-order reports must not move BytesLoaded backwards.
	transport := &fakeTransport{progressive: true, loaded: []int64{100, 400, 300, 1024}}
	rec := &statusRecorder{}
	u := New(transport, VideoProfile, WithStatusFunc(rec.record))

	_, err := u.Upload(context.Background(), videoFile("steady.mp4", 1024))
	require.NoError(t, err)

	var prev int64
	sawRate := false
	for _, s := range rec.all() {
		assert.GreaterOrEqual(t, s.BytesLoaded, prev)
		prev = s.BytesLoaded
		if s.Rate > 0 {
			sawRate = true
		}
	}
	assert.True(t, sawRate)
	assert.Equal(t, 100, u.Status().Progress)
}

func TestSecondUploadWhileInFlight(t *testing.T) {
	transport := &fakeTransport{block: make(chan struct{})}
	u := New(transport, VideoProfile, WithSyntheticClock(time.Millisecond, 5))

	errCh := make(chan error, 1)
	go func() {
		_, err := u.Upload(context.Background(), videoFile("first.mp4", 64))
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		return u.Status().Phase == PhaseUploading
	}, time.Second, time.Millisecond)

	_, err := u.Upload(context.Background(), videoFile("second.mp4", 64))
	require.ErrorIs(t, err, ErrUploadInFlight)

	close(transport.block)
	require.NoError(t, <-errCh)

	// The in-flight attempt was untouched by the rejected drop.
	assert.Equal(t, []string{"first.mp4"}, transport.calls)

	// A terminal phase accepts a new file directly, no Idle step required.
	transport.block = nil
	_, err = u.Upload(context.Background(), videoFile("third.mp4", 64))
	require.NoError(t, err)
	assert.Equal(t, PhaseSucceeded, u.Status().Phase)
}

func TestDropUsesFirstFileOnly(t *testing.T) {
	transport := &fakeTransport{}
	u := New(transport, VideoProfile, WithSyntheticClock(time.Millisecond, 5))

	res, err := u.Drop(context.Background(),
		videoFile("first.mp4", 8),
		videoFile("second.mp4", 8),
		videoFile("third.mp4", 8))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/first.mp4", res.URL)
	assert.Equal(t, []string{"first.mp4"}, transport.calls)
}

func TestDropWithNoFiles(t *testing.T) {
	u := New(&fakeTransport{}, VideoProfile)
	_, err := u.Drop(context.Background())
	require.ErrorIs(t, err, ErrNoFile)
	assert.Equal(t, PhaseIdle, u.Status().Phase)
}

func TestAbortSurfacesDistinguishableError(t *testing.T) {
	transport := &fakeTransport{progressive: true, block: make(chan struct{})}
	u := New(transport, VideoProfile)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := u.Upload(ctx, videoFile("cancelled.mp4", 64))
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		return u.Status().Phase == PhaseUploading
	}, time.Second, time.Millisecond)

	cancel()
	err := <-errCh
	require.ErrorIs(t, err, ErrAborted)
	assert.Equal(t, PhaseFailed, u.Status().Phase)
}
