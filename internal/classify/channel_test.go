package classify

import (
	"context"
	"sync"
	"testing"
	"time"
)

// recordingClassifier echoes each request text back as the error message so
// tests can see which requests were processed and in what order.
type recordingClassifier struct {
	mu   sync.Mutex
	seen []string
}

func (r *recordingClassifier) Classify(_ context.Context, req Request) Response {
	r.mu.Lock()
	r.seen = append(r.seen, req.Text)
	r.mu.Unlock()
	return Failed(req.Seq, errString(req.Text))
}

type errString string

func (e errString) Error() string { return string(e) }

func collect(t *testing.T, ch <-chan Response, n int) []Response {
	t.Helper()
	var out []Response
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case r, ok := <-ch:
			if !ok {
				t.Fatalf("responses closed after %d of %d", len(out), n)
			}
			out = append(out, r)
		case <-timeout:
			t.Fatalf("timed out after %d of %d responses", len(out), n)
		}
	}
	return out
}

func TestChannel_FIFO(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewChannel(&recordingClassifier{}, 8, testLogger())
	c.Start(ctx)

	for _, text := range []string{"one", "one two", "one two three"} {
		c.Send(text)
	}

	got := collect(t, c.Responses(), 3)
	want := []string{"one", "one two", "one two three"}
	for i, r := range got {
		if r.Error != want[i] {
			t.Errorf("response %d = %q, want %q", i, r.Error, want[i])
		}
		if r.Seq != uint64(i+1) {
			t.Errorf("response %d seq = %d, want %d", i, r.Seq, i+1)
		}
	}
}

func TestChannel_CurrentTracksLatest(t *testing.T) {
	c := NewChannel(&recordingClassifier{}, 4, testLogger())

	first, ok := c.Send("a")
	if !ok {
		t.Fatal("Send() on an open channel should succeed")
	}
	second, _ := c.Send("a b")

	if c.Current(Response{Seq: first}) {
		t.Error("response to an older request should not be current")
	}
	if !c.Current(Response{Seq: second}) {
		t.Error("response to the latest request should be current")
	}
	if c.Latest() != second {
		t.Errorf("Latest() = %d, want %d", c.Latest(), second)
	}

	c.Invalidate()
	if c.Current(Response{Seq: second}) {
		t.Error("Invalidate() should make every outstanding response stale")
	}
}

func TestChannel_OverflowDropsOldest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewChannel(&recordingClassifier{}, 2, testLogger())

	// Worker not started yet: the queue fills and the oldest request goes.
	c.Send("a")
	c.Send("a b")
	c.Send("a b c")

	c.Start(ctx)
	got := collect(t, c.Responses(), 2)
	if got[0].Error != "a b" || got[1].Error != "a b c" {
		t.Errorf("processed %q, %q; want \"a b\", \"a b c\"", got[0].Error, got[1].Error)
	}
	if !c.Current(got[1]) {
		t.Error("last response should answer the latest request")
	}
}

func TestChannel_CloseDrainsQueue(t *testing.T) {
	rec := &recordingClassifier{}
	c := NewChannel(rec, 4, testLogger())

	c.Send("x")
	c.Send("x y")
	c.Close()

	if _, ok := c.Send("late"); ok {
		t.Error("Send() after Close() should fail")
	}
	c.Close() // idempotent

	c.Start(context.Background())
	got := collect(t, c.Responses(), 2)
	if got[1].Error != "x y" {
		t.Errorf("last response = %q, want \"x y\"", got[1].Error)
	}

	c.Wait()
	if _, ok := <-c.Responses(); ok {
		t.Error("Responses() should be closed once the worker exits")
	}
}

func TestChannel_ContextCancelStopsWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewChannel(&recordingClassifier{}, 4, testLogger())
	c.Start(ctx)
	c.Start(ctx) // second Start is a no-op

	cancel()

	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestChannel_DispatchSends(t *testing.T) {
	c := NewChannel(&recordingClassifier{}, 4, testLogger())
	c.Dispatch("hello")
	if c.Latest() != 1 {
		t.Errorf("Latest() = %d after Dispatch, want 1", c.Latest())
	}
}
