package classify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// DefaultQueueSize bounds the number of requests waiting for the worker.
const DefaultQueueSize = 32

// Channel is one session's path to the classifier. Requests are handled one
// at a time in the order they were sent, by a single worker goroutine. A new
// request never cancels an older one; every response is delivered. Callers
// use Current to tell whether a response still matches the latest request.
type Channel struct {
	classifier Classifier
	logger     logrus.FieldLogger

	mu     sync.Mutex
	closed bool
	reqs   chan Request
	resps  chan Response

	seq     atomic.Uint64
	started atomic.Bool
	wg      sync.WaitGroup
}

// NewChannel creates a channel in front of the classifier. Call Start to
// begin processing.
func NewChannel(c Classifier, size int, logger logrus.FieldLogger) *Channel {
	if size < 1 {
		size = DefaultQueueSize
	}
	return &Channel{
		classifier: c,
		logger:     logger.WithField("component", "classify_channel"),
		reqs:       make(chan Request, size),
		resps:      make(chan Response, size),
	}
}

// Start launches the worker. It returns immediately; the worker stops when
// ctx is done or the channel is closed and drained. Responses is closed
// when the worker exits.
func (c *Channel) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	c.wg.Add(1)
	go c.run(ctx)
}

func (c *Channel) run(ctx context.Context) {
	defer c.wg.Done()
	defer close(c.resps)

	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-c.reqs:
			if !ok {
				return
			}
			resp := c.classifier.Classify(ctx, req)
			select {
			case c.resps <- resp:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Send queues a classification of text and returns its sequence number.
// It never blocks: when the queue is full the oldest waiting request is
// dropped, since a newer request always carries the longer transcript.
// ok is false once the channel is closed.
func (c *Channel) Send(text string) (seq uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, false
	}

	req := Request{Seq: c.seq.Add(1), Text: text}
	for {
		select {
		case c.reqs <- req:
			return req.Seq, true
		default:
		}
		select {
		case dropped := <-c.reqs:
			c.logger.WithField("seq", dropped.Seq).Warn("classification queue full, dropping oldest request")
		default:
		}
	}
}

// Dispatch sends text and discards the sequence number, so a Channel can
// serve as a transcript dispatcher.
func (c *Channel) Dispatch(text string) {
	c.Send(text)
}

// Responses delivers responses in the order the worker produced them.
func (c *Channel) Responses() <-chan Response {
	return c.resps
}

// Latest returns the sequence number of the most recent request.
func (c *Channel) Latest() uint64 {
	return c.seq.Load()
}

// Current reports whether r answers the most recent request.
func (c *Channel) Current(r Response) bool {
	return r.Seq == c.seq.Load()
}

// Invalidate makes every outstanding request stale without sending a new one.
func (c *Channel) Invalidate() {
	c.seq.Add(1)
}

// Close stops accepting requests. Requests already queued are still
// processed unless the worker's context ends first.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.reqs)
	c.mu.Unlock()
}

// Wait blocks until the worker has exited.
func (c *Channel) Wait() {
	c.wg.Wait()
}
