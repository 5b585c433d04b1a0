package core

import (
	"context"
	"math/rand"
	"sync"
)

// Channel is a typed FIFO synchronisation primitive (spec §4.6). A
// capacity of 0 means unbounded: send never blocks. A positive capacity
// blocks send once the queue is full. Close is idempotent (spec §9
// Open Questions: "this specification adopts idempotent").
type Channel struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	queue    []Value
	capacity int
	closed   bool
}

// NewChannel constructs a channel with the given capacity; 0 means
// unbounded.
func NewChannel(capacity int) *Channel {
	c := &Channel{capacity: capacity}
	c.notEmpty = sync.NewCond(&c.mu)
	c.notFull = sync.NewCond(&c.mu)

	return c
}

func (c *Channel) String() string { return "#<channel>" }

// waitCtx waits on cond, which must be associated with c.mu already
// held by the caller, but also wakes if ctx is done. It returns false
// if ctx ended the wait rather than a Signal/Broadcast.
func (c *Channel) waitCtx(ctx context.Context, cond *sync.Cond) bool {
	done := ctx.Done()
	if done == nil {
		cond.Wait()

		return true
	}

	stop := make(chan struct{})

	go func() {
		select {
		case <-done:
			c.mu.Lock()
			cond.Broadcast()
			c.mu.Unlock()
		case <-stop:
		}
	}()

	cond.Wait()
	close(stop)

	return ctx.Err() == nil
}

// Send appends v to the channel, blocking while a bounded channel is
// full. Sending on a closed channel fails with ErrSendOnClosed (spec
// §4.6).
func (c *Channel) Send(ctx context.Context, v Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.capacity > 0 && len(c.queue) >= c.capacity && !c.closed {
		if !c.waitCtx(ctx, c.notFull) {
			return ErrCancelled
		}
	}

	if c.closed {
		return ErrSendOnClosed
	}

	c.queue = append(c.queue, v)
	c.notEmpty.Signal()

	return nil
}

// Receive blocks until a value is available or the channel is closed
// and drained, in which case it returns Nil (spec §4.6, §7: "receive on
// a closed, drained channel yields Nil immediately"). If ctx's deadline
// elapses first it also returns Nil without consuming a value (spec
// §4.9). A genuine cancellation (not a deadline) returns ErrCancelled.
func (c *Channel) Receive(ctx context.Context) (Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.queue) == 0 && !c.closed {
		if !c.waitCtx(ctx, c.notEmpty) {
			if ctx.Err() == context.DeadlineExceeded {
				return Nil{}, nil
			}

			return nil, ErrCancelled
		}
	}

	if len(c.queue) == 0 {
		return Nil{}, nil
	}

	v := c.queue[0]
	c.queue = c.queue[1:]
	c.notFull.Signal()

	return v, nil
}

// TryReceive is a non-blocking receive used by Select: it reports
// whether a value (possibly Nil, for a drained closed channel) was
// immediately available.
func (c *Channel) TryReceive() (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) > 0 {
		v := c.queue[0]
		c.queue = c.queue[1:]
		c.notFull.Signal()

		return v, true
	}

	if c.closed {
		return Nil{}, true
	}

	return nil, false
}

// Close marks the channel closed; buffered values already queued are
// still delivered to receivers (spec §4.6: "closing is explicit;
// remaining buffered values are still delivered").
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.notEmpty.Broadcast()
	c.notFull.Broadcast()
}

// SelectCase pairs a channel with the handler to run on whatever value
// is received from it.
type SelectCase struct {
	Channel *Channel
	Handle  func(Value) (Value, error)
}

// Select blocks until any of cases' channels becomes receive-ready,
// picking fairly among currently-ready channels by randomising poll
// order each round (spec §4.6: "choose one ready channel (fair at
// design level)"), delivers the value to its handler, and returns the
// handler's result. If every channel is closed and drained it returns
// Nil (spec §4.6).
func Select(ctx context.Context, cases []SelectCase) (Value, error) {
	if len(cases) == 0 {
		return Nil{}, nil
	}

	order := make([]int, len(cases))
	for i := range order {
		order[i] = i
	}

	for {
		rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		allClosedDrained := true

		for _, idx := range order {
			v, ok := cases[idx].Channel.TryReceive()
			if !ok {
				allClosedDrained = false

				continue
			}

			if _, isNil := v.(Nil); isNil && cases[idx].Channel.closed {
				continue
			}

			return cases[idx].Handle(v)
		}

		if allClosedDrained {
			return Nil{}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrCancelled
		default:
		}
	}
}
