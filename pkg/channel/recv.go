package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	logpkg "github.com/rzbill/crosstalk/pkg/log"
	"github.com/rzbill/crosstalk/pkg/store"
)

// Message is a received payload tagged with the channel-level id of its
// sender.
type Message struct {
	Sender  int
	Payload []byte
}

// RecvOption configures a single receive call.
type RecvOption func(*recvConfig)

type recvConfig struct {
	block   bool
	timeout time.Duration
}

// NoBlock makes the receive return ErrNoMessage immediately when no
// candidate queue holds data, without registering any wait.
func NoBlock() RecvOption {
	return func(c *recvConfig) { c.block = false }
}

// WithTimeout bounds one blocking wait. Zero (the default) waits
// indefinitely. The window applies per blocking attempt: a wait restarted
// after a spurious wakeup gets a fresh window, so cumulative time may exceed
// d. That is a property of the protocol, not a defect.
func WithTimeout(d time.Duration) RecvOption {
	return func(c *recvConfig) { c.timeout = d }
}

// RecvFrom returns the next message from any of the named senders. Each
// named sender must be a current member, re-checked on every blocking
// attempt since membership can change while waiting.
func (c *Channel) RecvFrom(ctx context.Context, senders []int, opts ...RecvOption) (Message, error) {
	return c.recv(ctx, func(members map[int]struct{}, _ int) ([]int, error) {
		for _, s := range senders {
			if _, ok := members[s]; !ok {
				return nil, fmt.Errorf("%w: %d", ErrUnknownSender, s)
			}
		}
		return senders, nil
	}, opts...)
}

// RecvFromAny returns the next message from any current member other than
// the caller.
func (c *Channel) RecvFromAny(ctx context.Context, opts ...RecvOption) (Message, error) {
	return c.recv(ctx, func(members map[int]struct{}, self int) ([]int, error) {
		out := make([]int, 0, len(members))
		for m := range members {
			if m != self {
				out = append(out, m)
			}
		}
		return out, nil
	}, opts...)
}

// recv runs the selective receive loop. pick derives the candidate sender
// set from a fresh membership snapshot; everything else is shared between
// RecvFrom and RecvFromAny:
//
//  1. Recompute candidate pair keys from live membership, plus the caller's
//     own wakeup key.
//  2. Non-blocking mode returns ErrNoMessage when none of them holds data.
//  3. One atomic blocking pop across the whole candidate set.
//  4. Timeout expiry returns ErrTimeout.
//  5. A pop on the wakeup key is spurious: a sender absent from the
//     snapshot in step 1 has just delivered, so discard the marker and loop
//     to recompute the (now possibly larger) candidate set.
//  6. Anything else decodes back into the sender id and is the result.
func (c *Channel) recv(ctx context.Context, pick func(map[int]struct{}, int) ([]int, error), opts ...RecvOption) (Message, error) {
	cfg := recvConfig{block: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	self, err := c.authorize(ctx)
	if err != nil {
		return Message{}, err
	}
	wakeup := wakeupKey(c.prefix, self)

	for {
		members, err := c.memberSet(ctx)
		if err != nil {
			return Message{}, err
		}
		senders, err := pick(members, self)
		if err != nil {
			return Message{}, err
		}

		keys := make([]string, 0, len(senders)+1)
		for _, s := range senders {
			keys = append(keys, pairKey(c.prefix, s, self))
		}
		keys = append(keys, wakeup)

		if !cfg.block {
			hasData, err := c.st.Exists(ctx, keys...)
			if err != nil {
				return Message{}, err
			}
			if !hasData {
				return Message{}, ErrNoMessage
			}
		}

		popped, err := c.st.QueuePopAny(ctx, keys, cfg.timeout)
		if err != nil {
			if errors.Is(err, store.ErrTimeout) {
				return Message{}, ErrTimeout
			}
			return Message{}, err
		}

		if popped.Queue == wakeup {
			// Not a message for us yet; the candidate set was stale.
			c.logger.Debug("spurious wakeup", logpkg.Int("id", self))
			continue
		}

		sender, _, err := decodePairKey(popped.Queue)
		if err != nil {
			return Message{}, err
		}
		c.logger.Debug("received", logpkg.Int("from", sender), logpkg.Int("to", self), logpkg.Int("bytes", len(popped.Value)))
		return Message{Sender: sender, Payload: popped.Value}, nil
	}
}
