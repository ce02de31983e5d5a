package channel

import (
	"context"
	"fmt"

	logpkg "github.com/rzbill/crosstalk/pkg/log"
)

// wakeupMarker is the placeholder pushed onto wakeup queues. Its value is
// never inspected; only the queue it arrives on matters.
var wakeupMarker = []byte("WAKEUP")

// SendTo enqueues payload for a single destination.
func (c *Channel) SendTo(ctx context.Context, dest int, payload []byte) error {
	return c.SendToMany(ctx, []int{dest}, payload)
}

// SendToMany enqueues payload for each destination in turn. Every
// destination must be a current member.
func (c *Channel) SendToMany(ctx context.Context, dests []int, payload []byte) error {
	sender, err := c.authorize(ctx)
	if err != nil {
		return err
	}
	for _, dest := range dests {
		member, err := c.st.SetContains(ctx, c.membersKey, formatID(dest))
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("%w: %d", ErrDestinationNotMember, dest)
		}
		if err := c.deliver(ctx, sender, dest, payload); err != nil {
			return err
		}
	}
	return nil
}

// SendToAll enqueues payload for every current member (sentinel excluded).
// Membership is read from the live set, so no per-destination re-check is
// needed.
func (c *Channel) SendToAll(ctx context.Context, payload []byte) error {
	sender, err := c.authorize(ctx)
	if err != nil {
		return err
	}
	members, err := c.memberSet(ctx)
	if err != nil {
		return err
	}
	for dest := range members {
		if err := c.deliver(ctx, sender, dest, payload); err != nil {
			return err
		}
	}
	return nil
}

// deliver pushes payload on the (sender, dest) pair queue, then a marker on
// dest's wakeup queue. The order is load bearing: a receiver woken by the
// marker must find the payload already present.
func (c *Channel) deliver(ctx context.Context, sender, dest int, payload []byte) error {
	if err := c.st.QueuePush(ctx, pairKey(c.prefix, sender, dest), payload); err != nil {
		return err
	}
	if err := c.st.QueuePush(ctx, wakeupKey(c.prefix, dest), wakeupMarker); err != nil {
		return err
	}
	c.logger.Debug("sent", logpkg.Int("from", sender), logpkg.Int("to", dest), logpkg.Int("bytes", len(payload)))
	return nil
}
