package channel

import (
	"context"
	"fmt"
	"os"

	logpkg "github.com/rzbill/crosstalk/pkg/log"
	"github.com/rzbill/crosstalk/pkg/store"
)

// osMemberSentinel seeds the osMembers map at channel creation; stores are
// assumed not to support truly empty collections.
const osMemberSentinel = "-1"

// Channel is a per-process handle onto one named channel. It carries only
// the channel id, its derived key names, the injected store capability, and
// the caller's identity; no live connection state, so handles are freely
// copyable.
type Channel struct {
	st store.Store
	id int

	prefix       string
	membersKey   string
	osMembersKey string

	identity int
	logger   logpkg.Logger
}

// Option configures Open.
type Option func(*openConfig)

type openConfig struct {
	flush    bool
	identity int
	logger   logpkg.Logger
}

// WithFlush wipes the entire store before opening. Test and reset use only.
func WithFlush() Option {
	return func(c *openConfig) { c.flush = true }
}

// WithIdentity overrides the caller's OS-level identity, which defaults to
// os.Getpid(). Distinct identities let in-process participants (goroutines,
// tests) and scripted CLI sessions act as separate joiners.
func WithIdentity(id int) Option {
	return func(c *openConfig) { c.identity = id }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l logpkg.Logger) Option {
	return func(c *openConfig) { c.logger = l }
}

// Open returns a handle onto channelID, registering the channel on first
// reference. Opening an existing channel is idempotent: every opener attaches
// to the same registry state.
func Open(ctx context.Context, st store.Store, channelID int, opts ...Option) (*Channel, error) {
	if channelID < 0 || channelID > maxChanID {
		return nil, fmt.Errorf("%w: channel id %d", ErrInvalidID, channelID)
	}
	cfg := openConfig{identity: os.Getpid(), logger: logpkg.NewNopLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.flush {
		if err := st.Flush(ctx); err != nil {
			return nil, err
		}
	}

	prefix := channelPrefix(channelID)
	ch := &Channel{
		st:           st,
		id:           channelID,
		prefix:       prefix,
		membersKey:   prefix + membersSuffix,
		osMembersKey: prefix + osMembersSuffix,
		identity:     cfg.identity,
		logger:       cfg.logger.With(logpkg.Int("channel", channelID)),
	}

	known, err := st.SetContains(ctx, registryKey, formatID(channelID))
	if err != nil {
		return nil, err
	}
	if !known {
		// First reference: register the channel and seed the sentinel
		// entries so member collections are never structurally empty.
		if err := st.SetAdd(ctx, registryKey, formatID(channelID)); err != nil {
			return nil, err
		}
		if err := st.MapSet(ctx, ch.osMembersKey, osMemberSentinel, osMemberSentinel); err != nil {
			return nil, err
		}
		if err := st.SetAdd(ctx, ch.membersKey, formatID(maxProcID)); err != nil {
			return nil, err
		}
		ch.logger.Debug("channel registered")
	}
	return ch, nil
}

// ID returns the channel id.
func (c *Channel) ID() int { return c.id }

// Join registers the calling process under the channel-level id. A process
// joins at most once, and no two processes may claim the same id.
func (c *Channel) Join(ctx context.Context, id int) error {
	if id < 0 || id >= maxProcID {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	if _, ok, err := c.st.MapGet(ctx, c.osMembersKey, formatID(c.identity)); err != nil {
		return err
	} else if ok {
		return ErrAlreadyJoined
	}
	if taken, err := c.st.SetContains(ctx, c.membersKey, formatID(id)); err != nil {
		return err
	} else if taken {
		return fmt.Errorf("%w: %d", ErrIDInUse, id)
	}

	if err := c.st.MapSet(ctx, c.osMembersKey, formatID(c.identity), formatID(id)); err != nil {
		return err
	}
	if err := c.st.SetAdd(ctx, c.membersKey, formatID(id)); err != nil {
		return err
	}

	// Confirm both entries landed before reporting success.
	if _, err := c.authorize(ctx); err != nil {
		return err
	}
	c.logger.Debug("joined", logpkg.Int("id", id), logpkg.Int("identity", c.identity))
	return nil
}

// Leave removes the calling process from the channel. The caller must be a
// validated member.
func (c *Channel) Leave(ctx context.Context) error {
	id, err := c.authorize(ctx)
	if err != nil {
		return err
	}
	if err := c.st.MapDelete(ctx, c.osMembersKey, formatID(c.identity)); err != nil {
		return err
	}
	if err := c.st.SetRemove(ctx, c.membersKey, formatID(id)); err != nil {
		return err
	}
	c.logger.Debug("left", logpkg.Int("id", id))
	return nil
}

// Members returns the channel-level ids currently joined, hiding the
// sentinel.
func (c *Channel) Members(ctx context.Context) ([]int, error) {
	raw, err := c.st.SetMembers(ctx, c.membersKey)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(raw))
	for _, m := range raw {
		id, err := parseID(m)
		if err != nil {
			return nil, fmt.Errorf("channel: corrupt member entry %q", m)
		}
		if id == maxProcID {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

// authorize resolves the caller's OS identity to its channel-level id and
// confirms membership. Called by every operation; authorization is never
// cached.
func (c *Channel) authorize(ctx context.Context) (int, error) {
	v, ok, err := c.st.MapGet(ctx, c.osMembersKey, formatID(c.identity))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrUnknownProcess
	}
	id, err := parseID(v)
	if err != nil {
		return 0, fmt.Errorf("channel: corrupt membership entry %q", v)
	}
	member, err := c.st.SetContains(ctx, c.membersKey, formatID(id))
	if err != nil {
		return 0, err
	}
	if !member {
		return 0, ErrUnknownProcess
	}
	return id, nil
}

// memberSet returns the current member ids as a set, excluding the sentinel.
func (c *Channel) memberSet(ctx context.Context) (map[int]struct{}, error) {
	raw, err := c.st.SetMembers(ctx, c.membersKey)
	if err != nil {
		return nil, err
	}
	out := make(map[int]struct{}, len(raw))
	for _, m := range raw {
		id, err := parseID(m)
		if err != nil {
			return nil, fmt.Errorf("channel: corrupt member entry %q", m)
		}
		if id == maxProcID {
			continue
		}
		out[id] = struct{}{}
	}
	return out, nil
}
