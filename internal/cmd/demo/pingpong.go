// Package demo holds runnable end-to-end exercises for the channel protocol.
package demo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rzbill/crosstalk/pkg/channel"
	logpkg "github.com/rzbill/crosstalk/pkg/log"
	"github.com/rzbill/crosstalk/pkg/store"
)

// Options configures PingPong.
type Options struct {
	Store     store.Store
	ChannelID int
	Rounds    int
	Logger    logpkg.Logger
}

// PingPong runs the canonical two-member exchange: member 1 broadcasts the
// values 1..Rounds one at a time, member 2 receives each in order and
// acknowledges, and member 1 waits for every ack. It exercises open, join,
// sendToAll, sendTo, and the selective blocking receive end to end.
func PingPong(ctx context.Context, opts Options) error {
	if opts.Rounds <= 0 {
		opts.Rounds = 100
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}

	// Two handles with distinct identities stand in for two OS processes.
	server, err := channel.Open(ctx, opts.Store, opts.ChannelID, channel.WithFlush(), channel.WithIdentity(1001), channel.WithLogger(logger))
	if err != nil {
		return err
	}
	client, err := channel.Open(ctx, opts.Store, opts.ChannelID, channel.WithIdentity(1002), channel.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := server.Join(ctx, 1); err != nil {
		return err
	}
	if err := client.Join(ctx, 2); err != nil {
		return err
	}

	clientErr := make(chan error, 1)
	go func() {
		for i := 0; i < opts.Rounds; i++ {
			msg, err := client.RecvFromAny(ctx)
			if err != nil {
				clientErr <- err
				return
			}
			logger.Info("client received", logpkg.Int("from", msg.Sender), logpkg.Str("data", string(msg.Payload)))
			if err := client.SendTo(ctx, msg.Sender, []byte("ack")); err != nil {
				clientErr <- err
				return
			}
		}
		clientErr <- nil
	}()

	for i := 1; i <= opts.Rounds; i++ {
		logger.Info("server sending", logpkg.Int("data", i))
		if err := server.SendToAll(ctx, []byte(strconv.Itoa(i))); err != nil {
			return err
		}
		ack, err := server.RecvFromAny(ctx)
		if err != nil {
			return err
		}
		if string(ack.Payload) != "ack" {
			return fmt.Errorf("demo: unexpected reply %q from %d", ack.Payload, ack.Sender)
		}
		logger.Info("server acked", logpkg.Int("from", ack.Sender), logpkg.Int("round", i))
	}
	return <-clientErr
}
