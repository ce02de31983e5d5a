package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rzbill/crosstalk/internal/cmd/demo"
	cfgpkg "github.com/rzbill/crosstalk/internal/config"
	"github.com/rzbill/crosstalk/pkg/channel"
	logpkg "github.com/rzbill/crosstalk/pkg/log"
	"github.com/rzbill/crosstalk/pkg/store"
	memstore "github.com/rzbill/crosstalk/pkg/store/memory"
	pebblestore "github.com/rzbill/crosstalk/pkg/store/pebble"
	redisstore "github.com/rzbill/crosstalk/pkg/store/redis"
)

func main() {
	var (
		configPath string
		storeName  string
		redisAddr  string
		dataDir    string
		fsyncMode  string
	)

	cfg := cfgpkg.Default()
	logger := logpkg.NewNopLogger()

	rootCmd := &cobra.Command{
		Use:   "crosstalk",
		Short: "Crosstalk channel CLI",
		Long:  "Crosstalk lets OS processes exchange messages over named channels backed by a shared store. This CLI runs one-shot channel operations and demos.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			cfgpkg.FromEnv(&cfg)
			if storeName != "" {
				cfg.Store = storeName
			}
			if redisAddr != "" {
				cfg.Redis.Addr = redisAddr
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if fsyncMode != "" {
				cfg.Fsync = fsyncMode
			}

			level, err := logpkg.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			logger = logpkg.NewLogger(logpkg.WithLevel(level), logpkg.WithFormat(cfg.Log.Format))
			// Pebble routes its own logs through the standard library.
			logpkg.RedirectStdLog(logger)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CROSSTALK_CONFIG"), "Path to JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&storeName, "store", "", "Store backend: redis|pebble|memory (default redis)")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "Redis server address (default localhost:6379)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory for the pebble backend")
	rootCmd.PersistentFlags().StringVar(&fsyncMode, "fsync", "", "Pebble fsync mode: always|interval|never")

	withStore := func(run func(ctx context.Context, st store.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			return run(ctx, st)
		}
	}

	// flush
	flushCmd := &cobra.Command{
		Use:   "flush",
		Short: "Wipe everything in the configured store",
		RunE: withStore(func(ctx context.Context, st store.Store) error {
			if err := st.Flush(ctx); err != nil {
				return err
			}
			fmt.Println("store flushed")
			return nil
		}),
	}
	rootCmd.AddCommand(flushCmd)

	// members
	var membersChan int
	membersCmd := &cobra.Command{
		Use:   "members",
		Short: "List joined ids on a channel",
		RunE: withStore(func(ctx context.Context, st store.Store) error {
			ch, err := channel.Open(ctx, st, membersChan, channel.WithLogger(logger))
			if err != nil {
				return err
			}
			ids, err := ch.Members(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		}),
	}
	membersCmd.Flags().IntVar(&membersChan, "channel", 0, "Channel id")
	rootCmd.AddCommand(membersCmd)

	// join / leave / send / sendall / recv share these
	var (
		opChan     int
		opIdentity int
		opID       int
		opTo       []int
		opFrom     []int
		opData     string
		opNoBlock  bool
		opTimeout  time.Duration
	)
	addSessionFlags := func(cmd *cobra.Command) {
		cmd.Flags().IntVar(&opChan, "channel", 0, "Channel id")
		cmd.Flags().IntVar(&opIdentity, "identity", os.Getpid(), "OS-level identity of this session")
	}
	openSession := func(ctx context.Context, st store.Store) (*channel.Channel, error) {
		return channel.Open(ctx, st, opChan, channel.WithIdentity(opIdentity), channel.WithLogger(logger))
	}

	joinCmd := &cobra.Command{
		Use:   "join",
		Short: "Join a channel under a channel-level id",
		RunE: withStore(func(ctx context.Context, st store.Store) error {
			ch, err := openSession(ctx, st)
			if err != nil {
				return err
			}
			return ch.Join(ctx, opID)
		}),
	}
	addSessionFlags(joinCmd)
	joinCmd.Flags().IntVar(&opID, "id", 0, "Channel-level id to join as")
	rootCmd.AddCommand(joinCmd)

	leaveCmd := &cobra.Command{
		Use:   "leave",
		Short: "Leave a channel",
		RunE: withStore(func(ctx context.Context, st store.Store) error {
			ch, err := openSession(ctx, st)
			if err != nil {
				return err
			}
			return ch.Leave(ctx)
		}),
	}
	addSessionFlags(leaveCmd)
	rootCmd.AddCommand(leaveCmd)

	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Send a payload to one or more members",
		RunE: withStore(func(ctx context.Context, st store.Store) error {
			ch, err := openSession(ctx, st)
			if err != nil {
				return err
			}
			return ch.SendToMany(ctx, opTo, []byte(opData))
		}),
	}
	addSessionFlags(sendCmd)
	sendCmd.Flags().IntSliceVar(&opTo, "to", nil, "Destination id(s)")
	sendCmd.Flags().StringVar(&opData, "data", "", "Payload")
	rootCmd.AddCommand(sendCmd)

	sendallCmd := &cobra.Command{
		Use:   "sendall",
		Short: "Send a payload to every member",
		RunE: withStore(func(ctx context.Context, st store.Store) error {
			ch, err := openSession(ctx, st)
			if err != nil {
				return err
			}
			return ch.SendToAll(ctx, []byte(opData))
		}),
	}
	addSessionFlags(sendallCmd)
	sendallCmd.Flags().StringVar(&opData, "data", "", "Payload")
	rootCmd.AddCommand(sendallCmd)

	recvCmd := &cobra.Command{
		Use:   "recv",
		Short: "Receive the next message",
		RunE: withStore(func(ctx context.Context, st store.Store) error {
			ch, err := openSession(ctx, st)
			if err != nil {
				return err
			}
			var ropts []channel.RecvOption
			if opNoBlock {
				ropts = append(ropts, channel.NoBlock())
			}
			if opTimeout > 0 {
				ropts = append(ropts, channel.WithTimeout(opTimeout))
			}
			var msg channel.Message
			if len(opFrom) > 0 {
				msg, err = ch.RecvFrom(ctx, opFrom, ropts...)
			} else {
				msg, err = ch.RecvFromAny(ctx, ropts...)
			}
			switch {
			case errors.Is(err, channel.ErrNoMessage):
				fmt.Println("no message")
				return nil
			case errors.Is(err, channel.ErrTimeout):
				fmt.Println("timeout")
				return nil
			case err != nil:
				return err
			}
			fmt.Printf("%d %s\n", msg.Sender, msg.Payload)
			return nil
		}),
	}
	addSessionFlags(recvCmd)
	recvCmd.Flags().IntSliceVar(&opFrom, "from", nil, "Only receive from these sender id(s); default any")
	recvCmd.Flags().BoolVar(&opNoBlock, "no-block", false, "Return immediately when nothing is queued")
	recvCmd.Flags().DurationVar(&opTimeout, "timeout", 0, "Bound one blocking wait (0 waits indefinitely)")
	rootCmd.AddCommand(recvCmd)

	// demo pingpong
	var demoRounds, demoChan int
	demoCmd := &cobra.Command{Use: "demo", Short: "Runnable end-to-end exercises"}
	pingpongCmd := &cobra.Command{
		Use:   "pingpong",
		Short: "Two members trade numbered messages and acks (flushes the store first)",
		RunE: withStore(func(ctx context.Context, st store.Store) error {
			return demo.PingPong(ctx, demo.Options{
				Store:     st,
				ChannelID: demoChan,
				Rounds:    demoRounds,
				Logger:    logger,
			})
		}),
	}
	pingpongCmd.Flags().IntVar(&demoChan, "channel", 1, "Channel id")
	pingpongCmd.Flags().IntVar(&demoRounds, "rounds", 100, "Number of round trips")
	demoCmd.AddCommand(pingpongCmd)
	rootCmd.AddCommand(demoCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore builds the configured store backend.
func openStore(cfg cfgpkg.Config) (store.Store, error) {
	switch cfg.Store {
	case "", "redis":
		return redisstore.Open(redisstore.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		}), nil
	case "pebble":
		mode := pebblestore.FsyncModeAlways
		switch cfg.Fsync {
		case "", "always":
		case "interval":
			mode = pebblestore.FsyncModeInterval
		case "never":
			mode = pebblestore.FsyncModeNever
		default:
			return nil, fmt.Errorf("invalid fsync mode %q; use always|interval|never", cfg.Fsync)
		}
		dir := cfg.DataDir
		if dir == "" {
			dir = cfgpkg.DefaultDataDir()
		}
		return pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: mode})
	case "memory":
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store %q; use redis|pebble|memory", cfg.Store)
	}
}
