package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/ytdata-client/pkg/client"
	"github.com/Sternrassler/ytdata-client/pkg/cursor"
	"github.com/Sternrassler/ytdata-client/pkg/logging"
	"github.com/Sternrassler/ytdata-client/pkg/metrics"
	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/Sternrassler/ytdata-client/pkg/youtube"
)

// app carries the state shared by subcommands once the root command has
// resolved its configuration.
type app struct {
	cfg    *Config
	client *client.Client
	yt     *youtube.Service
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "ytdata",
		Short:         "Query channels, videos, comments and members of the YouTube Data API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.client != nil {
				return a.client.Close()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("api-key", "", "API key")
	flags.String("access-token", "", "OAuth2 access token (required for members)")
	flags.String("base-url", client.DefaultBaseURL, "API base URL")
	flags.String("user-agent", "", "User-Agent header")
	flags.Duration("timeout", 30*time.Second, "per-request timeout")
	flags.Float64("rate-limit", 0, "client-side request rate in requests per second (0 disables)")
	flags.Int("burst", 1, "request burst allowed by the rate limit")
	flags.Bool("circuit-breaker", false, "stop calling the API after repeated server failures")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("log-pretty", false, "human-readable log output")
	flags.Bool("json", false, "print results as JSON lines")

	rootCmd.AddCommand(
		newChannelCommand(a),
		newPlaylistCommand(a),
		newSearchCommand(a),
		newCommentsCommand(a),
		newMembersCommand(a),
	)

	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	v, err := newViper(cmd.Flags())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Pretty = cfg.LogPretty
	logCfg.Output = cmd.ErrOrStderr()
	logging.Setup(logCfg)

	c, err := client.New(cfg.ClientConfig())
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	a.client = c
	a.yt = youtube.New(c)

	log.Debug().Str("command", cmd.CommandPath()).Str("base_url", cfg.BaseURL).Msg("Client ready")
	return nil
}

func (a *app) printer(cmd *cobra.Command) *printer {
	return newPrinter(cmd.OutOrStdout(), a.cfg.JSON)
}

func limitOption(cmd *cobra.Command) pagination.Option {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return pagination.WithoutLimit()
	}
	return pagination.WithLimit(limit)
}

func newChannelCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel <id|url|@handle>",
		Short: "Show a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			parts := youtube.PartSnippet | youtube.PartStatistics | youtube.PartContentDetails

			var (
				ch  *youtube.Channel
				err error
			)
			switch arg := args[0]; {
			case len(arg) > 1 && arg[0] == '@':
				ch, err = a.yt.ChannelByHandle(ctx, arg, parts)
			case strings.HasPrefix(arg, "UC") && !strings.Contains(arg, "/"):
				ch, err = a.yt.Channel(ctx, arg, parts)
			default:
				ch, err = a.yt.ChannelByURL(ctx, arg, parts)
			}
			if err != nil {
				return err
			}
			return a.printer(cmd).channel(ch)
		},
	}
	return cmd
}

func newPlaylistCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist <playlist-id>",
		Short: "List the videos of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := a.yt.PlaylistVideos(args[0], youtube.PartSnippet|youtube.PartContentDetails, limitOption(cmd))
			if err != nil {
				return err
			}
			return printVideos(cmd.Context(), a.printer(cmd), seq)
		},
	}
	cmd.Flags().Int("limit", 50, "maximum number of videos (-1 for all)")
	return cmd
}

func newSearchCommand(a *app) *cobra.Command {
	var (
		channelID string
		order     string
		after     string
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search for videos",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := youtube.SearchQuery{
				ChannelID: channelID,
				Order:     youtube.Order(order),
			}
			if len(args) == 1 {
				q.Query = args[0]
			}
			if after != "" {
				t, err := youtube.ParseTimestamp(after)
				if err != nil {
					return fmt.Errorf("invalid --after: %w", err)
				}
				q.After = t
			}

			seq, err := a.yt.SearchVideos(q, limitOption(cmd))
			if err != nil {
				return err
			}
			return printVideos(cmd.Context(), a.printer(cmd), seq)
		},
	}
	cmd.Flags().StringVar(&channelID, "channel", "", "restrict to a channel id")
	cmd.Flags().StringVar(&order, "order", string(youtube.OrderRelevance), "result order (date, rating, relevance, title, viewCount)")
	cmd.Flags().StringVar(&after, "after", "", "only videos published at or after this RFC 3339 time")
	cmd.Flags().Int("limit", youtube.DefaultSearchLimit, "maximum number of results (-1 for all)")
	return cmd
}

func newCommentsCommand(a *app) *cobra.Command {
	var (
		search string
		order  string
	)

	cmd := &cobra.Command{
		Use:   "comments <video-id>",
		Short: "List the comment threads of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := a.yt.Comments(args[0], youtube.CommentQuery{
				Search: search,
				Order:  youtube.CommentOrder(order),
			}, limitOption(cmd))
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			for c, err := range seq.All(cmd.Context()) {
				if err != nil {
					return err
				}
				if err := p.comment(c); err != nil {
					return err
				}
			}
			return p.flush()
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "only threads containing these terms")
	cmd.Flags().StringVar(&order, "order", string(youtube.CommentOrderTime), "thread order (time, relevance)")
	cmd.Flags().Int("limit", 100, "maximum number of threads (-1 for all)")
	return cmd
}

func printVideos(ctx context.Context, p *printer, seq *pagination.Sequence[*youtube.Video]) error {
	for v, err := range seq.All(ctx) {
		if err != nil {
			return err
		}
		if err := p.video(v); err != nil {
			return err
		}
	}
	return p.flush()
}

func newMembersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Channel membership commands (OAuth only)",
	}
	cmd.AddCommand(
		newMembersListCommand(a),
		newMembersLevelsCommand(a),
		newMembersPollCommand(a),
	)
	return cmd
}

func newMembersListCommand(a *app) *cobra.Command {
	var level string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List current members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := a.yt.MyMembers(youtube.MembersQuery{LevelID: level}, limitOption(cmd))
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			for m, err := range seq.All(cmd.Context()) {
				if err != nil {
					return err
				}
				if err := p.member(m); err != nil {
					return err
				}
			}
			return p.flush()
		},
	}
	cmd.Flags().StringVar(&level, "level", "", "only members with access to this level id")
	cmd.Flags().Int("limit", -1, "maximum number of members (-1 for all)")
	return cmd
}

func newMembersLevelsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List membership levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			levels, err := a.yt.MembershipLevels(cmd.Context())
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			for _, l := range levels {
				if err := p.level(l); err != nil {
					return err
				}
			}
			return p.flush()
		},
	}
}

func newMembersPollCommand(a *app) *cobra.Command {
	var (
		watch       bool
		interval    time.Duration
		metricsAddr string
		reset       bool
	)

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Print members who joined since the previous poll",
		Long: `Print members who joined since the previous poll.

The poll cursor is stored per --owner, in redis when --redis-url is set and
in memory otherwise. The first poll of a fresh cursor starts the stream and
usually prints nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closeStore, err := openCursorStore(ctx, a.cfg.RedisURL, a.cfg.CursorTTL)
			if err != nil {
				return err
			}
			defer closeStore()

			key := youtube.MembersPollKey(a.cfg.Owner)
			if reset {
				if err := store.Delete(ctx, key); err != nil {
					return fmt.Errorf("reset cursor: %w", err)
				}
				log.Info().Str("cursor", key.String()).Msg("Cursor reset")
			}

			if metricsAddr != "" {
				srv := metrics.NewServer(metricsAddr)
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error().Err(err).Str("addr", metricsAddr).Msg("Metrics server failed")
					}
				}()
				defer srv.Close()
			}

			p := a.printer(cmd)
			poll := func() error {
				return pollMembers(ctx, a.yt, store, key, p)
			}
			if !watch {
				return poll()
			}
			return runEvery(ctx, interval, poll)
		},
	}
	cmd.Flags().String("redis-url", "", "redis URL for the poll cursor (redis://host:6379/0)")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep polling every --interval")
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "poll interval with --watch")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /health on this address")
	cmd.Flags().BoolVar(&reset, "reset", false, "forget the stored cursor before polling")

	cmd.Flags().String("owner", "default", "account the poll cursor belongs to")
	cmd.Flags().Duration("cursor-ttl", 0, "expire stored cursors after this long (0 keeps them)")
	return cmd
}

func openCursorStore(ctx context.Context, redisURL string, ttl time.Duration) (cursor.Store, func(), error) {
	if redisURL == "" {
		return cursor.NewMemoryStore(), func() {}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redis url: %w", err)
	}
	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info().Str("addr", opts.Addr).Msg("Connected to redis")

	return cursor.NewRedisStore(redisClient, ttl), func() { redisClient.Close() }, nil
}

// pollMembers runs one poll. A poll result is printed even when saving the
// advanced cursor fails; the next poll then repeats the window.
func pollMembers(ctx context.Context, yt *youtube.Service, store cursor.Store, key cursor.Key, p *printer) error {
	cur, err := cursor.LoadOrNew(ctx, store, key)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}

	members, err := yt.PollNewMembers(ctx, cur)
	if err != nil {
		return err
	}

	if err := store.Save(ctx, cur); err != nil {
		log.Warn().Err(err).Str("cursor", key.String()).Msg("Failed to save cursor")
	} else {
		log.Info().Int("members", len(members)).Int("polls", cur.Polls).Msg("Cursor saved")
	}

	for _, m := range members {
		if err := p.member(m); err != nil {
			return err
		}
	}
	return p.flush()
}

// runEvery calls f immediately and then every interval until ctx is done.
// A failing call is logged and retried at the next tick.
func runEvery(ctx context.Context, interval time.Duration, f func() error) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be > 0 (got %s)", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := f(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Msg("Poll failed")
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("Stopped polling")
			return nil
		case <-ticker.C:
		}
	}
}
