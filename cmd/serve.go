package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/washb22/gunghabnote/internal/api"
	"github.com/washb22/gunghabnote/internal/auth"
	"github.com/washb22/gunghabnote/internal/community"
	"github.com/washb22/gunghabnote/internal/logger"
	"github.com/washb22/gunghabnote/internal/metrics"
	"github.com/washb22/gunghabnote/internal/mindreader"
	"github.com/washb22/gunghabnote/internal/server"
	"github.com/washb22/gunghabnote/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		if err := serve(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address, overrides server.address")
	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the gunghabnote api", zap.String("version", version))

	// Only non-secret sections are dumped.
	pretty, _ := json.MarshalIndent(struct {
		Server  any `json:"server"`
		Session any `json:"session"`
	}{config.Server, config.Session}, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	collector := metrics.New()

	completer, err := newCompleter(ctx, config.Completion, logger)
	if err != nil {
		logger.Fatal("building a completion backend", zap.Error(err))
	}

	deps := api.Deps{
		Analyzer: newAnalyzer(completer, config.Completion, collector, logger),
		Reader:   mindreader.NewReader(nil, nil),
		Metrics:  collector,
		Logger:   logger,
	}

	if config.Redis.Address == "" {
		logger.Warn("redis is not configured, login and community routes are disabled",
			zap.String("hint", "set redis.address or GUNGHAB_REDIS_ADDRESS"),
		)
	} else {
		rdb, err := storage.NewRedis(ctx, config.Redis)
		if err != nil {
			logger.Fatal("connecting to redis", zap.Error(err))
		}
		defer rdb.Close()

		sessions := auth.NewSessionStore(rdb, config.Session.TTL)
		deps.Sessions = sessions
		deps.Board = community.NewService(community.NewRedisStore(rdb), community.Options{
			Logger:    logger.Named("community"),
			ListLimit: config.Community.ListLimit,
		})

		oauth, err := newOAuthClient(config.OAuth, config.Completion.Timeout)
		if err != nil {
			logger.Fatal("configuring oauth providers", zap.Error(err))
		}
		deps.Authenticator = oauth
	}

	srv := server.New(config.Server, api.NewHandler(deps).Router(), logger.Named("server"))
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("serving http: %w", err)
	}

	logger.Info("stopped")
	return nil
}
