package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drakos74/grid-coin/client/binance"
	"github.com/drakos74/grid-coin/client/coinmarketcap"
	"github.com/drakos74/grid-coin/client/kraken"
	"github.com/drakos74/grid-coin/client/local"
	"github.com/drakos74/grid-coin/infra/config"
	"github.com/drakos74/grid-coin/internal/api"
	"github.com/drakos74/grid-coin/internal/conversation"
	"github.com/drakos74/grid-coin/internal/feed"
	"github.com/drakos74/grid-coin/internal/grid"
	"github.com/drakos74/grid-coin/internal/server"
	"github.com/drakos74/grid-coin/internal/storage"
	json_storage "github.com/drakos74/grid-coin/internal/storage/file/json"
	"github.com/drakos74/grid-coin/internal/trader"
	localuser "github.com/drakos74/grid-coin/user/local"
	"github.com/drakos74/grid-coin/user/telegram"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	path := flag.String("config", config.DefaultPath, "path to the json or yaml config file")
	env := flag.String("env", ".env", "env file with the api secrets")
	flag.Parse()

	if err := config.LoadEnv(*env); err != nil {
		log.Fatal().Err(err).Msg("could not load env")
	}
	cfg := config.MustLoad(*path)
	setupLog(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source, err := newFeed(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating feed")
	}
	prices := feed.NewRetry(source, cfg.Feed.Retries, time.Duration(cfg.Feed.Delay))

	u, err := newUser(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating user")
	}

	journal := json_storage.NewRegistry(cfg.Storage.Journal)
	loop := trader.New(prices, u, cfg.Settings()).
		WithRegistry(journal)
	controller := conversation.NewController(u, loop, prices, cfg.Trading.Currency, cfg.Coins()...)

	srv := server.NewServer("grid-coin", cfg.Server.Port).
		Add(server.Live()).
		Add(server.JSON("status", func() interface{} {
			return loop.Status()
		})).
		Add(server.JSON("journal", func() interface{} {
			return sessionEvents(journal, loop.Status())
		})).
		WithMetrics(prometheus.DefaultGatherer)
	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	if err := u.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("error running user")
	}

	log.Info().
		Str("feed", cfg.Feed.Source).
		Str("user", cfg.User.Source).
		Float64("capital", cfg.Grid.Capital).
		Int("slots", cfg.Grid.Slots).
		Float64("step", cfg.Grid.Step).
		Msg("grid-coin started")
	controller.Run(ctx)
	log.Info().Msg("grid-coin stopped")
}

// sessionEvents reads back the journal of the running session.
func sessionEvents(journal *json_storage.Registry, status trader.Status) []grid.Event {
	events := make([]grid.Event, 0)
	if !status.Running {
		return events
	}
	k := storage.K{Pair: string(status.Coin), Label: status.Session}
	if err := journal.GetAll(k, &events); err != nil && !errors.Is(err, storage.NotFoundErr) {
		log.Error().Err(err).Str("key", k.String()).Msg("could not read journal")
	}
	return events
}

func setupLog(cfg *config.Config) {
	level, err := cfg.Level()
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func newFeed(cfg *config.Config) (feed.Feed, error) {
	switch cfg.Feed.Source {
	case config.FeedBinance:
		return binance.NewFeed(), nil
	case config.FeedCoinMarketCap:
		return coinmarketcap.NewFeed(), nil
	case config.FeedKraken:
		return kraken.NewFeed(), nil
	case config.FeedLocal:
		return local.NewWalk(100, 1, time.Now().UnixNano()), nil
	}
	return nil, fmt.Errorf("unknown feed source '%s'", cfg.Feed.Source)
}

func newUser(cfg *config.Config) (api.User, error) {
	switch cfg.User.Source {
	case config.UserTelegram:
		return telegram.NewBot()
	case config.UserLocal:
		return localuser.NewUser(cfg.User.Log)
	}
	return nil, fmt.Errorf("unknown user source '%s'", cfg.User.Source)
}
