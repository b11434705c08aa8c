package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nyx/internal/config"
	"nyx/internal/engine"
	"nyx/internal/net"
	"nyx/internal/sink"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("unknown log level")
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	// Wire the event pipeline: always log locally, optionally fan out
	// to Kafka for downstream consumers.
	sinks := sink.Fanout{sink.NewLog(log.Logger)}
	if cfg.Kafka.Enabled {
		kafkaSink := sink.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, log.Logger)
		defer func() {
			if err := kafkaSink.Close(); err != nil {
				log.Error().Err(err).Msg("unable to close kafka sink")
			}
		}()
		sinks = append(sinks, kafkaSink)
	}

	// Setup the TCP server and the matching engine.
	eng := engine.New(sinks)
	srv := net.New(cfg.Server.Address, cfg.Server.Port, cfg.Server.Workers, eng)

	go srv.Run(ctx)
	// Block on running the server.
	<-ctx.Done()
}
