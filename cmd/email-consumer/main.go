package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"game-exchange/internal/config"
	"game-exchange/internal/logger"
	"game-exchange/internal/notification"
)

func main() {
	cfg, err := config.LoadConsumer()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = log.WithSalt(cfg.LogHashSalt)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := notification.NewKafkaReader(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic, cfg.Notify.KafkaGroupID)
	consumer := notification.NewConsumer(reader, log)
	log.Info("consuming notifications", "topic", cfg.Notify.KafkaTopic, "group", cfg.Notify.KafkaGroupID)

	err = consumer.Run(ctx)
	if cerr := consumer.Close(); cerr != nil {
		log.Warn("closing kafka reader", "error", cerr)
	}
	if err != nil {
		log.Error("email consumer stopped", "error", err)
		os.Exit(1)
	}
}
