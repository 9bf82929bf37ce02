// Command buyer is an example collaborator: it connects, places a
// single demo order, and waits for it to close. It mirrors the shape
// of the place_order example this module grew out of.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bjoelf/pocketoption-core/internal/config"
	"github.com/bjoelf/pocketoption-core/pocketoption/client"
	"github.com/bjoelf/pocketoption-core/pocketoption/model"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	asset := flag.String("asset", "EURUSD_otc", "asset to trade")
	amount := flag.Float64("amount", 1, "stake amount")
	seconds := flag.Int("time", 60, "expiry in seconds")
	sell := flag.Bool("sell", false, "place a put instead of a call")
	flag.Parse()

	settings, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("loading configuration")
	}
	creds, err := settings.ParseCredentials()
	if err != nil {
		logger.Fatal().Err(err).Msg("parsing credentials")
	}
	if !creds.IsDemo() {
		logger.Fatal().Msg("refusing to place a live order from the example collaborator; use a demo SSID")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, err := client.Connect(ctx, client.Config{
		Credentials:   creds,
		ReconnectTime: settings.ReconnectTime,
		MaxRedials:    settings.MaxRedials,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting")
	}

	id, deal := func() (uuid.UUID, model.Deal) {
		if *sell {
			uid, d, err := c.Sell(ctx, *asset, *amount, *seconds)
			if err != nil {
				logger.Fatal().Err(err).Msg("sell failed")
			}
			return uid, d
		}
		uid, d, err := c.Buy(ctx, *asset, *amount, *seconds)
		if err != nil {
			logger.Fatal().Err(err).Msg("buy failed")
		}
		return uid, d
	}()

	logger.Info().Str("deal_id", id.String()).Float64("amount", deal.Amount).Msg("order placed, awaiting close")

	closed, err := c.CheckResults(ctx, id)
	if err != nil {
		logger.Fatal().Err(err).Msg("waiting for order to close")
	}
	logger.Info().Str("deal_id", id.String()).Float64("profit", closed.Profit).Msg("order closed")
}
