// Command ticker is an example collaborator: it connects, subscribes
// to one asset, and prints ticks until interrupted. It mirrors the
// shape of the websocket_prices example this module grew out of, but
// talks to pocketoption/client instead of the Saxo adapter.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bjoelf/pocketoption-core/internal/config"
	"github.com/bjoelf/pocketoption-core/pocketoption/client"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	asset := flag.String("asset", "EURUSD_otc", "asset to subscribe to")
	flag.Parse()

	settings, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("loading configuration")
	}
	creds, err := settings.ParseCredentials()
	if err != nil {
		logger.Fatal().Err(err).Msg("parsing credentials")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, err := client.Connect(ctx, client.Config{
		Credentials:       creds,
		ReconnectTime:     settings.ReconnectTime,
		MaxRedials:        settings.MaxRedials,
		Logger:            logger,
		ReconnectCallback: client.DefaultReconnectCallback(client.DefaultReconnectSettleDelay, client.DefaultPerAssetResubscribeDelay),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting")
	}

	logger.Info().Str("asset", *asset).Msg("subscribing")
	ticks, unsubscribe, err := c.SubscribeSymbol(ctx, *asset)
	if err != nil {
		logger.Fatal().Err(err).Msg("subscribe_symbol failed")
	}
	defer unsubscribe()

	for {
		select {
		case tick, ok := <-ticks:
			if !ok {
				logger.Warn().Msg("tick stream closed")
				return
			}
			fmt.Printf("%-14s %.3f %.5f\n", tick.Asset, tick.Timestamp, tick.Price)
		case <-c.Done():
			logger.Fatal().Err(c.Err()).Msg("client became unhealthy")
		case <-ctx.Done():
			return
		}
	}
}
