package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/ledgercore/txgateway"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	var cfg txgateway.Config
	cfp := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()
	cfgfl, err := os.Open(*cfp)
	if err != nil {
		logger.Fatal().Err(err).Msg("error opening config file")
	}
	if err = yaml.NewDecoder(cfgfl).Decode(&cfg); err != nil {
		logger.Fatal().Err(err).Msg("error decoding config file")
	}
	if err = cfg.ApplyEnv(); err != nil {
		logger.Fatal().Err(err).Msg("error applying environment overrides")
	}
	lvl, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Fatal().Err(err).Msg("error parsing log level")
	}
	zerolog.SetGlobalLevel(lvl)

	users := txgateway.NewUserStore()
	txlog := txgateway.NewTransactionLog()
	gw, err := txgateway.NewGateway(users, txlog, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("error starting gateway")
	}
	defer gw.Close()

	var svc txgateway.Service = txgateway.NewService(gw, users, txlog)
	limits := txgateway.NewServiceLimits(cfg.Resilient.MaxInFlightPerOp)
	brkrs := txgateway.NewServiceBreaker("txgateway")
	svc = txgateway.Chain(
		txgateway.NewCircuitBreakMiddleware(brkrs),
		txgateway.NewLimitMiddleware(limits, cfg.Resilient.AcquireTimeout),
	)(svc)

	hndlr := txgateway.NewHTTPHandler(svc, &logger)
	logger.Info().Str("addr", cfg.Server.ListenAddress).Msg("listening")
	logger.Fatal().Err(http.ListenAndServe(cfg.Server.ListenAddress, hndlr)).Msg("server stopped")
}
