package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/tokenmesh/hybridex/params"
	"github.com/tokenmesh/hybridex/pkg/api"
	"github.com/tokenmesh/hybridex/pkg/core/engine"
	"github.com/tokenmesh/hybridex/pkg/core/ledger"
	"github.com/tokenmesh/hybridex/pkg/storage"
	"github.com/tokenmesh/hybridex/pkg/util"
)

func main() {
	cfg := params.LoadFromEnv("") // "" loads .env from the working directory

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Node.LogFile != "" {
		logger, err = util.NewLoggerWithFile(cfg.Node.LogFile)
	} else {
		logger, err = util.NewLogger()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("starting", "listen", cfg.API.Listen, "data_dir", cfg.Node.DataDir)

	// ---- Audit store ----
	store, err := storage.NewStore(cfg.Node.DataDir)
	if err != nil {
		sugar.Fatalw("open_store_failed", "err", err)
	}
	defer store.Close()

	// ---- Ledger ----
	// The in-memory ledger stands in for the external token contracts.
	ld := ledger.New()

	// ---- Engine + API ----
	// The WebSocket hub doubles as the engine's event emitter.
	hub := api.NewHub(sugar)

	eng, err := engine.New(engine.Config{
		Ledger:  ld,
		Gate:    engine.AllowAll{},
		Store:   store,
		Emitter: hub,
		Logger:  sugar,
	})
	if err != nil {
		sugar.Fatalw("engine_init_failed", "err", err)
	}

	var faucet *ledger.Ledger
	if cfg.Node.DevFaucet {
		faucet = ld
		sugar.Infow("dev_faucet_enabled")
	}

	srv := api.NewServer(eng, faucet, hub, sugar)
	if err := srv.Start(cfg.API.Listen); err != nil {
		sugar.Fatalw("api_server_failed", "err", err)
	}
}
