package main

import (
	"net/http"
	"os"
	"time"

	"dcf_valuation/pkg/api/config"
	"dcf_valuation/pkg/api/valuation"
	"dcf_valuation/pkg/core/commentary"
	coreConfig "dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/logger"
	"dcf_valuation/pkg/core/metrics"

	"go.uber.org/zap"
)

func main() {
	cfg, err := coreConfig.Load("")
	log := logger.NewForEnv(cfg.Env)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log.Desugar())
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	m := metrics.New()

	var writer *commentary.Writer
	if p := cfg.Provider(); p != nil {
		writer = commentary.New(p, llm.Options{Model: cfg.Commentary.Model}, log.Named("commentary"))
		log.Infow("commentary enabled", "model", cfg.Commentary.Model)
	}

	mux := http.NewServeMux()

	configHandler := config.NewHandler(cfg)
	mux.HandleFunc("/api/config", m.Instrument("/api/config", configHandler.HandleConfig))
	mux.HandleFunc("/healthz", config.HandleHealth)
	mux.Handle("/metrics", m.Handler())

	valuation.NewHandler(cfg, m, writer, log.Named("valuation")).Register(mux)

	log.Infow("API server starting",
		"addr", cfg.Server.Addr,
		"routes", []string{
			"GET  /api/config",
			"POST /api/valuation",
			"POST /api/valuation/sensitivity",
			"POST /api/valuation/report",
			"POST /api/valuation/export?kind=forecast|summary|assumptions|sensitivity",
			"GET  /metrics",
			"GET  /healthz",
		},
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Errorw("server failed to start", "error", err)
		os.Exit(1)
	}
}
