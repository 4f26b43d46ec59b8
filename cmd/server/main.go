package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/careerbuddy/go-careerbuddy/internal/config"
	"github.com/careerbuddy/go-careerbuddy/internal/log"
	"github.com/careerbuddy/go-careerbuddy/pkg/emotion"
	"github.com/careerbuddy/go-careerbuddy/pkg/pitch"
	"github.com/careerbuddy/go-careerbuddy/pkg/quota"
	"github.com/careerbuddy/go-careerbuddy/pkg/voice"
	"github.com/careerbuddy/go-careerbuddy/pkg/web"
)

func main() {
	envFile := flag.String("env", "", "optional .env file to load")
	flag.Parse()

	if *envFile != "" {
		_ = godotenv.Load(*envFile)
	} else {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Init("info")
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	logger := log.L()

	openai, err := pitch.NewOpenAI(
		pitch.WithAPIKey(cfg.OpenAIKey),
		pitch.WithLogger(logger),
	)
	if err != nil {
		logger.Error("openai provider init failed", "error", err)
		os.Exit(1)
	}
	providers := []pitch.Provider{openai}

	if cfg.HuggingFaceKey != "" {
		hf, err := pitch.NewHuggingFace(
			pitch.WithAPIKey(cfg.HuggingFaceKey),
			pitch.WithLogger(logger),
		)
		if err != nil {
			logger.Error("huggingface provider init failed", "error", err)
			os.Exit(1)
		}
		providers = append(providers, hf)
	}

	gateway, err := pitch.NewGatewayWithLogger(logger, pitch.DefaultRetryPolicy(), providers...)
	if err != nil {
		logger.Error("gateway init failed", "error", err)
		os.Exit(1)
	}
	defer gateway.Close()

	synth, err := voice.NewSynthesizer(
		voice.WithAPIKey(cfg.HumeKey),
		voice.WithLogger(logger),
	)
	if err != nil {
		logger.Error("synthesizer init failed", "error", err)
		os.Exit(1)
	}

	scorer, err := emotion.NewHumeScorer(
		emotion.WithAPIKey(cfg.HumeKey),
		emotion.WithLogger(logger),
	)
	if err != nil {
		logger.Error("scorer init failed", "error", err)
		os.Exit(1)
	}
	pipeline, err := emotion.NewPipeline(scorer, emotion.WithLogger(logger))
	if err != nil {
		logger.Error("pipeline init failed", "error", err)
		os.Exit(1)
	}

	server, err := web.NewServer(web.Options{
		Generator:      gateway,
		Quota:          quota.NewMemoryStoreWithLogger(logger, cfg.TrialAllowance),
		Speech:         synth,
		Analyzer:       pipeline,
		SharedSecret:   cfg.SharedSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("server init failed", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down")
		_ = server.Shutdown()
	}()

	logger.Info("starting server",
		"port", cfg.Port,
		"providers", gateway.Providers(),
		"trial_allowance", cfg.TrialAllowance,
	)
	if err := server.Listen(cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
