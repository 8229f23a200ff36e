package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/peter-xbs/FSM/api"
	"github.com/peter-xbs/FSM/logger"
	"github.com/peter-xbs/FSM/pgstore"
	"github.com/peter-xbs/FSM/pipeline"
	"github.com/peter-xbs/FSM/types"
	"github.com/peter-xbs/FSM/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type Config struct {
	ConfigPath    string `envconfig:"RELEX_CONFIG_PATH" required:"true"`
	RestAPIActive bool   `envconfig:"RELEX_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string `envconfig:"RELEX_REST_API_PORT" default:"10000"`
	APICacheSize  int    `envconfig:"RELEX_API_CACHE_SIZE" default:"256"`
	APIMaxBody    int64  `envconfig:"RELEX_API_MAX_BODY_BYTES" default:"8388608"`
	PgDSN         string `envconfig:"RELEX_PG_DSN"`
	WorkerActive  bool   `envconfig:"RELEX_WORKER_ACTIVE" default:"true"`
}

const pipelineStartMaxRetries = 5

func main() {
	_ = godotenv.Load()
	supervise := flag.Bool("supervise", false, "run the service as a child process and report its panics as log records")
	flag.Parse()

	if *supervise {
		logger.WrapProcess(os.Args[0], withoutSupervise(os.Args[1:])...)
		return
	}

	logger.SetupLogging()
	relexLogger := logger.NewLogger("Main")
	fatalErrLogger := relexLogger.Fatal().Caller()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := pipeline.NewMetrics(prometheus.DefaultRegisterer)
	ppln, err := loadPipeline(ctx, config, metrics, relexLogger)
	if err != nil {
		fatalErrLogger.Err(err).Msg("Could not start pipeline")
		os.Exit(1)
	}

	var store *pgstore.Store
	if config.PgDSN != "" {
		store, err = pgstore.Open(ctx, config.PgDSN)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Could not open relationship store")
			os.Exit(1)
		}
		defer store.Close()
		relexLogger.Info().Msg("Relationships will be stored in PostgreSQL")
	}

	if config.RestAPIActive {
		apiRequest, err := api.NewRequest(ppln, config.APICacheSize)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Could not create API handler")
			os.Exit(1)
		}
		apiRequest.MaxBodyBytes = config.APIMaxBody
		server := &http.Server{
			Addr:    fmt.Sprintf(":%s", config.RestAPIPort),
			Handler: api.NewRouter(apiRequest, prometheus.DefaultGatherer),
		}
		go func() {
			relexLogger.Info().Msgf("REST API on %s", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fatalErrLogger.Err(err).Msg("REST API stopped with error")
				os.Exit(1)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	if !config.WorkerActive {
		<-ctx.Done()
		return
	}

	relexLogger.Info().Msg("Start relex worker")
	for ctx.Err() == nil {
		var relationStore worker.RelationStore
		if store != nil {
			relationStore = store
		}
		rmqWorker, err := worker.New(ppln, relationStore)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		if err := rmqWorker.StartWorker(ctx); err != nil {
			relexLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			sleep(ctx, 5*time.Second)
		}
	}
	relexLogger.Info().Msg("Shutting down")
}

// loadPipeline retries while the configuration volume is not ready.
func loadPipeline(ctx context.Context, config Config, metrics *pipeline.Metrics, relexLogger zerolog.Logger) (pipeline.Pipeline, error) {
	var lastErr error
	for retry := 0; retry < pipelineStartMaxRetries; retry++ {
		if retry > 0 {
			relexLogger.Err(lastErr).Msg("Failed to start pipeline. Retrying in 5 sec")
			if !sleep(ctx, 5*time.Second) {
				return nil, ctx.Err()
			}
		}
		cfgs, err := types.LoadConfigurations(config.ConfigPath)
		if err != nil {
			lastErr = fmt.Errorf("failed to load configurations: %w", err)
			continue
		}
		relexLogger.Info().Msgf("Loaded %d configurations", len(cfgs))

		ppln, err := pipeline.RelationExtraction(pipeline.RelationExtractionParams{
			Configurations: cfgs,
			Metrics:        metrics,
		})
		if err != nil {
			lastErr = err
			continue
		}
		relexLogger.Info().Msg("Pipeline loaded")
		return ppln, nil
	}
	return nil, fmt.Errorf("could not start pipeline after %d retries: %w", pipelineStartMaxRetries, lastErr)
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func withoutSupervise(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "-supervise" || arg == "--supervise" || arg == "-supervise=true" || arg == "--supervise=true" {
			continue
		}
		out = append(out, arg)
	}
	return out
}
