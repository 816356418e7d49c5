package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cristobalvch/ratelimiter-code-challenge/api"
	"github.com/cristobalvch/ratelimiter-code-challenge/bucket"
	"github.com/cristobalvch/ratelimiter-code-challenge/config"
	"github.com/cristobalvch/ratelimiter-code-challenge/gate"
	"github.com/cristobalvch/ratelimiter-code-challenge/metrics"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// The one bucket this process limits against
	b := bucket.New(cfg.Capacity, cfg.RefillRate)

	// In-process counters always; Redis sink only when configured
	tracker := metrics.NewMetrics()
	recorder := metrics.Recorder(tracker)
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisRec := metrics.NewRedisRecorder(metrics.RedisConfig{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := redisRec.Ping(); err != nil {
			log.Fatalf("failed to connect to Redis at %s: %v", redisAddr, err)
		}
		defer redisRec.Close()
		log.Printf("mirroring metrics to Redis at %s", redisAddr)
		recorder = metrics.Multi(tracker, redisRec)
	}

	g := gate.New(b, recorder)
	handler := api.NewHandler(b)

	mux := http.NewServeMux()
	mux.Handle("/", g.Middleware(http.HandlerFunc(handler.Limited)))
	mux.HandleFunc("/update", handler.UpdateConfig)
	mux.Handle("/metrics", api.NewMetricsHandler(tracker))
	mux.HandleFunc("/health", handler.Health)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("rate limiter listening on %s (capacity=%d refill_rate=%.3f tokens/sec)", cfg.ListenAddr, cfg.Capacity, cfg.RefillRate)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}

// readConfig merges defaults, an optional YAML file, and command-line flags,
// in that order of precedence (flags win when explicitly set).
func readConfig() (config.Config, error) {
	var (
		capacity   = flag.Int64("capacity", config.DefaultCapacity, "token bucket capacity (burst ceiling)")
		refillRate = flag.Float64("refill_rate", config.DefaultRefillRate, "tokens added per second")
		addr       = flag.String("addr", config.DefaultListenAddr, "HTTP listen address")
		configPath = flag.String("config", "", "optional YAML config file")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		fileCfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "capacity":
			cfg.Capacity = *capacity
		case "refill_rate":
			cfg.RefillRate = *refillRate
		case "addr":
			cfg.ListenAddr = *addr
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
