package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"gateway.nsyte.dev/app"
	"gateway.nsyte.dev/app/config"
	"gateway.nsyte.dev/pkg/version"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU() * 4)
	cfg, err := config.New()
	if chk.E(err) {
		os.Exit(1)
	}
	log.I.F("starting %s %s", cfg.AppName, version.V)

	switch cfg.Pprof {
	case "cpu":
		defer startProfile(profile.CPUProfile, cfg.PprofPath).Stop()
	case "memory":
		defer startProfile(profile.MemProfile, cfg.PprofPath).Stop()
	case "allocation":
		defer startProfile(profile.MemProfileAllocs, cfg.PprofPath).Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := app.New(ctx, cfg)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Listen, cfg.Port),
		Handler: srv,
	}

	var healthSrv *http.Server
	if cfg.HealthPort > 0 {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		healthSrv = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Listen, cfg.HealthPort),
			Handler: mux,
		}
		go func() {
			log.I.F("health check server listening on %s", healthSrv.Addr)
			if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.E.F("health server error: %v", err)
			}
		}()
	}

	go func() {
		log.I.F("gateway listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.E.F("gateway server error: %v", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	<-sigs
	fmt.Printf("\r")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpSrv.Shutdown(shutdownCtx)
	if healthSrv != nil {
		_ = healthSrv.Shutdown(shutdownCtx)
	}
}

func startProfile(kind func(*profile.Profile), path string) interface {
	Stop()
} {
	if path != "" {
		return profile.Start(kind, profile.ProfilePath(path))
	}
	return profile.Start(kind)
}
