// Command mirror runs the shared sync mirror that dashboard installations push
// profiles to when their remote kind is "http". Records are kept in Redis when
// the remote kind is "redis", otherwise in memory.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"creatorhub/config"
	"creatorhub/mirror"
	"creatorhub/syncbridge"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL: Failed to load configuration: %v", err)
	}
	config.ConfigureLogging(cfg)

	var store syncbridge.RemoteStore
	if cfg.RemoteKind == config.RemoteRedis {
		redisStore := syncbridge.DialRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
		defer redisStore.Close()
		store = redisStore
		log.Infof("Mirror backed by Redis at %s", cfg.RedisAddr)
	} else {
		store = syncbridge.NewMemoryRemote()
		log.Warn("Mirror backed by memory; records are lost on restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenAddr := fmt.Sprintf("%s:%s", cfg.ListenAddress, cfg.MirrorListenPort)
	server := &http.Server{
		Addr:              listenAddr,
		Handler:           mirror.NewRouter(store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Mirror shutdown did not complete cleanly")
		}
	}()

	log.Infof("Starting mirror on %s", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("CRITICAL: Mirror failed to start: %v", err)
	}
}
