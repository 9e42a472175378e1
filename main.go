package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"creatorhub/api"
	"creatorhub/config"
	"creatorhub/dashboard"
	"creatorhub/db"
	"creatorhub/ideas"
	"creatorhub/session"
	"creatorhub/syncbridge"
	"creatorhub/utils"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL: Failed to load configuration: %v", err)
	}
	config.ConfigureLogging(cfg)

	// --- Storage ---
	store, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize storage: %v", err)
	}

	// --- Sync remote ---
	remote, err := syncbridge.RemoteFromConfig(cfg)
	if err != nil {
		_ = store.Close()
		log.Fatalf("CRITICAL: Failed to configure sync remote: %v", err)
	}
	bridge := syncbridge.New(remote, store, cfg.RemoteTimeout)

	// --- Services ---
	sess := session.New(store, bridge, session.WithHasher(utils.NewBcryptHasher(cfg.BcryptCost)))
	if sess.RestoreSession() {
		log.Info("Restored previous login session")
	}
	dash := dashboard.New(sess, store)
	deps := &api.Deps{
		Config:    cfg,
		Session:   sess,
		Dashboard: dash,
		Ideas:     ideas.NewService(dash, nil),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dashboard.NewHeartbeat(dash, cfg.KeepAliveInterval, cfg.BackupInterval).Start(ctx)

	// --- Start Server ---
	listenAddr := fmt.Sprintf("%s:%s", cfg.ListenAddress, cfg.ListenPort)
	server := &http.Server{
		Addr:              listenAddr,
		Handler:           api.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", listenAddr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		closeAll(store, remote)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("CRITICAL: Server failed to start: %v", err)
		}
		return
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown did not complete cleanly")
	}
	closeAll(store, remote)
}

// closeAll flushes the store and releases the remote's connections, if it holds any.
func closeAll(store db.Storage, remote syncbridge.RemoteStore) {
	if err := store.Close(); err != nil {
		log.WithError(err).Error("Failed to close storage")
	}
	if closer, ok := remote.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.WithError(err).Warn("Failed to close sync remote")
		}
	}
}
