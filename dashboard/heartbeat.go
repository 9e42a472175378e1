package dashboard

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultKeepAliveInterval = 5 * time.Minute
	defaultBackupInterval    = 24 * time.Hour
)

// Heartbeat periodically keeps the session alive and takes automatic backups.
type Heartbeat struct {
	service        *Service
	keepAlive      time.Duration
	backupInterval time.Duration
}

// NewHeartbeat builds a heartbeat. Non-positive intervals fall back to the defaults.
func NewHeartbeat(service *Service, keepAlive, backupInterval time.Duration) *Heartbeat {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAliveInterval
	}
	if backupInterval <= 0 {
		backupInterval = defaultBackupInterval
	}
	return &Heartbeat{service: service, keepAlive: keepAlive, backupInterval: backupInterval}
}

// Start runs the loop in the background until ctx is cancelled.
func (h *Heartbeat) Start(ctx context.Context) {
	if h == nil {
		return
	}
	go h.Run(ctx)
	log.Infof("heartbeat started (keep-alive=%s, backup=%s)", h.keepAlive, h.backupInterval)
}

// Run blocks until ctx is cancelled.
func (h *Heartbeat) Run(ctx context.Context) {
	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()
	backup := time.NewTicker(h.backupInterval)
	defer backup.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("heartbeat stopped")
			return
		case <-keepAlive.C:
			h.service.session.KeepAlive(ctx)
		case <-backup.C:
			h.backupOnce(ctx)
		}
	}
}

func (h *Heartbeat) backupOnce(ctx context.Context) {
	if _, ok := h.service.session.CurrentUser(); !ok {
		return
	}
	key, err := h.service.PerformAutoBackup(ctx)
	if err != nil {
		log.WithError(err).Warn("heartbeat: automatic backup failed")
		return
	}
	if key != "" {
		log.WithField("key", key).Info("heartbeat: automatic backup stored")
	}
}
