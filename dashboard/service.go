// Package dashboard implements the creator dashboard operations (goals, tasks, accounts,
// earnings, settings, backups and overview stats) on top of a session's document.
package dashboard

import (
	"context"
	"errors"
	"time"

	"creatorhub/db"
	"creatorhub/models"
	"creatorhub/session"
	"creatorhub/utils"
)

// ErrNotFound is returned when an entity id does not exist in the current document.
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

// Service exposes the dashboard operations for whichever profile is logged into sess.
type Service struct {
	session *session.Session
	store   db.Storage
	growth  GrowthEstimator
}

// Option customises a Service.
type Option func(*Service)

// WithGrowthEstimator replaces the default random growth figures of the affiliate tracker.
func WithGrowthEstimator(g GrowthEstimator) Option {
	return func(s *Service) {
		if g != nil {
			s.growth = g
		}
	}
}

// New builds a Service. store is the same storage the session uses; backups live there.
func New(sess *session.Session, store db.Storage, opts ...Option) *Service {
	s := &Service{
		session: sess,
		store:   store,
		growth:  RandomGrowth{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the underlying session.
func (s *Service) Session() *session.Session {
	return s.session
}

func (s *Service) now() time.Time {
	return s.session.Now()
}

func (s *Service) today() string {
	return s.now().Format(dateLayout)
}

func (s *Service) load() models.UserDocument {
	return s.session.Load()
}

func (s *Service) mutate(ctx context.Context, fn func(doc *models.UserDocument) error) error {
	return s.session.Mutate(ctx, fn)
}

func newID() string {
	return utils.GenerateDashlessUUID()
}
