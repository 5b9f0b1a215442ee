// Package tracker is the application service. Each operation loads what it
// needs, runs the pure lifecycle, recurrence and ledger rules, persists the
// result with conditional writes and then announces it.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/events"
	"github.com/ukydev/maintenance-tracker/internal/models"
	"github.com/ukydev/maintenance-tracker/internal/summary"
)

const statsKey = "dashboard"

// Deps are the collaborators of a Service. Publisher, Summarizer and Clock
// are optional.
type Deps struct {
	Requests   db.RequestCollection
	Assets     db.AssetCollection
	Schedules  db.ScheduleCollection
	Reports    db.ReportCollection
	Users      db.UserCollection
	Counters   db.CounterCollection
	Activity   db.ActivityStore
	Tx         db.Transactor
	Publisher  events.Publisher
	Summarizer summary.Summarizer
	StatsTTL   time.Duration
	Clock      func() time.Time
}

// Service implements every tracker operation.
type Service struct {
	requests   db.RequestCollection
	assets     db.AssetCollection
	schedules  db.ScheduleCollection
	reports    db.ReportCollection
	users      db.UserCollection
	counters   db.CounterCollection
	activity   db.ActivityStore
	tx         db.Transactor
	publisher  events.Publisher
	summarizer summary.Summarizer
	stats      *cache.Cache
	now        func() time.Time
}

// New creates a Service.
func New(d Deps) *Service {
	s := &Service{
		requests:   d.Requests,
		assets:     d.Assets,
		schedules:  d.Schedules,
		reports:    d.Reports,
		users:      d.Users,
		counters:   d.Counters,
		activity:   d.Activity,
		tx:         d.Tx,
		publisher:  d.Publisher,
		summarizer: d.Summarizer,
		now:        d.Clock,
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.summarizer == nil {
		s.summarizer = summary.Disabled{}
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	ttl := d.StatsTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	s.stats = cache.New(ttl, 2*ttl)
	return s
}

// NewFromStore wires a Service to a MongoDB store.
func NewFromStore(store *db.Store, publisher events.Publisher, summarizer summary.Summarizer, statsTTL time.Duration) *Service {
	return New(Deps{
		Requests:   store.Requests,
		Assets:     store.Assets,
		Schedules:  store.Schedules,
		Reports:    store.Reports,
		Users:      store.Users,
		Counters:   store.Counters,
		Activity:   store.Activity,
		Tx:         store,
		Publisher:  publisher,
		Summarizer: summarizer,
		StatsTTL:   statsTTL,
	})
}

func authorize(actor models.Actor, action models.Action) error {
	if !actor.Can(action) {
		return apperr.NotAuthorized("role %q cannot %s", actor.Role, action)
	}
	return nil
}

// announce publishes a committed change and drops cached stats. Publish
// failures are logged only.
func (s *Service) announce(ctx context.Context, event models.Event) {
	s.stats.Delete(statsKey)
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"event":   event.Type,
			"subject": event.Subject,
		}).Warn("Failed to publish event")
	}
}

// requestConflict turns a lost compare-and-swap into the error kind the
// caller should see.
func (s *Service) requestConflict(ctx context.Context, requestID string, err error) error {
	if !errors.Is(err, db.ErrConflict) {
		return err
	}
	latest, findErr := s.requests.FindRequestByID(ctx, requestID)
	if findErr == nil && latest.IsClosed() {
		return apperr.InvariantViolation("%s was closed by another operation", requestID)
	}
	log.WithField("request", requestID).Info("Lost concurrent update")
	return apperr.InvalidTransition("%s was changed by another operation", requestID)
}

func requestNumber(seq int64) string {
	return fmt.Sprintf("REQ-%d", 1000+seq)
}

func tswrNumber(seq int64, at time.Time) string {
	return fmt.Sprintf("TSWR-%02d-%03d", at.Year()%100, seq)
}
