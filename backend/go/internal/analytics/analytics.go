// Package analytics keeps in-process session and daily counters for the assistant.
// State lives for the lifetime of the process only.
package analytics

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"Concierge/backend/go/internal/models"
	"Concierge/backend/go/pkg/logger"

	"github.com/google/uuid"
)

// MaxEventContent is the number of characters of message content kept per event.
const MaxEventContent = 100

const dateLayout = "2006-01-02"

// Publisher receives every tracked interaction. Publish failures never reach the caller.
type Publisher interface {
	PublishInteraction(ctx context.Context, event models.InteractionEvent) error
}

// SessionPatch replaces the non-zero fields of a session record.
type SessionPatch struct {
	Profile   models.Profile
	Outcome   models.Outcome
	LeadScore *float64
}

type dailyStat struct {
	totalMessages  int
	sessions       map[string]struct{}
	leadsGenerated int
	topIntents     map[string]int
}

// Service aggregates sessions and per-day counters. It is safe for concurrent use.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*models.SessionRecord
	daily    map[string]*dailyStat

	now       func() time.Time
	publisher Publisher
	log       *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPublisher forwards every tracked interaction to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger used for publish failures.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates an empty Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		sessions: make(map[string]*models.SessionRecord),
		daily:    make(map[string]*dailyStat),
		now:      time.Now,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// session returns the record for id, creating it if needed. Callers hold s.mu.
func (s *Service) session(id string, now time.Time) *models.SessionRecord {
	rec, ok := s.sessions[id]
	if !ok {
		rec = &models.SessionRecord{
			SessionID:    id,
			StartTime:    now,
			LastActivity: now,
			Profile:      models.Profile{},
			Outcome:      models.OutcomeActive,
		}
		s.sessions[id] = rec
	}
	return rec
}

// TrackSession creates the session if needed and applies patch.
func (s *Service) TrackSession(id string, patch SessionPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.session(id, s.now())
	if patch.Profile != nil {
		rec.Profile = patch.Profile.Merge(nil)
	}
	if patch.Outcome != "" {
		rec.Outcome = patch.Outcome
	}
	if patch.LeadScore != nil {
		rec.LeadScore = *patch.LeadScore
	}
}

// TrackInteraction appends event to the session and updates today's counters.
// Content is truncated to MaxEventContent characters. Each lead-triggering event
// raises the session's lead score by one.
func (s *Service) TrackInteraction(ctx context.Context, id string, event models.InteractionEvent) {
	now := s.now()
	event.SessionID = id
	event.Content = truncate(event.Content, MaxEventContent)
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}

	s.mu.Lock()
	rec := s.session(id, now)
	rec.Events = append(rec.Events, event)
	rec.InteractionCount = len(rec.Events)
	rec.LastActivity = now
	if event.Intent != "" && !slices.Contains(rec.Topics, event.Intent) {
		rec.Topics = append(rec.Topics, event.Intent)
	}
	if event.LeadTrigger {
		rec.LeadScore++
	}

	day := s.day(now.UTC().Format(dateLayout))
	day.totalMessages++
	day.sessions[id] = struct{}{}
	day.topIntents[event.Intent]++
	if event.LeadTrigger {
		day.leadsGenerated++
	}
	s.mu.Unlock()

	if s.publisher != nil {
		if err := s.publisher.PublishInteraction(ctx, event); err != nil {
			s.log.WithSession(id).WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to publish interaction")
		}
	}
}

// day returns the stat for date, creating it if needed. Callers hold s.mu.
func (s *Service) day(date string) *dailyStat {
	d, ok := s.daily[date]
	if !ok {
		d = &dailyStat{sessions: make(map[string]struct{}), topIntents: make(map[string]int)}
		s.daily[date] = d
	}
	return d
}

// DailyAnalytics snapshots the counters of date (YYYY-MM-DD), or of the current UTC
// day when date is empty. A day without sessions has a conversion rate of "0.0".
func (s *Service) DailyAnalytics(date string) models.DailyAnalytics {
	if date == "" {
		date = s.now().UTC().Format(dateLayout)
	}
	out := models.DailyAnalytics{Date: date, TopIntents: map[string]int{}, ConversionRate: "0.0"}

	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.daily[date]
	if !ok {
		return out
	}
	out.TotalMessages = d.totalMessages
	out.TotalSessions = len(d.sessions)
	out.LeadsGenerated = d.leadsGenerated
	for k, v := range d.topIntents {
		out.TopIntents[k] = v
	}
	if out.TotalSessions > 0 {
		out.ConversionRate = fmt.Sprintf("%.1f", float64(d.leadsGenerated)/float64(out.TotalSessions)*100)
	}
	return out
}

// Session returns a copy of the session record.
func (s *Service) Session(id string) (models.SessionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		return models.SessionRecord{}, false
	}
	out := *rec
	out.Events = slices.Clone(rec.Events)
	out.Topics = slices.Clone(rec.Topics)
	out.Profile = rec.Profile.Merge(nil)
	return out, true
}

// SweepIdle marks active sessions idle for longer than maxIdle as abandoned and
// returns how many were marked.
func (s *Service) SweepIdle(now time.Time, maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.sessions {
		if rec.Outcome == models.OutcomeActive && now.Sub(rec.LastActivity) > maxIdle {
			rec.Outcome = models.OutcomeAbandoned
			n++
		}
	}
	return n
}

// RunSweeper calls SweepIdle every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepIdle(s.now(), maxIdle); n > 0 {
				s.log.Info(fmt.Sprintf("marked %d idle sessions as abandoned", n))
			}
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
