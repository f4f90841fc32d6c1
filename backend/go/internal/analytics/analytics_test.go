package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"Concierge/backend/go/internal/models"
)

var day1 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestDailyAnalyticsEmptyDay(t *testing.T) {
	s := NewService(WithClock(func() time.Time { return day1 }))
	got := s.DailyAnalytics("")
	if got.Date != "2026-03-14" || got.ConversionRate != "0.0" || got.TotalSessions != 0 {
		t.Errorf("DailyAnalytics() = %+v", got)
	}
	if got.TopIntents == nil {
		t.Error("TopIntents should be an empty map")
	}
}

func TestTrackInteractionCounters(t *testing.T) {
	ctx := context.Background()
	now := day1
	s := NewService(WithClock(fixedClock(&now)))

	s.TrackInteraction(ctx, "a", models.InteractionEvent{Type: models.InteractionUserMessage, Content: "how much?", Intent: "pricing_inquiry"})
	s.TrackInteraction(ctx, "a", models.InteractionEvent{Type: models.InteractionAIResponse, Content: "From $5k", Intent: "pricing_inquiry", LeadTrigger: true})
	s.TrackInteraction(ctx, "b", models.InteractionEvent{Type: models.InteractionUserMessage, Content: "hi", Intent: "general_inquiry"})
	s.TrackInteraction(ctx, "c", models.InteractionEvent{Type: models.InteractionUserMessage, Content: "hello", Intent: "general_inquiry"})

	got := s.DailyAnalytics("2026-03-14")
	if got.TotalMessages != 4 || got.TotalSessions != 3 || got.LeadsGenerated != 1 {
		t.Errorf("DailyAnalytics() = %+v", got)
	}
	if got.TopIntents["pricing_inquiry"] != 2 || got.TopIntents["general_inquiry"] != 2 {
		t.Errorf("TopIntents = %v", got.TopIntents)
	}
	if got.ConversionRate != "33.3" {
		t.Errorf("ConversionRate = %s, want 33.3", got.ConversionRate)
	}

	rec, ok := s.Session("a")
	if !ok {
		t.Fatal("session a missing")
	}
	if rec.InteractionCount != len(rec.Events) || rec.InteractionCount != 2 {
		t.Errorf("InteractionCount = %d, events = %d", rec.InteractionCount, len(rec.Events))
	}
	if len(rec.Topics) != 1 || rec.Topics[0] != "pricing_inquiry" {
		t.Errorf("Topics = %v", rec.Topics)
	}
	if rec.LeadScore != 1 || rec.Outcome != models.OutcomeActive {
		t.Errorf("LeadScore = %v, Outcome = %s", rec.LeadScore, rec.Outcome)
	}

	// Another day starts from zero.
	now = day1.Add(24 * time.Hour)
	s.TrackInteraction(ctx, "a", models.InteractionEvent{Intent: "general_inquiry"})
	if got := s.DailyAnalytics(""); got.TotalSessions != 1 || got.TotalMessages != 1 {
		t.Errorf("next day = %+v", got)
	}
}

func TestTrackInteractionTruncatesContent(t *testing.T) {
	s := NewService()
	s.TrackInteraction(context.Background(), "a", models.InteractionEvent{Content: strings.Repeat("é", 150)})
	rec, _ := s.Session("a")
	if n := len([]rune(rec.Events[0].Content)); n != MaxEventContent {
		t.Errorf("content length = %d, want %d", n, MaxEventContent)
	}
	if rec.Events[0].ID == "" || rec.Events[0].SessionID != "a" {
		t.Errorf("event = %+v", rec.Events[0])
	}
}

func TestTrackSessionPatch(t *testing.T) {
	s := NewService(WithClock(func() time.Time { return day1 }))
	s.TrackSession("a", SessionPatch{})
	rec, ok := s.Session("a")
	if !ok || rec.Outcome != models.OutcomeActive || !rec.StartTime.Equal(day1) || rec.InteractionCount != 0 {
		t.Fatalf("new session = %+v", rec)
	}

	score := 2.5
	s.TrackSession("a", SessionPatch{Profile: models.Profile{"company": "Acme"}, Outcome: models.OutcomeLeadCaptured, LeadScore: &score})
	s.TrackSession("a", SessionPatch{Profile: models.Profile{"industry": "tech"}})
	rec, _ = s.Session("a")
	if rec.Outcome != models.OutcomeLeadCaptured || rec.LeadScore != 2.5 {
		t.Errorf("patched = %+v", rec)
	}
	if len(rec.Profile) != 1 || rec.Profile["industry"] != "tech" {
		t.Errorf("Profile = %v, want full replace", rec.Profile)
	}
}

func TestSessionSnapshotIsCopy(t *testing.T) {
	s := NewService()
	s.TrackInteraction(context.Background(), "a", models.InteractionEvent{Intent: "x"})
	rec, _ := s.Session("a")
	rec.Events[0].Content = "mutated"
	rec.Topics[0] = "mutated"
	again, _ := s.Session("a")
	if again.Events[0].Content == "mutated" || again.Topics[0] == "mutated" {
		t.Error("snapshot shares memory with the service")
	}
	if _, ok := s.Session("missing"); ok {
		t.Error("unexpected session")
	}
}

func TestSweepIdle(t *testing.T) {
	ctx := context.Background()
	now := day1
	s := NewService(WithClock(fixedClock(&now)))
	s.TrackInteraction(ctx, "old", models.InteractionEvent{})
	s.TrackInteraction(ctx, "lead", models.InteractionEvent{})
	s.TrackSession("lead", SessionPatch{Outcome: models.OutcomeLeadCaptured})

	now = day1.Add(20 * time.Minute)
	s.TrackInteraction(ctx, "fresh", models.InteractionEvent{})

	if n := s.SweepIdle(now, 15*time.Minute); n != 1 {
		t.Errorf("SweepIdle() = %d, want 1", n)
	}
	for id, want := range map[string]models.Outcome{
		"old":   models.OutcomeAbandoned,
		"lead":  models.OutcomeLeadCaptured,
		"fresh": models.OutcomeActive,
	} {
		rec, _ := s.Session(id)
		if rec.Outcome != want {
			t.Errorf("%s outcome = %s, want %s", id, rec.Outcome, want)
		}
	}
	// Counters never decrement.
	if got := s.DailyAnalytics("2026-03-14"); got.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d", got.TotalSessions)
	}
}

func TestConcurrentTracking(t *testing.T) {
	s := NewService(WithClock(func() time.Time { return day1 }))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i%5)
			for j := 0; j < 50; j++ {
				s.TrackInteraction(context.Background(), id, models.InteractionEvent{Intent: "general_inquiry", LeadTrigger: j == 0})
				s.DailyAnalytics("")
				s.Session(id)
			}
		}(i)
	}
	wg.Wait()

	got := s.DailyAnalytics("")
	if got.TotalMessages != 1000 || got.TotalSessions != 5 || got.LeadsGenerated != 20 {
		t.Errorf("DailyAnalytics() = %+v", got)
	}
	for i := 0; i < 5; i++ {
		rec, _ := s.Session(fmt.Sprintf("s%d", i))
		if rec.InteractionCount != 200 || len(rec.Events) != 200 {
			t.Errorf("session %d count = %d", i, rec.InteractionCount)
		}
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.InteractionEvent
	err    error
}

func (p *recordingPublisher) PublishInteraction(_ context.Context, e models.InteractionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func TestPublisher(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := NewService(WithPublisher(pub))
	s.TrackInteraction(context.Background(), "a", models.InteractionEvent{Type: models.InteractionUserMessage, Content: "hi"})

	if len(pub.events) != 1 || pub.events[0].SessionID != "a" {
		t.Fatalf("published = %+v", pub.events)
	}
	// Publish failure does not affect local state.
	if rec, _ := s.Session("a"); rec.InteractionCount != 1 {
		t.Errorf("InteractionCount = %d", rec.InteractionCount)
	}
}
