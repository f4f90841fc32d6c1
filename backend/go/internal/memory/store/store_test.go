package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"Concierge/backend/go/internal/memory/extractor"
	"Concierge/backend/go/internal/models"
	"Concierge/backend/go/internal/vectorstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// stepClock advances by one millisecond per call.
func stepClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func TestConversationStoreHistoryOrder(t *testing.T) {
	ctx := context.Background()
	vs := vectorstore.NewMemoryStore(2)
	cs := NewConversationStore(vs)
	cs.now = stepClock(time.UnixMilli(1_700_000_000_000))

	for i := 0; i < 3; i++ {
		if err := cs.Append(ctx, "s1", models.SpeakerUser, fmt.Sprintf("question %d", i), []float32{1, 0}); err != nil {
			t.Fatal(err)
		}
		if err := cs.Append(ctx, "s1", models.SpeakerAssistant, fmt.Sprintf("answer %d", i), []float32{0, 1}); err != nil {
			t.Fatal(err)
		}
	}
	cs.Append(ctx, "s2", models.SpeakerUser, "other session", []float32{1, 0})

	turns, err := cs.History(ctx, "s1", 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"question 1", "answer 1", "question 2", "answer 2"}
	if len(turns) != len(want) {
		t.Fatalf("History() returned %d turns, want %d", len(turns), len(want))
	}
	for i, w := range want {
		if turns[i].Content != w {
			t.Errorf("turn %d = %q, want %q", i, turns[i].Content, w)
		}
	}
	if turns[0].Role != models.SpeakerUser || turns[1].Role != models.SpeakerAssistant {
		t.Errorf("roles = %s, %s", turns[0].Role, turns[1].Role)
	}
}

func TestConversationStoreHistoryKeepsNewestBeyondCandidates(t *testing.T) {
	ctx := context.Background()
	vs := vectorstore.NewMemoryStore(2)
	cs := NewConversationStore(vs)
	cs.now = stepClock(time.UnixMilli(1_700_000_000_000))

	// 60 records, more than one candidate window.
	for i := 0; i < 30; i++ {
		cs.Append(ctx, "s1", models.SpeakerUser, fmt.Sprintf("question %d", i), []float32{1, 0})
		cs.Append(ctx, "s1", models.SpeakerAssistant, fmt.Sprintf("answer %d", i), []float32{0, 1})
	}

	turns, err := cs.History(ctx, "s1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 10 {
		t.Fatalf("History() returned %d turns, want 10", len(turns))
	}
	if turns[0].Content != "question 25" || turns[9].Content != "answer 29" {
		t.Errorf("window = %q .. %q, want question 25 .. answer 29", turns[0].Content, turns[9].Content)
	}
}

func TestConversationStoreTurnIDAndTieBreak(t *testing.T) {
	ctx := context.Background()
	vs := vectorstore.NewMemoryStore(2)
	cs := NewConversationStore(vs)
	fixed := time.UnixMilli(1_700_000_000_123)
	cs.now = func() time.Time { return fixed }

	cs.Append(ctx, "s1", models.SpeakerAssistant, "reply", []float32{0, 1})
	cs.Append(ctx, "s1", models.SpeakerUser, "hello", []float32{1, 0})

	recs, _ := vs.Filter(ctx, vectorstore.Filter{"sessionId": "s1"}, 10)
	ids := map[string]bool{}
	for _, r := range recs {
		ids[r.ID] = true
	}
	if !ids["s1_1700000000123_user"] || !ids["s1_1700000000123_assistant"] {
		t.Errorf("ids = %v", ids)
	}

	turns, _ := cs.History(ctx, "s1", 0)
	if len(turns) != 2 || turns[0].Role != models.SpeakerUser {
		t.Errorf("turns = %+v", turns)
	}
}

func TestConversationStoreDimensionMismatch(t *testing.T) {
	cs := NewConversationStore(vectorstore.NewMemoryStore(3))
	err := cs.Append(context.Background(), "s1", models.SpeakerUser, "hi", []float32{1, 0})
	if err == nil {
		t.Fatal("expected dimension error")
	}
}

func TestCandidates(t *testing.T) {
	if got := candidates(10); got != 50 {
		t.Errorf("candidates(10) = %d", got)
	}
	if got := candidates(20); got != 100 {
		t.Errorf("candidates(20) = %d", got)
	}
}

func profileStores(t *testing.T) map[string]ProfileRepository {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return map[string]ProfileRepository{
		"vector": NewProfileStore(vectorstore.NewMemoryStore(4)),
		"redis":  NewRedisProfileStore(rdb, "test:profile:", time.Hour),
	}
}

func TestProfileStoreCapsAtFive(t *testing.T) {
	ctx := context.Background()
	for name, ps := range profileStores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 7; i++ {
				if err := ps.Upsert(ctx, "s1", fmt.Sprintf("key%d", i), "v"); err != nil {
					t.Fatal(err)
				}
			}
			profile, err := ps.Profile(ctx, "s1")
			if err != nil {
				t.Fatal(err)
			}
			if len(profile) != MaxProfileFacts {
				t.Errorf("Profile() returned %d facts, want %d", len(profile), MaxProfileFacts)
			}
		})
	}
}

func TestProfileStoreIdempotentUpsert(t *testing.T) {
	ctx := context.Background()
	const msg = "I need a website for my tech startup, my company is Acme Labs."
	for name, ps := range profileStores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				for k, v := range extractor.Extract(msg) {
					if err := ps.Upsert(ctx, "s1", k, v); err != nil {
						t.Fatal(err)
					}
				}
			}
			ps.Upsert(ctx, "s2", "company", "Other Co")

			profile, err := ps.Profile(ctx, "s1")
			if err != nil {
				t.Fatal(err)
			}
			if len(profile) != 3 || profile["company"] != "Acme Labs" || profile["projectType"] != "web_design" {
				t.Errorf("Profile() = %v", profile)
			}

			ps.Upsert(ctx, "s1", "company", "Acme Robotics")
			profile, _ = ps.Profile(ctx, "s1")
			if len(profile) != 3 || profile["company"] != "Acme Robotics" {
				t.Errorf("after overwrite Profile() = %v", profile)
			}
		})
	}
}

func TestProfileStoreRecordShape(t *testing.T) {
	ctx := context.Background()
	vs := vectorstore.NewMemoryStore(4)
	ps := NewProfileStore(vs)
	ps.Upsert(ctx, "s1", "industry", "tech")

	recs, _ := vs.Filter(ctx, vectorstore.Filter{}, 10)
	if len(recs) != 1 {
		t.Fatalf("store has %d records", len(recs))
	}
	r := recs[0]
	if r.ID != "s1_profile_industry" || r.Metadata.Type != "profile" || r.Metadata.ProfileKey != "industry" || r.Metadata.ProfileValue != "tech" {
		t.Errorf("record = %+v", r)
	}
}

func TestRedisProfileStoreTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ps := NewRedisProfileStore(rdb, "p:", time.Minute)

	if err := ps.Upsert(context.Background(), "s1", "company", "Acme"); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("p:s1"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}
	mr.FastForward(2 * time.Minute)
	profile, err := ps.Profile(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(profile) != 0 {
		t.Errorf("expired profile = %v", profile)
	}
}
