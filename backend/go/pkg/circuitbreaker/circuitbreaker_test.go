package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBackend = errors.New("backend down")

func fail() (interface{}, error) { return nil, errBackend }
func ok() (interface{}, error)   { return "ok", nil }

func TestBreakerTripsAfterThreshold(t *testing.T) {
	cb := New(2, 1, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(fail); !errors.Is(err, errBackend) {
			t.Fatalf("call %d: err = %v, want backend error", i, err)
		}
	}
	if cb.State() != Open {
		t.Fatalf("state = %s, want Open", cb.State())
	}

	called := false
	_, err := cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("request ran while circuit was open")
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	now := time.Unix(0, 0)
	var transitions []string
	cb := NewWithSettings(Settings{
		Name:             "milvus",
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          10 * time.Second,
		Now:              func() time.Time { return now },
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	cb.Execute(fail)
	now = now.Add(11 * time.Second)
	if cb.State() != HalfOpen {
		t.Fatalf("state = %s, want Half-Open", cb.State())
	}
	cb.Execute(ok)
	if cb.State() != HalfOpen {
		t.Fatalf("closed after a single success, want Half-Open")
	}
	cb.Execute(ok)
	if cb.State() != Closed {
		t.Fatalf("state = %s, want Closed", cb.State())
	}
	if len(transitions) == 0 || transitions[len(transitions)-1] != "Half-Open->Closed" {
		t.Errorf("transitions = %v", transitions)
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Unix(0, 0)
	cb := NewWithSettings(Settings{FailureThreshold: 1, Timeout: time.Second, Now: func() time.Time { return now }})
	cb.Execute(fail)
	now = now.Add(2 * time.Second)
	cb.Execute(fail)
	if cb.State() != Open {
		t.Errorf("state = %s, want Open", cb.State())
	}
}

func TestIsFailureFilter(t *testing.T) {
	notFound := errors.New("not found")
	cb := NewWithSettings(Settings{
		FailureThreshold: 1,
		Timeout:          time.Minute,
		IsFailure:        func(err error) bool { return !errors.Is(err, notFound) },
	})
	_, err := cb.Execute(func() (interface{}, error) { return nil, notFound })
	if !errors.Is(err, notFound) {
		t.Fatalf("err = %v", err)
	}
	if cb.State() != Closed {
		t.Errorf("ignored error tripped the breaker")
	}
}

func TestDoTyped(t *testing.T) {
	cb := New(3, 1, time.Minute)
	n, err := Do(cb, func() (int, error) { return 42, nil })
	if err != nil || n != 42 {
		t.Errorf("Do() = %d, %v", n, err)
	}
}
