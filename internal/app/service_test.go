package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	mu       sync.Mutex
	stopped  bool
	stopCh   chan struct{}
	order    *[]string
}

func newFakeService(name string, order *[]string) *fakeService {
	return &fakeService{name: name, stopCh: make(chan struct{}), order: order}
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	select {
	case <-ctx.Done():
	case <-s.stopCh:
	}
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		close(s.stopCh)
		if s.order != nil {
			*s.order = append(*s.order, "stop:"+s.name)
		}
	}
	return nil
}

func (s *fakeService) wasStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func TestRunnerStopsOnContextCancel(t *testing.T) {
	var order []string
	a := newFakeService("http", &order)
	b := newFakeService("worker", &order)
	runner := NewRunner(a, b)
	runner.OnShutdown(func() { order = append(order, "cleanup") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, time.Second, nil) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run should return nil on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop")
	}
	if !a.wasStopped() || !b.wasStopped() {
		t.Fatalf("all services should be stopped")
	}
	want := []string{"stop:worker", "stop:http", "cleanup"}
	if len(order) != len(want) {
		t.Fatalf("order want %v got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order want %v got %v", want, order)
		}
	}
}

func TestRunnerReturnsStartError(t *testing.T) {
	failing := newFakeService("http", nil)
	failing.startErr = errors.New("address in use")
	other := newFakeService("worker", nil)

	err := NewRunner(failing, other).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "http: address in use" {
		t.Fatalf("expected wrapped start error, got %v", err)
	}
	if !other.wasStopped() {
		t.Fatalf("sibling service should be stopped")
	}
}

func TestRunnerRejectsEmptyAndNil(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should fail")
	}
	if err := NewRunner(nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("nil service should fail")
	}
	if err := RunWithOptions(nil, Options{}); err == nil {
		t.Fatalf("nil runner should fail")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, "API": ModeAPI, " worker ": ModeWorker, "all": ModeAll}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) want %q got %q err=%v", raw, want, got, err)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestBuildRunnerRejectsNilConfig(t *testing.T) {
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("nil config should fail")
	}
}
