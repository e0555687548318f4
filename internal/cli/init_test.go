package cli

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	applog "finboard/internal/log"
)

type fakeServer struct {
	listenErr error
	stop      chan struct{}
	shutdowns int
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, stop: make(chan struct{})}
}

func (s *fakeServer) ListenAndServe() error {
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.stop
	return http.ErrServerClosed
}

func (s *fakeServer) Shutdown(context.Context) error {
	s.shutdowns++
	close(s.stop)
	return nil
}

func TestRunServerStopsOnCancel(t *testing.T) {
	srv := newFakeServer(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- RunServer(ctx, srv, time.Second, applog.Discard()) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunServer() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunServer did not return after cancel")
	}
	if srv.shutdowns != 1 {
		t.Fatalf("shutdowns = %d, want 1", srv.shutdowns)
	}
}

func TestRunServerReportsListenFailure(t *testing.T) {
	boom := errors.New("address in use")
	srv := newFakeServer(boom)

	err := RunServer(context.Background(), srv, time.Second, applog.Discard())
	if !errors.Is(err, boom) {
		t.Fatalf("RunServer() error = %v, want %v", err, boom)
	}
}

func TestSetupLoggerFallsBackToInfo(t *testing.T) {
	l := SetupLogger("nonsense")
	if l.Enabled(context.Background(), -4) {
		t.Fatal("debug should be disabled at the fallback level")
	}
	if !l.Enabled(context.Background(), 0) {
		t.Fatal("info should be enabled")
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("PORT", "notaport")
	if _, err := LoadConfig(applog.Discard()); err == nil {
		t.Fatal("LoadConfig() error = nil, want validation error")
	}
}
