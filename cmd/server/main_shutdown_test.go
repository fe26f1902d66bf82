package main

import (
	"net/http"
	"os"
	osSignal "os/signal"
	"sync"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/chargeable-weight/internal/application"
	"github.com/eugenenazirov/chargeable-weight/internal/calculator"
	"github.com/eugenenazirov/chargeable-weight/internal/config"
)

func sendSIGTERM(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})
	signalNotify = func(ch chan<- os.Signal, sig ...os.Signal) {
		go func() {
			ch <- syscall.SIGTERM
		}()
	}
}

type recordingLifecycle struct {
	server *http.Server
	done   chan struct{}

	mu    sync.Mutex
	stops int
}

func (l *recordingLifecycle) Server() *http.Server { return l.server }

func (l *recordingLifecycle) Done() <-chan struct{} { return l.done }

func (l *recordingLifecycle) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stops++
	if l.stops == 1 {
		close(l.done)
	}
}

func TestShutdownStopsServerAndJanitor(t *testing.T) {
	sendSIGTERM(t)

	app := &recordingLifecycle{server: &http.Server{}, done: make(chan struct{})}
	called := make(chan struct{}, 1)
	app.server.RegisterOnShutdown(func() {
		called <- struct{}{}
	})

	shutdown(app, time.Second, zaptest.NewLogger(t))

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatalf("expected server shutdown callback to execute")
	}
	if app.stops != 1 {
		t.Fatalf("expected Stop to be called once, got %d", app.stops)
	}
}

func TestShutdownGivesUpOnStuckJanitor(t *testing.T) {
	sendSIGTERM(t)

	// Done is never closed, so shutdown must return once the grace period ends.
	app := &stuckLifecycle{server: &http.Server{}}
	finished := make(chan struct{})
	go func() {
		shutdown(app, 20*time.Millisecond, zaptest.NewLogger(t))
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatalf("expected shutdown to return after the grace period")
	}
}

type stuckLifecycle struct {
	server *http.Server
}

func (l *stuckLifecycle) Server() *http.Server  { return l.server }
func (l *stuckLifecycle) Stop()                 {}
func (l *stuckLifecycle) Done() <-chan struct{} { return nil }

func TestShutdownApplicationLifecycle(t *testing.T) {
	sendSIGTERM(t)

	cfg := config.Config{
		Port:            "127.0.0.1:0",
		SessionTTL:      time.Minute,
		MaxSessions:     10,
		MaxBoxes:        10,
		SessionDefaults: calculator.DefaultConfig(),
	}
	// The listener goroutine may log after the test returns.
	app, err := application.New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("application.New returned error: %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	shutdown(app, time.Second, zaptest.NewLogger(t))

	select {
	case <-app.Done():
	default:
		t.Fatalf("expected janitor to have exited after shutdown")
	}
	// A second Stop after shutdown must be harmless.
	app.Stop()
}
