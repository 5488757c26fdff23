package app_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/platepal/platepal/internal/app"
	"github.com/platepal/platepal/internal/app/tasks"
	"github.com/platepal/platepal/internal/config"
	"github.com/platepal/platepal/internal/gateway"
	"github.com/platepal/platepal/internal/ratelimit"
)

type idleUpstream struct{}

func (idleUpstream) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T) (*app.App, *app.Scheduler) {
	t.Helper()

	cfg := &config.Config{
		// Port 0 binds an ephemeral port so parallel tests don't collide.
		Server: config.ServerConfig{Port: 0, ShutdownTimeout: time.Second},
		AI:     config.AIConfig{Model: "gpt-3.5-turbo", MaxTokens: 500, Timeout: time.Second},
	}

	log := testLogger()
	server := gateway.New(cfg, idleUpstream{}, ratelimit.NewMemoryLimiter(100, time.Minute), log)

	sched, err := app.NewScheduler(log, &config.SchedulerConfig{}, map[string]tasks.ScheduledTaskFunc{})
	if err != nil {
		t.Fatalf("NewScheduler() failed: %v", err)
	}

	return app.New(log, cfg, server, sched), sched
}

func TestRunReturnsOnSchedulerStartFailure(t *testing.T) {
	t.Parallel()

	application, sched := newTestApp(t)

	// Occupy the scheduler so Run's own start attempt fails.
	if err := sched.Start(); err != nil {
		t.Fatalf("priming scheduler start failed: %v", err)
	}
	t.Cleanup(func() { _ = sched.Stop() })

	done := make(chan error, 1)
	go func() { done <- application.Run(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Run() = nil, want scheduler start error")
		}
		if !strings.Contains(err.Error(), "scheduler") {
			t.Errorf("Run() error = %v, want scheduler start failure", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after scheduler start failure")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	application, _ := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	// Give the listener a moment to come up before signalling shutdown.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() after cancel = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}
