// Package lifecycle turns process signals into pause/quit hooks for the game.
package lifecycle

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Hooks lets the game register for host lifecycle events.
type Hooks interface {
	OnPause(fn func(paused bool))
	OnQuit(fn func())
}

// Signals maps SIGUSR1/SIGUSR2 to pause/resume and SIGINT/SIGTERM to quit.
type Signals struct {
	logger *slog.Logger

	mu      sync.Mutex
	onPause []func(paused bool)
	onQuit  []func()
}

func NewSignals(logger *slog.Logger) *Signals {
	return &Signals{
		logger: logger.With("component", "lifecycle"),
	}
}

func (that *Signals) OnPause(fn func(paused bool)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onPause = append(that.onPause, fn)
}

func (that *Signals) OnQuit(fn func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onQuit = append(that.onQuit, fn)
}

// Pause fires the pause hooks.
func (that *Signals) Pause(paused bool) {
	that.mu.Lock()
	hooks := append([]func(bool){}, that.onPause...)
	that.mu.Unlock()

	for _, fn := range hooks {
		fn(paused)
	}
}

// Quit fires the quit hooks.
func (that *Signals) Quit() {
	that.mu.Lock()
	hooks := append([]func(){}, that.onQuit...)
	that.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Listen blocks until a quit signal arrives or ctx is done. It returns true
// when the process was asked to quit.
func (that *Signals) Listen(ctx context.Context) bool {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigs)

	return that.dispatch(ctx, sigs)
}

func (that *Signals) dispatch(ctx context.Context, sigs <-chan os.Signal) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case sig := <-sigs:
			that.logger.Info("Received signal", "signal", sig)

			switch sig {
			case syscall.SIGUSR1:
				that.Pause(true)
			case syscall.SIGUSR2:
				that.Pause(false)
			default:
				that.Quit()
				return true
			}
		}
	}
}
