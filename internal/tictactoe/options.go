package tictactoe

import (
	"math/rand/v2"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/lifecycle"
)

const (
	DefaultSnapshotKey = "current-game"

	defaultThinkMin = 1 * time.Second
	defaultThinkMax = 3 * time.Second
)

type Option func(*GameManager)

func WithSnapshotKey(key string) Option {
	return func(that *GameManager) {
		that.key = key
	}
}

func WithBot(bot moveSelector) Option {
	return func(that *GameManager) {
		that.bot = bot
	}
}

// WithThinkingDelay sets the range the bot waits before each move. Values
// are clamped so that 0 <= min <= max.
func WithThinkingDelay(minDelay, maxDelay time.Duration) Option {
	return func(that *GameManager) {
		minDelay = max(minDelay, 0)
		that.thinkMin = minDelay
		that.thinkMax = max(maxDelay, minDelay)
	}
}

// WithRand seeds the source used for the first-turn coin and the thinking
// delay.
func WithRand(seed uint64) Option {
	return func(that *GameManager) {
		that.rnd = newRand(seed)
	}
}

func WithClock(now func() time.Time) Option {
	return func(that *GameManager) {
		that.now = now
	}
}

func WithObservers(observers ...Observer) Option {
	return func(that *GameManager) {
		for _, observer := range observers {
			that.observers.subscribe(observer)
		}
	}
}

// WithLifecycle saves the session whenever the host pauses or quits.
func WithLifecycle(hooks lifecycle.Hooks) Option {
	return func(that *GameManager) {
		that.hooks = hooks
	}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d)) //nolint: gosec // not security sensitive
}
