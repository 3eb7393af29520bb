package decider

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"werewolf-arena/internal/game"
)

const defaultBudget = 15 * time.Second

// Fallback wraps a potentially slow decision provider with a wait budget.
// A timeout or provider error is absorbed locally: the wrapped Random
// decider answers instead, so callers never see a failure.
type Fallback struct {
	inner  game.Decider
	budget time.Duration
	fb     *Random
}

func NewFallback(inner game.Decider, budget time.Duration, seed int64) *Fallback {
	if budget <= 0 {
		budget = defaultBudget
	}
	return &Fallback{inner: inner, budget: budget, fb: NewRandom(seed)}
}

func (f *Fallback) Decide(ctx context.Context, req game.DecisionRequest) (game.Decision, error) {
	if f.inner == nil {
		return f.fb.Decide(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, f.budget)
	defer cancel()

	type result struct {
		d   game.Decision
		err error
	}
	ch := make(chan result, 1)
	go func() {
		d, err := f.inner.Decide(ctx, req)
		ch <- result{d, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			log.Warn().Err(res.err).
				Str("session_id", req.View.SessionID).
				Int("seat_id", req.SeatID).
				Str("kind", string(req.Kind)).
				Msg("decision provider failed, substituting fallback")
			return f.fb.Decide(ctx, req)
		}
		return res.d, nil
	case <-ctx.Done():
		log.Warn().
			Str("session_id", req.View.SessionID).
			Int("seat_id", req.SeatID).
			Str("kind", string(req.Kind)).
			Dur("budget", f.budget).
			Msg("decision provider timed out, substituting fallback")
		return f.fb.Decide(context.WithoutCancel(ctx), req)
	}
}
