// Package decider provides implementations of the engine's AI decision
// contract: a seedable random decider and a bounded-wait fallback wrapper
// that keeps the state machine moving when the real provider is slow or
// down.
package decider

import (
	"context"
	"math/rand"
	"sync"

	"werewolf-arena/internal/game"
)

var fillerLines = []string{
	"I will listen for now and vote with the table.",
	"Nothing stood out to me last night.",
	"I am just a simple villager, do not waste a night on me.",
	"Someone is lying, I just cannot tell who yet.",
}

// Random picks a uniform legal target for targeted actions and a canned
// line for speech actions. It is the deterministic fallback used by the
// engine and the dumb bot.
type Random struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rnd: rand.New(rand.NewSource(seed))}
}

func (r *Random) Decide(_ context.Context, req game.DecisionRequest) (game.Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := game.Decision{Reasoning: "random decision"}
	switch req.Kind {
	case game.ActionWolfChat, game.ActionSpeech, game.ActionLastWords:
		d.Speech = fillerLines[r.rnd.Intn(len(fillerLines))]
	case game.ActionWitchSave, game.ActionWitchPoison:
		// Never burn a potion at random.
	default:
		if len(req.Candidates) > 0 {
			d.Target = req.Candidates[r.rnd.Intn(len(req.Candidates))]
		}
	}
	return d, nil
}
