package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
)

type StepResult int

const (
	StepUpdated StepResult = iota
	StepWaiting
	StepGameOver
	StepError
)

func (r StepResult) String() string {
	switch r {
	case StepUpdated:
		return "updated"
	case StepWaiting:
		return "waiting_for_human"
	case StepGameOver:
		return "game_over"
	default:
		return "error"
	}
}

// Engine drives the phase state machine. It holds no session state itself;
// sessions are passed in by whoever holds the registry lock, so one Engine
// serves every session.
type Engine struct {
	dec Decider

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewEngine(dec Decider, seed int64) *Engine {
	return &Engine{dec: dec, rnd: rand.New(rand.NewSource(seed))}
}

func (e *Engine) intn(n int) int {
	e.rndMu.Lock()
	defer e.rndMu.Unlock()
	return e.rnd.Intn(n)
}

func (e *Engine) pick(ids []int) int {
	return ids[e.intn(len(ids))]
}

// Step advances the session by at most one phase handler. On StepWaiting the
// pending action is left on the session for the owed seat; the caller must
// stop auto-advancing until that seat acts.
func (e *Engine) Step(ctx context.Context, s *Session) (StepResult, error) {
	switch s.Status {
	case StatusFinished:
		return StepGameOver, nil
	case StatusWaiting:
		s.Status = StatusPlaying
		s.systemf("the game begins with %d seats", len(s.Seats))
		return StepUpdated, nil
	}

	switch s.Phase {
	case PhaseNightStart:
		return e.nightStart(s)
	case PhaseNightWolfChat:
		return e.nightWolfChat(ctx, s)
	case PhaseNightWolfVote:
		return e.nightWolfVote(ctx, s)
	case PhaseNightGuard:
		return e.nightGuard(ctx, s)
	case PhaseNightSeer:
		return e.nightSeer(ctx, s)
	case PhaseNightWitch:
		return e.nightWitch(ctx, s)
	case PhaseDayAnnounce:
		return e.dayAnnounce(s)
	case PhaseDayShoot:
		return e.dayShoot(ctx, s)
	case PhaseDaySpeech:
		return e.daySpeech(ctx, s)
	case PhaseDayVote:
		return e.dayVote(ctx, s)
	case PhaseDayVoteResult:
		return e.dayVoteResult(ctx, s)
	case PhaseGameOver:
		return StepGameOver, nil
	default:
		return StepError, fmt.Errorf("%w: unknown phase %q", ErrBadState, s.Phase)
	}
}

// Apply records one human action against the current phase. Validation
// failures leave the session untouched.
func (e *Engine) Apply(s *Session, seatID int, kind ActionKind, target int, text string) error {
	if s.Status != StatusPlaying {
		return ErrNotPlaying
	}
	seat := s.Seat(seatID)
	if seat == nil {
		return ErrSeatNotFound
	}
	if !seat.IsHuman {
		return ErrNotHuman
	}

	err := s.apply(seat, kind, target, text)
	if err == nil && s.Pending != nil && s.Pending.SeatID == seatID {
		s.Pending = nil
	}
	return err
}

func (s *Session) apply(seat *Seat, kind ActionKind, target int, text string) error {
	switch kind {
	case ActionWolfChat:
		return s.applyWolfChat(seat, text)
	case ActionWolfKill:
		return s.applyWolfKill(seat, target)
	case ActionSelfDestruct:
		return s.applySelfDestruct(seat, target)
	case ActionGuardProtect:
		return s.applyGuard(seat, target)
	case ActionVerify:
		return s.applyVerify(seat, target)
	case ActionWitchSave:
		return s.applyWitchSave(seat, target)
	case ActionWitchPoison:
		return s.applyWitchPoison(seat, target)
	case ActionSpeech:
		return s.applySpeech(seat, text)
	case ActionVote:
		return s.applyVote(seat, target)
	case ActionShoot:
		return s.applyShoot(seat, target)
	case ActionLastWords:
		return s.applyLastWords(seat, text)
	default:
		return ErrUnknownAction
	}
}

func waitFor(s *Session, p *PendingAction) (StepResult, error) {
	s.CurrentActor = p.SeatID
	s.Pending = p
	return StepWaiting, nil
}

func advance(s *Session, next Phase) (StepResult, error) {
	s.Phase = next
	s.CurrentActor = 0
	s.Pending = nil
	return StepUpdated, nil
}

// decide queries the AI provider for one seat and sanitizes the answer. A
// provider error or an illegal choice is replaced with a default decision so
// the state machine can always make progress.
func (e *Engine) decide(ctx context.Context, s *Session, seat *Seat, kind ActionKind, candidates []int, canAbstain bool) Decision {
	if e.dec != nil {
		view, err := s.ViewFor(seat.SeatID)
		if err == nil {
			d, derr := e.dec.Decide(ctx, DecisionRequest{
				SeatID:     seat.SeatID,
				Role:       seat.Role,
				Kind:       kind,
				View:       view,
				Candidates: candidates,
				CanAbstain: canAbstain,
			})
			if derr == nil && legalChoice(d.Target, candidates, canAbstain) {
				return d
			}
		}
	}
	return e.defaultDecision(kind, candidates, canAbstain)
}

func legalChoice(target int, candidates []int, canAbstain bool) bool {
	if target == NoTarget {
		return canAbstain || len(candidates) == 0
	}
	for _, c := range candidates {
		if c == target {
			return true
		}
	}
	return false
}

var fillerLines = []string{
	"I have nothing to add for now.",
	"Let me keep watching before I say more.",
	"No strong read yet, I will pass.",
}

func (e *Engine) defaultDecision(kind ActionKind, candidates []int, canAbstain bool) Decision {
	d := Decision{Reasoning: "default decision substituted by the engine"}
	switch kind {
	case ActionWolfChat, ActionSpeech, ActionLastWords:
		d.Speech = fillerLines[e.intn(len(fillerLines))]
	case ActionWitchSave, ActionWitchPoison:
		// Keeping the charge is the safe default for potions.
	default:
		if len(candidates) > 0 {
			d.Target = e.pick(candidates)
		}
	}
	return d
}
