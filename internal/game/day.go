package game

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func (e *Engine) dayAnnounce(s *Session) (StepResult, error) {
	s.resetDay()
	deaths := s.resolveNightDeaths()
	s.NightDeaths = deaths
	for _, id := range deaths {
		if seat := s.Seat(id); seat != nil {
			seat.IsAlive = false
		}
	}
	if len(deaths) == 0 {
		s.systemf("day %d dawns: a peaceful night, nobody died", s.Day)
	} else {
		s.systemf("day %d dawns: last night seat %s died", s.Day, joinSeats(deaths))
	}
	if w := EvaluateWinner(s); w != WinnerNone {
		s.finish(w)
		return StepGameOver, nil
	}
	if shooter := s.nextNightShooter(); shooter != NoTarget {
		s.Phase = PhaseDayShoot
		s.CurrentActor = shooter
		s.Pending = nil
		return StepUpdated, nil
	}
	e.startSpeech(s)
	return StepUpdated, nil
}

// resolveNightDeaths merges blockable and unblockable pending deaths. Guard
// protection or the witch's save each block the wolf kill on their own, but
// stacked on the same seat they cancel out and the target dies anyway.
func (s *Session) resolveNightDeaths() []int {
	dead := []int{}
	seen := map[int]bool{}
	for _, t := range s.PendingDeaths {
		guarded := s.GuardTarget == t
		saved := s.SaveTarget == t
		if (guarded || saved) && !(guarded && saved) {
			continue
		}
		if !seen[t] {
			seen[t] = true
			dead = append(dead, t)
		}
	}
	for _, t := range s.UnblockableDeaths {
		if !seen[t] {
			seen[t] = true
			dead = append(dead, t)
		}
	}
	sort.Ints(dead)
	return dead
}

// nextNightShooter returns the next night victim still eligible to shoot.
func (s *Session) nextNightShooter() int {
	for _, id := range s.NightDeaths {
		seat := s.Seat(id)
		if seat != nil && !seat.IsAlive && seat.Role.ShootsOnDeath() && seat.CanShoot {
			return id
		}
	}
	return NoTarget
}

// startSpeech rotates the speaking order from a uniformly random start seat.
func (e *Engine) startSpeech(s *Session) {
	alive := s.AliveSeats()
	if len(alive) > 0 {
		k := e.intn(len(alive))
		s.SpeechOrder = append(append([]int{}, alive[k:]...), alive[:k]...)
	}
	s.SpeechCursor = 0
	s.Phase = PhaseDaySpeech
	s.CurrentActor = 0
	s.Pending = nil
}

func (e *Engine) dayShoot(ctx context.Context, s *Session) (StepResult, error) {
	shooter := s.Seat(s.CurrentActor)
	if shooter == nil || shooter.IsAlive || !shooter.Role.ShootsOnDeath() {
		return StepError, fmt.Errorf("%w: shoot phase without an eligible dead shooter", ErrBadState)
	}
	if shooter.CanShoot {
		if shooter.IsHuman {
			return waitFor(s, pendingShoot(s, shooter.SeatID))
		}
		p := pendingShoot(s, shooter.SeatID)
		d := e.decide(ctx, s, shooter, ActionShoot, p.Candidates, true)
		if d.Reasoning != "" {
			s.addMessage(MessageReasoning, shooter.SeatID, d.Reasoning)
		}
		s.shoot(shooter, d.Target)
	}
	if w := EvaluateWinner(s); w != WinnerNone {
		s.finish(w)
		return StepGameOver, nil
	}
	// A shooter who died at night hands the day back to speech; one who was
	// exiled by vote hands it to the next night.
	diedAtNight := false
	for _, id := range s.NightDeaths {
		if id == shooter.SeatID {
			diedAtNight = true
			break
		}
	}
	if diedAtNight {
		if next := s.nextNightShooter(); next != NoTarget {
			s.CurrentActor = next
			s.Pending = nil
			return StepUpdated, nil
		}
		e.startSpeech(s)
		return StepUpdated, nil
	}
	s.Day++
	return advance(s, PhaseNightStart)
}

func (e *Engine) daySpeech(ctx context.Context, s *Session) (StepResult, error) {
	for s.SpeechCursor < len(s.SpeechOrder) {
		id := s.SpeechOrder[s.SpeechCursor]
		seat := s.Seat(id)
		if seat == nil || !seat.IsAlive || s.HasActed(s.Day, ActionSpeech, id) {
			s.SpeechCursor++
			continue
		}
		if seat.IsHuman {
			return waitFor(s, pendingSpeech(id))
		}
		d := e.decide(ctx, s, seat, ActionSpeech, nil, false)
		if d.Reasoning != "" {
			s.addMessage(MessageReasoning, id, d.Reasoning)
		}
		s.addMessage(MessageSpeech, id, d.Speech)
		s.record(ActionSpeech, id, NoTarget)
		s.SpeechCursor++
		return StepUpdated, nil
	}
	return advance(s, PhaseDayVote)
}

func (e *Engine) dayVote(ctx context.Context, s *Session) (StepResult, error) {
	alive := s.AliveSeats()
	// Every alive human votes (or abstains explicitly) before AI seats.
	for _, id := range alive {
		if _, voted := s.Votes[id]; !voted && s.Seats[id].IsHuman {
			return waitFor(s, pendingVote(s, id))
		}
	}
	for _, id := range alive {
		seat := s.Seats[id]
		if _, voted := s.Votes[id]; voted || seat.IsHuman {
			continue
		}
		p := pendingVote(s, id)
		d := e.decide(ctx, s, seat, ActionVote, p.Candidates, true)
		if d.Reasoning != "" {
			s.addMessage(MessageReasoning, id, d.Reasoning)
		}
		s.Votes[id] = d.Target
		s.record(ActionVote, id, d.Target)
	}
	s.ExileTarget = tallyExileVotes(s.Votes)
	return advance(s, PhaseDayVoteResult)
}

// tallyExileVotes resolves the exile by plurality; an exact tie among the
// top targets exiles nobody.
func tallyExileVotes(votes map[int]int) int {
	counts := map[int]int{}
	for _, t := range votes {
		if t != NoTarget {
			counts[t]++
		}
	}
	if len(counts) == 0 {
		return NoTarget
	}
	best, top, tied := 0, NoTarget, 0
	for t, n := range counts {
		switch {
		case n > best:
			best, top, tied = n, t, 1
		case n == best:
			tied++
		}
	}
	if tied > 1 {
		return NoTarget
	}
	return top
}

func (e *Engine) dayVoteResult(ctx context.Context, s *Session) (StepResult, error) {
	if s.ExileTarget == NoTarget {
		s.systemf("day %d: the vote is tied, nobody is exiled", s.Day)
		s.Day++
		return advance(s, PhaseNightStart)
	}
	exiled := s.Seat(s.ExileTarget)
	if exiled == nil {
		return StepError, fmt.Errorf("%w: exile target %d does not exist", ErrBadState, s.ExileTarget)
	}
	if exiled.IsAlive {
		exiled.IsAlive = false
		s.systemf("day %d: seat %d is exiled by vote", s.Day, exiled.SeatID)
		if w := EvaluateWinner(s); w != WinnerNone {
			s.finish(w)
			return StepGameOver, nil
		}
	}
	if !s.HasActed(s.Day, ActionLastWords, exiled.SeatID) {
		if exiled.IsHuman {
			return waitFor(s, pendingLastWords(exiled.SeatID))
		}
		d := e.decide(ctx, s, exiled, ActionLastWords, nil, false)
		if d.Reasoning != "" {
			s.addMessage(MessageReasoning, exiled.SeatID, d.Reasoning)
		}
		s.addMessage(MessageLastWords, exiled.SeatID, d.Speech)
		s.record(ActionLastWords, exiled.SeatID, NoTarget)
	}
	if exiled.Role.ShootsOnDeath() && exiled.CanShoot {
		s.Phase = PhaseDayShoot
		s.CurrentActor = exiled.SeatID
		s.Pending = nil
		return StepUpdated, nil
	}
	s.Day++
	return advance(s, PhaseNightStart)
}

func (s *Session) shoot(shooter *Seat, target int) {
	shooter.CanShoot = false
	s.record(ActionShoot, shooter.SeatID, target)
	if target == NoTarget {
		s.systemf("seat %d holsters the gun", shooter.SeatID)
		return
	}
	if t := s.Seat(target); t != nil {
		t.IsAlive = false
	}
	s.systemf("seat %d shoots seat %d", shooter.SeatID, target)
}

func (s *Session) applySpeech(seat *Seat, text string) error {
	if s.Phase != PhaseDaySpeech {
		return ErrWrongPhase
	}
	if !seat.IsAlive {
		return ErrSeatDead
	}
	if s.CurrentActor != seat.SeatID {
		return ErrNotYourTurn
	}
	if s.HasActed(s.Day, ActionSpeech, seat.SeatID) {
		return ErrAlreadyActed
	}
	s.addMessage(MessageSpeech, seat.SeatID, text)
	s.record(ActionSpeech, seat.SeatID, NoTarget)
	s.SpeechCursor++
	return nil
}

func (s *Session) applyVote(seat *Seat, target int) error {
	if s.Phase != PhaseDayVote {
		return ErrWrongPhase
	}
	if !seat.IsAlive {
		return ErrSeatDead
	}
	if _, voted := s.Votes[seat.SeatID]; voted {
		return ErrAlreadyActed
	}
	if err := ValidateTarget(s, seat.SeatID, ActionVote, target, true); err != nil {
		return err
	}
	s.Votes[seat.SeatID] = target
	s.record(ActionVote, seat.SeatID, target)
	return nil
}

func (s *Session) applyShoot(seat *Seat, target int) error {
	if s.Phase != PhaseDayShoot {
		return ErrWrongPhase
	}
	if s.CurrentActor != seat.SeatID {
		return ErrNotYourTurn
	}
	if !seat.Role.ShootsOnDeath() {
		return ErrRoleMismatch
	}
	if seat.IsAlive {
		return ErrBadState
	}
	if !seat.CanShoot {
		return ErrChargeUsed
	}
	if err := ValidateTarget(s, seat.SeatID, ActionShoot, target, true); err != nil {
		return err
	}
	s.shoot(seat, target)
	return nil
}

func (s *Session) applyLastWords(seat *Seat, text string) error {
	if s.Phase != PhaseDayVoteResult {
		return ErrWrongPhase
	}
	if seat.SeatID != s.ExileTarget {
		return ErrNotYourTurn
	}
	if s.HasActed(s.Day, ActionLastWords, seat.SeatID) {
		return ErrAlreadyActed
	}
	s.addMessage(MessageLastWords, seat.SeatID, text)
	s.record(ActionLastWords, seat.SeatID, NoTarget)
	return nil
}

func joinSeats(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
