package game

import (
	"context"
	"fmt"
	"sort"
)

func (e *Engine) nightStart(s *Session) (StepResult, error) {
	s.resetNight()
	s.systemf("night %d falls, everyone closes their eyes", s.Day)
	return advance(s, PhaseNightWolfChat)
}

func (e *Engine) nightWolfChat(ctx context.Context, s *Session) (StepResult, error) {
	wolves := s.aliveWolves()
	if len(wolves) == 0 {
		return StepError, fmt.Errorf("%w: wolf chat with no wolves alive", ErrBadState)
	}
	// Every alive human wolf speaks before any AI wolf is queried.
	for _, id := range wolves {
		if s.Seats[id].IsHuman && !s.HasActed(s.Day, ActionWolfChat, id) {
			return waitFor(s, pendingWolfChat(id))
		}
	}
	for _, id := range wolves {
		seat := s.Seats[id]
		if seat.IsHuman || s.HasActed(s.Day, ActionWolfChat, id) {
			continue
		}
		d := e.decide(ctx, s, seat, ActionWolfChat, nil, false)
		if d.Reasoning != "" {
			s.addMessage(MessageReasoning, id, d.Reasoning)
		}
		s.addMessage(MessageWolfChat, id, d.Speech)
		s.record(ActionWolfChat, id, NoTarget)
	}
	return advance(s, PhaseNightWolfVote)
}

func (e *Engine) nightWolfVote(ctx context.Context, s *Session) (StepResult, error) {
	if s.SelfDestructed {
		// A self-destruct replaces the kill for this night entirely.
		return advance(s, PhaseNightGuard)
	}
	wolves := s.aliveWolves()
	if len(wolves) == 0 {
		return StepError, fmt.Errorf("%w: wolf vote with no wolves alive", ErrBadState)
	}
	for _, id := range wolves {
		if _, voted := s.KillVotes[id]; !voted && s.Seats[id].IsHuman {
			return waitFor(s, pendingWolfKill(s, id))
		}
	}
	for _, id := range wolves {
		seat := s.Seats[id]
		if _, voted := s.KillVotes[id]; voted || seat.IsHuman {
			continue
		}
		p := pendingWolfKill(s, id)
		d := e.decide(ctx, s, seat, ActionWolfKill, p.Candidates, true)
		if d.Reasoning != "" {
			s.addMessage(MessageReasoning, id, d.Reasoning)
		}
		s.KillVotes[id] = d.Target
		s.record(ActionWolfKill, id, d.Target)
	}
	if target := e.tallyKillVotes(s); target != NoTarget {
		s.KillTarget = target
		s.PendingDeaths = append(s.PendingDeaths, target)
	}
	return advance(s, PhaseNightGuard)
}

// tallyKillVotes resolves the kill by majority among positive votes, breaking
// ties uniformly at random.
func (e *Engine) tallyKillVotes(s *Session) int {
	counts := map[int]int{}
	for _, t := range s.KillVotes {
		if t != NoTarget {
			counts[t]++
		}
	}
	if len(counts) == 0 {
		return NoTarget
	}
	best := 0
	for _, n := range counts {
		if n > best {
			best = n
		}
	}
	tied := []int{}
	for t, n := range counts {
		if n == best {
			tied = append(tied, t)
		}
	}
	sort.Ints(tied)
	return e.pick(tied)
}

func (e *Engine) nightGuard(ctx context.Context, s *Session) (StepResult, error) {
	guard := s.aliveSeatWithRole(RoleGuard)
	if guard == nil || s.HasActed(s.Day, ActionGuardProtect, guard.SeatID) {
		return advance(s, PhaseNightSeer)
	}
	if guard.IsHuman {
		return waitFor(s, pendingGuard(s, guard.SeatID))
	}
	p := pendingGuard(s, guard.SeatID)
	d := e.decide(ctx, s, guard, ActionGuardProtect, p.Candidates, true)
	if d.Reasoning != "" {
		s.addMessage(MessageReasoning, guard.SeatID, d.Reasoning)
	}
	s.GuardTarget = d.Target
	guard.LastGuarded = d.Target
	s.record(ActionGuardProtect, guard.SeatID, d.Target)
	return advance(s, PhaseNightSeer)
}

func (e *Engine) nightSeer(ctx context.Context, s *Session) (StepResult, error) {
	seer := s.aliveSeatWithRole(RoleSeer)
	if seer == nil || s.SeerChecked {
		return advance(s, PhaseNightWitch)
	}
	if seer.IsHuman {
		return waitFor(s, pendingVerify(s, seer.SeatID))
	}
	p := pendingVerify(s, seer.SeatID)
	d := e.decide(ctx, s, seer, ActionVerify, p.Candidates, false)
	if d.Reasoning != "" {
		s.addMessage(MessageReasoning, seer.SeatID, d.Reasoning)
	}
	if d.Target != NoTarget {
		seer.Checks[d.Target] = s.Seat(d.Target).Role.IsWolf()
		s.record(ActionVerify, seer.SeatID, d.Target)
	}
	s.SeerChecked = true
	return advance(s, PhaseNightWitch)
}

func (e *Engine) nightWitch(ctx context.Context, s *Session) (StepResult, error) {
	witch := s.aliveSeatWithRole(RoleWitch)
	if witch == nil {
		s.WitchSaveDecided = true
		s.WitchPoisonDecided = true
		return advance(s, PhaseDayAnnounce)
	}
	// Save decision always comes first; using the save skips the poison.
	if !s.WitchSaveDecided {
		switch {
		case witch.SaveUsed || s.KillTarget == NoTarget:
			s.WitchSaveDecided = true
		case witch.IsHuman:
			return waitFor(s, pendingWitchSave(s, witch.SeatID))
		default:
			d := e.decide(ctx, s, witch, ActionWitchSave, []int{s.KillTarget}, true)
			if d.Reasoning != "" {
				s.addMessage(MessageReasoning, witch.SeatID, d.Reasoning)
			}
			s.WitchSaveDecided = true
			if d.Target == s.KillTarget {
				s.useSave(witch)
			} else {
				s.record(ActionWitchSave, witch.SeatID, NoTarget)
			}
		}
	}
	if s.WitchSaveDecided && !s.WitchPoisonDecided {
		switch {
		case witch.PoisonUsed:
			s.WitchPoisonDecided = true
		case witch.IsHuman:
			return waitFor(s, pendingWitchPoison(s, witch.SeatID))
		default:
			p := pendingWitchPoison(s, witch.SeatID)
			d := e.decide(ctx, s, witch, ActionWitchPoison, p.Candidates, true)
			if d.Reasoning != "" {
				s.addMessage(MessageReasoning, witch.SeatID, d.Reasoning)
			}
			s.WitchPoisonDecided = true
			if d.Target != NoTarget {
				s.usePoison(witch, d.Target)
			} else {
				s.record(ActionWitchPoison, witch.SeatID, NoTarget)
			}
		}
	}
	return advance(s, PhaseDayAnnounce)
}

func (s *Session) useSave(witch *Seat) {
	witch.SaveUsed = true
	s.SaveTarget = s.KillTarget
	// Mutual exclusivity: one potion per night.
	s.WitchPoisonDecided = true
	s.record(ActionWitchSave, witch.SeatID, s.KillTarget)
}

func (s *Session) usePoison(witch *Seat, target int) {
	witch.PoisonUsed = true
	s.UnblockableDeaths = append(s.UnblockableDeaths, target)
	// Dying to poison disables a shoot-on-death ability.
	if t := s.Seat(target); t != nil {
		t.CanShoot = false
	}
	s.record(ActionWitchPoison, witch.SeatID, target)
}

func (s *Session) applyWolfChat(seat *Seat, text string) error {
	if s.Phase != PhaseNightWolfChat {
		return ErrWrongPhase
	}
	if !seat.IsAlive {
		return ErrSeatDead
	}
	if !seat.Role.IsWolf() {
		return ErrRoleMismatch
	}
	if s.HasActed(s.Day, ActionWolfChat, seat.SeatID) {
		return ErrAlreadyActed
	}
	s.addMessage(MessageWolfChat, seat.SeatID, text)
	s.record(ActionWolfChat, seat.SeatID, NoTarget)
	return nil
}

func (s *Session) applyWolfKill(seat *Seat, target int) error {
	if s.Phase != PhaseNightWolfVote || s.SelfDestructed {
		return ErrWrongPhase
	}
	if !seat.IsAlive {
		return ErrSeatDead
	}
	if !seat.Role.IsWolf() {
		return ErrRoleMismatch
	}
	if _, voted := s.KillVotes[seat.SeatID]; voted {
		return ErrAlreadyActed
	}
	if err := ValidateTarget(s, seat.SeatID, ActionWolfKill, target, true); err != nil {
		return err
	}
	s.KillVotes[seat.SeatID] = target
	s.record(ActionWolfKill, seat.SeatID, target)
	return nil
}

func (s *Session) applySelfDestruct(seat *Seat, target int) error {
	if s.Phase != PhaseNightWolfVote {
		return ErrWrongPhase
	}
	if !seat.IsAlive {
		return ErrSeatDead
	}
	if seat.Role != RoleWhiteWolf {
		return ErrRoleMismatch
	}
	if s.SelfDestructed {
		return ErrAlreadyActed
	}
	if err := ValidateTarget(s, seat.SeatID, ActionSelfDestruct, target, false); err != nil {
		return err
	}
	s.SelfDestructed = true
	s.KillTarget = NoTarget
	s.PendingDeaths = nil
	s.UnblockableDeaths = append(s.UnblockableDeaths, target, seat.SeatID)
	s.record(ActionSelfDestruct, seat.SeatID, target)
	return nil
}

func (s *Session) applyGuard(seat *Seat, target int) error {
	if s.Phase != PhaseNightGuard {
		return ErrWrongPhase
	}
	if !seat.IsAlive {
		return ErrSeatDead
	}
	if seat.Role != RoleGuard {
		return ErrRoleMismatch
	}
	if s.HasActed(s.Day, ActionGuardProtect, seat.SeatID) {
		return ErrAlreadyActed
	}
	if err := ValidateTarget(s, seat.SeatID, ActionGuardProtect, target, true); err != nil {
		return err
	}
	s.GuardTarget = target
	seat.LastGuarded = target
	s.record(ActionGuardProtect, seat.SeatID, target)
	return nil
}

func (s *Session) applyVerify(seat *Seat, target int) error {
	if s.Phase != PhaseNightSeer {
		return ErrWrongPhase
	}
	if !seat.IsAlive {
		return ErrSeatDead
	}
	if seat.Role != RoleSeer {
		return ErrRoleMismatch
	}
	if s.SeerChecked {
		return ErrAlreadyActed
	}
	if err := ValidateTarget(s, seat.SeatID, ActionVerify, target, false); err != nil {
		return err
	}
	seat.Checks[target] = s.Seat(target).Role.IsWolf()
	s.SeerChecked = true
	s.record(ActionVerify, seat.SeatID, target)
	return nil
}

func (s *Session) applyWitchSave(seat *Seat, target int) error {
	if s.Phase != PhaseNightWitch {
		return ErrWrongPhase
	}
	if !seat.IsAlive {
		return ErrSeatDead
	}
	if seat.Role != RoleWitch {
		return ErrRoleMismatch
	}
	if s.WitchSaveDecided {
		return ErrAlreadyActed
	}
	if seat.SaveUsed {
		return ErrChargeUsed
	}
	if s.KillTarget == NoTarget {
		return ErrWrongPhase
	}
	if target == NoTarget {
		s.WitchSaveDecided = true
		s.record(ActionWitchSave, seat.SeatID, NoTarget)
		return nil
	}
	if target != s.KillTarget {
		return ErrSaveMismatch
	}
	s.WitchSaveDecided = true
	s.useSave(seat)
	return nil
}

func (s *Session) applyWitchPoison(seat *Seat, target int) error {
	if s.Phase != PhaseNightWitch {
		return ErrWrongPhase
	}
	if !seat.IsAlive {
		return ErrSeatDead
	}
	if seat.Role != RoleWitch {
		return ErrRoleMismatch
	}
	if !s.WitchSaveDecided {
		return ErrWrongPhase
	}
	if s.WitchPoisonDecided {
		return ErrAlreadyActed
	}
	if seat.PoisonUsed {
		return ErrChargeUsed
	}
	if err := ValidateTarget(s, seat.SeatID, ActionWitchPoison, target, true); err != nil {
		return err
	}
	s.WitchPoisonDecided = true
	if target != NoTarget {
		s.usePoison(seat, target)
	} else {
		s.record(ActionWitchPoison, seat.SeatID, NoTarget)
	}
	return nil
}
