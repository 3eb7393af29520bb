package game

import "errors"

var (
	ErrBadSetup          = errors.New("bad_setup")
	ErrNotPlaying        = errors.New("session_not_playing")
	ErrWrongPhase        = errors.New("wrong_phase")
	ErrNotYourTurn       = errors.New("not_your_turn")
	ErrSeatNotFound      = errors.New("seat_not_found")
	ErrSeatDead          = errors.New("seat_dead")
	ErrNotHuman          = errors.New("seat_not_human")
	ErrRoleMismatch      = errors.New("role_mismatch")
	ErrAlreadyActed      = errors.New("already_acted")
	ErrAbstainNotAllowed = errors.New("abstain_not_allowed")
	ErrTargetNotFound    = errors.New("target_not_found")
	ErrTargetDead        = errors.New("target_dead")
	ErrSelfTarget        = errors.New("self_target_not_allowed")
	ErrGuardRepeat       = errors.New("cannot guard same seat consecutively")
	ErrChargeUsed        = errors.New("ability_already_used")
	ErrSaveMismatch      = errors.New("save_target_mismatch")
	ErrBadState          = errors.New("inconsistent_state")
	ErrUnknownAction     = errors.New("unknown_action")
)

var validationErrs = []error{
	ErrBadSetup, ErrNotPlaying, ErrWrongPhase, ErrNotYourTurn, ErrSeatNotFound,
	ErrSeatDead, ErrNotHuman, ErrRoleMismatch, ErrAlreadyActed,
	ErrAbstainNotAllowed, ErrTargetNotFound, ErrTargetDead, ErrSelfTarget,
	ErrGuardRepeat, ErrChargeUsed, ErrSaveMismatch, ErrUnknownAction,
}

// IsValidationError distinguishes recoverable bad-input errors from state
// machine faults: the former go back to the caller, the latter are for
// operator investigation.
func IsValidationError(err error) bool {
	for _, e := range validationErrs {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// noSelfTarget lists the action kinds that may not target the acting seat.
// Wolf kill is deliberately absent: self-knifing is a legal tactic.
var noSelfTarget = map[ActionKind]bool{
	ActionWitchPoison: true,
	ActionVote:        true,
	ActionShoot:       true,
	ActionVerify:      true,
}

// ValidateTarget checks a proposed target for an action without mutating
// anything. Target NoTarget means abstain.
func ValidateTarget(s *Session, actor int, kind ActionKind, target int, allowAbstain bool) error {
	if target == NoTarget {
		if allowAbstain {
			return nil
		}
		return ErrAbstainNotAllowed
	}
	t := s.Seat(target)
	if t == nil {
		return ErrTargetNotFound
	}
	if !t.IsAlive {
		return ErrTargetDead
	}
	if noSelfTarget[kind] && target == actor {
		return ErrSelfTarget
	}
	if kind == ActionGuardProtect {
		if a := s.Seat(actor); a != nil && a.LastGuarded == target {
			return ErrGuardRepeat
		}
	}
	return nil
}
