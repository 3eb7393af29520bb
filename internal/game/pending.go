package game

import "fmt"

// PendingAction describes the one action a human seat owes right now. Kind is
// the tag; Candidates lists every legal target for targeted kinds.
type PendingAction struct {
	Kind       ActionKind `json:"kind"`
	SeatID     int        `json:"seat_id"`
	Prompt     string     `json:"prompt"`
	Candidates []int      `json:"candidates,omitempty"`
	CanAbstain bool       `json:"can_abstain"`
}

func pendingWolfChat(seatID int) *PendingAction {
	return &PendingAction{
		Kind:   ActionWolfChat,
		SeatID: seatID,
		Prompt: "discuss tonight's target with your pack",
	}
}

func pendingWolfKill(s *Session, seatID int) *PendingAction {
	return &PendingAction{
		Kind:       ActionWolfKill,
		SeatID:     seatID,
		Prompt:     "choose a seat to kill tonight, or abstain",
		Candidates: s.AliveSeats(),
		CanAbstain: true,
	}
}

func pendingGuard(s *Session, seatID int) *PendingAction {
	last := s.Seat(seatID).LastGuarded
	candidates := []int{}
	for _, id := range s.AliveSeats() {
		if id != last {
			candidates = append(candidates, id)
		}
	}
	return &PendingAction{
		Kind:       ActionGuardProtect,
		SeatID:     seatID,
		Prompt:     "choose a seat to protect tonight, or abstain",
		Candidates: candidates,
		CanAbstain: true,
	}
}

func pendingVerify(s *Session, seatID int) *PendingAction {
	candidates := []int{}
	for _, id := range s.AliveSeats() {
		if id != seatID {
			candidates = append(candidates, id)
		}
	}
	return &PendingAction{
		Kind:       ActionVerify,
		SeatID:     seatID,
		Prompt:     "choose a seat to verify tonight",
		Candidates: candidates,
	}
}

func pendingWitchSave(s *Session, seatID int) *PendingAction {
	return &PendingAction{
		Kind:       ActionWitchSave,
		SeatID:     seatID,
		Prompt:     fmt.Sprintf("seat %d was killed tonight; use your save potion, or abstain", s.KillTarget),
		Candidates: []int{s.KillTarget},
		CanAbstain: true,
	}
}

func pendingWitchPoison(s *Session, seatID int) *PendingAction {
	candidates := []int{}
	for _, id := range s.AliveSeats() {
		if id != seatID {
			candidates = append(candidates, id)
		}
	}
	return &PendingAction{
		Kind:       ActionWitchPoison,
		SeatID:     seatID,
		Prompt:     "use your poison potion on a seat, or abstain",
		Candidates: candidates,
		CanAbstain: true,
	}
}

func pendingSpeech(seatID int) *PendingAction {
	return &PendingAction{
		Kind:   ActionSpeech,
		SeatID: seatID,
		Prompt: "it is your turn to speak",
	}
}

func pendingVote(s *Session, seatID int) *PendingAction {
	candidates := []int{}
	for _, id := range s.AliveSeats() {
		if id != seatID {
			candidates = append(candidates, id)
		}
	}
	return &PendingAction{
		Kind:       ActionVote,
		SeatID:     seatID,
		Prompt:     "vote a seat into exile, or abstain",
		Candidates: candidates,
		CanAbstain: true,
	}
}

func pendingShoot(s *Session, seatID int) *PendingAction {
	candidates := []int{}
	for _, id := range s.AliveSeats() {
		if id != seatID {
			candidates = append(candidates, id)
		}
	}
	return &PendingAction{
		Kind:       ActionShoot,
		SeatID:     seatID,
		Prompt:     "you died holding a gun; shoot a seat, or abstain",
		Candidates: candidates,
		CanAbstain: true,
	}
}

func pendingLastWords(seatID int) *PendingAction {
	return &PendingAction{
		Kind:   ActionLastWords,
		SeatID: seatID,
		Prompt: "you were exiled; say your last words",
	}
}
