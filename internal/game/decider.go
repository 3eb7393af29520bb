package game

import "context"

// DecisionRequest is what the engine hands to the AI decision provider for
// one seat and one action kind. View is the requesting seat's own filtered
// projection, so the provider never sees more than the seat would.
type DecisionRequest struct {
	SeatID     int        `json:"seat_id"`
	Role       Role       `json:"role"`
	Kind       ActionKind `json:"kind"`
	View       SeatView   `json:"view"`
	Candidates []int      `json:"candidates,omitempty"`
	CanAbstain bool       `json:"can_abstain"`
}

// Decision is the provider's structured answer. Reasoning is private to the
// deciding seat; Speech is used for chat/speech kinds; Target is NoTarget
// for abstain.
type Decision struct {
	Reasoning string `json:"reasoning"`
	Speech    string `json:"speech,omitempty"`
	Target    int    `json:"target"`
}

// Decider is the contract the engine calls for every AI seat that still owes
// an action. Implementations may be slow or fail; the engine guarantees
// phase progress regardless.
type Decider interface {
	Decide(ctx context.Context, req DecisionRequest) (Decision, error)
}
