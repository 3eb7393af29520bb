package arena

import "werewolf-arena/internal/game"

type StepResponse struct {
	Status       string              `json:"status"`
	Phase        game.Phase          `json:"phase"`
	Day          int                 `json:"day"`
	Winner       game.Winner         `json:"winner,omitempty"`
	StateVersion int64               `json:"state_version"`
	Pending      *game.PendingAction `json:"pending,omitempty"`
}
