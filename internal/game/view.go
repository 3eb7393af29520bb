package game

// SeatInfo is the public slice of another seat: role revealed only for the
// requesting seat itself, wolf teammates, or a finished game.
type SeatInfo struct {
	SeatID  int  `json:"seat_id"`
	IsAlive bool `json:"is_alive"`
	IsHuman bool `json:"is_human"`
	Role    Role `json:"role,omitempty"`
}

// SeatView is the per-seat filtered projection of a session exported to the
// transport layer and to the AI decision provider.
type SeatView struct {
	SessionID    string `json:"session_id"`
	Status       Status `json:"status"`
	Day          int    `json:"day"`
	Phase        Phase  `json:"phase"`
	Winner       Winner `json:"winner,omitempty"`
	StateVersion int64  `json:"state_version"`

	MySeat     int          `json:"my_seat"`
	MyRole     Role         `json:"my_role"`
	Teammates  []int        `json:"teammates,omitempty"`
	Checks     map[int]bool `json:"checks,omitempty"`
	CanShoot   bool         `json:"can_shoot,omitempty"`
	SaveUsed   bool         `json:"save_used,omitempty"`
	PoisonUsed bool         `json:"poison_used,omitempty"`
	KillTarget int          `json:"kill_target,omitempty"`

	CurrentActor int            `json:"current_actor,omitempty"`
	Pending      *PendingAction `json:"pending,omitempty"`

	Seats    []SeatInfo `json:"seats"`
	Messages []Message  `json:"messages"`
}

// ViewFor builds the projection for one seat. It hides other seats' private
// chat, reasoning, verification results and potion state, and pending
// prompts that belong to other seats.
func (s *Session) ViewFor(seatID int) (SeatView, error) {
	me := s.Seat(seatID)
	if me == nil {
		return SeatView{}, ErrSeatNotFound
	}
	finished := s.Status == StatusFinished
	isWolf := me.Role.IsWolf()

	seats := make([]SeatInfo, 0, len(s.Seats))
	for _, id := range s.SeatIDs() {
		seat := s.Seats[id]
		info := SeatInfo{SeatID: id, IsAlive: seat.IsAlive, IsHuman: seat.IsHuman}
		switch {
		case finished, id == seatID:
			info.Role = seat.Role
		case isWolf && seat.Role.IsWolf():
			info.Role = seat.Role
		}
		seats = append(seats, info)
	}

	messages := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		switch m.Kind {
		case MessageSystem, MessageSpeech, MessageLastWords:
			messages = append(messages, m)
		case MessageWolfChat:
			if finished || isWolf {
				messages = append(messages, m)
			}
		case MessageReasoning:
			if m.SeatID == seatID {
				messages = append(messages, m)
			}
		}
	}

	v := SeatView{
		SessionID:    s.ID,
		Status:       s.Status,
		Day:          s.Day,
		Phase:        s.Phase,
		Winner:       s.Winner,
		StateVersion: s.StateVersion,
		MySeat:       seatID,
		MyRole:       me.Role,
		CurrentActor: s.CurrentActor,
		Seats:        seats,
		Messages:     messages,
	}
	if isWolf {
		v.Teammates = me.Teammates
		v.KillTarget = s.KillTarget
	}
	if me.Role == RoleSeer {
		v.Checks = me.Checks
	}
	if me.Role == RoleWitch {
		v.SaveUsed = me.SaveUsed
		v.PoisonUsed = me.PoisonUsed
		if s.Phase == PhaseNightWitch {
			v.KillTarget = s.KillTarget
		}
	}
	if me.Role.ShootsOnDeath() {
		v.CanShoot = me.CanShoot
	}
	if s.Pending != nil && s.Pending.SeatID == seatID {
		v.Pending = s.Pending
	}
	return v, nil
}
