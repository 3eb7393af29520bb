package game

import (
	"fmt"
	"sort"
	"time"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

type Winner string

const (
	WinnerNone      Winner = ""
	WinnerVillagers Winner = "villagers"
	WinnerWolves    Winner = "wolves"
)

type Role string

const (
	RoleVillager  Role = "villager"
	RoleSeer      Role = "seer"
	RoleWitch     Role = "witch"
	RoleHunter    Role = "hunter"
	RoleGuard     Role = "guard"
	RoleWerewolf  Role = "werewolf"
	RoleWolfKing  Role = "wolf_king"
	RoleWhiteWolf Role = "white_wolf"
)

func (r Role) IsWolf() bool {
	return r == RoleWerewolf || r == RoleWolfKing || r == RoleWhiteWolf
}

// IsSpecial reports whether the role belongs to the special-ability class
// counted by the win evaluator.
func (r Role) IsSpecial() bool {
	switch r {
	case RoleSeer, RoleWitch, RoleHunter, RoleGuard:
		return true
	}
	return false
}

func (r Role) ShootsOnDeath() bool {
	return r == RoleHunter || r == RoleWolfKing
}

func ValidRole(r Role) bool {
	switch r {
	case RoleVillager, RoleSeer, RoleWitch, RoleHunter, RoleGuard,
		RoleWerewolf, RoleWolfKing, RoleWhiteWolf:
		return true
	}
	return false
}

type Phase string

const (
	PhaseNightStart    Phase = "night_start"
	PhaseNightWolfChat Phase = "night_wolf_chat"
	PhaseNightWolfVote Phase = "night_wolf_vote"
	PhaseNightGuard    Phase = "night_guard"
	PhaseNightSeer     Phase = "night_seer"
	PhaseNightWitch    Phase = "night_witch"
	PhaseDayAnnounce   Phase = "day_announce"
	PhaseDayShoot      Phase = "day_shoot"
	PhaseDaySpeech     Phase = "day_speech"
	PhaseDayVote       Phase = "day_vote"
	PhaseDayVoteResult Phase = "day_vote_result"
	PhaseGameOver      Phase = "game_over"
)

type ActionKind string

const (
	ActionWolfChat     ActionKind = "wolf_chat"
	ActionWolfKill     ActionKind = "wolf_kill"
	ActionSelfDestruct ActionKind = "self_destruct"
	ActionGuardProtect ActionKind = "guard_protect"
	ActionVerify       ActionKind = "verify"
	ActionWitchSave    ActionKind = "witch_save"
	ActionWitchPoison  ActionKind = "witch_poison"
	ActionSpeech       ActionKind = "speech"
	ActionVote         ActionKind = "vote"
	ActionShoot        ActionKind = "shoot"
	ActionLastWords    ActionKind = "last_words"
)

type MessageKind string

const (
	MessageSpeech    MessageKind = "speech"
	MessageWolfChat  MessageKind = "wolf_chat"
	MessageReasoning MessageKind = "reasoning"
	MessageLastWords MessageKind = "last_words"
	MessageSystem    MessageKind = "system"
)

// SystemSeat is the seat_id used for engine announcements.
const SystemSeat = 0

// NoTarget is the sentinel target meaning "abstain" or "none".
const NoTarget = 0

type Seat struct {
	SeatID  int  `json:"seat_id"`
	Role    Role `json:"role"`
	IsHuman bool `json:"is_human"`
	IsAlive bool `json:"is_alive"`

	// Single-use ability state owned by this seat.
	CanShoot   bool `json:"can_shoot"`
	SaveUsed   bool `json:"save_used"`
	PoisonUsed bool `json:"poison_used"`

	Checks      map[int]bool `json:"checks,omitempty"`
	Teammates   []int        `json:"teammates,omitempty"`
	LastGuarded int          `json:"last_guarded,omitempty"`
}

type Message struct {
	Day    int         `json:"day"`
	SeatID int         `json:"seat_id"`
	Kind   MessageKind `json:"kind"`
	Text   string      `json:"text"`
}

type ActionRecord struct {
	Day    int        `json:"day"`
	Phase  Phase      `json:"phase"`
	SeatID int        `json:"seat_id"`
	Kind   ActionKind `json:"kind"`
	Target int        `json:"target"`
}

// Session is the full game aggregate. It is mutated only by the Engine while
// the caller holds the registry's per-session lock.
type Session struct {
	ID           string `json:"id"`
	Status       Status `json:"status"`
	Day          int    `json:"day"`
	Phase        Phase  `json:"phase"`
	Winner       Winner `json:"winner"`
	StateVersion int64  `json:"state_version"`

	Seats    map[int]*Seat  `json:"seats"`
	Messages []Message      `json:"messages"`
	Actions  []ActionRecord `json:"actions"`

	// Night trackers, reset at night_start.
	KillVotes          map[int]int `json:"kill_votes"`
	KillTarget         int         `json:"kill_target"`
	GuardTarget        int         `json:"guard_target"`
	SaveTarget         int         `json:"save_target"`
	SeerChecked        bool        `json:"seer_checked"`
	WitchSaveDecided   bool        `json:"witch_save_decided"`
	WitchPoisonDecided bool        `json:"witch_poison_decided"`
	SelfDestructed     bool        `json:"self_destructed"`
	PendingDeaths      []int       `json:"pending_deaths"`
	UnblockableDeaths  []int       `json:"unblockable_deaths"`
	NightDeaths        []int       `json:"night_deaths"`

	// Day trackers, reset at day_announce.
	SpeechOrder  []int       `json:"speech_order"`
	SpeechCursor int         `json:"speech_cursor"`
	Votes        map[int]int `json:"votes"`
	ExileTarget  int         `json:"exile_target"`

	CurrentActor int            `json:"current_actor"`
	Pending      *PendingAction `json:"pending,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeatSetup is the seat assignment handed over by the room collaborator.
type SeatSetup struct {
	SeatID  int  `json:"seat_id"`
	Role    Role `json:"role"`
	IsHuman bool `json:"is_human"`
}

func NewSession(id string, setup []SeatSetup) (*Session, error) {
	if id == "" {
		return nil, ErrBadSetup
	}
	if len(setup) < 4 {
		return nil, ErrBadSetup
	}
	seats := make(map[int]*Seat, len(setup))
	wolves := []int{}
	for _, ss := range setup {
		if ss.SeatID <= 0 || !ValidRole(ss.Role) {
			return nil, ErrBadSetup
		}
		if _, dup := seats[ss.SeatID]; dup {
			return nil, ErrBadSetup
		}
		seats[ss.SeatID] = &Seat{
			SeatID:   ss.SeatID,
			Role:     ss.Role,
			IsHuman:  ss.IsHuman,
			IsAlive:  true,
			CanShoot: ss.Role.ShootsOnDeath(),
		}
		if ss.Role == RoleSeer {
			seats[ss.SeatID].Checks = map[int]bool{}
		}
		if ss.Role.IsWolf() {
			wolves = append(wolves, ss.SeatID)
		}
	}
	if len(wolves) == 0 || len(wolves) >= len(seats) {
		return nil, ErrBadSetup
	}
	sort.Ints(wolves)
	for _, w := range wolves {
		for _, other := range wolves {
			if other != w {
				seats[w].Teammates = append(seats[w].Teammates, other)
			}
		}
	}
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Status:    StatusWaiting,
		Day:       1,
		Phase:     PhaseNightStart,
		Seats:     seats,
		KillVotes: map[int]int{},
		Votes:     map[int]int{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Session) Seat(id int) *Seat {
	return s.Seats[id]
}

func (s *Session) SeatIDs() []int {
	ids := make([]int, 0, len(s.Seats))
	for id := range s.Seats {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Session) AliveSeats() []int {
	alive := []int{}
	for _, id := range s.SeatIDs() {
		if s.Seats[id].IsAlive {
			alive = append(alive, id)
		}
	}
	return alive
}

func (s *Session) aliveWolves() []int {
	wolves := []int{}
	for _, id := range s.AliveSeats() {
		if s.Seats[id].Role.IsWolf() {
			wolves = append(wolves, id)
		}
	}
	return wolves
}

func (s *Session) aliveSeatWithRole(r Role) *Seat {
	for _, id := range s.AliveSeats() {
		if s.Seats[id].Role == r {
			return s.Seats[id]
		}
	}
	return nil
}

func (s *Session) seatWithRole(r Role) *Seat {
	for _, id := range s.SeatIDs() {
		if s.Seats[id].Role == r {
			return s.Seats[id]
		}
	}
	return nil
}

// HasActed derives "did seat X already do K today" from the action log.
func (s *Session) HasActed(day int, kind ActionKind, seatID int) bool {
	for i := len(s.Actions) - 1; i >= 0; i-- {
		a := s.Actions[i]
		if a.Day < day {
			return false
		}
		if a.Day == day && a.Kind == kind && a.SeatID == seatID {
			return true
		}
	}
	return false
}

func (s *Session) record(kind ActionKind, seatID, target int) {
	s.Actions = append(s.Actions, ActionRecord{
		Day: s.Day, Phase: s.Phase, SeatID: seatID, Kind: kind, Target: target,
	})
}

func (s *Session) addMessage(kind MessageKind, seatID int, text string) {
	s.Messages = append(s.Messages, Message{Day: s.Day, SeatID: seatID, Kind: kind, Text: text})
}

func (s *Session) systemf(format string, args ...any) {
	s.addMessage(MessageSystem, SystemSeat, fmt.Sprintf(format, args...))
}

func (s *Session) resetNight() {
	s.KillVotes = map[int]int{}
	s.KillTarget = NoTarget
	s.GuardTarget = NoTarget
	s.SaveTarget = NoTarget
	s.SeerChecked = false
	s.WitchSaveDecided = false
	s.WitchPoisonDecided = false
	s.SelfDestructed = false
	s.PendingDeaths = nil
	s.UnblockableDeaths = nil
	s.NightDeaths = nil
	s.CurrentActor = 0
	s.Pending = nil
}

func (s *Session) resetDay() {
	s.SpeechOrder = nil
	s.SpeechCursor = 0
	s.Votes = map[int]int{}
	s.ExileTarget = NoTarget
	s.CurrentActor = 0
	s.Pending = nil
}

func (s *Session) finish(w Winner) {
	s.Winner = w
	s.Status = StatusFinished
	s.Phase = PhaseGameOver
	s.CurrentActor = 0
	s.Pending = nil
	s.systemf("game over: %s win", w)
}
