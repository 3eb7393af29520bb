package game

import (
	"errors"
	"testing"
)

func viewFixture(t *testing.T) *Session {
	t.Helper()
	s := mustSession(t, standardSetup())
	s.Status = StatusPlaying
	s.addMessage(MessageSystem, SystemSeat, "night 1 falls")
	s.addMessage(MessageWolfChat, 1, "take seat 7 tonight")
	s.addMessage(MessageReasoning, 4, "seat 1 dodged my question")
	s.addMessage(MessageSpeech, 7, "I am a plain villager")
	return s
}

func TestViewHidesRolesFromVillagers(t *testing.T) {
	s := viewFixture(t)
	v, err := s.ViewFor(7)
	if err != nil {
		t.Fatalf("ViewFor() error = %v", err)
	}
	if v.MyRole != RoleVillager || v.MySeat != 7 {
		t.Fatalf("own identity = %s/%d, want villager/7", v.MyRole, v.MySeat)
	}
	for _, si := range v.Seats {
		if si.SeatID != 7 && si.Role != "" {
			t.Fatalf("seat %d role %q leaked to a villager", si.SeatID, si.Role)
		}
	}
	if v.Teammates != nil || v.KillTarget != NoTarget || v.Checks != nil {
		t.Fatal("wolf or seer private state leaked to a villager")
	}
}

func TestViewRevealsPackToWolves(t *testing.T) {
	s := viewFixture(t)
	s.KillTarget = 7
	v, err := s.ViewFor(2)
	if err != nil {
		t.Fatalf("ViewFor() error = %v", err)
	}
	if len(v.Teammates) != 2 {
		t.Fatalf("Teammates = %v, want the two other wolves", v.Teammates)
	}
	if v.KillTarget != 7 {
		t.Fatalf("KillTarget = %d, want 7", v.KillTarget)
	}
	wolfRoles := 0
	for _, si := range v.Seats {
		if si.Role.IsWolf() {
			wolfRoles++
		}
		if si.SeatID == 4 && si.Role != "" {
			t.Fatal("seer role leaked to a wolf")
		}
	}
	if wolfRoles != 3 {
		t.Fatalf("visible wolf roles = %d, want 3", wolfRoles)
	}
}

func TestViewFiltersMessages(t *testing.T) {
	s := viewFixture(t)

	v, _ := s.ViewFor(7)
	for _, m := range v.Messages {
		if m.Kind == MessageWolfChat {
			t.Fatal("wolf chat leaked to a villager")
		}
		if m.Kind == MessageReasoning {
			t.Fatal("another seat's reasoning leaked to a villager")
		}
	}

	v, _ = s.ViewFor(1)
	sawChat := false
	for _, m := range v.Messages {
		if m.Kind == MessageWolfChat {
			sawChat = true
		}
	}
	if !sawChat {
		t.Fatal("wolf cannot see its own pack chat")
	}

	v, _ = s.ViewFor(4)
	sawOwnReasoning := false
	for _, m := range v.Messages {
		if m.Kind == MessageReasoning && m.SeatID == 4 {
			sawOwnReasoning = true
		}
	}
	if !sawOwnReasoning {
		t.Fatal("seat cannot see its own reasoning")
	}
}

func TestViewRevealsEverythingWhenFinished(t *testing.T) {
	s := viewFixture(t)
	s.Status = StatusFinished
	s.Winner = WinnerWolves

	v, _ := s.ViewFor(7)
	for _, si := range v.Seats {
		if si.Role == "" {
			t.Fatalf("seat %d role hidden after game over", si.SeatID)
		}
	}
	sawChat := false
	for _, m := range v.Messages {
		if m.Kind == MessageWolfChat {
			sawChat = true
		}
	}
	if !sawChat {
		t.Fatal("wolf chat still hidden after game over")
	}
	if v.Winner != WinnerWolves {
		t.Fatalf("Winner = %s, want wolves", v.Winner)
	}
}

func TestViewWitchSeesKillOnlyDuringHerPhase(t *testing.T) {
	s := viewFixture(t)
	s.KillTarget = 7

	v, _ := s.ViewFor(5)
	if v.KillTarget != NoTarget {
		t.Fatal("witch sees the kill target outside her phase")
	}
	s.Phase = PhaseNightWitch
	v, _ = s.ViewFor(5)
	if v.KillTarget != 7 {
		t.Fatalf("KillTarget = %d during the witch phase, want 7", v.KillTarget)
	}
}

func TestViewPendingOnlyForOwner(t *testing.T) {
	s := viewFixture(t)
	s.Pending = pendingSpeech(7)
	s.CurrentActor = 7

	v, _ := s.ViewFor(7)
	if v.Pending == nil || v.Pending.Kind != ActionSpeech {
		t.Fatalf("owner pending = %v, want the speech prompt", v.Pending)
	}
	v, _ = s.ViewFor(8)
	if v.Pending != nil {
		t.Fatal("another seat's pending prompt leaked")
	}
}

func TestViewUnknownSeat(t *testing.T) {
	s := viewFixture(t)
	if _, err := s.ViewFor(42); !errors.Is(err, ErrSeatNotFound) {
		t.Fatalf("ViewFor(42) error = %v, want %v", err, ErrSeatNotFound)
	}
}
