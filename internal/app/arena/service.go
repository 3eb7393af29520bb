// Package arena exposes the engine's operations to the transport layer.
// Every mutating call runs inside the registry's per-session lock.
package arena

import (
	"context"
	"errors"

	"werewolf-arena/internal/game"
	"werewolf-arena/internal/registry"
)

type Service struct {
	reg      *registry.Registry
	eng      *game.Engine
	maxSteps int
}

func NewService(reg *registry.Registry, eng *game.Engine, maxAutoSteps int) *Service {
	if maxAutoSteps <= 0 {
		maxAutoSteps = 200
	}
	return &Service{reg: reg, eng: eng, maxSteps: maxAutoSteps}
}

// Create registers a fully-formed session handed over by the room
// collaborator. An empty id gets a fresh ULID.
func (s *Service) Create(id string, setup []game.SeatSetup) (*game.Session, error) {
	if id == "" {
		id = game.NewID()
	}
	sess, err := game.NewSession(id, setup)
	if err != nil {
		return nil, err
	}
	if err := s.reg.Create(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Step auto-advances the session until a human seat owes an action, the
// game ends, or the iteration cap trips.
func (s *Service) Step(ctx context.Context, id string) (StepResponse, error) {
	var resp StepResponse
	err := s.reg.WithSession(id, func(sess *game.Session) error {
		result, err := s.stepUntilBlocked(ctx, sess)
		if err != nil {
			return err
		}
		resp = buildStepResponse(sess, result)
		return nil
	})
	return resp, err
}

// Apply records one human action and then auto-advances.
func (s *Service) Apply(ctx context.Context, id string, seatID int, kind game.ActionKind, target int, text string) (StepResponse, error) {
	var resp StepResponse
	err := s.reg.WithSession(id, func(sess *game.Session) error {
		if err := s.eng.Apply(sess, seatID, kind, target, text); err != nil {
			return err
		}
		result, err := s.stepUntilBlocked(ctx, sess)
		if err != nil {
			return err
		}
		resp = buildStepResponse(sess, result)
		return nil
	})
	return resp, err
}

// View returns the per-seat filtered projection.
func (s *Service) View(id string, seatID int) (game.SeatView, error) {
	var view game.SeatView
	err := s.reg.ReadSession(id, func(sess *game.Session) error {
		v, err := sess.ViewFor(seatID)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	return view, err
}

func (s *Service) Delete(id string) bool {
	return s.reg.Delete(id)
}

func (s *Service) stepUntilBlocked(ctx context.Context, sess *game.Session) (game.StepResult, error) {
	for i := 0; i < s.maxSteps; i++ {
		result, err := s.eng.Step(ctx, sess)
		if err != nil {
			return result, err
		}
		if result != game.StepUpdated {
			return result, nil
		}
	}
	// Progress was made on every iteration; the caller may simply step again.
	return game.StepUpdated, nil
}

func buildStepResponse(sess *game.Session, result game.StepResult) StepResponse {
	return StepResponse{
		Status:       result.String(),
		Phase:        sess.Phase,
		Day:          sess.Day,
		Winner:       sess.Winner,
		StateVersion: sess.StateVersion,
		Pending:      sess.Pending,
	}
}

// IsNotFound reports whether err should map to a 404.
func IsNotFound(err error) bool {
	return errors.Is(err, registry.ErrNotFound) || errors.Is(err, game.ErrSeatNotFound)
}
