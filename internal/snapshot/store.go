package snapshot

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"werewolf-arena/internal/game"
)

// Store keeps one snapshot row per session in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS session_snapshots (
		session_id TEXT PRIMARY KEY,
		status     TEXT NOT NULL,
		state      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

// Save upserts the session's snapshot. Callers hold the registry lock, so
// writes for one session never interleave.
func (s *Store) Save(ctx context.Context, sess *game.Session) error {
	state, err := Encode(sess)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `INSERT INTO session_snapshots (session_id, status, state, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id)
		DO UPDATE SET status = $2, state = $3, updated_at = now()`,
		sess.ID, string(sess.Status), state)
	return err
}

// LoadAllActive returns every snapshot whose session is unfinished and was
// written within the ttl window. Rows that fail to decode are skipped.
func (s *Store) LoadAllActive(ctx context.Context, ttl time.Duration) ([]*game.Session, error) {
	rows, err := s.Pool.Query(ctx, `SELECT session_id, state FROM session_snapshots
		WHERE status != $1 AND updated_at > now() - ($2 * interval '1 second')`,
		string(game.StatusFinished), ttl.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []*game.Session{}
	for rows.Next() {
		var id string
		var state []byte
		if err := rows.Scan(&id, &state); err != nil {
			return nil, err
		}
		sess, err := Decode(state)
		if err != nil {
			log.Warn().Err(err).Str("session_id", id).Msg("skipping undecodable snapshot")
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM session_snapshots WHERE session_id = $1`, sessionID)
	return err
}
