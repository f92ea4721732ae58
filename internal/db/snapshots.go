package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"aicore/internal/agent"
	"aicore/internal/geom"
)

// Snapshot is the externally-serialized agent state: the fields the
// save/load boundary owns. Behavior trees and the mesh reference are not
// part of it; a restored agent follows its stored path as-is.
type Snapshot struct {
	AgentID          uuid.UUID
	Name             string
	Position         geom.Vec3
	TargetPosition   *geom.Vec3
	Path             []geom.Vec3
	CurrentPathIndex int
	Blackboard       map[string]any
	SavedAt          time.Time
}

// Capture builds a snapshot from an agent's current state.
func Capture(a *agent.Agent) Snapshot {
	return Snapshot{
		AgentID:          a.ID(),
		Name:             a.Name(),
		Position:         a.Position,
		TargetPosition:   a.TargetPosition,
		Path:             a.Path,
		CurrentPathIndex: a.CurrentPathIndex,
		Blackboard:       a.Blackboard,
	}
}

// Apply restores snapshot state onto an agent. The agent keeps whatever
// mesh and behavior tree it already has; the restored path is
// authoritative data and is never re-derived.
func (s Snapshot) Apply(a *agent.Agent) {
	a.Position = s.Position
	a.TargetPosition = s.TargetPosition
	a.Path = s.Path
	a.CurrentPathIndex = s.CurrentPathIndex
	a.Blackboard = s.Blackboard
	if a.Blackboard == nil {
		a.Blackboard = make(agent.Blackboard)
	}
}

// SaveSnapshot upserts the snapshot keyed by agent ID.
func (d *DB) SaveSnapshot(ctx context.Context, s Snapshot) error {
	position, err := json.Marshal(s.Position)
	if err != nil {
		return fmt.Errorf("encoding position for %q: %w", s.Name, err)
	}
	var target []byte
	if s.TargetPosition != nil {
		if target, err = json.Marshal(s.TargetPosition); err != nil {
			return fmt.Errorf("encoding target for %q: %w", s.Name, err)
		}
	}
	path, err := json.Marshal(s.Path)
	if err != nil {
		return fmt.Errorf("encoding path for %q: %w", s.Name, err)
	}
	blackboard, err := json.Marshal(s.Blackboard)
	if err != nil {
		return fmt.Errorf("encoding blackboard for %q: %w", s.Name, err)
	}

	_, err = d.pool.Exec(ctx,
		`INSERT INTO agent_snapshots
		     (agent_id, name, position, target_position, path, current_path_index, blackboard, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (agent_id) DO UPDATE SET
		     name = EXCLUDED.name,
		     position = EXCLUDED.position,
		     target_position = EXCLUDED.target_position,
		     path = EXCLUDED.path,
		     current_path_index = EXCLUDED.current_path_index,
		     blackboard = EXCLUDED.blackboard,
		     saved_at = now()`,
		s.AgentID, s.Name, position, target, path, s.CurrentPathIndex, blackboard,
	)
	if err != nil {
		return fmt.Errorf("saving snapshot for %q: %w", s.Name, err)
	}

	slog.Debug("agent snapshot saved", "agent", s.Name, "id", s.AgentID)
	return nil
}

// LoadSnapshot fetches a snapshot by agent ID. Returns nil, nil when no
// snapshot exists.
func (d *DB) LoadSnapshot(ctx context.Context, agentID uuid.UUID) (*Snapshot, error) {
	var (
		s          Snapshot
		position   []byte
		target     []byte
		path       []byte
		blackboard []byte
	)
	err := d.pool.QueryRow(ctx,
		`SELECT agent_id, name, position, target_position, path, current_path_index, blackboard, saved_at
		 FROM agent_snapshots WHERE agent_id = $1`, agentID,
	).Scan(&s.AgentID, &s.Name, &position, &target, &path, &s.CurrentPathIndex, &blackboard, &s.SavedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying snapshot %s: %w", agentID, err)
	}

	if err := json.Unmarshal(position, &s.Position); err != nil {
		return nil, fmt.Errorf("decoding position for %s: %w", agentID, err)
	}
	if len(target) > 0 {
		s.TargetPosition = &geom.Vec3{}
		if err := json.Unmarshal(target, s.TargetPosition); err != nil {
			return nil, fmt.Errorf("decoding target for %s: %w", agentID, err)
		}
	}
	if err := json.Unmarshal(path, &s.Path); err != nil {
		return nil, fmt.Errorf("decoding path for %s: %w", agentID, err)
	}
	if err := json.Unmarshal(blackboard, &s.Blackboard); err != nil {
		return nil, fmt.Errorf("decoding blackboard for %s: %w", agentID, err)
	}
	return &s, nil
}

// DeleteSnapshot removes the snapshot for an agent. Missing rows are not
// an error.
func (d *DB) DeleteSnapshot(ctx context.Context, agentID uuid.UUID) error {
	if _, err := d.pool.Exec(ctx,
		`DELETE FROM agent_snapshots WHERE agent_id = $1`, agentID,
	); err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", agentID, err)
	}
	return nil
}
