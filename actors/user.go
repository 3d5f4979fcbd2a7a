package actors

import (
	"context"
	"fmt"

	"github.com/socialmesh/socialmesh/runtime"
	"github.com/socialmesh/socialmesh/snapshot"
	"github.com/socialmesh/socialmesh/social"
)

// userState is the persisted form of one user actor.
type userState struct {
	Initialized bool        `json:"initialized"`
	User        social.User `json:"user"`
}

// userActor owns one user's profile and symmetric connection graph.
// Users have no explicit initialize operation: the first successful
// mutation materializes the record and registers the id with the
// sharded user index.
type userActor struct {
	sys *runtime.System
	id  string
	cfg Config
	st  userState
}

func newUserActor(sys *runtime.System, id string, cfg Config) runtime.Behavior {
	return &userActor{sys: sys, id: id, cfg: cfg}
}

func (a *userActor) Receive(ctx context.Context, env runtime.Envelope) (interface{}, error) {
	switch m := env.Msg.(type) {
	case UserSetName:
		return nil, a.setName(m)
	case UserSetEmail:
		return nil, a.setEmail(m)
	case UserConnect:
		return nil, a.connect(m)
	case UserDisconnect:
		return nil, a.disconnect(m)
	case UserGet:
		return a.get(), nil
	default:
		return nil, fmt.Errorf("user %s: unexpected message %T", a.id, env.Msg)
	}
}

func (a *userActor) setName(m UserSetName) error {
	now := a.materialize()
	a.st.User.Name = m.Name
	a.st.User.UpdatedAt = now
	return nil
}

func (a *userActor) setEmail(m UserSetEmail) error {
	if !social.ValidEmail(m.Email) {
		return social.NewError(social.CodeInvalidInput, "invalid email %q", m.Email)
	}
	now := a.materialize()
	a.st.User.Email = m.Email
	a.st.User.UpdatedAt = now
	return nil
}

func (a *userActor) connect(m UserConnect) error {
	if m.TargetID == a.id {
		// Self-connections are silently ignored.
		return nil
	}
	if !m.Kind.Valid() {
		return social.NewError(social.CodeInvalidInput, "unknown connection kind %q", m.Kind)
	}

	now := a.materialize()
	conn := a.st.User.Connections.Find(m.TargetID)
	if conn != nil && conn.HasKind(m.Kind) {
		// Idempotent: the kind already exists, nothing propagates.
		return nil
	}

	if conn == nil {
		a.st.User.Connections = append(a.st.User.Connections, social.Connection{
			UserID:    m.TargetID,
			Kinds:     []social.ConnectionKind{m.Kind},
			CreatedAt: now,
			UpdatedAt: now,
		})
	} else {
		conn.Kinds = append(conn.Kinds, m.Kind)
		conn.UpdatedAt = now
	}
	a.st.User.UpdatedAt = now

	// Keep the graph symmetric: the target records the opposite kind.
	// Its own idempotence check stops the ping-pong.
	tell(a.sys, UserAddress(m.TargetID), UserConnect{TargetID: a.id, Kind: m.Kind.Opposite()})
	return nil
}

func (a *userActor) disconnect(m UserDisconnect) error {
	if m.TargetID == a.id {
		return nil
	}

	conn := a.st.User.Connections.Find(m.TargetID)
	if conn == nil || !conn.HasKind(m.Kind) {
		// Nothing to remove; stay quiet so reciprocal triggers settle.
		return nil
	}

	now := a.materialize()
	conn.RemoveKind(m.Kind)
	if len(conn.Kinds) == 0 {
		a.st.User.Connections.Remove(m.TargetID)
	} else {
		conn.UpdatedAt = now
	}
	a.st.User.UpdatedAt = now

	tell(a.sys, UserAddress(m.TargetID), UserDisconnect{TargetID: a.id, Kind: m.Kind.Opposite()})
	return nil
}

func (a *userActor) get() *social.User {
	if !a.st.Initialized {
		return nil
	}
	return a.st.User.Clone()
}

// materialize makes the user record real on its first mutation and
// registers the id with its index shard.
func (a *userActor) materialize() social.Timestamp {
	now := social.Now()
	if !a.st.Initialized {
		a.st.Initialized = true
		a.st.User.ID = a.id
		a.st.User.CreatedAt = now
		tell(a.sys, IndexShardFor(a.id, a.cfg.IndexShards), IndexAddUser{UserID: a.id})
	}
	return now
}

func (a *userActor) MarshalSnapshot() ([]byte, error) {
	return snapshot.Encode(&a.st)
}

func (a *userActor) RestoreSnapshot(data []byte) error {
	return snapshot.Decode(data, &a.st)
}
