package actors

import (
	"context"
	"fmt"

	"github.com/socialmesh/socialmesh/runtime"
	"github.com/socialmesh/socialmesh/snapshot"
)

// indexState is the persisted form of one user-index shard.
type indexState struct {
	UserIDs []string `json:"userIds,omitempty"`
}

// indexActor is one partition of the explicit user index. User actors
// register themselves here on first mutation; read-side directory
// searches list every shard.
type indexActor struct {
	sys *runtime.System
	id  string
	cfg Config
	st  indexState
}

func newIndexActor(sys *runtime.System, id string, cfg Config) runtime.Behavior {
	return &indexActor{sys: sys, id: id, cfg: cfg}
}

func (a *indexActor) Receive(ctx context.Context, env runtime.Envelope) (interface{}, error) {
	switch m := env.Msg.(type) {
	case IndexAddUser:
		a.addUser(m.UserID)
		return nil, nil
	case IndexListUsers:
		return append([]string(nil), a.st.UserIDs...), nil
	default:
		return nil, fmt.Errorf("user-index %s: unexpected message %T", a.id, env.Msg)
	}
}

func (a *indexActor) addUser(userID string) {
	for _, id := range a.st.UserIDs {
		if id == userID {
			return
		}
	}
	a.st.UserIDs = append(a.st.UserIDs, userID)
}

func (a *indexActor) MarshalSnapshot() ([]byte, error) {
	return snapshot.Encode(&a.st)
}

func (a *indexActor) RestoreSnapshot(data []byte) error {
	return snapshot.Decode(data, &a.st)
}
