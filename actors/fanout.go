package actors

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/socialmesh/socialmesh/runtime"
	"github.com/socialmesh/socialmesh/snapshot"
	"github.com/socialmesh/socialmesh/social"
)

// fanoutState is the persisted form of one fan-out coordinator: the
// pending queue, an ordered map from post id to its latest update.
type fanoutState struct {
	Pending []social.PostUpdate `json:"pending,omitempty"`
}

// fanoutActor batches pending post updates for one author and
// distributes them to the author's own timeline and to every
// connection's timeline, one ref list per connection kind. A drain
// amplifies each batch into O(updates x connections x kinds) triggers;
// none of them are retried here.
type fanoutActor struct {
	sys *runtime.System
	id  string // author id
	cfg Config
	st  fanoutState
}

func newFanoutActor(sys *runtime.System, id string, cfg Config) runtime.Behavior {
	return &fanoutActor{sys: sys, id: id, cfg: cfg}
}

func (a *fanoutActor) Receive(ctx context.Context, env runtime.Envelope) (interface{}, error) {
	switch m := env.Msg.(type) {
	case FanoutPostUpdated:
		a.upsert(m.Update)
		if m.Immediate {
			return nil, a.drain(ctx)
		}
		return nil, nil
	case FanoutProcess:
		return nil, a.drain(ctx)
	default:
		return nil, fmt.Errorf("fanout %s: unexpected message %T", a.id, env.Msg)
	}
}

// upsert records the latest (created, updated) pair for a post; a
// repeated post id overwrites its earlier entry.
func (a *fanoutActor) upsert(update social.PostUpdate) {
	for i := range a.st.Pending {
		if a.st.Pending[i].PostID == update.PostID {
			a.st.Pending[i] = update
			return
		}
	}
	a.st.Pending = append(a.st.Pending, update)
}

func (a *fanoutActor) drain(ctx context.Context) error {
	if len(a.st.Pending) == 0 {
		return nil
	}

	reply, err := a.sys.Ask(ctx, UserAddress(a.id), UserGet{})
	if err != nil {
		// The queue stays intact; a later drain retries the read.
		return fmt.Errorf("fanout %s: read author: %w", a.id, err)
	}
	author, _ := reply.(*social.User)
	if author == nil {
		a.sys.Logger().Warn("fanout: author does not exist, dropping batch",
			zap.String("author", a.id),
			zap.Int("updates", len(a.st.Pending)))
		a.st.Pending = nil
		return nil
	}

	// Snapshot-and-clear before distributing, so a re-enqueued update
	// during distribution lands in the next batch.
	batch := a.st.Pending
	a.st.Pending = nil

	tell(a.sys, TimelineAddress(a.id), TimelinePostsUpdated{
		Refs: a.refsFor(batch, social.RefContextNone),
	})
	for _, conn := range author.Connections {
		for _, kind := range conn.Kinds {
			tell(a.sys, TimelineAddress(conn.UserID), TimelinePostsUpdated{
				Refs: a.refsFor(batch, social.RefContext(kind)),
			})
		}
	}
	return nil
}

func (a *fanoutActor) refsFor(batch []social.PostUpdate, context social.RefContext) []social.PostRef {
	refs := make([]social.PostRef, 0, len(batch))
	for _, u := range batch {
		refs = append(refs, social.PostRef{
			PostID:    u.PostID,
			AuthorID:  a.id,
			Context:   context,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		})
	}
	return refs
}

func (a *fanoutActor) MarshalSnapshot() ([]byte, error) {
	return snapshot.Encode(&a.st)
}

func (a *fanoutActor) RestoreSnapshot(data []byte) error {
	return snapshot.Decode(data, &a.st)
}
