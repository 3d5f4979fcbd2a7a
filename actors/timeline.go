package actors

import (
	"context"
	"fmt"
	"sort"

	"github.com/socialmesh/socialmesh/runtime"
	"github.com/socialmesh/socialmesh/snapshot"
	"github.com/socialmesh/socialmesh/social"
)

// timelineState is the persisted form of one timeline registry.
type timelineState struct {
	Initialized bool             `json:"initialized"`
	Refs        []social.PostRef `json:"refs,omitempty"`
}

// timelineActor is a user's bounded feed index: at most one ref per
// post id, sorted by updatedAt descending, truncated to capacity after
// every mutation. Only fan-out coordinators write into it, via
// triggers.
type timelineActor struct {
	sys *runtime.System
	id  string
	cfg Config
	st  timelineState
}

func newTimelineActor(sys *runtime.System, id string, cfg Config) runtime.Behavior {
	return &timelineActor{sys: sys, id: id, cfg: cfg}
}

func (a *timelineActor) Receive(ctx context.Context, env runtime.Envelope) (interface{}, error) {
	switch m := env.Msg.(type) {
	case TimelinePostsUpdated:
		a.postsUpdated(m.Refs)
		return nil, nil
	case TimelineGet:
		return a.get(), nil
	case TimelineGetUpdates:
		return a.getUpdates(m.Since)
	default:
		return nil, fmt.Errorf("timeline %s: unexpected message %T", a.id, env.Msg)
	}
}

func (a *timelineActor) postsUpdated(refs []social.PostRef) {
	a.st.Initialized = true

	for _, ref := range refs {
		replaced := false
		for i := range a.st.Refs {
			if a.st.Refs[i].PostID == ref.PostID {
				a.st.Refs[i] = ref
				replaced = true
				break
			}
		}
		if !replaced {
			a.st.Refs = append(a.st.Refs, ref)
		}
	}

	sort.SliceStable(a.st.Refs, func(i, j int) bool {
		return a.st.Refs[i].UpdatedAt > a.st.Refs[j].UpdatedAt
	})
	if len(a.st.Refs) > a.cfg.RegistryCapacity {
		a.st.Refs = a.st.Refs[:a.cfg.RegistryCapacity]
	}
}

func (a *timelineActor) get() *Timeline {
	if !a.st.Initialized {
		return nil
	}
	return &Timeline{
		OwnerID: a.id,
		Refs:    append([]social.PostRef(nil), a.st.Refs...),
	}
}

// getUpdates returns refs strictly newer than since. A registry that
// has never been written is reported as NotFound, which is distinct
// from an existing registry with no new items.
func (a *timelineActor) getUpdates(since social.Timestamp) (*Timeline, error) {
	if !a.st.Initialized {
		return nil, social.NewError(social.CodeNotFound, "timeline %s does not exist", a.id)
	}

	updated := make([]social.PostRef, 0)
	for _, ref := range a.st.Refs {
		if ref.UpdatedAt.After(since) {
			updated = append(updated, ref)
		}
	}
	return &Timeline{OwnerID: a.id, Refs: updated}, nil
}

func (a *timelineActor) MarshalSnapshot() ([]byte, error) {
	return snapshot.Encode(&a.st)
}

func (a *timelineActor) RestoreSnapshot(data []byte) error {
	return snapshot.Decode(data, &a.st)
}
