package actors

import (
	"context"
	"fmt"
	"sort"

	"github.com/socialmesh/socialmesh/runtime"
	"github.com/socialmesh/socialmesh/snapshot"
	"github.com/socialmesh/socialmesh/social"
)

// chatListState is the persisted form of one chat-list registry.
type chatListState struct {
	Initialized bool             `json:"initialized"`
	Refs        []social.ChatRef `json:"refs,omitempty"`
}

// chatListActor is a user's bounded chat index, ordered by updatedAt
// descending. Chat actors write into it via triggers; addChat is an
// idempotent insert while chatUpdated is a targeted bump that fails
// when the ref is missing.
type chatListActor struct {
	sys *runtime.System
	id  string
	cfg Config
	st  chatListState
}

func newChatListActor(sys *runtime.System, id string, cfg Config) runtime.Behavior {
	return &chatListActor{sys: sys, id: id, cfg: cfg}
}

func (a *chatListActor) Receive(ctx context.Context, env runtime.Envelope) (interface{}, error) {
	switch m := env.Msg.(type) {
	case ChatListAddChat:
		a.addChat(m)
		return nil, nil
	case ChatListChatUpdated:
		return nil, a.chatUpdated(m)
	case ChatListRemoveChat:
		return nil, a.removeChat(m)
	case ChatListGet:
		return a.get(), nil
	case ChatListGetUpdates:
		return a.getUpdates(m.Since)
	default:
		return nil, fmt.Errorf("chatlist %s: unexpected message %T", a.id, env.Msg)
	}
}

func (a *chatListActor) addChat(m ChatListAddChat) {
	a.st.Initialized = true

	for i := range a.st.Refs {
		if a.st.Refs[i].ChatID == m.ChatID {
			// Already present; addChat never fails on repeats.
			return
		}
	}
	a.st.Refs = append(a.st.Refs, social.ChatRef{
		ChatID:    m.ChatID,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.At,
		UpdatedAt: m.At,
	})
	a.normalize()
}

func (a *chatListActor) chatUpdated(m ChatListChatUpdated) error {
	for i := range a.st.Refs {
		if a.st.Refs[i].ChatID == m.ChatID {
			a.st.Refs[i].UpdatedAt = m.At
			a.normalize()
			return nil
		}
	}
	return social.NewError(social.CodeNotFound, "chat %s not in chatlist %s", m.ChatID, a.id)
}

func (a *chatListActor) removeChat(m ChatListRemoveChat) error {
	for i := range a.st.Refs {
		if a.st.Refs[i].ChatID == m.ChatID {
			a.st.Refs = append(a.st.Refs[:i], a.st.Refs[i+1:]...)
			return nil
		}
	}
	return social.NewError(social.CodeNotFound, "chat %s not in chatlist %s", m.ChatID, a.id)
}

func (a *chatListActor) get() *ChatList {
	if !a.st.Initialized {
		return nil
	}
	return &ChatList{
		OwnerID: a.id,
		Refs:    append([]social.ChatRef(nil), a.st.Refs...),
	}
}

func (a *chatListActor) getUpdates(since social.Timestamp) (*ChatList, error) {
	if !a.st.Initialized {
		return nil, social.NewError(social.CodeNotFound, "chatlist %s does not exist", a.id)
	}

	updated := make([]social.ChatRef, 0)
	for _, ref := range a.st.Refs {
		if ref.UpdatedAt.After(since) {
			updated = append(updated, ref)
		}
	}
	return &ChatList{OwnerID: a.id, Refs: updated}, nil
}

func (a *chatListActor) normalize() {
	sort.SliceStable(a.st.Refs, func(i, j int) bool {
		return a.st.Refs[i].UpdatedAt > a.st.Refs[j].UpdatedAt
	})
	if len(a.st.Refs) > a.cfg.RegistryCapacity {
		a.st.Refs = a.st.Refs[:a.cfg.RegistryCapacity]
	}
}

func (a *chatListActor) MarshalSnapshot() ([]byte, error) {
	return snapshot.Encode(&a.st)
}

func (a *chatListActor) RestoreSnapshot(data []byte) error {
	return snapshot.Decode(data, &a.st)
}
