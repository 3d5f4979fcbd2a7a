package actors

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/socialmesh/socialmesh/query"
	"github.com/socialmesh/socialmesh/runtime"
	"github.com/socialmesh/socialmesh/snapshot"
	"github.com/socialmesh/socialmesh/social"
)

// chatState is the persisted form of one chat actor.
type chatState struct {
	Initialized bool        `json:"initialized"`
	Chat        social.Chat `json:"chat"`
}

// chatActor owns one chat room: participants and message history.
// Every successful mutation notifies all current participants' chat
// registries that the chat moved forward in time.
type chatActor struct {
	sys *runtime.System
	id  string
	cfg Config
	st  chatState
}

func newChatActor(sys *runtime.System, id string, cfg Config) runtime.Behavior {
	return &chatActor{sys: sys, id: id, cfg: cfg}
}

func (a *chatActor) Receive(ctx context.Context, env runtime.Envelope) (interface{}, error) {
	switch m := env.Msg.(type) {
	case ChatInitialize:
		return nil, a.initialize(m)
	case ChatAddParticipants:
		return nil, a.addParticipants(m)
	case ChatAddMessage:
		return a.addMessage(m)
	case ChatRemoveMessage:
		return nil, a.removeMessage(m)
	case ChatSetMessageLike:
		return nil, a.setMessageLike(m)
	case ChatRemoveMessageLike:
		return nil, a.removeMessageLike(m)
	case ChatGet:
		return a.get(), nil
	case ChatGetMatching:
		return a.getMatching(m.Query), nil
	default:
		return nil, fmt.Errorf("chat %s: unexpected message %T", a.id, env.Msg)
	}
}

func (a *chatActor) initialize(m ChatInitialize) error {
	if a.st.Initialized {
		return social.NewError(social.CodeAlreadyExists, "chat %s is already initialized", a.id)
	}
	if m.CreatedBy == "" {
		return social.NewError(social.CodeInvalidInput, "chat %s: creator is required", a.id)
	}

	// The creator always participates; duplicates collapse.
	participants := dedupe(append([]string{m.CreatedBy}, m.ParticipantIDs...))
	if len(participants) < 2 {
		return social.NewError(social.CodeInsufficientParticipants,
			"chat %s needs at least 2 distinct participants, got %d", a.id, len(participants))
	}

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = social.Now()
	}

	a.st.Chat = social.Chat{
		ID:           a.id,
		CreatedBy:    m.CreatedBy,
		Participants: participants,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	a.st.Initialized = true

	for _, p := range participants {
		tell(a.sys, ChatListAddress(p), ChatListAddChat{
			ChatID:    a.id,
			CreatedBy: m.CreatedBy,
			At:        createdAt,
		})
	}
	a.notifyUpdated(participants, createdAt)
	return nil
}

func (a *chatActor) addParticipants(m ChatAddParticipants) error {
	if err := a.requireInitialized(); err != nil {
		return err
	}

	var added []string
	for _, id := range dedupe(m.UserIDs) {
		if !a.st.Chat.HasParticipant(id) {
			added = append(added, id)
		}
	}
	if len(added) == 0 {
		return social.NewError(social.CodeNoNewParticipants,
			"chat %s: every given user is already a participant", a.id)
	}

	existing := append([]string(nil), a.st.Chat.Participants...)
	a.st.Chat.Participants = append(a.st.Chat.Participants, added...)
	now := social.Now()
	a.st.Chat.UpdatedAt = now

	for _, p := range added {
		tell(a.sys, ChatListAddress(p), ChatListAddChat{
			ChatID:    a.id,
			CreatedBy: a.st.Chat.CreatedBy,
			At:        now,
		})
	}
	a.notifyUpdated(existing, now)
	return nil
}

func (a *chatActor) addMessage(m ChatAddMessage) (string, error) {
	if err := a.requireInitialized(); err != nil {
		return "", err
	}
	if len(a.st.Chat.Messages) >= a.cfg.MaxChatMessages {
		return "", social.NewError(social.CodeLimitExceeded,
			"chat %s already has %d messages", a.id, len(a.st.Chat.Messages))
	}

	now := social.Now()
	msg := social.ChatMessage{
		ID:        uuid.NewString(),
		Content:   m.Content,
		AuthorID:  m.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.st.Chat.Messages = append(a.st.Chat.Messages, msg)
	a.touch(now)
	return msg.ID, nil
}

func (a *chatActor) removeMessage(m ChatRemoveMessage) error {
	if err := a.requireInitialized(); err != nil {
		return err
	}
	if !a.st.Chat.Messages.Remove(m.MessageID) {
		return social.NewError(social.CodeNotFound, "message %s not found in chat %s", m.MessageID, a.id)
	}
	a.touch(social.Now())
	return nil
}

func (a *chatActor) setMessageLike(m ChatSetMessageLike) error {
	if err := a.requireInitialized(); err != nil {
		return err
	}
	msg := a.st.Chat.Messages.Find(m.MessageID)
	if msg == nil {
		return social.NewError(social.CodeNotFound, "message %s not found in chat %s", m.MessageID, a.id)
	}
	now := social.Now()
	msg.Likes.Set(m.UserID, m.Kind)
	msg.UpdatedAt = now
	a.touch(now)
	return nil
}

func (a *chatActor) removeMessageLike(m ChatRemoveMessageLike) error {
	if err := a.requireInitialized(); err != nil {
		return err
	}
	msg := a.st.Chat.Messages.Find(m.MessageID)
	if msg == nil {
		return social.NewError(social.CodeNotFound, "message %s not found in chat %s", m.MessageID, a.id)
	}
	if !msg.Likes.Remove(m.UserID) {
		return social.NewError(social.CodeNotFound,
			"user %s has no like on message %s", m.UserID, m.MessageID)
	}
	now := social.Now()
	msg.UpdatedAt = now
	a.touch(now)
	return nil
}

func (a *chatActor) get() *social.Chat {
	if !a.st.Initialized {
		return nil
	}
	return a.st.Chat.Clone()
}

func (a *chatActor) getMatching(q string) *social.Chat {
	if !a.st.Initialized {
		return nil
	}
	if !query.Match(q, &a.st.Chat) {
		return nil
	}
	return a.st.Chat.Clone()
}

func (a *chatActor) requireInitialized() error {
	if !a.st.Initialized {
		return social.NewError(social.CodeNotFound, "chat %s is not initialized", a.id)
	}
	return nil
}

func (a *chatActor) touch(now social.Timestamp) {
	a.st.Chat.UpdatedAt = now
	a.notifyUpdated(a.st.Chat.Participants, now)
}

func (a *chatActor) notifyUpdated(participants []string, at social.Timestamp) {
	for _, p := range participants {
		tell(a.sys, ChatListAddress(p), ChatListChatUpdated{ChatID: a.id, At: at})
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (a *chatActor) MarshalSnapshot() ([]byte, error) {
	return snapshot.Encode(&a.st)
}

func (a *chatActor) RestoreSnapshot(data []byte) error {
	return snapshot.Decode(data, &a.st)
}
