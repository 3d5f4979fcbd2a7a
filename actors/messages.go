package actors

import (
	"github.com/socialmesh/socialmesh/social"
)

// Post actor messages.

// PostInitialize sets a post's author and content. Fails with
// AlreadyExists when repeated.
type PostInitialize struct {
	AuthorID string
	Content  string
}

// PostSetLike upserts one user's like on the post.
type PostSetLike struct {
	UserID string
	Kind   social.LikeKind
}

// PostRemoveLike removes one user's like on the post.
type PostRemoveLike struct {
	UserID string
}

// PostAddComment appends a comment; the reply is the fresh comment id.
// ParentID is recorded unvalidated.
type PostAddComment struct {
	AuthorID string
	Content  string
	ParentID string
}

// PostRemoveComment removes a comment and its direct children.
type PostRemoveComment struct {
	CommentID string
}

// PostSetCommentLike upserts one user's like on a comment.
type PostSetCommentLike struct {
	CommentID string
	UserID    string
	Kind      social.LikeKind
}

// PostRemoveCommentLike removes one user's like on a comment.
type PostRemoveCommentLike struct {
	CommentID string
	UserID    string
}

// PostGet returns the post, or nil before initialization.
type PostGet struct{}

// PostGetMatching returns the post only when it matches the query.
type PostGetMatching struct {
	Query string
}

// Chat actor messages.

// ChatInitialize creates the chat with its initial participants. The
// de-duplicated participant set including the creator must have at
// least two members.
type ChatInitialize struct {
	ParticipantIDs []string
	CreatedBy      string
	CreatedAt      social.Timestamp
}

// ChatAddParticipants adds members; fails with NoNewParticipants when
// every id is already present.
type ChatAddParticipants struct {
	UserIDs []string
}

// ChatAddMessage appends a message; the reply is the fresh message id.
type ChatAddMessage struct {
	AuthorID string
	Content  string
}

// ChatRemoveMessage removes one message.
type ChatRemoveMessage struct {
	MessageID string
}

// ChatSetMessageLike upserts one user's like on a message.
type ChatSetMessageLike struct {
	MessageID string
	UserID    string
	Kind      social.LikeKind
}

// ChatRemoveMessageLike removes one user's like on a message.
type ChatRemoveMessageLike struct {
	MessageID string
	UserID    string
}

// ChatGet returns the chat, or nil before initialization.
type ChatGet struct{}

// ChatGetMatching returns the chat only when it matches the query.
type ChatGetMatching struct {
	Query string
}

// User actor messages.

// UserSetName sets the display name.
type UserSetName struct {
	Name string
}

// UserSetEmail sets the email after validating local@domain.tld shape.
type UserSetEmail struct {
	Email string
}

// UserConnect adds one connection kind toward the target and triggers
// the opposite kind on the target's side.
type UserConnect struct {
	TargetID string
	Kind     social.ConnectionKind
}

// UserDisconnect removes one connection kind toward the target and
// triggers the opposite removal on the target's side.
type UserDisconnect struct {
	TargetID string
	Kind     social.ConnectionKind
}

// UserGet returns the user, or nil before any business mutation.
type UserGet struct{}

// Timeline registry messages.

// TimelinePostsUpdated upserts refs into the bounded timeline.
type TimelinePostsUpdated struct {
	Refs []social.PostRef
}

// TimelineGet returns the registry state, or nil if never written.
type TimelineGet struct{}

// TimelineGetUpdates returns refs updated strictly after Since; it
// fails with NotFound when the registry was never written at all.
type TimelineGetUpdates struct {
	Since social.Timestamp
}

// Timeline is the reply to TimelineGet and TimelineGetUpdates.
type Timeline struct {
	OwnerID string
	Refs    []social.PostRef
}

// Chat-list registry messages.

// ChatListAddChat inserts a chat ref; a no-op when already present.
type ChatListAddChat struct {
	ChatID    string
	CreatedBy string
	At        social.Timestamp
}

// ChatListChatUpdated bumps one existing ref's updated timestamp;
// fails with NotFound when the ref is absent.
type ChatListChatUpdated struct {
	ChatID string
	At     social.Timestamp
}

// ChatListRemoveChat removes one ref; fails with NotFound when absent.
type ChatListRemoveChat struct {
	ChatID string
}

// ChatListGet returns the registry state, or nil if never written.
type ChatListGet struct{}

// ChatListGetUpdates returns refs updated strictly after Since; it
// fails with NotFound when the registry was never written at all.
type ChatListGetUpdates struct {
	Since social.Timestamp
}

// ChatList is the reply to ChatListGet and ChatListGetUpdates.
type ChatList struct {
	OwnerID string
	Refs    []social.ChatRef
}

// Fan-out coordinator messages.

// FanoutPostUpdated upserts a pending update (last write per post id
// wins) and drains immediately when asked to.
type FanoutPostUpdated struct {
	Update    social.PostUpdate
	Immediate bool
}

// FanoutProcess drains the pending queue.
type FanoutProcess struct{}

// User-index shard messages.

// IndexAddUser records a user id in the shard; idempotent.
type IndexAddUser struct {
	UserID string
}

// IndexListUsers returns every user id in the shard.
type IndexListUsers struct{}

// Command markers. Handled commands checkpoint the actor's snapshot;
// queries never do.
func (PostInitialize) CommandMessage()        {}
func (PostSetLike) CommandMessage()           {}
func (PostRemoveLike) CommandMessage()        {}
func (PostAddComment) CommandMessage()        {}
func (PostRemoveComment) CommandMessage()     {}
func (PostSetCommentLike) CommandMessage()    {}
func (PostRemoveCommentLike) CommandMessage() {}
func (ChatInitialize) CommandMessage()        {}
func (ChatAddParticipants) CommandMessage()   {}
func (ChatAddMessage) CommandMessage()        {}
func (ChatRemoveMessage) CommandMessage()     {}
func (ChatSetMessageLike) CommandMessage()    {}
func (ChatRemoveMessageLike) CommandMessage() {}
func (UserSetName) CommandMessage()           {}
func (UserSetEmail) CommandMessage()          {}
func (UserConnect) CommandMessage()           {}
func (UserDisconnect) CommandMessage()        {}
func (TimelinePostsUpdated) CommandMessage()  {}
func (ChatListAddChat) CommandMessage()       {}
func (ChatListChatUpdated) CommandMessage()   {}
func (ChatListRemoveChat) CommandMessage()    {}
func (FanoutPostUpdated) CommandMessage()     {}
func (FanoutProcess) CommandMessage()         {}
func (IndexAddUser) CommandMessage()          {}
