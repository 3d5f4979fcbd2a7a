package social

// RefContext tags a timeline entry with the relationship that caused it
// to appear on a viewer's feed. The author's own feed uses
// RefContextNone.
type RefContext string

const (
	RefContextNone      RefContext = "none"
	RefContextFriend    RefContext = RefContext(ConnectionFriend)
	RefContextFollower  RefContext = RefContext(ConnectionFollower)
	RefContextFollowing RefContext = RefContext(ConnectionFollowing)
)

// PostRef is a lightweight pointer to a post, stored in timeline
// registries instead of the full entity.
type PostRef struct {
	PostID    string     `json:"postId"`
	AuthorID  string     `json:"authorId"`
	Context   RefContext `json:"context,omitempty"`
	CreatedAt Timestamp  `json:"createdAt"`
	UpdatedAt Timestamp  `json:"updatedAt"`
}

// ChatRef is a lightweight pointer to a chat, stored in chat-list
// registries.
type ChatRef struct {
	ChatID    string    `json:"chatId"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// PostUpdate is one entry in an author's pending fan-out queue: the
// latest known (created, updated) pair for a post.
type PostUpdate struct {
	PostID    string    `json:"postId"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}
