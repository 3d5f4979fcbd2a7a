package social

// MaxChatMessages caps the number of messages a single chat will hold.
const MaxChatMessages = 2000

// ChatMessage is one message inside a chat.
type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	Likes     LikeSet   `json:"likes,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// ChatMessages is an ordered map from message id to message.
type ChatMessages []ChatMessage

// Find returns a pointer to the message with the given id.
func (m ChatMessages) Find(id string) *ChatMessage {
	for i := range m {
		if m[i].ID == id {
			return &m[i]
		}
	}
	return nil
}

// Remove deletes the message with the given id and reports whether it
// existed.
func (m *ChatMessages) Remove(id string) bool {
	for i := range *m {
		if (*m)[i].ID == id {
			*m = append((*m)[:i], (*m)[i+1:]...)
			return true
		}
	}
	return false
}

// Chat is the full state of one chat actor. Participants always
// include the creator.
type Chat struct {
	ID           string       `json:"id"`
	CreatedBy    string       `json:"createdBy"`
	Participants []string     `json:"participants"`
	Messages     ChatMessages `json:"messages,omitempty"`
	CreatedAt    Timestamp    `json:"createdAt"`
	UpdatedAt    Timestamp    `json:"updatedAt"`
}

// HasParticipant reports whether userID is in the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// MatchField compares a named field against a filter value. The
// participant field matches when any participant's id equals the value.
func (c *Chat) MatchField(field, value string) (bool, bool) {
	switch field {
	case "id":
		return c.ID == value, true
	case "creator":
		return c.CreatedBy == value, true
	case "participant":
		return c.HasParticipant(value), true
	default:
		return false, false
	}
}

// MatchTerm reports whether a free term occurs in any message content.
func (c *Chat) MatchTerm(term string) bool {
	for i := range c.Messages {
		if containsFold(c.Messages[i].Content, term) {
			return true
		}
	}
	return false
}
