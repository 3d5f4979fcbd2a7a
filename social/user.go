package social

import "regexp"

// ConnectionKind labels one direction of a user-to-user relation.
type ConnectionKind string

const (
	ConnectionFriend    ConnectionKind = "friend"
	ConnectionFollower  ConnectionKind = "follower"
	ConnectionFollowing ConnectionKind = "following"
)

// Opposite returns the kind the other side of the relation records:
// friendship is symmetric, follower and following mirror each other.
func (k ConnectionKind) Opposite() ConnectionKind {
	switch k {
	case ConnectionFollower:
		return ConnectionFollowing
	case ConnectionFollowing:
		return ConnectionFollower
	default:
		return k
	}
}

// Valid reports whether k is one of the known kinds.
func (k ConnectionKind) Valid() bool {
	switch k {
	case ConnectionFriend, ConnectionFollower, ConnectionFollowing:
		return true
	default:
		return false
	}
}

// Connection records all kinds a user holds toward one other user.
type Connection struct {
	UserID    string           `json:"userId"`
	Kinds     []ConnectionKind `json:"kinds"`
	CreatedAt Timestamp        `json:"createdAt"`
	UpdatedAt Timestamp        `json:"updatedAt"`
}

// HasKind reports whether the connection already carries kind.
func (c *Connection) HasKind(kind ConnectionKind) bool {
	for _, k := range c.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// RemoveKind drops one kind and reports whether it was present.
func (c *Connection) RemoveKind(kind ConnectionKind) bool {
	for i, k := range c.Kinds {
		if k == kind {
			c.Kinds = append(c.Kinds[:i], c.Kinds[i+1:]...)
			return true
		}
	}
	return false
}

// Connections is an ordered map from connected-user id to connection.
type Connections []Connection

// Find returns a pointer to the connection with userID.
func (c Connections) Find(userID string) *Connection {
	for i := range c {
		if c[i].UserID == userID {
			return &c[i]
		}
	}
	return nil
}

// Remove deletes the whole connection record for userID.
func (c *Connections) Remove(userID string) bool {
	for i := range *c {
		if (*c)[i].UserID == userID {
			*c = append((*c)[:i], (*c)[i+1:]...)
			return true
		}
	}
	return false
}

// emailPattern is deliberately narrow: local@domain.tld with a
// mandatory dot in the domain part.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}$`)

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// User is the full state of one user actor.
type User struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Email       string      `json:"email,omitempty"`
	Connections Connections `json:"connections,omitempty"`
	CreatedAt   Timestamp   `json:"createdAt"`
	UpdatedAt   Timestamp   `json:"updatedAt"`
}

// MatchField compares a named field against a filter value. The id is
// exact; name and email are case-insensitive substring.
func (u *User) MatchField(field, value string) (bool, bool) {
	switch field {
	case "id":
		return u.ID == value, true
	case "name":
		return containsFold(u.Name, value), true
	case "email":
		return containsFold(u.Email, value), true
	default:
		return false, false
	}
}

// MatchTerm reports whether a free term occurs in the name or email.
func (u *User) MatchTerm(term string) bool {
	return containsFold(u.Name, term) || containsFold(u.Email, term)
}
