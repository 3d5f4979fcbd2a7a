package social

// LikeKind is an opaque reaction label ("like", "love", ...). The model
// does not interpret it beyond last-write-wins per user.
type LikeKind string

// Like is one user's reaction to a post, comment, or chat message.
type Like struct {
	UserID string   `json:"userId"`
	Kind   LikeKind `json:"kind"`
}

// LikeSet is an ordered map from user id to like kind, kept as a slice
// so snapshots preserve insertion order. At most one entry per user;
// Set overwrites in place (last write wins).
type LikeSet []Like

// Get returns the like kind recorded for userID.
func (s LikeSet) Get(userID string) (LikeKind, bool) {
	for _, l := range s {
		if l.UserID == userID {
			return l.Kind, true
		}
	}
	return "", false
}

// Set upserts the like for userID.
func (s *LikeSet) Set(userID string, kind LikeKind) {
	for i := range *s {
		if (*s)[i].UserID == userID {
			(*s)[i].Kind = kind
			return
		}
	}
	*s = append(*s, Like{UserID: userID, Kind: kind})
}

// Remove deletes userID's like and reports whether one existed.
func (s *LikeSet) Remove(userID string) bool {
	for i := range *s {
		if (*s)[i].UserID == userID {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}
