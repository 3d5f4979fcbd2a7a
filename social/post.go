package social

import "strings"

// MaxComments caps the number of comments a single post will accept.
const MaxComments = 2000

// Comment is one comment on a post. ParentID is empty for top-level
// comments; it is recorded as given and never validated against the
// existing comment set.
type Comment struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId,omitempty"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	Likes     LikeSet   `json:"likes,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// Comments is an ordered map from comment id to comment.
type Comments []Comment

// Find returns a pointer to the comment with the given id.
func (c Comments) Find(id string) *Comment {
	for i := range c {
		if c[i].ID == id {
			return &c[i]
		}
	}
	return nil
}

// RemoveTree deletes the comment with the given id together with every
// comment whose parent is that id. Only direct children go; deeper
// descendants stay behind with a dangling parent reference.
func (c *Comments) RemoveTree(id string) int {
	kept := (*c)[:0]
	removed := 0
	for _, cm := range *c {
		if cm.ID == id || cm.ParentID == id {
			removed++
			continue
		}
		kept = append(kept, cm)
	}
	*c = kept
	return removed
}

// Post is the full state of one post actor.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	Likes     LikeSet   `json:"likes,omitempty"`
	Comments  Comments  `json:"comments,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// MatchField compares a named field against a filter value. Identifier
// fields compare exact; content compares case-insensitive substring.
func (p *Post) MatchField(field, value string) (bool, bool) {
	switch field {
	case "id":
		return p.ID == value, true
	case "author":
		return p.AuthorID == value, true
	case "content":
		return containsFold(p.Content, value), true
	default:
		return false, false
	}
}

// MatchTerm reports whether a free term occurs in the post's content or
// in any comment's content.
func (p *Post) MatchTerm(term string) bool {
	if containsFold(p.Content, term) {
		return true
	}
	for i := range p.Comments {
		if containsFold(p.Comments[i].Content, term) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
