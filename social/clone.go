package social

// Clone helpers produce deep copies for replies that leave an actor's
// message loop. The actor keeps mutating its own state afterward, so
// handed-out entities must not share backing arrays with it.

func cloneLikes(s LikeSet) LikeSet {
	if s == nil {
		return nil
	}
	out := make(LikeSet, len(s))
	copy(out, s)
	return out
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() *Post {
	out := *p
	out.Likes = cloneLikes(p.Likes)
	if p.Comments != nil {
		out.Comments = make(Comments, len(p.Comments))
		for i, c := range p.Comments {
			c.Likes = cloneLikes(c.Likes)
			out.Comments[i] = c
		}
	}
	return &out
}

// Clone returns a deep copy of the chat.
func (c *Chat) Clone() *Chat {
	out := *c
	if c.Participants != nil {
		out.Participants = append([]string(nil), c.Participants...)
	}
	if c.Messages != nil {
		out.Messages = make(ChatMessages, len(c.Messages))
		for i, m := range c.Messages {
			m.Likes = cloneLikes(m.Likes)
			out.Messages[i] = m
		}
	}
	return &out
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	out := *u
	if u.Connections != nil {
		out.Connections = make(Connections, len(u.Connections))
		for i, c := range u.Connections {
			c.Kinds = append([]ConnectionKind(nil), c.Kinds...)
			out.Connections[i] = c
		}
	}
	return &out
}
