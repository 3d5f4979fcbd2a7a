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

// postState is the persisted form of one post actor.
type postState struct {
	Initialized bool        `json:"initialized"`
	Post        social.Post `json:"post"`
}

// postActor owns one post: its content, like set, and comment tree.
// Every successful mutation reports the new (created, updated) pair to
// the author's fan-out coordinator; only initialization asks for an
// immediate drain.
type postActor struct {
	sys *runtime.System
	id  string
	cfg Config
	st  postState
}

func newPostActor(sys *runtime.System, id string, cfg Config) runtime.Behavior {
	return &postActor{sys: sys, id: id, cfg: cfg}
}

func (a *postActor) Receive(ctx context.Context, env runtime.Envelope) (interface{}, error) {
	switch m := env.Msg.(type) {
	case PostInitialize:
		return nil, a.initialize(m)
	case PostSetLike:
		return nil, a.setLike(m)
	case PostRemoveLike:
		return nil, a.removeLike(m)
	case PostAddComment:
		return a.addComment(m)
	case PostRemoveComment:
		return nil, a.removeComment(m)
	case PostSetCommentLike:
		return nil, a.setCommentLike(m)
	case PostRemoveCommentLike:
		return nil, a.removeCommentLike(m)
	case PostGet:
		return a.get(), nil
	case PostGetMatching:
		return a.getMatching(m.Query), nil
	default:
		return nil, fmt.Errorf("post %s: unexpected message %T", a.id, env.Msg)
	}
}

func (a *postActor) initialize(m PostInitialize) error {
	if a.st.Initialized {
		return social.NewError(social.CodeAlreadyExists, "post %s is already initialized", a.id)
	}

	now := social.Now()
	a.st.Post = social.Post{
		ID:        a.id,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.st.Initialized = true

	a.notifyAuthor(true)
	return nil
}

func (a *postActor) setLike(m PostSetLike) error {
	if err := a.requireInitialized(); err != nil {
		return err
	}
	a.st.Post.Likes.Set(m.UserID, m.Kind)
	a.touch()
	return nil
}

func (a *postActor) removeLike(m PostRemoveLike) error {
	if err := a.requireInitialized(); err != nil {
		return err
	}
	if !a.st.Post.Likes.Remove(m.UserID) {
		return social.NewError(social.CodeNotFound, "user %s has no like on post %s", m.UserID, a.id)
	}
	a.touch()
	return nil
}

func (a *postActor) addComment(m PostAddComment) (string, error) {
	if err := a.requireInitialized(); err != nil {
		return "", err
	}
	if len(a.st.Post.Comments) >= a.cfg.MaxComments {
		return "", social.NewError(social.CodeLimitExceeded,
			"post %s already has %d comments", a.id, len(a.st.Post.Comments))
	}

	now := social.Now()
	comment := social.Comment{
		ID:        uuid.NewString(),
		ParentID:  m.ParentID,
		Content:   m.Content,
		AuthorID:  m.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.st.Post.Comments = append(a.st.Post.Comments, comment)
	a.touch()
	return comment.ID, nil
}

func (a *postActor) removeComment(m PostRemoveComment) error {
	if err := a.requireInitialized(); err != nil {
		return err
	}
	if a.st.Post.Comments.RemoveTree(m.CommentID) == 0 {
		return social.NewError(social.CodeNotFound, "comment %s not found on post %s", m.CommentID, a.id)
	}
	a.touch()
	return nil
}

func (a *postActor) setCommentLike(m PostSetCommentLike) error {
	if err := a.requireInitialized(); err != nil {
		return err
	}
	comment := a.st.Post.Comments.Find(m.CommentID)
	if comment == nil {
		return social.NewError(social.CodeNotFound, "comment %s not found on post %s", m.CommentID, a.id)
	}
	comment.Likes.Set(m.UserID, m.Kind)
	comment.UpdatedAt = social.Now()
	a.touch()
	return nil
}

func (a *postActor) removeCommentLike(m PostRemoveCommentLike) error {
	if err := a.requireInitialized(); err != nil {
		return err
	}
	comment := a.st.Post.Comments.Find(m.CommentID)
	if comment == nil {
		return social.NewError(social.CodeNotFound, "comment %s not found on post %s", m.CommentID, a.id)
	}
	if !comment.Likes.Remove(m.UserID) {
		return social.NewError(social.CodeNotFound,
			"user %s has no like on comment %s", m.UserID, m.CommentID)
	}
	comment.UpdatedAt = social.Now()
	a.touch()
	return nil
}

func (a *postActor) get() *social.Post {
	if !a.st.Initialized {
		return nil
	}
	return a.st.Post.Clone()
}

func (a *postActor) getMatching(q string) *social.Post {
	if !a.st.Initialized {
		return nil
	}
	if !query.Match(q, &a.st.Post) {
		return nil
	}
	return a.st.Post.Clone()
}

func (a *postActor) requireInitialized() error {
	if !a.st.Initialized {
		return social.NewError(social.CodeNotFound, "post %s is not initialized", a.id)
	}
	return nil
}

// touch bumps updatedAt and queues a deferred fan-out update.
func (a *postActor) touch() {
	a.st.Post.UpdatedAt = social.Now()
	a.notifyAuthor(false)
}

func (a *postActor) notifyAuthor(immediate bool) {
	tell(a.sys, FanoutAddress(a.st.Post.AuthorID), FanoutPostUpdated{
		Update: social.PostUpdate{
			PostID:    a.id,
			CreatedAt: a.st.Post.CreatedAt,
			UpdatedAt: a.st.Post.UpdatedAt,
		},
		Immediate: immediate,
	})
}

func (a *postActor) MarshalSnapshot() ([]byte, error) {
	return snapshot.Encode(&a.st)
}

func (a *postActor) RestoreSnapshot(data []byte) error {
	return snapshot.Decode(data, &a.st)
}
