package actors_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialmesh/socialmesh/actors"
	"github.com/socialmesh/socialmesh/runtime"
	"github.com/socialmesh/socialmesh/snapshot"
	"github.com/socialmesh/socialmesh/social"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func newSystem(t *testing.T, cfg actors.Config) *runtime.System {
	t.Helper()
	sys := runtime.NewSystem(snapshot.NewMemoryStore(),
		runtime.Options{MailboxSize: 256, ProcessTimeout: 5 * time.Second}, nil)
	actors.Register(sys, cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = sys.Shutdown(ctx)
	})
	return sys
}

func getPost(sys *runtime.System, id string) *social.Post {
	reply, err := sys.Ask(context.Background(), actors.PostAddress(id), actors.PostGet{})
	if err != nil {
		return nil
	}
	post, _ := reply.(*social.Post)
	return post
}

func getChat(sys *runtime.System, id string) *social.Chat {
	reply, err := sys.Ask(context.Background(), actors.ChatAddress(id), actors.ChatGet{})
	if err != nil {
		return nil
	}
	chat, _ := reply.(*social.Chat)
	return chat
}

func getUser(sys *runtime.System, id string) *social.User {
	reply, err := sys.Ask(context.Background(), actors.UserAddress(id), actors.UserGet{})
	if err != nil {
		return nil
	}
	user, _ := reply.(*social.User)
	return user
}

func timelineRefs(sys *runtime.System, userID string) []social.PostRef {
	reply, err := sys.Ask(context.Background(), actors.TimelineAddress(userID), actors.TimelineGet{})
	if err != nil {
		return nil
	}
	tl, _ := reply.(*actors.Timeline)
	if tl == nil {
		return nil
	}
	return tl.Refs
}

func chatListRefs(sys *runtime.System, userID string) []social.ChatRef {
	reply, err := sys.Ask(context.Background(), actors.ChatListAddress(userID), actors.ChatListGet{})
	if err != nil {
		return nil
	}
	cl, _ := reply.(*actors.ChatList)
	if cl == nil {
		return nil
	}
	return cl.Refs
}

func TestPostLifecycle(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()
	addr := actors.PostAddress("p1")

	// Queries are legal before initialization and report absence.
	require.Nil(t, getPost(sys, "p1"))

	// Mutations other than initialize require an initialized post.
	_, err := sys.Ask(ctx, addr, actors.PostSetLike{UserID: "bob", Kind: "like"})
	require.True(t, social.IsCode(err, social.CodeNotFound))

	_, err = sys.Ask(ctx, addr, actors.PostInitialize{AuthorID: "alice", Content: "hello"})
	require.NoError(t, err)

	_, err = sys.Ask(ctx, addr, actors.PostInitialize{AuthorID: "alice", Content: "again"})
	require.True(t, social.IsCode(err, social.CodeAlreadyExists))

	post := getPost(sys, "p1")
	require.NotNil(t, post)
	assert.Equal(t, "alice", post.AuthorID)
	assert.Equal(t, "hello", post.Content)
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)

	_, err = sys.Ask(ctx, addr, actors.PostSetLike{UserID: "bob", Kind: "like"})
	require.NoError(t, err)
	_, err = sys.Ask(ctx, addr, actors.PostSetLike{UserID: "bob", Kind: "love"})
	require.NoError(t, err)

	post = getPost(sys, "p1")
	require.Len(t, post.Likes, 1)
	kind, ok := post.Likes.Get("bob")
	assert.True(t, ok)
	assert.Equal(t, social.LikeKind("love"), kind)
	assert.True(t, post.UpdatedAt.After(post.CreatedAt))

	_, err = sys.Ask(ctx, addr, actors.PostRemoveLike{UserID: "bob"})
	require.NoError(t, err)
	_, err = sys.Ask(ctx, addr, actors.PostRemoveLike{UserID: "bob"})
	require.True(t, social.IsCode(err, social.CodeNotFound))
}

func TestPostComments(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()
	addr := actors.PostAddress("p1")

	_, err := sys.Ask(ctx, addr, actors.PostInitialize{AuthorID: "alice", Content: "hello"})
	require.NoError(t, err)

	reply, err := sys.Ask(ctx, addr, actors.PostAddComment{AuthorID: "bob", Content: "root"})
	require.NoError(t, err)
	rootID := reply.(string)
	require.NotEmpty(t, rootID)

	reply, err = sys.Ask(ctx, addr, actors.PostAddComment{AuthorID: "carol", Content: "child", ParentID: rootID})
	require.NoError(t, err)
	childID := reply.(string)

	reply, err = sys.Ask(ctx, addr, actors.PostAddComment{AuthorID: "dave", Content: "grandchild", ParentID: childID})
	require.NoError(t, err)
	grandchildID := reply.(string)

	_, err = sys.Ask(ctx, addr, actors.PostSetCommentLike{CommentID: rootID, UserID: "alice", Kind: "like"})
	require.NoError(t, err)

	// Removing the root takes its direct child with it; the
	// grandchild stays behind with a dangling parent.
	_, err = sys.Ask(ctx, addr, actors.PostRemoveComment{CommentID: rootID})
	require.NoError(t, err)

	post := getPost(sys, "p1")
	require.Len(t, post.Comments, 1)
	assert.Equal(t, grandchildID, post.Comments[0].ID)

	_, err = sys.Ask(ctx, addr, actors.PostRemoveComment{CommentID: rootID})
	require.True(t, social.IsCode(err, social.CodeNotFound))
	_, err = sys.Ask(ctx, addr, actors.PostSetCommentLike{CommentID: childID, UserID: "x", Kind: "like"})
	require.True(t, social.IsCode(err, social.CodeNotFound))
}

func TestPostCommentLimit(t *testing.T) {
	cfg := actors.DefaultConfig()
	cfg.MaxComments = 3
	sys := newSystem(t, cfg)
	ctx := context.Background()
	addr := actors.PostAddress("p1")

	_, err := sys.Ask(ctx, addr, actors.PostInitialize{AuthorID: "alice", Content: "hello"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := sys.Ask(ctx, addr, actors.PostAddComment{AuthorID: "bob", Content: "c"})
		require.NoError(t, err)
	}
	before := getPost(sys, "p1")

	_, err = sys.Ask(ctx, addr, actors.PostAddComment{AuthorID: "bob", Content: "over"})
	require.True(t, social.IsCode(err, social.CodeLimitExceeded))

	// A rejected command leaves the state untouched.
	after := getPost(sys, "p1")
	assert.Len(t, after.Comments, 3)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestPostGetMatching(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()
	addr := actors.PostAddress("p1")

	_, err := sys.Ask(ctx, addr, actors.PostInitialize{AuthorID: "alice", Content: "Go concurrency patterns"})
	require.NoError(t, err)
	_, err = sys.Ask(ctx, addr, actors.PostAddComment{AuthorID: "bob", Content: "channels beat mutexes"})
	require.NoError(t, err)

	match := func(q string) *social.Post {
		reply, err := sys.Ask(ctx, addr, actors.PostGetMatching{Query: q})
		require.NoError(t, err)
		post, _ := reply.(*social.Post)
		return post
	}

	assert.NotNil(t, match("author:alice"))
	assert.Nil(t, match("author:ali"), "identifier filters are exact")
	assert.NotNil(t, match("content:concurrency"))
	assert.NotNil(t, match("channels"), "free terms search comments too")
	assert.NotNil(t, match("author:alice mutexes"))
	assert.Nil(t, match("author:alice dragons"))
	assert.Nil(t, match("author:bob"))
}

func TestUserMaterializesOnFirstMutation(t *testing.T) {
	cfg := actors.DefaultConfig()
	cfg.IndexShards = 4
	sys := newSystem(t, cfg)
	ctx := context.Background()

	require.Nil(t, getUser(sys, "alice"))

	// A rejected mutation does not materialize the user.
	_, err := sys.Ask(ctx, actors.UserAddress("alice"), actors.UserSetEmail{Email: "not-an-email"})
	require.True(t, social.IsCode(err, social.CodeInvalidInput))
	require.Nil(t, getUser(sys, "alice"))

	_, err = sys.Ask(ctx, actors.UserAddress("alice"), actors.UserSetName{Name: "Alice"})
	require.NoError(t, err)
	_, err = sys.Ask(ctx, actors.UserAddress("alice"), actors.UserSetEmail{Email: "alice@example.com"})
	require.NoError(t, err)

	user := getUser(sys, "alice")
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)

	// Materialization registers the id with its index shard.
	shard := actors.IndexShardFor("alice", cfg.IndexShards)
	assert.Eventually(t, func() bool {
		reply, err := sys.Ask(ctx, shard, actors.IndexListUsers{})
		if err != nil {
			return false
		}
		ids, _ := reply.([]string)
		for _, id := range ids {
			if id == "alice" {
				return true
			}
		}
		return false
	}, waitFor, tick)
}

func TestUserConnectSymmetry(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()

	_, err := sys.Ask(ctx, actors.UserAddress("alice"), actors.UserConnect{TargetID: "bob", Kind: social.ConnectionFollower})
	require.NoError(t, err)

	alice := getUser(sys, "alice")
	require.NotNil(t, alice)
	conn := alice.Connections.Find("bob")
	require.NotNil(t, conn)
	assert.True(t, conn.HasKind(social.ConnectionFollower))

	// The reciprocal trigger gives bob the mirrored kind.
	require.Eventually(t, func() bool {
		bob := getUser(sys, "bob")
		if bob == nil {
			return false
		}
		c := bob.Connections.Find("alice")
		return c != nil && c.HasKind(social.ConnectionFollowing)
	}, waitFor, tick)

	// Repeating the connect changes nothing on either side.
	_, err = sys.Ask(ctx, actors.UserAddress("alice"), actors.UserConnect{TargetID: "bob", Kind: social.ConnectionFollower})
	require.NoError(t, err)
	alice = getUser(sys, "alice")
	require.Len(t, alice.Connections, 1)
	require.Len(t, alice.Connections[0].Kinds, 1)

	// A second kind accumulates on the same connection record.
	_, err = sys.Ask(ctx, actors.UserAddress("alice"), actors.UserConnect{TargetID: "bob", Kind: social.ConnectionFriend})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		bob := getUser(sys, "bob")
		c := bob.Connections.Find("alice")
		return c != nil && c.HasKind(social.ConnectionFriend) && c.HasKind(social.ConnectionFollowing)
	}, waitFor, tick)
}

func TestUserDisconnectRemovesBothSides(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()

	_, err := sys.Ask(ctx, actors.UserAddress("alice"), actors.UserConnect{TargetID: "bob", Kind: social.ConnectionFriend})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		bob := getUser(sys, "bob")
		return bob != nil && bob.Connections.Find("alice") != nil
	}, waitFor, tick)

	_, err = sys.Ask(ctx, actors.UserAddress("alice"), actors.UserDisconnect{TargetID: "bob", Kind: social.ConnectionFriend})
	require.NoError(t, err)

	// The last kind takes the whole record with it, on both sides.
	alice := getUser(sys, "alice")
	assert.Nil(t, alice.Connections.Find("bob"))
	require.Eventually(t, func() bool {
		bob := getUser(sys, "bob")
		return bob != nil && bob.Connections.Find("alice") == nil
	}, waitFor, tick)

	// Disconnecting what is not there is a quiet no-op.
	_, err = sys.Ask(ctx, actors.UserAddress("alice"), actors.UserDisconnect{TargetID: "bob", Kind: social.ConnectionFriend})
	require.NoError(t, err)
}

func TestUserConnectEdgeCases(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()

	// Self-connections are ignored without materializing anything.
	_, err := sys.Ask(ctx, actors.UserAddress("alice"), actors.UserConnect{TargetID: "alice", Kind: social.ConnectionFriend})
	require.NoError(t, err)
	require.Nil(t, getUser(sys, "alice"))

	_, err = sys.Ask(ctx, actors.UserAddress("alice"), actors.UserConnect{TargetID: "bob", Kind: "enemy"})
	require.True(t, social.IsCode(err, social.CodeInvalidInput))
}

func TestChatInitialize(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()
	addr := actors.ChatAddress("c1")

	require.Nil(t, getChat(sys, "c1"))

	_, err := sys.Ask(ctx, addr, actors.ChatInitialize{ParticipantIDs: []string{"bob"}})
	require.True(t, social.IsCode(err, social.CodeInvalidInput), "creator is required")

	_, err = sys.Ask(ctx, addr, actors.ChatInitialize{CreatedBy: "alice", ParticipantIDs: []string{"alice"}})
	require.True(t, social.IsCode(err, social.CodeInsufficientParticipants))

	_, err = sys.Ask(ctx, addr, actors.ChatInitialize{
		CreatedBy:      "alice",
		ParticipantIDs: []string{"bob", "bob", "alice", "carol"},
	})
	require.NoError(t, err)

	chat := getChat(sys, "c1")
	require.NotNil(t, chat)
	assert.Equal(t, "alice", chat.CreatedBy)
	assert.Equal(t, []string{"alice", "bob", "carol"}, chat.Participants)

	_, err = sys.Ask(ctx, addr, actors.ChatInitialize{CreatedBy: "alice", ParticipantIDs: []string{"bob"}})
	require.True(t, social.IsCode(err, social.CodeAlreadyExists))

	// Every participant's chat list picks up the new chat.
	for _, p := range []string{"alice", "bob", "carol"} {
		p := p
		require.Eventually(t, func() bool {
			refs := chatListRefs(sys, p)
			return len(refs) == 1 && refs[0].ChatID == "c1" && refs[0].CreatedBy == "alice"
		}, waitFor, tick, "chat list of %s", p)
	}
}

func TestChatAddParticipants(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()
	addr := actors.ChatAddress("c1")

	_, err := sys.Ask(ctx, addr, actors.ChatInitialize{CreatedBy: "alice", ParticipantIDs: []string{"bob"}})
	require.NoError(t, err)

	_, err = sys.Ask(ctx, addr, actors.ChatAddParticipants{UserIDs: []string{"alice", "bob"}})
	require.True(t, social.IsCode(err, social.CodeNoNewParticipants))

	_, err = sys.Ask(ctx, addr, actors.ChatAddParticipants{UserIDs: []string{"bob", "carol"}})
	require.NoError(t, err)

	chat := getChat(sys, "c1")
	assert.Equal(t, []string{"alice", "bob", "carol"}, chat.Participants)

	require.Eventually(t, func() bool {
		refs := chatListRefs(sys, "carol")
		return len(refs) == 1 && refs[0].ChatID == "c1"
	}, waitFor, tick)
}

func TestChatMessages(t *testing.T) {
	cfg := actors.DefaultConfig()
	cfg.MaxChatMessages = 2
	sys := newSystem(t, cfg)
	ctx := context.Background()
	addr := actors.ChatAddress("c1")

	_, err := sys.Ask(ctx, addr, actors.ChatInitialize{CreatedBy: "alice", ParticipantIDs: []string{"bob"}})
	require.NoError(t, err)

	reply, err := sys.Ask(ctx, addr, actors.ChatAddMessage{AuthorID: "alice", Content: "hi"})
	require.NoError(t, err)
	msgID := reply.(string)
	require.NotEmpty(t, msgID)

	_, err = sys.Ask(ctx, addr, actors.ChatAddMessage{AuthorID: "bob", Content: "hey"})
	require.NoError(t, err)

	_, err = sys.Ask(ctx, addr, actors.ChatAddMessage{AuthorID: "alice", Content: "over"})
	require.True(t, social.IsCode(err, social.CodeLimitExceeded))
	require.Len(t, getChat(sys, "c1").Messages, 2)

	_, err = sys.Ask(ctx, addr, actors.ChatSetMessageLike{MessageID: msgID, UserID: "bob", Kind: "like"})
	require.NoError(t, err)
	chat := getChat(sys, "c1")
	kind, ok := chat.Messages.Find(msgID).Likes.Get("bob")
	assert.True(t, ok)
	assert.Equal(t, social.LikeKind("like"), kind)

	_, err = sys.Ask(ctx, addr, actors.ChatRemoveMessageLike{MessageID: msgID, UserID: "carol"})
	require.True(t, social.IsCode(err, social.CodeNotFound))

	_, err = sys.Ask(ctx, addr, actors.ChatRemoveMessage{MessageID: msgID})
	require.NoError(t, err)
	_, err = sys.Ask(ctx, addr, actors.ChatRemoveMessage{MessageID: msgID})
	require.True(t, social.IsCode(err, social.CodeNotFound))
}

func TestChatGetMatching(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()
	addr := actors.ChatAddress("c1")

	_, err := sys.Ask(ctx, addr, actors.ChatInitialize{CreatedBy: "alice", ParticipantIDs: []string{"bob"}})
	require.NoError(t, err)
	_, err = sys.Ask(ctx, addr, actors.ChatAddMessage{AuthorID: "bob", Content: "release planning"})
	require.NoError(t, err)

	match := func(q string) *social.Chat {
		reply, err := sys.Ask(ctx, addr, actors.ChatGetMatching{Query: q})
		require.NoError(t, err)
		chat, _ := reply.(*social.Chat)
		return chat
	}

	assert.NotNil(t, match("creator:alice"))
	assert.NotNil(t, match("participant:bob"))
	assert.Nil(t, match("participant:carol"))
	assert.NotNil(t, match("planning"))
	assert.Nil(t, match("offtopic"))
}

func TestTimelineRegistry(t *testing.T) {
	cfg := actors.DefaultConfig()
	cfg.RegistryCapacity = 3
	sys := newSystem(t, cfg)
	ctx := context.Background()
	addr := actors.TimelineAddress("alice")

	// Registry state before any write: Get reports absence, updates
	// report NotFound.
	require.Nil(t, timelineRefs(sys, "alice"))
	_, err := sys.Ask(ctx, addr, actors.TimelineGetUpdates{Since: ""})
	require.True(t, social.IsCode(err, social.CodeNotFound))

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ref := func(id string, minutes int) social.PostRef {
		at := social.At(base.Add(time.Duration(minutes) * time.Minute))
		return social.PostRef{PostID: id, AuthorID: "alice", CreatedAt: at, UpdatedAt: at}
	}

	_, err = sys.Ask(ctx, addr, actors.TimelinePostsUpdated{Refs: []social.PostRef{
		ref("p1", 1), ref("p2", 2), ref("p3", 3),
	}})
	require.NoError(t, err)

	refs := timelineRefs(sys, "alice")
	require.Len(t, refs, 3)
	assert.Equal(t, []string{"p3", "p2", "p1"}, []string{refs[0].PostID, refs[1].PostID, refs[2].PostID})

	// An updated ref replaces its entry and reorders; the capacity
	// truncates the oldest tail.
	_, err = sys.Ask(ctx, addr, actors.TimelinePostsUpdated{Refs: []social.PostRef{
		ref("p1", 10), ref("p4", 5),
	}})
	require.NoError(t, err)

	refs = timelineRefs(sys, "alice")
	require.Len(t, refs, 3)
	assert.Equal(t, []string{"p1", "p4", "p3"}, []string{refs[0].PostID, refs[1].PostID, refs[2].PostID})

	// Updates are strictly-after: a cursor equal to a ref's updatedAt
	// excludes that ref.
	reply, err := sys.Ask(ctx, addr, actors.TimelineGetUpdates{Since: refs[1].UpdatedAt})
	require.NoError(t, err)
	tl := reply.(*actors.Timeline)
	require.Len(t, tl.Refs, 1)
	assert.Equal(t, "p1", tl.Refs[0].PostID)

	// No news is an empty result, not an error.
	reply, err = sys.Ask(ctx, addr, actors.TimelineGetUpdates{Since: refs[0].UpdatedAt})
	require.NoError(t, err)
	tl = reply.(*actors.Timeline)
	assert.NotNil(t, tl.Refs)
	assert.Empty(t, tl.Refs)
}

func TestChatListRegistry(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()
	addr := actors.ChatListAddress("alice")

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	at := func(minutes int) social.Timestamp {
		return social.At(base.Add(time.Duration(minutes) * time.Minute))
	}

	_, err := sys.Ask(ctx, addr, actors.ChatListChatUpdated{ChatID: "c1", At: at(1)})
	require.True(t, social.IsCode(err, social.CodeNotFound), "bump of an absent ref fails")

	_, err = sys.Ask(ctx, addr, actors.ChatListAddChat{ChatID: "c1", CreatedBy: "alice", At: at(1)})
	require.NoError(t, err)
	_, err = sys.Ask(ctx, addr, actors.ChatListAddChat{ChatID: "c2", CreatedBy: "bob", At: at(2)})
	require.NoError(t, err)

	// Repeated add is a no-op, not a failure.
	_, err = sys.Ask(ctx, addr, actors.ChatListAddChat{ChatID: "c1", CreatedBy: "alice", At: at(9)})
	require.NoError(t, err)

	refs := chatListRefs(sys, "alice")
	require.Len(t, refs, 2)
	assert.Equal(t, "c2", refs[0].ChatID)
	assert.Equal(t, at(1), refs[1].UpdatedAt, "repeated add must not bump the ref")

	_, err = sys.Ask(ctx, addr, actors.ChatListChatUpdated{ChatID: "c1", At: at(5)})
	require.NoError(t, err)
	refs = chatListRefs(sys, "alice")
	assert.Equal(t, "c1", refs[0].ChatID, "bumped ref moves to the front")

	_, err = sys.Ask(ctx, addr, actors.ChatListRemoveChat{ChatID: "c2"})
	require.NoError(t, err)
	_, err = sys.Ask(ctx, addr, actors.ChatListRemoveChat{ChatID: "c2"})
	require.True(t, social.IsCode(err, social.CodeNotFound))
	require.Len(t, chatListRefs(sys, "alice"), 1)
}

func TestFanoutDistributesToConnections(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()

	// The author and a follower relationship must exist before the
	// post shows up anywhere.
	_, err := sys.Ask(ctx, actors.UserAddress("alice"), actors.UserSetName{Name: "Alice"})
	require.NoError(t, err)
	_, err = sys.Ask(ctx, actors.UserAddress("alice"), actors.UserConnect{TargetID: "bob", Kind: social.ConnectionFollower})
	require.NoError(t, err)

	_, err = sys.Ask(ctx, actors.PostAddress("p1"), actors.PostInitialize{AuthorID: "alice", Content: "hello"})
	require.NoError(t, err)

	// Initialization drains immediately: the author's own timeline
	// and the follower's timeline both receive the ref.
	require.Eventually(t, func() bool {
		refs := timelineRefs(sys, "alice")
		return len(refs) == 1 && refs[0].PostID == "p1" && refs[0].Context == social.RefContextNone
	}, waitFor, tick)
	require.Eventually(t, func() bool {
		refs := timelineRefs(sys, "bob")
		return len(refs) == 1 && refs[0].PostID == "p1" &&
			refs[0].Context == social.RefContextFollower && refs[0].AuthorID == "alice"
	}, waitFor, tick)

	// Later mutations queue quietly until a drain is asked for.
	firstSeen := timelineRefs(sys, "bob")[0].UpdatedAt
	_, err = sys.Ask(ctx, actors.PostAddress("p1"), actors.PostSetLike{UserID: "bob", Kind: "like"})
	require.NoError(t, err)

	_, err = sys.Ask(ctx, actors.FanoutAddress("alice"), actors.FanoutProcess{})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		refs := timelineRefs(sys, "bob")
		return len(refs) == 1 && refs[0].UpdatedAt.After(firstSeen)
	}, waitFor, tick)
}

func TestFanoutDropsBatchForMissingAuthor(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()

	now := social.Now()
	_, err := sys.Ask(ctx, actors.FanoutAddress("ghost"), actors.FanoutPostUpdated{
		Update:    social.PostUpdate{PostID: "p1", CreatedAt: now, UpdatedAt: now},
		Immediate: true,
	})
	require.NoError(t, err, "a missing author drops the batch without failing")

	// Nothing was distributed and nothing is retried later.
	require.Nil(t, timelineRefs(sys, "ghost"))
	_, err = sys.Ask(ctx, actors.UserAddress("ghost"), actors.UserSetName{Name: "Ghost"})
	require.NoError(t, err)
	_, err = sys.Ask(ctx, actors.FanoutAddress("ghost"), actors.FanoutProcess{})
	require.NoError(t, err)
	require.Nil(t, timelineRefs(sys, "ghost"))
}

func TestFanoutPendingLastWriteWins(t *testing.T) {
	sys := newSystem(t, actors.DefaultConfig())
	ctx := context.Background()

	_, err := sys.Ask(ctx, actors.UserAddress("alice"), actors.UserSetName{Name: "Alice"})
	require.NoError(t, err)

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	created := social.At(base)
	for i := 1; i <= 3; i++ {
		_, err = sys.Ask(ctx, actors.FanoutAddress("alice"), actors.FanoutPostUpdated{
			Update: social.PostUpdate{
				PostID:    "p1",
				CreatedAt: created,
				UpdatedAt: social.At(base.Add(time.Duration(i) * time.Minute)),
			},
		})
		require.NoError(t, err)
	}

	_, err = sys.Ask(ctx, actors.FanoutAddress("alice"), actors.FanoutProcess{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		refs := timelineRefs(sys, "alice")
		return len(refs) == 1 && refs[0].UpdatedAt == social.At(base.Add(3*time.Minute))
	}, waitFor, tick)
}

func TestIndexShards(t *testing.T) {
	cfg := actors.DefaultConfig()
	cfg.IndexShards = 4
	sys := newSystem(t, cfg)
	ctx := context.Background()

	shard := actors.IndexShardFor("alice", cfg.IndexShards)
	assert.Equal(t, shard, actors.IndexShardFor("alice", cfg.IndexShards), "shard choice is deterministic")

	for i := 0; i < 2; i++ {
		_, err := sys.Ask(ctx, shard, actors.IndexAddUser{UserID: "alice"})
		require.NoError(t, err)
	}
	reply, err := sys.Ask(ctx, shard, actors.IndexListUsers{})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, reply.([]string))

	assert.Len(t, actors.IndexAddresses(cfg.IndexShards), 4)
}
