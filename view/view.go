// Package view contains the stateless read-side aggregators. They
// resolve registry refs into full entities by querying many actors
// concurrently in bounded batches, filter through the query matcher,
// and long-poll the updates endpoints.
package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/socialmesh/socialmesh/actors"
	"github.com/socialmesh/socialmesh/poll"
	"github.com/socialmesh/socialmesh/query"
	"github.com/socialmesh/socialmesh/runtime"
	"github.com/socialmesh/socialmesh/social"
)

// Aggregator materializes registry views against a live actor system.
type Aggregator struct {
	sys       *runtime.System
	batchSize int
	shards    int
	pollOpts  poll.Options
	log       *zap.Logger
}

// Options configures an Aggregator.
type Options struct {
	// BatchSize bounds concurrent entity queries per round.
	BatchSize int

	// IndexShards must match the actor configuration.
	IndexShards int

	// Poll is the default long-poll budget.
	Poll poll.Options
}

// NewAggregator builds an Aggregator.
func NewAggregator(sys *runtime.System, opts Options, log *zap.Logger) *Aggregator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.IndexShards <= 0 {
		opts.IndexShards = actors.DefaultConfig().IndexShards
	}
	if opts.Poll.IterWait <= 0 {
		opts.Poll = poll.DefaultOptions()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		sys:       sys,
		batchSize: opts.BatchSize,
		shards:    opts.IndexShards,
		pollOpts:  opts.Poll,
		log:       log,
	}
}

// Posts resolves a user's timeline into full posts, newest first,
// keeping only those matching the query. A missing timeline yields
// (nil, false, nil).
func (a *Aggregator) Posts(ctx context.Context, userID, q string) ([]*social.Post, bool, error) {
	reply, err := a.sys.Ask(ctx, actors.TimelineAddress(userID), actors.TimelineGet{})
	if err != nil {
		return nil, false, err
	}
	timeline, _ := reply.(*actors.Timeline)
	if timeline == nil {
		return nil, false, nil
	}

	addrs := make([]runtime.Address, 0, len(timeline.Refs))
	for _, ref := range timeline.Refs {
		addrs = append(addrs, actors.PostAddress(ref.PostID))
	}

	replies, err := a.askBatched(ctx, addrs, actors.PostGetMatching{Query: q})
	if err != nil {
		return nil, false, err
	}

	posts := make([]*social.Post, 0, len(replies))
	for _, r := range replies {
		if post, ok := r.(*social.Post); ok && post != nil {
			posts = append(posts, post)
		}
	}
	return posts, true, nil
}

// Chats resolves a user's chat list into full chats, newest first,
// keeping only those matching the query.
func (a *Aggregator) Chats(ctx context.Context, userID, q string) ([]*social.Chat, bool, error) {
	reply, err := a.sys.Ask(ctx, actors.ChatListAddress(userID), actors.ChatListGet{})
	if err != nil {
		return nil, false, err
	}
	list, _ := reply.(*actors.ChatList)
	if list == nil {
		return nil, false, nil
	}

	addrs := make([]runtime.Address, 0, len(list.Refs))
	for _, ref := range list.Refs {
		addrs = append(addrs, actors.ChatAddress(ref.ChatID))
	}

	replies, err := a.askBatched(ctx, addrs, actors.ChatGetMatching{Query: q})
	if err != nil {
		return nil, false, err
	}

	chats := make([]*social.Chat, 0, len(replies))
	for _, r := range replies {
		if chat, ok := r.(*social.Chat); ok && chat != nil {
			chats = append(chats, chat)
		}
	}
	return chats, true, nil
}

// Users searches the whole directory through the sharded index.
func (a *Aggregator) Users(ctx context.Context, q string) ([]*social.User, error) {
	var ids []string
	for _, addr := range actors.IndexAddresses(a.shards) {
		reply, err := a.sys.Ask(ctx, addr, actors.IndexListUsers{})
		if err != nil {
			return nil, err
		}
		if shard, ok := reply.([]string); ok {
			ids = append(ids, shard...)
		}
	}

	addrs := make([]runtime.Address, 0, len(ids))
	for _, id := range ids {
		addrs = append(addrs, actors.UserAddress(id))
	}

	replies, err := a.askBatched(ctx, addrs, actors.UserGet{})
	if err != nil {
		return nil, err
	}

	users := make([]*social.User, 0, len(replies))
	for _, r := range replies {
		user, ok := r.(*social.User)
		if !ok || user == nil {
			continue
		}
		if q == "" || query.Match(q, user) {
			users = append(users, user)
		}
	}
	return users, nil
}

// PostUpdates long-polls a user's timeline for refs newer than since.
// The bool result distinguishes "timeline absent" from "no new items".
func (a *Aggregator) PostUpdates(ctx context.Context, userID string, since social.Timestamp, opts poll.Options) ([]social.PostRef, bool, error) {
	if opts.IterWait <= 0 {
		opts = a.pollOpts
	}
	fetch := func(ctx context.Context) ([]social.PostRef, bool, error) {
		reply, err := a.sys.Ask(ctx, actors.TimelineAddress(userID), actors.TimelineGetUpdates{Since: since})
		if err != nil {
			if social.IsCode(err, social.CodeNotFound) {
				return nil, false, nil
			}
			return nil, false, err
		}
		timeline, _ := reply.(*actors.Timeline)
		if timeline == nil {
			return nil, false, nil
		}
		return timeline.Refs, true, nil
	}
	return poll.Run(ctx, fetch, opts)
}

// ChatUpdates long-polls a user's chat list for refs newer than since.
func (a *Aggregator) ChatUpdates(ctx context.Context, userID string, since social.Timestamp, opts poll.Options) ([]social.ChatRef, bool, error) {
	if opts.IterWait <= 0 {
		opts = a.pollOpts
	}
	fetch := func(ctx context.Context) ([]social.ChatRef, bool, error) {
		reply, err := a.sys.Ask(ctx, actors.ChatListAddress(userID), actors.ChatListGetUpdates{Since: since})
		if err != nil {
			if social.IsCode(err, social.CodeNotFound) {
				return nil, false, nil
			}
			return nil, false, err
		}
		list, _ := reply.(*actors.ChatList)
		if list == nil {
			return nil, false, nil
		}
		return list.Refs, true, nil
	}
	return poll.Run(ctx, fetch, opts)
}

// askBatched queries many actors with the same message, at most
// batchSize in flight, waiting for each batch to finish before the
// next starts. Reply order follows address order.
func (a *Aggregator) askBatched(ctx context.Context, addrs []runtime.Address, msg interface{}) ([]interface{}, error) {
	replies := make([]interface{}, len(addrs))
	errs := make([]error, len(addrs))

	for start := 0; start < len(addrs); start += a.batchSize {
		end := start + a.batchSize
		if end > len(addrs) {
			end = len(addrs)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				replies[i], errs[i] = a.sys.Ask(ctx, addrs[i], msg)
			}(i)
		}
		wg.Wait()
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return replies, nil
}
