// Package actors implements the domain behaviors hosted by the
// runtime: posts, chats, users, the per-user timeline and chat-list
// registries, the per-author fan-out coordinator, and the sharded user
// index. Each kind defines a closed set of command and query messages
// and dispatches over it with a type switch.
package actors

import (
	"crypto/md5"
	"encoding/binary"
	"strconv"

	"go.uber.org/zap"

	"github.com/socialmesh/socialmesh/runtime"
	"github.com/socialmesh/socialmesh/social"
)

// Actor kinds hosted by this package.
const (
	KindPost     runtime.Kind = "post"
	KindChat     runtime.Kind = "chat"
	KindUser     runtime.Kind = "user"
	KindTimeline runtime.Kind = "timeline"
	KindChatList runtime.Kind = "chatlist"
	KindFanout   runtime.Kind = "fanout"
	KindIndex    runtime.Kind = "user-index"
)

// Config carries the tunable bounds the behaviors enforce.
type Config struct {
	// MaxComments caps comments per post.
	MaxComments int

	// MaxChatMessages caps messages per chat.
	MaxChatMessages int

	// RegistryCapacity bounds timeline and chat-list registries.
	RegistryCapacity int

	// IndexShards is the number of user-index partitions.
	IndexShards int
}

// DefaultConfig returns the production bounds.
func DefaultConfig() Config {
	return Config{
		MaxComments:      social.MaxComments,
		MaxChatMessages:  social.MaxChatMessages,
		RegistryCapacity: 500,
		IndexShards:      16,
	}
}

// Register installs factories for every actor kind on the system.
func Register(sys *runtime.System, cfg Config) {
	if cfg.MaxComments <= 0 {
		cfg.MaxComments = social.MaxComments
	}
	if cfg.MaxChatMessages <= 0 {
		cfg.MaxChatMessages = social.MaxChatMessages
	}
	if cfg.RegistryCapacity <= 0 {
		cfg.RegistryCapacity = 500
	}
	if cfg.IndexShards <= 0 {
		cfg.IndexShards = 16
	}

	sys.Register(KindPost, func(s *runtime.System, id string) runtime.Behavior {
		return newPostActor(s, id, cfg)
	})
	sys.Register(KindChat, func(s *runtime.System, id string) runtime.Behavior {
		return newChatActor(s, id, cfg)
	})
	sys.Register(KindUser, func(s *runtime.System, id string) runtime.Behavior {
		return newUserActor(s, id, cfg)
	})
	sys.Register(KindTimeline, func(s *runtime.System, id string) runtime.Behavior {
		return newTimelineActor(s, id, cfg)
	})
	sys.Register(KindChatList, func(s *runtime.System, id string) runtime.Behavior {
		return newChatListActor(s, id, cfg)
	})
	sys.Register(KindFanout, func(s *runtime.System, id string) runtime.Behavior {
		return newFanoutActor(s, id, cfg)
	})
	sys.Register(KindIndex, func(s *runtime.System, id string) runtime.Behavior {
		return newIndexActor(s, id, cfg)
	})
}

// PostAddress returns the address of a post actor.
func PostAddress(postID string) runtime.Address {
	return runtime.Address{Kind: KindPost, ID: postID}
}

// ChatAddress returns the address of a chat actor.
func ChatAddress(chatID string) runtime.Address {
	return runtime.Address{Kind: KindChat, ID: chatID}
}

// UserAddress returns the address of a user actor.
func UserAddress(userID string) runtime.Address {
	return runtime.Address{Kind: KindUser, ID: userID}
}

// TimelineAddress returns the address of a user's timeline registry.
func TimelineAddress(userID string) runtime.Address {
	return runtime.Address{Kind: KindTimeline, ID: userID}
}

// ChatListAddress returns the address of a user's chat-list registry.
func ChatListAddress(userID string) runtime.Address {
	return runtime.Address{Kind: KindChatList, ID: userID}
}

// FanoutAddress returns the address of an author's fan-out
// coordinator.
func FanoutAddress(authorID string) runtime.Address {
	return runtime.Address{Kind: KindFanout, ID: authorID}
}

// IndexAddress returns the address of one user-index shard.
func IndexAddress(shard int) runtime.Address {
	return runtime.Address{Kind: KindIndex, ID: strconv.Itoa(shard)}
}

// IndexShardFor picks the index shard responsible for a user id.
func IndexShardFor(userID string, shards int) runtime.Address {
	sum := md5.Sum([]byte(userID))
	n := binary.BigEndian.Uint64(sum[:8]) % uint64(shards)
	return IndexAddress(int(n))
}

// IndexAddresses lists every index shard address.
func IndexAddresses(shards int) []runtime.Address {
	addrs := make([]runtime.Address, 0, shards)
	for i := 0; i < shards; i++ {
		addrs = append(addrs, IndexAddress(i))
	}
	return addrs
}

// tell sends a fire-and-forget trigger, logging delivery refusals.
// The sender never blocks on, or observes, handler outcomes.
func tell(sys *runtime.System, to runtime.Address, msg interface{}) {
	if err := sys.Tell(to, msg); err != nil {
		sys.Logger().Warn("trigger send failed",
			zap.String("target", to.String()), zap.Error(err))
	}
}
