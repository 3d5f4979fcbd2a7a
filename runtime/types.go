// Package runtime hosts the actor model: addressable single-threaded
// state owners that receive commands and queries one at a time, with
// fire-and-forget sends, synchronous calls, lazy activation from
// snapshots, and checkpoint-on-command persistence.
package runtime

import (
	"time"
)

// Kind names an actor type ("post", "user", "timeline", ...). Each
// kind registers one Factory with the System.
type Kind string

// Address identifies one actor instance: a (kind, id) pair. At any
// moment exactly one instance owns the mutable state behind an
// address.
type Address struct {
	Kind Kind
	ID   string
}

// String renders the address as "kind/id"; this is also the snapshot
// store key.
func (a Address) String() string {
	return string(a.Kind) + "/" + a.ID
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a.Kind == "" && a.ID == ""
}

// Envelope carries one message to an actor instance.
type Envelope struct {
	// To is the destination address.
	To Address

	// Msg is the command or query value. Each kind type-switches over
	// its own closed message set.
	Msg interface{}

	// At is when the message was enqueued.
	At time.Time
}

// Command marks messages that may mutate actor state. After a command
// is handled without error the instance checkpoints its snapshot.
// Query messages simply do not implement this interface.
type Command interface {
	CommandMessage()
}

// State represents the lifecycle state of an actor instance.
type State uint8

const (
	// StateIdle means the instance is waiting for messages.
	StateIdle State = iota

	// StateRunning means the instance is processing a message.
	StateRunning

	// StateStopping means the instance is shutting down.
	StateStopping

	// StateStopped means the instance has been stopped.
	StateStopped
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options configures actor instances created by a System.
type Options struct {
	// MailboxSize sets the depth of each instance's message queue.
	MailboxSize int

	// ProcessTimeout bounds the handling of a single message.
	ProcessTimeout time.Duration
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		MailboxSize:    1000,
		ProcessTimeout: 30 * time.Second,
	}
}

// Stats contains runtime statistics for one actor instance.
type Stats struct {
	// Address of the instance.
	Address Address

	// Current lifecycle state.
	State State

	// Total messages processed.
	MessagesProcessed uint64

	// Messages currently in the mailbox.
	MailboxSize int

	// Time when the instance was activated.
	ActivatedAt time.Time

	// Last message processing time.
	LastMessageAt time.Time
}
