package runtime

import "context"

// Behavior implements one actor kind's semantics. A Behavior instance
// owns the state behind exactly one address and is only ever invoked
// from that instance's message loop, one message at a time, so it
// needs no internal locking.
type Behavior interface {
	// Receive handles a single command or query. The reply is returned
	// to Ask callers; Tell callers never observe it. Business failures
	// come back as typed errors, never panics.
	Receive(ctx context.Context, env Envelope) (interface{}, error)

	// MarshalSnapshot encodes the current state for checkpointing.
	MarshalSnapshot() ([]byte, error)

	// RestoreSnapshot replaces the state from an encoded snapshot. It
	// is called at most once, before the first message is handled.
	RestoreSnapshot(data []byte) error
}

// Factory builds the Behavior for one instance of a kind. The system
// handle lets behaviors send follow-up messages to other actors.
type Factory func(sys *System, id string) Behavior
