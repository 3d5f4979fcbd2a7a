package runtime

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/socialmesh/socialmesh/snapshot"
)

// System is the actor host: it maps addresses to live instances,
// activates instances lazily from their snapshots, and routes sends
// and calls.
type System struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
	instances map[Address]*instance

	store snapshot.Store
	opts  Options
	log   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSystem creates a System backed by the given snapshot store.
func NewSystem(store snapshot.Store, opts Options, log *zap.Logger) *System {
	if opts.MailboxSize <= 0 {
		opts = DefaultOptions()
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &System{
		factories: make(map[Kind]Factory),
		instances: make(map[Address]*instance),
		store:     store,
		opts:      opts,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Register installs the factory for an actor kind. It must be called
// before any message is routed to that kind.
func (s *System) Register(kind Kind, factory Factory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[kind] = factory
}

// Logger returns the system logger for use by behaviors.
func (s *System) Logger() *zap.Logger {
	return s.log
}

// Tell sends a one-way message. Delivery is fire-and-forget: handler
// failures are logged by the receiving instance, never returned here.
// Messages to the same address are handled in send order.
func (s *System) Tell(to Address, msg interface{}) error {
	inst, err := s.resolve(to)
	if err != nil {
		return err
	}
	return inst.enqueue(&task{env: Envelope{To: to, Msg: msg, At: time.Now()}})
}

// Ask sends a message and waits for the handler's reply. Business
// failures surface as the returned error with the reply nil.
func (s *System) Ask(ctx context.Context, to Address, msg interface{}) (interface{}, error) {
	inst, err := s.resolve(to)
	if err != nil {
		return nil, err
	}

	reply := make(chan result, 1)
	if err := inst.enqueue(&task{env: Envelope{To: to, Msg: msg, At: time.Now()}, reply: reply}); err != nil {
		return nil, err
	}

	select {
	case res := <-reply:
		return res.val, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.ctx.Done():
		return nil, fmt.Errorf("actor system is shutting down")
	}
}

// resolve returns the live instance for an address, activating it
// first if needed. Activation loads the prior snapshot; a snapshot
// that exists but cannot be decoded refuses to start the actor.
func (s *System) resolve(addr Address) (*instance, error) {
	s.mu.RLock()
	inst, ok := s.instances[addr]
	s.mu.RUnlock()
	if ok {
		return inst, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if inst, ok := s.instances[addr]; ok {
		return inst, nil
	}

	select {
	case <-s.ctx.Done():
		return nil, fmt.Errorf("actor system is shutting down")
	default:
	}

	factory, ok := s.factories[addr.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown actor kind %q", addr.Kind)
	}

	behavior := factory(s, addr.ID)

	data, err := s.store.Load(s.ctx, addr.String())
	if err != nil {
		return nil, fmt.Errorf("activate %s: %w", addr, err)
	}
	if len(data) > 0 {
		if err := behavior.RestoreSnapshot(data); err != nil {
			s.log.Error("snapshot restore failed",
				zap.String("actor", addr.String()), zap.Error(err))
			return nil, fmt.Errorf("activate %s: %w", addr, err)
		}
	}

	inst = newInstance(addr, behavior, s, s.opts, s.log)
	inst.start()
	s.instances[addr] = inst

	s.log.Debug("actor activated", zap.String("actor", addr.String()),
		zap.Bool("restored", len(data) > 0))
	return inst, nil
}

// Addresses lists every live instance, sorted for stable output.
func (s *System) Addresses() []Address {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addrs := make([]Address, 0, len(s.instances))
	for addr := range s.instances {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].String() < addrs[j].String()
	})
	return addrs
}

// Stats returns runtime statistics for every live instance.
func (s *System) Stats() []Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make([]Stats, 0, len(s.instances))
	for _, inst := range s.instances {
		stats = append(stats, inst.stats())
	}
	return stats
}

// Shutdown stops all instances, waiting up to the context deadline for
// in-flight messages to finish.
func (s *System) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		for _, inst := range s.instances {
			if err := inst.stop(); err != nil {
				s.log.Warn("actor stop failed",
					zap.String("actor", inst.addr.String()), zap.Error(err))
			}
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
