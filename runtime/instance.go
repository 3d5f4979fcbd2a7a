package runtime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// task pairs an envelope with an optional reply channel. Tell leaves
// reply nil; Ask waits on it.
type task struct {
	env   Envelope
	reply chan result
}

type result struct {
	val interface{}
	err error
}

// instance runs one actor: a behavior plus a mailbox drained by a
// single goroutine, which gives per-destination FIFO ordering.
type instance struct {
	addr     Address
	behavior Behavior
	sys      *System

	mailbox chan *task

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	state             int32 // State
	messagesProcessed uint64
	activatedAt       time.Time
	lastMessageAt     int64 // unix nanos

	opts Options
	log  *zap.Logger
}

func newInstance(addr Address, behavior Behavior, sys *System, opts Options, log *zap.Logger) *instance {
	ctx, cancel := context.WithCancel(context.Background())

	inst := &instance{
		addr:        addr,
		behavior:    behavior,
		sys:         sys,
		mailbox:     make(chan *task, opts.MailboxSize),
		ctx:         ctx,
		cancel:      cancel,
		activatedAt: time.Now(),
		opts:        opts,
		log:         log,
	}
	atomic.StoreInt32(&inst.state, int32(StateIdle))
	return inst
}

// start launches the message loop.
func (inst *instance) start() {
	inst.wg.Add(1)
	go inst.messageLoop()
}

// stop shuts the instance down after the in-flight message finishes.
func (inst *instance) stop() error {
	if !atomic.CompareAndSwapInt32(&inst.state, int32(StateIdle), int32(StateStopping)) &&
		!atomic.CompareAndSwapInt32(&inst.state, int32(StateRunning), int32(StateStopping)) {
		return fmt.Errorf("actor %s cannot be stopped from state %s",
			inst.addr, State(atomic.LoadInt32(&inst.state)))
	}

	inst.cancel()
	inst.wg.Wait()
	atomic.StoreInt32(&inst.state, int32(StateStopped))
	return nil
}

// enqueue adds a task to the mailbox without blocking.
func (inst *instance) enqueue(t *task) error {
	current := State(atomic.LoadInt32(&inst.state))
	if current == StateStopped || current == StateStopping {
		return fmt.Errorf("actor %s is not running (state: %s)", inst.addr, current)
	}

	select {
	case inst.mailbox <- t:
		return nil
	case <-inst.ctx.Done():
		return fmt.Errorf("actor %s is shutting down", inst.addr)
	default:
		return fmt.Errorf("actor %s mailbox is full", inst.addr)
	}
}

// stats returns current runtime statistics.
func (inst *instance) stats() Stats {
	var last time.Time
	if nanos := atomic.LoadInt64(&inst.lastMessageAt); nanos > 0 {
		last = time.Unix(0, nanos)
	}

	return Stats{
		Address:           inst.addr,
		State:             State(atomic.LoadInt32(&inst.state)),
		MessagesProcessed: atomic.LoadUint64(&inst.messagesProcessed),
		MailboxSize:       len(inst.mailbox),
		ActivatedAt:       inst.activatedAt,
		LastMessageAt:     last,
	}
}

func (inst *instance) messageLoop() {
	defer inst.wg.Done()

	for {
		select {
		case t := <-inst.mailbox:
			if t == nil {
				continue
			}
			inst.process(t)

		case <-inst.ctx.Done():
			inst.drainMailbox()
			return
		}
	}
}

func (inst *instance) process(t *task) {
	atomic.StoreInt32(&inst.state, int32(StateRunning))
	defer func() {
		// Stop may have raced with processing; do not clobber it.
		atomic.CompareAndSwapInt32(&inst.state, int32(StateRunning), int32(StateIdle))
	}()

	atomic.AddUint64(&inst.messagesProcessed, 1)
	atomic.StoreInt64(&inst.lastMessageAt, time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(inst.ctx, inst.opts.ProcessTimeout)
	defer cancel()

	val, err := inst.behavior.Receive(ctx, t.env)

	// Commands that succeeded change state; persist it before anyone
	// can observe the effects of a later message.
	if err == nil {
		if _, isCmd := t.env.Msg.(Command); isCmd {
			inst.checkpoint(ctx)
		}
	}

	if t.reply != nil {
		t.reply <- result{val: val, err: err}
	} else if err != nil {
		// Fire-and-forget senders never see failures; log them here.
		inst.log.Warn("trigger handler failed",
			zap.String("actor", inst.addr.String()),
			zap.String("message", fmt.Sprintf("%T", t.env.Msg)),
			zap.Error(err))
	}
}

func (inst *instance) checkpoint(ctx context.Context) {
	data, err := inst.behavior.MarshalSnapshot()
	if err != nil {
		inst.log.Error("snapshot encode failed",
			zap.String("actor", inst.addr.String()), zap.Error(err))
		return
	}
	if err := inst.sys.store.Save(ctx, inst.addr.String(), data); err != nil {
		inst.log.Error("snapshot save failed",
			zap.String("actor", inst.addr.String()), zap.Error(err))
	}
}

// drainMailbox fails any pending calls during shutdown.
func (inst *instance) drainMailbox() {
	for {
		select {
		case t := <-inst.mailbox:
			if t == nil {
				return
			}
			if t.reply != nil {
				t.reply <- result{err: fmt.Errorf("actor %s is shutting down", inst.addr)}
			}
		default:
			return
		}
	}
}
