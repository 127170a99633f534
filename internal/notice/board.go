package notice

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/qrregister/internal/logger"
)

const (
	// DefaultTTL is used when Publish is called without an explicit duration
	DefaultTTL = 3 * time.Second
	// DefaultChannelBufferSize is the buffer of each subscriber channel
	DefaultChannelBufferSize = 16
)

// subscriber represents a notice subscriber
type subscriber struct {
	ch     chan *Notice
	ctx    context.Context
	cancel context.CancelFunc
}

// Board keeps active notices and broadcasts new ones to subscribers.
// Expiry is handled by the cache TTL; no background goroutine is started.
type Board struct {
	notices    *cache.Cache
	defaultTTL time.Duration

	subscribers   []*subscriber
	subscribersMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	log    logger.Logger
}

// NewBoard creates an empty board whose notices default to defaultTTL.
func NewBoard(defaultTTL time.Duration) *Board {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Board{
		// cleanupInterval 0 disables the janitor; Publish purges instead
		notices:    cache.New(defaultTTL, 0),
		defaultTTL: defaultTTL,
		ctx:        ctx,
		cancel:     cancel,
		log:        GetLogger(),
	}
}

// Publish stores a notice visible for ttl and broadcasts it. A non-positive
// ttl uses the board default. Publish never blocks on slow subscribers.
func (b *Board) Publish(kind Kind, title, message string, ttl time.Duration) *Notice {
	b.notices.DeleteExpired()

	if ttl <= 0 {
		ttl = b.defaultTTL
	}

	n := newNotice(kind, title, message, time.Now(), ttl)
	b.notices.Set(n.ID, n, ttl)

	b.log.Debug("notice published",
		logger.String("id", n.ID),
		logger.String("kind", string(kind)),
		logger.Duration("ttl", ttl))

	b.broadcast(n)
	return n.Clone()
}

// Warning publishes a warning notice
func (b *Board) Warning(message string, ttl time.Duration) *Notice {
	return b.Publish(KindWarning, "", message, ttl)
}

// Success publishes a success notice
func (b *Board) Success(message string, ttl time.Duration) *Notice {
	return b.Publish(KindSuccess, "", message, ttl)
}

// Error publishes an error notice
func (b *Board) Error(message string, ttl time.Duration) *Notice {
	return b.Publish(KindError, "", message, ttl)
}

// Info publishes an informational notice
func (b *Board) Info(message string, ttl time.Duration) *Notice {
	return b.Publish(KindInfo, "", message, ttl)
}

// Active returns the notices that have not expired or been dismissed, oldest first.
func (b *Board) Active() []*Notice {
	items := b.notices.Items()
	active := make([]*Notice, 0, len(items))
	for _, item := range items {
		if n, ok := item.Object.(*Notice); ok {
			active = append(active, n.Clone())
		}
	}
	slices.SortFunc(active, func(a, c *Notice) int {
		if cmp := a.CreatedAt.Compare(c.CreatedAt); cmp != 0 {
			return cmp
		}
		if a.ID < c.ID {
			return -1
		}
		if a.ID > c.ID {
			return 1
		}
		return 0
	})
	return active
}

// Dismiss removes a notice before it expires. It reports whether the notice was active.
func (b *Board) Dismiss(id string) bool {
	if _, found := b.notices.Get(id); !found {
		return false
	}
	b.notices.Delete(id)
	return true
}

// Subscribe creates a channel receiving every notice published from now on.
// The returned context is cancelled on Unsubscribe or Close. The channel is
// never closed by the board.
func (b *Board) Subscribe() (<-chan *Notice, context.Context) {
	b.subscribersMu.Lock()
	defer b.subscribersMu.Unlock()

	ctx, cancel := context.WithCancel(b.ctx)
	sub := &subscriber{
		ch:     make(chan *Notice, DefaultChannelBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
	b.subscribers = append(b.subscribers, sub)
	return sub.ch, ctx
}

// Unsubscribe cancels the subscription owning ch
func (b *Board) Unsubscribe(ch <-chan *Notice) {
	b.subscribersMu.Lock()
	defer b.subscribersMu.Unlock()

	for i, sub := range b.subscribers {
		if sub.ch == ch {
			sub.cancel()
			b.subscribers = slices.Delete(b.subscribers, i, i+1)
			return
		}
	}
}

// Close cancels all subscriptions and drops active notices.
func (b *Board) Close() {
	b.cancel()

	b.subscribersMu.Lock()
	b.subscribers = nil
	b.subscribersMu.Unlock()

	b.notices.Flush()
}

// Follow writes every notice published on b to w until ctx is done.
func (b *Board) Follow(ctx context.Context, w io.Writer) {
	ch, subCtx := b.Subscribe()
	b.follow(ctx, subCtx, ch, w)
}

// StartFollow subscribes before returning and then writes notices to w in a
// new goroutine, like Follow. The returned channel is closed once it stops.
func (b *Board) StartFollow(ctx context.Context, w io.Writer) <-chan struct{} {
	ch, subCtx := b.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.follow(ctx, subCtx, ch, w)
	}()
	return done
}

func (b *Board) follow(ctx, subCtx context.Context, ch <-chan *Notice, w io.Writer) {
	defer b.Unsubscribe(ch)

	write := func(n *Notice) {
		if _, err := io.WriteString(w, n.String()+"\n"); err != nil {
			b.log.Warn("failed to write notice", logger.Error(err))
		}
	}

	for {
		select {
		case n := <-ch:
			write(n)
		case <-subCtx.Done():
			return
		case <-ctx.Done():
			// flush what was published before cancellation
			for {
				select {
				case n := <-ch:
					write(n)
				default:
					return
				}
			}
		}
	}
}

func (b *Board) broadcast(n *Notice) {
	b.subscribersMu.Lock()
	defer b.subscribersMu.Unlock()

	active := b.subscribers[:0]
	for _, sub := range b.subscribers {
		select {
		case <-sub.ctx.Done():
			continue
		default:
		}
		active = append(active, sub)

		select {
		case sub.ch <- n.Clone():
		default:
			b.log.Debug("notice channel full, skipping subscriber",
				logger.String("id", n.ID))
		}
	}
	b.subscribers = active
}
