package ingest

import (
	"context"
	"log"
	"time"

	"github.com/kinsync/kinsync/internal/match"
	"github.com/kinsync/kinsync/internal/storage"
	"github.com/kinsync/kinsync/pkg/types"
)

// PersonHandler receives each person mention with its resolution result.
type PersonHandler func(Mention, types.PersonMatch)

// TaskHandler receives each task mention with its resolution result.
type TaskHandler func(Mention, types.TaskMatch)

// Poller periodically pulls mention batches from the relay, resolves them
// against the current roster, and acks processed mentions. Resolution results
// are delivered to the registered handlers; what to do with a match (create
// the task, link the mention, queue a review) is the caller's policy.
type Poller struct {
	client   *Client
	store    storage.RosterStore
	resolver *match.Resolver
	interval time.Duration

	onPerson PersonHandler
	onTask   TaskHandler

	cursor string
}

// NewPoller creates a poller. Handlers may be nil; unhandled mentions are
// still acked.
func NewPoller(client *Client, store storage.RosterStore, resolver *match.Resolver, interval time.Duration, onPerson PersonHandler, onTask TaskHandler) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		client:   client,
		store:    store,
		resolver: resolver,
		interval: interval,
		onPerson: onPerson,
		onTask:   onTask,
	}
}

// Run polls until the context is cancelled. Poll errors are logged and
// retried on the next tick; the circuit breaker inside the client prevents
// hammering an unhealthy relay.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
			log.Printf("ingest: poll failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PollOnce fetches one batch, resolves every mention, and acks the batch.
// Mentions are acked even when they resolve to nothing: a no-match is a
// result, not a failure.
func (p *Poller) PollOnce(ctx context.Context) error {
	mentions, next, err := p.client.FetchMentions(ctx, p.cursor)
	if err != nil {
		return err
	}
	if len(mentions) == 0 {
		p.cursor = next
		return nil
	}

	persons, err := p.store.AllPersons(ctx)
	if err != nil {
		return err
	}
	tasks, err := p.store.AllTasks(ctx)
	if err != nil {
		return err
	}

	acked := make([]string, 0, len(mentions))
	for _, m := range mentions {
		rctx := match.Context{CreatedBy: m.CreatedBy}
		switch m.Kind {
		case MentionKindPerson:
			result := p.resolver.ResolvePerson(m.Text, persons, rctx)
			if p.onPerson != nil {
				p.onPerson(m, result)
			}
		case MentionKindTask:
			result := p.resolver.ResolveTask(m.Text, tasks, rctx)
			if p.onTask != nil {
				p.onTask(m, result)
			}
		default:
			log.Printf("ingest: dropping mention %s with unknown kind %q", m.ID, m.Kind)
		}
		acked = append(acked, m.ID)
	}

	if err := p.client.AckMentions(ctx, acked); err != nil {
		// Not acked means the relay will redeliver; resolution is idempotent
		// so redelivery is safe.
		return err
	}

	p.cursor = next
	return nil
}
