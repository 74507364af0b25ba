package autosave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/debemdeboas/session-editor/internal/events"
	"github.com/debemdeboas/session-editor/internal/model"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

type fakeTimer struct {
	clock   *fakeClock
	fn      func()
	at      time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeClock fires timers synchronously from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, fn: f, at: c.now + d}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakePersister struct {
	mu        sync.Mutex
	records   map[model.SessionID]model.Record
	gets      []model.SessionID
	saves     []model.Record
	publishes []model.Record
	created   int

	getErr     error
	saveErr    error
	publishErr error
	// When set, SaveDraft blocks until it is closed or ctx is done.
	block chan struct{}
	// Same for Publish.
	publishBlock chan struct{}

	inflight    int
	maxInflight int
}

func newFakePersister() *fakePersister {
	return &fakePersister{records: make(map[model.SessionID]model.Record)}
}

func (p *fakePersister) Get(ctx context.Context, id model.SessionID) (model.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gets = append(p.gets, id)
	if p.getErr != nil {
		return model.Record{}, p.getErr
	}
	rec, ok := p.records[id]
	if !ok {
		return model.Record{}, fmt.Errorf("session %s not found", id)
	}
	return rec, nil
}

func (p *fakePersister) SaveDraft(ctx context.Context, rec model.Record) (model.Record, error) {
	p.mu.Lock()
	p.saves = append(p.saves, rec)
	block := p.block
	p.inflight++
	if p.inflight > p.maxInflight {
		p.maxInflight = p.inflight
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inflight--
		p.mu.Unlock()
	}()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return model.Record{}, ctx.Err()
		}
	}
	return p.store(rec, p.saveErr)
}

func (p *fakePersister) MaxInflight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxInflight
}

func (p *fakePersister) Publish(ctx context.Context, rec model.Record) (model.Record, error) {
	p.mu.Lock()
	p.publishes = append(p.publishes, rec)
	block := p.publishBlock
	p.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return model.Record{}, ctx.Err()
		}
	}
	return p.store(rec, p.publishErr)
}

func (p *fakePersister) store(rec model.Record, err error) (model.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		return model.Record{}, err
	}
	if rec.ID == "" {
		p.created++
		rec.ID = model.SessionID(fmt.Sprintf("created-%d", p.created))
	}
	p.records[rec.ID] = rec
	return rec, nil
}

func (p *fakePersister) Saves() []model.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Record(nil), p.saves...)
}

func (p *fakePersister) Publishes() []model.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Record(nil), p.publishes...)
}

func (p *fakePersister) Gets() []model.SessionID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.SessionID(nil), p.gets...)
}

type fixture struct {
	persister *fakePersister
	clock     *fakeClock
	hub       *events.Hub
	sub       *events.Subscriber
	editor    *Editor
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		persister: newFakePersister(),
		clock:     &fakeClock{},
		hub:       events.NewHub(),
	}
	f.sub = f.hub.Subscribe("")
	all := []Option{
		withAfterFunc(f.clock.AfterFunc),
		WithClock(func() time.Time { return fixedNow }),
	}
	f.editor = NewEditor(f.persister, f.hub, append(all, opts...)...)
	return f
}

// drain returns the events published so far.
func (f *fixture) drain() []events.Event {
	var out []events.Event
	for {
		select {
		case e := <-f.sub.Events:
			out = append(out, e)
		default:
			return out
		}
	}
}

func kinds(evs []events.Event) []events.Kind {
	out := make([]events.Kind, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Kind)
	}
	return out
}

func hasKind(evs []events.Event, k events.Kind) bool {
	for _, e := range evs {
		if e.Kind == k {
			return true
		}
	}
	return false
}
