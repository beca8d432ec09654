package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cosmos-catalog/internal/idgen"
	"cosmos-catalog/internal/logger"
	"cosmos-catalog/internal/slot"
)

// maxIDAttempts bounds how often a colliding id is redrawn.
const maxIDAttempts = 16

// ErrIDExhausted means the generator kept returning ids already issued.
var ErrIDExhausted = errors.New("catalog: could not generate a unique id")

// Store is the CRUD contract shared by every catalog backend. Get and Update
// return (nil, nil) when the id is unknown; Delete returns false.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, in ProductInput) (*Product, error)
	Update(ctx context.Context, id string, in ProductInput) (*Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Pinger is implemented by stores that depend on an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Persister commits the whole collection after every mutation.
type Persister interface {
	Save(ctx context.Context, products []Product) error
}

// SlotPersister writes the collection as a JSON array into a slot.
type SlotPersister struct {
	Slot slot.Slot
}

func (p SlotPersister) Save(ctx context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("SlotPersister encode: %w", err)
	}
	if err := p.Slot.Save(ctx, data); err != nil {
		return fmt.Errorf("SlotPersister save %s: %w", p.Slot.Name(), err)
	}
	return nil
}

// Collection is an ordered, mutex-guarded product list. Insertion order is
// iteration order. With a Persister every mutation is written through before
// the call returns; a failed write rolls the mutation back.
type Collection struct {
	mu        sync.RWMutex
	items     []Product
	issued    map[string]struct{}
	ids       idgen.Generator
	persister Persister
	strict    bool
}

// Option configures a Collection.
type Option func(*Collection)

// WithPersister commits the collection through p on every mutation.
func WithPersister(p Persister) Option {
	return func(c *Collection) { c.persister = p }
}

// WithIDGenerator overrides the default 6-character random ids.
func WithIDGenerator(g idgen.Generator) Option {
	return func(c *Collection) { c.ids = g }
}

// WithValidation rejects incomplete or malformed input at the store boundary.
// Without it the caller is trusted to have validated already.
func WithValidation() Option {
	return func(c *Collection) { c.strict = true }
}

// WithSeed preloads records. Empty or duplicate ids are replaced.
func WithSeed(products []Product) Option {
	return func(c *Collection) {
		c.items = append(c.items, products...)
	}
}

// NewCollection builds an in-memory collection.
func NewCollection(opts ...Option) *Collection {
	c := &Collection{
		issued: make(map[string]struct{}),
		ids:    idgen.Random(6),
	}
	for _, opt := range opts {
		opt(c)
	}
	_ = c.reset(c.items)
	return c
}

// LoadCollection reads the collection stored in s and persists back into it.
// A slot that was never written yields an empty collection.
func LoadCollection(ctx context.Context, s slot.Slot, opts ...Option) (*Collection, error) {
	c := NewCollection(append(opts, WithPersister(SlotPersister{Slot: s}))...)
	data, err := s.Load(ctx)
	if errors.Is(err, slot.ErrNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LoadCollection: %w", err)
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("LoadCollection decode %s: %w", s.Name(), err)
	}
	c.issued = make(map[string]struct{})
	if err := c.reset(products); err != nil {
		return nil, fmt.Errorf("LoadCollection %s: %w", s.Name(), err)
	}
	return c, nil
}

// reset replaces the records, drawing new ids for blank or repeated ones. A
// record that cannot get an id is dropped with a warning and reported.
func (c *Collection) reset(products []Product) error {
	var dropped error
	items := make([]Product, 0, len(products))
	for _, p := range products {
		if _, dup := c.issued[p.ID]; p.ID == "" || dup {
			id, err := c.nextID()
			if err != nil {
				logger.Warnf("catalog: dropping %q: %v", p.Name, err)
				if dropped == nil {
					dropped = fmt.Errorf("reset %q: %w", p.Name, err)
				}
				continue
			}
			p.ID = id
		} else {
			c.issued[p.ID] = struct{}{}
		}
		items = append(items, p.clone())
	}
	c.items = items
	return dropped
}

// nextID must be called with mu held for writing.
func (c *Collection) nextID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := c.ids.NewID()
		if _, used := c.issued[id]; id != "" && !used {
			c.issued[id] = struct{}{}
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

func (c *Collection) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection) commit(ctx context.Context) error {
	if c.persister == nil {
		return nil
	}
	return c.persister.Save(ctx, c.items)
}

// List returns a copy of every record in insertion order.
func (c *Collection) List(ctx context.Context) ([]Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, len(c.items))
	for i, p := range c.items {
		out[i] = p.clone()
	}
	return out, nil
}

// Get returns a copy of the record with the given id.
func (c *Collection) Get(ctx context.Context, id string) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	p := c.items[i].clone()
	return &p, nil
}

// Create appends a new record with a fresh id.
func (c *Collection) Create(ctx context.Context, in ProductInput) (*Product, error) {
	var p Product
	if c.strict {
		var err error
		if p, err = normalizeCreate(in); err != nil {
			return nil, err
		}
	} else {
		in.apply(&p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.nextID()
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	p.ID = id
	prev := c.items
	c.items = append(c.items[:len(c.items):len(c.items)], p)
	if err := c.commit(ctx); err != nil {
		c.items = prev
		return nil, fmt.Errorf("Create: %w", err)
	}
	out := p.clone()
	return &out, nil
}

// Update merges the present fields of in into the record.
func (c *Collection) Update(ctx context.Context, id string, in ProductInput) (*Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	if c.strict {
		var err error
		if in, err = normalizeUpdate(in); err != nil {
			return nil, err
		}
	}
	prev := c.items[i]
	merged := prev.clone()
	in.apply(&merged)
	c.items[i] = merged
	if err := c.commit(ctx); err != nil {
		c.items[i] = prev
		return nil, fmt.Errorf("Update: %w", err)
	}
	out := merged.clone()
	return &out, nil
}

// Delete removes the record and reports whether it existed. The order of the
// remaining records is unchanged.
func (c *Collection) Delete(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false, nil
	}
	prev := c.items
	next := make([]Product, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)
	c.items = next
	if err := c.commit(ctx); err != nil {
		c.items = prev
		return false, fmt.Errorf("Delete: %w", err)
	}
	return true, nil
}

// Len is the number of records.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
