// Package interference keeps, per receiver, an interval index of the
// transmissions arriving at it, so that "which transmissions overlap this
// reception window" is a logarithmic query instead of a scan.
package interference

import (
	"log/slog"
	"sort"

	"github.com/anrid/overlap/pkg/interval"
	"github.com/anrid/overlap/pkg/simtime"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidReception is returned for transmissions without an id or
	// ending before they start.
	ErrInvalidReception = errors.New("invalid reception")
	// ErrDuplicateReception is returned when a receiver already has a
	// reception of the same transmission.
	ErrDuplicateReception = errors.New("reception already cached")
	// ErrUnknownReception is returned when removing a reception that is not
	// cached.
	ErrUnknownReception = errors.New("reception not cached")
)

// Transmission is a signal as seen at one receiver: it arrives at Start and
// has fully arrived by End.
type Transmission struct {
	ID          string
	Transmitter string
	Start       simtime.Time
	End         simtime.Time
}

type receptionTree = interval.Tree[simtime.Time, *Transmission]

type receptionKey struct {
	receiver     string
	transmission string
}

// Cache owns one reception tree per receiver. It is not safe for concurrent
// use.
type Cache struct {
	logger    *slog.Logger
	receivers map[string]*receptionTree
	handles   map[receptionKey]interval.Handle
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for cache events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache returns an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		logger:    slog.Default(),
		receivers: make(map[string]*receptionTree),
		handles:   make(map[receptionKey]interval.Handle),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) tree(receiver string) *receptionTree {
	t, ok := c.receivers[receiver]
	if !ok {
		t = interval.New[simtime.Time, *Transmission]()
		c.receivers[receiver] = t
	}
	return t
}

// AddReception records that tx arrives at receiver.
func (c *Cache) AddReception(receiver string, tx *Transmission) error {
	if tx == nil || tx.ID == "" {
		return errors.Wrapf(ErrInvalidReception, "receiver %s: transmission without id", receiver)
	}

	key := receptionKey{receiver, tx.ID}
	if _, found := c.handles[key]; found {
		return errors.Wrapf(ErrDuplicateReception, "receiver %s, transmission %s", receiver, tx.ID)
	}

	iv, err := interval.NewInterval(tx.Start, tx.End, tx)
	if err != nil {
		return errors.Wrapf(ErrInvalidReception, "receiver %s, transmission %s: %v", receiver, tx.ID, err)
	}

	c.handles[key] = c.tree(receiver).Insert(iv)
	c.logger.Debug("cached reception",
		"receiver", receiver, "transmission", tx.ID, "start", tx.Start, "end", tx.End)

	return nil
}

// RemoveReception forgets the reception of transmission txID at receiver
// and returns it.
func (c *Cache) RemoveReception(receiver, txID string) (*Transmission, error) {
	key := receptionKey{receiver, txID}
	h, found := c.handles[key]
	if !found {
		return nil, errors.Wrapf(ErrUnknownReception, "receiver %s, transmission %s", receiver, txID)
	}

	iv, err := c.receivers[receiver].Delete(h)
	if err != nil {
		return nil, errors.Wrapf(err, "receiver %s, transmission %s", receiver, txID)
	}
	delete(c.handles, key)

	c.logger.Debug("removed reception", "receiver", receiver, "transmission", txID)
	return iv.Value(), nil
}

// InterferingTransmissions returns the transmissions whose reception at
// receiver overlaps [start, end], ordered by start time then id. Unknown
// receivers have none.
func (c *Cache) InterferingTransmissions(receiver string, start, end simtime.Time) []*Transmission {
	t, ok := c.receivers[receiver]
	if !ok {
		return nil
	}

	var res []*Transmission
	t.Visit(start, end, func(iv *interval.Interval[simtime.Time, *Transmission]) bool {
		res = append(res, iv.Value())
		return true
	})
	sortTransmissions(res)

	return res
}

// RemoveEndedBefore drops every reception that ended strictly before t from
// all receivers; such receptions can no longer interfere with anything that
// starts at or after t. It returns the number removed.
func (c *Cache) RemoveEndedBefore(t simtime.Time) int {
	var removed int

	for receiver, tree := range c.receivers {
		var stale []*Transmission
		// Anything ending before t must also start before t.
		tree.Visit(simtime.Min, t, func(iv *interval.Interval[simtime.Time, *Transmission]) bool {
			if iv.High() < t {
				stale = append(stale, iv.Value())
			}
			return true
		})

		for _, tx := range stale {
			key := receptionKey{receiver, tx.ID}
			if _, err := tree.Delete(c.handles[key]); err != nil {
				c.logger.Warn("could not remove stale reception",
					"receiver", receiver, "transmission", tx.ID, "error", err)
				continue
			}
			delete(c.handles, key)
			removed++
		}

		if tree.Empty() {
			delete(c.receivers, receiver)
		}
	}

	if removed > 0 {
		c.logger.Info("purged receptions", "before", t, "count", removed)
	}
	return removed
}

// Receivers returns the receivers with a reception tree, sorted.
func (c *Cache) Receivers() []string {
	out := make([]string, 0, len(c.receivers))
	for r := range c.receivers {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// NumReceptions returns the number of cached receptions across receivers.
func (c *Cache) NumReceptions() int {
	return len(c.handles)
}

// Check verifies every reception tree.
func (c *Cache) Check() error {
	var n int
	for _, receiver := range c.Receivers() {
		t := c.receivers[receiver]
		if err := t.Check(); err != nil {
			return errors.Wrapf(err, "reception tree of %s", receiver)
		}
		n += t.Len()
	}
	if n != len(c.handles) {
		return errors.Errorf("trees hold %d receptions but %d handles are cached", n, len(c.handles))
	}
	return nil
}

func sortTransmissions(txs []*Transmission) {
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Start != txs[j].Start {
			return txs[i].Start < txs[j].Start
		}
		return txs[i].ID < txs[j].ID
	})
}
