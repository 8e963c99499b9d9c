// Package ordernumber allocates year-scoped order numbers such as OBJ-2026-007.
package ordernumber

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/fx"

	"github.com/hotelprocure/procure/internal/config"
	"github.com/hotelprocure/procure/internal/kv"
)

// Module provides the allocator to the Fx graph.
var Module = fx.Provide(NewFromConfig)

// Source reports the most recently inserted order number that starts with prefix,
// or an empty string when none exists.
type Source interface {
	LatestNumber(ctx context.Context, prefix string) (string, error)
}

// Format renders prefix-year-seq with seq zero padded to three digits.
func Format(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq)
}

// YearPrefix is the prefix shared by every number allocated in year, trailing dash included.
func YearPrefix(prefix string, year int) string {
	return fmt.Sprintf("%s-%d-", prefix, year)
}

// Parse extracts the year and sequence from a formatted number.
func Parse(prefix, number string) (year int, seq int64, err error) {
	rest, ok := strings.CutPrefix(number, prefix+"-")
	if !ok {
		return 0, 0, fmt.Errorf("order number %q lacks prefix %s", number, prefix)
	}
	yearPart, seqPart, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, 0, fmt.Errorf("order number %q is malformed", number)
	}
	year, err = strconv.Atoi(yearPart)
	if err != nil {
		return 0, 0, fmt.Errorf("order number %q has invalid year: %w", number, err)
	}
	seq, err = strconv.ParseInt(seqPart, 10, 64)
	if err != nil || seq < 1 {
		return 0, 0, fmt.Errorf("order number %q has invalid sequence", number)
	}
	return year, seq, nil
}

// Allocator hands out order numbers from an atomic per-year counter in the KV store.
// The counter is seeded once from the latest persisted number for the year.
type Allocator struct {
	store  kv.Store
	source Source
	prefix string
}

// New constructs an allocator.
func New(store kv.Store, source Source, prefix string) *Allocator {
	if prefix == "" {
		prefix = "OBJ"
	}
	return &Allocator{store: store, source: source, prefix: prefix}
}

// NewFromConfig wires the allocator with the configured prefix.
func NewFromConfig(store kv.Store, source Source, cfg config.Config) *Allocator {
	return New(store, source, cfg.Ordering.NumberPrefix)
}

// Prefix is the configured number prefix.
func (a *Allocator) Prefix() string {
	return a.prefix
}

func (a *Allocator) key(year int) string {
	return fmt.Sprintf("order-seq:%s:%d", a.prefix, year)
}

// Next returns the next unused number for year.
func (a *Allocator) Next(ctx context.Context, year int) (string, error) {
	if err := a.seed(ctx, year); err != nil {
		return "", err
	}
	seq, err := a.store.Incr(ctx, a.key(year))
	if err != nil {
		return "", fmt.Errorf("increment order sequence: %w", err)
	}
	return Format(a.prefix, year, seq), nil
}

// Resync raises the counter to at least the latest persisted sequence. It is called after
// an insert collides with an existing number, e.g. when orders were written by another
// process while the counter was unseeded.
func (a *Allocator) Resync(ctx context.Context, year int) error {
	latest, err := a.latest(ctx, year)
	if err != nil {
		return err
	}
	current, err := a.current(ctx, year)
	if err != nil {
		return err
	}
	if current >= latest {
		return nil
	}
	// a concurrent Next between the read and the increment only widens the gap
	if _, err := a.store.IncrBy(ctx, a.key(year), latest-current); err != nil {
		return fmt.Errorf("advance order sequence: %w", err)
	}
	return nil
}

func (a *Allocator) seed(ctx context.Context, year int) error {
	if _, err := a.store.Get(ctx, a.key(year)); err == nil {
		return nil
	} else if !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("read order sequence: %w", err)
	}
	latest, err := a.latest(ctx, year)
	if err != nil {
		return err
	}
	if _, err := a.store.SetNX(ctx, a.key(year), []byte(strconv.FormatInt(latest, 10)), 0); err != nil {
		return fmt.Errorf("seed order sequence: %w", err)
	}
	return nil
}

func (a *Allocator) current(ctx context.Context, year int) (int64, error) {
	raw, err := a.store.Get(ctx, a.key(year))
	if errors.Is(err, kv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read order sequence: %w", err)
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("order sequence is not an integer: %w", err)
	}
	return n, nil
}

func (a *Allocator) latest(ctx context.Context, year int) (int64, error) {
	if a.source == nil {
		return 0, nil
	}
	number, err := a.source.LatestNumber(ctx, YearPrefix(a.prefix, year))
	if err != nil {
		return 0, fmt.Errorf("load latest order number: %w", err)
	}
	if number == "" {
		return 0, nil
	}
	// a malformed latest number counts as 0 instead of blocking the year
	_, seq, err := Parse(a.prefix, number)
	if err != nil {
		return 0, nil
	}
	return seq, nil
}
