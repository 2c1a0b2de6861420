package resgroup

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/bettergram/rpl"
	"github.com/bettergram/rpl/internal/rtrace"
	"github.com/bits-and-blooms/bitset"
)

// DefaultFreq is the update frequency, in seconds,
// used until a document specifies one.
const DefaultFreq = 3600

// ListConfig is the configuration for a [List].
type ListConfig struct {
	// Where accepted documents are cached.
	// If empty, nothing is cached.
	CachePath string

	// Update frequency in seconds used when a document gives none
	// or gives a non-positive one.
	// If zero, [DefaultFreq] is used.
	DefaultFreq int

	// Clock for update times.
	// If nil, [time.Now] is used.
	Now func() time.Time

	// If nil, tracing is disabled.
	TracerProvider rtrace.TracerProvider
}

// List is the current set of resource groups.
// It is safe for concurrent use.
type List struct {
	log *slog.Logger

	cache       *Cache
	defaultFreq int
	now         func() time.Time
	tracer      rtrace.Tracer

	freq       *rpl.Variable[int]
	lastUpdate *rpl.Variable[time.Time]

	updated     rpl.EventStream[rpl.Empty, rpl.NoError]
	iconChanges rpl.EventStream[int, rpl.NoError]

	mu     sync.RWMutex
	groups []*Group

	// Which entries of groups have had an icon set.
	iconsLoaded *bitset.BitSet

	// Owns the subscriptions to the current groups' icon changes.
	groupsLifetime *rpl.Lifetime

	lastHash [sha256.Size]byte
	hasHash  bool
}

// NewList returns an empty List.
func NewList(log *slog.Logger, cfg ListConfig) *List {
	if cfg.DefaultFreq <= 0 {
		cfg.DefaultFreq = DefaultFreq
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = rtrace.NopTracerProvider()
	}

	l := &List{
		log: log,

		defaultFreq: cfg.DefaultFreq,
		now:         cfg.Now,
		tracer:      cfg.TracerProvider.Tracer("github.com/bettergram/rpl/resgroup"),

		freq:       rpl.NewVariable(cfg.DefaultFreq),
		lastUpdate: rpl.NewVariable(time.Time{}),

		iconsLoaded:    bitset.New(0),
		groupsLifetime: rpl.NewLifetime(log),
	}
	if cfg.CachePath != "" {
		l.cache = NewCache(cfg.CachePath)
	}
	return l
}

// Freq returns the update frequency in seconds.
func (l *List) Freq() int {
	return l.freq.Value()
}

// SetFreq sets the update frequency in seconds.
// A non-positive freq restores the default.
func (l *List) SetFreq(freq int) {
	if freq <= 0 {
		freq = l.defaultFreq
	}
	l.freq.Set(freq)
}

// FreqChanges returns a Producer of future frequency changes.
func (l *List) FreqChanges() rpl.Producer[int, rpl.NoError] {
	return l.freq.Changes()
}

// FreqValue returns a Producer of the current frequency
// followed by every change.
func (l *List) FreqValue() rpl.Producer[int, rpl.NoError] {
	return l.freq.Producer()
}

// LastUpdate returns the time the list was last confirmed up to date,
// or the zero time if it never was.
func (l *List) LastUpdate() time.Time {
	return l.lastUpdate.Value()
}

// LastUpdateString returns LastUpdate formatted for display.
func (l *List) LastUpdateString() string {
	return formatLastUpdate(l.LastUpdate(), l.now())
}

// LastUpdateChanges returns a Producer of future LastUpdate values.
func (l *List) LastUpdateChanges() rpl.Producer[time.Time, rpl.NoError] {
	return l.lastUpdate.Changes()
}

func formatLastUpdate(t, now time.Time) string {
	if t.IsZero() {
		return "Last update: never"
	}

	y, m, d := t.Date()
	ny, nm, nd := now.Date()
	if y == ny && m == nm && d == nd {
		return "Last update: " + t.Format("15:04")
	}
	return "Last update: " + t.Format("Jan 2, 15:04")
}

// Updated returns a Producer notified whenever a new document is accepted.
func (l *List) Updated() rpl.Producer[rpl.Empty, rpl.NoError] {
	return l.updated.Events()
}

// IconChanges returns a Producer of the indices of groups
// whose icon was set.
func (l *List) IconChanges() rpl.Producer[int, rpl.NoError] {
	return l.iconChanges.Events()
}

// At returns the group at index i.
func (l *List) At(i int) (*Group, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i < 0 || i >= len(l.groups) {
		return nil, fmt.Errorf("%w: %d (count %d)", ErrIndexOutOfRange, i, len(l.groups))
	}
	return l.groups[i], nil
}

// Count returns the number of groups.
func (l *List) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.groups)
}

// IsEmpty reports whether the list has no groups.
func (l *List) IsEmpty() bool {
	return l.Count() == 0
}

// All iterates over a snapshot of the groups and their indices.
func (l *List) All() iter.Seq2[int, *Group] {
	l.mu.RLock()
	groups := slices.Clone(l.groups)
	l.mu.RUnlock()

	return slices.All(groups)
}

// IconsLoaded reports how many of the current groups have an icon set.
func (l *List) IconsLoaded() (loaded, total int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int(l.iconsLoaded.Count()), len(l.groups)
}

// ParseFile reads the document at path and parses it with [(*List).Parse].
func (l *List) ParseFile(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		l.log.Warn("Unable to open file with resource group list", "path", path, "err", err)
		return false, err
	}

	return l.Parse(ctx, data)
}

// Parse updates the list from the JSON document data.
//
// It reports whether the groups were replaced.
// A document identical to the last accepted one
// only refreshes LastUpdate and returns false with a nil error.
// An invalid document is logged and returned as an error,
// and the list keeps its previous state.
func (l *List) Parse(ctx context.Context, data []byte) (bool, error) {
	return l.parse(ctx, data, true)
}

// LoadCache parses the cached document, if there is one.
// A missing cache file is not an error.
func (l *List) LoadCache(ctx context.Context) (bool, error) {
	if l.cache == nil {
		return false, nil
	}

	data, err := l.cache.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		l.log.Warn("Unable to load resource group list cache", "path", l.cache.Path(), "err", err)
		return false, err
	}

	// The cache already holds exactly these bytes.
	return l.parse(ctx, data, false)
}

func (l *List) parse(ctx context.Context, data []byte, save bool) (bool, error) {
	hash := sha256.Sum256(data)

	_, span := l.tracer.Start(
		ctx, "resgroup.List.Parse",
		rtrace.WithAttributes(
			rtrace.LazyHexAttr("hash", hash[:]),
			rtrace.IntAttr("size", len(data)),
		),
	)
	defer span.End()

	l.mu.RLock()
	unchanged := l.hasHash && l.lastHash == hash
	l.mu.RUnlock()

	if unchanged {
		span.SetAttributes(rtrace.BoolAttr("unchanged", true))
		l.lastUpdate.Set(l.now())
		return false, nil
	}

	u, err := decodeList(l.log, data)
	if err != nil {
		rtrace.SpanError(span, err)
		span.SetAttributes(rtrace.ErrorAttr(err))
		l.log.Warn(
			"Can not get resource group list",
			"err", err,
			"size", len(data),
		)
		return false, err
	}

	l.apply(u, hash)

	if save && l.cache != nil {
		if err := l.cache.Save(data); err != nil {
			// The list itself was updated, so this is not a parse failure.
			l.log.Warn("Unable to save resource group list cache", "path", l.cache.Path(), "err", err)
		}
	}

	l.log.Debug("Updated resource group list", "groups", len(u.groups), "freq", l.Freq())
	return true, nil
}

// listUpdate is a decoded document, not yet applied to a List.
type listUpdate struct {
	freq    int
	hasFreq bool
	groups  []*Group
}

func decodeList(log *slog.Logger, data []byte) (listUpdate, error) {
	o, err := parseObject(data)
	if err != nil {
		return listUpdate{}, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if len(o) == 0 {
		return listUpdate{}, ErrEmpty
	}

	var u listUpdate
	if o.has("freq") {
		u.freq = o.int("freq")
		u.hasFreq = true
	}

	groupsJSON := o.array("groups")
	if o.has("resources") {
		if !o.bool("success") {
			return listUpdate{}, ErrUnsuccessful
		}
		groupsJSON = o.object("resources").array("groups")
	}

	u.groups = make([]*Group, 0, len(groupsJSON))
	for _, raw := range groupsJSON {
		gobj, err := parseObject(raw)
		if err != nil {
			log.Info("Unable to get json object for resource group", "err", err)
			continue
		}
		u.groups = append(u.groups, parseGroup(log, gobj))
	}

	return u, nil
}

// apply replaces the groups with those of u
// and publishes the resulting changes.
func (l *List) apply(u listUpdate, hash [sha256.Size]byte) {
	if u.hasFreq {
		l.SetFreq(u.freq)
	}

	lt := rpl.NewLifetime(l.log)
	for i, g := range u.groups {
		g.IconChanges().StartWithNext(func(rpl.Empty) {
			l.onIconChanged(i, g)
		}, lt)
	}

	l.mu.Lock()
	old := l.groupsLifetime
	l.groups = u.groups
	l.iconsLoaded = bitset.New(uint(len(u.groups)))
	l.groupsLifetime = lt
	l.lastHash = hash
	l.hasHash = true
	l.mu.Unlock()

	old.End()

	l.lastUpdate.Set(l.now())
	l.updated.Fire(rpl.Empty{})
}

func (l *List) onIconChanged(i int, g *Group) {
	l.mu.Lock()
	current := i < len(l.groups) && l.groups[i] == g
	if current {
		l.iconsLoaded.Set(uint(i))
	}
	l.mu.Unlock()

	if current {
		l.iconChanges.Fire(i)
	}
}

// Close completes every subscription to l's producers
// and stops forwarding group icon changes.
func (l *List) Close() {
	l.mu.Lock()
	lt := l.groupsLifetime
	l.mu.Unlock()

	lt.End()
	l.updated.Close()
	l.iconChanges.Close()
	l.freq.Close()
	l.lastUpdate.Close()
}
