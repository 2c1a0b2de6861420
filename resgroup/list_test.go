package resgroup_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bettergram/rpl"
	"github.com/bettergram/rpl/internal/rtest"
	"github.com/bettergram/rpl/resgroup"
	"github.com/bettergram/rpl/rpltest"
	"github.com/stretchr/testify/require"
)

const twoGroups = `{
	"freq": 600,
	"groups": [
		{
			"title": "News",
			"icon": "https://example.com/news.png",
			"resources": [
				{"title": "Daily", "description": "Daily digest", "url": "https://example.com/daily", "icon": "d.png"},
				"not an object",
				{"title": "Weekly", "url": "https://example.com/weekly"}
			]
		},
		42,
		{"title": "Tools"}
	]
}`

const wrapped = `{
	"success": true,
	"resources": {"groups": [{"title": "Wrapped"}]}
}`

// fakeClock is a settable clock for ListConfig.Now.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestList(t *testing.T, clock *fakeClock, cachePath string) *resgroup.List {
	t.Helper()

	l := resgroup.NewList(rtest.NewLogger(t), resgroup.ListConfig{
		CachePath: cachePath,
		Now:       clock.Now,
	})
	t.Cleanup(l.Close)
	return l
}

func TestList_Parse_groups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	l := newTestList(t, clock, "")

	require.True(t, l.IsEmpty())
	require.Equal(t, resgroup.DefaultFreq, l.Freq())
	require.True(t, l.LastUpdate().IsZero())
	require.Equal(t, "Last update: never", l.LastUpdateString())

	updates := rpltest.NewRecorder[rpl.Empty, rpl.NoError]()
	defer updates.Start(l.Updated()).End()

	changed, err := l.Parse(ctx, []byte(twoGroups))
	require.NoError(t, err)
	require.True(t, changed)

	// The non-object group was skipped.
	require.Equal(t, 2, l.Count())
	require.Equal(t, 600, l.Freq())
	require.Equal(t, clock.Now(), l.LastUpdate())
	require.Equal(t, "Last update: 09:30", l.LastUpdateString())
	require.Len(t, updates.Values(), 1)

	news, err := l.At(0)
	require.NoError(t, err)
	require.Equal(t, "News", news.Title)
	require.Equal(t, "https://example.com/news.png", news.IconURL)
	require.Equal(t, []resgroup.Resource{
		{Title: "Daily", Description: "Daily digest", URL: "https://example.com/daily", IconURL: "d.png"},
		{Title: "Weekly", URL: "https://example.com/weekly"},
	}, news.Resources)

	var titles []string
	for i, g := range l.All() {
		require.Equal(t, len(titles), i)
		titles = append(titles, g.Title)
	}
	require.Equal(t, []string{"News", "Tools"}, titles)
}

func TestList_Parse_wrappedResponse(t *testing.T) {
	t.Parallel()

	l := newTestList(t, newFakeClock(), "")

	changed, err := l.Parse(context.Background(), []byte(wrapped))
	require.NoError(t, err)
	require.True(t, changed)

	g, err := l.At(0)
	require.NoError(t, err)
	require.Equal(t, "Wrapped", g.Title)

	// Without freq in the document, the default is kept.
	require.Equal(t, resgroup.DefaultFreq, l.Freq())
}

func TestList_Parse_invalidKeepsState(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		data string
		want error
	}{
		{name: "array", data: `[1, 2]`, want: resgroup.ErrNotObject},
		{name: "malformed", data: `{"groups": [`, want: resgroup.ErrNotObject},
		{name: "empty input", data: ``, want: resgroup.ErrNotObject},
		{name: "empty object", data: `{}`, want: resgroup.ErrEmpty},
		{name: "unsuccessful", data: `{"success": false, "freq": 5, "resources": {"groups": []}}`, want: resgroup.ErrUnsuccessful},
		{name: "missing success", data: `{"resources": {"groups": []}}`, want: resgroup.ErrUnsuccessful},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			clock := newFakeClock()
			l := newTestList(t, clock, "")

			_, err := l.Parse(ctx, []byte(twoGroups))
			require.NoError(t, err)
			before := l.LastUpdate()

			updates := rpltest.NewRecorder[rpl.Empty, rpl.NoError]()
			defer updates.Start(l.Updated()).End()

			clock.Advance(time.Minute)
			changed, err := l.Parse(ctx, []byte(tc.data))
			require.ErrorIs(t, err, tc.want)
			require.False(t, changed)

			require.Equal(t, 2, l.Count())
			require.Equal(t, 600, l.Freq())
			require.Equal(t, before, l.LastUpdate())
			updates.RequireNoSignals(t)
		})
	}
}

func TestList_Parse_unchangedOnlyRefreshesLastUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	l := newTestList(t, clock, "")

	_, err := l.Parse(ctx, []byte(twoGroups))
	require.NoError(t, err)
	first, err := l.At(0)
	require.NoError(t, err)

	updates := rpltest.NewRecorder[rpl.Empty, rpl.NoError]()
	defer updates.Start(l.Updated()).End()
	lastUpdates := rpltest.NewRecorder[time.Time, rpl.NoError]()
	defer lastUpdates.Start(l.LastUpdateChanges()).End()

	clock.Advance(time.Hour)
	changed, err := l.Parse(ctx, []byte(twoGroups))
	require.NoError(t, err)
	require.False(t, changed)

	same, err := l.At(0)
	require.NoError(t, err)
	require.Same(t, first, same)

	updates.RequireNoSignals(t)
	require.Equal(t, []time.Time{clock.Now()}, lastUpdates.Values())
}

func TestList_freq(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newTestList(t, newFakeClock(), "")

	changes := rpltest.NewRecorder[int, rpl.NoError]()
	defer changes.Start(l.FreqChanges()).End()
	values := rpltest.NewRecorder[int, rpl.NoError]()
	defer values.Start(l.FreqValue()).End()

	l.SetFreq(resgroup.DefaultFreq)
	l.SetFreq(60)
	l.SetFreq(60)
	l.SetFreq(-1)

	_, err := l.Parse(ctx, []byte(`{"freq": "soon", "groups": []}`))
	require.NoError(t, err)
	require.Equal(t, resgroup.DefaultFreq, l.Freq())

	_, err = l.Parse(ctx, []byte(`{"freq": 120, "groups": []}`))
	require.NoError(t, err)

	require.Equal(t, []int{60, resgroup.DefaultFreq, 120}, changes.Values())
	require.Equal(t, []int{resgroup.DefaultFreq, 60, resgroup.DefaultFreq, 120}, values.Values())
}

func TestList_At_outOfRange(t *testing.T) {
	t.Parallel()

	l := newTestList(t, newFakeClock(), "")

	_, err := l.At(0)
	require.ErrorIs(t, err, resgroup.ErrIndexOutOfRange)
	_, err = l.At(-1)
	require.ErrorIs(t, err, resgroup.ErrIndexOutOfRange)
}

func TestList_icons(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newTestList(t, newFakeClock(), "")

	_, err := l.Parse(ctx, []byte(twoGroups))
	require.NoError(t, err)

	icons := rpltest.NewRecorder[int, rpl.NoError]()
	defer icons.Start(l.IconChanges()).End()

	tools, err := l.At(1)
	require.NoError(t, err)

	loaded, total := l.IconsLoaded()
	require.Zero(t, loaded)
	require.Equal(t, 2, total)

	tools.SetIcon([]byte("png"))
	require.Equal(t, []byte("png"), tools.Icon())
	require.Equal(t, []int{1}, icons.Values())

	loaded, _ = l.IconsLoaded()
	require.Equal(t, 1, loaded)

	// Once replaced, old groups no longer affect the list.
	_, err = l.Parse(ctx, []byte(wrapped))
	require.NoError(t, err)
	tools.SetIcon([]byte("png2"))

	require.Equal(t, []int{1}, icons.Values())
	loaded, total = l.IconsLoaded()
	require.Zero(t, loaded)
	require.Equal(t, 1, total)
}

func TestList_cache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cachePath := filepath.Join(t.TempDir(), "resources.cache")

	l := newTestList(t, newFakeClock(), cachePath)

	// Nothing cached yet.
	changed, err := l.LoadCache(ctx)
	require.NoError(t, err)
	require.False(t, changed)

	_, err = l.Parse(ctx, []byte(twoGroups))
	require.NoError(t, err)

	// Invalid documents do not overwrite the cache.
	_, err = l.Parse(ctx, []byte(`{}`))
	require.Error(t, err)

	l2 := newTestList(t, newFakeClock(), cachePath)
	changed, err = l2.LoadCache(ctx)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, 2, l2.Count())
	require.Equal(t, 600, l2.Freq())

	// The cached document counts as the last one seen.
	changed, err = l2.Parse(ctx, []byte(twoGroups))
	require.NoError(t, err)
	require.False(t, changed)
}

func TestList_ParseFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	l := newTestList(t, newFakeClock(), "")

	_, err := l.ParseFile(ctx, filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "groups.json")
	require.NoError(t, os.WriteFile(path, []byte(wrapped), 0o600))

	changed, err := l.ParseFile(ctx, path)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, 1, l.Count())
}

func TestList_Close(t *testing.T) {
	t.Parallel()

	l := resgroup.NewList(rtest.NewLogger(t), resgroup.ListConfig{})

	updates := rpltest.NewRecorder[rpl.Empty, rpl.NoError]()
	lt := updates.Start(l.Updated())

	freq := rpltest.NewRecorder[int, rpl.NoError]()
	freqLt := freq.Start(l.FreqValue())

	lastUpdate := rpltest.NewRecorder[time.Time, rpl.NoError]()
	lastUpdateLt := lastUpdate.Start(l.LastUpdateChanges())

	l.Close()
	require.True(t, lt.Ended())
	updates.RequireSignals(t, rpltest.Done[rpl.Empty, rpl.NoError]())

	require.True(t, freqLt.Ended())
	freq.RequireSignals(t,
		rpltest.Next[int, rpl.NoError](resgroup.DefaultFreq),
		rpltest.Done[int, rpl.NoError](),
	)

	require.True(t, lastUpdateLt.Ended())
	lastUpdate.RequireSignals(t, rpltest.Done[time.Time, rpl.NoError]())
}
