package resgroup

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/bettergram/rpl"
)

// Resource is a single link inside a [Group].
type Resource struct {
	Title       string
	Description string
	URL         string
	IconURL     string
}

// Group is a titled collection of resources.
//
// The exported fields are set when the group is parsed
// and must not be modified afterward.
type Group struct {
	Title     string
	IconURL   string
	Resources []Resource

	mu   sync.Mutex
	icon []byte

	iconChanges rpl.EventStream[rpl.Empty, rpl.NoError]
}

func parseGroup(log *slog.Logger, o object) *Group {
	g := &Group{
		Title:   o.string("title"),
		IconURL: o.string("icon"),
	}

	for _, raw := range o.array("resources") {
		ro, err := parseObject(raw)
		if err != nil {
			log.Info("Unable to get json object for resource", "group", g.Title, "err", err)
			continue
		}

		g.Resources = append(g.Resources, Resource{
			Title:       ro.string("title"),
			Description: ro.string("description"),
			URL:         ro.string("url"),
			IconURL:     ro.string("icon"),
		})
	}

	return g
}

// Icon returns a copy of the loaded icon data,
// or nil if no icon has been set.
func (g *Group) Icon() []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.icon)
}

// SetIcon stores the loaded icon data for g
// and notifies [(*Group).IconChanges] subscribers.
func (g *Group) SetIcon(data []byte) {
	g.mu.Lock()
	g.icon = slices.Clone(data)
	g.mu.Unlock()

	g.iconChanges.Fire(rpl.Empty{})
}

// IconChanges returns a Producer notified on every [(*Group).SetIcon] call.
func (g *Group) IconChanges() rpl.Producer[rpl.Empty, rpl.NoError] {
	return g.iconChanges.Events()
}
