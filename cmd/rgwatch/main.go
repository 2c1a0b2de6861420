// Command rgwatch keeps a resource group list up to date
// by polling a JSON document on disk.
//
// The poll period follows the freq field of the document itself.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/bettergram/rpl"
	"github.com/bettergram/rpl/resgroup"
	"github.com/bettergram/rpl/rtimer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "rgwatch.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}

	lvl, _ := cfg.level()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	list := resgroup.NewList(log.With("sys", "resgroup"), resgroup.ListConfig{
		CachePath:   cfg.Cache,
		DefaultFreq: cfg.Freq,
	})
	defer list.Close()

	if _, err := list.LoadCache(ctx); err != nil {
		log.Info("Ignoring unreadable cache", "err", err)
	}

	lt := rpl.NewLifetime(log)
	defer lt.End()

	list.Updated().StartWithNext(func(rpl.Empty) {
		log.Info("Resource group list updated", "groups", list.Count(), "freq", list.Freq())
	}, lt)

	// Parse errors are already logged by the list.
	_, _ = list.ParseFile(ctx, cfg.Source)

	watch(ctx, log, list, cfg.Source, time.Second, lt)

	<-ctx.Done()
	log.Info("Shutting down")
	return nil
}

// watch re-parses source every freq units of unit,
// restarting the timer whenever the list's frequency changes.
// Ending into stops polling.
func watch(
	ctx context.Context,
	log *slog.Logger,
	list *resgroup.List,
	source string,
	unit time.Duration,
	into *rpl.Lifetime,
) *poller {
	p := &poller{
		log:    log,
		list:   list,
		source: source,
		unit:   unit,
	}
	into.Add(p.stop)

	list.FreqValue().StartWithNext(func(freq int) {
		p.restart(ctx, freq)
	}, into)
	return p
}

// poller owns the single live polling subscription of a watch.
type poller struct {
	log    *slog.Logger
	list   *resgroup.List
	source string
	unit   time.Duration

	mu      sync.Mutex
	current *rpl.Lifetime
	period  time.Duration
	stopped bool
}

// restart replaces the current poll with one ticking every freq units.
// Calls are serialized by the frequency subscription.
func (p *poller) restart(ctx context.Context, freq int) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	old := p.current
	p.current = nil
	p.mu.Unlock()

	if old != nil {
		old.End()
	}

	period := time.Duration(freq) * p.unit
	p.log.Debug("Polling resource group list", "period", period)

	next := rtimer.Interval[rpl.NoError](period).Start(
		rpl.NewConsumer[time.Time, rpl.NoError](func(time.Time) {
			_, _ = p.list.ParseFile(ctx, p.source)
		}, nil, nil),
	)

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		next.End()
		return
	}
	p.current = next
	p.period = period
	p.mu.Unlock()
}

func (p *poller) stop() {
	p.mu.Lock()
	p.stopped = true
	cur := p.current
	p.current = nil
	p.mu.Unlock()

	if cur != nil {
		cur.End()
	}
}

// Current returns the period and lifetime of the live poll,
// or a nil lifetime once polling has stopped.
func (p *poller) Current() (time.Duration, *rpl.Lifetime) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.period, p.current
}
