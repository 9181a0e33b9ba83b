package aggregate

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	aggregateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokedex_aggregate_duration_seconds",
		Help:    "Time to expand one list page into detail records",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"policy"})

	aggregateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokedex_aggregate_failures_total",
		Help: "Detail fetches that failed during aggregation, by join policy",
	}, []string{"policy"})
)

// Policy selects how the join treats failed fetches.
type Policy string

const (
	// AllOrNothing fails the whole batch when any fetch fails.
	AllOrNothing Policy = "all-or-nothing"

	// SettleAll keeps successful records and reports failures separately.
	SettleAll Policy = "settle-all"
)

// ParsePolicy maps a configuration string to a Policy. Empty means AllOrNothing.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", AllOrNothing:
		return AllOrNothing, nil
	case SettleAll:
		return SettleAll, nil
	default:
		return "", fmt.Errorf("unknown join policy %q", s)
	}
}

// Fetcher expands a single list entry. *pokeapi.API implements it.
type Fetcher interface {
	Detail(ctx context.Context, entry pokeapi.ListEntry) (pokeapi.Pokemon, error)
}

// ListTarget receives an aggregated page.
type ListTarget interface {
	ClearList()
	AppendCard(p pokeapi.Pokemon)
}

// Config holds aggregator configuration.
type Config struct {
	// MaxConcurrency bounds in-flight detail fetches; 0 means unbounded.
	MaxConcurrency int

	// Policy is the join policy used by Render.
	Policy Policy
}

// DefaultConfig returns an unbounded all-or-nothing configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 0,
		Policy:         AllOrNothing,
	}
}

// Failure records one entry whose detail fetch failed.
type Failure struct {
	Entry pokeapi.ListEntry
	Err   error
}

// BatchError is returned by Aggregate when at least one fetch failed.
type BatchError struct {
	Total    int
	Failures []Failure
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if len(e.Failures) == 0 {
		return fmt.Sprintf("0 of %d detail fetches failed", e.Total)
	}
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, f.Entry.Name)
	}
	return fmt.Sprintf("%d of %d detail fetches failed (%s): %v",
		len(e.Failures), e.Total, strings.Join(names, ", "), e.Failures[0].Err)
}

// Unwrap exposes every underlying fetch error to errors.Is/As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Result is the outcome of Settle.
type Result struct {
	Records  []pokeapi.Pokemon
	Failures []Failure
}

// Aggregator fans out detail fetches for a page of list entries.
type Aggregator struct {
	fetcher Fetcher
	config  Config
	logger  zerolog.Logger
}

// New creates an aggregator.
func New(fetcher Fetcher, config Config) *Aggregator {
	if config.MaxConcurrency < 0 {
		config.MaxConcurrency = 0
	}
	if config.Policy == "" {
		config.Policy = AllOrNothing
	}

	return &Aggregator{
		fetcher: fetcher,
		config:  config,
		logger:  log.With().Str("component", "aggregate").Logger(),
	}
}

// Policy returns the configured join policy.
func (a *Aggregator) Policy() Policy {
	return a.config.Policy
}

// Aggregate fetches every entry and returns the records sorted by ID.
// If any fetch fails the result is nil and the error is a *BatchError.
func (a *Aggregator) Aggregate(ctx context.Context, entries []pokeapi.ListEntry) ([]pokeapi.Pokemon, error) {
	res := a.run(ctx, entries, AllOrNothing)
	if len(res.Failures) > 0 {
		return nil, &BatchError{Total: len(entries), Failures: res.Failures}
	}
	return res.Records, nil
}

// Settle fetches every entry and returns the sorted successes together with
// the failures.
func (a *Aggregator) Settle(ctx context.Context, entries []pokeapi.ListEntry) Result {
	return a.run(ctx, entries, SettleAll)
}

// Render aggregates entries under the configured policy and writes the page to
// target. Under AllOrNothing a failure leaves target untouched. Under
// SettleAll the successes are rendered and a *BatchError describing the
// failures is still returned.
func (a *Aggregator) Render(ctx context.Context, entries []pokeapi.ListEntry, target ListTarget) error {
	var (
		records []pokeapi.Pokemon
		err     error
	)

	if a.config.Policy == SettleAll {
		res := a.Settle(ctx, entries)
		records = res.Records
		if len(res.Failures) > 0 {
			err = &BatchError{Total: len(entries), Failures: res.Failures}
		}
	} else {
		records, err = a.Aggregate(ctx, entries)
		if err != nil {
			return err
		}
	}

	target.ClearList()
	for _, p := range records {
		target.AppendCard(p)
	}
	return err
}

func (a *Aggregator) run(ctx context.Context, entries []pokeapi.ListEntry, policy Policy) Result {
	if len(entries) == 0 {
		return Result{Records: []pokeapi.Pokemon{}}
	}

	start := time.Now()
	defer func() {
		aggregateDuration.WithLabelValues(string(policy)).Observe(time.Since(start).Seconds())
	}()

	records := make([]pokeapi.Pokemon, len(entries))
	errs := make([]error, len(entries))

	// A plain Group: one failure must not cancel the siblings.
	var g errgroup.Group
	if a.config.MaxConcurrency > 0 {
		g.SetLimit(a.config.MaxConcurrency)
	}

	for i, entry := range entries {
		g.Go(func() error {
			p, err := a.fetcher.Detail(ctx, entry)
			if err != nil {
				errs[i] = err
				return nil
			}
			records[i] = p
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Records: make([]pokeapi.Pokemon, 0, len(entries))}
	for i, err := range errs {
		if err != nil {
			a.logger.Warn().
				Err(err).
				Str("pokemon", entries[i].Name).
				Msg("Detail fetch failed")
			res.Failures = append(res.Failures, Failure{Entry: entries[i], Err: err})
			continue
		}
		res.Records = append(res.Records, records[i])
	}

	slices.SortStableFunc(res.Records, func(x, y pokeapi.Pokemon) int {
		return cmp.Compare(x.ID, y.ID)
	})

	if len(res.Failures) > 0 {
		aggregateFailures.WithLabelValues(string(policy)).Add(float64(len(res.Failures)))
	}

	a.logger.Debug().
		Int("entries", len(entries)).
		Int("records", len(res.Records)).
		Int("failures", len(res.Failures)).
		Str("policy", string(policy)).
		Dur("duration", time.Since(start)).
		Msg("Aggregation complete")

	return res
}
