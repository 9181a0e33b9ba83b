// Package aggregate expands a page of PokeAPI list entries into detail records.
//
// Every entry is fetched concurrently and the join waits for all of them.
// The default policy is all-or-nothing: a single failed fetch fails the
// batch and nothing is rendered. SettleAll keeps the successes and reports
// the failures next to them.
//
// Results are sorted ascending by pokemon ID once the join completes, so the
// output order never depends on which fetch finished first.
//
// Example usage:
//
//	agg := aggregate.New(pokeapi.New(c), aggregate.DefaultConfig())
//	records, err := agg.Aggregate(ctx, page.Results)
//
// Fetches are not cancelled when a sibling fails; each one runs to completion
// or to its own timeout.
package aggregate
