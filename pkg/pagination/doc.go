// Package pagination tracks the list offset and the next/previous links of
// the current PokeAPI list page.
//
// The controller holds a single offset. Next and previous offsets are derived
// from it and the page size; the state only changes when a page fetch succeeds
// and Apply is called, so a failed fetch leaves the controls as they were.
//
// Example usage:
//
//	pager := pagination.NewController(pagination.DefaultPageSize)
//	page, err := api.ListPage(ctx, pager.PageSize(), pager.NextOffset())
//	if err == nil {
//		pager.Apply(pager.NextOffset(), page.Next, page.Previous)
//	}
//
// Previous is enabled only when the API returned a previous link and the
// offset is non-zero.
package pagination
