// Package core provides the business logic for sheets and form entries.
//
// It holds all domain logic independent of any UI, transport or storage
// engine, so web handlers, the CLI and tests drive the same code.
//
// # Data model
//
// A [Sheet] is a name, an ordered header row and the form design for those
// headers ([FieldSettings]). Row data lives in [FormEntry] records keyed by
// header name. The spreadsheet grid is never stored; [ProjectGrid] derives it
// from headers and entries whenever it is needed.
//
// # Saving a grid
//
// [Service.SaveGrid] takes a grid whose row 0 is the header row:
//
//	svc.SaveGrid(ctx, core.SaveGridRequest{
//	    Name: "staff",
//	    Grid: [][]string{{"Name", "Age"}, {"Alice", "30"}},
//	})
//
// The save replaces the sheet's headers and every one of its entries in a
// single store transaction. Entries submitted through the form since the last
// grid save are discarded; [SaveResult.Replaced] reports how many. Passing
// ExpectedVersion turns the save into a compare-and-swap against
// [Sheet.Version].
//
// # Reading and exporting
//
// [Service.ReadSheet] is lenient and returns an empty view for an unknown
// name. [Service.ExportSheet] is strict and fails with [KindNotFound]. Both
// project the same grid; export runs it through the [Codec] under a
// [TranscodeLimiter].
//
// # Error Handling
//
// Every error carries a [Kind] (see [KindOf]). [MapError] turns an error into
// a client-safe [UserMessage] with a support code.
package core
