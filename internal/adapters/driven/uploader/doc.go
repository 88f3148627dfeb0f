// Package uploader builds the per-cycle upload queue from synchronised
// folders and drains it through a driven.Transport.
//
// A cycle snapshots every syncing folder once, keeps the media files that
// match the folder's media type and are not yet in the sent ledger, and
// uploads them one at a time with a pacing delay between transfers.
// A file is marked sent only after its transport call succeeds, so a failed
// or cancelled cycle leaves the remainder for the next one.
package uploader
