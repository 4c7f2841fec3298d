// Package board implements the notice scraping pipeline: URL resolution,
// the listing walker, detail extraction, content rewriting, and the single
// control loop that ties them to the downloader and the aggregate.
package board
