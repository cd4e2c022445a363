// Package optidash provides a client for a remote image-processing
// API. Images are delivered either by uploading the bytes or by
// pointing the service at an already-hosted URL; results come back as
// parsed metadata, a file on disk, or an in-memory buffer.
//
// # Building a Client
//
// Use [New] with the account API key and any functional options:
//
//	c, err := optidash.New(apiKey,
//		optidash.WithTimeout(30 * time.Second),
//		optidash.WithUserAgent("myapp/1.0"),
//	)
//
// # Request Chains
//
// A request chain selects one input, any number of processing
// operations, and exactly one terminal sink:
//
//	meta, err := c.Fetch("https://example.com/image.jpg").
//		Resize(optidash.Resize{Width: 100}).
//		Auto(optidash.Auto{Enhance: true}).
//		ToJSON(ctx)
//
// Upload and fetch are mutually exclusive on one chain, as are the
// terminal sinks; violations surface as configuration errors at the
// terminal call, never as panics mid-chain.
//
// # Binary Sinks
//
// [Request.ToFile], [Request.ToWriter], and [Request.ToBuffer] ask the
// service for raw image bytes. The response metadata rides in a
// dedicated header and is checked for failure before any body bytes
// are delivered:
//
//	meta, err := c.Upload("input.jpg").
//		Output(optidash.Output{Format: "webp"}).
//		ToFile(ctx, "output.webp")
//
// # Async Dispatch
//
// Every sink has an Async variant returning a [Result] that resolves
// exactly once:
//
//	res := c.Fetch(srcURL).ToJSONAsync(ctx)
//	// ... do other work ...
//	if err := res.Err(); err != nil { ... }
//
// For the dispatch internals see the
// [github.com/adamwoolhether/optidash/dispatch] package.
package optidash
