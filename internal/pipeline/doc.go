// Package pipeline runs report documents through a sequence of steps.
//
// A document is loaded from disk, handed to the extraction engine, written
// as JSON and optionally stored in the report database. Each stage is a Step
// that receives the document's Job and records its results on it.
//
// Documents are independent of each other, so the BatchProcessor runs many
// pipelines concurrently under an errgroup limit. A document that fails does
// not stop the batch; its error stays on its Job.
package pipeline
