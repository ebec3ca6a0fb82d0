// Package envdoc assembles the environment document consumed by the crop
// simulation engine.
//
// [Compose] resolves the crop, site and simulation documents concurrently,
// each against itself, and hands the resolved documents to [Assemble].
// Assembly is all-or-nothing: a missing required key aborts it without a
// partial result.
package envdoc
