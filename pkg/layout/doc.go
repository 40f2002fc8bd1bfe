// Package layout places museum tiles on a canvas.
//
// The engine is a pure function of its inputs and a seeded random source:
//
//  1. Shuffle the items (Fisher-Yates) so category order never leaks into
//     visual order.
//  2. Split the canvas into a rows x cols grid with
//     cols = ceil(sqrt(n * width/height)) and rows = ceil(n / cols).
//  3. Derive one jittered candidate [museum.Slot] per cell and shuffle the
//     slots independently of the items.
//  4. Give each item the first unused slot that keeps a minimum distance to
//     every tile placed so far, probing at most MaxAttempts slots before
//     falling back to an unconstrained random position.
//  5. Sample a size from a small set, a bounded rotation and a depth index
//     that grows with size, then clamp the tile inside the canvas.
//
// Overlap is accepted when the canvas is crowded; containment is not
// negotiable. Every returned placement satisfies
// 0 <= x <= width-size and 0 <= y <= height-size.
//
// # Determinism
//
// Identical items, canvas and [Options.Seed] produce identical placements.
// A zero seed draws a random one; [Result.Seed] reports the seed that was
// used so any layout can be reproduced:
//
//	res, err := layout.Compute(items, 800, 600, layout.Options{Seed: 42})
package layout
