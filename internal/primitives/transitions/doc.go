// Package transitions lays out transition series: sequences played back to
// back where each transition overlaps the tail of one sequence with the head
// of the next. It also defines the timings (linear, spring) and presentations
// (fade, slide, wipe, flip, clockWipe) a transition can use.
package transitions
