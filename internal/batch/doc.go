// Package batch checks a tree of component fixtures.
//
// Fixtures are discovered with doublestar patterns over a fastwalk
// traversal, sniffed with mimetype (binary files are rejected) and checked
// for UTF-8, with chardet naming the encoding of sources that are not.
// Each fixture is compiled and its selected frames rendered, in-process or
// against a running server, by a pool of workers. Fixtures named *.fail.*
// are expected to produce a diagnostic.
//
// The report carries per-fixture outcomes and gonum summary statistics of
// compile time.
package batch
