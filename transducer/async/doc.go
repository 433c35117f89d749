// Package async mirrors the transducer operators for sources that must be
// awaited. Every reducer phase takes a context, callbacks may block, and the
// driver pulls items from a source.Iterator.
//
// The operators behave exactly like their counterparts in the parent
// package; only the calling convention differs.
package async
