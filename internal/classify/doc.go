// Package classify assigns indexer, horizon and rating classes to parsed
// values. All functions are pure.
package classify
