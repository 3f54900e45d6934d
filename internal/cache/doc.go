// Package cache provides the tiered caching system for PokeAPI data.
// It includes an in-memory LRU tier, a persistent JSON-on-disk tier and
// a content-addressed image store, coordinated by a Manager with
// read-through and write-through semantics.
package cache
