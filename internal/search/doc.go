// Package search builds a TF-IDF vector space over a loaded corpus and ranks
// articles against free-text queries by cosine similarity.
//
// An Index is built once from a slice of articles and is read-only
// afterwards; it is safe for concurrent queries. Engine wraps an Index in an
// atomically swapped snapshot so the corpus can be reloaded while queries
// are in flight.
package search
