// Package testutil provides test utilities for schedeck, including:
//   - Miniredis helpers for the Redis action tracker (miniredis.go)
//   - Deck and summary snapshot fixtures (fixtures.go)
//
// None of the helpers require Docker.
package testutil
