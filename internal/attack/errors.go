package attack

import "errors"

// Sentinel errors for the query and loading surface. Use errors.Is to test
// for them across wrapping.
var (
	// ErrSourceUnavailable means every catalog source tier failed. The
	// subsystem must not serve queries until a load succeeds.
	ErrSourceUnavailable = errors.New("catalog source unavailable")

	// ErrNotInitialized means a query arrived before any snapshot was loaded.
	ErrNotInitialized = errors.New("knowledge base not initialized")

	// ErrInvalidQuery marks a programming-contract violation such as a
	// negative limit. Unknown types, empty strings, and empty lists are not
	// invalid queries; they degrade to empty or generic results.
	ErrInvalidQuery = errors.New("invalid query")
)
