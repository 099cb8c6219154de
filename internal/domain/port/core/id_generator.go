package core

// ProcessIDGenerator produces shop process ids for new transactions.
// Ids are purely numeric, fit a signed 64-bit integer and are unique with overwhelming
// probability across concurrent callers. The store's unique index remains the backstop.
type ProcessIDGenerator interface {
	Next() string
}
