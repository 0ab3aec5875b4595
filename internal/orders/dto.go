package orders

import "github.com/google/uuid"

// MoveResult reports a folder move: ids written to the destination and ids
// that could not be resolved in the source partition.
type MoveResult struct {
	Moved   []uuid.UUID `json:"moved"`
	Skipped []uuid.UUID `json:"skipped"`
}
