package types

import (
	"cosmossdk.io/math"
)

// ObservationsSize is the capacity of each pool's observation ring buffer.
const ObservationsSize uint64 = 3000

// Observation accumulates the swap volume of one block timestamp.
type Observation struct {
	Timestamp   uint64         `json:"timestamp"`
	BaseAmount  math.Int       `json:"base_amount"`
	QuoteAmount math.Int       `json:"quote_amount"`
	Price       math.LegacyDec `json:"price"`
}

// ObservationBuffer tracks the ring buffer cursor of a pool.
type ObservationBuffer struct {
	Head uint64 `json:"head"`
	Len  uint64 `json:"len"`
}

// OracleObservation is the answer to an observe query.
type OracleObservation struct {
	Timestamp uint64         `json:"timestamp"`
	Price     math.LegacyDec `json:"price"`
}
