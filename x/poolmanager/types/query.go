package types

import (
	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/types/query"
)

// SimulationResponse quotes a single-pool swap.
type SimulationResponse struct {
	ReturnAmount     math.Int `json:"return_amount"`
	SpreadAmount     math.Int `json:"spread_amount"`
	CommissionAmount math.Int `json:"commission_amount"`
}

// SimulateSwapOperationsResponse quotes a swap chain.
type SimulateSwapOperationsResponse struct {
	Amount math.Int             `json:"amount"`
	Hops   []SimulationResponse `json:"hops"`
}

// PoolResponse is a pool together with its share supply.
type PoolResponse struct {
	Pool       Pool     `json:"pool"`
	TotalShare math.Int `json:"total_share"`
}

// QueryPoolsRequest pages through the pools in pair key order.
type QueryPoolsRequest struct {
	Pagination *query.PageRequest `json:"pagination,omitempty"`
}

// QueryPoolsResponse is a page of pools.
type QueryPoolsResponse struct {
	Pools      []PoolResponse      `json:"pools"`
	Pagination *query.PageResponse `json:"pagination,omitempty"`
}

// ComputeDResponse reports the invariant of a pool at the current block time.
type ComputeDResponse struct {
	D math.LegacyDec `json:"d"`
	// VirtualPrice is the invariant value per share, zero for an empty pool.
	VirtualPrice math.LegacyDec `json:"virtual_price"`
}

// BalanceAtResponse is a historical reserve.
type BalanceAtResponse struct {
	Height uint64   `json:"height"`
	Amount math.Int `json:"amount"`
}
