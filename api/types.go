package api

import (
	"cosmossdk.io/math"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// HealthResponse reports the sandbox clock
type HealthResponse struct {
	Status    string `json:"status"`
	Height    int64  `json:"height"`
	BlockTime int64  `json:"block_time"`
}

// QuoteResponse is a single pool quote
type QuoteResponse struct {
	Offer types.Asset              `json:"offer"`
	Ask   types.AssetInfo          `json:"ask"`
	Quote types.SimulationResponse `json:"quote"`
}

// RouteQuoteResponse is a swap chain quote
type RouteQuoteResponse struct {
	OfferAmount math.Int                             `json:"offer_amount"`
	Operations  []types.SwapOperation                `json:"operations"`
	Quote       types.SimulateSwapOperationsResponse `json:"quote"`
}

// ShareResponse is the refund a share amount would withdraw
type ShareResponse struct {
	Amount math.Int       `json:"amount"`
	Assets [2]types.Asset `json:"assets"`
}
