package cli

// Flag constants for poolmanager CLI commands
const (
	FlagScenario = "scenario"

	// Sender flags
	FlagFrom     = "from"
	FlagReceiver = "to"

	// Swap flags
	FlagBeliefPrice    = "belief-price"
	FlagMaxSpread      = "max-spread"
	FlagMinimumReceive = "minimum-receive"

	// Liquidity flags
	FlagSlippageTolerance = "slippage-tolerance"

	// Pagination flags
	FlagLimit  = "limit"
	FlagOffset = "offset"
)
