package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
)

const (
	// ModuleName defines the module name
	ModuleName = "poolmanager"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// RouterName names the escrow account that holds intermediate assets of a swap chain
	RouterName = ModuleName + "_router"

	// LockedLiquidityName names the holder of the permanently locked minimum liquidity
	LockedLiquidityName = ModuleName + "_locked_liquidity"

	// LPDenomPrefix prefixes every liquidity share denom
	LPDenomPrefix = ModuleName + "/pool/"
)

// ModuleAddress holds every pool's reserves.
func ModuleAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(ModuleName)
}

// RouterAddress is the escrow of in-flight swap chains.
func RouterAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(RouterName)
}

// NullHolderAddress receives the minimum liquidity of every pool. Nothing can spend from it.
func NullHolderAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(LockedLiquidityName)
}
