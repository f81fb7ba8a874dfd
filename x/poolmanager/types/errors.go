package types

import (
	"cosmossdk.io/errors"
)

// poolmanager module sentinel errors
var (
	ErrInvalidAsset               = errors.Register(ModuleName, 2, "asset does not belong to the pool")
	ErrDoublingAssetsPath         = errors.Register(ModuleName, 3, "doubling assets in swap path")
	ErrInvalidPathOperations      = errors.Register(ModuleName, 4, "invalid swap path operations")
	ErrNativeSwapUnsupported      = errors.Register(ModuleName, 5, "native swap operations are not supported")
	ErrExcessiveSpread            = errors.Register(ModuleName, 6, "operation exceeds max spread limit")
	ErrSlippageToleranceExceeded  = errors.Register(ModuleName, 7, "operation exceeds max slippage tolerance")
	ErrMinimumReceiveNotMet       = errors.Register(ModuleName, 8, "received amount is below the minimum receive")
	ErrInvalidZeroAmount          = errors.Register(ModuleName, 9, "amount must be greater than zero")
	ErrMinimumLiquidityAmount     = errors.Register(ModuleName, 10, "initial liquidity must be more than the minimum liquidity amount")
	ErrArithmeticOverflow         = errors.Register(ModuleName, 11, "arithmetic overflow")
	ErrInvariantDidNotConverge    = errors.Register(ModuleName, 12, "invariant computation did not converge")
	ErrPoolLocked                 = errors.Register(ModuleName, 13, "pool is locked by an operation in flight")
	ErrNotFound                   = errors.Register(ModuleName, 14, "not found")
	ErrIO                         = errors.Register(ModuleName, 15, "store io failure")
	ErrInvalidPrecision           = errors.Register(ModuleName, 16, "unsupported asset precision")
	ErrNegativeAmount             = errors.Register(ModuleName, 17, "amount must not be negative")
	ErrPoolExists                 = errors.Register(ModuleName, 18, "pool already exists")
	ErrInvalidParams              = errors.Register(ModuleName, 19, "invalid parameters")
	ErrAllowedSpreadAssertion     = errors.Register(ModuleName, 20, "allowed spread must be less than or equal to 50%")
	ErrLossForLPs                 = errors.Register(ModuleName, 21, "operation makes loss for liquidity providers")
	ErrInsufficientShares         = errors.Register(ModuleName, 22, "insufficient liquidity shares")
	ErrImbalancedWithdrawDisabled = errors.Register(ModuleName, 23, "imbalanced withdraw is disabled")
	ErrUnauthorized               = errors.Register(ModuleName, 24, "unauthorized")
	ErrMaxSwapOperations          = errors.Register(ModuleName, 25, "too many swap operations")
	ErrEmptyOperations            = errors.Register(ModuleName, 26, "must provide swap operations")
	ErrInvalidAddress             = errors.Register(ModuleName, 27, "invalid address")
	ErrInvalidRamp                = errors.Register(ModuleName, 28, "invalid amp/gamma ramp")
)
