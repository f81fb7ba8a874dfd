// Package sandbox hosts the pool manager outside a chain: an in-memory
// multistore, a store-backed bank and token ledger, and a block clock.
package sandbox

import (
	"fmt"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	"github.com/cometbft/cometbft/crypto"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/colada-chain/colada/x/poolmanager/keeper"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

const (
	// StoreKey names the store of the bank and token ledger
	StoreKey = "sandbox"

	// GenesisTime is the block time of the first sandbox block.
	GenesisTime int64 = 1_700_000_000

	chainID = "colada-sandbox"
)

// App wires a pool manager keeper to sandbox collaborators.
type App struct {
	cms    storetypes.CommitMultiStore
	logger log.Logger
	header cmtproto.Header

	Keeper  keeper.Keeper
	Querier keeper.Querier
	Bank    Bank
	Tokens  TokenLedger
}

// New builds an empty sandbox at height 1.
func New(logger log.Logger) (*App, error) {
	poolKey := storetypes.NewKVStoreKey(types.StoreKey)
	sandboxKey := storetypes.NewKVStoreKey(StoreKey)

	db := dbm.NewMemDB()
	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	cms.MountStoreWithDB(poolKey, storetypes.StoreTypeIAVL, db)
	cms.MountStoreWithDB(sandboxKey, storetypes.StoreTypeIAVL, db)
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("load sandbox stores: %w", err)
	}

	bank := NewBank(sandboxKey)
	tokens := NewTokenLedger(sandboxKey)
	k := keeper.NewKeeper(poolKey, bank, tokens, Authority())

	app := &App{
		cms:    cms,
		logger: logger,
		header: cmtproto.Header{
			ChainID: chainID,
			Height:  1,
			Time:    time.Unix(GenesisTime, 0).UTC(),
		},
		Keeper:  k,
		Querier: keeper.NewQuerier(k),
		Bank:    bank,
		Tokens:  tokens,
	}
	if err := k.InitGenesis(app.Context(), *types.DefaultGenesis()); err != nil {
		return nil, fmt.Errorf("init genesis: %w", err)
	}
	return app, nil
}

// Context returns a context of the current block. Writes go straight to the
// working state and are committed by NextBlock.
func (a *App) Context() sdk.Context {
	return sdk.NewContext(a.cms, a.header, false, a.logger)
}

// NextBlock commits the current block and advances height by one and time
// by blockTime.
func (a *App) NextBlock(blockTime time.Duration) {
	a.cms.Commit()
	a.header.Height++
	a.header.Time = a.header.Time.Add(blockTime)
}

// Height returns the current block height
func (a *App) Height() int64 {
	return a.header.Height
}

// BlockTime returns the current block time
func (a *App) BlockTime() time.Time {
	return a.header.Time
}

// Authority is the address allowed to update pool parameters.
func Authority() string {
	return authtypes.NewModuleAddress("gov").String()
}

// Addr derives a stable account address from a name.
func Addr(name string) sdk.AccAddress {
	return sdk.AccAddress(crypto.AddressHash([]byte(name)))
}

// TokenAddr derives the contract address of a named token.
func TokenAddr(name string) sdk.AccAddress {
	return Addr("token:" + name)
}
