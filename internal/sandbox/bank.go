package sandbox

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
)

var (
	balanceKeyPrefix  = []byte{0x01}
	supplyKeyPrefix   = []byte{0x02}
	metadataKeyPrefix = []byte{0x03}
)

// Bank is a minimal bank keeper. Balances, supplies and denom metadata live in
// the sandbox store, so they roll back together with the pool state when a
// cache context is discarded.
type Bank struct {
	storeKey storetypes.StoreKey
}

// NewBank returns a bank keeping its state under key
func NewBank(key storetypes.StoreKey) Bank {
	return Bank{storeKey: key}
}

func (b Bank) store(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(b.storeKey)
}

func balanceKey(addr sdk.AccAddress, denom string) []byte {
	key := append([]byte{}, balanceKeyPrefix...)
	key = append(key, addr...)
	key = append(key, 0x00)
	return append(key, []byte(denom)...)
}

func supplyKey(denom string) []byte {
	return append(append([]byte{}, supplyKeyPrefix...), []byte(denom)...)
}

func metadataKey(denom string) []byte {
	return append(append([]byte{}, metadataKeyPrefix...), []byte(denom)...)
}

func readInt(store storetypes.KVStore, key []byte) math.Int {
	bz := store.Get(key)
	if bz == nil {
		return math.ZeroInt()
	}
	var amount math.Int
	if err := amount.Unmarshal(bz); err != nil {
		panic(fmt.Sprintf("corrupt sandbox amount at %x: %s", key, err))
	}
	return amount
}

func writeInt(store storetypes.KVStore, key []byte, amount math.Int) {
	if amount.IsZero() {
		store.Delete(key)
		return
	}
	bz, err := amount.Marshal()
	if err != nil {
		panic(err)
	}
	store.Set(key, bz)
}

// GetBalance returns the balance of denom held by addr
func (b Bank) GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, readInt(b.store(ctx), balanceKey(addr, denom)))
}

// GetSupply returns the total supply of denom
func (b Bank) GetSupply(ctx context.Context, denom string) sdk.Coin {
	return sdk.NewCoin(denom, readInt(b.store(ctx), supplyKey(denom)))
}

// GetDenomMetaData returns the metadata registered for denom
func (b Bank) GetDenomMetaData(ctx context.Context, denom string) (banktypes.Metadata, bool) {
	bz := b.store(ctx).Get(metadataKey(denom))
	if bz == nil {
		return banktypes.Metadata{}, false
	}
	var metadata banktypes.Metadata
	if err := json.Unmarshal(bz, &metadata); err != nil {
		return banktypes.Metadata{}, false
	}
	return metadata, true
}

// SetDenomMetaData registers metadata for its base denom
func (b Bank) SetDenomMetaData(ctx context.Context, metadata banktypes.Metadata) error {
	bz, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	b.store(ctx).Set(metadataKey(metadata.Base), bz)
	return nil
}

// RegisterDenom is a shortcut for metadata with a base unit and one display
// unit precision digits above it.
func (b Bank) RegisterDenom(ctx context.Context, base, display string, precision uint32) error {
	return b.SetDenomMetaData(ctx, banktypes.Metadata{
		Base:    base,
		Display: display,
		DenomUnits: []*banktypes.DenomUnit{
			{Denom: base, Exponent: 0},
			{Denom: display, Exponent: precision},
		},
	})
}

// SendCoins moves amt from one account to another
func (b Bank) SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error {
	if !amt.IsValid() {
		return sdkerrors.ErrInvalidCoins.Wrap(amt.String())
	}
	store := b.store(ctx)
	for _, coin := range amt {
		from := readInt(store, balanceKey(fromAddr, coin.Denom))
		if from.LT(coin.Amount) {
			return sdkerrors.ErrInsufficientFunds.Wrapf("%s has %s%s, needs %s", fromAddr, from, coin.Denom, coin)
		}
		writeInt(store, balanceKey(fromAddr, coin.Denom), from.Sub(coin.Amount))
		to := readInt(store, balanceKey(toAddr, coin.Denom))
		writeInt(store, balanceKey(toAddr, coin.Denom), to.Add(coin.Amount))
	}
	return nil
}

// MintCoins creates amt in the account of moduleName
func (b Bank) MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error {
	if !amt.IsValid() {
		return sdkerrors.ErrInvalidCoins.Wrap(amt.String())
	}
	store := b.store(ctx)
	module := authtypes.NewModuleAddress(moduleName)
	for _, coin := range amt {
		writeInt(store, supplyKey(coin.Denom), readInt(store, supplyKey(coin.Denom)).Add(coin.Amount))
		writeInt(store, balanceKey(module, coin.Denom), readInt(store, balanceKey(module, coin.Denom)).Add(coin.Amount))
	}
	return nil
}

// BurnCoins destroys amt held by moduleName
func (b Bank) BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error {
	if !amt.IsValid() {
		return sdkerrors.ErrInvalidCoins.Wrap(amt.String())
	}
	store := b.store(ctx)
	module := authtypes.NewModuleAddress(moduleName)
	for _, coin := range amt {
		held := readInt(store, balanceKey(module, coin.Denom))
		if held.LT(coin.Amount) {
			return sdkerrors.ErrInsufficientFunds.Wrapf("module %s has %s%s, burning %s", moduleName, held, coin.Denom, coin)
		}
		writeInt(store, balanceKey(module, coin.Denom), held.Sub(coin.Amount))
		writeInt(store, supplyKey(coin.Denom), readInt(store, supplyKey(coin.Denom)).Sub(coin.Amount))
	}
	return nil
}

// SendCoinsFromModuleToAccount pays amt out of a module account
func (b Bank) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	return b.SendCoins(ctx, authtypes.NewModuleAddress(senderModule), recipientAddr, amt)
}

// SendCoinsFromAccountToModule pays amt into a module account
func (b Bank) SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	return b.SendCoins(ctx, senderAddr, authtypes.NewModuleAddress(recipientModule), amt)
}

// Fund mints amt straight into addr.
func (b Bank) Fund(ctx context.Context, addr sdk.AccAddress, amt sdk.Coins) error {
	if err := b.MintCoins(ctx, minterName, amt); err != nil {
		return err
	}
	return b.SendCoinsFromModuleToAccount(ctx, minterName, addr, amt)
}

const minterName = "sandbox_minter"
