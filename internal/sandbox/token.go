package sandbox

import (
	"context"
	"encoding/binary"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

var (
	tokenBalanceKeyPrefix  = []byte{0x04}
	tokenDecimalsKeyPrefix = []byte{0x05}
)

// TransferHook runs after a token transfer settled, inside the same context.
// Returning an error fails the transfer.
type TransferHook func(ctx context.Context, contract, from, to sdk.AccAddress, amount math.Int) error

// TokenLedger plays the contract-mediated token collaborator. Every token is
// a contract address with a decimals field and a balance table.
type TokenLedger struct {
	storeKey storetypes.StoreKey
	hook     *TransferHook
}

// NewTokenLedger returns a ledger keeping its state under key
func NewTokenLedger(key storetypes.StoreKey) TokenLedger {
	return TokenLedger{storeKey: key, hook: new(TransferHook)}
}

// OnTransfer installs hook for every following transfer; nil removes it.
func (l TokenLedger) OnTransfer(hook TransferHook) {
	*l.hook = hook
}

func (l TokenLedger) store(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(l.storeKey)
}

func tokenBalanceKey(contract, owner sdk.AccAddress) []byte {
	key := append([]byte{}, tokenBalanceKeyPrefix...)
	key = append(key, contract...)
	key = append(key, 0x00)
	return append(key, owner...)
}

func tokenDecimalsKey(contract sdk.AccAddress) []byte {
	return append(append([]byte{}, tokenDecimalsKeyPrefix...), contract...)
}

// Register deploys a token with decimals at contract
func (l TokenLedger) Register(ctx context.Context, contract sdk.AccAddress, decimals uint32) {
	bz := make([]byte, 4)
	binary.BigEndian.PutUint32(bz, decimals)
	l.store(ctx).Set(tokenDecimalsKey(contract), bz)
}

// Mint credits amount of a registered token to owner
func (l TokenLedger) Mint(ctx context.Context, contract, owner sdk.AccAddress, amount math.Int) error {
	if !l.store(ctx).Has(tokenDecimalsKey(contract)) {
		return types.ErrInvalidAsset.Wrapf("no token at %s", contract)
	}
	store := l.store(ctx)
	writeInt(store, tokenBalanceKey(contract, owner), readInt(store, tokenBalanceKey(contract, owner)).Add(amount))
	return nil
}

// Balance returns the token balance of owner
func (l TokenLedger) Balance(ctx context.Context, contract, owner sdk.AccAddress) (math.Int, error) {
	if !l.store(ctx).Has(tokenDecimalsKey(contract)) {
		return math.Int{}, types.ErrInvalidAsset.Wrapf("no token at %s", contract)
	}
	return readInt(l.store(ctx), tokenBalanceKey(contract, owner)), nil
}

// Decimals returns the precision of a token
func (l TokenLedger) Decimals(ctx context.Context, contract sdk.AccAddress) (uint32, error) {
	bz := l.store(ctx).Get(tokenDecimalsKey(contract))
	if bz == nil {
		return 0, types.ErrInvalidAsset.Wrapf("no token at %s", contract)
	}
	return binary.BigEndian.Uint32(bz), nil
}

// Transfer moves amount from one owner to another and then runs the hook.
func (l TokenLedger) Transfer(ctx context.Context, contract, from, to sdk.AccAddress, amount math.Int) error {
	if !l.store(ctx).Has(tokenDecimalsKey(contract)) {
		return types.ErrInvalidAsset.Wrapf("no token at %s", contract)
	}
	if amount.IsNegative() {
		return types.ErrNegativeAmount.Wrapf("token transfer of %s", amount)
	}
	store := l.store(ctx)
	held := readInt(store, tokenBalanceKey(contract, from))
	if held.LT(amount) {
		return sdkerrors.ErrInsufficientFunds.Wrapf("%s holds %s of token %s, needs %s", from, held, contract, amount)
	}
	writeInt(store, tokenBalanceKey(contract, from), held.Sub(amount))
	writeInt(store, tokenBalanceKey(contract, to), readInt(store, tokenBalanceKey(contract, to)).Add(amount))

	if hook := *l.hook; hook != nil {
		return hook(ctx, contract, from, to, amount)
	}
	return nil
}
