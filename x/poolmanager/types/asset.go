package types

import (
	"fmt"
	"sort"
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// poolKeySeparator cannot appear in a bank denom or a bech32 address.
const poolKeySeparator = "|"

// AssetInfo identifies a pool asset. Exactly one of Denom (bank asset) and
// ContractAddr (contract-mediated token) is set.
type AssetInfo struct {
	Denom        string `json:"denom,omitempty" yaml:"denom,omitempty"`
	ContractAddr string `json:"contract_addr,omitempty" yaml:"contract_addr,omitempty"`
}

// NativeAsset returns the info of a bank denom.
func NativeAsset(denom string) AssetInfo {
	return AssetInfo{Denom: denom}
}

// TokenAsset returns the info of a contract-mediated token.
func TokenAsset(contractAddr string) AssetInfo {
	return AssetInfo{ContractAddr: contractAddr}
}

// ParseAssetInfo reads an asset id: a bech32 address names a token contract,
// anything else a bank denom.
func ParseAssetInfo(id string) AssetInfo {
	if _, err := sdk.AccAddressFromBech32(id); err == nil {
		return TokenAsset(id)
	}
	return NativeAsset(id)
}

// IsNative reports whether the asset is a bank denom.
func (a AssetInfo) IsNative() bool {
	return a.Denom != ""
}

// ID is the canonical identifier of the asset.
func (a AssetInfo) ID() string {
	if a.IsNative() {
		return a.Denom
	}
	return a.ContractAddr
}

func (a AssetInfo) String() string {
	return a.ID()
}

// Equal compares two asset infos.
func (a AssetInfo) Equal(other AssetInfo) bool {
	return a.Denom == other.Denom && a.ContractAddr == other.ContractAddr
}

// Validate checks that exactly one identifier is set and that it is well formed.
func (a AssetInfo) Validate() error {
	switch {
	case a.Denom != "" && a.ContractAddr != "":
		return ErrInvalidAsset.Wrap("asset can not be both a denom and a token")
	case a.Denom != "":
		if err := sdk.ValidateDenom(a.Denom); err != nil {
			return ErrInvalidAsset.Wrapf("invalid denom %q: %s", a.Denom, err)
		}
	case a.ContractAddr != "":
		if _, err := sdk.AccAddressFromBech32(a.ContractAddr); err != nil {
			return ErrInvalidAsset.Wrapf("invalid token address %q: %s", a.ContractAddr, err)
		}
	default:
		return ErrInvalidAsset.Wrap("empty asset info")
	}
	if strings.Contains(a.ID(), poolKeySeparator) {
		return ErrInvalidAsset.Wrapf("asset id %q contains %q", a.ID(), poolKeySeparator)
	}
	return nil
}

// Asset is an amount of an asset in raw integer units.
type Asset struct {
	Info   AssetInfo `json:"info" yaml:"info"`
	Amount math.Int  `json:"amount" yaml:"amount"`
}

// NewAsset builds an Asset.
func NewAsset(info AssetInfo, amount math.Int) Asset {
	return Asset{Info: info, Amount: amount}
}

func (a Asset) String() string {
	return fmt.Sprintf("%s%s", a.Amount, a.Info.ID())
}

// Validate rejects nil or negative amounts and malformed infos.
func (a Asset) Validate() error {
	if err := a.Info.Validate(); err != nil {
		return err
	}
	if a.Amount.IsNil() {
		return ErrInvalidZeroAmount.Wrapf("nil amount for %s", a.Info)
	}
	if a.Amount.IsNegative() {
		return ErrNegativeAmount.Wrapf("%s", a)
	}
	return nil
}

// PoolKey returns the canonical, order independent key of an asset pair.
func PoolKey(a, b AssetInfo) string {
	ids := []string{a.ID(), b.ID()}
	sort.Strings(ids)
	return ids[0] + poolKeySeparator + ids[1]
}

// SplitPoolKey returns the two asset ids of a pool key.
func SplitPoolKey(key string) (string, string, error) {
	parts := strings.Split(key, poolKeySeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidAsset.Wrapf("malformed pool key %q", key)
	}
	return parts[0], parts[1], nil
}

// ValidatePairInfos rejects duplicated or malformed pair assets.
func ValidatePairInfos(infos [2]AssetInfo) error {
	for _, info := range infos {
		if err := info.Validate(); err != nil {
			return err
		}
	}
	if infos[0].Equal(infos[1]) {
		return ErrDoublingAssetsPath.Wrapf("pool assets must differ, got %s twice", infos[0])
	}
	return nil
}
