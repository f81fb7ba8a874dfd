package sandbox

import (
	"fmt"
	"os"
	"sort"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"gopkg.in/yaml.v2"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// Scenario seeds a sandbox with assets, funded accounts and pools.
type Scenario struct {
	Assets   []AssetSpec                  `yaml:"assets"`
	Accounts map[string]map[string]string `yaml:"accounts"`
	Pools    []PoolSpec                   `yaml:"pools"`
	Params   *ParamsSpec                  `yaml:"params"`
}

// AssetSpec declares a native denom or a token contract.
type AssetSpec struct {
	Name      string `yaml:"name"`
	Token     bool   `yaml:"token"`
	Precision uint32 `yaml:"precision"`
}

// PoolSpec declares a pool and, optionally, its first deposit.
type PoolSpec struct {
	Assets        [2]string `yaml:"assets"`
	PriceScale    string    `yaml:"price_scale"`
	Amp           string    `yaml:"amp"`
	Gamma         string    `yaml:"gamma"`
	MidFee        string    `yaml:"mid_fee"`
	OutFee        string    `yaml:"out_fee"`
	TrackBalances bool      `yaml:"track_balances"`
	Provider      string    `yaml:"provider"`
	Liquidity     [2]string `yaml:"liquidity"`
}

// ParamsSpec overrides module params. FeeAddress names a sandbox account.
type ParamsSpec struct {
	FeeAddress   string `yaml:"fee_address"`
	MakerFeeRate string `yaml:"maker_fee_rate"`
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(bz)
}

// ParseScenario decodes a YAML scenario.
func ParseScenario(bz []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.UnmarshalStrict(bz, &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	return s, nil
}

// AssetInfo resolves a scenario asset name.
func (s Scenario) AssetInfo(name string) (types.AssetInfo, error) {
	for _, asset := range s.Assets {
		if asset.Name != name {
			continue
		}
		if asset.Token {
			return types.TokenAsset(TokenAddr(name).String()), nil
		}
		return types.NativeAsset(name), nil
	}
	return types.AssetInfo{}, fmt.Errorf("unknown asset %q", name)
}

// Apply registers assets, funds accounts, sets params and creates and seeds
// every pool, in that order.
func (a *App) Apply(s Scenario) error {
	ctx := a.Context()

	for _, asset := range s.Assets {
		if asset.Token {
			a.Tokens.Register(ctx, TokenAddr(asset.Name), asset.Precision)
			continue
		}
		display := asset.Name
		if asset.Precision > 0 {
			display = "display_" + asset.Name
		}
		if err := a.Bank.RegisterDenom(ctx, asset.Name, display, asset.Precision); err != nil {
			return fmt.Errorf("register %s: %w", asset.Name, err)
		}
	}

	// map order is random, keep funding deterministic
	names := make([]string, 0, len(s.Accounts))
	for name := range s.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for assetName, amountStr := range s.Accounts[name] {
			amount, ok := math.NewIntFromString(amountStr)
			if !ok {
				return fmt.Errorf("account %s: invalid amount %q of %s", name, amountStr, assetName)
			}
			if err := a.fund(ctx, s, Addr(name), assetName, amount); err != nil {
				return fmt.Errorf("fund %s: %w", name, err)
			}
		}
	}

	if s.Params != nil {
		params := types.DefaultParams()
		if s.Params.FeeAddress != "" {
			params.FeeAddress = Addr(s.Params.FeeAddress).String()
		}
		if s.Params.MakerFeeRate != "" {
			rate, err := math.LegacyNewDecFromStr(s.Params.MakerFeeRate)
			if err != nil {
				return fmt.Errorf("maker fee rate: %w", err)
			}
			params.MakerFeeRate = rate
		}
		if err := a.Keeper.SetParams(ctx, params); err != nil {
			return err
		}
	}

	for i, spec := range s.Pools {
		if err := a.createPool(ctx, s, spec); err != nil {
			return fmt.Errorf("pool %d: %w", i, err)
		}
	}
	return nil
}

func (a *App) fund(ctx sdk.Context, s Scenario, addr sdk.AccAddress, assetName string, amount math.Int) error {
	info, err := s.AssetInfo(assetName)
	if err != nil {
		return err
	}
	if info.IsNative() {
		return a.Bank.Fund(ctx, addr, sdk.NewCoins(sdk.NewCoin(info.Denom, amount)))
	}
	return a.Tokens.Mint(ctx, TokenAddr(assetName), addr, amount)
}

func (a *App) createPool(ctx sdk.Context, s Scenario, spec PoolSpec) error {
	var infos [2]types.AssetInfo
	for i, name := range spec.Assets {
		info, err := s.AssetInfo(name)
		if err != nil {
			return err
		}
		infos[i] = info
	}

	ag := types.DefaultAmpGamma()
	params := types.DefaultPoolParams()
	priceScale := math.LegacyOneDec()
	for _, field := range []struct {
		raw string
		out *math.LegacyDec
	}{
		{spec.Amp, &ag.Amp},
		{spec.Gamma, &ag.Gamma},
		{spec.MidFee, &params.MidFee},
		{spec.OutFee, &params.OutFee},
		{spec.PriceScale, &priceScale},
	} {
		if field.raw == "" {
			continue
		}
		dec, err := math.LegacyNewDecFromStr(field.raw)
		if err != nil {
			return err
		}
		*field.out = dec
	}

	creator := Addr("sandbox")
	if spec.Provider != "" {
		creator = Addr(spec.Provider)
	}
	created, err := a.Keeper.CreatePool(ctx, types.MsgCreatePool{
		Creator:           creator.String(),
		AssetInfos:        infos,
		AmpGamma:          ag,
		Params:            params,
		InitialPriceScale: priceScale,
		TrackBalances:     spec.TrackBalances,
	})
	if err != nil {
		return err
	}

	if spec.Provider == "" || spec.Liquidity[0] == "" {
		return nil
	}
	assets := make([]types.Asset, 0, 2)
	for i, raw := range spec.Liquidity {
		amount, ok := math.NewIntFromString(raw)
		if !ok {
			return fmt.Errorf("invalid liquidity amount %q", raw)
		}
		assets = append(assets, types.NewAsset(infos[i], amount))
	}
	_, err = a.Keeper.ProvideLiquidity(ctx, types.MsgProvideLiquidity{
		Sender:  creator.String(),
		PoolKey: created.PoolKey,
		Assets:  assets,
	})
	return err
}
