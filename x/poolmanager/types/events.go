package types

// Event types for the poolmanager module
const (
	EventTypeCreatePool        = "create_pool"
	EventTypeSwap              = "swap"
	EventTypeProvideLiquidity  = "provide_liquidity"
	EventTypeWithdrawLiquidity = "withdraw_liquidity"
	EventTypeRepeg             = "repeg"
	EventTypeSwapChain         = "swap_chain"
	EventTypeUpdatePoolParams  = "update_pool_params"

	AttributeKeyPoolID       = "pool_id"
	AttributeKeyPoolKey      = "pool_key"
	AttributeKeySender       = "sender"
	AttributeKeyReceiver     = "receiver"
	AttributeKeyOfferAsset   = "offer_asset"
	AttributeKeyAskAsset     = "ask_asset"
	AttributeKeyOfferAmount  = "offer_amount"
	AttributeKeyReturnAmount = "return_amount"
	AttributeKeySpreadAmount = "spread_amount"
	AttributeKeyCommission   = "commission_amount"
	AttributeKeyMakerFee     = "maker_fee_amount"
	AttributeKeyFeeShare     = "fee_share_amount"
	AttributeKeyAssets       = "assets"
	AttributeKeyShare        = "share"
	AttributeKeyRefundAssets = "refund_assets"
	AttributeKeyWithdrawn    = "withdrawn_share"
	AttributeKeySlippage     = "slippage"
	AttributeKeyPriceScale   = "price_scale"
	AttributeKeyOperations   = "operations"
	AttributeKeyLPDenom      = "lp_denom"
	AttributeKeyAction       = "action"
)
