// Package event defines the event-type identifier carried by every envelope.
//
// The catalog is closed: every protocol event the producer understands has a Kind.
// Anything else travels as a Custom type that keeps its original name, so unknown
// events still round-trip without being coerced into a known kind.
package event

// Kind enumerates the known event kinds. KindCustom marks the open extension case.
type Kind uint8

const (
	KindCustom Kind = iota

	// block events
	KindBlockMeta

	// Bonk protocol
	KindBonkPoolCreate
	KindBonkTrade
	KindBonkMigrateToAmm
	KindBonkMigrateToCpswap

	// PumpFun protocol
	KindPumpFunTrade
	KindPumpFunMigrate
	KindPumpFunCreate

	// PumpSwap protocol
	KindPumpSwapBuy
	KindPumpSwapSell
	KindPumpSwapCreate
	KindPumpSwapDeposit
	KindPumpSwapWithdraw

	// Raydium CPMM
	KindRaydiumCpmmSwap
	KindRaydiumCpmmDeposit
	KindRaydiumCpmmInitialize
	KindRaydiumCpmmWithdraw

	// Raydium CLMM
	KindRaydiumClmmSwap
	KindRaydiumClmmSwapV2
	KindRaydiumClmmClosePosition
	KindRaydiumClmmDecreaseLiquidityV2
	KindRaydiumClmmCreatePool
	KindRaydiumClmmIncreaseLiquidityV2
	KindRaydiumClmmOpenPositionWithToken22Nft
	KindRaydiumClmmOpenPositionV2

	// Raydium AMM v4
	KindRaydiumAmmV4Swap
	KindRaydiumAmmV4Deposit
	KindRaydiumAmmV4Initialize
	KindRaydiumAmmV4Withdraw
	KindRaydiumAmmV4WithdrawPnl

	// account state
	KindBonkPoolStateAccount
	KindBonkGlobalConfigAccount
	KindBonkPlatformConfigAccount
	KindPumpSwapGlobalConfigAccount
	KindPumpSwapPoolAccount
	KindPumpFunBondingCurveAccount
	KindPumpFunGlobalAccount
	KindRaydiumAmmV4InfoAccount
	KindRaydiumClmmConfigAccount
	KindRaydiumClmmPoolStateAccount
	KindRaydiumClmmTickArrayAccount
	KindRaydiumCpmmConfigAccount
	KindRaydiumCpmmPoolStateAccount

	kindCount
)

var kindNames = [kindCount]string{
	KindCustom:                                "Custom",
	KindBlockMeta:                             "BlockMeta",
	KindBonkPoolCreate:                        "BonkPoolCreate",
	KindBonkTrade:                             "BonkTrade",
	KindBonkMigrateToAmm:                      "BonkMigrateToAmm",
	KindBonkMigrateToCpswap:                   "BonkMigrateToCpswap",
	KindPumpFunTrade:                          "PumpFunTrade",
	KindPumpFunMigrate:                        "PumpFunMigrate",
	KindPumpFunCreate:                         "PumpFunCreate",
	KindPumpSwapBuy:                           "PumpSwapBuy",
	KindPumpSwapSell:                          "PumpSwapSell",
	KindPumpSwapCreate:                        "PumpSwapCreate",
	KindPumpSwapDeposit:                       "PumpSwapDeposit",
	KindPumpSwapWithdraw:                      "PumpSwapWithdraw",
	KindRaydiumCpmmSwap:                       "RaydiumCpmmSwap",
	KindRaydiumCpmmDeposit:                    "RaydiumCpmmDeposit",
	KindRaydiumCpmmInitialize:                 "RaydiumCpmmInitialize",
	KindRaydiumCpmmWithdraw:                   "RaydiumCpmmWithdraw",
	KindRaydiumClmmSwap:                       "RaydiumClmmSwap",
	KindRaydiumClmmSwapV2:                     "RaydiumClmmSwapV2",
	KindRaydiumClmmClosePosition:              "RaydiumClmmClosePosition",
	KindRaydiumClmmDecreaseLiquidityV2:        "RaydiumClmmDecreaseLiquidityV2",
	KindRaydiumClmmCreatePool:                 "RaydiumClmmCreatePool",
	KindRaydiumClmmIncreaseLiquidityV2:        "RaydiumClmmIncreaseLiquidityV2",
	KindRaydiumClmmOpenPositionWithToken22Nft: "RaydiumClmmOpenPositionWithToken22Nft",
	KindRaydiumClmmOpenPositionV2:             "RaydiumClmmOpenPositionV2",
	KindRaydiumAmmV4Swap:                      "RaydiumAmmV4Swap",
	KindRaydiumAmmV4Deposit:                   "RaydiumAmmV4Deposit",
	KindRaydiumAmmV4Initialize:                "RaydiumAmmV4Initialize",
	KindRaydiumAmmV4Withdraw:                  "RaydiumAmmV4Withdraw",
	KindRaydiumAmmV4WithdrawPnl:               "RaydiumAmmV4WithdrawPnl",
	KindBonkPoolStateAccount:                  "BonkPoolStateAccount",
	KindBonkGlobalConfigAccount:               "BonkGlobalConfigAccount",
	KindBonkPlatformConfigAccount:             "BonkPlatformConfigAccount",
	KindPumpSwapGlobalConfigAccount:           "PumpSwapGlobalConfigAccount",
	KindPumpSwapPoolAccount:                   "PumpSwapPoolAccount",
	KindPumpFunBondingCurveAccount:            "PumpFunBondingCurveAccount",
	KindPumpFunGlobalAccount:                  "PumpFunGlobalAccount",
	KindRaydiumAmmV4InfoAccount:               "RaydiumAmmV4InfoAccount",
	KindRaydiumClmmConfigAccount:              "RaydiumClmmConfigAccount",
	KindRaydiumClmmPoolStateAccount:           "RaydiumClmmPoolStateAccount",
	KindRaydiumClmmTickArrayAccount:           "RaydiumClmmTickArrayAccount",
	KindRaydiumCpmmConfigAccount:              "RaydiumCpmmConfigAccount",
	KindRaydiumCpmmPoolStateAccount:           "RaydiumCpmmPoolStateAccount",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := KindBlockMeta; k < kindCount; k++ {
		m[kindNames[k]] = k
	}

	return m
}()

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}

	return "Unknown"
}

// Type identifies an event. It is comparable and usable as a map key.
//
// The zero value is an unnamed Custom type.
type Type struct {
	kind Kind
	name string // only for KindCustom
}

// Of returns the Type for a known kind. KindCustom and out-of-range kinds yield
// an unnamed Custom type; use Custom for named extensions.
func Of(k Kind) Type {
	if k == KindCustom || k >= kindCount {
		return Type{}
	}

	return Type{kind: k}
}

// Custom returns a Type for an event outside the catalog.
// A name that matches a known kind returns that kind instead, so equal names
// always produce equal Types.
func Custom(name string) Type {
	return Parse(name)
}

// Parse maps a name to its Type, falling back to Custom for unknown names.
func Parse(name string) Type {
	if k, ok := kindsByName[name]; ok {
		return Type{kind: k}
	}

	return Type{kind: KindCustom, name: name}
}

// Kind returns the catalog kind, KindCustom for extensions.
func (t Type) Kind() Kind {
	return t.kind
}

// IsCustom reports whether t is outside the known catalog.
func (t Type) IsCustom() bool {
	return t.kind == KindCustom
}

// String returns the canonical name; Custom types return their original name.
func (t Type) String() string {
	if t.kind == KindCustom {
		return t.name
	}

	return t.kind.String()
}

// IsTransaction reports whether t is a trade or swap event.
func (t Type) IsTransaction() bool {
	switch t.kind {
	case KindBonkTrade,
		KindPumpFunTrade,
		KindPumpSwapBuy,
		KindPumpSwapSell,
		KindRaydiumCpmmSwap,
		KindRaydiumClmmSwap,
		KindRaydiumClmmSwapV2,
		KindRaydiumAmmV4Swap:
		return true
	default:
		return false
	}
}

// IsPoolCreate reports whether t announces a new pool.
func (t Type) IsPoolCreate() bool {
	switch t.kind {
	case KindBonkPoolCreate,
		KindPumpSwapCreate,
		KindRaydiumClmmCreatePool,
		KindRaydiumCpmmInitialize,
		KindRaydiumAmmV4Initialize:
		return true
	default:
		return false
	}
}

// IsAccountEvent reports whether t carries account state.
func (t Type) IsAccountEvent() bool {
	return t.kind >= KindBonkPoolStateAccount && t.kind <= KindRaydiumCpmmPoolStateAccount
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	*t = Parse(string(text))
	return nil
}
