package asset

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Selector identifies one of the assets the donation program accepts.
// The set is closed: adding an asset is a code change, not a data
// change, so every selector carries a fully vetted configuration.
type Selector uint8

const (
	SelectorUnknown Selector = iota
	SelectorSol
	SelectorUsdc
	SelectorWoofi
)

var (
	ErrUnknownAsset = errors.New("unknown asset")
)

const (
	SolDecimals   = 9
	UsdcDecimals  = 6
	WoofiDecimals = 9

	LamportsPerSol = 1_000_000_000

	UsdcMint  = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	WoofiMint = "5UF9Q7tdkGnZy8MoMrYqe6tcAZJbSaNWMGuUnJajmoon"
)

var (
	UsdcTokenMint  = ed25519.PublicKey{198, 250, 122, 243, 190, 219, 173, 58, 61, 101, 243, 106, 171, 201, 116, 49, 177, 187, 228, 194, 210, 246, 224, 228, 124, 166, 2, 3, 69, 47, 93, 97}
	WoofiTokenMint = ed25519.PublicKey{66, 105, 108, 82, 74, 217, 9, 116, 97, 71, 46, 69, 139, 210, 5, 187, 54, 241, 100, 66, 230, 61, 225, 234, 203, 245, 46, 18, 155, 199, 101, 241}
)

// Config describes a single supported asset.
type Config struct {
	Name     string
	Symbol   string
	Decimals int32

	// Mint is nil for the native asset.
	Mint ed25519.PublicKey

	// MinimumDonation is the smallest accepted donation, in display
	// units.
	MinimumDonation decimal.Decimal

	// DefaultAmounts are suggested donation sizes, in display units.
	DefaultAmounts []decimal.Decimal
}

var configs = map[Selector]*Config{
	SelectorSol: {
		Name:            "Solana",
		Symbol:          "SOL",
		Decimals:        SolDecimals,
		MinimumDonation: decimal.RequireFromString("0.01"),
		DefaultAmounts:  amounts("0.1", "0.5", "1.0", "2.0"),
	},
	SelectorUsdc: {
		Name:            "USD Coin",
		Symbol:          "USDC",
		Decimals:        UsdcDecimals,
		Mint:            UsdcTokenMint,
		MinimumDonation: decimal.RequireFromString("1"),
		DefaultAmounts:  amounts("5", "10", "25", "50"),
	},
	SelectorWoofi: {
		Name:            "Woofi Token",
		Symbol:          "WOOFI",
		Decimals:        WoofiDecimals,
		Mint:            WoofiTokenMint,
		MinimumDonation: decimal.RequireFromString("10"),
		DefaultAmounts:  amounts("100", "500", "1000", "2500"),
	},
}

func amounts(values ...string) []decimal.Decimal {
	parsed := make([]decimal.Decimal, len(values))
	for i, value := range values {
		parsed[i] = decimal.RequireFromString(value)
	}
	return parsed
}

func (s Selector) Config() (*Config, error) {
	config, ok := configs[s]
	if !ok {
		return nil, ErrUnknownAsset
	}
	return config, nil
}

func (s Selector) IsNative() bool {
	return s == SelectorSol
}

func (s Selector) String() string {
	config, ok := configs[s]
	if !ok {
		return "unknown"
	}
	return config.Symbol
}

// ParseSymbol maps a display symbol back to its selector.
func ParseSymbol(symbol string) (Selector, error) {
	for selector, config := range configs {
		if config.Symbol == symbol {
			return selector, nil
		}
	}
	return SelectorUnknown, ErrUnknownAsset
}

// MinimumMinorUnits returns the asset's minimum donation in minor units.
func (s Selector) MinimumMinorUnits() (uint64, error) {
	config, err := s.Config()
	if err != nil {
		return 0, err
	}
	return s.ToMinorUnits(config.MinimumDonation)
}

// ToMinorUnits converts a display amount to the asset's minor units
// (lamports or token quarks). Amounts that are negative or carry more
// precision than the asset supports are rejected.
func (s Selector) ToMinorUnits(amount decimal.Decimal) (uint64, error) {
	config, err := s.Config()
	if err != nil {
		return 0, err
	}

	if amount.IsNegative() {
		return 0, errors.New("amount cannot be negative")
	}

	shifted := amount.Shift(config.Decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, errors.Errorf("amount exceeds %d decimal places", config.Decimals)
	}
	if !shifted.BigInt().IsUint64() {
		return 0, errors.New("amount out of range")
	}

	return shifted.BigInt().Uint64(), nil
}

// FromMinorUnits converts minor units to a display amount.
func (s Selector) FromMinorUnits(units uint64) (decimal.Decimal, error) {
	config, err := s.Config()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromUint64(units).Shift(-config.Decimals), nil
}
