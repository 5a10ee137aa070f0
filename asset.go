package folioplan

import "fmt"

// AssetCategory classifies an investable instrument. The set is fixed.
type AssetCategory string

const (
	CategorySecurity    AssetCategory = "security"     // exchange-tradable security
	CategoryFund        AssetCategory = "fund"         // mutual fund / ETF
	CategoryWealth      AssetCategory = "wealth"       // bank wealth-management product
	CategoryMetal       AssetCategory = "metal"        // precious metal
	CategoryFixedIncome AssetCategory = "fixed-income" // fixed income and cash
	CategoryCrypto      AssetCategory = "crypto"
	CategoryOther       AssetCategory = "other"
)

// AssetCategories lists all valid categories in display order.
func AssetCategories() []AssetCategory {
	return []AssetCategory{
		CategorySecurity, CategoryFund, CategoryWealth, CategoryMetal,
		CategoryFixedIncome, CategoryCrypto, CategoryOther,
	}
}

// ParseAssetCategory parses a string into an AssetCategory.
func ParseAssetCategory(s string) (AssetCategory, error) {
	c := AssetCategory(s)
	switch c {
	case CategorySecurity, CategoryFund, CategoryWealth, CategoryMetal,
		CategoryFixedIncome, CategoryCrypto, CategoryOther:
		return c, nil
	default:
		return "", fmt.Errorf("unknown asset category: %q", s)
	}
}

// IsCashLike reports whether holdings of this category have their unit price
// pinned to 1. For these, a quantity change not matched by an equal principal
// change is implied interest (positive) or fee (negative).
func (c AssetCategory) IsCashLike() bool {
	return c == CategoryFixedIncome || c == CategoryWealth
}

// Bucket is the coarse grouping used by total-scope allocation and
// attribution reports.
type Bucket string

const (
	BucketEquity      Bucket = "equity"      // securities and funds
	BucketCash        Bucket = "cash"        // fixed income, cash and wealth products
	BucketAlternative Bucket = "alternative" // metals and crypto
	BucketOther       Bucket = "other"
)

// Buckets lists the four buckets in display order.
func Buckets() []Bucket {
	return []Bucket{BucketEquity, BucketCash, BucketAlternative, BucketOther}
}

// Bucket maps the category to its reporting bucket.
func (c AssetCategory) Bucket() Bucket {
	switch c {
	case CategorySecurity, CategoryFund:
		return BucketEquity
	case CategoryFixedIncome, CategoryWealth:
		return BucketCash
	case CategoryMetal, CategoryCrypto:
		return BucketAlternative
	default:
		return BucketOther
	}
}

// Name returns a human readable bucket label.
func (b Bucket) Name() string {
	switch b {
	case BucketEquity:
		return "Equity"
	case BucketCash:
		return "Cash & Fixed Income"
	case BucketAlternative:
		return "Alternative"
	default:
		return "Other"
	}
}

// Asset is a globally unique investable instrument. Its identity (ID) is
// immutable; the descriptive fields can be edited. Everything else in the
// system references assets by id, never by value.
type Asset struct {
	ID       string        `json:"id"`
	Category AssetCategory `json:"category"`
	Name     string        `json:"name"`
	Ticker   string        `json:"ticker,omitempty"`
	Note     string        `json:"note,omitempty"`
}
