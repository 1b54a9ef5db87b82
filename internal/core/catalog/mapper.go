package catalog

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/rl1809/workshop-parts/internal/core/domain"
)

const (
	DefaultCodePrefix   = "EP"
	DefaultCategory     = "Auto Parts"
	DefaultMinStock     = 5
	DefaultSupplierID   = "ezyparts"
	DefaultSupplierName = "EzyParts"

	suffixLength = 6
)

type Config struct {
	CodePrefix      string
	DefaultCategory string
	DefaultMinStock int
	SupplierID      string
	SupplierName    string
}

func DefaultConfig() Config {
	return Config{
		CodePrefix:      DefaultCodePrefix,
		DefaultCategory: DefaultCategory,
		DefaultMinStock: DefaultMinStock,
		SupplierID:      DefaultSupplierID,
		SupplierName:    DefaultSupplierName,
	}
}

// Mapper turns quoted parts into inventory candidates. It does no I/O; the
// returned items have no ID and no status until they are persisted.
type Mapper struct {
	cfg    Config
	suffix func() string
}

func NewMapper(cfg Config) *Mapper {
	return &Mapper{cfg: cfg, suffix: RandomSuffix}
}

// WithSuffix replaces the code suffix source.
func (m *Mapper) WithSuffix(fn func() string) *Mapper {
	return &Mapper{cfg: m.cfg, suffix: fn}
}

func (m *Mapper) MapQuoteToInventoryItems(quote *Quote) []domain.InventoryItem {
	if quote == nil || len(quote.Parts) == 0 {
		return []domain.InventoryItem{}
	}

	supplier := domain.SupplierRef{ID: m.cfg.SupplierID, Name: m.cfg.SupplierName}
	items := make([]domain.InventoryItem, 0, len(quote.Parts))
	for _, part := range quote.Parts {
		category := strings.TrimSpace(part.Category)
		if category == "" {
			category = m.cfg.DefaultCategory
		}
		items = append(items, domain.InventoryItem{
			Code:        m.code(part.SKU),
			Name:        part.PartDescription,
			Description: describe(part),
			Category:    category,
			Supplier:    supplier,
			InStock:     part.Qty,
			MinStock:    m.cfg.DefaultMinStock,
			Price:       part.NettPriceEach,
		})
	}
	return items
}

// code is traceable to the SKU but unique per import. Uniqueness is only
// probabilistic: re-importing a SKU yields a new code rather than a merge.
func (m *Mapper) code(sku string) string {
	return fmt.Sprintf("%s-%s-%s", m.cfg.CodePrefix, strings.ToUpper(strings.TrimSpace(sku)), m.suffix())
}

func describe(part QuotePart) string {
	brand := strings.TrimSpace(part.Brand)
	if brand == "" {
		return part.PartDescription
	}
	return fmt.Sprintf("%s - Brand: %s", part.PartDescription, brand)
}

// RandomSuffix returns six upper-case base-36 characters drawn from a v4 UUID.
func RandomSuffix() string {
	id := uuid.New()
	s := strings.ToUpper(new(big.Int).SetBytes(id[:]).Text(36))
	for len(s) < suffixLength {
		s = "0" + s
	}
	return s[len(s)-suffixLength:]
}
