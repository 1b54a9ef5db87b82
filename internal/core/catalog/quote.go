package catalog

import "github.com/shopspring/decimal"

// Quote is the EzyParts quote response as handed over by the integration.
type Quote struct {
	Headers QuoteHeaders `json:"headers"`
	Parts   []QuotePart  `json:"parts"`
}

type QuoteHeaders struct {
	Make     string `json:"make"`
	Model    string `json:"model"`
	Rego     string `json:"rego"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

type QuotePart struct {
	SKU             string          `json:"sku"`
	PartDescription string          `json:"partDescription"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	Qty             int             `json:"qty"`
	NettPriceEach   decimal.Decimal `json:"nettPriceEach"`
}
