package shop

import (
	"math"
	"slices"
)

// Pack models a purchasable gold-key SKU.
type Pack struct {
	ID          string `yaml:"id"`   // SKU id, e.g. "keys_100"
	Name        string `yaml:"name"` // display name
	Keys        int    `yaml:"keys"`
	BonusKeys   int    `yaml:"bonus_keys"`    // extra keys on every purchase
	FirstTimeX2 bool   `yaml:"first_time_x2"` // first purchase doubles Keys (not BonusKeys)
	PriceCents  int    `yaml:"price_cents"`
}

// Catalog is the regional key store. Prices are pre-tax; TaxRate is applied
// on the subtotal.
type Catalog struct {
	Currency string  `yaml:"currency"`
	TaxRate  float64 `yaml:"tax_rate"`
	Packs    []Pack  `yaml:"packs"`
}

// FirstTimeState marks packs whose first-purchase doubling is still
// available.
type FirstTimeState map[string]bool

// FirstTime derives the doubling state from the ids already purchased.
func (c Catalog) FirstTime(purchased []string) FirstTimeState {
	st := make(FirstTimeState, len(c.Packs))
	for _, p := range c.Packs {
		if p.FirstTimeX2 && !slices.Contains(purchased, p.ID) {
			st[p.ID] = true
		}
	}
	return st
}

// Lookup finds a pack by id.
func (c Catalog) Lookup(id string) (Pack, bool) {
	for _, p := range c.Packs {
		if p.ID == id {
			return p, true
		}
	}
	return Pack{}, false
}

// Grant is the number of keys one purchase of p yields.
func (p Pack) Grant(firstTime bool) int {
	if firstTime && p.FirstTimeX2 {
		return p.Keys*2 + p.BonusKeys
	}
	return p.Keys + p.BonusKeys
}

// Plan summarizes a purchase plan.
type Plan struct {
	Purchases  []Purchase `json:"purchases"`
	SubCents   int        `json:"sub_cents"`
	TaxCents   int        `json:"tax_cents"`
	TotalCents int        `json:"total_cents"`
	TotalKeys  int        `json:"total_keys"`
	Currency   string     `json:"currency"`
}

// Purchase is one line item of a plan.
type Purchase struct {
	PackID    string `json:"pack_id"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice int    `json:"unit_price"` // cents
	UnitKeys  int    `json:"unit_keys"`  // doubling and bonus applied
	Subtotal  int    `json:"subtotal"`
}

// applyTax computes tax and total for a subtotal.
func applyTax(sub int, taxRate float64) (tax int, total int) {
	if taxRate <= 0 {
		return 0, sub
	}
	t := int(math.Round(float64(sub) * taxRate))
	return t, sub + t
}
