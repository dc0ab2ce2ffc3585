package config

import (
	"github.com/khwan789/KimchiClicker/internal/magnitude"
	"github.com/khwan789/KimchiClicker/internal/shop"
)

// Raw config loaded from YAML. Pointer fields distinguish "unset" from zero
// so an override file only needs the keys it changes.
type RawConfig struct {
	Version string `yaml:"version"`
	Notes   string `yaml:"notes,omitempty"`

	TickHz            *int     `yaml:"tick_hz"`
	UIPulseSeconds    *float64 `yaml:"ui_pulse_seconds"`
	AutosaveSeconds   *float64 `yaml:"autosave_seconds"`
	ProducerCostRatio *float64 `yaml:"producer_cost_ratio"`
	ManualBasePerTap  *int     `yaml:"manual_base_per_tap"`

	Producers   []RawProducer   `yaml:"producers,omitempty"` // replaced wholesale
	Materials   *RawTrack       `yaml:"materials,omitempty"`
	Recipes     *RawTrack       `yaml:"recipes,omitempty"`
	Storage     []RawStage      `yaml:"storage,omitempty"` // replaced wholesale
	Milestones  *RawMilestones  `yaml:"milestones,omitempty"`
	Ads         *RawAds         `yaml:"ads,omitempty"`
	Offline     *RawOffline     `yaml:"offline,omitempty"`
	Drip        *RawDrip        `yaml:"drip,omitempty"`
	Shop        *RawShop        `yaml:"shop,omitempty"`
	Persistence *RawPersistence `yaml:"persistence,omitempty"`
}

type RawProducer struct {
	Name     string              `yaml:"name"`
	BaseRate magnitude.Magnitude `yaml:"base_rate"`
	BaseCost magnitude.Magnitude `yaml:"base_cost"`
}

// RawTrack configures materials or recipes. MaxLevel only applies to recipes.
type RawTrack struct {
	Names      []string `yaml:"names,omitempty"`
	BaseCost   *int64   `yaml:"base_cost"`
	CostGrowth *int64   `yaml:"cost_growth"`
	MaxLevel   *int     `yaml:"max_level,omitempty"`
}

type RawStage struct {
	Name       string              `yaml:"name"`
	Threshold  magnitude.Magnitude `yaml:"threshold"`
	BuffPct    int                 `yaml:"buff_pct"`
	CoinReward int64               `yaml:"coin_reward"`
}

type RawMilestones struct {
	ProducerReward *int64 `yaml:"producer_reward"`
	ProducerStep   *int   `yaml:"producer_step"`
	RecipeReward   *int64 `yaml:"recipe_reward"`
}

type RawAds struct {
	BuffPct          *int     `yaml:"buff_pct"`
	BuffSeconds      *float64 `yaml:"buff_seconds"`
	BonusStepSeconds *float64 `yaml:"buff_bonus_step_seconds"`
	BonusCapSeconds  *float64 `yaml:"buff_bonus_cap_seconds"`
	CoinDailyLimit   *int     `yaml:"coin_daily_limit"`
	CoinReward       *int64   `yaml:"coin_reward"`
	BoostSeconds     *float64 `yaml:"boost_seconds"`
}

type RawOffline struct {
	KimchiCapHours *float64 `yaml:"kimchi_cap_hours"`
	CountKeys      *bool    `yaml:"count_keys"`
	KeyCapHours    *float64 `yaml:"key_cap_hours"` // 0 = no cap
	MinSeconds     *float64 `yaml:"min_seconds"`
	MaxSeconds     *float64 `yaml:"max_seconds"`
}

type RawDrip struct {
	SecondsPerKey *float64 `yaml:"seconds_per_key"`
}

type RawShop struct {
	Currency string      `yaml:"currency,omitempty"`
	TaxRate  *float64    `yaml:"tax_rate"`
	Packs    []shop.Pack `yaml:"packs,omitempty"`
}

type RawPersistence struct {
	Dir      string `yaml:"dir,omitempty"`
	File     string `yaml:"file,omitempty"`
	Compress *bool  `yaml:"compress"`
}
