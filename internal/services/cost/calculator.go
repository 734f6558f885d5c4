package cost

import (
	"fmt"
	"strings"
	"sync"

	"github.com/thomas-vilte/promptcache/internal/models"
)

// PricingTable holds USD rates per million tokens.
type PricingTable struct {
	BaseRatePerMillion       float64 `yaml:"base" json:"base"`
	CacheReadRatePerMillion  float64 `yaml:"cache_read" json:"cache_read"`
	CacheWriteRatePerMillion float64 `yaml:"cache_write" json:"cache_write"`
	OutputRatePerMillion     float64 `yaml:"output" json:"output"`
}

// Validate rejects negative rates.
func (p PricingTable) Validate() error {
	if p.BaseRatePerMillion < 0 || p.CacheReadRatePerMillion < 0 ||
		p.CacheWriteRatePerMillion < 0 || p.OutputRatePerMillion < 0 {
		return fmt.Errorf("rates must not be negative: %+v", p)
	}
	return nil
}

// ReadDiscountPercent is how much cheaper a cached token is than an uncached one.
func (p PricingTable) ReadDiscountPercent() float64 {
	if p.BaseRatePerMillion <= 0 {
		return 0
	}
	return (1 - p.CacheReadRatePerMillion/p.BaseRatePerMillion) * 100
}

// DefaultPricing is Claude 3.5 Haiku: cache reads at 10% of base, cache writes at 125%.
var DefaultPricing = PricingTable{
	BaseRatePerMillion:       0.80,
	CacheReadRatePerMillion:  0.08,
	CacheWriteRatePerMillion: 1.00,
	OutputRatePerMillion:     4.00,
}

// https://docs.anthropic.com/en/docs/about-claude/pricing
var builtinPricing = map[string]PricingTable{
	"claude-3-5-haiku":  DefaultPricing,
	"claude-3-haiku":    {BaseRatePerMillion: 0.25, CacheReadRatePerMillion: 0.03, CacheWriteRatePerMillion: 0.30, OutputRatePerMillion: 1.25},
	"claude-haiku-4-5":  {BaseRatePerMillion: 1.00, CacheReadRatePerMillion: 0.10, CacheWriteRatePerMillion: 1.25, OutputRatePerMillion: 5.00},
	"claude-3-5-sonnet": {BaseRatePerMillion: 3.00, CacheReadRatePerMillion: 0.30, CacheWriteRatePerMillion: 3.75, OutputRatePerMillion: 15.00},
	"claude-3-7-sonnet": {BaseRatePerMillion: 3.00, CacheReadRatePerMillion: 0.30, CacheWriteRatePerMillion: 3.75, OutputRatePerMillion: 15.00},
	"claude-sonnet-4":   {BaseRatePerMillion: 3.00, CacheReadRatePerMillion: 0.30, CacheWriteRatePerMillion: 3.75, OutputRatePerMillion: 15.00},
	"claude-3-opus":     {BaseRatePerMillion: 15.00, CacheReadRatePerMillion: 1.50, CacheWriteRatePerMillion: 18.75, OutputRatePerMillion: 75.00},
	"claude-opus-4":     {BaseRatePerMillion: 15.00, CacheReadRatePerMillion: 1.50, CacheWriteRatePerMillion: 18.75, OutputRatePerMillion: 75.00},
}

// Analysis is the cost breakdown of one completion call.
type Analysis struct {
	Usage            models.UsageRecord
	Pricing          PricingTable
	Status           models.CacheStatus
	CostWithoutCache float64
	CostWithCache    float64
	CreationCost     float64
	Saved            float64
	SavedPercent     float64
}

// ToMillions converts a token count into USD at a per-million rate.
func ToMillions(tokens int, ratePerMillion float64) float64 {
	return (float64(tokens) / 1_000_000) * ratePerMillion
}

// Classify reports a hit when any prompt tokens were read from cache.
func Classify(usage models.UsageRecord) models.CacheStatus {
	if usage.CacheReadTokens > 0 {
		return models.CacheHit
	}
	return models.CacheMiss
}

// CostWithoutCache charges every prompt token at the base rate.
func CostWithoutCache(usage models.UsageRecord, pricing PricingTable) float64 {
	return ToMillions(usage.InputTokens+usage.CacheReadTokens, pricing.BaseRatePerMillion)
}

// CostWithCache is the prompt cost actually incurred. On a miss that wrote the
// cache it is the one-time write premium only.
func CostWithCache(usage models.UsageRecord, pricing PricingTable) float64 {
	if Classify(usage) == models.CacheHit {
		return ToMillions(usage.InputTokens, pricing.BaseRatePerMillion) +
			ToMillions(usage.CacheReadTokens, pricing.CacheReadRatePerMillion)
	}
	if usage.CacheCreationTokens > 0 {
		return ToMillions(usage.CacheCreationTokens, pricing.CacheWriteRatePerMillion)
	}
	return ToMillions(usage.InputTokens, pricing.BaseRatePerMillion)
}

// Savings returns the absolute and percentage difference between the uncached
// and cached cost. The percentage is 0 when there is nothing to compare against.
func Savings(usage models.UsageRecord, pricing PricingTable) (float64, float64) {
	without := CostWithoutCache(usage, pricing)
	absolute := without - CostWithCache(usage, pricing)
	if without <= 0 {
		return absolute, 0
	}
	return absolute, absolute / without * 100
}

// Analyze computes the full breakdown for a usage record.
func Analyze(usage models.UsageRecord, pricing PricingTable) Analysis {
	saved, percent := Savings(usage, pricing)
	return Analysis{
		Usage:            usage,
		Pricing:          pricing,
		Status:           Classify(usage),
		CostWithoutCache: CostWithoutCache(usage, pricing),
		CostWithCache:    CostWithCache(usage, pricing),
		CreationCost:     ToMillions(usage.CacheCreationTokens, pricing.CacheWriteRatePerMillion),
		Saved:            saved,
		SavedPercent:     percent,
	}
}

// Calculator resolves pricing per model and analyzes usage with it.
type Calculator struct {
	mu      sync.RWMutex
	pricing map[string]PricingTable
}

func NewCalculator() *Calculator {
	pricing := make(map[string]PricingTable, len(builtinPricing))
	for model, table := range builtinPricing {
		pricing[model] = table
	}
	return &Calculator{pricing: pricing}
}

// PricingFor returns the table for a model. Dated model ids such as
// claude-3-5-haiku-20241022 fall back to the longest matching family name;
// unknown models get DefaultPricing.
func (c *Calculator) PricingFor(model string) PricingTable {
	table, ok := c.lookup(model)
	if !ok {
		return DefaultPricing
	}
	return table
}

// HasPricing reports whether model has its own rates, exact or by family.
func (c *Calculator) HasPricing(model string) bool {
	_, ok := c.lookup(model)
	return ok
}

func (c *Calculator) lookup(model string) (PricingTable, bool) {
	model = strings.ToLower(model)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if table, ok := c.pricing[model]; ok {
		return table, true
	}

	var (
		best    PricingTable
		bestLen int
	)
	for name, table := range c.pricing {
		if strings.Contains(model, name) && len(name) > bestLen {
			best, bestLen = table, len(name)
		}
	}
	return best, bestLen > 0
}

// AddPricing registers or replaces the rates for a model.
func (c *Calculator) AddPricing(model string, table PricingTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pricing[strings.ToLower(model)] = table
}

// Analyze prices usage with the rates of the given model.
func (c *Calculator) Analyze(model string, usage models.UsageRecord) Analysis {
	return Analyze(usage, c.PricingFor(model))
}
