package analyzer

import (
	"fmt"
	"strings"

	"github.com/logcost/logcost-go/pkg/tracker"
)

// bytesPerGiB is the divisor behind every cost figure: providers bill log
// ingestion per GiB.
const bytesPerGiB = 1 << 30

// Ingestion prices in USD per GiB. Overridable per Pricing value; these
// are the published list prices the system ships with.
var builtinPricing = map[string]float64{
	"gcp":   0.50,
	"aws":   0.57,
	"azure": 0.63,
}

// Pricing converts byte volume into money for one provider.
type Pricing struct {
	Provider string  // Lowercased provider identifier
	Currency string  // Display currency, informational only
	PerGiB   float64 // Price per GiB ingested
}

// UnknownProviderError reports a provider with no built-in price.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q (built-in: gcp, aws, azure)", e.Provider)
}

// PricingFor looks up the built-in price for a provider. The lookup is
// case-insensitive; currency defaults to USD.
func PricingFor(provider string) (Pricing, error) {
	key := strings.ToLower(provider)
	price, ok := builtinPricing[key]
	if !ok {
		return Pricing{}, &UnknownProviderError{Provider: provider}
	}
	return Pricing{Provider: key, Currency: "USD", PerGiB: price}, nil
}

// Cost prices a byte volume: bytes / 2^30 * PerGiB. Linear in bytes.
func (p Pricing) Cost(bytes int64) float64 {
	return float64(bytes) / bytesPerGiB * p.PerGiB
}

// ApplyPricing returns a copy of the snapshot with the provider stamped
// and every cost field computed from the entry byte counts. The input is
// left untouched.
func ApplyPricing(snap tracker.Snapshot, p Pricing) tracker.Snapshot {
	out := snap
	out.Provider = p.Provider
	out.Entries = make([]tracker.Entry, len(snap.Entries))
	out.TotalCost = 0
	for i, e := range snap.Entries {
		e.Cost = p.Cost(e.Bytes)
		out.Entries[i] = e
		out.TotalCost += e.Cost
	}
	return out
}
