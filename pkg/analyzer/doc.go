// Package analyzer turns snapshots into cost insights.
//
// # Overview
//
// Everything in this package is a pure function of its inputs: given a
// snapshot, a pricing table, and thresholds, the analyzer produces the
// same report every time. It never mutates the snapshot it is handed.
//
// The analysis surface mirrors what operators act on:
//
//   - per-site and total cost at a provider's ingestion price
//   - ranking by cost with deterministic tie-breaking
//   - anti-pattern findings (high-frequency, debug-in-production,
//     large-payload)
//   - ROI estimates for a proposed logging cleanup
//   - diffs between two snapshots
//
// # Usage
//
//	pricing, err := analyzer.PricingFor("gcp")
//	if err != nil {
//	    return err
//	}
//	a := analyzer.New(pricing, analyzer.DefaultThresholds())
//	report := a.BuildReport(snap, 10)
package analyzer
