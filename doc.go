// Package retirement implements a buffer-first withdrawal strategy for a
// retirement funded by a volatile asset.
//
// The core functionalities include:
//   - Tax Lots: an immutable store of acquisition records (Lot, Lots) as
//     loaded from an export.
//   - Lot Selection: converting a cash target into a sale plan, selling the
//     lots with the Highest cost basis In First Out (HIFO) to minimize the
//     realized gain, with long-term/short-term classification of each sale.
//   - Cash Buffer: a state machine that withdraws the monthly need every
//     period and refills the buffer from the lots once it falls under 80% of
//     its target (Buffer, Decision).
//   - Portfolio Scoring: valuation, risk and diversification scores and the
//     recommendations derived from them (Portfolio, Analysis).
//   - Exit Strategy: triggers evaluated against an analysis and an optional
//     market signal (ExitPlan, Trigger).
//
// All amounts are exact decimals. Nothing in this package performs I/O, and
// business conditions (negative buffer, missing lots, insufficient balance)
// are reported in the returned values rather than as errors.
//
// This package serves as the foundational logic for the `rtm` command-line
// tool.
package retirement
