// Package model defines the record types shared by the store, the ledger and
// the transports.
//
// The package has no behavior beyond small predicates; every type maps to one
// table of the SQLite schema:
//   - Material, Product: catalog items with stock and alert threshold
//   - RecipeLine: (product, material) -> required quantity
//   - AuditRecord: one immutable row of the append-only audit log
//   - SalesTotal: per-actor cumulative sales amount
//   - WorkSession: one clock-in/clock-out interval
//
// Quantities and amounts are int64 throughout. Stock levels are never negative;
// that invariant is enforced by the ledger and backed by CHECK constraints.
package model
