// Package store provides SQLite-backed durable storage for the craftledger
// tables.
//
// The store holds six tables:
//   - materials, products: catalog items with stock and alert threshold
//   - recipes: (product, material) -> quantity, keyed on the pair
//   - sales_totals: per-actor cumulative sales amount
//   - work_sessions: clock-in/clock-out intervals
//   - audit_log: append-only action records
//
// # Transactions
//
// All row access goes through a Tx obtained from Store.Update or Store.View.
// The store has no business rules: it never decides whether a mutation is
// allowed. The ledger reads, checks and writes inside one Update call, and
// because every transaction begins with BEGIN IMMEDIATE on a single
// connection, two such sequences can never interleave.
//
// CHECK constraints (stock >= 0, quantity >= 1, ...) and the audit_log
// triggers are a second line of defense. Hitting one is a bug in the caller.
//
// # Ordering
//
//   - Recipe lines: ORDER BY material_name COLLATE BINARY ASC
//   - Audit log: seq is the logical clock; recent reads ORDER BY seq DESC
//   - Leaderboard: ORDER BY amount DESC, actor_id ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
