// Package harness runs YAML ledger scenarios against a real ledger.
//
// A scenario names setup steps, a flow of ledger operations and assertions:
//
//	name: chair_craft
//	description: Crafting draws down materials and raises low-stock alerts
//	setup:
//	  - action: register_material
//	    args: {name: Wood, threshold: 5}
//	flow:
//	  - invoke: craft
//	    args: {product: Chair, quantity: 3}
//	    expect:
//	      case: Success
//	      result: {product_stock: 3}
//	assertions:
//	  - type: audit_contains
//	    kind: CRAFT
//	    detail: Chair x3
//
// Every run uses a fresh in-memory store, a manual clock starting at
// testutil.Epoch, request IDs req-0001, req-0002, ... and an alert recorder,
// so the trace, audit log and alerts are byte-for-byte reproducible and can
// be compared against golden files.
//
// Rejected operations are not harness failures: a step's output case is
// "Success" or the ledger error code (INSUFFICIENT_MATERIAL, UNKNOWN_ITEM,
// ...), and the flow's expect clauses say which one is wanted.
//
// Supported actions: register_material, register_product, set_recipe_line,
// remove_recipe_line, delete_material, delete_product, set_price,
// set_threshold, adjust_stock, craft, sell, clock_in, clock_out,
// reset_sales, reset_all_sales, role_change. Steps run as the scenario's
// actor unless they pass an "actor" arg.
//
// Flow steps may set "advance" (a Go duration) to move the clock before
// they run, which is how attendance scenarios accumulate worked minutes.
package harness
