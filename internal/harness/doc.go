// Package harness runs storefront scenarios written in YAML.
//
// # Scenario Format
//
//	name: cart_merge
//	description: "Adding the same product twice merges into one line"
//	fixtures:                 # optional raw collections written before setup
//	  cart:
//	    - {id: 7, name: Mug, price: 10}
//	setup:                    # intents that must succeed, not traced
//	  - kind: login
//	    user: {id: m1, name: Mia, role: manager}
//	flow:                     # intents that are traced and checked
//	  - kind: add-to-cart
//	    product: {id: "7", name: Mug, price: 10}
//	    expect:
//	      code: ok
//	      message: "Mug added to cart!"
//	      badges: {cart: 2, wishlist: 0}
//	assertions:
//	  - type: collection_count
//	    collection: cart
//	    count: 1
//
// # Assertion Types
//
//   - notifications: the exact notification texts raised by the flow
//   - badges: the final cart and wishlist counts
//   - collection_count: the number of records in a collection
//   - final_state: a record matching where has the expected fields
//
// Every scenario runs against a fresh in-memory store with a deterministic
// clock and sequential ids (p-1, p-2, ...), so traces compare byte for byte
// against golden files.
package harness
