// Package quantity extracts an amount, a unit and an optional repeat multiplier
// from free-text ingredient labels.
//
// Parsing runs an ordered table of independent rules and stops at the first
// one that matches:
//   - count × weight ("2 x 110g") yields the count
//   - parenthesized base with multiplier ("(110g) x2")
//   - leading number and unit ("250g flour")
//   - leading bare number or fraction ("1/2 onion", "1½ lemons")
//   - parenthesized number and unit anywhere ("onion (80g)")
//   - any number and unit anywhere
//
// Unit tokens are mapped to canonical names through a fixed alias table.
package quantity
