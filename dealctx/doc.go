// Package dealctx derives the economics of a candidate deal for both
// sides of the table: what the buyer pays at the register, what the
// buyer effectively pays after card rewards, and what the seller
// receives, spends, and earns. Computation is pure so buyer and seller
// prompts always quote consistent numbers instead of model arithmetic.
package dealctx
