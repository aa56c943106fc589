// Package agent implements the negotiation participants. The buyer
// opens each round, steering toward its budget and addressing sellers
// by @mention. Sellers answer with free text plus an optional
// structured offer. Each turn renders a role prompt, drives a single
// model call, and parses the completion into a typed result.
package agent
