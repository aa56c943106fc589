// Package wallet models buyer credit cards and computes which card yields
// the largest savings for a purchase. Deal context generation and decision
// events use it to report effective, card-adjusted totals.
package wallet
