// Package visibility narrows conversation history to the messages a
// participant may read. Buyer messages are visible to everyone in the
// room while seller messages are private to that seller and the buyer,
// so sellers never see each other's offers.
package visibility
