// Package prompt renders the chat transcripts that drive the negotiation
// agents: the buyer persona, the seller personas and the accept-or-continue
// decision classifier.
//
// Renderers are pure functions from inputs to []model.ChatMessage. History
// passed in must already be visibility-filtered for the reading agent; the
// renderers only truncate it to keep prompts bounded.
package prompt
