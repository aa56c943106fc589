package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/hupe1980/haggle/model"
)

// ScriptedModel is a deterministic model.Model for tests. Sticky rules
// answer any request whose prompt contains a substring, which keeps
// concurrent seller turns order-independent; queued steps are consumed
// in FIFO order for the sequential buyer and decision calls. Rules win
// over the queue, and the fallback answers everything else.
//
// Example:
//
//	m := NewScriptedModel().
//		Respond("You are TechStore", "Can do $700.").
//		Queue("@TechStore can you go lower?").
//		Fallback("CONTINUE")
type ScriptedModel struct {
	mu       sync.Mutex
	rules    []scriptedRule
	queue    []scriptedStep
	fallback string
	requests []model.Request
}

type scriptedRule struct {
	substr string
	text   string
	err    error
}

type scriptedStep struct {
	text string
	err  error
}

var _ model.Model = (*ScriptedModel)(nil)

// NewScriptedModel creates an empty scripted model whose fallback
// answer is "OK".
func NewScriptedModel() *ScriptedModel {
	return &ScriptedModel{fallback: "OK"}
}

// Respond registers a sticky rule answering any request whose prompt
// contains substr (chainable). Rules are checked in registration order.
func (m *ScriptedModel) Respond(substr, text string) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules = append(m.rules, scriptedRule{substr: substr, text: text})
	return m
}

// RespondErr registers a sticky rule failing any request whose prompt
// contains substr (chainable).
func (m *ScriptedModel) RespondErr(substr string, err error) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules = append(m.rules, scriptedRule{substr: substr, err: err})
	return m
}

// Queue appends a completion consumed by the next unmatched request
// (chainable).
func (m *ScriptedModel) Queue(text string) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = append(m.queue, scriptedStep{text: text})
	return m
}

// QueueErr appends a failure consumed by the next unmatched request
// (chainable).
func (m *ScriptedModel) QueueErr(err error) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = append(m.queue, scriptedStep{err: err})
	return m
}

// Fallback replaces the answer used when no rule or queued step applies
// (chainable).
func (m *ScriptedModel) Fallback(text string) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fallback = text
	return m
}

// Generate implements model.Model.
func (m *ScriptedModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	text, err := m.resolve(req)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if err != nil {
			select {
			case <-ctx.Done():
			case errCh <- err:
			}

			return
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- model.Response{Content: text, FinishReason: "stop"}:
		}
	}()

	return respCh, errCh
}

// Info implements model.Model.
func (m *ScriptedModel) Info() model.Info {
	return model.Info{Name: "scripted", Provider: "testutil"}
}

// Requests returns a snapshot of every request served so far.
func (m *ScriptedModel) Requests() []model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Request, len(m.requests))
	copy(out, m.requests)

	return out
}

// Calls returns the number of requests served so far.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.requests)
}

func (m *ScriptedModel) resolve(req model.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	var prompt strings.Builder

	for _, msg := range req.Messages {
		prompt.WriteString(msg.Content)
		prompt.WriteString("\n")
	}

	joined := prompt.String()

	for _, rule := range m.rules {
		if strings.Contains(joined, rule.substr) {
			return rule.text, rule.err
		}
	}

	if len(m.queue) > 0 {
		step := m.queue[0]
		m.queue = m.queue[1:]

		return step.text, step.err
	}

	return m.fallback, nil
}
