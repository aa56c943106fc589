package agent

import (
	"context"
	"strings"

	"github.com/hupe1980/haggle/model"
)

// Helper functions for the pointer-typed sampling overrides on model
// requests.

func float64Ptr(v float64) *float64 {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}

// Generate runs one model call and collects the final completion text.
// Partial chunks are accumulated and used only when the model never
// emits a final response. The returned text is whitespace-trimmed.
func Generate(ctx context.Context, m model.Model, req model.Request) (string, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		partials strings.Builder
		final    string
		genErr   error
	)

	for respCh != nil || errCh != nil {
		select {
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil

				continue
			}

			if resp.Partial {
				partials.WriteString(resp.Content)

				continue
			}

			final = resp.Content
		case err, ok := <-errCh:
			if !ok {
				errCh = nil

				continue
			}

			genErr = err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if genErr != nil {
		return "", genErr
	}

	if final == "" {
		final = partials.String()
	}

	return strings.TrimSpace(final), nil
}
