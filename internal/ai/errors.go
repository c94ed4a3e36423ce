package ai

import "fmt"

// ProviderError is any failure talking to an AI backend or making sense of its answer.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func providerError(provider, op string, err error) error {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}
