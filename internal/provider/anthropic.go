package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
)

// NewAnthropicClient returns a client using API key from the env.
func NewAnthropicClient() *anthropic.Client {
	c := anthropic.NewClient()
	return &c
}

const DefaultModel = anthropic.ModelClaude3_7SonnetLatest

// ResolveModel maps a configured model name to the SDK model identifier,
// falling back to DefaultModel when unset.
func ResolveModel(name string) anthropic.Model {
	if name == "" {
		return DefaultModel
	}
	return anthropic.Model(name)
}
