// Package provider implements language-model backends behind the
// port.Provider capability interface.
package provider

import (
	"fmt"
	"sort"
	"strings"

	"techdocs/config"
	"techdocs/internal/port"
)

// Factory builds a provider from configuration.
type Factory func(cfg *config.Config) (port.Provider, error)

var registry = map[string]Factory{
	"openai": NewOpenAIProvider,
	"mock":   newMockFromConfig,
}

// New builds the provider named in the configuration. Adding a backend
// means implementing port.Provider and registering its factory here.
func New(cfg *config.Config) (port.Provider, error) {
	factory, ok := registry[cfg.LLM.Provider]
	if !ok {
		names := make([]string, 0, len(registry))
		for name := range registry {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown LLM provider %q, available providers: %s", cfg.LLM.Provider, strings.Join(names, ", "))
	}
	return factory(cfg)
}
