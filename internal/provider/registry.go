package provider

import (
	"fmt"
	"net/http"

	"github.com/mandalnilabja/inkgate/internal/config"
	"github.com/mandalnilabja/inkgate/internal/provider/fusionbrain"
	"github.com/mandalnilabja/inkgate/internal/provider/huggingface"
	"github.com/mandalnilabja/inkgate/internal/provider/openai"
)

// constructors maps a provider kind to its constructor.
var constructors = map[string]func(Options) Provider{
	huggingface.Kind: func(o Options) Provider {
		return huggingface.New(o.Name, o.URL, o.Key, o.HTTPClient)
	},
	openai.Kind: func(o Options) Provider {
		return openai.New(o.Name, o.URL, o.Model, o.Key, o.HTTPClient)
	},
	fusionbrain.Kind: func(o Options) Provider {
		return fusionbrain.New(o.Name, o.URL, o.Key, o.Secret, o.HTTPClient)
	},
}

// Kinds returns the registered provider kinds.
func Kinds() []string {
	return []string{huggingface.Kind, openai.Kind, fusionbrain.Kind}
}

// NewChain builds the ordered provider chain from configuration. Entries
// whose credentials are missing are kept; they fail their attempt
// immediately so the chain order stays as configured.
func NewChain(entries []config.Provider, creds *CredentialResolver, client *http.Client) ([]Entry, error) {
	if client == nil {
		client = NewHTTPClient()
	}

	chain := make([]Entry, 0, len(entries))
	for _, e := range entries {
		construct, ok := constructors[e.Kind]
		if !ok {
			return nil, fmt.Errorf("provider %q: unknown kind %q", e.Name, e.Kind)
		}
		p := construct(Options{
			Name:       e.Name,
			URL:        e.URL,
			Model:      e.Model,
			Key:        creds.Resolve(e.CredentialEnv),
			Secret:     creds.Resolve(e.SecretEnv),
			HTTPClient: client,
		})
		chain = append(chain, Entry{Provider: p, Timeout: e.Timeout})
	}
	return chain, nil
}
