package provider

import "os"

// CredentialResolver looks up provider secrets by environment variable
// name. Values are handed to providers and never logged or echoed.
type CredentialResolver struct {
	lookup func(string) (string, bool)
}

// NewCredentialResolver creates a resolver over lookup. A nil lookup
// reads the process environment.
func NewCredentialResolver(lookup func(string) (string, bool)) *CredentialResolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &CredentialResolver{lookup: lookup}
}

// Resolve returns the value of env, or "" when env is empty or unset.
func (r *CredentialResolver) Resolve(env string) string {
	if env == "" {
		return ""
	}
	v, ok := r.lookup(env)
	if !ok {
		return ""
	}
	return v
}
