package config

import (
	"github.com/pkgtrust/go-pkgtrust/trust"
)

// TrustConfig carries the caller-facing knobs of a TrustRepo. The
// SpecVersionHint is advisory only: the dialect of the local trusted
// root is always detected by probing the document itself.
type TrustConfig struct {
	BaseURL          string
	LocalTrustedRoot string
	SpecVersionHint  trust.SpecVersion
	RootMaxLength    int64
}

// New creates a new TrustConfig instance with defaults for the
// repository identified by baseURL, trusting the root file at localRoot.
func New(baseURL, localRoot string) *TrustConfig {
	return &TrustConfig{
		BaseURL:          baseURL,
		LocalTrustedRoot: localRoot,
		SpecVersionHint:  trust.SpecVersionUnknown,
		RootMaxLength:    trust.DefaultRootMaxLength, // bytes
	}
}
