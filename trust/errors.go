package trust

import (
	"fmt"
)

// Error kinds raised by the trust engine. Each kind of the ErrTrust
// family is a struct with a message and an Is method so callers can
// match with errors.Is against the zero value of the kind, or against
// ErrTrust{} for the whole family.

// ErrTrust - abstract parent of every trust verification error.
// Never returned directly.
type ErrTrust struct {
	Msg string
}

func (e ErrTrust) Error() string {
	return fmt.Sprintf("trust error: %s", e.Msg)
}

// ErrThreshold - the count of valid signatures is below the required
// role threshold, either against the document's own keys or against the
// previously trusted keys
type ErrThreshold struct {
	Msg string
}

func (e ErrThreshold) Error() string {
	return fmt.Sprintf("signatures threshold not met: %s", e.Msg)
}

// ErrThreshold is a subset of ErrTrust
func (e ErrThreshold) Is(target error) bool {
	return target == ErrTrust{} || target == ErrThreshold{}
}

// ErrMetadata - invalid role metadata: wrong JSON shape, missing required
// field, wrong role set, dangling keyid or a version jump greater than one
type ErrMetadata struct {
	Msg string
}

func (e ErrMetadata) Error() string {
	return fmt.Sprintf("invalid role metadata: %s", e.Msg)
}

// ErrMetadata is a subset of ErrTrust
func (e ErrMetadata) Is(target error) bool {
	return target == ErrTrust{} || target == ErrMetadata{}
}

// ErrRollback - candidate root version is not greater than the trusted one
type ErrRollback struct {
	Msg string
}

func (e ErrRollback) Error() string {
	return fmt.Sprintf("possible rollback attack: %s", e.Msg)
}

// ErrRollback is a subset of ErrTrust
func (e ErrRollback) Is(target error) bool {
	return target == ErrTrust{} || target == ErrRollback{}
}

// ErrRoleFile - missing role file, filename grammar violation, wrong role
// or extension, or a filename version that is not N+1
type ErrRoleFile struct {
	Msg string
}

func (e ErrRoleFile) Error() string {
	return fmt.Sprintf("invalid role file: %s", e.Msg)
}

// ErrRoleFile is a subset of ErrTrust
func (e ErrRoleFile) Is(target error) bool {
	return target == ErrTrust{} || target == ErrRoleFile{}
}

// ErrSpecVersion - the document's specification dialect is not supported,
// either at all or as a transition from the current dialect
type ErrSpecVersion struct {
	Msg string
}

func (e ErrSpecVersion) Error() string {
	return fmt.Sprintf("unsupported specification version: %s", e.Msg)
}

// ErrSpecVersion is a subset of ErrTrust
func (e ErrSpecVersion) Is(target error) bool {
	return target == ErrTrust{} || target == ErrSpecVersion{}
}

// ErrCrypto - an underlying Ed25519 or hex primitive failed. An invalid
// signature is not a crypto error; it is counted and surfaces as
// ErrThreshold after the tally.
type ErrCrypto struct {
	Msg string
}

func (e ErrCrypto) Error() string {
	return fmt.Sprintf("crypto error: %s", e.Msg)
}

// ErrCrypto is a subset of ErrTrust
func (e ErrCrypto) Is(target error) bool {
	return target == ErrTrust{} || target == ErrCrypto{}
}

// ErrValue - an invalid value outside the trust taxonomy, such as a hex
// codec failure or a lookup of an absent keyring. It has no Is method
// and is not a member of the ErrTrust family.
type ErrValue struct {
	Msg string
}

func (e ErrValue) Error() string {
	return fmt.Sprintf("value error: %s", e.Msg)
}
