// Package trustrepo holds the currently trusted root of a package
// repository and drives root successor updates against it.
//
// A TrustRepo is single-threaded from the caller's viewpoint: every
// operation runs to completion before returning, and parallel calls
// must be serialised by the caller. A failed update leaves the trusted
// root unchanged; a successful one is visible to every subsequent
// query.
package trustrepo

import (
	"github.com/pkgtrust/go-pkgtrust/trust"
	"github.com/pkgtrust/go-pkgtrust/trust/config"
)

// TrustRepo owns the currently trusted root of one repository.
type TrustRepo struct {
	cfg  *config.TrustConfig
	root trust.RootRole
}

// New creates a TrustRepo from the local trusted root file named by the
// configuration. The file's dialect is detected by probing the parsed
// document with the per-dialect compatibility predicates; the
// configured hint never overrides the detection.
func New(cfg *config.TrustConfig) (*TrustRepo, error) {
	data, err := trust.LoadRoleFile(cfg.LocalTrustedRoot, trust.ROOT, "json", -1, cfg.RootMaxLength)
	if err != nil {
		return nil, err
	}
	doc, err := trust.DocumentFromBytes(data)
	if err != nil {
		return nil, err
	}

	var root trust.RootRole
	switch {
	case trust.IsV06Compatible(doc):
		root, err = trust.NewRootV06(doc)
	case trust.IsV1Compatible(doc):
		root, err = trust.NewRootV1(doc)
	default:
		return nil, trust.ErrSpecVersion{Msg: "local trusted root is neither in the 0.6.x nor the 1.x dialect"}
	}
	if err != nil {
		return nil, err
	}

	if cfg.SpecVersionHint != trust.SpecVersionUnknown {
		if detected, err := trust.ParseSpecVersion(root.SpecVersion()); err == nil && detected != cfg.SpecVersionHint {
			log := trust.GetLogger()
			log.Info("spec version hint does not match the local trusted root, using the detected dialect",
				"hint", cfg.SpecVersionHint.String(), "detected", detected.String())
		}
	}

	return &TrustRepo{cfg: cfg, root: root}, nil
}

// UpdateFromFile applies the root successor stored at path. The file
// name must match the update grammar and carry version N+1; this is a
// pre-filter, the cryptographic checks still run on the content.
func (t *TrustRepo) UpdateFromFile(path string) error {
	data, err := trust.LoadRoleFile(path, t.root.Type(), t.root.FileExt(), t.root.Version()+1, t.cfg.RootMaxLength)
	if err != nil {
		return err
	}
	return t.UpdateFromBytes(data)
}

// UpdateFromBytes applies an in-memory root successor document.
func (t *TrustRepo) UpdateFromBytes(data []byte) error {
	doc, err := trust.DocumentFromBytes(data)
	if err != nil {
		return err
	}
	newRoot, err := trust.UpdateRoot(t.root, doc)
	if err != nil {
		return err
	}
	t.root = newRoot
	log := trust.GetLogger()
	log.Info("updated trusted 'root' metadata", "version", t.root.Version(), "spec_version", t.root.SpecVersion())
	return nil
}

// BaseURL returns the URL identifying the repository this root governs.
func (t *TrustRepo) BaseURL() string {
	return t.cfg.BaseURL
}

// CurrentVersion returns the version of the trusted root.
func (t *TrustRepo) CurrentVersion() int64 {
	return t.root.Version()
}

// CurrentSpecVersion returns the full spec version of the trusted root.
func (t *TrustRepo) CurrentSpecVersion() string {
	return t.root.SpecVersion()
}

// Roles returns the sorted role names the trusted root declares.
func (t *TrustRepo) Roles() []string {
	return t.root.Roles()
}

// Keyring returns the keyring view of the named role.
func (t *TrustRepo) Keyring(role string) (trust.RoleFullKeys, error) {
	keys, ok := t.root.Keys()[role]
	if !ok {
		return trust.RoleFullKeys{}, trust.ErrValue{Msg: "no keyring for role: '" + role + "'"}
	}
	return keys, nil
}
