package trust

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultRootMaxLength caps how many bytes of a root metadata file are
// read from disk.
const DefaultRootMaxLength int64 = 512000

// RootRole is the capability set the update driver requires from a
// dialect adapter. A successor built by CreateUpdate may belong to a
// different dialect than its creator (the 0.6 to 1.x upgrade edge).
type RootRole interface {
	// Type returns the role type, always "root" here.
	Type() string
	// SpecVersion returns the full dotted specification version.
	SpecVersion() string
	// Version returns the root metadata version number.
	Version() int64
	// FileExt returns the metadata file extension, "json".
	FileExt() string
	// Roles returns the sorted set of role names this root declares.
	Roles() []string
	// Keys returns the keyring view for every declared role.
	Keys() map[string]RoleFullKeys
	// Signatures enumerates the envelope signatures of doc in this
	// root's dialect, deduplicated by keyid and ordered by keyid.
	Signatures(doc *Document) ([]RoleSignature, error)
	// CreateUpdate parses doc as a candidate successor, selecting the
	// successor dialect and verifying the candidate against its own
	// keys and threshold.
	CreateUpdate(doc *Document) (RootRole, error)
}

// roleBase carries the state common to both dialect adapters.
type roleBase struct {
	roleType    string
	specVersion string
	version     int64
	ext         string
}

func (r *roleBase) Type() string {
	return r.roleType
}

func (r *roleBase) SpecVersion() string {
	return r.specVersion
}

func (r *roleBase) Version() int64 {
	return r.version
}

func (r *roleBase) FileExt() string {
	return r.ext
}

// MajorSpecVersion maps the MAJOR component of the spec version to a
// dialect.
func (r *roleBase) MajorSpecVersion() (SpecVersion, error) {
	return ParseSpecVersion(r.specVersion)
}

// IsSpecVersionCompatible reports whether version shares this role's
// MAJOR spec component.
func (r *roleBase) IsSpecVersionCompatible(version string) bool {
	own, err := ParseSpecVersion(r.specVersion)
	if err != nil {
		return false
	}
	other, err := ParseSpecVersion(version)
	if err != nil {
		return false
	}
	return own == other
}

// IsSpecVersionUpgradable reports whether version is exactly one MAJOR
// spec component ahead of this role's.
func (r *roleBase) IsSpecVersionUpgradable(version string) bool {
	ownMajor, err := specVersionMajor(r.specVersion)
	if err != nil {
		return false
	}
	otherMajor, err := specVersionMajor(version)
	if err != nil {
		return false
	}
	return otherMajor == ownMajor+1
}

func specVersionMajor(version string) (int, error) {
	major, err := strconv.Atoi(strings.SplitN(version, ".", 2)[0])
	if err != nil {
		return 0, ErrMetadata{Msg: "non-numeric MAJOR component in spec version: " + version}
	}
	return major, nil
}

// Role files are named VERSION.SPECTAG.ROLE.EXT. The version component
// of an update must be a positive integer without a leading zero; the
// spec tag is opaque and reserved.
var (
	updateFileRe  = regexp.MustCompile(`^([1-9]\d*)\.\w+\.(\w+)\.(\w+)$`)
	initialFileRe = regexp.MustCompile(`^\d+\.\w+\.(\w+)\.(\w+)$`)
)

// LoadRoleFile reads a role metadata file after checking its name
// against the filename grammar. A non-negative expectedVersion makes
// this an update load: the filename version must equal it. Passing a
// negative expectedVersion relaxes the grammar for initial trusted
// loads and skips the version equality check. This is a pre-filter
// only; cryptographic checks still run on the content.
func LoadRoleFile(path, role, ext string, expectedVersion, maxLength int64) ([]byte, error) {
	if _, err := os.Stat(path); err != nil {
		log.Error(err, "file not found for 'root' update", "path", path)
		return nil, ErrRoleFile{Msg: "file not found: " + path}
	}

	name := filepath.Base(path)
	var fVersion, fRole, fExt string
	if expectedVersion >= 0 {
		matches := updateFileRe.FindStringSubmatch(name)
		if matches == nil {
			log.Info("invalid file name for 'root' metadata update", "name", name)
			return nil, ErrRoleFile{Msg: "invalid metadata file name: " + name}
		}
		fVersion, fRole, fExt = matches[1], matches[2], matches[3]
	} else {
		matches := initialFileRe.FindStringSubmatch(name)
		if matches == nil {
			log.Info("invalid file name for 'root' metadata", "name", name)
			return nil, ErrRoleFile{Msg: "invalid metadata file name: " + name}
		}
		fRole, fExt = matches[1], matches[2]
	}

	if fExt != ext {
		log.Info("wrong extension in 'root' metadata file name", "extension", fExt)
		return nil, ErrRoleFile{Msg: fmt.Sprintf("metadata file should have '%s' extension, not: '%s'", ext, fExt)}
	}
	if fRole != role {
		log.Info("wrong role in 'root' metadata file name", "role", fRole)
		return nil, ErrRoleFile{Msg: fmt.Sprintf("metadata file should have '%s' role, not: '%s'", role, fRole)}
	}

	if expectedVersion >= 0 {
		v, err := strconv.ParseInt(fVersion, 10, 64)
		if err != nil {
			return nil, ErrRoleFile{Msg: "invalid version in metadata file name: " + fVersion}
		}
		if v != expectedVersion {
			log.Info("wrong version in 'root' metadata file name", "version", v, "expected", expectedVersion)
			return nil, ErrRoleFile{Msg: fmt.Sprintf("metadata file name should start with version %d, but starts with %d", expectedVersion, v)}
		}
	}

	in, err := os.Open(path)
	if err != nil {
		return nil, ErrRoleFile{Msg: "error opening metadata file: " + path}
	}
	defer in.Close()
	if maxLength <= 0 {
		maxLength = DefaultRootMaxLength
	}
	data, err := io.ReadAll(io.LimitReader(in, maxLength+1))
	if err != nil {
		return nil, ErrRoleFile{Msg: "error reading metadata file: " + path}
	}
	if int64(len(data)) > maxLength {
		return nil, ErrRoleFile{Msg: fmt.Sprintf("metadata file exceeds maximum length of %d bytes: %s", maxLength, path)}
	}
	return data, nil
}

// checkSignatures tallies valid signatures over signedData against the
// keyring and errors if the threshold is not met. Signatures by unknown
// keyids and invalid signatures by known keys are logged and skipped;
// the tally stops once the threshold is reached.
func checkSignatures(signedData []byte, signatures []RoleSignature, keyring RoleFullKeys) error {
	validSigs := 0
	for _, s := range signatures {
		if key, ok := keyring.Keys[s.KeyID]; ok {
			valid, err := VerifyHex(signedData, key.Value, s.Sig)
			if err != nil {
				return err
			}
			if valid {
				validSigs++
			} else {
				log.Info("invalid signature of 'root' metadata", "keyid", s.KeyID)
			}
		} else {
			log.Info("unknown keyid in 'root' metadata signatures", "keyid", s.KeyID)
		}
		if validSigs >= keyring.Threshold {
			break
		}
	}
	if validSigs < keyring.Threshold {
		log.Info("threshold of valid signatures is not met", "valid", validSigs, "threshold", keyring.Threshold)
		return ErrThreshold{Msg: fmt.Sprintf("got %d valid signatures of 'root' metadata, want %d", validSigs, keyring.Threshold)}
	}
	return nil
}

// checkRoleSignatures verifies doc's signatures, enumerated in the
// candidate's dialect, against the verifier root's own root keyring.
func checkRoleSignatures(doc *Document, candidate, verifier RootRole) error {
	signatures, err := candidate.Signatures(doc)
	if err != nil {
		return err
	}
	rootKeys, ok := verifier.Keys()[ROOT]
	if !ok {
		return ErrMetadata{Msg: "no 'root' keyring in trusted root metadata"}
	}
	return checkSignatures(doc.Signed, signatures, rootKeys)
}

// UpdateRoot validates doc as the successor of current and returns the
// new root. current is never modified; on any error the caller keeps
// its trusted root unchanged.
func UpdateRoot(current RootRole, doc *Document) (RootRole, error) {
	// TUF spec 5.3.4 - check for an arbitrary software attack.
	// The candidate's own signatures are checked against its own keys
	// and threshold while it is built.
	candidate, err := current.CreateUpdate(doc)
	if err != nil {
		return nil, err
	}

	// check signatures against the currently trusted keys and threshold
	if err := checkRoleSignatures(doc, candidate, current); err != nil {
		return nil, err
	}

	// TUF spec 5.3.5 - check for a rollback attack.
	// Version number has to be exactly N+1.
	if candidate.Version() != current.Version()+1 {
		if candidate.Version() > current.Version()+1 {
			log.Info("invalid 'root' metadata version", "version", candidate.Version(), "expected", current.Version()+1)
			return nil, ErrMetadata{Msg: fmt.Sprintf("'root' metadata version should be exactly %d, got %d", current.Version()+1, candidate.Version())}
		}
		log.Info("possible rollback attack of 'root' metadata", "version", candidate.Version(), "current", current.Version())
		return nil, ErrRollback{Msg: fmt.Sprintf("candidate 'root' version %d is not newer than %d", candidate.Version(), current.Version())}
	}

	return candidate, nil
}
