package trust

import (
	"crypto/sha256"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/secure-systems-lab/go-securesystemslib/cjson"
)

// Top level role names. KEYMGR exists only in the 0.6.x dialect.
const (
	ROOT      = "root"
	SNAPSHOT  = "snapshot"
	TARGETS   = "targets"
	TIMESTAMP = "timestamp"
	KEYMGR    = "key_mgr"
)

const (
	KeyTypeEd25519   = "ed25519"
	KeySchemeEd25519 = "ed25519"
)

// SpecVersion identifies the on-disk dialect of a root document,
// derived from the MAJOR component of its specification version.
type SpecVersion int

const (
	SpecVersionUnknown SpecVersion = iota
	SpecV06
	SpecV1
)

func (v SpecVersion) String() string {
	switch v {
	case SpecV06:
		return "v0.6"
	case SpecV1:
		return "v1"
	default:
		return "unknown"
	}
}

// ParseSpecVersion maps a dotted MAJOR.MINOR[.PATCH] string to the
// dialect it declares.
func ParseSpecVersion(version string) (SpecVersion, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 2 && len(parts) != 3 {
		return SpecVersionUnknown, ErrMetadata{Msg: "spec version is not of the form MAJOR.MINOR[.PATCH]: " + version}
	}
	for _, p := range parts {
		if _, err := strconv.ParseUint(p, 10, 32); err != nil {
			return SpecVersionUnknown, ErrMetadata{Msg: "non-numeric component in spec version: " + version}
		}
	}
	major, _ := strconv.Atoi(parts[0])
	switch major {
	case 0:
		return SpecV06, nil
	case 1:
		return SpecV1, nil
	default:
		return SpecVersionUnknown, ErrSpecVersion{Msg: "unsupported spec version: " + version}
	}
}

// Key is an immutable public key record. Value carries the raw public
// key hex-encoded, 64 characters for Ed25519.
type Key struct {
	Type   string `json:"keytype"`
	Scheme string `json:"scheme"`
	Value  string `json:"keyval"`
	id     string
	idOnce sync.Once
}

// KeyFromEd25519 builds a Key record from a raw hex-encoded Ed25519
// public key. The 0.6.x dialect uses the hex itself as the keyid.
func KeyFromEd25519(pubHex string) *Key {
	return &Key{Type: KeyTypeEd25519, Scheme: KeySchemeEd25519, Value: pubHex}
}

// ID returns the keyid value for the given Key, the SHA-256 of its
// canonical JSON encoding.
func (k *Key) ID() string {
	k.idOnce.Do(func() {
		data, err := cjson.EncodeCanonical(k)
		if err != nil {
			panic(ErrCrypto{Msg: "error creating key ID: " + err.Error()})
		}
		digest := sha256.Sum256(data)
		k.id = EncodeHex(digest[:])
	})
	return k.id
}

// RoleKeys is the 1.x role-to-key binding: keyids plus threshold.
type RoleKeys struct {
	KeyIDs    []string `json:"keyids"`
	Threshold int      `json:"threshold"`
}

// RolePubKeys is the 0.6.x shape: raw public key hex strings acting as
// their own keyids, plus threshold.
type RolePubKeys struct {
	PubKeys   []string `json:"pubkeys"`
	Threshold int      `json:"threshold"`
}

// ToRoleKeys projects the 0.6.x shape to the 1.x one.
func (r RolePubKeys) ToRoleKeys() RoleKeys {
	keyids := make([]string, len(r.PubKeys))
	copy(keyids, r.PubKeys)
	return RoleKeys{KeyIDs: keyids, Threshold: r.Threshold}
}

// RoleFullKeys is the runtime keyring view used during verification: a
// keyid-to-key mapping together with the role threshold. Derived, never
// persisted.
type RoleFullKeys struct {
	Keys      map[string]*Key
	Threshold int
}

// RoleSignature is a (keyid, hex-encoded signature) pair.
type RoleSignature struct {
	KeyID string `json:"keyid"`
	Sig   string `json:"sig"`
}

// Document is the outer metadata envelope. Signed keeps the exact bytes
// of the signed sub-object as they appeared in the input; signatures are
// verified over those bytes, never over a re-serialised form. The shape
// of Signatures differs per dialect, so it too stays raw here.
type Document struct {
	Signed     json.RawMessage `json:"signed"`
	Signatures json.RawMessage `json:"signatures"`
}

// DocumentFromBytes parses the outer envelope. Unknown top level fields
// are tolerated; absent signed or signatures are not.
func DocumentFromBytes(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, ErrMetadata{Msg: "invalid metadata envelope: " + err.Error()}
	}
	if len(doc.Signed) == 0 {
		return nil, ErrMetadata{Msg: "metadata envelope has no 'signed' field"}
	}
	if len(doc.Signatures) == 0 {
		return nil, ErrMetadata{Msg: "metadata envelope has no 'signatures' field"}
	}
	var probe any
	if err := json.Unmarshal(doc.Signed, &probe); err != nil {
		return nil, ErrMetadata{Msg: "invalid 'signed' field: " + err.Error()}
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, ErrMetadata{Msg: "'signed' field is not an object"}
	}
	return doc, nil
}
