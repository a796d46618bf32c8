package trust

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/secure-systems-lab/go-securesystemslib/cjson"
)

var mandatoryV06Roles = []string{ROOT, KEYMGR}

// RootV06 is the legacy 0.6.x root role. Its delegations carry raw
// public keys that double as keyids, and its signatures envelope is a
// keyid-to-object mapping rather than an array.
type RootV06 struct {
	roleBase
	delegations map[string]RolePubKeys
}

type rootV06Signed struct {
	Type        *string                `json:"type"`
	SpecVersion *string                `json:"metadata_spec_version"`
	Version     *int64                 `json:"version"`
	Delegations map[string]RolePubKeys `json:"delegations"`
}

// NewRootV06 parses doc as a 0.6.x root and verifies the document's own
// signatures against its own root delegation and threshold.
func NewRootV06(doc *Document) (*RootV06, error) {
	role := &RootV06{
		roleBase: roleBase{roleType: ROOT, specVersion: "0.6.0", ext: "json"},
	}
	if err := role.loadSigned(doc.Signed); err != nil {
		return nil, err
	}
	if err := checkRoleSignatures(doc, role, role); err != nil {
		return nil, err
	}
	return role, nil
}

// RootV06FromFile loads an initial trusted 0.6.x root from path.
func RootV06FromFile(path string) (*RootV06, error) {
	data, err := LoadRoleFile(path, ROOT, "json", -1, DefaultRootMaxLength)
	if err != nil {
		return nil, err
	}
	doc, err := DocumentFromBytes(data)
	if err != nil {
		return nil, err
	}
	return NewRootV06(doc)
}

func (r *RootV06) loadSigned(signed json.RawMessage) error {
	var s rootV06Signed
	if err := json.Unmarshal(signed, &s); err != nil {
		return ErrMetadata{Msg: "invalid 'root' metadata: " + err.Error()}
	}
	if s.Type == nil || s.SpecVersion == nil || s.Version == nil || s.Delegations == nil {
		return ErrMetadata{Msg: "missing required field in 'root' metadata"}
	}
	if *s.Type != ROOT {
		return ErrMetadata{Msg: "wrong 'type' in 'root' metadata, should be 'root': '" + *s.Type + "'"}
	}
	if !strings.HasPrefix(*s.SpecVersion, "0.6.") {
		return ErrMetadata{Msg: "incompatible 'metadata_spec_version' in 'root' metadata, should be '0.6.x': '" + *s.SpecVersion + "'"}
	}
	if _, err := ParseSpecVersion(*s.SpecVersion); err != nil {
		return err
	}
	if *s.Version < 1 {
		return ErrMetadata{Msg: "'root' metadata version should be at least 1"}
	}

	for name, pk := range s.Delegations {
		if len(pk.PubKeys) == 0 {
			return ErrMetadata{Msg: "'root' metadata should declare at least one public key in 'pubkeys' for delegation: '" + name + "'"}
		}
		if pk.Threshold < 1 {
			return ErrMetadata{Msg: "'root' metadata should declare at least a 'threshold' of 1 for delegation: '" + name + "'"}
		}
	}
	// the delegation set is closed: exactly root and key_mgr
	if len(s.Delegations) != len(mandatoryV06Roles) {
		return ErrMetadata{Msg: "invalid delegations in 'root' metadata"}
	}
	for _, mandatory := range mandatoryV06Roles {
		if _, ok := s.Delegations[mandatory]; !ok {
			return ErrMetadata{Msg: "invalid delegations in 'root' metadata"}
		}
	}

	r.specVersion = *s.SpecVersion
	r.version = *s.Version
	r.delegations = s.Delegations
	return nil
}

// Roles returns the sorted delegation names.
func (r *RootV06) Roles() []string {
	names := make([]string, 0, len(r.delegations))
	for name := range r.delegations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keys synthesises the keyring view, treating each pubkey hex as its
// own keyid.
func (r *RootV06) Keys() map[string]RoleFullKeys {
	res := map[string]RoleFullKeys{}
	for name, d := range r.delegations {
		roleKeys := map[string]*Key{}
		for _, pub := range d.PubKeys {
			roleKeys[pub] = KeyFromEd25519(pub)
		}
		res[name] = RoleFullKeys{Keys: roleKeys, Threshold: d.Threshold}
	}
	return res
}

// Signatures projects the 0.6.x map-shaped signatures envelope of doc
// to the common list form, ordered by keyid. Map semantics dedupe
// keyids inherently.
func (r *RootV06) Signatures(doc *Document) ([]RoleSignature, error) {
	var sigs map[string]struct {
		Signature string `json:"signature"`
	}
	if err := json.Unmarshal(doc.Signatures, &sigs); err != nil {
		return nil, ErrMetadata{Msg: "invalid 'signatures' in 'root' metadata: " + err.Error()}
	}
	res := make([]RoleSignature, 0, len(sigs))
	for keyid, s := range sigs {
		res = append(res, RoleSignature{KeyID: keyid, Sig: s.Signature})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].KeyID < res[j].KeyID })
	return res, nil
}

// CreateUpdate builds a successor from doc. A 0.6.x root accepts either
// a 0.6.x successor or a 1.x one; the latter upgrades the dialect.
func (r *RootV06) CreateUpdate(doc *Document) (RootRole, error) {
	if IsV06Compatible(doc) {
		return NewRootV06(doc)
	}
	if IsV1Compatible(doc) {
		log.Info("updating 'root' role spec version")
		return NewRootV1(doc)
	}
	log.Info("invalid spec version for 'root' update")
	return nil, ErrSpecVersion{Msg: "'root' update is neither in the 0.6.x nor the 1.x dialect"}
}

// UpgradedSignable emits a 1.x-shaped signed document equivalent to
// this root: the root delegation becomes roles.root, key_mgr becomes
// roles.targets, snapshot and timestamp are declared empty with
// threshold 1, and keys is the union of both key dictionaries. The
// bytes are canonical JSON, so re-encoding on the consumer side yields
// the same payload.
func (r *RootV06) UpgradedSignable() (json.RawMessage, error) {
	keys := map[string]*Key{}
	allKeys := r.Keys()
	for keyid, key := range allKeys[ROOT].Keys {
		keys[keyid] = key
	}
	for keyid, key := range allKeys[KEYMGR].Keys {
		keys[keyid] = key
	}

	signable := map[string]any{
		"_type":        ROOT,
		"spec_version": SpecVersionV1,
		"version":      r.Version(),
		"keys":         keys,
		"roles": map[string]RoleKeys{
			ROOT:      r.delegations[ROOT].ToRoleKeys(),
			TARGETS:   r.delegations[KEYMGR].ToRoleKeys(),
			SNAPSHOT:  {KeyIDs: []string{}, Threshold: 1},
			TIMESTAMP: {KeyIDs: []string{}, Threshold: 1},
		},
	}
	data, err := cjson.EncodeCanonical(signable)
	if err != nil {
		return nil, ErrMetadata{Msg: "failed to encode upgraded 'root' signable: " + err.Error()}
	}
	return data, nil
}

// UpgradedSignature signs an upgraded signable with sk and returns the
// signature entry, keyed by the hex public key.
func (r *RootV06) UpgradedSignature(signed json.RawMessage, pkHex string, sk SecretKey) (RoleSignature, error) {
	sigHex, err := SignHex(signed, sk)
	if err != nil {
		return RoleSignature{}, err
	}
	return RoleSignature{KeyID: pkHex, Sig: sigHex}, nil
}

// IsV06Compatible probes whether doc declares the 0.6.x dialect. A
// failed lookup means not compatible, never an error.
func IsV06Compatible(doc *Document) bool {
	var s struct {
		SpecVersion *string `json:"metadata_spec_version"`
	}
	if err := json.Unmarshal(doc.Signed, &s); err != nil || s.SpecVersion == nil {
		return false
	}
	return strings.HasPrefix(*s.SpecVersion, "0.6.")
}
