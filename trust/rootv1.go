package trust

import (
	"encoding/json"
	"sort"
	"strings"

	"golang.org/x/exp/slices"
)

// SpecVersionV1 is the specification version written into documents the
// engine itself emits in the 1.x dialect.
const SpecVersionV1 = "1.0.17"

var mandatoryV1Roles = []string{ROOT, SNAPSHOT, TARGETS, TIMESTAMP}

// RootV1 is the canonical TUF 1.x root role.
type RootV1 struct {
	roleBase
	keys  map[string]*Key
	roles map[string]RoleKeys
}

// rootV1Signed is the JSON shape of the 1.x signed sub-document.
// Pointer fields distinguish absent required fields from zero values;
// unknown fields are tolerated.
type rootV1Signed struct {
	Type        *string             `json:"_type"`
	SpecVersion *string             `json:"spec_version"`
	Version     *int64              `json:"version"`
	Keys        map[string]*Key     `json:"keys"`
	Roles       map[string]RoleKeys `json:"roles"`
}

// NewRootV1 parses doc as a 1.x root and verifies the document's own
// signatures against its own root keys and threshold (TUF spec 5.3.4).
func NewRootV1(doc *Document) (*RootV1, error) {
	role := &RootV1{
		roleBase: roleBase{roleType: ROOT, specVersion: SpecVersionV1, ext: "json"},
	}
	if err := role.loadSigned(doc.Signed); err != nil {
		return nil, err
	}
	if err := checkRoleSignatures(doc, role, role); err != nil {
		return nil, err
	}
	return role, nil
}

// RootV1FromFile loads an initial trusted 1.x root from path. The
// relaxed filename grammar applies; no version equality is enforced.
func RootV1FromFile(path string) (*RootV1, error) {
	data, err := LoadRoleFile(path, ROOT, "json", -1, DefaultRootMaxLength)
	if err != nil {
		return nil, err
	}
	doc, err := DocumentFromBytes(data)
	if err != nil {
		return nil, err
	}
	return NewRootV1(doc)
}

func (r *RootV1) loadSigned(signed json.RawMessage) error {
	var s rootV1Signed
	if err := json.Unmarshal(signed, &s); err != nil {
		return ErrMetadata{Msg: "invalid 'root' metadata: " + err.Error()}
	}
	if s.Type == nil || s.SpecVersion == nil || s.Version == nil || s.Keys == nil || s.Roles == nil {
		return ErrMetadata{Msg: "missing required field in 'root' metadata"}
	}
	if *s.Type != ROOT {
		return ErrMetadata{Msg: "wrong '_type' in 'root' metadata, should be 'root': '" + *s.Type + "'"}
	}
	if !strings.HasPrefix(*s.SpecVersion, "1.") {
		return ErrMetadata{Msg: "incompatible 'spec_version' in 'root' metadata, should be '1.x': '" + *s.SpecVersion + "'"}
	}
	if _, err := ParseSpecVersion(*s.SpecVersion); err != nil {
		return err
	}
	if *s.Version < 1 {
		return ErrMetadata{Msg: "'root' metadata version should be at least 1"}
	}

	for name, rk := range s.Roles {
		if !slices.Contains(mandatoryV1Roles, name) {
			return ErrMetadata{Msg: "invalid role in 'root' metadata: '" + name + "'"}
		}
		if len(rk.KeyIDs) == 0 {
			return ErrMetadata{Msg: "'root' metadata should declare at least one key ID in 'keyids' for role: '" + name + "'"}
		}
		if rk.Threshold < 1 {
			return ErrMetadata{Msg: "'root' metadata should declare at least a 'threshold' of 1 for role: '" + name + "'"}
		}
		for _, keyid := range rk.KeyIDs {
			if _, ok := s.Keys[keyid]; !ok {
				return ErrMetadata{Msg: "a key ID is used in 'roles' but not declared in 'keys': '" + keyid + "'"}
			}
		}
	}
	for _, mandatory := range mandatoryV1Roles {
		if _, ok := s.Roles[mandatory]; !ok {
			return ErrMetadata{Msg: "missing mandatory role in 'root' metadata: '" + mandatory + "'"}
		}
	}

	r.specVersion = *s.SpecVersion
	r.version = *s.Version
	r.keys = s.Keys
	r.roles = s.Roles
	return nil
}

// Roles returns the sorted role names declared under 'roles'.
func (r *RootV1) Roles() []string {
	names := make([]string, 0, len(r.roles))
	for name := range r.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keys builds the keyring view: for each role, its keyids resolved
// through the 'keys' dictionary, threshold carried through.
func (r *RootV1) Keys() map[string]RoleFullKeys {
	res := map[string]RoleFullKeys{}
	for name, rk := range r.roles {
		roleKeys := map[string]*Key{}
		for _, keyid := range rk.KeyIDs {
			roleKeys[keyid] = r.keys[keyid]
		}
		res[name] = RoleFullKeys{Keys: roleKeys, Threshold: rk.Threshold}
	}
	return res
}

// Signatures parses the 1.x signatures array of doc. Duplicate keyids
// collapse into the first occurrence; the result is ordered by keyid.
func (r *RootV1) Signatures(doc *Document) ([]RoleSignature, error) {
	var sigs []RoleSignature
	if err := json.Unmarshal(doc.Signatures, &sigs); err != nil {
		return nil, ErrMetadata{Msg: "invalid 'signatures' in 'root' metadata: " + err.Error()}
	}
	var unique []RoleSignature
	var seen []string
	for _, s := range sigs {
		if slices.Contains(seen, s.KeyID) {
			log.Info("duplicate keyid in 'root' metadata signatures", "keyid", s.KeyID)
			continue
		}
		seen = append(seen, s.KeyID)
		unique = append(unique, s)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].KeyID < unique[j].KeyID })
	return unique, nil
}

// CreateUpdate builds a successor from doc. A 1.x root only accepts a
// 1.x successor.
func (r *RootV1) CreateUpdate(doc *Document) (RootRole, error) {
	if IsV1Compatible(doc) {
		return NewRootV1(doc)
	}
	log.Info("invalid spec version for 'root' update")
	return nil, ErrSpecVersion{Msg: "'root' update is not in the 1.x dialect"}
}

// IsV1Compatible probes whether doc declares the 1.x dialect. A failed
// lookup means not compatible, never an error.
func IsV1Compatible(doc *Document) bool {
	var s struct {
		SpecVersion *string `json:"spec_version"`
	}
	if err := json.Unmarshal(doc.Signed, &s); err != nil || s.SpecVersion == nil {
		return false
	}
	return strings.HasPrefix(*s.SpecVersion, "1.")
}
