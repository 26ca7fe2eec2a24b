// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"

	"golang.org/x/xerrors"

	"github.com/canonical/go-tpm2-esys/mu"
)

// This file contains types defined in section 10 (Structures) in
// part 2 of the library spec, together with the context data and
// creation data types from sections 14 and 15.

// Empty corresponds to the TPMS_EMPTY type.
type Empty struct{}

// TaggedHash corresponds to the TPMT_HA type. In the TPM library
// specification TPMT_HA.digest is a union of fixed size arrays, one
// for each digest algorithm, and the selected member isn't preceded
// by a size field. A custom marshaller implementation reads and
// writes the number of bytes appropriate for the algorithm instead.
type TaggedHash struct {
	HashAlg HashAlgorithmId
	Digest  Digest
}

// NewTaggedHash returns a TaggedHash for the specified digest
// algorithm and digest. The digest must be the correct size for the
// algorithm.
func NewTaggedHash(hashAlg HashAlgorithmId, digest Digest) (*TaggedHash, error) {
	if !hashAlg.IsValid() {
		return nil, errors.New("unknown digest algorithm")
	}
	if hashAlg.Size() != len(digest) {
		return nil, errors.New("invalid digest size")
	}
	return &TaggedHash{HashAlg: hashAlg, Digest: digest}, nil
}

// MakeTaggedHash returns a TaggedHash for the specified digest
// algorithm and digest. If the supplied digest is inappropriate for
// the algorithm then a zero value is returned with the algorithm set
// to HashAlgorithmNull.
func MakeTaggedHash(hashAlg HashAlgorithmId, digest Digest) TaggedHash {
	h, err := NewTaggedHash(hashAlg, digest)
	if err != nil {
		return TaggedHash{HashAlg: HashAlgorithmNull}
	}
	return *h
}

// Marshal implements mu.CustomMarshaller.Marshal.
func (p *TaggedHash) Marshal(w io.Writer) error {
	if err := mu.MarshalToWriter(w, p.HashAlg); err != nil {
		return err
	}
	if !p.HashAlg.IsValid() {
		return fmt.Errorf("cannot determine digest size for unknown algorithm %v", AlgorithmId(p.HashAlg))
	}

	if p.HashAlg.Size() != len(p.Digest) {
		return fmt.Errorf("invalid digest size %d", len(p.Digest))
	}

	if _, err := w.Write(p.Digest); err != nil {
		return fmt.Errorf("cannot write digest: %v", err)
	}
	return nil
}

// Unmarshal implements mu.CustomMarshaller.Unmarshal.
func (p *TaggedHash) Unmarshal(r io.Reader) error {
	if err := mu.UnmarshalFromReader(r, &p.HashAlg); err != nil {
		return err
	}
	if !p.HashAlg.IsValid() {
		return fmt.Errorf("cannot determine digest size for unknown algorithm %v", AlgorithmId(p.HashAlg))
	}

	p.Digest = make(Digest, p.HashAlg.Size())
	if _, err := io.ReadFull(r, p.Digest); err != nil {
		return fmt.Errorf("cannot read digest: %w", err)
	}
	return nil
}

// TaggedHashListBuilder provides a mechanism for constructing a
// TaggedHashList.
type TaggedHashListBuilder struct {
	l   TaggedHashList
	err error
}

// NewTaggedHashListBuilder returns a new TaggedHashListBuilder.
func NewTaggedHashListBuilder() *TaggedHashListBuilder {
	return new(TaggedHashListBuilder)
}

// Append appends the supplied digest to the list being constructed.
// Errors are deferred until Finish is called, and only the first
// error encountered is reported.
func (b *TaggedHashListBuilder) Append(hashAlg HashAlgorithmId, digest Digest) *TaggedHashListBuilder {
	if b.err != nil {
		return b
	}
	h, err := NewTaggedHash(hashAlg, digest)
	if err != nil {
		b.err = xerrors.Errorf("encountered error on digest %d: %w", len(b.l), err)
		b.l = nil
		return b
	}
	b.l = append(b.l, *h)
	return b
}

// Finish returns the list of digests if no errors were encountered
// whilst constructing it.
func (b *TaggedHashListBuilder) Finish() (TaggedHashList, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.l, nil
}

// 10.4) Sized Buffers

// Digest corresponds to the TPM2B_DIGEST type.
type Digest []byte

// Data corresponds to the TPM2B_DATA type.
type Data []byte

// Nonce corresponds to the TPM2B_NONCE type.
type Nonce Digest

// Auth corresponds to the TPM2B_AUTH type.
type Auth Digest

// 10.5) Names

// NameType describes the type of a name.
type NameType int

const (
	// NameTypeInvalid means that a Name is invalid.
	NameTypeInvalid NameType = iota

	// NameTypeNone means that a Name is empty.
	NameTypeNone

	// NameTypeHandle means that a Name is a handle.
	NameTypeHandle

	// NameTypeDigest means that a Name is a digest.
	NameTypeDigest
)

// Name corresponds to the TPM2B_NAME type.
type Name []byte

// MakeHandleName creates a Name for the specified handle.
func MakeHandleName(handle Handle) Name {
	return mu.MustMarshalToBytes(handle)
}

// Type determines the type of this name.
func (n Name) Type() NameType {
	if len(n) == 0 {
		return NameTypeNone
	}
	if len(n) == binary.Size(Handle(0)) {
		return NameTypeHandle
	}
	if len(n) < binary.Size(HashAlgorithmId(0)) {
		return NameTypeInvalid
	}

	alg := HashAlgorithmId(binary.BigEndian.Uint16(n))
	if !alg.IsValid() {
		return NameTypeInvalid
	}
	if len(n)-binary.Size(HashAlgorithmId(0)) != alg.Size() {
		return NameTypeInvalid
	}
	return NameTypeDigest
}

// Handle returns the handle of the resource that this name
// corresponds to. It will panic if Type does not return
// NameTypeHandle.
func (n Name) Handle() Handle {
	if n.Type() != NameTypeHandle {
		panic("name is not a handle")
	}
	return Handle(binary.BigEndian.Uint32(n))
}

// Algorithm returns the digest algorithm of this name, or
// HashAlgorithmNull if the name is empty or is not a digest.
func (n Name) Algorithm() HashAlgorithmId {
	if n.Type() != NameTypeDigest {
		return HashAlgorithmNull
	}
	return HashAlgorithmId(binary.BigEndian.Uint16(n))
}

// Digest returns the name as a digest without the algorithm
// identifier. It will panic if Type does not return NameTypeDigest.
func (n Name) Digest() Digest {
	if n.Type() != NameTypeDigest {
		panic("name is not a valid digest")
	}
	return Digest(n[binary.Size(HashAlgorithmId(0)):])
}

// 10.6) PCR Structures

// PCRSelectBitmap corresponds to the TPMS_PCR_SELECT type, and is a
// bitmap of selected PCR indexes where bit i of octet i/8 marks index
// i as selected. It is usually more convenient to work with the
// PCRSelect type instead.
type PCRSelectBitmap struct {
	Bytes []byte
}

// ToPCRs returns the selected PCR indexes in ascending order.
func (b *PCRSelectBitmap) ToPCRs() (out PCRSelect) {
	for i, octet := range b.Bytes {
		for bit := uint(0); bit < 8; bit++ {
			if octet&(1<<bit) == 0 {
				continue
			}
			out = append(out, int((uint(i)*8)+bit))
		}
	}
	return out
}

// Marshal implements mu.CustomMarshaller.Marshal.
func (b *PCRSelectBitmap) Marshal(w io.Writer) error {
	if len(b.Bytes) > math.MaxUint8 {
		return fmt.Errorf("bitmap too long (%d bytes)", len(b.Bytes))
	}
	return mu.MarshalToWriter(w, uint8(len(b.Bytes)), mu.RawBytes(b.Bytes))
}

// Unmarshal implements mu.CustomMarshaller.Unmarshal.
func (b *PCRSelectBitmap) Unmarshal(r io.Reader) error {
	var size uint8
	if err := mu.UnmarshalFromReader(r, &size); err != nil {
		return err
	}
	b.Bytes = make([]byte, size)
	return mu.UnmarshalFromReader(r, mu.Raw(&b.Bytes))
}

// PCRSelect is a slice of PCR indexes. It makes no guarantees about
// the order of indexes or whether they are duplicated. It is
// marshalled to and from the TPMS_PCR_SELECT type with a bitmap of
// the default size.
type PCRSelect []int

// ToBitmap converts this PCRSelect into its bitmap form, with a
// minimum size of minsize octets. If minsize is zero, the default
// size of 3 octets is used. The bitmap grows beyond minsize if it
// has to accommodate a larger index.
func (d PCRSelect) ToBitmap(minsize uint8) (*PCRSelectBitmap, error) {
	if minsize == 0 {
		minsize = 3
	}
	out := &PCRSelectBitmap{Bytes: make([]byte, minsize)}

	for _, i := range d {
		if i < 0 {
			return nil, errors.New("invalid PCR index (< 0)")
		}
		if i > math.MaxUint8*8 {
			return nil, errors.New("invalid PCR index (> 2040)")
		}

		octet := i / 8
		for octet >= len(out.Bytes) {
			out.Bytes = append(out.Bytes, byte(0))
		}
		bit := uint(i % 8)
		out.Bytes[octet] |= 1 << bit
	}

	return out, nil
}

// Marshal implements mu.CustomMarshaller.Marshal.
func (d *PCRSelect) Marshal(w io.Writer) error {
	b, err := d.ToBitmap(0)
	if err != nil {
		return err
	}
	return mu.MarshalToWriter(w, b)
}

// Unmarshal implements mu.CustomMarshaller.Unmarshal.
func (d *PCRSelect) Unmarshal(r io.Reader) error {
	var b PCRSelectBitmap
	if err := mu.UnmarshalFromReader(r, &b); err != nil {
		return err
	}
	*d = b.ToPCRs()
	return nil
}

// PCRSelection corresponds to the TPMS_PCR_SELECTION type and
// describes the PCRs selected for a single digest algorithm.
type PCRSelection struct {
	// Hash is the digest algorithm associated with the selection.
	Hash HashAlgorithmId

	// Select is the list of selected PCR indexes.
	Select PCRSelect

	// SizeOfSelect is the minimum size of the selection bitmap in
	// octets. A value of zero corresponds to the default size of 3
	// octets. It is set to the size of the bitmap that was read when
	// unmarshalling.
	SizeOfSelect uint8
}

// Marshal implements mu.CustomMarshaller.Marshal.
func (s *PCRSelection) Marshal(w io.Writer) error {
	b, err := s.Select.ToBitmap(s.SizeOfSelect)
	if err != nil {
		return fmt.Errorf("cannot convert selection to bitmap: %v", err)
	}
	return mu.MarshalToWriter(w, s.Hash, b)
}

// Unmarshal implements mu.CustomMarshaller.Unmarshal.
func (s *PCRSelection) Unmarshal(r io.Reader) error {
	var b PCRSelectBitmap
	if err := mu.UnmarshalFromReader(r, &s.Hash, &b); err != nil {
		return err
	}
	s.Select = b.ToPCRs()
	s.SizeOfSelect = uint8(len(b.Bytes))
	return nil
}

// MaxPCRBanks is the maximum number of selections in a
// PCRSelectionList, matching the maximum number of PCR banks that the
// wire format can describe.
const MaxPCRBanks = 16

// PCRSelectionList is a list of PCR selections, with one selection
// per digest algorithm. It corresponds to the TPML_PCR_SELECTION
// type, which limits the number of selections to 16 and requires
// every selection to use the same bitmap size.
type PCRSelectionList []PCRSelection

// Marshal implements mu.CustomMarshaller.Marshal.
func (l *PCRSelectionList) Marshal(w io.Writer) error {
	if len(*l) > MaxPCRBanks {
		return makeError(ErrorKindInvalidParam, "too many selections (%d)", len(*l))
	}
	if err := mu.MarshalToWriter(w, uint32(len(*l))); err != nil {
		return err
	}
	for i := range *l {
		if err := mu.MarshalToWriter(w, &(*l)[i]); err != nil {
			return fmt.Errorf("cannot marshal selection at index %d: %v", i, err)
		}
	}
	return nil
}

// Unmarshal implements mu.CustomMarshaller.Unmarshal.
func (l *PCRSelectionList) Unmarshal(r io.Reader) error {
	var n uint32
	if err := mu.UnmarshalFromReader(r, &n); err != nil {
		return err
	}
	if n > MaxPCRBanks {
		return makeError(ErrorKindInvalidParam, "too many selections (%d)", n)
	}

	out := make(PCRSelectionList, n)
	for i := range out {
		if err := mu.UnmarshalFromReader(r, &out[i]); err != nil {
			return fmt.Errorf("cannot unmarshal selection at index %d: %w", i, err)
		}
		if out[i].SizeOfSelect != out[0].SizeOfSelect {
			return makeError(ErrorKindInconsistentParams, "selections have inconsistent sizeOfSelect values")
		}
	}

	// The wire form permits more than one selection with the same
	// algorithm. Union those into a single selection per algorithm.
	merged, err := PCRSelectionList(nil).Merge(out)
	if err != nil {
		return err
	}
	*l = merged
	return nil
}

// normalize returns a copy of this list with the PCR indexes in each
// selection deduplicated and sorted in ascending order.
func (l PCRSelectionList) normalize() (out PCRSelectionList, err error) {
	for i, s := range l {
		b, err := s.Select.ToBitmap(0)
		if err != nil {
			return nil, xerrors.Errorf("invalid selection at index %d: %w", i, err)
		}
		out = append(out, PCRSelection{Hash: s.Hash, Select: b.ToPCRs(), SizeOfSelect: s.SizeOfSelect})
	}
	return out, nil
}

// contains reports whether any selection with the specified algorithm
// contains the specified PCR index.
func (l PCRSelectionList) contains(alg HashAlgorithmId, pcr int) bool {
	for _, s := range l {
		if s.Hash != alg {
			continue
		}
		for _, p := range s.Select {
			if p == pcr {
				return true
			}
		}
	}
	return false
}

// Sort returns a copy of this list of selections sorted in order of
// ascending algorithm ID, with the PCR indexes in each selection
// sorted in ascending order.
func (l PCRSelectionList) Sort() (PCRSelectionList, error) {
	out, err := l.normalize()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Hash < out[j].Hash })
	return out, nil
}

// Merge merges the selections in r into a copy of l and returns the
// result, with the PCR indexes in each selection sorted in ascending
// order. A PCR index in r that already exists in a selection with the
// same algorithm anywhere in the destination is not duplicated, and
// new indexes are added to the first selection with a matching
// algorithm. Selections with an algorithm that doesn't yet exist in
// the destination are appended.
//
// Selections in either list that declare an explicit bitmap size must
// all declare the same size, else an error with a kind of
// ErrorKindInconsistentParams is returned.
func (l PCRSelectionList) Merge(r PCRSelectionList) (PCRSelectionList, error) {
	var size uint8
	for _, list := range []PCRSelectionList{l, r} {
		for _, s := range list {
			switch {
			case s.SizeOfSelect == 0:
			case size == 0:
				size = s.SizeOfSelect
			case s.SizeOfSelect != size:
				return nil, makeError(ErrorKindInconsistentParams, "selections have inconsistent sizeOfSelect values")
			}
		}
	}

	out, err := l.normalize()
	if err != nil {
		return nil, err
	}

	for _, sr := range r {
		dsti := -1
		for i, s := range out {
			if s.Hash == sr.Hash {
				dsti = i
				break
			}
		}
		if dsti == -1 {
			out = append(out, PCRSelection{Hash: sr.Hash, SizeOfSelect: sr.SizeOfSelect})
			dsti = len(out) - 1
		}

		for _, p := range sr.Select {
			if !out.contains(sr.Hash, p) {
				out[dsti].Select = append(out[dsti].Select, p)
			}
		}
	}

	return out.normalize()
}

// Remove removes the PCR indexes in the selections in r from the
// corresponding selections in a copy of l and returns the result,
// with the PCR indexes in each selection sorted in ascending order.
// Selections that become empty are dropped from the returned list. If
// the two lists are structurally identical then an empty list is
// returned.
//
// A selection in r with an algorithm that doesn't exist anywhere in l
// results in an error with a kind of ErrorKindInvalidParam.
func (l PCRSelectionList) Remove(r PCRSelectionList) (PCRSelectionList, error) {
	if reflect.DeepEqual(l, r) {
		return PCRSelectionList{}, nil
	}

	tmp, err := l.normalize()
	if err != nil {
		return nil, err
	}

	for _, sr := range r {
		found := false
		for i := range tmp {
			if tmp[i].Hash != sr.Hash {
				continue
			}
			found = true
			for _, p := range sr.Select {
				for j, q := range tmp[i].Select {
					if q == p {
						tmp[i].Select = append(tmp[i].Select[:j], tmp[i].Select[j+1:]...)
						break
					}
				}
			}
		}
		if !found {
			return nil, makeError(ErrorKindInvalidParam, "cannot remove selection for %v: algorithm is not present in this list", AlgorithmId(sr.Hash))
		}
	}

	out := PCRSelectionList{}
	for _, s := range tmp {
		if len(s.Select) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// IsEmpty returns true if the list contains no selections with
// selected PCR indexes.
func (l PCRSelectionList) IsEmpty() bool {
	for _, s := range l {
		if len(s.Select) > 0 {
			return false
		}
	}
	return true
}

// WithMinSelectSize returns a copy of this list of selections with
// the minimum bitmap size of each selection set to the supplied
// value.
func (l PCRSelectionList) WithMinSelectSize(sz uint8) (out PCRSelectionList) {
	for _, s := range l {
		out = append(out, PCRSelection{Hash: s.Hash, Select: s.Select, SizeOfSelect: sz})
	}
	return out
}

// 10.7) Tickets

// TkCreation corresponds to the TPMT_TK_CREATION type and is provided
// by the TPM as proof that it created an object.
type TkCreation struct {
	Tag       StructTag
	Hierarchy Handle
	Digest    Digest
}

// 10.8) Property Structures

// AlgorithmProperty corresponds to the TPMS_ALG_PROPERTY type.
type AlgorithmProperty struct {
	Alg        AlgorithmId
	Properties AlgorithmAttributes
}

// TaggedProperty corresponds to the TPMS_TAGGED_PROPERTY type.
type TaggedProperty struct {
	Property Property
	Value    uint32
}

// TaggedPCRSelect corresponds to the TPMS_TAGGED_PCR_SELECT type.
type TaggedPCRSelect struct {
	Tag    PropertyPCR
	Select PCRSelect
}

// TaggedPolicy corresponds to the TPMS_TAGGED_POLICY type.
type TaggedPolicy struct {
	Handle     Handle
	PolicyHash TaggedHash
}

// 10.9) Lists
type CommandCodeList []CommandCode
type CommandAttributesList []CommandAttributes
type HandleList []Handle
type DigestList []Digest
type TaggedHashList []TaggedHash
type AlgorithmPropertyList []AlgorithmProperty
type TaggedTPMPropertyList []TaggedProperty
type TaggedPCRPropertyList []TaggedPCRSelect
type ECCCurveList []ECCCurve
type TaggedPolicyList []TaggedPolicy

// 10.10) Capabilities Structures

// CapabilitiesU is a union type that corresponds to the
// TPMU_CAPABILITIES type. The selector type is Capability.
type CapabilitiesU struct {
	Data interface{}
}

func (c CapabilitiesU) Algorithms() AlgorithmPropertyList {
	return c.Data.(AlgorithmPropertyList)
}

func (c CapabilitiesU) Handles() HandleList {
	return c.Data.(HandleList)
}

func (c CapabilitiesU) Command() CommandAttributesList {
	return c.Data.(CommandAttributesList)
}

func (c CapabilitiesU) PPCommands() CommandCodeList {
	return c.Data.(CommandCodeList)
}

func (c CapabilitiesU) AuditCommands() CommandCodeList {
	return c.Data.(CommandCodeList)
}

func (c CapabilitiesU) AssignedPCR() PCRSelectionList {
	return c.Data.(PCRSelectionList)
}

func (c CapabilitiesU) TPMProperties() TaggedTPMPropertyList {
	return c.Data.(TaggedTPMPropertyList)
}

func (c CapabilitiesU) PCRProperties() TaggedPCRPropertyList {
	return c.Data.(TaggedPCRPropertyList)
}

func (c CapabilitiesU) ECCCurves() ECCCurveList {
	return c.Data.(ECCCurveList)
}

func (c CapabilitiesU) AuthPolicies() TaggedPolicyList {
	return c.Data.(TaggedPolicyList)
}

func (c CapabilitiesU) Select(selector reflect.Value) (reflect.Type, error) {
	switch selector.Interface().(Capability) {
	case CapabilityAlgs:
		return reflect.TypeOf(AlgorithmPropertyList(nil)), nil
	case CapabilityHandles:
		return reflect.TypeOf(HandleList(nil)), nil
	case CapabilityCommands:
		return reflect.TypeOf(CommandAttributesList(nil)), nil
	case CapabilityPPCommands:
		return reflect.TypeOf(CommandCodeList(nil)), nil
	case CapabilityAuditCommands:
		return reflect.TypeOf(CommandCodeList(nil)), nil
	case CapabilityPCRs:
		return reflect.TypeOf(PCRSelectionList(nil)), nil
	case CapabilityTPMProperties:
		return reflect.TypeOf(TaggedTPMPropertyList(nil)), nil
	case CapabilityPCRProperties:
		return reflect.TypeOf(TaggedPCRPropertyList(nil)), nil
	case CapabilityECCCurves:
		return reflect.TypeOf(ECCCurveList(nil)), nil
	case CapabilityAuthPolicies:
		return reflect.TypeOf(TaggedPolicyList(nil)), nil
	}
	return nil, &mu.InvalidSelectorError{Selector: selector}
}

// CapabilityData corresponds to the TPMS_CAPABILITY_DATA type, and is
// returned by TPMContext.GetCapability.
type CapabilityData struct {
	Capability Capability
	Data       CapabilitiesU `tpm2:"selector:Capability"`
}

// 14) Context Data

// The context blob is bounded by the size of the TPMS_CONTEXT_DATA
// structure of the reference implementation.
const maxContextDataSize = 5188

// ContextData corresponds to the TPM2B_CONTEXT_DATA type, and
// contains the opaque blob of a saved object or session context.
type ContextData []byte

// Marshal implements mu.CustomMarshaller.Marshal.
func (d *ContextData) Marshal(w io.Writer) error {
	if len(*d) > maxContextDataSize {
		return makeError(ErrorKindWrongParamSize, "context blob is too large (%d bytes)", len(*d))
	}
	return mu.MarshalToWriter(w, []byte(*d))
}

// Unmarshal implements mu.CustomMarshaller.Unmarshal.
func (d *ContextData) Unmarshal(r io.Reader) error {
	var b []byte
	if err := mu.UnmarshalFromReader(r, &b); err != nil {
		return err
	}
	if len(b) > maxContextDataSize {
		return makeError(ErrorKindWrongParamSize, "context blob is too large (%d bytes)", len(b))
	}
	*d = b
	return nil
}

// Context corresponds to the TPMS_CONTEXT type, and is the saved
// state of an object or session returned by TPMContext.ContextSave.
// The Blob field is encrypted and integrity protected by the TPM, and
// the whole structure can be serialized and restored on a later
// connection in order to suspend and resume a loaded object.
type Context struct {
	Sequence    uint64
	SavedHandle Handle
	Hierarchy   Handle
	Blob        ContextData
}

// 15) Creation Data

// CreationData corresponds to the TPMS_CREATION_DATA type, and
// records the environment in which an object was created.
type CreationData struct {
	PCRSelect           PCRSelectionList
	PCRDigest           Digest
	Locality            Locality
	ParentNameAlg       HashAlgorithmId
	ParentName          Name
	ParentQualifiedName Name
	OutsideInfo         Data
}
