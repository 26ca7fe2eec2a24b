// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"fmt"
	"math/big"
	"reflect"

	"github.com/canonical/go-tpm2-esys/mu"
)

// This file contains types defined in section 12 (Key/Object Complex)
// in part 2 of the library spec.

// ObjectTypeId corresponds to the TPMI_ALG_PUBLIC type.
type ObjectTypeId AlgorithmId

// IsAsymmetric determines if the type corresponds to an asymmetric
// object.
func (t ObjectTypeId) IsAsymmetric() bool {
	return t == ObjectTypeRSA
}

const (
	ObjectTypeRSA       ObjectTypeId = ObjectTypeId(AlgorithmRSA)       // TPM_ALG_RSA
	ObjectTypeKeyedHash ObjectTypeId = ObjectTypeId(AlgorithmKeyedHash) // TPM_ALG_KEYEDHASH
	ObjectTypeSymCipher ObjectTypeId = ObjectTypeId(AlgorithmSymCipher) // TPM_ALG_SYMCIPHER
)

// PublicIDU is a union type that corresponds to the TPMU_PUBLIC_ID
// type. The selector type is ObjectTypeId.
type PublicIDU struct {
	Data interface{}
}

func (p PublicIDU) KeyedHash() Digest {
	return p.Data.(Digest)
}

func (p PublicIDU) Sym() Digest {
	return p.Data.(Digest)
}

func (p PublicIDU) RSA() PublicKeyRSA {
	return p.Data.(PublicKeyRSA)
}

func (p PublicIDU) Select(selector reflect.Value) (reflect.Type, error) {
	switch selector.Interface().(ObjectTypeId) {
	case ObjectTypeRSA:
		return reflect.TypeOf(PublicKeyRSA(nil)), nil
	case ObjectTypeKeyedHash:
		return reflect.TypeOf(Digest(nil)), nil
	case ObjectTypeSymCipher:
		return reflect.TypeOf(Digest(nil)), nil
	}
	return nil, &mu.InvalidSelectorError{Selector: selector}
}

// KeyedHashParams corresponds to the TPMS_KEYEDHASH_PARMS type, and
// defines the public parameters for a keyedhash object.
type KeyedHashParams struct {
	Scheme KeyedHashScheme // Signing method for a keyed hash signing object
}

// RSAParams corresponds to the TPMS_RSA_PARMS type, and defines the
// public parameters for an RSA key.
type RSAParams struct {
	Symmetric SymDefObject // Symmetric algorithm for a restricted decrypt key.
	// For an unrestricted signing key: RSASchemeRSAPSS, RSASchemeRSASSA or RSASchemeNull.
	// For a restricted signing key: RSASchemeRSAPSS or RSASchemeRSASSA.
	// For an unrestricted decrypt key: RSASchemeRSAES, RSASchemeOAEP or RSASchemeNull.
	// For a restricted decrypt key: RSASchemeNull.
	Scheme   RSAScheme
	KeyBits  uint16 // Number of bits in the public modulus
	Exponent uint32 // Public exponent. When the value is zero, the exponent is 65537
}

// PublicParamsU is a union type that corresponds to the
// TPMU_PUBLIC_PARMS type. The selector type is ObjectTypeId.
type PublicParamsU struct {
	Data interface{}
}

func (p PublicParamsU) KeyedHashDetail() *KeyedHashParams {
	return p.Data.(*KeyedHashParams)
}

func (p PublicParamsU) SymDetail() *SymCipherParams {
	return p.Data.(*SymCipherParams)
}

func (p PublicParamsU) RSADetail() *RSAParams {
	return p.Data.(*RSAParams)
}

func (p PublicParamsU) Select(selector reflect.Value) (reflect.Type, error) {
	switch selector.Interface().(ObjectTypeId) {
	case ObjectTypeRSA:
		return reflect.TypeOf((*RSAParams)(nil)), nil
	case ObjectTypeKeyedHash:
		return reflect.TypeOf((*KeyedHashParams)(nil)), nil
	case ObjectTypeSymCipher:
		return reflect.TypeOf((*SymCipherParams)(nil)), nil
	}
	return nil, &mu.InvalidSelectorError{Selector: selector}
}

// PublicParams corresponds to the TPMT_PUBLIC_PARMS type.
type PublicParams struct {
	Type       ObjectTypeId  // Type specifier
	Parameters PublicParamsU `tpm2:"selector:Type"` // Algorithm details
}

// Public corresponds to the TPMT_PUBLIC type, and defines the public
// area for an object.
type Public struct {
	Type       ObjectTypeId     // Type of this object
	NameAlg    HashAlgorithmId  // NameAlg is the algorithm used to compute the name of this object
	Attrs      ObjectAttributes // Object attributes
	AuthPolicy Digest           // Authorization policy for this object
	Params     PublicParamsU    `tpm2:"selector:Type"` // Type specific parameters
	Unique     PublicIDU        `tpm2:"selector:Type"` // Type specific unique identifier
}

// ComputeName computes the name of this object
func (p *Public) ComputeName() (Name, error) {
	if !p.NameAlg.Available() {
		return nil, fmt.Errorf("unsupported name algorithm or algorithm not linked into binary: %v", p.NameAlg)
	}
	h := p.NameAlg.NewHash()
	if err := mu.MarshalToWriter(h, p); err != nil {
		return nil, fmt.Errorf("cannot marshal public object: %v", err)
	}
	return mu.MustMarshalToBytes(p.NameAlg, mu.RawBytes(h.Sum(nil))), nil
}

func (p *Public) compareName(name Name) bool {
	n, err := p.ComputeName()
	if err != nil {
		return false
	}
	return bytes.Equal(n, name)
}

// Name returns the name of this object, computed from the public
// area. If the name cannot be computed then an invalid name is
// returned (Name.Type will return NameTypeInvalid).
func (p *Public) Name() Name {
	name, err := p.ComputeName()
	if err != nil {
		return Name{0, 0}
	}
	return name
}

func (p *Public) ToTemplate() (Template, error) {
	b, err := mu.MarshalToBytes(p)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal object: %v", err)
	}
	return b, nil
}

func (p *Public) isParent() bool {
	if !p.NameAlg.IsValid() {
		return false
	}
	return p.Attrs&(AttrRestricted|AttrDecrypt) == AttrRestricted|AttrDecrypt
}

// IsAsymmetric indicates that this public area is associated with an
// asymmetric key.
func (p *Public) IsAsymmetric() bool {
	return p.Type.IsAsymmetric()
}

// IsStorageParent indicates that this public area is associated with
// an object that can be a storage parent.
func (p *Public) IsStorageParent() bool {
	if !p.isParent() {
		return false
	}
	switch p.Type {
	case ObjectTypeRSA, ObjectTypeSymCipher:
		return true
	default:
		return false
	}
}

// IsDerivationParent indicates that this public area is associated
// with an object that can be a derivation parent.
func (p *Public) IsDerivationParent() bool {
	if !p.isParent() {
		return false
	}
	if p.Type != ObjectTypeKeyedHash {
		return false
	}
	return true
}

// Public returns the corresponding public key for the TPM public
// area. This will panic if the public area does not correspond to an
// asymmetric key.
func (p *Public) Public() crypto.PublicKey {
	switch p.Type {
	case ObjectTypeRSA:
		exp := int(p.Params.RSADetail().Exponent)
		if exp == 0 {
			exp = DefaultRSAExponent
		}
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(p.Unique.RSA()),
			E: exp}
	default:
		panic("object is not a public key")
	}
}

// Template corresponds to the TPM2B_TEMPLATE type
type Template []byte

// 12.3) Private Area Structures

// Private corresponds to the TPM2B_PRIVATE type.
type Private []byte
