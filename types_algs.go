// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"reflect"

	"github.com/canonical/go-tpm2-esys/mu"
)

// This file contains types defined in section 11 (Algorithm Parameters
// and Structures) in part 2 of the library spec.

// 11.1) Symmetric

// SymKeyBitsU is a union type that corresponds to the TPMU_SYM_KEY_BITS type
// and is used to specify symmetric encryption key sizes. The selector type is
// [SymAlgorithmId] or [SymObjectAlgorithmId]. Mapping of selector values to
// data types is as follows:
//   - SymAlgorithmAES: uint16
//   - SymAlgorithmSM4: uint16
//   - SymAlgorithmCamellia: uint16
//   - SymAlgorithmXOR: HashAlgorithmId
//   - SymAlgorithmNull: none
type SymKeyBitsU struct {
	Data interface{}
}

func (b SymKeyBitsU) Select(selector reflect.Value) (reflect.Type, error) {
	switch selector.Convert(reflect.TypeOf(SymAlgorithmId(0))).Interface().(SymAlgorithmId) {
	case SymAlgorithmAES, SymAlgorithmSM4, SymAlgorithmCamellia:
		return reflect.TypeOf(uint16(0)), nil
	case SymAlgorithmXOR:
		return reflect.TypeOf(HashAlgorithmId(0)), nil
	case SymAlgorithmNull:
		return nil, nil
	}
	return nil, &mu.InvalidSelectorError{Selector: selector}
}

func (b SymKeyBitsU) AES() uint16 {
	return b.Data.(uint16)
}

func (b SymKeyBitsU) SM4() uint16 {
	return b.Data.(uint16)
}

func (b SymKeyBitsU) Camellia() uint16 {
	return b.Data.(uint16)
}

// Sym returns the key size for any block cipher.
func (b SymKeyBitsU) Sym() uint16 {
	return b.Data.(uint16)
}

func (b SymKeyBitsU) XOR() HashAlgorithmId {
	return b.Data.(HashAlgorithmId)
}

// SymModeU is a union type that corresponds to the TPMU_SYM_MODE type. The
// selector type is [SymAlgorithmId] or [SymObjectAlgorithmId]. Mapping of
// selector values to data types is as follows:
//   - SymAlgorithmAES: SymModeId
//   - SymAlgorithmSM4: SymModeId
//   - SymAlgorithmCamellia: SymModeId
//   - SymAlgorithmXOR: none
//   - SymAlgorithmNull: none
type SymModeU struct {
	Data interface{}
}

func (m SymModeU) Select(selector reflect.Value) (reflect.Type, error) {
	switch selector.Convert(reflect.TypeOf(SymAlgorithmId(0))).Interface().(SymAlgorithmId) {
	case SymAlgorithmAES, SymAlgorithmSM4, SymAlgorithmCamellia:
		return reflect.TypeOf(SymModeId(0)), nil
	case SymAlgorithmXOR, SymAlgorithmNull:
		return nil, nil
	}
	return nil, &mu.InvalidSelectorError{Selector: selector}
}

func (m SymModeU) AES() SymModeId {
	return m.Data.(SymModeId)
}

func (m SymModeU) SM4() SymModeId {
	return m.Data.(SymModeId)
}

func (m SymModeU) Camellia() SymModeId {
	return m.Data.(SymModeId)
}

// Sym returns the mode for any block cipher.
func (m SymModeU) Sym() SymModeId {
	return m.Data.(SymModeId)
}

// SymDef corresponds to the TPMT_SYM_DEF type, and is used to select the
// algorithm used for parameter encryption.
type SymDef struct {
	Algorithm SymAlgorithmId // Symmetric algorithm
	KeyBits   SymKeyBitsU    `tpm2:"selector:Algorithm"` // Symmetric key size
	Mode      SymModeU       `tpm2:"selector:Algorithm"` // Symmetric mode
}

// SymDefObject corresponds to the TPMT_SYM_DEF_OBJECT type, and is used to
// define an object's symmetric algorithm.
type SymDefObject struct {
	Algorithm SymObjectAlgorithmId // Symmetric algorithm
	KeyBits   SymKeyBitsU          `tpm2:"selector:Algorithm"` // Symmetric key size
	Mode      SymModeU             `tpm2:"selector:Algorithm"` // Symmetric mode
}

// SymKey corresponds to the TPM2B_SYM_KEY type.
type SymKey []byte

// SymCipherParams corresponds to the TPMS_SYMCIPHER_PARMS type, and contains
// the parameters for a symmetric object.
type SymCipherParams struct {
	Sym SymDefObject
}

// Label corresponds to the TPM2B_LABEL type.
type Label []byte

// SensitiveData corresponds to the TPM2B_SENSITIVE_DATA type.
type SensitiveData []byte

// SensitiveCreate corresponds to the TPMS_SENSITIVE_CREATE type and is used to
// define the values to be placed in the sensitive area of a created object.
type SensitiveCreate struct {
	UserAuth Auth          // Authorization value
	Data     SensitiveData // Secret data
}

// SchemeHash corresponds to the TPMS_SCHEME_HASH type, and is used for schemes
// that only require a hash algorithm to complete their definition.
type SchemeHash struct {
	HashAlg HashAlgorithmId // Hash algorithm used to digest the message
}

// SchemeXOR corresponds to the TPMS_SCHEME_XOR type, and is used to define the
// XOR obfuscation scheme.
type SchemeXOR struct {
	HashAlg HashAlgorithmId // Hash algorithm used to digest the message
	KDF     KDFAlgorithmId  // Hash-based key derivation function
}

// SchemeHMAC corresponds to the TPMS_SCHEME_HMAC type.
type SchemeHMAC = SchemeHash

// KeyedHashSchemeId corresponds to the TPMI_ALG_KEYEDHASH_SCHEME type.
type KeyedHashSchemeId AlgorithmId

const (
	KeyedHashSchemeHMAC KeyedHashSchemeId = KeyedHashSchemeId(AlgorithmHMAC) // TPM_ALG_HMAC
	KeyedHashSchemeXOR  KeyedHashSchemeId = KeyedHashSchemeId(AlgorithmXOR)  // TPM_ALG_XOR
	KeyedHashSchemeNull KeyedHashSchemeId = KeyedHashSchemeId(AlgorithmNull) // TPM_ALG_NULL
)

// SchemeKeyedHashU is a union type that corresponds to the TPMU_SCHEME_KEYEDHASH
// type. The selector type is [KeyedHashSchemeId]. Mapping of selector values to
// data types is as follows:
//   - KeyedHashSchemeHMAC: *SchemeHMAC
//   - KeyedHashSchemeXOR: *SchemeXOR
//   - KeyedHashSchemeNull: none
type SchemeKeyedHashU struct {
	Data interface{}
}

func (d SchemeKeyedHashU) Select(selector reflect.Value) (reflect.Type, error) {
	switch selector.Interface().(KeyedHashSchemeId) {
	case KeyedHashSchemeHMAC:
		return reflect.TypeOf((*SchemeHMAC)(nil)), nil
	case KeyedHashSchemeXOR:
		return reflect.TypeOf((*SchemeXOR)(nil)), nil
	case KeyedHashSchemeNull:
		return nil, nil
	}
	return nil, &mu.InvalidSelectorError{Selector: selector}
}

func (d SchemeKeyedHashU) HMAC() *SchemeHMAC {
	return d.Data.(*SchemeHMAC)
}

func (d SchemeKeyedHashU) XOR() *SchemeXOR {
	return d.Data.(*SchemeXOR)
}

// KeyedHashScheme corresponds to the TPMT_KEYEDHASH_SCHEME type.
type KeyedHashScheme struct {
	Scheme  KeyedHashSchemeId // Scheme selector
	Details SchemeKeyedHashU  `tpm2:"selector:Scheme"` // Scheme specific parameters
}

// 11.2 Assymetric

// 11.2.1 Signing Schemes

// SigSchemeRSASSA corresponds to the TPMS_SIG_SCHEME_RSASSA type.
type SigSchemeRSASSA = SchemeHash

// SigSchemeRSAPSS corresponds to the TPMS_SIG_SCHEME_RSAPSS type.
type SigSchemeRSAPSS = SchemeHash

// 11.2.2 Encryption Schemes

// EncSchemeOAEP corresponds to the TPMS_ENC_SCHEME_OAEP type.
type EncSchemeOAEP = SchemeHash

// EncSchemeRSAES corresponds to the TPMS_ENC_SCHEME_RSAES type.
type EncSchemeRSAES = Empty

// 11.2.4 RSA

// AsymSchemeId corresponds to the TPMI_ALG_ASYM_SCHEME type.
type AsymSchemeId AlgorithmId

// IsValid determines if the scheme is a valid asymmetric scheme.
func (s AsymSchemeId) IsValid() bool {
	switch s {
	case AsymSchemeRSASSA, AsymSchemeRSAES, AsymSchemeRSAPSS, AsymSchemeOAEP,
		AsymSchemeECDSA, AsymSchemeECDH, AsymSchemeECDAA, AsymSchemeSM2,
		AsymSchemeECSchnorr, AsymSchemeECMQV:
		return true
	default:
		return false
	}
}

// HasDigest determines if the scheme has an associated digest algorithm.
func (s AsymSchemeId) HasDigest() bool {
	switch s {
	case AsymSchemeRSASSA, AsymSchemeRSAPSS, AsymSchemeOAEP, AsymSchemeECDSA,
		AsymSchemeECDH, AsymSchemeECDAA, AsymSchemeSM2, AsymSchemeECSchnorr,
		AsymSchemeECMQV:
		return true
	default:
		return false
	}
}

const (
	AsymSchemeNull      AsymSchemeId = AsymSchemeId(AlgorithmNull)      // TPM_ALG_NULL
	AsymSchemeRSASSA    AsymSchemeId = AsymSchemeId(AlgorithmRSASSA)    // TPM_ALG_RSASSA
	AsymSchemeRSAES     AsymSchemeId = AsymSchemeId(AlgorithmRSAES)     // TPM_ALG_RSAES
	AsymSchemeRSAPSS    AsymSchemeId = AsymSchemeId(AlgorithmRSAPSS)    // TPM_ALG_RSAPSS
	AsymSchemeOAEP      AsymSchemeId = AsymSchemeId(AlgorithmOAEP)      // TPM_ALG_OAEP
	AsymSchemeECDSA     AsymSchemeId = AsymSchemeId(AlgorithmECDSA)     // TPM_ALG_ECDSA
	AsymSchemeECDH      AsymSchemeId = AsymSchemeId(AlgorithmECDH)      // TPM_ALG_ECDH
	AsymSchemeECDAA     AsymSchemeId = AsymSchemeId(AlgorithmECDAA)     // TPM_ALG_ECDAA
	AsymSchemeSM2       AsymSchemeId = AsymSchemeId(AlgorithmSM2)       // TPM_ALG_SM2
	AsymSchemeECSchnorr AsymSchemeId = AsymSchemeId(AlgorithmECSchnorr) // TPM_ALG_ECSCHNORR
	AsymSchemeECMQV     AsymSchemeId = AsymSchemeId(AlgorithmECMQV)     // TPM_ALG_ECMQV
)

// AsymSchemeU is a union type that corresponds to the TPMU_ASYM_SCHEME type.
// The selector type is [AsymSchemeId] or [RSASchemeId]. Mapping of selector
// values to data types is as follows:
//   - AsymSchemeRSASSA: *SigSchemeRSASSA
//   - AsymSchemeRSAES: *EncSchemeRSAES
//   - AsymSchemeRSAPSS: *SigSchemeRSAPSS
//   - AsymSchemeOAEP: *EncSchemeOAEP
//   - AsymSchemeNull: none
type AsymSchemeU struct {
	Data interface{}
}

func (s AsymSchemeU) Select(selector reflect.Value) (reflect.Type, error) {
	switch selector.Convert(reflect.TypeOf(AsymSchemeId(0))).Interface().(AsymSchemeId) {
	case AsymSchemeRSASSA:
		return reflect.TypeOf((*SigSchemeRSASSA)(nil)), nil
	case AsymSchemeRSAES:
		return reflect.TypeOf((*EncSchemeRSAES)(nil)), nil
	case AsymSchemeRSAPSS:
		return reflect.TypeOf((*SigSchemeRSAPSS)(nil)), nil
	case AsymSchemeOAEP:
		return reflect.TypeOf((*EncSchemeOAEP)(nil)), nil
	case AsymSchemeNull:
		return nil, nil
	}
	return nil, &mu.InvalidSelectorError{Selector: selector}
}

func (s AsymSchemeU) RSASSA() *SigSchemeRSASSA {
	return s.Data.(*SigSchemeRSASSA)
}

func (s AsymSchemeU) RSAES() *EncSchemeRSAES {
	return s.Data.(*EncSchemeRSAES)
}

func (s AsymSchemeU) RSAPSS() *SigSchemeRSAPSS {
	return s.Data.(*SigSchemeRSAPSS)
}

func (s AsymSchemeU) OAEP() *EncSchemeOAEP {
	return s.Data.(*EncSchemeOAEP)
}

// Any returns the scheme parameters as a *SchemeHash. It panics if the
// scheme does not have an associated digest algorithm.
func (s AsymSchemeU) Any() *SchemeHash {
	switch d := s.Data.(type) {
	case *SchemeHash:
		return d
	default:
		panic("invalid type")
	}
}

// AsymScheme corresponds to the TPMT_ASYM_SCHEME type.
type AsymScheme struct {
	Scheme  AsymSchemeId // Scheme selector
	Details AsymSchemeU  `tpm2:"selector:Scheme"` // Scheme specific parameters
}

// RSASchemeId corresponds to the TPMI_ALG_RSA_SCHEME type.
type RSASchemeId AsymSchemeId

const (
	RSASchemeNull   RSASchemeId = RSASchemeId(AlgorithmNull)   // TPM_ALG_NULL
	RSASchemeRSASSA RSASchemeId = RSASchemeId(AlgorithmRSASSA) // TPM_ALG_RSASSA
	RSASchemeRSAES  RSASchemeId = RSASchemeId(AlgorithmRSAES)  // TPM_ALG_RSAES
	RSASchemeRSAPSS RSASchemeId = RSASchemeId(AlgorithmRSAPSS) // TPM_ALG_RSAPSS
	RSASchemeOAEP   RSASchemeId = RSASchemeId(AlgorithmOAEP)   // TPM_ALG_OAEP
)

// RSAScheme corresponds to the TPMT_RSA_SCHEME type.
type RSAScheme struct {
	Scheme  RSASchemeId // Scheme selector
	Details AsymSchemeU `tpm2:"selector:Scheme"` // Scheme specific parameters
}

// PublicKeyRSA corresponds to the TPM2B_PUBLIC_KEY_RSA type.
type PublicKeyRSA []byte

// 11.4) Key/Secret Exchange

// EncryptedSecret corresponds to the TPM2B_ENCRYPTED_SECRET type.
type EncryptedSecret []byte
