// Copyright 2021 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

// This file contains builders for the validated construction of public
// areas, their nested parameter structures, and PCR selection lists.
// Each builder accumulates fields through chained setters and performs
// all of its validation in a terminal Build method.

// StorageKeyAttrs returns the attributes for a standard fixed storage
// parent with authorization by auth value.
func StorageKeyAttrs() ObjectAttributes {
	return AttrFixedTPM | AttrFixedParent | AttrSensitiveDataOrigin | AttrUserWithAuth | AttrRestricted | AttrDecrypt
}

// SigningKeyAttrs returns the attributes for a standard fixed
// unrestricted signing key with authorization by auth value.
func SigningKeyAttrs() ObjectAttributes {
	return AttrFixedTPM | AttrFixedParent | AttrSensitiveDataOrigin | AttrUserWithAuth | AttrSign
}

// PublicBuilder constructs a public area for object creation. Only
// objects of type [ObjectTypeRSA] are currently supported.
type PublicBuilder struct {
	objectType ObjectTypeId
	nameAlg    HashAlgorithmId
	attrs      ObjectAttributes
	authPolicy Digest
	params     PublicParamsU
	unique     PublicIDU
}

// NewPublicBuilder returns a new PublicBuilder. The name algorithm is
// initially HashAlgorithmNull.
func NewPublicBuilder() *PublicBuilder {
	return &PublicBuilder{nameAlg: HashAlgorithmNull}
}

// WithType sets the type of the object.
func (b *PublicBuilder) WithType(objectType ObjectTypeId) *PublicBuilder {
	b.objectType = objectType
	return b
}

// WithNameAlg sets the algorithm used to compute the name of the object.
func (b *PublicBuilder) WithNameAlg(nameAlg HashAlgorithmId) *PublicBuilder {
	b.nameAlg = nameAlg
	return b
}

// WithAttrs sets the attributes of the object.
func (b *PublicBuilder) WithAttrs(attrs ObjectAttributes) *PublicBuilder {
	b.attrs = attrs
	return b
}

// WithAuthPolicy sets the authorization policy digest for the object.
func (b *PublicBuilder) WithAuthPolicy(authPolicy Digest) *PublicBuilder {
	b.authPolicy = authPolicy
	return b
}

// WithParams sets the type specific parameters of the object.
func (b *PublicBuilder) WithParams(params PublicParamsU) *PublicBuilder {
	b.params = params
	return b
}

// WithUnique sets the type specific unique identifier of the object.
func (b *PublicBuilder) WithUnique(unique PublicIDU) *PublicBuilder {
	b.unique = unique
	return b
}

// Build validates the accumulated fields and returns the corresponding
// public area.
//
// An error with [ErrorKindUnsupportedParam] is returned if the object
// type is not ObjectTypeRSA. An error with [ErrorKindParamsMissing] is
// returned if no parameters have been supplied, and an error with
// [ErrorKindInconsistentParams] is returned if the supplied parameters
// or unique value don't correspond to the object type. If no unique
// value has been supplied, an empty value of the appropriate type is
// substituted.
func (b *PublicBuilder) Build() (*Public, error) {
	switch b.objectType {
	case ObjectTypeRSA:
		if b.params.Data == nil {
			return nil, makeError(ErrorKindParamsMissing, "no public parameters have been supplied")
		}
		if _, ok := b.params.Data.(*RSAParams); !ok {
			return nil, makeError(ErrorKindInconsistentParams, "supplied parameters are inconsistent with object type %v", b.objectType)
		}

		unique := b.unique
		if unique.Data == nil {
			unique = PublicIDU{Data: PublicKeyRSA{}}
		} else if _, ok := unique.Data.(PublicKeyRSA); !ok {
			return nil, makeError(ErrorKindInconsistentParams, "supplied unique value is inconsistent with object type %v", b.objectType)
		}

		return &Public{
			Type:       b.objectType,
			NameAlg:    b.nameAlg,
			Attrs:      b.attrs,
			AuthPolicy: b.authPolicy,
			Params:     b.params,
			Unique:     unique}, nil
	default:
		return nil, makeError(ErrorKindUnsupportedParam, "unsupported object type %v", b.objectType)
	}
}

// RSAParamsBuilder constructs the public parameters for an RSA key.
type RSAParamsBuilder struct {
	symmetric     *SymDefObject
	scheme        *RSAScheme
	keyBits       uint16
	exponent      uint32
	forSigning    bool
	forDecryption bool
	restricted    bool
}

// NewRSAParamsBuilder returns a new RSAParamsBuilder with no usage flags
// set.
func NewRSAParamsBuilder() *RSAParamsBuilder {
	return new(RSAParamsBuilder)
}

// NewRSAParamsBuilderForRestrictedDecryptionKey returns a
// RSAParamsBuilder preconfigured for a restricted decryption key with
// the supplied symmetric cipher and key size. The scheme is set to
// RSASchemeNull, which is the only scheme that is valid for this type of
// key.
func NewRSAParamsBuilderForRestrictedDecryptionKey(symmetric SymDefObject, keyBits uint16) *RSAParamsBuilder {
	return &RSAParamsBuilder{
		symmetric:     &symmetric,
		scheme:        &RSAScheme{Scheme: RSASchemeNull},
		keyBits:       keyBits,
		forDecryption: true,
		restricted:    true}
}

// NewRSAParamsBuilderForUnrestrictedSigningKey returns a
// RSAParamsBuilder preconfigured for an unrestricted signing key with
// the supplied scheme and key size. A symmetric cipher is not set
// because it is not valid for this type of key.
func NewRSAParamsBuilderForUnrestrictedSigningKey(scheme RSAScheme, keyBits uint16) *RSAParamsBuilder {
	return &RSAParamsBuilder{
		scheme:     &scheme,
		keyBits:    keyBits,
		forSigning: true}
}

// WithSymmetric sets the symmetric cipher to use for parameter and child
// protection. Only valid for a restricted decryption key.
func (b *RSAParamsBuilder) WithSymmetric(symmetric SymDefObject) *RSAParamsBuilder {
	b.symmetric = &symmetric
	return b
}

// WithScheme sets the asymmetric scheme for the key.
func (b *RSAParamsBuilder) WithScheme(scheme RSAScheme) *RSAParamsBuilder {
	b.scheme = &scheme
	return b
}

// WithKeyBits sets the size of the public modulus in bits.
func (b *RSAParamsBuilder) WithKeyBits(keyBits uint16) *RSAParamsBuilder {
	b.keyBits = keyBits
	return b
}

// WithExponent sets the public exponent of the key. A value of zero
// corresponds to the default exponent of 65537.
func (b *RSAParamsBuilder) WithExponent(exponent uint32) *RSAParamsBuilder {
	b.exponent = exponent
	return b
}

// ForSigning marks the key as a signing key.
func (b *RSAParamsBuilder) ForSigning() *RSAParamsBuilder {
	b.forSigning = true
	return b
}

// ForDecryption marks the key as a decryption key.
func (b *RSAParamsBuilder) ForDecryption() *RSAParamsBuilder {
	b.forDecryption = true
	return b
}

// Restricted marks the key as a restricted key.
func (b *RSAParamsBuilder) Restricted() *RSAParamsBuilder {
	b.restricted = true
	return b
}

// Build validates the accumulated fields and returns the corresponding
// RSA parameters.
//
// A symmetric cipher is mandatory for a key that is both restricted and
// a decryption key, and forbidden for every other combination of usage
// flags. An error with [ErrorKindParamsMissing] or
// [ErrorKindInconsistentParams] is returned respectively if this doesn't
// hold.
//
// A scheme is always mandatory ([ErrorKindParamsMissing] if one hasn't
// been supplied), and its identity must be compatible with the
// combination of usage flags ([ErrorKindInconsistentParams] if it
// isn't):
//   - restricted signing keys require RSASchemeRSAPSS or RSASchemeRSASSA.
//   - restricted decryption keys require RSASchemeNull.
//   - unrestricted keys for both signing and decryption require RSASchemeNull.
//   - unrestricted signing keys require RSASchemeRSAPSS, RSASchemeRSASSA or RSASchemeNull.
//   - unrestricted decryption keys require RSASchemeRSAES, RSASchemeOAEP or RSASchemeNull.
//
// The key size must be one of 1024, 2048, 3072 or 4096 bits
// ([ErrorKindInvalidParam] if it isn't).
func (b *RSAParamsBuilder) Build() (*RSAParams, error) {
	if b.restricted && b.forDecryption {
		if b.symmetric == nil {
			return nil, makeError(ErrorKindParamsMissing, "no symmetric cipher has been supplied for a restricted decryption key")
		}
	} else if b.symmetric != nil {
		return nil, makeError(ErrorKindInconsistentParams, "a symmetric cipher can only be supplied for a restricted decryption key")
	}

	symmetric := SymDefObject{Algorithm: SymObjectAlgorithmNull}
	if b.symmetric != nil {
		symmetric = *b.symmetric
	}

	if b.scheme == nil {
		return nil, makeError(ErrorKindParamsMissing, "no scheme has been supplied")
	}
	scheme := *b.scheme

	if b.restricted {
		if b.forSigning && scheme.Scheme != RSASchemeRSAPSS && scheme.Scheme != RSASchemeRSASSA {
			return nil, makeError(ErrorKindInconsistentParams, "scheme %v is not valid for a restricted signing key", scheme.Scheme)
		}
		if b.forDecryption && scheme.Scheme != RSASchemeNull {
			return nil, makeError(ErrorKindInconsistentParams, "scheme %v is not valid for a restricted decryption key", scheme.Scheme)
		}
	} else {
		if b.forSigning && b.forDecryption && scheme.Scheme != RSASchemeNull {
			return nil, makeError(ErrorKindInconsistentParams, "scheme %v is not valid for a combined signing and decryption key", scheme.Scheme)
		}
		if b.forSigning && scheme.Scheme != RSASchemeRSAPSS && scheme.Scheme != RSASchemeRSASSA && scheme.Scheme != RSASchemeNull {
			return nil, makeError(ErrorKindInconsistentParams, "scheme %v is not valid for a signing key", scheme.Scheme)
		}
		if b.forDecryption && scheme.Scheme != RSASchemeRSAES && scheme.Scheme != RSASchemeOAEP && scheme.Scheme != RSASchemeNull {
			return nil, makeError(ErrorKindInconsistentParams, "scheme %v is not valid for a decryption key", scheme.Scheme)
		}
	}

	switch b.keyBits {
	case 1024, 2048, 3072, 4096:
	default:
		return nil, makeError(ErrorKindInvalidParam, "invalid key size (%d bits)", b.keyBits)
	}

	return &RSAParams{
		Symmetric: symmetric,
		Scheme:    scheme,
		KeyBits:   b.keyBits,
		Exponent:  b.exponent}, nil
}

// SymDefBuilder constructs symmetric algorithm definitions, for use in
// sessions (SymDef) and in objects (SymDefObject).
type SymDefBuilder struct {
	algorithm SymAlgorithmId
	algSet    bool
	keyBits   uint16
	hash      HashAlgorithmId
	mode      SymModeId
}

// NewSymDefBuilder returns a new SymDefBuilder. The mode is initially
// SymModeNull.
func NewSymDefBuilder() *SymDefBuilder {
	return &SymDefBuilder{mode: SymModeNull}
}

// WithAlgorithm sets the symmetric algorithm.
func (b *SymDefBuilder) WithAlgorithm(algorithm SymAlgorithmId) *SymDefBuilder {
	b.algorithm = algorithm
	b.algSet = true
	return b
}

// WithKeyBits sets the key size in bits, used when the symmetric
// algorithm is a block cipher.
func (b *SymDefBuilder) WithKeyBits(keyBits uint16) *SymDefBuilder {
	b.keyBits = keyBits
	return b
}

// WithHash sets the digest algorithm, used when the symmetric algorithm
// is SymAlgorithmXOR.
func (b *SymDefBuilder) WithHash(hashAlg HashAlgorithmId) *SymDefBuilder {
	b.hash = hashAlg
	return b
}

// WithMode sets the mode of the symmetric algorithm, used when the
// symmetric algorithm is a block cipher.
func (b *SymDefBuilder) WithMode(mode SymModeId) *SymDefBuilder {
	b.mode = mode
	return b
}

func (b *SymDefBuilder) symKeyBitsAndMode() (SymKeyBitsU, SymModeU, error) {
	if !b.algSet {
		return SymKeyBitsU{}, SymModeU{}, makeError(ErrorKindParamsMissing, "no symmetric algorithm has been supplied")
	}

	switch b.algorithm {
	case SymAlgorithmAES, SymAlgorithmSM4, SymAlgorithmCamellia:
		return SymKeyBitsU{Data: b.keyBits}, SymModeU{Data: b.mode}, nil
	case SymAlgorithmXOR:
		return SymKeyBitsU{Data: b.hash}, SymModeU{}, nil
	case SymAlgorithmNull:
		return SymKeyBitsU{}, SymModeU{}, nil
	default:
		return SymKeyBitsU{}, SymModeU{}, makeError(ErrorKindUnsupportedParam, "unsupported symmetric algorithm %v", b.algorithm)
	}
}

// Build validates the accumulated fields and returns the corresponding
// symmetric definition for use in a session.
//
// The algorithm selects which of the remaining fields are used: block
// ciphers use the key size and mode, SymAlgorithmXOR uses the digest
// algorithm, and SymAlgorithmNull uses nothing. An error with
// [ErrorKindParamsMissing] is returned if no algorithm has been
// supplied, and an error with [ErrorKindUnsupportedParam] is returned
// for an unrecognized algorithm.
func (b *SymDefBuilder) Build() (*SymDef, error) {
	keyBits, mode, err := b.symKeyBitsAndMode()
	if err != nil {
		return nil, err
	}
	return &SymDef{Algorithm: b.algorithm, KeyBits: keyBits, Mode: mode}, nil
}

// BuildObject validates the accumulated fields and returns the
// corresponding symmetric definition for use in an object. The
// validation rules are the same as for [SymDefBuilder.Build].
func (b *SymDefBuilder) BuildObject() (*SymDefObject, error) {
	keyBits, mode, err := b.symKeyBitsAndMode()
	if err != nil {
		return nil, err
	}
	return &SymDefObject{Algorithm: SymObjectAlgorithmId(b.algorithm), KeyBits: keyBits, Mode: mode}, nil
}

// PCRSelectionListBuilder constructs a list of PCR selections.
type PCRSelectionListBuilder struct {
	sizeOfSelect uint8
	selections   PCRSelectionList
}

// NewPCRSelectionListBuilder returns a new PCRSelectionListBuilder.
func NewPCRSelectionListBuilder() *PCRSelectionListBuilder {
	return new(PCRSelectionListBuilder)
}

// WithSizeOfSelect sets the size of the selection bitmap of every
// selection in octets. A size of zero corresponds to the default size of
// 3 octets. The size for the current platform can be obtained with
// [TPMContext.PCRSelectSize].
func (b *PCRSelectionListBuilder) WithSizeOfSelect(sz uint8) *PCRSelectionListBuilder {
	b.sizeOfSelect = sz
	return b
}

// WithSelection adds the supplied PCR indexes to the selection
// associated with the specified digest algorithm. Repeated calls for the
// same algorithm accumulate into a single selection.
func (b *PCRSelectionListBuilder) WithSelection(hash HashAlgorithmId, pcrs ...int) *PCRSelectionListBuilder {
	for i, s := range b.selections {
		if s.Hash == hash {
			b.selections[i].Select = append(b.selections[i].Select, pcrs...)
			return b
		}
	}
	b.selections = append(b.selections, PCRSelection{Hash: hash, Select: append(PCRSelect(nil), pcrs...)})
	return b
}

// Build validates the accumulated selections and returns the
// corresponding list. Selections appear in the order that their
// algorithms were first added, and each carries the configured size of
// select.
//
// An error with [ErrorKindInvalidParam] is returned if the list contains
// more than 16 selections, or if a PCR index doesn't fit into the
// selection bitmap.
func (b *PCRSelectionListBuilder) Build() (PCRSelectionList, error) {
	if len(b.selections) > MaxPCRBanks {
		return nil, makeError(ErrorKindInvalidParam, "too many selections (%d)", len(b.selections))
	}

	sz := b.sizeOfSelect
	if sz == 0 {
		sz = 3
	}

	out := make(PCRSelectionList, 0, len(b.selections))
	for _, s := range b.selections {
		for _, pcr := range s.Select {
			if pcr < 0 || pcr >= int(sz)*8 {
				return nil, makeError(ErrorKindInvalidParam, "PCR index %d doesn't fit into a selection of %d octets", pcr, sz)
			}
		}
		out = append(out, PCRSelection{
			Hash:         s.Hash,
			Select:       append(PCRSelect(nil), s.Select...),
			SizeOfSelect: b.sizeOfSelect})
	}
	return out, nil
}
