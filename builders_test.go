// Copyright 2021 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys_test

import (
	. "github.com/canonical/go-tpm2-esys"
	internal_testutil "github.com/canonical/go-tpm2-esys/internal/testutil"
	"github.com/canonical/go-tpm2-esys/mu"

	. "gopkg.in/check.v1"
)

type buildersSuite struct{}

var _ = Suite(&buildersSuite{})

func (s *buildersSuite) TestPublicBuilderStorageKey(c *C) {
	symmetric, err := NewSymDefBuilder().
		WithAlgorithm(SymAlgorithmAES).
		WithKeyBits(128).
		WithMode(SymModeCFB).
		BuildObject()
	c.Assert(err, IsNil)

	params, err := NewRSAParamsBuilderForRestrictedDecryptionKey(*symmetric, 2048).Build()
	c.Assert(err, IsNil)

	pub, err := NewPublicBuilder().
		WithType(ObjectTypeRSA).
		WithNameAlg(HashAlgorithmSHA256).
		WithAttrs(StorageKeyAttrs()).
		WithParams(PublicParamsU{Data: params}).
		Build()
	c.Assert(err, IsNil)

	c.Check(pub, DeepEquals, &Public{
		Type:    ObjectTypeRSA,
		NameAlg: HashAlgorithmSHA256,
		Attrs: AttrFixedTPM | AttrFixedParent | AttrSensitiveDataOrigin |
			AttrUserWithAuth | AttrRestricted | AttrDecrypt,
		Params: PublicParamsU{
			Data: &RSAParams{
				Symmetric: SymDefObject{
					Algorithm: SymObjectAlgorithmAES,
					KeyBits:   SymKeyBitsU{Data: uint16(128)},
					Mode:      SymModeU{Data: SymModeCFB}},
				Scheme:  RSAScheme{Scheme: RSASchemeNull},
				KeyBits: 2048}},
		Unique: PublicIDU{Data: PublicKeyRSA{}}})
}

func (s *buildersSuite) TestPublicBuilderSigningKeyWithUnique(c *C) {
	scheme := RSAScheme{
		Scheme:  RSASchemeRSAPSS,
		Details: AsymSchemeU{Data: &SigSchemeRSAPSS{HashAlg: HashAlgorithmSHA256}}}
	params, err := NewRSAParamsBuilderForUnrestrictedSigningKey(scheme, 3072).Build()
	c.Assert(err, IsNil)

	modulus := PublicKeyRSA(internal_testutil.DecodeHexString(c, "79e2b2b0bb5bba1f860e8509ae4ae989"))

	pub, err := NewPublicBuilder().
		WithType(ObjectTypeRSA).
		WithNameAlg(HashAlgorithmSHA256).
		WithAttrs(SigningKeyAttrs() | AttrNoDA).
		WithParams(PublicParamsU{Data: params}).
		WithUnique(PublicIDU{Data: modulus}).
		Build()
	c.Assert(err, IsNil)

	c.Check(pub, DeepEquals, &Public{
		Type:    ObjectTypeRSA,
		NameAlg: HashAlgorithmSHA256,
		Attrs: AttrFixedTPM | AttrFixedParent | AttrSensitiveDataOrigin |
			AttrUserWithAuth | AttrSign | AttrNoDA,
		Params: PublicParamsU{
			Data: &RSAParams{
				Symmetric: SymDefObject{Algorithm: SymObjectAlgorithmNull},
				Scheme:    scheme,
				KeyBits:   3072}},
		Unique: PublicIDU{Data: modulus}})
}

func (s *buildersSuite) TestPublicBuilderRoundTrip(c *C) {
	symmetric, err := NewSymDefBuilder().
		WithAlgorithm(SymAlgorithmAES).
		WithKeyBits(256).
		WithMode(SymModeCFB).
		BuildObject()
	c.Assert(err, IsNil)

	params, err := NewRSAParamsBuilderForRestrictedDecryptionKey(*symmetric, 2048).Build()
	c.Assert(err, IsNil)

	pub, err := NewPublicBuilder().
		WithType(ObjectTypeRSA).
		WithNameAlg(HashAlgorithmSHA256).
		WithAttrs(StorageKeyAttrs() | AttrNoDA).
		WithAuthPolicy(internal_testutil.DecodeHexString(c, "9e7ad6dcfa20f03935e9200d649a297669ef1cdebc631a53d90521bf0fe0a16b")).
		WithParams(PublicParamsU{Data: params}).
		WithUnique(PublicIDU{Data: PublicKeyRSA(internal_testutil.DecodeHexString(c, "c8bd6359efcb43e0a8a89645e0892aae"))}).
		Build()
	c.Assert(err, IsNil)

	b, err := mu.MarshalToBytes(pub)
	c.Assert(err, IsNil)

	var pub2 *Public
	_, err = mu.UnmarshalFromBytes(b, &pub2)
	c.Assert(err, IsNil)
	c.Check(pub2, DeepEquals, pub)
}

func (s *buildersSuite) TestPublicBuilderNoType(c *C) {
	_, err := NewPublicBuilder().
		WithNameAlg(HashAlgorithmSHA256).
		Build()
	c.Check(err, ErrorMatches, `unsupported object type 0`)
	c.Check(IsError(err, ErrorKindUnsupportedParam), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestPublicBuilderUnsupportedType(c *C) {
	_, err := NewPublicBuilder().
		WithType(ObjectTypeKeyedHash).
		WithNameAlg(HashAlgorithmSHA256).
		Build()
	c.Check(err, ErrorMatches, `unsupported object type 8`)
	c.Check(IsError(err, ErrorKindUnsupportedParam), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestPublicBuilderMissingParams(c *C) {
	_, err := NewPublicBuilder().
		WithType(ObjectTypeRSA).
		WithNameAlg(HashAlgorithmSHA256).
		Build()
	c.Check(err, ErrorMatches, `no public parameters have been supplied`)
	c.Check(IsError(err, ErrorKindParamsMissing), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestPublicBuilderInconsistentParams(c *C) {
	_, err := NewPublicBuilder().
		WithType(ObjectTypeRSA).
		WithNameAlg(HashAlgorithmSHA256).
		WithParams(PublicParamsU{
			Data: &SymCipherParams{
				Sym: SymDefObject{
					Algorithm: SymObjectAlgorithmAES,
					KeyBits:   SymKeyBitsU{Data: uint16(128)},
					Mode:      SymModeU{Data: SymModeCFB}}}}).
		Build()
	c.Check(err, ErrorMatches, `supplied parameters are inconsistent with object type 1`)
	c.Check(IsError(err, ErrorKindInconsistentParams), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestPublicBuilderInconsistentUnique(c *C) {
	params, err := NewRSAParamsBuilderForUnrestrictedSigningKey(RSAScheme{Scheme: RSASchemeNull}, 2048).Build()
	c.Assert(err, IsNil)

	_, err = NewPublicBuilder().
		WithType(ObjectTypeRSA).
		WithNameAlg(HashAlgorithmSHA256).
		WithParams(PublicParamsU{Data: params}).
		WithUnique(PublicIDU{Data: Digest{0x01, 0x02}}).
		Build()
	c.Check(err, ErrorMatches, `supplied unique value is inconsistent with object type 1`)
	c.Check(IsError(err, ErrorKindInconsistentParams), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestRSAParamsBuilderRestrictedDecryptionKey(c *C) {
	symmetric := SymDefObject{
		Algorithm: SymObjectAlgorithmAES,
		KeyBits:   SymKeyBitsU{Data: uint16(128)},
		Mode:      SymModeU{Data: SymModeCFB}}

	params, err := NewRSAParamsBuilderForRestrictedDecryptionKey(symmetric, 2048).Build()
	c.Assert(err, IsNil)
	c.Check(params, DeepEquals, &RSAParams{
		Symmetric: symmetric,
		Scheme:    RSAScheme{Scheme: RSASchemeNull},
		KeyBits:   2048})
}

func (s *buildersSuite) TestRSAParamsBuilderWithExponent(c *C) {
	scheme := RSAScheme{
		Scheme:  RSASchemeRSASSA,
		Details: AsymSchemeU{Data: &SigSchemeRSASSA{HashAlg: HashAlgorithmSHA256}}}

	params, err := NewRSAParamsBuilderForUnrestrictedSigningKey(scheme, 2048).
		WithExponent(3).
		Build()
	c.Assert(err, IsNil)
	c.Check(params, DeepEquals, &RSAParams{
		Symmetric: SymDefObject{Algorithm: SymObjectAlgorithmNull},
		Scheme:    scheme,
		KeyBits:   2048,
		Exponent:  3})
}

func (s *buildersSuite) TestRSAParamsBuilderRestrictedDecryptionKeyMissingSymmetric(c *C) {
	_, err := NewRSAParamsBuilder().
		Restricted().
		ForDecryption().
		WithScheme(RSAScheme{Scheme: RSASchemeNull}).
		WithKeyBits(2048).
		Build()
	c.Check(err, ErrorMatches, `no symmetric cipher has been supplied for a restricted decryption key`)
	c.Check(IsError(err, ErrorKindParamsMissing), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestRSAParamsBuilderRestrictedDecryptionKeySigningScheme(c *C) {
	symmetric := SymDefObject{
		Algorithm: SymObjectAlgorithmAES,
		KeyBits:   SymKeyBitsU{Data: uint16(128)},
		Mode:      SymModeU{Data: SymModeCFB}}

	_, err := NewRSAParamsBuilderForRestrictedDecryptionKey(symmetric, 2048).
		WithScheme(RSAScheme{
			Scheme:  RSASchemeRSASSA,
			Details: AsymSchemeU{Data: &SigSchemeRSASSA{HashAlg: HashAlgorithmSHA256}}}).
		Build()
	c.Check(err, ErrorMatches, `scheme 20 is not valid for a restricted decryption key`)
	c.Check(IsError(err, ErrorKindInconsistentParams), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestRSAParamsBuilderUnexpectedSymmetric(c *C) {
	scheme := RSAScheme{
		Scheme:  RSASchemeRSASSA,
		Details: AsymSchemeU{Data: &SigSchemeRSASSA{HashAlg: HashAlgorithmSHA256}}}

	_, err := NewRSAParamsBuilderForUnrestrictedSigningKey(scheme, 2048).
		WithSymmetric(SymDefObject{
			Algorithm: SymObjectAlgorithmAES,
			KeyBits:   SymKeyBitsU{Data: uint16(128)},
			Mode:      SymModeU{Data: SymModeCFB}}).
		Build()
	c.Check(err, ErrorMatches, `a symmetric cipher can only be supplied for a restricted decryption key`)
	c.Check(IsError(err, ErrorKindInconsistentParams), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestRSAParamsBuilderMissingScheme(c *C) {
	_, err := NewRSAParamsBuilder().
		WithKeyBits(2048).
		Build()
	c.Check(err, ErrorMatches, `no scheme has been supplied`)
	c.Check(IsError(err, ErrorKindParamsMissing), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestRSAParamsBuilderRestrictedSigningKey(c *C) {
	scheme := RSAScheme{
		Scheme:  RSASchemeRSAPSS,
		Details: AsymSchemeU{Data: &SigSchemeRSAPSS{HashAlg: HashAlgorithmSHA256}}}

	params, err := NewRSAParamsBuilder().
		Restricted().
		ForSigning().
		WithScheme(scheme).
		WithKeyBits(2048).
		Build()
	c.Assert(err, IsNil)
	c.Check(params, DeepEquals, &RSAParams{
		Symmetric: SymDefObject{Algorithm: SymObjectAlgorithmNull},
		Scheme:    scheme,
		KeyBits:   2048})
}

func (s *buildersSuite) TestRSAParamsBuilderRestrictedSigningKeyNullScheme(c *C) {
	_, err := NewRSAParamsBuilder().
		Restricted().
		ForSigning().
		WithScheme(RSAScheme{Scheme: RSASchemeNull}).
		WithKeyBits(2048).
		Build()
	c.Check(err, ErrorMatches, `scheme 16 is not valid for a restricted signing key`)
	c.Check(IsError(err, ErrorKindInconsistentParams), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestRSAParamsBuilderCombinedKey(c *C) {
	params, err := NewRSAParamsBuilder().
		ForSigning().
		ForDecryption().
		WithScheme(RSAScheme{Scheme: RSASchemeNull}).
		WithKeyBits(2048).
		Build()
	c.Assert(err, IsNil)
	c.Check(params, DeepEquals, &RSAParams{
		Symmetric: SymDefObject{Algorithm: SymObjectAlgorithmNull},
		Scheme:    RSAScheme{Scheme: RSASchemeNull},
		KeyBits:   2048})
}

func (s *buildersSuite) TestRSAParamsBuilderCombinedKeyWithScheme(c *C) {
	_, err := NewRSAParamsBuilder().
		ForSigning().
		ForDecryption().
		WithScheme(RSAScheme{
			Scheme:  RSASchemeRSASSA,
			Details: AsymSchemeU{Data: &SigSchemeRSASSA{HashAlg: HashAlgorithmSHA256}}}).
		WithKeyBits(2048).
		Build()
	c.Check(err, ErrorMatches, `scheme 20 is not valid for a combined signing and decryption key`)
	c.Check(IsError(err, ErrorKindInconsistentParams), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestRSAParamsBuilderSigningKeyEncryptionScheme(c *C) {
	_, err := NewRSAParamsBuilder().
		ForSigning().
		WithScheme(RSAScheme{
			Scheme:  RSASchemeOAEP,
			Details: AsymSchemeU{Data: &EncSchemeOAEP{HashAlg: HashAlgorithmSHA256}}}).
		WithKeyBits(2048).
		Build()
	c.Check(err, ErrorMatches, `scheme 23 is not valid for a signing key`)
	c.Check(IsError(err, ErrorKindInconsistentParams), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestRSAParamsBuilderDecryptionKey(c *C) {
	scheme := RSAScheme{
		Scheme:  RSASchemeOAEP,
		Details: AsymSchemeU{Data: &EncSchemeOAEP{HashAlg: HashAlgorithmSHA256}}}

	params, err := NewRSAParamsBuilder().
		ForDecryption().
		WithScheme(scheme).
		WithKeyBits(2048).
		Build()
	c.Assert(err, IsNil)
	c.Check(params, DeepEquals, &RSAParams{
		Symmetric: SymDefObject{Algorithm: SymObjectAlgorithmNull},
		Scheme:    scheme,
		KeyBits:   2048})
}

func (s *buildersSuite) TestRSAParamsBuilderDecryptionKeySigningScheme(c *C) {
	_, err := NewRSAParamsBuilder().
		ForDecryption().
		WithScheme(RSAScheme{
			Scheme:  RSASchemeRSAPSS,
			Details: AsymSchemeU{Data: &SigSchemeRSAPSS{HashAlg: HashAlgorithmSHA256}}}).
		WithKeyBits(2048).
		Build()
	c.Check(err, ErrorMatches, `scheme 22 is not valid for a decryption key`)
	c.Check(IsError(err, ErrorKindInconsistentParams), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestRSAParamsBuilderInvalidKeyBits(c *C) {
	scheme := RSAScheme{
		Scheme:  RSASchemeRSASSA,
		Details: AsymSchemeU{Data: &SigSchemeRSASSA{HashAlg: HashAlgorithmSHA256}}}

	_, err := NewRSAParamsBuilderForUnrestrictedSigningKey(scheme, 1536).Build()
	c.Check(err, ErrorMatches, `invalid key size \(1536 bits\)`)
	c.Check(IsError(err, ErrorKindInvalidParam), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestRSAParamsBuilderNoKeyBits(c *C) {
	scheme := RSAScheme{
		Scheme:  RSASchemeRSASSA,
		Details: AsymSchemeU{Data: &SigSchemeRSASSA{HashAlg: HashAlgorithmSHA256}}}

	_, err := NewRSAParamsBuilder().
		ForSigning().
		WithScheme(scheme).
		Build()
	c.Check(err, ErrorMatches, `invalid key size \(0 bits\)`)
	c.Check(IsError(err, ErrorKindInvalidParam), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestSymDefBuilderAES(c *C) {
	def, err := NewSymDefBuilder().
		WithAlgorithm(SymAlgorithmAES).
		WithKeyBits(128).
		WithMode(SymModeCFB).
		Build()
	c.Assert(err, IsNil)
	c.Check(def, DeepEquals, &SymDef{
		Algorithm: SymAlgorithmAES,
		KeyBits:   SymKeyBitsU{Data: uint16(128)},
		Mode:      SymModeU{Data: SymModeCFB}})

	object, err := NewSymDefBuilder().
		WithAlgorithm(SymAlgorithmAES).
		WithKeyBits(128).
		WithMode(SymModeCFB).
		BuildObject()
	c.Assert(err, IsNil)
	c.Check(object, DeepEquals, &SymDefObject{
		Algorithm: SymObjectAlgorithmAES,
		KeyBits:   SymKeyBitsU{Data: uint16(128)},
		Mode:      SymModeU{Data: SymModeCFB}})
}

func (s *buildersSuite) TestSymDefBuilderXOR(c *C) {
	def, err := NewSymDefBuilder().
		WithAlgorithm(SymAlgorithmXOR).
		WithHash(HashAlgorithmSHA256).
		Build()
	c.Assert(err, IsNil)
	c.Check(def, DeepEquals, &SymDef{
		Algorithm: SymAlgorithmXOR,
		KeyBits:   SymKeyBitsU{Data: HashAlgorithmSHA256}})
}

func (s *buildersSuite) TestSymDefBuilderNull(c *C) {
	def, err := NewSymDefBuilder().
		WithAlgorithm(SymAlgorithmNull).
		Build()
	c.Assert(err, IsNil)
	c.Check(def, DeepEquals, &SymDef{Algorithm: SymAlgorithmNull})
}

func (s *buildersSuite) TestSymDefBuilderCamellia(c *C) {
	object, err := NewSymDefBuilder().
		WithAlgorithm(SymAlgorithmCamellia).
		WithKeyBits(256).
		WithMode(SymModeCBC).
		BuildObject()
	c.Assert(err, IsNil)
	c.Check(object, DeepEquals, &SymDefObject{
		Algorithm: SymObjectAlgorithmCamellia,
		KeyBits:   SymKeyBitsU{Data: uint16(256)},
		Mode:      SymModeU{Data: SymModeCBC}})
}

func (s *buildersSuite) TestSymDefBuilderMissingAlgorithm(c *C) {
	_, err := NewSymDefBuilder().
		WithKeyBits(128).
		WithMode(SymModeCFB).
		Build()
	c.Check(err, ErrorMatches, `no symmetric algorithm has been supplied`)
	c.Check(IsError(err, ErrorKindParamsMissing), internal_testutil.IsTrue)

	_, err = NewSymDefBuilder().BuildObject()
	c.Check(err, ErrorMatches, `no symmetric algorithm has been supplied`)
	c.Check(IsError(err, ErrorKindParamsMissing), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestSymDefBuilderUnsupportedAlgorithm(c *C) {
	_, err := NewSymDefBuilder().
		WithAlgorithm(SymAlgorithmTDES).
		WithKeyBits(168).
		WithMode(SymModeCFB).
		Build()
	c.Check(err, ErrorMatches, `unsupported symmetric algorithm 3`)
	c.Check(IsError(err, ErrorKindUnsupportedParam), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestPCRSelectionListBuilder(c *C) {
	l, err := NewPCRSelectionListBuilder().
		WithSelection(HashAlgorithmSHA256, 0, 8).
		Build()
	c.Assert(err, IsNil)
	c.Check(l, DeepEquals, PCRSelectionList{
		{Hash: HashAlgorithmSHA256, Select: PCRSelect{0, 8}}})
}

func (s *buildersSuite) TestPCRSelectionListBuilderMergesSelections(c *C) {
	l, err := NewPCRSelectionListBuilder().
		WithSelection(HashAlgorithmSHA256, 0).
		WithSelection(HashAlgorithmSHA1, 4).
		WithSelection(HashAlgorithmSHA256, 8).
		Build()
	c.Assert(err, IsNil)
	c.Check(l, DeepEquals, PCRSelectionList{
		{Hash: HashAlgorithmSHA256, Select: PCRSelect{0, 8}},
		{Hash: HashAlgorithmSHA1, Select: PCRSelect{4}}})
}

func (s *buildersSuite) TestPCRSelectionListBuilderWithSizeOfSelect(c *C) {
	l, err := NewPCRSelectionListBuilder().
		WithSizeOfSelect(4).
		WithSelection(HashAlgorithmSHA256, 31).
		Build()
	c.Assert(err, IsNil)
	c.Check(l, DeepEquals, PCRSelectionList{
		{Hash: HashAlgorithmSHA256, Select: PCRSelect{31}, SizeOfSelect: 4}})
}

func (s *buildersSuite) TestPCRSelectionListBuilderPCROutOfRange(c *C) {
	_, err := NewPCRSelectionListBuilder().
		WithSelection(HashAlgorithmSHA256, 24).
		Build()
	c.Check(err, ErrorMatches, `PCR index 24 doesn't fit into a selection of 3 octets`)
	c.Check(IsError(err, ErrorKindInvalidParam), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestPCRSelectionListBuilderPCROutOfRangeExplicitSize(c *C) {
	_, err := NewPCRSelectionListBuilder().
		WithSizeOfSelect(2).
		WithSelection(HashAlgorithmSHA256, 16).
		Build()
	c.Check(err, ErrorMatches, `PCR index 16 doesn't fit into a selection of 2 octets`)
	c.Check(IsError(err, ErrorKindInvalidParam), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestPCRSelectionListBuilderNegativePCR(c *C) {
	_, err := NewPCRSelectionListBuilder().
		WithSelection(HashAlgorithmSHA256, -1).
		Build()
	c.Check(err, ErrorMatches, `PCR index -1 doesn't fit into a selection of 3 octets`)
	c.Check(IsError(err, ErrorKindInvalidParam), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestPCRSelectionListBuilderTooManySelections(c *C) {
	builder := NewPCRSelectionListBuilder()
	for i := 0; i < 17; i++ {
		builder.WithSelection(HashAlgorithmId(i+1), 0)
	}
	_, err := builder.Build()
	c.Check(err, ErrorMatches, `too many selections \(17\)`)
	c.Check(IsError(err, ErrorKindInvalidParam), internal_testutil.IsTrue)
}

func (s *buildersSuite) TestPCRSelectionListBuilderMaxSelections(c *C) {
	builder := NewPCRSelectionListBuilder()
	for i := 0; i < 16; i++ {
		builder.WithSelection(HashAlgorithmId(i+1), 0)
	}
	l, err := builder.Build()
	c.Assert(err, IsNil)
	c.Check(l, internal_testutil.LenEquals, 16)
}

func (s *buildersSuite) TestPCRSelectionListBuilderMarshal(c *C) {
	l, err := NewPCRSelectionListBuilder().
		WithSelection(HashAlgorithmSHA256, 0, 16).
		Build()
	c.Assert(err, IsNil)

	b := mu.MustMarshalToBytes(&l)
	c.Check(b, DeepEquals, internal_testutil.DecodeHexString(c, "00000001000b03010001"))
}

func (s *buildersSuite) TestPCRSelectionListBuilderEmpty(c *C) {
	l, err := NewPCRSelectionListBuilder().Build()
	c.Assert(err, IsNil)
	c.Check(l.IsEmpty(), internal_testutil.IsTrue)
}
