// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys_test

import (
	. "gopkg.in/check.v1"

	. "github.com/canonical/go-tpm2-esys"
	"github.com/canonical/go-tpm2-esys/mu"
	"github.com/canonical/go-tpm2-esys/testutil"
)

type hierarchySuite struct {
	testutil.TPMTest
}

var _ = Suite(&hierarchySuite{})

func (s *hierarchySuite) TestCreatePrimary(c *C) {
	object := createRSASrkForTesting(c, s.TPM, nil)
	defer func() { c.Check(s.TPM.FlushContext(object), IsNil) }()

	c.Check(object.Handle().Type(), Equals, HandleTypeTransient)

	pub, _, _, err := s.TPM.ReadPublic(object)
	c.Assert(err, IsNil)
	c.Check(pub.Type, Equals, ObjectTypeRSA)
	c.Check(pub.Attrs&AttrRestricted, Equals, AttrRestricted)
	c.Check(pub.Name(), DeepEquals, object.Name())
}

func (s *hierarchySuite) TestCreatePrimaryWithAuth(c *C) {
	object := createRSASrkForTesting(c, s.TPM, testAuth)
	defer func() { c.Check(s.TPM.FlushContext(object), IsNil) }()

	// The object's tracked authorization value should work for a
	// command that requires it.
	params, err := NewRSAParamsBuilderForUnrestrictedSigningKey(
		RSAScheme{
			Scheme:  RSASchemeRSASSA,
			Details: AsymSchemeU{Data: &SigSchemeRSASSA{HashAlg: HashAlgorithmSHA256}}}, 2048).Build()
	c.Assert(err, IsNil)

	template, err := NewPublicBuilder().
		WithType(ObjectTypeRSA).
		WithNameAlg(HashAlgorithmSHA256).
		WithAttrs(AttrFixedTPM | AttrFixedParent | AttrSensitiveDataOrigin | AttrUserWithAuth | AttrSign | AttrNoDA).
		WithParams(PublicParamsU{Data: params}).
		Build()
	c.Assert(err, IsNil)

	_, _, _, _, _, err = s.TPM.Create(object, nil, template, nil, nil)
	c.Check(err, IsNil)

	// A wrong value should be rejected.
	object.SetAuthValue(dummyAuth)
	_, _, _, _, _, err = s.TPM.Create(object, nil, template, nil, nil)
	c.Check(err, NotNil)

	object.SetAuthValue(testAuth)
}

func (s *hierarchySuite) TestCreatePrimaryRequiresTemplate(c *C) {
	_, _, _, _, _, err := s.TPM.CreatePrimary(s.TPM.OwnerHandleContext(), nil, nil, nil, nil)
	c.Check(err, ErrorMatches, `invalid inPublic argument: nil value`)
}

func (s *hierarchySuite) TestCreatePrimaryWithCreationPCR(c *C) {
	requirePCRBank(c, s.TPM, HashAlgorithmSHA256)

	symmetric, err := NewSymDefBuilder().
		WithAlgorithm(SymAlgorithmAES).
		WithKeyBits(128).
		WithMode(SymModeCFB).
		BuildObject()
	c.Assert(err, IsNil)

	params, err := NewRSAParamsBuilderForRestrictedDecryptionKey(*symmetric, 2048).Build()
	c.Assert(err, IsNil)

	template, err := NewPublicBuilder().
		WithType(ObjectTypeRSA).
		WithNameAlg(HashAlgorithmSHA256).
		WithAttrs(AttrFixedTPM | AttrFixedParent | AttrSensitiveDataOrigin | AttrUserWithAuth | AttrNoDA | AttrRestricted | AttrDecrypt).
		WithParams(PublicParamsU{Data: params}).
		Build()
	c.Assert(err, IsNil)

	creationPCR, err := NewPCRSelectionListBuilder().
		WithSelection(HashAlgorithmSHA256, 0, 1).
		Build()
	c.Assert(err, IsNil)

	object, _, creationData, _, _, err := s.TPM.CreatePrimary(s.TPM.OwnerHandleContext(), nil, template, nil, creationPCR)
	c.Assert(err, IsNil)
	defer func() { c.Check(s.TPM.FlushContext(object), IsNil) }()

	c.Assert(creationData, NotNil)
	c.Check(mu.MustMarshalToBytes(creationData.PCRSelect), DeepEquals, mu.MustMarshalToBytes(creationPCR))
}
