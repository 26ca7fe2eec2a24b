// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys_test

import (
	. "gopkg.in/check.v1"

	. "github.com/canonical/go-tpm2-esys"
	internal_testutil "github.com/canonical/go-tpm2-esys/internal/testutil"
	"github.com/canonical/go-tpm2-esys/testutil"
)

type capabilitiesSuite struct {
	testutil.TPMTest
}

var _ = Suite(&capabilitiesSuite{})

func (s *capabilitiesSuite) TestGetCapabilityAlgs(c *C) {
	data, err := s.TPM.GetCapability(CapabilityAlgs, uint32(AlgorithmFirst), 512)
	c.Assert(err, IsNil)
	c.Check(data.Capability, Equals, CapabilityAlgs)

	algs := data.Data.Algorithms()
	c.Check(algs, Not(HasLen), 0)

	found := false
	for _, alg := range algs {
		if alg.Alg == AlgorithmSHA256 {
			found = true
			break
		}
	}
	c.Check(found, internal_testutil.IsTrue)
}

func (s *capabilitiesSuite) TestGetCapabilityTPMProperties(c *C) {
	props, err := s.TPM.GetCapabilityTPMProperties(PropertyManufacturer, 1)
	c.Assert(err, IsNil)
	c.Assert(props, HasLen, 1)
	c.Check(props[0].Property, Equals, PropertyManufacturer)
	c.Check(props[0].Value, Not(Equals), uint32(0))
}

func (s *capabilitiesSuite) TestGetCapabilityPCRs(c *C) {
	pcrs, err := s.TPM.GetCapabilityPCRs()
	c.Assert(err, IsNil)
	c.Check(pcrs, Not(HasLen), 0)
}

func (s *capabilitiesSuite) TestGetCapabilityHandles(c *C) {
	object := createRSASrkForTesting(c, s.TPM, nil)
	defer func() { c.Check(s.TPM.FlushContext(object), IsNil) }()

	handles, err := s.TPM.GetCapabilityHandles(HandleTypeTransient.BaseHandle(), CapabilityMaxProperties)
	c.Assert(err, IsNil)

	found := false
	for _, handle := range handles {
		if handle == object.Handle() {
			found = true
			break
		}
	}
	c.Check(found, internal_testutil.IsTrue)
}

func (s *capabilitiesSuite) TestGetTPMPropertyIsCached(c *C) {
	prop, err := s.TPM.GetTPMProperty(PropertyPCRSelectMin)
	c.Check(err, IsNil)
	c.Check(prop, Not(Equals), uint32(0))

	s.ForgetCommands()

	prop2, err := s.TPM.GetTPMProperty(PropertyPCRSelectMin)
	c.Check(err, IsNil)
	c.Check(prop2, Equals, prop)
	c.Check(s.CommandLog(), HasLen, 0)
}

func (s *capabilitiesSuite) TestTestParms(c *C) {
	symmetric, err := NewSymDefBuilder().
		WithAlgorithm(SymAlgorithmAES).
		WithKeyBits(128).
		WithMode(SymModeCFB).
		BuildObject()
	c.Assert(err, IsNil)

	params, err := NewRSAParamsBuilderForRestrictedDecryptionKey(*symmetric, 2048).Build()
	c.Assert(err, IsNil)

	c.Check(s.TPM.TestParms(&PublicParams{
		Type:       ObjectTypeRSA,
		Parameters: PublicParamsU{Data: params}}), IsNil)
}

func (s *capabilitiesSuite) TestTestParmsInvalid(c *C) {
	params, err := NewRSAParamsBuilderForUnrestrictedSigningKey(
		RSAScheme{Scheme: RSASchemeNull}, 2048).Build()
	c.Assert(err, IsNil)

	// An unsupported key size should be rejected by the TPM.
	params.KeyBits = 520

	err = s.TPM.TestParms(&PublicParams{
		Type:       ObjectTypeRSA,
		Parameters: PublicParamsU{Data: params}})
	c.Check(IsTPMParameterError(err, AnyErrorCode, CommandTestParms, 1), internal_testutil.IsTrue)
}
