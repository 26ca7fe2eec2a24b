// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys_test

import (
	. "gopkg.in/check.v1"

	. "github.com/canonical/go-tpm2-esys"
	"github.com/canonical/go-tpm2-esys/testutil"
)

type sessionSuite struct {
	testutil.TPMTest
}

var _ = Suite(&sessionSuite{})

func (s *sessionSuite) startSession(c *C, tpmKey, bind ResourceContext, sessionType SessionType) SessionContext {
	session, err := s.TPM.StartAuthSession(tpmKey, bind, sessionType, nil, HashAlgorithmSHA256)
	c.Assert(err, IsNil)
	s.AddCleanup(func() {
		if session.Handle() == HandleUnassigned {
			return
		}
		c.Check(s.TPM.FlushContext(session), IsNil)
	})
	return session
}

func (s *sessionSuite) TestStartAuthSessionUnboundHMAC(c *C) {
	session := s.startSession(c, nil, nil, SessionTypeHMAC)

	c.Check(session.Handle().Type(), Equals, HandleTypeHMACSession)
	c.Check(session.HashAlg(), Equals, HashAlgorithmSHA256)
	c.Check(session.NonceTPM(), HasLen, 32)
	c.Check(session.Attrs(), Equals, AttrContinueSession)
}

func (s *sessionSuite) TestStartAuthSessionPolicy(c *C) {
	session := s.startSession(c, nil, nil, SessionTypePolicy)

	c.Check(session.Handle().Type(), Equals, HandleTypePolicySession)
}

func (s *sessionSuite) TestStartAuthSessionBound(c *C) {
	session := s.startSession(c, nil, s.TPM.OwnerHandleContext(), SessionTypeHMAC)

	c.Check(session.Handle().Type(), Equals, HandleTypeHMACSession)
	c.Check(session.NonceTPM(), HasLen, 32)
}

func (s *sessionSuite) TestStartAuthSessionSalted(c *C) {
	srk := createRSASrkForTesting(c, s.TPM, nil)
	defer func() { c.Check(s.TPM.FlushContext(srk), IsNil) }()

	session := s.startSession(c, srk, nil, SessionTypeHMAC)

	c.Check(session.Handle().Type(), Equals, HandleTypeHMACSession)
}

func (s *sessionSuite) TestStartAuthSessionRejectsNullDigest(c *C) {
	_, err := s.TPM.StartAuthSession(nil, nil, SessionTypeHMAC, nil, HashAlgorithmNull)
	c.Check(err, ErrorMatches, `invalid authHash argument: unsupported digest algorithm .*`)
}

func (s *sessionSuite) TestHMACSessionUsedForAuthorization(c *C) {
	object := createRSASrkForTesting(c, s.TPM, testAuth)
	defer func() { c.Check(s.TPM.FlushContext(object), IsNil) }()

	session := s.startSession(c, nil, nil, SessionTypeHMAC)

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

	err = s.TPM.RunWithSession(session, func() error {
		_, _, _, _, _, err := s.TPM.Create(object, nil, template, nil, nil)
		return err
	})
	c.Check(err, IsNil)
}
