// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"bytes"

	. "gopkg.in/check.v1"

	"github.com/canonical/go-tpm2-esys/mu"
)

type authSuite struct{}

var _ = Suite(&authSuite{})

func (s *authSuite) TestBuildPasswordCommandAuth(c *C) {
	resource := &permanentContext{handle: HandleOwner, auth: []byte("password")}
	p := &sessionParam{session: pwSession(), associatedResource: resource}

	a := p.buildCommandAuth(CommandGetRandom, nil, nil)

	c.Check(a.SessionHandle, Equals, HandlePW)
	c.Check(a.Nonce, IsNil)
	c.Check(a.SessionAttrs, Equals, AttrContinueSession)
	c.Check(a.HMAC, DeepEquals, Auth("password"))
}

func (s *authSuite) TestBuildPasswordCommandAuthTrimsTrailingZeros(c *C) {
	resource := &permanentContext{handle: HandleOwner, auth: []byte("password\x00\x00")}
	p := &sessionParam{session: pwSession(), associatedResource: resource}

	a := p.buildCommandAuth(CommandGetRandom, nil, nil)
	c.Check(a.HMAC, DeepEquals, Auth("password"))
}

func (s *authSuite) TestProcessPasswordResponseAuth(c *C) {
	p := &sessionParam{session: pwSession(), associatedResource: &permanentContext{handle: HandleOwner}}

	c.Check(p.processResponseAuth(authResponse{}, Success, CommandGetRandom, nil), IsNil)
	c.Check(p.processResponseAuth(authResponse{HMAC: Auth{0x55}}, Success, CommandGetRandom, nil),
		ErrorMatches, `non-zero length HMAC for password authorization`)
}

func (s *authSuite) TestMarshalCommandAuthArea(c *C) {
	area := commandAuthArea{
		authCommand{SessionHandle: HandlePW, SessionAttrs: AttrContinueSession, HMAC: Auth("foo")}}

	b, err := mu.MarshalToBytes(&area)
	c.Assert(err, IsNil)

	// uint32 size || handle || nonce size || attrs || hmac size || hmac
	expected := bytes.Join([][]byte{
		{0x00, 0x00, 0x00, 0x0c},
		{0x40, 0x00, 0x00, 0x09},
		{0x00, 0x00},
		{0x01},
		{0x00, 0x03}, []byte("foo")}, nil)
	c.Check(b, DeepEquals, expected)
}

func (s *authSuite) TestAppendRejectsTooManySessions(c *C) {
	p := newSessionParams()
	for i := 0; i < 3; i++ {
		c.Check(p.append(&sessionParam{session: pwSession()}), IsNil)
	}
	c.Check(p.append(&sessionParam{session: pwSession()}), ErrorMatches, `too many sessions`)
}

func (s *authSuite) TestAppendRejectsUnloadedSession(c *C) {
	sc := &sessionContext{handle: Handle(0x02000000), flags: sessionContextFull, hashAlg: HashAlgorithmSHA256}
	p := newSessionParams()
	c.Check(p.append(&sessionParam{session: sc}), ErrorMatches, `session is not complete and loaded`)
}

func (s *authSuite) TestAppendRejectsEncryptSessionWithoutSymmetricAlgorithm(c *C) {
	sc := &sessionContext{
		handle:  Handle(0x02000000),
		attrs:   AttrContinueSession | AttrCommandEncrypt,
		flags:   sessionContextFull | sessionContextLoaded,
		hashAlg: HashAlgorithmSHA256}
	p := newSessionParams()
	c.Check(p.append(&sessionParam{session: sc}),
		ErrorMatches, `session has no symmetric algorithm for parameter encryption`)
}

func (s *authSuite) TestAppendRejectsDuplicateEncryptSessions(c *C) {
	symmetric := &SymDef{
		Algorithm: SymAlgorithmAES,
		KeyBits:   SymKeyBitsU{Data: uint16(128)},
		Mode:      SymModeU{Data: SymModeCFB}}

	newSession := func(handle Handle) *sessionContext {
		return &sessionContext{
			handle:    handle,
			attrs:     AttrContinueSession | AttrResponseEncrypt,
			flags:     sessionContextFull | sessionContextLoaded,
			hashAlg:   HashAlgorithmSHA256,
			symmetric: symmetric}
	}

	p := newSessionParams()
	c.Check(p.append(&sessionParam{session: newSession(0x02000000)}), IsNil)
	c.Check(p.append(&sessionParam{session: newSession(0x02000001)}),
		ErrorMatches, `only one session can be used for response parameter encryption`)
}

func (s *authSuite) TestValidateAndAppendExtraRejectsPasswordSession(c *C) {
	p := newSessionParams()
	err := p.validateAndAppendExtra([]SessionContext{pwSession()})
	c.Check(err, ErrorMatches, `invalid session context at index 0: the password session can only authorize a resource`)
}
