// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys_test

import (
	"encoding/binary"
	"errors"
	"sort"
	"strings"

	. "gopkg.in/check.v1"

	. "github.com/canonical/go-tpm2-esys"
	internal_testutil "github.com/canonical/go-tpm2-esys/internal/testutil"
	"github.com/canonical/go-tpm2-esys/testutil"
)

type contextSuite struct{}

var _ = Suite(&contextSuite{})

func (s *contextSuite) TestSetSessionsLimit(c *C) {
	tpm, _ := newScriptedTPMContext(c)
	defer tpm.Close()

	sessions := []SessionContext{PasswordSession(), PasswordSession(), PasswordSession(), PasswordSession()}
	err := tpm.SetSessions(sessions...)
	c.Assert(err, NotNil)
	c.Check(err, ErrorMatches, `cannot set more than 3 sessions \(got 4\)`)

	var e *Error
	c.Check(err, internal_testutil.ErrorAs, &e)
	c.Check(e.Kind, Equals, ErrorKindInvalidParam)
}

func (s *contextSuite) TestSessionsAlwaysReturnsThreeSlots(c *C) {
	tpm, _ := newScriptedTPMContext(c)
	defer tpm.Close()

	sessions := tpm.Sessions()
	c.Assert(sessions, HasLen, 3)

	// A new connection has a password session in the first slot.
	c.Assert(sessions[0], NotNil)
	c.Check(sessions[0].Handle(), Equals, HandlePW)
	c.Check(sessions[1], IsNil)
	c.Check(sessions[2], IsNil)
}

func (s *contextSuite) TestClearSessions(c *C) {
	tpm, transport := newScriptedTPMContext(c)
	defer tpm.Close()

	tpm.ClearSessions()
	for _, session := range tpm.Sessions() {
		c.Check(session, IsNil)
	}

	// Commands that need a slot 1 session should now fail before
	// anything is sent to the TPM.
	err := tpm.PCRExtend(tpm.PCRHandleContext(16), nil)
	c.Check(err, ErrorMatches, `command requires an authorization session in slot 1`)

	var e *Error
	c.Check(err, internal_testutil.ErrorAs, &e)
	c.Check(e.Kind, Equals, ErrorKindMissingAuthSession)
	c.Check(transport.commands, HasLen, 0)
}

func (s *contextSuite) TestRunWithSessionsRestores(c *C) {
	tpm, _ := newScriptedTPMContext(c)
	defer tpm.Close()

	saved := tpm.Sessions()

	session := PasswordSession()
	err := tpm.RunWithSessions(func() error {
		sessions := tpm.Sessions()
		c.Check(sessions[0], Equals, session)
		c.Check(sessions[1], IsNil)
		return nil
	}, session)
	c.Check(err, IsNil)

	c.Check(tpm.Sessions(), DeepEquals, saved)
}

func (s *contextSuite) TestRunWithoutSessionsRestores(c *C) {
	tpm, _ := newScriptedTPMContext(c)
	defer tpm.Close()

	saved := tpm.Sessions()
	c.Assert(saved[0], NotNil)

	err := tpm.RunWithoutSessions(func() error {
		for _, session := range tpm.Sessions() {
			c.Check(session, IsNil)
		}
		return nil
	})
	c.Check(err, IsNil)

	c.Check(tpm.Sessions(), DeepEquals, saved)
}

type contextLifecycleSuite struct{}

var _ = Suite(&contextLifecycleSuite{})

func (s *contextLifecycleSuite) TestCloseReleasesResources(c *C) {
	tpm, _ := testutil.NewTPMSimulatorContext(c)

	object := createRSASrkForTesting(c, tpm, nil)
	session, err := tpm.StartAuthSession(nil, nil, SessionTypeHMAC, nil, HashAlgorithmSHA256)
	c.Assert(err, IsNil)

	c.Check(tpm.Close(), IsNil)

	// Both contexts should have been invalidated by the close sweep.
	c.Check(object.Handle(), Equals, HandleUnassigned)
	c.Check(session.Handle(), Equals, HandleUnassigned)
}

func (s *contextLifecycleSuite) TestCloseFlushesTrackedHandles(c *C) {
	tpm, transport := newScriptedTPMContext(c)

	transient1 := NewLimitedHandleContext(0x80000001)
	transient2 := NewLimitedHandleContext(0x80000002)
	persistent := NewLimitedHandleContext(0x81000001)
	tpm.AdoptHandleContext(transient1)
	tpm.AdoptHandleContext(transient2)
	tpm.AdoptHandleContext(persistent)

	transport.queueResponse(internal_testutil.DecodeHexString(c, "80010000000a00000000"))
	transport.queueResponse(internal_testutil.DecodeHexString(c, "80010000000a00000000"))

	c.Check(tpm.Close(), IsNil)

	// Only the transient objects require a TPM2_FlushContext command - the
	// persistent object is released on the host side only.
	c.Assert(transport.commands, HasLen, 2)
	var flushed []Handle
	for _, cmd := range transport.commands {
		c.Assert(cmd, HasLen, 14)
		c.Check(cmd[:10], DeepEquals, internal_testutil.DecodeHexString(c, "80010000000e00000165"))
		flushed = append(flushed, Handle(binary.BigEndian.Uint32(cmd[10:])))
	}
	sort.Slice(flushed, func(i, j int) bool { return flushed[i] < flushed[j] })
	c.Check(flushed, DeepEquals, []Handle{0x80000001, 0x80000002})

	c.Check(transient1.Handle(), Equals, HandleUnassigned)
	c.Check(transient2.Handle(), Equals, HandleUnassigned)
	c.Check(persistent.Handle(), Equals, HandleUnassigned)
}

func (s *contextLifecycleSuite) TestRunWithNullAuthSessionFlushesOnError(c *C) {
	tpm, transport := newScriptedTPMContext(c)

	// TPM2_StartAuthSession success response returning session handle
	// 0x02000000 and a 32 byte nonce, followed by a TPM2_FlushContext
	// success response.
	transport.queueResponse(internal_testutil.DecodeHexString(c,
		"8001000000300000000002000000"+"0020"+strings.Repeat("00", 32)))
	transport.queueResponse(internal_testutil.DecodeHexString(c, "80010000000a00000000"))

	fnErr := errors.New("something failed")
	var session SessionContext
	err := tpm.RunWithNullAuthSession(func() error {
		session = tpm.Sessions()[0]
		c.Assert(session, NotNil)
		c.Check(session.Handle(), Equals, Handle(0x02000000))
		return fnErr
	})
	c.Check(err, Equals, fnErr)

	c.Assert(transport.commands, HasLen, 2)
	c.Check(binary.BigEndian.Uint32(transport.commands[0][6:10]), Equals, uint32(CommandStartAuthSession))
	c.Check(binary.BigEndian.Uint32(transport.commands[1][6:10]), Equals, uint32(CommandFlushContext))

	// The session must not be left behind for Close to sweep up.
	c.Check(session.Handle(), Equals, HandleUnassigned)
	c.Check(tpm.Close(), IsNil)
}
