// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys_test

import (
	. "gopkg.in/check.v1"

	. "github.com/canonical/go-tpm2-esys"
	"github.com/canonical/go-tpm2-esys/testutil"
)

type contextMgmtSuite struct {
	testutil.TPMTest
}

var _ = Suite(&contextMgmtSuite{})

func (s *contextMgmtSuite) TestContextSaveAndLoadObject(c *C) {
	object := createRSASrkForTesting(c, s.TPM, nil)
	name := object.Name()

	context, err := s.TPM.ContextSave(object)
	c.Assert(err, IsNil)
	c.Check(context.SavedHandle.Type(), Equals, HandleTypeTransient)
	c.Check(s.TPM.FlushContext(object), IsNil)

	restored, err := s.TPM.ContextLoad(context)
	c.Assert(err, IsNil)
	defer func() { c.Check(s.TPM.FlushContext(restored), IsNil) }()

	c.Check(restored.Handle().Type(), Equals, HandleTypeTransient)
	c.Check(restored.Name(), DeepEquals, name)

	// The restored context should carry enough state to use the
	// object again.
	pub, _, _, err := s.TPM.ReadPublic(restored)
	c.Assert(err, IsNil)
	c.Check(pub.Name(), DeepEquals, name)
}

func (s *contextMgmtSuite) TestContextSaveAndLoadSession(c *C) {
	session, err := s.TPM.StartAuthSession(nil, nil, SessionTypeHMAC, nil, HashAlgorithmSHA256)
	c.Assert(err, IsNil)
	handle := session.Handle()

	context, err := s.TPM.ContextSave(session)
	c.Assert(err, IsNil)

	restored, err := s.TPM.ContextLoad(context)
	c.Assert(err, IsNil)
	defer func() { c.Check(s.TPM.FlushContext(restored), IsNil) }()

	c.Check(restored.Handle(), Equals, handle)
	sc, ok := restored.(SessionContext)
	c.Assert(ok, Equals, true)
	c.Check(sc.HashAlg(), Equals, HashAlgorithmSHA256)
	c.Check(sc.NonceTPM(), DeepEquals, session.NonceTPM())
}

func (s *contextMgmtSuite) TestContextSaveRejectsPermanentResource(c *C) {
	_, err := s.TPM.ContextSave(s.TPM.OwnerHandleContext())
	c.Check(err, ErrorMatches, `invalid saveContext argument: not a transient object or loaded session`)
}

func (s *contextMgmtSuite) TestContextLoadRequiresContext(c *C) {
	_, err := s.TPM.ContextLoad(nil)
	c.Check(err, ErrorMatches, `invalid context argument: nil value`)
}

func (s *contextMgmtSuite) TestFlushContext(c *C) {
	object := createRSASrkForTesting(c, s.TPM, nil)

	handle := object.Handle()
	c.Check(s.TPM.FlushContext(object), IsNil)
	c.Check(object.Handle(), Equals, HandleUnassigned)

	// The handle should no longer exist on the TPM.
	handles, err := s.TPM.GetCapabilityHandles(HandleTypeTransient.BaseHandle(), CapabilityMaxProperties)
	c.Assert(err, IsNil)
	for _, h := range handles {
		c.Check(h, Not(Equals), handle)
	}
}

func (s *contextMgmtSuite) TestEvictControlRequiresObject(c *C) {
	_, err := s.TPM.EvictControl(s.TPM.OwnerHandleContext(), nil, Handle(0x81000008))
	c.Check(err, ErrorMatches, `invalid object argument: nil value`)
}

func (s *contextMgmtSuite) TestEvictControl(c *C) {
	object := createRSASrkForTesting(c, s.TPM, nil)
	defer func() { c.Check(s.TPM.FlushContext(object), IsNil) }()

	const persistentHandle = Handle(0x81000008)

	persist, err := s.TPM.EvictControl(s.TPM.OwnerHandleContext(), object, persistentHandle)
	c.Assert(err, IsNil)
	c.Check(persist.Handle(), Equals, persistentHandle)
	c.Check(persist.Name(), DeepEquals, object.Name())

	// The persisted context carries the object's public area across.
	pub, _, _, err := s.TPM.ReadPublic(persist)
	c.Assert(err, IsNil)
	c.Check(pub.Name(), DeepEquals, persist.Name())

	// The persistent object should be visible to a fresh context
	// created from its handle.
	rediscovered, err := s.TPM.NewResourceContext(persistentHandle)
	c.Assert(err, IsNil)
	c.Check(rediscovered.Name(), DeepEquals, object.Name())

	// Evicting it again removes it from persistent storage.
	gone, err := s.TPM.EvictControl(s.TPM.OwnerHandleContext(), persist, persistentHandle)
	c.Check(err, IsNil)
	c.Check(gone, IsNil)
	c.Check(persist.Handle(), Equals, HandleUnassigned)

	_, err = s.TPM.NewResourceContext(persistentHandle)
	c.Check(err, NotNil)
}
