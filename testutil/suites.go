// Copyright 2020 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package testutil

import (
	. "gopkg.in/check.v1"

	esys "github.com/canonical/go-tpm2-esys"
	"github.com/canonical/go-tpm2-esys/mssim"
)

// BaseTest is a base test suite for all tests.
type BaseTest struct {
	cleanupHandlers        []func()
	fixtureCleanupHandlers []func(c *C)
}

func (b *BaseTest) SetUpTest(c *C) {
	if len(b.cleanupHandlers) > 0 || len(b.fixtureCleanupHandlers) > 0 {
		panic("cleanup handlers were not executed at the end of the previous test, missing BaseTest.TearDownTest call?")
	}
}

func (b *BaseTest) TearDownTest(c *C) {
	for len(b.cleanupHandlers) > 0 {
		l := len(b.cleanupHandlers)
		fn := b.cleanupHandlers[l-1]
		b.cleanupHandlers = b.cleanupHandlers[:l-1]
		fn()
	}

	for len(b.fixtureCleanupHandlers) > 0 {
		l := len(b.fixtureCleanupHandlers)
		fn := b.fixtureCleanupHandlers[l-1]
		b.fixtureCleanupHandlers = b.fixtureCleanupHandlers[:l-1]
		fn(c)
	}
}

// AddCleanup queues a function to be called at the end of the test.
func (b *BaseTest) AddCleanup(fn func()) {
	b.cleanupHandlers = append(b.cleanupHandlers, fn)
}

// AddFixtureCleanup queues a function to be called at the end of
// the test, and is intended to be called during SetUpTest. The
// function is called with the TearDownTest *check.C which allows
// failures to result in a fixture panic, as failures recorded to
// the originating *check.C are ignored at this stage.
func (b *BaseTest) AddFixtureCleanup(fn func(c *C)) {
	b.fixtureCleanupHandlers = append(b.fixtureCleanupHandlers, fn)
}

// TPMTest is a base test suite for all tests that use a TPMContext. This
// test suite will take care of closing the TPMContext at the end of each
// test, which asserts that no test leaves entities loaded on the TPM.
//
// A TPMContext will be created automatically for each test. For tests that
// want to implement creation of the TPMContext, the TPM and Transport
// members should be set before SetUpTest is called.
type TPMTest struct {
	BaseTest

	// TPM is the TPM context for the test. Set this before SetUpTest is
	// called in order to override the default context creation.
	TPM *esys.TPMContext

	// Transport is the recording transport that backs TPM.
	Transport *Transport
}

func (b *TPMTest) initTPMContextIfNeeded(c *C) {
	if b.TPM != nil {
		return
	}
	b.TPM, b.Transport = NewTPMContext(c)
}

func (b *TPMTest) SetUpTest(c *C) {
	b.BaseTest.SetUpTest(c)

	b.initTPMContextIfNeeded(c)

	b.AddFixtureCleanup(func(c *C) {
		c.Assert(b.TPM.Close(), IsNil)
		b.TPM = nil
		b.Transport = nil
	})
}

// CommandLog returns a log of TPM commands that have been executed since
// the start of the test, or since the last call to ForgetCommands.
func (b *TPMTest) CommandLog() []*CommandRecord {
	return b.Transport.CommandLog
}

// LastCommand returns a record of the last TPM command that was executed.
// It asserts if no command has been executed.
func (b *TPMTest) LastCommand(c *C) *CommandRecord {
	c.Assert(b.Transport.CommandLog, Not(HasLen), 0)
	return b.Transport.CommandLog[len(b.Transport.CommandLog)-1]
}

// ForgetCommands forgets the log of TPM commands that have been executed
// since the start of the test or since the last call to ForgetCommands.
func (b *TPMTest) ForgetCommands() {
	b.Transport.CommandLog = nil
}

// TPMSimulatorTest is a base test suite for all tests that use the TPM
// simulator.
type TPMSimulatorTest struct {
	TPMTest

	// Mssim is the simulator transport that backs TPM.
	Mssim *mssim.Transport
}

func (b *TPMSimulatorTest) initTPMSimulatorContextIfNeeded(c *C) {
	if b.TPM != nil {
		return
	}
	tpm, transport := NewTPMSimulatorContext(c)
	b.TPM = tpm
	b.Transport = transport
	b.Mssim = transport.Unwrap().(*mssim.Transport)
}

func (b *TPMSimulatorTest) SetUpTest(c *C) {
	b.initTPMSimulatorContextIfNeeded(c)
	b.TPMTest.SetUpTest(c)
}

// ResetTPMSimulator issues a Shutdown -> Reset -> Startup cycle of the TPM
// simulator.
func (b *TPMSimulatorTest) ResetTPMSimulator(c *C) {
	c.Assert(b.TPM.Shutdown(esys.StartupClear), IsNil)
	c.Assert(b.Mssim.Reset(), IsNil)
	c.Assert(b.TPM.Startup(esys.StartupClear), IsNil)
}
