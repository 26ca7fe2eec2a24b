// Copyright 2022 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys_test

import (
	"bytes"
	"errors"
	"io"

	. "gopkg.in/check.v1"

	. "github.com/canonical/go-tpm2-esys"
	internal_testutil "github.com/canonical/go-tpm2-esys/internal/testutil"
)

// scriptedTransport records every command packet written to it and serves
// a queue of canned response packets.
type scriptedTransport struct {
	commands  [][]byte
	responses [][]byte

	current *bytes.Reader

	writeErr error
	readErr  error
}

func (t *scriptedTransport) queueResponse(rsp []byte) {
	t.responses = append(t.responses, rsp)
}

func (t *scriptedTransport) Read(data []byte) (int, error) {
	if t.readErr != nil {
		return 0, t.readErr
	}
	for {
		if t.current == nil {
			if len(t.responses) == 0 {
				return 0, io.EOF
			}
			t.current = bytes.NewReader(t.responses[0])
			t.responses = t.responses[1:]
		}
		n, err := t.current.Read(data)
		if err == io.EOF {
			t.current = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (t *scriptedTransport) Write(data []byte) (int, error) {
	if t.writeErr != nil {
		return 0, t.writeErr
	}
	t.commands = append(t.commands, append([]byte{}, data...))
	return len(data), nil
}

func (t *scriptedTransport) Close() error { return nil }

func newScriptedTPMContext(c *C) (*TPMContext, *scriptedTransport) {
	transport := new(scriptedTransport)
	tpm, err := NewTPMContext(transport)
	c.Assert(err, IsNil)
	return tpm, transport
}

type commandSuite struct{}

var _ = Suite(&commandSuite{})

func (s *commandSuite) TestCommandPacketNoSessions(c *C) {
	tpm, transport := newScriptedTPMContext(c)
	transport.queueResponse(internal_testutil.DecodeHexString(c, "80010000000a00000000"))

	c.Check(tpm.Startup(StartupClear), IsNil)

	c.Assert(transport.commands, HasLen, 1)
	c.Check(transport.commands[0], DeepEquals, internal_testutil.DecodeHexString(c, "80010000000c000001440000"))
}

func (s *commandSuite) TestResponseParameters(c *C) {
	tpm, transport := newScriptedTPMContext(c)
	random := internal_testutil.DecodeHexString(c, "4355a46b19d348dc2f57c046f8ef63d4")
	transport.queueResponse(internal_testutil.DecodeHexString(c, "80010000001c0000000000104355a46b19d348dc2f57c046f8ef63d4"))

	data, err := tpm.GetRandom(16)
	c.Check(err, IsNil)
	c.Check(data, DeepEquals, Digest(random))

	c.Assert(transport.commands, HasLen, 1)
	c.Check(transport.commands[0], DeepEquals, internal_testutil.DecodeHexString(c, "80010000000c0000017b0010"))
}

func (s *commandSuite) TestTPMWarning(c *C) {
	tpm, transport := newScriptedTPMContext(c)
	// TPM_RC_RETRY
	transport.queueResponse(internal_testutil.DecodeHexString(c, "80010000000a00000922"))

	err := tpm.Startup(StartupClear)
	c.Assert(err, NotNil)
	c.Check(IsTPMWarning(err, WarningRetry, CommandStartup), internal_testutil.IsTrue)
}

func (s *commandSuite) TestTPMError(c *C) {
	tpm, transport := newScriptedTPMContext(c)
	// TPM_RC_VALUE associated with parameter 1
	transport.queueResponse(internal_testutil.DecodeHexString(c, "80010000000a000001c4"))

	err := tpm.Startup(StartupClear)
	c.Assert(err, NotNil)
	c.Check(IsTPMParameterError(err, ErrorValue, CommandStartup, 1), internal_testutil.IsTrue)
}

func (s *commandSuite) TestTruncatedResponseHeader(c *C) {
	tpm, transport := newScriptedTPMContext(c)
	transport.queueResponse(internal_testutil.DecodeHexString(c, "800100"))

	err := tpm.Startup(StartupClear)
	c.Assert(err, NotNil)
	var e *InvalidResponseError
	c.Check(err, internal_testutil.ErrorAs, &e)
	c.Check(e.Command, Equals, CommandStartup)
}

func (s *commandSuite) TestTruncatedResponsePayload(c *C) {
	tpm, transport := newScriptedTPMContext(c)
	// Header says 28 bytes but only the size field of the digest follows.
	transport.queueResponse(internal_testutil.DecodeHexString(c, "80010000001c000000000010"))

	_, err := tpm.GetRandom(16)
	c.Assert(err, NotNil)
	var e *InvalidResponseError
	c.Check(err, internal_testutil.ErrorAs, &e)
}

func (s *commandSuite) TestTrailingResponseBytes(c *C) {
	tpm, transport := newScriptedTPMContext(c)
	transport.queueResponse(internal_testutil.DecodeHexString(c, "80010000000c00000000a5a5"))

	err := tpm.Startup(StartupClear)
	c.Assert(err, NotNil)
	var e *InvalidResponseError
	c.Check(err, internal_testutil.ErrorAs, &e)
	c.Check(e, ErrorMatches, `TPM returned an invalid response for command TPM_CC_Startup: response contains 2 trailing bytes`)
}

func (s *commandSuite) TestTransportWriteError(c *C) {
	tpm, transport := newScriptedTPMContext(c)
	transport.writeErr = errors.New("pipe broken")

	err := tpm.Startup(StartupClear)
	c.Assert(err, NotNil)
	var e *TransportError
	c.Check(err, internal_testutil.ErrorAs, &e)
	c.Check(e.Op, Equals, "write")
}

func (s *commandSuite) TestTransportReadError(c *C) {
	tpm, transport := newScriptedTPMContext(c)
	transport.readErr = errors.New("pipe broken")

	err := tpm.Startup(StartupClear)
	c.Assert(err, NotNil)
	var e *TransportError
	c.Check(err, internal_testutil.ErrorAs, &e)
	c.Check(e.Op, Equals, "read")
}

func (s *commandSuite) TestInvalidCommandHandleType(c *C) {
	tpm, _ := newScriptedTPMContext(c)

	err := tpm.RunCommand(CommandReadPublic, nil,
		HandleOwner, Delimiter)
	c.Check(err, ErrorMatches, `cannot marshal command handles for command TPM_CC_ReadPublic: cannot process command handle parameter at index 0: invalid type \(esys.Handle\)`)
}
