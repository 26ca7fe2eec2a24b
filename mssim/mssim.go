// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

/*
Package mssim provides an interface for communicating with a TPM simulator
that implements the Microsoft TPM2 simulator interface.
*/
package mssim

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	esys "github.com/canonical/go-tpm2-esys"
	"github.com/canonical/go-tpm2-esys/internal/transportutil"
	"github.com/canonical/go-tpm2-esys/mu"
)

// Platform commands, from the simulator's TpmTcpProtocol.h.
const (
	cmdPowerOn        uint32 = 1
	cmdPowerOff       uint32 = 2
	cmdTPMSendCommand uint32 = 8
	cmdNVOn           uint32 = 11
	cmdNVOff          uint32 = 12
	cmdReset          uint32 = 17
	cmdSessionEnd     uint32 = 20
	cmdStop           uint32 = 21
)

const maxCommandSize = 4096

// PlatformCommandError corresponds to an error code in response to a platform
// command executed on a TPM simulator.
type PlatformCommandError struct {
	commandCode uint32
	Code        uint32
}

func (e *PlatformCommandError) Error() string {
	return fmt.Sprintf("received error code %d in response to platform command %d", e.Code, e.commandCode)
}

// commandSender wraps a whole command packet in the simulator's
// TPM_SEND_COMMAND framing before submitting it on the TPM channel.
type commandSender struct {
	transport *internalTransport
}

func (s *commandSender) Write(data []byte) (int, error) {
	buf := mu.MustMarshalToBytes(cmdTPMSendCommand, s.transport.locality, uint32(len(data)), mu.RawBytes(data))

	n, err := s.transport.tpm.Write(buf)
	n -= (len(buf) - len(data))
	if n < 0 {
		n = 0
	}
	return n, err
}

type internalTransport struct {
	tpm      net.Conn
	platform net.Conn

	locality uint8 // locality of commands submitted on this interface

	w io.Writer
	r io.Reader
}

func (t *internalTransport) Read(data []byte) (int, error) {
	for {
		if t.r == nil {
			var size uint32
			if err := binary.Read(t.tpm, binary.BigEndian, &size); err != nil {
				return 0, err
			}

			t.r = io.LimitReader(t.tpm, int64(size))
		}

		n, err := t.r.Read(data)
		if err == io.EOF {
			t.r = nil
			err = nil

			// Consume the trailing acknowledgement word.
			var trash uint32
			if err := binary.Read(t.tpm, binary.BigEndian, &trash); err != nil {
				return 0, err
			}

			if n == 0 {
				continue
			}
		}
		return n, err
	}
}

func (t *internalTransport) Write(data []byte) (int, error) {
	return t.w.Write(data)
}

func (t *internalTransport) Close() (err error) {
	binary.Write(t.platform, binary.BigEndian, cmdSessionEnd)
	binary.Write(t.tpm, binary.BigEndian, cmdSessionEnd)
	if e := t.platform.Close(); e != nil {
		err = fmt.Errorf("cannot close platform channel: %w", e)
	}
	if e := t.tpm.Close(); e != nil {
		err = fmt.Errorf("cannot close TPM command channel: %w", e)
	}
	return err
}

func (t *internalTransport) platformCommand(cmd uint32) error {
	if err := binary.Write(t.platform, binary.BigEndian, cmd); err != nil {
		return fmt.Errorf("cannot send command: %w", err)
	}

	var resp uint32
	if err := binary.Read(t.platform, binary.BigEndian, &resp); err != nil {
		return fmt.Errorf("cannot read response to command: %w", err)
	}
	if resp != 0 {
		return &PlatformCommandError{cmd, resp}
	}

	return nil
}

// Transport represents a connection to a TPM simulator that implements the
// Microsoft TPM2 simulator interface.
type Transport struct {
	retrier  esys.Transport
	internal *internalTransport
}

func newTransport(internal *internalTransport, params *transportutil.RetryParams) *Transport {
	internal.w = transportutil.BufferCommands(&commandSender{transport: internal}, maxCommandSize)
	return &Transport{
		retrier:  transportutil.NewRetrierTransport(internal, *params),
		internal: internal,
	}
}

// Read implements [esys.Transport.Read].
func (t *Transport) Read(data []byte) (int, error) {
	return t.retrier.Read(data)
}

// Write implements [esys.Transport.Write].
func (t *Transport) Write(data []byte) (int, error) {
	return t.retrier.Write(data)
}

// Close implements [esys.Transport.Close].
func (t *Transport) Close() error {
	return t.retrier.Close()
}

// Reset submits the reset command on the platform connection, which
// initiates a reset of the TPM simulator and results in the execution
// of _TPM_Init().
func (t *Transport) Reset() error {
	return t.internal.platformCommand(cmdReset)
}

// Stop submits a stop command on both the TPM command and platform
// channels, which initiates a shutdown of the TPM simulator.
func (t *Transport) Stop() error {
	if err := binary.Write(t.internal.platform, binary.BigEndian, cmdStop); err != nil {
		return err
	}
	return binary.Write(t.internal.tpm, binary.BigEndian, cmdStop)
}
