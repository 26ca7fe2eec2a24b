// Copyright 2020 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package testutil

import (
	esys "github.com/canonical/go-tpm2-esys"
	"github.com/canonical/go-tpm2-esys/mu"
)

// CommandRecord provides information about a command executed via
// the Transport interface.
type CommandRecord struct {
	CommandBytes  []byte
	ResponseBytes []byte
}

// GetCommandCode returns the command code from the recorded command packet.
func (r *CommandRecord) GetCommandCode() (esys.CommandCode, error) {
	var header esys.CommandHeader
	if _, err := mu.UnmarshalFromBytes(r.CommandBytes, &header); err != nil {
		return 0, err
	}
	return header.CommandCode, nil
}

// GetResponseCode returns the response code from the recorded response packet.
func (r *CommandRecord) GetResponseCode() (esys.ResponseCode, error) {
	var header esys.ResponseHeader
	if _, err := mu.UnmarshalFromBytes(r.ResponseBytes, &header); err != nil {
		return 0, err
	}
	return header.ResponseCode, nil
}

// Transport is a wrapper around an open transport that records a log of
// the command and response packets that pass through it. Each command is
// submitted to the underlying transport with a single write, so every
// write starts a new record and subsequent reads accumulate the response
// into that record.
type Transport struct {
	transport esys.Transport

	// CommandLog keeps a record of all commands executed via this
	// transport since the start of the test, or since the last call
	// to [TPMTest.ForgetCommands].
	CommandLog []*CommandRecord
}

// WrapTransport wraps the supplied transport so that commands and
// responses that pass through it are recorded.
func WrapTransport(transport esys.Transport) *Transport {
	return &Transport{transport: transport}
}

// Unwrap returns the underlying transport.
func (t *Transport) Unwrap() esys.Transport {
	return t.transport
}

func (t *Transport) Read(data []byte) (int, error) {
	n, err := t.transport.Read(data)
	if n > 0 && len(t.CommandLog) > 0 {
		record := t.CommandLog[len(t.CommandLog)-1]
		record.ResponseBytes = append(record.ResponseBytes, data[:n]...)
	}
	return n, err
}

func (t *Transport) Write(data []byte) (int, error) {
	record := &CommandRecord{CommandBytes: append([]byte{}, data...)}
	t.CommandLog = append(t.CommandLog, record)
	return t.transport.Write(data)
}

func (t *Transport) Close() error {
	return t.transport.Close()
}
