// Copyright 2020 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"errors"
	"time"
)

// InfiniteTimeout can be used to configure an infinite timeout.
const InfiniteTimeout = -1 * time.Millisecond

// ErrTimeoutNotSupported indicates that a [Transport] implementation does not support
// configuring the command timeout.
var ErrTimeoutNotSupported = errors.New("configurable command timeouts are not supported")

// ErrTransportBusy indicates that a transport is busy because it is waiting
// for a previously submitted command to finish or for the response to be
// read back.
var ErrTransportBusy = errors.New("transport is busy")

// ErrTransportClosed indicates that a transport is closed.
var ErrTransportClosed = errors.New("transport is closed")

// Transport represents a communication channel to a TPM implementation.
type Transport interface {
	// Read is used to receive a response to a previously transmitted command.
	// The implementation must support partial reading of a response, and must
	// not return parts of more than one response from a single call.
	Read(p []byte) (int, error)

	// Write is used to transmit a serialized command to the TPM implementation.
	Write(p []byte) (int, error)

	// Close closes the transport.
	Close() error
}

// TPMDevice corresponds to a TPM device which transports can be opened to.
type TPMDevice interface {
	// Open opens a new transport to the device.
	Open() (Transport, error)

	// String implements [fmt.Stringer].
	String() string
}
