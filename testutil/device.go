// Copyright 2020 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package testutil

import (
	"errors"

	. "gopkg.in/check.v1"

	esys "github.com/canonical/go-tpm2-esys"
	"github.com/canonical/go-tpm2-esys/mssim"
)

type tpmDevice struct {
	device esys.TPMDevice
}

func (d *tpmDevice) Open() (esys.Transport, error) {
	if d.device == nil {
		return nil, ErrSkipNoTPM
	}
	return d.device.Open()
}

func (d *tpmDevice) String() string {
	if d.device == nil {
		return "no TPM device"
	}
	return d.device.String()
}

// NewTPMDevice returns a new TPM device for testing. If TPMBackend is
// TPMBackendNone then the returned device will return [ErrSkipNoTPM]
// instead of a transport. If TPMBackend is TPMBackendMssim, the returned
// device will wrap a *[mssim.Device] for the TPM simulator on the port
// specified by the MssimPort variable. If TPMBackend is TPMBackendDevice,
// the returned device will wrap a *[esys.LinuxDevice] for the character
// device at the path specified by the TPMDevicePath variable.
func NewTPMDevice() esys.TPMDevice {
	var device esys.TPMDevice
	switch TPMBackend {
	case TPMBackendDevice:
		device = esys.NewLinuxDevice(TPMDevicePath)
	case TPMBackendMssim:
		device = mssim.NewLocalDevice(MssimPort)
	}
	return &tpmDevice{device: device}
}

// NewSimulatorDevice returns a new TPM device for the TPM simulator on the
// port specified by the MssimPort variable. If TPMBackend is not
// TPMBackendMssim, then the device will return [ErrSkipNoTPM] instead of
// a transport.
func NewSimulatorDevice() esys.TPMDevice {
	var device esys.TPMDevice
	if TPMBackend == TPMBackendMssim {
		device = mssim.NewLocalDevice(MssimPort)
	}
	return &tpmDevice{device: device}
}

// OpenTPMDevice opens the supplied device, returning a new TPMContext and
// the recording transport that backs it. If the device returns
// [ErrSkipNoTPM], then the test will be skipped.
func OpenTPMDevice(c *C, device esys.TPMDevice) (*esys.TPMContext, *Transport) {
	transport, err := device.Open()
	if errors.Is(err, ErrSkipNoTPM) {
		c.Skip("no TPM available for the test")
	}
	c.Assert(err, IsNil)

	wrapped := WrapTransport(transport)
	tpm, err := esys.NewTPMContext(wrapped)
	c.Assert(err, IsNil)
	return tpm, wrapped
}

// NewTPMContext returns a new TPMContext for testing. If TPMBackend is
// TPMBackendNone then the current test will be skipped. If TPMBackend is
// TPMBackendMssim, the returned context will correspond to a connection to
// the TPM simulator on the port specified by the MssimPort variable. If
// TPMBackend is TPMBackendDevice, the returned context will correspond to a
// connection to the Linux character device at the path specified by the
// TPMDevicePath variable.
//
// The returned TPMContext must be closed when it is no longer required.
func NewTPMContext(c *C) (*esys.TPMContext, *Transport) {
	return OpenTPMDevice(c, NewTPMDevice())
}

// NewTPMSimulatorContext returns a new TPMContext for testing that
// corresponds to a connection to the TPM simulator on the port specified by
// the MssimPort variable. If TPMBackend is not TPMBackendMssim then the
// test will be skipped.
//
// The returned TPMContext must be closed when it is no longer required.
func NewTPMSimulatorContext(c *C) (*esys.TPMContext, *Transport) {
	return OpenTPMDevice(c, NewSimulatorDevice())
}
