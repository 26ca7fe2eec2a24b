// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package mssim

import (
	"fmt"
	"net"
	"strconv"
	"time"

	esys "github.com/canonical/go-tpm2-esys"
	"github.com/canonical/go-tpm2-esys/internal/transportutil"
)

// DefaultPort is the port of the TPM command channel of a simulator
// running with its default configuration. The platform channel runs
// on the subsequent port.
const DefaultPort uint = 2321

// DefaultDevice describes a simulator running on the local machine
// with its default configuration.
var DefaultDevice *Device = NewDevice()

// for tests to override
var netDial = net.Dial

type deviceAddr struct {
	Host string
	Port uint
}

func (a deviceAddr) Network() string {
	return "tcp"
}

func (a deviceAddr) String() string {
	return net.JoinHostPort(a.Host, strconv.FormatUint(uint64(a.Port), 10))
}

// Device describes a TPM simulator device.
type Device struct {
	tpm         deviceAddr
	platform    deviceAddr
	retryParams transportutil.RetryParams
}

// DeviceOption customizes the device returned by [NewDevice].
type DeviceOption func(*Device)

// WithHost selects the host that both simulator channels run on. The
// default is "localhost".
func WithHost(host string) DeviceOption {
	return func(d *Device) {
		d.tpm.Host = host
		d.platform.Host = host
	}
}

// WithPort selects the port of the TPM command channel. The platform
// channel is assumed to run on the subsequent port.
func WithPort(port uint) DeviceOption {
	return func(d *Device) {
		d.tpm.Port = port
		d.platform.Port = port + 1
	}
}

// WithTPMPort selects the port of the TPM command channel without
// changing the platform channel port.
func WithTPMPort(port uint) DeviceOption {
	return func(d *Device) {
		d.tpm.Port = port
	}
}

// WithPlatformPort selects the port of the platform channel without
// changing the TPM command channel port.
func WithPlatformPort(port uint) DeviceOption {
	return func(d *Device) {
		d.platform.Port = port
	}
}

// WithRetryParams customizes the parameters used to retry commands that
// the simulator responds to with TPM_RC_RETRY, TPM_RC_YIELDED or
// TPM_RC_TESTING.
func WithRetryParams(maxRetries uint, initialBackoff time.Duration, backoffRate uint) DeviceOption {
	return func(d *Device) {
		d.retryParams = transportutil.RetryParams{
			MaxRetries:     maxRetries,
			InitialBackoff: initialBackoff,
			BackoffRate:    backoffRate,
		}
	}
}

// NewDevice returns a new device structure, customized with the supplied
// options. With no options, the returned device describes a simulator
// running on the local machine with its default configuration. It is safe
// to use from multiple goroutines simultaneously.
func NewDevice(opts ...DeviceOption) *Device {
	d := &Device{
		tpm:      deviceAddr{Host: "localhost", Port: DefaultPort},
		platform: deviceAddr{Host: "localhost", Port: DefaultPort + 1},
		retryParams: transportutil.RetryParams{
			MaxRetries:     4,
			InitialBackoff: 20 * time.Millisecond,
			BackoffRate:    2,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewLocalDevice returns a new device structure for the specified port on
// the local machine. The supplied port is for the TPM command channel, and
// the platform channel is assumed to run on the subsequent port.
func NewLocalDevice(port uint) *Device {
	return NewDevice(WithPort(port))
}

// TPMAddr returns the address of the TPM command channel for this device.
func (d *Device) TPMAddr() net.Addr {
	return d.tpm
}

// PlatformAddr returns the address of the platform channel for this device.
func (d *Device) PlatformAddr() net.Addr {
	return d.platform
}

// RetryParams returns the command retry parameters for this device.
func (d *Device) RetryParams() transportutil.RetryParams {
	return d.retryParams
}

func (d *Device) openInternal() (*Transport, error) {
	internal := &internalTransport{locality: 3}

	tpm, err := netDial(d.tpm.Network(), d.tpm.String())
	if err != nil {
		return nil, fmt.Errorf("cannot connect to TPM socket: %w", err)
	}
	internal.tpm = tpm

	platform, err := netDial(d.platform.Network(), d.platform.String())
	if err != nil {
		internal.tpm.Close()
		return nil, fmt.Errorf("cannot connect to platform socket: %w", err)
	}
	internal.platform = platform

	// Make sure the simulator TPM is powered on and has NV storage
	// available. These are no-ops if that's already the case.
	if err := internal.platformCommand(cmdPowerOn); err != nil {
		internal.Close()
		return nil, fmt.Errorf("cannot complete power on command: %w", err)
	}
	if err := internal.platformCommand(cmdNVOn); err != nil {
		internal.Close()
		return nil, fmt.Errorf("cannot complete NV on command: %w", err)
	}

	return newTransport(internal, &d.retryParams), nil
}

// Open implements [esys.TPMDevice.Open].
//
// The returned transport will automatically retry commands that fail with
// TPM_RC_RETRY, TPM_RC_YIELDED or TPM_RC_TESTING. It should not be used
// from more than one goroutine simultaneously.
//
// Before returning an open transport, this package sends platform commands
// to make sure that the simulator TPM device is on and NV storage is
// available. It does not call TPM2_Startup.
func (d *Device) Open() (esys.Transport, error) {
	return d.openInternal()
}

// String implements [fmt.Stringer].
func (d *Device) String() string {
	return fmt.Sprintf("mssim device, host=\"%s\", port=%d", d.tpm.Host, d.tpm.Port)
}
