// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

const (
	maxCommandSize int = 4096
)

// LinuxTransport represents a connection to a Linux TPM character device.
type LinuxTransport struct {
	f   *os.File
	buf *bytes.Reader
}

func (d *LinuxTransport) readMoreData() error {
	fds := []unix.PollFd{{Fd: int32(d.f.Fd()), Events: unix.POLLIN}}
	if _, err := unix.Ppoll(fds, nil, nil); err != nil {
		return xerrors.Errorf("polling device failed: %w", err)
	}

	if fds[0].Events != fds[0].Revents {
		return fmt.Errorf("invalid poll events returned: %d", fds[0].Revents)
	}

	buf := make([]byte, maxCommandSize)
	n, err := d.f.Read(buf)
	if err != nil {
		return xerrors.Errorf("reading from device failed: %w", err)
	}

	d.buf = bytes.NewReader(buf[:n])
	return nil
}

func (d *LinuxTransport) Read(data []byte) (int, error) {
	if d.buf == nil {
		if err := d.readMoreData(); err != nil {
			return 0, err
		}
	}

	n, err := d.buf.Read(data)
	if err == io.EOF {
		d.buf = nil
	}
	return n, err
}

func (d *LinuxTransport) Write(data []byte) (int, error) {
	return d.f.Write(data)
}

func (d *LinuxTransport) Close() error {
	return d.f.Close()
}

// LinuxDevice describes a Linux TPM character device.
type LinuxDevice struct {
	path string
}

// NewLinuxDevice returns a TPMDevice for the Linux TPM character device at
// the specified path, which would normally be one of /dev/tpmrm0 (the kernel
// resource manager) or /dev/tpm0 (direct device access).
func NewLinuxDevice(path string) *LinuxDevice {
	return &LinuxDevice{path: path}
}

// Open implements TPMDevice.Open.
func (d *LinuxDevice) Open() (Transport, error) {
	return OpenTPMDevice(d.path)
}

// String implements fmt.Stringer.
func (d *LinuxDevice) String() string {
	return fmt.Sprintf("linux TPM device (path: %s)", d.path)
}

// OpenTPMDevice attempts to open a connection to the Linux TPM character
// device at the specified path. If successful, it returns a new
// LinuxTransport instance which can be passed to NewTPMContext. Failure to
// open the TPM character device will result in a wrapped *os.PathError being
// returned.
func OpenTPMDevice(path string) (*LinuxTransport, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, xerrors.Errorf("cannot open linux TPM device: %w", err)
	}

	s, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, xerrors.Errorf("cannot stat linux TPM device: %w", err)
	}

	if s.Mode()&os.ModeDevice == 0 {
		f.Close()
		return nil, fmt.Errorf("unsupported file mode %v", s.Mode())
	}

	return &LinuxTransport{f: f}, nil
}
