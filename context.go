// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

func isInvalidResponseError(err error) bool {
	var e *InvalidResponseError
	return xerrors.As(err, &e)
}

// CloseError is returned from TPMContext.Close when the connection could not
// be torn down cleanly. The sweep over tracked handles is always completed -
// individual release failures are recorded here rather than aborting it.
type CloseError struct {
	// ReleaseErrors contains the error encountered when releasing each
	// individual handle, keyed by the handle value.
	ReleaseErrors map[Handle]error

	// LeakedHandles contains the handles that were still open once the
	// release sweep had completed.
	LeakedHandles []Handle

	// TransportError is the error returned when closing the transport.
	TransportError error
}

func (e *CloseError) Error() string {
	var b strings.Builder
	b.WriteString("cannot close TPM context cleanly")
	if len(e.ReleaseErrors) > 0 {
		handles := make([]Handle, 0, len(e.ReleaseErrors))
		for handle := range e.ReleaseErrors {
			handles = append(handles, handle)
		}
		sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
		for _, handle := range handles {
			fmt.Fprintf(&b, "\n- cannot release %v: %v", handle, e.ReleaseErrors[handle])
		}
	}
	if len(e.LeakedHandles) > 0 {
		fmt.Fprintf(&b, "\n- leaked handles: %v", e.LeakedHandles)
	}
	if e.TransportError != nil {
		fmt.Fprintf(&b, "\n- cannot close transport: %v", e.TransportError)
	}
	return b.String()
}

func (e *CloseError) isEmpty() bool {
	return len(e.ReleaseErrors) == 0 && len(e.LeakedHandles) == 0 && e.TransportError == nil
}

// TPMContext is the main entry point by which commands are executed on a TPM
// device. It communicates with the device via the supplied Transport, tracks
// the entities that have been made available through it, and maintains the
// set of sessions used to authorize and encrypt commands.
//
// Methods that execute commands on the TPM will return errors where the TPM
// responds with them. These are in the form of *TPMError, *TPMWarning,
// *TPMHandleError, *TPMSessionError, *TPMParameterError and *TPMVendorError
// types.
//
// A TPMContext expects a single writer. It performs no internal locking.
type TPMContext struct {
	transport          Transport
	permanentResources map[Handle]*permanentContext
	handles            *handleManager
	sessions           [3]SessionContext
	properties         map[Property]uint32
}

func newTPMContext(transport Transport) *TPMContext {
	t := &TPMContext{
		transport:          transport,
		permanentResources: make(map[Handle]*permanentContext),
		handles:            newHandleManager(),
		properties:         make(map[Property]uint32)}
	// A new connection starts with a password session in the first slot, so
	// commands that authorize with a plaintext password work before any call
	// to SetSessions.
	t.sessions[0] = PasswordSession()
	return t
}

// NewTPMContext creates a new instance of TPMContext, which communicates with
// the TPM using the supplied transport.
//
// If the transport parameter is nil, this function will try to autodetect a
// TPM interface by opening the first available Linux character device out of
// /dev/tpmrm0 and /dev/tpm0. It will return an error if neither can be
// opened. If the transport parameter is not nil, this function never returns
// an error.
//
// The returned context should eventually be closed with TPMContext.Close in
// order to release the entities that were allocated through it.
func NewTPMContext(transport Transport) (*TPMContext, error) {
	if transport == nil {
		for _, path := range []string{"/dev/tpmrm0", "/dev/tpm0"} {
			t, err := OpenTPMDevice(path)
			if err == nil {
				transport = t
				break
			}
		}
	}

	if transport == nil {
		return nil, errors.New("cannot find TPM transport to auto-open")
	}

	return newTPMContext(transport), nil
}

// Close releases every entity that is still tracked by this context and then
// closes the transport. Entities with the DispositionMustFlush disposition
// are flushed from the TPM first, then entities with the DispositionMustClose
// disposition have their host-side state dropped. Permanent entities are left
// untouched.
//
// Individual release failures never abort the sweep. If anything could not be
// released cleanly, a *CloseError describing every failure and any handle
// that remains open is returned.
func (t *TPMContext) Close() error {
	var closeErr CloseError

	recordErr := func(handle Handle, err error) {
		if closeErr.ReleaseErrors == nil {
			closeErr.ReleaseErrors = make(map[Handle]error)
		}
		closeErr.ReleaseErrors[handle] = err
	}

	for _, hc := range t.handles.handlesToFlush() {
		handle := hc.Handle()
		if err := t.FlushContext(hc); err != nil {
			recordErr(handle, err)
		}
	}
	for _, hc := range t.handles.handlesToClose() {
		handle := hc.Handle()
		if err := t.CloseHandle(hc); err != nil {
			recordErr(handle, err)
		}
	}

	if t.handles.hasOpenHandles() {
		leaked := t.handles.openHandles()
		sort.Slice(leaked, func(i, j int) bool { return leaked[i] < leaked[j] })
		closeErr.LeakedHandles = leaked
	}

	if err := t.transport.Close(); err != nil {
		closeErr.TransportError = err
	}

	if closeErr.isEmpty() {
		return nil
	}
	return &closeErr
}

// SetSessions sets the sessions that will be used by subsequent commands,
// replacing any that are currently set. Up to 3 sessions can be supplied -
// the first session authorizes a command's authorizable handle, and the
// remaining sessions can be used for parameter encryption.
func (t *TPMContext) SetSessions(sessions ...SessionContext) error {
	if len(sessions) > 3 {
		return makeError(ErrorKindInvalidParam, "cannot set more than 3 sessions (got %d)", len(sessions))
	}
	var s [3]SessionContext
	copy(s[:], sessions)
	t.sessions = s
	return nil
}

// Sessions returns the sessions that are currently set. The returned slice
// always has a length of 3, with nil entries for unoccupied slots.
func (t *TPMContext) Sessions() []SessionContext {
	out := make([]SessionContext, len(t.sessions))
	copy(out, t.sessions[:])
	return out
}

// ClearSessions removes every session that is currently set. Subsequent
// commands that require an authorization session will fail until new
// sessions are set.
func (t *TPMContext) ClearSessions() {
	t.sessions = [3]SessionContext{}
}

// requiredSession returns the session in the specified slot (1-indexed),
// or an error with the kind ErrorKindMissingAuthSession if the slot is
// unoccupied.
func (t *TPMContext) requiredSession(slot int) (SessionContext, error) {
	s := t.sessions[slot-1]
	if s == nil {
		return nil, makeError(ErrorKindMissingAuthSession, "command requires an authorization session in slot %d", slot)
	}
	return s, nil
}

// extraSessions returns the occupied session slots from the specified slot
// (1-indexed) onwards.
func (t *TPMContext) extraSessions(slot int) []SessionContext {
	var out []SessionContext
	for _, s := range t.sessions[slot-1:] {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// RunWithSessions runs the supplied function with the supplied sessions set,
// restoring the previously set sessions before returning regardless of the
// outcome.
func (t *TPMContext) RunWithSessions(fn func() error, sessions ...SessionContext) error {
	if len(sessions) > 3 {
		return makeError(ErrorKindInvalidParam, "cannot set more than 3 sessions (got %d)", len(sessions))
	}
	saved := t.sessions
	defer func() { t.sessions = saved }()

	var s [3]SessionContext
	copy(s[:], sessions)
	t.sessions = s

	return fn()
}

// RunWithSession runs the supplied function with the supplied session set in
// the first slot, restoring the previously set sessions before returning
// regardless of the outcome. The remaining slots are unchanged.
func (t *TPMContext) RunWithSession(session SessionContext, fn func() error) error {
	saved := t.sessions
	defer func() { t.sessions = saved }()

	t.sessions[0] = session

	return fn()
}

// RunWithoutSessions runs the supplied function with no sessions set,
// restoring the previously set sessions before returning regardless of the
// outcome.
func (t *TPMContext) RunWithoutSessions(fn func() error) error {
	saved := t.sessions
	defer func() { t.sessions = saved }()

	t.sessions = [3]SessionContext{}

	return fn()
}

// RunWithNullAuthSession starts an unbound, unsalted HMAC session with
// SHA-256 and AES-128-CFB parameter encryption, and runs the supplied
// function with it set in the first slot. The session is flushed and the
// previously set sessions are restored before returning, regardless of the
// outcome of the function. A failure to flush the session takes precedence
// over an error returned from the function.
func (t *TPMContext) RunWithNullAuthSession(fn func() error) error {
	symmetric := &SymDef{
		Algorithm: SymAlgorithmAES,
		KeyBits:   SymKeyBitsU{Data: uint16(128)},
		Mode:      SymModeU{Data: SymModeCFB}}

	session, err := t.StartAuthSession(nil, nil, SessionTypeHMAC, symmetric, HashAlgorithmSHA256)
	if err != nil {
		return fmt.Errorf("cannot start auth session: %w", err)
	}
	session.SetAttrs(AttrContinueSession | AttrCommandEncrypt | AttrResponseEncrypt)

	fnErr := t.RunWithSession(session, fn)

	if err := t.FlushContext(session); err != nil {
		return fmt.Errorf("cannot flush auth session: %w", err)
	}
	return fnErr
}

// RunWithTemporaryObject runs the supplied function and then flushes the
// supplied object, regardless of the outcome of the function. A failure to
// flush the object takes precedence over an error returned from the
// function.
func (t *TPMContext) RunWithTemporaryObject(object ResourceContext, fn func() error) error {
	fnErr := fn()

	if err := t.FlushContext(object); err != nil {
		return fmt.Errorf("cannot flush temporary object: %w", err)
	}
	return fnErr
}

// GetTPMProperty returns the value of the specified property, executing a
// TPM2_GetCapability command if the property has not been fetched on this
// connection before. Every property returned by the TPM is cached.
func (t *TPMContext) GetTPMProperty(property Property) (uint32, error) {
	if value, exists := t.properties[property]; exists {
		return value, nil
	}

	props, err := t.GetCapabilityTPMProperties(property, 1)
	if err != nil {
		return 0, err
	}
	for _, prop := range props {
		t.properties[prop.Property] = prop.Value
	}

	value, exists := t.properties[property]
	if !exists {
		return 0, &InvalidResponseError{CommandGetCapability, fmt.Sprintf("missing value for property %v", property)}
	}
	return value, nil
}

// PCRSelectSize returns the minimum size of the select field of a PCR
// selection, in octets. If the TPM doesn't report a value, the default of
// 3 octets defined by the PC client platform profile is returned.
func (t *TPMContext) PCRSelectSize() (uint8, error) {
	value, err := t.GetTPMProperty(PropertyPCRSelectMin)
	switch {
	case isInvalidResponseError(err):
		return 3, nil
	case err != nil:
		return 0, err
	case value == 0 || value > 0xff:
		return 0, &InvalidResponseError{CommandGetCapability, fmt.Sprintf("invalid value for TPM_PT_PCR_SELECT_MIN (%d)", value)}
	}
	return uint8(value), nil
}
