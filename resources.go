// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// HandleDisposition describes the action required to release the entity that
// a HandleContext corresponds to when the owning TPMContext is closed.
type HandleDisposition uint8

const (
	// DispositionPermanent corresponds to entities that are never released.
	DispositionPermanent HandleDisposition = iota

	// DispositionMustFlush corresponds to entities that are allocated on
	// the TPM for this connection and are released by executing the
	// TPM2_FlushContext command.
	DispositionMustFlush

	// DispositionMustClose corresponds to entities that outlive this
	// connection. Releasing them only discards the state maintained on
	// the host side.
	DispositionMustClose
)

// HandleContext corresponds to an entity that resides on the TPM. Implementations of
// HandleContext maintain some host-side state in order to be able to participate in
// sessions. HandleContext instances are tracked by the TPMContext that created them,
// and are invalidated when the corresponding entity is flushed or evicted from the
// TPM. Once invalidated, they can no longer be used.
type HandleContext interface {
	// Handle returns the handle of the corresponding entity on the TPM. If the
	// HandleContext has been invalidated then this will return HandleUnassigned.
	Handle() Handle
	Name() Name // The name of the entity

	// Disposition returns the action required to release the corresponding
	// entity when the owning TPMContext is closed.
	Disposition() HandleDisposition
}

// ResourceContext is a HandleContext that corresponds to a non-session entity
// on the TPM.
type ResourceContext interface {
	HandleContext

	// SetAuthValue sets the authorization value that will be used in authorization
	// roles where knowledge of the authorization value is required. Functions that
	// create resources on the TPM and return a ResourceContext will set this
	// automatically, else it will need to be set manually.
	SetAuthValue([]byte)
}

// SessionContext is a HandleContext that corresponds to a session on the TPM.
type SessionContext interface {
	HandleContext

	// HashAlg returns the session's digest algorithm. This will be
	// HashAlgorithmNull if the context corresponds to a saved or incomplete
	// session.
	HashAlg() HashAlgorithmId
	NonceTPM() Nonce // The most recent TPM nonce value

	Attrs() SessionAttributes         // The attributes associated with this session
	SetAttrs(attrs SessionAttributes) // Set the attributes that will be used for this session
}

type handleContextInternal interface {
	HandleContext
	invalidate()
}

type resourceContextInternal interface {
	ResourceContext
	handleContextInternal

	// authValue returns the authorization value with trailing zero octets
	// removed.
	authValue() []byte
}

type permanentContext struct {
	handle Handle
	auth   []byte
}

func (r *permanentContext) Handle() Handle {
	return r.handle
}

func (r *permanentContext) Name() Name {
	name := make(Name, binary.Size(r.handle))
	binary.BigEndian.PutUint32(name, uint32(r.handle))
	return name
}

func (r *permanentContext) Disposition() HandleDisposition {
	return DispositionPermanent
}

func (r *permanentContext) SetAuthValue(auth []byte) {
	r.auth = auth
}

func (r *permanentContext) authValue() []byte {
	return bytes.TrimRight(r.auth, "\x00")
}

func (r *permanentContext) invalidate() {}

func nullResource() ResourceContext {
	return &permanentContext{handle: HandleNull}
}

type objectContext struct {
	handle      Handle
	public      Public
	name        Name
	auth        []byte
	disposition HandleDisposition
}

func (r *objectContext) Handle() Handle {
	return r.handle
}

func (r *objectContext) Name() Name {
	return r.name
}

func (r *objectContext) Disposition() HandleDisposition {
	return r.disposition
}

func (r *objectContext) SetAuthValue(auth []byte) {
	r.auth = auth
}

func (r *objectContext) authValue() []byte {
	return bytes.TrimRight(r.auth, "\x00")
}

func (r *objectContext) invalidate() {
	r.handle = HandleUnassigned
	r.public = Public{}
	r.name = make(Name, binary.Size(r.handle))
	binary.BigEndian.PutUint32(r.name, uint32(r.handle))
}

type sessionContextFlags int

const (
	sessionContextFull sessionContextFlags = 1 << iota
	sessionContextLoaded
)

type sessionContext struct {
	handle Handle
	attrs  SessionAttributes
	flags  sessionContextFlags

	hashAlg     HashAlgorithmId
	sessionType SessionType
	isBound     bool
	boundEntity Name
	sessionKey  []byte
	nonceCaller Nonce
	nonceTPM    Nonce
	symmetric   *SymDef
}

func (r *sessionContext) Handle() Handle {
	return r.handle
}

func (r *sessionContext) Name() Name {
	name := make(Name, binary.Size(r.handle))
	binary.BigEndian.PutUint32(name, uint32(r.handle))
	return name
}

func (r *sessionContext) Disposition() HandleDisposition {
	return DispositionMustFlush
}

func (r *sessionContext) HashAlg() HashAlgorithmId {
	if r.flags&sessionContextFull == 0 {
		return HashAlgorithmNull
	}
	return r.hashAlg
}

func (r *sessionContext) NonceTPM() Nonce {
	return r.nonceTPM
}

func (r *sessionContext) Attrs() SessionAttributes {
	return r.attrs.canonicalize()
}

func (r *sessionContext) SetAttrs(attrs SessionAttributes) {
	r.attrs = attrs
}

func (r *sessionContext) invalidate() {
	r.handle = HandleUnassigned
}

func (r *sessionContext) isBoundTo(resource resourceContextInternal) bool {
	if resource == nil {
		return false
	}
	if !r.isBound {
		return false
	}
	return bytes.Equal(computeBindName(resource.Name(), resource.authValue()), r.boundEntity)
}

// computeBindName computes the value used to identify the entity that a session
// is bound to. Folding the authorization value in to the name means that the
// session stops being bound to the entity if its authorization value changes.
func computeBindName(name Name, auth Auth) Name {
	if len(auth) > len(name) {
		auth = auth[0:len(name)]
	}
	r := make(Name, len(name))
	copy(r, name)
	for i := 0; i < len(auth); i++ {
		r[len(name)-len(auth)+i] ^= auth[i]
	}
	return r
}

func pwSession() *sessionContext {
	return &sessionContext{
		handle:  HandlePW,
		attrs:   AttrContinueSession,
		flags:   sessionContextFull | sessionContextLoaded,
		hashAlg: HashAlgorithmNull}
}

// PasswordSession returns a SessionContext that can be installed in a session slot
// with TPMContext.SetSessions in order to authorize a resource with a plaintext
// password. The password is the authorization value of the associated resource, set
// with ResourceContext.SetAuthValue.
func PasswordSession() SessionContext {
	return pwSession()
}

// NewLimitedHandleContext creates a new HandleContext for the specified handle. The
// returned HandleContext has no host-side state associated with it and can not be
// used in any command other than TPMContext.FlushContext, TPMContext.ReadPublic or
// TPMContext.CloseHandle, and it cannot be used with any sessions.
//
// This function will panic if handle doesn't correspond to a session, transient
// object or persistent object.
func NewLimitedHandleContext(handle Handle) HandleContext {
	name := make(Name, binary.Size(handle))
	binary.BigEndian.PutUint32(name, uint32(handle))

	switch handle.Type() {
	case HandleTypeHMACSession, HandleTypePolicySession:
		return &sessionContext{handle: handle}
	case HandleTypeTransient:
		return &objectContext{handle: handle, name: name, disposition: DispositionMustFlush}
	case HandleTypePersistent:
		return &objectContext{handle: handle, name: name, disposition: DispositionMustClose}
	default:
		panic("invalid handle type")
	}
}

// Saved sessions have a handle with the HandleTypePolicySession type even when
// they correspond to a HMAC session. Fold both forms on to a single key so that
// a session is always associated with one registry entry.
func normalizeHandleForMap(handle Handle) Handle {
	if handle.Type() != HandleTypePolicySession {
		return handle
	}
	return (handle & 0x00ffffff) | (Handle(HandleTypeHMACSession) << 24)
}

// handleManager tracks the disposition owed to every handle that has been
// obtained through the owning TPMContext, so that TPMContext.Close can release
// whatever is still outstanding.
type handleManager struct {
	contexts map[Handle]handleContextInternal
}

func newHandleManager() *handleManager {
	return &handleManager{contexts: make(map[Handle]handleContextInternal)}
}

func (m *handleManager) register(hc handleContextInternal) {
	if hc.Disposition() == DispositionPermanent {
		return
	}
	m.contexts[normalizeHandleForMap(hc.Handle())] = hc
}

func (m *handleManager) lookup(handle Handle) (handleContextInternal, bool) {
	hc, exists := m.contexts[normalizeHandleForMap(handle)]
	return hc, exists
}

func (m *handleManager) handlesToFlush() []handleContextInternal {
	var out []handleContextInternal
	for _, hc := range m.contexts {
		if hc.Disposition() == DispositionMustFlush {
			out = append(out, hc)
		}
	}
	return out
}

func (m *handleManager) handlesToClose() []handleContextInternal {
	var out []handleContextInternal
	for _, hc := range m.contexts {
		if hc.Disposition() == DispositionMustClose {
			out = append(out, hc)
		}
	}
	return out
}

// setAsFlushed records that the entity associated with the supplied handle no
// longer exists on the TPM, invalidating the tracked HandleContext. It does
// nothing for handles that were never registered.
func (m *handleManager) setAsFlushed(handle Handle) {
	handle = normalizeHandleForMap(handle)
	if hc, exists := m.contexts[handle]; exists {
		hc.invalidate()
	}
	delete(m.contexts, handle)
}

// setAsClosed drops the host-side state associated with the supplied handle,
// invalidating the tracked HandleContext. It does nothing for handles that
// were never registered.
func (m *handleManager) setAsClosed(handle Handle) {
	handle = normalizeHandleForMap(handle)
	if hc, exists := m.contexts[handle]; exists {
		hc.invalidate()
	}
	delete(m.contexts, handle)
}

func (m *handleManager) hasOpenHandles() bool {
	return len(m.contexts) > 0
}

func (m *handleManager) openHandles() []Handle {
	var out []Handle
	for handle := range m.contexts {
		out = append(out, handle)
	}
	return out
}

func (t *TPMContext) checkHandleContextParam(hc HandleContext) error {
	if hc == nil {
		return errors.New("nil value")
	}
	if hc.Handle() == HandleUnassigned {
		return errors.New("resource has been closed")
	}
	return nil
}

// GetPermanentContext returns a ResourceContext for the specified permanent handle
// or PCR handle. The returned context is tracked by the TPMContext so that an
// authorization value set with ResourceContext.SetAuthValue is retained across
// calls.
//
// This function will panic if handle does not correspond to a permanent or PCR
// handle.
func (t *TPMContext) GetPermanentContext(handle Handle) ResourceContext {
	switch handle.Type() {
	case HandleTypePermanent, HandleTypePCR:
		if rc, exists := t.permanentResources[handle]; exists {
			return rc
		}

		rc := &permanentContext{handle: handle}
		t.permanentResources[handle] = rc
		return rc
	default:
		panic("invalid handle type")
	}
}

// OwnerHandleContext returns the ResourceContext corresponding to the owner
// hierarchy.
func (t *TPMContext) OwnerHandleContext() ResourceContext {
	return t.GetPermanentContext(HandleOwner)
}

// NullHandleContext returns the ResourceContext corresponding to the null
// hierarchy.
func (t *TPMContext) NullHandleContext() ResourceContext {
	return t.GetPermanentContext(HandleNull)
}

// EndorsementHandleContext returns the ResourceContext corresponding to the
// endorsement hierarchy.
func (t *TPMContext) EndorsementHandleContext() ResourceContext {
	return t.GetPermanentContext(HandleEndorsement)
}

// PlatformHandleContext returns the ResourceContext corresponding to the
// platform hierarchy.
func (t *TPMContext) PlatformHandleContext() ResourceContext {
	return t.GetPermanentContext(HandlePlatform)
}

// PCRHandleContext returns the ResourceContext corresponding to the PCR at the
// specified index. It will panic if pcr is not a valid PCR index.
func (t *TPMContext) PCRHandleContext(pcr int) ResourceContext {
	h := Handle(pcr)
	if h.Type() != HandleTypePCR {
		panic("invalid PCR index")
	}
	return t.GetPermanentContext(h)
}

// NewResourceContext creates and returns a new ResourceContext for the specified
// handle. It will execute the TPM2_ReadPublic command to initialize state that is
// maintained on the host side, and the returned context is registered with the
// TPMContext with the DispositionMustClose disposition because the corresponding
// entity was not allocated through this connection. A ResourceUnavailableError
// error will be returned if the specified handle references a resource that
// doesn't exist.
//
// This function will panic if handle doesn't correspond to a transient or
// persistent object, or a permanent resource.
//
// If subsequent use of the returned ResourceContext requires knowledge of the
// authorization value of the corresponding TPM resource, this should be provided
// by calling ResourceContext.SetAuthValue.
func (t *TPMContext) NewResourceContext(handle Handle) (ResourceContext, error) {
	switch handle.Type() {
	case HandleTypePermanent, HandleTypePCR:
		return t.GetPermanentContext(handle), nil
	case HandleTypeTransient, HandleTypePersistent:
	default:
		panic("invalid handle type")
	}

	pub, name, _, err := t.readPublic(NewLimitedHandleContext(handle))
	switch {
	case IsTPMWarning(err, WarningReferenceH0, AnyCommandCode):
		return nil, ResourceUnavailableError{handle}
	case IsTPMHandleError(err, ErrorHandle, AnyCommandCode, AnyHandleIndex):
		return nil, ResourceUnavailableError{handle}
	case err != nil:
		return nil, err
	}
	if !pub.compareName(name) {
		return nil, &InvalidResponseError{CommandReadPublic,
			"name and public area returned from TPM are not consistent"}
	}

	rc := &objectContext{handle: handle, public: *pub, name: name, disposition: DispositionMustClose}
	t.handles.register(rc)
	return rc, nil
}

// CloseHandle tells the TPMContext to drop the host-side state associated with
// the supplied HandleContext without interacting with the TPM. The corresponding
// entity is left untouched on the device.
//
// This is the correct way to release a context with the DispositionMustClose
// disposition before the TPMContext itself is closed. Contexts with the
// DispositionMustFlush disposition should normally be released with
// TPMContext.FlushContext instead.
//
// On successful completion the supplied HandleContext is invalidated and can no
// longer be used.
func (t *TPMContext) CloseHandle(context HandleContext) error {
	if err := t.checkHandleContextParam(context); err != nil {
		return makeInvalidArgError("context", err.Error())
	}
	if context.Disposition() == DispositionPermanent {
		return nil
	}

	t.handles.setAsClosed(context.Handle())
	if hc, ok := context.(handleContextInternal); ok {
		hc.invalidate()
	}
	return nil
}
