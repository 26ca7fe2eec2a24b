// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

// Section 28 - Context Management

import (
	"fmt"
	"reflect"

	"github.com/canonical/go-tpm2-esys/mu"
)

// The TPM encrypted context blob only restores state that the TPM knows
// about. The state maintained on the host side is serialized alongside it
// so that a context saved on one connection can be resumed on another.

type objectContextData struct {
	Public *Public `tpm2:"sized"`
	Name   Name
}

type sessionContextData struct {
	HashAlg     HashAlgorithmId
	SessionType SessionType
	IsBound     bool
	BoundEntity Name
	SessionKey  []byte
	NonceCaller Nonce
	NonceTPM    Nonce
	Symmetric   *SymDef
}

const (
	contextTypeObject uint8 = iota
	contextTypeSession
)

type hostContextDataU struct {
	Data interface{}
}

func (d hostContextDataU) Select(selector reflect.Value) (reflect.Type, error) {
	switch selector.Interface().(uint8) {
	case contextTypeObject:
		return reflect.TypeOf((*objectContextData)(nil)), nil
	case contextTypeSession:
		return reflect.TypeOf((*sessionContextData)(nil)), nil
	}
	return nil, &mu.InvalidSelectorError{Selector: selector}
}

type hostContextData struct {
	ContextType uint8
	Data        hostContextDataU `tpm2:"selector:ContextType"`
	TPMBlob     ContextData
}

func wrapContextBlob(tpmBlob ContextData, context HandleContext) (ContextData, error) {
	d := hostContextData{TPMBlob: tpmBlob}

	switch c := context.(type) {
	case *objectContext:
		d.ContextType = contextTypeObject
		d.Data.Data = &objectContextData{Public: &c.public, Name: c.name}
	case *sessionContext:
		d.ContextType = contextTypeSession
		d.Data.Data = &sessionContextData{
			HashAlg:     c.hashAlg,
			SessionType: c.sessionType,
			IsBound:     c.isBound,
			BoundEntity: c.boundEntity,
			SessionKey:  c.sessionKey,
			NonceCaller: c.nonceCaller,
			NonceTPM:    c.nonceTPM,
			Symmetric:   c.symmetric}
	default:
		return nil, fmt.Errorf("unsupported context type %s", reflect.TypeOf(context))
	}

	data, err := mu.MarshalToBytes(&d)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal host context data: %v", err)
	}
	return data, nil
}

func unwrapContextBlob(blob ContextData) (ContextData, handleContextInternal, error) {
	var d hostContextData
	if _, err := mu.UnmarshalFromBytes(blob, &d); err != nil {
		return nil, nil, fmt.Errorf("cannot unmarshal host context data: %v", err)
	}

	switch d.ContextType {
	case contextTypeObject:
		dd := d.Data.Data.(*objectContextData)
		if dd.Public == nil {
			return nil, nil, fmt.Errorf("no public area in object context data")
		}
		return d.TPMBlob, &objectContext{public: *dd.Public, name: dd.Name, disposition: DispositionMustFlush}, nil
	case contextTypeSession:
		dd := d.Data.Data.(*sessionContextData)
		if !dd.HashAlg.IsValid() {
			return nil, nil, fmt.Errorf("invalid session digest algorithm %v", dd.HashAlg)
		}
		return d.TPMBlob, &sessionContext{
			flags:       sessionContextFull,
			hashAlg:     dd.HashAlg,
			sessionType: dd.SessionType,
			isBound:     dd.IsBound,
			boundEntity: dd.BoundEntity,
			sessionKey:  dd.SessionKey,
			nonceCaller: dd.NonceCaller,
			nonceTPM:    dd.NonceTPM,
			symmetric:   dd.Symmetric}, nil
	}

	return nil, nil, fmt.Errorf("invalid saved context type (%d)", d.ContextType)
}

// ContextSave executes the TPM2_ContextSave command on the transient object
// or session associated with saveContext, and returns the saved state. The
// returned context contains the encrypted TPM blob together with the state
// maintained on the host side, and can be supplied to TPMContext.ContextLoad
// on this or a future connection in order to resume use of the entity.
//
// If saveContext corresponds to a session then a successful save makes the
// session unusable until it is resumed with TPMContext.ContextLoad, as the
// TPM removes its copy of the session state.
func (t *TPMContext) ContextSave(saveContext HandleContext) (*Context, error) {
	if err := t.checkHandleContextParam(saveContext); err != nil {
		return nil, makeInvalidArgError("saveContext", err.Error())
	}
	if saveContext.Disposition() != DispositionMustFlush {
		return nil, makeInvalidArgError("saveContext", "not a transient object or loaded session")
	}

	var context Context

	if err := t.RunCommand(CommandContextSave, nil,
		saveContext, Delimiter,
		Delimiter,
		Delimiter,
		&context); err != nil {
		return nil, err
	}

	blob, err := wrapContextBlob(context.Blob, saveContext)
	if err != nil {
		return nil, fmt.Errorf("cannot create context data: %v", err)
	}
	context.Blob = blob

	// Only a single copy of a session context can exist, so a successful
	// save removes the loaded copy from the TPM.
	if sc, ok := saveContext.(*sessionContext); ok {
		sc.flags &^= sessionContextLoaded
	}

	return &context, nil
}

// ContextLoad executes the TPM2_ContextLoad command with the supplied saved
// context in order to restore a context previously saved with
// TPMContext.ContextSave.
//
// On success it returns a HandleContext for the resumed entity, restored
// from the state maintained on the host side. The returned context is
// registered with the DispositionMustFlush disposition, and should be
// released with TPMContext.FlushContext when it is no longer needed.
func (t *TPMContext) ContextLoad(context *Context) (HandleContext, error) {
	if context == nil {
		return nil, makeInvalidArgError("context", "nil value")
	}
	switch context.SavedHandle.Type() {
	case HandleTypeTransient, HandleTypeHMACSession, HandleTypePolicySession:
	default:
		return nil, makeInvalidArgError("context", "unexpected saved handle type")
	}

	blob, hc, err := unwrapContextBlob(context.Blob)
	if err != nil {
		return nil, fmt.Errorf("cannot unwrap context data: %v", err)
	}

	tpmContext := Context{
		Sequence:    context.Sequence,
		SavedHandle: context.SavedHandle,
		Hierarchy:   context.Hierarchy,
		Blob:        blob}

	var loadedHandle Handle

	if err := t.RunCommand(CommandContextLoad, nil,
		Delimiter,
		&tpmContext, Delimiter,
		&loadedHandle); err != nil {
		return nil, err
	}

	switch c := hc.(type) {
	case *objectContext:
		if loadedHandle.Type() != HandleTypeTransient {
			return nil, &InvalidResponseError{CommandContextLoad,
				fmt.Sprintf("handle %v returned from TPM is the wrong type for an object", loadedHandle)}
		}
		c.handle = loadedHandle
	case *sessionContext:
		switch loadedHandle.Type() {
		case HandleTypeHMACSession, HandleTypePolicySession:
		default:
			return nil, &InvalidResponseError{CommandContextLoad,
				fmt.Sprintf("handle %v returned from TPM is the wrong type for a session", loadedHandle)}
		}
		c.handle = loadedHandle
		c.flags |= sessionContextLoaded
	}

	t.handles.register(hc)
	return hc, nil
}

// FlushContext executes the TPM2_FlushContext command on the transient object
// or session associated with flushContext in order to release the resources
// it occupies on the TPM.
//
// On successful completion the supplied HandleContext is invalidated and can
// no longer be used.
func (t *TPMContext) FlushContext(flushContext HandleContext) error {
	if err := t.checkHandleContextParam(flushContext); err != nil {
		return makeInvalidArgError("flushContext", err.Error())
	}

	if err := t.RunCommand(CommandFlushContext, nil,
		Delimiter,
		flushContext.Handle()); err != nil {
		return err
	}

	t.handles.setAsFlushed(flushContext.Handle())
	if hc, ok := flushContext.(handleContextInternal); ok {
		hc.invalidate()
	}
	return nil
}

// EvictControl executes the TPM2_EvictControl command on the object
// associated with object. An authorization session for auth, which
// should be either the owner or platform hierarchy, must be set in slot 1.
//
// If object corresponds to a transient object then the object is
// persisted at persistentHandle, and a ResourceContext for the new
// persistent object is returned. The returned context is registered with
// the DispositionMustClose disposition because the persistent object
// outlives this connection.
//
// If object corresponds to a persistent object then the object is
// evicted from persistent storage, persistentHandle must be the handle of
// the object, and the returned context is nil. On success the supplied
// ResourceContext is invalidated and can no longer be used.
func (t *TPMContext) EvictControl(auth, object ResourceContext, persistentHandle Handle) (ResourceContext, error) {
	if err := t.checkHandleContextParam(object); err != nil {
		return nil, makeInvalidArgError("object", err.Error())
	}

	authAuthSession, err := t.requiredSession(1)
	if err != nil {
		return nil, err
	}

	if err := t.RunCommand(CommandEvictControl, t.extraSessions(2),
		ResourceContextWithSession{Context: auth, Session: authAuthSession}, object, Delimiter,
		persistentHandle); err != nil {
		return nil, err
	}

	if object.Handle() == persistentHandle {
		// The object was evicted from persistent storage.
		t.handles.setAsClosed(object.Handle())
		if hc, ok := object.(handleContextInternal); ok {
			hc.invalidate()
		}
		return nil, nil
	}

	rc := &objectContext{handle: persistentHandle, name: object.Name(), disposition: DispositionMustClose}
	if oc, ok := object.(*objectContext); ok {
		rc.public = oc.public
	}
	t.handles.register(rc)
	return rc, nil
}
