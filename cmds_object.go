// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

// Section 12 - Object Commands

import (
	"github.com/canonical/go-tpm2-esys/mu"
)

// Create executes the TPM2_Create command to create a new ordinary object as
// a child of the storage parent associated with parentContext. An
// authorization session for parentContext must be set in slot 1, and the
// sessions set in slots 2 and 3 can be used for parameter encryption.
//
// The returned private and public parts can be loaded at a later time with
// TPMContext.Load.
func (t *TPMContext) Create(parentContext ResourceContext, inSensitive *SensitiveCreate, inPublic *Public, outsideInfo Data, creationPCR PCRSelectionList) (outPrivate Private, outPublic *Public, creationData *CreationData, creationHash Digest, creationTicket *TkCreation, err error) {
	if inPublic == nil {
		return nil, nil, nil, nil, nil, makeInvalidArgError("inPublic", "nil value")
	}
	if inSensitive == nil {
		inSensitive = &SensitiveCreate{}
	}

	parentContextAuthSession, err := t.requiredSession(1)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	if err := t.RunCommand(CommandCreate, t.extraSessions(2),
		ResourceContextWithSession{Context: parentContext, Session: parentContextAuthSession}, Delimiter,
		mu.Sized(inSensitive), mu.Sized(inPublic), outsideInfo, &creationPCR, Delimiter,
		Delimiter,
		&outPrivate, mu.Sized(&outPublic), mu.Sized(&creationData), &creationHash, &creationTicket); err != nil {
		return nil, nil, nil, nil, nil, err
	}

	return outPrivate, outPublic, creationData, creationHash, creationTicket, nil
}

// Load executes the TPM2_Load command to load both the public and private
// parts of an object previously created with TPMContext.Create in to the TPM.
// An authorization session for parentContext must be set in slot 1, and the
// sessions set in slots 2 and 3 can be used for parameter encryption.
//
// On success it returns a ResourceContext for the newly loaded transient
// object. This context is registered with the DispositionMustFlush
// disposition, and should be released with TPMContext.FlushContext when it is
// no longer needed.
func (t *TPMContext) Load(parentContext ResourceContext, inPrivate Private, inPublic *Public) (ResourceContext, error) {
	if inPublic == nil {
		return nil, makeInvalidArgError("inPublic", "nil value")
	}

	parentContextAuthSession, err := t.requiredSession(1)
	if err != nil {
		return nil, err
	}

	var objectHandle Handle
	var name Name

	if err := t.RunCommand(CommandLoad, t.extraSessions(2),
		ResourceContextWithSession{Context: parentContext, Session: parentContextAuthSession}, Delimiter,
		inPrivate, mu.Sized(inPublic), Delimiter,
		&objectHandle, Delimiter,
		&name); err != nil {
		return nil, err
	}

	if objectHandle.Type() != HandleTypeTransient {
		return nil, &InvalidResponseError{CommandLoad,
			"handle returned from TPM is the wrong type"}
	}
	if !inPublic.compareName(name) {
		return nil, &InvalidResponseError{CommandLoad,
			"name returned from TPM does not match the loaded public area"}
	}

	rc := &objectContext{handle: objectHandle, public: *inPublic, name: name, disposition: DispositionMustFlush}
	t.handles.register(rc)
	return rc, nil
}

func (t *TPMContext) readPublic(objectContext HandleContext) (*Public, Name, Name, error) {
	var outPublic *Public
	var name Name
	var qualifiedName Name

	if err := t.RunCommand(CommandReadPublic, t.extraSessions(2),
		objectContext, Delimiter,
		Delimiter,
		Delimiter,
		mu.Sized(&outPublic), &name, &qualifiedName); err != nil {
		return nil, nil, nil, err
	}

	return outPublic, name, qualifiedName, nil
}

// ReadPublic executes the TPM2_ReadPublic command to read the public area of
// the object associated with objectContext. No authorization is required, but
// the sessions set in slots 2 and 3 can be used for response encryption.
func (t *TPMContext) ReadPublic(objectContext HandleContext) (outPublic *Public, name Name, qualifiedName Name, err error) {
	if err := t.checkHandleContextParam(objectContext); err != nil {
		return nil, nil, nil, makeInvalidArgError("objectContext", err.Error())
	}

	return t.readPublic(objectContext)
}
