// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

// Section 24 - Hierarchy Commands

import (
	"github.com/canonical/go-tpm2-esys/mu"
)

// CreatePrimary executes the TPM2_CreatePrimary command to create a new
// primary object in the hierarchy corresponding to primaryObject, which
// should be one of the contexts returned by TPMContext.OwnerHandleContext,
// TPMContext.EndorsementHandleContext, TPMContext.PlatformHandleContext or
// TPMContext.NullHandleContext. An authorization session for primaryObject
// must be set in slot 1, and the sessions set in slots 2 and 3 can be used
// for parameter encryption.
//
// On success it returns a ResourceContext for the newly created transient
// object, with the authorization value from inSensitive already set. This
// context is registered with the DispositionMustFlush disposition, and
// should be released with TPMContext.FlushContext when it is no longer
// needed.
func (t *TPMContext) CreatePrimary(primaryObject ResourceContext, inSensitive *SensitiveCreate, inPublic *Public, outsideInfo Data, creationPCR PCRSelectionList) (objectContextOut ResourceContext, outPublic *Public, creationData *CreationData, creationHash Digest, creationTicket *TkCreation, err error) {
	if inPublic == nil {
		return nil, nil, nil, nil, nil, makeInvalidArgError("inPublic", "nil value")
	}
	if inSensitive == nil {
		inSensitive = &SensitiveCreate{}
	}

	primaryObjectAuthSession, err := t.requiredSession(1)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	var objectHandle Handle
	var name Name

	if err := t.RunCommand(CommandCreatePrimary, t.extraSessions(2),
		ResourceContextWithSession{Context: primaryObject, Session: primaryObjectAuthSession}, Delimiter,
		mu.Sized(inSensitive), mu.Sized(inPublic), outsideInfo, &creationPCR, Delimiter,
		&objectHandle, Delimiter,
		mu.Sized(&outPublic), mu.Sized(&creationData), &creationHash, &creationTicket, &name); err != nil {
		return nil, nil, nil, nil, nil, err
	}

	if objectHandle.Type() != HandleTypeTransient {
		return nil, nil, nil, nil, nil, &InvalidResponseError{CommandCreatePrimary,
			"handle returned from TPM is the wrong type"}
	}
	if outPublic == nil || !outPublic.compareName(name) {
		return nil, nil, nil, nil, nil, &InvalidResponseError{CommandCreatePrimary,
			"name and public area returned from TPM are not consistent"}
	}

	rc := &objectContext{handle: objectHandle, public: *outPublic, name: name, disposition: DispositionMustFlush}
	rc.SetAuthValue(inSensitive.UserAuth)
	t.handles.register(rc)

	return rc, outPublic, creationData, creationHash, creationTicket, nil
}
