// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

// Section 11 - Session Commands

import (
	"fmt"

	internal_crypt "github.com/canonical/go-tpm2-esys/internal/crypt"
)

// StartAuthSession executes the TPM2_StartAuthSession command to start an
// authorization session of the specified type, with the specified digest
// algorithm. The sessions set in slots 2 and 3 can be used for parameter
// encryption.
//
// If tpmKey is provided then it must correspond to a loaded RSA decrypt key,
// and the session is salted - a random salt is encrypted to the public area
// of the key and contributes to the session key derivation.
//
// If bind is provided and sessionType is SessionTypeHMAC then the session is
// bound to the corresponding entity, and the authorization value of that
// entity (which must have been set on the supplied ResourceContext)
// contributes to the session key derivation. Authorizations for the bound
// entity with this session do not require knowledge of the authorization
// value again - a session that is used to authorize another entity includes
// that entity's authorization value in the HMAC key instead.
//
// The symmetric argument selects the algorithm used if the session is also
// used for parameter encryption.
//
// On success it returns a SessionContext for the new session, registered
// with the DispositionMustFlush disposition. It should be released with
// TPMContext.FlushContext when it is no longer needed, and can be suspended
// with TPMContext.ContextSave.
func (t *TPMContext) StartAuthSession(tpmKey, bind ResourceContext, sessionType SessionType, symmetric *SymDef, authHash HashAlgorithmId) (SessionContext, error) {
	if symmetric == nil {
		symmetric = &SymDef{Algorithm: SymAlgorithmNull}
	}
	if !authHash.Available() {
		return nil, makeInvalidArgError("authHash",
			fmt.Sprintf("unsupported digest algorithm %v", authHash))
	}
	digestSize := authHash.Size()

	var salt []byte
	var encryptedSalt EncryptedSecret

	if tpmKey != nil {
		object, isObject := tpmKey.(*objectContext)
		if !isObject {
			return nil, makeInvalidArgError("tpmKey", "not an object")
		}

		var err error
		encryptedSalt, salt, err = cryptComputeEncryptedSalt(&object.public)
		if err != nil {
			return nil, fmt.Errorf("cannot compute encrypted salt: %v", err)
		}
	} else {
		tpmKey = nullResource()
	}

	var authValue []byte
	if bind != nil {
		bindInt, ok := bind.(resourceContextInternal)
		if !ok {
			return nil, makeInvalidArgError("bind", "unsupported resource context type")
		}
		authValue = bindInt.authValue()
	} else {
		bind = nullResource()
	}

	var isBound bool
	var boundEntity Name
	if bind.Handle() != HandleNull && sessionType == SessionTypeHMAC {
		boundEntity = computeBindName(bind.Name(), authValue)
		isBound = true
	}

	nonceCaller := make(Nonce, digestSize)
	if err := cryptComputeNonce(nonceCaller); err != nil {
		return nil, fmt.Errorf("cannot compute initial nonceCaller: %v", err)
	}

	var sessionHandle Handle
	var nonceTPM Nonce

	if err := t.RunCommand(CommandStartAuthSession, t.extraSessions(2),
		tpmKey, bind, Delimiter,
		nonceCaller, encryptedSalt, sessionType, symmetric, authHash, Delimiter,
		&sessionHandle, Delimiter,
		&nonceTPM); err != nil {
		return nil, err
	}

	switch sessionHandle.Type() {
	case HandleTypeHMACSession, HandleTypePolicySession:
	default:
		return nil, &InvalidResponseError{CommandStartAuthSession,
			fmt.Sprintf("handle %v returned from TPM is the wrong type", sessionHandle)}
	}
	if len(nonceTPM) != digestSize {
		return nil, &InvalidResponseError{CommandStartAuthSession,
			fmt.Sprintf("unexpected nonceTPM size (%d bytes)", len(nonceTPM))}
	}

	sc := &sessionContext{
		handle:      sessionHandle,
		attrs:       AttrContinueSession,
		flags:       sessionContextFull | sessionContextLoaded,
		hashAlg:     authHash,
		sessionType: sessionType,
		isBound:     isBound,
		boundEntity: boundEntity,
		nonceCaller: nonceCaller,
		nonceTPM:    nonceTPM,
		symmetric:   symmetric}

	if tpmKey.Handle() != HandleNull || bind.Handle() != HandleNull {
		key := make([]byte, len(authValue)+len(salt))
		copy(key, authValue)
		copy(key[len(authValue):], salt)

		sc.sessionKey = internal_crypt.KDFa(authHash.GetHash(), key, []byte(SessionKey),
			nonceTPM, nonceCaller, digestSize*8)
	}

	t.handles.register(sc)
	return sc, nil
}
