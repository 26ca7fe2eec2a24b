/*
Package esys implements a safety layer for communicating with TPM 2.0 devices.

This documentation refers to TPM commands and types that are described in more
detail in the TPM 2.0 Library Specification, which can be found at
https://trustedcomputinggroup.org/resource/tpm-library-specification/.
Knowledge of this specification is assumed in this documentation.

Communication with Linux TPM character devices and TPM simulators implementing
the Microsoft TPM2 simulator interface is supported. The core type by which
consumers of this package communicate with a TPM is TPMContext. It tracks the
lifecycle of every entity that is made available through it - transient and
persistent objects, and sessions - and releases whatever is still alive when
it is closed.

# Quick start

In order to create a new TPMContext that can be used to communicate with a
Linux TPM character device:

	transport, err := esys.OpenTPMDevice("/dev/tpm0")
	if err != nil {
		return err
	}
	tpm, _ := esys.NewTPMContext(transport)
	defer tpm.Close()

In order to create and persist a new storage primary key:

	template, err := esys.NewPublicBuilder().
		WithType(esys.ObjectTypeRSA).
		WithNameAlg(esys.HashAlgorithmSHA256).
		WithAttrs(esys.AttrFixedTPM | esys.AttrFixedParent | esys.AttrSensitiveDataOrigin |
			esys.AttrUserWithAuth | esys.AttrNoDA | esys.AttrRestricted | esys.AttrDecrypt).
		WithParams(esys.PublicParamsU{Data: params}).
		Build()
	if err != nil {
		return err
	}

	object, _, _, _, _, err := tpm.CreatePrimary(tpm.OwnerHandleContext(), nil, template, nil, nil)
	if err != nil {
		return err
	}

	persistent, err := tpm.EvictControl(tpm.OwnerHandleContext(), object, esys.Handle(0x81000001))
	if err != nil {
		return err
	}
	// persistent is a ResourceContext corresponding to the new persistent
	// storage primary key.

In order to evict a persistent object:

	object, err := tpm.NewResourceContext(esys.Handle(0x81000001))
	if err != nil {
		return err
	}

	if _, err := tpm.EvictControl(tpm.OwnerHandleContext(), object, object.Handle()); err != nil {
		return err
	}
	// The resource associated with object is now unavailable.

# Parameter marshalling and unmarshalling

This package marshals go types to and from the TPM wire format, using the
rules implemented by the mu subpackage:
  - UINT8 <-> uint8
  - BYTE <-> byte
  - INT8 <-> int8
  - BOOL <-> bool
  - UINT16 <-> uint16
  - INT16 <-> int16
  - UINT32 <-> uint32
  - INT32 <-> int32
  - UINT64 <-> uint64
  - INT64 <-> int64
  - TPM2B prefixed types (sized buffers with a 2-byte size field) fall in to
    2 categories:
      - Byte buffer <-> []byte, or any type with an identical underlying type.
      - Sized structure <-> struct referenced via a pointer field in an
        enclosing struct, where the field has the `tpm2:"sized"` tag. A zero
        sized struct is represented as a nil pointer.
  - TPMA prefixed types (attributes) <-> whichever go type corresponds to the
    underlying TPM type (UINT8, UINT16, or UINT32).
  - TPM_ALG_ID (algorithm enum) <-> AlgorithmId
  - TPML prefixed types (lists with a 4-byte length field) <-> slice of
    whichever go type corresponds to the underlying TPM type.
  - TPMS prefixed types (structures) <-> struct
  - TPMT prefixed types (structures with a tag field used as a union
    selector) <-> struct
  - TPMU prefixed types (unions) <-> struct with a single interface field and
    a Select method. These must be referenced from a field in an enclosing
    struct, where the field has the `tpm2:"selector:<field_name>"` tag
    referencing a valid selector field name in the enclosing struct.

TPMI prefixed types (interface types) are generally not explicitly supported.
These are used by the TPM for type checking during unmarshalling. Some TPMI
prefixed types that use TPM_ALG_ID as the underlying concrete type are
implemented.

# Authorization

Some TPM resources require authorization in order to use them in some
commands. Commands that require authorization take the resource and its
session together, as a ResourceContextWithSession value - the session
occupies the first session slot of the command. A nil session selects a
cleartext password session, where the authorization value previously
supplied with ResourceContext.SetAuthValue is sent to the TPM directly.
An HMAC session demonstrates knowledge of the authorization value without
transmitting it, and a policy session satisfies the resource's
authorization policy with a sequence of assertions instead.

The remaining session slots can be used for session-based command and
response parameter encryption, by supplying sessions with the
AttrCommandEncrypt or AttrResponseEncrypt attributes set.
*/
package esys
