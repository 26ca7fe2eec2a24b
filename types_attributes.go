// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

// This file contains types defined in section 8 (Attributes) in
// part 2 of the library spec.

// AlgorithmAttributes corresponds to the TPMA_ALGORITHM type and
// represents the attributes for an algorithm.
type AlgorithmAttributes uint32

// ObjectAttributes corresponds to the TPMA_OBJECT type, and represents
// the attributes for an object.
type ObjectAttributes uint32

// FixedTPM indicates whether the AttrFixedTPM attribute is set.
func (a ObjectAttributes) FixedTPM() bool {
	return a&AttrFixedTPM > 0
}

// STClear indicates whether the AttrStClear attribute is set.
func (a ObjectAttributes) STClear() bool {
	return a&AttrStClear > 0
}

// FixedParent indicates whether the AttrFixedParent attribute is set.
func (a ObjectAttributes) FixedParent() bool {
	return a&AttrFixedParent > 0
}

// SensitiveDataOrigin indicates whether the AttrSensitiveDataOrigin
// attribute is set.
func (a ObjectAttributes) SensitiveDataOrigin() bool {
	return a&AttrSensitiveDataOrigin > 0
}

// UserWithAuth indicates whether the AttrUserWithAuth attribute is set.
func (a ObjectAttributes) UserWithAuth() bool {
	return a&AttrUserWithAuth > 0
}

// AdminWithPolicy indicates whether the AttrAdminWithPolicy attribute is
// set.
func (a ObjectAttributes) AdminWithPolicy() bool {
	return a&AttrAdminWithPolicy > 0
}

// NoDA indicates whether the AttrNoDA attribute is set.
func (a ObjectAttributes) NoDA() bool {
	return a&AttrNoDA > 0
}

// EncryptedDuplication indicates whether the AttrEncryptedDuplication
// attribute is set.
func (a ObjectAttributes) EncryptedDuplication() bool {
	return a&AttrEncryptedDuplication > 0
}

// Restricted indicates whether the AttrRestricted attribute is set.
func (a ObjectAttributes) Restricted() bool {
	return a&AttrRestricted > 0
}

// Sign indicates whether the AttrSign attribute is set.
func (a ObjectAttributes) Sign() bool {
	return a&AttrSign > 0
}

// Decrypt indicates whether the AttrDecrypt attribute is set.
func (a ObjectAttributes) Decrypt() bool {
	return a&AttrDecrypt > 0
}

// SessionAttributes corresponds to the TPMA_SESSION type, and represents
// the attributes for a session.
type SessionAttributes uint8

func (a SessionAttributes) canonicalize() SessionAttributes {
	if a&AttrAuditExclusive > 0 {
		a |= AttrAudit
	}
	if a&AttrAuditReset > 0 {
		a |= AttrAudit
	}
	return a
}

// Locality corresponds to the TPMA_LOCALITY type. Values below 32 are a
// bitmask of localities 0 to 4. Values of 32 and above represent a single
// extended locality directly.
type Locality uint8

// IsValid indicates whether l represents at least one locality.
func (l Locality) IsValid() bool {
	return l != 0
}

// IsExtended indicates whether l represents an extended locality.
func (l Locality) IsExtended() bool {
	return l >= 0x20
}

// IsMultiple indicates whether l represents more than one locality.
func (l Locality) IsMultiple() bool {
	return !l.IsExtended() && l&(l-1) != 0
}

// Values returns the localities represented by l.
func (l Locality) Values() []uint8 {
	if l.IsExtended() {
		return []uint8{uint8(l)}
	}
	var out []uint8
	for i := uint8(0); i < 5; i++ {
		if l&(1<<i) != 0 {
			out = append(out, i)
		}
	}
	return out
}

// Value returns the single locality represented by l. This panics if l
// does not represent exactly one locality.
func (l Locality) Value() uint8 {
	if !l.IsValid() || l.IsMultiple() {
		panic("unset or multiple localities are represented")
	}
	if l.IsExtended() {
		return uint8(l)
	}
	return l.Values()[0]
}

// PermanentAttributes corresponds to the TPMA_PERMANENT type and is returned
// when querying the value of PropertyPermanent.
type PermanentAttributes uint32

// StatupClearAttributes corresponds to the TPMA_STARTUP_CLEAR type and is
// returned when querying the value of PropertyStartupClear.
type StartupClearAttributes uint32

// CommandAttributes corresponds to the TPMA_CC type and represents the
// attributes of a command. It also encodes the command code to which these
// attributes belong, and the number of command handles for the command.
type CommandAttributes uint32

// CommandCode returns the command code that a set of attributes belongs to.
func (a CommandAttributes) CommandCode() CommandCode {
	return CommandCode(a & (AttrV | 0xffff))
}

// NumberOfCommandHandles returns the number of command handles for the
// command that a set of attributes belong to.
func (a CommandAttributes) NumberOfCommandHandles() int {
	return int((a & 0x0e000000) >> 25)
}
