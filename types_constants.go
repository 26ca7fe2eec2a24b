// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import "fmt"

// This file contains types defined in section 6 (Contants) in
// part 2 of the library spec.

// AlgorithmId corresponds to the TPM_ALG_ID type.
type AlgorithmId uint16

// ECCCurve corresponds to the TPM_ECC_CURVE type.
type ECCCurve uint16

// CommandCode corresponds to the TPM_CC type.
type CommandCode uint32

// ResponseCode corresponds to the TPM_RC type.
type ResponseCode uint32

const (
	// The lower 7-bits of format-zero error codes are the error number.
	responseCodeE0 ResponseCode = 0x7f

	// The lower 6-bits of format-one error codes are the error number.
	responseCodeE1 ResponseCode = 0x3f

	// Bit 6 of format-one errors is zero for errors associated with a handle
	// or session, or one for errors associated with a parameter.
	responseCodeP ResponseCode = 1 << 6

	// Bit 7 indicates whether the error is a format-zero (0) or format-one code (1)
	responseCodeF ResponseCode = 1 << 7

	// Bit 8 of format-zero errors is zero for TPM1.2 errors and one for TPM2 errors.
	responseCodeV ResponseCode = 1 << 8

	// Bit 10 of format-zero errors is zero for TCG defined errors and one for vendor
	// defined error.
	responseCodeT ResponseCode = 1 << 10

	// Bit 11 of format-zero errors is zero for errors and one for warnings.
	responseCodeS ResponseCode = 1 << 11

	responseCodeIndex      uint8 = 0xf
	responseCodeIndexShift uint8 = 8

	// Bits 8 to 11 of format-one errors represent the parameter number if P is set
	// or the handle or session number otherwise.
	responseCodeN ResponseCode = ResponseCode(responseCodeIndex) << responseCodeIndexShift
)

// E returns the E field of the response code, corresponding to the error number.
func (rc ResponseCode) E() uint8 {
	if rc.F() {
		return uint8(rc & responseCodeE1)
	}
	return uint8(rc & responseCodeE0)
}

// F returns the F field of the response code, corresponding to the format.
// If it is set, this is a format-one response code. If it is not set, this
// is a format-zero response code.
func (rc ResponseCode) F() bool {
	return rc&responseCodeF != 0
}

// V returns the V field of the response code. If this is set in a format-zero
// response code, then it is a TPM2 code returned when the response tag is
// TPM_ST_NO_SESSIONS. If it is not set in a format-zero response code, then it
// is a TPM1.2 code returned when the response tag is TPM_TAG_RSP_COMMAND.
//
// This will panic if the F field is set.
func (rc ResponseCode) V() bool {
	if rc.F() {
		panic("not a format-0 response code")
	}
	return rc&responseCodeV != 0
}

// T returns the T field of the response code. If this is set in a format-zero
// response code, then the code is defined by the TPM vendor. If it is not set
// in a format-zero response code, then the code is defined by the TCG.
//
// This will panic if the F field is set.
func (rc ResponseCode) T() bool {
	if rc.F() {
		panic("not a format-0 response code")
	}
	return rc&responseCodeT != 0
}

// S returns the S field of the response code. If this is set in a format-zero
// response code, then the code indicates a warning. If it is not set in a
// format-zero response code, then the code indicates an error.
//
// This will panic if the F field is set.
func (rc ResponseCode) S() bool {
	if rc.F() {
		panic("not a format-0 response code")
	}
	return rc&responseCodeS != 0
}

// P returns the P field of the response code. If this is set in a format-one
// response code, then the code is associated with a command parameter. If it is
// not set in a format-one error code, then the code is associated with a command
// handle or session.
//
// This will panic if the F field is not set.
func (rc ResponseCode) P() bool {
	if !rc.F() {
		panic("not a format-1 response code")
	}
	return rc&responseCodeP != 0
}

// N returns the N field of the response code. If the P field is set in a
// format-one response code, then this indicates the parameter number from 0x1
// to 0xf. If the P field is not set in a format-one response code, then the
// lower 3 bits indicate the handle or session number (0x1 to 0x7 for handles
// and 0x9 to 0xf for sessions).
//
// This will panic if the F field is not set.
func (rc ResponseCode) N() uint8 {
	if !rc.F() {
		panic("not a format-1 response code")
	}
	return uint8(rc & responseCodeN >> responseCodeIndexShift)
}

// Base returns the base response code without any index bits that associate a
// format-one code with a specific handle, parameter or session.
func (rc ResponseCode) Base() ResponseCode {
	if !rc.F() {
		return rc
	}
	return rc &^ (responseCodeN | responseCodeP)
}

// Index returns the handle, parameter or session index that a format-one
// response code is associated with, or zero if the code is not associated
// with one.
func (rc ResponseCode) Index() uint8 {
	if !rc.F() {
		return 0
	}
	if rc.P() {
		return rc.N()
	}
	return rc.N() & 0x7
}

// Type returns properties of this response code.
func (rc ResponseCode) Type() ResponseCodeType {
	return ResponseCodeType{rc: rc}
}

// SetHandleIndex returns a response code with the N field set to the supplied
// handle index. This will panic if this is not a format-one response code or
// the index overflows 3 bits.
func (rc ResponseCode) SetHandleIndex(index uint8) ResponseCode {
	if !rc.F() {
		panic(fmt.Sprintf("invalid response code 0x%08x (base response code is not a format-1 response code)", uint32(rc)))
	}
	out := rc&^(responseCodeN|responseCodeP) | ResponseCode(index)<<responseCodeIndexShift
	if index > 7 {
		panic(fmt.Sprintf("invalid response code 0x%08x (invalid handle index overflows bits 8-10)", uint32(out)))
	}
	return out
}

// SetParameterIndex returns a response code with the P field set and the N
// field set to the supplied parameter index. This will panic if this is not a
// format-one response code or the index overflows 4 bits.
func (rc ResponseCode) SetParameterIndex(index uint8) ResponseCode {
	if !rc.F() {
		panic(fmt.Sprintf("invalid response code 0x%08x (base response code is not a format-1 response code)", uint32(rc)))
	}
	out := rc&^(responseCodeN|responseCodeP) | responseCodeP | ResponseCode(index)<<responseCodeIndexShift
	if index > 15 {
		panic(fmt.Sprintf("invalid response code 0x%08x (invalid parameter index overflows bits 8-11)", uint32(out)))
	}
	return out
}

// SetSessionIndex returns a response code with the N field set to the supplied
// session index. This will panic if this is not a format-one response code or
// the index overflows 3 bits.
func (rc ResponseCode) SetSessionIndex(index uint8) ResponseCode {
	if !rc.F() {
		panic(fmt.Sprintf("invalid response code 0x%08x (base response code is not a format-1 response code)", uint32(rc)))
	}
	out := rc&^(responseCodeN|responseCodeP) | ResponseCode(8+index)<<responseCodeIndexShift
	if index > 7 {
		panic(fmt.Sprintf("invalid response code 0x%08x (invalid session index overflows bits 8-10)", uint32(out)))
	}
	return out
}

// ResponseCodeIndex returns the supplied handle, parameter or session index
// as the bits that represent the N field of a format-one response code. This
// will panic if the index overflows 4 bits.
func ResponseCodeIndex(index uint8) ResponseCode {
	if index > responseCodeIndex {
		panic("invalid handle, parameter, or session index (> 0xf)")
	}
	return ResponseCode(index) << responseCodeIndexShift
}

// ResponseCodeFormat describes the format of a response code.
type ResponseCodeFormat uint8

const (
	ResponseCodeFormat0 ResponseCodeFormat = iota // format-zero response code
	ResponseCodeFormat1                           // format-one response code
)

// ResponseCodeIndexType describes the type of index carried in the N field
// of a format-one response code.
type ResponseCodeIndexType uint8

const (
	ResponseCodeIndexTypeNone ResponseCodeIndexType = iota
	ResponseCodeIndexTypeHandle
	ResponseCodeIndexTypeParameter
	ResponseCodeIndexTypeSession
)

// ResponseCodeVersion describes the TPM version associated with a response
// code.
type ResponseCodeVersion uint8

const (
	ResponseCodeVersionTPM12 ResponseCodeVersion = iota
	ResponseCodeVersionTPM2
)

// ResponseCodeSeverity indicates whether a response code is an error or a
// warning.
type ResponseCodeSeverity uint8

const (
	ResponseCodeSeverityError ResponseCodeSeverity = iota
	ResponseCodeSeverityWarning
)

// ResponseCodeSpec indicates whether a response code is defined by the TCG
// or by the TPM vendor.
type ResponseCodeSpec uint8

const (
	ResponseCodeSpecTCG ResponseCodeSpec = iota
	ResponseCodeSpecVendor
)

// ResponseCodeType describes the properties of a response code.
type ResponseCodeType struct {
	rc ResponseCode
}

// Format returns the format of the response code.
func (t ResponseCodeType) Format() ResponseCodeFormat {
	if t.rc.F() {
		return ResponseCodeFormat1
	}
	return ResponseCodeFormat0
}

// IndexType returns the type of index that the N field of a format-one
// response code is associated with.
func (t ResponseCodeType) IndexType() ResponseCodeIndexType {
	if !t.rc.F() {
		return ResponseCodeIndexTypeNone
	}
	switch {
	case t.rc.P():
		return ResponseCodeIndexTypeParameter
	case t.rc.N()&0x8 != 0:
		return ResponseCodeIndexTypeSession
	case t.rc.N() != 0:
		return ResponseCodeIndexTypeHandle
	default:
		return ResponseCodeIndexTypeNone
	}
}

// Version returns the TPM version associated with the response code.
func (t ResponseCodeType) Version() ResponseCodeVersion {
	if t.rc.F() {
		return ResponseCodeVersionTPM2
	}
	if t.rc.V() {
		return ResponseCodeVersionTPM2
	}
	return ResponseCodeVersionTPM12
}

// Severity indicates whether the response code is an error or a warning.
func (t ResponseCodeType) Severity() ResponseCodeSeverity {
	if t.rc.F() {
		return ResponseCodeSeverityError
	}
	if t.rc.S() {
		return ResponseCodeSeverityWarning
	}
	return ResponseCodeSeverityError
}

// Spec indicates whether the response code is defined by the TCG or by the
// TPM vendor.
func (t ResponseCodeType) Spec() ResponseCodeSpec {
	if t.rc.F() {
		return ResponseCodeSpecTCG
	}
	if t.rc.T() {
		return ResponseCodeSpecVendor
	}
	return ResponseCodeSpecTCG
}

// StructTag corresponds to the TPM_ST type.
type StructTag uint16

// StartupType corresponds to the TPM_SU type.
type StartupType uint16

// SessionType corresponds to the TPM_SE type.
type SessionType uint8

// Capability corresponds to the TPM_CAP type.
type Capability uint32

// Property corresponds to the TPM_PT type.
type Property uint32

// PropertyPCR corresponds to the TPM_PT_PCR type.
type PropertyPCR uint32

// TPMManufacturer corresponds to the TPM manufacturer, which is
// obtained by reading the PropertyManufacturer property.
type TPMManufacturer uint32
