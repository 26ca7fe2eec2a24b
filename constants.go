// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"math"
)

const (
	DefaultRSAExponent = 65537
)

const (
	AlgorithmError          AlgorithmId = 0x0000 // TPM_ALG_ERROR
	AlgorithmRSA            AlgorithmId = 0x0001 // TPM_ALG_RSA
	AlgorithmTDES           AlgorithmId = 0x0003 // TPM_ALG_TDES
	AlgorithmSHA1           AlgorithmId = 0x0004 // TPM_ALG_SHA1
	AlgorithmHMAC           AlgorithmId = 0x0005 // TPM_ALG_HMAC
	AlgorithmAES            AlgorithmId = 0x0006 // TPM_ALG_AES
	AlgorithmMGF1           AlgorithmId = 0x0007 // TPM_ALG_MGF1
	AlgorithmKeyedHash      AlgorithmId = 0x0008 // TPM_ALG_KEYEDHASH
	AlgorithmXOR            AlgorithmId = 0x000a // TPM_ALG_XOR
	AlgorithmSHA256         AlgorithmId = 0x000b // TPM_ALG_SHA256
	AlgorithmSHA384         AlgorithmId = 0x000c // TPM_ALG_SHA384
	AlgorithmSHA512         AlgorithmId = 0x000d // TPM_ALG_SHA512
	AlgorithmNull           AlgorithmId = 0x0010 // TPM_ALG_NULL
	AlgorithmSM3_256        AlgorithmId = 0x0012 // TPM_ALG_SM3_256
	AlgorithmSM4            AlgorithmId = 0x0013 // TPM_ALG_SM4
	AlgorithmRSASSA         AlgorithmId = 0x0014 // TPM_ALG_RSASSA
	AlgorithmRSAES          AlgorithmId = 0x0015 // TPM_ALG_RSAES
	AlgorithmRSAPSS         AlgorithmId = 0x0016 // TPM_ALG_RSAPSS
	AlgorithmOAEP           AlgorithmId = 0x0017 // TPM_ALG_OAEP
	AlgorithmECDSA          AlgorithmId = 0x0018 // TPM_ALG_ECDSA
	AlgorithmECDH           AlgorithmId = 0x0019 // TPM_ALG_ECDH
	AlgorithmECDAA          AlgorithmId = 0x001a // TPM_ALG_ECDAA
	AlgorithmSM2            AlgorithmId = 0x001b // TPM_ALG_SM2
	AlgorithmECSchnorr      AlgorithmId = 0x001c // TPM_ALG_ECSCHNORR
	AlgorithmECMQV          AlgorithmId = 0x001d // TPM_ALG_ECMQV
	AlgorithmKDF1_SP800_56A AlgorithmId = 0x0020 // TPM_ALG_KDF1_SP800_56A
	AlgorithmKDF2           AlgorithmId = 0x0021 // TPM_ALG_KDF2
	AlgorithmKDF1_SP800_108 AlgorithmId = 0x0022 // TPM_ALG_KDF1_SP800_108
	AlgorithmECC            AlgorithmId = 0x0023 // TPM_ALG_ECC
	AlgorithmSymCipher      AlgorithmId = 0x0025 // TPM_ALG_SYMCIPHER
	AlgorithmCamellia       AlgorithmId = 0x0026 // TPM_ALG_CAMELLIA
	AlgorithmSHA3_256       AlgorithmId = 0x0027 // TPM_ALG_SHA3_256
	AlgorithmSHA3_384       AlgorithmId = 0x0028 // TPM_ALG_SHA3_384
	AlgorithmSHA3_512       AlgorithmId = 0x0029 // TPM_ALG_SHA3_512
	AlgorithmCTR            AlgorithmId = 0x0040 // TPM_ALG_CTR
	AlgorithmOFB            AlgorithmId = 0x0041 // TPM_ALG_OFB
	AlgorithmCBC            AlgorithmId = 0x0042 // TPM_ALG_CBC
	AlgorithmCFB            AlgorithmId = 0x0043 // TPM_ALG_CFB
	AlgorithmECB            AlgorithmId = 0x0044 // TPM_ALG_ECB

	AlgorithmFirst AlgorithmId = AlgorithmRSA
)

const (
	HashAlgorithmNull     HashAlgorithmId = HashAlgorithmId(AlgorithmNull)     // TPM_ALG_NULL
	HashAlgorithmSHA1     HashAlgorithmId = HashAlgorithmId(AlgorithmSHA1)     // TPM_ALG_SHA1
	HashAlgorithmSHA256   HashAlgorithmId = HashAlgorithmId(AlgorithmSHA256)   // TPM_ALG_SHA256
	HashAlgorithmSHA384   HashAlgorithmId = HashAlgorithmId(AlgorithmSHA384)   // TPM_ALG_SHA384
	HashAlgorithmSHA512   HashAlgorithmId = HashAlgorithmId(AlgorithmSHA512)   // TPM_ALG_SHA512
	HashAlgorithmSM3_256  HashAlgorithmId = HashAlgorithmId(AlgorithmSM3_256)  // TPM_ALG_SM3_256
	HashAlgorithmSHA3_256 HashAlgorithmId = HashAlgorithmId(AlgorithmSHA3_256) // TPM_ALG_SHA3_256
	HashAlgorithmSHA3_384 HashAlgorithmId = HashAlgorithmId(AlgorithmSHA3_384) // TPM_ALG_SHA3_384
	HashAlgorithmSHA3_512 HashAlgorithmId = HashAlgorithmId(AlgorithmSHA3_512) // TPM_ALG_SHA3_512

	HashAlgorithmFirst HashAlgorithmId = HashAlgorithmSHA1
)

const (
	SymAlgorithmTDES     SymAlgorithmId = SymAlgorithmId(AlgorithmTDES)     // TPM_ALG_TDES
	SymAlgorithmAES      SymAlgorithmId = SymAlgorithmId(AlgorithmAES)      // TPM_ALG_AES
	SymAlgorithmXOR      SymAlgorithmId = SymAlgorithmId(AlgorithmXOR)      // TPM_ALG_XOR
	SymAlgorithmNull     SymAlgorithmId = SymAlgorithmId(AlgorithmNull)     // TPM_ALG_NULL
	SymAlgorithmSM4      SymAlgorithmId = SymAlgorithmId(AlgorithmSM4)      // TPM_ALG_SM4
	SymAlgorithmCamellia SymAlgorithmId = SymAlgorithmId(AlgorithmCamellia) // TPM_ALG_CAMELLIA
)

const (
	SymObjectAlgorithmAES      SymObjectAlgorithmId = SymObjectAlgorithmId(AlgorithmAES)      // TPM_ALG_AES
	SymObjectAlgorithmNull     SymObjectAlgorithmId = SymObjectAlgorithmId(AlgorithmNull)     // TPM_ALG_NULL
	SymObjectAlgorithmSM4      SymObjectAlgorithmId = SymObjectAlgorithmId(AlgorithmSM4)      // TPM_ALG_SM4
	SymObjectAlgorithmCamellia SymObjectAlgorithmId = SymObjectAlgorithmId(AlgorithmCamellia) // TPM_ALG_CAMELLIA
)

const (
	SymModeNull SymModeId = SymModeId(AlgorithmNull) // TPM_ALG_NULL
	SymModeCTR  SymModeId = SymModeId(AlgorithmCTR)  // TPM_ALG_CTR
	SymModeOFB  SymModeId = SymModeId(AlgorithmOFB)  // TPM_ALG_OFB
	SymModeCBC  SymModeId = SymModeId(AlgorithmCBC)  // TPM_ALG_CBC
	SymModeCFB  SymModeId = SymModeId(AlgorithmCFB)  // TPM_ALG_CFB
	SymModeECB  SymModeId = SymModeId(AlgorithmECB)  // TPM_ALG_ECB
)

const (
	KDFAlgorithmMGF1           KDFAlgorithmId = KDFAlgorithmId(AlgorithmMGF1)           // TPM_ALG_MGF1
	KDFAlgorithmNull           KDFAlgorithmId = KDFAlgorithmId(AlgorithmNull)           // TPM_ALG_NULL
	KDFAlgorithmKDF1_SP800_56A KDFAlgorithmId = KDFAlgorithmId(AlgorithmKDF1_SP800_56A) // TPM_ALG_KDF1_SP800_56A
	KDFAlgorithmKDF2           KDFAlgorithmId = KDFAlgorithmId(AlgorithmKDF2)           // TPM_ALG_KDF2
	KDFAlgorithmKDF1_SP800_108 KDFAlgorithmId = KDFAlgorithmId(AlgorithmKDF1_SP800_108) // TPM_ALG_KDF1_SP800_108
)

const (
	SigSchemeAlgHMAC      SigSchemeId = SigSchemeId(AlgorithmHMAC)      // TPM_ALG_HMAC
	SigSchemeAlgNull      SigSchemeId = SigSchemeId(AlgorithmNull)      // TPM_ALG_NULL
	SigSchemeAlgRSASSA    SigSchemeId = SigSchemeId(AlgorithmRSASSA)    // TPM_ALG_RSASSA
	SigSchemeAlgRSAPSS    SigSchemeId = SigSchemeId(AlgorithmRSAPSS)    // TPM_ALG_RSAPSS
	SigSchemeAlgECDSA     SigSchemeId = SigSchemeId(AlgorithmECDSA)     // TPM_ALG_ECDSA
	SigSchemeAlgECDAA     SigSchemeId = SigSchemeId(AlgorithmECDAA)     // TPM_ALG_ECDAA
	SigSchemeAlgSM2       SigSchemeId = SigSchemeId(AlgorithmSM2)       // TPM_ALG_SM2
	SigSchemeAlgECSchnorr SigSchemeId = SigSchemeId(AlgorithmECSchnorr) // TPM_ALG_ECSCHNORR
)

const (
	ECCCurveNIST_P192 ECCCurve = 0x0001 // TPM_ECC_NIST_P192
	ECCCurveNIST_P224 ECCCurve = 0x0002 // TPM_ECC_NIST_P224
	ECCCurveNIST_P256 ECCCurve = 0x0003 // TPM_ECC_NIST_P256
	ECCCurveNIST_P384 ECCCurve = 0x0004 // TPM_ECC_NIST_P384
	ECCCurveNIST_P521 ECCCurve = 0x0005 // TPM_ECC_NIST_P521
	ECCCurveBN_P256   ECCCurve = 0x0010 // TPM_ECC_BN_P256
	ECCCurveBN_P638   ECCCurve = 0x0011 // TPM_ECC_BN_P638
	ECCCurveSM2_P256  ECCCurve = 0x0020 // TPM_ECC_SM2_P256

	ECCCurveFirst ECCCurve = ECCCurveNIST_P192
)

const (
	CommandFirst CommandCode = 0x0000011F

	CommandEvictControl     CommandCode = 0x00000120 // TPM_CC_EvictControl
	CommandCreatePrimary    CommandCode = 0x00000131 // TPM_CC_CreatePrimary
	CommandStartup          CommandCode = 0x00000144 // TPM_CC_Startup
	CommandShutdown         CommandCode = 0x00000145 // TPM_CC_Shutdown
	CommandStirRandom       CommandCode = 0x00000146 // TPM_CC_StirRandom
	CommandCreate           CommandCode = 0x00000153 // TPM_CC_Create
	CommandLoad             CommandCode = 0x00000157 // TPM_CC_Load
	CommandContextLoad      CommandCode = 0x00000161 // TPM_CC_ContextLoad
	CommandContextSave      CommandCode = 0x00000162 // TPM_CC_ContextSave
	CommandFlushContext     CommandCode = 0x00000165 // TPM_CC_FlushContext
	CommandReadPublic       CommandCode = 0x00000173 // TPM_CC_ReadPublic
	CommandStartAuthSession CommandCode = 0x00000176 // TPM_CC_StartAuthSession
	CommandGetCapability    CommandCode = 0x0000017A // TPM_CC_GetCapability
	CommandGetRandom        CommandCode = 0x0000017B // TPM_CC_GetRandom
	CommandPCRRead          CommandCode = 0x0000017E // TPM_CC_PCR_Read
	CommandPCRExtend        CommandCode = 0x00000182 // TPM_CC_PCR_Extend
	CommandTestParms        CommandCode = 0x0000018A // TPM_CC_TestParms
)

const (
	// Success corresponds to TPM_RC_SUCCESS.
	Success ResponseCode = 0

	// ResponseBadTag corresponds to TPM_RC_BAD_TAG and is returned from
	// a TPM1.2 device in response to a TPM2 command.
	ResponseBadTag ResponseCode = 0x1e

	rcVer1 ResponseCode = 0x100 // RC_VER1
	rcFmt1 ResponseCode = 0x080 // RC_FMT1
	rcWarn ResponseCode = 0x900 // RC_WARN
)

// Format-zero response codes.
const (
	ResponseInitialize      ResponseCode = rcVer1 + ResponseCode(ErrorInitialize)      // TPM_RC_INITIALIZE
	ResponseFailure         ResponseCode = rcVer1 + ResponseCode(ErrorFailure)         // TPM_RC_FAILURE
	ResponseSequence        ResponseCode = rcVer1 + ResponseCode(ErrorSequence)        // TPM_RC_SEQUENCE
	ResponsePrivate         ResponseCode = rcVer1 + ResponseCode(ErrorPrivate)         // TPM_RC_PRIVATE
	ResponseHMAC            ResponseCode = rcVer1 + ResponseCode(ErrorHMAC)            // TPM_RC_HMAC
	ResponseDisabled        ResponseCode = rcVer1 + ResponseCode(ErrorDisabled)        // TPM_RC_DISABLED
	ResponseExclusive       ResponseCode = rcVer1 + ResponseCode(ErrorExclusive)       // TPM_RC_EXCLUSIVE
	ResponseAuthType        ResponseCode = rcVer1 + ResponseCode(ErrorAuthType)        // TPM_RC_AUTH_TYPE
	ResponseAuthMissing     ResponseCode = rcVer1 + ResponseCode(ErrorAuthMissing)     // TPM_RC_AUTH_MISSING
	ResponsePolicy          ResponseCode = rcVer1 + ResponseCode(ErrorPolicy)          // TPM_RC_POLICY
	ResponsePCR             ResponseCode = rcVer1 + ResponseCode(ErrorPCR)             // TPM_RC_PCR
	ResponsePCRChanged      ResponseCode = rcVer1 + ResponseCode(ErrorPCRChanged)      // TPM_RC_PCR_CHANGED
	ResponseUpgrade         ResponseCode = rcVer1 + ResponseCode(ErrorUpgrade)         // TPM_RC_UPGRADE
	ResponseTooManyContexts ResponseCode = rcVer1 + ResponseCode(ErrorTooManyContexts) // TPM_RC_TOO_MANY_CONTEXTS
	ResponseAuthUnavailable ResponseCode = rcVer1 + ResponseCode(ErrorAuthUnavailable) // TPM_RC_AUTH_UNAVAILABLE
	ResponseReboot          ResponseCode = rcVer1 + ResponseCode(ErrorReboot)          // TPM_RC_REBOOT
	ResponseUnbalanced      ResponseCode = rcVer1 + ResponseCode(ErrorUnbalanced)      // TPM_RC_UNBALANCED
	ResponseCommandSize     ResponseCode = rcVer1 + ResponseCode(ErrorCommandSize)     // TPM_RC_COMMAND_SIZE
	ResponseCommandCode     ResponseCode = rcVer1 + ResponseCode(ErrorCommandCode)     // TPM_RC_COMMAND_CODE
	ResponseAuthsize        ResponseCode = rcVer1 + ResponseCode(ErrorAuthsize)        // TPM_RC_AUTHSIZE
	ResponseAuthContext     ResponseCode = rcVer1 + ResponseCode(ErrorAuthContext)     // TPM_RC_AUTH_CONTEXT
	ResponseNVRange         ResponseCode = rcVer1 + ResponseCode(ErrorNVRange)         // TPM_RC_NV_RANGE
	ResponseNVSize          ResponseCode = rcVer1 + ResponseCode(ErrorNVSize)          // TPM_RC_NV_SIZE
	ResponseNVLocked        ResponseCode = rcVer1 + ResponseCode(ErrorNVLocked)        // TPM_RC_NV_LOCKED
	ResponseNVAuthorization ResponseCode = rcVer1 + ResponseCode(ErrorNVAuthorization) // TPM_RC_NV_AUTHORIZATION
	ResponseNVUninitialized ResponseCode = rcVer1 + ResponseCode(ErrorNVUninitialized) // TPM_RC_NV_UNINITIALIZED
	ResponseNVSpace         ResponseCode = rcVer1 + ResponseCode(ErrorNVSpace)         // TPM_RC_NV_SPACE
	ResponseNVDefined       ResponseCode = rcVer1 + ResponseCode(ErrorNVDefined)       // TPM_RC_NV_DEFINED
	ResponseBadContext      ResponseCode = rcVer1 + ResponseCode(ErrorBadContext)      // TPM_RC_BAD_CONTEXT
	ResponseCpHash          ResponseCode = rcVer1 + ResponseCode(ErrorCpHash)          // TPM_RC_CPHASH
	ResponseParent          ResponseCode = rcVer1 + ResponseCode(ErrorParent)          // TPM_RC_PARENT
	ResponseNeedsTest       ResponseCode = rcVer1 + ResponseCode(ErrorNeedsTest)       // TPM_RC_NEEDS_TEST
	ResponseNoResult        ResponseCode = rcVer1 + ResponseCode(ErrorNoResult)        // TPM_RC_NO_RESULT
	ResponseSensitive       ResponseCode = rcVer1 + ResponseCode(ErrorSensitive)       // TPM_RC_SENSITIVE
)

// Format-one response codes. The unified ErrorCode constants for these
// codes already carry bit 7, so no additional offset is applied here.
const (
	ResponseAsymmetric   ResponseCode = ResponseCode(ErrorAsymmetric)   // TPM_RC_ASYMMETRIC
	ResponseAttributes   ResponseCode = ResponseCode(ErrorAttributes)   // TPM_RC_ATTRIBUTES
	ResponseHash         ResponseCode = ResponseCode(ErrorHash)         // TPM_RC_HASH
	ResponseValue        ResponseCode = ResponseCode(ErrorValue)        // TPM_RC_VALUE
	ResponseHierarchy    ResponseCode = ResponseCode(ErrorHierarchy)    // TPM_RC_HIERARCHY
	ResponseKeySize      ResponseCode = ResponseCode(ErrorKeySize)      // TPM_RC_KEY_SIZE
	ResponseMGF          ResponseCode = ResponseCode(ErrorMGF)          // TPM_RC_MGF
	ResponseMode         ResponseCode = ResponseCode(ErrorMode)         // TPM_RC_MODE
	ResponseType         ResponseCode = ResponseCode(ErrorType)         // TPM_RC_TYPE
	ResponseHandle       ResponseCode = ResponseCode(ErrorHandle)       // TPM_RC_HANDLE
	ResponseKDF          ResponseCode = ResponseCode(ErrorKDF)          // TPM_RC_KDF
	ResponseRange        ResponseCode = ResponseCode(ErrorRange)        // TPM_RC_RANGE
	ResponseAuthFail     ResponseCode = ResponseCode(ErrorAuthFail)     // TPM_RC_AUTH_FAIL
	ResponseNonce        ResponseCode = ResponseCode(ErrorNonce)        // TPM_RC_NONCE
	ResponsePP           ResponseCode = ResponseCode(ErrorPP)           // TPM_RC_PP
	ResponseScheme       ResponseCode = ResponseCode(ErrorScheme)       // TPM_RC_SCHEME
	ResponseSize         ResponseCode = ResponseCode(ErrorSize)         // TPM_RC_SIZE
	ResponseSymmetric    ResponseCode = ResponseCode(ErrorSymmetric)    // TPM_RC_SYMMETRIC
	ResponseTag          ResponseCode = ResponseCode(ErrorTag)          // TPM_RC_TAG
	ResponseSelector     ResponseCode = ResponseCode(ErrorSelector)     // TPM_RC_SELECTOR
	ResponseInsufficient ResponseCode = ResponseCode(ErrorInsufficient) // TPM_RC_INSUFFICIENT
	ResponseSignature    ResponseCode = ResponseCode(ErrorSignature)    // TPM_RC_SIGNATURE
	ResponseKey          ResponseCode = ResponseCode(ErrorKey)          // TPM_RC_KEY
	ResponsePolicyFail   ResponseCode = ResponseCode(ErrorPolicyFail)   // TPM_RC_POLICY_FAIL
	ResponseIntegrity    ResponseCode = ResponseCode(ErrorIntegrity)    // TPM_RC_INTEGRITY
	ResponseTicket       ResponseCode = ResponseCode(ErrorTicket)       // TPM_RC_TICKET
	ResponseReservedBits ResponseCode = ResponseCode(ErrorReservedBits) // TPM_RC_RESERVED_BITS
	ResponseBadAuth      ResponseCode = ResponseCode(ErrorBadAuth)      // TPM_RC_BAD_AUTH
	ResponseExpired      ResponseCode = ResponseCode(ErrorExpired)      // TPM_RC_EXPIRED
	ResponsePolicyCC     ResponseCode = ResponseCode(ErrorPolicyCC)     // TPM_RC_POLICY_CC
	ResponseBinding      ResponseCode = ResponseCode(ErrorBinding)      // TPM_RC_BINDING
	ResponseCurve        ResponseCode = ResponseCode(ErrorCurve)        // TPM_RC_CURVE
	ResponseECCPoint     ResponseCode = ResponseCode(ErrorECCPoint)     // TPM_RC_ECC_POINT
)

// Warning response codes.
const (
	ResponseContextGap     ResponseCode = rcWarn + ResponseCode(WarningContextGap)     // TPM_RC_CONTEXT_GAP
	ResponseObjectMemory   ResponseCode = rcWarn + ResponseCode(WarningObjectMemory)   // TPM_RC_OBJECT_MEMORY
	ResponseSessionMemory  ResponseCode = rcWarn + ResponseCode(WarningSessionMemory)  // TPM_RC_SESSION_MEMORY
	ResponseMemory         ResponseCode = rcWarn + ResponseCode(WarningMemory)         // TPM_RC_MEMORY
	ResponseSessionHandles ResponseCode = rcWarn + ResponseCode(WarningSessionHandles) // TPM_RC_SESSION_HANDLES
	ResponseObjectHandles  ResponseCode = rcWarn + ResponseCode(WarningObjectHandles)  // TPM_RC_OBJECT_HANDLES
	ResponseLocality       ResponseCode = rcWarn + ResponseCode(WarningLocality)       // TPM_RC_LOCALITY
	ResponseYielded        ResponseCode = rcWarn + ResponseCode(WarningYielded)        // TPM_RC_YIELDED
	ResponseCanceled       ResponseCode = rcWarn + ResponseCode(WarningCanceled)       // TPM_RC_CANCELED
	ResponseTesting        ResponseCode = rcWarn + ResponseCode(WarningTesting)        // TPM_RC_TESTING
	ResponseReferenceH0    ResponseCode = rcWarn + ResponseCode(WarningReferenceH0)    // TPM_RC_REFERENCE_H0
	ResponseReferenceH1    ResponseCode = rcWarn + ResponseCode(WarningReferenceH1)    // TPM_RC_REFERENCE_H1
	ResponseReferenceH2    ResponseCode = rcWarn + ResponseCode(WarningReferenceH2)    // TPM_RC_REFERENCE_H2
	ResponseReferenceH3    ResponseCode = rcWarn + ResponseCode(WarningReferenceH3)    // TPM_RC_REFERENCE_H3
	ResponseReferenceH4    ResponseCode = rcWarn + ResponseCode(WarningReferenceH4)    // TPM_RC_REFERENCE_H4
	ResponseReferenceH5    ResponseCode = rcWarn + ResponseCode(WarningReferenceH5)    // TPM_RC_REFERENCE_H5
	ResponseReferenceH6    ResponseCode = rcWarn + ResponseCode(WarningReferenceH6)    // TPM_RC_REFERENCE_H6
	ResponseReferenceS0    ResponseCode = rcWarn + ResponseCode(WarningReferenceS0)    // TPM_RC_REFERENCE_S0
	ResponseReferenceS1    ResponseCode = rcWarn + ResponseCode(WarningReferenceS1)    // TPM_RC_REFERENCE_S1
	ResponseReferenceS2    ResponseCode = rcWarn + ResponseCode(WarningReferenceS2)    // TPM_RC_REFERENCE_S2
	ResponseReferenceS3    ResponseCode = rcWarn + ResponseCode(WarningReferenceS3)    // TPM_RC_REFERENCE_S3
	ResponseReferenceS4    ResponseCode = rcWarn + ResponseCode(WarningReferenceS4)    // TPM_RC_REFERENCE_S4
	ResponseReferenceS5    ResponseCode = rcWarn + ResponseCode(WarningReferenceS5)    // TPM_RC_REFERENCE_S5
	ResponseReferenceS6    ResponseCode = rcWarn + ResponseCode(WarningReferenceS6)    // TPM_RC_REFERENCE_S6
	ResponseNVRate         ResponseCode = rcWarn + ResponseCode(WarningNVRate)         // TPM_RC_NV_RATE
	ResponseLockout        ResponseCode = rcWarn + ResponseCode(WarningLockout)        // TPM_RC_LOCKOUT
	ResponseRetry          ResponseCode = rcWarn + ResponseCode(WarningRetry)          // TPM_RC_RETRY
	ResponseNVUnavailable  ResponseCode = rcWarn + ResponseCode(WarningNVUnavailable)  // TPM_RC_NV_UNAVAILABLE
)

// These constants can be added to format-one response codes to indicate the
// handle, parameter or session that the code is associated with.
const (
	ResponseH ResponseCode = 0                           // associated with a handle
	ResponseP ResponseCode = responseCodeP               // associated with a parameter
	ResponseS ResponseCode = 8 << responseCodeIndexShift // associated with a session

	Response1 ResponseCode = 1 << responseCodeIndexShift
	Response2 ResponseCode = 2 << responseCodeIndexShift
	Response3 ResponseCode = 3 << responseCodeIndexShift
	Response4 ResponseCode = 4 << responseCodeIndexShift
	Response5 ResponseCode = 5 << responseCodeIndexShift
	Response6 ResponseCode = 6 << responseCodeIndexShift
	Response7 ResponseCode = 7 << responseCodeIndexShift
	Response8 ResponseCode = 8 << responseCodeIndexShift
	Response9 ResponseCode = 9 << responseCodeIndexShift
	ResponseA ResponseCode = 10 << responseCodeIndexShift
	ResponseB ResponseCode = 11 << responseCodeIndexShift
	ResponseC ResponseCode = 12 << responseCodeIndexShift
	ResponseD ResponseCode = 13 << responseCodeIndexShift
	ResponseE ResponseCode = 14 << responseCodeIndexShift
	ResponseF ResponseCode = 15 << responseCodeIndexShift
)

// Format-zero error codes, which don't contain a handle, parameter or
// session index.
const (
	ErrorInitialize      ErrorCode = 0x00 // TPM_RC_INITIALIZE
	ErrorFailure         ErrorCode = 0x01 // TPM_RC_FAILURE
	ErrorSequence        ErrorCode = 0x03 // TPM_RC_SEQUENCE
	ErrorPrivate         ErrorCode = 0x0b // TPM_RC_PRIVATE
	ErrorHMAC            ErrorCode = 0x19 // TPM_RC_HMAC
	ErrorDisabled        ErrorCode = 0x20 // TPM_RC_DISABLED
	ErrorExclusive       ErrorCode = 0x21 // TPM_RC_EXCLUSIVE
	ErrorAuthType        ErrorCode = 0x24 // TPM_RC_AUTH_TYPE
	ErrorAuthMissing     ErrorCode = 0x25 // TPM_RC_AUTH_MISSING
	ErrorPolicy          ErrorCode = 0x26 // TPM_RC_POLICY
	ErrorPCR             ErrorCode = 0x27 // TPM_RC_PCR
	ErrorPCRChanged      ErrorCode = 0x28 // TPM_RC_PCR_CHANGED
	ErrorUpgrade         ErrorCode = 0x2d // TPM_RC_UPGRADE
	ErrorTooManyContexts ErrorCode = 0x2e // TPM_RC_TOO_MANY_CONTEXTS
	ErrorAuthUnavailable ErrorCode = 0x2f // TPM_RC_AUTH_UNAVAILABLE
	ErrorReboot          ErrorCode = 0x30 // TPM_RC_REBOOT
	ErrorUnbalanced      ErrorCode = 0x31 // TPM_RC_UNBALANCED
	ErrorCommandSize     ErrorCode = 0x42 // TPM_RC_COMMAND_SIZE
	ErrorCommandCode     ErrorCode = 0x43 // TPM_RC_COMMAND_CODE
	ErrorAuthsize        ErrorCode = 0x44 // TPM_RC_AUTHSIZE
	ErrorAuthContext     ErrorCode = 0x45 // TPM_RC_AUTH_CONTEXT
	ErrorNVRange         ErrorCode = 0x46 // TPM_RC_NV_RANGE
	ErrorNVSize          ErrorCode = 0x47 // TPM_RC_NV_SIZE
	ErrorNVLocked        ErrorCode = 0x48 // TPM_RC_NV_LOCKED
	ErrorNVAuthorization ErrorCode = 0x49 // TPM_RC_NV_AUTHORIZATION
	ErrorNVUninitialized ErrorCode = 0x4a // TPM_RC_NV_UNINITIALIZED
	ErrorNVSpace         ErrorCode = 0x4b // TPM_RC_NV_SPACE
	ErrorNVDefined       ErrorCode = 0x4c // TPM_RC_NV_DEFINED
	ErrorBadContext      ErrorCode = 0x50 // TPM_RC_BAD_CONTEXT
	ErrorCpHash          ErrorCode = 0x51 // TPM_RC_CPHASH
	ErrorParent          ErrorCode = 0x52 // TPM_RC_PARENT
	ErrorNeedsTest       ErrorCode = 0x53 // TPM_RC_NEEDS_TEST
	ErrorNoResult        ErrorCode = 0x54 // TPM_RC_NO_RESULT
	ErrorSensitive       ErrorCode = 0x55 // TPM_RC_SENSITIVE
)

const errorCode1Start ErrorCode = 0x80

// Format-one error codes, which can be associated with a handle,
// parameter or session.
const (
	ErrorAsymmetric   ErrorCode = errorCode1Start + 0x01 // TPM_RC_ASYMMETRIC
	ErrorAttributes   ErrorCode = errorCode1Start + 0x02 // TPM_RC_ATTRIBUTES
	ErrorHash         ErrorCode = errorCode1Start + 0x03 // TPM_RC_HASH
	ErrorValue        ErrorCode = errorCode1Start + 0x04 // TPM_RC_VALUE
	ErrorHierarchy    ErrorCode = errorCode1Start + 0x05 // TPM_RC_HIERARCHY
	ErrorKeySize      ErrorCode = errorCode1Start + 0x07 // TPM_RC_KEY_SIZE
	ErrorMGF          ErrorCode = errorCode1Start + 0x08 // TPM_RC_MGF
	ErrorMode         ErrorCode = errorCode1Start + 0x09 // TPM_RC_MODE
	ErrorType         ErrorCode = errorCode1Start + 0x0a // TPM_RC_TYPE
	ErrorHandle       ErrorCode = errorCode1Start + 0x0b // TPM_RC_HANDLE
	ErrorKDF          ErrorCode = errorCode1Start + 0x0c // TPM_RC_KDF
	ErrorRange        ErrorCode = errorCode1Start + 0x0d // TPM_RC_RANGE
	ErrorAuthFail     ErrorCode = errorCode1Start + 0x0e // TPM_RC_AUTH_FAIL
	ErrorNonce        ErrorCode = errorCode1Start + 0x0f // TPM_RC_NONCE
	ErrorPP           ErrorCode = errorCode1Start + 0x10 // TPM_RC_PP
	ErrorScheme       ErrorCode = errorCode1Start + 0x12 // TPM_RC_SCHEME
	ErrorSize         ErrorCode = errorCode1Start + 0x15 // TPM_RC_SIZE
	ErrorSymmetric    ErrorCode = errorCode1Start + 0x16 // TPM_RC_SYMMETRIC
	ErrorTag          ErrorCode = errorCode1Start + 0x17 // TPM_RC_TAG
	ErrorSelector     ErrorCode = errorCode1Start + 0x18 // TPM_RC_SELECTOR
	ErrorInsufficient ErrorCode = errorCode1Start + 0x1a // TPM_RC_INSUFFICIENT
	ErrorSignature    ErrorCode = errorCode1Start + 0x1b // TPM_RC_SIGNATURE
	ErrorKey          ErrorCode = errorCode1Start + 0x1c // TPM_RC_KEY
	ErrorPolicyFail   ErrorCode = errorCode1Start + 0x1d // TPM_RC_POLICY_FAIL
	ErrorIntegrity    ErrorCode = errorCode1Start + 0x1f // TPM_RC_INTEGRITY
	ErrorTicket       ErrorCode = errorCode1Start + 0x20 // TPM_RC_TICKET
	ErrorReservedBits ErrorCode = errorCode1Start + 0x21 // TPM_RC_RESERVED_BITS
	ErrorBadAuth      ErrorCode = errorCode1Start + 0x22 // TPM_RC_BAD_AUTH
	ErrorExpired      ErrorCode = errorCode1Start + 0x23 // TPM_RC_EXPIRED
	ErrorPolicyCC     ErrorCode = errorCode1Start + 0x24 // TPM_RC_POLICY_CC
	ErrorBinding      ErrorCode = errorCode1Start + 0x25 // TPM_RC_BINDING
	ErrorCurve        ErrorCode = errorCode1Start + 0x26 // TPM_RC_CURVE
	ErrorECCPoint     ErrorCode = errorCode1Start + 0x27 // TPM_RC_ECC_POINT
)

const (
	WarningContextGap     WarningCode = 0x01 // TPM_RC_CONTEXT_GAP
	WarningObjectMemory   WarningCode = 0x02 // TPM_RC_OBJECT_MEMORY
	WarningSessionMemory  WarningCode = 0x03 // TPM_RC_SESSION_MEMORY
	WarningMemory         WarningCode = 0x04 // TPM_RC_MEMORY
	WarningSessionHandles WarningCode = 0x05 // TPM_RC_SESSION_HANDLES
	WarningObjectHandles  WarningCode = 0x06 // TPM_RC_OBJECT_HANDLES
	WarningLocality       WarningCode = 0x07 // TPM_RC_LOCALITY
	WarningYielded        WarningCode = 0x08 // TPM_RC_YIELDED
	WarningCanceled       WarningCode = 0x09 // TPM_RC_CANCELED
	WarningTesting        WarningCode = 0x0a // TPM_RC_TESTING
	WarningReferenceH0    WarningCode = 0x10 // TPM_RC_REFERENCE_H0
	WarningReferenceH1    WarningCode = 0x11 // TPM_RC_REFERENCE_H1
	WarningReferenceH2    WarningCode = 0x12 // TPM_RC_REFERENCE_H2
	WarningReferenceH3    WarningCode = 0x13 // TPM_RC_REFERENCE_H3
	WarningReferenceH4    WarningCode = 0x14 // TPM_RC_REFERENCE_H4
	WarningReferenceH5    WarningCode = 0x15 // TPM_RC_REFERENCE_H5
	WarningReferenceH6    WarningCode = 0x16 // TPM_RC_REFERENCE_H6
	WarningReferenceS0    WarningCode = 0x18 // TPM_RC_REFERENCE_S0
	WarningReferenceS1    WarningCode = 0x19 // TPM_RC_REFERENCE_S1
	WarningReferenceS2    WarningCode = 0x1a // TPM_RC_REFERENCE_S2
	WarningReferenceS3    WarningCode = 0x1b // TPM_RC_REFERENCE_S3
	WarningReferenceS4    WarningCode = 0x1c // TPM_RC_REFERENCE_S4
	WarningReferenceS5    WarningCode = 0x1d // TPM_RC_REFERENCE_S5
	WarningReferenceS6    WarningCode = 0x1e // TPM_RC_REFERENCE_S6
	WarningNVRate         WarningCode = 0x20 // TPM_RC_NV_RATE
	WarningLockout        WarningCode = 0x21 // TPM_RC_LOCKOUT
	WarningRetry          WarningCode = 0x22 // TPM_RC_RETRY
	WarningNVUnavailable  WarningCode = 0x23 // TPM_RC_NV_UNAVAILABLE
)

const (
	TagRspCommand StructTag = 0x00c4 // TPM_ST_RSP_COMMAND
	TagNull       StructTag = 0x8000 // TPM_ST_NULL
	TagNoSessions StructTag = 0x8001 // TPM_ST_NO_SESSIONS
	TagSessions   StructTag = 0x8002 // TPM_ST_SESSIONS
	TagCreation   StructTag = 0x8021 // TPM_ST_CREATION
	TagVerified   StructTag = 0x8022 // TPM_ST_VERIFIED
	TagAuthSecret StructTag = 0x8023 // TPM_ST_AUTH_SECRET
	TagHashcheck  StructTag = 0x8024 // TPM_ST_HASHCHECK
	TagAuthSigned StructTag = 0x8025 // TPM_ST_AUTH_SIGNED
)

const (
	StartupClear StartupType = iota // TPM_SU_CLEAR
	StartupState                    // TPM_SU_STATE
)

const (
	SessionTypeHMAC   SessionType = 0x00 // TPM_SE_HMAC
	SessionTypePolicy SessionType = 0x01 // TPM_SE_POLICY
	SessionTypeTrial  SessionType = 0x03 // TPM_SE_TRIAL
)

const (
	CapabilityAlgs          Capability = 0 // TPM_CAP_ALGS
	CapabilityHandles       Capability = 1 // TPM_CAP_HANDLES
	CapabilityCommands      Capability = 2 // TPM_CAP_COMMANDS
	CapabilityPPCommands    Capability = 3 // TPM_CAP_PP_COMMANDS
	CapabilityAuditCommands Capability = 4 // TPM_CAP_AUDIT_COMMANDS
	CapabilityPCRs          Capability = 5 // TPM_CAP_PCRS
	CapabilityTPMProperties Capability = 6 // TPM_CAP_TPM_PROPERTIES
	CapabilityPCRProperties Capability = 7 // TPM_CAP_PCR_PROPERTIES
	CapabilityECCCurves     Capability = 8 // TPM_CAP_ECC_CURVES
	CapabilityAuthPolicies  Capability = 9 // TPM_CAP_AUTH_POLICIES

	CapabilityFirst Capability = CapabilityAlgs
)

const (
	// CapabilityMaxProperties can be used to request all available
	// properties from TPMContext.GetCapability.
	CapabilityMaxProperties uint32 = math.MaxUint32
)

// Fixed properties, which only change because of a firmware change on
// the TPM.
const (
	PropertyFamilyIndicator   Property = 0x100 // TPM_PT_FAMILY_INDICATOR
	PropertyLevel             Property = 0x101 // TPM_PT_LEVEL
	PropertyRevision          Property = 0x102 // TPM_PT_REVISION
	PropertyDayOfYear         Property = 0x103 // TPM_PT_DAY_OF_YEAR
	PropertyYear              Property = 0x104 // TPM_PT_YEAR
	PropertyManufacturer      Property = 0x105 // TPM_PT_MANUFACTURER
	PropertyVendorString1     Property = 0x106 // TPM_PT_VENDOR_STRING_1
	PropertyVendorString2     Property = 0x107 // TPM_PT_VENDOR_STRING_2
	PropertyVendorString3     Property = 0x108 // TPM_PT_VENDOR_STRING_3
	PropertyVendorString4     Property = 0x109 // TPM_PT_VENDOR_STRING_4
	PropertyVendorTPMType     Property = 0x10a // TPM_PT_VENDOR_TPM_TYPE
	PropertyFirmwareVersion1  Property = 0x10b // TPM_PT_FIRMWARE_VERSION_1
	PropertyFirmwareVersion2  Property = 0x10c // TPM_PT_FIRMWARE_VERSION_2
	PropertyInputBuffer       Property = 0x10d // TPM_PT_INPUT_BUFFER
	PropertyHRTransientMin    Property = 0x10e // TPM_PT_HR_TRANSIENT_MIN
	PropertyHRPersistentMin   Property = 0x10f // TPM_PT_HR_PERSISTENT_MIN
	PropertyHRLoadedMin       Property = 0x110 // TPM_PT_HR_LOADED_MIN
	PropertyActiveSessionsMax Property = 0x111 // TPM_PT_ACTIVE_SESSIONS_MAX
	PropertyPCRCount          Property = 0x112 // TPM_PT_PCR_COUNT
	PropertyPCRSelectMin      Property = 0x113 // TPM_PT_PCR_SELECT_MIN
	PropertyContextGapMax     Property = 0x114 // TPM_PT_CONTEXT_GAP_MAX
	PropertyNVCountersMax     Property = 0x116 // TPM_PT_NV_COUNTERS_MAX
	PropertyNVIndexMax        Property = 0x117 // TPM_PT_NV_INDEX_MAX
	PropertyMemory            Property = 0x118 // TPM_PT_MEMORY
	PropertyClockUpdate       Property = 0x119 // TPM_PT_CLOCK_UPDATE
	PropertyContextHash       Property = 0x11a // TPM_PT_CONTEXT_HASH
	PropertyContextSym        Property = 0x11b // TPM_PT_CONTEXT_SYM
	PropertyContextSymSize    Property = 0x11c // TPM_PT_CONTEXT_SYM_SIZE
	PropertyOrderlyCount      Property = 0x11d // TPM_PT_ORDERLY_COUNT
	PropertyMaxCommandSize    Property = 0x11e // TPM_PT_MAX_COMMAND_SIZE
	PropertyMaxResponseSize   Property = 0x11f // TPM_PT_MAX_RESPONSE_SIZE
	PropertyMaxDigest         Property = 0x120 // TPM_PT_MAX_DIGEST
	PropertyMaxObjectContext  Property = 0x121 // TPM_PT_MAX_OBJECT_CONTEXT
	PropertyMaxSessionContext Property = 0x122 // TPM_PT_MAX_SESSION_CONTEXT
	PropertyPSFamilyIndicator Property = 0x123 // TPM_PT_PS_FAMILY_INDICATOR
	PropertyPSLevel           Property = 0x124 // TPM_PT_PS_LEVEL
	PropertyPSRevision        Property = 0x125 // TPM_PT_PS_REVISION
	PropertyPSDayOfYear       Property = 0x126 // TPM_PT_PS_DAY_OF_YEAR
	PropertyPSYear            Property = 0x127 // TPM_PT_PS_YEAR
	PropertySplitMax          Property = 0x128 // TPM_PT_SPLIT_MAX
	PropertyTotalCommands     Property = 0x129 // TPM_PT_TOTAL_COMMANDS
	PropertyLibraryCommands   Property = 0x12a // TPM_PT_LIBRARY_COMMANDS
	PropertyVendorCommands    Property = 0x12b // TPM_PT_VENDOR_COMMANDS
	PropertyNVBufferMax       Property = 0x12c // TPM_PT_NV_BUFFER_MAX
	PropertyModes             Property = 0x12d // TPM_PT_MODES
	PropertyMaxCapBuffer      Property = 0x12e // TPM_PT_MAX_CAP_BUFFER

	PropertyFixed Property = PropertyFamilyIndicator
)

// Variable properties, which can change as a result of specific
// commands.
const (
	PropertyPermanent         Property = 0x200 // TPM_PT_PERMANENT
	PropertyStartupClear      Property = 0x201 // TPM_PT_STARTUP_CLEAR
	PropertyHRNVIndex         Property = 0x202 // TPM_PT_HR_NV_INDEX
	PropertyHRLoaded          Property = 0x203 // TPM_PT_HR_LOADED
	PropertyHRLoadedAvail     Property = 0x204 // TPM_PT_HR_LOADED_AVAIL
	PropertyHRActive          Property = 0x205 // TPM_PT_HR_ACTIVE
	PropertyHRActiveAvail     Property = 0x206 // TPM_PT_HR_ACTIVE_AVAIL
	PropertyHRTransientAvail  Property = 0x207 // TPM_PT_HR_TRANSIENT_AVAIL
	PropertyHRPersistent      Property = 0x208 // TPM_PT_HR_PERSISTENT
	PropertyHRPersistentAvail Property = 0x209 // TPM_PT_HR_PERSISTENT_AVAIL
	PropertyNVCounters        Property = 0x20a // TPM_PT_NV_COUNTERS
	PropertyNVCountersAvail   Property = 0x20b // TPM_PT_NV_COUNTERS_AVAIL
	PropertyAlgorithmSet      Property = 0x20c // TPM_PT_ALGORITHM_SET
	PropertyLoadedCurves      Property = 0x20d // TPM_PT_LOADED_CURVES
	PropertyLockoutCounter    Property = 0x20e // TPM_PT_LOCKOUT_COUNTER
	PropertyMaxAuthFail       Property = 0x20f // TPM_PT_MAX_AUTH_FAIL
	PropertyLockoutInterval   Property = 0x210 // TPM_PT_LOCKOUT_INTERVAL
	PropertyLockoutRecovery   Property = 0x211 // TPM_PT_LOCKOUT_RECOVERY
	PropertyNVWriteRecovery   Property = 0x212 // TPM_PT_NV_WRITE_RECOVERY
	PropertyAuditCounter0     Property = 0x213 // TPM_PT_AUDIT_COUNTER_0
	PropertyAuditCounter1     Property = 0x214 // TPM_PT_AUDIT_COUNTER_1

	PropertyVar Property = PropertyPermanent
)

const (
	PropertyPCRSave        PropertyPCR = 0x00 // TPM_PT_PCR_SAVE
	PropertyPCRExtendL0    PropertyPCR = 0x01 // TPM_PT_PCR_EXTEND_L0
	PropertyPCRResetL0     PropertyPCR = 0x02 // TPM_PT_PCR_RESET_L0
	PropertyPCRExtendL1    PropertyPCR = 0x03 // TPM_PT_PCR_EXTEND_L1
	PropertyPCRResetL1     PropertyPCR = 0x04 // TPM_PT_PCR_RESET_L1
	PropertyPCRExtendL2    PropertyPCR = 0x05 // TPM_PT_PCR_EXTEND_L2
	PropertyPCRResetL2     PropertyPCR = 0x06 // TPM_PT_PCR_RESET_L2
	PropertyPCRExtendL3    PropertyPCR = 0x07 // TPM_PT_PCR_EXTEND_L3
	PropertyPCRResetL3     PropertyPCR = 0x08 // TPM_PT_PCR_RESET_L3
	PropertyPCRExtendL4    PropertyPCR = 0x09 // TPM_PT_PCR_EXTEND_L4
	PropertyPCRResetL4     PropertyPCR = 0x0a // TPM_PT_PCR_RESET_L4
	PropertyPCRNoIncrement PropertyPCR = 0x11 // TPM_PT_PCR_NO_INCREMENT
	PropertyPCRDRTMReset   PropertyPCR = 0x12 // TPM_PT_PCR_DRTM_RESET
	PropertyPCRPolicy      PropertyPCR = 0x13 // TPM_PT_PCR_POLICY
	PropertyPCRAuth        PropertyPCR = 0x14 // TPM_PT_PCR_AUTH

	PropertyPCRFirst PropertyPCR = PropertyPCRSave
)

const (
	HandleTypePCR           HandleType = 0x00 // TPM_HT_PCR
	HandleTypeNVIndex       HandleType = 0x01 // TPM_HT_NV_INDEX
	HandleTypeHMACSession   HandleType = 0x02 // TPM_HT_HMAC_SESSION
	HandleTypeLoadedSession HandleType = 0x02 // TPM_HT_LOADED_SESSION
	HandleTypePolicySession HandleType = 0x03 // TPM_HT_POLICY_SESSION
	HandleTypeSavedSession  HandleType = 0x03 // TPM_HT_SAVED_SESSION
	HandleTypePermanent     HandleType = 0x40 // TPM_HT_PERMANENT
	HandleTypeTransient     HandleType = 0x80 // TPM_HT_TRANSIENT
	HandleTypePersistent    HandleType = 0x81 // TPM_HT_PERSISTENT
)

const (
	HandleOwner       Handle = 0x40000001 // TPM_RH_OWNER
	HandleNull        Handle = 0x40000007 // TPM_RH_NULL
	HandleUnassigned  Handle = 0x40000008 // TPM_RH_UNASSIGNED
	HandlePW          Handle = 0x40000009 // TPM_RS_PW
	HandleLockout     Handle = 0x4000000a // TPM_RH_LOCKOUT
	HandleEndorsement Handle = 0x4000000b // TPM_RH_ENDORSEMENT
	HandlePlatform    Handle = 0x4000000c // TPM_RH_PLATFORM
	HandlePlatformNV  Handle = 0x4000000d // TPM_RH_PLATFORM_NV
)

const (
	AttrAsymmetric AlgorithmAttributes = 1 << 0  // TPMA_ALGORITHM_asymmetric
	AttrSymmetric  AlgorithmAttributes = 1 << 1  // TPMA_ALGORITHM_symmetric
	AttrHash       AlgorithmAttributes = 1 << 2  // TPMA_ALGORITHM_hash
	AttrObject     AlgorithmAttributes = 1 << 3  // TPMA_ALGORITHM_object
	AttrSigning    AlgorithmAttributes = 1 << 8  // TPMA_ALGORITHM_signing
	AttrEncrypting AlgorithmAttributes = 1 << 9  // TPMA_ALGORITHM_encrypting
	AttrMethod     AlgorithmAttributes = 1 << 10 // TPMA_ALGORITHM_method
)

const (
	AttrFixedTPM             ObjectAttributes = 1 << 1  // TPMA_OBJECT_fixedTPM
	AttrStClear              ObjectAttributes = 1 << 2  // TPMA_OBJECT_stClear
	AttrFixedParent          ObjectAttributes = 1 << 4  // TPMA_OBJECT_fixedParent
	AttrSensitiveDataOrigin  ObjectAttributes = 1 << 5  // TPMA_OBJECT_sensitiveDataOrigin
	AttrUserWithAuth         ObjectAttributes = 1 << 6  // TPMA_OBJECT_userWithAuth
	AttrAdminWithPolicy      ObjectAttributes = 1 << 7  // TPMA_OBJECT_adminWithPolicy
	AttrNoDA                 ObjectAttributes = 1 << 10 // TPMA_OBJECT_noDA
	AttrEncryptedDuplication ObjectAttributes = 1 << 11 // TPMA_OBJECT_encryptedDuplication
	AttrRestricted           ObjectAttributes = 1 << 16 // TPMA_OBJECT_restricted
	AttrDecrypt              ObjectAttributes = 1 << 17 // TPMA_OBJECT_decrypt
	AttrSign                 ObjectAttributes = 1 << 18 // TPMA_OBJECT_sign
)

const (
	LocalityZero  Locality = 1 << 0 // TPM_LOC_ZERO
	LocalityOne   Locality = 1 << 1 // TPM_LOC_ONE
	LocalityTwo   Locality = 1 << 2 // TPM_LOC_TWO
	LocalityThree Locality = 1 << 3 // TPM_LOC_THREE
	LocalityFour  Locality = 1 << 4 // TPM_LOC_FOUR
)

const (
	AttrOwnerAuthSet       PermanentAttributes = 1 << 0  // TPMA_PERMANENT_ownerAuthSet
	AttrEndorsementAuthSet PermanentAttributes = 1 << 1  // TPMA_PERMANENT_endorsementAuthSet
	AttrLockoutAuthSet     PermanentAttributes = 1 << 2  // TPMA_PERMANENT_lockoutAuthSet
	AttrDisableClear       PermanentAttributes = 1 << 8  // TPMA_PERMANENT_disableClear
	AttrInLockout          PermanentAttributes = 1 << 9  // TPMA_PERMANENT_inLockout
	AttrTPMGeneratedEPS    PermanentAttributes = 1 << 10 // TPMA_PERMANENT_tpmGeneratedEPS
)

const (
	AttrPhEnable   StartupClearAttributes = 1 << 0  // TPMA_STARTUP_CLEAR_phEnable
	AttrShEnable   StartupClearAttributes = 1 << 1  // TPMA_STARTUP_CLEAR_shEnable
	AttrEhEnable   StartupClearAttributes = 1 << 2  // TPMA_STARTUP_CLEAR_ehEnable
	AttrPhEnableNV StartupClearAttributes = 1 << 3  // TPMA_STARTUP_CLEAR_phEnableNV
	AttrOrderly    StartupClearAttributes = 1 << 31 // TPMA_STARTUP_CLEAR_orderly
)

const (
	AttrNV        CommandAttributes = 1 << 22 // TPMA_CC_nv
	AttrExtensive CommandAttributes = 1 << 23 // TPMA_CC_extensive
	AttrFlushed   CommandAttributes = 1 << 24 // TPMA_CC_flushed
	AttrRHandle   CommandAttributes = 1 << 28 // TPMA_CC_rHandle
	AttrV         CommandAttributes = 1 << 29 // TPMA_CC_V
)

const (
	AttrContinueSession SessionAttributes = 1 << iota // TPMA_SESSION_continueSession
	AttrAuditExclusive                                // TPMA_SESSION_auditExclusive
	AttrAuditReset                                    // TPMA_SESSION_auditReset
	_
	_
	AttrCommandEncrypt  // TPMA_SESSION_decrypt
	AttrResponseEncrypt // TPMA_SESSION_encrypt
	AttrAudit           // TPMA_SESSION_audit
)

const (
	TPMManufacturerAMD  TPMManufacturer = 0x414D4400 // AMD
	TPMManufacturerATML TPMManufacturer = 0x41544D4C // Atmel
	TPMManufacturerBRCM TPMManufacturer = 0x4252434D // Broadcom
	TPMManufacturerHPE  TPMManufacturer = 0x48504500 // HPE
	TPMManufacturerIBM  TPMManufacturer = 0x49424d00 // IBM
	TPMManufacturerIFX  TPMManufacturer = 0x49465800 // Infineon
	TPMManufacturerINTC TPMManufacturer = 0x494E5443 // Intel
	TPMManufacturerLEN  TPMManufacturer = 0x4C454E00 // Lenovo
	TPMManufacturerMSFT TPMManufacturer = 0x4D534654 // Microsoft
	TPMManufacturerNSM  TPMManufacturer = 0x4E534D20 // National Semiconductor
	TPMManufacturerNTZ  TPMManufacturer = 0x4E545A00 // Nationz
	TPMManufacturerNTC  TPMManufacturer = 0x4E544300 // Nuvoton Technology
	TPMManufacturerQCOM TPMManufacturer = 0x51434F4D // Qualcomm
	TPMManufacturerSMSC TPMManufacturer = 0x534D5343 // SMSC
	TPMManufacturerSTM  TPMManufacturer = 0x53544D20 // ST Microelectronics
	TPMManufacturerSMSN TPMManufacturer = 0x534D534E // Samsung
	TPMManufacturerSNS  TPMManufacturer = 0x534E5300 // Sinosun
	TPMManufacturerTXN  TPMManufacturer = 0x54584E00 // Texas Instruments
	TPMManufacturerWEC  TPMManufacturer = 0x57454300 // Winbond
	TPMManufacturerROCC TPMManufacturer = 0x524F4343 // Fuzhou Rockchip
	TPMManufacturerGOOG TPMManufacturer = 0x474F4F47 // Google
)

const (
	// CFBKey is used as the label for the symmetric key derivation used
	// in parameter encryption.
	CFBKey = "CFB"

	// SecretKey is used as the label for secret sharing used by
	// TPM2_StartAuthSession.
	SecretKey = "SECRET"

	// SessionKey is used as the label for the session key derivation.
	SessionKey = "ATH"

	// XORKey is used as the label for the XOR key derivation used in
	// parameter obfuscation.
	XORKey = "XOR"
)
