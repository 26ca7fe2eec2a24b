// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"

	"github.com/canonical/go-tpm2-esys/mu"

	"golang.org/x/xerrors"
)

func makeInvalidArgError(name, msg string) error {
	return fmt.Errorf("invalid %s argument: %s", name, msg)
}

func wrapMarshallingError(commandCode CommandCode, context string, err error) error {
	return fmt.Errorf("cannot marshal %s for command %s: %v", context, commandCode, err)
}

func handleUnmarshallingError(context *cmdContext, scope string, err error) error {
	var s *mu.InvalidSelectorError
	if xerrors.Is(err, io.EOF) || xerrors.Is(err, io.ErrUnexpectedEOF) || xerrors.As(err, &s) {
		return &InvalidResponseError{context.commandCode, fmt.Sprintf("cannot unmarshal %s: %v", scope, err)}
	}

	return fmt.Errorf("cannot unmarshal %s for command %s: %v", scope, context.commandCode, err)
}

// isSessionAllowed indicates whether a command accepts an authorization
// area at all. The context and startup management commands never do.
func isSessionAllowed(commandCode CommandCode) bool {
	switch commandCode {
	case CommandStartup, CommandShutdown:
		return false
	case CommandContextLoad, CommandContextSave, CommandFlushContext:
		return false
	default:
		return true
	}
}

// CommandHeader is the header for a TPM command packet.
type CommandHeader struct {
	Tag         StructTag
	CommandSize uint32
	CommandCode CommandCode
}

// ResponseHeader is the header for a TPM response packet.
type ResponseHeader struct {
	Tag          StructTag
	ResponseSize uint32
	ResponseCode ResponseCode
}

type responseAuthAreaRawSlice struct {
	Data []authResponse `tpm2:"raw"`
}

type cmdContext struct {
	commandCode   CommandCode
	sessionParams *sessionParams
	responseCode  ResponseCode
	responseTag   StructTag
	responseBytes []byte
}

type delimiterSentinel struct{}

// Delimiter is a sentinel value used to delimit command handle, command parameter, response
// handle pointer and response parameter pointer blocks in the variable length params argument
// in TPMContext.RunCommand.
var Delimiter delimiterSentinel

// ResourceContextWithSession associates a ResourceContext with a session for authorization,
// and is provided to TPMContext.RunCommand in the command handle area for any handle that
// requires an authorization.
type ResourceContextWithSession struct {
	Context ResourceContext
	Session SessionContext
}

// RunCommandBytes is a low-level interface for executing the command defined by the specified
// commandCode. It will construct an appropriate header, but the caller is responsible for
// providing the rest of the serialized command structure in commandBytes. Valid values for
// tag are TagNoSessions if the authorization area is empty, else it must be TagSessions.
//
// If successful, this function will return the ResponseCode and StructTag from the response
// header along with the rest of the response structure (everything except for the header).
// It will not return an error if the TPM responds with an error as long as the returned
// response structure is correctly formed, but will return an error if marshalling of the
// command header fails or the transport returns an error.
func (t *TPMContext) RunCommandBytes(tag StructTag, commandCode CommandCode, commandBytes []byte) (ResponseCode, StructTag, []byte, error) {
	cHeader := CommandHeader{tag, 0, commandCode}
	cHeader.CommandSize = uint32(binary.Size(cHeader) + len(commandBytes))

	bytes, err := mu.MarshalToBytes(cHeader, mu.RawBytes(commandBytes))
	if err != nil {
		panic(fmt.Sprintf("cannot marshal complete command packet bytes: %v", err))
	}

	if _, err := t.transport.Write(bytes); err != nil {
		return 0, 0, nil, &TransportError{"write", err}
	}

	var rHeader ResponseHeader
	rHeaderSize := uint32(binary.Size(rHeader))
	rHeaderBytes := make([]byte, rHeaderSize)
	if n, err := io.ReadFull(t.transport, rHeaderBytes); err != nil {
		if xerrors.Is(err, io.ErrUnexpectedEOF) {
			return 0, 0, nil, &InvalidResponseError{commandCode, fmt.Sprintf("insufficient bytes for response header (got %d, "+
				"expected %d)", n, rHeaderSize)}
		}
		return 0, 0, nil, &TransportError{"read", err}
	}

	if _, err := mu.UnmarshalFromBytes(rHeaderBytes, &rHeader); err != nil {
		panic(fmt.Sprintf("cannot unmarshal response header: %v", err))
	}

	if rHeader.ResponseSize < rHeaderSize {
		return 0, 0, nil, &InvalidResponseError{commandCode, fmt.Sprintf("invalid responseSize value (%d)", rHeader.ResponseSize)}
	}

	responseBytes := make([]byte, rHeader.ResponseSize-rHeaderSize)
	if n, err := io.ReadFull(t.transport, responseBytes); err != nil {
		if xerrors.Is(err, io.ErrUnexpectedEOF) {
			return 0, 0, nil, &InvalidResponseError{commandCode, fmt.Sprintf("insufficient bytes for response payload (got %d, "+
				"expected %d)", n, len(responseBytes))}
		}
		return 0, 0, nil, &TransportError{"read", err}
	}

	return rHeader.ResponseCode, rHeader.Tag, responseBytes, nil
}

func (t *TPMContext) runCommandWithoutProcessingResponse(commandCode CommandCode, sessionParams *sessionParams, resources, params []interface{}) (*cmdContext, error) {
	handles := make([]interface{}, 0, len(resources))
	handleNames := make([]Name, 0, len(resources))

	for i, resource := range resources {
		switch r := resource.(type) {
		case HandleContext:
			if r == nil {
				handles = append(handles, HandleNull)
				handleNames = append(handleNames, nullResource().Name())
			} else {
				handles = append(handles, r.Handle())
				handleNames = append(handleNames, r.Name())
			}
		case nil:
			handles = append(handles, HandleNull)
			handleNames = append(handleNames, nullResource().Name())
		default:
			return nil, wrapMarshallingError(commandCode, "command handles",
				fmt.Errorf("cannot process command handle parameter at index %d: invalid type (%s)", i, reflect.TypeOf(resource)))
		}
	}

	if sessionParams.hasDecryptSession() && (len(params) == 0 || !isParamEncryptable(params[0])) {
		return nil, fmt.Errorf("command %s does not support command parameter encryption", commandCode)
	}

	cBytes := new(bytes.Buffer)

	if err := mu.MarshalToWriter(cBytes, handles...); err != nil {
		panic(fmt.Sprintf("cannot marshal command handles: %v", err))
	}

	cpBytes := new(bytes.Buffer)
	if err := mu.MarshalToWriter(cpBytes, params...); err != nil {
		return nil, wrapMarshallingError(commandCode, "command parameters", err)
	}

	tag := TagNoSessions
	if len(sessionParams.sessions) > 0 {
		tag = TagSessions
		authArea, err := sessionParams.buildCommandAuthArea(commandCode, handleNames, cpBytes.Bytes())
		if err != nil {
			return nil, fmt.Errorf("cannot build command auth area for command %s: %v", commandCode, err)
		}
		if err := mu.MarshalToWriter(cBytes, &authArea); err != nil {
			panic(fmt.Sprintf("cannot marshal command auth area: %v", err))
		}
	}

	if _, err := cpBytes.WriteTo(cBytes); err != nil {
		panic(fmt.Sprintf("cannot write command parameter bytes to command buffer: %v", err))
	}

	responseCode, responseTag, responseBytes, err := t.RunCommandBytes(tag, commandCode, cBytes.Bytes())
	if err != nil {
		return nil, err
	}

	if err := DecodeResponseCode(commandCode, responseCode); err != nil {
		return nil, err
	}

	return &cmdContext{
		commandCode:   commandCode,
		sessionParams: sessionParams,
		responseCode:  responseCode,
		responseTag:   responseTag,
		responseBytes: responseBytes}, nil
}

func (t *TPMContext) processResponse(context *cmdContext, handles, params []interface{}) error {
	for i, handle := range handles {
		_, isHandle := handle.(*Handle)
		if !isHandle {
			return fmt.Errorf("cannot process response handle parameter for command %s at index %d: invalid type (%s)",
				context.commandCode, i, reflect.TypeOf(handle))
		}
	}

	buf := bytes.NewReader(context.responseBytes)

	if len(handles) > 0 {
		if err := mu.UnmarshalFromReader(buf, handles...); err != nil {
			return handleUnmarshallingError(context, "response handles", err)
		}
	}

	var rpBuf *bytes.Reader

	switch context.responseTag {
	case TagSessions:
		var parameterSize uint32
		if err := mu.UnmarshalFromReader(buf, &parameterSize); err != nil {
			return handleUnmarshallingError(context, "parameterSize field", err)
		}
		rpBytes := make([]byte, parameterSize)
		if _, err := io.ReadFull(buf, rpBytes); err != nil {
			return handleUnmarshallingError(context, "response parameters",
				fmt.Errorf("error reading parameters to temporary buffer: %v", err))
		}

		authArea := responseAuthAreaRawSlice{make([]authResponse, len(context.sessionParams.sessions))}
		if err := mu.UnmarshalFromReader(buf, &authArea); err != nil {
			return handleUnmarshallingError(context, "response auth area", err)
		}
		if err := context.sessionParams.processResponseAuthArea(authArea.Data, context.responseCode, context.commandCode, rpBytes); err != nil {
			return &InvalidResponseError{context.commandCode, fmt.Sprintf("cannot process response auth area: %v", err)}
		}

		// The TPM flushes a session when it authorizes a command without
		// the continueSession attribute.
		for i, s := range context.sessionParams.sessions {
			if s.session == nil || s.session.Handle() == HandlePW {
				continue
			}
			if authArea.Data[i].SessionAttrs&AttrContinueSession == 0 {
				t.handles.setAsFlushed(s.session.Handle())
			}
		}

		rpBuf = bytes.NewReader(rpBytes)
	case TagNoSessions:
		rpBuf = buf
	default:
		return &InvalidResponseError{context.commandCode, fmt.Sprintf("unexpected response tag: %v", context.responseTag)}
	}

	if len(params) > 0 {
		if err := mu.UnmarshalFromReader(rpBuf, params...); err != nil {
			return handleUnmarshallingError(context, "response parameters", err)
		}
	}

	if buf.Len() > 0 {
		return &InvalidResponseError{context.commandCode, fmt.Sprintf("response contains %d trailing bytes", buf.Len())}
	}

	return nil
}

// RunCommand is the high-level generic interface for executing the command specified by
// commandCode. All of the methods on TPMContext exported by this package that execute
// commands on the TPM are essentially wrappers around this function. It takes care of
// marshalling command handles and command parameters, as well as constructing and
// marshalling the authorization area and choosing the correct StructTag value. It takes
// care of unmarshalling response handles and response parameters, as well as unmarshalling
// the response authorization area and performing checks on the authorization response.
//
// The variable length params argument provides a mechanism for the caller to provide
// command handles, command parameters, response handle pointers and response parameter
// pointers (in that order), with each group of arguments being separated by the Delimiter
// sentinel value.
//
// Command handles are provided as HandleContext types if they do not require an
// authorization. For command handles that require an authorization, they are provided using
// the ResourceContextWithSession type. This links the ResourceContext to a session. If the
// authorization value of the TPM entity is required as part of the authorization, this is
// obtained from the supplied ResourceContext. A nil HandleContext is automatically converted
// to a handle with the value of HandleNull.
//
// Command parameters are provided as the go equivalent types for the types defined in the
// TPM Library Specification.
//
// Response handles are provided as pointers to Handle values.
//
// Response parameters are provided as pointers to values of the go equivalent types for the
// types defined in the TPM Library Specification.
//
// The caller can provide additional sessions that aren't associated with a TPM entity (and
// therefore not used for authorization) via the sessions parameter, for the purposes of
// session based parameter encryption.
//
// In addition to returning an error if any marshalling or unmarshalling fails, or if the
// transport returns an error, this function will also return an error if the TPM responds
// with any ResponseCode other than Success.
func (t *TPMContext) RunCommand(commandCode CommandCode, sessions []SessionContext, params ...interface{}) error {
	var commandHandles []interface{}
	var commandParams []interface{}
	var responseHandles []interface{}
	var responseParams []interface{}
	sessionParams := newSessionParams()

	sentinels := 0
	for _, param := range params {
		if param == Delimiter {
			sentinels++
			continue
		}

		switch sentinels {
		case 0:
			switch p := param.(type) {
			case ResourceContextWithSession:
				commandHandles = append(commandHandles, p.Context)
				if err := sessionParams.validateAndAppendAuth(p); err != nil {
					return fmt.Errorf("cannot process ResourceContextWithSession for command %s at index %d: %v", commandCode, len(commandHandles), err)
				}
			default:
				commandHandles = append(commandHandles, param)
			}
		case 1:
			commandParams = append(commandParams, param)
		case 2:
			responseHandles = append(responseHandles, param)
		case 3:
			responseParams = append(responseParams, param)
		}
	}

	if err := sessionParams.validateAndAppendExtra(sessions); err != nil {
		return fmt.Errorf("cannot process non-auth SessionContext parameters for command %s: %v", commandCode, err)
	}

	if len(sessionParams.sessions) > 0 && !isSessionAllowed(commandCode) {
		return fmt.Errorf("command %s does not accept any sessions", commandCode)
	}

	ctx, err := t.runCommandWithoutProcessingResponse(commandCode, sessionParams, commandHandles, commandParams)
	if err != nil {
		return err
	}

	return t.processResponse(ctx, responseHandles, responseParams)
}
