// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/canonical/go-tpm2-esys/mu"
)

type authCommand struct {
	SessionHandle Handle
	Nonce         Nonce
	SessionAttrs  SessionAttributes
	HMAC          Auth
}

type authResponse struct {
	Nonce        Nonce
	SessionAttrs SessionAttributes
	HMAC         Auth
}

type commandAuthArea []authCommand

// Marshal implements mu.CustomMarshaller.Marshal. The auth area is
// prefixed on the wire with its size in bytes as a uint32.
func (a *commandAuthArea) Marshal(buf io.Writer) error {
	tmpBuf := new(bytes.Buffer)
	if err := mu.MarshalToWriter(tmpBuf, mu.Raw([]authCommand(*a))); err != nil {
		panic(fmt.Sprintf("cannot marshal raw auth area: %v", err))
	}

	if err := binary.Write(buf, binary.BigEndian, uint32(tmpBuf.Len())); err != nil {
		return fmt.Errorf("cannot write size of auth area to buffer: %v", err)
	}

	n, err := buf.Write(tmpBuf.Bytes())
	if err != nil {
		return fmt.Errorf("cannot write marshalled auth area to buffer: %v", err)
	}
	if n != tmpBuf.Len() {
		return errors.New("cannot write complete marshalled auth area to buffer")
	}
	return nil
}

// Unmarshal implements mu.CustomMarshaller.Unmarshal.
func (a *commandAuthArea) Unmarshal(buf io.Reader) error {
	return errors.New("no need to unmarshal a command's auth area")
}

// sessionParam associates a session with the resource it authorizes for a
// single command dispatch. Sessions used only for parameter encryption have
// no associated resource.
type sessionParam struct {
	session            *sessionContext
	associatedResource resourceContextInternal

	decryptNonce Nonce
	encryptNonce Nonce
}

// IsAuth indicates whether this session is used to authorize a resource.
func (s *sessionParam) IsAuth() bool {
	return s.associatedResource != nil
}

// IsPassword indicates whether this session provides plaintext password
// authorization.
func (s *sessionParam) IsPassword() bool {
	return s.session.Handle() == HandlePW
}

func (s *sessionParam) buildCommandAuth(commandCode CommandCode, commandHandles []Name, cpBytes []byte) *authCommand {
	if s.IsPassword() {
		var auth Auth
		if s.associatedResource != nil {
			auth = s.associatedResource.authValue()
		}
		return &authCommand{SessionHandle: HandlePW, SessionAttrs: AttrContinueSession, HMAC: auth}
	}

	attrs := s.session.Attrs()
	var hmac []byte

	key := s.ComputeSessionValue()
	if len(key) > 0 && s.session.hashAlg.Available() {
		cpHash := cryptComputeCpHash(s.session.hashAlg, commandCode, commandHandles, cpBytes)
		hmac = cryptComputeSessionHMAC(s.session.hashAlg, key, cpHash,
			s.session.nonceCaller, s.session.nonceTPM, s.decryptNonce, s.encryptNonce, attrs)
	}

	return &authCommand{
		SessionHandle: s.session.Handle(),
		Nonce:         s.session.nonceCaller,
		SessionAttrs:  attrs,
		HMAC:          hmac}
}

func (s *sessionParam) processResponseAuth(resp authResponse, responseCode ResponseCode, commandCode CommandCode, rpBytes []byte) error {
	if s.IsPassword() {
		if len(resp.HMAC) != 0 {
			return errors.New("non-zero length HMAC for password authorization")
		}
		return nil
	}

	s.session.nonceTPM = resp.Nonce

	key := s.ComputeSessionValue()
	if len(key) == 0 || !s.session.hashAlg.Available() {
		return nil
	}

	rpHash := cryptComputeRpHash(s.session.hashAlg, responseCode, commandCode, rpBytes)
	hmac := cryptComputeSessionHMAC(s.session.hashAlg, key, rpHash,
		s.session.nonceTPM, s.session.nonceCaller, nil, nil, resp.SessionAttrs)

	if !bytes.Equal(hmac, resp.HMAC) {
		return errors.New("incorrect HMAC")
	}

	return nil
}

// sessionParams collects the sessions supplied for a single command dispatch,
// in the order in which their authorizations appear in the auth area.
type sessionParams struct {
	sessions []*sessionParam

	decryptSessionIndex int
	encryptSessionIndex int
}

func newSessionParams() *sessionParams {
	return &sessionParams{decryptSessionIndex: -1, encryptSessionIndex: -1}
}

func (p *sessionParams) append(s *sessionParam) error {
	if len(p.sessions) >= 3 {
		return errors.New("too many sessions")
	}

	if !s.IsPassword() {
		if s.session.flags&sessionContextLoaded == 0 {
			return errors.New("session is not complete and loaded")
		}

		attrs := s.session.Attrs()
		if attrs&(AttrCommandEncrypt|AttrResponseEncrypt) != 0 {
			if s.session.symmetric == nil || s.session.symmetric.Algorithm == SymAlgorithmNull {
				return errors.New("session has no symmetric algorithm for parameter encryption")
			}
		}
		if attrs&AttrCommandEncrypt != 0 {
			if p.decryptSessionIndex != -1 {
				return errors.New("only one session can be used for command parameter encryption")
			}
			p.decryptSessionIndex = len(p.sessions)
		}
		if attrs&AttrResponseEncrypt != 0 {
			if p.encryptSessionIndex != -1 {
				return errors.New("only one session can be used for response parameter encryption")
			}
			p.encryptSessionIndex = len(p.sessions)
		}
	}

	p.sessions = append(p.sessions, s)
	return nil
}

func (p *sessionParams) validateAndAppendAuth(in ResourceContextWithSession) error {
	if in.Context == nil {
		return errors.New("invalid resource context: nil")
	}
	resource, ok := in.Context.(resourceContextInternal)
	if !ok {
		return errors.New("invalid resource context: unsupported type")
	}
	if resource.Handle() == HandleUnassigned {
		return errors.New("invalid resource context: resource has been closed")
	}

	session := in.Session
	if session == nil {
		session = pwSession()
	}
	sc, ok := session.(*sessionContext)
	if !ok {
		return errors.New("invalid session context: unsupported type")
	}

	return p.append(&sessionParam{session: sc, associatedResource: resource})
}

func (p *sessionParams) validateAndAppendExtra(sessions []SessionContext) error {
	for i, session := range sessions {
		if session == nil {
			continue
		}
		sc, ok := session.(*sessionContext)
		if !ok {
			return fmt.Errorf("invalid session context at index %d: unsupported type", i)
		}
		if sc.Handle() == HandlePW {
			return fmt.Errorf("invalid session context at index %d: the password session can only authorize a resource", i)
		}
		if err := p.append(&sessionParam{session: sc}); err != nil {
			return fmt.Errorf("cannot append session context at index %d: %v", i, err)
		}
	}
	return nil
}

func (p *sessionParams) computeCallerNonces() error {
	for _, s := range p.sessions {
		if s.IsPassword() {
			continue
		}
		if err := cryptComputeNonce(s.session.nonceCaller); err != nil {
			return fmt.Errorf("cannot compute new caller nonce: %v", err)
		}
	}
	return nil
}

func (p *sessionParams) buildCommandAuthArea(commandCode CommandCode, commandHandles []Name, cpBytes []byte) (commandAuthArea, error) {
	if err := p.computeCallerNonces(); err != nil {
		return nil, fmt.Errorf("cannot compute caller nonces: %v", err)
	}

	if err := p.EncryptCommandParameter(cpBytes); err != nil {
		return nil, fmt.Errorf("cannot encrypt first command parameter: %v", err)
	}

	p.ComputeEncryptNonce()

	var area commandAuthArea
	for _, s := range p.sessions {
		a := s.buildCommandAuth(commandCode, commandHandles, cpBytes)
		area = append(area, *a)
	}

	return area, nil
}

func (p *sessionParams) processResponseAuthArea(authResponses []authResponse, responseCode ResponseCode, commandCode CommandCode, rpBytes []byte) error {
	for i, resp := range authResponses {
		if err := p.sessions[i].processResponseAuth(resp, responseCode, commandCode, rpBytes); err != nil {
			return fmt.Errorf("encountered an error for session at index %d: %v", i, err)
		}
	}

	if err := p.DecryptResponseParameter(rpBytes); err != nil {
		return fmt.Errorf("cannot decrypt first response parameter: %v", err)
	}

	return nil
}
