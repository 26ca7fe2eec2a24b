// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"crypto/aes"
	"encoding/binary"
	"errors"
	"fmt"

	internal_crypt "github.com/canonical/go-tpm2-esys/internal/crypt"
	"github.com/canonical/go-tpm2-esys/mu"
)

// isParamEncryptable indicates whether a command parameter is a sized buffer
// that can participate in session based parameter encryption.
func isParamEncryptable(param interface{}) bool {
	return mu.DetermineTPMKind(param) == mu.TPMKindSized
}

// ComputeSessionValue returns the key used for this session's HMAC and
// parameter encryption computations. The authorization value of the
// associated resource is excluded when the session is bound to it.
func (s *sessionParam) ComputeSessionValue() []byte {
	var key []byte
	key = append(key, s.session.sessionKey...)
	if s.IsAuth() && !s.session.isBoundTo(s.associatedResource) {
		key = append(key, s.associatedResource.authValue()...)
	}
	return key
}

func (p *sessionParams) decryptSession() (*sessionParam, int) {
	if p.decryptSessionIndex == -1 {
		return nil, -1
	}
	return p.sessions[p.decryptSessionIndex], p.decryptSessionIndex
}

func (p *sessionParams) encryptSession() (*sessionParam, int) {
	if p.encryptSessionIndex == -1 {
		return nil, -1
	}
	return p.sessions[p.encryptSessionIndex], p.encryptSessionIndex
}

func (p *sessionParams) hasDecryptSession() bool {
	return p.decryptSessionIndex != -1
}

// ComputeEncryptNonce records the TPM nonce of the response encryption session
// in the first auth session, where the encryption session is a different
// session that doesn't also encrypt the command parameter.
func (p *sessionParams) ComputeEncryptNonce() {
	s, i := p.encryptSession()
	if s == nil || i == 0 || !p.sessions[0].IsAuth() {
		return
	}
	ds, di := p.decryptSession()
	if ds != nil && di == i {
		return
	}

	p.sessions[0].encryptNonce = s.session.nonceTPM
}

// EncryptCommandParameter encrypts the first command parameter in place with
// the session that has the AttrCommandEncrypt attribute, if there is one. The
// first parameter must be a sized buffer, and only its payload after the size
// field is encrypted.
func (p *sessionParams) EncryptCommandParameter(cpBytes []byte) error {
	s, i := p.decryptSession()
	if s == nil {
		return nil
	}

	sessionValue := s.ComputeSessionValue()

	size := binary.BigEndian.Uint16(cpBytes)
	data := cpBytes[2 : size+2]

	symmetric := s.session.symmetric

	switch symmetric.Algorithm {
	case SymAlgorithmAES:
		if symmetric.Mode.Sym() != SymModeCFB {
			return errors.New("unsupported cipher mode")
		}
		k := internal_crypt.KDFa(s.session.hashAlg.GetHash(), sessionValue, []byte(CFBKey),
			s.session.nonceCaller, s.session.nonceTPM, int(symmetric.KeyBits.Sym())+(aes.BlockSize*8))
		offset := (symmetric.KeyBits.Sym() + 7) / 8
		symKey := k[0:offset]
		iv := k[offset:]
		if err := cryptSymmetricEncrypt(symmetric.Algorithm, symKey, iv, data); err != nil {
			return fmt.Errorf("AES encryption failed: %v", err)
		}
	case SymAlgorithmXOR:
		internal_crypt.XORObfuscation(s.session.hashAlg.GetHash(), sessionValue,
			s.session.nonceCaller, s.session.nonceTPM, data)
	default:
		return fmt.Errorf("unknown symmetric algorithm: %v", symmetric.Algorithm)
	}

	if i > 0 && p.sessions[0].IsAuth() {
		p.sessions[0].decryptNonce = s.session.nonceTPM
	}

	return nil
}

// DecryptResponseParameter decrypts the first response parameter in place with
// the session that has the AttrResponseEncrypt attribute, if there is one.
func (p *sessionParams) DecryptResponseParameter(rpBytes []byte) error {
	s, _ := p.encryptSession()
	if s == nil {
		return nil
	}

	sessionValue := s.ComputeSessionValue()

	size := binary.BigEndian.Uint16(rpBytes)
	data := rpBytes[2 : size+2]

	symmetric := s.session.symmetric

	switch symmetric.Algorithm {
	case SymAlgorithmAES:
		if symmetric.Mode.Sym() != SymModeCFB {
			return errors.New("unsupported cipher mode")
		}
		k := internal_crypt.KDFa(s.session.hashAlg.GetHash(), sessionValue, []byte(CFBKey),
			s.session.nonceTPM, s.session.nonceCaller, int(symmetric.KeyBits.Sym())+(aes.BlockSize*8))
		offset := (symmetric.KeyBits.Sym() + 7) / 8
		symKey := k[0:offset]
		iv := k[offset:]
		if err := cryptSymmetricDecrypt(symmetric.Algorithm, symKey, iv, data); err != nil {
			return fmt.Errorf("AES decryption failed: %v", err)
		}
	case SymAlgorithmXOR:
		internal_crypt.XORObfuscation(s.session.hashAlg.GetHash(), sessionValue,
			s.session.nonceTPM, s.session.nonceCaller, data)
	default:
		return fmt.Errorf("unknown symmetric algorithm: %v", symmetric.Algorithm)
	}

	return nil
}
