// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"math/big"

	"golang.org/x/xerrors"
)

// NewCipherFunc is a function that constructs a new block cipher with the
// supplied key.
type NewCipherFunc func([]byte) (cipher.Block, error)

var symmetricAlgs = map[SymAlgorithmId]NewCipherFunc{
	SymAlgorithmAES: aes.NewCipher,
}

// RegisterCipher allows a go block cipher implementation to be registered for the
// specified algorithm, so binaries don't need to link against every implementation.
func RegisterCipher(alg SymAlgorithmId, fn NewCipherFunc) {
	symmetricAlgs[alg] = fn
}

func cryptComputeCpHash(hashAlg HashAlgorithmId, commandCode CommandCode, commandHandles []Name, cpBytes []byte) []byte {
	h := hashAlg.NewHash()

	binary.Write(h, binary.BigEndian, commandCode)
	for _, name := range commandHandles {
		h.Write([]byte(name))
	}
	h.Write(cpBytes)

	return h.Sum(nil)
}

func cryptComputeRpHash(hashAlg HashAlgorithmId, responseCode ResponseCode, commandCode CommandCode, rpBytes []byte) []byte {
	h := hashAlg.NewHash()

	binary.Write(h, binary.BigEndian, responseCode)
	binary.Write(h, binary.BigEndian, commandCode)
	h.Write(rpBytes)

	return h.Sum(nil)
}

// cryptComputeSessionHMAC computes the HMAC for a command or response
// authorization. For a command, pHash is the cpHash and nonceNewer is the
// caller nonce. For a response, pHash is the rpHash, nonceNewer is the TPM
// nonce and the decrypt and encrypt nonces are empty.
func cryptComputeSessionHMAC(alg HashAlgorithmId, key, pHash []byte, nonceNewer, nonceOlder, nonceDecrypt, nonceEncrypt Nonce, attrs SessionAttributes) []byte {
	h := hmac.New(func() hash.Hash { return alg.NewHash() }, key)

	h.Write(pHash)
	h.Write(nonceNewer)
	h.Write(nonceOlder)
	h.Write(nonceDecrypt)
	h.Write(nonceEncrypt)
	h.Write([]byte{uint8(attrs)})

	return h.Sum(nil)
}

func cryptComputeNonce(nonce []byte) error {
	_, err := rand.Read(nonce)
	return err
}

func cryptSymmetricEncrypt(alg SymAlgorithmId, key, iv, data []byte) error {
	switch alg {
	case SymAlgorithmXOR, SymAlgorithmNull:
		return errors.New("unsupported symmetric algorithm")
	default:
		c, err := alg.NewCipher(key)
		if err != nil {
			return xerrors.Errorf("cannot create cipher: %w", err)
		}
		// The TPM uses CFB cipher mode for all secret sharing
		s := cipher.NewCFBEncrypter(c, iv)
		s.XORKeyStream(data, data)
		return nil
	}
}

func cryptSymmetricDecrypt(alg SymAlgorithmId, key, iv, data []byte) error {
	switch alg {
	case SymAlgorithmXOR, SymAlgorithmNull:
		return errors.New("unsupported symmetric algorithm")
	default:
		c, err := alg.NewCipher(key)
		if err != nil {
			return xerrors.Errorf("cannot create cipher: %w", err)
		}
		// The TPM uses CFB cipher mode for all secret sharing
		s := cipher.NewCFBDecrypter(c, iv)
		s.XORKeyStream(data, data)
		return nil
	}
}

func cryptEncryptRSA(public *Public, paddingOverride RSASchemeId, data, label []byte) ([]byte, error) {
	if public.Type != ObjectTypeRSA {
		panic(fmt.Sprintf("unsupported key type %v", public.Type))
	}

	params := public.Params.RSADetail()

	exp := int(params.Exponent)
	if exp == 0 {
		exp = DefaultRSAExponent
	}
	pubKey := &rsa.PublicKey{N: new(big.Int).SetBytes(public.Unique.RSA()), E: exp}

	padding := params.Scheme.Scheme
	if paddingOverride != RSASchemeNull {
		padding = paddingOverride
	}

	switch padding {
	case RSASchemeOAEP:
		schemeHashAlg := public.NameAlg
		if paddingOverride == RSASchemeNull {
			schemeHashAlg = params.Scheme.Details.OAEP().HashAlg
		}
		if schemeHashAlg == HashAlgorithmNull {
			schemeHashAlg = public.NameAlg
		}
		if !schemeHashAlg.Available() {
			return nil, fmt.Errorf("unknown scheme hash algorithm or algorithm not linked in to binary: %v", schemeHashAlg)
		}
		h := schemeHashAlg.NewHash()
		// The TPM requires a NUL terminated label.
		labelCopy := make([]byte, len(label)+1)
		copy(labelCopy, label)
		return rsa.EncryptOAEP(h, rand.Reader, pubKey, data, labelCopy)
	case RSASchemeRSAES:
		return rsa.EncryptPKCS1v15(rand.Reader, pubKey, data)
	}
	return nil, fmt.Errorf("unsupported RSA scheme: %v", padding)
}

// cryptComputeEncryptedSalt generates a random salt and encrypts it to the
// supplied public key for use by TPM2_StartAuthSession.
func cryptComputeEncryptedSalt(public *Public) (EncryptedSecret, []byte, error) {
	if !public.NameAlg.Available() {
		return nil, nil, fmt.Errorf("cannot determine size of unsupported nameAlg %v", public.NameAlg)
	}
	digestSize := public.NameAlg.Size()

	switch public.Type {
	case ObjectTypeRSA:
		salt := make([]byte, digestSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, fmt.Errorf("cannot read random bytes for salt: %v", err)
		}
		encryptedSalt, err := cryptEncryptRSA(public, RSASchemeOAEP, salt, []byte(SecretKey))
		return encryptedSalt, salt, err
	}

	return nil, nil, fmt.Errorf("unsupported key type %v", public.Type)
}
