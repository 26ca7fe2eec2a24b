// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

/*
Package crypt implements the key derivation and obfuscation primitives
defined in part 1 of the TPM library specification.
*/
package crypt

import (
	"bytes"
	"crypto"
	"crypto/hmac"
	"encoding/binary"
	"hash"

	"github.com/canonical/go-sp800.108-kdf"
)

func getHashConstructor(hashAlg crypto.Hash) func() hash.Hash {
	return func() hash.Hash {
		return hashAlg.New()
	}
}

// kdfaOnce performs a single iteration of KDFa with an externally maintained
// counter, as required by the XOR obfuscation algorithm. The counter is
// incremented for the caller.
func kdfaOnce(hashAlg crypto.Hash, key, label, contextU, contextV []byte, sizeInBits int, counterInOut *int) []byte {
	*counterInOut++

	h := hmac.New(getHashConstructor(hashAlg), key)

	binary.Write(h, binary.BigEndian, uint32(*counterInOut))
	h.Write(label)
	h.Write([]byte{0})
	h.Write(contextU)
	h.Write(contextV)
	binary.Write(h, binary.BigEndian, uint32(sizeInBits))

	return h.Sum(nil)
}

// KDFa performs key derivation using the counter mode described in SP800-108
// and HMAC as the PRF, as defined in section 11.4.10.2 of the TPM library
// specification.
func KDFa(hashAlg crypto.Hash, key, label, contextU, contextV []byte, sizeInBits int) []byte {
	context := make([]byte, len(contextU)+len(contextV))
	copy(context, contextU)
	copy(context[len(contextU):], contextV)
	return kdf.CounterModeKey(kdf.NewHMACPRF(hashAlg), key, label, context, uint32(sizeInBits))
}

// KDFe performs key derivation using the "Concatenation KDF" described in
// SP800-56A, as defined in section 11.4.10.3 of the TPM library specification.
func KDFe(hashAlg crypto.Hash, z, label, partyUInfo, partyVInfo []byte, sizeInBits int) []byte {
	digestSize := hashAlg.Size()

	counter := 0
	var res bytes.Buffer

	for remaining := (sizeInBits + 7) / 8; remaining > 0; remaining -= digestSize {
		if remaining < digestSize {
			digestSize = remaining
		}

		counter++
		h := hashAlg.New()

		binary.Write(h, binary.BigEndian, uint32(counter))
		h.Write(z)
		h.Write(label)
		h.Write([]byte{0})
		h.Write(partyUInfo)
		h.Write(partyVInfo)

		res.Write(h.Sum(nil)[0:digestSize])
	}

	outKey := res.Bytes()

	if sizeInBits%8 != 0 {
		outKey[0] &= ((1 << uint(sizeInBits%8)) - 1)
	}
	return outKey
}

// XORObfuscation performs XOR obfuscation of data in place, as defined in
// section 11.4.6.3 of the TPM library specification. Applying it a second
// time with the same arguments reverses it.
func XORObfuscation(hashAlg crypto.Hash, key []byte, contextU, contextV, data []byte) {
	digestSize := hashAlg.Size()

	counter := 0
	datasize := len(data)
	remaining := datasize

	for ; remaining > 0; remaining -= digestSize {
		mask := kdfaOnce(hashAlg, key, []byte("XOR"), contextU, contextV, datasize*8, &counter)
		lim := remaining
		if digestSize < remaining {
			lim = digestSize
		}
		for i := 0; i < lim; i++ {
			data[datasize-remaining+i] ^= mask[i]
		}
	}
}
