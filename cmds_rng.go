// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

// Section 16 - Random Number Generator

// GetRandom executes the TPM2_GetRandom command to return the requested
// number of bytes from the TPM's random number generator. The sessions that
// are currently set in slots 2 and 3 can be used for response encryption.
func (t *TPMContext) GetRandom(bytesRequested uint16) (randomBytes Digest, err error) {
	if err := t.RunCommand(CommandGetRandom, t.extraSessions(2),
		Delimiter,
		bytesRequested, Delimiter,
		Delimiter,
		&randomBytes); err != nil {
		return nil, err
	}

	return randomBytes, nil
}

// StirRandom executes the TPM2_StirRandom command to add the supplied entropy
// to the TPM's random number generator.
func (t *TPMContext) StirRandom(inData SensitiveData) error {
	return t.RunCommand(CommandStirRandom, t.extraSessions(2),
		Delimiter,
		inData)
}
