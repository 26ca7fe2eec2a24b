// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

// Section 22 - Integrity Collection (PCR)

import (
	"fmt"
)

// PCRValues contains a collection of PCR values, keyed by digest algorithm
// and PCR index.
type PCRValues map[HashAlgorithmId]map[int]Digest

// EnsureBank initializes the map of PCR indexes to values for the specified
// digest algorithm if one doesn't exist already.
func (v PCRValues) EnsureBank(alg HashAlgorithmId) {
	if _, ok := v[alg]; !ok {
		v[alg] = make(map[int]Digest)
	}
}

// SelectionList computes the list of PCR selections corresponding to this
// set of PCR values.
func (v PCRValues) SelectionList() (PCRSelectionList, error) {
	var out PCRSelectionList
	for alg, bank := range v {
		s := PCRSelection{Hash: alg}
		for pcr := range bank {
			s.Select = append(s.Select, pcr)
		}
		out = append(out, s)
	}
	return out.Sort()
}

// PCRExtend executes the TPM2_PCR_Extend command to extend the PCR
// associated with pcrContext with the supplied tagged digests. The PCR is
// extended with each digest in turn, in the bank associated with the digest's
// algorithm. An authorization session for pcrContext must be set in slot 1.
func (t *TPMContext) PCRExtend(pcrContext ResourceContext, digests TaggedHashList) error {
	pcrContextAuthSession, err := t.requiredSession(1)
	if err != nil {
		return err
	}

	return t.RunCommand(CommandPCRExtend, t.extraSessions(2),
		ResourceContextWithSession{Context: pcrContext, Session: pcrContextAuthSession}, Delimiter,
		digests)
}

// PCRRead executes the TPM2_PCR_Read command to return the values of the
// PCRs defined in pcrSelectionIn. The underlying command may not be able to
// read all of the requested PCRs in a single transaction, so this function
// will continually execute it, subtracting the PCRs returned so far from the
// requested selection, until all requested values have been read.
//
// On success, the current value of pcrUpdateCounter is returned along with
// the requested PCR values. An error is returned if the PCRs are updated
// between transactions.
func (t *TPMContext) PCRRead(pcrSelectionIn PCRSelectionList) (pcrUpdateCounter uint32, pcrValues PCRValues, err error) {
	remaining, err := pcrSelectionIn.Sort()
	if err != nil {
		return 0, nil, makeInvalidArgError("pcrSelectionIn", err.Error())
	}

	pcrValues = make(PCRValues)

	for i := 0; ; i++ {
		var updateCounter uint32
		var pcrSelectionOut PCRSelectionList
		var values DigestList

		if err := t.RunCommand(CommandPCRRead, nil,
			Delimiter,
			&remaining, Delimiter,
			Delimiter,
			&updateCounter, &pcrSelectionOut, &values); err != nil {
			return 0, nil, err
		}

		if i == 0 {
			pcrUpdateCounter = updateCounter
		} else if updateCounter != pcrUpdateCounter {
			return 0, nil, &InvalidResponseError{CommandPCRRead,
				fmt.Sprintf("TPM responded with the wrong pcrUpdateCounter value: got %d, expected %d",
					updateCounter, pcrUpdateCounter)}
		}

		if len(values) == 0 {
			if !pcrSelectionOut.IsEmpty() {
				return 0, nil, &InvalidResponseError{CommandPCRRead,
					"TPM returned no digests but indicated that it should have done"}
			}
			break
		}

		for _, s := range pcrSelectionOut {
			pcrValues.EnsureBank(s.Hash)
			for _, p := range s.Select {
				if len(values) == 0 {
					return 0, nil, &InvalidResponseError{CommandPCRRead, "TPM didn't return enough digests"}
				}
				if _, exists := pcrValues[s.Hash][p]; exists {
					return 0, nil, &InvalidResponseError{CommandPCRRead, "TPM responded with an unexpected PCR digest"}
				}
				pcrValues[s.Hash][p] = values[0]
				values = values[1:]
			}
		}
		if len(values) > 0 {
			return 0, nil, &InvalidResponseError{CommandPCRRead, "TPM returned too many digests"}
		}

		remaining, err = remaining.Remove(pcrSelectionOut)
		if err != nil {
			return 0, nil, &InvalidResponseError{CommandPCRRead,
				fmt.Sprintf("TPM returned digests for PCRs that weren't requested: %v", err)}
		}
		if remaining.IsEmpty() {
			break
		}
	}

	return pcrUpdateCounter, pcrValues, nil
}
