// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

// Section 30 - Capability Commands

import (
	"fmt"
)

// GetCapability executes the TPM2_GetCapability command to fetch values of
// the specified capability. The underlying command may not be able to return
// all of the requested values in a single transaction, so this function will
// continually execute it until all requested values have been fetched or
// there are no more values of the requested capability.
func (t *TPMContext) GetCapability(capability Capability, property, propertyCount uint32) (*CapabilityData, error) {
	var capabilityData *CapabilityData

	nextProperty := property
	remaining := propertyCount

	for {
		var moreData bool
		var data CapabilityData

		if err := t.RunCommand(CommandGetCapability, nil,
			Delimiter,
			capability, nextProperty, remaining, Delimiter,
			Delimiter,
			&moreData, &data); err != nil {
			return nil, err
		}

		if data.Capability != capability {
			return nil, &InvalidResponseError{CommandGetCapability,
				fmt.Sprintf("unexpected capability %v", data.Capability)}
		}

		if capabilityData == nil {
			capabilityData = &data
		} else {
			var s int
			switch capability {
			case CapabilityAlgs:
				l := append(capabilityData.Data.Algorithms(), data.Data.Algorithms()...)
				capabilityData.Data = CapabilitiesU{Data: l}
				s = len(data.Data.Algorithms())
			case CapabilityHandles:
				l := append(capabilityData.Data.Handles(), data.Data.Handles()...)
				capabilityData.Data = CapabilitiesU{Data: l}
				s = len(data.Data.Handles())
			case CapabilityCommands:
				l := append(capabilityData.Data.Command(), data.Data.Command()...)
				capabilityData.Data = CapabilitiesU{Data: l}
				s = len(data.Data.Command())
			case CapabilityPPCommands:
				l := append(capabilityData.Data.PPCommands(), data.Data.PPCommands()...)
				capabilityData.Data = CapabilitiesU{Data: l}
				s = len(data.Data.PPCommands())
			case CapabilityAuditCommands:
				l := append(capabilityData.Data.AuditCommands(), data.Data.AuditCommands()...)
				capabilityData.Data = CapabilitiesU{Data: l}
				s = len(data.Data.AuditCommands())
			case CapabilityPCRs:
				l, err := capabilityData.Data.AssignedPCR().Merge(data.Data.AssignedPCR())
				if err != nil {
					return nil, &InvalidResponseError{CommandGetCapability,
						fmt.Sprintf("cannot merge returned PCR selections: %v", err)}
				}
				capabilityData.Data = CapabilitiesU{Data: l}
				s = len(data.Data.AssignedPCR())
			case CapabilityTPMProperties:
				l := append(capabilityData.Data.TPMProperties(), data.Data.TPMProperties()...)
				capabilityData.Data = CapabilitiesU{Data: l}
				s = len(data.Data.TPMProperties())
			case CapabilityPCRProperties:
				l := append(capabilityData.Data.PCRProperties(), data.Data.PCRProperties()...)
				capabilityData.Data = CapabilitiesU{Data: l}
				s = len(data.Data.PCRProperties())
			case CapabilityECCCurves:
				l := append(capabilityData.Data.ECCCurves(), data.Data.ECCCurves()...)
				capabilityData.Data = CapabilitiesU{Data: l}
				s = len(data.Data.ECCCurves())
			case CapabilityAuthPolicies:
				l := append(capabilityData.Data.AuthPolicies(), data.Data.AuthPolicies()...)
				capabilityData.Data = CapabilitiesU{Data: l}
				s = len(data.Data.AuthPolicies())
			default:
				return nil, &InvalidResponseError{CommandGetCapability,
					fmt.Sprintf("unexpected capability %v", data.Capability)}
			}
			nextProperty += uint32(s)
			remaining -= uint32(s)
		}

		if !moreData || remaining < 1 {
			break
		}
	}

	return capabilityData, nil
}

// GetCapabilityTPMProperties is a convenience function around GetCapability
// that fetches values of the CapabilityTPMProperties capability.
func (t *TPMContext) GetCapabilityTPMProperties(first Property, propertyCount uint32) (TaggedTPMPropertyList, error) {
	data, err := t.GetCapability(CapabilityTPMProperties, uint32(first), propertyCount)
	if err != nil {
		return nil, err
	}
	return data.Data.TPMProperties(), nil
}

// GetCapabilityPCRs is a convenience function around GetCapability that
// returns the set of PCRs that are implemented, across every supported bank.
func (t *TPMContext) GetCapabilityPCRs() (PCRSelectionList, error) {
	data, err := t.GetCapability(CapabilityPCRs, 0, CapabilityMaxProperties)
	if err != nil {
		return nil, err
	}
	return data.Data.AssignedPCR(), nil
}

// GetCapabilityHandles is a convenience function around GetCapability that
// fetches the list of active handles of the type of the supplied handle.
func (t *TPMContext) GetCapabilityHandles(firstHandle Handle, propertyCount uint32) (HandleList, error) {
	data, err := t.GetCapability(CapabilityHandles, uint32(firstHandle), propertyCount)
	if err != nil {
		return nil, err
	}
	return data.Data.Handles(), nil
}

// TestParms executes the TPM2_TestParms command to check that the supplied
// algorithm parameters are supported by the TPM.
func (t *TPMContext) TestParms(parameters *PublicParams) error {
	return t.RunCommand(CommandTestParms, nil,
		Delimiter,
		parameters)
}
