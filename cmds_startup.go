// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

// Section 9 - Start-up

// Startup executes the TPM2_Startup command with the specified StartupType.
func (t *TPMContext) Startup(startupType StartupType) error {
	return t.RunCommand(CommandStartup, nil,
		Delimiter,
		startupType)
}

// Shutdown executes the TPM2_Shutdown command with the specified StartupType,
// which prepares the TPM for a power cycle.
func (t *TPMContext) Shutdown(shutdownType StartupType) error {
	return t.RunCommand(CommandShutdown, nil,
		Delimiter,
		shutdownType)
}
