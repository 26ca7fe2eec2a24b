// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys_test

import (
	. "gopkg.in/check.v1"

	. "github.com/canonical/go-tpm2-esys"
	internal_testutil "github.com/canonical/go-tpm2-esys/internal/testutil"
	"github.com/canonical/go-tpm2-esys/testutil"
)

type startupSuite struct {
	testutil.TPMSimulatorTest
}

var _ = Suite(&startupSuite{})

func (s *startupSuite) TestResetCycle(c *C) {
	s.ResetTPMSimulator(c)

	prop, err := s.TPM.GetTPMProperty(PropertyStartupClear)
	c.Check(err, IsNil)
	c.Check(StartupClearAttributes(prop)&AttrShEnable, Equals, AttrShEnable)
}

func (s *startupSuite) TestResume(c *C) {
	c.Check(s.TPM.Shutdown(StartupState), IsNil)
	c.Check(s.Mssim.Reset(), IsNil)
	c.Check(s.TPM.Startup(StartupState), IsNil)
}

func (s *startupSuite) TestResumeWithoutSavedState(c *C) {
	c.Check(s.TPM.Shutdown(StartupClear), IsNil)
	c.Check(s.Mssim.Reset(), IsNil)

	err := s.TPM.Startup(StartupState)
	c.Check(IsTPMParameterError(err, ErrorValue, CommandStartup, 1), internal_testutil.IsTrue)

	c.Check(s.TPM.Startup(StartupClear), IsNil)
}
