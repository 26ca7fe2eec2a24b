// Copyright 2021 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package testutil_test

import (
	. "gopkg.in/check.v1"

	esys "github.com/canonical/go-tpm2-esys"
	. "github.com/canonical/go-tpm2-esys/testutil"
)

type baseTestSuite struct {
	BaseTest
}

var _ = Suite(&baseTestSuite{})

func (s *baseTestSuite) TestCleanupRunsInReverseOrder(c *C) {
	var order []int

	s.AddCleanup(func() { order = append(order, 1) })
	s.AddCleanup(func() { order = append(order, 2) })
	s.AddCleanup(func() { order = append(order, 3) })

	s.TearDownTest(c)
	c.Check(order, DeepEquals, []int{3, 2, 1})
}

func (s *baseTestSuite) TestFixtureCleanupRunsAfterCleanup(c *C) {
	var order []string

	s.AddFixtureCleanup(func(c *C) { order = append(order, "fixture") })
	s.AddCleanup(func() { order = append(order, "cleanup") })

	s.TearDownTest(c)
	c.Check(order, DeepEquals, []string{"cleanup", "fixture"})
}

type tpmTestSuite struct {
	TPMTest
}

var _ = Suite(&tpmTestSuite{})

func (s *tpmTestSuite) TestCommandLog(c *C) {
	_, err := s.TPM.GetRandom(16)
	c.Check(err, IsNil)

	record := s.LastCommand(c)
	code, err := record.GetCommandCode()
	c.Check(err, IsNil)
	c.Check(code, Equals, esys.CommandGetRandom)

	rc, err := record.GetResponseCode()
	c.Check(err, IsNil)
	c.Check(rc, Equals, esys.Success)
}

func (s *tpmTestSuite) TestForgetCommands(c *C) {
	_, err := s.TPM.GetRandom(16)
	c.Check(err, IsNil)
	c.Check(s.CommandLog(), Not(HasLen), 0)

	s.ForgetCommands()
	c.Check(s.CommandLog(), HasLen, 0)
}

type tpmSimulatorTestSuite struct {
	TPMSimulatorTest
}

var _ = Suite(&tpmSimulatorTestSuite{})

func (s *tpmSimulatorTestSuite) TestResetTPMSimulator(c *C) {
	s.ResetTPMSimulator(c)

	prop, err := s.TPM.GetTPMProperty(esys.PropertyStartupClear)
	c.Check(err, IsNil)
	c.Check(prop, Not(Equals), uint32(0))
}
