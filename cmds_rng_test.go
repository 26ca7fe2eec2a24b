// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys_test

import (
	. "gopkg.in/check.v1"

	"github.com/canonical/go-tpm2-esys/testutil"
)

type rngSuite struct {
	testutil.TPMTest
}

var _ = Suite(&rngSuite{})

func (s *rngSuite) TestGetRandom(c *C) {
	random, err := s.TPM.GetRandom(16)
	c.Check(err, IsNil)
	c.Check(random, HasLen, 16)

	random2, err := s.TPM.GetRandom(16)
	c.Check(err, IsNil)
	c.Check(random2, Not(DeepEquals), random)
}

func (s *rngSuite) TestGetRandomLarger(c *C) {
	random, err := s.TPM.GetRandom(32)
	c.Check(err, IsNil)
	c.Check(random, HasLen, 32)
}

func (s *rngSuite) TestStirRandom(c *C) {
	c.Check(s.TPM.StirRandom([]byte("supercalifragilisticexpialidocious")), IsNil)
}
