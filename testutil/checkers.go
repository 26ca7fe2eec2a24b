// Copyright 2020 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package testutil

import (
	. "gopkg.in/check.v1"

	internal_testutil "github.com/canonical/go-tpm2-esys/internal/testutil"
)

// Checkers re-exported for use by external test suites.
var (
	// IsTrue determines whether a boolean value is true.
	IsTrue Checker = internal_testutil.IsTrue

	// IsFalse determines whether a boolean value is false.
	IsFalse Checker = internal_testutil.IsFalse

	// ConvertibleTo determines whether a value of one type can be
	// converted to another type.
	ConvertibleTo Checker = internal_testutil.ConvertibleTo

	// ErrorIs determines whether any error in a chain has a specific
	// value, using xerrors.Is.
	ErrorIs Checker = internal_testutil.ErrorIs

	// ErrorAs determines whether any error in a chain has a specific
	// type, using xerrors.As.
	ErrorAs Checker = internal_testutil.ErrorAs

	// LenEquals determines whether a value has a specified length.
	LenEquals Checker = internal_testutil.LenEquals
)

// IsOneOf determines whether a value is contained in the provided slice,
// using the specified checker.
func IsOneOf(checker Checker) Checker {
	return internal_testutil.IsOneOf(checker)
}

// DecodeHexString decodes the supplied string into a byte slice, asserting
// on failure.
var DecodeHexString = internal_testutil.DecodeHexString
