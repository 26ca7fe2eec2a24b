// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package esys

var (
	FormatString = makeDefaultFormatter
	MakeError    = makeError
)

// AdoptHandleContext registers the supplied HandleContext with this context's
// handle tracking, as if the corresponding entity had been created through it.
func (t *TPMContext) AdoptHandleContext(hc HandleContext) {
	t.handles.register(hc.(handleContextInternal))
}
