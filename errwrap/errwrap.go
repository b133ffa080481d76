// Unify
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package errwrap contains the error helpers used by this library. Only the
// recoverable error paths come through here, things like a failed payload
// merge or a validation walk that found several broken invariants. Precondition
// violations don't, those panic at the call site instead of returning.
package errwrap

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Wrapf annotates a caller-supplied error, usually one returned by a merge
// callback, with the context of the operation that ran it. A nil error stays
// nil, so it is safe to wrap unconditionally on the return path.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Append accumulates an error onto a running result, which is how a
// validation pass collects every violation it finds instead of stopping at
// the first one. Either side may be nil, in which case the other is returned
// unchanged, so `reterr = Append(reterr, err)` works as a loop body without
// any nil checks around it.
func Append(reterr, err error) error {
	if reterr == nil { // keep it simple, pass it through
		return err // which might even be nil
	}
	if err == nil { // no error, so don't do anything
		return reterr
	}
	// both are real errors
	return multierror.Append(reterr, err)
}
