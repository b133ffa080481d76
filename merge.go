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

package unify

import (
	"github.com/purpleidea/unify/errwrap"
)

// Merge unifies the classes of the two given nodes, computing the surviving
// payload with the given merge function instead of asking the caller to pass
// it in directly. The function receives the payloads of the two current
// representatives. If it errors, then no union happens, no payload is stored,
// and the error is returned wrapped. The two finds that locate the
// representatives run first, so any path compression they do is kept either
// way. If both nodes are already in the same class, the merge
// function still runs, on the representative payload twice, and its result
// is stored. This is usually what you want when the payload merge is not
// idempotent-safe to skip, and it matches how a representative payload is
// maintained during type unification.
func (obj *Table[T]) Merge(a, b VarIndex, merge func(T, T) (T, error)) (VarIndex, error) {
	rootA := obj.Find(a)
	rootB := obj.Find(b)

	value, err := merge(obj.Value(rootA).Value, obj.Value(rootB).Value)
	if err != nil {
		return VarIndex(0), errwrap.Wrapf(err, "could not merge the values of %d and %d", rootA.Index(), rootB.Index())
	}

	if rootA == rootB { // same class already, just store the merged payload
		obj.Update(rootA, func(node VarValue[T]) VarValue[T] {
			node.Value = value
			return node
		})
		return rootA, nil
	}

	return obj.Union(rootA, rootB, value), nil
}
