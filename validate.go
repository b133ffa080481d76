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
	"fmt"

	"github.com/purpleidea/unify/errwrap"
)

// Validate checks the forest invariants and returns every violation it finds
// as a single combined error, or nil if the table is consistent. It never
// mutates the table, the walks here deliberately skip path compression. This
// is mostly useful after PushVar, which lets a caller build arbitrary, and
// therefore possibly broken, forests.
func (obj *Table[T]) Validate() error {
	var reterr error
	length := obj.Len()

	for i := 0; i < length; i++ {
		node, _ := obj.Get(i)

		if p := node.Parent.Index(); p < 0 || p >= length {
			reterr = errwrap.Append(reterr, fmt.Errorf("node %d has parent %d which is out of bounds, length is %d", i, p, length))
			continue // the walks below would be meaningless
		}

		if node.Rank < 0 {
			reterr = errwrap.Append(reterr, fmt.Errorf("node %d has negative rank %d", i, node.Rank))
		}

		// Walk to the root without mutating anything. If we take more
		// steps than there are nodes, the parent relation has a cycle.
		depth := 0
		at := VarIndex(i)
		node, _ = obj.Get(at.Index())
		for node.Parent != at {
			at = node.Parent
			var ok bool
			node, ok = obj.Get(at.Index())
			if !ok {
				// already reported above for the node itself
				depth = -1
				break
			}
			depth++
			if depth > length {
				reterr = errwrap.Append(reterr, fmt.Errorf("node %d does not reach a root, the parent relation has a cycle", i))
				depth = -1
				break
			}
		}

		if depth > 0 { // we found a real root for this node
			if root, _ := obj.Get(at.Index()); depth > root.Rank {
				reterr = errwrap.Append(reterr, fmt.Errorf("node %d sits at depth %d below root %d which has rank %d", i, depth, at.Index(), root.Rank))
			}
		}
	}

	return reterr
}
