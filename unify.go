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

// Package unify implements a union-find data structure which can be rolled
// back to an earlier snapshot. It is commonly used for type unification,
// where a solver speculatively unifies some type variables, and then needs to
// throw that work away when a candidate solution turns out not to fit.
//
// The structure is a forest of nodes stored in a flat vector and addressed
// by index. Each node carries a parent pointer, a rank used by the union
// heuristic, and a user supplied payload which belongs to the equivalence
// class the node is in. Union picks the new root by rank and stores a caller
// supplied payload on it, merging payloads is the caller's job. Find follows
// the parent pointers to the representative and compresses the path on the
// way back down.
//
// Every mutation, including the writes done by path compression, goes
// through the single journaled set path of the underlying snapvec vector.
// That's what makes rollback exact: a find can rewrite parent pointers that
// no union logically changed, and those rewrites still unwind. Snapshots
// nest, see the undo package for the counting semantics.
//
// This package is not thread-safe. Wrap it with the synchronization
// primitives of your choosing if you need that.
package unify

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/purpleidea/unify/snapvec"
	"github.com/purpleidea/unify/undo"
)

// VarIndex identifies a node by its position in the table. Two of these are
// equal exactly when their integers are equal.
type VarIndex int

// Index returns the integer position this index refers to.
func (obj VarIndex) Index() int {
	return int(obj)
}

// String returns a human readable representation of this index.
func (obj VarIndex) String() string {
	return fmt.Sprintf("VarIndex { index: %d }", int(obj))
}

// VarValue is a single node of the forest. A node is a root exactly when its
// Parent field equals its own index.
type VarValue[T any] struct {
	// Value is the user supplied payload of the equivalence class this
	// node belongs to. Only the copy stored at the root is meaningful.
	Value T

	// Rank is an upper bound on the height of the subtree rooted here. It
	// is only meaningful while this node is a root. When a node stops
	// being a root its rank is simply left behind.
	Rank int

	// Parent is the parent pointer. It points at this node's own index
	// when this node is a root.
	Parent VarIndex
}

// String returns a human readable representation of this node.
func (obj VarValue[T]) String() string {
	return fmt.Sprintf("VarValue { value: %v, rank: %d, parent: %s }", obj.Value, obj.Rank, obj.Parent)
}

// Cmp compares this node to another and returns a descriptive error if they
// differ. The rank is intentionally not compared, it only steers which root
// survives a union and says nothing about the node's class or payload.
func (obj VarValue[T]) Cmp(v VarValue[T]) error {
	if obj.Parent != v.Parent {
		return fmt.Errorf("parent does not match (%s != %s)", obj.Parent, v.Parent)
	}
	if !reflect.DeepEqual(obj.Value, v.Value) {
		return fmt.Errorf("value does not match (%v != %v)", obj.Value, v.Value)
	}
	return nil
}

// Equals is the boolean version of Cmp.
func (obj VarValue[T]) Equals(v VarValue[T]) bool {
	return obj.Cmp(v) == nil
}

// Snapshot is an opaque checkpoint token for a table. It wraps the
// checkpoint of the underlying vector.
type Snapshot struct {
	snapshot snapvec.Snapshot
}

// Table is a union-find forest with snapshot and rollback support. Use
// NewTable to build one. The table itself holds no state above the vector of
// nodes, which is why rolling the vector back restores it completely.
type Table[T any] struct {
	// Debug lets this struct log extra messages.
	Debug bool

	// Logf is a logger for debug messages if desired.
	Logf func(format string, v ...interface{})

	values *snapvec.Vec[VarValue[T]]
}

// NewTable creates an empty table. The capacity is an advisory
// pre-allocation hint, zero is fine.
func NewTable[T any](capacity int) *Table[T] {
	return &Table[T]{
		values: snapvec.New[VarValue[T]](capacity),
	}
}

// logf is a safe wrapper around the public Logf handle.
func (obj *Table[T]) logf(format string, v ...interface{}) {
	if obj.Logf == nil {
		return
	}
	obj.Logf(format, v...)
}

// Len returns the number of nodes in the table.
func (obj *Table[T]) Len() int {
	return obj.values.Len()
}

// Push appends a fresh node carrying the given payload and returns its
// index. The node starts out as the root of its own singleton class with a
// rank of zero.
func (obj *Table[T]) Push(value T) VarIndex {
	i := obj.values.Len() // the index the new node will land at
	obj.values.Push(VarValue[T]{
		Value:  value,
		Rank:   0,
		Parent: VarIndex(i),
	})
	return VarIndex(i)
}

// PushVar appends the given node verbatim and returns its index. This is an
// escape hatch for deserialization and testing, the caller is responsible
// for keeping the forest invariants intact.
func (obj *Table[T]) PushVar(node VarValue[T]) VarIndex {
	return VarIndex(obj.values.Push(node))
}

// Get returns a copy of the node at position i, or false if it is out of
// range.
func (obj *Table[T]) Get(i int) (VarValue[T], bool) {
	return obj.values.Get(i)
}

// Value returns a copy of the node at the given index. An out of range index
// is a programming error and panics.
func (obj *Table[T]) Value(idx VarIndex) VarValue[T] {
	return obj.values.MustGet(idx.Index())
}

// Index returns the stored parent field of the node at position i. This is a
// coarse accessor which leaks the forest layout, use it only as a convenient
// producer of VarIndex values. An out of range position is a programming
// error and panics.
func (obj *Table[T]) Index(i int) VarIndex {
	return obj.values.MustGet(i).Parent
}

// Set overwrites the node at the given index. The write is journaled if a
// snapshot is open. An out of range index is a programming error and panics.
func (obj *Table[T]) Set(idx VarIndex, node VarValue[T]) {
	obj.values.Set(idx.Index(), node)
}

// Update reads the node at the given index, applies the function to it, and
// writes the result back through the journaled set path.
func (obj *Table[T]) Update(idx VarIndex, fn func(VarValue[T]) VarValue[T]) {
	obj.Set(idx, fn(obj.Value(idx)))
}

// Find returns the representative of the class the given node belongs to,
// compressing the path behind it. Two nodes are in the same class exactly
// when their representatives are equal. The compression writes are journaled
// like any other write, so a rollback restores the uncompressed tree too.
func (obj *Table[T]) Find(idx VarIndex) VarIndex {
	node := obj.Value(idx)
	if node.Parent == idx {
		return idx
	}
	root := obj.Find(node.Parent)
	if root != node.Parent { // compress this hop
		if obj.Debug {
			obj.logf("find(%d): compressing %d -> %d", idx.Index(), node.Parent.Index(), root.Index())
		}
		node.Parent = root
		obj.Set(idx, node)
	}
	return root
}

// Union merges the classes of the two given nodes and stores the given
// payload on whichever root survives. The old payloads are discarded,
// merging them beforehand is the caller's job, see Merge for a helper which
// does that. The surviving root is picked by rank so the forest stays
// shallow. The index of the new root is returned. If both nodes are already
// in the same class, then no root is redirected and the payload is not
// stored, only the path compression done by the two finds is written.
func (obj *Table[T]) Union(a, b VarIndex, value T) VarIndex {
	rootA := obj.Find(a)
	rootB := obj.Find(b)
	if rootA == rootB {
		return rootA
	}
	if obj.Debug {
		obj.logf("union(%d, %d): roots %d and %d", a.Index(), b.Index(), rootA.Index(), rootB.Index())
	}

	rankA := obj.Value(rootA).Rank
	rankB := obj.Value(rootB).Rank
	if rankA < rankB {
		return obj.redirectRoot(rankB, rootA, rootB, value)
	}
	if rankA > rankB {
		return obj.redirectRoot(rankA, rootB, rootA, value)
	}
	// equal ranks, the surviving root grows by one
	return obj.redirectRoot(rankA+1, rootB, rootA, value)
}

// redirectRoot makes oldRoot a child of newRoot and stores the new rank and
// payload on newRoot. Both nodes must currently be roots. The two writes go
// through the journaled set path.
func (obj *Table[T]) redirectRoot(newRank int, oldRoot, newRoot VarIndex, value T) VarIndex {
	old := obj.Value(oldRoot)
	old.Parent = newRoot
	obj.Set(oldRoot, old)

	node := obj.Value(newRoot)
	node.Rank = newRank
	node.Value = value
	obj.Set(newRoot, node)

	return newRoot
}

// Unioned returns true if the two given nodes are in the same class.
func (obj *Table[T]) Unioned(a, b VarIndex) bool {
	return obj.Find(a) == obj.Find(b)
}

// FindRoot returns a copy of the representative node of the class the given
// node belongs to, by chasing its stored parent pointer.
func (obj *Table[T]) FindRoot(node VarValue[T]) VarValue[T] {
	return obj.Value(obj.Find(node.Parent))
}

// RootValue returns the payload of the class the given node belongs to,
// which is the payload stored at its representative.
func (obj *Table[T]) RootValue(idx VarIndex) T {
	return obj.Value(obj.Find(idx)).Value
}

// Reset turns every node back into a singleton root with a rank of zero,
// keeping its payload, and then drops all pending undo state. The table does
// not shrink. Any snapshot token still held by a caller is invalid
// afterwards.
func (obj *Table[T]) Reset() {
	obj.values.SetAll(func(i int, old VarValue[T]) VarValue[T] {
		return VarValue[T]{
			Value:  old.Value,
			Rank:   0,
			Parent: VarIndex(i),
		}
	})
	obj.values.CommitAll()
}

// InSnapshot returns true if at least one snapshot is currently open.
func (obj *Table[T]) InSnapshot() bool {
	return obj.values.InSnapshot()
}

// NumOpenSnapshots returns how many snapshots are currently open.
func (obj *Table[T]) NumOpenSnapshots() int {
	return obj.values.NumOpenSnapshots()
}

// StartSnapshot opens a new snapshot and returns its checkpoint token.
func (obj *Table[T]) StartSnapshot() Snapshot {
	if obj.Debug {
		obj.logf("start snapshot at length %d", obj.Len())
	}
	return Snapshot{
		snapshot: obj.values.StartSnapshot(),
	}
}

// HasChanges returns true if anything was journaled since the snapshot was
// started.
func (obj *Table[T]) HasChanges(snapshot Snapshot) bool {
	return obj.values.HasChanges(snapshot.snapshot)
}

// NewKeysSince returns the indexes of every node pushed since the snapshot
// was started, in the order they were pushed. The compression and union
// writes in between are not reported, only fresh nodes are.
func (obj *Table[T]) NewKeysSince(snapshot Snapshot) []VarIndex {
	keys := []VarIndex{}
	for _, record := range obj.values.ActionsSince(snapshot.snapshot) {
		if u, ok := record.(undo.NewElem[VarValue[T]]); ok {
			keys = append(keys, VarIndex(u.Index))
		}
	}
	return keys
}

// RollbackTo undoes every mutation journaled since the snapshot was started.
// Afterwards the table is exactly as it was at that point, including the
// parent rewrites that path compression did in between. The snapshot stays
// open, see the undo package.
func (obj *Table[T]) RollbackTo(snapshot Snapshot) {
	if obj.Debug {
		obj.logf("rollback to snapshot at length %d", snapshot.snapshot.Log().Length())
	}
	obj.values.RollbackTo(snapshot.snapshot)
}

// Commit declares everything journaled since the snapshot permanent,
// relative to any outer frames.
func (obj *Table[T]) Commit(snapshot Snapshot) {
	if obj.Debug {
		obj.logf("commit snapshot at length %d", snapshot.snapshot.Log().Length())
	}
	obj.values.Commit(snapshot.snapshot)
}

// CommitAll drops all pending undo state without touching the nodes. Any
// snapshot token still held by a caller is invalid afterwards.
func (obj *Table[T]) CommitAll() {
	obj.values.CommitAll()
}

// String returns a human readable representation of the whole table.
func (obj *Table[T]) String() string {
	if obj.Len() == 0 {
		return "UnificationTable[]"
	}
	strs := []string{}
	for i := 0; i < obj.Len(); i++ {
		node, _ := obj.Get(i)
		strs = append(strs, node.String())
	}
	return fmt.Sprintf("UnificationTable[ %s ]", strings.Join(strs, ", "))
}
