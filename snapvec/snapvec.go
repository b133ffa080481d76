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

// Package snapvec implements a growable vector whose mutations can be rolled
// back to an earlier snapshot. While a snapshot is open, every append and
// every overwrite is mirrored as a record in an owned undo log. Rolling back
// replays those records in reverse, which restores the vector bit for bit to
// the state it had when the snapshot was started. While no snapshot is open,
// mutations are not recorded, there is nothing they could be rolled back to.
//
// The vector owns its undo log exclusively. Snapshots nest, see the undo
// package for the counting semantics.
//
// This package is not thread-safe. Wrap it with the synchronization
// primitives of your choosing if you need that.
package snapvec

import (
	"fmt"
	"strings"

	"github.com/purpleidea/unify/undo"
)

// Snapshot is an opaque checkpoint token for a vector. It wraps the
// checkpoint of the underlying undo log.
type Snapshot struct {
	snapshot undo.Snapshot
}

// Log returns the wrapped undo log checkpoint.
func (obj Snapshot) Log() undo.Snapshot {
	return obj.snapshot
}

// Vec is a growable vector of values paired with an undo log of its own
// mutations. Use New to build one.
type Vec[T any] struct {
	values []T
	log    undo.Log[T]
}

// New creates an empty vector. The capacity is an advisory pre-allocation
// hint, zero is fine.
func New[T any](capacity int) *Vec[T] {
	return &Vec[T]{
		values: make([]T, 0, capacity),
	}
}

// Len returns the number of values currently stored.
func (obj *Vec[T]) Len() int {
	return len(obj.values)
}

// Get returns a copy of the value at index i, or false if it is out of
// range.
func (obj *Vec[T]) Get(i int) (T, bool) {
	if i < 0 || i >= len(obj.values) {
		var zero T
		return zero, false
	}
	return obj.values[i], true
}

// MustGet returns a copy of the value at index i. An out of range index is a
// programming error and panics.
func (obj *Vec[T]) MustGet(i int) T {
	if i < 0 || i >= len(obj.values) {
		panic(fmt.Sprintf("index %d is out of bounds, length is %d", i, len(obj.values)))
	}
	return obj.values[i]
}

// MustSet overwrites the value at index i. An out of range index is a
// programming error and panics. The write is recorded if a snapshot is open.
func (obj *Vec[T]) MustSet(i int, value T) {
	obj.Set(i, value)
}

// InSnapshot returns true if at least one snapshot is currently open.
func (obj *Vec[T]) InSnapshot() bool {
	return obj.log.InSnapshot()
}

// NumOpenSnapshots returns how many snapshots are currently open.
func (obj *Vec[T]) NumOpenSnapshots() int {
	return obj.log.NumOpenSnapshots()
}

// Push appends a value and returns the index it landed at. If a snapshot is
// open, the append is recorded so that rollback can remove it again.
func (obj *Vec[T]) Push(value T) int {
	i := len(obj.values)
	obj.values = append(obj.values, value)
	if obj.log.InSnapshot() {
		obj.log.Push(undo.NewElem[T]{Index: i})
	}
	return i
}

// Extend pushes each of the given values in order.
func (obj *Vec[T]) Extend(values ...T) {
	for _, value := range values {
		obj.Push(value)
	}
}

// Set overwrites the value at index i. An out of range index is a
// programming error and panics. If a snapshot is open, the old value is
// recorded so that rollback can restore it.
func (obj *Vec[T]) Set(i int, value T) {
	if i < 0 || i >= len(obj.values) {
		panic(fmt.Sprintf("index %d is out of bounds, length is %d", i, len(obj.values)))
	}
	old := obj.values[i]
	obj.values[i] = value
	if obj.log.InSnapshot() {
		obj.log.Push(undo.SetElem[T]{Index: i, Old: old})
	}
}

// SetAll overwrites every value in index order with the result of the given
// function, which receives the index and the old value. If a snapshot is
// open, each old value is recorded before the new one is written.
func (obj *Vec[T]) SetAll(fn func(i int, old T) T) {
	inSnapshot := obj.log.InSnapshot()
	for i := range obj.values {
		old := obj.values[i]
		if inSnapshot {
			obj.log.Push(undo.SetElem[T]{Index: i, Old: old})
		}
		obj.values[i] = fn(i, old)
	}
}

// Record appends a custom record to the undo log verbatim, but only if a
// snapshot is currently open. It returns whether the record was stored. This
// lets a layer built on top of this vector journal its own reversible
// actions alongside the automatic ones.
func (obj *Vec[T]) Record(record undo.Record[T]) bool {
	if !obj.log.InSnapshot() {
		return false
	}
	obj.log.Push(record)
	return true
}

// Reset drops every value and the whole undo log. Any snapshot token still
// held by a caller is invalid afterwards.
func (obj *Vec[T]) Reset() {
	obj.values = nil
	obj.log.Clear()
}

// StartSnapshot opens a new snapshot and returns its checkpoint token.
func (obj *Vec[T]) StartSnapshot() Snapshot {
	return Snapshot{
		snapshot: obj.log.StartSnapshot(),
	}
}

// ActionsSince returns a view of every record stored since the snapshot was
// started. The view aliases the log's backing storage, so any mutation of
// this vector invalidates it. Don't hold on to it.
func (obj *Vec[T]) ActionsSince(snapshot Snapshot) []undo.Record[T] {
	return obj.log.ActionsSince(snapshot.snapshot)
}

// HasChanges returns true if anything was recorded since the snapshot was
// started.
func (obj *Vec[T]) HasChanges(snapshot Snapshot) bool {
	return obj.log.HasChanges(snapshot.snapshot)
}

// RollbackTo reverses every mutation recorded since the snapshot was
// started, newest first, so that overlapping writes to the same index unwind
// correctly. Afterwards the vector is exactly as it was when the snapshot
// was started. The snapshot stays open, see the undo package. A rollback
// that finds the log and the values out of sync is a programming error and
// panics without trying to continue.
func (obj *Vec[T]) RollbackTo(snapshot Snapshot) {
	popped := obj.log.RollbackTo(snapshot.snapshot)
	for _, record := range popped {
		switch u := record.(type) {
		case undo.NewElem[T]:
			i := len(obj.values) - 1
			if u.Index != i {
				panic(fmt.Sprintf("rollback of NewElem(%d), but the last index is %d", u.Index, i))
			}
			obj.values = obj.values[:i]

		case undo.SetElem[T]:
			obj.values[u.Index] = u.Old

		default:
			panic(fmt.Sprintf("unknown undo record: %v", record))
		}
	}
}

// Commit declares everything recorded since the snapshot permanent, relative
// to any outer frames. It delegates to the undo log, so the records are only
// dropped if this was the only open snapshot.
func (obj *Vec[T]) Commit(snapshot Snapshot) {
	obj.log.Commit(snapshot.snapshot)
}

// CommitAll drops the whole undo log without touching the values. It is the
// "forget that I was recording" operation. Any snapshot token still held by
// a caller is invalid afterwards.
func (obj *Vec[T]) CommitAll() {
	obj.log.Clear()
}

// String returns a human readable representation of the stored values.
func (obj *Vec[T]) String() string {
	if len(obj.values) == 0 {
		return "SnapshotArray[]"
	}
	strs := []string{}
	for _, value := range obj.values {
		strs = append(strs, fmt.Sprintf("%v", value))
	}
	return fmt.Sprintf("SnapshotArray[ %s ]", strings.Join(strs, ", "))
}
