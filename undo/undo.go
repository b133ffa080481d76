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

// Package undo implements an append-only log of reversible edit records. It
// is the bottom layer of this library. The log itself does not know how to
// reverse anything, it only stores the records and tracks how many snapshots
// are currently open. The layer which owns the storage (see the snapvec
// package) pops the records back off and interprets them on rollback.
//
// A snapshot is a checkpoint which remembers the length the log had when it
// was opened. Snapshots nest, and the log only counts how many are open, it
// does not track their identities or enforce that they're closed in LIFO
// order. That discipline is left to the caller.
//
// This package is not thread-safe. Wrap it with the synchronization
// primitives of your choosing if you need that.
package undo

import (
	"fmt"
	"strings"
)

// Record is a single reversible edit. It is a closed sum, the only two
// variants are NewElem and SetElem. Whoever owns the storage that a record
// refers to is responsible for reversing it on rollback.
type Record[T any] interface {
	fmt.Stringer

	// record is a sealing method so that the set of variants stays closed.
	record()
}

// NewElem records that an element was appended at the given index. At the
// moment it was recorded, Index was the last valid index of the storage.
// Rollback removes that element again.
type NewElem[T any] struct {
	// Index is the position the new element was appended at.
	Index int
}

// record implements the sealed Record interface.
func (obj NewElem[T]) record() {}

// String returns a human readable representation of this record.
func (obj NewElem[T]) String() string {
	return fmt.Sprintf("NewElem(%d)", obj.Index)
}

// SetElem records that the element at the given index was overwritten, and
// stores the pre-image. Rollback writes the old value back.
type SetElem[T any] struct {
	// Index is the position that was overwritten.
	Index int

	// Old is the value the element had before the overwrite.
	Old T
}

// record implements the sealed Record interface.
func (obj SetElem[T]) record() {}

// String returns a human readable representation of this record.
func (obj SetElem[T]) String() string {
	return fmt.Sprintf("SetElem(%d, %v)", obj.Index, obj.Old)
}

// Snapshot is an opaque checkpoint token. It remembers the length the log had
// at the moment the snapshot was started. Holding one lets the caller either
// commit everything recorded since, or hand the records back for reversal.
type Snapshot struct {
	length int
}

// Length returns the log length at the moment this snapshot was started.
func (obj Snapshot) Length() int {
	return obj.length
}

// Log is an ordered sequence of reversible edit records, plus a count of how
// many snapshots are currently open. While no snapshot is open, callers are
// free to skip recording entirely, nothing could ever ask for those records
// back. The zero value is a valid empty log.
type Log[T any] struct {
	records       []Record[T]
	openSnapshots int
}

// NewLog creates an empty log with no open snapshots.
func NewLog[T any]() *Log[T] {
	return &Log[T]{}
}

// InSnapshot returns true if at least one snapshot is currently open.
func (obj *Log[T]) InSnapshot() bool {
	return obj.openSnapshots > 0
}

// NumOpenSnapshots returns how many snapshots are currently open.
func (obj *Log[T]) NumOpenSnapshots() int {
	return obj.openSnapshots
}

// Len returns the number of records currently stored.
func (obj *Log[T]) Len() int {
	return len(obj.records)
}

// Push appends a record unconditionally. It is the caller's job to decide
// whether recording is worthwhile, usually by checking InSnapshot first.
func (obj *Log[T]) Push(record Record[T]) {
	obj.records = append(obj.records, record)
}

// Extend appends each of the given records in order.
func (obj *Log[T]) Extend(records ...Record[T]) {
	obj.records = append(obj.records, records...)
}

// Pop removes and returns the most recent record, or false if the log is
// empty.
func (obj *Log[T]) Pop() (Record[T], bool) {
	if len(obj.records) == 0 {
		var zero Record[T]
		return zero, false
	}
	record := obj.records[len(obj.records)-1]
	obj.records = obj.records[:len(obj.records)-1]
	return record, true
}

// Last peeks at the most recent record without removing it, or returns false
// if the log is empty.
func (obj *Log[T]) Last() (Record[T], bool) {
	if len(obj.records) == 0 {
		var zero Record[T]
		return zero, false
	}
	return obj.records[len(obj.records)-1], true
}

// Clear drops every record and closes every open snapshot. Any snapshot
// token still held by a caller is invalid afterwards.
func (obj *Log[T]) Clear() {
	obj.records = nil
	obj.openSnapshots = 0
}

// StartSnapshot opens a new snapshot and returns its checkpoint token. The
// token remembers the current log length.
func (obj *Log[T]) StartSnapshot() Snapshot {
	obj.openSnapshots++
	return Snapshot{
		length: len(obj.records),
	}
}

// ActionsSince returns a view of every record pushed since the snapshot was
// started. The view aliases the log's backing storage, so it is invalidated
// by any mutation of the log. Don't hold on to it.
func (obj *Log[T]) ActionsSince(snapshot Snapshot) []Record[T] {
	return obj.records[snapshot.length:]
}

// HasChanges returns true if anything was recorded since the snapshot was
// started.
func (obj *Log[T]) HasChanges(snapshot Snapshot) bool {
	return len(obj.records) > snapshot.length
}

// assertValidSnapshot panics unless the snapshot can legally be committed or
// rolled back right now. The length comparison is strict, so a snapshot with
// no recorded actions can be neither committed nor rolled back. Callers that
// might have recorded nothing should check HasChanges first.
func (obj *Log[T]) assertValidSnapshot(snapshot Snapshot) {
	if obj.openSnapshots == 0 {
		panic("no snapshot is open")
	}
	if len(obj.records) <= snapshot.length {
		panic(fmt.Sprintf("invalid snapshot at length %d, log length is %d", snapshot.length, len(obj.records)))
	}
}

// Commit declares everything recorded since the snapshot permanent, relative
// to any outer frames. If this was the only open snapshot, then it must have
// been taken at the very start of the log, and the whole log is dropped,
// since nothing could ever roll back past it. Otherwise the records are kept,
// an outer frame may still need them. In both cases the open snapshot count
// drops by one. An invalid snapshot is a programming error and panics.
func (obj *Log[T]) Commit(snapshot Snapshot) {
	obj.assertValidSnapshot(snapshot)
	if obj.openSnapshots == 1 {
		if snapshot.length != 0 {
			panic(fmt.Sprintf("root commit with snapshot at length %d, must be zero", snapshot.length))
		}
		obj.records = nil
	}
	obj.openSnapshots--
}

// RollbackTo pops every record back to the snapshot point and returns them in
// the order they were popped, which is newest first. The caller reverses each
// one against its storage. This does not close the snapshot, the open count
// is unchanged, so a caller who wants to undo and close the frame must record
// something afterwards and then commit, or clear the log. An invalid snapshot
// is a programming error and panics.
func (obj *Log[T]) RollbackTo(snapshot Snapshot) []Record[T] {
	obj.assertValidSnapshot(snapshot)
	popped := []Record[T]{}
	for len(obj.records) > snapshot.length {
		record, _ := obj.Pop()
		popped = append(popped, record)
	}
	return popped
}

// String returns a human readable representation of the whole log.
func (obj *Log[T]) String() string {
	if len(obj.records) == 0 {
		return "UndoLogs[]"
	}
	strs := []string{}
	for _, record := range obj.records {
		strs = append(strs, record.String())
	}
	return fmt.Sprintf("UndoLogs[ %s ]", strings.Join(strs, ", "))
}
