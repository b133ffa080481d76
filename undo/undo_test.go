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

//go:build !root

package undo

import (
	"reflect"
	"testing"
)

func TestLog0(t *testing.T) {
	log := NewLog[string]()

	if log.InSnapshot() {
		t.Errorf("a fresh log should not be in a snapshot")
	}
	if log.Len() != 0 {
		t.Errorf("a fresh log should be empty, got length %d", log.Len())
	}
	if _, ok := log.Pop(); ok {
		t.Errorf("pop on an empty log should return false")
	}
	if _, ok := log.Last(); ok {
		t.Errorf("last on an empty log should return false")
	}

	log.Push(NewElem[string]{Index: 0})
	log.Push(SetElem[string]{Index: 0, Old: "hello"})

	if log.Len() != 2 {
		t.Errorf("expected two records, got %d", log.Len())
	}

	last, ok := log.Last()
	if !ok {
		t.Errorf("last should have returned a record")
	}
	if exp := (SetElem[string]{Index: 0, Old: "hello"}); last != Record[string](exp) {
		t.Errorf("last returned the wrong record: %v", last)
	}
	if log.Len() != 2 {
		t.Errorf("last should not remove anything, got length %d", log.Len())
	}

	record, ok := log.Pop()
	if !ok {
		t.Errorf("pop should have returned a record")
	}
	if exp := (SetElem[string]{Index: 0, Old: "hello"}); record != Record[string](exp) {
		t.Errorf("pop returned the wrong record: %v", record)
	}
	if log.Len() != 1 {
		t.Errorf("expected one record after pop, got %d", log.Len())
	}

	log.Clear()
	if log.Len() != 0 || log.InSnapshot() {
		t.Errorf("clear should empty the log and close all snapshots")
	}
}

func TestExtend0(t *testing.T) {
	log := NewLog[int]()
	log.Extend(
		NewElem[int]{Index: 0},
		NewElem[int]{Index: 1},
		SetElem[int]{Index: 0, Old: 42},
	)

	if log.Len() != 3 {
		t.Errorf("expected three records, got %d", log.Len())
	}
	if s := log.String(); s != "UndoLogs[ NewElem(0), NewElem(1), SetElem(0, 42) ]" {
		t.Errorf("unexpected rendering: %s", s)
	}
}

func TestStartSnapshot0(t *testing.T) {
	log := NewLog[int]()

	s1 := log.StartSnapshot()
	if !log.InSnapshot() {
		t.Errorf("the log should be in a snapshot now")
	}
	if log.NumOpenSnapshots() != 1 {
		t.Errorf("expected one open snapshot, got %d", log.NumOpenSnapshots())
	}
	if s1.Length() != 0 {
		t.Errorf("the checkpoint should be the pre-existing length, got %d", s1.Length())
	}

	log.Push(NewElem[int]{Index: 0})

	s2 := log.StartSnapshot()
	if log.NumOpenSnapshots() != 2 {
		t.Errorf("expected two open snapshots, got %d", log.NumOpenSnapshots())
	}
	if s2.Length() != 1 {
		t.Errorf("the nested checkpoint should be at one, got %d", s2.Length())
	}
}

func TestActionsSince0(t *testing.T) {
	log := NewLog[int]()
	log.Push(NewElem[int]{Index: 0})

	s := log.StartSnapshot()
	if log.HasChanges(s) {
		t.Errorf("nothing was recorded since the snapshot yet")
	}
	if n := len(log.ActionsSince(s)); n != 0 {
		t.Errorf("expected an empty view, got %d records", n)
	}

	log.Push(NewElem[int]{Index: 1})
	log.Push(SetElem[int]{Index: 0, Old: 13})

	if !log.HasChanges(s) {
		t.Errorf("changes were recorded since the snapshot")
	}
	view := log.ActionsSince(s)
	exp := []Record[int]{
		NewElem[int]{Index: 1},
		SetElem[int]{Index: 0, Old: 13},
	}
	if !reflect.DeepEqual(view, exp) {
		t.Errorf("unexpected view: %v", view)
	}
}

func TestRollbackTo0(t *testing.T) {
	log := NewLog[int]()
	s := log.StartSnapshot()

	log.Push(NewElem[int]{Index: 0})
	log.Push(SetElem[int]{Index: 0, Old: 7})
	log.Push(SetElem[int]{Index: 0, Old: 8})

	popped := log.RollbackTo(s)
	exp := []Record[int]{ // newest first
		SetElem[int]{Index: 0, Old: 8},
		SetElem[int]{Index: 0, Old: 7},
		NewElem[int]{Index: 0},
	}
	if !reflect.DeepEqual(popped, exp) {
		t.Errorf("unexpected pop order: %v", popped)
	}
	if log.Len() != 0 {
		t.Errorf("the log should be back at the checkpoint, got length %d", log.Len())
	}
	if log.NumOpenSnapshots() != 1 {
		t.Errorf("rollback must not close the snapshot, got %d open", log.NumOpenSnapshots())
	}
}

func TestCommitRoot0(t *testing.T) {
	log := NewLog[int]()
	s := log.StartSnapshot()

	log.Push(NewElem[int]{Index: 0})
	log.Push(NewElem[int]{Index: 1})

	log.Commit(s)
	if log.Len() != 0 {
		t.Errorf("a root commit should clear the log, got length %d", log.Len())
	}
	if log.InSnapshot() {
		t.Errorf("the snapshot should be closed now")
	}
}

func TestCommitNested0(t *testing.T) {
	log := NewLog[int]()
	s1 := log.StartSnapshot()
	log.Push(NewElem[int]{Index: 0})

	s2 := log.StartSnapshot()
	log.Push(NewElem[int]{Index: 1})

	log.Commit(s2)
	if log.Len() != 2 {
		t.Errorf("a nested commit must keep the records, got length %d", log.Len())
	}
	if log.NumOpenSnapshots() != 1 {
		t.Errorf("expected one open snapshot, got %d", log.NumOpenSnapshots())
	}

	// The outer frame can still throw everything away.
	popped := log.RollbackTo(s1)
	if len(popped) != 2 {
		t.Errorf("expected both records back, got %d", len(popped))
	}
}

func TestInvalidSnapshot0(t *testing.T) {
	// Each of these sequences is a programming error and must panic.
	testCases := []struct {
		name string
		fn   func(log *Log[int])
	}{
		{
			name: "commit without snapshot",
			fn: func(log *Log[int]) {
				log.Push(NewElem[int]{Index: 0})
				log.Commit(Snapshot{})
			},
		},
		{
			name: "rollback without snapshot",
			fn: func(log *Log[int]) {
				log.Push(NewElem[int]{Index: 0})
				log.RollbackTo(Snapshot{})
			},
		},
		{
			name: "commit with no recorded actions",
			fn: func(log *Log[int]) {
				s := log.StartSnapshot()
				log.Commit(s) // length is not strictly greater
			},
		},
		{
			name: "rollback with no recorded actions",
			fn: func(log *Log[int]) {
				s := log.StartSnapshot()
				log.RollbackTo(s)
			},
		},
		{
			name: "root commit not at the start",
			fn: func(log *Log[int]) {
				log.Push(NewElem[int]{Index: 0})
				s := log.StartSnapshot()
				log.Push(NewElem[int]{Index: 1})
				log.Commit(s)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected a panic, got none")
				}
			}()
			tc.fn(NewLog[int]())
		})
	}
}

func TestString0(t *testing.T) {
	log := NewLog[string]()
	if s := log.String(); s != "UndoLogs[]" {
		t.Errorf("unexpected empty rendering: %s", s)
	}

	log.Push(NewElem[string]{Index: 0})
	log.Push(SetElem[string]{Index: 0, Old: "hello"})
	if s := log.String(); s != "UndoLogs[ NewElem(0), SetElem(0, hello) ]" {
		t.Errorf("unexpected rendering: %s", s)
	}
}
