// Package reg implements the ANM expression compiler's register file
// (spec.md §4.9, §3): per-version tables of general-purpose registers,
// each with a type, a lock state, and a default purpose.
package reg

import "github.com/danmaku-tools/dmktk/value"

// Lock is a register's current lock state.
type Lock int

const (
	LockUnlocked Lock = iota // free to acquire
	LockExprTemp             // held by an in-flight expression lowering
	LockUserVar              // holds a user-declared variable for the rest of the sub-program
	LockOther                // locked for a reason outside the compiler's own bookkeeping
)

// Purpose is a register's default role, used to pick a preferred pool
// before falling back to the other pool (spec.md §4.9's acquire rule).
type Purpose int

const (
	PurposeExpr Purpose = iota
	PurposeVar
	PurposeOther
)

// Register is one entry of a version's register table.
type Register struct {
	ID      int
	Type    value.Tag // TagS32 or TagFloat; the only two types registers hold
	Lock    Lock
	Purpose Purpose
}

// File is one compilation's register file: a fixed per-version table plus
// a growable list of user-created registers (spec.md §5: "user-defined
// registers live on a separate list that is freed at program-compile end").
type File struct {
	table []Register
	user  []*Register
}

// NewFile returns a file seeded with a copy of the named version's table
// (so acquiring/locking registers in one File never mutates another's).
// An unrecognised version yields an empty table: acquire always reports
// RegisterFull rather than panicking.
func NewFile(version int) *File {
	base := tableFor(version)
	table := make([]Register, len(base))
	copy(table, base)
	return &File{table: table}
}

// Reset unlocks every table register, matching reg_reset: called between
// sub-programs so locks never leak across sub-program boundaries.
func (f *File) Reset() {
	for i := range f.table {
		f.table[i].Lock = LockUnlocked
	}
}

// NewUserRegister creates and returns a register outside the version
// table, locked LockOther and purposed PurposeOther, used for registers
// the source declares explicitly by numeric ID rather than acquired by
// the compiler.
func (f *File) NewUserRegister(id int, t value.Tag) *Register {
	r := &Register{ID: id, Type: t, Lock: LockOther, Purpose: PurposeOther}
	f.user = append(f.user, r)
	return r
}

// FreeUserRegisters discards every register created via NewUserRegister,
// matching reg_free_user: called once at program-compile end.
func (f *File) FreeUserRegisters() {
	f.user = nil
}

// Acquire finds the first Unlocked register matching (purpose, t),
// preferring purpose's own pool and falling back to the other purpose's
// pool when that pool is exhausted (spec.md §4.9). It locks the found
// register as ExprTemp or UserVar according to purpose and returns it, or
// nil if both pools are exhausted (the caller reports RegisterFull).
func (f *File) Acquire(purpose Purpose, t value.Tag) *Register {
	r := f.acquireFromPool(purpose, t)
	if r == nil {
		switch purpose {
		case PurposeExpr:
			r = f.acquireFromPool(PurposeVar, t)
		case PurposeVar:
			r = f.acquireFromPool(PurposeExpr, t)
		}
	}
	if r == nil {
		return nil
	}

	switch purpose {
	case PurposeExpr:
		r.Lock = LockExprTemp
	case PurposeVar:
		r.Lock = LockUserVar
	default:
		r.Lock = LockOther
	}
	return r
}

func (f *File) acquireFromPool(purpose Purpose, t value.Tag) *Register {
	for i := range f.table {
		r := &f.table[i]
		if r.Purpose == purpose && r.Type == t && r.Lock == LockUnlocked {
			return r
		}
	}
	return nil
}

// GetByID returns the register with the given numeric ID, searching the
// version table first and then the user-created list, or nil if none
// matches.
func (f *File) GetByID(id int) *Register {
	for i := range f.table {
		if f.table[i].ID == id {
			return &f.table[i]
		}
	}
	for _, r := range f.user {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// IsLocked reports whether the register with the given ID exists and is
// not LockUnlocked. A missing ID is treated as unlocked, matching
// reg_is_locked's "not finding it is not an error" contract.
func (f *File) IsLocked(id int) bool {
	r := f.GetByID(id)
	return r != nil && r.Lock != LockUnlocked
}

// Release sets reg's lock back to LockUnlocked. Free-standing helper over
// direct field assignment so every caller goes through one place, mirroring
// reg_lock(reg, LOCK_UNLOCK) being the spelling used throughout the
// original compiler for "release this register".
func Release(r *Register) {
	r.Lock = LockUnlocked
}
