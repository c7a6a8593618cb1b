package reg_test

import (
	"testing"

	"github.com/danmaku-tools/dmktk/reg"
	"github.com/danmaku-tools/dmktk/value"
)

func TestAcquirePrefersOwnPoolThenFallsBack(t *testing.T) {
	f := reg.NewFile(8)

	var exprRegs []*reg.Register
	for i := 0; i < 4; i++ {
		r := f.Acquire(reg.PurposeExpr, value.TagS32)
		if r == nil {
			t.Fatalf("expected to acquire expr-int register %d", i)
		}
		exprRegs = append(exprRegs, r)
	}

	// The expr-purpose int pool (4 registers) is now exhausted; the next
	// acquire must fall back to the var-purpose int pool.
	fallback := f.Acquire(reg.PurposeExpr, value.TagS32)
	if fallback == nil {
		t.Fatalf("expected fallback acquire to succeed from the var pool")
	}
	if fallback.Purpose != reg.PurposeVar {
		t.Fatalf("fallback register should come from the var pool, got purpose %v", fallback.Purpose)
	}
	if fallback.Lock != reg.LockExprTemp {
		t.Fatalf("fallback register should still be locked ExprTemp since the caller asked for PurposeExpr")
	}
}

func TestAcquireRegisterFullWhenBothPoolsExhausted(t *testing.T) {
	f := reg.NewFile(8)
	// Exhaust both int pools: 4 expr + 2 var = 6 registers.
	for i := 0; i < 6; i++ {
		if f.Acquire(reg.PurposeExpr, value.TagS32) == nil {
			t.Fatalf("unexpected RegisterFull before exhausting all int registers (iteration %d)", i)
		}
	}
	if got := f.Acquire(reg.PurposeExpr, value.TagS32); got != nil {
		t.Fatalf("expected RegisterFull (nil) once both pools are exhausted, got %+v", got)
	}
}

func TestResetUnlocksEverything(t *testing.T) {
	f := reg.NewFile(8)
	f.Acquire(reg.PurposeExpr, value.TagS32)
	f.Reset()
	if f.IsLocked(10000) {
		t.Fatalf("expected register 10000 to be unlocked after Reset")
	}
}

func TestUserRegistersAreSeparateFromTheVersionTable(t *testing.T) {
	f := reg.NewFile(8)
	user := f.NewUserRegister(99999, value.TagS32)
	if user.Lock != reg.LockOther || user.Purpose != reg.PurposeOther {
		t.Fatalf("user register should start LockOther/PurposeOther, got %+v", user)
	}
	if f.GetByID(99999) != user {
		t.Fatalf("GetByID should find the user-created register")
	}

	f.FreeUserRegisters()
	if f.GetByID(99999) != nil {
		t.Fatalf("expected user register to be gone after FreeUserRegisters")
	}
}

func TestIsLockedTreatsMissingIDAsUnlocked(t *testing.T) {
	f := reg.NewFile(8)
	if f.IsLocked(424242) {
		t.Fatalf("a register ID with no table entry should report unlocked, not locked")
	}
}

func TestUnknownVersionAlwaysReportsRegisterFull(t *testing.T) {
	f := reg.NewFile(99999)
	if got := f.Acquire(reg.PurposeExpr, value.TagS32); got != nil {
		t.Fatalf("expected RegisterFull for an unrecognised version, got %+v", got)
	}
}

func TestReleaseUnlocksRegister(t *testing.T) {
	f := reg.NewFile(8)
	r := f.Acquire(reg.PurposeExpr, value.TagS32)
	if r == nil {
		t.Fatalf("expected a register")
	}
	reg.Release(r)
	if r.Lock != reg.LockUnlocked {
		t.Fatalf("Release should set Lock back to LockUnlocked")
	}
}
