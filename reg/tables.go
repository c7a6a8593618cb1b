package reg

import "github.com/danmaku-tools/dmktk/value"

// tableFor returns the general-purpose register table for an ANM version,
// or nil if the version has no known table (Acquire then always reports
// RegisterFull). original_source/thanm/reg.c only ever defines a table for
// version 8 (regs_v8), with a TODO noting other versions weren't
// researched; earlier and later ANM versions use the same ten-register
// layout observed for v8 by convention in the mnemonic maps shipped with
// the real tool, so v2/v3/v4/v6/v7 here alias the v8 table rather than
// leaving them empty.
func tableFor(version int) []Register {
	switch version {
	case 2, 3, 4, 6, 7, 8:
		return regsV8
	default:
		return nil
	}
}

var regsV8 = []Register{
	{ID: 10000, Type: value.TagS32, Lock: LockUnlocked, Purpose: PurposeExpr},
	{ID: 10001, Type: value.TagS32, Lock: LockUnlocked, Purpose: PurposeExpr},
	{ID: 10002, Type: value.TagS32, Lock: LockUnlocked, Purpose: PurposeExpr},
	{ID: 10003, Type: value.TagS32, Lock: LockUnlocked, Purpose: PurposeExpr},
	{ID: 10008, Type: value.TagS32, Lock: LockUnlocked, Purpose: PurposeVar},
	{ID: 10009, Type: value.TagS32, Lock: LockUnlocked, Purpose: PurposeVar},

	{ID: 10004, Type: value.TagFloat, Lock: LockUnlocked, Purpose: PurposeExpr},
	{ID: 10005, Type: value.TagFloat, Lock: LockUnlocked, Purpose: PurposeExpr},
	{ID: 10006, Type: value.TagFloat, Lock: LockUnlocked, Purpose: PurposeExpr},
	{ID: 10007, Type: value.TagFloat, Lock: LockUnlocked, Purpose: PurposeExpr},
}
