package archive

// Family distinguishes the four archive pipeline families spec.md §4.5
// enumerates, grounded on original_source/thtk's per-version thdat
// modules: thdat02.c (legacy), thdat06.c (bit-packed, "PBG3"/"PBG4"),
// thdat08.c (marked, "PBGZ"), thdat95.c/thdat105.c (mainline, "THA1").
type Family int

const (
	FamilyLegacy Family = iota
	FamilyBitPacked
	FamilyMarked
	FamilyMainline
)

func (f Family) String() string {
	switch f {
	case FamilyLegacy:
		return "legacy"
	case FamilyBitPacked:
		return "bit-packed"
	case FamilyMarked:
		return "marked"
	case FamilyMainline:
		return "mainline"
	default:
		return "unknown"
	}
}

// familyFor maps a version number to its pipeline family. The exact
// version cutoffs mirror the thdat module split in original_source/thtk:
// thdat02 covers the oldest versions, thdat06 introduces the PBG3/PBG4
// bit-packed layout, thdat08 introduces the PBGZ marked layout, and
// thdat95/thdat105 introduce the THA1 mainline layout that every later
// version keeps using.
func familyFor(version int) Family {
	switch {
	case version <= 5:
		return FamilyLegacy
	case version == 6 || version == 7:
		return FamilyBitPacked
	case version == 8 || version == 9:
		return FamilyMarked
	default:
		return FamilyMainline
	}
}
