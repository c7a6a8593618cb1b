package archive

import "github.com/danmaku-tools/dmktk/archive/crypt"

// VersionSet is a bitset of plausible archive versions, one bit per
// version number, mirroring original_source/thtk/detect.c's
// uint32_t[4] plausible-version bitmask collapsed into a single uint64
// (every version this toolkit knows about fits in 64 bits).
type VersionSet uint64

func (s VersionSet) Has(version int) bool {
	if version < 0 || version >= 64 {
		return false
	}
	return s&(1<<uint(version)) != 0
}

func (s VersionSet) with(version int) VersionSet {
	if version < 0 || version >= 64 {
		return s
	}
	return s | (1 << uint(version))
}

// legacyVersions, markedVersions and mainlineVersions enumerate the
// version numbers detect.c assigns to each header-magic bucket (the two
// bit-packed versions, 6 and 7, each have their own magic and are set
// directly in Detect).
var (
	legacyVersions   = []int{1, 2, 3, 4, 5}
	markedVersions   = []int{8, 9}
	mainlineVersions = []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21}
)

// Detect inspects a byte prefix (detect.c reads the first 16 bytes) and
// returns every version whose magic could plausibly match, matching
// both before and after the mainline header-ladder decrypt (spec.md
// §4.5's "Detection" paragraph). filename is accepted for future
// suffix-based narrowing, but original_source/thtk/detect.c doesn't key
// its own heuristic off anything this toolkit can recover without a
// game-specific constants table, so it is currently unused beyond
// documenting the intended extension point.
func Detect(prefix []byte, filename string) VersionSet {
	var out VersionSet

	if len(prefix) >= 4 {
		switch string(prefix[:4]) {
		case "PBG3":
			out = out.with(6)
		case "PBG4":
			out = out.with(7)
		case "PBGZ":
			for _, v := range markedVersions {
				out = out.with(v)
			}
		}
	}

	if len(prefix) >= 16 {
		decrypted := crypt.HeaderLadderSchedule(16).Apply(prefix[:16])
		if string(decrypted[:4]) == "THA1" {
			for _, v := range mainlineVersions {
				out = out.with(v)
			}
		}
	}

	if out == 0 {
		// No magic matched at all: the legacy family has none, so a
		// short or unrecognised prefix is still consistent with it.
		for _, v := range legacyVersions {
			out = out.with(v)
		}
	}

	return out
}
