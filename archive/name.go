package archive

import (
	"fmt"
	"path"
	"strings"
)

// NameFlags selects the filename-normalisation rules a version applies
// at entry_set_name time (spec.md §4.5), grounded on
// original_source/thtk/thdat.h's THDAT_BASENAME/THDAT_UPPERCASE/THDAT_8_3
// bitmask.
type NameFlags uint32

const (
	FlagBasename NameFlags = 1 << iota
	FlagUppercase
	FlagEightDotThree
)

// NormalizeName applies flags to name, returning the stored form. An
// 8.3 violation under FlagEightDotThree is reported rather than
// silently truncated, since truncation would make two distinct input
// names collide.
func NormalizeName(name string, flags NameFlags) (string, error) {
	if flags&FlagBasename != 0 {
		name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	}
	if flags&FlagEightDotThree != 0 {
		if !isEightDotThree(name) {
			return "", fmt.Errorf("archive: name %q does not fit the 8.3 format", name)
		}
	}
	if flags&FlagUppercase != 0 {
		name = strings.ToUpper(name)
	}
	return name, nil
}

func isEightDotThree(name string) bool {
	base := name
	ext := ""
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		base = name[:i]
		ext = name[i+1:]
	}
	return len(base) <= 8 && len(ext) <= 3 && !strings.ContainsAny(base, `/\`)
}
