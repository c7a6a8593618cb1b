package opcode

import "github.com/danmaku-tools/dmktk/ir"

// Representative per-version opcode tables, grounded on the numeric
// opcode/format pairs found in the original ECL and ANM disassemblers.
// Later versions inherit from the nearest earlier one via InheritFrom, so
// a newer table only has to list what actually changed.

func init() {
	registerECLLegacy()
	registerECLMainline()
	registerANM()
}

func registerECLLegacy() {
	t6 := NewTable(ir.LangECL, 6)
	for op, format := range map[uint16]string{
		0: "", 1: "S", 2: "SS", 3: "SSS", 4: "SS", 5: "Sf", 6: "SS",
		8: "Sf", 9: "Sff", 10: "S", 13: "SSS", 14: "SSS", 15: "SSS",
		16: "SSS", 17: "SSS", 18: "S", 20: "Sff", 21: "Sff", 23: "Sff",
		25: "Sffff", 26: "S", 27: "SS", 28: "ff", 29: "SS", 30: "SS",
		31: "SS", 32: "SS", 33: "SS", 34: "SS", 35: "SSf", 36: "",
		39: "SSSSS", 43: "ffS", 45: "ff", 46: "f", 47: "f", 48: "f",
		49: "ff", 50: "ff", 51: "Sf", 52: "Sff", 56: "SffS", 57: "SffS",
		59: "SffS", 61: "S", 63: "S", 65: "ffff", 66: "",
		67: "ssSSffffS", 68: "ssSSffffS", 69: "ssSSffffS", 70: "ssSSffffS",
		71: "ssSSffSSS", 74: "ssSSffSSS", 75: "ssSSffffS", 76: "S",
		77: "S", 78: "", 79: "", 81: "ffS",
	} {
		t6.Set(op, format)
	}
	Register(t6)

	t7 := NewTable(ir.LangECL, 7)
	t7.InheritFrom(t6)
	Register(t7)

	t8 := NewTable(ir.LangECL, 8)
	t8.InheritFrom(t7)
	Register(t8)

	t9 := NewTable(ir.LangECL, 9)
	t9.InheritFrom(t8)
	Register(t9)
}

func registerECLMainline() {
	t10 := NewTable(ir.LangECL, 10)
	for op, format := range map[uint16]string{
		0: "", 1: "", 10: "", 11: "m*D", 12: "oS", 13: "oS", 14: "oS",
		15: "m*D", 16: "mS", 17: "S", 21: "", 40: "S", 42: "S", 43: "S",
		44: "f", 45: "f", 50: "", 51: "", 52: "", 53: "", 54: "", 55: "",
		56: "", 57: "", 58: "", 59: "", 61: "", 63: "", 64: "", 65: "",
		67: "", 68: "", 69: "", 70: "", 71: "", 73: "", 74: "", 78: "S",
		79: "", 81: "ffff", 82: "f", 83: "S", 85: "",
		256: "mffSSS", 257: "mffSSS", 258: "S", 259: "SS", 260: "mffSSS",
		261: "mffSSS", 262: "SS", 263: "SS", 264: "SS", 265: "mffSSS",
		266: "mffSSS", 267: "mffSSS", 268: "mffSSS", 269: "S",
		270: "mfffSSS", 272: "SS", 273: "SSf", 280: "ff", 281: "SSff",
		282: "ff", 283: "SSfS", 284: "ff", 285: "SSff", 286: "ff",
		287: "SSff", 288: "ffff", 290: "ffff", 291: "SSfffS",
		292: "SSf", 294: "", 296: "SSf", 298: "ff", 299: "ff",
		320: "ff", 321: "ff", 322: "S", 323: "S", 324: "Sfff",
		325: "", 326: "", 327: "SS", 328: "ff", 329: "", 330: "S",
		331: "S", 332: "S", 333: "", 334: "SSSm", 335: "S", 336: "S",
		337: "SSS", 338: "S", 339: "", 340: "", 341: "Sm",
		342: "SSSx", 343: "", 344: "S", 345: "", 346: "f", 347: "SfS",
		355: "SSSSS", 356: "fffff", 357: "SSSx", 359: "SSSx",
		360: "S", 361: "S", 362: "", 363: "", 364: "S", 365: "",
		366: "SS", 367: "f", 368: "SSSS", 400: "S", 401: "S",
		402: "SSS", 403: "Sff", 404: "Sff", 405: "Sff", 406: "SSS",
		407: "SS", 409: "SSSSSSff", 410: "", 411: "SS",
		412: "SSffffSf", 413: "SSSfffSSSSfS", 420: "f", 421: "f",
		425: "SSSSSSS", 428: "SSffSfSf", 431: "SSffSfff",
		433: "SSffSfff", 435: "Sffffffff", 436: "SSSSSSSSS",
	} {
		t10.Set(op, format)
	}
	Register(t10)

	t11 := NewTable(ir.LangECL, 11)
	for op, format := range map[uint16]string{
		66: "", 275: "fS", 276: "", 277: "ff", 278: "S", 289: "SSfff",
		291: "SSffS", 300: "ffffff", 302: "ffffff", 305: "Sffffff",
		307: "", 369: "S", 370: "S", 371: "S", 408: "SSS",
		437: "Sff", 438: "Sf", 439: "Sff", 440: "fS", 441: "S",
		442: "S", 443: "S", 444: "S", 445: "S", 447: "f", 448: "S",
		449: "S", 450: "S", 500: "S",
	} {
		t11.Set(op, format)
	}
	// th10_find_format's switch falls case 11 through to case 10: v11
	// overlays th11_fmts on top of th10_fmts (original_source/thecl10.c).
	t11.InheritFrom(t10)
	Register(t11)

	// v12 is its own standalone table (th12_fmts) with no fallthrough to
	// v10/v11 in th10_find_format's switch.
	t12 := NewTable(ir.LangECL, 12)
	for op, format := range map[uint16]string{
		0: "", 1: "", 10: "", 11: "m*D", 12: "oS", 13: "oS", 14: "oS",
		15: "m*D", 16: "mS*D", 17: "f", 21: "", 40: "S", 42: "S", 43: "S",
		44: "f", 45: "f", 50: "", 51: "", 52: "", 53: "", 54: "", 55: "",
		56: "", 57: "", 58: "", 59: "", 60: "", 61: "", 63: "", 64: "",
		65: "", 66: "", 67: "", 68: "", 69: "", 70: "", 73: "", 74: "",
		78: "S", 81: "ffff", 82: "f", 83: "S", 86: "fff", 87: "fffff",
		89: "fff", 256: "mffSSS", 257: "mffSSS", 258: "S", 259: "SS",
		260: "mffSSS", 261: "mffSSS", 262: "SS", 263: "SS", 264: "fS",
		265: "mffSSS", 267: "mffSSS", 269: "f", 270: "mffSSSS", 273: "SSf",
		274: "fS", 275: "fS", 276: "", 277: "ff", 278: "Sff", 279: "Sff",
		280: "mSSSSS", 281: "Sf", 300: "ff", 301: "SSff", 304: "ff",
		305: "SSff", 306: "fS", 307: "SSff", 308: "ffff", 309: "SSfff",
		310: "ffff", 311: "SSfff", 312: "SSf", 320: "ffffff",
		321: "SSfffff", 325: "Sffffff", 328: "ff", 329: "Sfff",
		400: "ff", 401: "ff", 402: "S", 403: "S", 404: "ffff", 405: "",
		406: "", 407: "SS", 408: "ff", 409: "", 410: "S", 411: "S",
		412: "S", 413: "", 414: "SSSm", 415: "S", 416: "S", 417: "SSS",
		418: "S", 419: "", 420: "", 421: "Sm", 422: "SSSx", 423: "",
		424: "S", 425: "", 427: "SfS", 435: "SSSSS", 436: "fffff",
		437: "SSSx", 438: "SSSx", 439: "SSSx", 440: "S", 442: "",
		443: "", 444: "S", 445: "", 446: "Sf", 447: "f", 448: "SSSS",
		452: "f", 453: "S", 454: "", 455: "SS", 500: "S", 501: "S",
		502: "SSS", 503: "Sff", 504: "Sff", 505: "Sff", 506: "SSS",
		507: "SS", 508: "SSS", 509: "SSSSSSff", 510: "", 511: "SS",
		512: "f", 513: "f", 520: "fff", 521: "Sffffffff",
		522: "SSSSSSSSS", 523: "Sff", 524: "Sf", 525: "Sff", 526: "fS",
		529: "S", 531: "S", 534: "S", 600: "Sffff", 601: "SSSSSS",
		602: "S", 603: "fS", 608: "Sf", 610: "S", 611: "S", 700: "S",
	} {
		t12.Set(op, format)
	}
	Register(t12)

	// v125 overlays th125_fmts on top of th12_fmts (case 125 falls
	// through to case 12 in th10_find_format).
	t125 := NewTable(ir.LangECL, 125)
	for op, format := range map[uint16]string{
		30: "m*D", 62: "", 77: "", 79: "", 80: "", 85: "", 88: "",
		90: "fffff", 91: "SfSSff", 282: "SS", 303: "SSfS", 306: "fS",
		307: "SSff", 318: "Sf", 322: "fffSfS", 327: "", 333: "S",
		426: "f", 457: "", 458: "S", 459: "S", 460: "f", 461: "f",
		462: "S", 463: "m", 532: "f", 536: "S", 604: "SSf", 609: "Sf",
		612: "ff",
	} {
		t125.Set(op, format)
	}
	t125.InheritFrom(t12)
	Register(t125)

	// v128 overlays th128_fmts, then th125_fmts, then th12_fmts (case 128
	// falls through case 125 into case 12).
	t128 := NewTable(ir.LangECL, 128)
	for op, format := range map[uint16]string{
		22: "Sm", 71: "", 283: "ffS", 537: "fSfSSSffffff", 538: "SSm",
		613: "S", 614: "fS", 615: "SS",
	} {
		t128.Set(op, format)
	}
	t128.InheritFrom(t125)
	Register(t128)

	// v13 is standalone: case 13 in th10_find_format has its own break,
	// no fallthrough to any earlier table.
	t13 := NewTable(ir.LangECL, 13)
	for op, format := range map[uint16]string{
		0: "", 1: "", 10: "", 11: "m*D", 12: "SS", 13: "SS", 14: "SS",
		15: "m*D", 21: "", 22: "Sm", 40: "S", 42: "S", 43: "S", 44: "f",
		45: "f", 50: "", 51: "", 52: "", 53: "", 55: "", 57: "", 58: "",
		59: "", 61: "", 63: "", 65: "", 64: "", 66: "", 67: "", 68: "",
		69: "", 70: "", 73: "", 74: "", 78: "S", 81: "ffff", 83: "S",
		87: "Sff", 88: "fffff", 92: "SfSSff", 94: "ffff", 300: "mffSSS",
		301: "mffSSS", 302: "S", 303: "SS", 304: "mffSSS", 306: "SS",
		307: "SS", 308: "SS", 309: "mffSSS", 311: "mffSSS", 313: "S",
		318: "SS", 322: "Sff", 323: "mSSSSS", 330: "SSSS", 331: "Sff",
		332: "SSSff", 334: "SSSS", 335: "SSSff", 400: "ff", 401: "SSff",
		404: "ff", 405: "SSff", 408: "ffSS", 409: "SSffS", 411: "SSffS",
		412: "SSf", 420: "fffSff", 422: "fffSff", 425: "Sffffff",
		429: "SSff", 433: "S", 500: "ff", 501: "ff", 502: "S", 503: "S",
		504: "Sfff", 505: "", 506: "", 507: "SS", 508: "ff", 509: "",
		510: "S", 511: "S", 512: "S", 513: "", 514: "SSSm", 515: "S",
		516: "S", 517: "SSS", 518: "S", 519: "", 520: "", 521: "Sm",
		523: "", 524: "S", 525: "", 527: "SfS", 535: "SSSSS",
		536: "fffff", 537: "SSSx", 539: "SSSx", 540: "S", 545: "",
		548: "SSSS", 554: "", 557: "m", 558: "SSSff", 559: "S",
		600: "S", 601: "S", 602: "SSS", 603: "Sff", 604: "Sff",
		605: "Sff", 606: "SSS", 607: "SS", 608: "SSS", 609: "SSSSSSff",
		610: "SSSSSSSSffff", 611: "SSSSSff", 612: "SSSSSSSffff",
		613: "", 614: "SS", 615: "f", 616: "f", 624: "Sffffffff",
		625: "SSSSSSSSS", 626: "Sff", 627: "Sf", 629: "fS", 632: "S",
		700: "Sffff", 701: "SSSSSS", 703: "SS", 708: "Sf", 711: "S",
		800: "S", 1001: "S", 1002: "S", 1003: "S",
	} {
		t13.Set(op, format)
	}
	Register(t13)
}

func registerANM() {
	t0 := NewTable(ir.LangANM, 0)
	for op, format := range map[uint16]string{
		0: "", 1: "n", 2: "ff", 3: "S", 4: "S", 5: "o", 6: "", 7: "",
		8: "", 9: "fff", 10: "fff", 11: "ff", 12: "SS", 13: "", 14: "",
		15: "", 16: "nS", 17: "fff", 18: "fffS", 19: "fffS", 20: "fffS",
		21: "", 22: "S", 23: "", 24: "", 25: "S", 26: "S", 27: "f",
		28: "f", 29: "S", 30: "ffS", 31: "S",
	} {
		t0.Set(op, format)
	}
	Register(t0)

	t2 := NewTable(ir.LangANM, 2)
	for op, format := range map[uint16]string{
		0: "", 1: "", 2: "", 3: "n", 4: "ot", 5: "Sot", 6: "fff", 7: "ff",
		8: "S", 9: "S", 10: "", 11: "", 12: "fff", 13: "fff", 14: "ff",
		15: "SS", 16: "S", 17: "fffS", 18: "fffS", 19: "fffS", 20: "",
		21: "S", 22: "", 23: "", 24: "S", 25: "S", 26: "f", 27: "f",
		28: "S", 29: "ffS", 30: "S", 31: "S", 32: "SSfff", 33: "SSS",
		34: "SSS", 35: "SSfff", 36: "SSff", 37: "SS", 38: "ff", 39: "SS",
		40: "ff", 41: "SS", 42: "ff", 43: "SS", 44: "ff", 45: "SS",
		46: "ff", 47: "SS",
	} {
		t2.Set(op, format)
	}
	Register(t2)

	for _, v := range []int{3, 4, 6, 7, 8} {
		t := NewTable(ir.LangANM, v)
		t.InheritFrom(t2)
		Register(t)
	}
}
