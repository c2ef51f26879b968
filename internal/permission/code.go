package permission

import "fmt"

// Kind distinguishes the two code enumerations a literal may draw from.
type Kind int

const (
	// ObjectAccess literals guard resources and values.
	ObjectAccess Kind = iota + 1

	// Administrative literals guard project and system administration.
	Administrative
)

func (k Kind) String() string {
	switch k {
	case ObjectAccess:
		return "object-access"
	case Administrative:
		return "administrative"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Code is a permission level. Codes within one Kind are totally ordered
// by their numeric value; higher grants strictly more.
type Code int

// Object-access codes. The numeric gaps follow the original data so that
// stored numeric codes round-trip unchanged.
const (
	RestrictedView Code = 1
	View           Code = 2
	Modify         Code = 6
	Delete         Code = 7
	ChangeRights   Code = 8
)

// Administrative codes.
const (
	ProjectMember Code = 1
	ProjectAdmin  Code = 2
	SystemAdmin   Code = 3
)

var objectAccessTokens = map[Code]string{
	RestrictedView: "RV",
	View:           "V",
	Modify:         "M",
	Delete:         "D",
	ChangeRights:   "CR",
}

var administrativeTokens = map[Code]string{
	ProjectMember: "PM",
	ProjectAdmin:  "PA",
	SystemAdmin:   "SA",
}

func tokens(kind Kind) map[Code]string {
	if kind == Administrative {
		return administrativeTokens
	}
	return objectAccessTokens
}

// Token returns the wire token for a code of the given kind.
func Token(kind Kind, c Code) string {
	if tok, ok := tokens(kind)[c]; ok {
		return tok
	}
	return fmt.Sprintf("?%d", int(c))
}

// ParseCode resolves a wire token to a code of the given kind.
func ParseCode(kind Kind, token string) (Code, bool) {
	for c, tok := range tokens(kind) {
		if tok == token {
			return c, true
		}
	}
	return 0, false
}

// ValidCode reports whether c is in the enumeration for kind.
func ValidCode(kind Kind, c Code) bool {
	_, ok := tokens(kind)[c]
	return ok
}

// MaxCode is the highest code of the given kind, granted to system
// administrators and to project administrators on their own project.
func MaxCode(kind Kind) Code {
	if kind == Administrative {
		return SystemAdmin
	}
	return ChangeRights
}
