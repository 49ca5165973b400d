package roles

type Role string

const (
	RoleOwner     Role = "owner"
	RoleWriter    Role = "writer"
	RoleViewer    Role = "viewer"
	RoleEditor    Role = "editor"
	RoleAnnotator Role = "annotator"
	RoleProofer   Role = "proofer"
)

// WildcardUserID marks public read access. It may hold the viewer role and
// nothing else.
const WildcardUserID = "*"

// Precedence is the order roles are reported in when a user somehow ends up
// in more than one membership list: the first match wins.
var Precedence = []Role{
	RoleOwner,
	RoleWriter,
	RoleViewer,
	RoleEditor,
	RoleAnnotator,
	RoleProofer,
}

func Valid(role Role) bool {
	switch role {
	case RoleOwner, RoleWriter, RoleViewer, RoleEditor, RoleAnnotator, RoleProofer:
		return true
	default:
		return false
	}
}

// Ordered reports whether a role takes part in the owner > writer > viewer
// privilege ordering. Editor, annotator and proofer are side roles and never
// participate in upgrades.
func Ordered(role Role) bool {
	return role == RoleOwner || role == RoleWriter || role == RoleViewer
}

// Compare returns 1 when a is less restrictive (more privileged) than b,
// 0 when equal, and -1 otherwise. Only meaningful for the ordered roles.
func Compare(a, b Role) int {
	switch {
	case a == b:
		return 0
	case a == RoleOwner:
		return 1
	case a == RoleWriter && b == RoleViewer:
		return 1
	default:
		return -1
	}
}
