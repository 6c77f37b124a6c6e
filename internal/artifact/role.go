package artifact

// Role identifies which manifest slot an artifact fills.
type Role int

const (
	RolePage Role = iota + 1
	RoleScreenshot
)

// Manifest path names for each role.
const (
	SlotPage       = "index.html"
	SlotScreenshot = "screenshot"
)

func (r Role) String() string {
	switch r {
	case RolePage:
		return "page"
	case RoleScreenshot:
		return "screenshot"
	default:
		return "unknown"
	}
}

// Slot returns the manifest path the role publishes under.
func (r Role) Slot() string {
	switch r {
	case RolePage:
		return SlotPage
	case RoleScreenshot:
		return SlotScreenshot
	default:
		return ""
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePage || r == RoleScreenshot
}
