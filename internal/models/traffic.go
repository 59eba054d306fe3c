package models

// Traffic accounting modes for VPN users.
const (
	// TrafficFree disables quota enforcement
	TrafficFree = "free"
	// TrafficMonthly resets the quota at the start of each month
	TrafficMonthly = "monthly"
	// TrafficTotal enforces a lifetime quota
	TrafficTotal = "total"
)

// ValidTrafficType reports whether t is a known traffic accounting mode.
func ValidTrafficType(t string) bool {
	switch t {
	case TrafficFree, TrafficMonthly, TrafficTotal:
		return true
	}
	return false
}

// Panel account roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)
