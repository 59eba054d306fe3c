package auth

// Resource represents a protected resource type
type Resource string

const (
	ResourceUsers    Resource = "users"
	ResourceGroups   Resource = "groups"
	ResourceStaffs   Resource = "staffs"
	ResourceSettings Resource = "settings"
	ResourceOcctl    Resource = "occtl"
	ResourceStats    Resource = "stats"
)

// Action represents an operation on a resource
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)
