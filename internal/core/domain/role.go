package domain

// Role is an authorization role attached to a User. It is unrelated to the
// free-text Employee.Role label.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

// Roles lists every role seeded at startup.
var Roles = []Role{RoleAdmin, RoleManager, RoleEmployee}

// Resource identifies a class of operation guarded by the Authorizer.
type Resource string

const (
	ResourceEmployeeCreate Resource = "employee:create"
	ResourceEmployeeUpdate Resource = "employee:update"
	ResourceEmployeeDelete Resource = "employee:delete"
	ResourceEmployeeList   Resource = "employee:list"
	ResourceEmployeeRead   Resource = "employee:read"
	ResourceEmployeeFilter Resource = "employee:filter"
	ResourceEmployeeReport Resource = "employee:report"

	ResourceDirectoryList Resource = "directory:list"
	ResourceDirectoryRead Resource = "directory:read"

	ResourceProfileRead Resource = "profile:read"

	// ResourceSession covers endpoints that only need an authenticated caller.
	ResourceSession Resource = "session"
)

// Resources lists every guarded resource class.
var Resources = []Resource{
	ResourceEmployeeCreate,
	ResourceEmployeeUpdate,
	ResourceEmployeeDelete,
	ResourceEmployeeList,
	ResourceEmployeeRead,
	ResourceEmployeeFilter,
	ResourceEmployeeReport,
	ResourceDirectoryList,
	ResourceDirectoryRead,
	ResourceProfileRead,
	ResourceSession,
}

// permissions is the static role -> resource table.
var permissions = map[Role][]Resource{
	RoleAdmin: {
		ResourceEmployeeCreate,
		ResourceEmployeeUpdate,
		ResourceEmployeeDelete,
		ResourceEmployeeList,
		ResourceEmployeeRead,
		ResourceEmployeeFilter,
		ResourceEmployeeReport,
		ResourceSession,
	},
	RoleManager: {
		ResourceDirectoryList,
		ResourceDirectoryRead,
		ResourceSession,
	},
	RoleEmployee: {
		ResourceProfileRead,
		ResourceSession,
	},
}

// Valid reports whether r is one of the seeded roles.
func (r Role) Valid() bool {
	_, ok := permissions[r]
	return ok
}

// Can reports whether the role is allowed to access res.
func (r Role) Can(res Resource) bool {
	for _, allowed := range permissions[r] {
		if allowed == res {
			return true
		}
	}
	return false
}

// Authorize is the access decision used by the HTTP layer. It depends only on
// the role and the resource class; record ownership is not considered.
func Authorize(role Role, res Resource) bool {
	return role.Can(res)
}
