// Package auth provides role-based access control and a redis-backed
// session store.
package auth

// Role is a platform user role.
type Role string

const (
	RoleSuperAdmin    Role = "SUPER_ADMIN"
	RoleAdmin         Role = "ADMIN"
	RoleHospitalAdmin Role = "HOSPITAL_ADMIN"
	RoleDoctor        Role = "DOCTOR"
	RoleNurse         Role = "NURSE"
	RoleReceptionist  Role = "RECEPTIONIST"
	RolePatient       Role = "PATIENT"
)

// Permission names an action on a resource.
type Permission string

const (
	PermApplicationsRead   Permission = "applications:read"
	PermApplicationsReview Permission = "applications:review"
	PermDocumentsVerify    Permission = "documents:verify"
	PermDocumentsManage    Permission = "documents:manage"
	PermEvaluationsWrite   Permission = "evaluations:write"
	PermChecklistUpdate    Permission = "checklist:update"
	PermContractsManage    Permission = "contracts:manage"
	PermContractsSign      Permission = "contracts:sign"
	PermSearchRead         Permission = "search:read"
	PermMetricsRead        Permission = "metrics:read"
)

// rolePermissions is the static role grant table. SUPER_ADMIN bypasses the
// table entirely.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermApplicationsRead, PermApplicationsReview,
		PermDocumentsVerify, PermDocumentsManage,
		PermEvaluationsWrite, PermChecklistUpdate,
		PermContractsManage, PermContractsSign,
		PermSearchRead, PermMetricsRead,
	},
	RoleHospitalAdmin: {
		PermApplicationsRead, PermDocumentsManage, PermContractsSign,
	},
	RoleDoctor:       {PermApplicationsRead},
	RoleNurse:        {PermApplicationsRead},
	RoleReceptionist: {PermApplicationsRead},
}

// Principal is an authenticated caller.
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// Can reports whether the principal holds the permission.
func (p *Principal) Can(perm Permission) bool {
	if p.Role == RoleSuperAdmin {
		return true
	}
	for _, granted := range rolePermissions[p.Role] {
		if granted == perm {
			return true
		}
	}
	return false
}
