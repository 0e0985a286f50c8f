package domain

type UserRole string

const (
	RolePlayer        UserRole = "player"
	RoleFacilityOwner UserRole = "facility_owner"
	RoleAdmin         UserRole = "admin"
)

type User struct {
	ID       int64
	Name     string
	Role     UserRole
	IsActive bool
}
