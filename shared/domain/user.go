package domain

const (
	RoleUser  RoleName = "ROLE_USER"
	RoleAdmin RoleName = "ROLE_ADMIN"
)

type Role struct {
	Id   int64    `json:"id,omitempty"`
	Name RoleName `json:"name"`
}

// CurrentUser is the signed-in account as reported by /private/auth/me.
// The endpoint may return only username and roles; the remaining fields
// are filled from the profile when it is loaded.
type CurrentUser struct {
	Id              UserId   `json:"id"`
	Username        Username `json:"username"`
	FirstName       string   `json:"firstName,omitempty"`
	LastName        string   `json:"lastName,omitempty"`
	Email           Email    `json:"email,omitempty"`
	Roles           []Role   `json:"roles"`
	Blocked         bool     `json:"isBlocked,omitempty"`
	ProfilePhotoUrl *string  `json:"profilePhotoUrl,omitempty"`
}

// HasRole reports whether the user holds any of the named roles.
func (u *CurrentUser) HasRole(names ...RoleName) bool {
	if u == nil {
		return false
	}
	return hasAnyRole(u.Roles, names)
}

func (u *CurrentUser) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Profile is the self-service view of an account.
type Profile struct {
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           Email     `json:"email"`
	Username        Username  `json:"username"`
	ProfilePhotoUrl *string   `json:"profilePhotoUrl"`
	CreatedAt       Timestamp `json:"createdAt"`
}

// AdminUser is an account as listed to administrators.
type AdminUser struct {
	Id        UserId    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     Email     `json:"email"`
	Username  Username  `json:"username"`
	Roles     []Role    `json:"roles"`
	CreatedAt Timestamp `json:"createdAt"`
	IsBlocked bool      `json:"isBlocked"`
}

func (u *AdminUser) HasRole(names ...RoleName) bool {
	return hasAnyRole(u.Roles, names)
}

func hasAnyRole(roles []Role, names []RoleName) bool {
	for _, r := range roles {
		for _, name := range names {
			if r.Name == name {
				return true
			}
		}
	}
	return false
}
