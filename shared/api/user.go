package api

import "net/url"

// UserSelfUpdateRequest replaces the caller's own profile fields.
// Password is sent only when the user typed a new one.
type UserSelfUpdateRequest struct {
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Email           string  `json:"email"`
	ProfilePhotoUrl *string `json:"profilePhotoUrl"`
	Password        string  `json:"password,omitempty"`
}

// UserFilter narrows the admin user listing. Nil fields are not sent.
type UserFilter struct {
	ListParams
	Username  *string
	Email     *string
	FirstName *string
}

func (f UserFilter) Values() url.Values {
	v := f.ListParams.Values()
	setString(v, "username", f.Username)
	setString(v, "email", f.Email)
	setString(v, "firstName", f.FirstName)
	return v
}
