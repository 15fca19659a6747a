package router

import (
	"fmt"

	"github.com/forumstartup/forum/shared/domain"
)

type Name string

const (
	Home        Name = "Home"
	Login       Name = "Login"
	Register    Name = "Register"
	Profile     Name = "Profile"
	Users       Name = "Users"
	UserProfile Name = "UserProfile"
	MyPosts     Name = "MyPosts"
	SharePost   Name = "SharePost"
	EditPost    Name = "EditPost"
	Post        Name = "Post"
)

const (
	HomePath     = "/"
	LoginPath    = "/login"
	RegisterPath = "/register"
	ProfilePath  = "/profile"
	UsersPath    = "/users"
	MyPostsPath  = "/my-posts"
	SharePath    = "/share"
)

// Route is one navigable screen. Roles, when set, admit only users
// holding at least one of them.
type Route struct {
	Name         Name
	Pattern      string
	RequiresAuth bool
	Roles        []domain.RoleName
}

// Routes is the forum's navigation table.
var Routes = []Route{
	{Name: Home, Pattern: HomePath},
	{Name: Login, Pattern: LoginPath},
	{Name: Register, Pattern: RegisterPath},
	{Name: Profile, Pattern: ProfilePath, RequiresAuth: true},
	{Name: Users, Pattern: UsersPath, RequiresAuth: true},
	{Name: UserProfile, Pattern: "/users/{userId}", RequiresAuth: true},
	{Name: MyPosts, Pattern: MyPostsPath, RequiresAuth: true},
	{Name: SharePost, Pattern: SharePath, RequiresAuth: true},
	{Name: EditPost, Pattern: "/my-posts/{postId}/edit", RequiresAuth: true},
	{Name: Post, Pattern: "/posts/{postId}", RequiresAuth: true},
}

func PostPath(id domain.PostId) string {
	return fmt.Sprintf("/posts/%d", id)
}

func EditPostPath(id domain.PostId) string {
	return fmt.Sprintf("/my-posts/%d/edit", id)
}

func UserPath(id domain.UserId) string {
	return fmt.Sprintf("/users/%d", id)
}
