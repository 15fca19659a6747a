package validation

import "regexp"

const (
	FieldTitle     = "title"
	FieldContent   = "content"
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldUsername  = "username"
	FieldPassword  = "password"
	FieldTag       = "tag"
)

const (
	TitleMinLen   = 16
	TitleMaxLen   = 64
	ContentMinLen = 32
	ContentMaxLen = 8192
	CommentMaxLen = 1000
	TagMinLen     = 2
	TagMaxLen     = 32
)

var tagPattern = regexp.MustCompile(`^[a-zA-Z0-9\- ]+$`)

var PostRules = RuleSet{
	{Name: FieldTitle, Rules: []Rule{
		Required("Title is required"),
		MinLen(TitleMinLen, "Title must be at least 16 characters"),
		MaxLen(TitleMaxLen, "Title cannot exceed 64 characters"),
	}},
	{Name: FieldContent, Rules: []Rule{
		Required("Content is required"),
		MinLen(ContentMinLen, "Content must be at least 32 characters"),
		MaxLen(ContentMaxLen, "Content cannot exceed 8192 characters"),
	}},
}

var CommentRules = RuleSet{
	{Name: FieldContent, Rules: []Rule{
		Required("Content is required"),
		MaxLen(CommentMaxLen, "Comment cannot exceed 1000 characters"),
	}},
}

var (
	firstNameRule = Length(4, 32, "First name must be 4–32 characters")
	lastNameRule  = Length(4, 32, "Last name must be 4–32 characters")
	emailRule     = Email("Please enter a valid email")
	passwordRule  = Length(6, 50, "Password must be 6–50 characters")
)

var RegisterRules = RuleSet{
	{Name: FieldFirstName, Rules: []Rule{firstNameRule}},
	{Name: FieldLastName, Rules: []Rule{lastNameRule}},
	{Name: FieldEmail, Rules: []Rule{emailRule}},
	{Name: FieldUsername, Rules: []Rule{Required("Username is required")}},
	{Name: FieldPassword, Rules: []Rule{passwordRule}},
}

// ProfileRules is RegisterRules without the username and with an optional password.
var ProfileRules = RuleSet{
	{Name: FieldFirstName, Rules: []Rule{firstNameRule}},
	{Name: FieldLastName, Rules: []Rule{lastNameRule}},
	{Name: FieldEmail, Rules: []Rule{emailRule}},
	{Name: FieldPassword, Rules: []Rule{Optional(passwordRule)}},
}

var TagRules = RuleSet{
	{Name: FieldTag, Rules: []Rule{
		Required("Tag cannot be blank"),
		Length(TagMinLen, TagMaxLen, "Tag length must be between 2 and 32 characters."),
		Matches(tagPattern, "Tag may contain only letters, digits, spaces, and hyphens."),
	}},
}

// LoginMessages names the failure of each required login field.
var LoginMessages = map[string]string{
	FieldUsername: "Username is required",
	FieldPassword: "Password is required",
}
