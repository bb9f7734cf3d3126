package profile

// Profile is the editable account profile returned by getUserProfile.
type Profile struct {
	FirstName string `json:"first_name" validate:"required,max=60"`
	LastName  string `json:"last_name" validate:"required,max=60"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Avatar    string `json:"profile_picture"`
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=8,nefield=CurrentPassword"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

// Signup is the registration form.
type Signup struct {
	FirstName       string `validate:"required,max=60"`
	LastName        string `validate:"required,max=60"`
	Email           string `validate:"required,email,max=254"`
	Password        string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Role            string `validate:"required,oneof=Client Organizer"`
}

// Fields returns the profile as API form fields.
func (p Profile) Fields() map[string]string {
	return map[string]string{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"email":      p.Email,
		"phone":      p.Phone,
	}
}
