package sitesettings

// Settings is the public website configuration managed by admins.
// JSON names follow the API's getWebsiteSettings payload.
type Settings struct {
	SiteName     string `json:"site_name" validate:"required,max=100"`
	Tagline      string `json:"tagline" validate:"max=200"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone" validate:"omitempty,max=30"`
	Address      string `json:"address" validate:"max=300"`
	AboutUs      string `json:"about_us" validate:"max=20000"` // markdown
	FacebookURL  string `json:"facebook_url" validate:"omitempty,url"`
	InstagramURL string `json:"instagram_url" validate:"omitempty,url"`
}

// Fields returns the settings as API form fields.
// INVARIANT: Settings is not mutated
func (s Settings) Fields() map[string]string {
	return map[string]string{
		"site_name":     s.SiteName,
		"tagline":       s.Tagline,
		"contact_email": s.ContactEmail,
		"contact_phone": s.ContactPhone,
		"address":       s.Address,
		"about_us":      s.AboutUs,
		"facebook_url":  s.FacebookURL,
		"instagram_url": s.InstagramURL,
	}
}
