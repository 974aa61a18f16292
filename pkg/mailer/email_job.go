package mailer

// EmailJob is the JSON message carried on the email queue. Either Template
// (with Data) or Subject plus Text/HTML must be set; Render resolves both
// forms to the same subject and bodies.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // templates.Welcome, templates.VerifyOTP, templates.ResetOTP
	Data     map[string]any `json:"data,omitempty"`
}

// IsTemplate reports whether the body comes from a registered template
func (j EmailJob) IsTemplate() bool { return j.Template != "" }
