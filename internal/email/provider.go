package email

// Provider sends outbound mail. Implementations must be safe for
// concurrent use; callers treat delivery as best effort.
type Provider interface {
	// Send delivers a single message.
	Send(email *Email) error

	// SendTemplate renders a named template and delivers the result.
	SendTemplate(to []string, subject, templateName string, data TemplateData) error

	// Validate checks the provider configuration.
	Validate() error
}
