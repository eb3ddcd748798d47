package email

// PreviewData holds sample values for every template, used by the
// email preview command and the template tests.
var PreviewData = map[Template]map[string]any{
	TemplateVerification: {
		"Name":      "Jane Doe",
		"Token":     "482913",
		"ExpiresIn": "1 hour",
	},
	TemplatePasswordReset: {
		"Name":      "Jane Doe",
		"Token":     "771024",
		"ExpiresIn": "15 minutes",
	},
	TemplateWelcome: {
		"Name": "jane doe",
	},
	TemplateCustom: {
		"Body": "Hello quiz masters,\n\nA new season of weekly quizzes starts on Monday.",
	},
}

// Preview renders tmpl with its sample data.
func (r *Renderer) Preview(tmpl Template) (string, string, error) {
	data := map[string]any{"AppName": "Quiz API"}
	for k, v := range PreviewData[tmpl] {
		data[k] = v
	}
	return r.Render(tmpl, data)
}
