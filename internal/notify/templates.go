package notify

import (
	"bytes"
	"text/template"
)

// Templates is a map of template ID to template content. Copy is in Spanish
// because that is what the mobile app ships to its users.
var Templates = map[string]string{
	"postulation_accepted": `
		Hola {{.UserName}},

		¡Felicitaciones! Tu postulación a "{{.OpportunityTitle}}" fue aceptada.

		Revisá la app para ver los próximos pasos.
	`,
	"postulation_rejected": `
		Hola {{.UserName}},

		Tu postulación a "{{.OpportunityTitle}}" no fue seleccionada en esta ocasión.

		Hay muchas otras oportunidades esperándote en la app.
	`,
	"postulation_status": `
		Hola {{.UserName}},

		Tu postulación a "{{.OpportunityTitle}}" cambió de estado: {{.Status}}.
	`,
	"opportunity_published": `
		Hola {{.UserName}},

		Hay una nueva oportunidad de voluntariado: "{{.OpportunityTitle}}".

		Entrá a la app para postularte.
	`,
	"reminder": `
		Hola {{.UserName}},

		{{.Body}}
	`,
	// Pre-rendered content, used when the producer already built the copy.
	"raw": `{{.Body}}`,
}

// RenderTemplate renders a template by ID with the given data.
func RenderTemplate(templateID string, data map[string]string) (string, error) {
	content, ok := Templates[templateID]
	if !ok {
		return "Notificación: " + templateID, nil
	}

	tmpl, err := template.New(templateID).Parse(content)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
