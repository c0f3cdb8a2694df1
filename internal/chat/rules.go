package chat

import "strings"

// Rule maps message keywords to a scripted reply. First match wins.
type Rule struct {
	Keywords []string
	Reply    string
}

var defaultRules = []Rule{
	{
		Keywords: []string{"hola", "buenas", "buen día"},
		Reply:    "¡Hola! Soy el asistente de VoluntApp. Puedo ayudarte con oportunidades, postulaciones y recordatorios.",
	},
	{
		Keywords: []string{"postulación", "postulacion", "postular"},
		Reply:    "Para postularte, abrí la oportunidad que te interese y tocá \"Postularme\". Podés seguir el estado desde la pestaña Mis Postulaciones.",
	},
	{
		Keywords: []string{"oportunidad", "voluntariado", "actividad"},
		Reply:    "Encontrá oportunidades en la pestaña Explorar. Podés filtrar por categoría y guardar tus favoritas.",
	},
	{
		Keywords: []string{"recordatorio", "notificación", "notificacion", "aviso"},
		Reply:    "Te avisamos un día antes del cierre de inscripción y la mañana del inicio de cada voluntariado activo. Revisá que las notificaciones estén habilitadas.",
	},
	{
		Keywords: []string{"meta", "horas", "progreso"},
		Reply:    "Tu meta mensual de horas se configura desde tu perfil. Cada voluntariado completado suma a tu progreso.",
	},
	{
		Keywords: []string{"gracias", "genial"},
		Reply:    "¡De nada! Cualquier otra duda, acá estoy.",
	},
}

const fallbackReply = "No entendí tu consulta. Probá preguntarme por oportunidades, postulaciones, recordatorios o tu meta mensual."

// Responder answers messages from the rule table, optionally enriching the
// reply through an external service.
type Responder struct {
	rules    []Rule
	enricher *EnrichmentClient
}

func NewResponder(enricher *EnrichmentClient) *Responder {
	return &Responder{rules: defaultRules, enricher: enricher}
}

// Reply picks the scripted reply for a message. Matching is case-insensitive
// substring search over the rule keywords.
func (r *Responder) Reply(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return fallbackReply
	}
	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Reply
			}
		}
	}
	return fallbackReply
}
