package chat

import (
	"strings"
	"testing"
)

func TestResponderReply(t *testing.T) {
	r := NewResponder(nil)

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"greeting", "Hola, ¿cómo estás?", "asistente"},
		{"postulation keyword", "¿Cómo veo mi postulación?", "Mis Postulaciones"},
		{"case insensitive", "QUIERO UN VOLUNTARIADO", "Explorar"},
		{"reminders", "no me llegó el aviso", "un día antes"},
		{"goal", "¿cuántas horas llevo?", "meta mensual"},
		{"unknown", "asdfghjkl", "No entendí"},
		{"empty", "   ", "No entendí"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Reply(tt.message)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Reply(%q) = %q, want substring %q", tt.message, got, tt.want)
			}
		})
	}
}
