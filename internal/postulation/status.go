package postulation

import "strings"

// legacySynonyms maps free-form status strings written by older clients to
// the closed enumeration. Normalization happens only here, not in consumers.
var legacySynonyms = map[string]Status{
	"pendiente":       StatusSubmitted,
	"postulada":       StatusSubmitted,
	"postulado":       StatusSubmitted,
	"en_revision":     StatusUnderReview,
	"en revision":     StatusUnderReview,
	"aceptado":        StatusAccepted,
	"aceptada":        StatusAccepted,
	"rechazado":       StatusRejected,
	"rechazada":       StatusRejected,
	"lista_de_espera": StatusWaitlisted,
	"en_espera":       StatusWaitlisted,
	"cancelado":       StatusCancelled,
	"cancelada":       StatusCancelled,
	"completado":      StatusCompleted,
	"completada":      StatusCompleted,
	"finalizado":      StatusCompleted,
}

// Normalize maps a raw status string to the closed enumeration.
// It accepts both canonical values and legacy synonyms; ok is false for
// anything unrecognized.
func Normalize(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusAccepted,
		StatusRejected, StatusWaitlisted, StatusCancelled, StatusCompleted:
		return s, true
	}
	if mapped, ok := legacySynonyms[string(s)]; ok {
		return mapped, true
	}
	return "", false
}
