// Package router implements the query understanding and response routing
// pipeline: one utterance in, one RoutingDecision out.
package router

import (
	"errors"
	"strings"
)

// ErrInputRejected marks an utterance that failed the content-safety
// pre-check. Terminal: no routing is attempted.
var ErrInputRejected = errors.New("input rejected")

// RejectionMessage is the fixed reply surfaced by the transport layer when
// an utterance is rejected.
const RejectionMessage = "Requête rejetée (contenu suspect). Reformule ta question simplement."

var injectionPatterns = []string{
	"ignore previous instructions",
	"system prompt",
	"developer message",
	"jailbreak",
	"do anything now",
	"reveal",
	"bypass",
	"override",
}

// CheckInput returns ErrInputRejected when the text matches a known
// prompt-injection pattern.
func CheckInput(text string) error {
	t := strings.ToLower(text)
	for _, p := range injectionPatterns {
		if strings.Contains(t, p) {
			return ErrInputRejected
		}
	}
	return nil
}
