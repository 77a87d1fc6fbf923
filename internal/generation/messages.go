package generation

import (
	"fmt"

	"github.com/mandalnilabja/inkgate/internal/types"
)

// User-facing messages. The studio site is German.
const (
	MsgUnconfigured  = "KI-Service nicht konfiguriert. Bitte kontaktiere den Administrator."
	MsgAllFailed     = "Alle KI-Modelle sind nicht verfügbar. Versuche es später erneut."
	MsgTimeout       = "KI-Generierung dauert zu lange. Versuche es mit einer kürzeren Beschreibung."
	MsgNetwork       = "Netzwerkfehler bei der KI-Generierung. Prüfe deine Internetverbindung."
	MsgRateLimited   = "Zu viele Anfragen. Bitte warte 10 Minuten bevor du es erneut versuchst."
	MsgInternalError = "Ein unerwarteter Fehler ist aufgetreten. Versuche es später erneut."
)

// RateLimitedMessage formats the wait message for a window of the given
// length in minutes.
func RateLimitedMessage(minutes int) string {
	if minutes == 10 {
		return MsgRateLimited
	}
	if minutes <= 1 {
		return "Zu viele Anfragen. Bitte warte eine Minute bevor du es erneut versuchst."
	}
	return fmt.Sprintf("Zu viele Anfragen. Bitte warte %d Minuten bevor du es erneut versuchst.", minutes)
}

// failureMessage explains a failed attempt of the given kind.
func failureMessage(a Attempt) string {
	switch a.Kind {
	case types.KindUnavailable:
		if a.StatusCode == 0 {
			return MsgNetwork
		}
		return fmt.Sprintf("%s ist überlastet. Versuche es in wenigen Minuten erneut.", a.Provider)
	case types.KindLoading:
		return fmt.Sprintf("%s lädt noch. Versuche es in 1-2 Minuten erneut.", a.Provider)
	case types.KindTimeout:
		return MsgTimeout
	default:
		return MsgAllFailed
	}
}

// fallbackMessage picks the message for a request that ended in the
// fallback. The most recent surfaced failure wins; silent failures only
// produce the generic message.
func fallbackMessage(attempts []Attempt) string {
	contacted := false
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		if a.Kind == types.KindUnconfigured {
			continue
		}
		contacted = true
		if a.Kind.Surfaced() {
			return failureMessage(a)
		}
	}
	if !contacted {
		return MsgUnconfigured
	}
	return MsgAllFailed
}
