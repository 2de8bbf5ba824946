package screens

import "github.com/rs/zerolog/log"

// Notification kinds
const (
	NotifySuccess = "success"
	NotifyError   = "error"
)

// Notifier receives one-shot user-facing notices (the snack bar of the
// web client). Screens report action outcomes through it; rendering is
// up to the embedding application.
type Notifier interface {
	Notify(kind, message string)
}

// LogNotifier writes notices to the log.
type LogNotifier struct{}

func (LogNotifier) Notify(kind, message string) {
	if kind == NotifyError {
		log.Warn().Msg(message)
		return
	}
	log.Info().Msg(message)
}

// NopNotifier discards notices.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string) {}
