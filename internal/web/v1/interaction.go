package v1

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/duynhne/profile-web/internal/core/domain"
	logicv1 "github.com/duynhne/profile-web/internal/logic/v1"
)

// Notice is a toast shown to the user after a request.
type Notice struct {
	Message    string `json:"message"`
	DurationMs int64  `json:"durationMs"`
	Kind       string `json:"kind"`
}

// Prompt asks the user to confirm and re-send the request with confirmed=true.
type Prompt struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// interaction collects what the components tell the user during one request.
// It implements domain.Notifier, domain.Confirmer and domain.Navigator.
//
// Confirmation is two-step: the first request carries no answer, so Confirm
// records a prompt and declines; the client re-sends with confirmed set.
type interaction struct {
	confirmed *bool
	notices   []Notice
	prompt    *Prompt
	redirect  string
}

func newInteraction(confirmed *bool) *interaction {
	return &interaction{confirmed: confirmed}
}

func (i *interaction) Notify(_ context.Context, message string, d time.Duration, kind domain.NotificationKind) {
	i.notices = append(i.notices, Notice{
		Message:    message,
		DurationMs: d.Milliseconds(),
		Kind:       string(kind),
	})
}

func (i *interaction) Confirm(_ context.Context, message, kind string) bool {
	if i.confirmed != nil {
		return *i.confirmed
	}
	i.prompt = &Prompt{Message: message, Kind: kind}
	return false
}

func (i *interaction) Navigate(path string) {
	i.redirect = path
}

func (i *interaction) forLogic(logger *zap.Logger) logicv1.Interaction {
	return logicv1.Interaction{
		Notifier:  i,
		Confirmer: i,
		Navigator: i,
		Logger:    logger,
	}
}
