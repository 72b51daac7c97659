package orchestrators

import (
	"context"
	"log/slog"
	"sync"
	"time"

	emailAdapter "bogoninja/internal/adapters/email"
	"bogoninja/internal/adapters/email/templates"
	"bogoninja/internal/domain/registrant"
	"bogoninja/internal/domain/unsubscribe"
)

// DefaultNotifyTimeout bounds one background notification job.
const DefaultNotifyTimeout = 30 * time.Second

// NotifierDeps holds dependencies for Notifier.
type NotifierDeps struct {
	Sender   emailAdapter.Sender
	Renderer *templates.Renderer
	Signer   *unsubscribe.Signer
	BaseURL  string
	CopyTo   string // empty disables the copy notification
	Timeout  time.Duration
	Now      func() time.Time
}

// Notifier sends the emails that follow a contact submission in the
// background. Failures are logged and never reach the submitter.
type Notifier struct {
	deps NotifierDeps
	wg   sync.WaitGroup
}

// NewNotifier creates a Notifier.
// PRE: Sender, Renderer and Signer are non-nil
func NewNotifier(deps NotifierDeps) *Notifier {
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultNotifyTimeout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Notifier{deps: deps}
}

// RegistrantSaved queues the welcome or update email and the copy notification.
// The job outlives the request: it keeps ctx values but not its cancellation.
// POST: Returns immediately; Wait blocks until the job finishes
func (n *Notifier) RegistrantSaved(ctx context.Context, reg registrant.Registrant, isNew bool) {
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, n.deps.Timeout)
		defer cancel()
		n.notify(ctx, reg, isNew)
	}()
}

// Wait blocks until every queued job has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) notify(ctx context.Context, reg registrant.Registrant, isNew bool) {
	unsubscribeURL := n.deps.Signer.URL(reg.Email, n.deps.BaseURL)

	var msg templates.Message
	var err error
	if isNew {
		msg, err = n.deps.Renderer.Welcome(unsubscribeURL)
	} else {
		msg, err = n.deps.Renderer.Update(reg, unsubscribeURL)
	}
	if err != nil {
		slog.Error("email_event", "event", "render_failed", "kind", kindOf(isNew), "error", err)
	} else {
		_, err = n.deps.Sender.Send(ctx, emailAdapter.SendRequest{
			To:      []string{reg.Email},
			Subject: msg.Subject,
			HTML:    msg.HTML,
			Headers: listUnsubscribeHeaders(unsubscribeURL),
		})
		if err != nil {
			slog.Error("email_event", "event", "notify_failed", "kind", kindOf(isNew), "error", err)
		}
	}

	if n.deps.CopyTo == "" {
		return
	}
	copyMsg, err := n.deps.Renderer.CopyNotification(reg, isNew, n.deps.Now())
	if err != nil {
		slog.Error("email_event", "event", "render_failed", "kind", "copy", "error", err)
		return
	}
	if _, err := n.deps.Sender.Send(ctx, emailAdapter.SendRequest{
		To:      []string{n.deps.CopyTo},
		Subject: copyMsg.Subject,
		HTML:    copyMsg.HTML,
	}); err != nil {
		slog.Error("email_event", "event", "notify_failed", "kind", "copy", "error", err)
	}
}

func kindOf(isNew bool) string {
	if isNew {
		return "welcome"
	}
	return "update"
}

// listUnsubscribeHeaders lets mail clients show a native unsubscribe action.
func listUnsubscribeHeaders(url string) map[string]string {
	return map[string]string{"List-Unsubscribe": "<" + url + ">"}
}
