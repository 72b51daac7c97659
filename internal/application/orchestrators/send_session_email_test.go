package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"bogoninja/internal/adapters/email/templates"
	"bogoninja/internal/domain/announcement"
	"bogoninja/internal/domain/registrant"
	"bogoninja/internal/domain/unsubscribe"
)

func newSessionEmailDeps(t *testing.T, n int, sender *recordingSender) SendSessionEmailDeps {
	t.Helper()
	store := newMockRegistrantStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		email := fmt.Sprintf("ninja%03d@example.com", i)
		store.rows[email] = registrant.Registrant{
			ID:        fmt.Sprint(i),
			Email:     email,
			Name:      fmt.Sprintf("Ninja %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	renderer, err := templates.New("https://bogota.ninja")
	if err != nil {
		t.Fatalf("templates.New: %v", err)
	}
	signer, err := unsubscribe.NewSigner([]byte("unsub-secret"))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return SendSessionEmailDeps{
		RegistrantStore: store,
		Sender:          sender,
		Renderer:        renderer,
		Signer:          signer,
		BaseURL:         "https://bogota.ninja",
	}
}

func validAnnouncement() announcement.Announcement {
	return announcement.Announcement{Fecha: "01-03", Hora: "07:00", Location: "Parque Nacional", MapsLink: "https://maps.app.goo.gl/x"}
}

// TestSendSessionEmailBatches verifies 150 registrants go out as 100 + 50.
func TestSendSessionEmailBatches(t *testing.T) {
	sender := &recordingSender{}
	deps := newSessionEmailDeps(t, 150, sender)

	res, err := ExecuteSendSessionEmail(context.Background(), validAnnouncement(), deps)
	if err != nil {
		t.Fatalf("ExecuteSendSessionEmail: %v", err)
	}
	if res.Sent != 150 || res.Total != 150 || len(res.Errors) != 0 {
		t.Errorf("result = %+v, want 150/150 no errors", res)
	}
	if len(sender.batches) != 2 || len(sender.batches[0]) != 100 || len(sender.batches[1]) != 50 {
		t.Fatalf("batch sizes = %d batches, want 100 + 50", len(sender.batches))
	}

	first := sender.batches[0][0]
	if first.To[0] != "ninja000@example.com" {
		t.Errorf("first recipient = %s, want oldest registrant", first.To[0])
	}
	if !strings.Contains(first.HTML, "¡Hola Ninja 0!") || !strings.Contains(first.HTML, "01 de Marzo a las 07:00 am") {
		t.Error("message is not personalized")
	}
	token := deps.Signer.Generate("ninja000@example.com")
	if !strings.Contains(first.Headers["List-Unsubscribe"], token) {
		t.Error("List-Unsubscribe header missing the recipient token")
	}
}

// TestSendSessionEmailBatchFailureContinues verifies a failed batch is reported and skipped.
func TestSendSessionEmailBatchFailureContinues(t *testing.T) {
	sender := &recordingSender{failCall: map[int]bool{0: true}}
	deps := newSessionEmailDeps(t, 250, sender)

	res, err := ExecuteSendSessionEmail(context.Background(), validAnnouncement(), deps)
	if err != nil {
		t.Fatalf("ExecuteSendSessionEmail: %v", err)
	}
	if res.Sent != 150 || res.Total != 250 {
		t.Errorf("Sent/Total = %d/%d, want 150/250", res.Sent, res.Total)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "provider unavailable") {
		t.Errorf("Errors = %v", res.Errors)
	}
	if sender.calls != 3 {
		t.Errorf("batch calls = %d, want 3", sender.calls)
	}
}

func TestSendSessionEmailNoRegistrants(t *testing.T) {
	sender := &recordingSender{}
	_, err := ExecuteSendSessionEmail(context.Background(), validAnnouncement(), newSessionEmailDeps(t, 0, sender))
	if !errors.Is(err, ErrNoRegistrants) {
		t.Errorf("error = %v, want ErrNoRegistrants", err)
	}
	if sender.calls != 0 {
		t.Error("no batch expected")
	}
}

func TestSendSessionEmailInvalidInput(t *testing.T) {
	sender := &recordingSender{}
	in := validAnnouncement()
	in.Hora = "25:00"
	_, err := ExecuteSendSessionEmail(context.Background(), in, newSessionEmailDeps(t, 3, sender))
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, announcement.ErrInvalidHora) {
		t.Errorf("error = %v, want invalid hora", err)
	}
}
