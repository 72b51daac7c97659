// Package templates renders outgoing emails: a Markdown body per message
// kind, converted with goldmark and wrapped in a shared HTML layout.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"bogoninja/internal/domain/announcement"
	"bogoninja/internal/domain/registrant"
)

//go:embed layout.html *.md
var files embed.FS

// Subjects of each message kind.
const (
	SubjectWelcome = "Ninja Moderno - Bogota.ninja"
	SubjectUpdate  = "Ninja Moderno - Bogota.ninja"
	SubjectSession = "🥷 Siguiente Sesión - Bogota.ninja!"
	SubjectCopy    = "Bogota.ninja - Nuevo Ninja"
)

// TelegramURL is the call to action of the welcome and update emails.
const TelegramURL = "https://t.me/azanorivers"

// bogota is the time zone used to stamp copy notifications.
var bogota = time.FixedZone("COT", -5*60*60)

// Message is a rendered email.
type Message struct {
	Subject string
	HTML    string
}

// Action is the optional button under the body.
type Action struct {
	Label string
	URL   string
}

type layoutData struct {
	Title          string
	BaseURL        string
	Body           template.HTML
	Action         *Action
	UnsubscribeURL string
}

// Renderer renders every outgoing email kind.
type Renderer struct {
	baseURL string
	layout  *template.Template
	bodies  *texttemplate.Template
	md      goldmark.Markdown
}

// New parses the embedded templates.
// POST: Returns a renderer safe for concurrent use
func New(baseURL string) (*Renderer, error) {
	layout, err := template.ParseFS(files, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse email layout: %w", err)
	}
	bodies, err := texttemplate.New("bodies").
		Funcs(texttemplate.FuncMap{"md": escapeMarkdown}).
		ParseFS(files, "*.md")
	if err != nil {
		return nil, fmt.Errorf("parse email bodies: %w", err)
	}
	return &Renderer{
		baseURL: strings.TrimRight(baseURL, "/"),
		layout:  layout,
		bodies:  bodies,
		// Raw HTML in bodies is dropped (WithUnsafe is not set).
		md: goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps())),
	}, nil
}

// Welcome renders the first-registration email.
func (r *Renderer) Welcome(unsubscribeURL string) (Message, error) {
	html, err := r.render("welcome.md", nil, layoutData{
		Title:          "Bogoninja · Bienvenida",
		Action:         &Action{Label: "Escríbeme a Telegram", URL: TelegramURL},
		UnsubscribeURL: unsubscribeURL,
	})
	return Message{Subject: SubjectWelcome, HTML: html}, err
}

// Update renders the confirmation sent after a registrant changes their data.
func (r *Renderer) Update(reg registrant.Registrant, unsubscribeURL string) (Message, error) {
	data := map[string]string{
		"Name":       reg.Name,
		"Improve":    reg.Improve,
		"Experience": reg.Experience,
		"Location":   reg.LocationName(),
	}
	html, err := r.render("update.md", data, layoutData{
		Title:          "Bogoninja - Datos Actualizados",
		Action:         &Action{Label: "Escríbeme a Telegram", URL: TelegramURL},
		UnsubscribeURL: unsubscribeURL,
	})
	return Message{Subject: SubjectUpdate, HTML: html}, err
}

// Session renders one personalized session announcement.
// PRE: a has been validated
func (r *Renderer) Session(name string, a announcement.Announcement, unsubscribeURL string) (Message, error) {
	data := map[string]string{
		"Name":     name,
		"Date":     a.LongDate(),
		"Time":     a.TimeOfDay(),
		"Location": a.Location,
	}
	html, err := r.render("session.md", data, layoutData{
		Title:          "Bogoninja · Sesión de Entrenamiento",
		Action:         &Action{Label: "📍 Abrir en Google Maps", URL: a.MapsLink},
		UnsubscribeURL: unsubscribeURL,
	})
	return Message{Subject: SubjectSession, HTML: html}, err
}

// CopyNotification renders the internal notice of a form submission.
func (r *Renderer) CopyNotification(reg registrant.Registrant, isNew bool, at time.Time) (Message, error) {
	data := map[string]any{
		"IsNew":      isNew,
		"Name":       reg.Name,
		"Email":      reg.Email,
		"Improve":    reg.Improve,
		"Experience": reg.Experience,
		"Location":   reg.LocationName(),
		"At":         at.In(bogota).Format("02/01/2006 15:04"),
	}
	html, err := r.render("copy.md", data, layoutData{Title: "Nuevo Registro - Bogota.ninja"})
	return Message{Subject: SubjectCopy, HTML: html}, err
}

// render executes a Markdown body, converts it to HTML and wraps it in the layout.
func (r *Renderer) render(body string, data any, page layoutData) (string, error) {
	var md bytes.Buffer
	if err := r.bodies.ExecuteTemplate(&md, body, data); err != nil {
		return "", fmt.Errorf("render %s: %w", body, err)
	}
	var html bytes.Buffer
	if err := r.md.Convert(md.Bytes(), &html); err != nil {
		return "", fmt.Errorf("convert %s: %w", body, err)
	}

	page.BaseURL = r.baseURL
	page.Body = template.HTML(html.String())
	var out bytes.Buffer
	if err := r.layout.ExecuteTemplate(&out, "layout.html", page); err != nil {
		return "", fmt.Errorf("render layout: %w", err)
	}
	return out.String(), nil
}

// escapeMarkdown backslash-escapes ASCII punctuation so user input renders
// as literal text, and folds newlines so it stays inside its list item.
func escapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		switch {
		case c == '\n' || c == '\r':
			b.WriteByte(' ')
		case c < 128 && strings.ContainsRune("\\`*_{}[]()<>#+-.!|~&\"'", c):
			b.WriteByte('\\')
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
