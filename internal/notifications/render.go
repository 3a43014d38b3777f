package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"releasewatch/internal/release"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Message is one rendered notification, independent of transport.
type Message struct {
	Subject  string
	HTML     string
	Text     string
	Tags     []string
	Priority string
}

type kindStyle struct {
	emoji      string
	subject    string // fmt verb order: count, noun
	heading    string
	subheading string
	footer     string
	accent     string
	light      string
	badge      string
	tags       []string
	priority   string
	noun       [2]string
}

var styles = map[release.EventType]kindStyle{
	release.EventDiscovery: {
		emoji:      "📚",
		subject:    "%d new %s discovered!",
		heading:    "New Discovery",
		subheading: "%d new %s from your favorite authors",
		footer:     "More literary adventures await.",
		accent:     "#2D5A4A",
		light:      "#E8F0EC",
		badge:      "NEW DISCOVERY",
		tags:       []string{"books", "discovery"},
		noun:       [2]string{"book", "books"},
	},
	release.EventDateChange: {
		emoji:      "🔄",
		subject:    "%d release %s changed",
		heading:    "Date Change",
		subheading: "%d release %s moved",
		footer:     "Plans change. We keep watching.",
		accent:     "#34506B",
		light:      "#E9EEF3",
		badge:      "NEW DATE",
		tags:       []string{"books", "date_change"},
		noun:       [2]string{"date", "dates"},
	},
	release.EventReminder: {
		emoji:      "📅",
		subject:    "%d %s releasing in %d days!",
		heading:    "Release Reminder",
		subheading: "%d %s arriving in just %d days",
		footer:     "Mark your calendar.",
		accent:     "#8B6914",
		light:      "#FBF6E9",
		badge:      "COMING SOON",
		tags:       []string{"books", "reminder"},
		noun:       [2]string{"book", "books"},
	},
	release.EventReleaseDay: {
		emoji:      "🎉",
		subject:    "%d %s available now!",
		heading:    "Available Now",
		subheading: "%d %s ready for your reading list",
		footer:     "Happy reading.",
		accent:     "#8B1538",
		light:      "#FAF0F2",
		badge:      "OUT TODAY",
		tags:       []string{"books", "release_day"},
		priority:   "high",
		noun:       [2]string{"book", "books"},
	},
}

const failureSubject = "🚨 Book Tracker Failure Alert - Action Required"

const testSubject = "📚 Test Notification - Book Release Tracker"

type pageData struct {
	Masthead    string
	Heading     string
	Subheading  string
	Generated   string
	Footer      string
	Accent      string
	AccentLight string
	Badge       string
	Books       []bookView
	Details     string
}

type bookView struct {
	Title     string
	Author    string
	Series    string
	Date      string
	SourceURL string
	Change    *changeView
}

type changeView struct {
	Old string
	New string
}

// Renderer turns batches into Messages.
type Renderer struct {
	leadDays int
	now      func() time.Time
}

// NewRenderer returns a Renderer whose reminder wording uses leadDays.
func NewRenderer(leadDays int) *Renderer {
	return &Renderer{leadDays: leadDays, now: time.Now}
}

// Batch renders one notification covering books.
func (r *Renderer) Batch(kind release.EventType, books []release.Record) (Message, error) {
	style, ok := styles[kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown notification kind %q", kind)
	}
	count := len(books)
	noun := style.noun[1]
	if count == 1 {
		noun = style.noun[0]
	}
	args := []any{count, noun}
	if kind == release.EventReminder {
		args = append(args, r.leadDays)
	}

	data := pageData{
		Masthead:    "Your Personal",
		Heading:     style.heading,
		Subheading:  fmt.Sprintf(style.subheading, args...),
		Generated:   strings.ToUpper(r.now().Format("January 2006")),
		Footer:      style.footer,
		Accent:      style.accent,
		AccentLight: style.light,
		Badge:       style.badge,
		Books:       make([]bookView, 0, count),
	}
	if kind == release.EventReminder {
		data.Badge = fmt.Sprintf("%d DAYS", r.leadDays)
	}
	for _, rec := range books {
		view := bookView{
			Title:     fallback(rec.Title, "Unknown Title"),
			Author:    fallback(rec.Author, "Unknown Author"),
			Series:    rec.Metadata[release.MetaSeries],
			Date:      DisplayDate(rec.ReleaseDate),
			SourceURL: rec.SourceURL,
		}
		if kind == release.EventDateChange && rec.PendingDateChange != nil {
			view.Change = &changeView{
				Old: fallback(DisplayDate(rec.PendingDateChange.OldDate), "unknown"),
				New: fallback(DisplayDate(rec.PendingDateChange.NewDate), "unknown"),
			}
		}
		data.Books = append(data.Books, view)
	}

	msg, err := r.render("batch", data)
	if err != nil {
		return Message{}, err
	}
	msg.Subject = style.emoji + " " + fmt.Sprintf(style.subject, args...)
	msg.Tags = style.tags
	msg.Priority = style.priority
	return msg, nil
}

// FailureAlert renders the operator alert sent when a cycle fails.
func (r *Renderer) FailureAlert(details string) (Message, error) {
	msg, err := r.render("alert", pageData{
		Masthead:   "System Alert",
		Heading:    "Action Required",
		Subheading: "Your tracker encountered an issue",
		Generated:  r.now().Format("January 2, 2006"),
		Footer:     "Automated system alert",
		Details:    strings.TrimSpace(details),
	})
	if err != nil {
		return Message{}, err
	}
	msg.Subject = failureSubject
	msg.Tags = []string{"books", "alert"}
	msg.Priority = "urgent"
	return msg, nil
}

// Test renders the configuration check notification.
func (r *Renderer) Test() (Message, error) {
	msg, err := r.render("test", pageData{
		Masthead:   "Your Personal",
		Heading:    "Configuration Verified",
		Subheading: "Your notification setup is working correctly",
		Generated:  r.now().Format("January 2, 2006"),
		Footer:     "Happy reading ahead.",
	})
	if err != nil {
		return Message{}, err
	}
	msg.Subject = testSubject
	msg.Tags = []string{"books", "test"}
	msg.Priority = "low"
	return msg, nil
}

func (r *Renderer) render(name string, data pageData) (Message, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Message{}, fmt.Errorf("render %s template: %w", name, err)
	}
	html := buf.String()
	text, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return Message{}, fmt.Errorf("convert %s to text: %w", name, err)
	}
	return Message{HTML: html, Text: strings.TrimSpace(text)}, nil
}

// DisplayDate renders a stored release date as "December 9, 2025". Values
// that are not ISO dates are returned unchanged.
func DisplayDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return t.Format("January 2, 2006")
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
