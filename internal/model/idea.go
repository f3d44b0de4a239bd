package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Field limits for ideas, in runes. Stored values never exceed these; the
// slug is derived from the (possibly truncated) stored title, so it can
// never disagree with what is persisted.
const (
	MaxIdeaTitleLength = 500
	MaxIdeaBodyLength  = 5000
	MaxSubmitterLength = 500 // submitter name and contact share a limit
)

// IdeaFields is the field table for ideas. All four are required on both
// create and update. Name and contact are the SUBMITTER'S display fields,
// deliberately decoupled from the authenticated user so a logged-in user
// can submit under a different (or anonymous-looking) byline.
var IdeaFields = []FieldSpec{
	{Name: "title", MaxLen: MaxIdeaTitleLength},
	{Name: "body", MaxLen: MaxIdeaBodyLength},
	{Name: "name", MaxLen: MaxSubmitterLength},
	{Name: "contact", MaxLen: MaxSubmitterLength},
}

// Idea is a pitch submitted by a user. Published starts false; it is
// flipped by moderation (the CSV import tool), never through the public
// API.
type Idea struct {
	ID        int64     `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Published bool      `json:"published" db:"published"`
	Title     string    `json:"title"     db:"title"`
	Body      string    `json:"body"      db:"body"`
	Name      string    `json:"name"      db:"name"`    // submitter display name
	Contact   string    `json:"contact"   db:"contact"` // submitter contact
}

func (i *Idea) OwnerID() string        { return i.UserID }
func (i *Idea) SetOwner(userID string) { i.UserID = userID }

func (i *Idea) Assign(fields map[string]string) {
	if v, ok := fields["title"]; ok {
		i.Title = v
	}
	if v, ok := fields["body"]; ok {
		i.Body = v
	}
	if v, ok := fields["name"]; ok {
		i.Name = v
	}
	if v, ok := fields["contact"]; ok {
		i.Contact = v
	}
}

// IdeaView is the wire shape of an idea. Votes and Loved are filled in by
// the idea service from the vote aggregator; View returns them zeroed.
//
// Dates are pre-formatted server-side — the frontend should not have to
// deal with JS date parsing for a display-only value.
type IdeaView struct {
	ID           int64    `json:"id"`
	UserID       string   `json:"userId"`
	Contributors []string `json:"contributors"`
	ShortDate    string   `json:"shortDate"` // e.g. "3.14.2026"
	LongDate     string   `json:"longDate"`  // e.g. "March 14, 2026"
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Body         string   `json:"body"`
	Published    bool     `json:"published"`
	Votes        int      `json:"votes"`
	Loved        bool     `json:"loved"`
}

func (i *Idea) View() any {
	return IdeaView{
		ID:           i.ID,
		UserID:       i.UserID,
		Contributors: []string{i.contributorName()},
		ShortDate:    fmt.Sprintf("%d.%d.%d", i.CreatedAt.Month(), i.CreatedAt.Day(), i.CreatedAt.Year()),
		LongDate:     i.CreatedAt.Format("January 2, 2006"),
		Title:        i.Title,
		Slug:         Slugify(i.Title),
		Body:         i.Body,
		Published:    i.Published,
	}
}

// contributorName mirrors User.PublicName for the submitter byline: a
// blank name with an @handle contact shows the handle.
func (i *Idea) contributorName() string {
	if i.Name == "" && strings.HasPrefix(i.Contact, "@") {
		return i.Contact
	}
	return i.Name
}

// nonWord matches runs of anything outside [0-9A-Za-z_].
var nonWord = regexp.MustCompile(`\W+`)

// Slugify derives a URL slug from a title: lowercase, every run of
// non-word characters collapsed to a single "-", and no leading or
// trailing separator. "Hello, World!!" → "hello-world".
func Slugify(title string) string {
	slug := nonWord.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
