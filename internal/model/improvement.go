package model

import "time"

// Field limits for improvements, in runes.
const (
	MaxModuleLength  = 500
	MaxLinkLength    = 5000
	MaxKindLength    = 50
	MaxContentLength = 5000
)

// ImprovementFields is the field table for improvements. All five are
// required on create and update.
var ImprovementFields = []FieldSpec{
	{Name: "module", MaxLen: MaxModuleLength},
	{Name: "link", MaxLen: MaxLinkLength},
	{Name: "type", MaxLen: MaxKindLength},
	{Name: "content", MaxLen: MaxContentLength},
	{Name: "contact", MaxLen: MaxSubmitterLength},
}

// Improvement is a suggestion against a named module. Module is free text
// on purpose — modules are not a managed entity, and a foreign key here
// would force one into existence.
type Improvement struct {
	ID        int64     `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Published bool      `json:"published" db:"published"`
	Module    string    `json:"module"    db:"module"`
	Link      string    `json:"link"      db:"link"`
	Kind      string    `json:"type"      db:"type"` // a type tag, e.g. "bug", "feature"
	Content   string    `json:"content"   db:"content"`
	Contact   string    `json:"contact"   db:"contact"`
}

func (m *Improvement) OwnerID() string        { return m.UserID }
func (m *Improvement) SetOwner(userID string) { m.UserID = userID }

func (m *Improvement) Assign(fields map[string]string) {
	if v, ok := fields["module"]; ok {
		m.Module = v
	}
	if v, ok := fields["link"]; ok {
		m.Link = v
	}
	if v, ok := fields["type"]; ok {
		m.Kind = v
	}
	if v, ok := fields["content"]; ok {
		m.Content = v
	}
	if v, ok := fields["contact"]; ok {
		m.Contact = v
	}
}

// ImprovementView is the wire shape of an improvement.
type ImprovementView struct {
	ID        int64  `json:"id"`
	UserID    string `json:"userId"`
	Module    string `json:"module"`
	Link      string `json:"link"`
	Kind      string `json:"type"`
	Content   string `json:"content"`
	Contact   string `json:"contact"`
	Published bool   `json:"published"`
}

func (m *Improvement) View() any {
	return ImprovementView{
		ID:        m.ID,
		UserID:    m.UserID,
		Module:    m.Module,
		Link:      m.Link,
		Kind:      m.Kind,
		Content:   m.Content,
		Contact:   m.Contact,
		Published: m.Published,
	}
}
