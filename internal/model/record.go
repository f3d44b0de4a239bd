package model

// Record is what the generic CRUD service needs from a user-submitted
// record type. Concrete types (Idea, Improvement) implement it with
// pointer receivers; everything else about them (columns, ids, timestamps)
// is handled by their concrete repositories.
type Record interface {
	// OwnerID returns the id of the user who created the record.
	// The access policy uses it for the post-fetch mutation check.
	OwnerID() string

	// SetOwner stamps the creating user onto a fresh record.
	SetOwner(userID string)

	// Assign copies values that already passed Collect onto the record.
	// Keys match the type's FieldSpec table; unknown keys are ignored.
	Assign(fields map[string]string)

	// View returns the serialization shape sent to clients.
	View() any
}
