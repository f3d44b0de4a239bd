package model

import (
	"strings"
	"testing"
	"time"
)

// =========================================================================
// SLUG TESTS
// =========================================================================

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World!!", "hello-world"},
		{"simple", "simple"},
		{"Already-Dashed Title", "already-dashed-title"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"100% better API (v2)", "100-better-api-v2"},
		{"!!!", ""},
		{"", ""},
		{"under_scores survive", "under_scores-survive"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSlugify_FollowsTruncatedTitle(t *testing.T) {
	// The slug is derived from the stored (truncated) title, so a title cut
	// at the limit must still slugify cleanly.
	long := strings.Repeat("ab ", MaxIdeaTitleLength)
	stored := Truncate(long, MaxIdeaTitleLength)

	slug := Slugify(stored)
	if slug == "" {
		t.Fatal("slug of truncated title should not be empty")
	}
	if strings.HasSuffix(slug, "-") {
		t.Errorf("slug %q has a trailing separator", slug)
	}
}

// =========================================================================
// VIEW TESTS
// =========================================================================

func TestIdeaView_Dates(t *testing.T) {
	idea := &Idea{
		ID:        1,
		Title:     "Date Check",
		CreatedAt: time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC),
	}

	v := idea.View().(IdeaView)

	if v.ShortDate != "3.4.2026" {
		t.Errorf("ShortDate = %q, want %q", v.ShortDate, "3.4.2026")
	}
	if v.LongDate != "March 4, 2026" {
		t.Errorf("LongDate = %q, want %q", v.LongDate, "March 4, 2026")
	}
	if v.Slug != "date-check" {
		t.Errorf("Slug = %q, want %q", v.Slug, "date-check")
	}
}

func TestIdeaView_VotesStartZero(t *testing.T) {
	idea := &Idea{ID: 7, Title: "t", CreatedAt: time.Now()}

	v := idea.View().(IdeaView)
	if v.Votes != 0 || v.Loved {
		t.Errorf("fresh view Votes = %d, Loved = %v; want 0, false", v.Votes, v.Loved)
	}
}

func TestIdeaView_ContributorFallsBackToHandle(t *testing.T) {
	idea := &Idea{Name: "", Contact: "@someone", CreatedAt: time.Now()}

	v := idea.View().(IdeaView)
	if len(v.Contributors) != 1 || v.Contributors[0] != "@someone" {
		t.Errorf("Contributors = %v, want [@someone]", v.Contributors)
	}

	// Non-handle contact does not leak into the byline.
	idea = &Idea{Name: "", Contact: "someone@example.com", CreatedAt: time.Now()}
	v = idea.View().(IdeaView)
	if v.Contributors[0] != "" {
		t.Errorf("Contributors = %v, want a blank byline", v.Contributors)
	}
}

func TestIdeaAssign_IgnoresUnknownKeys(t *testing.T) {
	idea := &Idea{UserID: "owner"}
	idea.Assign(map[string]string{
		"title":  "T",
		"body":   "B",
		"userId": "attacker", // not a writable field
	})

	if idea.Title != "T" || idea.Body != "B" {
		t.Errorf("Assign did not set writable fields: %+v", idea)
	}
	if idea.UserID != "owner" {
		t.Errorf("Assign changed UserID to %q", idea.UserID)
	}
}
