package resourceclient

import (
	"context"
	"testing"
)

func TestToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"blog", "blog"},
		{"termsAndConditions", "terms_and_conditions"},
		{"TeamMembers", "team_members"},
		{"team-members", "team_members"},
		{"HTTPServer", "http_server"},
		{"legal docs", "legal_docs"},
		{"*pkg.Type[T]", "pkg_type_t"},
		{"__privacy__", "privacy"},
		{"user2", "user2"},
		{"a::b", "a_b"},
	}

	for _, tt := range tests {
		if got := toSnake(tt.in); got != tt.want {
			t.Errorf("toSnake(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTags_DedupesAndDropsEmpty(t *testing.T) {
	got := normalizeTags([]Tag{"Blog", "blog", "", "--", "admin"})
	if len(got) != 2 || got[0] != "blog" || got[1] != "admin" {
		t.Fatalf("normalizeTags() = %v, want [blog admin]", got)
	}
}

func TestWithCacheTags(t *testing.T) {
	ctx := WithCacheTags(context.Background(), "Profile")
	ctx = WithCacheTags(ctx, "profile", "admin")

	got := tagsFromContext(ctx)
	if len(got) != 2 || got[0] != "profile" || got[1] != "admin" {
		t.Fatalf("tagsFromContext() = %v, want [profile admin]", got)
	}

	base := context.Background()
	if WithCacheTags(base) != base {
		t.Error("WithCacheTags without tags should return the same context")
	}
	if tagsFromContext(base) != nil {
		t.Error("expected no tags on a bare context")
	}
}
