package api

import "testing"

func TestDeriveSlug(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{" Hello, World! ", "hello-world"},
		{"***", ""},
		{"My App", "my-app"},
		{"already-a-slug", "already-a-slug"},
		{"UPPER_CASE__Name", "upper-case-name"},
	}
	for _, c := range cases {
		got := deriveSlug(c.name)
		if got != c.want {
			t.Errorf("deriveSlug(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestDeriveSlug_TruncatesAt32Chars(t *testing.T) {
	name := "this-is-a-very-long-project-name-that-exceeds-the-limit"
	got := deriveSlug(name)
	if len(got) > maxSlugLen {
		t.Errorf("slug length = %d, want <= %d", len(got), maxSlugLen)
	}
}
