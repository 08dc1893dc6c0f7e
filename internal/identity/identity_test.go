package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDDeterministic(t *testing.T) {
	first := UUID("lectern:record:blog:ja/posts/intro.md")
	second := UUID("lectern:record:blog:ja/posts/intro.md")
	if first != second {
		t.Errorf("same key produced %s and %s", first, second)
	}
	if first == uuid.Nil {
		t.Error("non-empty key produced the nil UUID")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Errorf("blank key = %s, want nil UUID", got)
	}
}

func TestRecordUUIDDistinctByKey(t *testing.T) {
	a := RecordUUID("blog", "ja/posts/intro.md")
	b := RecordUUID("blog", "en/posts/intro.md")
	c := RecordUUID("pages", "ja/posts/intro.md")

	if a == b {
		t.Error("different ids should yield different UUIDs")
	}
	if a == c {
		t.Error("different collections should yield different UUIDs")
	}
	if a != RecordUUID("blog", " ja/posts/intro.md ") {
		t.Error("surrounding whitespace should not change the identity")
	}
}
