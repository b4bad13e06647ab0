package message

import (
	"fmt"
	"testing"
)

func TestNewPairDefaults(t *testing.T) {
	p := NewPair("q", "a")
	if !p.Visible {
		t.Error("pairs are visible by default")
	}
	if p.ID == "" || p.CreatedAt.IsZero() {
		t.Error("expected ID and CreatedAt to be set")
	}

	hidden := NewPair("sys", "ok", Hidden(), WithMetadata("kind", "priming"))
	if hidden.Visible {
		t.Error("Hidden() should clear Visible")
	}
	if hidden.Metadata["kind"] != "priming" {
		t.Errorf("unexpected metadata %v", hidden.Metadata)
	}
}

func TestFlattenPreservesOrder(t *testing.T) {
	for n := 0; n < 6; n++ {
		t.Run(fmt.Sprintf("pairs=%d", n), func(t *testing.T) {
			var pairs []*Pair
			for i := 0; i < n; i++ {
				pairs = append(pairs, NewPair(fmt.Sprintf("p%d", i), fmt.Sprintf("a%d", i)))
			}

			msgs := Flatten(pairs)
			if len(msgs) != 2*n {
				t.Fatalf("expected %d messages, got %d", 2*n, len(msgs))
			}
			for i := 0; i < n; i++ {
				prompt, answer := msgs[2*i], msgs[2*i+1]
				if prompt.Role() != RoleUser || prompt.Content() != fmt.Sprintf("p%d", i) {
					t.Errorf("message %d: unexpected prompt %+v", 2*i, prompt)
				}
				if answer.Role() != RoleAssistant || answer.Content() != fmt.Sprintf("a%d", i) {
					t.Errorf("message %d: unexpected answer %+v", 2*i+1, answer)
				}
			}
		})
	}
}

func TestFlattenTrailingUnanswered(t *testing.T) {
	pairs := []*Pair{
		NewPair("first", "reply"),
		NewPair("pending", "", WithFiles("notes.md")),
	}
	msgs := Flatten(pairs)

	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	last := msgs[2]
	if last.Role() != RoleUser || last.Content() != "pending" {
		t.Errorf("trailing pair should contribute only its prompt, got %+v", last)
	}
	if files := last.Files(); len(files) != 1 || files[0] != "notes.md" {
		t.Errorf("prompt should carry files, got %v", files)
	}
}

func TestBuildContext(t *testing.T) {
	pairs := []*Pair{NewPair("q1", "a1")}

	t.Run("without query", func(t *testing.T) {
		msgs := BuildContext(pairs, "")
		if len(msgs) != 2 {
			t.Errorf("expected 2 messages, got %d", len(msgs))
		}
	})

	t.Run("with query", func(t *testing.T) {
		msgs := BuildContext(pairs, "q2")
		if len(msgs) != 3 {
			t.Fatalf("expected 3 messages, got %d", len(msgs))
		}
		if msgs[2].Role() != RoleUser || msgs[2].Content() != "q2" {
			t.Errorf("unexpected trailing message %+v", msgs[2])
		}
	})

	t.Run("nil pairs skipped", func(t *testing.T) {
		msgs := BuildContext([]*Pair{nil, NewPair("q", "")}, "")
		if len(msgs) != 1 {
			t.Errorf("expected 1 message, got %d", len(msgs))
		}
	})
}

func TestClonePairs(t *testing.T) {
	orig := []*Pair{NewPair("q", "a", WithFiles("f"), WithMetadata("k", "v"))}
	clones := ClonePairs(orig)

	clones[0].Answer = "changed"
	clones[0].Files[0] = "g"
	clones[0].Metadata["k"] = "w"

	if orig[0].Answer != "a" || orig[0].Files[0] != "f" || orig[0].Metadata["k"] != "v" {
		t.Errorf("clone must be deep, original is now %+v", orig[0])
	}
	if ClonePairs(nil) != nil {
		t.Error("ClonePairs(nil) should be nil")
	}
}
