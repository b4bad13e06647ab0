package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/sweetpotato0/chatroute/message"
)

func TestResultVariants(t *testing.T) {
	if r := Text("hi"); r.Kind() != KindText || r.Text() != "hi" {
		t.Errorf("unexpected text result %+v", r)
	}
	if r := Handled(); r.Kind() != KindHandled {
		t.Errorf("unexpected handled result %+v", r)
	}
	if r := Fragments(nil); r.Kind() != KindNone {
		t.Errorf("nil sequence should be malformed, got %s", r.Kind())
	}
	if (Result{}).Kind().String() != "none" {
		t.Error("zero Result should be KindNone")
	}

	r := Fragments(SliceFragments("a", "b", "c"))
	if r.Kind() != KindFragments {
		t.Fatalf("expected fragments, got %s", r.Kind())
	}
	var got []string
	for frag, err := range r.Fragments() {
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		got = append(got, frag)
		if len(got) == 2 {
			break
		}
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected fragments %v", got)
	}
}

func TestFuncAdapter(t *testing.T) {
	wantErr := errors.New("boom")
	var p Provider = Func(func(_ context.Context, _ []message.Message, _ Options, _ Callbacks) (Result, error) {
		return Result{}, wantErr
	})
	if _, err := p.Invoke(context.Background(), nil, nil, Callbacks{}); !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
