package tokenizer

import (
	"errors"
	"reflect"
	"testing"
)

func TestSubwordTrainerRejectsOversizedVocab(t *testing.T) {
	_, err := SubwordTrainer{}.Train([]string{"tiny corpus"}, 32000)
	if err == nil {
		t.Fatal("expected rejection for a vocabulary the corpus cannot support")
	}
	var tooLarge *VocabTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("error = %v, want *VocabTooLargeError", err)
	}
	if tooLarge.Requested != 32000 {
		t.Errorf("Requested = %d, want 32000", tooLarge.Requested)
	}
	if tooLarge.Max <= 0 || tooLarge.Max >= 32000 {
		t.Errorf("reported Max = %d, want a positive corpus-derived bound", tooLarge.Max)
	}
}

func TestSubwordModelRoundTrip(t *testing.T) {
	texts := []string{"hello world", "hello there world"}
	model, err := SubwordTrainer{}.Train(texts, 13)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	ids := model.Encode("hello world")
	if len(ids) == 0 {
		t.Fatal("Encode returned no ids")
	}
	if got := model.Decode(ids); got != "hello world" {
		t.Errorf("Decode(Encode(x)) = %q, want %q", got, "hello world")
	}
}

func TestSubwordModelEncodesNewlinesAsSpaces(t *testing.T) {
	texts := []string{"hello world", "hello there world"}
	model, err := SubwordTrainer{}.Train(texts, 13)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	multiline := model.Encode("hello\nworld")
	if got, want := multiline, model.Encode("hello world"); !reflect.DeepEqual(got, want) {
		t.Errorf("Encode with newline = %v, want %v", got, want)
	}
	for _, id := range multiline {
		if id == 0 {
			t.Errorf("newline encoded as unknown id: %v", multiline)
			break
		}
	}
	if got := model.Decode(multiline); got != "hello world" {
		t.Errorf("Decode = %q, want %q", got, "hello world")
	}
}

func TestSubwordModelWholeWordPieces(t *testing.T) {
	// A vocabulary large enough for every rune and word makes frequent
	// words single tokens.
	texts := []string{"aa bb aa", "aa cc"}
	model, err := SubwordTrainer{}.Train(texts, 8) // unk, sep, a, b, c, ▁aa, ▁bb, ▁cc
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if model.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", model.Len())
	}

	ids := model.Encode("aa aa")
	if len(ids) != 2 || ids[0] != ids[1] {
		t.Errorf("Encode(\"aa aa\") = %v, want two identical whole-word ids", ids)
	}
}

func TestSubwordModelUnknownRunes(t *testing.T) {
	model, err := SubwordTrainer{}.Train([]string{"abc abc"}, 6)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	ids := model.Encode("xyz")
	want := []int{0, 0, 0} // leading separator matches, unknown runes do not
	// The separator piece itself is in the vocabulary, so strip it.
	if len(ids) == 4 {
		ids = ids[1:]
	}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("Encode(\"xyz\") = %v, want unknown ids %v", ids, want)
	}
}
