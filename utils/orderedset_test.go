package utils

import (
	"reflect"
	"testing"
)

func TestOrderedSetNoDuplicates(t *testing.T) {
	s := NewOrderedSet()

	if !s.Add("https://example.com/1") {
		t.Error("first Add should return true")
	}
	if s.Add("https://example.com/1") {
		t.Error("second Add of same value should return false")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
	if !s.Contains("https://example.com/1") || s.Contains("https://example.com/2") {
		t.Error("Contains reports wrong membership")
	}
}

func TestOrderedSetKeepsFirstSeenOrder(t *testing.T) {
	s := NewOrderedSet()
	for _, v := range []string{"b", "a", "b", "c", "a"} {
		s.Add(v)
	}

	if got, want := s.Values(), []string{"b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Values: got %v, want %v", got, want)
	}
}

func TestOrderedSetValuesIsCopy(t *testing.T) {
	s := NewOrderedSet()
	s.Add("a")
	v := s.Values()
	v[0] = "z"

	if s.Values()[0] != "a" {
		t.Error("Values exposes internal storage")
	}
}
