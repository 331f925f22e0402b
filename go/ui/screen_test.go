package ui

import (
	"reflect"
	"testing"
)

func TestChangedRows(t *testing.T) {
	old := []string{"391OS> ls", ".", "rtc", "391OS> ", ""}
	cur := []string{"391OS> ls", ".", "rtc", "391OS> cat", ""}
	if got := changedRows(old, cur); !reflect.DeepEqual(got, []string{"391OS> cat"}) {
		t.Errorf("edit: %q", got)
	}
	scrolled := []string{"rtc", "391OS> cat", "file not found", "391OS> ", ""}
	old = []string{"391OS> ls", ".", "rtc", "391OS> cat", ""}
	// the first two rows scroll off, the bottom two are new
	if got := changedRows(old, scrolled); !reflect.DeepEqual(got, []string{"file not found", "391OS> "}) {
		t.Errorf("scroll: %q", got)
	}
	if got := changedRows(nil, []string{"a", "", "b", "", ""}); !reflect.DeepEqual(got, []string{"a", "", "b"}) {
		t.Errorf("first poll: %q", got)
	}
	if got := changedRows(cur, cur); len(got) != 0 {
		t.Errorf("unchanged: %q", got)
	}
}

func TestScrollOf(t *testing.T) {
	a := []string{"1", "2", "3", "4"}
	if s := scrollOf(a, a); s != 0 {
		t.Errorf("same screen scrolled %d", s)
	}
	if s := scrollOf(a, []string{"3", "4", "5", "6"}); s != 2 {
		t.Errorf("expected scroll 2, got %d", s)
	}
	if s := scrollOf(a, []string{"x", "y", "z", "w"}); s != 0 {
		t.Errorf("unrelated screen scrolled %d", s)
	}
}
