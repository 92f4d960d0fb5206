package debounce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
	ch    chan string
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan string, 16)}
}

func (r *recorder) commit(_ string, v string) {
	r.mu.Lock()
	r.calls = append(r.calls, v)
	r.mu.Unlock()
	r.ch <- v
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestRapidUpdatesCommitOnce(t *testing.T) {
	rec := newRecorder()
	d := New(50*time.Millisecond, rec.commit)

	for _, v := range []string{"a", "ab", "abc", "abcd", "abcde"} {
		d.Update("text", v)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case got := <-rec.ch:
		if got != "abcde" {
			t.Errorf("committed %q, want %q", got, "abcde")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no commit")
	}

	time.Sleep(150 * time.Millisecond)
	if n := rec.count(); n != 1 {
		t.Errorf("commits = %d, want 1", n)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	var mu sync.Mutex
	got := map[string]int{}
	done := make(chan struct{}, 2)
	d := New(20*time.Millisecond, func(k string, v int) {
		mu.Lock()
		got[k] = v
		mu.Unlock()
		done <- struct{}{}
	})

	d.Update("a", 1)
	d.Update("b", 2)
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("missing commit")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if got["a"] != 1 || got["b"] != 2 {
		t.Errorf("got %v", got)
	}
}

func TestStopCancelsPending(t *testing.T) {
	rec := newRecorder()
	d := New(20*time.Millisecond, rec.commit)
	d.Update("text", "lost")
	d.Stop()
	d.Update("text", "ignored")

	time.Sleep(100 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("commits after Stop = %d, want 0", n)
	}
}

func TestFlushCommitsNow(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.commit)
	d.Update("text", "now")

	if v, ok := d.Pending("text"); !ok || v != "now" {
		t.Fatalf("Pending = %q %v", v, ok)
	}
	d.Flush()
	if n := rec.count(); n != 1 {
		t.Fatalf("commits = %d, want 1", n)
	}
	if _, ok := d.Pending("text"); ok {
		t.Error("value still pending after Flush")
	}
}

func TestFieldSyncShadow(t *testing.T) {
	committed := make(chan string, 4)
	f := NewFieldSync(30*time.Millisecond, func(field Field, v string) {
		committed <- string(field) + "=" + v
	})
	defer f.Stop()

	if got := f.Value(FieldText, "canonical"); got != "canonical" {
		t.Errorf("idle Value = %q, want canonical", got)
	}

	f.Set(FieldText, "typed")
	if got := f.Value(FieldText, "programmatic"); got != "typed" {
		t.Errorf("Value while changing = %q, want typed", got)
	}
	if !f.Changing(FieldText) {
		t.Error("Changing = false during edit")
	}

	select {
	case got := <-committed:
		if got != "text=typed" {
			t.Errorf("commit = %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no commit")
	}

	if f.Changing(FieldText) {
		t.Error("Changing = true after commit")
	}
	if got := f.Value(FieldText, "programmatic"); got != "programmatic" {
		t.Errorf("Value after commit = %q, want programmatic", got)
	}
}

func TestFieldSyncFiveEditsOnePersist(t *testing.T) {
	var mu sync.Mutex
	var persisted []string
	f := NewFieldSync(40*time.Millisecond, func(_ Field, v string) {
		mu.Lock()
		persisted = append(persisted, v)
		mu.Unlock()
	})
	defer f.Stop()

	for _, v := range []string{"#", "# ", "# H", "# He", "# Hey"} {
		f.Set(FieldText, v)
	}
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(persisted) != 1 || persisted[0] != "# Hey" {
		t.Errorf("persisted = %q, want [\"# Hey\"]", persisted)
	}
}
