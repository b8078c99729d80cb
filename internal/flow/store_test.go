package flow

import "testing"

func TestStoreGetCreatesOnce(t *testing.T) {
	s := NewStore()
	key := Key{UserID: 1, ChatID: 100}

	m1 := s.Get(key)
	m2 := s.Get(key)
	if m1 != m2 {
		t.Fatal("Get created a second machine for the same key")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestStoreKeysAreIndependent(t *testing.T) {
	s := NewStore()
	a := s.Get(Key{UserID: 1})
	b := s.Get(Key{UserID: 1, ChatID: 42})

	a.Start(testCatalog())
	if b.Step() != StepIdle {
		t.Fatal("starting one conversation's flow touched another's machine")
	}
}

func TestStorePeekAndEvict(t *testing.T) {
	s := NewStore()
	key := Key{UserID: 7}

	if _, ok := s.Peek(key); ok {
		t.Fatal("Peek created a machine")
	}
	s.Get(key)
	if _, ok := s.Peek(key); !ok {
		t.Fatal("Peek missed an existing machine")
	}

	s.Evict(key)
	if _, ok := s.Peek(key); ok {
		t.Fatal("machine survived eviction")
	}
}
