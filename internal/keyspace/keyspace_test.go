package keyspace

import "testing"

func fixedClock(ms int64) Clock {
	return func() int64 { return ms }
}

func TestSetGetBinarySafe(t *testing.T) {
	s := New()
	v := []byte("a\r\nb\x00c\xff")
	if !s.Set(0, []byte("k"), v, SetOptions{}, fixedClock(0)) {
		t.Fatal("expected Set to succeed")
	}
	got, ok := s.Get(0, []byte("k"), fixedClock(0))
	if !ok {
		t.Fatal("expected key to exist")
	}
	if string(got) != string(v) {
		t.Fatalf("got %q, want %q", got, v)
	}
}

func TestExpiryMonotonicity(t *testing.T) {
	s := New()
	s.Set(0, []byte("k"), []byte("v"), SetOptions{HasExpire: true, ExpireMs: 1050}, fixedClock(1000))

	if _, ok := s.Get(0, []byte("k"), fixedClock(1049)); !ok {
		t.Fatal("expected key to still exist before deadline")
	}
	if _, ok := s.Get(0, []byte("k"), fixedClock(1051)); ok {
		t.Fatal("expected key to be gone after deadline")
	}
}

func TestNXIdempotence(t *testing.T) {
	s := New()
	clock := fixedClock(0)
	if !s.Set(0, []byte("k"), []byte("v1"), SetOptions{OnlyIfNotExists: true}, clock) {
		t.Fatal("first NX set should succeed")
	}
	if s.Set(0, []byte("k"), []byte("v2"), SetOptions{OnlyIfNotExists: true}, clock) {
		t.Fatal("second NX set should fail")
	}
	got, _ := s.Get(0, []byte("k"), clock)
	if string(got) != "v1" {
		t.Fatalf("got %q, want v1 (first write preserved)", got)
	}
}

func TestXXRequiresExistingKey(t *testing.T) {
	s := New()
	clock := fixedClock(0)
	if s.Set(0, []byte("missing"), []byte("v"), SetOptions{OnlyIfExists: true}, clock) {
		t.Fatal("XX set on a missing key should fail")
	}
}

func TestKeepTTLPreservesExpiry(t *testing.T) {
	s := New()
	clock := fixedClock(1000)
	s.Set(0, []byte("k"), []byte("v1"), SetOptions{HasExpire: true, ExpireMs: 5000}, clock)
	s.Set(0, []byte("k"), []byte("v2"), SetOptions{KeepTTL: true}, clock)

	if _, ok := s.Get(0, []byte("k"), fixedClock(4999)); !ok {
		t.Fatal("expected ttl to survive the KEEPTTL overwrite")
	}
	if _, ok := s.Get(0, []byte("k"), fixedClock(5001)); ok {
		t.Fatal("expected the original ttl to still apply after KEEPTTL overwrite")
	}
}

func TestClearEmptiesAllDatabases(t *testing.T) {
	s := New()
	s.Set(0, []byte("k"), []byte("v"), SetOptions{}, fixedClock(0))
	s.Clear()
	if _, ok := s.Get(0, []byte("k"), fixedClock(0)); ok {
		t.Fatal("expected Clear to remove all entries")
	}
}

func TestSnapshotIsPointInTimeCopy(t *testing.T) {
	s := New()
	s.Set(0, []byte("k"), []byte("v"), SetOptions{}, fixedClock(0))
	snap := s.Snapshot()
	s.Set(0, []byte("k"), []byte("changed"), SetOptions{}, fixedClock(0))

	if string(snap[0]["k"].Value) != "v" {
		t.Fatalf("snapshot should be unaffected by later mutation, got %q", snap[0]["k"].Value)
	}
}
