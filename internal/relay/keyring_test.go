package relay_test

import (
	"sync"
	"testing"

	"github.com/securelay/api/internal/relay"
)

func TestKeyring_PutGet(t *testing.T) {
	k := relay.NewKeyring()
	if _, ok := k.Public("priv"); ok {
		t.Fatal("empty keyring reported a hit")
	}
	k.Put("priv", "pub")
	got, ok := k.Public("priv")
	if !ok || got != "pub" {
		t.Fatalf("want pub, got %q (%v)", got, ok)
	}
	k.Put("", "x")
	k.Put("y", "")
	if k.Len() != 1 {
		t.Fatalf("blank halves should be ignored, len=%d", k.Len())
	}
}

func TestKeyring_ConcurrentSameValue(t *testing.T) {
	k := relay.NewKeyring()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.Put("priv", "pub")
			_, _ = k.Public("priv")
		}()
	}
	wg.Wait()
	if got, _ := k.Public("priv"); got != "pub" || k.Len() != 1 {
		t.Fatalf("got %q len=%d", got, k.Len())
	}
}
