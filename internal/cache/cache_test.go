package cache

import (
	"testing"
	"time"

	"github.com/grekov/survfit/internal/model"
)

func TestRunKey_SensitiveToInputs(t *testing.T) {
	raw := []byte("time,event\n5,1\n10,1\n15,0\n")
	settings := model.FitSettings{
		PriorShape: 0.01, PriorRate: 0.01,
		Chains: 3, Burnin: 1000, Samples: 5000, Seed: 1,
		Grid: []float64{0, 1, 2},
	}

	base := RunKey(raw, settings)
	if base != RunKey(raw, settings) {
		t.Error("identical inputs must produce identical keys")
	}

	if RunKey([]byte("time,event\n5,1\n"), settings) == base {
		t.Error("different data must change the key")
	}

	changed := settings
	changed.Seed = 2
	if RunKey(raw, changed) == base {
		t.Error("different seed must change the key")
	}

	changed = settings
	changed.Grid = []float64{0, 1, 3}
	if RunKey(raw, changed) == base {
		t.Error("different grid must change the key")
	}
}

func TestLayeredCache_RoundTrip(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir(), time.Minute)

	key := RunKey([]byte("data"), model.FitSettings{Chains: 1, Samples: 10})
	if _, found := c.Get(key); found {
		t.Fatal("unexpected hit on empty cache")
	}

	if err := c.Set(key, []byte(`{"subject":"x"}`), time.Minute); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}

	val, found := c.Get(key)
	if !found {
		t.Fatal("expected a cache hit")
	}
	if string(val) != `{"subject":"x"}` {
		t.Errorf("unexpected cached value: %s", val)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected a miss after delete")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected expired entry to miss")
	}
}
