package boltstore

import (
	"testing"
	"time"

	"github.com/Declyn50s/Traine-Savates/pkg/store"
	"github.com/Declyn50s/Traine-Savates/pkg/store/storetest"
)

func TestStoreContract(t *testing.T) {
	t.Parallel()
	storetest.Run(t, func(t *testing.T, path string, clock func() time.Time) store.DB {
		s, err := Open(path, WithClock(clock))
		if err != nil {
			t.Fatalf("open bolt store: %v", err)
		}
		return s
	})
}
