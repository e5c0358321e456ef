package store_test

import (
	"testing"

	"github.com/robalobadob/connect2pros/internal/store"
	"github.com/robalobadob/connect2pros/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return store.NewMemoryStore() })
}
