package session

import (
	"testing"
	"time"

	"github.com/nexclass/nexclass/tests"
)

func TestDBStore(t *testing.T) {
	clk := newClock()
	store := NewDBStore(testutil.OpenDB(t), time.Hour)
	store.nowFunc = clk.Now

	testStore(t, store, clk)
}
