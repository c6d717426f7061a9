package memory

import (
	"testing"

	"github.com/woofi-pets/donation-server/pkg/data/donation/tests"
)

func TestDonationMemoryStore(t *testing.T) {
	testStore := New()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}
