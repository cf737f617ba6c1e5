package async_test

import (
	"math/rand"
	"sync"
	"testing"

	async "github.com/arnevik/asyncq"
	"github.com/arnevik/asyncq/internal/syncsema"
)

func TestSemaphoreImmediateGrant(t *testing.T) {
	sema := async.NewSemaphore(10)

	f := sema.Acquire(4)
	p, err := f.Wait()
	if err != nil {
		t.Fatalf("Acquire(4) err = %v", err)
	}
	if p.N() != 4 {
		t.Fatalf("p.N() = %d; want 4", p.N())
	}
	if got := sema.AvailablePermits(); got != 6 {
		t.Fatalf("AvailablePermits() = %d; want 6", got)
	}
}

func TestSemaphoreQueuesWhenShort(t *testing.T) {
	sema := async.NewSemaphore(1)

	f1 := sema.Acquire(1) // granted immediately
	if _, err := f1.Wait(); err != nil {
		t.Fatalf("Acquire(1) err = %v", err)
	}

	f2 := sema.Acquire(1) // must queue: no permits left
	select {
	case <-f2.Done():
		t.Fatal("second Acquire settled before any Release.")
	default:
	}

	if sema.TryAcquire(1) {
		t.Fatal("TryAcquire should not barge ahead of a queued waiter.")
	}

	sema.Release(1)

	p2, err := f2.Wait()
	if err != nil {
		t.Fatalf("second Acquire err = %v", err)
	}
	p2.Release()

	if !sema.TryAcquire(1) {
		t.Fatal("TryAcquire should succeed once there are no waiters.")
	}
}

func TestSemaphoreMultiPermitWaiterBlocksSmallerRequests(t *testing.T) {
	sema := async.NewSemaphore(5)

	// Drain down to zero so the next Acquire must queue.
	if _, err := sema.Acquire(5).Wait(); err != nil {
		t.Fatalf("Acquire(5) err = %v", err)
	}

	big := sema.Acquire(3)  // queued, waiting for 3
	small := sema.Acquire(1) // queued behind big, even though 1 would fit on its own

	sema.Release(2) // not enough for big; small must still wait behind it

	select {
	case <-big.Done():
		t.Fatal("big should not be granted with only 2 of the 3 permits it needs.")
	default:
	}
	select {
	case <-small.Done():
		t.Fatal("small must not barge ahead of big in FIFO order.")
	default:
	}

	sema.Release(1) // now 3 available; big should be granted, small still waits

	if _, err := big.Wait(); err != nil {
		t.Fatalf("big err = %v", err)
	}
	select {
	case <-small.Done():
		t.Fatal("small should still be waiting after big drained the ledger.")
	default:
	}

	sema.Release(1)

	if _, err := small.Wait(); err != nil {
		t.Fatalf("small err = %v", err)
	}
}

func TestSemaphoreCancelRefundsPermits(t *testing.T) {
	sema := async.NewSemaphore(2)

	if _, err := sema.Acquire(2).Wait(); err != nil {
		t.Fatalf("Acquire(2) err = %v", err)
	}

	waiter := sema.Acquire(2)
	if !waiter.Cancel() {
		t.Fatal("Cancel should win the race on a still-queued waiter.")
	}

	behind := sema.Acquire(1)
	select {
	case <-behind.Done():
		t.Fatal("behind should still be queued: cancelling waiter must not grant unrelated permits.")
	default:
	}

	sema.Release(2)

	if _, err := behind.Wait(); err != nil {
		t.Fatalf("behind err = %v", err)
	}
	if got := sema.QueueLength(); got != 0 {
		t.Fatalf("QueueLength() = %d; want 0", got)
	}
}

func TestSemaphoreDrainPermits(t *testing.T) {
	sema := async.NewSemaphore(7)

	if n := sema.DrainPermits(); n != 7 {
		t.Fatalf("DrainPermits() = %d; want 7", n)
	}
	if n := sema.AvailablePermits(); n != 0 {
		t.Fatalf("AvailablePermits() = %d; want 0", n)
	}
}

func TestSemaphoreNegativeArgumentsPanic(t *testing.T) {
	t.Run("NewSemaphore", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("NewSemaphore(-1) should panic.")
			}
		}()
		async.NewSemaphore(-1)
	})
	t.Run("Acquire", func(t *testing.T) {
		sema := async.NewSemaphore(1)
		defer func() {
			if recover() == nil {
				t.Fatal("Acquire(-1) should panic.")
			}
		}()
		sema.Acquire(-1)
	})
	t.Run("Release", func(t *testing.T) {
		sema := async.NewSemaphore(1)
		defer func() {
			if recover() == nil {
				t.Fatal("Release(-1) should panic.")
			}
		}()
		sema.Release(-1)
	})
}

// TestSemaphorePermitLedgerMatchesOracle feeds the same randomized
// acquire/release schedule through async.Semaphore and through
// internal/syncsema's goroutine-blocking oracle, and checks that both
// agree on the final permit ledger and that every permit came back.
// Admission order itself is not compared.
func TestSemaphorePermitLedgerMatchesOracle(t *testing.T) {
	const (
		workers = 8
		ops     = 50
		initial = 4
	)

	rng := rand.New(rand.NewSource(1))

	sema := async.NewSemaphore(initial)
	oracle := syncsema.New(initial)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		seed := rng.Int63()
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < ops; i++ {
				n := int64(1 + r.Intn(3))

				p, err := sema.Acquire(n).Wait()
				if err != nil {
					continue
				}
				oracle.Acquire(n)

				oracle.Release(n)
				p.Release()
			}
		}(seed)
	}
	wg.Wait()

	got, want := sema.AvailablePermits(), oracle.AvailablePermits()
	if got != want {
		t.Fatalf("final AvailablePermits: async = %d, oracle = %d", got, want)
	}
	if got != initial {
		t.Fatalf("final AvailablePermits = %d; want initial %d (every acquire was released)", got, initial)
	}
}
