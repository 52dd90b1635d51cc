package platform

import (
	"errors"
	"testing"
)

func TestRunLockExcludesSecondHolder(t *testing.T) {
	lock, err := AcquireRunLock("studyclock-test-lock")
	if err != nil {
		t.Fatalf("AcquireRunLock: %v", err)
	}
	defer lock.Release()

	if _, err := AcquireRunLock("studyclock-test-lock"); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second acquire = %v, want ErrAlreadyRunning", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	reacquired, err := AcquireRunLock("studyclock-test-lock")
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	reacquired.Release()
}
