package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning indicates another runner already holds the lock.
var ErrAlreadyRunning = errors.New("another runner is already active")

// RunLock guards against two concurrent chain runners sharing the same
// history database.
type RunLock struct {
	listener net.Listener
	address  string
}

// AcquireRunLock attempts to bind a deterministic localhost port derived from
// appName. The bind fails while another process holds the same port, which is
// the lock.
func AcquireRunLock(appName string) (*RunLock, error) {
	port := portFromName(appName)
	address := fmt.Sprintf("127.0.0.1:%d", port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return &RunLock{listener: listener, address: address}, nil
}

// Release frees the lock.
func (lock *RunLock) Release() error {
	if lock == nil || lock.listener == nil {
		return nil
	}
	return lock.listener.Close()
}

// Address returns the bound address.
func (lock *RunLock) Address() string {
	if lock == nil {
		return ""
	}
	return lock.address
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
