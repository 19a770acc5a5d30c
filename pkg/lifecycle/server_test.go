package lifecycle

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	name    string
	startFn func(ctx context.Context) error
	stopErr error

	mu      sync.Mutex
	order   *[]string
	stopped bool
}

func (f *fakeService) Start(ctx context.Context) error {
	if f.startFn != nil {
		return f.startFn(ctx)
	}

	<-ctx.Done()

	return nil
}

func (f *fakeService) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopped = true

	if f.order != nil {
		*f.order = append(*f.order, f.name)
	}

	return f.stopErr
}

func TestRunServer_SignalStopsInReverseOrder(t *testing.T) {
	var order []string

	a := &fakeService{name: "a", order: &order}
	b := &fakeService{name: "b", order: &order}

	sig := make(chan os.Signal, 1)
	sig <- syscall.SIGTERM

	err := RunServer(context.Background(), &ServerOptions{
		ServiceName: "test",
		Services:    []Service{a, b},
		Signals:     sig,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, order)
}

func TestRunServer_ServiceError(t *testing.T) {
	boom := errors.New("listen failed")
	failing := &fakeService{startFn: func(context.Context) error { return boom }}
	other := &fakeService{}

	err := RunServer(context.Background(), &ServerOptions{
		Services: []Service{other, failing},
		Signals:  make(chan os.Signal),
	})

	require.ErrorIs(t, err, boom)
	assert.True(t, other.stopped)
	assert.True(t, failing.stopped)
}

func TestRunServer_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	stopErr := errors.New("stuck")
	svc := &fakeService{stopErr: stopErr}

	err := RunServer(ctx, &ServerOptions{
		Services:        []Service{svc},
		Signals:         make(chan os.Signal),
		ShutdownTimeout: time.Second,
	})

	require.ErrorIs(t, err, stopErr)
	assert.True(t, svc.stopped)
}

func TestRunServer_NoServices(t *testing.T) {
	require.ErrorIs(t, RunServer(context.Background(), &ServerOptions{}), errNoServices)
}
