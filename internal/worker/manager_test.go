package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWorker struct {
	name     string
	startErr error
	events   *[]string
}

func (f *fakeWorker) Start(ctx context.Context) error {
	*f.events = append(*f.events, "start:"+f.name)
	return f.startErr
}

func (f *fakeWorker) Stop() {
	*f.events = append(*f.events, "stop:"+f.name)
}

func (f *fakeWorker) Name() string { return f.name }

func TestManager_StartStopOrder(t *testing.T) {
	var events []string
	m := NewManager(zap.NewNop())
	m.Register(&fakeWorker{name: "a", events: &events})
	m.Register(&fakeWorker{name: "b", events: &events})

	require.NoError(t, m.StartAll(context.Background()))
	m.StopAll()

	assert.Equal(t, []string{"start:a", "start:b", "stop:b", "stop:a"}, events)
	assert.Equal(t, 2, m.Count())
}

func TestManager_StartFailureRollsBack(t *testing.T) {
	var events []string
	m := NewManager(zap.NewNop(),
		&fakeWorker{name: "a", events: &events},
		&fakeWorker{name: "b", events: &events, startErr: errors.New("boom")},
	)

	err := m.StartAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"start:a", "start:b", "stop:a"}, events)
}

func TestWorkers_DoubleStartRejected(t *testing.T) {
	w := NewPurgeWorker(purgeFunc(func(ctx context.Context) (int, error) { return 0, nil }), 0, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Error(t, w.Start(context.Background()))
}

type purgeFunc func(ctx context.Context) (int, error)

func (f purgeFunc) PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return f(ctx)
}
