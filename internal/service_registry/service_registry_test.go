package service_registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/trajsim/internal/mocks"
	"github.com/benmeehan/trajsim/internal/utils"
	"github.com/benmeehan/trajsim/pkg/file"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// finishingService is a service that reports completion through Done.
type finishingService struct {
	mocks.MockService
	done chan struct{}
}

func (f *finishingService) Done() <-chan struct{} {
	return f.done
}

func newRegistry() *ServiceRegistry {
	return NewServiceRegistry(new(mocks.MockIngestClient), new(mocks.MockSink), file.NewFileService(), zerolog.Nop())
}

// TestServiceRegistry_StartStopOrder checks services start in registration order and stop in reverse.
func TestServiceRegistry_StartStopOrder(t *testing.T) {
	sr := newRegistry()

	var order []string
	first := new(mocks.MockService)
	first.On("Start").Run(func(mock.Arguments) { order = append(order, "start first") }).Return(nil)
	first.On("Stop").Run(func(mock.Arguments) { order = append(order, "stop first") }).Return(nil)
	second := new(mocks.MockService)
	second.On("Start").Run(func(mock.Arguments) { order = append(order, "start second") }).Return(nil)
	second.On("Stop").Run(func(mock.Arguments) { order = append(order, "stop second") }).Return(nil)

	sr.RegisterService("first", first)
	sr.RegisterService("second", second)
	sr.RegisterService("first", second) // duplicate is ignored
	assert.Equal(t, 2, sr.Len())

	require.NoError(t, sr.StartServices())
	require.NoError(t, sr.StopServices())

	assert.Equal(t, []string{"start first", "start second", "stop second", "stop first"}, order)
}

// TestServiceRegistry_StartFailureRollsBack checks already started services are stopped on failure.
func TestServiceRegistry_StartFailureRollsBack(t *testing.T) {
	sr := newRegistry()

	first := new(mocks.MockService)
	first.On("Start").Return(nil)
	first.On("Stop").Return(nil)
	second := new(mocks.MockService)
	second.On("Start").Return(errors.New("tracking api unavailable"))

	sr.RegisterService("first", first)
	sr.RegisterService("second", second)

	err := sr.StartServices()
	assert.ErrorContains(t, err, "failed to start second")
	first.AssertCalled(t, "Stop")
	second.AssertNotCalled(t, "Stop")
}

// TestServiceRegistry_StopErrorsJoined checks every stop failure is reported.
func TestServiceRegistry_StopErrorsJoined(t *testing.T) {
	sr := newRegistry()

	first := new(mocks.MockService)
	first.On("Stop").Return(errors.New("boom"))
	second := new(mocks.MockService)
	second.On("Stop").Return(errors.New("bang"))
	sr.RegisterService("first", first)
	sr.RegisterService("second", second)

	err := sr.StopServices()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stop first: boom")
	assert.Contains(t, err.Error(), "failed to stop second: bang")
}

// TestServiceRegistry_WaitForFinishers checks Wait returns once every finishing service is done.
func TestServiceRegistry_WaitForFinishers(t *testing.T) {
	sr := newRegistry()
	svc := &finishingService{done: make(chan struct{})}
	sr.RegisterService("replay", svc)

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(svc.done)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, sr.Wait(ctx))
}

// TestServiceRegistry_WaitForContext checks Wait blocks on ctx when a service never finishes.
func TestServiceRegistry_WaitForContext(t *testing.T) {
	sr := newRegistry()
	done := &finishingService{done: make(chan struct{})}
	close(done.done)
	sr.RegisterService("replay", done)
	sr.RegisterService("stream", new(mocks.MockService))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sr.Wait(ctx), context.DeadlineExceeded)
}

// TestServiceRegistry_RegisterServices checks only enabled services are registered, in order.
func TestServiceRegistry_RegisterServices(t *testing.T) {
	config := utils.DefaultConfig()

	sr := newRegistry()
	require.NoError(t, sr.RegisterServices(config))
	assert.Equal(t, 0, sr.Len())

	config.Services.Stream.Enabled = true
	config.Services.Replay.Enabled = true
	sr = newRegistry()
	require.NoError(t, sr.RegisterServices(config))
	assert.Equal(t, []string{"stream", "replay"}, sr.serviceKeys)

	sr = NewServiceRegistry(new(mocks.MockIngestClient), nil, file.NewFileService(), zerolog.Nop())
	assert.ErrorContains(t, sr.RegisterServices(config), "no sink configured")
}
