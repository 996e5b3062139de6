package sampler

import (
	"errors"
	"sync"
	"time"

	"greetops/internal/pkg/geo"
)

// Throttle defaults
const (
	DefaultMinDistanceMeters = 20.0
	DefaultMinInterval       = 30 * time.Second
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrUnavailable      = errors.New("location unavailable on this device")
	ErrAlreadyRunning   = errors.New("sampler already running")
)

// DispatchFunc persists a throttle-approved sample to the location ledger.
// A non-nil error marks the sample as the latest error state but does not
// stop the watch.
type DispatchFunc func(pos Position) error

// Options configures a Sampler
type Options struct {
	MinDistanceMeters float64
	MinInterval       time.Duration
	Watch             WatchOptions
}

// DefaultOptions returns sampler options with field defaults
func DefaultOptions() Options {
	return Options{
		MinDistanceMeters: DefaultMinDistanceMeters,
		MinInterval:       DefaultMinInterval,
		Watch:             DefaultWatchOptions(),
	}
}

// Sampler runs a continuous position watch with a two-tier throttle: every
// raw sample updates the locally observable position, but only samples that
// pass the distance/interval gate are dispatched to the ledger.
type Sampler struct {
	device   Device
	dispatch DispatchFunc
	opts     Options

	nowFunc func() time.Time

	mu             sync.Mutex
	running        bool
	watchID        int
	permission     PermissionState
	lastRaw        *Position
	lastDispatched *Position
	lastDispatchAt time.Time
	lastErr        *PositionError
}

// New creates a sampler over the given device. dispatch receives every
// throttle-approved sample.
func New(device Device, dispatch DispatchFunc, opts Options) *Sampler {
	if opts.MinDistanceMeters == 0 {
		opts.MinDistanceMeters = DefaultMinDistanceMeters
	}
	if opts.MinInterval == 0 {
		opts.MinInterval = DefaultMinInterval
	}
	if opts.Watch.Timeout == 0 {
		opts.Watch = DefaultWatchOptions()
	}
	return &Sampler{
		device:     device,
		dispatch:   dispatch,
		opts:       opts,
		nowFunc:    time.Now,
		permission: PermissionPrompt,
	}
}

// Start queries permission and acquires the device watch. It refuses to
// start while permission is denied; call RequestPermission first.
func (s *Sampler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	state, err := s.device.QueryPermission()
	if err != nil {
		s.permission = PermissionUnavailable
		return ErrUnavailable
	}
	s.permission = state

	switch state {
	case PermissionDenied:
		return ErrPermissionDenied
	case PermissionUnavailable:
		return ErrUnavailable
	}

	watchID, err := s.device.WatchPosition(s.opts.Watch, s.onPosition, s.onError)
	if err != nil {
		if errors.Is(err, ErrNoCapability) {
			s.permission = PermissionUnavailable
			return ErrUnavailable
		}
		return err
	}

	s.watchID = watchID
	s.running = true
	return nil
}

// Stop releases the device watch. Safe to call repeatedly and on every
// teardown path.
func (s *Sampler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.device.ClearWatch(s.watchID)
	s.running = false
	s.watchID = 0
}

// RequestPermission performs a one-shot position read to trigger the
// permission prompt. On success permission becomes granted; a denial is
// sticky until the next successful request.
func (s *Sampler) RequestPermission() error {
	s.mu.Lock()
	if s.permission == PermissionUnavailable {
		s.mu.Unlock()
		return ErrUnavailable
	}
	s.permission = PermissionRequesting
	s.mu.Unlock()

	_, err := s.device.GetCurrentPosition(s.opts.Watch)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		var posErr *PositionError
		if errors.As(err, &posErr) {
			switch posErr.Code {
			case CodePermissionDenied:
				s.permission = PermissionDenied
				return ErrPermissionDenied
			default:
				// Transient failure: the prompt was answered or never
				// shown, keep the pre-request state machine moving.
				s.permission = PermissionPrompt
				return err
			}
		}
		if errors.Is(err, ErrNoCapability) {
			s.permission = PermissionUnavailable
			return ErrUnavailable
		}
		s.permission = PermissionPrompt
		return err
	}

	s.permission = PermissionGranted
	return nil
}

// Permission returns the current permission state
func (s *Sampler) Permission() PermissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

// Running reports whether the device watch is held
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Location returns the latest raw sample, dispatched or not
func (s *Sampler) Location() *Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRaw
}

// LastDispatched returns the latest sample that passed the throttle gate
func (s *Sampler) LastDispatched() *Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDispatched
}

// LastError returns the most recent position error, superseded by the next
// successful sample
func (s *Sampler) LastError() *PositionError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Sampler) onPosition(pos Position) {
	s.mu.Lock()

	// A successful fix implies permission was granted
	s.permission = PermissionGranted
	s.lastErr = nil

	// Raw samples always update the local position
	p := pos
	s.lastRaw = &p

	if !s.shouldDispatchLocked(pos) {
		s.mu.Unlock()
		return
	}

	s.lastDispatched = &p
	s.lastDispatchAt = s.nowFunc()
	dispatch := s.dispatch
	s.mu.Unlock()

	if dispatch == nil {
		return
	}
	if err := dispatch(pos); err != nil {
		s.mu.Lock()
		s.lastErr = &PositionError{Code: CodePositionUnavailable, Message: err.Error()}
		s.mu.Unlock()
	}
}

// shouldDispatchLocked applies the throttle gate against the last dispatched
// sample: distance over the floor, interval elapsed, or no prior dispatch.
func (s *Sampler) shouldDispatchLocked(pos Position) bool {
	if s.lastDispatched == nil {
		return true
	}
	dist := geo.DistanceMeters(
		s.lastDispatched.Latitude, s.lastDispatched.Longitude,
		pos.Latitude, pos.Longitude,
	)
	if dist > s.opts.MinDistanceMeters {
		return true
	}
	return s.nowFunc().Sub(s.lastDispatchAt) > s.opts.MinInterval
}

func (s *Sampler) onError(posErr *PositionError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastErr = posErr

	// Transient errors never change the permission state; the watch retries.
	if posErr.IsTransient() {
		return
	}

	if posErr.Code == CodePermissionDenied {
		s.permission = PermissionDenied
		if s.running {
			s.device.ClearWatch(s.watchID)
			s.running = false
			s.watchID = 0
		}
	}
}
