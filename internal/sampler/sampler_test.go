package sampler

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"greetops/internal/pkg/geo"
)

// fakeDevice drives the sampler from a test, capturing the watch callbacks
type fakeDevice struct {
	mu sync.Mutex

	permission    PermissionState
	permissionErr error
	watchErr      error
	currentErr    error
	current       Position

	nextWatchID int
	onPosition  func(Position)
	onError     func(*PositionError)
	cleared     []int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{permission: PermissionPrompt, nextWatchID: 1}
}

func (d *fakeDevice) WatchPosition(opts WatchOptions, onPosition func(Position), onError func(*PositionError)) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.watchErr != nil {
		return 0, d.watchErr
	}
	d.onPosition = onPosition
	d.onError = onError
	id := d.nextWatchID
	d.nextWatchID++
	return id, nil
}

func (d *fakeDevice) GetCurrentPosition(opts WatchOptions) (Position, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.currentErr != nil {
		return Position{}, d.currentErr
	}
	return d.current, nil
}

func (d *fakeDevice) ClearWatch(watchID int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cleared = append(d.cleared, watchID)
}

func (d *fakeDevice) QueryPermission() (PermissionState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission, d.permissionErr
}

func (d *fakeDevice) pushPosition(pos Position) {
	d.mu.Lock()
	cb := d.onPosition
	d.mu.Unlock()
	cb(pos)
}

func (d *fakeDevice) pushError(posErr *PositionError) {
	d.mu.Lock()
	cb := d.onError
	d.mu.Unlock()
	cb(posErr)
}

// offsetNorth shifts a latitude north by the given distance. With no
// longitude change the haversine distance is exactly R*dLat, so the
// resulting sample sits at precisely that many meters.
func offsetNorth(lat, meters float64) float64 {
	return lat + meters*180/(math.Pi*geo.EarthRadiusMeters)
}

type samplerFixture struct {
	sampler    *Sampler
	device     *fakeDevice
	now        time.Time
	dispatched []Position
}

func newSamplerFixture(t *testing.T) *samplerFixture {
	t.Helper()

	f := &samplerFixture{
		device: newFakeDevice(),
		now:    time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC),
	}
	f.device.permission = PermissionGranted
	f.sampler = New(f.device, func(pos Position) error {
		f.dispatched = append(f.dispatched, pos)
		return nil
	}, DefaultOptions())
	f.sampler.nowFunc = func() time.Time { return f.now }

	if err := f.sampler.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return f
}

func (f *samplerFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestThrottleFirstSampleAlwaysDispatched(t *testing.T) {
	t.Parallel()
	f := newSamplerFixture(t)

	f.device.pushPosition(Position{Latitude: 48.8566, Longitude: 2.3522})
	if len(f.dispatched) != 1 {
		t.Fatalf("first sample: %d dispatches, want 1", len(f.dispatched))
	}
	if got := f.sampler.LastDispatched(); got == nil || got.Latitude != 48.8566 {
		t.Errorf("LastDispatched = %+v", got)
	}
}

func TestThrottleSuppressesNearRecentSample(t *testing.T) {
	t.Parallel()
	f := newSamplerFixture(t)

	a := Position{Latitude: 48.8566, Longitude: 2.3522}
	f.device.pushPosition(a)

	// 19 m and 10 s later: under both floors, suppressed
	f.advance(10 * time.Second)
	b := Position{Latitude: offsetNorth(a.Latitude, 19), Longitude: a.Longitude}
	f.device.pushPosition(b)

	if len(f.dispatched) != 1 {
		t.Fatalf("got %d dispatches, want 1", len(f.dispatched))
	}
	// The raw position still advanced
	if got := f.sampler.Location(); got == nil || got.Latitude != b.Latitude {
		t.Errorf("Location = %+v, want raw sample B", got)
	}
	if got := f.sampler.LastDispatched(); got.Latitude != a.Latitude {
		t.Errorf("LastDispatched moved to %+v, want A", got)
	}
}

func TestThrottleDistanceOverridesInterval(t *testing.T) {
	t.Parallel()
	f := newSamplerFixture(t)

	a := Position{Latitude: 48.8566, Longitude: 2.3522}
	f.device.pushPosition(a)

	// 21 m after only 1 s: over the distance floor, dispatched
	f.advance(1 * time.Second)
	c := Position{Latitude: offsetNorth(a.Latitude, 21), Longitude: a.Longitude}
	f.device.pushPosition(c)

	if len(f.dispatched) != 2 {
		t.Fatalf("got %d dispatches, want 2", len(f.dispatched))
	}
	if got := f.sampler.LastDispatched(); got.Latitude != c.Latitude {
		t.Errorf("LastDispatched = %+v, want C", got)
	}
}

func TestThrottleIntervalOverridesDistance(t *testing.T) {
	t.Parallel()
	f := newSamplerFixture(t)

	a := Position{Latitude: 48.8566, Longitude: 2.3522}
	f.device.pushPosition(a)

	// Same position 31 s later: stationary heartbeat, dispatched
	f.advance(31 * time.Second)
	f.device.pushPosition(a)

	if len(f.dispatched) != 2 {
		t.Fatalf("got %d dispatches, want 2", len(f.dispatched))
	}
}

func TestThrottleGateResetsOnDispatch(t *testing.T) {
	t.Parallel()
	f := newSamplerFixture(t)

	a := Position{Latitude: 48.8566, Longitude: 2.3522}
	f.device.pushPosition(a)

	f.advance(1 * time.Second)
	c := Position{Latitude: offsetNorth(a.Latitude, 21), Longitude: a.Longitude}
	f.device.pushPosition(c)

	// 10 m from C within the interval: suppressed against the new anchor,
	// even though it sits over 20 m from A
	f.advance(5 * time.Second)
	d := Position{Latitude: offsetNorth(c.Latitude, 10), Longitude: c.Longitude}
	f.device.pushPosition(d)

	if len(f.dispatched) != 2 {
		t.Fatalf("got %d dispatches, want 2", len(f.dispatched))
	}
}

func TestDispatchErrorRecordedNotFatal(t *testing.T) {
	t.Parallel()

	device := newFakeDevice()
	device.permission = PermissionGranted

	calls := 0
	s := New(device, func(pos Position) error {
		calls++
		if calls == 1 {
			return errors.New("ledger unreachable")
		}
		return nil
	}, DefaultOptions())

	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	s.nowFunc = func() time.Time { return now }
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	device.pushPosition(Position{Latitude: 48.8566, Longitude: 2.3522})
	if s.LastError() == nil {
		t.Fatal("dispatch failure not recorded")
	}
	if !s.Running() {
		t.Fatal("dispatch failure stopped the watch")
	}

	// The next successful sample clears the error
	now = now.Add(31 * time.Second)
	device.pushPosition(Position{Latitude: 48.8566, Longitude: 2.3522})
	if s.LastError() != nil {
		t.Errorf("LastError = %v after recovery", s.LastError())
	}
	if calls != 2 {
		t.Errorf("dispatch called %d times, want 2", calls)
	}
}

func TestStartRefusedWhenDenied(t *testing.T) {
	t.Parallel()

	device := newFakeDevice()
	device.permission = PermissionDenied
	s := New(device, nil, DefaultOptions())

	if err := s.Start(); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Start: got %v, want ErrPermissionDenied", err)
	}
	if s.Running() {
		t.Error("sampler running after refused start")
	}
}

func TestStartRefusedWhenUnavailable(t *testing.T) {
	t.Parallel()

	device := newFakeDevice()
	device.permission = PermissionUnavailable
	s := New(device, nil, DefaultOptions())

	if err := s.Start(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Start: got %v, want ErrUnavailable", err)
	}

	device2 := newFakeDevice()
	device2.permission = PermissionGranted
	device2.watchErr = ErrNoCapability
	s2 := New(device2, nil, DefaultOptions())
	if err := s2.Start(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Start with no capability: got %v, want ErrUnavailable", err)
	}
	if s2.Permission() != PermissionUnavailable {
		t.Errorf("permission = %s, want unavailable", s2.Permission())
	}
}

func TestStartTwiceRejected(t *testing.T) {
	t.Parallel()
	f := newSamplerFixture(t)

	if err := f.sampler.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start: got %v, want ErrAlreadyRunning", err)
	}
}

func TestStopClearsWatch(t *testing.T) {
	t.Parallel()
	f := newSamplerFixture(t)

	f.sampler.Stop()
	f.sampler.Stop() // repeat-safe

	if len(f.device.cleared) != 1 {
		t.Fatalf("ClearWatch called %d times, want 1", len(f.device.cleared))
	}
	if f.device.cleared[0] != 1 {
		t.Errorf("cleared watch %d, want 1", f.device.cleared[0])
	}
	if f.sampler.Running() {
		t.Error("sampler still running after Stop")
	}
}

func TestRequestPermissionGranted(t *testing.T) {
	t.Parallel()

	device := newFakeDevice()
	device.current = Position{Latitude: 48.8566, Longitude: 2.3522}
	s := New(device, nil, DefaultOptions())

	if s.Permission() != PermissionPrompt {
		t.Fatalf("initial permission = %s, want prompt", s.Permission())
	}
	if err := s.RequestPermission(); err != nil {
		t.Fatalf("RequestPermission: %v", err)
	}
	if s.Permission() != PermissionGranted {
		t.Errorf("permission = %s, want granted", s.Permission())
	}
}

func TestRequestPermissionDenialSticky(t *testing.T) {
	t.Parallel()

	device := newFakeDevice()
	device.currentErr = &PositionError{Code: CodePermissionDenied, Message: "user denied"}
	s := New(device, nil, DefaultOptions())

	if err := s.RequestPermission(); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("RequestPermission: got %v, want ErrPermissionDenied", err)
	}
	if s.Permission() != PermissionDenied {
		t.Fatalf("permission = %s, want denied", s.Permission())
	}

	// Denial holds until a later request succeeds
	device.mu.Lock()
	device.currentErr = nil
	device.mu.Unlock()
	if err := s.RequestPermission(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if s.Permission() != PermissionGranted {
		t.Errorf("permission = %s, want granted after retry", s.Permission())
	}
}

func TestRequestPermissionTransientKeepsPrompt(t *testing.T) {
	t.Parallel()

	device := newFakeDevice()
	device.currentErr = &PositionError{Code: CodeTimeout, Message: "timeout"}
	s := New(device, nil, DefaultOptions())

	if err := s.RequestPermission(); err == nil {
		t.Fatal("expected an error for a timed out request")
	}
	if s.Permission() != PermissionPrompt {
		t.Errorf("permission = %s, want prompt after transient failure", s.Permission())
	}
}

func TestWatchErrorTransientKeepsRunning(t *testing.T) {
	t.Parallel()
	f := newSamplerFixture(t)

	f.device.pushError(&PositionError{Code: CodePositionUnavailable, Message: "no fix"})
	if !f.sampler.Running() {
		t.Fatal("transient error stopped the watch")
	}
	if f.sampler.Permission() != PermissionGranted {
		t.Errorf("permission = %s, want granted", f.sampler.Permission())
	}
	if f.sampler.LastError() == nil {
		t.Error("transient error not recorded")
	}

	f.device.pushError(&PositionError{Code: CodeTimeout, Message: "timeout"})
	if !f.sampler.Running() {
		t.Fatal("timeout stopped the watch")
	}
}

func TestWatchErrorDeniedTearsDown(t *testing.T) {
	t.Parallel()
	f := newSamplerFixture(t)

	f.device.pushError(&PositionError{Code: CodePermissionDenied, Message: "revoked"})
	if f.sampler.Running() {
		t.Fatal("sampler still running after revocation")
	}
	if f.sampler.Permission() != PermissionDenied {
		t.Errorf("permission = %s, want denied", f.sampler.Permission())
	}
	if len(f.device.cleared) != 1 {
		t.Errorf("ClearWatch called %d times, want 1", len(f.device.cleared))
	}

	// A revoked sampler refuses to restart until permission is granted again
	f.device.mu.Lock()
	f.device.permission = PermissionDenied
	f.device.mu.Unlock()
	if err := f.sampler.Start(); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("restart: got %v, want ErrPermissionDenied", err)
	}
}

func TestSuccessfulFixImpliesGranted(t *testing.T) {
	t.Parallel()
	f := newSamplerFixture(t)

	f.device.pushError(&PositionError{Code: CodeTimeout, Message: "timeout"})
	f.device.pushPosition(Position{Latitude: 48.8566, Longitude: 2.3522})

	if f.sampler.Permission() != PermissionGranted {
		t.Errorf("permission = %s, want granted", f.sampler.Permission())
	}
	if f.sampler.LastError() != nil {
		t.Errorf("LastError = %v, want nil after a successful fix", f.sampler.LastError())
	}
}
