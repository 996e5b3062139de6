package sampler

import (
	"errors"
	"time"
)

// PermissionState tracks the device location permission lifecycle
type PermissionState string

const (
	PermissionPrompt      PermissionState = "prompt"
	PermissionGranted     PermissionState = "granted"
	PermissionDenied      PermissionState = "denied"
	PermissionUnavailable PermissionState = "unavailable"
	PermissionRequesting  PermissionState = "requesting"
)

// Position is a raw device location sample
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Timestamp time.Time
}

// Position error codes, mirroring the device API
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// PositionError is a typed position acquisition failure
type PositionError struct {
	Code    int
	Message string
}

func (e *PositionError) Error() string {
	return e.Message
}

// IsTransient reports whether the error should be retried by a continuous
// watch without tearing down the subscription
func (e *PositionError) IsTransient() bool {
	return e.Code == CodePositionUnavailable || e.Code == CodeTimeout
}

// ErrNoCapability is returned by devices with no positioning hardware
var ErrNoCapability = errors.New("device has no positioning capability")

// WatchOptions configures a continuous position watch
type WatchOptions struct {
	HighAccuracy bool
	Timeout      time.Duration // per-sample acquisition timeout
	MaximumAge   time.Duration // acceptable staleness of a cached fix
}

// DefaultWatchOptions matches the options used by agent devices in the field
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		HighAccuracy: true,
		Timeout:      10 * time.Second,
		MaximumAge:   5 * time.Second,
	}
}

// Device abstracts the platform positioning API so the sampler can be driven
// by a fake in tests. WatchPosition returns an opaque watch ID for ClearWatch.
type Device interface {
	WatchPosition(opts WatchOptions, onPosition func(Position), onError func(*PositionError)) (watchID int, err error)
	GetCurrentPosition(opts WatchOptions) (Position, error)
	ClearWatch(watchID int)
	QueryPermission() (PermissionState, error)
}
