package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"greetops/internal/sampler"
)

// Field companion for agents without the mobile app: reads position fixes
// from stdin ("lat lng" per line), runs them through the sampler's throttle
// and posts dispatched samples to the mission's location ledger.
func main() {
	var (
		apiURL    = flag.String("api", "http://localhost:3000/api/v1", "API base URL")
		token     = flag.String("token", os.Getenv("GREETOPS_TOKEN"), "access token")
		missionID = flag.Uint("mission", 0, "mission ID to track")
	)
	flag.Parse()

	if *token == "" {
		log.Fatal("❌ Access token required (flag -token or GREETOPS_TOKEN)")
	}
	if *missionID == 0 {
		log.Fatal("❌ Mission ID required (flag -mission)")
	}

	client := &apiClient{baseURL: *apiURL, token: *token, http: &http.Client{Timeout: 10 * time.Second}}

	device := newStdinDevice(os.Stdin)
	s := sampler.New(device, func(pos sampler.Position) error {
		return client.recordLocation(*missionID, pos.Latitude, pos.Longitude)
	}, sampler.DefaultOptions())

	if err := s.Start(); err != nil {
		log.Fatalf("❌ Failed to start sampler: %v", err)
	}
	defer s.Stop()

	log.Printf("📡 Tracking mission #%d, enter \"lat lng\" per line", *missionID)

	go device.run()

	// Tracking ends itself when the mission reaches a terminal status
	terminal := make(chan string, 1)
	go pollMissionStatus(client, *missionID, terminal)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-device.done:
	case status := <-terminal:
		log.Printf("✅ Mission #%d is %s", *missionID, status)
	}

	log.Println("✅ Tracking stopped")
}

// pollMissionStatus watches the mission and signals once it goes terminal
func pollMissionStatus(client *apiClient, missionID uint, terminal chan<- string) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		status, err := client.missionStatus(missionID)
		if err != nil {
			log.Printf("⚠️ Status poll failed: %v", err)
			continue
		}
		if status == "Complete" || status == "Cancelled" {
			terminal <- status
			return
		}
	}
}

// apiClient is a minimal authenticated client for the location endpoint
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func (c *apiClient) recordLocation(missionID uint, lat, lng float64) error {
	body, err := json.Marshal(map[string]float64{"lat": lat, "lng": lng})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/missions/%d/locations", c.baseURL, missionID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("location rejected: %s", resp.Status)
	}
	log.Printf("✅ Dispatched (%.5f, %.5f)", lat, lng)
	return nil
}

func (c *apiClient) missionStatus(missionID uint) (string, error) {
	url := fmt.Sprintf("%s/missions/%d", c.baseURL, missionID)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("mission fetch rejected: %s", resp.Status)
	}

	var envelope struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", err
	}
	return envelope.Data.Status, nil
}

// stdinDevice adapts line-based input to the sampler's device interface
type stdinDevice struct {
	scanner    *bufio.Scanner
	onPosition func(sampler.Position)
	onError    func(*sampler.PositionError)
	done       chan struct{}
}

func newStdinDevice(f *os.File) *stdinDevice {
	return &stdinDevice{
		scanner: bufio.NewScanner(f),
		done:    make(chan struct{}),
	}
}

func (d *stdinDevice) WatchPosition(opts sampler.WatchOptions, onPosition func(sampler.Position), onError func(*sampler.PositionError)) (int, error) {
	d.onPosition = onPosition
	d.onError = onError
	return 1, nil
}

func (d *stdinDevice) GetCurrentPosition(opts sampler.WatchOptions) (sampler.Position, error) {
	return sampler.Position{}, nil
}

func (d *stdinDevice) ClearWatch(watchID int) {
	d.onPosition = nil
	d.onError = nil
}

func (d *stdinDevice) QueryPermission() (sampler.PermissionState, error) {
	return sampler.PermissionGranted, nil
}

// run parses stdin lines into position samples until EOF
func (d *stdinDevice) run() {
	defer close(d.done)

	for d.scanner.Scan() {
		line := strings.TrimSpace(d.scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			log.Printf("⚠️ Expected \"lat lng\", got: %q", line)
			continue
		}
		lat, errLat := strconv.ParseFloat(fields[0], 64)
		lng, errLng := strconv.ParseFloat(fields[1], 64)
		if errLat != nil || errLng != nil {
			if d.onError != nil {
				d.onError(&sampler.PositionError{Code: sampler.CodePositionUnavailable, Message: "unparseable fix"})
			}
			continue
		}

		if d.onPosition != nil {
			d.onPosition(sampler.Position{Latitude: lat, Longitude: lng, Timestamp: time.Now()})
		}
	}
}
