// Package wifi implements the two-phase protocol used by the desktop
// publishing tool to push books to this device over a local network:
// UDP broadcast advertisements for discovery, then a TCP pull where the
// sender PUTs the file to a small server the device opens on demand.
package wifi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Protocol version window accepted by this device. The advertised
// protocolVersion is parsed as a float and gated on majors only, the
// coarse rule the desktop side speaks.
const (
	minProtocolVersion = 2.0
	maxProtocolVersion = 3.0 // exclusive
)

// Sentinel protocol errors.
var (
	// ErrSenderTooOld means the sender speaks a protocol before 2.0 and
	// must be upgraded ("needs a newer Bloom editor").
	ErrSenderTooOld = errors.New("sender's Bloom editor is too old for this device")
	// ErrSenderTooNew means the sender speaks 3.0 or later and this
	// device must be upgraded.
	ErrSenderTooNew = errors.New("sender requires a newer version of this app")
	// ErrTimeout means a transfer stalled past the per-chunk deadline.
	ErrTimeout = errors.New("transfer stalled")
)

// Advertisement is one UDP discovery datagram from the desktop.
type Advertisement struct {
	Title           string `json:"title"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocolVersion"`
	Sender          string `json:"sender"`
}

// ParseAdvertisement decodes a discovery datagram.
func ParseAdvertisement(data []byte) (Advertisement, error) {
	var a Advertisement
	if err := json.Unmarshal(data, &a); err != nil {
		return Advertisement{}, fmt.Errorf("advertisement: %w", err)
	}
	if a.Title == "" {
		return Advertisement{}, fmt.Errorf("advertisement has no title")
	}
	return a, nil
}

// CheckProtocol gates the advertised protocol version against the
// window this device supports.
func (a Advertisement) CheckProtocol() error {
	v, err := strconv.ParseFloat(a.ProtocolVersion, 64)
	if err != nil {
		return fmt.Errorf("protocolVersion %q: %w", a.ProtocolVersion, err)
	}
	if v < minProtocolVersion {
		return ErrSenderTooOld
	}
	if v >= maxProtocolVersion {
		return ErrSenderTooNew
	}
	return nil
}

// Request is the unicast datagram the device sends back to the desktop,
// telling it where to connect for the pull phase.
type Request struct {
	DeviceAddress string `json:"deviceAddress"`
	DeviceName    string `json:"deviceName"`
}

// Encode marshals the request datagram.
func (r Request) Encode() []byte {
	data, _ := json.Marshal(r)
	return data
}
