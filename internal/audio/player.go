// Package audio plays the looping background track while the timer runs.
package audio

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fhs/gompd/v2/mpd"
)

// DefaultAddr is where a local MPD listens by default.
const DefaultAddr = "localhost:6600"

// DefaultSocket is the system-wide MPD socket.
const DefaultSocket = "/run/mpd/socket"

// Endpoint is a network and address pair accepted by mpd.Dial.
type Endpoint struct {
	Network string
	Addr    string
}

// DefaultEndpoints lists where to look for MPD, local sockets first.
// Only socket clients may queue file:// URIs, so the TCP address comes last.
func DefaultEndpoints() []Endpoint {
	var sockets []string
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		sockets = append(sockets, filepath.Join(dir, "mpd", "socket"))
	}
	sockets = append(sockets, DefaultSocket)

	var eps []Endpoint
	for _, path := range sockets {
		if info, err := os.Stat(path); err == nil && info.Mode()&os.ModeSocket != 0 {
			eps = append(eps, Endpoint{Network: "unix", Addr: path})
		}
	}
	return append(eps, Endpoint{Network: "tcp", Addr: DefaultAddr})
}

// Player pauses and resumes the background track. Implementations are
// chosen once at startup; callers never check for audio availability.
type Player interface {
	Pause() error
	Unpause() error
	Close() error
}

// Nop is the player used when no audio backend could be initialized.
type Nop struct{}

func (Nop) Pause() error   { return nil }
func (Nop) Unpause() error { return nil }
func (Nop) Close() error   { return nil }

// MPD drives a Music Player Daemon. Every call dials its own short-lived
// connection because MPD drops idle clients.
type MPD struct {
	network string
	addr    string
}

// Open queues music on the first reachable endpoint, looping and paused.
// If none works it logs and returns Nop, so audio stays off for the session.
func Open(endpoints []Endpoint, music string) Player {
	var errs []error
	for _, ep := range endpoints {
		p, err := OpenMPD(ep.Network, ep.Addr, music)
		if err == nil {
			return p
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no mpd endpoint"))
	}
	log.Printf("exception when init music: %v", errors.Join(errs...))
	return Nop{}
}

// OpenMPD is Open without the fallback.
func OpenMPD(network, addr, music string) (*MPD, error) {
	p := &MPD{network: network, addr: addr}
	err := p.do(func(c *mpd.Client) error {
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clear queue: %w", err)
		}
		if err := addTrack(c, music); err != nil {
			return err
		}
		if err := c.Repeat(true); err != nil {
			return fmt.Errorf("repeat: %w", err)
		}
		if err := c.Single(true); err != nil {
			return fmt.Errorf("single: %w", err)
		}
		if err := c.Play(-1); err != nil {
			return fmt.Errorf("play: %w", err)
		}
		if err := c.Pause(true); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *MPD) Pause() error {
	return p.do(func(c *mpd.Client) error {
		return c.Pause(true)
	})
}

func (p *MPD) Unpause() error {
	return p.do(func(c *mpd.Client) error {
		return c.Pause(false)
	})
}

// Close leaves the daemon paused so the track does not outlive the timer.
func (p *MPD) Close() error {
	return p.Pause()
}

func (p *MPD) do(fn func(c *mpd.Client) error) error {
	c, err := mpd.Dial(p.network, p.addr)
	if err != nil {
		return fmt.Errorf("dial mpd %s: %w", p.addr, err)
	}
	defer c.Close()
	return fn(c)
}

// addTrack prefers the file in the working directory. MPD only accepts
// file:// URIs from local socket clients, so the bare name is tried
// against the daemon's library as well.
func addTrack(c *mpd.Client, music string) error {
	var candidates []string
	if abs, err := filepath.Abs(music); err == nil {
		if info, err := os.Stat(abs); err == nil && info.Mode().IsRegular() {
			candidates = append(candidates, "file://"+abs)
		}
	}
	candidates = append(candidates, music)

	var lastErr error
	for _, uri := range candidates {
		if err := c.Add(uri); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("add %s: %w", music, lastErr)
}
