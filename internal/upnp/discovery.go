package upnp

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/huin/goupnp"
	"github.com/huin/goupnp/dcps/av1"
	"github.com/huin/goupnp/httpu"
	"github.com/huin/goupnp/ssdp"

	"github.com/handiism/camsync/internal/browse"
	"github.com/handiism/camsync/internal/download"
	"github.com/handiism/camsync/internal/sync"
)

// MediaServerTarget is the SSDP search target for UPnP media servers,
// which is how the camera announces itself.
const MediaServerTarget = "urn:schemas-upnp-org:device:MediaServer:1"

const (
	searchWaitSeconds = 2
	searchSends       = 3
)

// Watcher polls SSDP on one network interface and emits a device event
// whenever a media server transitions from absent to present.
//
// Polling (rather than listening for NOTIFY multicasts) keeps the
// watcher stateless across camera power cycles: a camera that
// disappears and comes back is simply absent in one poll and present
// in a later one, which yields exactly the reappearance event the
// controller needs for daemon mode.
type Watcher struct {
	ifname     string
	poll       time.Duration
	onProgress func(download.ProgressEvent)
}

// NewWatcher creates a Watcher for the named interface, searching
// every poll interval.
func NewWatcher(ifname string, poll time.Duration, onProgress func(download.ProgressEvent)) *Watcher {
	return &Watcher{
		ifname:     ifname,
		poll:       poll,
		onProgress: onProgress,
	}
}

// Watch searches until the context is cancelled, sending newly
// appeared devices to events. The channel is closed on return. Search
// failures (interface down, socket errors) are reported as warnings
// and retried on the next poll; the wait for a device is unbounded by
// design.
func (w *Watcher) Watch(ctx context.Context, events chan<- sync.Device) error {
	defer close(events)

	present := make(map[string]bool)

	for {
		found := w.search(ctx)

		for udn, dev := range found {
			if present[udn] {
				continue
			}
			select {
			case events <- dev:
			case <-ctx.Done():
				return nil
			}
		}

		present = make(map[string]bool, len(found))
		for udn := range found {
			present[udn] = true
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.poll):
		}
	}
}

// search runs one SSDP search and resolves every responder's device
// description, keyed by UDN.
func (w *Watcher) search(ctx context.Context) map[string]*discoveredDevice {
	devices := make(map[string]*discoveredDevice)

	addr, err := interfaceAddr(w.ifname)
	if err != nil {
		w.warn(fmt.Sprintf("Discovery: %v", err))
		return devices
	}

	client, err := httpu.NewHTTPUClientAddr(addr)
	if err != nil {
		w.warn(fmt.Sprintf("Discovery: binding %s: %v", addr, err))
		return devices
	}
	defer client.Close()

	responses, err := ssdp.SSDPRawSearchCtx(ctx, client, MediaServerTarget, searchWaitSeconds, searchSends)
	if err != nil {
		if ctx.Err() == nil {
			w.warn(fmt.Sprintf("Discovery: search: %v", err))
		}
		return devices
	}

	for _, resp := range responses {
		loc, err := resp.Location()
		if err != nil {
			continue
		}
		root, err := goupnp.DeviceByURLCtx(ctx, loc)
		if err != nil {
			w.warn(fmt.Sprintf("Discovery: describing %s: %v", loc, err))
			continue
		}
		devices[root.Device.UDN] = &discoveredDevice{root: root, location: loc}
	}

	return devices
}

func (w *Watcher) warn(msg string) {
	if w.onProgress != nil {
		w.onProgress(download.ProgressEvent{Message: msg, Level: download.LevelWarning})
	}
}

// interfaceAddr returns the first IPv4 address of the named interface.
func interfaceAddr(ifname string) (string, error) {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return "", fmt.Errorf("interface %s: %w", ifname, err)
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return "", fmt.Errorf("interface %s: %w", ifname, err)
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}
	return "", fmt.Errorf("interface %s has no IPv4 address", ifname)
}

// discoveredDevice adapts a resolved UPnP root device to the
// controller's Device capability.
type discoveredDevice struct {
	root     *goupnp.RootDevice
	location *url.URL
}

func (d *discoveredDevice) ModelDescription() string {
	return d.root.Device.ModelDescription
}

func (d *discoveredDevice) ContentDirectory() (browse.Service, error) {
	clients, err := av1.NewContentDirectory1ClientsFromRootDevice(d.root, d.location)
	if err != nil {
		return nil, fmt.Errorf("resolving ContentDirectory on %s: %w", d.root.Device.FriendlyName, err)
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("device %s offers no ContentDirectory service", d.root.Device.FriendlyName)
	}
	return &directory{client: clients[0]}, nil
}
