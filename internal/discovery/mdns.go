// ABOUTME: mDNS service discovery for calibration bridges
// ABOUTME: Handles advertisement by the bridge and browsing by the discover command
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD type advertised by calibration bridges
const ServiceType = "_egloorator._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	Path        string // WebSocket endpoint, published as a TXT record
	Source      string // recording being calibrated, published as a TXT record
}

// Manager handles mDNS advertisement
type Manager struct {
	config Config
	ctx    context.Context
	cancel context.CancelFunc
}

// ServerInfo describes a discovered bridge
type ServerInfo struct {
	Name   string
	Host   string
	Port   int
	Path   string
	Source string
}

// Addr returns host:port
func (s ServerInfo) Addr() string {
	return net.JoinHostPort(s.Host, fmt.Sprintf("%d", s.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Advertise publishes the bridge via mDNS until Stop is called
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		txtRecords(m.config),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	slog.Info("Advertising mDNS service", "name", m.config.ServiceName, "port", m.config.Port, "type", ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Stop stops the advertisement
func (m *Manager) Stop() {
	m.cancel()
}

// Browse queries the local network for bridges for up to timeout
func Browse(ctx context.Context, timeout time.Duration) ([]ServerInfo, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan []ServerInfo, 1)

	go func() {
		var found []ServerInfo
		seen := make(map[string]bool)
		for entry := range entries {
			server, ok := entryToServer(entry)
			if !ok || seen[server.Name] {
				continue
			}
			seen[server.Name] = true
			slog.Debug("Discovered bridge", "name", server.Name, "addr", server.Addr())
			found = append(found, server)
		}
		done <- found
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Timeout = timeout
	params.Entries = entries
	params.DisableIPv6 = true

	err := mdns.QueryContext(ctx, params)
	close(entries)
	found := <-done

	if err != nil && ctx.Err() == nil {
		return found, fmt.Errorf("mdns query failed: %w", err)
	}
	return found, nil
}

// txtRecords builds the TXT record set for config
func txtRecords(config Config) []string {
	var txt []string
	if config.Path != "" {
		txt = append(txt, "path="+config.Path)
	}
	if config.Source != "" {
		txt = append(txt, "source="+config.Source)
	}
	return txt
}

// entryToServer converts an mDNS answer into ServerInfo
func entryToServer(entry *mdns.ServiceEntry) (ServerInfo, bool) {
	if entry == nil || entry.Port == 0 {
		return ServerInfo{}, false
	}

	var host string
	switch {
	case entry.AddrV4 != nil:
		host = entry.AddrV4.String()
	case entry.AddrV6 != nil:
		host = entry.AddrV6.String()
	case entry.Host != "":
		host = strings.TrimSuffix(entry.Host, ".")
	default:
		return ServerInfo{}, false
	}

	server := ServerInfo{
		Name: strings.TrimSuffix(entry.Name, "."+ServiceType+".local."),
		Host: host,
		Port: entry.Port,
	}
	for _, field := range entry.InfoFields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "path":
			server.Path = value
		case "source":
			server.Source = value
		}
	}

	return server, true
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
