package discovery

import (
	"fmt"
	"time"
)

// Gateway represents a discovered heating gateway on the network
type Gateway struct {
	// Serial is the gateway serial number (the mDNS instance name)
	Serial string

	// Hostname is the mDNS hostname (e.g., "heatgw-00427.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.40")
	IP string

	// Port is the protocol port (typically 9092)
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "fw=1.4.0", "devices=2"
	Metadata map[string]string

	// DiscoveredAt is when the gateway was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the gateway
func (g *Gateway) String() string {
	return fmt.Sprintf("Gateway %s (%s) at %s:%d", g.Serial, g.Hostname, g.IP, g.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (g *Gateway) GetMetadata(key string) string {
	if g.Metadata == nil {
		return ""
	}
	return g.Metadata[key]
}
