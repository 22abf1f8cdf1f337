// Package discovery provides mDNS-based discovery of heating gateways.
//
// This package implements multicast DNS (mDNS) service discovery to
// locate heating gateways on the local network. Gateways advertise
// themselves under the "_heatgw._tcp" service type with their serial
// number as the instance name and the protocol port (9092) in the SRV
// record.
//
// # Usage Example
//
//	// Discover gateways with 10-second timeout
//	gateways, err := discovery.ScanForGateways(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, gw := range gateways {
//	    fmt.Printf("Found: %s at %s:%d (Serial: %s)\n",
//	        gw.Hostname, gw.IP, gw.Port, gw.Serial)
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Gateways must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions
// can run simultaneously without interference.
package discovery
