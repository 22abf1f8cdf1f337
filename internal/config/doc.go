// Package config loads the heatlink bridge configuration.
//
// The configuration is a single YAML file describing the gateway
// endpoint and TLS material, the MQTT broker to forward readings to,
// and the per-device datapoint tables (which telegram info numbers to
// request on each bus address and how to name their readings).
//
// # Configuration File Location
//
// When no --config flag is given, the file is looked up in
// platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/heatlink/config.yaml or $HOME/.config/heatlink/config.yaml
//   - macOS: $HOME/.config/heatlink/config.yaml
//   - Windows: %LOCALAPPDATA%\heatlink\config.yaml
//
// # Example
//
//	version: 1
//	gateway:
//	  host: 192.168.1.40
//	  server_name: heatgw
//	  cert_file: /etc/heatlink/client.crt
//	  key_file: /etc/heatlink/client.key
//	  ca_file: /etc/heatlink/gateway-ca.crt
//	mqtt:
//	  broker: tcp://127.0.0.1:1883
//	  topic_prefix: heatlink
//	devices:
//	  "10":
//	    - info_number: 105
//	      name: boiler_temp
//	      unit: C
//	      divisor: 10
//
// # Security
//
// The gateway password may be stored in the file for unattended
// operation, but when it is omitted the run command prompts for it
// instead.
package config
