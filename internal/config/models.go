package config

import "github.com/muurk/heatlink/internal/datapoint"

// Config is the entire bridge configuration file.
type Config struct {
	Version int                    `yaml:"version"`
	Gateway Gateway                `yaml:"gateway"`
	MQTT    MQTT                   `yaml:"mqtt,omitempty"`
	Devices map[string][]Datapoint `yaml:"devices"` // keyed by bus address
}

// Gateway describes the heating gateway endpoint and TLS material.
type Gateway struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port,omitempty"` // defaults to 9092

	// ServerName is the fixed name the gateway certificate carries,
	// independent of the host actually dialed.
	ServerName string `yaml:"server_name,omitempty"`

	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file,omitempty"`

	// Password for the protocol login. When empty, the run command
	// prompts interactively.
	Password string `yaml:"password,omitempty"`
}

// MQTT describes the broker readings are forwarded to.
type MQTT struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
	QoS         byte   `yaml:"qos,omitempty"`
}

// Datapoint is one telegram to request from a device and how to present
// its reading.
type Datapoint struct {
	InfoNumber int     `yaml:"info_number"`
	Name       string  `yaml:"name"`
	Unit       string  `yaml:"unit,omitempty"`
	Divisor    float64 `yaml:"divisor,omitempty"`
}

// Default values applied by Load.
const (
	DefaultPort        = 9092
	DefaultServerName  = "heatgw"
	DefaultTopicPrefix = "heatlink"
	DefaultClientID    = "heatlink"
)

// DatapointTable builds the lookup table the session workflow consumes.
func (c *Config) DatapointTable() *datapoint.Table {
	specs := make(map[string][]datapoint.Spec, len(c.Devices))
	for addr, points := range c.Devices {
		list := make([]datapoint.Spec, len(points))
		for i, p := range points {
			list[i] = datapoint.Spec{
				InfoNumber: p.InfoNumber,
				Name:       p.Name,
				Unit:       p.Unit,
				Divisor:    p.Divisor,
			}
		}
		specs[addr] = list
	}
	return datapoint.NewTable(specs)
}
