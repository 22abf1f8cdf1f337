package protocol

import "encoding/xml"

// Message type tags. Requests and responses carry distinct tags; the
// direction is encoded in the tag value, never shared.
const (
	TagLoginRequest         uint16 = 0x0011
	TagLoginResponse        uint16 = 0x0012
	TagSystemConfigRequest  uint16 = 0x0021
	TagSystemConfigResponse uint16 = 0x0022
	TagBundleRequest        uint16 = 0x0031
	TagBundleResponse       uint16 = 0x0032
)

// Result state constants. The login exchange uses lowercase "ok"; all
// other responses and per-telegram item states use uppercase "OK".
const (
	LoginStateOK  = "ok"
	ResultStateOK = "OK"
)

// Bundle commands: a pull is a one-shot read, a push establishes a
// periodic server-initiated subscription at the requested interval.
const (
	CommandPull = "pull"
	CommandPush = "push"

	// PushInterval is the reporting interval, in seconds, requested for
	// push subscriptions.
	PushInterval = 60
)

// Message is a decoded protocol message. Concrete types are XML-mapped
// structs, one per type tag.
type Message interface {
	// TypeTag returns the wire type tag for this message.
	TypeTag() uint16
}

// LoginRequest authenticates the client against the gateway.
type LoginRequest struct {
	XMLName  xml.Name `xml:"LoginRequest"`
	Password string   `xml:"Password"`
}

func (*LoginRequest) TypeTag() uint16 { return TagLoginRequest }

// LoginResponse carries the session id used by all subsequent requests.
// State is "ok" on success.
type LoginResponse struct {
	XMLName   xml.Name `xml:"LoginResponse"`
	SessionID string   `xml:"SessionId"`
	State     string   `xml:"State"`
}

func (*LoginResponse) TypeTag() uint16 { return TagLoginResponse }

// SystemConfigRequest asks for the gateway's device topology.
type SystemConfigRequest struct {
	XMLName   xml.Name `xml:"SystemConfigRequest"`
	SessionID string   `xml:"SessionId"`
}

func (*SystemConfigRequest) TypeTag() uint16 { return TagSystemConfigRequest }

// DeviceEntry is one device on the gateway's internal bus.
type DeviceEntry struct {
	BusAddress     string `xml:"busAddress,attr"`
	DeviceID       string `xml:"deviceId,attr"`
	SoftwareNumber string `xml:"softwareNumber,attr"`
}

// SystemConfigResponse lists every device known to the gateway.
type SystemConfigResponse struct {
	XMLName      xml.Name      `xml:"SystemConfigResponse"`
	State        string        `xml:"State"`
	ErrorMessage string        `xml:"ErrorMsg"`
	Devices      []DeviceEntry `xml:"Devices>Device"`
}

func (*SystemConfigResponse) TypeTag() uint16 { return TagSystemConfigResponse }

// TelegramRef names one telegram (by info number) in a bundle request.
type TelegramRef struct {
	InfoNumber int `xml:"infoNumber,attr"`
}

// BundleRequest is a batched read for one device. Command selects pull
// or push; Interval is only meaningful for push. BundleID is echoed by
// the gateway in every matching response and is the protocol's only
// correlation mechanism.
type BundleRequest struct {
	XMLName    xml.Name      `xml:"TelegramBundleRequest"`
	SessionID  string        `xml:"SessionId"`
	BundleID   string        `xml:"BundleId"`
	BusAddress string        `xml:"BusAddress"`
	Command    string        `xml:"Command"`
	Interval   int           `xml:"Interval,omitempty"`
	Telegrams  []TelegramRef `xml:"Telegrams>Telegram"`
}

func (*BundleRequest) TypeTag() uint16 { return TagBundleRequest }

// Telegram is one reading within a bundle response. Value is the raw
// textual reading; State is "OK" when the gateway could read the item.
type Telegram struct {
	InfoNumber int    `xml:"infoNumber,attr"`
	State      string `xml:"state,attr"`
	Value      string `xml:",chardata"`
}

// BundleResponse answers a BundleRequest, and for push subscriptions is
// re-sent every interval with fresh readings. BundleID matches the
// originating request.
type BundleResponse struct {
	XMLName      xml.Name   `xml:"TelegramBundleResponse"`
	BundleID     string     `xml:"BundleId"`
	BusAddress   string     `xml:"BusAddress"`
	State        string     `xml:"State"`
	ErrorMessage string     `xml:"ErrorMsg"`
	Telegrams    []Telegram `xml:"Telegrams>Telegram"`
}

func (*BundleResponse) TypeTag() uint16 { return TagBundleResponse }
