package session

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/muurk/heatlink/internal/datapoint"
	"github.com/muurk/heatlink/internal/logging"
	"github.com/muurk/heatlink/internal/protocol"
)

// State names the session's position in the protocol workflow.
type State int

const (
	StateIdle State = iota
	StateAuthenticating
	StateFetchingConfig
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAuthenticating:
		return "authenticating"
	case StateFetchingConfig:
		return "fetching-config"
	case StateStreaming:
		return "streaming"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DeviceState names one device's position in the per-device workflow.
type DeviceState int

const (
	// DevicePulling: one-shot bundle request sent, awaiting initial values.
	DevicePulling DeviceState = iota
	// DeviceSubscribed: push subscription established, terminal steady state.
	DeviceSubscribed
	// DeviceIdle: the initial pull returned no telegrams (or no datapoints
	// are configured), so no subscription was issued.
	DeviceIdle
)

func (s DeviceState) String() string {
	switch s {
	case DevicePulling:
		return "pulling"
	case DeviceSubscribed:
		return "subscribed"
	case DeviceIdle:
		return "idle"
	default:
		return fmt.Sprintf("DeviceState(%d)", int(s))
	}
}

// Device is one entry in the session's device table, populated from the
// system-config response and keyed by bus address.
type Device struct {
	BusAddress     string
	DeviceID       string
	SoftwareNumber string
	State          DeviceState
}

// SendFunc writes one request message to the gateway.
type SendFunc func(protocol.Message) error

// ForwardFunc delivers one decoded value update to the external
// consumer. A non-nil error is fatal for the connection.
type ForwardFunc func(ctx context.Context, update datapoint.Update) error

// Directory supplies, per device, the telegram ids to request and the
// mapping from raw readings to consumer updates. *datapoint.Table
// satisfies it.
type Directory interface {
	TelegramIDs(busAddress string) []int
	Map(busAddress string, telegram protocol.Telegram) (datapoint.Update, error)
}

// Options configures a Session. All fields are required except
// Password, which may legitimately be empty if the gateway allows it.
type Options struct {
	Bus       *Bus
	Send      SendFunc
	Forward   ForwardFunc
	Directory Directory
	Password  string
}

// pendingBundle is one entry in the correlation map: the continuation
// awaiting the bundle response with a given id. Pull entries are
// removed on first match; push entries persist.
type pendingBundle struct {
	device     *Device
	persistent bool
	respond    func(*protocol.BundleResponse) error
}

// Session is the protocol state machine for one connection. All methods
// except construction run on the connection's drain goroutine; the
// session holds no locks.
type Session struct {
	bus      *Bus
	send     SendFunc
	forward  ForwardFunc
	dir      Directory
	password string

	// ctx is the connection context, captured at Start and passed to
	// the consumer on every forward.
	ctx context.Context

	alloc     Allocator
	state     State
	sessionID string
	devices   map[string]*Device
	pending   map[string]*pendingBundle
}

// New creates a session bound to a dispatch bus and a transport writer.
func New(opts Options) *Session {
	return &Session{
		bus:      opts.Bus,
		send:     opts.Send,
		forward:  opts.Forward,
		dir:      opts.Directory,
		password: opts.Password,
		state:    StateIdle,
		devices:  make(map[string]*Device),
		pending:  make(map[string]*pendingBundle),
	}
}

// State returns the session's current workflow state.
func (s *Session) State() State { return s.state }

// SessionID returns the id the gateway assigned at login.
func (s *Session) SessionID() string { return s.sessionID }

// Devices returns a snapshot of the device table, ordered by bus address.
func (s *Session) Devices() []Device {
	out := make([]Device, 0, len(s.devices))
	for _, dev := range s.devices {
		out = append(out, *dev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusAddress < out[j].BusAddress })
	return out
}

// Start begins the workflow: it registers the login response handler
// and sends the login request. ctx is retained for the lifetime of the
// session and passed to the consumer on every forwarded update.
// Subscriptions are always registered before the corresponding send so
// a fast response cannot race its handler.
func (s *Session) Start(ctx context.Context) error {
	s.ctx = ctx
	s.state = StateAuthenticating

	s.bus.Subscribe(messageIs[*protocol.LoginResponse](), func(msg protocol.Message) error {
		return s.handleLogin(msg.(*protocol.LoginResponse))
	}, true)

	logging.Info("authenticating against gateway")
	return s.send(&protocol.LoginRequest{Password: s.password})
}

func (s *Session) handleLogin(resp *protocol.LoginResponse) error {
	if resp.State != protocol.LoginStateOK {
		return &AuthenticationError{State: resp.State}
	}
	s.sessionID = resp.SessionID
	s.state = StateFetchingConfig
	logging.Info("login accepted", zap.String("session_id", s.sessionID))

	s.bus.Subscribe(messageIs[*protocol.SystemConfigResponse](), func(msg protocol.Message) error {
		return s.handleConfig(msg.(*protocol.SystemConfigResponse))
	}, true)

	return s.send(&protocol.SystemConfigRequest{SessionID: s.sessionID})
}

func (s *Session) handleConfig(resp *protocol.SystemConfigResponse) error {
	if resp.ErrorMessage != "" {
		return &ProtocolError{Operation: "system-config", Message: resp.ErrorMessage, State: resp.State}
	}
	if resp.State != protocol.ResultStateOK {
		return &ProtocolError{Operation: "system-config", State: resp.State}
	}

	// Last-write-wins on duplicate bus addresses within one response.
	for _, entry := range resp.Devices {
		s.devices[entry.BusAddress] = &Device{
			BusAddress:     entry.BusAddress,
			DeviceID:       entry.DeviceID,
			SoftwareNumber: entry.SoftwareNumber,
			State:          DevicePulling,
		}
	}
	s.state = StateStreaming
	logging.Info("system config received", zap.Int("devices", len(s.devices)))

	// One persistent router for every bundle response on this
	// connection; installed before the first bundle request goes out.
	s.bus.Subscribe(messageIs[*protocol.BundleResponse](), func(msg protocol.Message) error {
		return s.routeBundle(msg.(*protocol.BundleResponse))
	}, false)

	// Fan out: one independent pull sequence per discovered device.
	// Iterate the response (not the map) for deterministic send order.
	seen := make(map[string]bool, len(resp.Devices))
	for _, entry := range resp.Devices {
		if seen[entry.BusAddress] {
			continue
		}
		seen[entry.BusAddress] = true
		if err := s.startPull(s.devices[entry.BusAddress]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) startPull(dev *Device) error {
	ids := s.dir.TelegramIDs(dev.BusAddress)
	if len(ids) == 0 {
		logging.Warn("no datapoints configured for device, skipping",
			zap.String("bus_address", dev.BusAddress),
			zap.String("device_id", dev.DeviceID),
		)
		dev.State = DeviceIdle
		return nil
	}

	bundleID := s.alloc.Next()
	s.pending[bundleID] = &pendingBundle{
		device: dev,
		respond: func(resp *protocol.BundleResponse) error {
			return s.handlePull(dev, resp)
		},
	}

	logging.Info("pulling initial values",
		zap.String("bus_address", dev.BusAddress),
		zap.String("bundle_id", bundleID),
		zap.Int("telegrams", len(ids)),
	)
	return s.send(&protocol.BundleRequest{
		SessionID:  s.sessionID,
		BundleID:   bundleID,
		BusAddress: dev.BusAddress,
		Command:    protocol.CommandPull,
		Telegrams:  telegramRefs(ids),
	})
}

func (s *Session) handlePull(dev *Device, resp *protocol.BundleResponse) error {
	if err := validateBundle("pull", resp); err != nil {
		return err
	}
	if _, err := s.forwardTelegrams(dev, resp); err != nil {
		return err
	}

	if len(resp.Telegrams) == 0 {
		// The gateway answered with nothing to report. Unclear whether
		// this is a benign "nothing new" or an unreported anomaly, so
		// it is preserved as a non-error but logged loudly.
		logging.Warn("empty pull response, not subscribing",
			zap.String("bus_address", dev.BusAddress),
			zap.String("bundle_id", resp.BundleID),
		)
		dev.State = DeviceIdle
		return nil
	}
	return s.startSubscribe(dev)
}

func (s *Session) startSubscribe(dev *Device) error {
	ids := s.dir.TelegramIDs(dev.BusAddress)
	bundleID := s.alloc.Next()
	s.pending[bundleID] = &pendingBundle{
		device:     dev,
		persistent: true,
		respond: func(resp *protocol.BundleResponse) error {
			if err := validateBundle("push", resp); err != nil {
				return err
			}
			_, err := s.forwardTelegrams(dev, resp)
			return err
		},
	}
	dev.State = DeviceSubscribed

	logging.Info("subscribing to push updates",
		zap.String("bus_address", dev.BusAddress),
		zap.String("bundle_id", bundleID),
		zap.Int("interval_s", protocol.PushInterval),
	)
	return s.send(&protocol.BundleRequest{
		SessionID:  s.sessionID,
		BundleID:   bundleID,
		BusAddress: dev.BusAddress,
		Command:    protocol.CommandPush,
		Interval:   protocol.PushInterval,
		Telegrams:  telegramRefs(ids),
	})
}

// routeBundle resolves a bundle response against the correlation map.
// Responses with an unknown bundle id are unsolicited and dropped.
func (s *Session) routeBundle(resp *protocol.BundleResponse) error {
	p, ok := s.pending[resp.BundleID]
	if !ok {
		logging.Debug("bundle response with no pending request dropped",
			zap.String("bundle_id", resp.BundleID),
		)
		return nil
	}
	if !p.persistent {
		delete(s.pending, resp.BundleID)
	}
	return p.respond(resp)
}

// forwardTelegrams hands every individually-OK telegram to the
// consumer. Per-item failures (non-OK item state, unknown datapoint,
// unparseable reading) are dropped locally; a consumer error is fatal.
func (s *Session) forwardTelegrams(dev *Device, resp *protocol.BundleResponse) (int, error) {
	forwarded := 0
	for _, telegram := range resp.Telegrams {
		if telegram.State != protocol.ResultStateOK {
			logging.Warn("telegram dropped",
				zap.String("bus_address", dev.BusAddress),
				zap.Int("info_number", telegram.InfoNumber),
				zap.String("state", telegram.State),
			)
			continue
		}

		update, err := s.dir.Map(dev.BusAddress, telegram)
		if err != nil {
			logging.Warn("telegram unmappable, dropped",
				zap.String("bus_address", dev.BusAddress),
				zap.Int("info_number", telegram.InfoNumber),
				zap.Error(err),
			)
			continue
		}

		if err := s.forward(s.ctx, update); err != nil {
			return forwarded, fmt.Errorf("consumer rejected update for info number %d: %w",
				telegram.InfoNumber, err)
		}
		forwarded++
	}
	return forwarded, nil
}

func validateBundle(op string, resp *protocol.BundleResponse) error {
	if resp.ErrorMessage != "" {
		return &ProtocolError{Operation: op, Message: resp.ErrorMessage, State: resp.State}
	}
	if resp.State != protocol.ResultStateOK {
		return &ProtocolError{Operation: op, State: resp.State}
	}
	return nil
}

func telegramRefs(ids []int) []protocol.TelegramRef {
	refs := make([]protocol.TelegramRef, len(ids))
	for i, id := range ids {
		refs[i] = protocol.TelegramRef{InfoNumber: id}
	}
	return refs
}

// messageIs builds a predicate matching exactly one concrete message type.
func messageIs[T protocol.Message]() Predicate {
	return func(msg protocol.Message) bool {
		_, ok := msg.(T)
		return ok
	}
}
