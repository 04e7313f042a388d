package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PacketType is the leading byte of an Engine.IO v3 text packet.
type PacketType byte

const (
	PacketOpen    PacketType = '0'
	PacketClose   PacketType = '1'
	PacketPing    PacketType = '2'
	PacketPong    PacketType = '3'
	PacketMessage PacketType = '4'
	PacketUpgrade PacketType = '5'
	PacketNoop    PacketType = '6'
)

// MessageType is the Socket.IO packet type carried inside an Engine.IO message.
type MessageType byte

const (
	MessageConnect    MessageType = '0'
	MessageDisconnect MessageType = '1'
	MessageEvent      MessageType = '2'
	MessageAck        MessageType = '3'
	MessageError      MessageType = '4'
)

var (
	ErrEmptyPacket    = errors.New("empty packet")
	ErrUnknownPacket  = errors.New("unknown packet type")
	ErrMalformedEvent = errors.New("malformed event")
)

// Handshake is the body of the Engine.IO open packet. Intervals are in
// milliseconds.
type Handshake struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
}

// Packet is one decoded Engine.IO frame. For message packets Message holds the
// Socket.IO type and Data the remainder; Event and Args are set for events.
type Packet struct {
	Type      PacketType
	Message   MessageType
	Data      string
	Handshake *Handshake
	Event     string
	Args      []json.RawMessage
}

// DecodePacket parses a single websocket text frame.
func DecodePacket(raw []byte) (Packet, error) {
	if len(raw) == 0 {
		return Packet{}, ErrEmptyPacket
	}
	p := Packet{Type: PacketType(raw[0]), Data: string(raw[1:])}

	switch p.Type {
	case PacketOpen:
		var hs Handshake
		if err := json.Unmarshal(raw[1:], &hs); err != nil {
			return Packet{}, fmt.Errorf("decode handshake: %w", err)
		}
		p.Handshake = &hs
	case PacketClose, PacketPing, PacketPong, PacketUpgrade, PacketNoop:
	case PacketMessage:
		if len(p.Data) == 0 {
			return Packet{}, ErrEmptyPacket
		}
		p.Message = MessageType(p.Data[0])
		p.Data = p.Data[1:]
		if p.Message == MessageEvent {
			name, args, err := decodeEvent(p.Data)
			if err != nil {
				return Packet{}, err
			}
			p.Event, p.Args = name, args
		}
	default:
		return Packet{}, fmt.Errorf("%w: %q", ErrUnknownPacket, raw[0])
	}
	return p, nil
}

// decodeEvent parses `[ackID]["name", args...]`, skipping a namespace prefix
// and an optional numeric ack id.
func decodeEvent(data string) (string, []json.RawMessage, error) {
	if strings.HasPrefix(data, "/") {
		comma := strings.IndexByte(data, ',')
		if comma < 0 {
			return "", nil, ErrMalformedEvent
		}
		data = data[comma+1:]
	}
	data = strings.TrimLeft(data, "0123456789")

	var parts []json.RawMessage
	if err := json.Unmarshal([]byte(data), &parts); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if len(parts) == 0 {
		return "", nil, ErrMalformedEvent
	}
	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return "", nil, fmt.Errorf("%w: event name: %v", ErrMalformedEvent, err)
	}
	return name, parts[1:], nil
}

// EncodeEvent builds the `42["name",args...]` frame for a client emit.
func EncodeEvent(name string, args ...any) ([]byte, error) {
	payload := make([]any, 0, len(args)+1)
	payload = append(payload, name)
	payload = append(payload, args...)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", name, err)
	}
	out := make([]byte, 0, len(body)+2)
	out = append(out, byte(PacketMessage), byte(MessageEvent))
	return append(out, body...), nil
}

// EncodePing and EncodePong are the keepalive frames.
func EncodePing() []byte { return []byte{byte(PacketPing)} }

func EncodePong() []byte { return []byte{byte(PacketPong)} }

// EncodeOpen builds the open frame a server sends on connect.
func EncodeOpen(hs Handshake) ([]byte, error) {
	body, err := json.Marshal(hs)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(PacketOpen)}, body...), nil
}

// EncodeConnect is the Socket.IO connect frame for the default namespace.
func EncodeConnect() []byte { return []byte{byte(PacketMessage), byte(MessageConnect)} }

// DecodeArg unmarshals event argument i into v.
func (p Packet) DecodeArg(i int, v any) error {
	if i >= len(p.Args) {
		return fmt.Errorf("%w: %s has %d args, want index %d", ErrMalformedEvent, p.Event, len(p.Args), i)
	}
	if err := json.Unmarshal(p.Args[i], v); err != nil {
		return fmt.Errorf("decode %s arg %d: %w", p.Event, i, err)
	}
	return nil
}
