// Package codec converts domain events to and from the bytes published on the
// event topic. Two layouts are supported: a plain JSON envelope and a
// structured CloudEvents 1.0 document. Decode accepts either one.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/types"
)

type Format string

const (
	FormatJSON        Format = "json"
	FormatCloudEvents Format = "cloudevents"
)

const (
	eventTypePrefix = "orders."

	extResultingVersion = "resultingversion"
	extCommandID        = "commandid"
)

var ErrMalformedEvent = errors.New("malformed event")

// Envelope is the JSON layout of an event on the bus.
type Envelope struct {
	EventID          string             `json:"eventId"`
	CommandID        string             `json:"commandId,omitempty"`
	OrderID          string             `json:"orderId"`
	Kind             entities.EventKind `json:"kind"`
	ResultingVersion int64              `json:"resultingVersion"`
	Payload          OrderSnapshot      `json:"payload"`
	EmittedAt        time.Time          `json:"emittedAt"`
}

type Codec struct {
	format Format
	source string
}

// New returns a codec that encodes in format. source is the CloudEvents
// source attribute and is ignored by the JSON layout.
func New(format Format, source string) (*Codec, error) {
	switch format {
	case FormatJSON, FormatCloudEvents:
	default:
		return nil, fmt.Errorf("unknown event format %q", format)
	}
	if source == "" {
		source = "order-lifecycle"
	}
	return &Codec{format: format, source: source}, nil
}

func (c *Codec) Format() Format {
	return c.format
}

func (c *Codec) ContentType() string {
	if c.format == FormatCloudEvents {
		return "application/cloudevents+json"
	}
	return "application/json"
}

func (c *Codec) Encode(ev entities.DomainEvent) ([]byte, error) {
	if err := validate(ev); err != nil {
		return nil, err
	}
	if c.format == FormatCloudEvents {
		return c.encodeCloudEvent(ev)
	}
	return json.Marshal(EnvelopeFromEvent(ev))
}

// Decode detects the layout of data and parses it.
func (c *Codec) Decode(data []byte) (entities.DomainEvent, error) {
	return Decode(data)
}

func Decode(data []byte) (entities.DomainEvent, error) {
	var head struct {
		SpecVersion string `json:"specversion"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return entities.DomainEvent{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	var (
		ev  entities.DomainEvent
		err error
	)
	if head.SpecVersion != "" {
		ev, err = decodeCloudEvent(data)
	} else {
		ev, err = decodeEnvelope(data)
	}
	if err != nil {
		return entities.DomainEvent{}, err
	}

	if err := validate(ev); err != nil {
		return entities.DomainEvent{}, err
	}
	return ev, nil
}

func EnvelopeFromEvent(ev entities.DomainEvent) Envelope {
	return Envelope{
		EventID:          ev.ID,
		CommandID:        ev.CommandID,
		OrderID:          ev.OrderID,
		Kind:             ev.Kind,
		ResultingVersion: ev.Version,
		Payload:          SnapshotFromOrder(ev.Snapshot),
		EmittedAt:        ev.EmittedAt,
	}
}

func (e Envelope) ToEvent() entities.DomainEvent {
	return entities.DomainEvent{
		ID:        e.EventID,
		OrderID:   e.OrderID,
		CommandID: e.CommandID,
		Kind:      e.Kind,
		Version:   e.ResultingVersion,
		Snapshot:  e.Payload.ToOrder(),
		EmittedAt: e.EmittedAt,
	}
}

func decodeEnvelope(data []byte) (entities.DomainEvent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return entities.DomainEvent{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	return env.ToEvent(), nil
}

func (c *Codec) encodeCloudEvent(ev entities.DomainEvent) ([]byte, error) {
	if ev.Version > math.MaxInt32 {
		return nil, fmt.Errorf("%w: version %d does not fit a cloudevents integer", ErrMalformedEvent, ev.Version)
	}

	e := cloudevents.NewEvent()
	e.SetID(ev.ID)
	e.SetSource(c.source)
	e.SetType(eventTypePrefix + strings.ToLower(string(ev.Kind)))
	e.SetSubject(ev.OrderID)
	e.SetTime(ev.EmittedAt)
	e.SetExtension(extResultingVersion, int32(ev.Version))
	if ev.CommandID != "" {
		e.SetExtension(extCommandID, ev.CommandID)
	}
	if err := e.SetData(cloudevents.ApplicationJSON, SnapshotFromOrder(ev.Snapshot)); err != nil {
		return nil, fmt.Errorf("failed to set event data: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	return json.Marshal(e)
}

func decodeCloudEvent(data []byte) (entities.DomainEvent, error) {
	var e cloudevents.Event
	if err := json.Unmarshal(data, &e); err != nil {
		return entities.DomainEvent{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return entities.DomainEvent{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	kind, ok := strings.CutPrefix(e.Type(), eventTypePrefix)
	if !ok {
		return entities.DomainEvent{}, fmt.Errorf("%w: unexpected event type %q", ErrMalformedEvent, e.Type())
	}

	ext := e.Extensions()
	rawVersion, ok := ext[extResultingVersion]
	if !ok {
		return entities.DomainEvent{}, fmt.Errorf("%w: %s is required", ErrMalformedEvent, extResultingVersion)
	}
	version, err := types.ToInteger(rawVersion)
	if err != nil {
		return entities.DomainEvent{}, fmt.Errorf("%w: %s: %w", ErrMalformedEvent, extResultingVersion, err)
	}

	var commandID string
	if v, ok := ext[extCommandID]; ok {
		if commandID, err = types.ToString(v); err != nil {
			return entities.DomainEvent{}, fmt.Errorf("%w: %s: %w", ErrMalformedEvent, extCommandID, err)
		}
	}

	var snapshot OrderSnapshot
	if err := e.DataAs(&snapshot); err != nil {
		return entities.DomainEvent{}, fmt.Errorf("%w: data: %w", ErrMalformedEvent, err)
	}

	return entities.DomainEvent{
		ID:        e.ID(),
		OrderID:   e.Subject(),
		CommandID: commandID,
		Kind:      entities.EventKind(strings.ToUpper(kind)),
		Version:   int64(version),
		Snapshot:  snapshot.ToOrder(),
		EmittedAt: e.Time(),
	}, nil
}

func validate(ev entities.DomainEvent) error {
	switch {
	case ev.ID == "":
		return fmt.Errorf("%w: event id is required", ErrMalformedEvent)
	case ev.OrderID == "":
		return fmt.Errorf("%w: order id is required", ErrMalformedEvent)
	case !ev.Kind.Valid():
		return fmt.Errorf("%w: unknown event kind %q", ErrMalformedEvent, ev.Kind)
	case ev.Version < 1:
		return fmt.Errorf("%w: resulting version must be positive", ErrMalformedEvent)
	}
	return nil
}
