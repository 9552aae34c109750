package endpoint

import (
	"errors"
	"testing"
)

// =============================================================================
// Producer Tests
// =============================================================================

func qosPtr(q byte) *byte    { return &q }
func retainPtr(r bool) *bool { return &r }

func TestProducer_Send(t *testing.T) {
	tests := []struct {
		name       string
		msg        Outbound
		wantTopic  string
		wantQoS    byte
		wantRetain bool
	}{
		{
			name:       "defaults from configuration",
			msg:        Outbound{Payload: []byte("on")},
			wantTopic:  "graylogic/connect/out",
			wantQoS:    1,
			wantRetain: false,
		},
		{
			name:       "explicit topic overrides default",
			msg:        Outbound{Topic: "actuators/valve", Payload: []byte("on")},
			wantTopic:  "actuators/valve",
			wantQoS:    1,
			wantRetain: false,
		},
		{
			name:       "qos override",
			msg:        Outbound{Payload: []byte("on"), QoS: qosPtr(2)},
			wantTopic:  "graylogic/connect/out",
			wantQoS:    2,
			wantRetain: false,
		},
		{
			name:       "retain override",
			msg:        Outbound{Payload: []byte("on"), Retain: retainPtr(true)},
			wantTopic:  "graylogic/connect/out",
			wantQoS:    1,
			wantRetain: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFactory{}
			ep := newTestEndpoint(t, f, testConfig())
			if err := ep.Connect(); err != nil {
				t.Fatalf("Connect() error = %v", err)
			}

			p := NewProducer(ep)
			if err := p.Send(tt.msg); err != nil {
				t.Fatalf("Send() error = %v", err)
			}

			if got := f.publishCount(); got != 1 {
				t.Fatalf("publish calls = %d, want 1", got)
			}
			rec := f.publishedAt(0)
			if rec.topic != tt.wantTopic {
				t.Errorf("topic = %q, want %q", rec.topic, tt.wantTopic)
			}
			if rec.payload != "on" {
				t.Errorf("payload = %q, want on", rec.payload)
			}
			if rec.qos != tt.wantQoS {
				t.Errorf("qos = %d, want %d", rec.qos, tt.wantQoS)
			}
			if rec.retain != tt.wantRetain {
				t.Errorf("retain = %v, want %v", rec.retain, tt.wantRetain)
			}
		})
	}
}

func TestProducer_Send_NoTopic(t *testing.T) {
	cfg := testConfig()
	cfg.Publish.Topic = ""

	f := &fakeFactory{}
	ep := newTestEndpoint(t, f, cfg)
	p := NewProducer(ep)

	if err := p.Send(Outbound{Payload: []byte("on")}); !errors.Is(err, ErrInvalidTopic) {
		t.Fatalf("Send() error = %v, want ErrInvalidTopic", err)
	}
	if got := f.connectCount(); got != 0 {
		t.Errorf("connect calls = %d, want 0 for a rejected message", got)
	}
}
