package routing

import (
	"errors"
	"testing"
)

func TestParseProtocol(t *testing.T) {
	tests := []struct {
		in   string
		want Protocol
		err  bool
	}{
		{"1", AODV, false},
		{"2", OLSR, false},
		{"aodv", AODV, false},
		{" OLSR ", OLSR, false},
		{"3", 0, true},
		{"0", 0, true},
		{"dsdv", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseProtocol(tt.in)
		if tt.err {
			if !errors.Is(err, ErrUnknownProtocol) {
				t.Errorf("ParseProtocol(%q) err = %v, want ErrUnknownProtocol", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseProtocol(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	var p Protocol
	if err := p.UnmarshalText([]byte("olsr")); err != nil || p != OLSR {
		t.Fatalf("UnmarshalText = %v, %v", p, err)
	}
	b, err := p.MarshalText()
	if err != nil || string(b) != "OLSR" {
		t.Errorf("MarshalText = %s, %v", b, err)
	}
	if _, err := Protocol(9).MarshalText(); !errors.Is(err, ErrUnknownProtocol) {
		t.Errorf("MarshalText(9) err = %v", err)
	}
}

func TestProfiles(t *testing.T) {
	if AODV.Profile().DiscoveryDelay <= 0 {
		t.Error("AODV has no discovery delay")
	}
	if OLSR.Profile().DiscoveryDelay != 0 || OLSR.Profile().ControlOverhead <= 0 {
		t.Errorf("OLSR profile = %+v", OLSR.Profile())
	}
}
