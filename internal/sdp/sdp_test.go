package sdp

import (
	"errors"
	"strings"
	"testing"

	"github.com/avfabric/medianode-core/internal/resource"
)

func testParameters() Parameters {
	return Parameters{
		SessionName:          "example sender",
		MediaType:            "video/raw",
		FrameWidth:           1920,
		FrameHeight:          1080,
		FrameRateNumerator:   25,
		FrameRateDenominator: 1,
		LegLabels:            []string{"PRIMARY", "SECONDARY"},
	}
}

func testLegs() []resource.Data {
	return []resource.Data{
		{
			"source_ip":        "192.0.2.0",
			"destination_ip":   "233.252.0.0",
			"destination_port": 5004,
		},
		{
			"source_ip":        "192.0.2.1",
			"destination_ip":   "233.252.0.1",
			"destination_port": 5004,
		},
	}
}

func TestMakeSessionDescriptionDualLeg(t *testing.T) {
	session, err := MakeSessionDescription(testParameters(), testLegs())
	if err != nil {
		t.Fatalf("MakeSessionDescription: %v", err)
	}

	wantLines := []string{
		"v=0\r\n",
		"s=example sender\r\n",
		"t=0 0\r\n",
		"a=group:DUP PRIMARY SECONDARY\r\n",
		"m=video 5004 RTP/AVP 96\r\n",
		"c=IN IP4 233.252.0.0/32\r\n",
		"c=IN IP4 233.252.0.1/32\r\n",
		"a=source-filter: incl IN IP4 233.252.0.0 192.0.2.0\r\n",
		"a=source-filter: incl IN IP4 233.252.0.1 192.0.2.1\r\n",
		"a=rtpmap:96 raw/90000\r\n",
		"a=mid:PRIMARY\r\n",
		"a=mid:SECONDARY\r\n",
	}
	for _, line := range wantLines {
		if !strings.Contains(session, line) {
			t.Errorf("session description missing %q\n%s", line, session)
		}
	}

	if !strings.Contains(session, "width=1920; height=1080; exactframerate=25;") {
		t.Errorf("fmtp line missing raster/rate:\n%s", session)
	}
	if !strings.HasPrefix(session, "v=0\r\n") {
		t.Error("session description must start with v=0")
	}
}

func TestMakeSessionDescriptionSingleLegOmitsGrouping(t *testing.T) {
	session, err := MakeSessionDescription(testParameters(), testLegs()[:1])
	if err != nil {
		t.Fatalf("MakeSessionDescription: %v", err)
	}
	if strings.Contains(session, "a=group:DUP") {
		t.Error("single-leg session must not carry a DUP group")
	}
	if strings.Count(session, "m=video") != 1 {
		t.Error("single-leg session must describe exactly one media section")
	}
}

func TestMakeSessionDescriptionFractionalRate(t *testing.T) {
	p := testParameters()
	p.FrameRateNumerator = 30000
	p.FrameRateDenominator = 1001

	session, err := MakeSessionDescription(p, testLegs()[:1])
	if err != nil {
		t.Fatalf("MakeSessionDescription: %v", err)
	}
	if !strings.Contains(session, "exactframerate=30000/1001") {
		t.Errorf("fractional rate not rendered:\n%s", session)
	}
}

func TestMakeSessionDescriptionRejectsPlaceholders(t *testing.T) {
	legs := testLegs()
	legs[1]["destination_ip"] = "auto"

	_, err := MakeSessionDescription(testParameters(), legs)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("error = %v, want ErrMissingField", err)
	}
}

func TestMakeSessionDescriptionRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name string
		legs []resource.Data
	}{
		{"no legs", nil},
		{"missing source_ip", []resource.Data{{"destination_ip": "233.252.0.0", "destination_port": 5004}}},
		{"missing destination_port", []resource.Data{{"source_ip": "192.0.2.0", "destination_ip": "233.252.0.0"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MakeSessionDescription(testParameters(), tt.legs); !errors.Is(err, ErrMissingField) {
				t.Errorf("error = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestMakeSessionDescriptionRejectsSurplusLegs(t *testing.T) {
	legs := append(testLegs(), resource.Data{
		"source_ip":        "192.0.2.2",
		"destination_ip":   "233.252.0.2",
		"destination_port": 5004,
	})

	_, err := MakeSessionDescription(testParameters(), legs)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("error = %v, want ErrMissingField for more legs than labels", err)
	}
}

func TestMakeParameters(t *testing.T) {
	source := resource.Data{
		"grain_rate": map[string]any{"numerator": 50, "denominator": 1},
	}
	flow := resource.Data{
		"media_type":   "video/raw",
		"frame_width":  1280,
		"frame_height": 720,
	}
	sender := resource.Data{"label": "cam 1"}

	p := MakeParameters(source, flow, sender, []string{"PRIMARY"})

	if p.SessionName != "cam 1" {
		t.Errorf("SessionName = %q", p.SessionName)
	}
	if p.FrameWidth != 1280 || p.FrameHeight != 720 {
		t.Errorf("raster = %dx%d, want 1280x720", p.FrameWidth, p.FrameHeight)
	}
	if p.FrameRateNumerator != 50 || p.FrameRateDenominator != 1 {
		t.Errorf("rate = %d/%d, want 50/1", p.FrameRateNumerator, p.FrameRateDenominator)
	}
}

func TestMakeParametersDefaults(t *testing.T) {
	p := MakeParameters(resource.Data{}, resource.Data{}, resource.Data{}, nil)

	if p.SessionName != "medianode" {
		t.Errorf("SessionName = %q, want default", p.SessionName)
	}
	if p.MediaType != "video/raw" {
		t.Errorf("MediaType = %q, want default", p.MediaType)
	}
	if p.FrameWidth != 1920 || p.FrameHeight != 1080 {
		t.Errorf("raster = %dx%d, want 1920x1080", p.FrameWidth, p.FrameHeight)
	}
	if p.FrameRateNumerator != 25 {
		t.Errorf("rate numerator = %d, want 25", p.FrameRateNumerator)
	}
}
