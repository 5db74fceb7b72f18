package sdp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avfabric/medianode-core/internal/resource"
)

// Domain errors for the sdp package.
var (
	// ErrMissingField is returned when a transport parameter required
	// by the session description is absent or of the wrong shape.
	ErrMissingField = errors.New("sdp: missing transport parameter")
)

// Parameters holds the media description extracted from a sender's
// source and flow documents.
type Parameters struct {
	// SessionName labels the session, typically the sender's label.
	SessionName string

	// MediaType is the flow's media type, e.g. "video/raw".
	MediaType string

	// FrameWidth and FrameHeight describe the raster for video flows.
	FrameWidth  int
	FrameHeight int

	// FrameRateNumerator and FrameRateDenominator carry the source's
	// grain rate.
	FrameRateNumerator   int
	FrameRateDenominator int

	// LegLabels names each transport leg, e.g. PRIMARY and SECONDARY.
	LegLabels []string
}

// MakeParameters extracts session description parameters from the
// sender's linked source and flow documents. Sensible defaults are
// applied for absent media fields; identity fields are taken as found.
func MakeParameters(source, flow, sender resource.Data, legLabels []string) Parameters {
	p := Parameters{
		SessionName:          sender.String("label"),
		MediaType:            flow.String("media_type"),
		FrameWidth:           intField(flow, "frame_width", 1920),
		FrameHeight:          intField(flow, "frame_height", 1080),
		FrameRateNumerator:   25,
		FrameRateDenominator: 1,
		LegLabels:            legLabels,
	}
	if rate := source.Object("grain_rate"); rate != nil {
		p.FrameRateNumerator = intField(rate, "numerator", 25)
		p.FrameRateDenominator = intField(rate, "denominator", 1)
	}
	if p.SessionName == "" {
		p.SessionName = "medianode"
	}
	if p.MediaType == "" {
		p.MediaType = "video/raw"
	}
	return p
}

// MakeSessionDescription serialises a session description for the
// given parameters and resolved per-leg transport parameters. Every
// leg must carry concrete source_ip, destination_ip and
// destination_port values; a missing or placeholder value is an error.
func MakeSessionDescription(p Parameters, params []resource.Data) (string, error) {
	if len(params) == 0 {
		return "", fmt.Errorf("%w: no transport legs", ErrMissingField)
	}
	if len(params) > len(p.LegLabels) {
		return "", fmt.Errorf("%w: %d transport legs but %d leg labels",
			ErrMissingField, len(params), len(p.LegLabels))
	}

	origin, err := legString(params[0], "source_ip")
	if err != nil {
		return "", err
	}

	sessID := time.Now().UTC().Unix()
	var b strings.Builder
	fmt.Fprintf(&b, "v=0\r\n")
	fmt.Fprintf(&b, "o=- %d %d IN IP4 %s\r\n", sessID, sessID, origin)
	fmt.Fprintf(&b, "s=%s\r\n", p.SessionName)
	fmt.Fprintf(&b, "t=0 0\r\n")
	if len(params) > 1 {
		fmt.Fprintf(&b, "a=group:DUP %s\r\n", strings.Join(p.LegLabels[:len(params)], " "))
	}

	for i, leg := range params {
		sourceIP, err := legString(leg, "source_ip")
		if err != nil {
			return "", err
		}
		destIP, err := legString(leg, "destination_ip")
		if err != nil {
			return "", err
		}
		destPort, ok := legInt(leg, "destination_port")
		if !ok {
			return "", fmt.Errorf("%w: leg %d destination_port", ErrMissingField, i)
		}

		fmt.Fprintf(&b, "m=video %d RTP/AVP 96\r\n", destPort)
		fmt.Fprintf(&b, "c=IN IP4 %s/32\r\n", destIP)
		fmt.Fprintf(&b, "a=source-filter: incl IN IP4 %s %s\r\n", destIP, sourceIP)
		fmt.Fprintf(&b, "a=rtpmap:96 raw/90000\r\n")
		fmt.Fprintf(&b, "a=fmtp:96 width=%d; height=%d; exactframerate=%s; depth=10; colorimetry=BT709; PM=2110GPM; TP=2110TPN\r\n",
			p.FrameWidth, p.FrameHeight, frameRate(p))
		if i < len(p.LegLabels) {
			fmt.Fprintf(&b, "a=mid:%s\r\n", p.LegLabels[i])
		}
	}

	return b.String(), nil
}

// frameRate renders the grain rate, collapsing integer rates to a
// plain number.
func frameRate(p Parameters) string {
	if p.FrameRateDenominator == 1 || p.FrameRateDenominator == 0 {
		return fmt.Sprintf("%d", p.FrameRateNumerator)
	}
	return fmt.Sprintf("%d/%d", p.FrameRateNumerator, p.FrameRateDenominator)
}

// legString extracts a required concrete string field from a leg.
func legString(leg resource.Data, field string) (string, error) {
	s, _ := leg[field].(string)
	if s == "" || s == "auto" {
		return "", fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return s, nil
}

// legInt extracts an integer field from a leg, tolerating the float64
// shape JSON decoding produces.
func legInt(leg resource.Data, field string) (int, bool) {
	switch v := leg[field].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// intField reads an integer from a document with a default.
func intField(d resource.Data, field string, def int) int {
	if d == nil {
		return def
	}
	if v, ok := legInt(d, field); ok {
		return v
	}
	return def
}
