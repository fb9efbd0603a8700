package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/keysub/properties"
)

// Period is an optional scheduling hint for periodic pull subscriptions.
//
// keysub forwards it verbatim to the session and never interprets it.
type Period struct {
	Origin   time.Duration `yaml:"origin"`
	Interval time.Duration `yaml:"interval"`
	Duration time.Duration `yaml:"duration"`
}

// String returns "origin/interval/duration", or just the interval when origin and
// duration are zero.
func (p Period) String() string {
	if p.Origin == 0 && p.Duration == 0 {
		return p.Interval.String()
	}

	return fmt.Sprintf("%s/%s/%s", p.Origin, p.Interval, p.Duration)
}

// ParsePeriod parses the String form of a Period.
func ParsePeriod(s string) (Period, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	switch len(parts) {
	case 1:
		d, err := time.ParseDuration(parts[0])
		if err != nil {
			return Period{}, fmt.Errorf("%w: period %q: %w", ErrInvalidConfig, s, err)
		}

		return Period{Interval: d}, nil
	case 3:
		var ds [3]time.Duration
		for i, part := range parts {
			d, err := time.ParseDuration(part)
			if err != nil {
				return Period{}, fmt.Errorf("%w: period %q: %w", ErrInvalidConfig, s, err)
			}
			ds[i] = d
		}

		return Period{Origin: ds[0], Interval: ds[1], Duration: ds[2]}, nil
	default:
		return Period{}, fmt.Errorf("%w: malformed period %q", ErrInvalidConfig, s)
	}
}

// SubInfo is the transport-facing part of a subscriber configuration.
//
// It is what the session receives on a networked declaration.
type SubInfo struct {
	Reliability Reliability
	Mode        Mode

	// Period is nil when no scheduling hint is set. It is meaningful only in Pull mode.
	Period *Period
}

// Properties renders the SubInfo as a property string, e.g.
// "reliability=best_effort;mode=pull;period=100ms".
func (i SubInfo) Properties() properties.Properties {
	pairs := []properties.Pair{
		{Key: "reliability", Value: i.Reliability.String()},
		{Key: "mode", Value: i.Mode.String()},
	}
	if i.Period != nil {
		pairs = append(pairs, properties.Pair{Key: "period", Value: i.Period.String()})
	}

	return properties.FromPairs(pairs...)
}

// String returns the property string form.
func (i SubInfo) String() string {
	return i.Properties().String()
}

// ParseSubInfo applies a property string on top of base.
//
// Recognized keys: "reliability", "mode", "period". Unknown keys are ignored. Setting
// mode=push clears any period, including one given earlier in the same string.
//
// Parameters:
//   - base: Starting configuration
//   - s: Property string
//
// Returns:
//   - SubInfo: The resulting configuration
//   - error: ErrInvalidConfig wrapped with the offending entry
func ParseSubInfo(base SubInfo, s string) (SubInfo, error) {
	info := base
	for k, v := range properties.Parse(s).All() {
		switch strings.ToLower(k) {
		case "reliability":
			r, err := ParseReliability(v)
			if err != nil {
				return base, err
			}
			info.Reliability = r
		case "mode":
			m, err := ParseMode(v)
			if err != nil {
				return base, err
			}
			info.Mode = m
			if m == Push {
				info.Period = nil
			}
		case "period":
			p, err := ParsePeriod(v)
			if err != nil {
				return base, err
			}
			info.Period = &p
		}
	}

	return info, nil
}

// SubscriberConfig is the complete, immutable description of a subscription request.
type SubscriberConfig struct {
	KeyExpr KeyExpr
	Info    SubInfo
	Local   bool
}
