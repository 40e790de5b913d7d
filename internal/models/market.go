// Package models defines data structures for stockreport
package models

// MarketSegment identifies the trading venue family an identifier belongs to.
type MarketSegment string

const (
	SegmentDomestic  MarketSegment = "domestic-exchange"
	SegmentHongKong  MarketSegment = "hong-kong-exchange"
	SegmentUS        MarketSegment = "us-exchange"
	SegmentCommodity MarketSegment = "commodity-futures"
	SegmentUnknown   MarketSegment = "unknown"
)

// AllSegments lists every segment, unknown last.
func AllSegments() []MarketSegment {
	return []MarketSegment{SegmentDomestic, SegmentHongKong, SegmentUS, SegmentCommodity, SegmentUnknown}
}

// DisplayName returns a human readable market name.
func (s MarketSegment) DisplayName() string {
	switch s {
	case SegmentDomestic:
		return "A-share (Shanghai/Shenzhen)"
	case SegmentHongKong:
		return "Hong Kong"
	case SegmentUS:
		return "US"
	case SegmentCommodity:
		return "Commodity futures"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the known segments.
func (s MarketSegment) Valid() bool {
	for _, seg := range AllSegments() {
		if s == seg {
			return true
		}
	}
	return false
}

// MarketInfo describes how an identifier was classified and routed.
type MarketInfo struct {
	Code        string        `json:"code"`
	Segment     MarketSegment `json:"segment"`
	Market      string        `json:"market"`
	Provider    string        `json:"provider"`
	Description string        `json:"description"`
}
