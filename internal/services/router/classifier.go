// Package router classifies security identifiers into market segments and
// routes provider calls to the provider configured for each segment.
package router

import (
	"regexp"
	"strings"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/models"
)

// Rule is one classification step. Rules are evaluated in order against the
// normalized identifier and the first match wins.
type Rule struct {
	Name    string
	Segment models.MarketSegment
	Match   func(code string) bool
}

var (
	domesticPattern  = regexp.MustCompile(`^(SH|SZ)\.\d{6}$`)
	hongKongPattern  = regexp.MustCompile(`^\d{4,5}(\.HK)?$`)
	usPattern        = regexp.MustCompile(`^[A-Z]{1,5}(\.US)?$`)
	contractPattern  = regexp.MustCompile(`^[A-Z]{2}\d{4}$`)
	commodityKeyword = []string{"GOLD", "OIL", "SILVER"}
)

// DefaultRules returns the classification rules in priority order. A fresh
// slice is returned on every call.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "domestic-exchange-prefix", Segment: models.SegmentDomestic, Match: domesticPattern.MatchString},
		{Name: "hong-kong-numeric", Segment: models.SegmentHongKong, Match: hongKongPattern.MatchString},
		{Name: "us-ticker", Segment: models.SegmentUS, Match: usPattern.MatchString},
		{Name: "commodity-contract", Segment: models.SegmentCommodity, Match: isCommodity},
	}
}

func isCommodity(code string) bool {
	for _, kw := range commodityKeyword {
		if strings.Contains(code, kw) {
			return true
		}
	}
	return contractPattern.MatchString(code)
}

// Normalize trims surrounding whitespace and uppercases an identifier.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Classifier maps identifiers to market segments using an ordered rule list.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules  []Rule
	logger *common.Logger
}

// NewClassifier creates a classifier with the default rules.
func NewClassifier(logger *common.Logger) *Classifier {
	return NewClassifierWithRules(DefaultRules(), logger)
}

// NewClassifierWithRules creates a classifier with a custom rule list.
func NewClassifierWithRules(rules []Rule, logger *common.Logger) *Classifier {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Classifier{
		rules:  append([]Rule(nil), rules...),
		logger: logger,
	}
}

// Rules returns a copy of the rules in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify returns the segment of code. Empty input is unknown without
// evaluating any rule; input matching no rule is unknown and logged.
func (c *Classifier) Classify(code string) models.MarketSegment {
	segment, _ := c.classify(code)
	return segment
}

// MatchedRule returns the name of the rule that classified code, or "" when
// none did.
func (c *Classifier) MatchedRule(code string) string {
	_, rule := c.classify(code)
	return rule
}

func (c *Classifier) classify(code string) (models.MarketSegment, string) {
	normalized := Normalize(code)
	if normalized == "" {
		return models.SegmentUnknown, ""
	}

	for _, r := range c.rules {
		if r.Match(normalized) {
			return r.Segment, r.Name
		}
	}

	c.logger.Warn().Str("identifier", code).Msg("Unrecognized identifier format, classified as unknown")
	return models.SegmentUnknown, ""
}
