package models

import "time"

// Resolution is the outcome of a latest-period search. When Found is false
// Table is nil and Period is the zero value.
type Resolution struct {
	Table    *Table         `json:"table,omitempty"`
	Period   FiscalPeriod   `json:"period"`
	Found    bool           `json:"found"`
	Attempts int            `json:"attempts"`
	Tried    []FiscalPeriod `json:"tried,omitempty"`
}

// StatementSection is one resolved category inside a snapshot.
type StatementSection struct {
	Category  StatementCategory `json:"category"`
	Found     bool              `json:"found"`
	Period    FiscalPeriod      `json:"period"`
	Freshness FreshnessTier     `json:"freshness,omitempty"`
	Distance  int               `json:"distance"`
	Attempts  int               `json:"attempts"`
	Table     *Table            `json:"table,omitempty"`
}

// FundamentalSnapshot groups the latest statements for one identifier.
type FundamentalSnapshot struct {
	Code        string             `json:"code"`
	Market      MarketInfo         `json:"market"`
	AsOf        FiscalPeriod       `json:"as_of"`
	Sections    []StatementSection `json:"sections"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Section returns the section for category, or nil.
func (s *FundamentalSnapshot) Section(category StatementCategory) *StatementSection {
	for i := range s.Sections {
		if s.Sections[i].Category == category {
			return &s.Sections[i]
		}
	}
	return nil
}

// ResolutionRecord is the persisted summary of one resolution.
type ResolutionRecord struct {
	ID         string            `json:"id"`
	Code       string            `json:"code"`
	Segment    MarketSegment     `json:"segment"`
	Provider   string            `json:"provider"`
	Category   StatementCategory `json:"category"`
	Found      bool              `json:"found"`
	Period     FiscalPeriod      `json:"period"`
	Freshness  FreshnessTier     `json:"freshness,omitempty"`
	Attempts   int               `json:"attempts"`
	Rows       int               `json:"rows"`
	ResolvedAt time.Time         `json:"resolved_at"`
}
