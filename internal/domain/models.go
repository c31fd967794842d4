// Package domain contains the core domain models for the publication cost
// service: work records as fetched from the metadata source, resolved
// per-work results, and batch-level aggregates.
package domain

import "time"

// UnknownPublisher is the sentinel canonical key for works whose publisher
// could not be determined. Works resolving to it are excluded from aggregates.
const UnknownPublisher = "unknown"

// OAStatus classifies how a work is made openly accessible.
type OAStatus string

// Open access status values as reported by OpenAlex.
const (
	OAStatusGold    OAStatus = "gold"
	OAStatusHybrid  OAStatus = "hybrid"
	OAStatusBronze  OAStatus = "bronze"
	OAStatusDiamond OAStatus = "diamond"
	OAStatusClosed  OAStatus = "closed"
)

// CarriesAPC reports whether this status can plausibly carry an article
// processing charge. Closed access and unrecognized statuses never do.
func (s OAStatus) CarriesAPC() bool {
	switch s {
	case OAStatusGold, OAStatusHybrid, OAStatusBronze, OAStatusDiamond:
		return true
	default:
		return false
	}
}

// OpenAccess describes the open-access state of a work.
// The zero value means "not open access", which is the required default
// when the metadata source omits the field.
type OpenAccess struct {
	// IsOA indicates whether the work is openly accessible anywhere.
	IsOA bool

	// Status is the open-access classification (gold, hybrid, bronze,
	// diamond, closed). Empty when unreported.
	Status OAStatus
}

// APC is a reported article processing charge.
type APC struct {
	// Value is the charge in the original currency.
	Value float64

	// Currency is the ISO currency code of Value.
	Currency string

	// ValueUSD is the charge converted to US dollars, when reported.
	ValueUSD float64
}

// Source is a raw organization descriptor attached to a work location.
// It names the venue hosting the work; the hosting organization may be a
// publisher or an institution.
type Source struct {
	// ID is the metadata source's identifier for this venue.
	ID string

	// DisplayName is the venue's display name.
	DisplayName string

	// HostOrganization is the identifier of the organization hosting the
	// venue. It may reference an institution rather than a publisher;
	// institutional hosts are never valid publisher identities.
	HostOrganization string

	// LineageNames is the ordered sequence of host-organization display
	// names. Order is load-bearing: the resolver takes the first name
	// that normalizes to a known publisher.
	LineageNames []string
}

// Location is one place a work is hosted. The source may be absent.
type Location struct {
	Source *Source
}

// WorkRecord is a single publication as returned by the metadata source.
// Optional fields are pointers; consumers must tolerate their absence.
type WorkRecord struct {
	// ID is the metadata source's work identifier.
	ID string

	// Title is the work's display title.
	Title string

	// DOI is the normalized DOI, empty when the work has none.
	DOI string

	// PublicationDate is the publication date. Nil when unreported;
	// a missing date sorts as the earliest possible date.
	PublicationDate *time.Time

	// OpenAccess describes the work's open-access state.
	OpenAccess OpenAccess

	// APCPaid is the article processing charge reported as paid for this
	// work. Nil when the source has no APC data.
	APCPaid *APC

	// Locations are the venues hosting this work, in source order.
	Locations []Location
}

// ResolvedWork is one analyzed publication: the work reduced to its
// canonical publisher and attributed cost. Derived per aggregation pass,
// never persisted.
type ResolvedWork struct {
	Title     string
	DOI       string
	Publisher string

	// Cost is the attributed APC in USD. Never negative; zero exactly
	// when no charge is recorded or plausible.
	Cost float64

	// OpenAccess is true when a cost was attributed or the work is
	// plausibly open with an APC-carrying status.
	OpenAccess bool

	// ForProfit is true when the publisher is in the curated for-profit
	// set and a cost was attributed. Free-to-publish works at commercial
	// publishers do not count as cost exposure.
	ForProfit bool
}

// AggregateSummary holds batch-level statistics for one analysis pass.
type AggregateSummary struct {
	// TotalWorks is the number of works surviving publisher resolution.
	TotalWorks int

	// ForProfitWorks counts works with attributed cost at a for-profit
	// publisher.
	ForProfitWorks int

	// ForProfitPercent is ForProfitWorks as a percentage of TotalWorks,
	// zero when the batch is empty.
	ForProfitPercent float64

	// TotalCost is the sum of all attributed costs in USD.
	TotalCost float64

	// CostByPublisher maps each canonical publisher to its summed cost.
	CostByPublisher map[string]float64
}

// AuthorProfile describes an author as known to the metadata source.
type AuthorProfile struct {
	ID          string
	Name        string
	ORCID       string
	Affiliation string
	WorksCount  int
}
