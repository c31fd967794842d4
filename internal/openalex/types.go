// Package openalex provides the metadata-source client for the publication
// cost service, backed by the OpenAlex API.
//
// OpenAlex is a free, open catalog of scholarly works, authors, venues,
// institutions, and funders. The client fetches fully-materialized,
// already-paginated work record batches for a subject (author, institution,
// or funder) and converts them to domain records, defaulting every optional
// field at this boundary so the analysis core never sees raw untyped data.
//
// API Documentation: https://docs.openalex.org/
package openalex

// worksResponse represents the top-level response from the works endpoint.
type worksResponse struct {
	Meta    meta   `json:"meta"`
	Results []Work `json:"results"`
}

// authorsResponse represents the top-level response from the authors endpoint.
type authorsResponse struct {
	Meta    meta     `json:"meta"`
	Results []Author `json:"results"`
}

// meta contains pagination metadata.
type meta struct {
	Count   int `json:"count"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Work represents a scholarly work in OpenAlex.
type Work struct {
	ID              string         `json:"id"`
	DOI             string         `json:"doi"`
	Title           string         `json:"title"`
	DisplayName     string         `json:"display_name"`
	PublicationDate string         `json:"publication_date"`
	Type            string         `json:"type"`
	OpenAccess      *OpenAccess    `json:"open_access"`
	APCPaid         *APCPaid       `json:"apc_paid"`
	PrimaryLocation *WorkLocation  `json:"primary_location"`
	Locations       []WorkLocation `json:"locations"`
}

// OpenAccess contains open access information for a work.
type OpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
}

// APCPaid is the article processing charge OpenAlex believes was paid.
type APCPaid struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
	ValueUSD float64 `json:"value_usd"`
}

// WorkLocation represents one place a work is hosted.
type WorkLocation struct {
	Source *WorkSource `json:"source"`
}

// WorkSource represents a publication venue (journal, repository, etc.).
type WorkSource struct {
	ID                           string   `json:"id"`
	DisplayName                  string   `json:"display_name"`
	Type                         string   `json:"type"`
	HostOrganization             string   `json:"host_organization"`
	HostOrganizationName         string   `json:"host_organization_name"`
	HostOrganizationLineageNames []string `json:"host_organization_lineage_names"`
}

// Author represents an author profile in OpenAlex.
type Author struct {
	ID                    string        `json:"id"`
	DisplayName           string        `json:"display_name"`
	ORCID                 string        `json:"orcid"`
	WorksCount            int           `json:"works_count"`
	LastKnownInstitutions []Institution `json:"last_known_institutions"`
}

// Institution represents an academic institution.
type Institution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
