package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pubcost/publication-cost-service/internal/domain"
	"github.com/pubcost/publication-cost-service/internal/httpclient"
	"github.com/pubcost/publication-cost-service/internal/observability"
)

const (
	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	// OpenAlex polite pool (with email) allows higher rates.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPerPage is the default page size for works requests.
	// OpenAlex allows at most 200 results per page.
	DefaultPerPage = 200

	// DefaultMaxWorks bounds a fetch when the caller passes no cap.
	DefaultMaxWorks = 2000

	// maxPerPage is the OpenAlex API page size limit.
	maxPerPage = 200

	// doiPrefix is the URL prefix that OpenAlex uses for DOIs.
	doiPrefix = "https://doi.org/"

	// idPrefix is the URL prefix for OpenAlex entity IDs.
	idPrefix = "https://openalex.org/"
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the OpenAlex API base URL.
	// Defaults to https://api.openalex.org
	BaseURL string

	// Email is the contact email for the polite pool.
	// Providing an email grants access to higher rate limits.
	Email string

	// Timeout is the request timeout. Defaults to 30 seconds.
	Timeout time.Duration

	// RateLimit is the maximum requests per second. Defaults to 10.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed. Defaults to 10.
	BurstSize int

	// PerPage is the page size for works requests. Defaults to 200,
	// the OpenAlex maximum.
	PerPage int
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.PerPage == 0 || c.PerPage > maxPerPage {
		c.PerPage = DefaultPerPage
	}
}

// SubjectKind identifies which kind of entity an analysis targets.
type SubjectKind string

// Subject kinds supported by the works filter.
const (
	SubjectAuthor      SubjectKind = "author"
	SubjectInstitution SubjectKind = "institution"
	SubjectFunder      SubjectKind = "funder"
)

// Subject is the entity whose publication costs are being analyzed.
type Subject struct {
	Kind SubjectKind
	ID   string
}

// filter returns the OpenAlex works filter clause for this subject.
func (s Subject) filter() (string, error) {
	switch s.Kind {
	case SubjectAuthor:
		return "author.id:" + s.ID, nil
	case SubjectInstitution:
		return "institutions.id:" + s.ID, nil
	case SubjectFunder:
		return "grants.funder:" + s.ID, nil
	default:
		return "", domain.NewValidationError("subject", fmt.Sprintf("unsupported subject kind %q", s.Kind))
	}
}

// Client fetches scholarly metadata from the OpenAlex API.
type Client struct {
	config     Config
	httpClient *httpclient.Client
	metrics    *observability.Metrics
}

// New creates a new OpenAlex client with the given configuration.
// metrics may be nil.
func New(cfg Config, metrics *observability.Metrics) *Client {
	cfg.applyDefaults()

	hc := httpclient.New(httpclient.Config{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: "publication-cost-service/1.0 (mailto:" + cfg.Email + ")",
	})

	return &Client{
		config:     cfg,
		httpClient: hc,
		metrics:    metrics,
	}
}

// NewWithHTTPClient creates a new OpenAlex client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, hc *httpclient.Client) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: hc,
	}
}

// FetchWorks retrieves up to maxWorks article records for the subject,
// paginating until the cap or the result set is exhausted. Results come back
// most recent first. A non-positive maxWorks applies DefaultMaxWorks.
//
// Optional fields missing from the API response are defaulted here: a missing
// open_access block means not open access, missing locations mean an empty
// location list.
func (c *Client) FetchWorks(ctx context.Context, subject Subject, maxWorks int) ([]domain.WorkRecord, error) {
	if maxWorks <= 0 {
		maxWorks = DefaultMaxWorks
	}

	filterClause, err := subject.filter()
	if err != nil {
		return nil, err
	}

	records := make([]domain.WorkRecord, 0, c.config.PerPage)
	for page := 1; len(records) < maxWorks; page++ {
		query := url.Values{}
		query.Set("filter", filterClause+",type:article")
		query.Set("sort", "publication_date:desc")
		query.Set("per_page", strconv.Itoa(c.config.PerPage))
		query.Set("page", strconv.Itoa(page))

		var resp worksResponse
		if err := c.get(ctx, "/works", query, &resp); err != nil {
			return nil, fmt.Errorf("fetching works page %d: %w", page, err)
		}

		for i := range resp.Results {
			records = append(records, workToRecord(&resp.Results[i]))
			if len(records) == maxWorks {
				break
			}
		}

		if len(resp.Results) < c.config.PerPage {
			break
		}
	}

	if c.metrics != nil {
		c.metrics.WorksFetched.Add(float64(len(records)))
	}
	return records, nil
}

// SearchAuthors looks up author profiles by name, returning at most ten
// candidates for the caller to choose from.
func (c *Client) SearchAuthors(ctx context.Context, queryText string) ([]domain.AuthorProfile, error) {
	query := url.Values{}
	query.Set("search", queryText)
	query.Set("per_page", "10")

	var resp authorsResponse
	if err := c.get(ctx, "/authors", query, &resp); err != nil {
		return nil, fmt.Errorf("searching authors: %w", err)
	}

	profiles := make([]domain.AuthorProfile, 0, len(resp.Results))
	for i := range resp.Results {
		profiles = append(profiles, authorToProfile(&resp.Results[i]))
	}
	return profiles, nil
}

// FindAuthorByORCID resolves an ORCID identifier to an author profile.
// Returns domain.ErrNotFound when no author carries the ORCID.
func (c *Client) FindAuthorByORCID(ctx context.Context, orcid string) (*domain.AuthorProfile, error) {
	query := url.Values{}
	query.Set("filter", "orcid:"+orcid)

	var resp authorsResponse
	if err := c.get(ctx, "/authors", query, &resp); err != nil {
		return nil, fmt.Errorf("looking up ORCID: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, domain.NewNotFoundError("author", orcid)
	}

	profile := authorToProfile(&resp.Results[0])
	return &profile, nil
}

// GetAuthor fetches a single author profile by OpenAlex ID.
func (c *Client) GetAuthor(ctx context.Context, id string) (*domain.AuthorProfile, error) {
	var author Author
	if err := c.get(ctx, "/authors/"+url.PathEscape(id), nil, &author); err != nil {
		return nil, fmt.Errorf("fetching author %s: %w", id, err)
	}

	profile := authorToProfile(&author)
	return &profile, nil
}

// get performs a GET against the API and decodes the JSON response into out.
// Response bodies are bounded to 10MB to prevent resource exhaustion.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	base, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing base URL: %w", err)
	}
	base.Path = path

	if query == nil {
		query = url.Values{}
	}
	// Identify ourselves for the polite pool.
	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}
	base.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	endpoint := metricEndpoint(path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.SourceRequestsTotal.WithLabelValues(endpoint).Inc()
		c.metrics.SourceRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.countFailure(endpoint)
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.countFailure(endpoint)
		return domain.NewNotFoundError("resource", path)
	}
	if resp.StatusCode != http.StatusOK {
		c.countFailure(endpoint)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return domain.NewExternalAPIError("OpenAlex", resp.StatusCode, string(body), nil)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(out); err != nil {
		c.countFailure(endpoint)
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) countFailure(endpoint string) {
	if c.metrics != nil {
		c.metrics.SourceRequestsFailed.WithLabelValues(endpoint).Inc()
	}
}

// metricEndpoint collapses ID-bearing paths to a stable label.
func metricEndpoint(path string) string {
	if strings.HasPrefix(path, "/authors/") {
		return "/authors/{id}"
	}
	return path
}

// workToRecord converts an OpenAlex work to a domain record, defaulting
// missing optional fields.
func workToRecord(w *Work) domain.WorkRecord {
	record := domain.WorkRecord{
		ID:    normalizeID(w.ID),
		Title: w.DisplayName,
		DOI:   normalizeDOI(w.DOI),
	}
	if record.Title == "" {
		record.Title = w.Title
	}

	if w.PublicationDate != "" {
		if t, err := time.Parse("2006-01-02", w.PublicationDate); err == nil {
			record.PublicationDate = &t
		}
	}

	if w.OpenAccess != nil {
		record.OpenAccess = domain.OpenAccess{
			IsOA:   w.OpenAccess.IsOA,
			Status: domain.OAStatus(strings.ToLower(w.OpenAccess.OAStatus)),
		}
	}

	if w.APCPaid != nil {
		record.APCPaid = &domain.APC{
			Value:    w.APCPaid.Value,
			Currency: w.APCPaid.Currency,
			ValueUSD: w.APCPaid.ValueUSD,
		}
	}

	locations := w.Locations
	if len(locations) == 0 && w.PrimaryLocation != nil {
		locations = []WorkLocation{*w.PrimaryLocation}
	}
	record.Locations = make([]domain.Location, 0, len(locations))
	for _, loc := range locations {
		record.Locations = append(record.Locations, domain.Location{
			Source: sourceToDomain(loc.Source),
		})
	}

	return record
}

// sourceToDomain converts a venue descriptor, coercing a source with no
// lineage into a one-element name sequence from its host-organization name
// or, failing that, its own display name.
func sourceToDomain(s *WorkSource) *domain.Source {
	if s == nil {
		return nil
	}

	names := s.HostOrganizationLineageNames
	if len(names) == 0 {
		switch {
		case s.HostOrganizationName != "":
			names = []string{s.HostOrganizationName}
		case s.DisplayName != "":
			names = []string{s.DisplayName}
		}
	}

	return &domain.Source{
		ID:               normalizeID(s.ID),
		DisplayName:      s.DisplayName,
		HostOrganization: s.HostOrganization,
		LineageNames:     names,
	}
}

// authorToProfile converts an OpenAlex author to a domain profile.
func authorToProfile(a *Author) domain.AuthorProfile {
	profile := domain.AuthorProfile{
		ID:         normalizeID(a.ID),
		Name:       a.DisplayName,
		ORCID:      normalizeORCID(a.ORCID),
		WorksCount: a.WorksCount,
	}
	if len(a.LastKnownInstitutions) > 0 {
		profile.Affiliation = a.LastKnownInstitutions[0].DisplayName
	}
	return profile
}

// CleanAuthorID normalizes user-supplied author IDs: full openalex.org URLs
// are reduced to the bare ID and the "A" entity prefix is uppercased.
func CleanAuthorID(id string) string {
	return cleanEntityID(id, 'A')
}

// CleanInstitutionID normalizes user-supplied institution IDs.
func CleanInstitutionID(id string) string {
	return cleanEntityID(id, 'I')
}

// CleanFunderID normalizes user-supplied funder IDs.
func CleanFunderID(id string) string {
	return cleanEntityID(id, 'F')
}

func cleanEntityID(id string, letter byte) string {
	id = strings.TrimSpace(id)
	id = normalizeID(id)
	id = strings.TrimLeft(id, string(letter)+strings.ToLower(string(letter)))
	if id == "" {
		return ""
	}
	return string(letter) + id
}

// normalizeDOI strips the https://doi.org/ prefix from DOIs and returns lowercase.
func normalizeDOI(doi string) string {
	if doi == "" {
		return ""
	}
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, doiPrefix)
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(strings.TrimSpace(doi))
}

// normalizeID extracts the short ID from full OpenAlex URLs.
func normalizeID(id string) string {
	if id == "" {
		return ""
	}
	id = strings.TrimPrefix(id, idPrefix)
	return strings.TrimSpace(id)
}

// normalizeORCID strips any URL prefixes from ORCID identifiers.
func normalizeORCID(orcid string) string {
	if orcid == "" {
		return ""
	}
	orcid = strings.TrimPrefix(orcid, "https://orcid.org/")
	return strings.TrimSpace(orcid)
}
