package openalex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pubcost/publication-cost-service/internal/domain"
	"github.com/pubcost/publication-cost-service/internal/httpclient"
)

// newTestClient creates a client configured for testing with the given server URL.
func newTestClient(serverURL string, perPage int) *Client {
	cfg := Config{
		BaseURL:   serverURL,
		Email:     "test@example.com",
		Timeout:   5 * time.Second,
		RateLimit: 100, // High rate for testing
		BurstSize: 100,
		PerPage:   perPage,
	}

	hc := httpclient.New(httpclient.Config{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: "TestClient/1.0",
	})

	return NewWithHTTPClient(cfg, hc)
}

// sampleWork returns a fully-populated OpenAlex work for testing.
func sampleWork() Work {
	return Work{
		ID:              "https://openalex.org/W2741809807",
		DOI:             "https://doi.org/10.1038/nature12373",
		DisplayName:     "A Study of Everything",
		PublicationDate: "2024-06-05",
		Type:            "article",
		OpenAccess: &OpenAccess{
			IsOA:     true,
			OAStatus: "gold",
		},
		APCPaid: &APCPaid{
			Value:    2890,
			Currency: "EUR",
			ValueUSD: 3150,
		},
		Locations: []WorkLocation{
			{
				Source: &WorkSource{
					ID:                           "https://openalex.org/S137773608",
					DisplayName:                  "Nature",
					Type:                         "journal",
					HostOrganization:             "https://openalex.org/P4310319908",
					HostOrganizationName:         "Nature Portfolio",
					HostOrganizationLineageNames: []string{"Nature Portfolio", "Springer Nature"},
				},
			},
		},
	}
}

func sampleAuthor() Author {
	return Author{
		ID:          "https://openalex.org/A5023888391",
		DisplayName: "Jane Doe",
		ORCID:       "https://orcid.org/0000-0001-2345-6789",
		WorksCount:  142,
		LastKnownInstitutions: []Institution{
			{ID: "https://openalex.org/I27837315", DisplayName: "University of Michigan"},
		},
	}
}

func TestNew_Defaults(t *testing.T) {
	client := New(Config{}, nil)
	require.NotNil(t, client)

	assert.Equal(t, DefaultBaseURL, client.config.BaseURL)
	assert.Equal(t, DefaultTimeout, client.config.Timeout)
	assert.Equal(t, DefaultRateLimit, client.config.RateLimit)
	assert.Equal(t, DefaultBurstSize, client.config.BurstSize)
	assert.Equal(t, DefaultPerPage, client.config.PerPage)
}

func TestNew_PerPageCapped(t *testing.T) {
	client := New(Config{PerPage: 5000}, nil)
	assert.Equal(t, DefaultPerPage, client.config.PerPage)
}

func TestSubject_Filter(t *testing.T) {
	tests := []struct {
		kind SubjectKind
		id   string
		want string
	}{
		{SubjectAuthor, "A123", "author.id:A123"},
		{SubjectInstitution, "I123", "institutions.id:I123"},
		{SubjectFunder, "F123", "grants.funder:F123"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, err := Subject{Kind: tt.kind, ID: tt.id}.filter()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Subject{Kind: "journal", ID: "X"}.filter()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_FetchWorks(t *testing.T) {
	t.Run("converts works and sends expected query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/works", r.URL.Path)
			assert.Equal(t, "author.id:A123,type:article", r.URL.Query().Get("filter"))
			assert.Equal(t, "publication_date:desc", r.URL.Query().Get("sort"))
			assert.Equal(t, "test@example.com", r.URL.Query().Get("mailto"))
			assert.Equal(t, "1", r.URL.Query().Get("page"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(worksResponse{
				Meta:    meta{Count: 1},
				Results: []Work{sampleWork()},
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL, 25)
		records, err := client.FetchWorks(context.Background(), Subject{Kind: SubjectAuthor, ID: "A123"}, 100)
		require.NoError(t, err)
		require.Len(t, records, 1)

		rec := records[0]
		assert.Equal(t, "W2741809807", rec.ID)
		assert.Equal(t, "A Study of Everything", rec.Title)
		assert.Equal(t, "10.1038/nature12373", rec.DOI)
		require.NotNil(t, rec.PublicationDate)
		assert.Equal(t, 2024, rec.PublicationDate.Year())
		assert.True(t, rec.OpenAccess.IsOA)
		assert.Equal(t, domain.OAStatusGold, rec.OpenAccess.Status)
		require.NotNil(t, rec.APCPaid)
		assert.Equal(t, 3150.0, rec.APCPaid.ValueUSD)
		require.Len(t, rec.Locations, 1)
		require.NotNil(t, rec.Locations[0].Source)
		assert.Equal(t, []string{"Nature Portfolio", "Springer Nature"}, rec.Locations[0].Source.LineageNames)
	})

	t.Run("paginates until cap", func(t *testing.T) {
		pagesServed := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pagesServed++
			results := make([]Work, 2)
			for i := range results {
				results[i] = sampleWork()
			}
			json.NewEncoder(w).Encode(worksResponse{Results: results})
		}))
		defer server.Close()

		client := newTestClient(server.URL, 2)
		records, err := client.FetchWorks(context.Background(), Subject{Kind: SubjectAuthor, ID: "A123"}, 5)
		require.NoError(t, err)
		assert.Len(t, records, 5)
		assert.Equal(t, 3, pagesServed)
	})

	t.Run("stops on short page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(worksResponse{Results: []Work{sampleWork()}})
		}))
		defer server.Close()

		client := newTestClient(server.URL, 25)
		records, err := client.FetchWorks(context.Background(), Subject{Kind: SubjectAuthor, ID: "A123"}, 100)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("defaults missing optional fields", func(t *testing.T) {
		bare := Work{
			ID:          "https://openalex.org/W1",
			DisplayName: "Bare Work",
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(worksResponse{Results: []Work{bare}})
		}))
		defer server.Close()

		client := newTestClient(server.URL, 25)
		records, err := client.FetchWorks(context.Background(), Subject{Kind: SubjectAuthor, ID: "A123"}, 10)
		require.NoError(t, err)
		require.Len(t, records, 1)

		rec := records[0]
		assert.Nil(t, rec.PublicationDate)
		assert.False(t, rec.OpenAccess.IsOA)
		assert.Nil(t, rec.APCPaid)
		assert.Empty(t, rec.Locations)
	})

	t.Run("falls back to primary location", func(t *testing.T) {
		work := Work{
			ID: "https://openalex.org/W1",
			PrimaryLocation: &WorkLocation{
				Source: &WorkSource{
					ID:                   "https://openalex.org/S1",
					DisplayName:          "Some Journal",
					HostOrganizationName: "Elsevier BV",
				},
			},
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(worksResponse{Results: []Work{work}})
		}))
		defer server.Close()

		client := newTestClient(server.URL, 25)
		records, err := client.FetchWorks(context.Background(), Subject{Kind: SubjectAuthor, ID: "A123"}, 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Len(t, records[0].Locations, 1)
		assert.Equal(t, []string{"Elsevier BV"}, records[0].Locations[0].Source.LineageNames)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 25)
		_, err := client.FetchWorks(context.Background(), Subject{Kind: SubjectAuthor, ID: "A123"}, 10)
		require.Error(t, err)

		var apiErr *domain.ExternalAPIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})
}

func TestSourceToDomain_LineageFallbacks(t *testing.T) {
	t.Run("nil source", func(t *testing.T) {
		assert.Nil(t, sourceToDomain(nil))
	})

	t.Run("lineage preserved", func(t *testing.T) {
		src := sourceToDomain(&WorkSource{
			HostOrganizationLineageNames: []string{"A", "B"},
			HostOrganizationName:         "ignored",
		})
		assert.Equal(t, []string{"A", "B"}, src.LineageNames)
	})

	t.Run("host organization name fallback", func(t *testing.T) {
		src := sourceToDomain(&WorkSource{
			HostOrganizationName: "Elsevier BV",
			DisplayName:          "The Journal",
		})
		assert.Equal(t, []string{"Elsevier BV"}, src.LineageNames)
	})

	t.Run("display name fallback", func(t *testing.T) {
		src := sourceToDomain(&WorkSource{DisplayName: "The Journal"})
		assert.Equal(t, []string{"The Journal"}, src.LineageNames)
	})

	t.Run("nothing to fall back on", func(t *testing.T) {
		src := sourceToDomain(&WorkSource{ID: "https://openalex.org/S1"})
		assert.Empty(t, src.LineageNames)
		assert.Equal(t, "S1", src.ID)
	})
}

func TestClient_SearchAuthors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authors", r.URL.Path)
		assert.Equal(t, "jane doe", r.URL.Query().Get("search"))

		json.NewEncoder(w).Encode(authorsResponse{
			Meta:    meta{Count: 1},
			Results: []Author{sampleAuthor()},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, 25)
	profiles, err := client.SearchAuthors(context.Background(), "jane doe")
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	assert.Equal(t, "A5023888391", profiles[0].ID)
	assert.Equal(t, "Jane Doe", profiles[0].Name)
	assert.Equal(t, "0000-0001-2345-6789", profiles[0].ORCID)
	assert.Equal(t, "University of Michigan", profiles[0].Affiliation)
	assert.Equal(t, 142, profiles[0].WorksCount)
}

func TestClient_FindAuthorByORCID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "orcid:0000-0001-2345-6789", r.URL.Query().Get("filter"))
			json.NewEncoder(w).Encode(authorsResponse{Results: []Author{sampleAuthor()}})
		}))
		defer server.Close()

		client := newTestClient(server.URL, 25)
		profile, err := client.FindAuthorByORCID(context.Background(), "0000-0001-2345-6789")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", profile.Name)
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(authorsResponse{})
		}))
		defer server.Close()

		client := newTestClient(server.URL, 25)
		_, err := client.FindAuthorByORCID(context.Background(), "0000-0000-0000-0000")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestClient_GetAuthor(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/authors/A5023888391", r.URL.Path)
			json.NewEncoder(w).Encode(sampleAuthor())
		}))
		defer server.Close()

		client := newTestClient(server.URL, 25)
		profile, err := client.GetAuthor(context.Background(), "A5023888391")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", profile.Name)
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 25)
		_, err := client.GetAuthor(context.Background(), "A404")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCleanAuthorID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A5023888391", "A5023888391"},
		{"a5023888391", "A5023888391"},
		{"5023888391", "A5023888391"},
		{"https://openalex.org/A5023888391", "A5023888391"},
		{"  A5023888391  ", "A5023888391"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanAuthorID(tt.in), "input %q", tt.in)
	}
}

func TestCleanInstitutionID(t *testing.T) {
	assert.Equal(t, "I27837315", CleanInstitutionID("https://openalex.org/I27837315"))
	assert.Equal(t, "I27837315", CleanInstitutionID("27837315"))
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"https://doi.org/10.1038/nature12373", "10.1038/nature12373"},
		{"doi:10.1038/NATURE12373", "10.1038/nature12373"},
		{"10.1038/nature12373", "10.1038/nature12373"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeDOI(tt.in), "input %q", tt.in)
	}
}
