package analysis

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pubcost/publication-cost-service/internal/domain"
	"github.com/pubcost/publication-cost-service/internal/observability"
	"github.com/pubcost/publication-cost-service/internal/taxonomy"
)

// Resolver produces exactly one canonical publisher per work record,
// reconciling the possibly conflicting organizations named by its locations.
type Resolver struct {
	tax     *taxonomy.Taxonomy
	norm    *Normalizer
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewResolver creates a Resolver. metrics may be nil, in which case conflict
// counts are only logged.
func NewResolver(tax *taxonomy.Taxonomy, logger zerolog.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		tax:     tax,
		norm:    NewNormalizer(tax),
		logger:  logger.With().Str("component", "resolver").Logger(),
		metrics: metrics,
	}
}

// Resolve returns the canonical publisher for a work, or
// domain.UnknownPublisher when none of its locations name a recognizable
// publisher. Resolution never fails: malformed sources are skipped, and a
// genuine multi-publisher conflict is reported as a warning and broken
// deterministically in favor of the alias table's declaration order.
func (r *Resolver) Resolve(work domain.WorkRecord) string {
	candidates := make(map[string]struct{})

	for _, loc := range work.Locations {
		src := loc.Source
		if src == nil {
			continue
		}
		// Institutional hosts (university repositories and the like) are
		// never valid publisher identities.
		if isInstitution(src.HostOrganization) {
			continue
		}
		for _, name := range src.LineageNames {
			if key := r.norm.Normalize(name); key != domain.UnknownPublisher {
				candidates[key] = struct{}{}
				break
			}
		}
	}

	switch len(candidates) {
	case 0:
		return domain.UnknownPublisher
	case 1:
		for key := range candidates {
			return key
		}
	}

	keys := make([]string, 0, len(candidates))
	for key := range candidates {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return r.less(keys[i], keys[j]) })

	r.logger.Warn().
		Str("work_id", work.ID).
		Str("doi", work.DOI).
		Strs("candidates", keys).
		Str("resolved", keys[0]).
		Msg("work locations name multiple publishers, keeping first by taxonomy order")
	if r.metrics != nil {
		r.metrics.PublisherConflicts.Inc()
	}

	return keys[0]
}

// less orders conflicting candidates by alias-table declaration order, so the
// same work always resolves to the same publisher. Names absent from the
// alias table sort after mapped ones, alphabetically.
func (r *Resolver) less(a, b string) bool {
	ra, aok := r.tax.AliasRank(a)
	rb, bok := r.tax.AliasRank(b)
	switch {
	case aok && bok:
		return ra < rb
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}

// isInstitution reports whether a host-organization reference denotes an
// institution. OpenAlex institution IDs carry an "I" entity prefix
// (https://openalex.org/I27837315), publishers a "P" prefix.
func isInstitution(hostOrg string) bool {
	if hostOrg == "" {
		return false
	}
	id := hostOrg
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return len(id) > 1 && (id[0] == 'I' || id[0] == 'i') && id[1] >= '0' && id[1] <= '9'
}
