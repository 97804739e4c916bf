// Package matcher decides which enrolled identity (if any) a captured face
// belongs to. It tries the provider's indexed face-set search first and
// degrades to a linear pairwise scan over the registry when the search
// itself cannot execute. Both paths apply the same acceptance threshold and
// the same tie-break: earliest-enrolled identity wins.
package matcher

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/kozaktomas/faceclock/internal/audit"
	"github.com/kozaktomas/faceclock/internal/facepp"
	"github.com/kozaktomas/faceclock/internal/registry"
)

// Provider is the subset of the recognition client the matcher needs.
type Provider interface {
	SearchInSet(ctx context.Context, probeToken, setToken string) ([]facepp.Candidate, error)
	Compare(ctx context.Context, tokenA, tokenB string) (float64, error)
}

// Path records which matching strategy produced a decision.
type Path string

const (
	PathIndexed  Path = "indexed"
	PathFallback Path = "fallback"
)

// compareConcurrency caps parallel pairwise comparisons during the fallback
// scan; the provider rejects bursts beyond a few concurrent calls.
const compareConcurrency = 5

// Decision is the single result of a verification. Identity is nil unless
// Outcome is OutcomeSuccess; Confidence is 0 when no comparison happened.
type Decision struct {
	Outcome    audit.Outcome
	Identity   *registry.Identity
	Confidence float64
	Path       Path
}

// Matcher implements the two-tier matching strategy.
type Matcher struct {
	provider  Provider
	registry  registry.Reader
	setToken  string
	threshold float64
}

// New creates a matcher. The face-set token and acceptance threshold are
// injected so tests can swap them without shared state.
func New(provider Provider, reg registry.Reader, setToken string, threshold float64) *Matcher {
	return &Matcher{
		provider:  provider,
		registry:  reg,
		setToken:  setToken,
		threshold: threshold,
	}
}

// Verify resolves a probe token to a decision. The indexed search is an
// optimization, not a dependency: if the call itself fails the matcher
// scans the registry linearly instead of failing the verification. An
// indexed search that executes but finds nothing is terminal.
func (m *Matcher) Verify(ctx context.Context, probeToken string) Decision {
	candidates, err := m.provider.SearchInSet(ctx, probeToken, m.setToken)
	if err != nil {
		log.Printf("warning: indexed search unavailable, falling back to linear comparison: %v", err)
		return m.fallbackScan(ctx, probeToken)
	}

	if len(candidates) == 0 {
		return Decision{Outcome: audit.OutcomeNotRecognized, Path: PathIndexed}
	}

	best := m.pickBest(ctx, candidates)
	if best.Confidence < m.threshold {
		return Decision{Outcome: audit.OutcomeLowConfidence, Confidence: best.Confidence, Path: PathIndexed}
	}

	identity, err := m.registry.FindByToken(ctx, best.Token)
	if err != nil {
		log.Printf("warning: registry lookup for token failed: %v", err)
		return Decision{Outcome: audit.OutcomeProviderError, Confidence: best.Confidence, Path: PathIndexed}
	}
	if identity == nil {
		// The provider knows a face the registry does not: data inconsistency,
		// never a silent match.
		return Decision{Outcome: audit.OutcomeProviderError, Confidence: best.Confidence, Path: PathIndexed}
	}

	return Decision{Outcome: audit.OutcomeSuccess, Identity: identity, Confidence: best.Confidence, Path: PathIndexed}
}

// pickBest selects the highest-confidence candidate. Equal confidences are
// broken by enrollment time (earliest wins); tokens the registry cannot
// resolve keep their provider ranking behind resolvable ones.
func (m *Matcher) pickBest(ctx context.Context, candidates []facepp.Candidate) facepp.Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}

	var tied []facepp.Candidate
	for _, c := range candidates {
		if c.Confidence == best.Confidence {
			tied = append(tied, c)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}

	chosen := tied[0]
	var chosenAt time.Time
	resolved := false
	for _, c := range tied {
		identity, err := m.registry.FindByToken(ctx, c.Token)
		if err != nil || identity == nil {
			continue
		}
		if !resolved || identity.EnrolledAt.Before(chosenAt) {
			chosen = c
			chosenAt = identity.EnrolledAt
			resolved = true
		}
	}
	return chosen
}

// fallbackScan compares the probe against every enrolled identity. The
// comparisons fan out concurrently but results land in enrollment order and
// are reduced sequentially, so the maximum-confidence/earliest-enrollment
// rule holds regardless of completion order. Individual comparison failures
// are skipped, not fatal.
func (m *Matcher) fallbackScan(ctx context.Context, probeToken string) Decision {
	identities, err := m.registry.List(ctx)
	if err != nil {
		log.Printf("warning: could not list registry for fallback scan: %v", err)
		return Decision{Outcome: audit.OutcomeProviderError, Path: PathFallback}
	}
	if len(identities) == 0 {
		return Decision{Outcome: audit.OutcomeNotRecognized, Path: PathFallback}
	}

	confidences := make([]float64, len(identities))
	compared := make([]bool, len(identities))

	// Bounded workers keep the scan under the provider's concurrency limits.
	sem := make(chan struct{}, compareConcurrency)
	var wg sync.WaitGroup
	for i := range identities {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			confidence, err := m.provider.Compare(ctx, probeToken, identities[i].FaceToken)
			if err != nil {
				log.Printf("warning: comparison with identity %s failed: %v", identities[i].ID, err)
				return
			}
			confidences[i] = confidence
			compared[i] = true
		}(i)
	}
	wg.Wait()

	// Strict greater-than keeps the earliest-enrolled identity on ties.
	bestIdx := -1
	var bestConfidence float64
	for i := range identities {
		if compared[i] && (bestIdx == -1 || confidences[i] > bestConfidence) {
			bestIdx = i
			bestConfidence = confidences[i]
		}
	}

	if bestIdx == -1 || bestConfidence < m.threshold {
		return Decision{Outcome: audit.OutcomeNotRecognized, Confidence: bestConfidence, Path: PathFallback}
	}

	identity := identities[bestIdx]
	return Decision{Outcome: audit.OutcomeSuccess, Identity: &identity, Confidence: bestConfidence, Path: PathFallback}
}
