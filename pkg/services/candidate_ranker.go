package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/jsonutil"
	"github.com/ekaya-inc/ekaya-staffing/pkg/llm"
	"github.com/ekaya-inc/ekaya-staffing/pkg/logging"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
	"github.com/ekaya-inc/ekaya-staffing/pkg/prompts"
)

// AIShortlistSize is how many top-scored candidates are sent for model re-ranking.
// Smaller pools are ranked deterministically without a call.
const AIShortlistSize = 5

// RankedCandidate is one entry of a total candidate ordering.
type RankedCandidate struct {
	EmployeeID string  `json:"employeeId"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// CandidateRanker orders eligible candidates for a role. Rank is total: it
// returns exactly one entry per candidate whatever the completion service does.
type CandidateRanker interface {
	Rank(ctx context.Context, roleName string, candidates []models.Employee, requiredSkills []string) []RankedCandidate
}

type candidateRanker struct {
	completer llm.TextCompleter
	scorer    DeterministicScorer
	logger    *zap.Logger
}

// NewCandidateRanker creates a ranker. A nil completer ranks deterministically only.
func NewCandidateRanker(completer llm.TextCompleter, logger *zap.Logger) CandidateRanker {
	return &candidateRanker{
		completer: completer,
		logger:    logger.Named("candidate-ranker"),
	}
}

type scoredCandidate struct {
	employee  *models.Employee
	breakdown ScoreBreakdown
}

// Rank implements CandidateRanker.
func (r *candidateRanker) Rank(ctx context.Context, roleName string, candidates []models.Employee, requiredSkills []string) []RankedCandidate {
	if len(candidates) == 0 {
		return []RankedCandidate{}
	}

	scored := r.scoreAll(roleName, candidates, requiredSkills)

	if len(scored) < AIShortlistSize || r.completer == nil {
		return deterministicRanking(scored, "Deterministic ranking")
	}

	shortlist := scored[:AIShortlistSize]
	aiRanked, err := r.rankWithModel(ctx, roleName, shortlist, requiredSkills)
	if err != nil {
		r.logger.Warn("AI ranking failed, using deterministic fallback",
			zap.String("role", roleName),
			zap.Int("candidates", len(scored)),
			zap.String("error", logging.SanitizeError(err)))
		return deterministicRanking(scored, "Fallback ranking (AI ranking unavailable)")
	}

	result := make([]RankedCandidate, 0, len(scored))
	result = append(result, aiRanked...)

	placed := make(map[string]bool, len(aiRanked))
	for _, rc := range aiRanked {
		placed[rc.EmployeeID] = true
	}
	for _, sc := range scored {
		if placed[sc.employee.ID] {
			continue
		}
		result = append(result, deterministicEntry(sc, "Deterministic ranking"))
	}

	r.logger.Debug("Ranked candidates",
		zap.String("role", roleName),
		zap.Int("ai_ranked", len(aiRanked)),
		zap.Int("total", len(result)))
	return result
}

// scoreAll scores and sorts descending; ties keep input order.
func (r *candidateRanker) scoreAll(roleName string, candidates []models.Employee, requiredSkills []string) []scoredCandidate {
	scored := make([]scoredCandidate, len(candidates))
	for i := range candidates {
		scored[i] = scoredCandidate{
			employee:  &candidates[i],
			breakdown: r.scorer.Breakdown(&candidates[i], roleName, requiredSkills),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].breakdown.Score > scored[j].breakdown.Score
	})
	return scored
}

func deterministicRanking(scored []scoredCandidate, label string) []RankedCandidate {
	out := make([]RankedCandidate, len(scored))
	for i, sc := range scored {
		out[i] = deterministicEntry(sc, label)
	}
	return out
}

func deterministicEntry(sc scoredCandidate, label string) RankedCandidate {
	e := sc.employee
	b := sc.breakdown

	var parts []string
	if b.RequiredSkills > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d required skills", b.MatchedSkills, b.RequiredSkills))
	}
	parts = append(parts, fmt.Sprintf("%d%% available", e.AvailabilityPercent))
	if e.ExperienceLevel != "" {
		parts = append(parts, strings.ToLower(string(e.ExperienceLevel)))
	}
	if b.RoleAffinity {
		parts = append(parts, "role match")
	}

	return RankedCandidate{
		EmployeeID: e.ID,
		Confidence: math.Round(b.Score*100) / 100,
		Reason:     fmt.Sprintf("%s: %s", label, strings.Join(parts, ", ")),
	}
}

// rankingResponse is the expected model output. Entries stay raw so each
// field's type can be checked strictly.
type rankingResponse struct {
	Rankings *[]rankingEntry `json:"rankings"`
}

type rankingEntry struct {
	EmployeeID json.RawMessage `json:"employeeId"`
	Confidence json.RawMessage `json:"confidence"`
	Reason     json.RawMessage `json:"reason"`
}

var errEmptyRanking = errors.New("ranking response has no entries")

func (r *candidateRanker) rankWithModel(ctx context.Context, roleName string, shortlist []scoredCandidate, requiredSkills []string) ([]RankedCandidate, error) {
	promptCandidates := make([]prompts.RankingCandidate, len(shortlist))
	sent := make(map[string]bool, len(shortlist))
	for i, sc := range shortlist {
		e := sc.employee
		sent[e.ID] = true
		promptCandidates[i] = prompts.RankingCandidate{
			EmployeeID:          e.ID,
			Name:                e.Name,
			Role:                e.Role,
			ExperienceLevel:     string(e.ExperienceLevel),
			AvailabilityPercent: e.AvailabilityPercent,
			Skills:              e.SkillNames(),
			Score:               sc.breakdown.Score,
		}
	}

	response, err := r.completer.Complete(ctx, prompts.BuildRankingPrompt(roleName, requiredSkills, promptCandidates))
	if err != nil {
		return nil, err
	}

	parsed, err := llm.ParseJSONLenient[rankingResponse](response)
	if err != nil {
		return nil, err
	}
	return validateRanking(parsed, sent, response)
}

// validateRanking rejects the whole response if any entry is malformed or names
// a candidate that was not sent. Duplicates are dropped, first occurrence wins.
func validateRanking(parsed rankingResponse, sent map[string]bool, raw string) ([]RankedCandidate, error) {
	if parsed.Rankings == nil {
		return nil, llm.NewParseError("missing rankings array", raw, nil)
	}
	if len(*parsed.Rankings) == 0 {
		return nil, llm.NewParseError("empty rankings array", raw, errEmptyRanking)
	}

	seen := make(map[string]bool, len(*parsed.Rankings))
	out := make([]RankedCandidate, 0, len(*parsed.Rankings))
	for i, entry := range *parsed.Rankings {
		id, err := jsonutil.StrictString(entry.EmployeeID)
		if err != nil {
			return nil, llm.NewParseError(fmt.Sprintf("rankings[%d].employeeId", i), raw, err)
		}
		confidence, err := jsonutil.FlexibleFloat(entry.Confidence)
		if err != nil {
			return nil, llm.NewParseError(fmt.Sprintf("rankings[%d].confidence", i), raw, err)
		}
		if !sent[id] {
			return nil, llm.NewParseError(fmt.Sprintf("rankings[%d] names unknown candidate %q", i, id), raw, nil)
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		reason := strings.TrimSpace(jsonutil.FlexibleStringValue(entry.Reason))
		if reason == "" {
			reason = "Ranked by AI"
		}
		out = append(out, RankedCandidate{
			EmployeeID: id,
			Confidence: math.Max(0, math.Min(1, confidence)),
			Reason:     reason,
		})
	}
	return out, nil
}
