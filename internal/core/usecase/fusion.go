package usecase

import (
	"sort"
	"strings"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
)

// meetingKeywords triggers the meeting-subset augmentation. Static by
// design; queries match on substring like the source system.
var meetingKeywords = []string{"meeting", "discuss", "agenda", "minutes", "call", "conference"}

func hasMeetingIntent(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range meetingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func clampTextWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// applyCombinedScores enforces the ranking contract on every hybrid row:
// combined = (1-w)*vector + w*text. The store's own combined_score is
// recomputed rather than trusted.
func applyCombinedScores(rows []domain.RetrievedRow, textWeight float64) {
	w := clampTextWeight(textWeight)
	for i := range rows {
		rows[i].CombinedScore = (1-w)*rows[i].VectorSimilarity + w*rows[i].TextSimilarity
		rows[i].Similarity = rows[i].CombinedScore
	}
}

// sortByCombined orders hybrid rows by combined score, breaking ties by
// recency then document id so equal scores stay deterministic.
func sortByCombined(rows []domain.RetrievedRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CombinedScore != rows[j].CombinedScore {
			return rows[i].CombinedScore > rows[j].CombinedScore
		}
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].DocumentID < rows[j].DocumentID
	})
}

// sortBySimilarity orders semantic rows by vector similarity with the same
// deterministic tie-breaks.
func sortBySimilarity(rows []domain.RetrievedRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Similarity != rows[j].Similarity {
			return rows[i].Similarity > rows[j].Similarity
		}
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].DocumentID < rows[j].DocumentID
	})
}

// mergeByPriority concatenates row lists in search-priority order and
// drops later occurrences of an already-seen document id. The surviving
// instance is always the first seen; the merged order is not re-sorted.
func mergeByPriority(lists ...[]domain.RetrievedRow) []domain.RetrievedRow {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	seen := make(map[string]struct{}, total)
	out := make([]domain.RetrievedRow, 0, total)
	for _, l := range lists {
		for _, row := range l {
			if row.DocumentID != "" {
				if _, ok := seen[row.DocumentID]; ok {
					continue
				}
				seen[row.DocumentID] = struct{}{}
			}
			out = append(out, row)
		}
	}
	return out
}
