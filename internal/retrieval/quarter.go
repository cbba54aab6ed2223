package retrieval

import (
	"strings"

	"secure-rag/internal/models"
)

// QuarterFromQuestion returns the first of Q1..Q4 mentioned in the question,
// checked in that order, or QuarterNone.
func QuarterFromQuestion(question string) models.Quarter {
	q := strings.ToLower(question)
	for _, quarter := range models.Quarters {
		if strings.Contains(q, strings.ToLower(string(quarter))) {
			return quarter
		}
	}
	return models.QuarterNone
}
