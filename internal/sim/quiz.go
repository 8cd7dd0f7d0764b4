package sim

import "slices"

// Quiz is one checkpoint question.
type Quiz struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"correctAnswer"`
	Fact     string   `json:"fact"`
}

// IsCorrect reports whether option is the right answer.
func (q Quiz) IsCorrect(option int) bool {
	return option == q.Correct
}

// SelectQuiz picks uniformly among the quizzes not yet shown, or among the
// whole bank once every quiz has been seen. The bank must not be empty.
func SelectQuiz(bank []Quiz, shown []string, rng RNG) Quiz {
	pool := make([]Quiz, 0, len(bank))
	for _, q := range bank {
		if !slices.Contains(shown, q.ID) {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		pool = bank
	}
	return pool[rng.Intn(len(pool))]
}
