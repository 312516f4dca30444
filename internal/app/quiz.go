package app

import (
	"classical-music-quiz/internal/domain"
)

// NumAnswers is the number of composer buttons shown per round.
const NumAnswers = 4

// Randomizer is the randomness source used for shuffling and answer selection.
// *math/rand.Rand satisfies it.
type Randomizer interface {
	Shuffle(n int, swap func(i, j int))
	Intn(n int) int
}

// GenerateQuestion shuffles the remaining samples and returns the first
// min(NumAnswers, len(remaining)) of them in display order.
func GenerateQuestion(rnd Randomizer, remaining []int) ([]int, error) {
	if len(remaining) == 0 {
		return nil, domain.ErrEmptyRemainingSet
	}
	shuffled := append([]int(nil), remaining...)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := NumAnswers
	if len(shuffled) < n {
		n = len(shuffled)
	}
	return shuffled[:n:n], nil
}

// SelectCorrectAnswer picks one of the question's samples uniformly at random.
func SelectCorrectAnswer(rnd Randomizer, question []int) (int, error) {
	if len(question) == 0 {
		return 0, domain.ErrEmptyRemainingSet
	}
	return question[rnd.Intn(len(question))], nil
}

// EvaluateAnswer reports whether the chosen sample is the correct one.
func EvaluateAnswer(correct, chosen int) bool {
	return chosen == correct
}

// AdvanceRound returns remaining without the answered sample. The input is not modified.
func AdvanceRound(remaining []int, answered int) []int {
	next := make([]int, 0, len(remaining))
	for _, id := range remaining {
		if id != answered {
			next = append(next, id)
		}
	}
	return next
}

// dedupe drops repeated ids while keeping first-seen order.
func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
