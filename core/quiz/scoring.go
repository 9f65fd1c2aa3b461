package quiz

import "strconv"

// Score is the percentage of correct answers, rounded down. An empty quiz scores 0.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	if correct > total {
		correct = total
	}
	if correct < 0 {
		correct = 0
	}
	return correct * 100 / total
}

// Progress is the percentage of questions presented once the question at index is shown, rounded down.
func Progress(index, total int) int {
	if total <= 0 {
		return 0
	}
	return (index + 1) * 100 / total
}

// ParseIndex reads a question index from a request. Anything that is not a non-negative integer is 0.
func ParseIndex(raw string) int {
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		return 0
	}
	return i
}
