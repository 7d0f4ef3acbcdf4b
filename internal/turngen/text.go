package turngen

import (
	"math/rand"
	"strings"
)

var sentenceWords = []string{
	"the", "a", "quiet", "storm", "lighthouse", "keeper", "waited", "because",
	"nobody", "remembered", "why", "garden", "door", "opened", "slowly",
	"toward", "morning", "river", "carried", "letters", "home", "again",
	"stranger", "laughed", "and", "everything", "changed", "overnight",
}

// Sentence generates short filler prose for a writing turn. Content is
// throwaway; tests assert on structure, never on the words themselves.
func Sentence(rnd *rand.Rand) string {
	n := 5 + rnd.Intn(8)
	words := make([]string, n)
	for i := range words {
		words[i] = sentenceWords[rnd.Intn(len(sentenceWords))]
	}
	return strings.Join(words, " ") + "."
}
