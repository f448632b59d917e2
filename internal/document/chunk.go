package document

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// sentencesPerOverlap converts an overlap in characters into a number of
// carried-over sentences.
const sentencesPerOverlap = 50

// TextChunk is one window of sentences produced by ChunkText.
type TextChunk struct {
	Index         int
	Text          string
	StartSentence int
	EndSentence   int
}

// ChunkText splits text into sentence-aligned chunks of roughly chunkSize
// characters. Each new chunk starts with the last overlap/50 sentences of
// the previous one. Sentences are rejoined with ". ".
func ChunkText(text string, chunkSize, overlap int) ([]TextChunk, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, ErrInvalidChunking
	}

	var sentences []string
	for _, s := range sentenceBoundary.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}

	carry := overlap / sentencesPerOverlap
	var (
		chunks  []TextChunk
		current string
	)
	for i, sentence := range sentences {
		if current != "" && utf8.RuneCountInString(current)+utf8.RuneCountInString(sentence) > chunkSize {
			start := max(0, i-carry)
			chunks = append(chunks, TextChunk{
				Index:         len(chunks),
				Text:          strings.TrimSpace(current),
				StartSentence: start,
				EndSentence:   i - 1,
			})
			current = strings.Join(append(sentences[start:i:i], sentence), ". ")
			continue
		}
		if current != "" {
			current += ". "
		}
		current += sentence
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, TextChunk{
			Index:         len(chunks),
			Text:          strings.TrimSpace(current),
			StartSentence: max(0, len(sentences)-carry),
			EndSentence:   len(sentences) - 1,
		})
	}
	return chunks, nil
}
