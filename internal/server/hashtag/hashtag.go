// Package hashtag derives hashtags from audio filenames: the name is
// stripped of its extension and punctuation, and the remaining words are
// tagged unless they belong to the embedded stop-word lists.
package hashtag

import (
	"bufio"
	"bytes"
	_ "embed"
	"path/filepath"
	"regexp"
	"strings"
)

//go:embed gap_fillers.txt
var gapFillersRaw []byte

//go:embed useless_words.txt
var uselessWordsRaw []byte

//go:embed conjunctions.txt
var conjunctionsRaw []byte

var stopWords = loadStopWords(gapFillersRaw, uselessWordsRaw, conjunctionsRaw)

var (
	specialChars = regexp.MustCompile(`[^\w\s-]`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

func loadStopWords(lists ...[]byte) map[string]struct{} {
	words := make(map[string]struct{})
	for _, list := range lists {
		scanner := bufio.NewScanner(bytes.NewReader(list))
		for scanner.Scan() {
			word := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if word != "" {
				words[word] = struct{}{}
			}
		}
	}
	return words
}

// Clean strips the extension and special characters from a filename and
// collapses runs of whitespace.
func Clean(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = specialChars.ReplaceAllString(name, " ")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// Generate produces one hashtag per significant word of the cleaned
// filename. Stop words (gap fillers, filler nouns, conjunctions) are
// dropped; everything else is lowercased and prefixed with '#'.
func Generate(filename string) []string {
	cleaned := Clean(filename)
	if cleaned == "" {
		return nil
	}

	var hashtags []string
	for _, word := range strings.Fields(strings.ToLower(cleaned)) {
		if _, skip := stopWords[word]; skip {
			continue
		}
		hashtags = append(hashtags, "#"+word)
	}

	return hashtags
}
