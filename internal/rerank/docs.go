package rerank

import "fmt"

// DefaultQuery pairs with SampleDocuments for self-contained benchmark runs.
const DefaultQuery = "What is the capital of China?"

var baseDocuments = []string{
	"Shanghai is a large city in China.",
	"The capital of China is Beijing.",
	"Guangzhou is a major city in southern China.",
	"China has a long history and rich culture.",
	"Beijing is known for the Forbidden City.",
}

// SampleDocuments generates n synthetic candidate documents by cycling a
// fixed base set, each tagged with a unique doc id so payloads differ.
func SampleDocuments(n int) []string {
	docs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, fmt.Sprintf("%s (doc_id=%d)", baseDocuments[i%len(baseDocuments)], i))
	}
	return docs
}
