package main

import (
	"encoding/json"
	"fmt"
	mrand "math/rand"
	"os"
	"strconv"
)

// Entry matches what `notecards note import` reads.
type Entry struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
	Body  string   `json:"body_markdown"`
}

var seed = []Entry{
	{
		Title: "Welcome to Notes App",
		Body:  "# Welcome!\n\nThis is a sample note to get you started.\n\n## Features\n- Markdown support\n- Tags\n- Preview while editing",
		Tags:  []string{"welcome", "guide"},
	},
	{
		Title: "Meeting Notes",
		Body:  "## Project Updates\n\n1. Frontend development\n2. API integration\n3. Testing\n\n### Next Steps\n- [ ] Complete UI\n- [ ] Add authentication\n- [ ] Deploy",
		Tags:  []string{"meeting", "project"},
	},
}

// Usage: go run ./scripts/generate_sample.go [count] > sample.json
func main() {
	total := 50
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n < 0 {
			fmt.Fprintf(os.Stderr, "invalid count %q\n", os.Args[1])
			os.Exit(2)
		}
		total = n
	}

	// Deterministic seed for reproducible output
	mr := mrand.New(mrand.NewSource(42))

	tags := make([]string, 20)
	for i := 0; i < 20; i++ {
		tags[i] = fmt.Sprintf("tag%02d", i+1)
	}

	out := make([]Entry, 0, len(seed)+total)
	out = append(out, seed...)
	for i := 0; i < total; i++ {
		// 1–4 unique tags
		k := 1 + mr.Intn(4)
		chosen := sampleTags(mr, tags, k)
		out = append(out, Entry{
			Title: fmt.Sprintf("Sample Note %03d", i+1),
			Body:  fmt.Sprintf("# Sample Note %03d\n\nThis is the body for sample note %03d.\n\n- tags: %v\n", i+1, i+1, chosen),
			Tags:  chosen,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}

func sampleTags(r *mrand.Rand, pool []string, k int) []string {
	if k >= len(pool) {
		k = len(pool)
	}
	idx := r.Perm(len(pool))[:k]
	out := make([]string, k)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}
