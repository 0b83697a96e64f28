// Package knowledge loads a markdown corpus, chunks it and serves ranked
// context snippets for specialist prompts. Retrieval prefers semantic
// similarity over an embedding index and degrades to keyword-overlap search
// whenever embeddings are unavailable or erroring, so a responder always gets
// an answer to its lookup.
package knowledge
