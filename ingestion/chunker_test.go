package ingestion

import (
	"strings"
	"testing"
)

func TestExtractTitle(t *testing.T) {
	content := "intro line\n\n## Spitfire\n\nbody"
	if got := ExtractTitle(content, "fallback"); got != "Spitfire" {
		t.Fatalf("ExtractTitle = %q", got)
	}

	if got := ExtractTitle("no headings here", "fallback"); got != "fallback" {
		t.Fatalf("ExtractTitle fallback = %q", got)
	}
}

func TestChunkTextSplitsOnParagraphs(t *testing.T) {
	para := strings.Repeat("x", 400)
	content := strings.Join([]string{para, para, para, para}, "\n\n")

	chunks := ChunkText(content, 1000, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 1300 {
			t.Fatalf("chunk %d too large: %d chars", i, len(chunk))
		}
	}
}

func TestChunkTextOverlapCarriesLastParagraph(t *testing.T) {
	first := strings.Repeat("a", 600)
	second := strings.Repeat("b", 600)
	third := strings.Repeat("c", 600)

	chunks := ChunkText(first+"\n\n"+second+"\n\n"+third, 1000, 200)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if !strings.Contains(chunks[1], second[:10]) {
		t.Fatal("expected second chunk to begin with the overlapped paragraph")
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	if chunks := ChunkText("  \n\n  ", 1000, 200); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}
