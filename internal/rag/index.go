// Package rag bundles a small retrieval-augmented answering system used
// as a system under test for the evaluation harness.
package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"

	"github.com/contractlens/ragcheck/internal/config"
)

// Index is a read-only snapshot of an embedded document corpus. It is
// built once and never mutated afterwards, so concurrent queries share
// it without coordination.
type Index struct {
	collection *chromem.Collection
	size       int
}

// BuildIndex reads every .txt and .md file under cfg.DocumentsDir,
// chunks them and embeds the chunks into an in-memory collection.
// Passing a nil embed function selects the OpenAI embedding endpoint
// using OPENAI_API_KEY.
func BuildIndex(ctx context.Context, cfg config.RAGConfig, embed chromem.EmbeddingFunc, logger zerolog.Logger) (*Index, error) {
	if embed == nil {
		model := chromem.EmbeddingModelOpenAI3Small
		if cfg.EmbeddingModel != "" {
			model = chromem.EmbeddingModelOpenAI(cfg.EmbeddingModel)
		}
		embed = chromem.NewEmbeddingFuncOpenAI(os.Getenv("OPENAI_API_KEY"), model)
	}

	collection, err := chromem.NewDB().CreateCollection("corpus", nil, embed)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	docs, err := loadDocuments(cfg)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found under %s", cfg.DocumentsDir)
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("embedding documents: %w", err)
	}

	logger.Info().
		Str("documents_dir", cfg.DocumentsDir).
		Int("chunks", len(docs)).
		Msg("Document index built")

	return &Index{collection: collection, size: len(docs)}, nil
}

func loadDocuments(cfg config.RAGConfig) ([]chromem.Document, error) {
	var docs []chromem.Document
	err := filepath.WalkDir(cfg.DocumentsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for i, chunk := range splitText(string(data), cfg.ChunkSize, cfg.ChunkOverlap) {
			docs = append(docs, chromem.Document{
				ID:      fmt.Sprintf("%s#%d", filepath.Base(path), i),
				Content: chunk,
				Metadata: map[string]string{
					"source": filepath.Base(path),
					"chunk":  strconv.Itoa(i),
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Retrieve returns the topK most similar chunks to the query.
func (ix *Index) Retrieve(ctx context.Context, query string, topK int) ([]chromem.Result, error) {
	if topK > ix.size {
		topK = ix.size
	}
	if topK <= 0 {
		return nil, nil
	}
	results, err := ix.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	return results, nil
}
