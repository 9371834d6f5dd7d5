package service

import (
	"context"
	"errors"
	"strings"

	"github.com/archivelab/vault/pkg/ai"
	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/logger"
)

// DocumentAnalysis reports one analysis pass over a document.
type DocumentAnalysis struct {
	Summary       string `json:"summary"`
	Entities      int    `json:"entities"`
	Relationships int    `json:"relationships"`
	Cached        bool   `json:"cached"`
}

// AnalyzeDocument runs extraction over a stored document's pages and
// persists the results through the ingestion rules. An already
// analyzed document returns its cached summary unless force is set;
// a successful pass flips the document to ANALYZED.
func (s *Service) AnalyzeDocument(ctx context.Context, documentID int64, force bool) (*DocumentAnalysis, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if doc.Analysis == common.Analyzed && !force {
		return &DocumentAnalysis{Summary: doc.AISummary, Cached: true}, nil
	}

	pages, err := s.store.PagesForDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	analysis := &DocumentAnalysis{}
	for _, page := range pages {
		report, err := s.pipeline.ProcessPage(ctx, doc, page.PageNum, page.Text)
		if err != nil {
			logger.Warn("[Service] Page analysis failed", "document", doc.Filename, "page", page.PageNum, "err", err)
			continue
		}
		analysis.Entities += report.Entities
		analysis.Relationships += report.Relationships
	}

	summary, ok := s.summarizeDocument(ctx, pages)
	if ok {
		// The one-way NOT_ANALYZED -> ANALYZED transition happens only
		// when the provider pass succeeded; a provider-less run keeps
		// the document re-analyzable.
		analysis.Summary = summary
		if err := s.store.MarkDocumentAnalyzed(ctx, documentID, summary); err != nil {
			return nil, err
		}
	}
	return analysis, nil
}

// summarizeDocument asks the provider for a document-level summary over
// the joined page text.
func (s *Service) summarizeDocument(ctx context.Context, pages []common.Page) (string, bool) {
	texts := make([]string, 0, len(pages))
	for _, page := range pages {
		if strings.TrimSpace(page.Text) != "" {
			texts = append(texts, page.Text)
		}
	}
	if len(texts) == 0 {
		return "", false
	}

	result, err := s.provider.Analyze(ctx, strings.Join(texts, "\n\n"))
	if err != nil {
		if !errors.Is(err, ai.ErrUnavailable) {
			logger.Warn("[Service] Document summary failed", "err", err)
		}
		return "", false
	}
	return strings.TrimSpace(result.Summary), true
}
