package graph

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/countries"
	"github.com/archivelab/vault/pkg/extract"
	"github.com/archivelab/vault/pkg/logger"
	"github.com/archivelab/vault/pkg/sanitize"
	"github.com/archivelab/vault/pkg/store"
)

// DocumentJob is one document plus its raw page texts in order.
type DocumentJob struct {
	Document common.Document
	Pages    []string
}

// ProcessDocuments ingests jobs concurrently with bounded parallelism.
// Per-document failures are collected into the combined report, not
// returned: one broken document never stops the batch.
func (p *Pipeline) ProcessDocuments(ctx context.Context, jobs []DocumentJob) Report {
	var (
		group, groupCtx = errgroup.WithContext(ctx)
		reports         = make([]Report, len(jobs))
	)
	group.SetLimit(p.concurrency)

	for i, job := range jobs {
		group.Go(func() error {
			report, err := p.ProcessDocument(groupCtx, job.Document, job.Pages)
			if err != nil {
				logger.Error("[Graph] Document ingestion failed", "filename", job.Document.Filename, "err", err)
				report.fail("document %s: %v", job.Document.Filename, err)
			}
			reports[i] = report
			return nil
		})
	}
	_ = group.Wait()

	var combined Report
	for _, report := range reports {
		combined.merge(report)
	}
	return combined
}

// ProcessDocument ingests one document. A document whose pages are all
// already stored is skipped, making re-runs of the same corpus cheap
// and idempotent.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc common.Document, pages []string) (Report, error) {
	var report Report

	existing, err := p.store.GetDocumentByFilename(ctx, doc.Filename)
	if err == nil {
		stored, err := p.store.PagesForDocument(ctx, existing.ID)
		if err != nil {
			return report, err
		}
		if len(stored) >= len(pages) {
			logger.Debug("[Graph] Skipping already ingested document", "filename", doc.Filename)
			report.DocumentID = existing.ID
			report.Skipped = true
			return report, nil
		}
		doc = *existing
	} else if !errors.Is(err, store.ErrNotFound) {
		return report, err
	}

	if doc.ID == 0 {
		if err := p.store.CreateDocument(ctx, &doc); err != nil {
			return report, err
		}
	}
	report.DocumentID = doc.ID

	for i, text := range pages {
		pageReport, err := p.ProcessPage(ctx, &doc, i+1, text)
		if err != nil {
			logger.Warn("[Graph] Page ingestion failed", "filename", doc.Filename, "page", i+1, "err", err)
			report.fail("page %d: %v", i+1, err)
			continue
		}
		report.merge(pageReport)
	}

	logger.Info("[Graph] Document ingested",
		"filename", doc.Filename,
		"pages", report.Pages,
		"entities", report.Entities,
		"relationships", report.Relationships,
		"failed", len(report.Failed))
	return report, nil
}

// ProcessPage masks, scores and persists one page, then mines it for
// entities, relationships and country mentions. Everything committed
// is counted in the report; per-item failures are logged and listed.
func (p *Pipeline) ProcessPage(ctx context.Context, doc *common.Document, pageNum int, rawText string) (Report, error) {
	var report Report
	report.DocumentID = doc.ID

	masked := sanitize.Mask(rawText)
	page := common.Page{
		DocumentID: doc.ID,
		PageNum:    pageNum,
		Text:       masked,
		Quality:    sanitize.Quality(masked),
		MediaType:  doc.DocType,
	}
	if err := p.store.CreatePage(ctx, &page); err != nil {
		return report, err
	}
	report.Pages = 1

	result := p.extractPage(ctx, page.Text, &report)
	logger.Debug("[Graph] Page extracted", "document", doc.Filename, "page", pageNum,
		"mentions", result.Mentions.Total(), "relationships", len(result.Relationships))

	endpoints := make(map[string]common.Entity)
	var (
		personIDs    []int64
		countryCodes []string
	)
	for _, entityType := range result.Mentions.Sorted() {
		for _, name := range result.Mentions[entityType] {
			entity, code, err := p.persistMention(ctx, name, entityType, page.ID, doc.ID)
			if err != nil {
				logger.Warn("[Graph] Entity persist failed", "name", name, "type", entityType, "err", err)
				report.fail("entity %s: %v", name, err)
				continue
			}
			report.Entities++
			// When an ORG or place shares a name with a person on the
			// same page, relationship endpoints resolve to the person,
			// matching GetEntityByName.
			if prev, seen := endpoints[entity.Name]; !seen || (entity.Type == common.EntityPerson && prev.Type != common.EntityPerson) {
				endpoints[entity.Name] = entity
			}
			if entity.Type == common.EntityPerson {
				personIDs = append(personIDs, entity.ID)
			}
			if code != "" {
				report.CountryMentions++
				countryCodes = append(countryCodes, code)
			}
		}
	}

	for _, personID := range personIDs {
		for _, code := range countryCodes {
			if err := p.store.RecordPersonCountryCoMention(ctx, personID, code); err != nil {
				logger.Warn("[Graph] Co-mention record failed", "person", personID, "country", code, "err", err)
				report.fail("co-mention %d/%s: %v", personID, code, err)
			}
		}
	}

	for _, fact := range result.Relationships {
		if err := p.persistRelationship(ctx, fact, endpoints, page.ID); err != nil {
			logger.Warn("[Graph] Relationship persist failed", "source", fact.Source, "target", fact.Target, "err", err)
			report.fail("relationship %s->%s: %v", fact.Source, fact.Target, err)
			continue
		}
		report.Relationships++
	}

	return report, nil
}

// extractPage merges the local and AI extraction paths. The AI result
// contributes relationships and any mentions the local model missed.
func (p *Pipeline) extractPage(ctx context.Context, text string, report *Report) extract.Result {
	result := extract.Result{Mentions: extract.NewMentions()}

	if p.extractor != nil {
		mentions, err := p.extractor.Extract(text)
		if err != nil {
			logger.Warn("[Graph] Local extraction failed", "err", err)
			report.fail("ner: %v", err)
		} else {
			result.Mentions = mentions
		}
	}

	if !p.useAI {
		return result
	}

	aiResult := extract.AnalyzeText(ctx, p.provider, text)
	if aiResult.Failed {
		if !errors.Is(ctx.Err(), context.Canceled) {
			report.fail("ai analysis failed")
		}
		return result
	}
	for _, entityType := range aiResult.Mentions.Sorted() {
		for _, name := range aiResult.Mentions[entityType] {
			result.Mentions.Add(entityType, name)
		}
	}
	result.Relationships = aiResult.Relationships
	result.Summary = aiResult.Summary
	return result
}

// persistMention stores one mention and its page link. GPE and LOC
// mentions that normalize to a country additionally update the entity
// and the per-country counters; a normalization miss is not an error.
func (p *Pipeline) persistMention(ctx context.Context, name string, entityType common.EntityType, pageID, documentID int64) (common.Entity, string, error) {
	entity, err := p.store.GetOrCreateEntity(ctx, name, entityType)
	if err != nil {
		return common.Entity{}, "", err
	}
	if err := p.store.LinkPageEntity(ctx, pageID, entity.ID); err != nil {
		return common.Entity{}, "", err
	}

	var code string
	if entityType == common.EntityGPE || entityType == common.EntityLoc {
		if normalized, ok := countries.Normalize(name); ok {
			code = normalized
			if entity.CountryCode != code {
				if err := p.store.SetEntityCountry(ctx, entity.ID, name, code); err != nil {
					return common.Entity{}, "", err
				}
				entity.CountryCode = code
			}
			if err := p.store.RecordCountryMention(ctx, code, documentID, pageID); err != nil {
				return common.Entity{}, "", err
			}
		}
	}
	return entity, code, nil
}

// persistRelationship resolves endpoint names against the page's own
// mentions first; names the extractors never surfaced become PERSON
// entities, matching how provider analyses phrase their claims.
func (p *Pipeline) persistRelationship(ctx context.Context, fact extract.RelationshipFact, endpoints map[string]common.Entity, pageID int64) error {
	sourceID, err := p.resolveEndpoint(ctx, fact.Source, endpoints)
	if err != nil {
		return err
	}
	targetID, err := p.resolveEndpoint(ctx, fact.Target, endpoints)
	if err != nil {
		return err
	}
	if sourceID == targetID {
		return nil
	}

	return p.store.UpsertRelationship(ctx, common.Relationship{
		SourceID:       sourceID,
		TargetID:       targetID,
		Type:           fact.Type,
		Description:    fact.Description,
		Confidence:     aiConfidence,
		EvidencePageID: pageID,
	})
}

func (p *Pipeline) resolveEndpoint(ctx context.Context, name string, endpoints map[string]common.Entity) (int64, error) {
	name = strings.TrimSpace(name)
	if entity, ok := endpoints[name]; ok {
		return entity.ID, nil
	}
	entity, err := p.store.GetOrCreateEntity(ctx, name, common.EntityPerson)
	if err != nil {
		return 0, err
	}
	endpoints[name] = entity
	return entity.ID, nil
}
