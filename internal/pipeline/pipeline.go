// Package pipeline runs the metadata enrichment chain: a fixed,
// ordered list of lookup services queried one after another, merged by
// a fill-only-if-missing rule, followed by keyword extraction over the
// summary. A failing service is logged and skipped; there are no
// retries and no partial aborts.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"shelfscan/internal/keywords"
	"shelfscan/internal/lookup"
)

// Pipeline enriches partial book metadata from external services.
type Pipeline struct {
	services    []lookup.Service
	extractor   keywords.Extractor
	maxKeywords int
	log         *zap.Logger
}

// New builds a pipeline over the given services, queried in order.
func New(log *zap.Logger, extractor keywords.Extractor, maxKeywords int, services ...lookup.Service) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if maxKeywords <= 0 {
		maxKeywords = keywords.DefaultMax
	}
	return &Pipeline{
		services:    services,
		extractor:   extractor,
		maxKeywords: maxKeywords,
		log:         log,
	}
}

// Enrich queries every service for the code and merges the results
// into initial, filling only fields that are still empty. When the
// merged summary is non-empty, keywords are regenerated from it,
// replacing whatever the services supplied.
func (p *Pipeline) Enrich(ctx context.Context, code string, initial lookup.Metadata) lookup.Metadata {
	result := initial

	for _, svc := range p.services {
		data, err := svc.Lookup(ctx, code)
		if err != nil {
			p.log.Warn("lookup service failed",
				zap.String("service", svc.Name()),
				zap.String("code", code),
				zap.Error(err))
			continue
		}
		if data.IsZero() {
			p.log.Debug("lookup service had no data",
				zap.String("service", svc.Name()),
				zap.String("code", code))
			continue
		}
		result = merge(result, data)
	}

	if result.Summary != "" && p.extractor != nil {
		kw, err := p.extractor.Extract(ctx, result.Summary, p.maxKeywords)
		if err != nil {
			p.log.Warn("keyword extraction failed",
				zap.String("code", code), zap.Error(err))
		} else {
			result.Keywords = kw
		}
	}

	return result
}

// merge fills empty fields of base from incoming. Populated base
// fields always win; earlier services outrank later ones.
func merge(base, incoming lookup.Metadata) lookup.Metadata {
	if base.Title == "" {
		base.Title = incoming.Title
	}
	if base.Author == "" {
		base.Author = incoming.Author
	}
	if base.Publisher == "" {
		base.Publisher = incoming.Publisher
	}
	if base.Summary == "" {
		base.Summary = incoming.Summary
	}
	if base.Keywords == "" {
		base.Keywords = incoming.Keywords
	}
	return base
}
