package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/archivelab/vault/internal/util"
	"github.com/archivelab/vault/pkg/common"
)

// NERModelName is the token-classification model used for local extraction.
const NERModelName = "KnightsAnalytics/distilbert-NER"

// nerTypeByLabel maps aggregated model labels to entity types. MISC spans
// are dropped: they are mostly nationalities and event names that pollute
// the graph.
var nerTypeByLabel = map[string]common.EntityType{
	"PER": common.EntityPerson,
	"ORG": common.EntityOrg,
	"LOC": common.EntityLoc,
}

// NERExtractor runs a local named-entity model over page text.
type NERExtractor struct {
	run     func(text string) (Mentions, error)
	destroy func() error
}

// NewNERExtractor downloads the model into modelsDir if needed and prepares
// a token-classification pipeline for it.
func NewNERExtractor(modelsDir string) (*NERExtractor, error) {
	modelPath, err := prepareModel(NERModelName, modelsDir)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	run := func(text string) (Mentions, error) {
		mentions := NewMentions()
		result, err := nerPipeline.RunPipeline([]string{text})
		if err != nil {
			return mentions, fmt.Errorf("failed to run NER: %w", err)
		}
		if len(result.Entities) == 0 {
			return mentions, nil
		}
		for _, span := range result.Entities[0] {
			entityType, ok := nerTypeByLabel[normalizeLabel(span.Entity)]
			if !ok {
				continue
			}
			mentions.Add(entityType, span.Word)
		}
		return mentions, nil
	}

	return &NERExtractor{
		run:     run,
		destroy: session.Destroy,
	}, nil
}

// Extract runs the model over text cut to MaxInputRunes. Empty input yields
// empty mentions without touching the model; model errors yield empty
// mentions plus the error so the caller can log and continue.
func (e *NERExtractor) Extract(text string) (Mentions, error) {
	text = strings.TrimSpace(util.TruncateRunes(text, MaxInputRunes))
	if text == "" {
		return NewMentions(), nil
	}
	return e.run(text)
}

// Close releases the model session.
func (e *NERExtractor) Close() error {
	if e.destroy == nil {
		return nil
	}
	return e.destroy()
}

// normalizeLabel strips BIO tagging prefixes from NER labels.
func normalizeLabel(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}

func prepareModel(modelName string, modelsDir string) (string, error) {
	if modelsDir == "" {
		modelsDir = "./models"
	}
	modelPath := filepath.Join(modelsDir, strings.ReplaceAll(modelName, "/", "_"))

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelsDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		downloadOptions.OnnxFilePath = "model.onnx"
		downloadedPath, err := hugot.DownloadModel(modelName, modelsDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("failed to download model: %w", err)
		}
		modelPath = downloadedPath
	}

	return modelPath, nil
}
