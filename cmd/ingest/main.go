// Command ingest walks a directory of extracted page texts and
// publishes one ingest job per document. Documents are directories of
// numbered .txt pages, or single .txt files treated as one page.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/archivelab/vault/internal/queue"
	"github.com/archivelab/vault/internal/util"
	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/logger"
	"github.com/archivelab/vault/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	dir := flag.String("dir", ".", "directory of documents to ingest")
	dataset := flag.String("dataset", "", "dataset label stored on each document")
	flag.Parse()

	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
	}))

	conn := queue.Init()
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()
	if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
		logger.Fatal("Failed to declare queues", "err", err)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Fatal("Could not read directory", "dir", *dir, "err", err)
	}

	published := 0
	for _, entry := range entries {
		path := filepath.Join(*dir, entry.Name())

		var pages []string
		switch {
		case entry.IsDir():
			pages, err = readPages(path)
		case strings.HasSuffix(entry.Name(), ".txt"):
			pages, err = readSingle(path)
		default:
			continue
		}
		if err != nil {
			logger.Error("Skipping unreadable document", "path", path, "err", err)
			continue
		}
		if len(pages) == 0 {
			continue
		}

		doc := common.Document{
			Filename: entry.Name(),
			Path:     path,
			DocType:  "txt",
			Dataset:  *dataset,
		}
		correlationID, err := queue.PublishIngest(ch, doc, pages)
		if err != nil {
			logger.Error("Publish failed", "filename", doc.Filename, "err", err)
			continue
		}
		logger.Info("Published", "filename", doc.Filename, "pages", len(pages), "correlation_id", correlationID)
		published++
	}

	logger.Info("Done", "documents", published)
}

// readPages loads every .txt file of a document directory in name
// order, one page per file.
func readPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".txt") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	pages := make([]string, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		pages = append(pages, string(data))
	}
	return pages, nil
}

func readSingle(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []string{string(data)}, nil
}
