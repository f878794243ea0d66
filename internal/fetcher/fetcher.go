// Package fetcher resolves stored-file references to plain text.
//
// Every failure mode is flattened into a descriptive sentinel string plus a
// typed issue kind, never an error return: the output flows directly into
// LLM prompts and into the parsing pipeline's degraded-result classifier,
// so a malformed input becomes a reported issue instead of a crash.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/giulianni/lawfirm-ai-back/internal/storage"
)

// IssueKind classifies a degraded fetch outcome. The pipeline keys off
// this tag, never off the sentinel text.
type IssueKind string

const (
	IssueNone            IssueKind = ""
	IssueUnsupportedType IssueKind = "unsupported_type"
	IssueEmptyContent    IssueKind = "empty_content"
	IssueFetchError      IssueKind = "fetch_error"
	IssueParseError      IssueKind = "parse_error"
)

// Result carries extracted text or, for degraded outcomes, a
// prompt-readable sentinel string alongside its issue kind.
type Result struct {
	Text  string
	Issue IssueKind
}

func (r Result) OK() bool {
	return r.Issue == IssueNone
}

// BinaryExtractor turns the raw bytes of one binary document format into
// plain text. PDF extraction concatenates per-page text, DOCX extraction
// joins paragraph text with newlines; both live behind this interface.
type BinaryExtractor interface {
	ExtractText(data []byte) (string, error)
}

type Config struct {
	Store        storage.ObjectStore
	HTTPClient   *http.Client
	SignedURLTTL time.Duration
	PDF          BinaryExtractor
	DOCX         BinaryExtractor
	Logger       *log.Logger
}

type Fetcher struct {
	store        storage.ObjectStore
	httpClient   *http.Client
	signedURLTTL time.Duration
	pdf          BinaryExtractor
	docx         BinaryExtractor
	logger       *log.Logger
}

func New(config Config) *Fetcher {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if config.SignedURLTTL <= 0 {
		config.SignedURLTTL = 5 * time.Minute
	}
	return &Fetcher{
		store:        config.Store,
		httpClient:   config.HTTPClient,
		signedURLTTL: config.SignedURLTTL,
		pdf:          config.PDF,
		docx:         config.DOCX,
		logger:       config.Logger,
	}
}

// FetchText resolves a location to a signed URL, downloads the bytes and
// extracts text according to the filename extension. It never fails: every
// problem is reported as a sentinel Result.
func (f *Fetcher) FetchText(ctx context.Context, location domain.FileLocation) Result {
	extension := strings.ToLower(filepath.Ext(location.Filename))

	switch extension {
	case ".pdf", ".docx", ".txt":
	default:
		return Result{
			Text: fmt.Sprintf("Text extraction not supported for file type '%s' (file: %s).",
				extension, location.Filename),
			Issue: IssueUnsupportedType,
		}
	}

	data, fetchErr := f.download(ctx, location)
	if fetchErr != nil {
		f.logf("fetch failed for %s/%s: %v", location.Bucket, location.Path, fetchErr)
		return Result{
			Text:  fmt.Sprintf("Error fetching file %s: %v", location.Filename, fetchErr),
			Issue: IssueFetchError,
		}
	}

	switch extension {
	case ".pdf":
		return f.extractBinary("PDF", f.pdf, data, location)
	case ".docx":
		return f.extractBinary("DOCX", f.docx, data, location)
	default:
		return classifyText("TXT", string(data))
	}
}

func (f *Fetcher) download(ctx context.Context, location domain.FileLocation) ([]byte, error) {
	if f.store == nil {
		return nil, storage.ErrStorageUnavailable
	}

	signedURL, err := f.store.SignedURL(ctx, location.Bucket, location.Path, f.signedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("generate signed url: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	response, err := f.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("download status %d", response.StatusCode)
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read download body: %w", err)
	}
	return data, nil
}

func (f *Fetcher) extractBinary(format string, extractor BinaryExtractor, data []byte, location domain.FileLocation) Result {
	if extractor == nil {
		return Result{
			Text:  fmt.Sprintf("Error parsing %s file %s: no %s extractor configured", format, location.Filename, format),
			Issue: IssueParseError,
		}
	}

	text, err := extractor.ExtractText(data)
	if err != nil {
		f.logf("%s extraction failed for %s: %v", format, location.Filename, err)
		return Result{
			Text:  fmt.Sprintf("Error parsing %s file %s: %v", format, location.Filename, err),
			Issue: IssueParseError,
		}
	}
	return classifyText(format, text)
}

// classifyText applies the shared empty-content policy: image-only or
// encrypted documents degrade to a sentinel instead of failing.
func classifyText(format, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{
			Text:  fmt.Sprintf("%s extraction resulted in empty content. The document may be empty, image-based or encrypted.", format),
			Issue: IssueEmptyContent,
		}
	}
	return Result{Text: text}
}

func (f *Fetcher) logf(format string, args ...any) {
	if f.logger != nil {
		f.logger.Printf(format, args...)
	}
}
