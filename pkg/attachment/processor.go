package attachment

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"ai-chathub-be/internal/constant"
	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

const batchConcurrency = 4

// PDFExtractor hands a PDF off to the external extraction service and
// returns its text.
type PDFExtractor interface {
	Extract(ctx context.Context, filename string, data io.Reader) (string, error)
}

// File is one accepted upload ready for processing.
type File struct {
	Info   FileInfo
	Kind   string
	Reader io.Reader
}

// ProgressFunc receives fractional progress for one attachment as its bytes
// are read.
type ProgressFunc func(id uuid.UUID, fraction float64)

// Processor turns accepted files into transportable attachments: images and
// text-like documents are read and encoded inline, PDFs go through the
// extraction service.
type Processor struct {
	extractor    PDFExtractor
	maxTextChars int
	onProgress   ProgressFunc
}

func NewProcessor(extractor PDFExtractor, maxTextChars int, onProgress ProgressFunc) *Processor {
	return &Processor{
		extractor:    extractor,
		maxTextChars: maxTextChars,
		onProgress:   onProgress,
	}
}

// ProcessBatch processes files with overlapping I/O. Each result lands at
// the same index as its input; a failed file comes back with Error set and
// never aborts its siblings.
func (p *Processor) ProcessBatch(ctx context.Context, files []File) []*entity.Attachment {
	results := make([]*entity.Attachment, len(files))

	workers := pool.New().WithMaxGoroutines(batchConcurrency)
	for i, f := range files {
		i, f := i, f
		workers.Go(func() {
			results[i] = p.Process(ctx, f)
		})
	}
	workers.Wait()

	return results
}

// Process produces the final attachment for one file. Errors are folded into
// the attachment record rather than returned, so batch callers treat every
// outcome uniformly.
func (p *Processor) Process(ctx context.Context, f File) *entity.Attachment {
	att := &entity.Attachment{
		Id:       uuid.New(),
		Name:     f.Info.Name,
		Size:     f.Info.Size,
		MimeType: f.Info.MimeType,
		Kind:     f.Kind,
	}

	var err error
	switch {
	case f.Kind == constant.AttachmentKindImage:
		err = p.processImage(att, f)
	case isPDF(f.Info):
		err = p.processPDF(ctx, att, f)
	default:
		err = p.processText(att, f)
	}

	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		att.Error = apperr.Processing(fmt.Sprintf("processing %s failed", f.Info.Name), err).Error()
		return att
	}

	att.Progress = 1
	return att
}

func (p *Processor) processImage(att *entity.Attachment, f File) error {
	data, err := p.readAll(att, f)
	if err != nil {
		return err
	}
	att.DataURL = toDataURL(f.Info.MimeType, data)
	return nil
}

func (p *Processor) processText(att *entity.Attachment, f File) error {
	data, err := p.readAll(att, f)
	if err != nil {
		return err
	}
	att.TextContent = truncateRunes(string(data), p.maxTextChars)
	att.DataURL = toDataURL(f.Info.MimeType, data)
	return nil
}

func (p *Processor) processPDF(ctx context.Context, att *entity.Attachment, f File) error {
	reader := p.progressReader(att.Id, f)
	text, err := p.extractor.Extract(ctx, f.Info.Name, reader)
	if err != nil {
		return err
	}
	att.TextContent = truncateRunes(text, p.maxTextChars)
	return nil
}

func (p *Processor) readAll(att *entity.Attachment, f File) ([]byte, error) {
	return io.ReadAll(p.progressReader(att.Id, f))
}

func (p *Processor) progressReader(id uuid.UUID, f File) io.Reader {
	if p.onProgress == nil || f.Info.Size <= 0 {
		return f.Reader
	}
	return &progressReader{
		inner: f.Reader,
		total: f.Info.Size,
		emit:  func(fraction float64) { p.onProgress(id, fraction) },
	}
}

type progressReader struct {
	inner io.Reader
	total int64
	read  int64
	emit  func(float64)
}

func (r *progressReader) Read(b []byte) (int, error) {
	n, err := r.inner.Read(b)
	if n > 0 {
		r.read += int64(n)
		fraction := float64(r.read) / float64(r.total)
		if fraction > 1 {
			fraction = 1
		}
		r.emit(fraction)
	}
	return n, err
}

func toDataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

func isPDF(info FileInfo) bool {
	return info.MimeType == "application/pdf" ||
		strings.HasSuffix(strings.ToLower(info.Name), ".pdf")
}

// truncateRunes caps s at max runes so a multi-byte character is never cut
// in half.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
