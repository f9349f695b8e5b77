package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"ai-chathub-be/internal/constant"

	"github.com/google/uuid"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, data io.Reader) (string, error) {
	io.Copy(io.Discard, data)
	return f.text, f.err
}

func TestProcessImage(t *testing.T) {
	p := NewProcessor(&fakeExtractor{}, 1000, nil)
	payload := []byte{0x89, 'P', 'N', 'G'}

	att := p.Process(context.Background(), File{
		Info:   FileInfo{Name: "shot.png", Size: int64(len(payload)), MimeType: "image/png"},
		Kind:   constant.AttachmentKindImage,
		Reader: strings.NewReader(string(payload)),
	})

	if att.Failed() {
		t.Fatalf("unexpected error: %s", att.Error)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
	if att.DataURL != want {
		t.Errorf("DataURL = %q, want %q", att.DataURL, want)
	}
	if att.Progress != 1 {
		t.Errorf("Progress = %v, want 1", att.Progress)
	}
}

func TestProcessTextTruncation(t *testing.T) {
	p := NewProcessor(&fakeExtractor{}, 5, nil)

	att := p.Process(context.Background(), File{
		Info:   FileInfo{Name: "notes.txt", Size: 20, MimeType: "text/plain"},
		Kind:   constant.AttachmentKindDocument,
		Reader: strings.NewReader("héllo wörld content"),
	})

	if att.Failed() {
		t.Fatalf("unexpected error: %s", att.Error)
	}
	if att.TextContent != "héllo" {
		t.Errorf("TextContent = %q, want %q (rune-safe cut)", att.TextContent, "héllo")
	}
}

func TestProcessPDFUsesExtractor(t *testing.T) {
	p := NewProcessor(&fakeExtractor{text: "extracted body"}, 1000, nil)

	att := p.Process(context.Background(), File{
		Info:   FileInfo{Name: "paper.pdf", Size: 10, MimeType: "application/pdf"},
		Kind:   constant.AttachmentKindDocument,
		Reader: strings.NewReader("%PDF-1.7.."),
	})

	if att.Failed() {
		t.Fatalf("unexpected error: %s", att.Error)
	}
	if att.TextContent != "extracted body" {
		t.Errorf("TextContent = %q, want %q", att.TextContent, "extracted body")
	}
	if att.DataURL != "" {
		t.Errorf("DataURL = %q, want empty for extracted PDFs", att.DataURL)
	}
}

func TestProcessBatchFailureIsolation(t *testing.T) {
	p := NewProcessor(&fakeExtractor{err: errors.New("extraction service down")}, 1000, nil)

	files := []File{
		{
			Info:   FileInfo{Name: "good.txt", Size: 4, MimeType: "text/plain"},
			Kind:   constant.AttachmentKindDocument,
			Reader: strings.NewReader("fine"),
		},
		{
			Info:   FileInfo{Name: "bad.pdf", Size: 4, MimeType: "application/pdf"},
			Kind:   constant.AttachmentKindDocument,
			Reader: strings.NewReader("%PDF"),
		},
		{
			Info:   FileInfo{Name: "also-good.png", Size: 3, MimeType: "image/png"},
			Kind:   constant.AttachmentKindImage,
			Reader: strings.NewReader("png"),
		},
	}

	results := p.ProcessBatch(context.Background(), files)

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	// Results keep input order regardless of completion order.
	for i, f := range files {
		if results[i].Name != f.Info.Name {
			t.Errorf("results[%d].Name = %q, want %q", i, results[i].Name, f.Info.Name)
		}
	}
	if results[0].Failed() {
		t.Errorf("good.txt failed: %s", results[0].Error)
	}
	if !results[1].Failed() {
		t.Error("bad.pdf should carry the extraction error")
	}
	if results[2].Failed() {
		t.Errorf("also-good.png failed: %s", results[2].Error)
	}
}

func TestProcessReportsProgress(t *testing.T) {
	var mu sync.Mutex
	var fractions []float64
	onProgress := func(_ uuid.UUID, fraction float64) {
		mu.Lock()
		fractions = append(fractions, fraction)
		mu.Unlock()
	}
	p := NewProcessor(&fakeExtractor{}, 1000, onProgress)

	payload := strings.Repeat("x", 1024)
	att := p.Process(context.Background(), File{
		Info:   FileInfo{Name: "big.txt", Size: int64(len(payload)), MimeType: "text/plain"},
		Kind:   constant.AttachmentKindDocument,
		Reader: iotest(payload, 256),
	})

	if att.Failed() {
		t.Fatalf("unexpected error: %s", att.Error)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(fractions) < 2 {
		t.Fatalf("got %d progress callbacks, want at least 2", len(fractions))
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Errorf("progress went backwards: %v", fractions)
		}
	}
	if last := fractions[len(fractions)-1]; last != 1 {
		t.Errorf("final fraction = %v, want 1", last)
	}
}

// iotest returns a reader that yields s in chunks of at most n bytes.
func iotest(s string, n int) io.Reader {
	return &chunkReader{data: []byte(s), chunk: n}
}

type chunkReader struct {
	data  []byte
	chunk int
}

func (r *chunkReader) Read(b []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(b) {
		n = len(b)
	}
	copied := copy(b, r.data[:n])
	r.data = r.data[copied:]
	return copied, nil
}

func TestProcessFoldsErrorIntoRecord(t *testing.T) {
	p := NewProcessor(&fakeExtractor{err: fmt.Errorf("boom")}, 1000, nil)

	att := p.Process(context.Background(), File{
		Info:   FileInfo{Name: "doc.pdf", Size: 4, MimeType: "application/pdf"},
		Kind:   constant.AttachmentKindDocument,
		Reader: strings.NewReader("%PDF"),
	})

	if !att.Failed() {
		t.Fatal("want Failed() = true")
	}
	if !strings.Contains(att.Error, "doc.pdf") {
		t.Errorf("Error = %q, want it to name the file", att.Error)
	}
	if att.Progress == 1 {
		t.Error("Progress = 1 on failed attachment, want < 1")
	}
}
