package attachment

import (
	"strings"
	"testing"

	"ai-chathub-be/internal/constant"
)

func testLimits() Limits {
	return Limits{
		MaxImages:        4,
		MaxDocuments:     3,
		ImageMaxBytes:    5 * 1024 * 1024,
		DocumentMaxBytes: 10 * 1024 * 1024,
	}
}

func TestClassify(t *testing.T) {
	v := NewValidator(testLimits())

	tests := []struct {
		name string
		file FileInfo
		want string
	}{
		{"png by mime", FileInfo{Name: "shot.png", MimeType: "image/png"}, constant.AttachmentKindImage},
		{"pdf by mime", FileInfo{Name: "paper.pdf", MimeType: "application/pdf"}, constant.AttachmentKindDocument},
		{"text wildcard", FileInfo{Name: "notes", MimeType: "text/x-unknown"}, constant.AttachmentKindDocument},
		{"octet-stream with md ext", FileInfo{Name: "README.md", MimeType: "application/octet-stream"}, constant.AttachmentKindDocument},
		{"octet-stream with go ext", FileInfo{Name: "main.go", MimeType: "application/octet-stream"}, constant.AttachmentKindDocument},
		{"unsupported binary", FileInfo{Name: "video.mp4", MimeType: "video/mp4"}, ""},
		{"unsupported no extension", FileInfo{Name: "blob", MimeType: "application/octet-stream"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Classify(tt.file); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.file.Name, got, tt.want)
			}
		})
	}
}

func TestValidateBatchOversizedSiblingIsolation(t *testing.T) {
	v := NewValidator(testLimits())

	files := []FileInfo{
		{Name: "a.png", Size: 1024, MimeType: "image/png"},
		{Name: "huge.png", Size: 20 * 1024 * 1024, MimeType: "image/png"},
		{Name: "c.pdf", Size: 2048, MimeType: "application/pdf"},
	}

	result := v.ValidateBatch(files, 0, 0)

	if len(result.Accepted) != 2 {
		t.Fatalf("len(Accepted) = %d, want 2", len(result.Accepted))
	}
	if result.Accepted[0].File.Name != "a.png" || result.Accepted[1].File.Name != "c.pdf" {
		t.Errorf("Accepted = %v, want a.png and c.pdf", result.Accepted)
	}
	if len(result.Rejections) != 1 {
		t.Fatalf("len(Rejections) = %d, want 1", len(result.Rejections))
	}
	rej := result.Rejections[0]
	if rej.Reason != RejectSize {
		t.Errorf("Reason = %q, want %q", rej.Reason, RejectSize)
	}
	if rej.File.Name != "huge.png" {
		t.Errorf("rejected file = %q, want %q", rej.File.Name, "huge.png")
	}
}

func TestValidateBatchUnsupportedCollapse(t *testing.T) {
	v := NewValidator(testLimits())

	files := []FileInfo{
		{Name: "clip.mp4", Size: 100, MimeType: "video/mp4"},
		{Name: "song.mp3", Size: 100, MimeType: "audio/mpeg"},
		{Name: "other.mp4", Size: 100, MimeType: "video/mp4"},
		{Name: "ok.txt", Size: 100, MimeType: "text/plain"},
	}

	result := v.ValidateBatch(files, 0, 0)

	if len(result.Accepted) != 1 {
		t.Fatalf("len(Accepted) = %d, want 1", len(result.Accepted))
	}
	// Three unsupported files produce a single aggregated rejection.
	if len(result.Rejections) != 1 {
		t.Fatalf("len(Rejections) = %d, want 1", len(result.Rejections))
	}
	rej := result.Rejections[0]
	if rej.Reason != RejectType {
		t.Errorf("Reason = %q, want %q", rej.Reason, RejectType)
	}
	if !strings.Contains(rej.Message, ".mp3") || !strings.Contains(rej.Message, ".mp4") {
		t.Errorf("Message = %q, want both distinct extensions named", rej.Message)
	}
	if strings.Count(rej.Message, ".mp4") != 1 {
		t.Errorf("Message = %q, want each extension listed once", rej.Message)
	}
}

func TestValidateBatchCountLimits(t *testing.T) {
	v := NewValidator(testLimits())

	tests := []struct {
		name           string
		files          []FileInfo
		attachedImages int
		attachedDocs   int
		wantAccepted   int
		wantRejections int
	}{
		{
			name: "image limit reached mid-batch",
			files: []FileInfo{
				{Name: "1.png", Size: 1, MimeType: "image/png"},
				{Name: "2.png", Size: 1, MimeType: "image/png"},
			},
			attachedImages: 3,
			wantAccepted:   1,
			wantRejections: 1,
		},
		{
			name: "document limit already reached",
			files: []FileInfo{
				{Name: "a.pdf", Size: 1, MimeType: "application/pdf"},
			},
			attachedDocs:   3,
			wantAccepted:   0,
			wantRejections: 1,
		},
		{
			name: "limits independent per category",
			files: []FileInfo{
				{Name: "a.png", Size: 1, MimeType: "image/png"},
				{Name: "a.pdf", Size: 1, MimeType: "application/pdf"},
			},
			attachedImages: 3,
			attachedDocs:   0,
			wantAccepted:   2,
			wantRejections: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateBatch(tt.files, tt.attachedImages, tt.attachedDocs)
			if len(result.Accepted) != tt.wantAccepted {
				t.Errorf("len(Accepted) = %d, want %d", len(result.Accepted), tt.wantAccepted)
			}
			if len(result.Rejections) != tt.wantRejections {
				t.Errorf("len(Rejections) = %d, want %d", len(result.Rejections), tt.wantRejections)
			}
			for _, r := range result.Rejections {
				if r.Reason != RejectCount {
					t.Errorf("Reason = %q, want %q", r.Reason, RejectCount)
				}
			}
		})
	}
}
