package attachment

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"ai-chathub-be/internal/constant"
)

// RejectionReason codes why a file was refused.
type RejectionReason string

const (
	RejectType  RejectionReason = "type"
	RejectSize  RejectionReason = "size"
	RejectCount RejectionReason = "count"
)

// FileInfo is the metadata a file arrives with, before any bytes are read.
type FileInfo struct {
	Name     string
	Size     int64
	MimeType string
}

// Accepted pairs a validated file with its resolved kind.
type Accepted struct {
	File FileInfo
	Kind string
}

type Rejection struct {
	File    FileInfo
	Reason  RejectionReason
	Message string
}

// BatchResult splits a dropped batch into files to process and rejections to
// report. Rejections never abort the batch.
type BatchResult struct {
	Accepted   []Accepted
	Rejections []Rejection
}

// Limits carries the per-category ceilings for one validation pass.
type Limits struct {
	MaxImages        int
	MaxDocuments     int
	ImageMaxBytes    int64
	DocumentMaxBytes int64
}

var imageMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

var documentMimeTypes = map[string]bool{
	"application/pdf":  true,
	"application/json": true,
	"text/plain":       true,
	"text/markdown":    true,
	"text/csv":         true,
	"text/html":        true,
}

var documentExtensions = map[string]bool{
	".pdf": true, ".txt": true, ".md": true, ".csv": true, ".json": true,
	".html": true, ".xml": true, ".yaml": true, ".yml": true, ".log": true,
	".go": true, ".py": true, ".js": true, ".ts": true, ".sql": true,
}

// Validator classifies files and enforces per-category size and count limits.
type Validator struct {
	limits Limits
}

func NewValidator(limits Limits) *Validator {
	return &Validator{limits: limits}
}

// Classify resolves a file to image, document, or empty string for
// unsupported. The declared MIME type wins; the extension is the fallback for
// uploads that arrive as application/octet-stream.
func (v *Validator) Classify(f FileInfo) string {
	mime := strings.ToLower(f.MimeType)
	if imageMimeTypes[mime] {
		return constant.AttachmentKindImage
	}
	if documentMimeTypes[mime] || strings.HasPrefix(mime, "text/") {
		return constant.AttachmentKindDocument
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	if documentExtensions[ext] {
		return constant.AttachmentKindDocument
	}
	return ""
}

// ValidateBatch checks every file in a dropped batch against the limits,
// given how many images and documents are already attached. Unsupported
// files collapse into a single rejection naming the distinct extensions, so
// a ten-file drop of the wrong type yields one message, not ten.
func (v *Validator) ValidateBatch(files []FileInfo, attachedImages, attachedDocuments int) BatchResult {
	var result BatchResult
	var unsupported []FileInfo
	unsupportedExts := map[string]bool{}

	images := attachedImages
	documents := attachedDocuments

	for _, f := range files {
		kind := v.Classify(f)
		if kind == "" {
			unsupported = append(unsupported, f)
			ext := strings.ToLower(filepath.Ext(f.Name))
			if ext == "" {
				ext = "(no extension)"
			}
			unsupportedExts[ext] = true
			continue
		}

		maxBytes := v.limits.DocumentMaxBytes
		if kind == constant.AttachmentKindImage {
			maxBytes = v.limits.ImageMaxBytes
		}
		if f.Size > maxBytes {
			result.Rejections = append(result.Rejections, Rejection{
				File:   f,
				Reason: RejectSize,
				Message: fmt.Sprintf("%s exceeds the %s limit of %s",
					f.Name, kind, formatBytes(maxBytes)),
			})
			continue
		}

		if kind == constant.AttachmentKindImage {
			if images >= v.limits.MaxImages {
				result.Rejections = append(result.Rejections, Rejection{
					File:    f,
					Reason:  RejectCount,
					Message: fmt.Sprintf("at most %d images per message", v.limits.MaxImages),
				})
				continue
			}
			images++
		} else {
			if documents >= v.limits.MaxDocuments {
				result.Rejections = append(result.Rejections, Rejection{
					File:    f,
					Reason:  RejectCount,
					Message: fmt.Sprintf("at most %d documents per message", v.limits.MaxDocuments),
				})
				continue
			}
			documents++
		}

		result.Accepted = append(result.Accepted, Accepted{File: f, Kind: kind})
	}

	if len(unsupported) > 0 {
		exts := make([]string, 0, len(unsupportedExts))
		for ext := range unsupportedExts {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		result.Rejections = append(result.Rejections, Rejection{
			File:    unsupported[0],
			Reason:  RejectType,
			Message: fmt.Sprintf("unsupported file type: %s", strings.Join(exts, ", ")),
		})
	}

	return result
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%dKB", n/1024)
}
