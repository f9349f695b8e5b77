package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"ai-chathub-be/internal/repository/memory"
	"ai-chathub-be/pkg/attachment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(_ context.Context, _ string, data io.Reader) (string, error) {
	io.Copy(io.Discard, data)
	return s.text, s.err
}

func newAttachmentService(extractor attachment.PDFExtractor) (IAttachmentService, *memory.AttachmentStagingRepository) {
	validator := attachment.NewValidator(attachment.Limits{
		MaxImages:        4,
		MaxDocuments:     3,
		ImageMaxBytes:    5 * 1024 * 1024,
		DocumentMaxBytes: 10 * 1024 * 1024,
	})
	processor := attachment.NewProcessor(extractor, 1000, nil)
	staging := memory.NewAttachmentStagingRepository()
	return NewAttachmentService(validator, processor, staging, noopLogger{}), staging
}

func textFile(name, content string) attachment.File {
	return attachment.File{
		Info:   attachment.FileInfo{Name: name, Size: int64(len(content)), MimeType: "text/plain"},
		Reader: strings.NewReader(content),
	}
}

func TestUploadStagesProcessedAttachments(t *testing.T) {
	userId := uuid.New()
	svc, staging := newAttachmentService(&stubExtractor{})

	resp, err := svc.Upload(context.Background(), userId, []attachment.File{
		textFile("a.txt", "first"),
		textFile("b.txt", "second"),
	}, 0, 0)
	require.NoError(t, err)
	require.Len(t, resp.Attachments, 2)
	assert.Empty(t, resp.Rejections)

	for _, att := range resp.Attachments {
		staged, ok := staging.Get(userId.String(), att.Id)
		require.True(t, ok, "processed attachment %s staged for the next send", att.Name)
		assert.Equal(t, att.Name, staged.Name)
	}

	// Take consumes the staged entry.
	id := resp.Attachments[0].Id
	_, ok := staging.Take(userId.String(), id)
	require.True(t, ok)
	_, ok = staging.Get(userId.String(), id)
	assert.False(t, ok)
}

func TestUploadRejectionsDoNotBlockSiblings(t *testing.T) {
	userId := uuid.New()
	svc, staging := newAttachmentService(&stubExtractor{})

	resp, err := svc.Upload(context.Background(), userId, []attachment.File{
		textFile("good.txt", "fine"),
		{
			Info:   attachment.FileInfo{Name: "clip.mp4", Size: 10, MimeType: "video/mp4"},
			Reader: strings.NewReader("0000000000"),
		},
	}, 0, 0)
	require.NoError(t, err)

	require.Len(t, resp.Attachments, 1)
	assert.Equal(t, "good.txt", resp.Attachments[0].Name)
	require.Len(t, resp.Rejections, 1)
	assert.Equal(t, "clip.mp4", resp.Rejections[0].Name)

	_, ok := staging.Get(userId.String(), resp.Attachments[0].Id)
	assert.True(t, ok)
}

func TestUploadFailedProcessingNotStaged(t *testing.T) {
	userId := uuid.New()
	svc, staging := newAttachmentService(&stubExtractor{err: errors.New("extraction down")})

	resp, err := svc.Upload(context.Background(), userId, []attachment.File{
		{
			Info:   attachment.FileInfo{Name: "doc.pdf", Size: 4, MimeType: "application/pdf"},
			Reader: strings.NewReader("%PDF"),
		},
	}, 0, 0)
	require.NoError(t, err)

	require.Len(t, resp.Attachments, 1)
	assert.NotEmpty(t, resp.Attachments[0].Error)

	_, ok := staging.Get(userId.String(), resp.Attachments[0].Id)
	assert.False(t, ok, "failed attachments never reach staging")
}

func TestUploadDuplicateNamesEachProcessedOnce(t *testing.T) {
	userId := uuid.New()
	svc, _ := newAttachmentService(&stubExtractor{})

	resp, err := svc.Upload(context.Background(), userId, []attachment.File{
		textFile("same.txt", "aaaa"),
		textFile("same.txt", "bbbb"),
	}, 0, 0)
	require.NoError(t, err)

	require.Len(t, resp.Attachments, 2)
	contents := []string{resp.Attachments[0].TextContent, resp.Attachments[1].TextContent}
	assert.ElementsMatch(t, []string{"aaaa", "bbbb"}, contents,
		"identical metadata must not process the same reader twice")
}
