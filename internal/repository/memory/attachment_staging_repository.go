package memory

import (
	"time"

	"ai-chathub-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// AttachmentStagingRepository holds processed attachments between upload and
// send. Entries not referenced by a send within the TTL are discarded.
type AttachmentStagingRepository struct {
	cache *cache.Cache
}

func NewAttachmentStagingRepository() *AttachmentStagingRepository {
	return &AttachmentStagingRepository{
		cache: cache.New(30*time.Minute, 5*time.Minute),
	}
}

func stagingKey(userID string, id uuid.UUID) string {
	return userID + ":" + id.String()
}

func (r *AttachmentStagingRepository) Put(userID string, att *entity.Attachment) {
	r.cache.Set(stagingKey(userID, att.Id), att, cache.DefaultExpiration)
}

func (r *AttachmentStagingRepository) Get(userID string, id uuid.UUID) (*entity.Attachment, bool) {
	if x, found := r.cache.Get(stagingKey(userID, id)); found {
		return x.(*entity.Attachment), true
	}
	return nil, false
}

// Take returns the attachment and removes it from staging, so one upload is
// consumed by exactly one send.
func (r *AttachmentStagingRepository) Take(userID string, id uuid.UUID) (*entity.Attachment, bool) {
	att, found := r.Get(userID, id)
	if found {
		r.cache.Delete(stagingKey(userID, id))
	}
	return att, found
}
