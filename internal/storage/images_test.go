package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	store := &MinioImageStore{config: Config{
		Endpoint: "minio.internal:9000",
		Bucket:   "images",
	}}

	// Bare object names pass through untouched.
	assert.Equal(t, "workspaces/abc.png", store.objectName("workspaces/abc.png"))

	// Attachment ids stored as bucket URLs map back to object names.
	assert.Equal(t, "attachments/abc.png",
		store.objectName("http://minio.internal:9000/images/attachments/abc.png"))
	assert.Equal(t, "attachments/abc.png",
		store.objectName("https://minio.internal:9000/images/attachments/abc.png"))

	// URLs outside the bucket are left alone.
	assert.Equal(t, "https://elsewhere.example.com/x.png",
		store.objectName("https://elsewhere.example.com/x.png"))
}

func TestObjectName_PublicBaseURL(t *testing.T) {
	store := &MinioImageStore{config: Config{
		Endpoint:  "minio.internal:9000",
		Bucket:    "images",
		PublicURL: "https://cdn.example.com/images/",
	}}

	assert.Equal(t, "attachments/abc.png",
		store.objectName("https://cdn.example.com/images/attachments/abc.png"))
	assert.Equal(t, "workspaces/abc.png", store.objectName("workspaces/abc.png"))
}

func TestPublicURL_RoundTrip(t *testing.T) {
	store := &MinioImageStore{config: Config{
		Endpoint: "minio.internal:9000",
		Bucket:   "images",
		UseSSL:   true,
	}}

	url := store.PublicURL("projects/def.jpg")
	assert.Equal(t, "https://minio.internal:9000/images/projects/def.jpg", url)
	assert.Equal(t, "projects/def.jpg", store.objectName(url))

	assert.Equal(t, "", store.PublicURL(""))
}
