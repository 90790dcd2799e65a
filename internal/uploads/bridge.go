package uploads

import (
	"context"
	"crypto/sha256"
	"log"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var dataURIImagePattern = regexp.MustCompile(`^data:image/[a-zA-Z0-9+.-]+;base64,`)

// IsDataURIImage reports whether a value is an inline base64 image payload.
// Anything else (a plain URL, an empty string) passes through the bridge
// untouched.
func IsDataURIImage(value string) bool {
	return dataURIImagePattern.MatchString(value)
}

// RemoteStore uploads an image payload into a folder and returns its durable
// URL.
type RemoteStore interface {
	Upload(ctx context.Context, dataURI, folder string) (string, error)
}

// CloudinaryStore uploads to Cloudinary, preferring the HTTPS URL of the
// stored asset.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, dataURI, folder string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", err
	}
	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	return result.URL, nil
}

// Result reports what the bridge did with a value, so callers and tests can
// assert on the degradation path instead of inferring it from the absence of
// an error.
type Result struct {
	Value    string
	Uploaded bool
	Reason   string
}

// Bridge replaces inline base64 image payloads with remote URLs. A nil store
// means the asset host is not configured and every value passes through.
type Bridge struct {
	store      RemoteStore
	cache      Cache
	baseFolder string
}

func NewBridge(store RemoteStore, cache Cache, baseFolder string) *Bridge {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if baseFolder == "" {
		baseFolder = "orders"
	}
	return &Bridge{store: store, cache: cache, baseFolder: baseFolder}
}

// Upload offloads a data URI to the remote store, deduplicating by payload
// content. It never fails the caller: on any upstream error the original
// value comes back with Uploaded=false and the reason recorded.
func (b *Bridge) Upload(ctx context.Context, value, folderSuffix string) Result {
	if b.store == nil {
		return Result{Value: value, Reason: "store not configured"}
	}
	if !IsDataURIImage(value) {
		return Result{Value: value, Reason: "not an inline image"}
	}

	if url, ok := b.cache.Get(ctx, value); ok {
		return Result{Value: url, Uploaded: true, Reason: "cache hit"}
	}

	url, err := b.store.Upload(ctx, value, b.folderPath(folderSuffix))
	if err != nil {
		log.Println("[UPLOAD] [ERROR] image upload failed:", err)
		return Result{Value: value, Reason: err.Error()}
	}
	if url == "" {
		url = value
	}

	b.cache.Set(ctx, value, url)
	return Result{Value: url, Uploaded: true}
}

// UploadImage is the string-in/string-out convenience wrapper used by the
// item processor.
func (b *Bridge) UploadImage(ctx context.Context, value, folderSuffix string) string {
	return b.Upload(ctx, value, folderSuffix).Value
}

func (b *Bridge) folderPath(suffix string) string {
	trimmed := strings.Trim(strings.TrimSpace(suffix), "/")
	if trimmed == "" {
		return b.baseFolder
	}
	return b.baseFolder + "/" + trimmed
}

func hashPayload(payload string) [32]byte {
	return sha256.Sum256([]byte(payload))
}
