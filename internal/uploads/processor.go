package uploads

import (
	"context"

	"mehryaan-backend/internal/models"
)

// ProcessItems walks submitted cart items and rewrites inline image payloads
// to remote URLs: item images into the items folder, customization reference
// images into the references folder. Values that are not inline payloads, or
// that fail to upload, stay as submitted. Empty input is returned unchanged.
func (b *Bridge) ProcessItems(ctx context.Context, items []models.OrderItem) []models.OrderItem {
	if len(items) == 0 {
		return items
	}

	processed := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Image != "" {
			item.Image = b.UploadImage(ctx, item.Image, "items")
		}
		if item.Customization != nil && item.Customization.ReferenceImage != "" {
			customization := *item.Customization
			customization.ReferenceImage = b.UploadImage(ctx, customization.ReferenceImage, "references")
			item.Customization = &customization
		}
		processed = append(processed, item)
	}

	return processed
}
