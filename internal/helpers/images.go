package helpers

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/joshua-takyi/rentinout/internal/models"
)

// CloudinaryMedia removes uploaded assets from the media host.
type CloudinaryMedia struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryMedia(cld *cloudinary.Cloudinary) *CloudinaryMedia {
	return &CloudinaryMedia{cld: cld}
}

func (m *CloudinaryMedia) DeleteImage(ctx context.Context, imgID string) error {
	if m.cld == nil {
		return fmt.Errorf("%w: media host is not configured", models.ErrUpstream)
	}

	res, err := m.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: imgID})
	if err != nil {
		return fmt.Errorf("%w: destroy %s: %v", models.ErrUpstream, imgID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("%w: destroy %s: %s", models.ErrUpstream, imgID, res.Error.Message)
	}
	// "not found" means the asset is already gone
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("%w: destroy %s: %s", models.ErrUpstream, imgID, res.Result)
	}
	return nil
}
