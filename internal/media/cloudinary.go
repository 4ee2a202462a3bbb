package media

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary uploads to a Cloudinary account.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cloud, key, secret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloud, key, secret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, f File) (string, error) {
	kind := f.Kind
	if kind == "" {
		kind = KindImage
	}
	res, err := c.cld.Upload.Upload(ctx, f.Reader, uploader.UploadParams{
		ResourceType: string(kind),
		Folder:       c.folder,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUpload, f.Name, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("%w: %s: %s", ErrUpload, f.Name, res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("%w: %s: empty url", ErrUpload, f.Name)
	}
	return res.SecureURL, nil
}
