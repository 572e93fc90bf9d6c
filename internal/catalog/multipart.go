package catalog

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/compumarket/catalogadmin/internal/imageset"
	"github.com/compumarket/catalogadmin/internal/models"
)

// Multipart field names shared by every product upload
const (
	ImagesField        = "imagenes"
	DeletedImagesField = "imagenes_a_eliminar"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// WriteProductForm writes the product's scalar fields, one ImagesField part
// per upload and one DeletedImagesField value per deletion. It returns the
// form's content type.
func WriteProductForm(w io.Writer, p models.Product, snap imageset.Snapshot) (string, error) {
	mw := multipart.NewWriter(w)

	for _, field := range p.FormFields() {
		if err := mw.WriteField(field.Name, field.Value); err != nil {
			return "", fmt.Errorf("failed to write field %s: %w", field.Name, err)
		}
	}

	for _, f := range snap.Uploads {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			ImagesField, quoteEscaper.Replace(f.Name)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return "", fmt.Errorf("failed to create part for %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return "", fmt.Errorf("failed to write image %s: %w", f.Name, err)
		}
	}

	for _, name := range snap.Deletions {
		if err := mw.WriteField(DeletedImagesField, name); err != nil {
			return "", fmt.Errorf("failed to write deletion %s: %w", name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart form: %w", err)
	}
	return mw.FormDataContentType(), nil
}
