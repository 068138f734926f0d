package transport

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// DefaultFileField is the multipart field receipts are sent under.
const DefaultFileField = "archivos"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// FilePart is one file of a multipart submission.
type FilePart struct {
	Open        func() (io.ReadCloser, error)
	FileName    string
	ContentType string
}

func encodeMultipart(field string, files []FilePart) (*bytes.Buffer, string, error) {
	if field == "" {
		field = DefaultFileField
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, f := range files {
		if err := writePart(w, field, f); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return buf, w.FormDataContentType(), nil
}

func writePart(w *multipart.Writer, field string, f FilePart) error {
	if f.Open == nil {
		return fmt.Errorf("file %q has no source", f.FileName)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.FileName)))
	header.Set("Content-Type", f.ContentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create part for %q: %w", f.FileName, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", f.FileName, err)
	}
	defer func() { _ = src.Close() }()

	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("failed to read %q: %w", f.FileName, err)
	}

	return nil
}
