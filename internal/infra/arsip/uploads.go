package arsip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/arsipak/admin-bff-go/internal/domain"
)

// UploadRecords submits a bulk CSV/XLSX import for a record kind
// ("mahasiswa", "dosen", "prodis", "konsentrasi-utama"). Implements
// port.UploadAPI. The file is buffered in memory to build the multipart
// body before the request goes out.
func (c *Client) UploadRecords(ctx context.Context, token, kind, filename string, file io.Reader) (*domain.UploadSummary, error) {
	ctx, span := tracer.Start(ctx, "Arsip.UploadRecords")
	defer span.End()
	span.SetAttributes(
		attribute.String("upload.kind", kind),
		attribute.String("upload.filename", filename),
	)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("buffer upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/%s/upload/", kind)

	var summary *domain.UploadSummary
	err = c.executeWrite(ctx, "records", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Token "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &domain.ErrUpstream{Op: "POST " + path, Status: 0, Message: err.Error()}
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return &domain.ErrUpstream{Op: "POST " + path, Status: resp.StatusCode, Message: "read body: " + err.Error()}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return normalizeError("POST "+path, resp.StatusCode, raw)
		}

		var s domain.UploadSummary
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("decode upload summary: %w", err)
		}
		if s.Errors == nil {
			s.Errors = []string{}
		}
		summary = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
