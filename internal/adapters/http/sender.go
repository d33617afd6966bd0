// Package http implements the document sender against the remote ingestion
// endpoint.
package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/docship/docship/internal/domain"
	"github.com/docship/docship/internal/ports"
	"github.com/docship/docship/pkg/log"
)

// maxErrorBody caps how much of an error response is surfaced in logs.
const maxErrorBody = 8 << 10

// DocumentSender implements ports.DocumentSender over HTTP. Each call is a
// single attempt; the pipeline owns the retry policy.
type DocumentSender struct {
	client ports.HTTPClient
	logger log.Logger
}

// NewDocumentSender creates a new HTTP document sender.
func NewDocumentSender(client ports.HTTPClient, logger log.Logger) *DocumentSender {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &DocumentSender{
		client: client,
		logger: logger,
	}
}

// Send gzip-compresses the batch payload and delivers it to the documents
// endpoint. The HTTP method follows the target operation: POST for
// add-or-replace, PUT for add-or-update.
func (s *DocumentSender) Send(ctx context.Context, batch domain.Batch, target ports.Target) error {
	var body bytes.Buffer
	gz := gzip.NewWriter(&body)
	if _, err := gz.Write(batch.Data); err != nil {
		return fmt.Errorf("compress batch: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compress batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, target.Operation.Method(), target.DocumentsURL(), &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", target.Format.ContentType())
	req.Header.Set("Content-Encoding", "gzip")
	if target.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+target.APIKey)
	}

	s.logger.Debug("sending batch",
		log.Uint64("batch", batch.Index),
		log.Int("docs", batch.Docs),
		log.Int("bytes", batch.Len()),
		log.Int("compressed", body.Len()),
	)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.ServerError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}
