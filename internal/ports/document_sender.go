package ports

import (
	"context"
	"net/url"
	"strings"

	"github.com/docship/docship/internal/domain"
)

// DocumentSender transmits one batch to the remote ingestion endpoint.
// Implementations handle compression, framing and authentication. A send is
// single-shot: retry policy belongs to the caller.
type DocumentSender interface {
	// Send compresses and transmits the batch. Returns nil on a 2xx
	// response. A non-2xx response is returned as *domain.ServerError;
	// transport failures are returned wrapped. Both are retryable.
	Send(ctx context.Context, batch domain.Batch, target Target) error
}

// Target describes where and how batches are delivered.
type Target struct {
	// ServiceURL is the base URL of the ingestion service.
	ServiceURL string

	// Index is the remote index documents are delivered into.
	Index string

	// PrimaryKey optionally names the document field used as primary key.
	PrimaryKey string

	// APIKey is the bearer credential; empty means unauthenticated.
	APIKey string

	// Operation selects replace (POST) or update (PUT) framing.
	Operation domain.Operation

	// Format determines the Content-Type of the request body.
	Format domain.Format
}

// DocumentsURL builds the documents endpoint URL for the target.
func (t Target) DocumentsURL() string {
	u := strings.TrimRight(t.ServiceURL, "/") + "/indexes/" + url.PathEscape(t.Index) + "/documents"
	if t.PrimaryKey != "" {
		u += "?primaryKey=" + url.QueryEscape(t.PrimaryKey)
	}
	return u
}
