package domain

import (
	"fmt"
	"net/http"
	"strings"
)

// Operation selects how the remote endpoint applies delivered documents.
type Operation int

const (
	// OperationReplace adds new documents and fully replaces existing ones.
	OperationReplace Operation = iota

	// OperationUpdate adds new documents and partially updates existing ones.
	OperationUpdate
)

// String returns the CLI spelling of the operation.
func (o Operation) String() string {
	if o == OperationUpdate {
		return "add-or-update"
	}
	return "add-or-replace"
}

// Method returns the HTTP method the operation is framed as.
func (o Operation) Method() string {
	if o == OperationUpdate {
		return http.MethodPut
	}
	return http.MethodPost
}

// ParseOperation converts an upload-operation name into an Operation.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "add-or-replace", "replace":
		return OperationReplace, nil
	case "add-or-update", "update":
		return OperationUpdate, nil
	default:
		return OperationReplace, fmt.Errorf("unknown upload operation %q (want add-or-replace or add-or-update)", s)
	}
}
