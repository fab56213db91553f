package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/gqlgo/gqlshape/graphqljson"
)

// Request is the GraphQL-over-HTTP request body.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Response is the GraphQL-over-HTTP response envelope. Data stays raw so
// callers decode it into their own types.
type Response struct {
	Data   jsontext.Value `json:"data"`
	Errors gqlerror.List  `json:"errors,omitempty"`
}

// NewRequest creates a plain application/json POST request.
func NewRequest(ctx context.Context, endpoint, operationName, query string, variables map[string]any) (*http.Request, error) {
	body, err := json.Marshal(&Request{
		Query:         query,
		OperationName: operationName,
		Variables:     variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json; charset=utf-8")

	return req, nil
}

// Upload is a file argument to a multipart request.
type Upload struct {
	File        io.Reader
	Filename    string
	ContentType string
}

type uploadPart struct {
	path   string
	upload Upload
}

// NewMultipartRequest creates a multipart/form-data POST request following
// https://github.com/jaydenseric/graphql-multipart-request-spec. It returns
// a nil request when the variables carry no Upload values, in which case the
// caller should fall back to NewRequest.
func NewMultipartRequest(ctx context.Context, endpoint, operationName, query string, variables map[string]any) (*http.Request, error) {
	uploads := collectUploads("variables", variables)
	if len(uploads) == 0 {
		return nil, nil
	}

	operations, err := json.Marshal(&Request{
		Query:         query,
		OperationName: operationName,
		Variables:     nullUploads(variables).(map[string]any),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode operations field: %w", err)
	}
	fileMap := make(map[string][]string, len(uploads))
	for i, part := range uploads {
		fileMap[strconv.Itoa(i)] = []string{part.path}
	}
	mapField, err := json.Marshal(fileMap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode map field: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("operations", string(operations)); err != nil {
		return nil, fmt.Errorf("failed to write operations field: %w", err)
	}
	if err := writer.WriteField("map", string(mapField)); err != nil {
		return nil, fmt.Errorf("failed to write map field: %w", err)
	}
	for i, part := range uploads {
		fw, err := createFilePart(writer, strconv.Itoa(i), part.upload)
		if err != nil {
			return nil, fmt.Errorf("failed to create file field %d: %w", i, err)
		}
		if _, err := io.Copy(fw, part.upload.File); err != nil {
			return nil, fmt.Errorf("failed to write file field %d: %w", i, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json; charset=utf-8")

	return req, nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func createFilePart(writer *multipart.Writer, fieldName string, upload Upload) (io.Writer, error) {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(fieldName), quoteEscaper.Replace(upload.Filename)))
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	return writer.CreatePart(header)
}

// collectUploads walks the variables for Upload values in deterministic
// order and records the object path of each one.
func collectUploads(path string, value any) []uploadPart {
	switch v := value.(type) {
	case Upload:
		return []uploadPart{{path: path, upload: v}}
	case *Upload:
		if v == nil {
			return nil
		}
		return []uploadPart{{path: path, upload: *v}}
	case map[string]any:
		var parts []uploadPart
		for _, key := range slices.Sorted(maps.Keys(v)) {
			parts = append(parts, collectUploads(path+"."+key, v[key])...)
		}
		return parts
	case []any:
		var parts []uploadPart
		for i, item := range v {
			parts = append(parts, collectUploads(path+"."+strconv.Itoa(i), item)...)
		}
		return parts
	default:
		return nil
	}
}

// nullUploads replaces every Upload value with null, as the multipart spec
// requires for the operations field.
func nullUploads(value any) any {
	switch v := value.(type) {
	case Upload, *Upload:
		return nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = nullUploads(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = nullUploads(item)
		}
		return out
	default:
		return v
	}
}

// ParseResponse decodes a GraphQL-over-HTTP response into out. GraphQL
// errors come back as a gqlerror.List.
func ParseResponse(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	res := &Response{}
	if err := json.Unmarshal(body, res); err != nil {
		return fmt.Errorf("failed to decode response %q: %w", body, err)
	}
	if len(res.Errors) > 0 {
		return res.Errors
	}
	if out == nil || len(res.Data) == 0 || string(res.Data) == "null" {
		return nil
	}
	if err := graphqljson.UnmarshalData(res.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}

	return nil
}
