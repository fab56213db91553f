package client

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
)

type viewerResponse struct {
	Viewer struct {
		Name string `json:"name"`
	} `json:"viewer"`
}

func TestPost(t *testing.T) {
	t.Parallel()

	type args struct {
		status int
		body   string
	}

	type want struct {
		viewerName  string
		errContains string
	}

	tests := []struct {
		name string
		args args
		want want
	}{
		{
			name: "dataをレスポンス型にデコードできる",
			args: args{
				status: http.StatusOK,
				body:   `{"data": {"viewer": {"name": "grace"}}}`,
			},
			want: want{
				viewerName: "grace",
			},
		},
		{
			name: "GraphQLエラーはgqlerror.Listとして返す",
			args: args{
				status: http.StatusOK,
				body:   `{"data": null, "errors": [{"message": "viewer is gone"}]}`,
			},
			want: want{
				errContains: "viewer is gone",
			},
		},
		{
			name: "dataがnullならoutはゼロ値のまま",
			args: args{
				status: http.StatusOK,
				body:   `{"data": null}`,
			},
			want: want{
				viewerName: "",
			},
		},
		{
			name: "2xx以外はHTTPステータスをエラーにする",
			args: args{
				status: http.StatusInternalServerError,
				body:   "Internal Server Error",
			},
			want: want{
				errContains: "http status 500: Internal Server Error",
			},
		},
		{
			name: "JSONとして読めないレスポンスはエラー",
			args: args{
				status: http.StatusOK,
				body:   "not-json",
			},
			want: want{
				errContains: "failed to decode response",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var requestBody []byte
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var err error
				requestBody, err = io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("failed to read request body: %v", err)
				}
				w.WriteHeader(tt.args.status)
				fmt.Fprint(w, tt.args.body)
			})
			httpClient := &http.Client{Transport: handlerRoundTripper{handler: handler}}
			c := NewClient("http://local/graphql", WithHTTPClient(httpClient))

			var res viewerResponse
			err := c.Post(t.Context(), "Viewer", "query Viewer { viewer { name } }", nil, &res)

			if tt.want.errContains != "" {
				if err == nil {
					t.Errorf("error = nil, want error")
					return
				}
				if !strings.Contains(err.Error(), tt.want.errContains) {
					t.Errorf("error message = %q, want to contain %q", err.Error(), tt.want.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("error = %v, want nil", err)
				return
			}

			if res.Viewer.Name != tt.want.viewerName {
				t.Errorf("viewer name = %q, want %q", res.Viewer.Name, tt.want.viewerName)
			}

			var sent Request
			if err := json.Unmarshal(requestBody, &sent); err != nil {
				t.Fatalf("failed to decode request body: %v", err)
			}
			if sent.OperationName != "Viewer" {
				t.Errorf("operationName = %q, want %q", sent.OperationName, "Viewer")
			}
			if !strings.Contains(sent.Query, "query Viewer") {
				t.Errorf("query = %q, want to contain %q", sent.Query, "query Viewer")
			}
		})
	}
}

func TestPost_sendsConfiguredHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		fmt.Fprint(w, `{"data": null}`)
	})
	httpClient := &http.Client{Transport: handlerRoundTripper{handler: handler}}
	header := http.Header{}
	header.Set("Authorization", "Bearer token-123")
	c := NewClient("http://local/graphql", WithHTTPClient(httpClient), WithHTTPHeader(header))

	if err := c.Post(t.Context(), "Viewer", "query Viewer { viewer { name } }", nil, nil); err != nil {
		t.Fatalf("Post() failed: %v", err)
	}

	if got.Get("Authorization") != "Bearer token-123" {
		t.Errorf("Authorization = %q, want %q", got.Get("Authorization"), "Bearer token-123")
	}
	if !strings.HasPrefix(got.Get("Content-Type"), "application/json") {
		t.Errorf("Content-Type = %q, want application/json", got.Get("Content-Type"))
	}
}

func TestNewRequest(t *testing.T) {
	t.Parallel()

	req, err := NewRequest(t.Context(), "http://local/graphql", "Viewer", "query Viewer { viewer { name } }", map[string]any{"id": "1"})
	if err != nil {
		t.Fatalf("NewRequest() failed: %v", err)
	}

	if req.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", req.Method)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	var sent Request
	if err := json.Unmarshal(body, &sent); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if diff := cmp.Diff(Request{
		Query:         "query Viewer { viewer { name } }",
		OperationName: "Viewer",
		Variables:     map[string]any{"id": "1"},
	}, sent); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}
}

func TestNewMultipartRequest_withoutUploads(t *testing.T) {
	t.Parallel()

	req, err := NewMultipartRequest(t.Context(), "http://local/graphql", "Viewer", "query Viewer { viewer { name } }", map[string]any{"id": "1"})
	if err != nil {
		t.Fatalf("NewMultipartRequest() failed: %v", err)
	}
	if req != nil {
		t.Errorf("request = %v, want nil for upload-free variables", req)
	}
}

func TestNewMultipartRequest(t *testing.T) {
	t.Parallel()

	variables := map[string]any{
		"input": map[string]any{
			"banner": &Upload{File: strings.NewReader("banner-bytes"), Filename: "banner.jpg"},
			"avatar": Upload{File: strings.NewReader("avatar-bytes"), Filename: "avatar.png", ContentType: "image/png"},
		},
	}

	req, err := NewMultipartRequest(t.Context(), "http://local/graphql", "UpdateImages", "mutation UpdateImages($input: ImagesInput!) { updateImages(input: $input) }", variables)
	if err != nil {
		t.Fatalf("NewMultipartRequest() failed: %v", err)
	}
	if req == nil {
		t.Fatal("request = nil, want multipart request")
	}

	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("failed to parse Content-Type: %v", err)
	}
	if mediaType != "multipart/form-data" {
		t.Fatalf("media type = %q, want multipart/form-data", mediaType)
	}

	reader := multipart.NewReader(req.Body, params["boundary"])

	// operations: Uploadはnullに置き換わる
	operations := nextPart(t, reader, "operations")
	var sent Request
	if err := json.Unmarshal(operations, &sent); err != nil {
		t.Fatalf("failed to decode operations field: %v", err)
	}
	if diff := cmp.Diff(map[string]any{
		"input": map[string]any{"avatar": nil, "banner": nil},
	}, sent.Variables); diff != "" {
		t.Errorf("operations variables diff(-want +got): %s", diff)
	}

	// map: パス順で採番される
	mapField := nextPart(t, reader, "map")
	var fileMap map[string][]string
	if err := json.Unmarshal(mapField, &fileMap); err != nil {
		t.Fatalf("failed to decode map field: %v", err)
	}
	if diff := cmp.Diff(map[string][]string{
		"0": {"variables.input.avatar"},
		"1": {"variables.input.banner"},
	}, fileMap); diff != "" {
		t.Errorf("map field diff(-want +got): %s", diff)
	}

	// file parts
	part, err := reader.NextPart()
	if err != nil {
		t.Fatalf("failed to read file part: %v", err)
	}
	if part.FormName() != "0" || part.FileName() != "avatar.png" {
		t.Errorf("part = %s/%s, want 0/avatar.png", part.FormName(), part.FileName())
	}
	if got := part.Header.Get("Content-Type"); got != "image/png" {
		t.Errorf("file Content-Type = %q, want image/png", got)
	}
	content, err := io.ReadAll(part)
	if err != nil {
		t.Fatalf("failed to read file content: %v", err)
	}
	if string(content) != "avatar-bytes" {
		t.Errorf("file content = %q, want avatar-bytes", content)
	}

	part, err = reader.NextPart()
	if err != nil {
		t.Fatalf("failed to read file part: %v", err)
	}
	if part.FormName() != "1" || part.FileName() != "banner.jpg" {
		t.Errorf("part = %s/%s, want 1/banner.jpg", part.FormName(), part.FileName())
	}
	if got := part.Header.Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("file Content-Type = %q, want application/octet-stream", got)
	}
}

func nextPart(t *testing.T, reader *multipart.Reader, wantName string) []byte {
	t.Helper()

	part, err := reader.NextPart()
	if err != nil {
		t.Fatalf("failed to read part %s: %v", wantName, err)
	}
	if part.FormName() != wantName {
		t.Fatalf("part name = %q, want %q", part.FormName(), wantName)
	}
	content, err := io.ReadAll(part)
	if err != nil {
		t.Fatalf("failed to read part %s: %v", wantName, err)
	}

	return content
}

type handlerRoundTripper struct {
	handler http.Handler
}

func (rt handlerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	recorder := httptest.NewRecorder()
	rt.handler.ServeHTTP(recorder, req)
	resp := recorder.Result()
	return resp, nil
}
