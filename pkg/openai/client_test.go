package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestCompleteRequest(t *testing.T) {
	var captured completionRequest
	var auth, url string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		auth = req.Header.Get("Authorization")
		url = req.URL.String()
		body, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"choices":[{"message":{"role":"assistant","content":"Try a Panchmukhi Rudraksha."}}]}`)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("sk-test", WithBaseURL("http://llm.test"), WithModel("gpt-test"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	out, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hello"}})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "Try a Panchmukhi Rudraksha." {
		t.Fatalf("unexpected completion %q", out)
	}
	if auth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if url != "http://llm.test/v1/chat/completions" {
		t.Fatalf("unexpected url %q", url)
	}
	if captured.Model != "gpt-test" || len(captured.Messages) != 1 {
		t.Fatalf("unexpected payload %+v", captured)
	}
}

func TestCompleteErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http error", status: http.StatusTooManyRequests, body: `{"error":{"message":"quota"}}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "bad json", status: http.StatusOK, body: `nope`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: tc.status, Body: io.NopCloser(strings.NewReader(tc.body)), Header: http.Header{}}, nil
			})
			client, _ := NewClient("sk", WithHTTPClient(&http.Client{Transport: rt}))
			if _, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "x"}}); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
				t.Fatalf("expected dependency error, got %v", err)
			}
		})
	}
}

func TestCompleteRequiresMessages(t *testing.T) {
	client, _ := NewClient("sk")
	if _, err := client.Complete(context.Background(), nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := NewClient(""); err == nil {
		t.Fatal("expected missing key to fail")
	}
}
