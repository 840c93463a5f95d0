package submit

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fruitexport/portal/internal/format"
	"github.com/fruitexport/portal/internal/notify"
)

type recorderStub struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recorderStub) ObserveSubmission(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func envelopeServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestSubmitSuccessInvokesCallbackOnce(t *testing.T) {
	srv, _ := envelopeServer(t, http.StatusOK, `{"success":true,"message":"Đã lưu"}`)
	var board notify.Board
	rec := &recorderStub{}
	client := NewClient(srv.Client(), &board, WithRecorder(rec))

	var calls []Envelope
	outcome, env, err := client.Submit(context.Background(), Form{Action: srv.URL + "/orders"}, func(e Envelope) {
		calls = append(calls, e)
	}).Wait()

	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Equal(t, Envelope{Success: true, Message: "Đã lưu"}, env)
	require.Len(t, calls, 1)
	assert.Equal(t, env, calls[0])

	toasts := board.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.Success, toasts[0].Severity)
	assert.Contains(t, toasts[0].Message, "Đã lưu")
	assert.Equal(t, []string{"success"}, rec.outcomes)
}

func TestSubmitSuccessDefaultMessage(t *testing.T) {
	srv, _ := envelopeServer(t, http.StatusOK, `{"success":true}`)
	var board notify.Board
	_, _, err := NewClient(srv.Client(), &board).Submit(context.Background(), Form{Action: srv.URL}, nil).Wait()
	require.NoError(t, err)
	assert.Equal(t, MessageSuccess, board.Toasts()[0].Message)
}

func TestSubmitApplicationFailure(t *testing.T) {
	srv, _ := envelopeServer(t, http.StatusOK, `{"success":false,"message":"Mã đơn đã tồn tại"}`)
	var board notify.Board
	called := false
	outcome, _, err := NewClient(srv.Client(), &board).Submit(context.Background(), Form{Action: srv.URL}, func(Envelope) {
		called = true
	}).Wait()

	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, outcome)
	assert.False(t, called)
	toasts := board.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.Danger, toasts[0].Severity)
	assert.Equal(t, "Mã đơn đã tồn tại", toasts[0].Message)

	srv, _ = envelopeServer(t, http.StatusOK, `{"success":false}`)
	var board2 notify.Board
	_, _, _ = NewClient(srv.Client(), &board2).Submit(context.Background(), Form{Action: srv.URL}, nil).Wait()
	assert.Equal(t, MessageFailure, board2.Toasts()[0].Message)
}

func TestSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	var board notify.Board
	rec := &recorderStub{}
	called := false
	outcome, _, err := NewClient(nil, &board, WithRecorder(rec)).Submit(context.Background(), Form{Action: addr}, func(Envelope) {
		called = true
	}).Wait()

	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, OutcomeTransport, outcome)
	assert.False(t, called)
	toasts := board.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.Danger, toasts[0].Severity)
	assert.Equal(t, MessageTransport, toasts[0].Message)
	assert.Equal(t, []string{"transport"}, rec.outcomes)
}

func TestNon2xxAndBadBodyAreTransportFailures(t *testing.T) {
	for _, tc := range []struct {
		status int
		body   string
	}{
		{http.StatusInternalServerError, `{"success":true}`},
		{http.StatusBadGateway, `{"error":"upstream"}`},
		{http.StatusServiceUnavailable, ``},
		{http.StatusOK, `<html>login</html>`},
		{http.StatusOK, `{"message":"no flag"}`},
	} {
		srv, _ := envelopeServer(t, tc.status, tc.body)
		var board notify.Board
		called := false
		outcome, _, err := NewClient(srv.Client(), &board).Submit(context.Background(), Form{Action: srv.URL}, func(Envelope) {
			called = true
		}).Wait()
		assert.ErrorIs(t, err, ErrTransport)
		assert.Equal(t, OutcomeTransport, outcome)
		assert.False(t, called)
		assert.Equal(t, MessageTransport, board.Toasts()[0].Message)
	}
}

func TestRejectedDeleteShowsServerPrompt(t *testing.T) {
	var reached atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/orders/1/delete", func(w http.ResponseWriter, r *http.Request) {
		reached.Store(true)
		_, _ = io.WriteString(w, `{"success":true,"message":"Đã xóa"}`)
	})
	srv := httptest.NewServer(format.RequireConfirm(mux))
	defer srv.Close()

	var board notify.Board
	rec := &recorderStub{}
	client := NewClient(srv.Client(), &board, WithRecorder(rec))
	outcome, env, err := client.Submit(context.Background(), Form{Action: srv.URL + "/orders/1/delete"}, nil).Wait()

	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, outcome)
	assert.Equal(t, Envelope{Success: false, Message: format.DeletePrompt}, env)
	assert.False(t, reached.Load())
	toasts := board.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.Danger, toasts[0].Severity)
	assert.Equal(t, format.DeletePrompt, toasts[0].Message)
	assert.Equal(t, []string{"failure"}, rec.outcomes)

	outcome, _, err = client.Submit(context.Background(), Form{
		Action: srv.URL + "/orders/1/delete",
		Fields: []Field{{Name: "confirm", Value: "yes"}},
	}, nil).Wait()
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
	assert.True(t, reached.Load())
}

func TestMultipartCarriesFieldsAndFiles(t *testing.T) {
	var gotMethod, gotName, gotFile, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotName = r.FormValue("name")
		f, hdr, err := r.FormFile("photo")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		raw, _ := io.ReadAll(f)
		gotFile = string(raw)
		gotFilename = hdr.Filename
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	payload := "\x89PNG\r\n\x1a\nbinary"
	form := Form{
		Action: srv.URL + "/products",
		Method: "put",
		Fields: []Field{{Name: "name", Value: "Xoài"}},
		Files:  []File{{Field: "photo", Filename: "xoai.png", ContentType: "image/png", Content: strings.NewReader(payload)}},
	}
	_, err := NewClient(srv.Client(), nil).Do(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "Xoài", gotName)
	assert.Equal(t, payload, gotFile)
	assert.Equal(t, "xoai.png", gotFilename)
}

func TestGetFormUsesQueryString(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), nil).Do(context.Background(), Form{
		Action: srv.URL + "/search?page=2",
		Method: "GET",
		Fields: []Field{{Name: "q", Value: "thanh long"}},
	})
	require.NoError(t, err)
	assert.Contains(t, query, "page=2")
	assert.Contains(t, query, "q=thanh+long")
}

func TestInvalidFormIsRejected(t *testing.T) {
	client := NewClient(nil, nil)
	_, err := client.Do(context.Background(), Form{Action: "not a url"})
	assert.Error(t, err)
	_, err = client.Do(context.Background(), Form{Action: "http://x", Method: "TRACE"})
	assert.Error(t, err)
}

func TestDoubleSubmitIssuesTwoRequests(t *testing.T) {
	srv, hits := envelopeServer(t, http.StatusOK, `{"success":true,"message":"ok"}`)
	var board notify.Board
	client := NewClient(srv.Client(), &board)

	var calls atomic.Int32
	form := Form{Action: srv.URL}
	first := client.Submit(context.Background(), form, func(Envelope) { calls.Add(1) })
	second := client.Submit(context.Background(), form, func(Envelope) { calls.Add(1) })
	_, _, err1 := first.Wait()
	_, _, err2 := second.Wait()

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, int32(2), calls.Load())
	assert.Len(t, board.Toasts(), 2)
}

func TestSubmitDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	p := NewClient(srv.Client(), nil).Submit(context.Background(), Form{Action: srv.URL}, nil)
	select {
	case <-p.Done():
		t.Fatal("submission completed before the server replied")
	default:
	}
	close(release)
	outcome, _, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
}
