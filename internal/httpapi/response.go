package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
)

const maxBodyBytes = 1 << 20

// Response renders itself to an http.ResponseWriter. Errors returned from
// Render are classified and written by the route's error writer.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// handlerFunc produces the response for a request.
type handlerFunc func(r *http.Request) Response

// envelope is the body shape of the /api routes.
type envelope struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *envelopeError `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, j.status, j.body)
	return nil
}

// JSON wraps v in the data envelope.
func JSON(v any) Response {
	return jsonResponse{status: http.StatusOK, body: envelope{Data: v}}
}

// JSONWithMeta wraps v in the data envelope with a meta member.
func JSONWithMeta(v any, meta map[string]any) Response {
	return jsonResponse{status: http.StatusOK, body: envelope{Data: v, Meta: meta}}
}

// Created is JSON with status 201.
func Created(v any) Response {
	return jsonResponse{status: http.StatusCreated, body: envelope{Data: v}}
}

// Raw writes v as the whole body, without an envelope.
func Raw(v any) Response {
	return jsonResponse{status: http.StatusOK, body: v}
}

type emptyResponse struct{}

func (emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Empty responds 204.
func Empty() Response {
	return emptyResponse{}
}

type attachmentResponse struct {
	filename    string
	contentType string
	body        []byte
}

func (a attachmentResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", a.contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.body)))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(a.body)
	return err
}

// Attachment serves body as a downloadable file.
func Attachment(filename, contentType string, body []byte) Response {
	return attachmentResponse{filename: filename, contentType: contentType, body: body}
}

type errorResponse struct {
	err error
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}

// Error hands err to the route's error writer.
func Error(err error) Response {
	return errorResponse{err: err}
}

// wrap adapts h to http.HandlerFunc using onError for failures.
func (a *API) wrap(h handlerFunc, onError errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h(r)
		if resp == nil {
			resp = Error(ErrNilResponse)
		}
		if err := resp.Render(w, r); err != nil {
			info := classifyError(err)
			a.logError(r, err, info)
			onError(w, r, info)
		}
	}
}

// handle wraps an /api route.
func (a *API) handle(h handlerFunc) http.HandlerFunc {
	return a.wrap(h, writeEnvelopeError)
}

// handleFunction wraps a /functions route.
func (a *API) handleFunction(h handlerFunc) http.HandlerFunc {
	return a.wrap(h, writeFlatError)
}

// requireJSON rejects requests whose content type is not JSON.
func requireJSON(r *http.Request) error {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		return ErrUnsupportedMediaType
	}
	return nil
}

// readBody reads at most maxBodyBytes of the request body.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Join(ErrMalformedBody, err)
	}
	return body, nil
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrMalformedBody, err)
	}
	return nil
}
