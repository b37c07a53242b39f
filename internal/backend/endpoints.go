// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
)

var _ ports.Backend = (*Client)(nil)

// Backend routes.
const (
	pathUpload        = "/api/videos/upload"
	pathTranscribe    = "/api/videos/%s/transcribe"
	pathLocalize      = "/api/localize/direct"
	pathLocalizeState = "/api/localize/status/%s"
	pathAnalyze       = "/api/analysis/culture"
	pathCampaigns     = "/api/campaigns/generate"
	pathCountries     = "/api/countries"
)

// UploadVideo streams file as multipart/form-data. Files larger than the
// configured maximum are rejected before any bytes are sent.
func (c *Client) UploadVideo(ctx context.Context, file ports.VideoFile, description string) (ports.UploadResult, error) {
	if file.Size > c.maxUpload {
		return ports.UploadResult{}, &APIError{
			Sentinel:  ErrTooLarge,
			Operation: "upload",
			Body:      fmt.Sprintf("%d bytes exceeds limit of %d", file.Size, c.maxUpload),
		}
	}
	if file.Body == nil {
		return ports.UploadResult{}, &APIError{Sentinel: ErrRejected, Operation: "upload", Body: "empty file"}
	}

	req := request{
		method:  http.MethodPost,
		path:    pathUpload,
		timeout: c.uploadTimeout,
		stream: func() (io.Reader, string) {
			return multipartBody(file, description, c.maxUpload)
		},
	}

	var res ports.UploadResult
	if err := c.call(ctx, "upload", req, &res); err != nil {
		return ports.UploadResult{}, err
	}
	if res.VideoID == "" {
		return ports.UploadResult{}, &APIError{Sentinel: ErrBadResponse, Operation: "upload", Body: "missing video_id"}
	}
	return res, nil
}

// multipartBody pipes the form through a goroutine so the file is never
// buffered in memory. Reading more than limit bytes aborts with ErrTooLarge.
func multipartBody(file ports.VideoFile, description string, limit int64) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeMultipart(mw, file, description, limit)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}

func writeMultipart(mw *multipart.Writer, file ports.VideoFile, description string, limit int64) error {
	if description != "" {
		if err := mw.WriteField("description", description); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", file.Filename)
	if err != nil {
		return err
	}
	n, err := io.Copy(part, io.LimitReader(file.Body, limit+1))
	if err != nil {
		return err
	}
	if n > limit {
		return ErrTooLarge
	}
	return nil
}

// TranscribeVideo requests transcription with an optional language hint.
func (c *Client) TranscribeVideo(ctx context.Context, videoID, languageHint string) error {
	payload := map[string]string{}
	if languageHint != "" {
		payload["language_hint"] = languageHint
	}
	req, err := jsonRequest(http.MethodPost, fmt.Sprintf(pathTranscribe, url.PathEscape(videoID)), payload, true)
	if err != nil {
		return err
	}
	req.endpoint = "/api/videos/{id}/transcribe"
	return c.call(ctx, "transcribe", req, nil)
}

// DirectLocalize dispatches localization for one country. It is not retried
// because a second dispatch would start a second job.
func (c *Client) DirectLocalize(ctx context.Context, in ports.LocalizeRequest) (ports.LocalizeResult, error) {
	req, err := jsonRequest(http.MethodPost, pathLocalize, in, false)
	if err != nil {
		return ports.LocalizeResult{}, err
	}
	var res ports.LocalizeResult
	if err := c.call(ctx, "localize", req, &res); err != nil {
		return ports.LocalizeResult{}, err
	}
	return res, nil
}

// LocalizationStatus fetches the state of a localization job.
func (c *Client) LocalizationStatus(ctx context.Context, jobID string) (ports.LocalizeResult, error) {
	req, err := jsonRequest(http.MethodGet, fmt.Sprintf(pathLocalizeState, url.PathEscape(jobID)), nil, true)
	if err != nil {
		return ports.LocalizeResult{}, err
	}
	req.endpoint = "/api/localize/status/{job}"
	var res ports.LocalizeResult
	if err := c.call(ctx, "localization_status", req, &res); err != nil {
		return ports.LocalizeResult{}, err
	}
	return res, nil
}

// AnalyzeCulture scores the video for the given countries.
func (c *Client) AnalyzeCulture(ctx context.Context, in ports.AnalyzeRequest) (ports.AnalyzeResult, error) {
	req, err := jsonRequest(http.MethodPost, pathAnalyze, in, true)
	if err != nil {
		return ports.AnalyzeResult{}, err
	}
	var res ports.AnalyzeResult
	if err := c.call(ctx, "analyze", req, &res); err != nil {
		return ports.AnalyzeResult{}, err
	}
	return res, nil
}

// GenerateCampaigns returns the raw generation response.
func (c *Client) GenerateCampaigns(ctx context.Context, in ports.CampaignRequest) (json.RawMessage, error) {
	req, err := jsonRequest(http.MethodPost, pathCampaigns, in, false)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.call(ctx, "generate_campaigns", req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetCountries lists the backend's supported countries.
func (c *Client) GetCountries(ctx context.Context, groupByLanguage bool) ([]ports.CatalogEntry, error) {
	req, err := jsonRequest(http.MethodGet, pathCountries, nil, true)
	if err != nil {
		return nil, err
	}
	req.query = url.Values{"group_by_language": {strconv.FormatBool(groupByLanguage)}}

	var res struct {
		Countries []ports.CatalogEntry `json:"countries"`
	}
	if err := c.call(ctx, "countries", req, &res); err != nil {
		return nil, err
	}
	return res.Countries, nil
}
