package notices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/finscout/finscout/internal/research"
)

// SourcePortal is the source tag for the JSON portal API.
const SourcePortal = "notice_b"

// PortalSource fetches notices from a support-program portal's JSON
// search API. The portal keeps its own field vocabulary (pblancNm and
// friends); those names are carried through raw records untouched.
type PortalSource struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewPortalSource builds a PortalSource. apiKey may be empty when the
// portal allows anonymous queries.
func NewPortalSource(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *PortalSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortalSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Name returns the source tag.
func (s *PortalSource) Name() string { return SourcePortal }

type portalResponse struct {
	Items []portalItem `json:"items"`
}

type portalItem struct {
	PblancNm   string `json:"pblancNm"`
	PblancURL  string `json:"pblancUrl"`
	ReqstEndDe string `json:"reqstEndDe"`
	JrsdInstt  string `json:"jrsdInsttNm"`
}

// FetchNotices queries the portal search endpoint.
func (s *PortalSource) FetchNotices(ctx context.Context, query string, topK int) ([]research.RawNotice, error) {
	params := url.Values{}
	params.Set("searchKrwd", query)
	params.Set("pageUnit", fmt.Sprintf("%d", topK))
	if s.apiKey != "" {
		params.Set("crtfcKey", s.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build portal request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portal fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portal fetch: unexpected status %d", resp.StatusCode)
	}

	var parsed portalResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode portal response: %w", err)
	}

	out := make([]research.RawNotice, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if len(out) >= topK {
			break
		}
		out = append(out, research.RawNotice{
			Source: SourcePortal,
			Fields: map[string]string{
				"pblancNm":    item.PblancNm,
				"pblancUrl":   item.PblancURL,
				"reqstEndDe":  item.ReqstEndDe,
				"jrsdInsttNm": item.JrsdInstt,
			},
		})
	}
	s.logger.Debug("portal notices fetched", zap.String("query", query), zap.Int("count", len(out)))
	return out, nil
}
