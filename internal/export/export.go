// SPDX-License-Identifier: MIT

// Package export writes finished campaign sets to disk.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	xglog "github.com/ManuGH/locflow/internal/log"
	"github.com/ManuGH/locflow/internal/domain/workflow/model"
)

// Document is the exported file layout.
type Document struct {
	GeneratedAt time.Time              `json:"generatedAt"`
	VideoID     string                 `json:"videoId,omitempty"`
	Countries   []string               `json:"countries"`
	Source      model.CampaignSource   `json:"source"`
	Analysis    *model.AnalysisResult  `json:"analysis,omitempty"`
	Campaigns   []model.CampaignRecord `json:"campaigns"`
	// Warning carries the user-facing error shown next to fallback data.
	Warning string `json:"warning,omitempty"`
}

// FromState builds a document from a session snapshot.
func FromState(st model.State, now time.Time) Document {
	doc := Document{
		GeneratedAt: now.UTC(),
		Countries:   make([]string, 0, len(st.TargetCountries)),
		Source:      st.CampaignSource,
		Analysis:    st.Analysis,
		Campaigns:   st.Campaigns,
		Warning:     st.Error,
	}
	if st.Video != nil {
		doc.VideoID = st.Video.ID
	}
	for _, c := range st.TargetCountries {
		doc.Countries = append(doc.Countries, c.Code)
	}
	if doc.Campaigns == nil {
		doc.Campaigns = []model.CampaignRecord{}
	}
	return doc
}

// WriteJSON writes doc to path atomically: readers see either the old file
// or the complete new one.
func WriteJSON(ctx context.Context, path string, doc Document) error {
	logger := xglog.FromContext(ctx)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o640))
	if err != nil {
		return fmt.Errorf("create pending export file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending export file")
		}
	}()

	enc := json.NewEncoder(pending)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode campaigns: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace export file: %w", err)
	}

	logger.Info().
		Str(xglog.FieldEvent, "export.written").
		Str("path", path).
		Int("records", len(doc.Campaigns)).
		Msg("campaigns exported")
	return nil
}
