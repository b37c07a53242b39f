// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package i18n renders user-facing workflow messages. Turkish is the
// default display language.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a user-facing message.
type Key string

const (
	UploadTooLarge     Key = "upload.too_large"
	UploadTimeout      Key = "upload.timeout"
	ProcessingTimeout  Key = "processing.timeout"
	BackendUnavailable Key = "backend.unavailable"
	GenericFailure     Key = "generic.failure"
	CampaignFallback   Key = "campaign.fallback"
	NoCountrySelected  Key = "input.no_country"
	NoVideo            Key = "input.no_video"
	NotComplete        Key = "localization.not_complete"
)

// Default is used for unknown or empty language settings.
var Default = language.Turkish

var supported = []language.Tag{language.Turkish, language.English}

var entries = map[language.Tag]map[Key]string{
	language.Turkish: {
		UploadTooLarge:     "Dosya boyutu çok büyük. Maksimum %dMB yükleyebilirsiniz.",
		UploadTimeout:      "Yükleme zaman aşımına uğradı. Lütfen tekrar deneyin.",
		ProcessingTimeout:  "Video işleme zaman aşımına uğradı. Lütfen daha sonra tekrar deneyin.",
		BackendUnavailable: "Sunucuya ulaşılamıyor. Lütfen daha sonra tekrar deneyin.",
		GenericFailure:     "Bir hata oluştu: %s",
		CampaignFallback:   "Kampanya oluşturulamadı, örnek kampanya verileri gösteriliyor.",
		NoCountrySelected:  "Lütfen bir hedef ülke seçin.",
		NoVideo:            "Lütfen bir video dosyası seçin.",
		NotComplete:        "Yerelleştirme henüz tamamlanmadı.",
	},
	language.English: {
		UploadTooLarge:     "The file is too large. You can upload at most %dMB.",
		UploadTimeout:      "The upload timed out. Please try again.",
		ProcessingTimeout:  "Video processing timed out. Please try again later.",
		BackendUnavailable: "The server cannot be reached. Please try again later.",
		GenericFailure:     "An error occurred: %s",
		CampaignFallback:   "Campaigns could not be generated; showing sample campaign data.",
		NoCountrySelected:  "Please select a target country.",
		NoVideo:            "Please choose a video file.",
		NotComplete:        "Localization is not complete yet.",
	},
}

var (
	cat     = buildCatalog()
	matcher = language.NewMatcher(supported)
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(Default))
	for tag, msgs := range entries {
		for key, msg := range msgs {
			_ = b.SetString(tag, string(key), msg)
		}
	}
	return b
}

// Match resolves a configured language such as "en-US" to a supported tag.
func Match(lang string) language.Tag {
	if lang == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return supported[idx]
}

// Printer renders messages in one language.
type Printer struct {
	p *message.Printer
}

// NewPrinter returns a printer for lang, falling back to Turkish.
func NewPrinter(lang string) *Printer {
	return &Printer{p: message.NewPrinter(Match(lang), message.Catalog(cat))}
}

// Sprintf renders key with args.
func (p *Printer) Sprintf(key Key, args ...any) string {
	return p.p.Sprintf(string(key), args...)
}
