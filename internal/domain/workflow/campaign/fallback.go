// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package campaign

import (
	"fmt"
	"strings"

	"github.com/ManuGH/locflow/internal/domain/workflow/model"
)

// template is pre-written copy for one country.
type template struct {
	AdText       string
	Headline     string
	AgeRange     string
	Interests    []string
	Demographics string
	Budget       float64
	Currency     string
	CallToAction string
	Hashtags     []string
	Variant      model.Variant
}

// defaultTemplate is used for any country without its own entry.
const defaultTemplate = "US"

var templates = map[string]template{
	"US": {
		AdText:       "Discover the story everyone is talking about. Watch now!",
		Headline:     "Made for you",
		AgeRange:     "18-44",
		Interests:    []string{"Entertainment", "Technology", "Lifestyle"},
		Demographics: "Urban professionals, students",
		Budget:       50,
		Currency:     "USD",
		CallToAction: "Learn More",
		Hashtags:     []string{"#MustWatch", "#NewRelease"},
		Variant:      model.Variant{AdText: "Your next favorite video is here.", Headline: "Watch today"},
	},
	"TR": {
		AdText:       "Herkesin konuştuğu hikayeyi keşfedin. Hemen izleyin!",
		Headline:     "Sizin için hazırlandı",
		AgeRange:     "18-44",
		Interests:    []string{"Eğlence", "Teknoloji", "Aile"},
		Demographics: "Şehirli gençler, aileler",
		Budget:       1500,
		Currency:     "TRY",
		CallToAction: "Daha Fazla Bilgi",
		Hashtags:     []string{"#Keşfet", "#Yeni"},
		Variant:      model.Variant{AdText: "Yeni favori videonuz burada.", Headline: "Bugün izleyin"},
	},
	"DE": {
		AdText:       "Entdecken Sie die Geschichte, über die alle sprechen. Jetzt ansehen!",
		Headline:     "Für Sie gemacht",
		AgeRange:     "25-54",
		Interests:    []string{"Technik", "Reisen", "Qualität"},
		Demographics: "Berufstätige, Familien",
		Budget:       45,
		Currency:     "EUR",
		CallToAction: "Mehr erfahren",
		Hashtags:     []string{"#Neu", "#Entdecken"},
		Variant:      model.Variant{AdText: "Ihr neues Lieblingsvideo ist da.", Headline: "Heute ansehen"},
	},
	"FR": {
		AdText:       "Découvrez l'histoire dont tout le monde parle. Regardez maintenant !",
		Headline:     "Fait pour vous",
		AgeRange:     "18-49",
		Interests:    []string{"Culture", "Mode", "Cuisine"},
		Demographics: "Jeunes actifs urbains",
		Budget:       45,
		Currency:     "EUR",
		CallToAction: "En savoir plus",
		Hashtags:     []string{"#Nouveauté", "#ADécouvrir"},
		Variant:      model.Variant{AdText: "Votre prochaine vidéo préférée est là.", Headline: "À voir aujourd'hui"},
	},
	"ES": {
		AdText:       "Descubre la historia de la que todos hablan. ¡Míralo ya!",
		Headline:     "Hecho para ti",
		AgeRange:     "18-44",
		Interests:    []string{"Deportes", "Música", "Viajes"},
		Demographics: "Jóvenes urbanos, familias",
		Budget:       40,
		Currency:     "EUR",
		CallToAction: "Más información",
		Hashtags:     []string{"#Novedad", "#Descubre"},
		Variant:      model.Variant{AdText: "Tu próximo vídeo favorito está aquí.", Headline: "Míralo hoy"},
	},
	"GB": {
		AdText:       "Discover the story everyone's talking about. Watch it now!",
		Headline:     "Made for you",
		AgeRange:     "18-44",
		Interests:    []string{"Entertainment", "Football", "Music"},
		Demographics: "Urban professionals, students",
		Budget:       40,
		Currency:     "GBP",
		CallToAction: "Learn More",
		Hashtags:     []string{"#MustWatch", "#NewRelease"},
		Variant:      model.Variant{AdText: "Your next favourite video is here.", Headline: "Watch today"},
	},
	"JP": {
		AdText:       "話題のストーリーをチェック。今すぐ視聴！",
		Headline:     "あなたのために",
		AgeRange:     "20-49",
		Interests:    []string{"アニメ", "テクノロジー", "グルメ"},
		Demographics: "都市部の社会人、学生",
		Budget:       6000,
		Currency:     "JPY",
		CallToAction: "詳しくはこちら",
		Hashtags:     []string{"#新作", "#話題"},
		Variant:      model.Variant{AdText: "次のお気に入り動画はここに。", Headline: "今日見る"},
	},
	"BR": {
		AdText:       "Descubra a história de que todos estão falando. Assista agora!",
		Headline:     "Feito para você",
		AgeRange:     "18-44",
		Interests:    []string{"Futebol", "Música", "Humor"},
		Demographics: "Jovens urbanos, famílias",
		Budget:       200,
		Currency:     "BRL",
		CallToAction: "Saiba mais",
		Hashtags:     []string{"#Novidade", "#Descubra"},
		Variant:      model.Variant{AdText: "Seu próximo vídeo favorito está aqui.", Headline: "Assista hoje"},
	},
}

type platformProfile struct {
	AspectRatio string
	Medium      string
	PolicyNote  string
	Experiment  string
}

var platformProfiles = map[model.Platform]platformProfile{
	model.PlatformFacebook: {
		AspectRatio: "1:1",
		Medium:      "paid_social",
		PolicyNote:  "Metin görselin %20'sinden azını kaplamalı",
		Experiment:  "Başlık A/B testi",
	},
	model.PlatformGoogle: {
		AspectRatio: "16:9",
		Medium:      "cpc",
		PolicyNote:  "Başlık 30 karakteri geçmemeli",
		Experiment:  "Anahtar kelime eşleme testi",
	},
	model.PlatformTikTok: {
		AspectRatio: "9:16",
		Medium:      "paid_social",
		PolicyNote:  "İlk 3 saniyede marka görünür olmalı",
		Experiment:  "Kanca (hook) varyasyon testi",
	},
}

// HasTemplate reports whether code has a dedicated fallback template.
func HasTemplate(code string) bool {
	_, ok := templates[strings.ToUpper(code)]
	return ok
}

// GenerateFallback returns one record per country and platform, in country
// then platform order. Output depends only on the input.
func GenerateFallback(countries []model.Country) []model.CampaignRecord {
	out := make([]model.CampaignRecord, 0, len(countries)*len(model.Platforms))
	for _, c := range countries {
		tpl, ok := templates[strings.ToUpper(c.Code)]
		if !ok {
			tpl = templates[defaultTemplate]
		}
		for _, p := range model.Platforms {
			out = append(out, fallbackRecord(c, p, tpl))
		}
	}
	return out
}

func fallbackRecord(c model.Country, p model.Platform, tpl template) model.CampaignRecord {
	prof := platformProfiles[p]
	name := c.Name
	if name == "" {
		name = c.Code
	}
	return model.CampaignRecord{
		Country:     c.Code,
		CountryName: name,
		Platform:    p,
		AdText:      tpl.AdText,
		Targeting: model.Targeting{
			AgeRange:     tpl.AgeRange,
			Interests:    append([]string(nil), tpl.Interests...),
			Demographics: tpl.Demographics,
			Location:     name,
		},
		Budget:       model.Budget{Suggested: tpl.Budget, Currency: tpl.Currency},
		CallToAction: tpl.CallToAction,
		Creative: model.Creative{
			AspectRatio: prof.AspectRatio,
			Headline:    tpl.Headline,
			Hashtags:    append([]string(nil), tpl.Hashtags...),
		},
		PolicyNotes: []string{prof.PolicyNote},
		Measurement: model.Measurement{
			UTM: map[string]string{
				"utm_source":   string(p),
				"utm_medium":   prof.Medium,
				"utm_campaign": fmt.Sprintf("locflow_%s", strings.ToLower(c.Code)),
			},
			Experiments: []string{prof.Experiment},
		},
		Variants: []model.Variant{tpl.Variant},
	}
}
