// Package translation provides the Translator backends used to re-render
// report fields in another language, and a caching decorator around them.
package translation

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// maxPhraseWords bounds the n-gram length tried against the glossary
const maxPhraseWords = 4

// glossaries maps a target language to English term translations. Keys are lower case.
var glossaries = map[string]map[string]string{
	"fr": {
		"headache": "maux de tête", "nausea": "nausées", "vomiting": "vomissements",
		"pain": "douleur", "rash": "éruption cutanée", "fever": "fièvre", "fatigue": "fatigue",
		"dizziness": "vertiges", "insomnia": "insomnie", "diarrhea": "diarrhée",
		"constipation": "constipation", "hives": "urticaire", "itching": "démangeaisons",
		"swelling": "gonflement", "anaphylaxis": "anaphylaxie",
		"shortness of breath": "essoufflement", "chest pain": "douleur thoracique",
		"abdominal pain": "douleur abdominale", "stomach pain": "maux d'estomac",
		"muscle pain": "douleur musculaire", "joint pain": "douleur articulaire",
		"palpitations": "palpitations", "seizure": "convulsions", "drowsiness": "somnolence",
		"confusion": "confusion", "bleeding": "saignement", "jaundice": "jaunisse",
		"hypotension": "hypotension", "hypertension": "hypertension", "tachycardia": "tachycardie",
		"cough": "toux", "blurred vision": "vision trouble", "dry mouth": "bouche sèche",
		"loss of appetite": "perte d'appétit", "tremor": "tremblements", "anxiety": "anxiété",
		"hair loss": "perte de cheveux", "liver injury": "lésion hépatique",
		"kidney injury": "lésion rénale", "angioedema": "angio-œdème",
		"wheezing": "respiration sifflante", "chills": "frissons", "sweating": "transpiration",
		"weakness": "faiblesse",
		"fatal": "décès", "life-threatening": "potentiellement mortel", "hospitalized": "hospitalisé",
		"ongoing": "en cours", "recovered": "rétabli",
		"aspirin": "Aspirine", "paracetamol": "Paracétamol", "ibuprofen": "Ibuprofène",
		"metformin": "Metformine", "amoxicillin": "Amoxicilline", "codeine": "Codéine",
		"acetaminophen": "Acétaminophène",
		"and": "et", "with": "avec", "severe": "sévère", "mild": "léger", "moderate": "modéré",
	},
	"sw": {
		"headache": "maumivu ya kichwa", "nausea": "kichefuchefu", "vomiting": "kutapika",
		"pain": "maumivu", "rash": "vipele", "fever": "homa", "fatigue": "uchovu",
		"dizziness": "kizunguzungu", "insomnia": "kukosa usingizi", "diarrhea": "kuhara",
		"constipation": "kuvimbiwa", "hives": "mabaka ya mzio", "itching": "kuwashwa",
		"swelling": "uvimbe", "anaphylaxis": "mzio mkali",
		"shortness of breath": "kushindwa kupumua vizuri", "chest pain": "maumivu ya kifua",
		"abdominal pain": "maumivu ya tumbo", "stomach pain": "maumivu ya tumbo",
		"muscle pain": "maumivu ya misuli", "joint pain": "maumivu ya viungo",
		"palpitations": "mapigo ya moyo ya haraka", "seizure": "degedege",
		"drowsiness": "kusinzia", "confusion": "kuchanganyikiwa", "bleeding": "kutokwa na damu",
		"jaundice": "homa ya manjano", "hypotension": "shinikizo la chini la damu",
		"hypertension": "shinikizo la juu la damu", "tachycardia": "mapigo ya moyo kwenda kasi",
		"cough": "kikohozi", "blurred vision": "kuona ukungu", "dry mouth": "kinywa kikavu",
		"loss of appetite": "kukosa hamu ya kula", "tremor": "kutetemeka", "anxiety": "wasiwasi",
		"hair loss": "kupoteza nywele", "liver injury": "jeraha la ini",
		"kidney injury": "jeraha la figo", "wheezing": "kupumua kwa sauti",
		"chills": "baridi kali", "sweating": "kutokwa na jasho", "weakness": "udhaifu",
		"fatal": "kifo", "life-threatening": "hatari kwa maisha", "hospitalized": "amelazwa hospitalini",
		"ongoing": "inaendelea", "recovered": "amepona",
		"and": "na", "with": "pamoja na", "severe": "kali", "mild": "kidogo", "moderate": "wastani",
	},
}

// GlossaryTranslator translates medical terms offline using built-in term
// lists. Words it has no entry for are kept as written, so drug names and
// other proper nouns pass through unchanged.
type GlossaryTranslator struct {
	terms map[string]map[string]string
}

// NewGlossaryTranslator creates a translator over the built-in glossaries
func NewGlossaryTranslator() *GlossaryTranslator {
	return &GlossaryTranslator{terms: glossaries}
}

// Name identifies the backend
func (g *GlossaryTranslator) Name() string {
	return "glossary"
}

// Languages returns the target languages with a glossary
func (g *GlossaryTranslator) Languages() []string {
	langs := make([]string, 0, len(g.terms))
	for lang := range g.terms {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Translate replaces known phrases, longest first, and keeps everything else
func (g *GlossaryTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if sourceLang != "" && !strings.EqualFold(sourceLang, "en") {
		return "", fmt.Errorf("glossary translates from English only, got source %q", sourceLang)
	}
	terms, ok := g.terms[strings.ToLower(targetLang)]
	if !ok {
		return "", fmt.Errorf("no glossary for language %q", targetLang)
	}

	if t, ok := terms[strings.ToLower(strings.TrimSpace(text))]; ok {
		return t, nil
	}

	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		n, replacement := longestPhrase(terms, words[i:])
		if n == 0 {
			out = append(out, words[i])
			i++
			continue
		}
		// keep punctuation trailing the last word of the phrase
		out = append(out, replacement+trailingPunct(words[i+n-1]))
		i += n
	}
	return strings.Join(out, " "), nil
}

func longestPhrase(terms map[string]string, words []string) (int, string) {
	limit := maxPhraseWords
	if len(words) < limit {
		limit = len(words)
	}
	for n := limit; n > 0; n-- {
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			parts[i] = strings.ToLower(strings.TrimRight(words[i], ".,;:!?"))
		}
		if t, ok := terms[strings.Join(parts, " ")]; ok {
			return n, t
		}
	}
	return 0, ""
}

func trailingPunct(word string) string {
	return word[len(strings.TrimRight(word, ".,;:!?")):]
}
