package service

import (
	"regexp"
	"sort"
	"strings"

	"github.com/adverse-event-server/internal/domain"
)

// FieldExtractor pulls the drug, adverse events and outcome out of a free-text
// narrative. It is a pure function of its input and the static vocabularies.
type FieldExtractor struct {
	drugPattern   *regexp.Regexp
	suffixPattern *regexp.Regexp
	drugNames     map[string]string
	eventPattern  *regexp.Regexp
	eventAliases  map[string]string
	outcomeRules  []outcomeRule
}

type outcomeRule struct {
	outcome domain.Outcome
	pattern *regexp.Regexp
}

// knownDrugs maps the lower-case spelling to the canonical name
var knownDrugs = []string{
	"Ibuprofen", "Paracetamol", "Acetaminophen", "Aspirin", "Metformin", "Amoxicillin",
	"Naproxen", "Diclofenac", "Codeine", "Tramadol", "Morphine", "Warfarin", "Heparin",
	"Clopidogrel", "Lisinopril", "Amlodipine", "Atorvastatin", "Simvastatin", "Omeprazole",
	"Lansoprazole", "Ciprofloxacin", "Doxycycline", "Azithromycin", "Penicillin",
	"Cephalexin", "Prednisone", "Insulin", "Levothyroxine", "Sertraline", "Fluoxetine",
	"Carbamazepine", "Phenytoin", "Allopurinol", "Methotrexate", "Chloroquine",
	"Artemether", "Lumefantrine", "Quinine", "Efavirenz", "Tenofovir", "Isoniazid", "Rifampicin",
}

// drugSuffixes catch medication names that are not in knownDrugs
var drugSuffixes = []string{
	"cillin", "mycin", "azole", "statin", "olol", "pril", "sartan", "dipine", "floxacin",
	"cycline", "tinib", "mab", "vir", "profen", "formin", "oxetine", "triptan", "semide",
}

// knownEvents are the canonical symptom and condition terms
var knownEvents = []string{
	"headache", "nausea", "vomiting", "pain", "rash", "fever", "fatigue", "dizziness",
	"insomnia", "diarrhea", "constipation", "hives", "itching", "swelling", "anaphylaxis",
	"shortness of breath", "chest pain", "abdominal pain", "stomach pain", "muscle pain",
	"joint pain", "palpitations", "seizure", "drowsiness", "confusion", "bleeding",
	"jaundice", "hypotension", "hypertension", "tachycardia", "cough", "blurred vision",
	"dry mouth", "loss of appetite", "tremor", "anxiety", "hair loss", "liver injury",
	"kidney injury", "angioedema", "wheezing", "chills", "sweating", "weakness",
}

// eventAliases fold spelling variants onto a canonical term
var eventAliases = map[string]string{
	"diarrhoea":      "diarrhea",
	"itchiness":      "itching",
	"itchy skin":     "itching",
	"urticaria":      "hives",
	"breathlessness": "shortness of breath",
	"seizures":       "seizure",
	"headaches":      "headache",
	"rashes":         "rash",
	"dizzy":          "dizziness",
	"vomited":        "vomiting",
	"tired":          "fatigue",
	"tiredness":      "fatigue",
}

// Outcome triggers in priority order; the first rule with an un-negated match wins.
var outcomeTriggers = []struct {
	outcome  domain.Outcome
	triggers []string
}{
	{domain.OutcomeFatal, []string{`died`, `death`, `dead`, `fatal(?:ly)?`, `deceased`, `passed away`}},
	{domain.OutcomeLifeThreatening, []string{`life[- ]threatening`, `intubated`, `cardiac arrest`, `resuscitated`}},
	{domain.OutcomeHospitalized, []string{`hospitali[sz](?:ed|ation)`, `admitted to (?:the )?(?:hospital|ward|icu)`, `emergency (?:room|department)`}},
	{domain.OutcomeOngoing, []string{`ongoing`, `continuing`, `persist(?:s|ing|ent)?`, `unresolved`, `not (?:yet )?recovered`, `still (?:has|having|experiencing)`}},
	{domain.OutcomeRecovered, []string{`recovered`, `recovering`, `recovery`, `improved`, `resolved`}},
}

var (
	negationCues = map[string]bool{
		"no": true, "not": true, "denies": true, "denied": true, "without": true,
		"never": true, "negative": true, "nor": true,
	}
	// clause boundaries stop the backwards negation scan
	clauseBreakWords = map[string]bool{
		"but": true, "however": true, "although": true, "though": true, "then": true, "later": true,
	}
	wordPattern = regexp.MustCompile(`[A-Za-z']+|[.;:!?,]`)
	// a negation right after the term: "death was not reported"
	trailingNegation = regexp.MustCompile(`(?i)^\s+(?:was|were|is|are|has been|have been|had been)\s+(?:not (?:reported|observed|noted|seen|present|found|confirmed|required|needed)|denied|absent|ruled out)\b`)
	// what may sit between two items of one list: "no nausea, vomiting or headache"
	listJoiner = regexp.MustCompile(`(?i)^\s*(?:,\s*)?(?:(?:and|or|nor)\s+)?$`)
)

// negationWindow is how many words before a match are checked for a negation cue
const negationWindow = 4

// NewFieldExtractor builds an extractor over the built-in vocabularies
func NewFieldExtractor() *FieldExtractor {
	drugNames := make(map[string]string, len(knownDrugs))
	for _, d := range knownDrugs {
		drugNames[strings.ToLower(d)] = d
	}

	eventTerms := append([]string{}, knownEvents...)
	for alias := range eventAliases {
		eventTerms = append(eventTerms, alias)
	}

	rules := make([]outcomeRule, 0, len(outcomeTriggers))
	for _, ot := range outcomeTriggers {
		rules = append(rules, outcomeRule{
			outcome: ot.outcome,
			pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(ot.triggers, "|") + `)\b`),
		})
	}

	return &FieldExtractor{
		drugPattern:   alternation(knownDrugs),
		suffixPattern: regexp.MustCompile(`(?i)\b[a-z]{2,}(?:` + strings.Join(drugSuffixes, "|") + `)\b`),
		drugNames:     drugNames,
		eventPattern:  alternation(eventTerms),
		eventAliases:  eventAliases,
		outcomeRules:  rules,
	}
}

// alternation compiles a case-insensitive whole-word pattern matching any of
// terms, longest first so multi-word terms win over their parts.
func alternation(terms []string) *regexp.Regexp {
	sorted := append([]string{}, terms...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, t := range sorted {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Extract returns the fields found in text. Missing signals are left at their
// zero value; absence is never an error.
func (e *FieldExtractor) Extract(text string) domain.ExtractedFields {
	return domain.ExtractedFields{
		Drug:          e.extractDrug(text),
		AdverseEvents: e.extractEvents(text),
		Outcome:       e.extractOutcome(text),
	}
}

// extractDrug returns the candidate that occurs first in the text
func (e *FieldExtractor) extractDrug(text string) string {
	best, bestPos := "", -1

	if loc := e.drugPattern.FindStringIndex(text); loc != nil {
		best = e.drugNames[strings.ToLower(text[loc[0]:loc[1]])]
		bestPos = loc[0]
	}
	if loc := e.suffixPattern.FindStringIndex(text); loc != nil && (bestPos < 0 || loc[0] < bestPos) {
		word := text[loc[0]:loc[1]]
		if canonical, ok := e.drugNames[strings.ToLower(word)]; ok {
			best = canonical
		} else {
			best = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return best
}

// extractEvents returns the distinct, non-negated event terms in order of first mention
func (e *FieldExtractor) extractEvents(text string) []string {
	events := []string{}
	seen := make(map[string]bool)
	prevEnd, prevNegated := -1, false

	for _, loc := range e.eventPattern.FindAllStringIndex(text, -1) {
		negated := isNegated(text[:loc[0]]) || negatedAfter(text[loc[1]:])
		// a negation covers the rest of the list it opens
		if !negated && prevNegated && listJoiner.MatchString(text[prevEnd:loc[0]]) {
			negated = true
		}
		prevEnd, prevNegated = loc[1], negated
		if negated {
			continue
		}
		term := strings.ToLower(text[loc[0]:loc[1]])
		if canonical, ok := e.eventAliases[term]; ok {
			term = canonical
		}
		if seen[term] {
			continue
		}
		seen[term] = true
		events = append(events, term)
	}
	return events
}

// extractOutcome applies the outcome rules in priority order
func (e *FieldExtractor) extractOutcome(text string) domain.Outcome {
	for _, rule := range e.outcomeRules {
		for _, loc := range rule.pattern.FindAllStringIndex(text, -1) {
			if !isNegated(text[:loc[0]]) && !negatedAfter(text[loc[1]:]) {
				return rule.outcome
			}
		}
	}
	return ""
}

// isNegated scans backwards from the end of prefix for a negation cue within
// the same clause.
func isNegated(prefix string) bool {
	tokens := wordPattern.FindAllString(prefix, -1)
	words := 0
	for i := len(tokens) - 1; i >= 0 && words < negationWindow; i-- {
		tok := strings.ToLower(tokens[i])
		if strings.ContainsAny(tok, ".;:!?,") || clauseBreakWords[tok] {
			return false
		}
		if negationCues[tok] {
			return true
		}
		words++
	}
	return false
}

// negatedAfter reports whether the words following a match deny it
func negatedAfter(suffix string) bool {
	return trailingNegation.MatchString(suffix)
}
