package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adverse-event-server/internal/domain"
)

func TestFieldExtractor_Extract(t *testing.T) {
	extractor := NewFieldExtractor()

	tests := []struct {
		name    string
		text    string
		drug    string
		events  []string
		outcome domain.Outcome
	}{
		{
			name:    "rash with hospitalization",
			text:    "Patient took Aspirin and developed a rash, hospitalized for observation.",
			drug:    "Aspirin",
			events:  []string{"rash"},
			outcome: domain.OutcomeHospitalized,
		},
		{
			name:    "no adverse effects and recovered",
			text:    "Patient took Ibuprofen, no adverse effects noted, fully recovered.",
			drug:    "Ibuprofen",
			events:  []string{},
			outcome: domain.OutcomeRecovered,
		},
		{
			name:    "duplicates are suppressed case-insensitively",
			text:    "Took paracetamol; reported Headache, nausea and headache again.",
			drug:    "Paracetamol",
			events:  []string{"headache", "nausea"},
			outcome: "",
		},
		{
			name:    "negated event is skipped",
			text:    "Started Metformin, denied nausea but reported dizziness.",
			drug:    "Metformin",
			events:  []string{"dizziness"},
			outcome: "",
		},
		{
			name:    "negation spans a short list",
			text:    "no nausea or vomiting after amoxicillin",
			drug:    "Amoxicillin",
			events:  []string{},
			outcome: "",
		},
		{
			name:    "multi-word terms and suffix fallback",
			text:    "Patient on losartan developed chest pain and pain in both legs.",
			drug:    "Losartan",
			events:  []string{"chest pain", "pain"},
			outcome: "",
		},
		{
			name:    "first drug mention wins",
			text:    "Switched from Warfarin to Heparin after bleeding.",
			drug:    "Warfarin",
			events:  []string{"bleeding"},
			outcome: "",
		},
		{
			name:    "spelling variants fold to canonical term",
			text:    "Severe diarrhoea and urticaria reported.",
			drug:    "",
			events:  []string{"diarrhea", "hives"},
			outcome: "",
		},
		{
			name:    "death outranks earlier hospitalization",
			text:    "Patient was hospitalized and later died.",
			drug:    "",
			events:  []string{},
			outcome: domain.OutcomeFatal,
		},
		{
			name:    "life-threatening",
			text:    "Anaphylaxis was life-threatening.",
			drug:    "",
			events:  []string{"anaphylaxis"},
			outcome: domain.OutcomeLifeThreatening,
		},
		{
			name:    "not recovered is ongoing",
			text:    "Fatigue has not recovered yet.",
			drug:    "",
			events:  []string{"fatigue"},
			outcome: domain.OutcomeOngoing,
		},
		{
			name:    "negated hospitalization is ignored",
			text:    "Mild rash, no hospitalization required.",
			drug:    "",
			events:  []string{"rash"},
			outcome: "",
		},
		{
			name:    "short-stem suffix drug",
			text:    "Started Losartan last week, developed dizziness.",
			drug:    "Losartan",
			events:  []string{"dizziness"},
			outcome: "",
		},
		{
			name:    "negation covers a comma list",
			text:    "Patient had no nausea, vomiting or headache.",
			drug:    "",
			events:  []string{},
			outcome: "",
		},
		{
			name:    "negated list ends at the clause",
			text:    "No nausea or vomiting, but developed headache and rash.",
			drug:    "",
			events:  []string{"headache", "rash"},
			outcome: "",
		},
		{
			name:    "negation after the outcome term",
			text:    "Hospitalized overnight with chest pain; death was not reported.",
			drug:    "",
			events:  []string{"chest pain"},
			outcome: domain.OutcomeHospitalized,
		},
		{
			name:    "negation after the event term",
			text:    "Took Ibuprofen. Rash was not observed, fever persists.",
			drug:    "Ibuprofen",
			events:  []string{"fever"},
			outcome: domain.OutcomeOngoing,
		},
		{
			name:    "an unresolved event stays present",
			text:    "The rash is not improving.",
			drug:    "",
			events:  []string{"rash"},
			outcome: "",
		},
		{
			name:    "nothing to extract",
			text:    "Nothing notable.",
			drug:    "",
			events:  []string{},
			outcome: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.Extract(tt.text)
			assert.Equal(t, tt.drug, got.Drug)
			assert.Equal(t, tt.events, got.AdverseEvents)
			assert.Equal(t, tt.outcome, got.Outcome)
		})
	}
}

func TestFieldExtractor_EventsNeverEmptyOrDuplicated(t *testing.T) {
	extractor := NewFieldExtractor()

	got := extractor.Extract("RASH, rash, Rash and rashes with FEVER then fever")

	assert.Equal(t, []string{"rash", "fever"}, got.AdverseEvents)
	for _, e := range got.AdverseEvents {
		assert.NotEmpty(t, e)
	}
}

func TestFieldExtractor_IsDeterministic(t *testing.T) {
	extractor := NewFieldExtractor()
	text := "Took Omeprazole, developed headache, dizziness and nausea; symptoms persist."

	first := extractor.Extract(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, extractor.Extract(text))
	}
	assert.Equal(t, "Omeprazole", first.Drug)
	assert.Equal(t, []string{"headache", "dizziness", "nausea"}, first.AdverseEvents)
	assert.Equal(t, domain.OutcomeOngoing, first.Outcome)
}
