package classify

import (
	"regexp"

	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

// TypePatterns pairs a question type with the regexes that select it.
// Evaluation is priority-ordered, first match wins, so more specific
// categories must precede broader ones (grace/waiting before coverage).
type TypePatterns struct {
	Type     model.QuestionType
	Patterns []*regexp.Regexp
}

// QuestionPatterns is the static table driving question classification.
var QuestionPatterns = []TypePatterns{
	{model.TypeGracePeriod, compileAll(
		`grace period`, `premium payment`, `due date`,
	)},
	{model.TypeWaitingPeriod, compileAll(
		`waiting period`, `pre-existing`, `ped`, `coverage.*wait`,
	)},
	{model.TypeCoverage, compileAll(
		`cover`, `coverage`, `what.*cover`, `does.*cover`,
	)},
	{model.TypeMaternity, compileAll(
		`maternity`, `pregnancy`, `childbirth`, `prenatal`,
	)},
	{model.TypeSurgery, compileAll(
		`surgery`, `operation`, `knee surgery`, `cataract`,
	)},
	{model.TypeOrganDonor, compileAll(
		`organ donor`, `donor.*medical`, `organ.*expense`,
	)},
	{model.TypeNCD, compileAll(
		`ncd`, `no claim discount`, `discount.*claim`,
	)},
	{model.TypeHealthCheckup, compileAll(
		`health check`, `preventive`, `checkup`, `health.*check`,
	)},
	{model.TypeHospitalDefinition, compileAll(
		`hospital.*definition`, `what.*hospital`, `define.*hospital`,
	)},
	{model.TypeAyush, compileAll(
		`ayush`, `ayurveda`, `yoga`, `naturopathy`, `unani`,
	)},
	{model.TypeRoomRent, compileAll(
		`room rent`, `icu.*charge`, `daily.*rent`, `room.*limit`,
	)},
}

// ClausePatterns drives clause typing over the same type vocabulary.
// Clause-side patterns are stricter: most demand the numeric payload a
// policy clause of that type carries.
var ClausePatterns = []TypePatterns{
	{model.TypeGracePeriod, compileAll(
		`grace period.*\d+.*days`, `premium.*payment.*\d+.*days`, `due date.*\d+.*days`,
	)},
	{model.TypeWaitingPeriod, compileAll(
		`waiting period.*\d+.*months`, `pre-existing.*\d+.*months`, `ped.*\d+.*months`,
	)},
	{model.TypeCoverage, compileAll(
		`cover.*expenses`, `coverage.*include`, `policy.*cover`,
	)},
	{model.TypeMaternity, compileAll(
		`maternity.*expenses`, `pregnancy.*coverage`, `childbirth.*expenses`,
	)},
	{model.TypeSurgery, compileAll(
		`surgery.*coverage`, `operation.*expenses`, `knee.*surgery`, `cataract.*surgery`,
	)},
	{model.TypeOrganDonor, compileAll(
		`organ.*donor`, `donor.*medical`, `organ.*expenses`,
	)},
	{model.TypeNCD, compileAll(
		`no claim discount`, `ncd.*\d+%`, `discount.*claim`,
	)},
	{model.TypeHealthCheckup, compileAll(
		`health.*check`, `preventive.*health`, `checkup.*expenses`,
	)},
	{model.TypeHospitalDefinition, compileAll(
		`hospital.*definition`, `institution.*\d+.*beds`, `define.*hospital`,
	)},
	{model.TypeAyush, compileAll(
		`ayush.*treatment`, `ayurveda.*coverage`, `yoga.*naturopathy`,
	)},
	{model.TypeRoomRent, compileAll(
		`room.*rent.*\d+%`, `icu.*charges.*\d+%`, `daily.*rent.*limit`,
	)},
}

// questionWeights is the fixed type-to-weight lookup. The "default" entry
// covers unknown types explicitly.
var questionWeights = map[model.QuestionType]float64{
	model.TypeGracePeriod:        1.0,
	model.TypeWaitingPeriod:      1.5,
	model.TypeCoverage:           2.0,
	model.TypeMaternity:          2.0,
	model.TypeSurgery:            1.5,
	model.TypeOrganDonor:         2.0,
	model.TypeNCD:                1.0,
	model.TypeHealthCheckup:      1.0,
	model.TypeHospitalDefinition: 1.0,
	model.TypeAyush:              1.5,
	model.TypeRoomRent:           1.5,
	model.TypeDefault:            1.0,
}

// stopwords dropped during term extraction
var stopwords = map[string]bool{
	"what": true, "is": true, "the": true, "does": true, "do": true,
	"are": true, "and": true, "or": true, "for": true, "in": true,
	"on": true, "at": true, "to": true, "of": true, "with": true, "by": true,
}

var wordRe = regexp.MustCompile(`\b\w+\b`)

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// MatchType returns the first type whose pattern matches the lowercased
// text, or TypeDefault when nothing matches.
func MatchType(table []TypePatterns, lowered string) (model.QuestionType, *regexp.Regexp) {
	for _, entry := range table {
		for _, re := range entry.Patterns {
			if re.MatchString(lowered) {
				return entry.Type, re
			}
		}
	}
	return model.TypeDefault, nil
}

// WeightFor resolves a question type to its scoring weight, falling back
// to the explicit default entry.
func WeightFor(t model.QuestionType) float64 {
	if w, ok := questionWeights[t]; ok {
		return w
	}
	return questionWeights[model.TypeDefault]
}
