package extractor

import (
	"regexp"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

type subjectRule struct {
	subject string
	pattern *regexp.Regexp
}

func keywords(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + alternatives + `)\b`)
}

// subjectRules is ordered; the first rule that matches wins.
var subjectRules = []subjectRule{
	{domain.SubjectMathematics, keywords(`math|mathematics|maths|further\s*maths`)},
	{domain.SubjectEnglish, keywords(`english|literature\s*in\s*english|use\s*of\s*english`)},
	{domain.SubjectPhysics, keywords(`physics`)},
	{domain.SubjectChemistry, keywords(`chemistry`)},
	{domain.SubjectBiology, keywords(`biology`)},
	{domain.SubjectEconomics, keywords(`economics`)},
	{domain.SubjectGeography, keywords(`geography`)},
	{domain.SubjectHistory, keywords(`history`)},
	{domain.SubjectGovernment, keywords(`government`)},
	{domain.SubjectCommerce, keywords(`commerce`)},
	{domain.SubjectAccounting, keywords(`accounting|accounts|book\s*keeping`)},
	{domain.SubjectAgriculturalScience, keywords(`agricultural\s*science|agric`)},
	{domain.SubjectTechnicalDrawing, keywords(`technical\s*drawing|tech\s*drawing`)},
	{domain.SubjectFoodAndNutrition, keywords(`food\s*and\s*nutrition|nutrition`)},
	{domain.SubjectChristianReligiousKnowledge, keywords(`christian\s*religious\s*knowledge|crk`)},
	{domain.SubjectIslamicReligiousStudies, keywords(`islamic\s*religious\s*studies|irs`)},
	{domain.SubjectCivicEducation, keywords(`civic\s*education`)},
	{domain.SubjectDataProcessing, keywords(`data\s*processing`)},
	{domain.SubjectComputerStudies, keywords(`computer\s*studies`)},
	{domain.SubjectGeneralKnowledge, keywords(`general\s*knowledge|gk|aptitude`)},
}

// InferSubject matches filename and text against the subject table.
// Filenames use separators such as '_' which are word characters, so they
// are replaced with spaces before matching.
func InferSubject(text, filename string) (string, bool) {
	combined := filenameWords(filename) + " " + text
	for _, rule := range subjectRules {
		if rule.pattern.MatchString(combined) {
			return rule.subject, true
		}
	}
	return "", false
}
