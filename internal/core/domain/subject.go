package domain

// UnknownSubject is stored when no subject could be inferred.
const UnknownSubject = "unknown"

// Subject identifiers in the closed vocabulary, in inference precedence order.
const (
	SubjectMathematics                 = "mathematics"
	SubjectEnglish                     = "english"
	SubjectPhysics                     = "physics"
	SubjectChemistry                   = "chemistry"
	SubjectBiology                     = "biology"
	SubjectEconomics                   = "economics"
	SubjectGeography                   = "geography"
	SubjectHistory                     = "history"
	SubjectGovernment                  = "government"
	SubjectCommerce                    = "commerce"
	SubjectAccounting                  = "accounting"
	SubjectAgriculturalScience         = "agricultural_science"
	SubjectTechnicalDrawing            = "technical_drawing"
	SubjectFoodAndNutrition            = "food_and_nutrition"
	SubjectChristianReligiousKnowledge = "christian_religious_knowledge"
	SubjectIslamicReligiousStudies     = "islamic_religious_studies"
	SubjectCivicEducation              = "civic_education"
	SubjectDataProcessing              = "data_processing"
	SubjectComputerStudies             = "computer_studies"
	SubjectGeneralKnowledge            = "general_knowledge"
)

// Subjects returns the closed subject vocabulary in precedence order.
func Subjects() []string {
	return []string{
		SubjectMathematics,
		SubjectEnglish,
		SubjectPhysics,
		SubjectChemistry,
		SubjectBiology,
		SubjectEconomics,
		SubjectGeography,
		SubjectHistory,
		SubjectGovernment,
		SubjectCommerce,
		SubjectAccounting,
		SubjectAgriculturalScience,
		SubjectTechnicalDrawing,
		SubjectFoodAndNutrition,
		SubjectChristianReligiousKnowledge,
		SubjectIslamicReligiousStudies,
		SubjectCivicEducation,
		SubjectDataProcessing,
		SubjectComputerStudies,
		SubjectGeneralKnowledge,
	}
}

// IsKnownSubject returns true if s is in the vocabulary or is UnknownSubject.
func IsKnownSubject(s string) bool {
	if s == UnknownSubject {
		return true
	}
	for _, known := range Subjects() {
		if s == known {
			return true
		}
	}
	return false
}

// Plausible exam year bounds, inclusive.
const (
	MinExamYear = 1990
	MaxExamYear = 2030
)

// IsPlausibleYear returns true if y falls inside the exam year bounds.
func IsPlausibleYear(y int) bool {
	return y >= MinExamYear && y <= MaxExamYear
}
