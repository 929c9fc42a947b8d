package valueobjects

import "fmt"

// Grade is the school grade a student is enrolled in
type Grade string

const (
	GradePreKG Grade = "PRE_KG"
	GradeKG    Grade = "KG"
	GradeLKG   Grade = "LKG"
	GradeUKG   Grade = "UKG"
	Grade1     Grade = "1"
	Grade2     Grade = "2"
	Grade3     Grade = "3"
	Grade4     Grade = "4"
	Grade5     Grade = "5"
	Grade6     Grade = "6"
	Grade7     Grade = "7"
	Grade8     Grade = "8"
	Grade9     Grade = "9"
	Grade10    Grade = "10"
	Grade11    Grade = "11"
	Grade12    Grade = "12"
)

// allGrades preserves enumeration order for listings
var allGrades = []Grade{
	GradePreKG, GradeKG, GradeLKG, GradeUKG,
	Grade1, Grade2, Grade3, Grade4, Grade5, Grade6,
	Grade7, Grade8, Grade9, Grade10, Grade11, Grade12,
}

// NewGrade validates and returns a Grade
func NewGrade(s string) (Grade, error) {
	g := Grade(s)
	if !g.IsValid() {
		return "", fmt.Errorf("invalid grade %q", s)
	}
	return g, nil
}

// IsValid reports whether the value is an enumerated grade
func (g Grade) IsValid() bool {
	for _, valid := range allGrades {
		if g == valid {
			return true
		}
	}
	return false
}

// String returns the wire representation
func (g Grade) String() string {
	return string(g)
}

// Grades returns all grades in enumeration order
func Grades() []Grade {
	out := make([]Grade, len(allGrades))
	copy(out, allGrades)
	return out
}
