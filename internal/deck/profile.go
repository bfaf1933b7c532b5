package deck

import "strconv"

// Profile is the structured record bound to a theme at render time. Fields
// are flat scalars; the per-slide photo URLs feed image elements that carry
// no content of their own.
type Profile struct {
	ID         uint   `json:"id"`
	FirstName  string `json:"firstName"`
	Age        int    `json:"age"`
	Location   string `json:"location"`
	Occupation string `json:"occupation"`
	Education  string `json:"education"`
	Interests  string `json:"interests"`
	Bio        string `json:"bio"`

	Slide1PhotoURL string `json:"slide1PhotoUrl"`
	Slide2PhotoURL string `json:"slide2PhotoUrl"`
	Slide3PhotoURL string `json:"slide3PhotoUrl"`
}

// Fields is the canonical, closed substitution vocabulary. Placeholder
// tokens outside this set are left verbatim by the resolver; extending the
// set is a template-authoring concern, not a resolver concern.
var Fields = []string{
	"firstName",
	"age",
	"location",
	"occupation",
	"education",
	"interests",
	"bio",
}

// KnownField reports whether name is part of the substitution vocabulary.
func KnownField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Field returns the stringified value of a profile field. Numbers render
// without locale formatting; an unset age (zero) renders as "". The second
// return is false for names outside the known set.
func (p Profile) Field(name string) (string, bool) {
	switch name {
	case "firstName":
		return p.FirstName, true
	case "age":
		if p.Age == 0 {
			return "", true
		}
		return strconv.Itoa(p.Age), true
	case "location":
		return p.Location, true
	case "occupation":
		return p.Occupation, true
	case "education":
		return p.Education, true
	case "interests":
		return p.Interests, true
	case "bio":
		return p.Bio, true
	}
	return "", false
}

// PhotoForSlide returns the profile photo assigned to slide n, or "".
func (p Profile) PhotoForSlide(n int) string {
	switch n {
	case 1:
		return p.Slide1PhotoURL
	case 2:
		return p.Slide2PhotoURL
	case 3:
		return p.Slide3PhotoURL
	}
	return ""
}
