package cadastre

import (
	"fmt"
	"strings"
)

// Language selects the vocabulary of generated descriptions.
type Language int

const (
	English Language = iota
	Deutsch
	Russian
)

var languageNames = [...]string{"English", "Deutsch", "Russian"}

func (l Language) String() string {
	if l < English || l > Russian {
		return languageNames[Russian]
	}
	return languageNames[l]
}

// ParseLanguage matches s against the language names, ignoring case.
// Anything unrecognized selects Russian, the third profile.
func ParseLanguage(s string) Language {
	s = strings.TrimSpace(s)
	for i, name := range languageNames {
		if strings.EqualFold(s, name) {
			return Language(i)
		}
	}
	return Russian
}

// Profile holds the language-specific labels and the sentence template used to
// describe a boundary segment. The template takes three %s values: the length,
// the direction label and the names of crossed surfaces.
type Profile struct {
	UnitLabel        string                `yaml:"unit_label" json:"unit_label"`
	AzimuthLabel     string                `yaml:"azimuth_label" json:"azimuth_label"`
	SentenceTemplate string                `yaml:"sentence_template" json:"sentence_template"`
	CompassLabels    [compassPoints]string `yaml:"compass_labels" json:"compass_labels"`
}

// Validate checks that the template takes exactly three values and that every
// compass bucket has a label.
func (p *Profile) Validate() error {
	if p == nil {
		return ErrInvalidProfile
	}
	if err := validateTemplate(p.SentenceTemplate); err != nil {
		return err
	}
	for i, l := range p.CompassLabels {
		if l == "" {
			return fmt.Errorf("%w: compass label %d is empty", ErrInvalidProfile, i)
		}
	}
	return nil
}

func validateTemplate(tmpl string) error {
	verbs := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 >= len(tmpl) {
			return fmt.Errorf("%w: dangling %%", ErrInvalidTemplate)
		}
		i++
		switch tmpl[i] {
		case '%':
		case 's':
			verbs++
		default:
			return fmt.Errorf("%w: unsupported verb %%%c", ErrInvalidTemplate, tmpl[i])
		}
	}
	if verbs != 3 {
		return fmt.Errorf("%w: found %d", ErrInvalidTemplate, verbs)
	}
	return nil
}

var latinCompass = [compassPoints]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

var cyrillicCompass = [compassPoints]string{
	"С", "ССВ", "СВ", "ВСВ", "В", "ВЮВ", "ЮВ", "ЮЮВ",
	"Ю", "ЮЮЗ", "ЮЗ", "ЗЮЗ", "З", "ЗСЗ", "СЗ", "ССЗ",
}

// DefaultProfile returns the built-in profile for l.
func DefaultProfile(l Language) Profile {
	switch l {
	case English:
		return Profile{
			UnitLabel:        "m",
			AzimuthLabel:     "az",
			SentenceTemplate: "A segment of the border with a length of %sm runs in the direction of the %s along %s",
			CompassLabels:    latinCompass,
		}
	case Deutsch:
		return Profile{
			UnitLabel:        "m",
			AzimuthLabel:     "az",
			SentenceTemplate: "Ein Segment der Grenze, %sm, verläuft in Richtung %s entlang %s",
			CompassLabels:    latinCompass,
		}
	default:
		return Profile{
			UnitLabel:        "м",
			AzimuthLabel:     "аз",
			SentenceTemplate: "Отрезок границы, протяженностью %sм проходит в направлении %s по %s",
			CompassLabels:    cyrillicCompass,
		}
	}
}

// ProfileSet resolves a Language to its Profile.
type ProfileSet struct {
	profiles [len(languageNames)]Profile
}

// NewProfileSet returns the three built-in profiles.
func NewProfileSet() *ProfileSet {
	s := &ProfileSet{}
	for i := range s.profiles {
		s.profiles[i] = DefaultProfile(Language(i))
	}
	return s
}

// Override replaces the profile for l after validating it.
func (s *ProfileSet) Override(l Language, p Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", l, err)
	}
	s.profiles[ParseLanguage(l.String())] = p
	return nil
}

// Get returns the profile for l. Out of range values get the Russian profile.
func (s *ProfileSet) Get(l Language) *Profile {
	return &s.profiles[ParseLanguage(l.String())]
}
